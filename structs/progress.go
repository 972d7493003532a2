package structs

import "codearena/models"

type UpdateProfileRequest struct {
	ProfileImage *string             `json:"profileImage" binding:"omitempty,max=2048"`
	Bio          *string             `json:"bio" binding:"omitempty,max=150"`
	Description  *string             `json:"description" binding:"omitempty,max=500"`
	SocialLinks  *models.SocialLinks `json:"socialLinks"`
}

type SolveRequest struct {
	Difficulty string `json:"difficulty" binding:"required"`
}

type AddXPRequest struct {
	Amount int `json:"amount" binding:"min=0,max=10000"`
}

type JudgeHeroRequest struct {
	Success *bool `json:"success" binding:"required"`
}
