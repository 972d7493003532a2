package controllers

import (
	"net/http"

	"codearena/middlewares"
	"codearena/services"
	"codearena/structs"

	"github.com/gin-gonic/gin"
)

type ProfileController struct {
	profiles *services.ProfileService
}

func NewProfileController(profiles *services.ProfileService) *ProfileController {
	return &ProfileController{profiles: profiles}
}

func (p *ProfileController) GetProfile(c *gin.Context) {
	user, err := p.profiles.GetProfile(c.Request.Context(), middlewares.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (p *ProfileController) UpdateProfile(c *gin.Context) {
	var request structs.UpdateProfileRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, "Bio must be at most 150 characters and description at most 500")
		return
	}

	result, err := p.profiles.UpdateProfile(c.Request.Context(), middlewares.UserID(c), services.ProfileUpdate{
		ProfileImage: request.ProfileImage,
		Bio:          request.Bio,
		Description:  request.Description,
		SocialLinks:  request.SocialLinks,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
