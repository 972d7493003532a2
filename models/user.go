package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
	// RoleJudge is the service account of the judging subsystem, which
	// reports solves, XP and other activity on behalf of users.
	RoleJudge Role = "judge"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin || r == RoleJudge
}

// Document field names, shared by the store and the progression service.
const (
	FieldXP                      = "xp"
	FieldLevel                   = "level"
	FieldBadges                  = "badges"
	FieldEasySolved              = "questionsSolved.easy"
	FieldMediumSolved            = "questionsSolved.medium"
	FieldHardSolved              = "questionsSolved.hard"
	FieldFastSolverCount         = "fastSolverCount"
	FieldContestRankTop10        = "contestRankTop10"
	FieldJudgeHeroStreak         = "judgeHeroStreak"
	FieldMentorActivities        = "mentorActivities"
	FieldCollaborationActivities = "collaborationActivities"
	FieldSharedSolutionsCount    = "sharedSolutionsCount"
	FieldLastLogin               = "lastLogin"
	FieldConsecutiveLoginDays    = "consecutiveLoginDays"
	FieldProfileImage            = "profileImage"
	FieldBio                     = "bio"
	FieldDescription             = "description"
	FieldSocialLinks             = "socialLinks"
	FieldRole                    = "role"
	FieldUpdatedAt               = "updatedAt"
	FieldPassword                = "password"
	FieldResetToken              = "resetPasswordToken"
	FieldResetTokenExpiry        = "resetPasswordTokenExpire"
	FieldEmail                   = "email"
	FieldUsername                = "username"
)

type SocialLinks struct {
	GitHub   string `bson:"github" json:"github"`
	LinkedIn string `bson:"linkedin" json:"linkedin"`
	X        string `bson:"x" json:"x"`
	Website  string `bson:"website" json:"website"`
}

// Any reports whether at least one link is set.
func (s SocialLinks) Any() bool {
	return s.GitHub != "" || s.LinkedIn != "" || s.X != "" || s.Website != ""
}

type QuestionsSolved struct {
	Easy   int `bson:"easy" json:"easy"`
	Medium int `bson:"medium" json:"medium"`
	Hard   int `bson:"hard" json:"hard"`
}

func (q QuestionsSolved) Total() int {
	return q.Easy + q.Medium + q.Hard
}

// User is the account document stored in the users collection.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Username     string             `bson:"username" json:"username"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password" json:"-"`
	Role         Role               `bson:"role" json:"role"`

	ProfileImage string      `bson:"profileImage" json:"profileImage"`
	Bio          string      `bson:"bio" json:"bio"`
	Description  string      `bson:"description" json:"description"`
	SocialLinks  SocialLinks `bson:"socialLinks" json:"socialLinks"`

	Points          int             `bson:"points" json:"points"`
	XP              int             `bson:"xp" json:"xp"`
	Level           int             `bson:"level" json:"level"`
	Badges          []string        `bson:"badges" json:"badges"`
	QuestionsSolved QuestionsSolved `bson:"questionsSolved" json:"questionsSolved"`

	FastSolverCount         int  `bson:"fastSolverCount" json:"fastSolverCount"`
	ContestRankTop10        bool `bson:"contestRankTop10" json:"contestRankTop10"`
	JudgeHeroStreak         int  `bson:"judgeHeroStreak" json:"judgeHeroStreak"`
	MentorActivities        int  `bson:"mentorActivities" json:"mentorActivities"`
	CollaborationActivities int  `bson:"collaborationActivities" json:"collaborationActivities"`
	SharedSolutionsCount    int  `bson:"sharedSolutionsCount" json:"sharedSolutionsCount"`

	LastLogin            *time.Time `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
	ConsecutiveLoginDays int        `bson:"consecutiveLoginDays" json:"consecutiveLoginDays"`

	IsVerified               bool       `bson:"isVerified" json:"isVerified"`
	ResetPasswordTokenHash   string     `bson:"resetPasswordToken,omitempty" json:"-"`
	ResetPasswordTokenExpiry *time.Time `bson:"resetPasswordTokenExpire,omitempty" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// HasBadge reports whether label was already awarded.
func (u *User) HasBadge(label string) bool {
	for _, b := range u.Badges {
		if b == label {
			return true
		}
	}
	return false
}

// PublicUser is the externally visible view of a User: no password hash and
// no reset token material.
type PublicUser struct {
	ID              string          `json:"id"`
	Username        string          `json:"username"`
	Email           string          `json:"email"`
	Role            Role            `json:"role"`
	ProfileImage    string          `json:"profileImage"`
	Bio             string          `json:"bio"`
	Description     string          `json:"description"`
	SocialLinks     SocialLinks     `json:"socialLinks"`
	Points          int             `json:"points"`
	XP              int             `json:"xp"`
	Level           int             `json:"level"`
	Badges          []string        `json:"badges"`
	QuestionsSolved QuestionsSolved `json:"questionsSolved"`

	FastSolverCount         int  `json:"fastSolverCount"`
	ContestRankTop10        bool `json:"contestRankTop10"`
	JudgeHeroStreak         int  `json:"judgeHeroStreak"`
	MentorActivities        int  `json:"mentorActivities"`
	CollaborationActivities int  `json:"collaborationActivities"`
	SharedSolutionsCount    int  `json:"sharedSolutionsCount"`

	LastLogin            *time.Time `json:"lastLogin,omitempty"`
	ConsecutiveLoginDays int        `json:"consecutiveLoginDays"`
	IsVerified           bool       `json:"isVerified"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

// Public returns the user without credential fields.
func (u *User) Public() PublicUser {
	badges := make([]string, len(u.Badges))
	copy(badges, u.Badges)

	return PublicUser{
		ID:                      u.ID.Hex(),
		Username:                u.Username,
		Email:                   u.Email,
		Role:                    u.Role,
		ProfileImage:            u.ProfileImage,
		Bio:                     u.Bio,
		Description:             u.Description,
		SocialLinks:             u.SocialLinks,
		Points:                  u.Points,
		XP:                      u.XP,
		Level:                   u.Level,
		Badges:                  badges,
		QuestionsSolved:         u.QuestionsSolved,
		FastSolverCount:         u.FastSolverCount,
		ContestRankTop10:        u.ContestRankTop10,
		JudgeHeroStreak:         u.JudgeHeroStreak,
		MentorActivities:        u.MentorActivities,
		CollaborationActivities: u.CollaborationActivities,
		SharedSolutionsCount:    u.SharedSolutionsCount,
		LastLogin:               u.LastLogin,
		ConsecutiveLoginDays:    u.ConsecutiveLoginDays,
		IsVerified:              u.IsVerified,
		CreatedAt:               u.CreatedAt,
		UpdatedAt:               u.UpdatedAt,
	}
}
