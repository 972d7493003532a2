package services

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"codearena/models"
)

const (
	maxBioLen         = 150
	maxDescriptionLen = 500
)

// ProfileUpdate carries the editable profile fields. Nil fields are left
// untouched.
type ProfileUpdate struct {
	ProfileImage *string
	Bio          *string
	Description  *string
	SocialLinks  *models.SocialLinks
}

func (p ProfileUpdate) fields() map[string]interface{} {
	fields := map[string]interface{}{}
	if p.ProfileImage != nil {
		fields[models.FieldProfileImage] = strings.TrimSpace(*p.ProfileImage)
	}
	if p.Bio != nil {
		fields[models.FieldBio] = strings.TrimSpace(*p.Bio)
	}
	if p.Description != nil {
		fields[models.FieldDescription] = strings.TrimSpace(*p.Description)
	}
	if p.SocialLinks != nil {
		links := *p.SocialLinks
		links.GitHub = strings.TrimSpace(links.GitHub)
		links.LinkedIn = strings.TrimSpace(links.LinkedIn)
		links.X = strings.TrimSpace(links.X)
		links.Website = strings.TrimSpace(links.Website)
		fields[models.FieldSocialLinks] = links
	}
	return fields
}

type ProfileService struct {
	users    UserStore
	progress *ProgressionService
	now      func() time.Time
}

func NewProfileService(users UserStore, progress *ProgressionService) *ProfileService {
	return &ProfileService{users: users, progress: progress, now: time.Now}
}

func (s *ProfileService) GetProfile(ctx context.Context, userID string) (models.PublicUser, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return models.PublicUser{}, storeError("find user", err)
	}
	return u.Public(), nil
}

// UpdateProfile stores the given fields and awards Profile Complete once
// every profile field is filled.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*ActivityResult, error) {
	if update.Bio != nil && utf8.RuneCountInString(strings.TrimSpace(*update.Bio)) > maxBioLen {
		return nil, validation("Bio must be at most 150 characters")
	}
	if update.Description != nil && utf8.RuneCountInString(strings.TrimSpace(*update.Description)) > maxDescriptionLen {
		return nil, validation("Description must be at most 500 characters")
	}

	fields := update.fields()
	if len(fields) == 0 {
		u, err := s.users.FindByID(ctx, userID)
		if err != nil {
			return nil, storeError("find user", err)
		}
		return &ActivityResult{User: u.Public(), NewBadges: []string{}}, nil
	}
	fields[models.FieldUpdatedAt] = s.now()

	u, err := s.users.SetFields(ctx, userID, fields)
	if err != nil {
		return nil, storeError("update profile", err)
	}
	return s.progress.Settle(ctx, u, TriggerProfile)
}
