package services

import (
	"context"

	"codearena/models"
)

// UserStore is the document store behind both services. Lookups return
// ErrUserNotFound when nothing matches; writes return ErrDuplicateUser on a
// unique username/email violation.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, u *models.User) error

	// Increment atomically adds delta to field and returns the updated user.
	Increment(ctx context.Context, id, field string, delta int) (*models.User, error)
	// AddXP atomically adds amount to xp and stores the matching level in
	// the same write. It returns progression.ErrXPOverflow when the total
	// would not fit.
	AddXP(ctx context.Context, id string, amount int) (*models.User, error)
	// SetFields sets the given fields and returns the updated user.
	SetFields(ctx context.Context, id string, fields map[string]interface{}) (*models.User, error)
	// AddBadges adds labels to the badge set, skipping ones already present.
	AddBadges(ctx context.Context, id string, labels []string) error
}

// BadgeAwardStore keeps the audit trail of earned badges.
type BadgeAwardStore interface {
	RecordBadgeAwards(ctx context.Context, awards []models.BadgeAward) error
}

// EventPublisher delivers gamification events to live clients.
type EventPublisher interface {
	Publish(event models.GamificationEvent)
}
