package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BadgeAward is the audit record written when a badge is earned.
type BadgeAward struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	BadgeName string             `bson:"badgeName" json:"badgeName"`
	Trigger   string             `bson:"trigger" json:"trigger"` // "signup", "login", "solve", ...
	EarnedAt  time.Time          `bson:"earnedAt" json:"earnedAt"`
}

const (
	EventBadgeAwarded = "badge_awarded"
	EventLevelUp      = "level_up"
)

// GamificationEvent is pushed to connected websocket clients.
type GamificationEvent struct {
	Type      string    `json:"type"`
	UserID    string    `json:"userId"`
	BadgeName string    `json:"badgeName,omitempty"`
	Level     int       `json:"level,omitempty"`
	Trigger   string    `json:"trigger,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
