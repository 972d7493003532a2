package services

import (
	"context"

	"codearena/models"
)

const (
	DefaultLeaderboardSize = 20
	MaxLeaderboardSize     = 100
)

// RankingStore lists users ordered by XP, highest first.
type RankingStore interface {
	TopByXP(ctx context.Context, limit int) ([]models.User, error)
}

// LeaderboardEntry is one ranked row.
type LeaderboardEntry struct {
	ID          string `json:"id"`
	Rank        int    `json:"rank"`
	Username    string `json:"username"`
	XP          int    `json:"xp"`
	Level       int    `json:"level"`
	BadgeCount  int    `json:"badgeCount"`
	AvatarURL   string `json:"avatarUrl"`
	CurrentUser bool   `json:"currentUser"`
}

// Leaderboard ranks the top users by XP. limit is clamped to
// [1, MaxLeaderboardSize].
func Leaderboard(ctx context.Context, store RankingStore, currentUserID string, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardSize
	}
	if limit > MaxLeaderboardSize {
		limit = MaxLeaderboardSize
	}

	users, err := store.TopByXP(ctx, limit)
	if err != nil {
		return nil, internal("rank users", err)
	}

	entries := make([]LeaderboardEntry, 0, len(users))
	for i, u := range users {
		avatarURL := u.ProfileImage
		if avatarURL == "" {
			avatarURL = "https://api.dicebear.com/9.x/adventurer/svg?seed=" + u.Username
		}
		entries = append(entries, LeaderboardEntry{
			ID:          u.ID.Hex(),
			Rank:        i + 1,
			Username:    u.Username,
			XP:          u.XP,
			Level:       u.Level,
			BadgeCount:  len(u.Badges),
			AvatarURL:   avatarURL,
			CurrentUser: u.ID.Hex() == currentUserID,
		})
	}
	return entries, nil
}
