package progression

import (
	"testing"
	"time"

	"codearena/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestRecordLogin(t *testing.T) {
	now := at("2026-03-10T09:30:00Z")

	tests := []struct {
		name      string
		lastLogin *time.Time
		days      int
		wantDays  int
	}{
		{"first login", nil, 0, 1},
		{"yesterday", ptr(at("2026-03-09T23:59:00Z")), 4, 5},
		{"three days ago", ptr(at("2026-03-07T12:00:00Z")), 9, 1},
		{"earlier today", ptr(at("2026-03-10T00:01:00Z")), 3, 3},
		{"lastLogin in the future", ptr(at("2026-03-11T08:00:00Z")), 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &models.User{LastLogin: tt.lastLogin, ConsecutiveLoginDays: tt.days}

			RecordLogin(u, now)

			assert.Equal(t, tt.wantDays, u.ConsecutiveLoginDays)
			require.NotNil(t, u.LastLogin)
			assert.True(t, u.LastLogin.Equal(now))
		})
	}
}

func TestRecordLogin_AwardsStreakBadges(t *testing.T) {
	now := at("2026-03-10T09:30:00Z")
	u := &models.User{LastLogin: ptr(now.Add(-24 * time.Hour)), ConsecutiveLoginDays: 6}

	added := RecordLogin(u, now)

	assert.Equal(t, 7, u.ConsecutiveLoginDays)
	assert.Equal(t, []string{BadgeDailyCoder, BadgeWeeklyStreak}, added)
}

func TestRecordLogin_SameDayIsNoChange(t *testing.T) {
	now := at("2026-03-10T18:00:00Z")
	u := &models.User{LastLogin: ptr(at("2026-03-10T08:00:00Z")), ConsecutiveLoginDays: 2}

	RecordLogin(u, now)
	RecordLogin(u, now.Add(time.Hour))

	assert.Equal(t, 2, u.ConsecutiveLoginDays)
}

func TestDaysBetween_IgnoresZone(t *testing.T) {
	tz := time.FixedZone("UTC+9", 9*3600)
	// 2026-03-10T08:00+09:00 is 2026-03-09T23:00Z.
	from := time.Date(2026, 3, 10, 8, 0, 0, 0, tz)
	to := at("2026-03-10T01:00:00Z")
	assert.Equal(t, 1, DaysBetween(from, to))
}

func ptr(t time.Time) *time.Time { return &t }
