package progression

import (
	"time"

	"codearena/models"
)

// Day boundaries are taken in UTC so the streak does not depend on the
// server's local zone or on DST shifts.
func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts whole calendar days from the day of from to the day of to.
func DaysBetween(from, to time.Time) int {
	return int(truncateToDay(to).Sub(truncateToDay(from)) / (24 * time.Hour))
}

// RecordLogin updates the login streak for a login at now, stamps lastLogin
// and recomputes badges. It returns the badges newly awarded.
func RecordLogin(u *models.User, now time.Time) []string {
	if u.LastLogin == nil {
		u.ConsecutiveLoginDays = 1
	} else {
		switch delta := DaysBetween(*u.LastLogin, now); {
		case delta == 1:
			u.ConsecutiveLoginDays++
		case delta > 1:
			u.ConsecutiveLoginDays = 1
		}
		// delta == 0 is a same-day login; a negative delta (clock skew)
		// is treated the same way.
		if u.ConsecutiveLoginDays < 1 {
			u.ConsecutiveLoginDays = 1
		}
	}

	at := now
	u.LastLogin = &at
	return ApplyBadges(u, false)
}
