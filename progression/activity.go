package progression

import (
	"errors"
	"fmt"
	"math"

	"codearena/models"
)

const (
	XPPerLevel = 100
	// MaxXPAward caps a single XP grant.
	MaxXPAward = 10000
)

var (
	ErrNegativeXP        = errors.New("xp amount must not be negative")
	ErrXPAwardTooLarge   = fmt.Errorf("xp amount must not exceed %d", MaxXPAward)
	ErrXPOverflow        = errors.New("xp total would overflow")
	ErrUnknownDifficulty = errors.New("unknown difficulty")
)

// ValidateXPAward checks amount against [0, MaxXPAward].
func ValidateXPAward(amount int) error {
	if amount < 0 {
		return ErrNegativeXP
	}
	if amount > MaxXPAward {
		return ErrXPAwardTooLarge
	}
	return nil
}

// CanAddXP reports whether amount fits on top of xp without overflowing.
func CanAddXP(xp, amount int) bool {
	return xp <= math.MaxInt-amount
}

type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// ParseDifficulty accepts "easy", "medium" or "hard".
func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(s); d {
	case Easy, Medium, Hard:
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDifficulty, s)
}

// Field is the document field holding the solve counter for d.
func (d Difficulty) Field() string {
	switch d {
	case Medium:
		return models.FieldMediumSolved
	case Hard:
		return models.FieldHardSolved
	default:
		return models.FieldEasySolved
	}
}

// LevelFor is floor(xp/100)+1; negative xp counts as zero.
func LevelFor(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/XPPerLevel + 1
}

// RecomputeLevel derives u.Level from u.XP.
func RecomputeLevel(u *models.User) {
	u.Level = LevelFor(u.XP)
}

func IncrementFastSolver(u *models.User) []string {
	u.FastSolverCount++
	return ApplyBadges(u, false)
}

func SetContestTop10(u *models.User) []string {
	u.ContestRankTop10 = true
	return ApplyBadges(u, false)
}

// UpdateJudgeHeroStreak extends the streak on success and resets it to zero
// otherwise.
func UpdateJudgeHeroStreak(u *models.User, success bool) []string {
	if success {
		u.JudgeHeroStreak++
	} else {
		u.JudgeHeroStreak = 0
	}
	return ApplyBadges(u, false)
}

func AddMentorActivity(u *models.User) []string {
	u.MentorActivities++
	return ApplyBadges(u, false)
}

func AddCollaborationActivity(u *models.User) []string {
	u.CollaborationActivities++
	return ApplyBadges(u, false)
}

func AddSharedSolution(u *models.User) []string {
	u.SharedSolutionsCount++
	return ApplyBadges(u, false)
}

// RecordSolve counts one accepted problem of the given difficulty.
func RecordSolve(u *models.User, d Difficulty) []string {
	switch d {
	case Medium:
		u.QuestionsSolved.Medium++
	case Hard:
		u.QuestionsSolved.Hard++
	default:
		u.QuestionsSolved.Easy++
	}
	return ApplyBadges(u, false)
}

// AddXP adds amount to the user's XP and re-derives level and badges.
func AddXP(u *models.User, amount int) ([]string, error) {
	if err := ValidateXPAward(amount); err != nil {
		return nil, err
	}
	if !CanAddXP(u.XP, amount) {
		return nil, ErrXPOverflow
	}
	u.XP += amount
	RecomputeLevel(u)
	return ApplyBadges(u, false), nil
}
