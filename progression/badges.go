package progression

import "codearena/models"

const (
	BadgeNewUser         = "New User"
	BadgeProfileComplete = "Profile Complete"
	BadgeRisingStar      = "Rising Star"
	BadgeProblemSolver   = "Problem Solver"
	BadgeCodeMaster      = "Code Master"
	BadgeAllRounder      = "All-Rounder"
	BadgeEasyPeasy       = "Easy Peasy"
	BadgeMediumWarrior   = "Medium Warrior"
	BadgeHardcoreCoder   = "Hardcore Coder"
	BadgeDailyCoder      = "Daily Coder"
	BadgeWeeklyStreak    = "Weekly Streak"
	BadgeMonthlyMarathon = "Monthly Marathon"
	BadgeXPNovice        = "XP Novice"
	BadgeXPExpert        = "XP Expert"
	BadgeXPLegend        = "XP Legend"
	BadgeFastSolver      = "Fast Solver"
	BadgeContestChampion = "Contest Champion"
	BadgeJudgeHero       = "Judge Hero"
	BadgeMentor          = "Mentor"
	BadgeCollaborator    = "Collaborator"
	BadgeSharer          = "Sharer"
)

// Snapshot is the read-only view of the counters the badge rules look at.
type Snapshot struct {
	IsNew bool

	ProfileImage string
	Bio          string
	Description  string
	SocialLinks  models.SocialLinks

	Solved models.QuestionsSolved

	ConsecutiveLoginDays    int
	XP                      int
	FastSolverCount         int
	ContestRankTop10        bool
	JudgeHeroStreak         int
	MentorActivities        int
	CollaborationActivities int
	SharedSolutionsCount    int
}

// SnapshotOf copies the rule inputs out of u. isNew marks a record that is
// being created and has not been stored yet.
func SnapshotOf(u *models.User, isNew bool) Snapshot {
	return Snapshot{
		IsNew:                   isNew,
		ProfileImage:            u.ProfileImage,
		Bio:                     u.Bio,
		Description:             u.Description,
		SocialLinks:             u.SocialLinks,
		Solved:                  u.QuestionsSolved,
		ConsecutiveLoginDays:    u.ConsecutiveLoginDays,
		XP:                      u.XP,
		FastSolverCount:         u.FastSolverCount,
		ContestRankTop10:        u.ContestRankTop10,
		JudgeHeroStreak:         u.JudgeHeroStreak,
		MentorActivities:        u.MentorActivities,
		CollaborationActivities: u.CollaborationActivities,
		SharedSolutionsCount:    u.SharedSolutionsCount,
	}
}

func (s Snapshot) profileComplete() bool {
	return s.ProfileImage != "" && s.Bio != "" && s.Description != "" && s.SocialLinks.Any()
}

// BadgeRule awards Label whenever Earned holds for a snapshot.
type BadgeRule struct {
	Label  string
	Earned func(Snapshot) bool
}

func solvedAtLeast(n int) func(Snapshot) bool {
	return func(s Snapshot) bool { return s.Solved.Total() >= n }
}

func loginDaysAtLeast(n int) func(Snapshot) bool {
	return func(s Snapshot) bool { return s.ConsecutiveLoginDays >= n }
}

func xpAtLeast(n int) func(Snapshot) bool {
	return func(s Snapshot) bool { return s.XP >= n }
}

// Rules is evaluated in order on every recompute; every rule is checked.
var Rules = []BadgeRule{
	{BadgeNewUser, func(s Snapshot) bool { return s.IsNew }},
	{BadgeProfileComplete, Snapshot.profileComplete},

	{BadgeRisingStar, solvedAtLeast(10)},
	{BadgeProblemSolver, solvedAtLeast(50)},
	{BadgeCodeMaster, solvedAtLeast(100)},
	{BadgeAllRounder, func(s Snapshot) bool {
		return s.Solved.Easy >= 50 && s.Solved.Medium >= 50 && s.Solved.Hard >= 50
	}},

	{BadgeEasyPeasy, func(s Snapshot) bool { return s.Solved.Easy >= 50 }},
	{BadgeMediumWarrior, func(s Snapshot) bool { return s.Solved.Medium >= 50 }},
	{BadgeHardcoreCoder, func(s Snapshot) bool { return s.Solved.Hard >= 50 }},

	{BadgeDailyCoder, loginDaysAtLeast(7)},
	{BadgeWeeklyStreak, loginDaysAtLeast(7)},
	{BadgeMonthlyMarathon, loginDaysAtLeast(30)},

	{BadgeXPNovice, xpAtLeast(100)},
	{BadgeXPExpert, xpAtLeast(500)},
	{BadgeXPLegend, xpAtLeast(1000)},

	{BadgeFastSolver, func(s Snapshot) bool { return s.FastSolverCount >= 1 }},
	{BadgeContestChampion, func(s Snapshot) bool { return s.ContestRankTop10 }},
	{BadgeJudgeHero, func(s Snapshot) bool { return s.JudgeHeroStreak >= 10 }},

	{BadgeMentor, func(s Snapshot) bool { return s.MentorActivities >= 1 }},
	{BadgeCollaborator, func(s Snapshot) bool { return s.CollaborationActivities >= 1 }},
	{BadgeSharer, func(s Snapshot) bool { return s.SharedSolutionsCount >= 1 }},
}

// RecomputeBadges returns current plus every label whose rule now holds and
// which current does not already contain. current is never modified and no
// label is ever dropped.
func RecomputeBadges(current []string, s Snapshot) []string {
	seen := make(map[string]bool, len(current)+len(Rules))
	out := make([]string, 0, len(current)+len(Rules))
	for _, b := range current {
		if seen[b] {
			continue
		}
		seen[b] = true
		out = append(out, b)
	}

	for _, rule := range Rules {
		if seen[rule.Label] || !rule.Earned(s) {
			continue
		}
		seen[rule.Label] = true
		out = append(out, rule.Label)
	}
	return out
}

// NewBadges lists the labels in after that are not in before.
func NewBadges(before, after []string) []string {
	had := make(map[string]bool, len(before))
	for _, b := range before {
		had[b] = true
	}
	var added []string
	for _, b := range after {
		if !had[b] {
			had[b] = true
			added = append(added, b)
		}
	}
	return added
}

// ApplyBadges recomputes u.Badges in place and returns the newly awarded
// labels.
func ApplyBadges(u *models.User, isNew bool) []string {
	before := u.Badges
	after := RecomputeBadges(before, SnapshotOf(u, isNew))
	u.Badges = after
	return NewBadges(before, after)
}
