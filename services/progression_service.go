package services

import (
	"context"
	"errors"
	"log"
	"time"

	"codearena/models"
	"codearena/progression"
)

// Triggers recorded on badge awards.
const (
	TriggerSignup        = "signup"
	TriggerLogin         = "login"
	TriggerSolve         = "solve"
	TriggerXP            = "xp"
	TriggerFastSolve     = "fast_solve"
	TriggerContest       = "contest"
	TriggerJudgeHero     = "judge_hero"
	TriggerMentor        = "mentor"
	TriggerCollaboration = "collaboration"
	TriggerShare         = "share"
	TriggerProfile       = "profile"
	TriggerRecompute     = "recompute"
)

// ActivityResult is the user after an activity plus what it unlocked.
type ActivityResult struct {
	User      models.PublicUser `json:"user"`
	NewBadges []string          `json:"newBadges"`
	LeveledUp bool              `json:"leveledUp,omitempty"`
}

// ProgressionService applies gamification events to stored users. Counter
// changes go through the store's atomic field updates; badges are then
// derived from the returned document and added as a set.
type ProgressionService struct {
	users  UserStore
	awards BadgeAwardStore
	events EventPublisher
	now    func() time.Time
}

// NewProgressionService builds the service. awards and events may be nil.
func NewProgressionService(users UserStore, awards BadgeAwardStore, events EventPublisher) *ProgressionService {
	return &ProgressionService{
		users:  users,
		awards: awards,
		events: events,
		now:    time.Now,
	}
}

// RecordLogin updates the streak of an already loaded user and persists the
// streak fields and any badges it unlocks.
func (s *ProgressionService) RecordLogin(ctx context.Context, u *models.User, now time.Time) ([]string, error) {
	added := progression.RecordLogin(u, now)

	_, err := s.users.SetFields(ctx, u.ID.Hex(), map[string]interface{}{
		models.FieldLastLogin:            u.LastLogin,
		models.FieldConsecutiveLoginDays: u.ConsecutiveLoginDays,
		models.FieldUpdatedAt:            now,
	})
	if err != nil {
		return nil, storeError("update login streak", err)
	}

	if err := s.persistBadges(ctx, u, added, TriggerLogin); err != nil {
		return nil, err
	}
	return added, nil
}

func (s *ProgressionService) IncrementFastSolver(ctx context.Context, userID string) (*ActivityResult, error) {
	return s.increment(ctx, userID, models.FieldFastSolverCount, 1, TriggerFastSolve)
}

func (s *ProgressionService) SetContestTop10(ctx context.Context, userID string) (*ActivityResult, error) {
	return s.set(ctx, userID, models.FieldContestRankTop10, true, TriggerContest)
}

// UpdateJudgeHeroStreak extends the judge streak on success and resets it
// to zero on failure.
func (s *ProgressionService) UpdateJudgeHeroStreak(ctx context.Context, userID string, success bool) (*ActivityResult, error) {
	if success {
		return s.increment(ctx, userID, models.FieldJudgeHeroStreak, 1, TriggerJudgeHero)
	}
	return s.set(ctx, userID, models.FieldJudgeHeroStreak, 0, TriggerJudgeHero)
}

func (s *ProgressionService) AddMentorActivity(ctx context.Context, userID string) (*ActivityResult, error) {
	return s.increment(ctx, userID, models.FieldMentorActivities, 1, TriggerMentor)
}

func (s *ProgressionService) AddCollaborationActivity(ctx context.Context, userID string) (*ActivityResult, error) {
	return s.increment(ctx, userID, models.FieldCollaborationActivities, 1, TriggerCollaboration)
}

func (s *ProgressionService) AddSharedSolution(ctx context.Context, userID string) (*ActivityResult, error) {
	return s.increment(ctx, userID, models.FieldSharedSolutionsCount, 1, TriggerShare)
}

// RecordSolve counts an accepted solution reported by the judge.
func (s *ProgressionService) RecordSolve(ctx context.Context, userID string, difficulty string) (*ActivityResult, error) {
	d, err := progression.ParseDifficulty(difficulty)
	if err != nil {
		return nil, validation("Difficulty must be one of easy, medium, hard")
	}
	return s.increment(ctx, userID, d.Field(), 1, TriggerSolve)
}

// AddXP adds XP and the re-derived level in one store write, then
// recomputes badges.
func (s *ProgressionService) AddXP(ctx context.Context, userID string, amount int) (*ActivityResult, error) {
	if err := progression.ValidateXPAward(amount); err != nil {
		return nil, validation(err.Error())
	}

	u, err := s.users.AddXP(ctx, userID, amount)
	if err != nil {
		if errors.Is(err, progression.ErrXPOverflow) {
			return nil, validation(err.Error())
		}
		return nil, storeError("add xp", err)
	}

	leveledUp := u.Level > progression.LevelFor(u.XP-amount)
	if leveledUp {
		s.publish(models.GamificationEvent{
			Type:      models.EventLevelUp,
			UserID:    userID,
			Level:     u.Level,
			Trigger:   TriggerXP,
			Timestamp: s.now(),
		})
	}

	res, err := s.Settle(ctx, u, TriggerXP)
	if err != nil {
		return nil, err
	}
	res.LeveledUp = leveledUp
	return res, nil
}

// RecomputeBadges re-evaluates every rule for the stored user.
func (s *ProgressionService) RecomputeBadges(ctx context.Context, userID string) (*ActivityResult, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, storeError("load user", err)
	}
	return s.Settle(ctx, u, TriggerRecompute)
}

// Settle recomputes badges for u, persists the new ones and reports them.
func (s *ProgressionService) Settle(ctx context.Context, u *models.User, trigger string) (*ActivityResult, error) {
	added := progression.ApplyBadges(u, false)
	if err := s.persistBadges(ctx, u, added, trigger); err != nil {
		return nil, err
	}
	return &ActivityResult{User: u.Public(), NewBadges: nonNil(added)}, nil
}

func (s *ProgressionService) increment(ctx context.Context, userID, field string, delta int, trigger string) (*ActivityResult, error) {
	u, err := s.users.Increment(ctx, userID, field, delta)
	if err != nil {
		return nil, storeError("increment "+field, err)
	}
	return s.Settle(ctx, u, trigger)
}

func (s *ProgressionService) set(ctx context.Context, userID, field string, value interface{}, trigger string) (*ActivityResult, error) {
	u, err := s.users.SetFields(ctx, userID, map[string]interface{}{field: value})
	if err != nil {
		return nil, storeError("set "+field, err)
	}
	return s.Settle(ctx, u, trigger)
}

func (s *ProgressionService) persistBadges(ctx context.Context, u *models.User, added []string, trigger string) error {
	if len(added) == 0 {
		return nil
	}
	if err := s.users.AddBadges(ctx, u.ID.Hex(), added); err != nil {
		return storeError("add badges", err)
	}
	s.announce(ctx, u, added, trigger)
	return nil
}

// announce writes the audit trail and notifies live clients. Both are
// secondary to the badge set already stored, so failures are only logged.
func (s *ProgressionService) announce(ctx context.Context, u *models.User, added []string, trigger string) {
	now := s.now()

	if s.awards != nil {
		awards := make([]models.BadgeAward, 0, len(added))
		for _, label := range added {
			awards = append(awards, models.BadgeAward{
				UserID:    u.ID,
				BadgeName: label,
				Trigger:   trigger,
				EarnedAt:  now,
			})
		}
		if err := s.awards.RecordBadgeAwards(ctx, awards); err != nil {
			log.Printf("Error saving badge award records for %s: %v", u.ID.Hex(), err)
		}
	}

	for _, label := range added {
		s.publish(models.GamificationEvent{
			Type:      models.EventBadgeAwarded,
			UserID:    u.ID.Hex(),
			BadgeName: label,
			Trigger:   trigger,
			Timestamp: now,
		})
	}
}

func (s *ProgressionService) publish(event models.GamificationEvent) {
	if s.events != nil {
		s.events.Publish(event)
	}
}

// storeError passes ErrUserNotFound through and wraps everything else.
func storeError(op string, err error) error {
	if errors.Is(err, ErrUserNotFound) {
		return ErrUserNotFound
	}
	return internal(op, err)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
