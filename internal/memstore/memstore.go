// Package memstore is an in-memory services.UserStore for tests.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"codearena/models"
	"codearena/progression"
	"codearena/services"
)

type Store struct {
	mu     sync.Mutex
	users  map[primitive.ObjectID]*models.User
	awards []models.BadgeAward
}

func New() *Store {
	return &Store{users: make(map[primitive.ObjectID]*models.User)}
}

func (s *Store) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return clone(u), nil
		}
	}
	return nil, services.ErrUserNotFound
}

func (s *Store) FindByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, err := s.get(id)
	if err != nil {
		return nil, err
	}
	return clone(u), nil
}

func (s *Store) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email || existing.Username == u.Username {
			return services.ErrDuplicateUser
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	s.users[u.ID] = clone(u)
	return nil
}

func (s *Store) Increment(_ context.Context, id, field string, delta int) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, err := s.get(id)
	if err != nil {
		return nil, err
	}
	counter := intField(u, field)
	if counter == nil {
		return nil, fmt.Errorf("memstore: cannot increment %q", field)
	}
	*counter += delta
	return clone(u), nil
}

func (s *Store) AddXP(_ context.Context, id string, amount int) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if !progression.CanAddXP(u.XP, amount) {
		return nil, progression.ErrXPOverflow
	}
	u.XP += amount
	progression.RecomputeLevel(u)
	return clone(u), nil
}

func (s *Store) SetFields(_ context.Context, id string, fields map[string]interface{}) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, err := s.get(id)
	if err != nil {
		return nil, err
	}
	for field, value := range fields {
		if err := setField(u, field, value); err != nil {
			return nil, err
		}
	}
	return clone(u), nil
}

func (s *Store) AddBadges(_ context.Context, id string, labels []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, err := s.get(id)
	if err != nil {
		return err
	}
	for _, label := range labels {
		if !u.HasBadge(label) {
			u.Badges = append(u.Badges, label)
		}
	}
	return nil
}

func (s *Store) RecordBadgeAwards(_ context.Context, awards []models.BadgeAward) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range awards {
		if a.ID.IsZero() {
			a.ID = primitive.NewObjectID()
		}
		s.awards = append(s.awards, a)
	}
	return nil
}

func (s *Store) TopByXP(_ context.Context, limit int) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, *clone(u))
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].XP != users[j].XP {
			return users[i].XP > users[j].XP
		}
		return users[i].ID.Hex() < users[j].ID.Hex()
	})
	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

// Awards returns a copy of every recorded badge award.
func (s *Store) Awards() []models.BadgeAward {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.BadgeAward, len(s.awards))
	copy(out, s.awards)
	return out
}

func (s *Store) get(id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, services.ErrUserNotFound
	}
	u, ok := s.users[oid]
	if !ok {
		return nil, services.ErrUserNotFound
	}
	return u, nil
}

func intField(u *models.User, field string) *int {
	switch field {
	case models.FieldXP:
		return &u.XP
	case models.FieldLevel:
		return &u.Level
	case models.FieldEasySolved:
		return &u.QuestionsSolved.Easy
	case models.FieldMediumSolved:
		return &u.QuestionsSolved.Medium
	case models.FieldHardSolved:
		return &u.QuestionsSolved.Hard
	case models.FieldFastSolverCount:
		return &u.FastSolverCount
	case models.FieldJudgeHeroStreak:
		return &u.JudgeHeroStreak
	case models.FieldMentorActivities:
		return &u.MentorActivities
	case models.FieldCollaborationActivities:
		return &u.CollaborationActivities
	case models.FieldSharedSolutionsCount:
		return &u.SharedSolutionsCount
	case models.FieldConsecutiveLoginDays:
		return &u.ConsecutiveLoginDays
	}
	return nil
}

func setField(u *models.User, field string, value interface{}) error {
	if counter := intField(u, field); counter != nil {
		v, ok := value.(int)
		if !ok {
			return fmt.Errorf("memstore: %q wants int, got %T", field, value)
		}
		*counter = v
		return nil
	}

	var ok bool
	switch field {
	case models.FieldContestRankTop10:
		u.ContestRankTop10, ok = value.(bool)
	case models.FieldProfileImage:
		u.ProfileImage, ok = value.(string)
	case models.FieldBio:
		u.Bio, ok = value.(string)
	case models.FieldDescription:
		u.Description, ok = value.(string)
	case models.FieldSocialLinks:
		u.SocialLinks, ok = value.(models.SocialLinks)
	case models.FieldRole:
		u.Role, ok = value.(models.Role)
	case models.FieldUpdatedAt:
		u.UpdatedAt, ok = value.(time.Time)
	case models.FieldLastLogin:
		u.LastLogin, ok = timePtr(value)
	case models.FieldPassword:
		u.PasswordHash, ok = value.(string)
	case models.FieldResetToken:
		if value == nil {
			u.ResetPasswordTokenHash, ok = "", true
		} else {
			u.ResetPasswordTokenHash, ok = value.(string)
		}
	case models.FieldResetTokenExpiry:
		u.ResetPasswordTokenExpiry, ok = timePtr(value)
	default:
		return fmt.Errorf("memstore: unknown field %q", field)
	}
	if !ok {
		return fmt.Errorf("memstore: bad value %T for %q", value, field)
	}
	return nil
}

func timePtr(value interface{}) (*time.Time, bool) {
	switch v := value.(type) {
	case nil:
		return nil, true
	case time.Time:
		return &v, true
	case *time.Time:
		if v == nil {
			return nil, true
		}
		t := *v
		return &t, true
	}
	return nil, false
}

func clone(u *models.User) *models.User {
	c := *u
	c.Badges = append([]string(nil), u.Badges...)
	if u.LastLogin != nil {
		t := *u.LastLogin
		c.LastLogin = &t
	}
	if u.ResetPasswordTokenExpiry != nil {
		t := *u.ResetPasswordTokenExpiry
		c.ResetPasswordTokenExpiry = &t
	}
	return &c
}
