package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"codearena/models"
	"codearena/services"
)

// MockRankingStore is a mock implementation of RankingStore.
type MockRankingStore struct {
	mock.Mock
}

func (m *MockRankingStore) TopByXP(ctx context.Context, limit int) ([]models.User, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func TestLeaderboard(t *testing.T) {
	me := primitive.NewObjectID()
	store := &MockRankingStore{}
	store.On("TopByXP", mock.Anything, services.MaxLeaderboardSize).Return([]models.User{
		{ID: primitive.NewObjectID(), Username: "ace-000001", XP: 900, Level: 10, Badges: []string{"XP Expert"}, ProfileImage: "https://img/a.png"},
		{ID: me, Username: "me-000002", XP: 120, Level: 2},
	}, nil)

	entries, err := services.Leaderboard(context.Background(), store, me.Hex(), 1000)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, 1, entries[0].BadgeCount)
	assert.Equal(t, "https://img/a.png", entries[0].AvatarURL)
	assert.False(t, entries[0].CurrentUser)

	assert.Equal(t, 2, entries[1].Rank)
	assert.True(t, entries[1].CurrentUser)
	assert.Contains(t, entries[1].AvatarURL, "seed=me-000002")
	store.AssertExpectations(t)
}

func TestLeaderboard_DefaultLimitAndErrors(t *testing.T) {
	store := &MockRankingStore{}
	store.On("TopByXP", mock.Anything, services.DefaultLeaderboardSize).Return(nil, errors.New("cursor died"))

	_, err := services.Leaderboard(context.Background(), store, "", 0)
	var ie *services.InternalError
	require.ErrorAs(t, err, &ie)
	assert.Contains(t, ie.Cause(), "cursor died")
	store.AssertExpectations(t)
}
