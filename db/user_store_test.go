package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"codearena/models"
	"codearena/services"
)

func TestDatabaseName(t *testing.T) {
	assert.Equal(t, "arena", databaseName("mongodb://localhost:27017/arena"))
	assert.Equal(t, "arena", databaseName("mongodb://localhost:27017/arena?retryWrites=true"))
	assert.Equal(t, "codearena", databaseName("mongodb://localhost:27017"))
	assert.Equal(t, "codearena", databaseName("mongodb://localhost:27017/"))
	assert.Equal(t, "codearena", databaseName("not a uri"))
}

func TestIsNil(t *testing.T) {
	var missing *time.Time
	assert.True(t, isNil(nil))
	assert.True(t, isNil(missing))
	assert.False(t, isNil(time.Now()))
	assert.False(t, isNil(""))
}

func TestObjectIDMalformed(t *testing.T) {
	_, err := objectID("xyz")
	assert.ErrorIs(t, err, services.ErrUserNotFound)
}

// newTestStore connects to MONGO_TEST_URI and returns a store over a fresh
// database that is dropped when the test ends.
func newTestStore(t *testing.T) *MongoUserStore {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	require.NoError(t, client.Ping(ctx, nil))

	database := client.Database("codearena_test_" + primitive.NewObjectID().Hex())
	t.Cleanup(func() {
		_ = database.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})

	store := NewMongoUserStore(database)
	require.NoError(t, store.EnsureIndexes(context.Background()))
	return store
}

func TestMongoUserStore_CreateAndFind(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	u := &models.User{Username: "ada-abc123", Email: "ada@example.com", PasswordHash: "x", Role: models.RoleUser, Level: 1}
	require.NoError(t, store.Create(ctx, u))
	require.False(t, u.ID.IsZero())

	got, err := store.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "x", got.PasswordHash)

	got, err = store.FindByID(ctx, u.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "ada-abc123", got.Username)

	_, err = store.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, services.ErrUserNotFound)

	dup := &models.User{Username: "other-000000", Email: "ada@example.com", PasswordHash: "y"}
	assert.ErrorIs(t, store.Create(ctx, dup), services.ErrDuplicateUser)
}

func TestMongoUserStore_AtomicUpdates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	u := &models.User{Username: "bob-abc123", Email: "bob@example.com", PasswordHash: "x", Level: 1}
	require.NoError(t, store.Create(ctx, u))
	id := u.ID.Hex()

	got, err := store.Increment(ctx, id, models.FieldHardSolved, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, got.QuestionsSolved.Hard)

	expiry := time.Now().Add(time.Hour).UTC().Truncate(time.Millisecond)
	got, err = store.SetFields(ctx, id, map[string]interface{}{
		models.FieldResetToken:       "salt$hash",
		models.FieldResetTokenExpiry: expiry,
	})
	require.NoError(t, err)
	assert.Equal(t, "salt$hash", got.ResetPasswordTokenHash)
	require.NotNil(t, got.ResetPasswordTokenExpiry)
	assert.True(t, expiry.Equal(*got.ResetPasswordTokenExpiry))

	got, err = store.SetFields(ctx, id, map[string]interface{}{
		models.FieldResetToken:       nil,
		models.FieldResetTokenExpiry: nil,
	})
	require.NoError(t, err)
	assert.Empty(t, got.ResetPasswordTokenHash)
	assert.Nil(t, got.ResetPasswordTokenExpiry)

	require.NoError(t, store.AddBadges(ctx, id, []string{"Mentor", "Sharer"}))
	require.NoError(t, store.AddBadges(ctx, id, []string{"Mentor"}))
	got, err = store.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"Mentor", "Sharer"}, got.Badges)

	_, err = store.Increment(ctx, primitive.NewObjectID().Hex(), models.FieldXP, 1)
	assert.ErrorIs(t, err, services.ErrUserNotFound)
}

func TestMongoUserStore_BadgeAwards(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	userID := primitive.NewObjectID()
	now := time.Now().UTC().Truncate(time.Millisecond)

	require.NoError(t, store.RecordBadgeAwards(ctx, []models.BadgeAward{
		{UserID: userID, BadgeName: "New User", Trigger: "signup", EarnedAt: now.Add(-time.Hour)},
		{UserID: userID, BadgeName: "Mentor", Trigger: "mentor", EarnedAt: now},
	}))

	awards, err := store.BadgeAwardsFor(ctx, userID.Hex())
	require.NoError(t, err)
	require.Len(t, awards, 2)
	assert.Equal(t, "Mentor", awards[0].BadgeName)
	assert.Equal(t, "New User", awards[1].BadgeName)
}

func TestMongoUserStore_TopByXP(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i, xp := range []int{40, 900, 300} {
		u := &models.User{
			Username:     "player-" + primitive.NewObjectID().Hex()[18:],
			Email:        "p" + string(rune('a'+i)) + "@example.com",
			PasswordHash: "secret",
			XP:           xp,
		}
		require.NoError(t, store.Create(ctx, u))
	}

	top, err := store.TopByXP(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, 900, top[0].XP)
	assert.Equal(t, 300, top[1].XP)
	assert.Empty(t, top[0].PasswordHash)
}

func TestMongoUserStore_AddXP(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	u := &models.User{Username: "xp-abc123", Email: "xp@example.com", PasswordHash: "x", Level: 1}
	require.NoError(t, store.Create(ctx, u))
	id := u.ID.Hex()

	got, err := store.AddXP(ctx, id, 250)
	require.NoError(t, err)
	assert.Equal(t, 250, got.XP)
	assert.Equal(t, 3, got.Level)

	got, err = store.AddXP(ctx, id, 49)
	require.NoError(t, err)
	assert.Equal(t, 299, got.XP)
	assert.Equal(t, 3, got.Level)

	_, err = store.AddXP(ctx, primitive.NewObjectID().Hex(), 1)
	assert.ErrorIs(t, err, services.ErrUserNotFound)
}

func TestMongoUserStore_SetRoleKeepsConcurrentCounters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	u := &models.User{Username: "mod-abc123", Email: "mod@example.com", PasswordHash: "x", Role: models.RoleUser, Level: 1}
	require.NoError(t, store.Create(ctx, u))
	stale, err := store.FindByID(ctx, u.ID.Hex())
	require.NoError(t, err)

	_, err = store.AddXP(ctx, u.ID.Hex(), 120)
	require.NoError(t, err)

	got, err := store.SetFields(ctx, stale.ID.Hex(), map[string]interface{}{models.FieldRole: models.RoleJudge})
	require.NoError(t, err)
	assert.Equal(t, models.RoleJudge, got.Role)
	assert.Equal(t, 120, got.XP)
	assert.Equal(t, 2, got.Level)
}
