package middlewares

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"codearena/internal/memstore"
	"codearena/models"
	"codearena/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSessions map[string]string

func (s stubSessions) ParseSession(token string) (*utils.Claims, error) {
	if id, ok := s[token]; ok {
		return &utils.Claims{UserID: id}, nil
	}
	return nil, errors.New("bad token")
}

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAuthMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/me", AuthMiddleware(stubSessions{"good": "user-1"}), func(c *gin.Context) {
		c.String(http.StatusOK, UserID(c))
	})

	tests := []struct {
		name   string
		setup  func(req *http.Request)
		status int
		body   string
	}{
		{"no token", func(*http.Request) {}, http.StatusUnauthorized, ""},
		{"cookie", func(req *http.Request) { req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "good"}) }, http.StatusOK, "user-1"},
		{"bearer", func(req *http.Request) { req.Header.Set("Authorization", "Bearer good") }, http.StatusOK, "user-1"},
		{"bad bearer format", func(req *http.Request) { req.Header.Set("Authorization", "Token good") }, http.StatusUnauthorized, ""},
		{"invalid token", func(req *http.Request) { req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "forged"}) }, http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, tt.body, w.Body.String())
			} else {
				assert.Contains(t, w.Body.String(), `"error":"UNAUTHORIZED"`)
			}
		})
	}
}

func TestRBACMiddleware(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()
	admin := &models.User{Username: "root-000000", Email: "root@example.com", Role: models.RoleAdmin}
	user := &models.User{Username: "joe-000000", Email: "joe@example.com", Role: models.RoleUser}
	require.NoError(t, store.Create(ctx, admin))
	require.NoError(t, store.Create(ctx, user))

	enforcer, err := NewEnforcer()
	require.NoError(t, err)

	sessions := stubSessions{
		"admin": admin.ID.Hex(),
		"user":  user.ID.Hex(),
		"ghost": "64b7f0c2a1b2c3d4e5f60718",
	}
	r := gin.New()
	r.POST("/award", AuthMiddleware(sessions), RBACMiddleware(enforcer, store, ResourceContest, ActionAward), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	for token, want := range map[string]int{
		"admin": http.StatusNoContent,
		"user":  http.StatusForbidden,
		"ghost": http.StatusUnauthorized,
	} {
		req := httptest.NewRequest(http.MethodPost, "/award", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, token)
	}
}

func TestNewEnforcerDefaultPolicies(t *testing.T) {
	enforcer, err := NewEnforcer()
	require.NoError(t, err)

	ok, err := enforcer.Enforce("admin", ResourceContest, ActionAward)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = enforcer.Enforce("user", ResourceContest, ActionAward)
	require.NoError(t, err)
	assert.False(t, ok)

	for role, want := range map[string]bool{"admin": true, "judge": true, "user": false} {
		ok, err = enforcer.Enforce(role, ResourceProgress, ActionReport)
		require.NoError(t, err)
		assert.Equal(t, want, ok, role)
	}

	ok, err = enforcer.Enforce("judge", ResourceContest, ActionAward)
	require.NoError(t, err)
	assert.False(t, ok)
}
