package middlewares

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"codearena/models"
	"codearena/services"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	mongodbadapter "github.com/casbin/mongodb-adapter/v3"
	"github.com/gin-gonic/gin"
)

// Resources and actions guarded by casbin.
const (
	ResourceContest  = "contest"
	ResourceUser     = "user"
	ResourceProgress = "progress"

	ActionAward     = "award"
	ActionRecompute = "recompute"
	ActionReport    = "report"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

var defaultPolicies = [][]string{
	{string(models.RoleAdmin), ResourceContest, ActionAward},
	{string(models.RoleAdmin), ResourceUser, ActionRecompute},
	{string(models.RoleAdmin), ResourceProgress, ActionReport},
	{string(models.RoleJudge), ResourceProgress, ActionReport},
}

// NewEnforcer builds an enforcer over the inline RBAC model with the default
// policies loaded in memory.
func NewEnforcer() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("failed to create Casbin model: %w", err)
	}
	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create Casbin enforcer: %w", err)
	}
	if err := ensureDefaultPolicies(enforcer); err != nil {
		return nil, err
	}
	return enforcer, nil
}

// NewMongoEnforcer stores policies in the casbin_rule collection of the
// database named in uri.
func NewMongoEnforcer(uri string) (*casbin.Enforcer, error) {
	adapter, err := mongodbadapter.NewAdapter(uri)
	if err != nil {
		return nil, fmt.Errorf("failed to create Casbin adapter: %w", err)
	}

	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("failed to create Casbin model: %w", err)
	}
	enforcer, err := casbin.NewEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("failed to create Casbin enforcer: %w", err)
	}
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("failed to load policy: %w", err)
	}
	if err := ensureDefaultPolicies(enforcer); err != nil {
		return nil, err
	}

	log.Println("Casbin RBAC initialized successfully")
	return enforcer, nil
}

func ensureDefaultPolicies(enforcer *casbin.Enforcer) error {
	for _, p := range defaultPolicies {
		exists, err := enforcer.HasPolicy(p[0], p[1], p[2])
		if err != nil {
			return fmt.Errorf("failed to check policy: %w", err)
		}
		if exists {
			continue
		}
		if _, err := enforcer.AddPolicy(p[0], p[1], p[2]); err != nil {
			return fmt.Errorf("failed to add policy: %w", err)
		}
		log.Printf("Added default policy: %s can %s %s", p[0], p[2], p[1])
	}
	return nil
}

// RoleSource looks up the stored user whose role is checked.
type RoleSource interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// RBACMiddleware loads the caller's role from the store and asks casbin
// whether it may perform action on resource. It must run after
// AuthMiddleware.
func RBACMiddleware(enforcer *casbin.Enforcer, users RoleSource, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := UserID(c)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "UNAUTHORIZED", "message": "Missing session"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		user, err := users.FindByID(ctx, userID)
		if err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "UNAUTHORIZED", "message": "Unknown user"})
				return
			}
			log.Printf("RBACMiddleware: failed to load user %s: %v", userID, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "INTERNAL_ERROR", "message": "Permission check failed"})
			return
		}

		allowed, err := enforcer.Enforce(string(user.Role), resource, action)
		if err != nil {
			log.Printf("Casbin enforce error: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "INTERNAL_ERROR", "message": "Permission check failed"})
			return
		}
		if !allowed {
			log.Printf("RBACMiddleware: permission denied for role=%s, resource=%s, action=%s", user.Role, resource, action)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "FORBIDDEN", "message": "Insufficient permissions"})
			return
		}

		c.Set("userRole", string(user.Role))
		c.Next()
	}
}
