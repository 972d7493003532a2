package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"codearena/middlewares"
	"codearena/services"
	"codearena/structs"
	"codearena/utils"

	"github.com/gin-gonic/gin"
)

// LoginThrottle limits failed login attempts per client and email.
type LoginThrottle interface {
	Allow(ctx context.Context, clientIP, email string) (bool, error)
	RecordFailure(ctx context.Context, clientIP, email string) error
	Reset(ctx context.Context, clientIP, email string) error
}

type AuthController struct {
	credentials  *services.CredentialService
	profiles     *services.ProfileService
	throttle     LoginThrottle
	secureCookie bool
}

// NewAuthController wires the auth endpoints. throttle may be nil.
func NewAuthController(credentials *services.CredentialService, profiles *services.ProfileService, throttle LoginThrottle, secureCookie bool) *AuthController {
	return &AuthController{
		credentials:  credentials,
		profiles:     profiles,
		throttle:     throttle,
		secureCookie: secureCookie,
	}
}

func (a *AuthController) SignUp(c *gin.Context) {
	var request structs.SignUpRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	result, err := a.credentials.Register(c.Request.Context(), request.Username, request.Email, request.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	a.setSessionCookie(c, result.Token)
	c.JSON(http.StatusCreated, gin.H{
		"message":   "Sign-up successful",
		"user":      result.User,
		"expiresAt": result.ExpiresAt,
	})
}

func (a *AuthController) Login(c *gin.Context) {
	var request structs.LoginRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	ctx := c.Request.Context()
	email := utils.NormalizeEmail(request.Email)
	ip := c.ClientIP()

	if a.throttle != nil {
		allowed, err := a.throttle.Allow(ctx, ip, email)
		if err != nil {
			log.Printf("Login throttle unavailable: %v", err)
		} else if !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "TOO_MANY_REQUESTS", "message": "Too many login attempts, please try again later"})
			return
		}
	}

	result, err := a.credentials.Authenticate(ctx, email, request.Password)
	if err != nil {
		var ae *services.AuthError
		if a.throttle != nil && errors.As(err, &ae) {
			if ferr := a.throttle.RecordFailure(ctx, ip, email); ferr != nil {
				log.Printf("Failed to record login failure: %v", ferr)
			}
		}
		respondError(c, err)
		return
	}

	if a.throttle != nil {
		if err := a.throttle.Reset(ctx, ip, email); err != nil {
			log.Printf("Failed to reset login throttle: %v", err)
		}
	}

	a.setSessionCookie(c, result.Token)
	c.JSON(http.StatusOK, gin.H{
		"message":   "Sign-in successful",
		"user":      result.User,
		"expiresAt": result.ExpiresAt,
	})
}

// Logout clears the session cookie. Tokens are not revoked server side.
func (a *AuthController) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middlewares.SessionCookie, "", -1, "/", "", a.secureCookie, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (a *AuthController) Me(c *gin.Context) {
	user, err := a.profiles.GetProfile(c.Request.Context(), middlewares.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// ForgotPassword answers identically whether or not the email is registered.
// Only malformed input is reported; store and mail failures are logged.
func (a *AuthController) ForgotPassword(c *gin.Context) {
	var request structs.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	_, err := a.credentials.RequestPasswordReset(c.Request.Context(), request.Email)
	var ve *services.ValidationError
	var ie *services.InternalError
	switch {
	case errors.As(err, &ve):
		respondError(c, err)
		return
	case errors.As(err, &ie):
		log.Printf("Password reset request failed: %s", ie.Cause())
	case err != nil && !errors.Is(err, services.ErrUserNotFound):
		log.Printf("Password reset request failed: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "If the email is registered, a reset code has been sent"})
}

func (a *AuthController) ResetPassword(c *gin.Context) {
	var request structs.ResetPasswordRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	err := a.credentials.ResetPassword(c.Request.Context(), request.Email, request.Code, request.NewPassword)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password successfully changed"})
}

func (a *AuthController) ChangePassword(c *gin.Context) {
	var request structs.ChangePasswordRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	err := a.credentials.ChangePassword(c.Request.Context(), middlewares.UserID(c), request.CurrentPassword, request.NewPassword)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password successfully changed"})
}

func (a *AuthController) setSessionCookie(c *gin.Context, token string) {
	maxAge := int(a.credentials.SessionTTL() / time.Second)
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middlewares.SessionCookie, token, maxAge, "/", "", a.secureCookie, true)
}
