package controllers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"codearena/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"validation", &services.ValidationError{Message: "All fields are required"}, http.StatusBadRequest, `{"error":"VALIDATION_ERROR","message":"All fields are required"}`},
		{"conflict", &services.ConflictError{Message: "Email already exists"}, http.StatusConflict, `{"error":"CONFLICT","message":"Email already exists"}`},
		{"auth", &services.AuthError{Message: "Invalid email or password"}, http.StatusUnauthorized, `{"error":"UNAUTHORIZED","message":"Invalid email or password"}`},
		{"not found", services.ErrUserNotFound, http.StatusNotFound, `{"error":"NOT_FOUND","message":"User not found"}`},
		{"internal hides cause", &services.InternalError{Op: "insert user", Err: errors.New("socket closed")}, http.StatusInternalServerError, `{"error":"INTERNAL_ERROR","message":"Server error, please try again later"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			respondError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}
