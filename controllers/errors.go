package controllers

import (
	"errors"
	"log"
	"net/http"

	"codearena/services"

	"github.com/gin-gonic/gin"
)

// respondError writes the {"error", "message"} body for a service error.
// Internal causes go to the log, never to the client.
func respondError(c *gin.Context, err error) {
	status, code := services.HTTPStatus(err)

	var ie *services.InternalError
	if errors.As(err, &ie) {
		log.Printf("%s %s: %s", c.Request.Method, c.FullPath(), ie.Cause())
	}

	message := err.Error()
	if errors.Is(err, services.ErrUserNotFound) {
		message = "User not found"
	}
	c.JSON(status, gin.H{"error": code, "message": message})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "VALIDATION_ERROR", "message": message})
}
