package controllers

import (
	"net/http"
	"strconv"

	"codearena/middlewares"
	"codearena/services"

	"github.com/gin-gonic/gin"
)

type LeaderboardController struct {
	store services.RankingStore
}

func NewLeaderboardController(store services.RankingStore) *LeaderboardController {
	return &LeaderboardController{store: store}
}

// GetLeaderboard returns the top users by XP; ?limit= picks how many.
func (l *LeaderboardController) GetLeaderboard(c *gin.Context) {
	limit := services.DefaultLeaderboardSize
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, "limit must be a number")
			return
		}
		limit = n
	}

	entries, err := services.Leaderboard(c.Request.Context(), l.store, middlewares.UserID(c), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": entries})
}
