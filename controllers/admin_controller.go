package controllers

import (
	"net/http"

	"codearena/services"

	"github.com/gin-gonic/gin"
)

type AdminController struct {
	progress *services.ProgressionService
}

func NewAdminController(progress *services.ProgressionService) *AdminController {
	return &AdminController{progress: progress}
}

// MarkContestTop10 records a top-10 contest finish for the user in :id.
func (a *AdminController) MarkContestTop10(c *gin.Context) {
	result, err := a.progress.SetContestTop10(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// RecomputeBadges re-evaluates every badge rule for the user in :id.
func (a *AdminController) RecomputeBadges(c *gin.Context) {
	result, err := a.progress.RecomputeBadges(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
