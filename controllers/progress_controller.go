package controllers

import (
	"context"
	"net/http"

	"codearena/services"
	"codearena/structs"

	"github.com/gin-gonic/gin"
)

// ProgressController records activity reported for the user in :id.
type ProgressController struct {
	progress *services.ProgressionService
}

func NewProgressController(progress *services.ProgressionService) *ProgressController {
	return &ProgressController{progress: progress}
}

func (p *ProgressController) RecordSolve(c *gin.Context) {
	var request structs.SolveRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, "Difficulty is required")
		return
	}
	p.respond(c, func(ctx context.Context, id string) (*services.ActivityResult, error) {
		return p.progress.RecordSolve(ctx, id, request.Difficulty)
	})
}

func (p *ProgressController) AddXP(c *gin.Context) {
	var request structs.AddXPRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, "Amount must be an integer between 0 and 10000")
		return
	}
	p.respond(c, func(ctx context.Context, id string) (*services.ActivityResult, error) {
		return p.progress.AddXP(ctx, id, request.Amount)
	})
}

func (p *ProgressController) FastSolve(c *gin.Context) {
	p.respond(c, p.progress.IncrementFastSolver)
}

func (p *ProgressController) JudgeHero(c *gin.Context) {
	var request structs.JudgeHeroRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, "Success flag is required")
		return
	}
	p.respond(c, func(ctx context.Context, id string) (*services.ActivityResult, error) {
		return p.progress.UpdateJudgeHeroStreak(ctx, id, *request.Success)
	})
}

func (p *ProgressController) Mentor(c *gin.Context) {
	p.respond(c, p.progress.AddMentorActivity)
}

func (p *ProgressController) Collaboration(c *gin.Context) {
	p.respond(c, p.progress.AddCollaborationActivity)
}

func (p *ProgressController) SharedSolution(c *gin.Context) {
	p.respond(c, p.progress.AddSharedSolution)
}

func (p *ProgressController) respond(c *gin.Context, apply func(ctx context.Context, userID string) (*services.ActivityResult, error)) {
	result, err := apply(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
