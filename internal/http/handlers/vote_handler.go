package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/upravdom/problembot/internal/service"
)

// VoteHandler принимает решения администраторов по отчётам.
type VoteHandler struct {
	votes *service.VoteService
	users userDirectory
}

// NewVoteHandler создаёт новый хэндлер.
func NewVoteHandler(votes *service.VoteService, users userDirectory) *VoteHandler {
	return &VoteHandler{votes: votes, users: users}
}

// Cast обрабатывает POST /api/reports/:id/votes.
func (h *VoteHandler) Cast(c *gin.Context) {
	adminID, err := requireAdmin(c, h.users)
	if err != nil {
		_ = c.Error(err)
		return
	}

	reportID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "неверный идентификатор отчёта"})
		return
	}

	var req struct {
		Decision string  `json:"decision" binding:"required"`
		Reason   *string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "decision обязателен"})
		return
	}

	outcome, err := h.votes.CastVote(c.Request.Context(), reportID, adminID, req.Decision, req.Reason)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"finalized": outcome.Finalized,
		"escalated": outcome.Escalated,
	})
}

// Summary обрабатывает GET /api/reports/:id/votes.
func (h *VoteHandler) Summary(c *gin.Context) {
	if _, err := requireAdmin(c, h.users); err != nil {
		_ = c.Error(err)
		return
	}

	reportID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "неверный идентификатор отчёта"})
		return
	}

	rows, err := h.votes.VoteSummary(c.Request.Context(), reportID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"votes": rows})
}
