package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/upravdom/problembot/internal/service"
)

// SweepHandler запускает периодические обходы вручную.
type SweepHandler struct {
	reminders *service.ReminderService
	acts      *service.ActService
	users     userDirectory
}

// NewSweepHandler создаёт новый хэндлер.
func NewSweepHandler(reminders *service.ReminderService, acts *service.ActService, users userDirectory) *SweepHandler {
	return &SweepHandler{reminders: reminders, acts: acts, users: users}
}

// Reminders обрабатывает POST /api/sweeps/reminders.
func (h *SweepHandler) Reminders(c *gin.Context) {
	if _, err := requireAdmin(c, h.users); err != nil {
		_ = c.Error(err)
		return
	}

	sent, err := h.reminders.SendDueReminders(c.Request.Context(), time.Now().UTC())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sent": sent})
}

// Acts обрабатывает POST /api/sweeps/acts.
func (h *SweepHandler) Acts(c *gin.Context) {
	if _, err := requireAdmin(c, h.users); err != nil {
		_ = c.Error(err)
		return
	}

	results, err := h.acts.RunActSweep(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	type actSummary struct {
		AssigneeID int64  `json:"assignee_id"`
		Problems   int    `json:"problems"`
		FilePath   string `json:"file_path"`
	}
	summaries := make([]actSummary, 0, len(results))
	for _, r := range results {
		summaries = append(summaries, actSummary{
			AssigneeID: r.AssigneeID,
			Problems:   len(r.CoveredProblemIDs),
			FilePath:   r.FilePath,
		})
	}

	c.JSON(http.StatusOK, gin.H{"acts": summaries})
}
