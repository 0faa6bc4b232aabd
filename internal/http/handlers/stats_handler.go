package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/upravdom/problembot/internal/models"
	"github.com/upravdom/problembot/internal/pkg/apperror"
	"github.com/upravdom/problembot/internal/service"
)

type assigneeProblemLister interface {
	ListByAssignee(ctx context.Context, assignee int64, statuses []string) ([]models.Problem, error)
}

type actEntryLister interface {
	ListByAssignee(ctx context.Context, assignee int64) ([]models.ActEntry, error)
}

type staffLookup interface {
	GetByAssignee(ctx context.Context, assignee int64) (*models.Staff, error)
}

// StatsHandler отдаёт персональные данные исполнителя: статистику,
// задачи и журнал актов.
type StatsHandler struct {
	stats    *service.StatsService
	problems assigneeProblemLister
	acts     actEntryLister
	staff    staffLookup
	users    userDirectory
}

// NewStatsHandler создаёт новый хэндлер.
func NewStatsHandler(stats *service.StatsService, problems assigneeProblemLister, acts actEntryLister, staff staffLookup, users userDirectory) *StatsHandler {
	return &StatsHandler{stats: stats, problems: problems, acts: acts, staff: staff, users: users}
}

// targetUser разбирает :id и проверяет право доступа: свои данные видит
// каждый, чужие — только администратор.
func (h *StatsHandler) targetUser(c *gin.Context) (int64, error) {
	callerID, err := currentUserID(c)
	if err != nil {
		return 0, err
	}

	targetID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, apperror.New(apperror.ErrCodeBadRequest, "неверный идентификатор пользователя")
	}

	if targetID != callerID {
		caller, err := h.users.GetByID(c.Request.Context(), callerID)
		if err != nil || caller.Role != models.RoleAdmin {
			return 0, apperror.ErrForbidden
		}
	}
	return targetID, nil
}

// UserStats обрабатывает GET /api/users/:id/stats.
func (h *StatsHandler) UserStats(c *gin.Context) {
	targetID, err := h.targetUser(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	breakdown, err := h.stats.UserStats(c.Request.Context(), targetID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	openLists, err := h.stats.OpenListsForAssignee(c.Request.Context(), targetID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	resp := gin.H{
		"user_id":    targetID,
		"breakdown":  breakdown,
		"open_lists": openLists,
	}
	// Карточка из справочника сотрудников, если исполнитель в нём есть.
	if member, err := h.staff.GetByAssignee(c.Request.Context(), targetID); err == nil && member != nil {
		resp["staff"] = member
	}

	c.JSON(http.StatusOK, resp)
}

// UserProblems обрабатывает GET /api/users/:id/problems?status=...
func (h *StatsHandler) UserProblems(c *gin.Context) {
	targetID, err := h.targetUser(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var statuses []string
	for _, s := range c.QueryArray("status") {
		if _, ok := models.ValidProblemStatuses[s]; !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "неизвестный статус: " + s})
			return
		}
		statuses = append(statuses, s)
	}

	problems, err := h.problems.ListByAssignee(c.Request.Context(), targetID, statuses)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"problems": problems})
}

// UserActs обрабатывает GET /api/users/:id/acts.
func (h *StatsHandler) UserActs(c *gin.Context) {
	targetID, err := h.targetUser(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	entries, err := h.acts.ListByAssignee(c.Request.Context(), targetID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"acts": entries})
}
