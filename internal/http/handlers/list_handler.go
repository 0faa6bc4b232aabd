package handlers

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/upravdom/problembot/internal/importer"
	"github.com/upravdom/problembot/internal/models"
	"github.com/upravdom/problembot/internal/service"
)

type listBrowser interface {
	ListAll(ctx context.Context, onlyOpen bool) ([]models.ProblemList, error)
}

// ListHandler отвечает за импорт и просмотр списков проблем.
type ListHandler struct {
	problems *service.ProblemService
	stats    *service.StatsService
	lists    listBrowser
	users    userDirectory
}

// NewListHandler создаёт новый хэндлер.
func NewListHandler(problems *service.ProblemService, stats *service.StatsService, lists listBrowser, users userDirectory) *ListHandler {
	return &ListHandler{problems: problems, stats: stats, lists: lists, users: users}
}

// Import обрабатывает POST /api/lists/import.
// Multipart форма: file — xlsx со столбцами id|title|assignee|due_date,
// code и title — реквизиты списка.
func (h *ListHandler) Import(c *gin.Context) {
	if _, err := requireAdmin(c, h.users); err != nil {
		_ = c.Error(err)
		return
	}

	code := strings.TrimSpace(c.PostForm("code"))
	title := strings.TrimSpace(c.PostForm("title"))
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code обязателен"})
		return
	}
	if title == "" {
		title = code
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "файл xlsx обязателен"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		_ = c.Error(err)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		_ = c.Error(err)
		return
	}

	rows, err := importer.ParseProblemsXLSX(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	list, err := h.problems.UpsertProblems(c.Request.Context(), code, title, rows)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"list":     list,
		"imported": len(rows),
	})
}

// List обрабатывает GET /api/lists?open=1&assignee=.
// С параметром assignee возвращаются коды открытых списков, где у
// исполнителя остались непринятые задачи.
func (h *ListHandler) List(c *gin.Context) {
	if _, err := currentUserID(c); err != nil {
		_ = c.Error(err)
		return
	}

	if raw := c.Query("assignee"); raw != "" {
		assignee, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "неверный assignee"})
			return
		}
		codes, err := h.stats.OpenListsForAssignee(c.Request.Context(), assignee)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"codes": codes})
		return
	}

	onlyOpen := c.Query("open") == "1" || c.Query("open") == "true"
	lists, err := h.lists.ListAll(c.Request.Context(), onlyOpen)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"lists": lists})
}

// Problems обрабатывает GET /api/lists/:code/problems.
func (h *ListHandler) Problems(c *gin.Context) {
	if _, err := currentUserID(c); err != nil {
		_ = c.Error(err)
		return
	}

	list, problems, err := h.problems.ListProblems(c.Request.Context(), c.Param("code"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"list":     list,
		"problems": problems,
	})
}

// Stats обрабатывает GET /api/lists/:code/stats.
func (h *ListHandler) Stats(c *gin.Context) {
	if _, err := currentUserID(c); err != nil {
		_ = c.Error(err)
		return
	}

	stats, err := h.stats.ListStatsByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
