package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/upravdom/problembot/internal/models"
	"github.com/upravdom/problembot/internal/pkg/apperror"
)

type roleSetter interface {
	userDirectory
	SetRole(ctx context.Context, id int64, role string) error
	ListAll(ctx context.Context) ([]models.User, error)
}

// AdminHandler управляет составом администраторов.
// Назначать и снимать администраторов могут только главные администраторы.
type AdminHandler struct {
	users      roleSetter
	mainAdmins map[int64]struct{}
}

// NewAdminHandler создаёт новый хэндлер.
func NewAdminHandler(users roleSetter, mainAdminIDs []int64) *AdminHandler {
	mains := make(map[int64]struct{}, len(mainAdminIDs))
	for _, id := range mainAdminIDs {
		mains[id] = struct{}{}
	}
	return &AdminHandler{users: users, mainAdmins: mains}
}

func (h *AdminHandler) requireMainAdmin(c *gin.Context) error {
	callerID, err := requireAdmin(c, h.users)
	if err != nil {
		return err
	}
	if _, ok := h.mainAdmins[callerID]; !ok {
		return apperror.ErrForbidden
	}
	return nil
}

// Users обрабатывает GET /api/users.
// Справочник для выбора кандидата в администраторы.
func (h *AdminHandler) Users(c *gin.Context) {
	if _, err := requireAdmin(c, h.users); err != nil {
		_ = c.Error(err)
		return
	}

	users, err := h.users.ListAll(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	type userRow struct {
		ID       int64  `json:"id"`
		Role     string `json:"role"`
		FullName string `json:"full_name"`
		IsMain   bool   `json:"is_main"`
	}
	rows := make([]userRow, 0, len(users))
	for i := range users {
		u := &users[i]
		_, isMain := h.mainAdmins[u.ID]
		rows = append(rows, userRow{ID: u.ID, Role: u.Role, FullName: u.FullName(), IsMain: isMain})
	}

	c.JSON(http.StatusOK, gin.H{"users": rows})
}

// Promote обрабатывает POST /api/admins.
func (h *AdminHandler) Promote(c *gin.Context) {
	if err := h.requireMainAdmin(c); err != nil {
		_ = c.Error(err)
		return
	}

	var req struct {
		UserID int64 `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id обязателен"})
		return
	}

	if err := h.users.SetRole(c.Request.Context(), req.UserID, models.RoleAdmin); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user_id": req.UserID, "role": models.RoleAdmin})
}

// Demote обрабатывает DELETE /api/admins/:id.
// Главного администратора снять нельзя.
func (h *AdminHandler) Demote(c *gin.Context) {
	if err := h.requireMainAdmin(c); err != nil {
		_ = c.Error(err)
		return
	}

	targetID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "неверный идентификатор пользователя"})
		return
	}

	if _, ok := h.mainAdmins[targetID]; ok {
		_ = c.Error(apperror.New(apperror.ErrCodeForbidden, "главного администратора снять нельзя"))
		return
	}

	if err := h.users.SetRole(c.Request.Context(), targetID, models.RoleUser); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user_id": targetID, "role": models.RoleUser})
}
