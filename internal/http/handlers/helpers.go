package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/upravdom/problembot/internal/http/middleware"
	"github.com/upravdom/problembot/internal/models"
	"github.com/upravdom/problembot/internal/pkg/apperror"
)

// userDirectory даёт хэндлерам доступ к пользователям для проверки прав.
// Роль всегда читается из БД на момент операции, в токене её нет.
type userDirectory interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// currentUserID извлекает userID из контекста.
func currentUserID(c *gin.Context) (int64, error) {
	raw, exists := c.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, apperror.ErrUnauthorized
	}

	userID, ok := raw.(int64)
	if !ok {
		return 0, apperror.ErrUnauthorized
	}

	return userID, nil
}

// requireAdmin проверяет, что текущий пользователь администратор.
func requireAdmin(c *gin.Context, users userDirectory) (int64, error) {
	userID, err := currentUserID(c)
	if err != nil {
		return 0, err
	}

	user, err := users.GetByID(c.Request.Context(), userID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return 0, apperror.ErrForbidden
		}
		return 0, err
	}
	if user.Role != models.RoleAdmin {
		return 0, apperror.ErrForbidden
	}

	return userID, nil
}
