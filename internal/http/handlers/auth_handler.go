package handlers

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/upravdom/problembot/internal/models"
	"github.com/upravdom/problembot/internal/service"
)

// AuthHandler обменивает идентификатор пользователя чат-шлюза на access токен.
type AuthHandler struct {
	users      userUpserter
	tokens     *service.TokenManager
	gatewayKey string
}

type userUpserter interface {
	userDirectory
	Upsert(ctx context.Context, user *models.User) error
}

// NewAuthHandler создаёт новый хэндлер.
func NewAuthHandler(users userUpserter, tokens *service.TokenManager, gatewayKey string) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, gatewayKey: gatewayKey}
}

// IssueToken обрабатывает POST /api/auth/token.
// Запрос приходит от доверенного чат-шлюза, подтверждённого общим ключом.
func (h *AuthHandler) IssueToken(c *gin.Context) {
	key := c.GetHeader("X-Gateway-Key")
	if subtle.ConstantTimeCompare([]byte(key), []byte(h.gatewayKey)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "неверный ключ шлюза"})
		return
	}

	var req struct {
		UserID    int64   `json:"user_id" binding:"required"`
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
		Username  *string `json:"username"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id обязателен"})
		return
	}

	user := &models.User{
		ID:        req.UserID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
		Role:      models.RoleUser,
	}
	if err := h.users.Upsert(c.Request.Context(), user); err != nil {
		_ = c.Error(err)
		return
	}

	// Роль после upsert берём из БД, повышение сохраняется.
	stored, err := h.users.GetByID(c.Request.Context(), req.UserID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	token, expiresAt, err := h.tokens.Generate(stored)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"expires_at":   expiresAt,
		"role":         stored.Role,
	})
}
