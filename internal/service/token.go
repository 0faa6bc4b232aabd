package service

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/upravdom/problembot/internal/models"
)

// TokenManager отвечает за выпуск и проверку JWT для шлюза.
// Личность пользователя подтверждает сам шлюз (мессенджер), здесь только
// обмен её на токен доступа к API.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager создаёт менеджер токенов.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// Generate выпускает токен для пользователя.
func (m *TokenManager) Generate(user *models.User) (string, time.Time, error) {
	exp := time.Now().Add(m.ttl)
	claims := jwt.MapClaims{
		"sub": strconv.FormatInt(user.ID, 10),
		"iat": time.Now().Unix(),
		"exp": exp.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Parse извлекает ID пользователя из токена.
// Роль в токен намеренно не зашивается: каждая операция проверяет
// актуальную роль по БД сама.
func (m *TokenManager) Parse(token string) (int64, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		if err == nil {
			err = jwt.ErrTokenInvalidClaims
		}
		return 0, err
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return 0, jwt.ErrTokenInvalidClaims
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, jwt.ErrTokenInvalidClaims
	}

	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, jwt.ErrTokenInvalidClaims
	}
	return userID, nil
}
