package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/upravdom/problembot/internal/logger"
	"github.com/upravdom/problembot/internal/pkg/apperror"
)

// ErrorHandler обрабатывает ошибки централизованно.
// Внутренние ошибки маскируются, клиенту уходит код и сообщение из apperror.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err

		if logger.Log != nil {
			logger.Log.WithFields(logrus.Fields{
				"error":  err.Error(),
				"path":   c.Request.URL.Path,
				"method": c.Request.Method,
			}).Error("Request error")
		}

		statusCode := apperror.HTTPStatusFor(err)
		message := "внутренняя ошибка сервера"

		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			message = appErr.Message
		} else {
			statusCode = http.StatusInternalServerError
		}

		c.JSON(statusCode, gin.H{"error": message})
	}
}
