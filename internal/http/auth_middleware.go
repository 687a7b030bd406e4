package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"relay-llm/internal/service"
)

const (
	apiKeyHeader     = "X-Api-Key"
	apiKeyContextKey = "api_key"
)

// APIKeyMiddleware valida X-Api-Key contra el secreto configurado antes de cualquier handler.
func APIKeyMiddleware(configured string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, err := service.VerifyAPIKey(configured, c.GetHeader(apiKeyHeader))
		if err != nil {
			status := http.StatusUnauthorized
			if errors.Is(err, service.ErrAPIKeyNotConfigured) {
				status = http.StatusInternalServerError
			}
			c.JSON(status, gin.H{"error": err.Error()})
			c.Abort()
			return
		}

		c.Set(apiKeyContextKey, key)
		c.Next()
	}
}

// GetAPIKey obtiene la API key validada desde el contexto.
func GetAPIKey(c *gin.Context) (string, bool) {
	val, ok := c.Get(apiKeyContextKey)
	if !ok {
		return "", false
	}
	key, ok := val.(string)
	return key, ok
}
