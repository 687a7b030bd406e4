package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"relay-llm/internal/service"
)

// MessageHandler atiende el endpoint directo y la consulta del historial.
type MessageHandler struct {
	logger   *zap.Logger
	exchange *service.ExchangeService
}

// NewMessageHandler crea una instancia de MessageHandler con dependencias necesarias.
func NewMessageHandler(logger *zap.Logger, exchange *service.ExchangeService) *MessageHandler {
	return &MessageHandler{
		logger:   logger,
		exchange: exchange,
	}
}

// Health maneja GET /.
func (h *MessageHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListMessages maneja GET /messages.
func (h *MessageHandler) ListMessages(c *gin.Context) {
	messages, err := h.exchange.History(c.Request.Context())
	if err != nil {
		h.logger.Error("list messages failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// PostSMS maneja POST /sms.
func (h *MessageHandler) PostSMS(c *gin.Context) {
	var req struct {
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid sms request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	reply, err := h.exchange.Exchange(c.Request.Context(), req.Message)
	if err != nil {
		writeExchangeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"response": reply})
}

// writeExchangeError traduce los errores del intercambio a códigos HTTP.
func writeExchangeError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		logger.Warn("exchange rejected", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUpstream):
		logger.Error("completion failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		logger.Error("exchange failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
