package http

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"relay-llm/internal/service"
)

const (
	slackTimestampHeader = "X-Slack-Request-Timestamp"
	slackSignatureHeader = "X-Slack-Signature"
	slackRetryNumHeader  = "X-Slack-Retry-Num"

	maxSlackBodyBytes = 1 << 20
)

// SlackHandler recibe el webhook del Events API.
type SlackHandler struct {
	logger        *zap.Logger
	signingSecret string
	relay         *service.SlackRelay
}

// NewSlackHandler crea una instancia de SlackHandler con dependencias necesarias.
func NewSlackHandler(logger *zap.Logger, signingSecret string, relay *service.SlackRelay) *SlackHandler {
	return &SlackHandler{
		logger:        logger,
		signingSecret: signingSecret,
		relay:         relay,
	}
}

// HandleEvents maneja POST /slack/events.
func (h *SlackHandler) HandleEvents(c *gin.Context) {
	if h.signingSecret == "" {
		h.logger.Error("slack signing secret not configured")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "slack signing secret not configured"})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxSlackBodyBytes))
	if err != nil {
		h.logger.Warn("read slack body failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	ts := c.GetHeader(slackTimestampHeader)
	sig := c.GetHeader(slackSignatureHeader)
	if !service.VerifySlackSignature(h.signingSecret, ts, string(body), sig) {
		h.logger.Warn("invalid slack signature", zap.String("timestamp", ts))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid slack signature"})
		return
	}

	ev, err := service.ParseSlackEvent(body)
	if err != nil {
		h.logger.Warn("invalid slack payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid slack payload"})
		return
	}

	if ev.Kind == service.SlackEventURLVerification {
		c.JSON(http.StatusOK, gin.H{"challenge": ev.Challenge})
		return
	}

	if retry := c.GetHeader(slackRetryNumHeader); retry != "" {
		h.logger.Info("slack retry delivery",
			zap.String("retry_num", retry),
			zap.String("event_id", ev.EventID),
		)
	}

	if _, err := h.relay.Handle(c.Request.Context(), ev); err != nil {
		writeExchangeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
