package service

import (
	"context"

	"go.uber.org/zap"

	"relay-llm/internal/slackapi"
)

// SlackRelay convierte eventos de mensaje de Slack en intercambios y publica la respuesta.
type SlackRelay struct {
	logger   *zap.Logger
	exchange *ExchangeService
	poster   slackapi.Poster
	dedup    EventDeduper
}

// NewSlackRelay crea el relay. dedup puede ser nil para no filtrar reintentos.
func NewSlackRelay(logger *zap.Logger, exchange *ExchangeService, poster slackapi.Poster, dedup EventDeduper) *SlackRelay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SlackRelay{
		logger:   logger,
		exchange: exchange,
		poster:   poster,
		dedup:    dedup,
	}
}

// Handle procesa un evento ya autenticado. Devuelve false si el evento se ignoró.
// Un fallo al publicar en Slack solo se registra: el webhook debe responder 2xx igualmente.
func (r *SlackRelay) Handle(ctx context.Context, ev SlackEvent) (bool, error) {
	if reason := ev.IgnoreReason(); reason != "" {
		r.logger.Debug("slack event ignored",
			zap.String("reason", reason),
			zap.String("event_id", ev.EventID),
			zap.String("type", ev.InnerType),
		)
		return false, nil
	}

	if r.dedup != nil {
		claimed, err := r.dedup.Claim(ctx, ev.EventID)
		if err != nil {
			r.logger.Warn("slack event dedup failed", zap.Error(err), zap.String("event_id", ev.EventID))
		} else if !claimed {
			r.logger.Info("slack event duplicate", zap.String("event_id", ev.EventID))
			return false, nil
		}
	}

	reply, err := r.exchange.Exchange(ctx, StripMentions(ev.Text))
	if err != nil {
		if r.dedup != nil {
			if relErr := r.dedup.Release(ctx, ev.EventID); relErr != nil {
				r.logger.Warn("slack event release failed", zap.Error(relErr), zap.String("event_id", ev.EventID))
			}
		}
		return false, err
	}

	if r.poster == nil {
		r.logger.Warn("slack poster not configured", zap.String("channel", ev.Channel))
		return true, nil
	}
	if err := r.poster.PostReply(ctx, ev.Channel, ev.ThreadTS, reply); err != nil {
		r.logger.Error("slack post failed",
			zap.Error(err),
			zap.String("channel", ev.Channel),
			zap.String("event_id", ev.EventID),
		)
	}
	return true, nil
}
