package slackapi

import (
	"context"
	"errors"
	"fmt"

	"github.com/slack-go/slack"
)

// Poster publica la respuesta del asistente en el canal de origen.
type Poster interface {
	PostReply(ctx context.Context, channelID, threadTS, text string) error
}

type messagePoster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

type webAPIPoster struct {
	client messagePoster
}

// NewPoster crea un Poster sobre la Web API de Slack con el bot token indicado.
func NewPoster(botToken string, opts ...slack.Option) Poster {
	return &webAPIPoster{client: slack.New(botToken, opts...)}
}

func (p *webAPIPoster) PostReply(ctx context.Context, channelID, threadTS, text string) error {
	if channelID == "" {
		return errors.New("slack channel is required")
	}
	options := []slack.MsgOption{slack.MsgOptionText(text, false)}
	if threadTS != "" {
		options = append(options, slack.MsgOptionTS(threadTS))
	}
	if _, _, err := p.client.PostMessageContext(ctx, channelID, options...); err != nil {
		return fmt.Errorf("post slack message: %w", err)
	}
	return nil
}

type disabledPoster struct {
	reason string
}

// NewDisabledPoster devuelve un Poster que siempre falla; se usa sin SLACK_BOT_TOKEN.
func NewDisabledPoster(reason string) Poster {
	return &disabledPoster{reason: reason}
}

func (p *disabledPoster) PostReply(_ context.Context, _, _, _ string) error {
	if p.reason == "" {
		return errors.New("slack poster disabled")
	}
	return errors.New(p.reason)
}
