package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/slack-go/slack/slackevents"
)

var ErrInvalidSlackPayload = errors.New("invalid slack payload")

type SlackEventKind int

const (
	SlackEventIgnored SlackEventKind = iota
	SlackEventURLVerification
	SlackEventMessage
)

// SlackEvent es la vista normalizada de un sobre del Events API.
type SlackEvent struct {
	Kind      SlackEventKind
	Challenge string
	EventID   string
	InnerType string
	Channel   string
	ThreadTS  string
	User      string
	Text      string
	BotID     string
	SubType   string
}

var slackMentionPattern = regexp.MustCompile(`<@[^>]+>`)

// StripMentions elimina el markup <@ID> del texto.
func StripMentions(text string) string {
	return strings.TrimSpace(slackMentionPattern.ReplaceAllString(text, ""))
}

// ParseSlackEvent decodifica el cuerpo crudo del webhook. La firma ya autenticó la petición,
// por eso no se valida el verification token legado.
func ParseSlackEvent(body []byte) (SlackEvent, error) {
	evt, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if err != nil {
		if !json.Valid(body) {
			return SlackEvent{}, fmt.Errorf("%w: %v", ErrInvalidSlackPayload, err)
		}
		// Tipos internos que la librería no conoce: se reconocen y se ignoran.
		return SlackEvent{Kind: SlackEventIgnored}, nil
	}

	switch evt.Type {
	case slackevents.URLVerification:
		v, ok := evt.Data.(*slackevents.EventsAPIURLVerificationEvent)
		if !ok {
			return SlackEvent{}, fmt.Errorf("%w: url_verification without challenge", ErrInvalidSlackPayload)
		}
		return SlackEvent{Kind: SlackEventURLVerification, Challenge: v.Challenge}, nil

	case slackevents.CallbackEvent:
		out := SlackEvent{Kind: SlackEventMessage, InnerType: evt.InnerEvent.Type}
		if cb, ok := evt.Data.(*slackevents.EventsAPICallbackEvent); ok {
			out.EventID = cb.EventID
		}
		switch inner := evt.InnerEvent.Data.(type) {
		case *slackevents.AppMentionEvent:
			out.Channel = inner.Channel
			out.ThreadTS = inner.ThreadTimeStamp
			out.User = inner.User
			out.Text = inner.Text
			out.BotID = inner.BotID
		case *slackevents.MessageEvent:
			out.Channel = inner.Channel
			out.ThreadTS = inner.ThreadTimeStamp
			out.User = inner.User
			out.Text = inner.Text
			out.BotID = inner.BotID
			out.SubType = inner.SubType
		default:
			out.Kind = SlackEventIgnored
		}
		return out, nil
	}

	return SlackEvent{Kind: SlackEventIgnored}, nil
}

// IgnoreReason devuelve por qué el evento no dispara un intercambio, o "" si debe procesarse.
func (e SlackEvent) IgnoreReason() string {
	switch {
	case e.Kind != SlackEventMessage:
		return "unsupported event"
	case e.InnerType != string(slackevents.AppMention) && e.InnerType != string(slackevents.Message):
		return "unsupported event"
	case e.BotID != "":
		return "bot message"
	case e.SubType != "":
		return "message subtype"
	case e.Channel == "":
		return "missing channel"
	case StripMentions(e.Text) == "":
		return "empty text"
	}
	return ""
}
