package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"relay-llm/internal/domain"
	"relay-llm/internal/llm"
	"relay-llm/internal/repository"
)

var (
	ErrExchangeNotConfigured = errors.New("exchange service not configured")
	ErrInvalidInput          = errors.New("invalid input")
	ErrStorage               = errors.New("storage error")
	ErrUpstream              = errors.New("upstream error")
)

// ExchangeService orquesta un intercambio: historial, completion y persistencia del par.
type ExchangeService struct {
	logger        *zap.Logger
	llmClient     llm.LLMClient
	messages      repository.MessageRepository
	systemPrompt  string
	historyWindow int
}

// NewExchangeService crea el servicio. historyWindow <= 0 reenvía el historial completo.
func NewExchangeService(
	logger *zap.Logger,
	llmClient llm.LLMClient,
	messages repository.MessageRepository,
	systemPrompt string,
	historyWindow int,
) *ExchangeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExchangeService{
		logger:        logger,
		llmClient:     llmClient,
		messages:      messages,
		systemPrompt:  systemPrompt,
		historyWindow: historyWindow,
	}
}

// Exchange envía text al LLM con el historial y devuelve la respuesta solo si el par quedó guardado.
func (s *ExchangeService) Exchange(ctx context.Context, text string) (string, error) {
	if s == nil || s.llmClient == nil || s.messages == nil {
		return "", ErrExchangeNotConfigured
	}

	// El texto se guarda y se envía tal cual llegó.
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: message is required", ErrInvalidInput)
	}

	history, err := s.messages.ListRecent(ctx, s.historyWindow)
	if err != nil {
		return "", fmt.Errorf("%w: load history: %v", ErrStorage, err)
	}

	conversation := BuildConversation(s.systemPrompt, history, text)
	reply, err := s.llmClient.Complete(ctx, conversation)
	if err != nil {
		return "", fmt.Errorf("%w: completion: %v", ErrUpstream, err)
	}

	userMsg := domain.NewMessage(domain.RoleUser, text)
	assistantMsg := domain.NewMessage(domain.RoleAssistant, reply)
	if err := s.messages.AppendExchange(ctx, userMsg, assistantMsg); err != nil {
		return "", fmt.Errorf("%w: save messages: %v", ErrStorage, err)
	}

	s.logger.Debug("exchange stored",
		zap.Int("history_len", len(history)),
		zap.Int("reply_len", len(reply)),
	)
	return reply, nil
}

// History devuelve todas las filas almacenadas en orden de inserción.
func (s *ExchangeService) History(ctx context.Context) ([]domain.Message, error) {
	if s == nil || s.messages == nil {
		return nil, ErrExchangeNotConfigured
	}
	out, err := s.messages.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list messages: %v", ErrStorage, err)
	}
	return out, nil
}
