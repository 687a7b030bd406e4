package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidRole se devuelve al intentar guardar un par con roles inesperados.
var ErrInvalidRole = errors.New("invalid message role")

// Role identifica al autor de un mensaje dentro del historial.
type Role string

const (
	RoleDeveloper Role = "developer"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid indica si el rol pertenece al conjunto admitido.
func (r Role) Valid() bool {
	switch r {
	case RoleDeveloper, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// Message es una fila inmutable del historial. El orden de lectura es el ID ascendente.
type Message struct {
	ID        int64     `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NewMessage construye un mensaje aun no persistido con marca de tiempo UTC.
func NewMessage(role Role, content string) Message {
	return Message{
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}

// ValidateExchange exige un par user seguido de assistant antes de persistirlo.
func ValidateExchange(user, assistant Message) error {
	for _, m := range []Message{user, assistant} {
		if !m.Role.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidRole, m.Role)
		}
	}
	if user.Role != RoleUser || assistant.Role != RoleAssistant {
		return fmt.Errorf("%w: expected user/assistant pair, got %s/%s", ErrInvalidRole, user.Role, assistant.Role)
	}
	return nil
}
