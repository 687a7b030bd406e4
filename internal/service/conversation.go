package service

import (
	"relay-llm/internal/domain"
	"relay-llm/internal/llm"
)

// BuildConversation arma [prompt de developer, historial en orden de inserción, mensaje nuevo].
func BuildConversation(prompt string, history []domain.Message, text string) []llm.Message {
	out := make([]llm.Message, 0, len(history)+2)
	out = append(out, llm.Message{Role: string(domain.RoleDeveloper), Content: prompt})
	for _, m := range history {
		out = append(out, llm.Message{Role: string(m.Role), Content: m.Content})
	}
	out = append(out, llm.Message{Role: string(domain.RoleUser), Content: text})
	return out
}
