package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"relay-llm/internal/domain"
)

// MessageRepository es el historial append-only de la conversación.
type MessageRepository interface {
	ListAll(ctx context.Context) ([]domain.Message, error)
	// ListRecent devuelve los últimos limit mensajes en orden de inserción; limit <= 0 devuelve todos.
	ListRecent(ctx context.Context, limit int) ([]domain.Message, error)
	// AppendExchange guarda el mensaje del usuario y la respuesta en una sola transacción.
	AppendExchange(ctx context.Context, user, assistant domain.Message) error
}

type PgMessageRepository struct {
	pool *pgxpool.Pool
}

func NewPgMessageRepository(pool *pgxpool.Pool) *PgMessageRepository {
	return &PgMessageRepository{pool: pool}
}

func (r *PgMessageRepository) ListAll(ctx context.Context) ([]domain.Message, error) {
	return r.ListRecent(ctx, 0)
}

func (r *PgMessageRepository) ListRecent(ctx context.Context, limit int) ([]domain.Message, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if limit <= 0 {
		const query = `
			SELECT id, role, content, created_at
			FROM messages
			ORDER BY id ASC
		`
		rows, err = r.pool.Query(ctx, query)
	} else {
		const query = `
			SELECT id, role, content, created_at
			FROM (
				SELECT id, role, content, created_at
				FROM messages
				ORDER BY id DESC
				LIMIT $1
			) recent
			ORDER BY id ASC
		`
		rows, err = r.pool.Query(ctx, query, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]domain.Message, 0)
	for rows.Next() {
		var (
			msg  domain.Message
			role string
		)
		if err := rows.Scan(&msg.ID, &role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, err
		}
		msg.Role = domain.Role(role)
		msg.CreatedAt = msg.CreatedAt.UTC()
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return messages, nil
}

func (r *PgMessageRepository) AppendExchange(ctx context.Context, user, assistant domain.Message) error {
	const query = `
		INSERT INTO messages (role, content, created_at)
		VALUES ($1, $2, $3)
	`

	if err := domain.ValidateExchange(user, assistant); err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, msg := range []domain.Message{user, assistant} {
		if _, err := tx.Exec(ctx, query, string(msg.Role), msg.Content, msg.CreatedAt); err != nil {
			return fmt.Errorf("insert %s message: %w", msg.Role, err)
		}
	}

	return tx.Commit(ctx)
}
