package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"relay-llm/internal/db"
	"relay-llm/internal/domain"
)

// GormMessageRepository guarda el historial en la base SQLite local vía GORM.
type GormMessageRepository struct {
	db *gorm.DB
}

func NewGormMessageRepository(gdb *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: gdb}
}

func (r *GormMessageRepository) ListAll(ctx context.Context) ([]domain.Message, error) {
	return r.ListRecent(ctx, 0)
}

func (r *GormMessageRepository) ListRecent(ctx context.Context, limit int) ([]domain.Message, error) {
	var records []db.MessageRecord
	q := r.db.WithContext(ctx)
	if limit > 0 {
		q = q.Order("id DESC").Limit(limit)
	} else {
		q = q.Order("id ASC")
	}
	if err := q.Find(&records).Error; err != nil {
		return nil, err
	}

	messages := make([]domain.Message, len(records))
	for i, rec := range records {
		idx := i
		if limit > 0 {
			idx = len(records) - 1 - i
		}
		messages[idx] = toDomainMessage(rec)
	}
	return messages, nil
}

func (r *GormMessageRepository) AppendExchange(ctx context.Context, user, assistant domain.Message) error {
	if err := domain.ValidateExchange(user, assistant); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, msg := range []domain.Message{user, assistant} {
			rec := db.MessageRecord{
				Role:      string(msg.Role),
				Content:   msg.Content,
				CreatedAt: msg.CreatedAt,
			}
			if err := tx.Create(&rec).Error; err != nil {
				return fmt.Errorf("insert %s message: %w", msg.Role, err)
			}
		}
		return nil
	})
}

func toDomainMessage(rec db.MessageRecord) domain.Message {
	return domain.Message{
		ID:        rec.ID,
		Role:      domain.Role(rec.Role),
		Content:   rec.Content,
		CreatedAt: rec.CreatedAt.UTC(),
	}
}
