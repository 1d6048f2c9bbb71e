// File: internal/repository/message/message_repository.go
package message

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/solent-ai/genchat/internal/domain"
)

var ErrEmptyMessage = errors.New("message content cannot be empty")

type gormMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &gormMessageRepository{db: db}
}

// Create appends a message. User-authored turns with empty or
// whitespace-only content are rejected; assistant turns are not, the
// service upstream never submits an empty reply.
func (r *gormMessageRepository) Create(ctx context.Context, message *domain.Message) (*domain.Message, error) {
	if message.ConversationID == 0 {
		return nil, errors.New("invalid conversation ID")
	}
	if message.IsFromUser && strings.TrimSpace(message.Content) == "" {
		return nil, ErrEmptyMessage
	}

	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return nil, err
	}
	return message, nil
}

func (r *gormMessageRepository) FindByConversationID(ctx context.Context, convID uint) ([]domain.Message, error) {
	if convID == 0 {
		return nil, errors.New("invalid conversation ID")
	}
	var messages []domain.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", convID).
		Order("created_at asc, id asc").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *gormMessageRepository) FindRecent(ctx context.Context, convID uint, limit int) ([]domain.Message, error) {
	if convID == 0 {
		return nil, errors.New("invalid conversation ID")
	}
	if limit <= 0 {
		return r.FindByConversationID(ctx, convID)
	}

	var messages []domain.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", convID).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	// Back into chronological order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *gormMessageRepository) CountByConversationID(ctx context.Context, convID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("conversation_id = ?", convID).
		Count(&total).Error
	return total, err
}
