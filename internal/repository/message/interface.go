// File: internal/repository/message/interface.go
package message

import (
	"context"

	"github.com/solent-ai/genchat/internal/domain"
)

// MessageRepository handles message persistence. Messages are immutable
// once created; there is deliberately no update method.
type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) (*domain.Message, error)
	// FindByConversationID returns the full history in chronological
	// order: (created_at, id) ascending.
	FindByConversationID(ctx context.Context, convID uint) ([]domain.Message, error)
	// FindRecent returns the most recent limit messages, re-ordered
	// ascending so the caller can hand them straight to the prompt
	// builder.
	FindRecent(ctx context.Context, convID uint, limit int) ([]domain.Message, error)
	CountByConversationID(ctx context.Context, convID uint) (int64, error)
}
