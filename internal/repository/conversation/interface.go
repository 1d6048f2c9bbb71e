// File: internal/repository/conversation/interface.go
package conversation

import (
	"context"

	"github.com/solent-ai/genchat/internal/domain"
)

// ConversationRepository handles conversation persistence.
type ConversationRepository interface {
	Create(ctx context.Context, conv *domain.Conversation) (*domain.Conversation, error)
	FindByID(ctx context.Context, id uint) (*domain.Conversation, error)
	// FindByUserID returns the user's conversations, most recently
	// updated first.
	FindByUserID(ctx context.Context, userID uint) ([]domain.Conversation, error)
	// SetTitleIfEmpty assigns a title only when none is set yet and
	// reports whether this call won the assignment.
	SetTitleIfEmpty(ctx context.Context, convID uint, title string) (bool, error)
	TouchUpdatedAt(ctx context.Context, convID uint) error
	// Delete removes the conversation and all of its messages. A second
	// call for the same ID fails with ErrConversationNotFound.
	Delete(ctx context.Context, convID uint) error
}
