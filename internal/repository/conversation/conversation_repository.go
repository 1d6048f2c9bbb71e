// File: internal/repository/conversation/conversation_repository.go
package conversation

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/solent-ai/genchat/internal/domain"
)

var ErrConversationNotFound = errors.New("conversation not found")

const maxTitleLength = 200

type gormConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &gormConversationRepository{db: db}
}

func (r *gormConversationRepository) Create(ctx context.Context, conv *domain.Conversation) (*domain.Conversation, error) {
	if conv.UserID == 0 {
		return nil, errors.New("invalid user ID")
	}
	if len(conv.Title) > maxTitleLength {
		conv.Title = conv.Title[:maxTitleLength]
	}
	if err := r.db.WithContext(ctx).Create(conv).Error; err != nil {
		return nil, err
	}
	return conv, nil
}

func (r *gormConversationRepository) FindByID(ctx context.Context, id uint) (*domain.Conversation, error) {
	if id == 0 {
		return nil, ErrConversationNotFound
	}
	var conv domain.Conversation
	err := r.db.WithContext(ctx).First(&conv, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	return &conv, nil
}

func (r *gormConversationRepository) FindByUserID(ctx context.Context, userID uint) ([]domain.Conversation, error) {
	var convs []domain.Conversation
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at desc").
		Find(&convs).Error
	if err != nil {
		return nil, err
	}
	return convs, nil
}

// SetTitleIfEmpty is a compare-and-set: two racing sends on a fresh
// conversation cannot both assign a title, only the winner's sticks.
func (r *gormConversationRepository) SetTitleIfEmpty(ctx context.Context, convID uint, title string) (bool, error) {
	if len(title) > maxTitleLength {
		title = title[:maxTitleLength]
	}
	res := r.db.WithContext(ctx).
		Model(&domain.Conversation{}).
		Where("id = ? AND (title = '' OR title IS NULL)", convID).
		Update("title", title)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *gormConversationRepository) TouchUpdatedAt(ctx context.Context, convID uint) error {
	return r.db.WithContext(ctx).
		Model(&domain.Conversation{}).
		Where("id = ?", convID).
		Update("updated_at", time.Now()).Error
}

func (r *gormConversationRepository) Delete(ctx context.Context, convID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("conversation_id = ?", convID).Delete(&domain.Message{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.Conversation{}, convID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConversationNotFound
		}
		return nil
	})
}
