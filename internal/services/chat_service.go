// File: internal/services/chat_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/solent-ai/genchat/internal/domain"
	"github.com/solent-ai/genchat/internal/repository/conversation"
	"github.com/solent-ai/genchat/internal/repository/message"
	"github.com/solent-ai/genchat/internal/services/ai"
)

// SendResult carries everything a send response needs: both persisted
// turns plus the conversation's possibly newly assigned title.
type SendResult struct {
	Conversation     *domain.Conversation
	UserMessage      *domain.Message
	AssistantMessage *domain.Message
}

// ChatService orchestrates conversation and message persistence around
// the AI proxy.
type ChatService struct {
	conversationRepo conversation.ConversationRepository
	messageRepo      message.MessageRepository
	ai               *ai.Service
	logger           Logger
}

func NewChatService(
	conversationRepo conversation.ConversationRepository,
	messageRepo message.MessageRepository,
	aiService *ai.Service,
	logger Logger,
) (*ChatService, error) {
	if conversationRepo == nil {
		return nil, errors.New("conversation repository is required")
	}
	if messageRepo == nil {
		return nil, errors.New("message repository is required")
	}
	if aiService == nil {
		return nil, errors.New("AI service is required")
	}
	if logger == nil {
		logger = &NoOpLogger{}
	}
	return &ChatService{
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		ai:               aiService,
		logger:           logger,
	}, nil
}

// CreateConversation starts an empty, untitled conversation.
func (s *ChatService) CreateConversation(ctx context.Context, userID uint) (*domain.Conversation, error) {
	conv, err := s.conversationRepo.Create(ctx, &domain.Conversation{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("creating conversation: %w", err)
	}
	return conv, nil
}

// GetUserConversations lists the user's conversations, most recently
// updated first.
func (s *ChatService) GetUserConversations(ctx context.Context, userID uint) ([]domain.Conversation, error) {
	return s.conversationRepo.FindByUserID(ctx, userID)
}

// GetConversationMessages returns the chronological history of a
// conversation the user owns. A foreign conversation looks identical to
// a missing one.
func (s *ChatService) GetConversationMessages(ctx context.Context, userID, convID uint) ([]domain.Message, error) {
	if _, err := s.ownedConversation(ctx, userID, convID); err != nil {
		return nil, err
	}
	return s.messageRepo.FindByConversationID(ctx, convID)
}

// SendMessage persists a user turn, obtains the assistant's reply,
// persists that too, and assigns a title to a still-untitled
// conversation. convID zero means "start a new conversation first".
func (s *ChatService) SendMessage(ctx context.Context, userID, convID uint, content string) (*SendResult, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyMessage
	}

	var conv *domain.Conversation
	var err error
	if convID == 0 {
		if conv, err = s.CreateConversation(ctx, userID); err != nil {
			return nil, err
		}
	} else if conv, err = s.ownedConversation(ctx, userID, convID); err != nil {
		return nil, err
	}

	// History is captured before the new turn lands, so the prompt's
	// window holds only prior messages.
	history, err := s.messageRepo.FindRecent(ctx, conv.ID, 0)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}

	userMsg, err := s.messageRepo.Create(ctx, &domain.Message{
		ConversationID: conv.ID,
		Content:        content,
		IsFromUser:     true,
	})
	if err != nil {
		if errors.Is(err, message.ErrEmptyMessage) {
			return nil, ErrEmptyMessage
		}
		return nil, fmt.Errorf("saving user message: %w", err)
	}

	// Never an error: upstream failures come back as fallback text and
	// are stored like any other assistant turn.
	reply := s.ai.GenerateResponse(ctx, content, history)

	assistantMsg, err := s.messageRepo.Create(ctx, &domain.Message{
		ConversationID: conv.ID,
		Content:        reply,
		IsFromUser:     false,
	})
	if err != nil {
		return nil, fmt.Errorf("saving assistant message: %w", err)
	}

	if err := s.conversationRepo.TouchUpdatedAt(ctx, conv.ID); err != nil {
		s.logger.Warn("could not refresh conversation timestamp", "conversation_id", conv.ID, "error", err.Error())
	}

	if conv.Title == "" {
		s.assignTitle(ctx, conv, content)
	}

	return &SendResult{Conversation: conv, UserMessage: userMsg, AssistantMessage: assistantMsg}, nil
}

// DeleteConversation removes a conversation and its messages. Deleting
// an already-deleted conversation fails with ErrConversationNotFound.
func (s *ChatService) DeleteConversation(ctx context.Context, userID, convID uint) error {
	if _, err := s.ownedConversation(ctx, userID, convID); err != nil {
		return err
	}
	if err := s.conversationRepo.Delete(ctx, convID); err != nil {
		if errors.Is(err, conversation.ErrConversationNotFound) {
			return ErrConversationNotFound
		}
		return err
	}
	return nil
}

// assignTitle runs the once-only title assignment. The repository CAS
// decides the winner under concurrent sends; a loss just means another
// request already titled the conversation.
func (s *ChatService) assignTitle(ctx context.Context, conv *domain.Conversation, firstMessage string) {
	title := s.ai.GenerateTitle(ctx, firstMessage)
	won, err := s.conversationRepo.SetTitleIfEmpty(ctx, conv.ID, title)
	if err != nil {
		s.logger.Error("title assignment failed", "conversation_id", conv.ID, "error", err.Error())
		return
	}
	if won {
		conv.Title = title
		return
	}
	if current, err := s.conversationRepo.FindByID(ctx, conv.ID); err == nil {
		conv.Title = current.Title
	}
}

func (s *ChatService) ownedConversation(ctx context.Context, userID, convID uint) (*domain.Conversation, error) {
	conv, err := s.conversationRepo.FindByID(ctx, convID)
	if err != nil {
		if errors.Is(err, conversation.ErrConversationNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	if conv.UserID != userID {
		return nil, ErrConversationNotFound
	}
	return conv, nil
}
