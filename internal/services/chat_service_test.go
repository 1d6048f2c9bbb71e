package services

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/solent-ai/genchat/internal/domain"
	"github.com/solent-ai/genchat/internal/repository/conversation"
	"github.com/solent-ai/genchat/internal/repository/message"
	"github.com/solent-ai/genchat/internal/services/ai"
)

// newTestChatService wires a ChatService over a throwaway sqlite file
// and a demo-mode AI service, so replies are deterministic canned text.
func newTestChatService(t *testing.T) (*ChatService, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.Conversation{}, &domain.Message{}); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}

	aiService, err := ai.NewService(ai.DefaultConfig(), &NoOpLogger{})
	if err != nil {
		t.Fatalf("ai.NewService: %v", err)
	}

	svc, err := NewChatService(
		conversation.NewConversationRepository(db),
		message.NewMessageRepository(db),
		aiService,
		&NoOpLogger{},
	)
	if err != nil {
		t.Fatalf("NewChatService: %v", err)
	}
	return svc, db
}

func TestSendMessagePersistsBothTurns(t *testing.T) {
	svc, db := newTestChatService(t)
	ctx := context.Background()

	res, err := svc.SendMessage(ctx, 1, 0, "hello")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if res.Conversation.ID == 0 {
		t.Fatalf("expected a new conversation to be created")
	}
	if !res.UserMessage.IsFromUser || res.AssistantMessage.IsFromUser {
		t.Fatalf("author flags wrong: user=%v assistant=%v", res.UserMessage.IsFromUser, res.AssistantMessage.IsFromUser)
	}
	if res.AssistantMessage.Content == "" {
		t.Fatalf("expected non-empty assistant reply")
	}

	var total int64
	if err := db.Model(&domain.Message{}).Where("conversation_id = ?", res.Conversation.ID).Count(&total).Error; err != nil {
		t.Fatalf("counting messages: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 persisted messages, got %d", total)
	}
}

func TestSendMessageRejectsEmptyContent(t *testing.T) {
	svc, db := newTestChatService(t)
	ctx := context.Background()

	conv, err := svc.CreateConversation(ctx, 1)
	if err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}

	if _, err := svc.SendMessage(ctx, 1, conv.ID, "   \n"); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}

	var total int64
	if err := db.Model(&domain.Message{}).Count(&total).Error; err != nil {
		t.Fatalf("counting messages: %v", err)
	}
	if total != 0 {
		t.Fatalf("expected no persisted messages after rejection, got %d", total)
	}
}

func TestTitleAssignedOnceOnly(t *testing.T) {
	svc, _ := newTestChatService(t)
	ctx := context.Background()

	firstContent := strings.Repeat("z", 40)
	res, err := svc.SendMessage(ctx, 1, 0, firstContent)
	if err != nil {
		t.Fatalf("first SendMessage: %v", err)
	}
	wantTitle := firstContent[:30] + "..."
	if res.Conversation.Title != wantTitle {
		t.Fatalf("expected title %q, got %q", wantTitle, res.Conversation.Title)
	}

	res2, err := svc.SendMessage(ctx, 1, res.Conversation.ID, "a very different second message")
	if err != nil {
		t.Fatalf("second SendMessage: %v", err)
	}
	if res2.Conversation.Title != wantTitle {
		t.Fatalf("expected title to survive second send, got %q", res2.Conversation.Title)
	}
}

func TestForeignConversationLooksMissing(t *testing.T) {
	svc, _ := newTestChatService(t)
	ctx := context.Background()

	conv, err := svc.CreateConversation(ctx, 1)
	if err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}

	if _, err := svc.SendMessage(ctx, 2, conv.ID, "hi"); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("expected ErrConversationNotFound for foreign send, got %v", err)
	}
	if _, err := svc.GetConversationMessages(ctx, 2, conv.ID); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("expected ErrConversationNotFound for foreign read, got %v", err)
	}
	if err := svc.DeleteConversation(ctx, 2, conv.ID); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("expected ErrConversationNotFound for foreign delete, got %v", err)
	}
}

func TestDeleteConversationTwice(t *testing.T) {
	svc, _ := newTestChatService(t)
	ctx := context.Background()

	res, err := svc.SendMessage(ctx, 1, 0, "hello")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	if err := svc.DeleteConversation(ctx, 1, res.Conversation.ID); err != nil {
		t.Fatalf("DeleteConversation: %v", err)
	}
	if err := svc.DeleteConversation(ctx, 1, res.Conversation.ID); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("expected ErrConversationNotFound on second delete, got %v", err)
	}
}

func TestHistoryReadBackInAppendOrder(t *testing.T) {
	svc, _ := newTestChatService(t)
	ctx := context.Background()

	res, err := svc.SendMessage(ctx, 1, 0, "first question")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if _, err := svc.SendMessage(ctx, 1, res.Conversation.ID, "second question"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	history, err := svc.GetConversationMessages(ctx, 1, res.Conversation.ID)
	if err != nil {
		t.Fatalf("GetConversationMessages: %v", err)
	}
	if len(history) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(history))
	}
	if history[0].Content != "first question" || history[2].Content != "second question" {
		t.Fatalf("history out of append order: %q / %q", history[0].Content, history[2].Content)
	}
	for i, msg := range history {
		wantUser := i%2 == 0
		if msg.IsFromUser != wantUser {
			t.Fatalf("position %d: expected is_from_user=%v", i, wantUser)
		}
	}
}
