package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/solent-ai/genchat/internal/domain"
	"github.com/solent-ai/genchat/internal/middleware"
	"github.com/solent-ai/genchat/internal/repository/conversation"
	"github.com/solent-ai/genchat/internal/repository/message"
	"github.com/solent-ai/genchat/internal/repository/user"
	"github.com/solent-ai/genchat/internal/services"
	"github.com/solent-ai/genchat/internal/services/ai"
)

type testApp struct {
	router *mux.Router
	db     *gorm.DB
	token  string
	userID uint
}

// newTestApp wires the whole stack the way cmd/server does, against a
// throwaway database and a demo-mode AI service, and registers one user.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.Conversation{}, &domain.Message{}); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}

	logger := &services.NoOpLogger{}
	aiService, err := ai.NewService(ai.DefaultConfig(), logger)
	if err != nil {
		t.Fatalf("ai.NewService: %v", err)
	}
	chatService, err := services.NewChatService(
		conversation.NewConversationRepository(db),
		message.NewMessageRepository(db),
		aiService,
		logger,
	)
	if err != nil {
		t.Fatalf("NewChatService: %v", err)
	}
	userService := services.NewUserService(user.NewUserRepository(db), "test-secret", logger)

	authHandler := NewAuthHandler(userService)
	chatHandler := NewChatHandler(chatService)

	r := mux.NewRouter()
	r.HandleFunc("/api/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/api/login", authHandler.Login).Methods("POST")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.NewJWTMiddleware(userService, logger))
	api.HandleFunc("/profile", authHandler.GetProfile).Methods("GET")
	api.HandleFunc("/conversations", chatHandler.ListConversations).Methods("GET")
	api.HandleFunc("/conversations", chatHandler.CreateConversation).Methods("POST")
	api.HandleFunc("/conversations/{id:[0-9]+}/messages", chatHandler.GetMessages).Methods("GET")
	api.HandleFunc("/conversations/{id:[0-9]+}/messages", chatHandler.SendMessage).Methods("POST")
	api.HandleFunc("/conversations/{id:[0-9]+}", chatHandler.DeleteConversation).Methods("DELETE")
	api.HandleFunc("/messages", chatHandler.SendMessageLoose).Methods("POST")

	account, err := userService.Register(context.Background(), services.RegisterInput{
		Email:    "tester@example.com",
		Username: "tester",
		Password: "longenough",
	})
	if err != nil {
		t.Fatalf("registering test user: %v", err)
	}
	token, _, err := userService.Login(context.Background(), "tester@example.com", "longenough")
	if err != nil {
		t.Fatalf("logging in test user: %v", err)
	}

	return &testApp{router: r, db: db, token: token, userID: account.ID}
}

func (app *testApp) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+app.token)
	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestSendMessageEndToEnd(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/api/messages", map[string]interface{}{"message": "hello"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	if body["success"] != true {
		t.Fatalf("expected success=true, got %v", body["success"])
	}
	if body["conversation_title"] != "hello" {
		t.Fatalf("expected title %q, got %v", "hello", body["conversation_title"])
	}
	userMsg, _ := body["user_message"].(map[string]interface{})
	aiMsg, _ := body["ai_message"].(map[string]interface{})
	if userMsg["content"] != "hello" {
		t.Fatalf("expected echoed user message, got %v", userMsg)
	}
	if aiMsg["content"] == "" || aiMsg["content"] == nil {
		t.Fatalf("expected assistant reply, got %v", aiMsg)
	}
	if aiMsg["content_html"] == "" || aiMsg["content_html"] == nil {
		t.Fatalf("expected rendered assistant HTML, got %v", aiMsg)
	}
	if userMsg["created_at"] == nil || userMsg["id"] == nil {
		t.Fatalf("expected id and created_at on user message, got %v", userMsg)
	}
}

func TestSendEmptyMessageIsBadRequest(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/api/messages", map[string]interface{}{"message": "   "})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] == nil {
		t.Fatalf("expected error string in body, got %v", body)
	}

	var total int64
	if err := app.db.Model(&domain.Message{}).Count(&total).Error; err != nil {
		t.Fatalf("counting messages: %v", err)
	}
	if total != 0 {
		t.Fatalf("expected no persisted messages, got %d", total)
	}
}

func TestConversationLifecycle(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/api/conversations", map[string]interface{}{"initial_message": "what can you do"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	convID := uint(decodeBody(t, rec)["conversation_id"].(float64))

	rec = app.do(t, http.MethodGet, fmt.Sprintf("/api/conversations/%d/messages", convID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var history []map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &history); err != nil {
		t.Fatalf("decoding history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(history))
	}
	if history[0]["is_from_user"] != true || history[1]["is_from_user"] != false {
		t.Fatalf("expected user turn then assistant turn, got %v", history)
	}

	rec = app.do(t, http.MethodGet, "/api/conversations", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"title"`) {
		t.Fatalf("expected conversation listing with titles, got %s", rec.Body.String())
	}

	rec = app.do(t, http.MethodDelete, fmt.Sprintf("/api/conversations/%d", convID), nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	rec = app.do(t, http.MethodDelete, fmt.Sprintf("/api/conversations/%d", convID), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", rec.Code)
	}
}

func TestForeignConversationIsNotFound(t *testing.T) {
	app := newTestApp(t)

	// A conversation owned by someone else entirely.
	other := &domain.Conversation{UserID: app.userID + 100}
	if err := app.db.Create(other).Error; err != nil {
		t.Fatalf("seeding foreign conversation: %v", err)
	}

	rec := app.do(t, http.MethodGet, fmt.Sprintf("/api/conversations/%d/messages", other.ID), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign conversation, got %d", rec.Code)
	}
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/conversations", nil)
	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRegisterAndLoginFlow(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/register", strings.NewReader(
		`{"email":"second@example.com","username":"second","password":"longenough"}`))
	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if decodeBody(t, rec)["token"] == nil {
		t.Fatalf("expected token in register response")
	}

	// Duplicate email is a conflict.
	req = httptest.NewRequest(http.MethodPost, "/api/register", strings.NewReader(
		`{"email":"second@example.com","username":"third","password":"longenough"}`))
	rec = httptest.NewRecorder()
	app.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d: %s", rec.Code, rec.Body.String())
	}

	// Wrong password is unauthorized.
	req = httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(
		`{"email":"second@example.com","password":"wrongpassword"}`))
	rec = httptest.NewRecorder()
	app.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad password, got %d", rec.Code)
	}
}
