// File: internal/handlers/chat_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/solent-ai/genchat/internal/middleware"
	"github.com/solent-ai/genchat/internal/services"
)

// ChatHandler exposes the conversation and message endpoints.
type ChatHandler struct {
	ChatService *services.ChatService
}

func NewChatHandler(chatService *services.ChatService) *ChatHandler {
	return &ChatHandler{ChatService: chatService}
}

// ListConversations returns the caller's conversations, most recently
// updated first.
func (h *ChatHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		writeError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	convs, err := h.ChatService.GetUserConversations(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, convs)
}

type createConversationRequest struct {
	InitialMessage string `json:"initial_message"`
}

// CreateConversation starts a conversation. When an initial message is
// supplied it is processed as a full send, so the response already
// carries the assistant's reply and the derived title.
func (h *ChatHandler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		writeError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req createConversationRequest
	// An empty body means "empty conversation"; a malformed one is
	// still a client error.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.InitialMessage != "" {
		result, err := h.ChatService.SendMessage(r.Context(), userID, 0, req.InitialMessage)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, sendResponse(result))
		return
	}

	conv, err := h.ChatService.CreateConversation(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success":         true,
		"conversation_id": conv.ID,
		"conversation":    conv,
	})
}

// GetMessages returns a conversation's history in chronological order.
func (h *ChatHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		writeError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	convID, err := pathID(r)
	if err != nil {
		writeError(w, "invalid conversation ID", http.StatusBadRequest)
		return
	}

	messages, err := h.ChatService.GetConversationMessages(r.Context(), userID, convID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMessageList(messages))
}

type sendMessageRequest struct {
	Message        string `json:"message"`
	ConversationID uint   `json:"conversation_id"`
}

// SendMessage posts a message to the conversation in the path.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		writeError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	convID, err := pathID(r)
	if err != nil {
		writeError(w, "invalid conversation ID", http.StatusBadRequest)
		return
	}

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.ChatService.SendMessage(r.Context(), userID, convID, req.Message)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sendResponse(result))
}

// SendMessageLoose posts a message with an optional conversation_id in
// the body; a missing one starts a new conversation first.
func (h *ChatHandler) SendMessageLoose(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		writeError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.ChatService.SendMessage(r.Context(), userID, req.ConversationID, req.Message)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sendResponse(result))
}

// DeleteConversation removes a conversation and its messages.
func (h *ChatHandler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		writeError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	convID, err := pathID(r)
	if err != nil {
		writeError(w, "invalid conversation ID", http.StatusBadRequest)
		return
	}

	if err := h.ChatService.DeleteConversation(r.Context(), userID, convID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func sendResponse(result *services.SendResult) map[string]interface{} {
	return map[string]interface{}{
		"success":            true,
		"conversation_id":    result.Conversation.ID,
		"user_message":       toMessageJSON(result.UserMessage),
		"ai_message":         toMessageJSON(result.AssistantMessage),
		"conversation_title": result.Conversation.Title,
	}
}

func pathID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	return uint(id), err
}
