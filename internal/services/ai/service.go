// File: internal/services/ai/service.go
package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/solent-ai/genchat/internal/domain"
)

const (
	systemPrompt = "You are a helpful AI assistant. Be conversational, informative, and friendly."
	titlePrompt  = "Generate a short, descriptive title (max 5 words) for a conversation that starts with the following message:"

	// historyWindow caps how many prior turns travel with each request.
	historyWindow = 10

	maxTitleLength      = 50
	titleFallbackLength = 30
)

const formatErrorReply = "I'm sorry, I received an unexpected response format from the AI service."

// Service proxies message history to an OpenAI-compatible chat
// completions endpoint. All failure paths degrade into user-facing
// text; GenerateResponse and GenerateTitle never return errors.
type Service struct {
	config *Config
	client *openai.Client
	logger Logger
}

func NewService(config *Config, logger Logger) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = nopLogger{}
	}

	s := &Service{config: config, logger: logger}
	if config.APIKey == "" {
		logger.Warn("no AI API key configured, running in demo mode")
		return s, nil
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{Timeout: config.Timeout}
	s.client = openai.NewClientWithConfig(clientConfig)
	return s, nil
}

// GenerateResponse produces the assistant's reply to message, given the
// prior turns of the conversation in chronological order. Only the most
// recent historyWindow turns are sent upstream.
func (s *Service) GenerateResponse(ctx context.Context, message string, history []domain.Message) string {
	if s.client == nil {
		return fallbackResponse(message)
	}

	reply, err := s.complete(ctx, "generate_response", s.buildPrompt(message, history))
	if err != nil {
		s.logger.Error("completion request failed", "error", err.Error())
		if aiErr, ok := err.(*AIError); ok && aiErr.Type == ErrTypeFormat {
			return formatErrorReply
		}
		return fmt.Sprintf("I'm sorry, I'm having trouble responding right now. Error: %v", unwrapCause(err))
	}
	return reply
}

// GenerateTitle derives a conversation title from its first user
// message: an AI-written one when possible, a plain truncation when not.
func (s *Service) GenerateTitle(ctx context.Context, firstMessage string) string {
	if s.client == nil {
		return truncateWithEllipsis(firstMessage, titleFallbackLength)
	}

	prompt := []openai.ChatCompletionMessage{
		{Role: domain.RoleSystem, Content: titlePrompt},
		{Role: domain.RoleUser, Content: firstMessage},
	}
	title, err := s.complete(ctx, "generate_title", prompt)
	if err != nil {
		s.logger.Error("title generation failed", "error", err.Error())
		return truncateWithEllipsis(firstMessage, titleFallbackLength)
	}

	title = strings.ReplaceAll(title, `"`, "")
	title = strings.ReplaceAll(title, "'", "")
	if runes := []rune(title); len(runes) > maxTitleLength {
		title = string(runes[:maxTitleLength])
	}
	return title
}

// buildPrompt assembles system instruction, the recent history window in
// chronological order, and finally the new user message.
func (s *Service) buildPrompt(message string, history []domain.Message) []openai.ChatCompletionMessage {
	prompt := make([]openai.ChatCompletionMessage, 0, historyWindow+2)
	prompt = append(prompt, openai.ChatCompletionMessage{Role: domain.RoleSystem, Content: systemPrompt})

	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	for _, msg := range history {
		prompt = append(prompt, openai.ChatCompletionMessage{Role: msg.Role(), Content: msg.Content})
	}

	return append(prompt, openai.ChatCompletionMessage{Role: domain.RoleUser, Content: message})
}

// complete issues the single synchronous upstream call. No retries.
func (s *Service) complete(ctx context.Context, operation string, prompt []openai.ChatCompletionMessage) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    s.config.Model,
		Messages: prompt,
	})
	if err != nil {
		return "", NewProviderError(operation, "completion request failed", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", NewFormatError(operation, "response has no usable choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func unwrapCause(err error) error {
	if aiErr, ok := err.(*AIError); ok && aiErr.Cause != nil {
		return aiErr.Cause
	}
	return err
}
