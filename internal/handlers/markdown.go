// File: internal/handlers/markdown.go
package handlers

import (
	"bytes"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/solent-ai/genchat/internal/domain"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// renderMarkdown converts assistant markdown to HTML. On a rendering
// failure the raw text is better than nothing.
func renderMarkdown(content string) string {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(content), &buf); err != nil {
		return content
	}
	return buf.String()
}

// messageJSON is the wire shape of one message. Assistant turns carry a
// rendered HTML body alongside the raw markdown.
type messageJSON struct {
	ID          uint      `json:"id"`
	Content     string    `json:"content"`
	ContentHTML string    `json:"content_html,omitempty"`
	IsFromUser  bool      `json:"is_from_user"`
	CreatedAt   time.Time `json:"created_at"`
}

func toMessageJSON(m *domain.Message) messageJSON {
	out := messageJSON{
		ID:         m.ID,
		Content:    m.Content,
		IsFromUser: m.IsFromUser,
		CreatedAt:  m.CreatedAt,
	}
	if !m.IsFromUser {
		out.ContentHTML = renderMarkdown(m.Content)
	}
	return out
}

func toMessageList(messages []domain.Message) []messageJSON {
	out := make([]messageJSON, len(messages))
	for i := range messages {
		out[i] = toMessageJSON(&messages[i])
	}
	return out
}
