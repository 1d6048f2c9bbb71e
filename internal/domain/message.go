// File: internal/domain/message.go
package domain

import "time"

// Chat roles as the completions API expects them.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is one immutable turn in a conversation. Display and prompt
// order is (CreatedAt, ID) ascending; the autoincrement ID breaks ties
// when the timestamp resolution is too coarse to separate two appends.
type Message struct {
	ID             uint      `json:"id" gorm:"primarykey"`
	ConversationID uint      `json:"conversation_id" gorm:"not null;index"`
	Content        string    `json:"content" gorm:"type:text;not null"`
	IsFromUser     bool      `json:"is_from_user"`
	CreatedAt      time.Time `json:"created_at"`
}

// Role maps the author flag onto the wire-level role string.
func (m *Message) Role() string {
	if m.IsFromUser {
		return RoleUser
	}
	return RoleAssistant
}
