// File: internal/domain/conversation.go
package domain

import "time"

// Conversation is a single chat thread owned by one user. Title may be
// empty until the first exchange completes; listings order by UpdatedAt
// descending so the most recently active thread comes first.
type Conversation struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	UserID    uint      `json:"-" gorm:"not null;index"`
	Title     string    `json:"title" gorm:"size:200"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
