package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Sender is a closed set: a message is written by the customer or by the model.
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

func (s Sender) Valid() bool {
	return s == SenderUser || s == SenderAI
}

// ReplyStatus tracks whether a user message got its reply. AI messages leave it empty.
type ReplyStatus string

const (
	ReplyPending  ReplyStatus = "pending"
	ReplyAnswered ReplyStatus = "answered"
	ReplyFailed   ReplyStatus = "failed"
)

type Message struct {
	ID             uuid.UUID    `json:"id" gorm:"type:uuid;primaryKey"`
	ConversationID uuid.UUID    `json:"conversation_id" gorm:"type:uuid;not null;index:idx_messages_conversation_created,priority:1"`
	Conversation   Conversation `json:"-" gorm:"foreignKey:ConversationID;references:ID;constraint:OnDelete:CASCADE"`
	Sender         Sender       `json:"sender" gorm:"type:varchar(10);not null"`
	Text           string       `json:"text" gorm:"type:text;not null"`
	ReplyStatus    ReplyStatus  `json:"reply_status,omitempty" gorm:"type:varchar(20);not null;default:''"`
	CreatedAt      time.Time    `json:"created_at" gorm:"not null;index:idx_messages_conversation_created,priority:2"`
}

func (Message) TableName() string {
	return "messages"
}

func (m *Message) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		// v7 ids are time ordered and break created_at ties in insertion order
		m.ID, err = uuid.NewV7()
		if err != nil {
			return err
		}
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	return nil
}
