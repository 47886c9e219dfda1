// helpdesk/sources/psql/dao/dao.conversation.go
package dao

import (
	"context"
	"errors"
	"fmt"
	"helpdesk/helpdesk/sources/psql/models"
	"helpdesk/helpdesk/utils/logging"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ConversationDAO struct {
	DB *gorm.DB
}

func NewConversationDAO(db *gorm.DB) *ConversationDAO {
	return &ConversationDAO{DB: db}
}

// CreateConversation inserts an empty conversation and returns it with its new id.
func (dao *ConversationDAO) CreateConversation(ctx context.Context) (*models.Conversation, error) {
	defer logging.LogDuration(ctx, "dao_create_conversation")()
	conv := models.Conversation{}
	if err := dao.DB.WithContext(ctx).Create(&conv).Error; err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	return &conv, nil
}

// FindConversation returns nil, nil when the id does not exist.
func (dao *ConversationDAO) FindConversation(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	defer logging.LogDuration(ctx, "dao_find_conversation")()
	var conv models.Conversation
	err := dao.DB.WithContext(ctx).First(&conv, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find conversation: %w", err)
	}
	return &conv, nil
}

// FindConversationWithMessages loads the conversation and its most recent
// messages, oldest first. limit <= 0 loads everything. Returns nil, nil when
// the conversation does not exist.
func (dao *ConversationDAO) FindConversationWithMessages(ctx context.Context, id uuid.UUID, limit int) (*models.Conversation, error) {
	defer logging.LogDuration(ctx, "dao_find_conversation_with_messages")()
	var conv models.Conversation
	err := dao.DB.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			db = db.Order("created_at DESC, id DESC")
			if limit > 0 {
				db = db.Limit(limit)
			}
			return db
		}).
		First(&conv, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find conversation with messages: %w", err)
	}
	reverse(conv.Messages)
	return &conv, nil
}

// TouchConversation bumps updated_at.
func (dao *ConversationDAO) TouchConversation(ctx context.Context, id uuid.UUID) error {
	err := dao.DB.WithContext(ctx).
		Model(&models.Conversation{}).
		Where("id = ?", id).
		Update("updated_at", time.Now().UTC()).Error
	if err != nil {
		return fmt.Errorf("touch conversation: %w", err)
	}
	return nil
}
