package dao

import (
	"context"
	"fmt"
	"helpdesk/helpdesk/sources/psql/models"
	"helpdesk/helpdesk/utils/logging"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MessageDAO struct {
	DB *gorm.DB
}

func NewMessageDAO(db *gorm.DB) *MessageDAO {
	return &MessageDAO{DB: db}
}

// CreateMessage appends one message. User messages start out pending.
func (dao *MessageDAO) CreateMessage(ctx context.Context, conversationID uuid.UUID, sender models.Sender, text string) (*models.Message, error) {
	defer logging.LogDuration(ctx, "dao_create_message")()
	if !sender.Valid() {
		return nil, fmt.Errorf("create message: unknown sender %q", sender)
	}
	msg := models.Message{
		ConversationID: conversationID,
		Sender:         sender,
		Text:           text,
	}
	if sender == models.SenderUser {
		msg.ReplyStatus = models.ReplyPending
	}
	if err := dao.DB.WithContext(ctx).Omit(clause.Associations).Create(&msg).Error; err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	return &msg, nil
}

// CreateReply writes the ai message and marks the user message it answers,
// both or neither.
func (dao *MessageDAO) CreateReply(ctx context.Context, conversationID, answers uuid.UUID, text string) (*models.Message, error) {
	defer logging.LogDuration(ctx, "dao_create_reply")()
	reply := models.Message{
		ConversationID: conversationID,
		Sender:         models.SenderAI,
		Text:           text,
	}
	err := dao.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&reply).Error; err != nil {
			return err
		}
		return tx.Model(&models.Message{}).
			Where("id = ? AND sender = ?", answers, models.SenderUser).
			Update("reply_status", models.ReplyAnswered).Error
	})
	if err != nil {
		return nil, fmt.Errorf("create reply: %w", err)
	}
	return &reply, nil
}

func (dao *MessageDAO) SetReplyStatus(ctx context.Context, id uuid.UUID, status models.ReplyStatus) error {
	err := dao.DB.WithContext(ctx).
		Model(&models.Message{}).
		Where("id = ? AND sender = ?", id, models.SenderUser).
		Update("reply_status", status).Error
	if err != nil {
		return fmt.Errorf("set reply status: %w", err)
	}
	return nil
}

// ListRecentMessages returns the newest limit messages of a conversation in
// ascending creation order.
func (dao *MessageDAO) ListRecentMessages(ctx context.Context, conversationID uuid.UUID, limit int) ([]models.Message, error) {
	defer logging.LogDuration(ctx, "dao_list_recent_messages")()
	var msgs []models.Message
	q := dao.DB.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	reverse(msgs)
	return msgs, nil
}

// ListUnansweredMessages returns user messages still waiting for a reply or
// whose reply failed, oldest first.
func (dao *MessageDAO) ListUnansweredMessages(ctx context.Context, conversationID uuid.UUID) ([]models.Message, error) {
	var msgs []models.Message
	err := dao.DB.WithContext(ctx).
		Where("conversation_id = ? AND sender = ? AND reply_status IN ?", conversationID, models.SenderUser,
			[]models.ReplyStatus{models.ReplyPending, models.ReplyFailed}).
		Order("created_at ASC, id ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("list unanswered messages: %w", err)
	}
	return msgs, nil
}

func reverse(msgs []models.Message) {
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
}
