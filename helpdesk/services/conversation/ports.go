package conversation

import (
	"context"

	"helpdesk/helpdesk/services/llm"
	"helpdesk/helpdesk/sources/cache"
	"helpdesk/helpdesk/sources/psql/models"

	"github.com/google/uuid"
)

// ConversationStore is the conversation half of the persistence layer.
type ConversationStore interface {
	CreateConversation(ctx context.Context) (*models.Conversation, error)
	FindConversation(ctx context.Context, id uuid.UUID) (*models.Conversation, error)
	FindConversationWithMessages(ctx context.Context, id uuid.UUID, limit int) (*models.Conversation, error)
	TouchConversation(ctx context.Context, id uuid.UUID) error
}

// MessageStore is the message half of the persistence layer.
type MessageStore interface {
	CreateMessage(ctx context.Context, conversationID uuid.UUID, sender models.Sender, text string) (*models.Message, error)
	CreateReply(ctx context.Context, conversationID, answers uuid.UUID, text string) (*models.Message, error)
	SetReplyStatus(ctx context.Context, id uuid.UUID, status models.ReplyStatus) error
	ListRecentMessages(ctx context.Context, conversationID uuid.UUID, limit int) ([]models.Message, error)
	ListUnansweredMessages(ctx context.Context, conversationID uuid.UUID) ([]models.Message, error)
}

// ReplyGenerator never fails; provider trouble comes back as fallback text.
type ReplyGenerator interface {
	Generate(ctx context.Context, history []llm.Message, current string) string
}

// HistoryCache is the derived, best-effort view of a conversation's history.
type HistoryCache interface {
	Get(ctx context.Context, conversationID string) ([]cache.HistoryEntry, bool)
	Generation(conversationID string) uint64
	SetIfCurrent(ctx context.Context, conversationID string, gen uint64, entries []cache.HistoryEntry) bool
	Invalidate(ctx context.Context, conversationID string) bool
}

// TranscriptArchive stores a full conversation for later review.
type TranscriptArchive interface {
	PutTranscript(ctx context.Context, sessionID string, entries []cache.HistoryEntry) (string, error)
}
