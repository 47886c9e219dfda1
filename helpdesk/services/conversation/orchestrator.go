// Package conversation runs a support turn: it resolves the session, keeps
// the persisted history consistent, bounds what the model sees and returns a
// session id on every successful path.
package conversation

import (
	"context"
	"strings"
	"unicode/utf8"

	"helpdesk/helpdesk/services/llm"
	"helpdesk/helpdesk/sources/cache"
	"helpdesk/helpdesk/sources/psql/models"
	"helpdesk/helpdesk/utils/apperr"
	"helpdesk/helpdesk/utils/logging"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	MaxMessageLength       = 1000
	DefaultContextWindow   = 10
	DefaultHistoryPageSize = 20
)

type Options struct {
	// ContextWindow bounds the prior messages sent to the model.
	ContextWindow int
	// HistoryPageSize bounds what GetHistory returns.
	HistoryPageSize int
}

type Orchestrator struct {
	conversations ConversationStore
	messages      MessageStore
	generator     ReplyGenerator
	history       HistoryCache
	archive       TranscriptArchive
	opts          Options
}

// TurnResult is returned to the caller, who sends SessionID back next turn.
type TurnResult struct {
	Reply     string `json:"reply"`
	SessionID string `json:"sessionId"`
}

// NewOrchestrator wires the collaborators. history and archive may be nil.
func NewOrchestrator(
	conversations ConversationStore,
	messages MessageStore,
	generator ReplyGenerator,
	history HistoryCache,
	archive TranscriptArchive,
	opts Options,
) *Orchestrator {
	if history == nil {
		history = cache.NewHistory(nil, 0)
	}
	if opts.ContextWindow <= 0 {
		opts.ContextWindow = DefaultContextWindow
	}
	if opts.HistoryPageSize <= 0 {
		opts.HistoryPageSize = DefaultHistoryPageSize
	}
	return &Orchestrator{
		conversations: conversations,
		messages:      messages,
		generator:     generator,
		history:       history,
		archive:       archive,
		opts:          opts,
	}
}

// ValidateMessage applies the message text rules.
func ValidateMessage(text string) error {
	if text == "" {
		return apperr.Invalid("message", "Message cannot be empty")
	}
	if !utf8.ValidString(text) {
		return apperr.Invalid("message", "Message must be valid UTF-8 text")
	}
	if utf8.RuneCountInString(text) > MaxMessageLength {
		return apperr.Invalid("message", "Message exceeds 1000 character limit")
	}
	if strings.TrimSpace(text) == "" {
		return apperr.Invalid("message", "Message cannot be only whitespace")
	}
	return nil
}

// ParseSessionID accepts "" as absent.
func ParseSessionID(sessionID string) (uuid.UUID, error) {
	if sessionID == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return uuid.Nil, apperr.Invalid("sessionId", "Invalid session ID format")
	}
	return id, nil
}

// HandleTurn persists the user's message, generates a reply from the bounded
// history and persists the reply. sessionID may be empty; an unknown one
// starts a fresh conversation instead of failing. Once the session is
// resolved the turn runs to completion even if ctx is cancelled, so a
// generated reply is always persisted.
func (o *Orchestrator) HandleTurn(ctx context.Context, text, sessionID string) (*TurnResult, error) {
	defer logging.LogDuration(ctx, "handle_turn")()

	if err := ValidateMessage(text); err != nil {
		return nil, err
	}
	requested, err := ParseSessionID(sessionID)
	if err != nil {
		return nil, err
	}

	convID, err := o.resolve(ctx, requested)
	if err != nil {
		return nil, err
	}
	log := logging.AppLogger.With(zap.String("session_id", convID.String()))
	ctx = context.WithoutCancel(ctx)

	userMsg, err := o.messages.CreateMessage(ctx, convID, models.SenderUser, text)
	if err != nil {
		logging.ErrorLogger.Error("failed to save user message", zap.String("session_id", convID.String()), zap.Error(err))
		return nil, apperr.Storage("save user message", err)
	}

	history, err := o.contextWindow(ctx, convID, userMsg.ID)
	if err != nil {
		o.markFailed(ctx, userMsg.ID)
		logging.ErrorLogger.Error("failed to load context", zap.String("session_id", convID.String()), zap.Error(err))
		return nil, apperr.Storage("load context", err)
	}

	log.Info("Generating reply", zap.Int("history_len", len(history)))
	reply := o.generator.Generate(ctx, history, text)

	if _, err := o.messages.CreateReply(ctx, convID, userMsg.ID, reply); err != nil {
		o.markFailed(ctx, userMsg.ID)
		logging.ErrorLogger.Error("failed to save reply", zap.String("session_id", convID.String()), zap.Error(err))
		return nil, apperr.Storage("save reply", err)
	}

	if err := o.conversations.TouchConversation(ctx, convID); err != nil {
		log.Warn("failed to touch conversation", zap.Error(err))
	}
	o.history.Invalidate(ctx, convID.String())

	return &TurnResult{Reply: reply, SessionID: convID.String()}, nil
}

// resolve returns the working conversation id. It creates a conversation
// when none was requested or the requested one does not exist.
func (o *Orchestrator) resolve(ctx context.Context, requested uuid.UUID) (uuid.UUID, error) {
	if requested != uuid.Nil {
		conv, err := o.conversations.FindConversation(ctx, requested)
		if err != nil {
			logging.ErrorLogger.Error("failed to look up conversation", zap.String("session_id", requested.String()), zap.Error(err))
			return uuid.Nil, apperr.Storage("find conversation", err)
		}
		if conv != nil {
			return conv.ID, nil
		}
		logging.AppLogger.Info("Conversation not found, creating new one", zap.String("requested", requested.String()))
	}

	conv, err := o.conversations.CreateConversation(ctx)
	if err != nil {
		logging.ErrorLogger.Error("failed to create conversation", zap.Error(err))
		return uuid.Nil, apperr.Storage("create conversation", err)
	}
	logging.AppLogger.Info("New conversation created", zap.String("session_id", conv.ID.String()))
	return conv.ID, nil
}

// contextWindow returns up to ContextWindow messages preceding current,
// oldest first, with current itself left out.
func (o *Orchestrator) contextWindow(ctx context.Context, convID, current uuid.UUID) ([]llm.Message, error) {
	recent, err := o.messages.ListRecentMessages(ctx, convID, o.opts.ContextWindow+1)
	if err != nil {
		return nil, err
	}
	prior := make([]models.Message, 0, len(recent))
	for _, m := range recent {
		if m.ID != current {
			prior = append(prior, m)
		}
	}
	if len(prior) > o.opts.ContextWindow {
		prior = prior[len(prior)-o.opts.ContextWindow:]
	}

	out := make([]llm.Message, 0, len(prior))
	for _, m := range prior {
		role := llm.RoleAssistant
		if m.Sender == models.SenderUser {
			role = llm.RoleUser
		}
		out = append(out, llm.Message{Role: role, Content: m.Text})
	}
	return out, nil
}

// markFailed records that a user message will not get a reply this turn.
func (o *Orchestrator) markFailed(ctx context.Context, id uuid.UUID) {
	if err := o.messages.SetReplyStatus(ctx, id, models.ReplyFailed); err != nil {
		logging.ErrorLogger.Error("failed to mark message as failed", zap.String("message_id", id.String()), zap.Error(err))
	}
}

// GetHistory returns the latest HistoryPageSize messages, oldest first.
// Cache first; on a miss the store is read and the result cached. Unknown
// sessions yield an empty slice.
func (o *Orchestrator) GetHistory(ctx context.Context, sessionID string) ([]cache.HistoryEntry, error) {
	defer logging.LogDuration(ctx, "get_history")()

	id, err := ParseSessionID(sessionID)
	if err != nil {
		return nil, err
	}
	if id == uuid.Nil {
		return nil, apperr.Invalid("sessionId", "Invalid session ID format")
	}

	gen := o.history.Generation(id.String())
	if cached, ok := o.history.Get(ctx, id.String()); ok {
		logging.AppLogger.Info("Chat history retrieved from cache", zap.String("session_id", id.String()))
		return cached, nil
	}

	conv, err := o.conversations.FindConversationWithMessages(ctx, id, o.opts.HistoryPageSize)
	if err != nil {
		logging.ErrorLogger.Error("failed to load history", zap.String("session_id", id.String()), zap.Error(err))
		return nil, apperr.Storage("load history", err)
	}
	if conv == nil {
		return []cache.HistoryEntry{}, nil
	}

	entries := ToHistory(conv.Messages)
	o.history.SetIfCurrent(ctx, id.String(), gen, entries)
	return entries, nil
}

// Unanswered lists user messages whose reply is pending or failed.
func (o *Orchestrator) Unanswered(ctx context.Context, sessionID string) ([]cache.HistoryEntry, error) {
	id, err := ParseSessionID(sessionID)
	if err != nil {
		return nil, err
	}
	if id == uuid.Nil {
		return nil, apperr.Invalid("sessionId", "Invalid session ID format")
	}
	msgs, err := o.messages.ListUnansweredMessages(ctx, id)
	if err != nil {
		return nil, apperr.Storage("list unanswered", err)
	}
	return ToHistory(msgs), nil
}

// ArchiveTranscript writes the complete history of a conversation to the
// transcript archive and returns the object key.
func (o *Orchestrator) ArchiveTranscript(ctx context.Context, sessionID string) (string, error) {
	if o.archive == nil {
		return "", &apperr.Error{Kind: apperr.KindUnavailable, Op: "archive transcript", Msg: "Transcript archive is not configured"}
	}
	id, err := ParseSessionID(sessionID)
	if err != nil {
		return "", err
	}
	if id == uuid.Nil {
		return "", apperr.Invalid("sessionId", "Invalid session ID format")
	}
	conv, err := o.conversations.FindConversationWithMessages(ctx, id, 0)
	if err != nil {
		return "", apperr.Storage("load transcript", err)
	}
	if conv == nil || len(conv.Messages) == 0 {
		return "", apperr.NotFound("archive transcript", "Conversation not found")
	}
	key, err := o.archive.PutTranscript(ctx, id.String(), ToHistory(conv.Messages))
	if err != nil {
		logging.ErrorLogger.Error("failed to archive transcript", zap.String("session_id", id.String()), zap.Error(err))
		return "", apperr.Unavailable("archive transcript", err)
	}
	return key, nil
}

// ToHistory maps persisted messages to the public history shape.
func ToHistory(msgs []models.Message) []cache.HistoryEntry {
	out := make([]cache.HistoryEntry, 0, len(msgs))
	for _, m := range msgs {
		sender := string(models.SenderAI)
		if m.Sender == models.SenderUser {
			sender = string(models.SenderUser)
		}
		out = append(out, cache.HistoryEntry{
			ID:        m.ID.String(),
			Text:      m.Text,
			Sender:    sender,
			Timestamp: m.CreatedAt.UnixMilli(),
		})
	}
	return out
}
