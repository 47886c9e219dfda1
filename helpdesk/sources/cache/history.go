package cache

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"sync/atomic"
	"time"

	"helpdesk/helpdesk/utils/logging"

	"go.uber.org/zap"
)

const (
	historyKeyPrefix = "conversation:"
	generationSlots  = 256
)

// HistoryEntry is the cached and returned shape of one message.
type HistoryEntry struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Sender    string `json:"sender"`
	Timestamp int64  `json:"timestamp"` // unix millis
}

func HistoryKey(conversationID string) string {
	return historyKeyPrefix + conversationID
}

// History wraps a Store with the serialized-history key scheme.
//
// Each Invalidate bumps a generation counter for the conversation's slot.
// A reader takes the generation before loading from the database and hands
// it to SetIfCurrent, which refuses to cache a page an invalidation raced
// past. Conversations share slots, so a collision only costs a skipped Set.
type History struct {
	store       Store
	ttl         time.Duration
	generations [generationSlots]atomic.Uint64
}

func NewHistory(store Store, ttl time.Duration) *History {
	if store == nil {
		store = Disabled{}
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &History{store: store, ttl: ttl}
}

// Get returns the cached history and whether it was a hit. A corrupt entry
// counts as a miss and is dropped.
func (h *History) Get(ctx context.Context, conversationID string) ([]HistoryEntry, bool) {
	raw, ok := h.store.Get(ctx, HistoryKey(conversationID))
	if !ok {
		return nil, false
	}
	var entries []HistoryEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		logging.ErrorLogger.Error("corrupt cached history",
			zap.String("conversation_id", conversationID), zap.Error(err))
		h.store.Delete(ctx, HistoryKey(conversationID))
		return nil, false
	}
	return entries, true
}

func (h *History) Set(ctx context.Context, conversationID string, entries []HistoryEntry) bool {
	if entries == nil {
		entries = []HistoryEntry{}
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return false
	}
	return h.store.Set(ctx, HistoryKey(conversationID), string(raw), h.ttl)
}

// Generation is the invalidation counter for conversationID.
func (h *History) Generation(conversationID string) uint64 {
	return h.slot(conversationID).Load()
}

// SetIfCurrent caches entries only if no Invalidate happened since gen was read.
func (h *History) SetIfCurrent(ctx context.Context, conversationID string, gen uint64, entries []HistoryEntry) bool {
	if h.Generation(conversationID) != gen {
		logging.AppLogger.Info("Skipped caching history invalidated during read",
			zap.String("conversation_id", conversationID))
		return false
	}
	if !h.Set(ctx, conversationID, entries) {
		return false
	}
	// an Invalidate may have landed between the check and the write
	if h.Generation(conversationID) != gen {
		h.store.Delete(ctx, HistoryKey(conversationID))
		return false
	}
	return true
}

func (h *History) Invalidate(ctx context.Context, conversationID string) bool {
	h.slot(conversationID).Add(1)
	return h.store.Delete(ctx, HistoryKey(conversationID))
}

func (h *History) slot(conversationID string) *atomic.Uint64 {
	f := fnv.New32a()
	f.Write([]byte(conversationID))
	return &h.generations[f.Sum32()%generationSlots]
}

func (h *History) Connected() bool {
	return h.store.Connected()
}
