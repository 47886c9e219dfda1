package conversation

import (
	"context"
	"errors"
	"sync"
	"time"

	"helpdesk/helpdesk/services/llm"
	"helpdesk/helpdesk/sources/cache"
	"helpdesk/helpdesk/sources/psql/models"

	"github.com/google/uuid"
)

var errDown = errors.New("database is down")

// memoryStore implements ConversationStore and MessageStore.
type memoryStore struct {
	mu            sync.Mutex
	conversations map[uuid.UUID]*models.Conversation
	messages      map[uuid.UUID][]models.Message
	clock         time.Time

	failFind        bool
	failCreateConv  bool
	failCreateMsg   bool
	failList        bool
	failReply       bool
	beforeLoad      func(id uuid.UUID)
	conversationsMk int
	messageWrites   int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		conversations: map[uuid.UUID]*models.Conversation{},
		messages:      map[uuid.UUID][]models.Message{},
		clock:         time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (s *memoryStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *memoryStore) CreateConversation(ctx context.Context) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCreateConv {
		return nil, errDown
	}
	c := &models.Conversation{ID: uuid.New(), CreatedAt: s.tick()}
	s.conversations[c.ID] = c
	s.conversationsMk++
	return c, nil
}

func (s *memoryStore) FindConversation(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFind {
		return nil, errDown
	}
	c, ok := s.conversations[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (s *memoryStore) FindConversationWithMessages(ctx context.Context, id uuid.UUID, limit int) (*models.Conversation, error) {
	if s.beforeLoad != nil {
		s.beforeLoad(id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFind {
		return nil, errDown
	}
	c, ok := s.conversations[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	cp.Messages = tail(s.messages[id], limit)
	return &cp, nil
}

func (s *memoryStore) TouchConversation(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.conversations[id]; ok {
		c.UpdatedAt = s.tick()
	}
	return nil
}

func (s *memoryStore) CreateMessage(ctx context.Context, conversationID uuid.UUID, sender models.Sender, text string) (*models.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCreateMsg {
		return nil, errDown
	}
	m := models.Message{ID: uuid.New(), ConversationID: conversationID, Sender: sender, Text: text, CreatedAt: s.tick()}
	if sender == models.SenderUser {
		m.ReplyStatus = models.ReplyPending
	}
	s.messages[conversationID] = append(s.messages[conversationID], m)
	s.messageWrites++
	return &m, nil
}

func (s *memoryStore) CreateReply(ctx context.Context, conversationID, answers uuid.UUID, text string) (*models.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failReply {
		return nil, errDown
	}
	m := models.Message{ID: uuid.New(), ConversationID: conversationID, Sender: models.SenderAI, Text: text, CreatedAt: s.tick()}
	s.messages[conversationID] = append(s.messages[conversationID], m)
	s.setStatus(answers, models.ReplyAnswered)
	s.messageWrites++
	return &m, nil
}

func (s *memoryStore) SetReplyStatus(ctx context.Context, id uuid.UUID, status models.ReplyStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setStatus(id, status)
	return nil
}

func (s *memoryStore) setStatus(id uuid.UUID, status models.ReplyStatus) {
	for convID, msgs := range s.messages {
		for i := range msgs {
			if msgs[i].ID == id && msgs[i].Sender == models.SenderUser {
				s.messages[convID][i].ReplyStatus = status
			}
		}
	}
}

func (s *memoryStore) ListRecentMessages(ctx context.Context, conversationID uuid.UUID, limit int) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failList {
		return nil, errDown
	}
	return tail(s.messages[conversationID], limit), nil
}

func (s *memoryStore) ListUnansweredMessages(ctx context.Context, conversationID uuid.UUID) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Message
	for _, m := range s.messages[conversationID] {
		if m.Sender == models.SenderUser && m.ReplyStatus != models.ReplyAnswered {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *memoryStore) all(id uuid.UUID) []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Message(nil), s.messages[id]...)
}

func tail(msgs []models.Message, limit int) []models.Message {
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return append([]models.Message(nil), msgs...)
}

// recordingGenerator remembers what it was asked and answers with reply.
type recordingGenerator struct {
	reply    string
	calls    int
	history  [][]llm.Message
	currents []string
}

func (g *recordingGenerator) Generate(ctx context.Context, history []llm.Message, current string) string {
	g.calls++
	g.history = append(g.history, history)
	g.currents = append(g.currents, current)
	if g.reply != "" {
		return g.reply
	}
	return "📦 reply to: " + current
}

// cancellingGenerator cancels the caller's context while the reply is being
// generated, like a client hanging up mid-turn.
type cancellingGenerator struct {
	cancel context.CancelFunc
}

func (g cancellingGenerator) Generate(ctx context.Context, history []llm.Message, current string) string {
	g.cancel()
	return "📦 late reply"
}

// mapHistory is an in-process HistoryCache.
type mapHistory struct {
	mu          sync.Mutex
	entries     map[string][]cache.HistoryEntry
	generations map[string]uint64
	gets, hits  int
	invalidated []string
}

func newMapHistory() *mapHistory {
	return &mapHistory{entries: map[string][]cache.HistoryEntry{}, generations: map[string]uint64{}}
}

func (h *mapHistory) Get(ctx context.Context, id string) ([]cache.HistoryEntry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.gets++
	e, ok := h.entries[id]
	if ok {
		h.hits++
	}
	return e, ok
}

func (h *mapHistory) Generation(id string) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.generations[id]
}

func (h *mapHistory) SetIfCurrent(ctx context.Context, id string, gen uint64, entries []cache.HistoryEntry) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.generations[id] != gen {
		return false
	}
	h.entries[id] = entries
	return true
}

func (h *mapHistory) Invalidate(ctx context.Context, id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.entries, id)
	h.generations[id]++
	h.invalidated = append(h.invalidated, id)
	return true
}

type memoryArchive struct {
	objects map[string][]cache.HistoryEntry
	fail    bool
}

func (a *memoryArchive) PutTranscript(ctx context.Context, sessionID string, entries []cache.HistoryEntry) (string, error) {
	if a.fail {
		return "", errors.New("bucket unreachable")
	}
	if a.objects == nil {
		a.objects = map[string][]cache.HistoryEntry{}
	}
	key := "transcripts/" + sessionID + ".json"
	a.objects[key] = entries
	return key, nil
}
