package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryRoundTripUsesConversationKey(t *testing.T) {
	srv := miniredis.RunT(t)
	h := NewHistory(newTestCache(t, "redis://"+srv.Addr()), 0)
	ctx := context.Background()

	entries := []HistoryEntry{
		{ID: "a", Text: "Where is my order?", Sender: "user", Timestamp: 1},
		{ID: "b", Text: "📦 What's your order number?", Sender: "ai", Timestamp: 2},
	}
	require.True(t, h.Set(ctx, "conv-1", entries))
	assert.True(t, srv.Exists("conversation:conv-1"))
	assert.Equal(t, DefaultTTL, srv.TTL("conversation:conv-1"))

	got, hit := h.Get(ctx, "conv-1")
	require.True(t, hit)
	assert.Equal(t, entries, got)

	require.True(t, h.Invalidate(ctx, "conv-1"))
	_, hit = h.Get(ctx, "conv-1")
	assert.False(t, hit)
}

func TestHistoryCorruptEntryIsAMiss(t *testing.T) {
	srv := miniredis.RunT(t)
	h := NewHistory(newTestCache(t, "redis://"+srv.Addr()), time.Hour)
	require.NoError(t, srv.Set("conversation:bad", "{not json"))

	_, hit := h.Get(context.Background(), "bad")
	assert.False(t, hit)
	assert.False(t, srv.Exists("conversation:bad"))
}

func TestHistoryNilStoreIsDisabled(t *testing.T) {
	h := NewHistory(nil, 0)
	_, hit := h.Get(context.Background(), "x")
	assert.False(t, hit)
	assert.False(t, h.Set(context.Background(), "x", nil))
	assert.False(t, h.Connected())
}

func TestHistorySetIfCurrentSkipsInvalidatedReads(t *testing.T) {
	srv := miniredis.RunT(t)
	h := NewHistory(newTestCache(t, "redis://"+srv.Addr()), time.Hour)
	ctx := context.Background()
	entries := []HistoryEntry{{ID: "a", Text: "hi", Sender: "user", Timestamp: 1}}

	gen := h.Generation("conv-1")
	require.True(t, h.Invalidate(ctx, "conv-1"))
	assert.False(t, h.SetIfCurrent(ctx, "conv-1", gen, entries))
	assert.False(t, srv.Exists("conversation:conv-1"))

	gen = h.Generation("conv-1")
	assert.True(t, h.SetIfCurrent(ctx, "conv-1", gen, entries))
	assert.True(t, srv.Exists("conversation:conv-1"))
}
