package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"helpdesk/helpdesk/sources/cache"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 keeps objects in memory and answers plain PUT and GET.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch r.Method {
	case http.MethodPut:
		data, _ := io.ReadAll(r.Body)
		f.objects[r.URL.Path] = data
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		data, ok := f.objects[r.URL.Path]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
		w.WriteHeader(http.StatusOK)
		w.Write(data)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestClient(t *testing.T) (*MinIOClient, *fakeS3) {
	t.Helper()
	fake := &fakeS3{objects: map[string][]byte{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := minio.New(strings.TrimPrefix(srv.URL, "http://"), &minio.Options{
		Creds:  credentials.NewStaticV4("access", "secret", ""),
		Secure: false,
		Region: "us-east-1",
	})
	require.NoError(t, err)
	return newMinIOClient(client, "transcripts"), fake
}

func TestTranscriptKey(t *testing.T) {
	assert.Equal(t, "transcripts/6f1c.json", TranscriptKey("6f1c"))
}

func TestPutAndGetTranscript(t *testing.T) {
	c, fake := newTestClient(t)
	ctx := context.Background()

	entries := []cache.HistoryEntry{
		{ID: "1", Text: "Where is my order?", Sender: "user", Timestamp: 1700000000000},
		{ID: "2", Text: "📦 What's your order number?", Sender: "ai", Timestamp: 1700000001000},
	}
	key, err := c.PutTranscript(ctx, "abc", entries)
	require.NoError(t, err)
	assert.Equal(t, "transcripts/abc.json", key)

	stored, ok := fake.objects["/transcripts/transcripts/abc.json"]
	require.True(t, ok, "object written under bucket path")
	assert.Contains(t, string(stored), `"sessionId":"abc"`)

	got, err := c.GetTranscript(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", got.SessionID)
	assert.Equal(t, entries, got.Messages)
	assert.False(t, got.ArchivedAt.IsZero())
}

func TestGetTranscriptMissing(t *testing.T) {
	c, _ := newTestClient(t)
	_, err := c.GetTranscript(context.Background(), "nope")
	assert.Error(t, err)
}
