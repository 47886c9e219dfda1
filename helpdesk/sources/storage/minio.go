package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"time"

	"helpdesk/helpdesk/config"
	"helpdesk/helpdesk/sources/cache"
	"helpdesk/helpdesk/utils/logging"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// MinIOClient archives finished conversations as JSON objects.
type MinIOClient struct {
	client *minio.Client
	bucket string
}

type TranscriptObject struct {
	SessionID  string               `json:"sessionId"`
	ArchivedAt time.Time            `json:"archivedAt"`
	Messages   []cache.HistoryEntry `json:"messages"`
}

// TranscriptKey is the object key for a session's transcript.
func TranscriptKey(sessionID string) string {
	return path.Join("transcripts", sessionID+".json")
}

func NewMinIOClient(ctx context.Context, cfg config.Config) (*MinIOClient, error) {
	client, err := minio.New(
		cfg.MinIOEndpoint,
		&minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
			Secure: cfg.MinIOUseSSL,
		},
	)
	if err != nil {
		return nil, err
	}

	exists, err := client.BucketExists(ctx, cfg.MinIOBucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.MinIOBucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinIOBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.MinIOBucket, err)
		}
		logging.AppLogger.Info("Created transcript bucket", zap.String("bucket", cfg.MinIOBucket))
	}
	return newMinIOClient(client, cfg.MinIOBucket), nil
}

func newMinIOClient(client *minio.Client, bucket string) *MinIOClient {
	return &MinIOClient{client: client, bucket: bucket}
}

func (m *MinIOClient) PutTranscript(ctx context.Context, sessionID string, entries []cache.HistoryEntry) (string, error) {
	defer logging.LogDuration(ctx, "minio_put_transcript")()

	key := TranscriptKey(sessionID)
	data, err := json.Marshal(TranscriptObject{
		SessionID:  sessionID,
		ArchivedAt: time.Now().UTC(),
		Messages:   entries,
	})
	if err != nil {
		return "", err
	}

	_, err = m.client.PutObject(ctx, m.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return "", err
	}
	logging.AppLogger.Info("Transcript archived",
		zap.String("session_id", sessionID),
		zap.String("key", key),
		zap.Int("messages", len(entries)))
	return key, nil
}

func (m *MinIOClient) GetTranscript(ctx context.Context, sessionID string) (*TranscriptObject, error) {
	defer logging.LogDuration(ctx, "minio_get_transcript")()

	obj, err := m.client.GetObject(ctx, m.bucket, TranscriptKey(sessionID), minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, err
	}
	var out TranscriptObject
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode transcript: %w", err)
	}
	return &out, nil
}
