// Package bootstrap opens the shared clients from config and closes them in
// reverse order. Both the server and the CLI start here.
package bootstrap

import (
	"context"
	"fmt"

	"helpdesk/helpdesk/config"
	"helpdesk/helpdesk/services/conversation"
	"helpdesk/helpdesk/services/llm"
	"helpdesk/helpdesk/sources/cache"
	"helpdesk/helpdesk/sources/psql"
	"helpdesk/helpdesk/sources/psql/dao"
	"helpdesk/helpdesk/sources/storage"
	"helpdesk/helpdesk/utils/logging"

	"go.uber.org/zap"
)

type Services struct {
	Config       config.Config
	DB           *psql.Database
	Cache        cache.Store
	Generator    *llm.Generator
	Archive      *storage.MinIOClient
	Orchestrator *conversation.Orchestrator

	redis *cache.RedisCache
}

// Open validates cfg and connects everything. A Redis that cannot be reached
// is not fatal; a database or a bad provider setting is. MinIO is only
// contacted when configured.
func Open(ctx context.Context, cfg config.Config) (*Services, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	persona, err := config.LoadPersona(cfg.PersonaFile, llm.DefaultPersona())
	if err != nil {
		return nil, err
	}
	provider, err := llm.NewProviderFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	db, err := psql.NewDatabase(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection error: %w", err)
	}
	s := &Services{
		Config:    cfg,
		DB:        db,
		Cache:     cache.Disabled{},
		Generator: llm.NewGenerator(provider, persona, cfg.LLMModel, cfg.LLMMaxTokens),
	}

	if cfg.CacheEnabled() {
		rc, err := cache.NewRedisCache(cache.Options{
			URL:           cfg.RedisURL,
			ReconnectStep: cfg.CacheReconnectStep,
			ReconnectMax:  cfg.CacheReconnectMax,
		})
		if err != nil {
			// a malformed URL leaves the service running without a cache
			logging.ErrorLogger.Error("invalid REDIS_URL, cache disabled", zap.Error(err))
		} else {
			s.redis = rc
			s.Cache = rc
		}
	} else {
		logging.AppLogger.Info("Cache disabled by configuration")
	}

	var archive conversation.TranscriptArchive
	if cfg.ArchiveEnabled() {
		mc, err := storage.NewMinIOClient(ctx, cfg)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("minio connection error: %w", err)
		}
		s.Archive = mc
		archive = mc
	}

	s.Orchestrator = conversation.NewOrchestrator(
		dao.NewConversationDAO(db.DB),
		dao.NewMessageDAO(db.DB),
		s.Generator,
		cache.NewHistory(s.Cache, cfg.CacheTTL),
		archive,
		conversation.Options{
			ContextWindow:   cfg.ContextWindow,
			HistoryPageSize: cfg.HistoryPageSize,
		},
	)
	logging.AppLogger.Info("Services ready",
		zap.String("provider", s.Generator.ProviderName()),
		zap.Bool("cache", s.Cache.Connected()),
		zap.Bool("archive", s.Archive != nil))
	return s, nil
}

func (s *Services) Close() {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			logging.ErrorLogger.Error("redis close error", zap.Error(err))
		}
	}
	if s.DB != nil {
		s.DB.Close()
	}
}
