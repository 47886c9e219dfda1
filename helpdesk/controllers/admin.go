package controllers

import (
	"context"

	"helpdesk/helpdesk/services/conversation"
	"helpdesk/helpdesk/sources/cache"
	"helpdesk/helpdesk/types"
	"helpdesk/helpdesk/utils/apperr"
	"helpdesk/helpdesk/utils/logging"

	"go.uber.org/zap"
)

type Migrator interface {
	Migrate(ctx context.Context) error
}

type AdminController struct {
	migrator Migrator
	orch     *conversation.Orchestrator
}

func NewAdminController(migrator Migrator, orch *conversation.Orchestrator) *AdminController {
	return &AdminController{migrator: migrator, orch: orch}
}

func (c *AdminController) Migrate(ctx context.Context) (*types.MigrateResponse, error) {
	logging.AppLogger.Info("Running migrations")
	if err := c.migrator.Migrate(ctx); err != nil {
		logging.ErrorLogger.Error("migration failed", zap.Error(err))
		return nil, apperr.Storage("migrate", err)
	}
	return &types.MigrateResponse{Success: true, Message: "Migrations completed successfully"}, nil
}

func (c *AdminController) Unanswered(ctx context.Context, sessionID string) ([]cache.HistoryEntry, error) {
	return c.orch.Unanswered(ctx, sessionID)
}
