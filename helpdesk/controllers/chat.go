// helpdesk/controllers/chat.go
package controllers

import (
	"context"

	"helpdesk/helpdesk/services/conversation"
	"helpdesk/helpdesk/sources/cache"
	"helpdesk/helpdesk/types"
)

type ChatController struct {
	orch *conversation.Orchestrator
}

func NewChatController(orch *conversation.Orchestrator) *ChatController {
	return &ChatController{orch: orch}
}

func (c *ChatController) Chat(ctx context.Context, req types.ChatRequest) (*conversation.TurnResult, error) {
	return c.orch.HandleTurn(ctx, req.Message, req.SessionID)
}

func (c *ChatController) History(ctx context.Context, sessionID string) ([]cache.HistoryEntry, error) {
	return c.orch.GetHistory(ctx, sessionID)
}

func (c *ChatController) Archive(ctx context.Context, sessionID string) (*types.ArchiveResponse, error) {
	key, err := c.orch.ArchiveTranscript(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &types.ArchiveResponse{Key: key}, nil
}
