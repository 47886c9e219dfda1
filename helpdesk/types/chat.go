// helpdesk/types/chat.go
package types

// ChatRequest is the body of POST /api/chat and of every websocket frame.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId,omitempty"`
}

type ArchiveResponse struct {
	Key string `json:"key"`
}

type MigrateResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Diagnostics is what GET /admin/diagnostics reports.
type Diagnostics struct {
	Timestamp   string           `json:"timestamp"`
	Environment EnvironmentFlags `json:"environment"`
	Database    ComponentStatus  `json:"database"`
	Cache       ComponentStatus  `json:"cache"`
	Provider    string           `json:"provider"`
	Archive     bool             `json:"archive"`
}

type EnvironmentFlags struct {
	HasDatabaseURL  bool   `json:"hasDatabaseUrl"`
	HasClaudeAPIKey bool   `json:"hasClaudeApiKey"`
	HasOpenAIAPIKey bool   `json:"hasOpenaiApiKey"`
	Environment     string `json:"environment"`
}

type ComponentStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}
