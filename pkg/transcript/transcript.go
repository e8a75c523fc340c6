// Package transcript records completed chat exchanges. Only finished
// exchanges are written; partial streaming output never reaches the store.
package transcript

import (
	"context"
	"time"
)

// Session is one chat run. A new session starts with every `console chat`
// invocation and with every conversation reset.
type Session struct {
	ID           string    `json:"id"`
	Model        string    `json:"model"`
	SystemPrompt string    `json:"system_prompt"`
	StartedAt    time.Time `json:"started_at"`
}

// Exchange is one completed user/assistant pair within a session.
type Exchange struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Seq       int       `json:"seq"` // Position within the session, starting at 0
	Prompt    string    `json:"prompt"`
	Reply     string    `json:"reply"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
}

// Store defines the interface for persisting and retrieving chat
// transcripts from a storage backend.
type Store interface {
	// CreateSession records a new session.
	CreateSession(ctx context.Context, s Session) error

	// AppendExchange records a completed exchange. The exchange's Seq must
	// follow the session's previous exchange.
	AppendExchange(ctx context.Context, e Exchange) error

	// ListSessions returns all sessions, most recent first.
	ListSessions(ctx context.Context) ([]Session, error)

	// GetSession retrieves one session by id. Returns ErrNotFound if the
	// session doesn't exist.
	GetSession(ctx context.Context, id string) (Session, error)

	// Exchanges returns a session's exchanges in sequence order. Returns
	// ErrNotFound if the session doesn't exist.
	Exchanges(ctx context.Context, sessionID string) ([]Exchange, error)

	// Close closes the store and releases any resources.
	Close() error
}

// ErrNotFound is returned when a session doesn't exist in the store.
type ErrNotFound struct {
	ID string
}

func (e ErrNotFound) Error() string {
	if e.ID == "" {
		return "session not found"
	}

	return "session not found: " + e.ID
}
