// Package store persists evaluation sessions. A session ties an uploaded
// dataset to its current report and scoring options so later requests
// (re-scoring, charts, exports) can work without re-uploading the file.
//
// Two backends are provided: an in-process memory store for single-node
// deployments and a Redis store for anything that needs to survive a
// restart or run behind a load balancer. Both expire sessions after the
// configured TTL.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ignite/value-matrix/internal/config"
	"github.com/ignite/value-matrix/internal/dataset"
	"github.com/ignite/value-matrix/internal/matrix"
)

var (
	// ErrNotFound indicates the session does not exist or has expired.
	ErrNotFound = errors.New("session not found")
)

// Session is the unit of persisted state: the parsed table, the report
// evaluated from it, and the options that produced that report.
type Session struct {
	ID        string         `json:"id"`
	Filename  string         `json:"filename"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Table     *dataset.Table `json:"table"`
	Report    *matrix.Report `json:"report"`
	Options   matrix.Options `json:"options"`
}

// Store is the session persistence interface.
type Store interface {
	// Save writes a session, resetting its TTL.
	Save(ctx context.Context, session *Session) error
	// Get retrieves a session by ID. Returns ErrNotFound if missing or expired.
	Get(ctx context.Context, id string) (*Session, error)
	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error
	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
	// Close releases backend resources.
	Close() error
}

// New creates a store from config.
func New(cfg config.StoreConfig) (Store, error) {
	switch cfg.Type {
	case "redis":
		return NewRedis(cfg.RedisURL, cfg.SessionTTL())
	case "memory", "":
		return NewMemory(cfg.SessionTTL()), nil
	default:
		return nil, fmt.Errorf("unknown store type %q", cfg.Type)
	}
}
