// Package journal records completed file transfers.
//
// The journal is an audit trail, not part of the protocol: a failing store
// is logged by the caller and never changes what the client sees.
package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Operation is the protocol verb that moved data.
type Operation string

const (
	OpGet Operation = "get"
	OpPut Operation = "put"
)

// ErrUnsupportedType is returned by New for an unknown store type.
var ErrUnsupportedType = errors.New("unsupported journal type")

// Entry is one get or put as seen by the server.
type Entry struct {
	ID         string        `json:"id" gorm:"primaryKey;size:36"`
	SessionID  string        `json:"session_id" gorm:"size:36;index"`
	ClientAddr string        `json:"client"`
	Operation  Operation     `json:"operation" gorm:"size:8"`
	Path       string        `json:"path"`
	Bytes      int64         `json:"bytes"`
	Success    bool          `json:"success"`
	Error      string        `json:"error,omitempty"`
	StartedAt  time.Time     `json:"started_at" gorm:"index"`
	Duration   time.Duration `json:"duration_ns"`
}

// TableName sets the SQL table used by the gorm store.
func (Entry) TableName() string {
	return "transfers"
}

// NewEntry starts an entry for op on path with a fresh ID and start time.
func NewEntry(sessionID, clientAddr string, op Operation, path string) *Entry {
	return &Entry{
		ID:         uuid.NewString(),
		SessionID:  sessionID,
		ClientAddr: clientAddr,
		Operation:  op,
		Path:       path,
		StartedAt:  time.Now().UTC(),
	}
}

// Finish fills the outcome fields. A nil err marks the entry successful.
func (e *Entry) Finish(n int64, err error) {
	e.Bytes = n
	e.Duration = time.Since(e.StartedAt)
	e.Success = err == nil
	if err != nil {
		e.Error = err.Error()
	}
}

// Store persists entries.
type Store interface {
	// Record appends e.
	Record(ctx context.Context, e *Entry) error

	// Recent returns up to limit entries, newest first.
	Recent(ctx context.Context, limit int) ([]Entry, error)

	Healthcheck(ctx context.Context) error
	Close() error
}

// Type selects a Store implementation.
type Type string

const (
	TypeMemory   Type = "memory"
	TypeSQLite   Type = "sqlite"
	TypePostgres Type = "postgres"
	TypeBadger   Type = "badger"
)

// Config selects and configures the journal backend.
type Config struct {
	Type     Type           `mapstructure:"type" yaml:"type" toml:"type" json:"type" validate:"omitempty,oneof=memory sqlite postgres badger"`
	Memory   MemoryConfig   `mapstructure:"memory" yaml:"memory" toml:"memory" json:"memory"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite" yaml:"sqlite" toml:"sqlite" json:"sqlite"`
	Postgres PostgresConfig `mapstructure:"postgres" yaml:"postgres" toml:"postgres" json:"postgres"`
	Badger   BadgerConfig   `mapstructure:"badger" yaml:"badger" toml:"badger" json:"badger"`
}

// New opens the store described by cfg.
func New(cfg Config) (Store, error) {
	switch cfg.Type {
	case TypeMemory, "":
		return NewMemoryStore(cfg.Memory.Capacity), nil
	case TypeSQLite:
		return NewSQLiteStore(cfg.SQLite)
	case TypePostgres:
		return NewPostgresStore(cfg.Postgres)
	case TypeBadger:
		return NewBadgerStore(cfg.Badger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, cfg.Type)
	}
}
