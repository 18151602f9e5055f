package journal

import (
	"context"
	"encoding/json"
	"fmt"

	badgerdb "github.com/dgraph-io/badger/v4"
)

// BadgerConfig configures the embedded Badger journal.
type BadgerConfig struct {
	// Dir is the database directory. Empty with InMemory set keeps
	// everything in RAM.
	Dir      string `mapstructure:"dir" yaml:"dir" toml:"dir" json:"dir"`
	InMemory bool   `mapstructure:"in_memory" yaml:"in_memory" toml:"in_memory" json:"in_memory"`
}

// Keys are "xfer/<start nanos, zero padded>/<id>" so that lexical order is
// chronological and a reverse scan yields newest first.
const badgerPrefix = "xfer/"

// BadgerStore stores JSON-encoded entries in Badger.
type BadgerStore struct {
	db *badgerdb.DB
}

// NewBadgerStore opens a Badger journal.
func NewBadgerStore(cfg BadgerConfig) (*BadgerStore, error) {
	if cfg.Dir == "" && !cfg.InMemory {
		return nil, fmt.Errorf("badger journal directory is required")
	}

	opts := badgerdb.DefaultOptions(cfg.Dir).WithLogger(nil)
	if cfg.InMemory {
		opts = opts.WithDir("").WithValueDir("").WithInMemory(true)
	}

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger journal: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func badgerKey(e *Entry) []byte {
	return fmt.Appendf(nil, "%s%020d/%s", badgerPrefix, e.StartedAt.UnixNano(), e.ID)
}

func (s *BadgerStore) Record(ctx context.Context, e *Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	val, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode transfer: %w", err)
	}
	return s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set(badgerKey(e), val)
	})
}

func (s *BadgerStore) Recent(ctx context.Context, limit int) ([]Entry, error) {
	var out []Entry
	err := s.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte(badgerPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		// In reverse mode Seek lands on the largest key <= the seek key.
		seek := append([]byte(badgerPrefix), 0xff)
		for it.Seek(seek); it.ValidForPrefix(opts.Prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var e Entry
			if err := it.Item().Value(func(v []byte) error {
				return json.Unmarshal(v, &e)
			}); err != nil {
				return fmt.Errorf("decode transfer: %w", err)
			}
			out = append(out, e)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
		return nil
	})
	return out, err
}

func (s *BadgerStore) Healthcheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.db.View(func(*badgerdb.Txn) error { return nil }); err != nil {
		return fmt.Errorf("healthcheck failed: %w", err)
	}
	return nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
