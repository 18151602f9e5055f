package journal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// SQLiteConfig configures the SQLite journal.
type SQLiteConfig struct {
	// Path is the database file; parent directories are created.
	Path string `mapstructure:"path" yaml:"path" toml:"path" json:"path"`
}

// PostgresConfig configures the PostgreSQL journal.
type PostgresConfig struct {
	Host         string `mapstructure:"host" yaml:"host" toml:"host" json:"host"`
	Port         int    `mapstructure:"port" yaml:"port" toml:"port" json:"port" validate:"min=0,max=65535"`
	Database     string `mapstructure:"database" yaml:"database" toml:"database" json:"database"`
	User         string `mapstructure:"user" yaml:"user" toml:"user" json:"user"`
	Password     string `mapstructure:"password" yaml:"password" toml:"password" json:"password"`
	SSLMode      string `mapstructure:"sslmode" yaml:"sslmode" toml:"sslmode" json:"sslmode"`
	MaxOpenConns int    `mapstructure:"max_open_conns" yaml:"max_open_conns" toml:"max_open_conns" json:"max_open_conns" validate:"min=0"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" yaml:"max_idle_conns" toml:"max_idle_conns" json:"max_idle_conns" validate:"min=0"`
}

// DSN returns the libpq connection string.
func (c PostgresConfig) DSN() string {
	port := c.Port
	if port == 0 {
		port = 5432
	}
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s",
		c.Host, port, c.User, c.Password, c.Database)
	if c.SSLMode != "" {
		dsn += " sslmode=" + c.SSLMode
	}
	return dsn
}

// GORMStore stores entries in a SQL table through gorm.
type GORMStore struct {
	db *gorm.DB
}

// NewSQLiteStore opens (and migrates) a SQLite journal.
func NewSQLiteStore(cfg SQLiteConfig) (*GORMStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite journal path is required")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	// WAL lets the API read while sessions append.
	dsn := cfg.Path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	return openGORM(sqlite.Open(dsn), nil)
}

// NewPostgresStore opens (and migrates) a PostgreSQL journal.
func NewPostgresStore(cfg PostgresConfig) (*GORMStore, error) {
	if cfg.Host == "" || cfg.Database == "" || cfg.User == "" {
		return nil, fmt.Errorf("postgres journal requires host, database and user")
	}
	return openGORM(postgres.Open(cfg.DSN()), &cfg)
}

func openGORM(dialector gorm.Dialector, pg *PostgresConfig) (*GORMStore, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to journal database: %w", err)
	}

	if pg != nil {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get underlying database: %w", err)
		}
		if pg.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(pg.MaxOpenConns)
		}
		if pg.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(pg.MaxIdleConns)
		}
	}

	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate journal schema: %w", err)
	}
	return &GORMStore{db: db}, nil
}

func (s *GORMStore) Record(ctx context.Context, e *Entry) error {
	if err := s.db.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("record transfer: %w", err)
	}
	return nil
}

func (s *GORMStore) Recent(ctx context.Context, limit int) ([]Entry, error) {
	var out []Entry
	q := s.db.WithContext(ctx).Order("started_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	return out, nil
}

func (s *GORMStore) Healthcheck(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GORMStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
