package db

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"media-catalog-go/internal/config"
	"media-catalog-go/pkg/logger"
)

const (
	defaultMaxOpenConns    = 10
	defaultMaxIdleConns    = 5
	defaultConnMaxLifetime = 30 * time.Minute
)

// Handles carries the two connections the Arbiter arbitrates between: one
// writable handle pinned to a single underlying connection, and a read-only
// pool sized by configuration.
type Handles struct {
	Writer *gorm.DB
	Reader *gorm.DB
}

func NewPostgres(cfg config.DBConfig, log logger.Logger) (*Handles, error) {
	if cfg.DSN != "" {
		log.Info("db: connecting using DSN")
	} else {
		log.Info("db: connecting to postgres", "host", cfg.Host, "port", cfg.Port, "dbname", cfg.Name, "sslmode", cfg.SSLMode)
	}

	dsn := cfg.GetDSN()

	writer, err := open(dsn)
	if err != nil {
		return nil, fmt.Errorf("open writer: %w", err)
	}

	// A single open connection backs every writer transaction. The Arbiter's
	// gate keeps callers from contending for it.
	writerDB, err := writer.DB()
	if err != nil {
		return nil, fmt.Errorf("writer handle: %w", err)
	}
	writerDB.SetMaxOpenConns(1)
	writerDB.SetMaxIdleConns(1)
	writerDB.SetConnMaxLifetime(0)

	reader, err := open(dsn)
	if err != nil {
		return nil, fmt.Errorf("open reader: %w", err)
	}

	readerDB, err := reader.DB()
	if err != nil {
		return nil, fmt.Errorf("reader handle: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen == 0 {
		maxOpen = defaultMaxOpenConns
	}
	maxIdle := cfg.MaxIdleConns
	if maxIdle == 0 {
		maxIdle = defaultMaxIdleConns
	}
	connMaxLifetime := cfg.ConnMaxLifetime
	if connMaxLifetime == 0 {
		connMaxLifetime = defaultConnMaxLifetime
	}

	readerDB.SetMaxOpenConns(maxOpen)
	readerDB.SetMaxIdleConns(maxIdle)
	readerDB.SetConnMaxLifetime(connMaxLifetime)

	if err := readerDB.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}

	log.Info("db: connected")
	return &Handles{Writer: writer, Reader: reader}, nil
}

func (h *Handles) Close() error {
	var firstErr error
	for _, g := range []*gorm.DB{h.Writer, h.Reader} {
		if g == nil {
			continue
		}
		sqlDB, err := g.DB()
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := sqlDB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
}
