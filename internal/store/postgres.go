package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/internal/domain"
	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/pkg/errors"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const createHistoryTable = `
CREATE TABLE IF NOT EXISTS name_history (
	id          TEXT PRIMARY KEY,
	position    BIGSERIAL,
	name        TEXT NOT NULL,
	explanation TEXT NOT NULL DEFAULT '',
	starred     BOOLEAN NOT NULL DEFAULT FALSE
)`

// PostgresStore keeps the history in the name_history table, ordered by
// insertion position.
type PostgresStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresStore connects, pings and makes sure the table exists.
func NewPostgresStore(ctx context.Context, dsn string, logger *zap.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.NewStoreError("failed to open postgres", "open", "postgres", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, errors.NewStoreError("failed to ping postgres", "ping", "postgres", err)
	}

	if _, err := db.ExecContext(pingCtx, createHistoryTable); err != nil {
		db.Close()
		return nil, errors.NewStoreError("failed to create name_history table", "migrate", "postgres", err)
	}

	logger.Info("PostgreSQL history store connected")

	return &PostgresStore{db: db, logger: logger}, nil
}

func (s *PostgresStore) Describe() string {
	return "postgres:name_history"
}

func (s *PostgresStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

var _ Pinger = (*PostgresStore)(nil)

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Load(ctx context.Context) ([]domain.ResultItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, explanation, starred FROM name_history ORDER BY position`)
	if err != nil {
		return nil, errors.NewStoreError("failed to query history", "load", s.Describe(), err)
	}
	defer rows.Close()

	items := make([]domain.ResultItem, 0)
	for rows.Next() {
		var item domain.ResultItem
		if err := rows.Scan(&item.ID, &item.Name, &item.Explanation, &item.Starred); err != nil {
			return nil, errors.NewStoreError("failed to scan history row", "load", s.Describe(), err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStoreError("failed to read history rows", "load", s.Describe(), err)
	}
	return items, nil
}

// Save replaces the whole table in one transaction.
func (s *PostgresStore) Save(ctx context.Context, items []domain.ResultItem) error {
	return s.inTx(ctx, "save", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM name_history`); err != nil {
			return err
		}
		return insertItems(ctx, tx, items)
	})
}

func (s *PostgresStore) Append(ctx context.Context, items []domain.ResultItem) error {
	if len(items) == 0 {
		return nil
	}
	return s.inTx(ctx, "append", func(tx *sql.Tx) error {
		return insertItems(ctx, tx, items)
	})
}

func (s *PostgresStore) ToggleStar(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE name_history SET starred = NOT starred WHERE id = $1`, id)
	if err != nil {
		return errors.NewStoreError("failed to toggle star", "toggle_star", s.Describe(), err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		s.logger.Debug("Toggle star: item not found", zap.String("id", id))
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM name_history WHERE id = $1`, id)
	if err != nil {
		return errors.NewStoreError("failed to delete item", "delete", s.Describe(), err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		s.logger.Debug("Delete: item not found", zap.String("id", id))
	}
	return nil
}

func (s *PostgresStore) inTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewStoreError("failed to begin transaction", op, s.Describe(), err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Warn("Rollback failed", zap.String("op", op), zap.Error(rbErr))
		}
		return errors.NewStoreError(fmt.Sprintf("%s failed", op), op, s.Describe(), err)
	}
	if err := tx.Commit(); err != nil {
		return errors.NewStoreError("failed to commit transaction", op, s.Describe(), err)
	}
	return nil
}

// insertItems inserts in slice order so BIGSERIAL positions follow it.
// Rows whose id already exists are updated in place.
func insertItems(ctx context.Context, tx *sql.Tx, items []domain.ResultItem) error {
	if len(items) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO name_history (id, name, explanation, starred)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, explanation = EXCLUDED.explanation, starred = EXCLUDED.starred`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, item := range items {
		if _, err := stmt.ExecContext(ctx, item.ID, item.Name, item.Explanation, item.Starred); err != nil {
			return err
		}
	}
	return nil
}
