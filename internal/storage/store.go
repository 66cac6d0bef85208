// Package storage is the single durable layer of the kiosk: the detection
// confidence threshold and the log of confirmed returns, both in a local
// SQLite database.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/avialab/toolkiosk/internal/confidence"
)

const confidenceKey = "model_confidence"

// ReturnTransaction records one confirmed tool return.
type ReturnTransaction struct {
	ID            int64     `json:"id"`
	SessionID     string    `json:"session_id"`
	ToolkitID     int       `json:"toolkit_id"`
	TotalReturned int       `json:"total_returned"`
	MissingCount  int       `json:"missing_count"`
	ExtraCount    int       `json:"extra_count"`
	AllReturned   bool      `json:"all_returned"`
	HandCheck     bool      `json:"hand_check"`
	CreatedAt     time.Time `json:"created_at"`
}

// Store is a SQLite-backed implementation of confidence.Store plus the
// return-transaction log.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens (or creates) the database at dbPath and initializes the schema.
func Open(dbPath string) (*Store, error) {
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *Store) init() error {
	settingsQuery := `
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := s.db.Exec(settingsQuery); err != nil {
		return fmt.Errorf("failed to create settings table: %w", err)
	}

	transactionsQuery := `
	CREATE TABLE IF NOT EXISTS return_transactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		toolkit_id INTEGER NOT NULL,
		total_returned INTEGER NOT NULL,
		missing_count INTEGER NOT NULL,
		extra_count INTEGER NOT NULL,
		all_returned INTEGER NOT NULL,
		hand_check INTEGER NOT NULL,
		created_at DATETIME NOT NULL
	);
	`
	if _, err := s.db.Exec(transactionsQuery); err != nil {
		return fmt.Errorf("failed to create return_transactions table: %w", err)
	}

	return nil
}

// GetConfidence returns the persisted detection threshold, or the default
// when none has been saved yet.
func (s *Store) GetConfidence(ctx context.Context) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM settings WHERE key = ?", confidenceKey,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return confidence.Default, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query confidence: %w", err)
	}

	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt confidence value %q: %w", value, err)
	}
	return v, nil
}

// SetConfidence validates and persists a new threshold. Last writer wins;
// the setting is edited through a single modal at a time so no conflict
// resolution is needed.
func (s *Store) SetConfidence(ctx context.Context, v float64) error {
	if err := confidence.Validate(v); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, confidenceKey, strconv.FormatFloat(v, 'f', -1, 64), time.Now())
	if err != nil {
		return fmt.Errorf("failed to save confidence: %w", err)
	}

	return nil
}

// SaveTransaction appends a confirmed return to the log.
func (s *Store) SaveTransaction(ctx context.Context, tx *ReturnTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx.CreatedAt = time.Now()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO return_transactions
			(session_id, toolkit_id, total_returned, missing_count, extra_count, all_returned, hand_check, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, tx.SessionID, tx.ToolkitID, tx.TotalReturned, tx.MissingCount, tx.ExtraCount, tx.AllReturned, tx.HandCheck, tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save return transaction: %w", err)
	}

	tx.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read transaction id: %w", err)
	}
	return nil
}

// ListTransactions returns confirmed returns, newest first.
func (s *Store) ListTransactions(ctx context.Context) ([]ReturnTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, toolkit_id, total_returned, missing_count, extra_count, all_returned, hand_check, created_at
		FROM return_transactions
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query return transactions: %w", err)
	}
	defer rows.Close()

	var txs []ReturnTransaction
	for rows.Next() {
		var tx ReturnTransaction
		if err := rows.Scan(
			&tx.ID, &tx.SessionID, &tx.ToolkitID, &tx.TotalReturned,
			&tx.MissingCount, &tx.ExtraCount, &tx.AllReturned, &tx.HandCheck, &tx.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan return transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
