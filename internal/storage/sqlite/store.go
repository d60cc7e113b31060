package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/zixuanzhao/chat-relay/internal/model/chat"
	"github.com/zixuanzhao/chat-relay/internal/model/user"
)

// Store owns the SQLite database file and hands out the repositories backed
// by it.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the database at path and ensures the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS turns (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sender TEXT NOT NULL,
		receiver TEXT NOT NULL,
		message TEXT NOT NULL,
		role TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_turns_sender ON turns(sender);
	CREATE INDEX IF NOT EXISTS idx_turns_receiver ON turns(receiver);
	`
	_, err := s.db.Exec(schema)
	return err
}

// History returns the turn repository.
func (s *Store) History() *HistoryStore {
	return &HistoryStore{db: s.db}
}

// Users returns the identity repository.
func (s *Store) Users() *UserStore {
	return &UserStore{db: s.db}
}

// HistoryStore implements chat.History over SQLite. Timestamps are stored as
// RFC 3339 text so write order and sort order agree; the display string is
// derived on the way out.
type HistoryStore struct {
	db *sql.DB
}

var _ chat.History = (*HistoryStore)(nil)

// Append writes one turn as an independent atomic insert and returns it with
// its assigned id.
func (h *HistoryStore) Append(ctx context.Context, turn chat.Turn) (chat.Turn, error) {
	if turn.Sender == "" || turn.Receiver == "" || turn.Message == "" {
		return chat.Turn{}, chat.ErrEmptyTurn
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO turns (sender, receiver, message, role, created_at)
	          VALUES (?, ?, ?, ?, ?)`

	res, err := h.db.ExecContext(ctx, query,
		turn.Sender, turn.Receiver, turn.Message, string(turn.Role),
		turn.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return chat.Turn{}, fmt.Errorf("error persisting turn: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return chat.Turn{}, fmt.Errorf("error reading turn id: %w", err)
	}

	turn.ID = id
	turn.Timestamp = chat.FormatTime(turn.CreatedAt)
	return turn, nil
}

// ListFor returns every turn where username is sender or receiver, in write
// order. Zero rows is a valid result for a new user, not an error.
func (h *HistoryStore) ListFor(ctx context.Context, username string) ([]chat.Turn, error) {
	query := `SELECT id, sender, receiver, message, role, created_at FROM turns
	          WHERE sender = ? OR receiver = ?
	          ORDER BY id`

	rows, err := h.db.QueryContext(ctx, query, username, username)
	if err != nil {
		return nil, fmt.Errorf("error loading conversation: %w", err)
	}
	defer rows.Close()

	turns := make([]chat.Turn, 0, 16)
	for rows.Next() {
		var (
			turn      chat.Turn
			role      string
			createdAt string
		)
		if err := rows.Scan(&turn.ID, &turn.Sender, &turn.Receiver, &turn.Message, &role, &createdAt); err != nil {
			return nil, fmt.Errorf("error scanning turn: %w", err)
		}
		turn.Role = chat.Role(role)
		if turn.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("error parsing turn timestamp: %w", err)
		}
		turn.Timestamp = chat.FormatTime(turn.CreatedAt)
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error loading conversation: %w", err)
	}

	return turns, nil
}

// UserStore implements user.Store over SQLite.
type UserStore struct {
	db *sql.DB
}

var _ user.Store = (*UserStore)(nil)

// Create inserts a new identity record and returns it with its assigned id.
func (u *UserStore) Create(ctx context.Context, rec user.User) (user.User, error) {
	query := `INSERT INTO users (username, password_hash) VALUES (?, ?)`

	res, err := u.db.ExecContext(ctx, query, rec.Username, rec.PasswordHash)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return user.User{}, user.ErrUsernameTaken
		}
		return user.User{}, fmt.Errorf("error creating user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return user.User{}, fmt.Errorf("error reading user id: %w", err)
	}

	rec.ID = id
	return rec, nil
}

// FindByUsername looks a user up by exact username.
func (u *UserStore) FindByUsername(ctx context.Context, username string) (user.User, error) {
	query := `SELECT id, username, password_hash FROM users WHERE username = ?`

	rec := user.User{}
	err := u.db.QueryRowContext(ctx, query, username).Scan(&rec.ID, &rec.Username, &rec.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, fmt.Errorf("error loading user: %w", err)
	}

	return rec, nil
}
