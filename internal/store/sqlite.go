package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/aichat/aichat/internal/model"
)

// settingsKey is the reserved key for the singleton settings record.
// Generated conversation ids always start with a digit, so the two
// namespaces cannot collide.
const settingsKey = "_settings"

// SQLiteStore persists conversations and the singleton settings record.
type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS conversations (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    created_at TEXT NOT NULL,
    messages TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_conversations_created_at ON conversations(created_at DESC);

CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Save upserts a conversation by id, replacing the whole record.
func (s *SQLiteStore) Save(ctx context.Context, conv *model.Conversation) error {
	messages, err := json.Marshal(conv.Messages)
	if err != nil {
		return fmt.Errorf("serialize messages: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO conversations (id, title, created_at, messages)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		    title = excluded.title,
		    created_at = excluded.created_at,
		    messages = excluded.messages`,
		conv.ID, conv.Title, conv.CreatedAt, string(messages))
	if err != nil {
		return fmt.Errorf("upsert conversation: %w", err)
	}
	return nil
}

// Get retrieves a conversation by id. A missing id yields a freshly created
// empty conversation with a new id, never an error.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*model.Conversation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, created_at, messages
		FROM conversations WHERE id = ?`, id)

	conv, err := scanConversation(row)
	if err == sql.ErrNoRows {
		return model.NewConversation(), nil
	}
	if err != nil {
		return nil, err
	}
	return conv, nil
}

// List returns all stored conversations, newest first.
func (s *SQLiteStore) List(ctx context.Context) ([]model.Conversation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, created_at, messages
		FROM conversations
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query conversations: %w", err)
	}
	defer rows.Close()

	var results []model.Conversation
	for rows.Next() {
		conv, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *conv)
	}
	return results, rows.Err()
}

// Delete removes a conversation. Deleting an absent id is a no-op.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM conversations WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	return nil
}

// SaveSettings upserts the singleton settings record.
func (s *SQLiteStore) SaveSettings(ctx context.Context, settings model.Settings) error {
	value, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("serialize settings: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`,
		settingsKey, string(value))
	if err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}
	return nil
}

// GetSettings reads the singleton settings record, returning defaults when
// none has been saved yet.
func (s *SQLiteStore) GetSettings(ctx context.Context) (model.Settings, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM settings WHERE key = ?", settingsKey).Scan(&value)
	if err == sql.ErrNoRows {
		return model.DefaultSettings(), nil
	}
	if err != nil {
		return model.Settings{}, fmt.Errorf("read settings: %w", err)
	}

	settings := model.DefaultSettings()
	if err := json.Unmarshal([]byte(value), &settings); err != nil {
		return model.Settings{}, fmt.Errorf("deserialize settings: %w", err)
	}
	return settings, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConversation(row rowScanner) (*model.Conversation, error) {
	var conv model.Conversation
	var messages string
	if err := row.Scan(&conv.ID, &conv.Title, &conv.CreatedAt, &messages); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan conversation: %w", err)
	}
	if err := json.Unmarshal([]byte(messages), &conv.Messages); err != nil {
		return nil, fmt.Errorf("deserialize messages: %w", err)
	}
	if conv.Messages == nil {
		conv.Messages = []model.Message{}
	}
	return &conv, nil
}
