package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/empathai/backend/internal/model/chat"
	"github.com/empathai/backend/internal/model/memory"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository on a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (creating if necessary) the database at dbPath and
// bootstraps the schema.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	// WAL keeps readers unblocked while a turn is being persisted. The
	// _pragma form applies to every pooled connection.
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL UNIQUE,
		created_at INTEGER NOT NULL,
		last_seen INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS conversations (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		session_id TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		message_count INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_conversations_user ON conversations(user_id);
	CREATE INDEX IF NOT EXISTS idx_conversations_session ON conversations(user_id, session_id);

	CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		conversation_id TEXT NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		emotion TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, created_at);

	CREATE TABLE IF NOT EXISTS memories (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		memory_type TEXT NOT NULL,
		content TEXT NOT NULL,
		confidence REAL NOT NULL DEFAULT 1.0,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_memories_user_type ON memories(user_id, memory_type);
	CREATE INDEX IF NOT EXISTS idx_memories_confidence ON memories(confidence) WHERE is_active = 1;
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GetUser retrieves a user by external identifier.
func (s *SQLiteStore) GetUser(ctx context.Context, userID string) (*chat.User, error) {
	query := `SELECT id, user_id, created_at, last_seen FROM users WHERE user_id = ?`

	var user chat.User
	var createdAt, lastSeen int64
	err := s.db.QueryRowContext(ctx, query, userID).Scan(&user.ID, &user.UserID, &createdAt, &lastSeen)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan user row: %w", err)
	}

	user.CreatedAt = time.Unix(createdAt, 0).UTC()
	user.LastSeen = time.Unix(lastSeen, 0).UTC()
	return &user, nil
}

// CreateUser inserts a new user record.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *chat.User) error {
	query := `INSERT INTO users (id, user_id, created_at, last_seen) VALUES (?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		user.ID, user.UserID, user.CreatedAt.Unix(), user.LastSeen.Unix())
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// TouchUser updates last_seen for an existing user.
func (s *SQLiteStore) TouchUser(ctx context.Context, userID string, lastSeen time.Time) error {
	query := `UPDATE users SET last_seen = ? WHERE user_id = ?`
	result, err := s.db.ExecContext(ctx, query, lastSeen.Unix(), userID)
	if err != nil {
		return fmt.Errorf("update last_seen: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// FindConversation resolves the conversation a (user, session) pair maps to.
// The earliest conversation wins so a replayed session id stays stable.
func (s *SQLiteStore) FindConversation(ctx context.Context, userID, sessionID string) (*chat.Conversation, error) {
	query := `
		SELECT id, user_id, session_id, started_at, message_count
		FROM conversations WHERE user_id = ? AND session_id = ?
		ORDER BY started_at ASC, rowid ASC LIMIT 1`

	var conv chat.Conversation
	var startedAt int64
	err := s.db.QueryRowContext(ctx, query, userID, sessionID).Scan(
		&conv.ID, &conv.UserID, &conv.SessionID, &startedAt, &conv.MessageCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan conversation row: %w", err)
	}

	conv.StartedAt = time.Unix(startedAt, 0).UTC()
	return &conv, nil
}

// CreateConversation inserts a new conversation record.
func (s *SQLiteStore) CreateConversation(ctx context.Context, conv *chat.Conversation) error {
	query := `
		INSERT INTO conversations (id, user_id, session_id, started_at, message_count)
		VALUES (?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		conv.ID, conv.UserID, conv.SessionID, conv.StartedAt.Unix(), conv.MessageCount)
	if err != nil {
		return fmt.Errorf("insert conversation: %w", err)
	}
	return nil
}

// ListConversations returns a user's conversations, newest first.
func (s *SQLiteStore) ListConversations(ctx context.Context, userID string) ([]chat.Conversation, error) {
	query := `
		SELECT id, user_id, session_id, started_at, message_count
		FROM conversations WHERE user_id = ?
		ORDER BY started_at DESC, rowid DESC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query conversations: %w", err)
	}
	defer rows.Close()

	var conversations []chat.Conversation
	for rows.Next() {
		var conv chat.Conversation
		var startedAt int64
		if err := rows.Scan(&conv.ID, &conv.UserID, &conv.SessionID, &startedAt, &conv.MessageCount); err != nil {
			return nil, fmt.Errorf("scan conversation row: %w", err)
		}
		conv.StartedAt = time.Unix(startedAt, 0).UTC()
		conversations = append(conversations, conv)
	}
	return conversations, rows.Err()
}

// BumpMessageCount increments a conversation's message counter.
func (s *SQLiteStore) BumpMessageCount(ctx context.Context, conversationID string, delta int) error {
	query := `UPDATE conversations SET message_count = message_count + ? WHERE id = ?`
	result, err := s.db.ExecContext(ctx, query, delta, conversationID)
	if err != nil {
		return fmt.Errorf("bump message count: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// InsertMessage appends an immutable message row.
func (s *SQLiteStore) InsertMessage(ctx context.Context, msg *chat.Message) error {
	query := `
		INSERT INTO messages (id, conversation_id, role, content, emotion, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	var emotion interface{}
	if msg.Emotion != "" {
		emotion = msg.Emotion
	}

	_, err := s.db.ExecContext(ctx, query,
		msg.ID, msg.ConversationID, msg.Role, msg.Content, emotion, msg.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// RecentMessages returns the last limit messages in chronological order.
func (s *SQLiteStore) RecentMessages(ctx context.Context, conversationID string, limit int) ([]chat.Message, error) {
	if limit < 1 {
		limit = 1
	}
	query := `
		SELECT id, conversation_id, role, content, emotion, created_at
		FROM messages WHERE conversation_id = ?
		ORDER BY created_at DESC, rowid DESC LIMIT ?`

	messages, err := s.queryMessages(ctx, query, conversationID, limit)
	if err != nil {
		return nil, err
	}

	// Flip the reverse-chronological page back into transcript order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// ListMessages returns the full transcript in chronological order.
func (s *SQLiteStore) ListMessages(ctx context.Context, conversationID string) ([]chat.Message, error) {
	query := `
		SELECT id, conversation_id, role, content, emotion, created_at
		FROM messages WHERE conversation_id = ?
		ORDER BY created_at ASC, rowid ASC`
	return s.queryMessages(ctx, query, conversationID)
}

func (s *SQLiteStore) queryMessages(ctx context.Context, query string, args ...interface{}) ([]chat.Message, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var messages []chat.Message
	for rows.Next() {
		var msg chat.Message
		var emotion sql.NullString
		var createdAt int64
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.Role, &msg.Content, &emotion, &createdAt); err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		msg.Emotion = emotion.String
		msg.CreatedAt = time.Unix(createdAt, 0).UTC()
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// InsertMemory stores an extracted memory with its confidence clamped.
func (s *SQLiteStore) InsertMemory(ctx context.Context, mem *memory.Memory) error {
	query := `
		INSERT INTO memories (id, user_id, memory_type, content, confidence, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	active := 0
	if mem.Active {
		active = 1
	}

	_, err := s.db.ExecContext(ctx, query,
		mem.ID, mem.UserID, mem.Kind, mem.Content,
		memory.Clamp(mem.Confidence), active, mem.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("insert memory: %w", err)
	}
	return nil
}

// ListActiveMemories returns up to limit active memories, highest confidence
// first, ties broken by recency.
func (s *SQLiteStore) ListActiveMemories(ctx context.Context, userID string, limit int) ([]memory.Memory, error) {
	if limit < 1 {
		limit = 1
	}
	query := `
		SELECT id, user_id, memory_type, content, confidence, is_active, created_at
		FROM memories WHERE user_id = ? AND is_active = 1
		ORDER BY confidence DESC, created_at DESC, rowid DESC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query memories: %w", err)
	}
	defer rows.Close()

	var memories []memory.Memory
	for rows.Next() {
		var mem memory.Memory
		var active int
		var createdAt int64
		if err := rows.Scan(&mem.ID, &mem.UserID, &mem.Kind, &mem.Content, &mem.Confidence, &active, &createdAt); err != nil {
			return nil, fmt.Errorf("scan memory row: %w", err)
		}
		mem.Active = active != 0
		mem.CreatedAt = time.Unix(createdAt, 0).UTC()
		memories = append(memories, mem)
	}
	return memories, rows.Err()
}

// DeactivateMemory soft-deletes a memory.
func (s *SQLiteStore) DeactivateMemory(ctx context.Context, memoryID string) error {
	query := `UPDATE memories SET is_active = 0 WHERE id = ?`
	result, err := s.db.ExecContext(ctx, query, memoryID)
	if err != nil {
		return fmt.Errorf("deactivate memory: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// CountConversations returns the number of conversations a user owns.
func (s *SQLiteStore) CountConversations(ctx context.Context, userID string) (int, error) {
	return s.countRows(ctx, `SELECT COUNT(*) FROM conversations WHERE user_id = ?`, userID)
}

// CountActiveMemories returns the number of active memories a user owns.
func (s *SQLiteStore) CountActiveMemories(ctx context.Context, userID string) (int, error) {
	return s.countRows(ctx, `SELECT COUNT(*) FROM memories WHERE user_id = ? AND is_active = 1`, userID)
}

func (s *SQLiteStore) countRows(ctx context.Context, query string, args ...interface{}) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count rows: %w", err)
	}
	return count, nil
}

// Stats aggregates system-wide counters.
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	counts := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(*) FROM users`, &stats.Users},
		{`SELECT COUNT(*) FROM conversations`, &stats.Conversations},
		{`SELECT COUNT(*) FROM messages`, &stats.Messages},
		{`SELECT COUNT(*) FROM memories WHERE is_active = 1`, &stats.ActiveMemories},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("aggregate stats: %w", err)
		}
	}

	midnight := time.Now().UTC().Truncate(24 * time.Hour).Unix()
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM conversations WHERE started_at >= ?`, midnight,
	).Scan(&stats.ConversationsToday)
	if err != nil {
		return nil, fmt.Errorf("aggregate stats: %w", err)
	}

	return stats, nil
}

// RecentUsers lists the most recently seen users.
func (s *SQLiteStore) RecentUsers(ctx context.Context, limit int) ([]RecentUser, error) {
	if limit < 1 {
		limit = 1
	}
	query := `SELECT user_id, last_seen FROM users ORDER BY last_seen DESC, rowid DESC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent users: %w", err)
	}
	defer rows.Close()

	var users []RecentUser
	for rows.Next() {
		var u RecentUser
		var lastSeen int64
		if err := rows.Scan(&u.UserID, &lastSeen); err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		u.LastSeen = time.Unix(lastSeen, 0).UTC()
		users = append(users, u)
	}
	return users, rows.Err()
}
