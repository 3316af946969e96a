package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"santaverse/internal/models"
)

const displayNameKey = "username"

type dialect struct {
	name   string
	schema string
	isFull func(error) bool
	// numbered placeholders ($1, $2, ...) instead of ?
	numbered bool
}

var sqliteDialect = dialect{
	name: "sqlite3",
	schema: `
	CREATE TABLE IF NOT EXISTS gallery_items (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		username TEXT NOT NULL,
		image BLOB NOT NULL,
		content_type TEXT NOT NULL,
		likes INTEGER NOT NULL DEFAULT 0,
		views INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS session_values (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS chat_messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		conversation_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		sender TEXT NOT NULL,
		text TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_chat_conversation ON chat_messages(conversation_id);
	`,
	isFull: func(err error) bool {
		var se sqlite3.Error
		return errors.As(err, &se) && se.Code == sqlite3.ErrFull
	},
}

var postgresDialect = dialect{
	name:     "postgres",
	numbered: true,
	schema: `
	CREATE TABLE IF NOT EXISTS gallery_items (
		seq BIGSERIAL PRIMARY KEY,
		id TEXT NOT NULL UNIQUE,
		username TEXT NOT NULL,
		image BYTEA NOT NULL,
		content_type TEXT NOT NULL,
		likes INTEGER NOT NULL DEFAULT 0,
		views INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS session_values (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS chat_messages (
		id BIGSERIAL PRIMARY KEY,
		conversation_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		sender TEXT NOT NULL,
		text TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_chat_conversation ON chat_messages(conversation_id);
	`,
	isFull: func(err error) bool {
		var pe *pq.Error
		return errors.As(err, &pe) && pe.Code.Name() == "disk_full"
	},
}

// DB wraps the database connection with the gallery, session and
// transcript tables.
type DB struct {
	*sql.DB
	dialect dialect
	opts    Options
}

// InitDB opens the sqlite database at dbPath and creates the tables.
func InitDB(dbPath string, opts Options) (*DB, error) {
	db, err := sql.Open(sqliteDialect.name, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// sqlite serialises writers; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	return newDB(context.Background(), db, sqliteDialect, opts)
}

// InitPostgres connects to Postgres and creates the tables.
func InitPostgres(ctx context.Context, dsn string, opts Options) (*DB, error) {
	db, err := sql.Open(postgresDialect.name, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	return newDB(ctx, db, postgresDialect, opts)
}

func newDB(ctx context.Context, db *sql.DB, d dialect, opts Options) (*DB, error) {
	if _, err := db.ExecContext(ctx, d.schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return &DB{DB: db, dialect: d, opts: opts.withDefaults()}, nil
}

// q rewrites ? placeholders for dialects that number them.
func (db *DB) q(query string) string {
	if !db.dialect.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

const galleryColumns = `id, username, image, content_type, likes, views, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (models.GalleryItem, error) {
	var it models.GalleryItem
	err := row.Scan(&it.ID, &it.Username, &it.Image, &it.ContentType, &it.Likes, &it.Views, &it.CreatedAt)
	return it, err
}

// ListItems returns every gallery item in creation order.
func (db *DB) ListItems(ctx context.Context) ([]models.GalleryItem, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+galleryColumns+` FROM gallery_items ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("list gallery: %w", err)
	}
	defer rows.Close()

	var items []models.GalleryItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan gallery item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// GetItem loads one item.
func (db *DB) GetItem(ctx context.Context, id string) (models.GalleryItem, error) {
	it, err := scanItem(db.QueryRowContext(ctx, db.q(`SELECT `+galleryColumns+` FROM gallery_items WHERE id = ?`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.GalleryItem{}, ErrNotFound
	}
	if err != nil {
		return models.GalleryItem{}, fmt.Errorf("get gallery item: %w", err)
	}
	return it, nil
}

// AddItem appends a new item with zero counters.
func (db *DB) AddItem(ctx context.Context, username string, image []byte, contentType string) (models.GalleryItem, error) {
	item := models.GalleryItem{
		ID:          db.opts.NewID(),
		Username:    normalizeUsername(username),
		Image:       image,
		ContentType: contentType,
		CreatedAt:   db.opts.Now().UTC(),
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return models.GalleryItem{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if db.opts.QuotaBytes > 0 {
		var used int64
		if err := tx.QueryRowContext(ctx, `SELECT COALESCE(SUM(LENGTH(image)), 0) FROM gallery_items`).Scan(&used); err != nil {
			return models.GalleryItem{}, fmt.Errorf("gallery usage: %w", err)
		}
		if used+int64(len(image)) > db.opts.QuotaBytes {
			return models.GalleryItem{}, ErrStorageFull
		}
	}

	_, err = tx.ExecContext(ctx, db.q(`INSERT INTO gallery_items (id, username, image, content_type, likes, views, created_at)
	          VALUES (?, ?, ?, ?, 0, 0, ?)`),
		item.ID, item.Username, item.Image, item.ContentType, item.CreatedAt)
	if err == nil {
		err = tx.Commit()
	}
	if err != nil {
		if db.dialect.isFull(err) {
			return models.GalleryItem{}, fmt.Errorf("%w: %v", ErrStorageFull, err)
		}
		return models.GalleryItem{}, fmt.Errorf("add gallery item: %w", err)
	}
	return item, nil
}

// IncrementLikes adds one like and returns the updated item.
func (db *DB) IncrementLikes(ctx context.Context, id string) (models.GalleryItem, error) {
	res, err := db.ExecContext(ctx, db.q(`UPDATE gallery_items SET likes = likes + 1 WHERE id = ?`), id)
	if err != nil {
		return models.GalleryItem{}, fmt.Errorf("like gallery item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.GalleryItem{}, ErrNotFound
	}
	return db.GetItem(ctx, id)
}

// IncrementViews adds one view. Unknown ids are ignored.
func (db *DB) IncrementViews(ctx context.Context, id string) error {
	if _, err := db.ExecContext(ctx, db.q(`UPDATE gallery_items SET views = views + 1 WHERE id = ?`), id); err != nil {
		return fmt.Errorf("view gallery item: %w", err)
	}
	return nil
}

// GetDisplayName returns the stored display name, if any.
func (db *DB) GetDisplayName(ctx context.Context) (string, bool, error) {
	var name string
	err := db.QueryRowContext(ctx, db.q(`SELECT value FROM session_values WHERE key = ?`), displayNameKey).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get display name: %w", err)
	}
	return name, true, nil
}

// SetDisplayName stores the display name.
func (db *DB) SetDisplayName(ctx context.Context, name string) error {
	_, err := db.ExecContext(ctx, db.q(`INSERT INTO session_values (key, value) VALUES (?, ?)
	          ON CONFLICT (key) DO UPDATE SET value = excluded.value`), displayNameKey, name)
	if err != nil {
		return fmt.Errorf("set display name: %w", err)
	}
	return nil
}

// SaveChatMessage appends a message to a conversation transcript.
func (db *DB) SaveChatMessage(ctx context.Context, conversationID string, msg models.ChatMessage) error {
	_, err := db.ExecContext(ctx, db.q(`INSERT INTO chat_messages (conversation_id, seq, sender, text, created_at)
	          VALUES (?, ?, ?, ?, ?)`),
		conversationID, msg.Seq, string(msg.Sender), msg.Text, msg.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("save chat message: %w", err)
	}
	return nil
}

// GetChatMessages returns a conversation transcript in order.
func (db *DB) GetChatMessages(ctx context.Context, conversationID string) ([]models.ChatMessage, error) {
	rows, err := db.QueryContext(ctx, db.q(`SELECT seq, sender, text, created_at
	                        FROM chat_messages WHERE conversation_id = ? ORDER BY seq ASC`), conversationID)
	if err != nil {
		return nil, fmt.Errorf("get chat messages: %w", err)
	}
	defer rows.Close()

	var messages []models.ChatMessage
	for rows.Next() {
		var msg models.ChatMessage
		var sender string
		if err := rows.Scan(&msg.Seq, &sender, &msg.Text, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		msg.Sender = models.Sender(sender)
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
