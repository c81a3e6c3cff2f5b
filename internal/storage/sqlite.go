package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteStore is a SQLite-backed document store. One store holds any
// number of named collections; each collection can serve as a Backend via
// Collection.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// SQLiteOptions configures SQLiteStore behavior.
type SQLiteOptions struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging so reads do not block the
	// crawl's writes.
	EnableWAL bool
}

// DefaultSQLiteOptions returns the default store options.
func DefaultSQLiteOptions() SQLiteOptions {
	return SQLiteOptions{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// OpenSQLite opens or creates a document store at dir/arachne.db.
func OpenSQLite(dir string, opts SQLiteOptions) (*SQLiteStore, error) {
	dbPath := filepath.Join(dir, "arachne.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rwc allows creation,
	// mode=rw requires the file to exist.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports a single writer; funnel all access through one
	// connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := store.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// createTables creates the document schema if it doesn't exist.
func (s *SQLiteStore) createTables() error {
	schema := `
	-- Documents hold crawl output as JSON, one row per stored item.
	CREATE TABLE IF NOT EXISTS documents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		item_id TEXT NOT NULL,
		collection TEXT NOT NULL,
		url TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		data TEXT NOT NULL,
		metadata TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(collection);
	CREATE INDEX IF NOT EXISTS idx_documents_url ON documents(url);
	CREATE INDEX IF NOT EXISTS idx_documents_timestamp ON documents(timestamp);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// Collection returns a Backend that stores items in the named collection.
func (s *SQLiteStore) Collection(name string) *SQLiteBackend {
	return &SQLiteBackend{store: s, collection: name}
}

// Document is one stored row read back from the store.
type Document struct {
	ID         int64
	ItemID     string
	Collection string
	URL        string
	Timestamp  time.Time
	Data       map[string]any
	Metadata   map[string]any
}

// Documents returns all rows in a collection, oldest first.
func (s *SQLiteStore) Documents(ctx context.Context, collection string) ([]Document, error) {
	query := `
	SELECT id, item_id, collection, url, timestamp, data, metadata
	FROM documents
	WHERE collection = ?
	ORDER BY id
	`

	rows, err := s.db.QueryContext(ctx, query, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		var timestamp string
		var dataJSON string
		var metaJSON sql.NullString

		if err := rows.Scan(&doc.ID, &doc.ItemID, &doc.Collection, &doc.URL, &timestamp, &dataJSON, &metaJSON); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		doc.Timestamp = parseTimestamp(timestamp)
		if err := json.Unmarshal([]byte(dataJSON), &doc.Data); err != nil {
			return nil, fmt.Errorf("failed to parse document data: %w", err)
		}
		if metaJSON.Valid && metaJSON.String != "" {
			if err := json.Unmarshal([]byte(metaJSON.String), &doc.Metadata); err != nil {
				return nil, fmt.Errorf("failed to parse document metadata: %w", err)
			}
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// CountDocuments returns how many rows a collection holds.
func (s *SQLiteStore) CountDocuments(ctx context.Context, collection string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM documents WHERE collection = ?", collection).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return count, nil
}

// SQLiteBackend stores items as rows in one collection of a SQLiteStore.
type SQLiteBackend struct {
	store      *SQLiteStore
	collection string
}

// Store inserts the item as a new document row. Rows are append-only;
// re-crawled pages produce new rows rather than updates.
func (b *SQLiteBackend) Store(ctx context.Context, item Item) error {
	dataJSON, err := json.Marshal(item.Data)
	if err != nil {
		return &Error{Kind: KindSerialization, Backend: "sqlite", Err: err}
	}
	var metaJSON []byte
	if item.Metadata != nil {
		metaJSON, err = json.Marshal(item.Metadata)
		if err != nil {
			return &Error{Kind: KindSerialization, Backend: "sqlite", Err: err}
		}
	}

	query := `
	INSERT INTO documents (item_id, collection, url, timestamp, data, metadata)
	VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err = b.store.db.ExecContext(ctx, query,
		item.ID,
		b.collection,
		item.URL,
		item.Timestamp.UTC().Format("2006-01-02 15:04:05"),
		string(dataJSON),
		string(metaJSON),
	)
	if err != nil {
		return &Error{Kind: KindOperation, Backend: "sqlite", Err: err}
	}
	return nil
}

// Close is a no-op; the owning SQLiteStore holds the connection.
func (b *SQLiteBackend) Close() error {
	return nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999",
}

// parseTimestamp attempts multiple formats because SQLite may return
// timestamps differently depending on configuration. Returns zero time
// when no format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
