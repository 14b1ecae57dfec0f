package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/profyt7/carelinkai-sub003/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/profyt7/carelinkai-sub003/internal/core/domain"
	"github.com/profyt7/carelinkai-sub003/internal/core/ports/driven"
)

// timeLayout is how timestamps are stored. Fixed width keeps text ordering
// equal to time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store is a SQLite database holding the offline document cache.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.carelink/data/cache.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".carelink", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "cache.db")

	// WAL lets the watch command write while list --offline reads.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
		now:  time.Now,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
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

// DocumentCache returns a DocumentCache backed by this store.
func (s *Store) DocumentCache() driven.DocumentCache {
	return &documentCache{store: s}
}

// migrate runs all pending migrations and records their versions.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_documents.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if err := s.apply(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *Store) apply(version int, script string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(script); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

// ==================== Document Cache ====================

// documentCache implements driven.DocumentCache.
type documentCache struct {
	store *Store
}

var _ driven.DocumentCache = (*documentCache)(nil)

// SaveDocuments upserts documents under a family in one transaction.
func (c *documentCache) SaveDocuments(ctx context.Context, familyID string, docs []domain.Document) error {
	if len(docs) == 0 {
		return nil
	}

	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO documents (id, family_id, title, description, type, tags, is_encrypted,
			file_name, mime_type, file_size, file_url, comment_count, created_at, updated_at, cached_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			family_id = excluded.family_id,
			title = excluded.title,
			description = excluded.description,
			type = excluded.type,
			tags = excluded.tags,
			is_encrypted = excluded.is_encrypted,
			file_name = excluded.file_name,
			mime_type = excluded.mime_type,
			file_size = excluded.file_size,
			file_url = excluded.file_url,
			comment_count = excluded.comment_count,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			cached_at = excluded.cached_at
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	cachedAt := formatTime(c.store.now())
	for i := range docs {
		doc := &docs[i]
		owner := doc.FamilyID
		if owner == "" {
			owner = familyID
		}
		tags, err := json.Marshal(doc.Tags)
		if err != nil {
			return fmt.Errorf("marshalling tags: %w", err)
		}

		if _, err := stmt.ExecContext(ctx, doc.ID, owner, doc.Title, doc.Description,
			string(doc.Type), string(tags), doc.IsEncrypted, doc.FileName, doc.MimeType,
			doc.FileSize, doc.FileURL, doc.CommentCount,
			formatTime(doc.CreatedAt), formatTime(doc.UpdatedAt), cachedAt); err != nil {
			return fmt.Errorf("saving document %s: %w", doc.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// DeleteDocument removes a cached document.
func (c *documentCache) DeleteDocument(ctx context.Context, id string) error {
	_, err := c.store.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// ListDocuments returns a family's cached documents, newest first.
func (c *documentCache) ListDocuments(ctx context.Context, familyID string) ([]domain.Document, error) {
	rows, err := c.store.db.QueryContext(ctx, `
		SELECT id, family_id, title, description, type, tags, is_encrypted,
			file_name, mime_type, file_size, file_url, comment_count, created_at, updated_at
		FROM documents WHERE family_id = ?
		ORDER BY created_at DESC, id
	`, familyID)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}

// Clear drops a family's cached documents.
func (c *documentCache) Clear(ctx context.Context, familyID string) error {
	_, err := c.store.db.ExecContext(ctx, "DELETE FROM documents WHERE family_id = ?", familyID)
	if err != nil {
		return fmt.Errorf("clearing documents: %w", err)
	}
	return nil
}

func scanDocument(rows *sql.Rows) (*domain.Document, error) {
	var (
		doc                  domain.Document
		docType, tags        string
		createdAt, updatedAt string
	)

	if err := rows.Scan(&doc.ID, &doc.FamilyID, &doc.Title, &doc.Description, &docType, &tags,
		&doc.IsEncrypted, &doc.FileName, &doc.MimeType, &doc.FileSize, &doc.FileURL,
		&doc.CommentCount, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	doc.Type = domain.DocumentType(docType)
	if tags != "" && tags != "null" {
		if err := json.Unmarshal([]byte(tags), &doc.Tags); err != nil {
			return nil, fmt.Errorf("unmarshaling tags: %w", err)
		}
	}

	var err error
	if doc.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if doc.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &doc, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, errors.Join(fmt.Errorf("parsing timestamp %q", s), err)
	}
	return t, nil
}
