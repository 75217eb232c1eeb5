package spacetraveling

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/eringen/spacetraveling/logctx"
	"github.com/eringen/spacetraveling/prismic"
)

// Store wraps a SQLite database holding the last good copy of every document
// fetched from the content API.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// StoredDocument is a mirrored document and when it was fetched.
type StoredDocument struct {
	prismic.Document
	FetchedAt time.Time
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	const op = "NewStore"

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	// WAL lets readers proceed during a write; busy_timeout makes writers
	// wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
		PRAGMA mmap_size=268435456;
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: pragmas: %w", op, err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db, now: time.Now}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: schema: %w", op, err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// schemaVersion is stored in PRAGMA user_version. The mirror can always be
// refetched, so older layouts are dropped rather than migrated.
const schemaVersion = 1

func (s *Store) ensureSchema() error {
	var version int
	if err := s.db.QueryRow(`PRAGMA user_version`).Scan(&version); err != nil {
		return err
	}
	if version == schemaVersion {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.Exec(`
DROP TABLE IF EXISTS documents;
CREATE TABLE documents (
    type TEXT NOT NULL,
    uid TEXT NOT NULL,
    first_publication_date TEXT NOT NULL DEFAULT '',
    payload TEXT NOT NULL,
    fetched_at INTEGER NOT NULL,
    PRIMARY KEY (type, uid)
);
CREATE INDEX documents_type_date ON documents (type, first_publication_date DESC);
`); err != nil {
		return err
	}
	if _, err := tx.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, schemaVersion)); err != nil {
		return err
	}
	return tx.Commit()
}

// sortableDate turns a raw publication timestamp into UTC RFC 3339 so rows
// order correctly as text. Null or unparseable dates sort last.
func sortableDate(raw *string) string {
	if raw == nil {
		return ""
	}
	t, err := ParsePublicationDate(*raw)
	if err != nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// SaveDocument upserts doc keyed by its type and UID.
func (s *Store) SaveDocument(ctx context.Context, doc prismic.Document) error {
	const op = "Store.SaveDocument"

	if doc.UID == nil || *doc.UID == "" {
		return fmt.Errorf("%s: %w", op, missingField(doc.ID, "uid"))
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT OR REPLACE INTO documents (type, uid, first_publication_date, payload, fetched_at) VALUES (?, ?, ?, ?, ?)`,
		doc.Type, *doc.UID, sortableDate(doc.FirstPublicationDate), string(payload), s.now().Unix())
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetDocument returns the mirrored document of docType with the given UID.
func (s *Store) GetDocument(ctx context.Context, docType, uid string) (StoredDocument, error) {
	const op = "Store.GetDocument"

	var payload string
	var fetched int64
	err := s.db.QueryRowContext(ctx, `SELECT payload, fetched_at FROM documents WHERE type = ? AND uid = ?`, docType, uid).
		Scan(&payload, &fetched)
	if errors.Is(err, sql.ErrNoRows) {
		return StoredDocument{}, fmt.Errorf("%s: %s/%s: %w", op, docType, uid, ErrNotFound)
	}
	if err != nil {
		return StoredDocument{}, fmt.Errorf("%s: %w", op, err)
	}
	return decodeStored(payload, fetched)
}

// ListDocuments returns every mirrored document of docType, newest first.
// An empty docType lists all types.
func (s *Store) ListDocuments(ctx context.Context, docType string) ([]StoredDocument, error) {
	const op = "Store.ListDocuments"

	var rows *sql.Rows
	var err error
	if docType == "" {
		rows, err = s.db.QueryContext(ctx, `SELECT payload, fetched_at FROM documents ORDER BY first_publication_date = '', first_publication_date DESC, uid`)
	} else {
		rows, err = s.db.QueryContext(ctx, `SELECT payload, fetched_at FROM documents WHERE type = ? ORDER BY first_publication_date = '', first_publication_date DESC, uid`, docType)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var docs []StoredDocument
	for rows.Next() {
		var payload string
		var fetched int64
		if err := rows.Scan(&payload, &fetched); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		doc, err := decodeStored(payload, fetched)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return docs, nil
}

// DeleteDocument removes the document of docType with the given UID.
func (s *Store) DeleteDocument(ctx context.Context, docType, uid string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE type = ? AND uid = ?`, docType, uid)
	if err != nil {
		return fmt.Errorf("Store.DeleteDocument: %w", err)
	}
	return nil
}

// Count returns the number of mirrored documents.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("Store.Count: %w", err)
	}
	return n, nil
}

// mirror saves docs, logging failures instead of returning them.
// A nil Store does nothing.
func (s *Store) mirror(ctx context.Context, docs ...prismic.Document) {
	if s == nil {
		return
	}
	for _, doc := range docs {
		if doc.UID == nil {
			continue
		}
		if err := s.SaveDocument(ctx, doc); err != nil {
			logctx.From(ctx).Warn("mirror_save_failed",
				slog.String("op", "Store.mirror"),
				slog.String("uid", *doc.UID),
				slog.String("error", err.Error()),
			)
		}
	}
}

func decodeStored(payload string, fetched int64) (StoredDocument, error) {
	var doc prismic.Document
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return StoredDocument{}, fmt.Errorf("decode payload: %w", err)
	}
	return StoredDocument{Document: doc, FetchedAt: time.Unix(fetched, 0)}, nil
}
