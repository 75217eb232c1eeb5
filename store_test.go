package spacetraveling

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "data", "mirror.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewStoreIsReopenable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mirror.db")
	s, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// Migrations run again without error.
	s, err = NewStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestNewStoreReplacesLegacyLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mirror.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE documents (uid TEXT PRIMARY KEY, type TEXT NOT NULL, first_publication_date TEXT NOT NULL DEFAULT '', payload TEXT NOT NULL, fetched_at INTEGER NOT NULL);
INSERT INTO documents VALUES ('a', 'posts', '', '{}', 0);`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	s, err := NewStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	n, err := s.Count(context.Background())
	require.NoError(t, err)
	require.Zero(t, n)

	var version int
	require.NoError(t, s.db.QueryRow(`PRAGMA user_version`).Scan(&version))
	require.Equal(t, schemaVersion, version)
}

func TestSameUIDAcrossTypes(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	post := listDoc("about")
	page := listDoc("about")
	page.ID = "page-about"
	page.Type = "page"
	require.NoError(t, s.SaveDocument(ctx, post))
	require.NoError(t, s.SaveDocument(ctx, page))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	got, err := s.GetDocument(ctx, "posts", "about")
	require.NoError(t, err)
	require.Equal(t, post.ID, got.ID)

	require.NoError(t, s.DeleteDocument(ctx, "page", "about"))
	got, err = s.GetDocument(ctx, "posts", "about")
	require.NoError(t, err, "deleting one type keeps the other")
	require.Equal(t, post.ID, got.ID)
	_, err = s.GetDocument(ctx, "page", "about")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSaveAndGetDocument(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	fixed := time.Date(2021, 3, 16, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	doc := listDoc("hooks")
	require.NoError(t, s.SaveDocument(ctx, doc))

	got, err := s.GetDocument(ctx, "posts", "hooks")
	require.NoError(t, err)
	require.Equal(t, "hooks", *got.UID)
	require.Equal(t, doc.ID, got.ID)
	require.JSONEq(t, string(doc.Data), string(got.Data))
	require.Equal(t, testPublished, *got.FirstPublicationDate)
	require.True(t, fixed.Equal(got.FetchedAt))
}

func TestSaveDocumentUpserts(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	doc := listDoc("a")
	require.NoError(t, s.SaveDocument(ctx, doc))
	doc.Data = []byte(`{"title":"new","subtitle":"s","author":"x"}`)
	require.NoError(t, s.SaveDocument(ctx, doc))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	got, err := s.GetDocument(ctx, "posts", "a")
	require.NoError(t, err)
	require.Contains(t, string(got.Data), `"new"`)
}

func TestSaveDocumentRequiresUID(t *testing.T) {
	s := setupTestStore(t)
	doc := listDoc("a")
	doc.UID = nil
	require.ErrorIs(t, s.SaveDocument(context.Background(), doc), ErrMalformedRecord)
}

func TestGetDocumentNotFound(t *testing.T) {
	s := setupTestStore(t)
	_, err := s.GetDocument(context.Background(), "posts", "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListDocumentsNewestFirst(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	old := listDoc("old")
	old.FirstPublicationDate = strp("2020-01-01T00:00:00+0000")
	mid := listDoc("mid")
	mid.FirstPublicationDate = strp("2021-03-15T19:25:28+0000")
	// Same instant as "2021-06-01T00:00:00+0000", written with an offset.
	recent := listDoc("recent")
	recent.FirstPublicationDate = strp("2021-05-31T21:00:00-0300")
	draft := listDoc("draft")
	draft.FirstPublicationDate = nil
	about := listDoc("about")
	about.Type = "page"

	require.NoError(t, s.SaveDocument(ctx, old))
	require.NoError(t, s.SaveDocument(ctx, draft))
	require.NoError(t, s.SaveDocument(ctx, recent))
	require.NoError(t, s.SaveDocument(ctx, mid))
	require.NoError(t, s.SaveDocument(ctx, about))

	docs, err := s.ListDocuments(ctx, "posts")
	require.NoError(t, err)
	var got []string
	for _, d := range docs {
		got = append(got, *d.UID)
	}
	require.Equal(t, []string{"recent", "mid", "old", "draft"}, got)

	all, err := s.ListDocuments(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 5)
}

func TestDeleteDocument(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveDocument(ctx, listDoc("a")))
	require.NoError(t, s.DeleteDocument(ctx, "posts", "a"))
	_, err := s.GetDocument(ctx, "posts", "a")
	require.ErrorIs(t, err, ErrNotFound)

	// Deleting a missing document is not an error.
	require.NoError(t, s.DeleteDocument(ctx, "posts", "a"))
}

func TestMirrorSkipsDocumentsWithoutUID(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	noUID := listDoc("x")
	noUID.UID = nil
	s.mirror(ctx, listDoc("a"), noUID, listDoc("b"))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	var nilStore *Store
	nilStore.mirror(ctx, listDoc("c"))
}
