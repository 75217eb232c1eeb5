package prismic

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const apiInfoJSON = `{"refs":[{"id":"preview","ref":"preview-ref","label":"Preview","isMasterRef":false},{"id":"master","ref":"master-ref","label":"Master","isMasterRef":true}]}`

// fakeRepo serves a minimal /api/v2 surface and records what it was asked.
type fakeRepo struct {
	apiHits    atomic.Int32
	lastQuery  atomic.Value
	searchBody string
	status     int
}

func (f *fakeRepo) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2", func(w http.ResponseWriter, r *http.Request) {
		f.apiHits.Add(1)
		_, _ = w.Write([]byte(apiInfoJSON))
	})
	mux.HandleFunc("/api/v2/documents/search", func(w http.ResponseWriter, r *http.Request) {
		f.lastQuery.Store(r.URL.Query())
		if f.status != 0 {
			w.WriteHeader(f.status)
			return
		}
		_, _ = w.Write([]byte(f.searchBody))
	})
	return mux
}

func newTestClient(t *testing.T, f *fakeRepo, token string) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)

	c, err := New(Config{Endpoint: srv.URL + "/api/v2", AccessToken: token, Timeout: 2 * time.Second})
	require.NoError(t, err)
	return c, srv
}

func TestNewRejectsRelativeEndpoint(t *testing.T) {
	_, err := New(Config{Endpoint: "/api/v2"})
	require.Error(t, err)
}

func TestMasterRefIsCached(t *testing.T) {
	f := &fakeRepo{}
	c, _ := newTestClient(t, f, "")

	ref, err := c.MasterRef(context.Background())
	require.NoError(t, err)
	require.Equal(t, "master-ref", ref)

	_, err = c.MasterRef(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, f.apiHits.Load())
}

func TestByTypeBuildsSearchQuery(t *testing.T) {
	f := &fakeRepo{searchBody: `{"page":1,"total_pages":2,"next_page":"https://example.cdn.prismic.io/next","results":[{"id":"1","uid":"a","type":"posts","first_publication_date":"2021-03-15T19:25:28+0000","data":{"title":"A"}}]}`}
	c, _ := newTestClient(t, f, "secret")

	resp, err := c.ByType(context.Background(), "posts", QueryOptions{PageSize: 1})
	require.NoError(t, err)
	require.Equal(t, 1, resp.Page)
	require.Equal(t, "https://example.cdn.prismic.io/next", resp.Next())
	require.Len(t, resp.Results, 1)
	require.Equal(t, "a", *resp.Results[0].UID)

	q := f.lastQuery.Load().(url.Values)
	require.Equal(t, []string{"master-ref"}, q["ref"])
	require.Equal(t, []string{`[[at(document.type,"posts")]]`}, q["q"])
	require.Equal(t, []string{"1"}, q["pageSize"])
	require.Equal(t, []string{"secret"}, q["access_token"])
}

func TestByUIDNotFound(t *testing.T) {
	f := &fakeRepo{searchBody: `{"page":1,"next_page":null,"results":[]}`}
	c, _ := newTestClient(t, f, "")

	_, err := c.ByUID(context.Background(), "posts", "missing")
	require.ErrorIs(t, err, ErrNotFound)

	q := f.lastQuery.Load().(url.Values)
	require.Equal(t, []string{`[[at(my.posts.uid,"missing")]]`}, q["q"])
}

func TestByUIDReturnsFirstResult(t *testing.T) {
	f := &fakeRepo{searchBody: `{"page":1,"next_page":null,"results":[{"id":"9","uid":"hello","type":"posts","data":{}}]}`}
	c, _ := newTestClient(t, f, "")

	doc, err := c.ByUID(context.Background(), "posts", "hello")
	require.NoError(t, err)
	require.Equal(t, "9", doc.ID)
}

func TestNonSuccessStatus(t *testing.T) {
	f := &fakeRepo{status: http.StatusBadGateway}
	c, _ := newTestClient(t, f, "tok")

	_, err := c.ByType(context.Background(), "posts", QueryOptions{})
	var se *StatusError
	require.True(t, errors.As(err, &se))
	require.Equal(t, http.StatusBadGateway, se.Code)
	require.NotContains(t, se.URL, "tok")
}

func TestPageResolvesRelativeCursor(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"page":2,"next_page":null,"results":[{"id":"2","uid":"b","type":"posts","data":{}}]}`))
	}))
	t.Cleanup(srv.Close)

	c, err := New(Config{Endpoint: srv.URL + "/api/v2"})
	require.NoError(t, err)

	resp, err := c.Page(context.Background(), "/p2")
	require.NoError(t, err)
	require.Equal(t, "/p2", gotPath)
	require.Equal(t, 2, resp.Page)
	require.Equal(t, "", resp.Next())
}

func TestPageRejectsEmptyCursor(t *testing.T) {
	c, err := New(Config{Endpoint: "https://repo.cdn.prismic.io/api/v2"})
	require.NoError(t, err)

	_, err = c.Page(context.Background(), "")
	require.Error(t, err)
}

func TestSameOrigin(t *testing.T) {
	c, err := New(Config{Endpoint: "https://repo.cdn.prismic.io/api/v2"})
	require.NoError(t, err)

	require.True(t, c.SameOrigin("https://repo.cdn.prismic.io/api/v2/documents/search?page=2"))
	require.True(t, c.SameOrigin("/api/v2/documents/search?page=2&pageSize=1&ref=master-ref"))
	require.False(t, c.SameOrigin("https://evil.example.com/api/v2/documents/search"))
	require.False(t, c.SameOrigin("//evil.example.com/x"))
	require.False(t, c.SameOrigin("https://repo.cdn.prismic.io/api/v2"))
	require.False(t, c.SameOrigin("/api/v2/documents/search/../../../other?page=2"))
	require.False(t, c.SameOrigin("/api/v2/documents/search?page=2&cachebust=1"))
}

func TestCursorsDropAccessToken(t *testing.T) {
	var (
		mu      sync.Mutex
		queries []url.Values
	)
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v2" {
			_, _ = w.Write([]byte(apiInfoJSON))
			return
		}
		q := r.URL.Query()
		mu.Lock()
		queries = append(queries, q)
		mu.Unlock()
		// The API echoes the caller's query, token included, into next_page.
		next := r.URL.Query()
		next.Set("page", "2")
		body := `{"page":1,"next_page":"` + srv.URL + r.URL.Path + "?" + next.Encode() + `","prev_page":"` + srv.URL + r.URL.Path + "?" + q.Encode() + `","results":[]}`
		if q.Get("page") == "2" {
			body = `{"page":2,"next_page":null,"results":[]}`
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	c, err := New(Config{Endpoint: srv.URL + "/api/v2", AccessToken: "SECRET"})
	require.NoError(t, err)

	first, err := c.ByType(context.Background(), "posts", QueryOptions{PageSize: 1})
	require.NoError(t, err)
	cursor := first.Next()
	require.NotEmpty(t, cursor)
	require.NotContains(t, cursor, "access_token")
	require.NotContains(t, cursor, "SECRET")
	require.NotContains(t, *first.PrevPage, "SECRET")
	require.True(t, c.SameOrigin(cursor))

	second, err := c.Page(context.Background(), cursor)
	require.NoError(t, err)
	require.Equal(t, 2, second.Page)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, queries, 2)
	require.Equal(t, "SECRET", queries[1].Get("access_token"))
	require.Equal(t, "2", queries[1].Get("page"))
}

func TestPageReplacesCallerToken(t *testing.T) {
	f := &fakeRepo{searchBody: `{"page":2,"results":[]}`}
	c, _ := newTestClient(t, f, "SECRET")

	_, err := c.Page(context.Background(), "/api/v2/documents/search?page=2&access_token=forged")
	require.NoError(t, err)
	q := f.lastQuery.Load().(url.Values)
	require.Equal(t, []string{"SECRET"}, q["access_token"])
}

func TestStripToken(t *testing.T) {
	require.Equal(t, "https://repo.cdn.prismic.io/api/v2/documents/search?page=2",
		StripToken("https://repo.cdn.prismic.io/api/v2/documents/search?access_token=x&page=2"))
	require.Equal(t, "/a?b=1", StripToken("/a?b=1"))
	require.Equal(t, "", StripToken("%zz"))
}

func TestObserverSeesEveryRequest(t *testing.T) {
	f := &fakeRepo{searchBody: `{"page":1,"results":[]}`}
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)

	var kinds []string
	c, err := New(Config{Endpoint: srv.URL + "/api/v2"}, WithObserver(func(op string, _ time.Duration, err error) {
		require.NoError(t, err)
		kinds = append(kinds, op)
	}))
	require.NoError(t, err)

	_, err = c.ByType(context.Background(), "posts", QueryOptions{})
	require.NoError(t, err)
	require.Equal(t, []string{"api", "by_type"}, kinds)
}
