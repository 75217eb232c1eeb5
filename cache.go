package spacetraveling

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/eringen/spacetraveling/cache"
	"github.com/eringen/spacetraveling/logctx"
	"github.com/eringen/spacetraveling/prismic"
)

// maxWalkPages bounds AllDocuments and AllPosts.
const maxWalkPages = 1000

// walkPageSize is the page size used when walking every post.
const walkPageSize = 100

// PostCacheConfig tunes a PostCache.
type PostCacheConfig struct {
	DocType    string        // default "posts"
	PageSize   int           // home page size (default 1)
	TTL        time.Duration // default 5min
	Normalizer Normalizer
	Metrics    *Metrics
}

// PostCache sits between the site and the content API. It implements
// ContentClient, caching every answer in a cache.Backend for TTL and
// collapsing concurrent misses for the same key into one request. Documents
// fetched through it are copied into the Store, which serves as a stale
// fallback while the content API is failing.
type PostCache struct {
	client  ContentClient
	backend cache.Backend
	store   *Store
	cfg     PostCacheConfig
	group   singleflight.Group

	mu       sync.RWMutex
	purgedAt time.Time
}

// NewPostCache wraps client. store may be nil.
func NewPostCache(client ContentClient, backend cache.Backend, store *Store, cfg PostCacheConfig) *PostCache {
	if cfg.DocType == "" {
		cfg.DocType = "posts"
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 1
	}
	if cfg.TTL == 0 {
		cfg.TTL = 5 * time.Minute
	}
	if cfg.Normalizer == (Normalizer{}) {
		cfg.Normalizer = DefaultNormalizer
	}
	if store != nil {
		client = mirrorClient{ContentClient: client, store: store}
	}
	return &PostCache{
		client:   client,
		backend:  backend,
		store:    store,
		cfg:      cfg,
		purgedAt: time.Now(),
	}
}

// ByType returns a cached search page.
func (c *PostCache) ByType(ctx context.Context, docType string, opts prismic.QueryOptions) (*prismic.Response, error) {
	key := fmt.Sprintf("type:%s:%d:%d:%s", docType, opts.PageSize, opts.Page, opts.Orderings)
	return cached(ctx, c, "by_type", key, func(ctx context.Context) (*prismic.Response, error) {
		resp, err := c.client.ByType(ctx, docType, opts)
		if err != nil {
			return nil, fetchError("PostCache.ByType", err)
		}
		return resp, nil
	})
}

// ByUID returns a cached document.
func (c *PostCache) ByUID(ctx context.Context, docType, uid string) (*prismic.Document, error) {
	key := "uid:" + docType + ":" + uid
	return cached(ctx, c, "by_uid", key, func(ctx context.Context) (*prismic.Document, error) {
		doc, err := c.client.ByUID(ctx, docType, uid)
		if err != nil {
			return nil, fetchError("PostCache.ByUID", err)
		}
		return doc, nil
	})
}

// Page returns a cached next page.
func (c *PostCache) Page(ctx context.Context, cursor string) (*prismic.Response, error) {
	return cached(ctx, c, "page", "page:"+cursor, func(ctx context.Context) (*prismic.Response, error) {
		resp, err := c.client.Page(ctx, cursor)
		if err != nil {
			return nil, fetchError("PostCache.Page", err)
		}
		return resp, nil
	})
}

// FirstPage returns page 1 of the post listing. While the content API fails
// it serves the newest mirrored posts as a single page without a cursor.
func (c *PostCache) FirstPage(ctx context.Context) (*prismic.Response, error) {
	const op = "PostCache.FirstPage"

	resp, err := c.ByType(ctx, c.cfg.DocType, prismic.QueryOptions{PageSize: c.cfg.PageSize})
	if err == nil || !errors.Is(err, ErrFetchFailed) || c.store == nil {
		return resp, err
	}
	docs, serr := c.store.ListDocuments(ctx, c.cfg.DocType)
	if serr != nil || len(docs) == 0 {
		return nil, err
	}
	c.staleFallback(ctx, op, "first_page", err)
	if len(docs) > c.cfg.PageSize {
		docs = docs[:c.cfg.PageSize]
	}
	stale := &prismic.Response{Page: 1, ResultsPerPage: c.cfg.PageSize, ResultsSize: len(docs), TotalPages: 1}
	for _, d := range docs {
		stale.Results = append(stale.Results, d.Document)
	}
	return stale, nil
}

// Detail returns the post with the given UID. A post the content API no
// longer knows is dropped from the mirror. While the content API fails the
// mirrored copy is served.
func (c *PostCache) Detail(ctx context.Context, uid string) (*prismic.Document, error) {
	const op = "PostCache.Detail"

	doc, err := c.ByUID(ctx, c.cfg.DocType, uid)
	switch {
	case err == nil || c.store == nil:
		return doc, err
	case errors.Is(err, ErrNotFound):
		if derr := c.store.DeleteDocument(ctx, c.cfg.DocType, uid); derr != nil {
			logctx.From(ctx).Warn("mirror_delete_failed",
				slog.String("op", op),
				slog.String("uid", uid),
				slog.String("error", derr.Error()),
			)
		}
		return nil, err
	case errors.Is(err, ErrFetchFailed):
		stored, serr := c.store.GetDocument(ctx, c.cfg.DocType, uid)
		if serr != nil {
			return nil, err
		}
		c.staleFallback(ctx, op, "detail", err)
		return &stored.Document, nil
	}
	return nil, err
}

// Paginator starts a paginator on the cached first page.
func (c *PostCache) Paginator(ctx context.Context) (*Paginator, error) {
	first, err := c.FirstPage(ctx)
	if err != nil {
		return nil, err
	}
	return NewPaginator(c, c.cfg.Normalizer, first)
}

// Resume rebuilds a paginator from a cursor and page number.
func (c *PostCache) Resume(cursor string, page int) *Paginator {
	return ResumePaginator(c, c.cfg.Normalizer, cursor, page)
}

// AllDocuments walks every page of the listing and returns the raw
// documents, newest first. While the content API fails it returns the
// mirrored documents.
func (c *PostCache) AllDocuments(ctx context.Context) ([]prismic.Document, error) {
	const op = "PostCache.AllDocuments"

	docs, err := c.walk(ctx)
	if err == nil || !errors.Is(err, ErrFetchFailed) || c.store == nil {
		return docs, err
	}
	stored, serr := c.store.ListDocuments(ctx, c.cfg.DocType)
	if serr != nil {
		return nil, err
	}
	c.staleFallback(ctx, op, "all", err)
	docs = make([]prismic.Document, 0, len(stored))
	for _, d := range stored {
		docs = append(docs, d.Document)
	}
	return docs, nil
}

func (c *PostCache) walk(ctx context.Context) ([]prismic.Document, error) {
	const op = "PostCache.walk"

	resp, err := c.ByType(ctx, c.cfg.DocType, prismic.QueryOptions{
		PageSize:  walkPageSize,
		Orderings: "[document.first_publication_date desc]",
	})
	if err != nil {
		return nil, err
	}
	docs := append([]prismic.Document(nil), resp.Results...)
	for i := 1; resp.Next() != ""; i++ {
		if i >= maxWalkPages {
			return nil, fmt.Errorf("%s: more than %d pages", op, maxWalkPages)
		}
		if resp, err = c.Page(ctx, resp.Next()); err != nil {
			return nil, err
		}
		docs = append(docs, resp.Results...)
	}
	return docs, nil
}

// AllPosts loads every post through a Paginator.
func (c *PostCache) AllPosts(ctx context.Context) ([]Post, error) {
	const op = "PostCache.AllPosts"

	first, err := c.ByType(ctx, c.cfg.DocType, prismic.QueryOptions{
		PageSize:  walkPageSize,
		Orderings: "[document.first_publication_date desc]",
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	p, err := NewPaginator(c, c.cfg.Normalizer, first)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for i := 1; p.HasMore(); i++ {
		if i >= maxWalkPages {
			return nil, fmt.Errorf("%s: more than %d pages", op, maxWalkPages)
		}
		if _, err := p.LoadMore(ctx); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	return p.Posts(), nil
}

// Invalidate drops every cached entry so the next read goes to the content
// API.
func (c *PostCache) Invalidate(ctx context.Context) error {
	if err := c.backend.Purge(ctx); err != nil {
		return fmt.Errorf("PostCache.Invalidate: %w", err)
	}
	c.mu.Lock()
	c.purgedAt = time.Now()
	c.mu.Unlock()
	return nil
}

// PurgedAt returns when the cache was last invalidated (or created).
func (c *PostCache) PurgedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.purgedAt
}

func (c *PostCache) staleFallback(ctx context.Context, op, kind string, cause error) {
	c.cfg.Metrics.CacheLookup(kind, "stale")
	logctx.From(ctx).Warn("serving_mirror_copy",
		slog.String("op", op),
		slog.String("error", cause.Error()),
	)
}

// cached reads key from the backend or loads, stores and returns it.
// Backend failures degrade to a direct load.
func cached[T any](ctx context.Context, c *PostCache, kind, key string, load func(context.Context) (T, error)) (T, error) {
	log := logctx.From(ctx)

	if raw, ok, err := c.backend.Get(ctx, key); err != nil {
		log.Warn("cache_get_failed", slog.String("key", key), slog.String("error", err.Error()))
	} else if ok {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			c.cfg.Metrics.CacheLookup(kind, "hit")
			return v, nil
		}
		log.Warn("cache_entry_corrupt", slog.String("key", key))
	}
	c.cfg.Metrics.CacheLookup(kind, "miss")

	// The shared load ignores cancellation of the request that started it.
	shared := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do(key, func() (any, error) {
		v, err := load(shared)
		if err != nil {
			return v, err
		}
		if raw, err := json.Marshal(v); err == nil {
			if err := c.backend.Set(shared, key, raw, c.cfg.TTL); err != nil {
				log.Warn("cache_set_failed", slog.String("key", key), slog.String("error", err.Error()))
			}
		}
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
