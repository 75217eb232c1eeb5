package spacetraveling

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/eringen/spacetraveling/logctx"
	"github.com/eringen/spacetraveling/prismic"
)

// Paginator holds the posts loaded so far for one listing view, the cursor
// naming the next page and the current page number. Posts are only ever
// appended, in the order the content API returned them.
type Paginator struct {
	client ContentClient
	norm   Normalizer

	mu       sync.Mutex
	posts    []Post
	next     string
	page     int
	inFlight bool
}

// NewPaginator starts a paginator from the pre-fetched first page.
func NewPaginator(client ContentClient, norm Normalizer, first *prismic.Response) (*Paginator, error) {
	const op = "NewPaginator"

	p := &Paginator{client: client, norm: norm, page: 1}
	if first == nil {
		return p, nil
	}
	posts := make([]Post, 0, len(first.Results))
	for _, raw := range first.Results {
		post, err := norm.ListItem(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		posts = append(posts, post)
	}
	p.posts = posts
	p.next = first.Next()
	if first.Page > 1 {
		p.page = first.Page
	}
	return p, nil
}

// ResumePaginator rebuilds a paginator from a cursor and page number carried
// by the client, with no posts loaded yet.
func ResumePaginator(client ContentClient, norm Normalizer, cursor string, page int) *Paginator {
	if page < 1 {
		page = 1
	}
	return &Paginator{client: client, norm: norm, next: cursor, page: page}
}

// LoadMore fetches the page named by the cursor, appends its posts and
// returns them. It is a no-op once the cursor is exhausted. A call that
// overlaps another returns ErrLoadInProgress. On error the paginator is left
// unchanged.
func (p *Paginator) LoadMore(ctx context.Context) ([]Post, error) {
	const op = "Paginator.LoadMore"

	p.mu.Lock()
	if p.inFlight {
		p.mu.Unlock()
		return nil, fmt.Errorf("%s: %w", op, ErrLoadInProgress)
	}
	if p.next == "" {
		p.mu.Unlock()
		return nil, nil
	}
	cursor := p.next
	p.inFlight = true
	p.mu.Unlock()

	loaded, resp, err := p.fetch(ctx, cursor)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.inFlight = false
	if err != nil {
		logctx.From(ctx).Warn("load_more_failed",
			slog.String("op", op),
			slog.Int("page", p.page),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	p.posts = append(p.posts, loaded...)
	p.next = resp.Next()
	if resp.Page > p.page {
		p.page = resp.Page
	} else {
		p.page++
	}
	return loaded, nil
}

func (p *Paginator) fetch(ctx context.Context, cursor string) ([]Post, *prismic.Response, error) {
	resp, err := p.client.Page(ctx, cursor)
	if err != nil {
		return nil, nil, fetchError("page", err)
	}
	loaded := make([]Post, 0, len(resp.Results))
	for _, raw := range resp.Results {
		post, err := p.norm.ListItem(raw)
		if err != nil {
			return nil, nil, err
		}
		loaded = append(loaded, post)
	}
	return loaded, resp, nil
}

// Posts returns a copy of the loaded posts.
func (p *Paginator) Posts() []Post {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Post(nil), p.posts...)
}

// Cursor returns the next-page cursor, or "" when there are no more pages.
func (p *Paginator) Cursor() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.next
}

func (p *Paginator) Page() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.page
}

// HasMore reports whether the "load more" affordance should be shown.
func (p *Paginator) HasMore() bool {
	return p.Cursor() != ""
}
