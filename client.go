package spacetraveling

import (
	"context"

	"github.com/eringen/spacetraveling/prismic"
)

//go:generate mockgen -destination=mocks/mock_content_client.go -package=mocks github.com/eringen/spacetraveling ContentClient

// ContentClient is the subset of the content API the site needs.
// *prismic.Client implements it.
type ContentClient interface {
	ByType(ctx context.Context, docType string, opts prismic.QueryOptions) (*prismic.Response, error)
	ByUID(ctx context.Context, docType, uid string) (*prismic.Document, error)
	Page(ctx context.Context, nextPage string) (*prismic.Response, error)
}

// mirrorClient copies every document it sees into the Store.
type mirrorClient struct {
	ContentClient
	store *Store
}

func (m mirrorClient) ByType(ctx context.Context, docType string, opts prismic.QueryOptions) (*prismic.Response, error) {
	resp, err := m.ContentClient.ByType(ctx, docType, opts)
	if err == nil {
		m.store.mirror(ctx, resp.Results...)
	}
	return resp, err
}

func (m mirrorClient) ByUID(ctx context.Context, docType, uid string) (*prismic.Document, error) {
	doc, err := m.ContentClient.ByUID(ctx, docType, uid)
	if err == nil {
		m.store.mirror(ctx, *doc)
	}
	return doc, err
}

func (m mirrorClient) Page(ctx context.Context, nextPage string) (*prismic.Response, error) {
	resp, err := m.ContentClient.Page(ctx, nextPage)
	if err == nil {
		m.store.mirror(ctx, resp.Results...)
	}
	return resp, err
}
