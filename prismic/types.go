package prismic

import "encoding/json"

// Document is a single raw record as returned by the content API.
// Data is left undecoded; callers pick the fields their document type needs.
type Document struct {
	ID                   string          `json:"id"`
	UID                  *string         `json:"uid"`
	Type                 string          `json:"type"`
	Tags                 []string        `json:"tags,omitempty"`
	FirstPublicationDate *string         `json:"first_publication_date"`
	LastPublicationDate  *string         `json:"last_publication_date"`
	Lang                 string          `json:"lang,omitempty"`
	Data                 json.RawMessage `json:"data"`
}

// Response is one page of search results.
type Response struct {
	Page             int        `json:"page"`
	ResultsPerPage   int        `json:"results_per_page"`
	ResultsSize      int        `json:"results_size"`
	TotalResultsSize int        `json:"total_results_size"`
	TotalPages       int        `json:"total_pages"`
	NextPage         *string    `json:"next_page"`
	PrevPage         *string    `json:"prev_page"`
	Results          []Document `json:"results"`
}

// Next returns the next-page cursor, or "" when the listing is exhausted.
func (r *Response) Next() string {
	if r == nil || r.NextPage == nil {
		return ""
	}
	return *r.NextPage
}

// scrubCursors drops the access token the API echoes into next_page and
// prev_page. Cursors leave the server; the token must not.
func (r *Response) scrubCursors() {
	for _, c := range []**string{&r.NextPage, &r.PrevPage} {
		if *c == nil {
			continue
		}
		clean := StripToken(**c)
		*c = &clean
	}
}

// Ref is a content release pointer. Queries must name one; the master ref
// points at the currently published content.
type Ref struct {
	ID          string `json:"id"`
	Ref         string `json:"ref"`
	Label       string `json:"label"`
	IsMasterRef bool   `json:"isMasterRef"`
}

type apiInfo struct {
	Refs []Ref `json:"refs"`
}

// QueryOptions tunes a search request. Zero values leave the API defaults.
type QueryOptions struct {
	PageSize  int
	Page      int
	Orderings string // e.g. "[document.first_publication_date desc]"
}
