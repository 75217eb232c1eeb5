package spacetraveling

import (
	"net/url"
	"strconv"
	"time"
)

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string // og:image
}

// LoadMore is the state carried by the "load more" button: the cursor of the
// next page and the page number already shown. The zero value means there is
// nothing more to load.
type LoadMore struct {
	Cursor string
	Page   int
}

// Visible reports whether the button should be rendered.
func (l LoadMore) Visible() bool {
	return l.Cursor != ""
}

// Href is the HTMX endpoint that loads the next page.
func (l LoadMore) Href() string {
	v := url.Values{}
	v.Set("cursor", l.Cursor)
	v.Set("page", strconv.Itoa(l.Page))
	return "/posts/more/?" + v.Encode()
}

// HomePage is everything the home template needs.
type HomePage struct {
	Site   SiteConfig
	Meta   PageMeta
	Posts  []Post
	More   LoadMore
	JSONLD string
}

// PostPage is everything the post template needs.
type PostPage struct {
	Site      SiteConfig
	Meta      PageMeta
	Post      PostDetail
	ReadTime  int    // minutes
	BannerURL string // resized banner served by the site
	JSONLD    string
}

// Dashboard is the admin console view.
type Dashboard struct {
	Site      SiteConfig
	Documents []StoredDocument
	PurgedAt  time.Time
	Message   string
	CSRFToken string
}
