package views

import (
	"context"

	"github.com/a-h/templ"

	"github.com/eringen/spacetraveling"
)

// Home renders the post listing with the load-more button.
func Home(page spacetraveling.HomePage) templ.Component {
	return component(layout(page.Site, page.Meta, page.JSONLD, func(ctx context.Context, h *html) {
		h.raw(`<section class="posts">` + "\n")
		if len(page.Posts) == 0 {
			h.raw(`<p class="empty">Nenhum post publicado ainda.</p>` + "\n")
		}
		for _, p := range page.Posts {
			postItem(h, p)
		}
		loadMore(h, page.More)
		h.raw("</section>\n")
	}))
}

// MorePosts is the HTMX fragment swapped in place of the load-more button:
// the new items followed by the next button, if any.
func MorePosts(posts []spacetraveling.Post, more spacetraveling.LoadMore) templ.Component {
	return component(func(_ context.Context, h *html) {
		for _, p := range posts {
			postItem(h, p)
		}
		loadMore(h, more)
	})
}

// LoadMoreFailed replaces the load-more button with a non-fatal banner whose
// button retries the same page.
func LoadMoreFailed(retry spacetraveling.LoadMore) templ.Component {
	return component(func(_ context.Context, h *html) {
		h.raw(`<div id="load-more" class="load-more load-more--failed" role="alert">`)
		h.raw("<p>Não foi possível carregar mais posts.</p>")
		h.raw("<button")
		h.attr("hx-get", retry.Href())
		h.raw(` hx-target="#load-more" hx-swap="outerHTML" hx-indicator="#load-more-indicator">`)
		h.raw("Tentar novamente</button>")
		loadingIndicator(h)
		h.raw("</div>\n")
	})
}

func postItem(h *html, p spacetraveling.Post) {
	h.raw(`<article class="post">`)
	h.raw("<a")
	h.attr("href", p.Link())
	h.raw("><h2>")
	h.text(p.Title)
	h.raw("</h2><p>")
	h.text(p.Subtitle)
	h.raw("</p></a>")
	h.raw(`<div class="info">`)
	if p.FirstPublicationDate != "" {
		h.raw(`<time class="date">`)
		h.text(p.FirstPublicationDate)
		h.raw("</time>")
	}
	h.raw(`<span class="author">`)
	h.text(p.Author)
	h.raw("</span></div></article>\n")
}

// loadMore renders the button, or nothing once the listing is exhausted.
func loadMore(h *html, more spacetraveling.LoadMore) {
	if !more.Visible() {
		return
	}
	h.raw(`<div id="load-more" class="load-more">`)
	h.raw("<button")
	h.attr("hx-get", more.Href())
	h.raw(` hx-target="#load-more" hx-swap="outerHTML" hx-indicator="#load-more-indicator" hx-disabled-elt="this">`)
	h.raw("Carregar mais posts</button>")
	loadingIndicator(h)
	h.raw("</div>\n")
}

func loadingIndicator(h *html) {
	h.raw(`<span id="load-more-indicator" class="htmx-indicator">Carregando...</span>`)
}
