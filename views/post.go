package views

import (
	"context"
	"strconv"

	"github.com/a-h/templ"

	"github.com/eringen/spacetraveling"
	"github.com/eringen/spacetraveling/richtext"
)

// Post renders a single post with its banner, metadata and content blocks.
func Post(page spacetraveling.PostPage) templ.Component {
	post := page.Post
	return component(layout(page.Site, page.Meta, page.JSONLD, func(ctx context.Context, h *html) {
		if page.BannerURL != "" {
			h.raw(`<img class="banner"`)
			h.attr("src", page.BannerURL)
			h.attr("alt", post.Title)
			h.raw(">\n")
		}
		h.raw(`<article class="post-detail">` + "\n<h1>")
		h.text(post.Title)
		h.raw("</h1>\n")
		h.raw(`<div class="info">`)
		if post.FirstPublicationDate != "" {
			h.raw(`<time class="date">`)
			h.text(post.FirstPublicationDate)
			h.raw("</time>")
		}
		h.raw(`<span class="author">`)
		h.text(post.Author)
		h.raw(`</span><span class="read-time">`)
		h.text(strconv.Itoa(page.ReadTime) + " min")
		h.raw("</span></div>\n")

		for _, block := range post.Content {
			h.raw(`<section class="content-block"><h2>`)
			h.text(block.Heading)
			h.raw("</h2>\n")
			h.component(ctx, richtext.Component(block.Body))
			h.raw("</section>\n")
		}
		h.raw("</article>\n")
	}))
}
