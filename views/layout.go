package views

import (
	"context"

	"github.com/eringen/spacetraveling"
)

const htmxScript = "https://unpkg.com/htmx.org@1.9.12"

// layout wraps body in the site chrome: head with SEO metadata, the header
// logo linking home, and the htmx script.
func layout(site spacetraveling.SiteConfig, meta spacetraveling.PageMeta, jsonLD string, body func(ctx context.Context, h *html)) func(ctx context.Context, h *html) {
	return func(ctx context.Context, h *html) {
		lang := site.Locale
		if lang == "" {
			lang = "pt-BR"
		}
		h.raw("<!DOCTYPE html>\n<html")
		h.attr("lang", lang)
		h.raw(">\n<head>\n<meta charset=\"utf-8\">\n")
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">` + "\n")
		h.raw("<title>")
		h.text(meta.Title)
		h.raw("</title>\n")
		if meta.Description != "" {
			h.raw(`<meta name="description"`)
			h.attr("content", meta.Description)
			h.raw(">\n")
		}
		if meta.URL != "" {
			h.raw(`<link rel="canonical"`)
			h.attr("href", meta.URL)
			h.raw(">\n")
		}
		openGraph(h, site, meta)
		h.raw(`<link rel="alternate" type="application/rss+xml" href="/feed.xml"`)
		h.attr("title", site.Name)
		h.raw(">\n")
		h.raw(`<link rel="stylesheet" href="/public/styles.css">` + "\n")
		if jsonLD != "" {
			// JSON-LD is produced by json.Marshal, which escapes <, > and &.
			h.raw(`<script type="application/ld+json">`)
			h.raw(jsonLD)
			h.raw("</script>\n")
		}
		h.raw(`<script defer`)
		h.attr("src", htmxScript)
		h.raw("></script>\n</head>\n<body>\n")

		h.raw(`<header class="header"><div class="container"><a href="/" class="logo">`)
		h.raw(`<img src="/public/logo.svg" alt="logo">`)
		h.raw("</a></div></header>\n")
		h.raw(`<main class="container">` + "\n")
		body(ctx, h)
		h.raw("</main>\n</body>\n</html>\n")
	}
}

func openGraph(h *html, site spacetraveling.SiteConfig, meta spacetraveling.PageMeta) {
	props := [][2]string{
		{"og:site_name", site.Name},
		{"og:title", meta.Title},
		{"og:description", meta.Description},
		{"og:url", meta.URL},
		{"og:type", meta.OGType},
		{"og:image", meta.Image},
	}
	for _, p := range props {
		if p[1] == "" {
			continue
		}
		h.raw("<meta")
		h.attr("property", p[0])
		h.attr("content", p[1])
		h.raw(">\n")
	}
}
