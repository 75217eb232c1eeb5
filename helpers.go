package spacetraveling

import (
	"encoding/json"
	"net/url"
	"path"
	"strings"
	"time"
)

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// PathEscape escapes a string for use in a URL path.
func PathEscape(s string) string {
	return url.PathEscape(s)
}

// WebsiteJSONLD returns a JSON-LD string for a WebSite schema.
func WebsiteJSONLD(site SiteConfig) string {
	data := map[string]any{
		"@context":    "https://schema.org",
		"@type":       "WebSite",
		"name":        site.Name,
		"url":         BuildURL(site.URL),
		"description": site.Description,
		"inLanguage":  site.Locale,
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// BlogPostingJSONLD returns a JSON-LD string for a BlogPosting schema.
// published is the raw publication timestamp; the zero time omits it.
func BlogPostingJSONLD(post PostDetail, published time.Time, site SiteConfig) string {
	postURL := BuildURL(site.URL, "post", post.UID)
	data := map[string]any{
		"@context": "https://schema.org",
		"@type":    "BlogPosting",
		"headline": post.Title,
		"url":      postURL,
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	if !published.IsZero() {
		data["datePublished"] = published.UTC().Format(time.RFC3339)
	}
	if post.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  post.Author,
		}
	}
	if post.Banner.URL != "" {
		data["image"] = post.Banner.URL
	}
	if site.Name != "" {
		data["publisher"] = map[string]string{
			"@type": "Organization",
			"name":  site.Name,
		}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
