package spacetraveling

import (
	"encoding/xml"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/spacetraveling/prismic"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

func (a *App) renderSitemap(c echo.Context, docs []prismic.Document) error {
	base := a.Config.Site.URL
	urls := []sitemapURL{
		{Loc: BuildURL(base)},
	}
	for _, d := range docs {
		if d.UID == nil || *d.UID == "" {
			continue
		}
		urls = append(urls, sitemapURL{
			Loc:     BuildURL(base, "post", *d.UID),
			LastMod: lastModified(d),
		})
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	if _, err := c.Response().Write([]byte(xml.Header)); err != nil {
		return err
	}
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}

// lastModified prefers the last publication date and falls back to the first.
func lastModified(d prismic.Document) string {
	for _, raw := range []*string{d.LastPublicationDate, d.FirstPublicationDate} {
		if raw == nil {
			continue
		}
		if t, err := ParsePublicationDate(*raw); err == nil {
			return t.UTC().Format("2006-01-02")
		}
	}
	return ""
}
