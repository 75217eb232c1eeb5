package spacetraveling

import (
	"encoding/xml"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/spacetraveling/logctx"
	"github.com/eringen/spacetraveling/prismic"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Language    string    `xml:"language,omitempty"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	Author      string `xml:"author,omitempty"`
	PubDate     string `xml:"pubDate,omitempty"`
	GUID        string `xml:"guid"`
}

// buildFeed turns raw documents into an RSS 2.0 feed. Records that do not
// normalize are left out.
func (a *App) buildFeed(c echo.Context, docs []prismic.Document) rssXML {
	base := a.Config.Site.URL
	log := logctx.From(c.Request().Context())

	items := make([]rssItem, 0, len(docs))
	for _, d := range docs {
		p, err := a.norm.ListItem(d)
		if err != nil {
			log.Warn("feed_item_skipped", slog.String("op", "App.buildFeed"), slog.String("error", err.Error()))
			continue
		}
		pubDate := ""
		if d.FirstPublicationDate != nil {
			if t, err := ParsePublicationDate(*d.FirstPublicationDate); err == nil {
				pubDate = t.Format(time.RFC1123Z)
			}
		}
		postURL := BuildURL(base, "post", p.UID)
		items = append(items, rssItem{
			Title:       p.Title,
			Link:        postURL,
			Description: p.Subtitle,
			Author:      p.Author,
			PubDate:     pubDate,
			GUID:        postURL,
		})
	}
	return rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Config.Site.Name,
			Link:        BuildURL(base),
			Description: a.Config.Site.Description,
			Language:    a.Config.Site.Locale,
			Items:       items,
		},
	}
}

func (a *App) renderRSS(c echo.Context, docs []prismic.Document) error {
	feed := a.buildFeed(c, docs)
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	if _, err := c.Response().Write([]byte(xml.Header)); err != nil {
		return err
	}
	return xml.NewEncoder(c.Response()).Encode(feed)
}
