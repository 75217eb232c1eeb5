package spacetraveling

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/eringen/spacetraveling/logctx"
	"github.com/eringen/spacetraveling/prismic"
)

const maxDescriptionRunes = 160

func (a *App) handleHome(c echo.Context) error {
	p, err := a.Cache.Paginator(c.Request().Context())
	if err != nil {
		return a.contentError(err)
	}
	page := HomePage{
		Site: a.Config.Site,
		Meta: PageMeta{
			Title:       a.Config.Site.Name,
			Description: a.Config.Site.Description,
			URL:         BuildURL(a.Config.Site.URL),
			OGType:      "website",
		},
		Posts:  p.Posts(),
		JSONLD: WebsiteJSONLD(a.Config.Site),
	}
	if p.HasMore() {
		page.More = LoadMore{Cursor: p.Cursor(), Page: p.Page()}
	}
	return Render(c, a.Views.Home(page))
}

// handleMorePosts is the HTMX endpoint behind the "load more" button. It
// resumes a paginator from the button's cursor and page and answers with the
// next items and a replacement button.
func (a *App) handleMorePosts(c echo.Context) error {
	const op = "App.handleMorePosts"
	ctx := c.Request().Context()

	cursor := c.QueryParam("cursor")
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || cursor == "" || !a.sameOrigin(cursor) {
		logctx.From(ctx).Warn("invalid_cursor",
			slog.String("op", op),
			slog.String("cursor", prismic.StripToken(cursor)),
			slog.String("page", c.QueryParam("page")),
		)
		return echo.NewHTTPError(http.StatusBadRequest, ErrInvalidCursor.Error()).
			SetInternal(fmt.Errorf("%s: %w", op, ErrInvalidCursor))
	}

	p := a.Cache.Resume(cursor, page)
	posts, err := p.LoadMore(ctx)
	a.Metrics.LoadMore(err)
	switch {
	case err == nil:
	case errors.Is(err, ErrFetchFailed), errors.Is(err, ErrMalformedRecord):
		// The banner replaces the button; retrying repeats the same request.
		return Render(c, a.Views.LoadMoreFailed(LoadMore{Cursor: cursor, Page: p.Page()}))
	default:
		return fmt.Errorf("%s: %w", op, err)
	}

	var more LoadMore
	if p.HasMore() {
		more = LoadMore{Cursor: p.Cursor(), Page: p.Page()}
	}
	return Render(c, a.Views.MorePosts(posts, more))
}

func (a *App) handlePost(c echo.Context) error {
	slug := c.Param("slug")
	doc, err := a.Cache.Detail(c.Request().Context(), slug)
	if err != nil {
		return a.contentError(err)
	}
	detail, readTime, err := a.norm.Detail(*doc)
	if err != nil {
		return a.contentError(err)
	}

	var published time.Time
	if doc.FirstPublicationDate != nil {
		published, _ = ParsePublicationDate(*doc.FirstPublicationDate)
	}
	page := PostPage{
		Site: a.Config.Site,
		Meta: PageMeta{
			Title:       detail.Title + " | " + a.Config.Site.Name,
			Description: postDescription(detail, a.Config.Site.Description),
			URL:         BuildURL(a.Config.Site.URL, "post", detail.UID),
			OGType:      "article",
			Image:       detail.Banner.URL,
		},
		Post:     detail,
		ReadTime: readTime,
		JSONLD:   BlogPostingJSONLD(detail, published, a.Config.Site),
	}
	if detail.Banner.URL != "" {
		page.BannerURL = "/post/" + PathEscape(detail.UID) + "/banner.jpg"
	}
	return Render(c, a.Views.Post(page))
}

// postDescription is the first paragraph of the post, shortened for meta
// tags.
func postDescription(p PostDetail, fallback string) string {
	for _, block := range p.Content {
		for _, unit := range block.Body {
			if unit.Type != "paragraph" || strings.TrimSpace(unit.Text) == "" {
				continue
			}
			s := strings.Join(strings.Fields(unit.Text), " ")
			if utf8.RuneCountInString(s) <= maxDescriptionRunes {
				return s
			}
			r := []rune(s)
			return strings.TrimSpace(string(r[:maxDescriptionRunes-1])) + "…"
		}
	}
	return fallback
}

func (a *App) handleSitemap(c echo.Context) error {
	docs, err := a.Cache.AllDocuments(c.Request().Context())
	if err != nil {
		return a.contentError(err)
	}
	return a.renderSitemap(c, docs)
}

func (a *App) handleFeed(c echo.Context) error {
	docs, err := a.Cache.AllDocuments(c.Request().Context())
	if err != nil {
		return a.contentError(err)
	}
	return a.renderRSS(c, docs)
}

func (a *App) handleRobots(c echo.Context) error {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Disallow: /admin/\n")
	b.WriteString("Disallow: /api/\n")
	b.WriteString("Disallow: /posts/more/\n")
	b.WriteString("\nSitemap: " + strings.TrimSuffix(a.Config.Site.URL, "/") + "/sitemap.xml\n")
	return c.String(http.StatusOK, b.String())
}

func (a *App) handleHealth(c echo.Context) error {
	n, err := a.Store.Count(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"error":  err.Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"status":             "ok",
		"mirrored_documents": n,
		"cache_purged_at":    a.Cache.PurgedAt().UTC().Format(time.RFC3339),
	})
}

// contentError maps content errors onto HTTP errors for httpErrorHandler.
func (a *App) contentError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.ErrNotFound.WithInternal(err)
	case errors.Is(err, ErrFetchFailed):
		return echo.NewHTTPError(http.StatusServiceUnavailable).SetInternal(err)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
	}
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	log := logctx.From(c.Request().Context())

	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= http.StatusInternalServerError {
		log.Error("server_error",
			slog.String("uri", c.Request().RequestURI),
			slog.Int("status", code),
			slog.String("error", err.Error()),
		)
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
