package spacetraveling

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/eringen/spacetraveling/logctx"
)

const (
	maxBannerWidth = 800
	jpegQuality    = 80
	maxBannerSize  = 10 << 20 // 10MB
	bannerTTL      = 24 * time.Hour
)

var errBannerTooLarge = errors.New("banner exceeds 10MB")

// processImage decodes an image from src, resizes it to maxBannerWidth when
// wider, and encodes it as JPEG.
func processImage(src io.Reader) ([]byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w > maxBannerWidth {
		newH := h * maxBannerWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxBannerWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// downloadBanner fetches the original banner image.
func (a *App) downloadBanner(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("banner status %d", resp.StatusCode)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBannerSize+1))
	if err != nil {
		return nil, err
	}
	if len(raw) > maxBannerSize {
		return nil, errBannerTooLarge
	}
	return processImage(bytes.NewReader(raw))
}

// handleBanner serves a post banner resized for the page, memoized in the
// cache backend.
func (a *App) handleBanner(c echo.Context) error {
	const op = "App.handleBanner"
	ctx := c.Request().Context()
	log := logctx.From(ctx)
	slug := c.Param("slug")
	key := "banner:" + slug

	if data, ok, err := a.backend.Get(ctx, key); err == nil && ok {
		a.Metrics.CacheLookup("banner", "hit")
		return c.Blob(http.StatusOK, "image/jpeg", data)
	}
	a.Metrics.CacheLookup("banner", "miss")

	doc, err := a.Cache.Detail(ctx, slug)
	if err != nil {
		return a.contentError(err)
	}
	detail, _, err := a.norm.Detail(*doc)
	if err != nil {
		return a.contentError(err)
	}
	if detail.Banner.URL == "" {
		return echo.ErrNotFound
	}

	data, err := a.downloadBanner(ctx, detail.Banner.URL)
	if err != nil {
		log.Warn("banner_fetch_failed",
			slog.String("op", op),
			slog.String("uid", slug),
			slog.String("error", err.Error()),
		)
		return echo.NewHTTPError(http.StatusBadGateway, "banner unavailable")
	}
	if err := a.backend.Set(ctx, key, data, bannerTTL); err != nil {
		log.Warn("cache_set_failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return c.Blob(http.StatusOK, "image/jpeg", data)
}
