package spacetraveling

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/eringen/spacetraveling/logctx"
)

const warmConcurrency = 4

// Warm loads every post and its detail record through the cache, filling the
// cache backend and the mirror. It returns the number of posts warmed.
func (a *App) Warm(ctx context.Context) (int, error) {
	const op = "App.Warm"
	log := logctx.From(ctx)

	posts, err := a.Cache.AllPosts(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var warmed atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(warmConcurrency)
	for _, p := range posts {
		g.Go(func() error {
			doc, err := a.Cache.Detail(gctx, p.UID)
			if err != nil {
				return fmt.Errorf("%s: %s: %w", op, p.UID, err)
			}
			if _, _, err := a.norm.Detail(*doc); err != nil {
				// A malformed post still renders as an error page; keep going.
				log.Warn("warm_detail_malformed",
					slog.String("op", op),
					slog.String("uid", p.UID),
					slog.String("error", err.Error()),
				)
				return nil
			}
			warmed.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(warmed.Load()), err
	}
	log.Info("cache_warmed", slog.String("op", op), slog.Int("posts", int(warmed.Load())))
	return int(warmed.Load()), nil
}
