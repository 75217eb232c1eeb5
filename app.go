// Package spacetraveling is a server-rendered blog whose posts live in a
// Prismic repository. It pages through posts with a cursor-driven Paginator,
// normalizes raw records into view models, caches content API answers and
// keeps a SQLite mirror of every document it has seen.
//
// Templates are supplied through ViewFuncs; the views package holds the
// site's own set.
package spacetraveling

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/spacetraveling/cache"
	"github.com/eringen/spacetraveling/prismic"
)

// ViewFuncs holds the templ components the handlers render.
type ViewFuncs struct {
	Home           func(page HomePage) templ.Component
	MorePosts      func(posts []Post, more LoadMore) templ.Component
	LoadMoreFailed func(retry LoadMore) templ.Component
	Post           func(page PostPage) templ.Component
	AdminLogin     func(showError bool, csrfToken string) templ.Component
	AdminDashboard func(d Dashboard) templ.Component
	NotFound       func() templ.Component
	ServerError    func() templ.Component
}

// App wires the content client, cache, mirror, handlers and middleware.
type App struct {
	Config  Config
	Echo    *echo.Echo
	Store   *Store
	Cache   *PostCache
	Metrics *Metrics
	Views   ViewFuncs

	client       ContentClient
	backend      cache.Backend
	log          *slog.Logger
	httpClient   *http.Client
	norm         Normalizer
	loginLimiter *LoginLimiter
	customRoutes []func(*App)
	staticDir    string
	ready        bool
}

// New creates an App. Nothing is opened until Setup.
func New(cfg Config, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		log:       slog.Default(),
		staticDir: "public",
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Setup opens the mirror, builds the content client and cache, and registers
// middleware and routes. Start calls it; tests call it directly and drive
// a.Echo with httptest.
func (a *App) Setup(ctx context.Context) error {
	if a.ready {
		return nil
	}
	validate := a.Config.validate
	if a.client != nil {
		validate = a.Config.validateSettings
	}
	if err := validate(); err != nil {
		return fmt.Errorf("spacetraveling: %w", err)
	}

	a.norm = Normalizer{Dates: NewDateFormatter(a.Config.Site.Locale, a.Config.Site.TimeZone)}
	a.Metrics = NewMetrics()

	if a.client == nil {
		var popts []prismic.Option
		popts = append(popts, prismic.WithObserver(a.Metrics.ObserveCMS))
		if a.httpClient != nil {
			popts = append(popts, prismic.WithHTTPClient(a.httpClient))
		}
		client, err := prismic.New(prismic.Config{
			Endpoint:    a.Config.Prismic.Endpoint,
			AccessToken: a.Config.Prismic.AccessToken,
			Timeout:     a.Config.Prismic.Timeout,
		}, popts...)
		if err != nil {
			return fmt.Errorf("spacetraveling: content client: %w", err)
		}
		a.client = client
	}
	if a.httpClient == nil {
		a.httpClient = &http.Client{Timeout: a.Config.Prismic.Timeout}
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("spacetraveling: init store: %w", err)
	}
	a.Store = store

	if a.backend == nil {
		if a.Config.Cache.RedisURL != "" {
			r, err := cache.NewRedis(ctx, a.Config.Cache.RedisURL, "")
			if err != nil {
				return fmt.Errorf("spacetraveling: init cache: %w", err)
			}
			a.backend = r
		} else {
			a.backend = cache.NewMemory(time.Minute)
		}
	}

	a.Cache = NewPostCache(a.client, a.backend, a.Store, PostCacheConfig{
		DocType:    a.Config.Prismic.PostsType,
		PageSize:   a.Config.Prismic.PageSize,
		TTL:        a.Config.Cache.TTL,
		Normalizer: a.norm,
		Metrics:    a.Metrics,
	})
	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	a.ready = true
	return nil
}

// Start sets the app up and serves until ctx is canceled, then shuts down
// gracefully.
func (a *App) Start(ctx context.Context) error {
	if err := a.Setup(ctx); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("http_server_started", slog.String("addr", a.Config.Addr))
		errCh <- a.Echo.Start(a.Config.Addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a.log.Info("http_server_stopping")
	if err := a.Echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("spacetraveling: shutdown: %w", err)
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.staticDir)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/healthz", a.handleHealth)
	e.GET("/metrics", echo.WrapHandler(a.Metrics.Handler()))

	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/", a.handleHome)
	e.GET("/posts/more/", a.handleMorePosts)
	e.GET("/post/:slug/", a.handlePost)
	e.GET("/post/:slug/banner.jpg", a.handleBanner)

	if a.Config.Admin.RevalidateSecret != "" {
		e.POST("/api/revalidate", a.handleRevalidate)
	}

	if a.Config.AdminEnabled() {
		e.GET("/admin/", a.handleAdmin)
		e.POST("/admin/login/", a.handleAdminLogin)
		e.POST("/admin/logout/", handleAdminLogout)
		e.POST("/admin/purge/", a.handleAdminPurge)
	}
}

// sameOrigin reports whether a cursor from the browser may be followed.
func (a *App) sameOrigin(cursor string) bool {
	if so, ok := a.client.(interface{ SameOrigin(string) bool }); ok {
		return so.SameOrigin(cursor)
	}
	return true
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	var errs []error
	if a.loginLimiter != nil {
		a.loginLimiter.Close()
	}
	if a.backend != nil {
		errs = append(errs, a.backend.Close())
	}
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	return errors.Join(errs...)
}
