package spacetraveling

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/eringen/spacetraveling/cache"
)

// Config is the whole site configuration.
//
// Load order:
//  1. explicit path passed to LoadConfig;
//  2. the CONFIG_PATH environment variable;
//  3. ./local.yaml in the working directory;
//  4. environment variables only.
type Config struct {
	Env          string        `yaml:"env" env:"ENV" env-default:"local"`
	Addr         string        `yaml:"addr" env:"ADDR" env-default:":3000"`
	DatabasePath string        `yaml:"database_path" env:"DATABASE_PATH" env-default:"data/mirror.db"`
	Site         SiteConfig    `yaml:"site"`
	Prismic      PrismicConfig `yaml:"prismic"`
	Cache        CacheConfig   `yaml:"cache"`
	Admin        AdminConfig   `yaml:"admin"`
}

// SiteConfig describes the public site.
type SiteConfig struct {
	Name        string `yaml:"name" env:"SITE_NAME" env-default:"spacetraveling"`
	URL         string `yaml:"url" env:"SITE_URL" env-default:"http://localhost:3000"`
	Description string `yaml:"description" env:"SITE_DESCRIPTION"`
	Locale      string `yaml:"locale" env:"SITE_LOCALE" env-default:"pt-BR"`
	TimeZone    string `yaml:"time_zone" env:"TIME_ZONE" env-default:"America/Sao_Paulo"`
}

// PrismicConfig points at the content repository.
type PrismicConfig struct {
	Endpoint    string        `yaml:"endpoint" env:"PRISMIC_ENDPOINT"`
	AccessToken string        `yaml:"access_token" env:"PRISMIC_ACCESS_TOKEN"`
	PostsType   string        `yaml:"posts_type" env:"POSTS_TYPE" env-default:"posts"`
	PageSize    int           `yaml:"page_size" env:"PAGE_SIZE" env-default:"1"`
	Timeout     time.Duration `yaml:"timeout" env:"CMS_TIMEOUT" env-default:"10s"`
}

// CacheConfig selects the post cache backend. An empty RedisURL keeps the
// cache in process memory.
type CacheConfig struct {
	TTL      time.Duration `yaml:"ttl" env:"CACHE_TTL" env-default:"5m"`
	RedisURL string        `yaml:"redis_url" env:"REDIS_URL"`
}

// AdminConfig guards the admin console and the revalidation webhook. The
// console is disabled when Password is empty; the webhook when
// RevalidateSecret is.
type AdminConfig struct {
	Password         string `yaml:"password" env:"ADMIN_PASSWORD"`
	SessionSecret    string `yaml:"session_secret" env:"ADMIN_SESSION_SECRET"`
	RevalidateSecret string `yaml:"revalidate_secret" env:"REVALIDATE_SECRET"`
	CookieSecure     bool   `yaml:"cookie_secure" env:"COOKIE_SECURE"`
}

// MustLoadConfig is LoadConfig that panics on error.
func MustLoadConfig(path string) *Config {
	cfg, err := LoadConfig(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadConfig reads the configuration in the documented order and validates
// it.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	readFile := func(p string) error {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("config file does not exist: %s", p)
		}
		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return fmt.Errorf("read config %s: %w", p, err)
		}
		return nil
	}

	switch {
	case path != "":
		if err := readFile(path); err != nil {
			return nil, err
		}
	case os.Getenv("CONFIG_PATH") != "":
		if err := readFile(os.Getenv("CONFIG_PATH")); err != nil {
			return nil, err
		}
	default:
		if _, err := os.Stat("local.yaml"); err == nil {
			if err := readFile("local.yaml"); err != nil {
				return nil, err
			}
		} else if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("read env: %w", err)
		}
	}

	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults fills anything left empty by programmatic construction.
func (c *Config) setDefaults() {
	if c.Env == "" {
		c.Env = "local"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/mirror.db"
	}
	if c.Site.Name == "" {
		c.Site.Name = "spacetraveling"
	}
	if c.Site.URL == "" {
		c.Site.URL = "http://localhost:3000"
	}
	if c.Site.Locale == "" {
		c.Site.Locale = "pt-BR"
	}
	if c.Site.TimeZone == "" {
		c.Site.TimeZone = "America/Sao_Paulo"
	}
	if c.Prismic.PostsType == "" {
		c.Prismic.PostsType = "posts"
	}
	if c.Prismic.PageSize == 0 {
		c.Prismic.PageSize = 1
	}
	if c.Prismic.Timeout == 0 {
		c.Prismic.Timeout = 10 * time.Second
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 5 * time.Minute
	}
}

func (c *Config) validate() error {
	if err := c.validateEndpoint(); err != nil {
		return err
	}
	return c.validateSettings()
}

func (c *Config) validateEndpoint() error {
	if c.Prismic.Endpoint == "" {
		return errors.New("prismic.endpoint (PRISMIC_ENDPOINT) is required")
	}
	if u, err := url.Parse(c.Prismic.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("prismic.endpoint %q must be an absolute URL", c.Prismic.Endpoint)
	}
	return nil
}

func (c *Config) validateSettings() error {
	if c.Prismic.PageSize < 1 || c.Prismic.PageSize > 100 {
		return fmt.Errorf("prismic.page_size must be between 1 and 100, got %d", c.Prismic.PageSize)
	}
	if c.Prismic.Timeout < 0 || c.Cache.TTL < 0 {
		return errors.New("timeouts and ttl must not be negative")
	}
	if c.Admin.Password != "" && len(c.Admin.SessionSecret) < 16 {
		return errors.New("admin.session_secret must be at least 16 bytes when admin.password is set")
	}
	return nil
}

// AdminEnabled reports whether the admin console is mounted.
func (c *Config) AdminEnabled() bool {
	return c.Admin.Password != ""
}

// Option configures additional App behavior.
type Option func(*App)

// WithContentClient replaces the Prismic client built from the config.
func WithContentClient(client ContentClient) Option {
	return func(a *App) {
		a.client = client
	}
}

// WithCacheBackend replaces the backend selected by CacheConfig.
func WithCacheBackend(b cache.Backend) Option {
	return func(a *App) {
		a.backend = b
	}
}

// WithLogger sets the logger stored in every request context.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		a.log = l
	}
}

// WithHTTPClient sets the client used for the content API and for banner
// downloads.
func WithHTTPClient(hc *http.Client) Option {
	return func(a *App) {
		a.httpClient = hc
	}
}

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App after the built-in routes are set up.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}
