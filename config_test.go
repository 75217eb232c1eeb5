package spacetraveling

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	return path
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

const sampleYAML = `
env: "prod"
addr: ":8080"
database_path: "/var/lib/spacetraveling/mirror.db"
site:
  name: "spacetraveling"
  url: "https://spacetraveling.example"
  description: "Blog"
prismic:
  endpoint: "https://spacetraveling.cdn.prismic.io/api/v2"
  posts_type: "posts"
  page_size: 5
  timeout: "3s"
cache:
  ttl: "1m"
  redis_url: "redis://localhost:6379/0"
admin:
  password: "secret"
  session_secret: "0123456789abcdef0123"
`

func TestLoadConfigExplicitPath(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", sampleYAML)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "prod", cfg.Env)
	require.Equal(t, ":8080", cfg.Addr)
	require.Equal(t, "https://spacetraveling.example", cfg.Site.URL)
	require.Equal(t, 5, cfg.Prismic.PageSize)
	require.Equal(t, 3*time.Second, cfg.Prismic.Timeout)
	require.Equal(t, time.Minute, cfg.Cache.TTL)
	require.Equal(t, "redis://localhost:6379/0", cfg.Cache.RedisURL)
	require.True(t, cfg.AdminEnabled())
	// Defaults still apply to fields the file omits.
	require.Equal(t, "pt-BR", cfg.Site.Locale)
	require.Equal(t, "America/Sao_Paulo", cfg.Site.TimeZone)
}

func TestLoadConfigFromConfigPathEnv(t *testing.T) {
	path := writeFile(t, t.TempDir(), "c.yaml", sampleYAML)
	t.Setenv("CONFIG_PATH", path)

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.Equal(t, "prod", cfg.Env)
}

func TestLoadConfigLocalYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "local.yaml", sampleYAML)
	chdir(t, dir)
	t.Setenv("CONFIG_PATH", "")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Addr)
}

func TestLoadConfigEnvOnly(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("PRISMIC_ENDPOINT", "https://repo.cdn.prismic.io/api/v2")
	t.Setenv("PAGE_SIZE", "3")
	t.Setenv("CACHE_TTL", "30s")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.Equal(t, "local", cfg.Env)
	require.Equal(t, ":3000", cfg.Addr)
	require.Equal(t, "posts", cfg.Prismic.PostsType)
	require.Equal(t, 3, cfg.Prismic.PageSize)
	require.Equal(t, 30*time.Second, cfg.Cache.TTL)
	require.Equal(t, 10*time.Second, cfg.Prismic.Timeout)
	require.False(t, cfg.AdminEnabled())
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	valid := func() Config {
		c := Config{Prismic: PrismicConfig{Endpoint: "https://repo.cdn.prismic.io/api/v2"}}
		c.setDefaults()
		return c
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"no endpoint", func(c *Config) { c.Prismic.Endpoint = "" }, false},
		{"relative endpoint", func(c *Config) { c.Prismic.Endpoint = "/api/v2" }, false},
		{"page size too big", func(c *Config) { c.Prismic.PageSize = 101 }, false},
		{"negative ttl", func(c *Config) { c.Cache.TTL = -time.Second }, false},
		{"admin without secret", func(c *Config) { c.Admin.Password = "pw" }, false},
		{"admin with secret", func(c *Config) {
			c.Admin.Password = "pw"
			c.Admin.SessionSecret = "0123456789abcdef"
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.validate()
			if tt.ok {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}
