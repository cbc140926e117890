package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "memory")
	t.Setenv("JWT_PUBLIC_KEY_PATH", "/keys/jwt.pub")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, "tracker", cfg.JWT.Issuer)
	assert.Equal(t, "300-M", cfg.RateLimit.RatePerIP)
	assert.Equal(t, 20, cfg.Pagination.DefaultPerPage)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 2, cfg.Webhook.Workers)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_URL", "postgres://localhost/tracker")
	t.Setenv("DATABASE_MAX_CONNS", "12")
	t.Setenv("DATABASE_AUTO_MIGRATE", "false")
	t.Setenv("JWT_PUBLIC_KEY_PATH", "/keys/jwt.pub")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com,")
	t.Setenv("PAGINATION_DEFAULT_PER_PAGE", "50")
	t.Setenv("LOG_PRETTY", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.EqualValues(t, 12, cfg.Database.MaxConns)
	assert.False(t, cfg.Database.AutoMigrate)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 50, cfg.Pagination.DefaultPerPage)
	assert.True(t, cfg.Log.Pretty)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracker.yaml")
	require.NoError(t, os.WriteFile(path, []byte("DATABASE_DRIVER: memory\nJWT_PUBLIC_KEY_PATH: /k.pem\nJWT_AUDIENCE: web\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, "web", cfg.JWT.Audience)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Database:   DatabaseConfig{Driver: DriverPostgres, URL: "postgres://x"},
			JWT:        JWTConfig{PublicKeyPath: "/k.pem"},
			Pagination: PaginationConfig{DefaultPerPage: 20},
		}
	}
	require.NoError(t, valid().Validate())

	tests := map[string]func(c *Config){
		"postgres without url":  func(c *Config) { c.Database.URL = "" },
		"unknown driver":        func(c *Config) { c.Database.Driver = "sqlite" },
		"missing key":           func(c *Config) { c.JWT.PublicKeyPath = "" },
		"page size too large":   func(c *Config) { c.Pagination.DefaultPerPage = 101 },
		"webhook without redis": func(c *Config) { c.Webhook.URL = "https://hooks.example.com" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := valid()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestLoadSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`organizations:
  - id: org-1
    name: Acme
    teams:
      - id: team-1
        name: Core
    members:
      - user_id: alice
        role: owner
`), 0o600))

	seed, err := LoadSeed(path)
	require.NoError(t, err)
	require.Len(t, seed.Organizations, 1)
	org := seed.Organizations[0]
	assert.Equal(t, "Acme", org.Name)
	assert.Equal(t, []SeedTeam{{ID: "team-1", Name: "Core"}}, org.Teams)
	assert.Equal(t, []SeedMember{{UserID: "alice", Role: "owner"}}, org.Members)
}

func TestLoadSeedRejectsMissingIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"organizations":[{"id":"org-1","members":[{"role":"owner"}]}]}`), 0o600))

	_, err := LoadSeed(path)
	assert.ErrorContains(t, err, "user_id is required")
}
