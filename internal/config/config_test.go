package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "newest", cfg.Publication.Ordering)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 20, cfg.Server.DefaultPageSize)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_NAME", "library_test")
	t.Setenv("ARTICLE_ORDERING", "TITLE")
	t.Setenv("BASE_URL", "https://library.example.com/")
	t.Setenv("DB_MAX_LIFETIME", "90s")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "library_test", cfg.Database.Name)
	assert.Equal(t, "title", cfg.Publication.Ordering)
	assert.Equal(t, "https://library.example.com", cfg.Server.BaseURL)
	assert.Equal(t, 90*time.Second, cfg.Database.MaxLifetime)
}

func TestLoad_InvalidOrdering(t *testing.T) {
	t.Setenv("ARTICLE_ORDERING", "random")

	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ARTICLE_ORDERING")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:      ServerConfig{DefaultPageSize: 20, MaxPageSize: 100},
			Database:    DatabaseConfig{Host: "localhost", Name: "library"},
			Auth:        AuthConfig{JWTSecret: "secret"},
			Publication: PublicationConfig{Ordering: "newest"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing host", mutate: func(c *Config) { c.Database.Host = "" }, wantErr: "DB_HOST"},
		{name: "missing name", mutate: func(c *Config) { c.Database.Name = "" }, wantErr: "DB_NAME"},
		{name: "missing secret", mutate: func(c *Config) { c.Auth.JWTSecret = "" }, wantErr: "JWT_SECRET"},
		{name: "page size above max", mutate: func(c *Config) { c.Server.DefaultPageSize = 500 }, wantErr: "page size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetDSN(t *testing.T) {
	c := &DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", Name: "library", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=library sslmode=disable", c.GetDSN())
}
