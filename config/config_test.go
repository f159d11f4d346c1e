package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENABLED_PROVIDERS", "")
	t.Setenv("NOTION_TOKEN", "secret")
	t.Setenv("NOTION_DATABASE_ID", "db")

	_, err := Load()
	require.Error(t, err, "an empty provider list must be rejected")

	t.Setenv("ENABLED_PROVIDERS", " Notion , sanity ,")
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"notion", "sanity"}, cfg.Providers())
	assert.Equal(t, "4242", cfg.HTTPPort)
	assert.Equal(t, "2022-06-28", cfg.NotionVersion)
	assert.Equal(t, 4, cfg.ExportKeep)
	assert.True(t, cfg.NotionEnabled())
	assert.False(t, cfg.ExportEnabled())
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{EnabledProviders: "notion", ExportKeep: 4}
	}

	t.Run("archive without backend", func(t *testing.T) {
		c := base()
		c.EnabledProviders = "notion,archive"
		assert.Error(t, c.Validate())
	})

	t.Run("unknown backend", func(t *testing.T) {
		c := base()
		c.ArchiveBackend = "sqlite"
		assert.Error(t, c.Validate())
	})

	t.Run("postgres needs user", func(t *testing.T) {
		c := base()
		c.ArchiveBackend = "postgres"
		assert.Error(t, c.Validate())
		c.DBUser = "blog"
		assert.NoError(t, c.Validate())
	})

	t.Run("dsn", func(t *testing.T) {
		c := Config{DBHost: "db", DBUser: "u", DBPassword: "p", DBName: "blog", DBPort: 5432}
		assert.Equal(t, "host=db user=u password=p dbname=blog port=5432 sslmode=disable", c.DSN())
	})
}
