package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	HTTPPort         string `envconfig:"HTTP_PORT" default:"4242"`
	RevalidateSecret string `envconfig:"REVALIDATE_SECRET"`

	// Provider-Konfiguration, Reihenfolge = Fallback-Reihenfolge
	EnabledProviders string `envconfig:"ENABLED_PROVIDERS" default:"notion,sanity"`
	AuthorName       string `envconfig:"AUTHOR_NAME" default:"Massu"`

	NotionToken       string  `envconfig:"NOTION_TOKEN"`
	NotionDatabaseID  string  `envconfig:"NOTION_DATABASE_ID"`
	NotionBaseURL     string  `envconfig:"NOTION_BASE_URL" default:"https://api.notion.com/v1"`
	NotionVersion     string  `envconfig:"NOTION_VERSION" default:"2022-06-28"`
	NotionPinnedPage  string  `envconfig:"NOTION_PINNED_PAGE_ID" default:"bf974aff-d18f-44d7-97e9-b1838eb2222a"`
	NotionRateLimit   float64 `envconfig:"NOTION_RATE_LIMIT" default:"3"`
	NotionConcurrency int     `envconfig:"NOTION_CONCURRENCY" default:"3"`

	SanityProjectID  string `envconfig:"SANITY_PROJECT_ID"`
	SanityDataset    string `envconfig:"SANITY_DATASET" default:"production"`
	SanityAPIVersion string `envconfig:"SANITY_API_VERSION" default:"2024-01-01"`
	SanityUseCDN     bool   `envconfig:"SANITY_USE_CDN" default:"true"`
	SanityToken      string `envconfig:"SANITY_TOKEN"`
	SanityBaseURL    string `envconfig:"SANITY_BASE_URL"` // überschreibt die aus Projekt-ID gebaute URL

	// Archiv (optional dritter Provider)
	ArchiveBackend  string `envconfig:"ARCHIVE_BACKEND"` // "", "memory", "postgres", "mongo"
	DBHost          string `envconfig:"DB_HOST" default:"localhost"`
	DBPort          int    `envconfig:"DB_PORT" default:"5432"`
	DBUser          string `envconfig:"DB_USER"`
	DBPassword      string `envconfig:"DB_PASSWORD"`
	DBName          string `envconfig:"DB_NAME" default:"blog"`
	MongoURI        string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDatabase   string `envconfig:"MONGO_DATABASE" default:"blog"`
	MongoCollection string `envconfig:"MONGO_COLLECTION" default:"articles"`
	SnapshotCron    string `envconfig:"SNAPSHOT_CRON" default:"*/30 * * * *"`

	// S3-Export der Snapshots (optional)
	ExportS3URL    string `envconfig:"EXPORT_S3_URL"`
	ExportS3Key    string `envconfig:"EXPORT_S3_KEY"`
	ExportS3Secret string `envconfig:"EXPORT_S3_SECRET"`
	ExportS3Region string `envconfig:"EXPORT_S3_REGION" default:"us-east-1"`
	ExportS3Bucket string `envconfig:"EXPORT_S3_BUCKET"`
	ExportPrefix   string `envconfig:"EXPORT_PREFIX" default:"snapshots/"`
	ExportKeep     int    `envconfig:"EXPORT_KEEP" default:"4"`
}

// DSN gibt den Data Source Name für die PostgreSQL-Verbindung zurück.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// Providers gibt die aktivierten Provider-Namen in Fallback-Reihenfolge zurück.
func (c *Config) Providers() []string {
	var names []string
	for _, name := range strings.Split(c.EnabledProviders, ",") {
		name = strings.TrimSpace(strings.ToLower(name))
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// NotionEnabled meldet, ob Notion-Zugangsdaten vorhanden sind.
func (c *Config) NotionEnabled() bool {
	return c.NotionToken != "" && c.NotionDatabaseID != ""
}

// SanityEnabled meldet, ob ein Sanity-Projekt konfiguriert ist.
func (c *Config) SanityEnabled() bool {
	return c.SanityProjectID != "" || c.SanityBaseURL != ""
}

// ExportEnabled meldet, ob der S3-Export konfiguriert ist.
func (c *Config) ExportEnabled() bool {
	return c.ExportS3URL != "" && c.ExportS3Bucket != ""
}

// Validate prüft feldübergreifende Regeln.
func (c *Config) Validate() error {
	if len(c.Providers()) == 0 {
		return errors.New("ENABLED_PROVIDERS must name at least one provider")
	}
	for _, name := range c.Providers() {
		if name == "archive" && c.ArchiveBackend == "" {
			return errors.New("provider 'archive' requires ARCHIVE_BACKEND")
		}
	}
	switch c.ArchiveBackend {
	case "", "memory", "postgres", "mongo":
	default:
		return fmt.Errorf("ARCHIVE_BACKEND must be 'memory', 'postgres' or 'mongo', got %q", c.ArchiveBackend)
	}
	if c.ArchiveBackend == "postgres" && c.DBUser == "" {
		return errors.New("DB_USER is required when ARCHIVE_BACKEND=postgres")
	}
	if c.ExportKeep < 1 {
		return errors.New("EXPORT_KEEP must be at least 1")
	}
	return nil
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
