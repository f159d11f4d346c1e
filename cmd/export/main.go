package main

import (
	"context"
	"log"
	"time"

	"blog-hand/config"
	"blog-hand/providers"
	"blog-hand/providers/notion"
	"blog-hand/providers/sanity"
	"blog-hand/services"
	"blog-hand/storage"

	"go.uber.org/zap"
)

// Einmaliger Snapshot-Export für Cronjobs außerhalb des Servers.
func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	logging.Info("Starte Export-Prozess...")

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Fehler beim Laden der Konfiguration", zap.Error(err))
	}
	if !cfg.ExportEnabled() {
		logging.Fatal("EXPORT_S3_URL und EXPORT_S3_BUCKET müssen gesetzt sein")
	}

	// 1. Live-Provider aufbauen, das Archiv selbst ist nie Quelle eines Exports
	live := liveProviders(cfg, logging)
	if len(live) == 0 {
		logging.Fatal("Kein Live-Provider konfiguriert. Check ENABLED_PROVIDERS in .env")
	}

	// 2. S3-Exporter erstellen
	exporter, err := storage.NewExporter(cfg, logging)
	if err != nil {
		logging.Fatal("Fehler beim Erstellen des S3-Clients", zap.Error(err))
	}

	// 3. Optional zusätzlich den Archiv-Store aktualisieren
	var store storage.ArticleStore
	switch cfg.ArchiveBackend {
	case "postgres":
		store, err = storage.NewPostgresStore(cfg, logging)
	case "mongo":
		store, err = storage.NewMongoStore(cfg, logging)
	}
	if err != nil {
		logging.Fatal("Fehler beim Öffnen des Archiv-Stores", zap.Error(err))
	}

	resolver := services.NewResolver(live, cfg.NotionPinnedPage, logging)
	archiver := services.NewArchiver(resolver, store, exporter, logging)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	result, err := archiver.Run(ctx)
	if err != nil {
		logging.Fatal("Export fehlgeschlagen", zap.Error(err))
	}
	if result.Skipped {
		logging.Warn("Keine Artikel geladen, Export übersprungen")
		return
	}
	logging.Info("Export-Prozess erfolgreich abgeschlossen.",
		zap.Int("articles", result.Articles),
		zap.String("link", result.ExportLink),
		zap.Int("rotated", result.Rotated))
}

func liveProviders(cfg *config.Config, logging *zap.Logger) []providers.Provider {
	var ps []providers.Provider
	for _, name := range cfg.Providers() {
		switch {
		case name == notion.ProviderName && cfg.NotionEnabled():
			ps = append(ps, notion.NewFetcher(cfg, logging))
		case name == sanity.ProviderName && cfg.SanityEnabled():
			ps = append(ps, sanity.NewFetcher(cfg, logging))
		}
	}
	return ps
}
