package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"blog-hand/models"
	"blog-hand/storage"

	"go.uber.org/zap"
)

// ErrSnapshotRunning wird zurückgegeben, wenn bereits ein Snapshot läuft.
var ErrSnapshotRunning = errors.New("snapshot already running")

// SnapshotExporter lädt Snapshots in einen externen Speicher und räumt alte auf.
type SnapshotExporter interface {
	Export(ctx context.Context, articles []*models.Article, now time.Time) (string, error)
	Rotate(ctx context.Context) (int, error)
}

// SnapshotResult beschreibt einen abgeschlossenen Lauf.
type SnapshotResult struct {
	Articles   int    `json:"articles"`
	Stored     int    `json:"stored"`
	ExportLink string `json:"export_link,omitempty"`
	Rotated    int    `json:"rotated"`
	Skipped    bool   `json:"skipped"`
}

// Archiver sichert den aktuellen Artikelbestand der Live-Provider.
// Store und Exporter sind optional.
type Archiver struct {
	Resolver *Resolver
	Store    storage.ArticleStore
	Exporter SnapshotExporter
	Timeout  time.Duration
	Logger   *zap.Logger
	Now      func() time.Time

	running sync.Mutex
}

func NewArchiver(live *Resolver, store storage.ArticleStore, exporter SnapshotExporter, logger *zap.Logger) *Archiver {
	return &Archiver{
		Resolver: live,
		Store:    store,
		Exporter: exporter,
		Timeout:  5 * time.Minute,
		Logger:   logger,
		Now:      time.Now,
	}
}

// Run löst alle Artikel auf und speichert bzw. exportiert sie.
// Ein leeres Ergebnis überschreibt den vorhandenen Snapshot nie.
func (a *Archiver) Run(ctx context.Context) (*SnapshotResult, error) {
	if !a.running.TryLock() {
		return nil, ErrSnapshotRunning
	}
	defer a.running.Unlock()

	articles := a.Resolver.All(ctx)
	result := &SnapshotResult{Articles: len(articles)}
	if len(articles) == 0 {
		a.Logger.Warn("Snapshot übersprungen: keine Artikel von den Live-Providern")
		snapshotRuns.WithLabelValues("skipped").Inc()
		result.Skipped = true
		return result, nil
	}

	if a.Store != nil {
		stored, err := a.Store.ReplaceAll(ctx, articles)
		if err != nil {
			snapshotRuns.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("store snapshot: %w", err)
		}
		result.Stored = stored
		snapshotArticles.Set(float64(stored))
	}

	if a.Exporter != nil {
		link, err := a.Exporter.Export(ctx, articles, a.Now())
		if err != nil {
			snapshotRuns.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("export snapshot: %w", err)
		}
		result.ExportLink = link

		rotated, err := a.Exporter.Rotate(ctx)
		if err != nil {
			a.Logger.Error("Rotation alter Exporte fehlgeschlagen", zap.Error(err))
		}
		result.Rotated = rotated
	}

	snapshotRuns.WithLabelValues("ok").Inc()
	a.Logger.Info("Snapshot abgeschlossen",
		zap.Int("articles", result.Articles),
		zap.Int("stored", result.Stored),
		zap.String("export", result.ExportLink))
	return result, nil
}

// Trigger startet einen Lauf im Hintergrund. reason landet im Log.
func (a *Archiver) Trigger(reason string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), a.Timeout)
		defer cancel()

		log := a.Logger.With(zap.String("reason", reason))
		log.Info("Snapshot gestartet")
		if _, err := a.Run(ctx); err != nil {
			if errors.Is(err, ErrSnapshotRunning) {
				log.Info("Snapshot läuft bereits, Trigger ignoriert")
				return
			}
			log.Error("Snapshot fehlgeschlagen", zap.Error(err))
		}
	}()
}
