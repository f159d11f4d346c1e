package main

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"blog-hand/config"
	"blog-hand/providers"
	"blog-hand/providers/archive"
	"blog-hand/providers/notion"
	"blog-hand/providers/sanity"
	"blog-hand/services"
	"blog-hand/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// apiKeyAuthMiddleware schützt Admin-Routen. Der Schlüssel kommt als X-API-KEY-Header
// oder als secret-Query-Parameter (Webhooks können keine Header setzen).
func apiKeyAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.RevalidateSecret == "" {
			c.Next()
			return
		}
		apiKey := c.GetHeader("X-API-KEY")
		if apiKey == "" {
			apiKey = c.Query("secret")
		}
		if apiKey != cfg.RevalidateSecret {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid API Key"})
			return
		}
		c.Next()
	}
}

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	// Archiv-Store (optional)
	store, err := openArchiveStore(cfg, logging)
	if err != nil {
		logging.Fatal("Failed to open archive store", zap.Error(err))
	}

	// Setup Providers
	chain, live := setupProviders(cfg, store, logging)
	if len(chain) == 0 {
		logging.Fatal("No valid providers enabled. Check ENABLED_PROVIDERS in .env")
	}
	names := make([]string, 0, len(chain))
	for _, p := range chain {
		names = append(names, p.Name())
	}
	logging.Info("Active providers loaded", zap.Strings("providers", names))

	// Setup Services
	resolver := services.NewResolver(chain, cfg.NotionPinnedPage, logging)
	health := services.NewHealthChecker(chain, resolver, logging)

	var exporter services.SnapshotExporter
	if cfg.ExportEnabled() {
		e, err := storage.NewExporter(cfg, logging)
		if err != nil {
			logging.Fatal("S3 client creation failed", zap.Error(err))
		}
		exporter = e
	}
	var archiver *services.Archiver
	if store != nil || exporter != nil {
		liveResolver := services.NewResolver(live, cfg.NotionPinnedPage, logging)
		archiver = services.NewArchiver(liveResolver, store, exporter, logging)
	}

	router := setupRouter(cfg, resolver, health, archiver, logging)

	// Setup Cron
	if archiver != nil && cfg.SnapshotCron != "" {
		cronScheduler := cron.New()
		_, err := cronScheduler.AddFunc(cfg.SnapshotCron, func() {
			logging.Info("Running scheduled snapshot job...")
			result, err := archiver.Run(context.Background())
			if err != nil {
				logging.Error("Cron job failed", zap.Error(err))
				return
			}
			logging.Info("Cron job completed", zap.Int("articles", result.Articles), zap.Bool("skipped", result.Skipped))
		})
		if err != nil {
			logging.Fatal("Invalid SNAPSHOT_CRON", zap.String("schedule", cfg.SnapshotCron), zap.Error(err))
		}
		cronScheduler.Start()
		archiver.Trigger("startup")
	}

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}

// openArchiveStore öffnet den konfigurierten Snapshot-Store oder gibt nil zurück.
func openArchiveStore(cfg *config.Config, logging *zap.Logger) (storage.ArticleStore, error) {
	switch cfg.ArchiveBackend {
	case "memory":
		return storage.NewMemoryStore(), nil
	case "postgres":
		return storage.NewPostgresStore(cfg, logging)
	case "mongo":
		return storage.NewMongoStore(cfg, logging)
	default:
		return nil, nil
	}
}

// setupProviders baut die Fallback-Kette in der Reihenfolge von ENABLED_PROVIDERS.
// live enthält nur die Upstream-Provider, damit ein Snapshot nie aus sich selbst gespeist wird.
func setupProviders(cfg *config.Config, store storage.ArticleStore, logging *zap.Logger) (chain, live []providers.Provider) {
	for _, name := range cfg.Providers() {
		switch name {
		case notion.ProviderName:
			if !cfg.NotionEnabled() {
				logging.Warn("Provider enabled but not configured", zap.String("provider_name", name))
				continue
			}
			p := notion.NewFetcher(cfg, logging)
			chain = append(chain, p)
			live = append(live, p)
		case sanity.ProviderName:
			if !cfg.SanityEnabled() {
				logging.Warn("Provider enabled but not configured", zap.String("provider_name", name))
				continue
			}
			p := sanity.NewFetcher(cfg, logging)
			chain = append(chain, p)
			live = append(live, p)
		case archive.ProviderName:
			if store == nil {
				logging.Warn("Provider enabled but not configured", zap.String("provider_name", name))
				continue
			}
			chain = append(chain, archive.NewProvider(store, logging))
		default:
			logging.Warn("Unknown provider in config", zap.String("provider_name", name))
		}
	}
	return chain, live
}

func setupRouter(cfg *config.Config, resolver *services.Resolver, health *services.HealthChecker, archiver *services.Archiver, logging *zap.Logger) *gin.Engine {
	router := gin.Default()
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	setupPostRoutes(router, resolver, logging)
	setupTaxonomyRoutes(router, resolver)
	setupSearchRoutes(router, resolver)
	setupHealthRoutes(router, health)
	setupTextRoutes(router)
	setupAdminRoutes(router, cfg, archiver, logging)
	return router
}

func setupPostRoutes(router *gin.Engine, resolver *services.Resolver, log *zap.Logger) {
	rg := router.Group("/posts")

	rg.GET("", func(c *gin.Context) {
		c.JSON(http.StatusOK, resolver.All(c.Request.Context()))
	})

	// GET /posts/recent?limit=5
	rg.GET("/recent", func(c *gin.Context) {
		limit := 0
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
				return
			}
			limit = n
		}
		c.JSON(http.StatusOK, resolver.Recent(c.Request.Context(), limit))
	})

	rg.GET("/:slug", func(c *gin.Context) {
		slug := c.Param("slug")
		article := resolver.BySlug(c.Request.Context(), slug)
		if article == nil {
			log.Debug("Post not found", zap.String("slug", slug))
			c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
			return
		}
		c.JSON(http.StatusOK, article)
	})
}

func setupTaxonomyRoutes(router *gin.Engine, resolver *services.Resolver) {
	router.GET("/categories", func(c *gin.Context) {
		c.JSON(http.StatusOK, resolver.Categories(c.Request.Context()))
	})
	router.GET("/categories/:category/posts", func(c *gin.Context) {
		c.JSON(http.StatusOK, resolver.ByCategory(c.Request.Context(), c.Param("category")))
	})
	router.GET("/tags", func(c *gin.Context) {
		c.JSON(http.StatusOK, resolver.Tags(c.Request.Context()))
	})
	router.GET("/tags/:tag/posts", func(c *gin.Context) {
		c.JSON(http.StatusOK, resolver.ByTag(c.Request.Context(), c.Param("tag")))
	})
}

func setupSearchRoutes(router *gin.Engine, resolver *services.Resolver) {
	// GET /search?q=...
	router.GET("/search", func(c *gin.Context) {
		c.JSON(http.StatusOK, resolver.Search(c.Request.Context(), c.Query("q")))
	})
}

func setupHealthRoutes(router *gin.Engine, health *services.HealthChecker) {
	router.GET("/health", func(c *gin.Context) {
		report := health.Check(c.Request.Context())
		status := http.StatusOK
		if !report.Healthy() {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, report)
	})
}

func setupTextRoutes(router *gin.Engine) {
	rg := router.Group("/text")

	// POST - Vorschau der Normalisierung für Redakteure: Slug aus Titel, Auszug aus Markup
	rg.POST("/preview", func(c *gin.Context) {
		var req struct {
			Title   string `json:"title"`
			Content string `json:"content"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"slug":    services.Slugify(req.Title),
			"excerpt": services.Excerpt(req.Content),
			"text":    services.StripMarkup(req.Content),
		})
	})
}

func setupAdminRoutes(router *gin.Engine, cfg *config.Config, archiver *services.Archiver, log *zap.Logger) {
	rg := router.Group("/")
	rg.Use(apiKeyAuthMiddleware(cfg))

	rg.POST("/refresh", func(c *gin.Context) {
		if archiver == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no snapshot target configured"})
			return
		}
		archiver.Trigger("refresh")
		c.JSON(http.StatusAccepted, gin.H{"triggered": true, "timestamp": time.Now().UTC()})
	})

	// Notion sendet Änderungen an Seiten und Datenbanken; andere Ereignisse werden nur quittiert.
	rg.POST("/webhooks/notion", func(c *gin.Context) {
		var event struct {
			Type string `json:"type"`
		}
		if err := c.ShouldBindJSON(&event); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}
		log.Info("Notion webhook received", zap.String("type", event.Type))

		eventType := strings.ToLower(event.Type)
		triggered := archiver != nil && (eventType == "page" || eventType == "database")
		if triggered {
			archiver.Trigger("webhook:" + eventType)
		}
		c.JSON(http.StatusAccepted, gin.H{"received": true, "triggered": triggered})
	})
}
