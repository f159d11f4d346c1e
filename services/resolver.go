package services

import (
	"context"
	"sort"
	"time"

	"blog-hand/models"
	"blog-hand/providers"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultRecentLimit gilt, wenn Recent mit limit <= 0 aufgerufen wird.
const DefaultRecentLimit = 5

// Resolver fragt die Provider in fester Reihenfolge ab. Das erste nicht-leere Ergebnis gewinnt.
// Fehler einzelner Provider werden geloggt und wie ein leeres Ergebnis behandelt.
type Resolver struct {
	Providers []providers.Provider
	PinnedID  string
	Logger    *zap.Logger
}

// NewResolver erstellt einen Resolver. Die Reihenfolge von ps ist die Fallback-Reihenfolge.
func NewResolver(ps []providers.Provider, pinnedID string, logger *zap.Logger) *Resolver {
	return &Resolver{Providers: ps, PinnedID: pinnedID, Logger: logger}
}

// All gibt alle veröffentlichten Artikel zurück.
func (r *Resolver) All(ctx context.Context) []*models.Article {
	return r.resolve(ctx, providers.Query{Kind: providers.KindAll})
}

// BySlug gibt den Artikel mit dem Slug zurück oder nil.
func (r *Resolver) BySlug(ctx context.Context, slug string) *models.Article {
	articles := r.resolve(ctx, providers.Query{Kind: providers.KindSlug, Slug: slug})
	if len(articles) == 0 {
		return nil
	}
	return articles[0]
}

// ByCategory gibt die Artikel einer Kategorie zurück.
func (r *Resolver) ByCategory(ctx context.Context, category string) []*models.Article {
	return r.resolve(ctx, providers.Query{Kind: providers.KindCategory, Category: category})
}

// ByTag gibt die Artikel eines Tags zurück.
func (r *Resolver) ByTag(ctx context.Context, tag string) []*models.Article {
	return r.resolve(ctx, providers.Query{Kind: providers.KindTag, Tag: tag})
}

// ByID gibt den Artikel mit der ID zurück oder nil.
func (r *Resolver) ByID(ctx context.Context, id string) *models.Article {
	articles := r.resolve(ctx, providers.Query{Kind: providers.KindByID, ID: id})
	if len(articles) == 0 {
		return nil
	}
	return articles[0]
}

// Recent gibt die neuesten Artikel zurück. Liste und angepinnter Artikel werden parallel geladen;
// der angepinnte Artikel konkurriert danach nur über sein Datum um einen Platz.
func (r *Resolver) Recent(ctx context.Context, limit int) []*models.Article {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	var list []*models.Article
	var pinned *models.Article
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list = r.resolve(gctx, providers.Query{Kind: providers.KindRecent, Limit: limit})
		return nil
	})
	if r.PinnedID != "" {
		g.Go(func() error {
			pinned = r.ByID(gctx, r.PinnedID)
			return nil
		})
	}
	_ = g.Wait()

	return MergeRecent(pinned, list, limit)
}

// MergeRecent setzt den angepinnten Artikel vor die Liste, entfernt Duplikate per ID
// (das erste Vorkommen bleibt, keine Zusammenführung von Feldern), sortiert stabil
// absteigend nach Veröffentlichungszeit und kürzt auf limit.
func MergeRecent(pinned *models.Article, list []*models.Article, limit int) []*models.Article {
	merged := make([]*models.Article, 0, len(list)+1)
	seen := make(map[string]bool, len(list)+1)
	add := func(a *models.Article) {
		if a == nil || seen[a.ID] {
			return
		}
		seen[a.ID] = true
		merged = append(merged, a)
	}
	add(pinned)
	for _, a := range list {
		add(a)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].PublishedTime().After(merged[j].PublishedTime())
	})
	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

// Categories gibt alle Kategorien in der Reihenfolge ihres ersten Auftretens zurück.
func (r *Resolver) Categories(ctx context.Context) []models.Term {
	return CollectCategories(r.All(ctx))
}

// Tags gibt alle Tags in der Reihenfolge ihres ersten Auftretens zurück.
func (r *Resolver) Tags(ctx context.Context) []models.Term {
	return CollectTags(r.All(ctx))
}

// Search sucht ohne Beachtung der Groß-/Kleinschreibung in Titel, Auszug, Kategorien und Tags.
func (r *Resolver) Search(ctx context.Context, q string) []*models.Article {
	if isBlank(q) {
		return []*models.Article{}
	}
	return MatchArticles(r.All(ctx), q)
}

func (r *Resolver) resolve(ctx context.Context, q providers.Query) []*models.Article {
	for _, p := range r.Providers {
		if !p.Capabilities().Has(q.Kind) {
			continue
		}
		if articles := r.fetchOrEmpty(ctx, p, q); len(articles) > 0 {
			return articles
		}
	}
	return []*models.Article{}
}

// fetchOrEmpty führt eine Anfrage aus. Ein Fehler wird geloggt, gezählt und als leeres Ergebnis gemeldet.
func (r *Resolver) fetchOrEmpty(ctx context.Context, p providers.Provider, q providers.Query) []*models.Article {
	op := q.Kind.String()
	start := time.Now()
	articles, err := p.Query(ctx, q)
	providerDuration.WithLabelValues(p.Name(), op).Observe(time.Since(start).Seconds())

	if err != nil {
		providerRequests.WithLabelValues(p.Name(), op, OutcomeError).Inc()
		r.Logger.Error("Provider-Anfrage fehlgeschlagen",
			zap.String("provider", p.Name()),
			zap.String("operation", op),
			zap.String("target", q.Target()),
			zap.Error(err))
		return nil
	}
	if len(articles) == 0 {
		providerRequests.WithLabelValues(p.Name(), op, OutcomeEmpty).Inc()
		return nil
	}
	providerRequests.WithLabelValues(p.Name(), op, OutcomeHit).Inc()
	return articles
}
