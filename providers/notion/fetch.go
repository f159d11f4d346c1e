package notion

import (
	"context"
	"errors"

	"blog-hand/config"
	"blog-hand/models"
	"blog-hand/providers"

	"go.uber.org/zap"
)

// ProviderName ist der Name, unter dem Notion in ENABLED_PROVIDERS aktiviert wird.
const ProviderName = "notion"

const (
	statusProperty   = "Status"
	publishedStatus  = "Published"
	slugProperty     = "Slug"
	dateProperty     = "Date"
	categoryProperty = "Category"
	tagsProperty     = "Tags"
)

// Database abstrahiert die vom Fetcher genutzten Notion-Endpunkte.
type Database interface {
	BlockLister
	QueryDatabase(ctx context.Context, databaseID string, req QueryRequest, limit int) ([]Page, error)
	RetrievePage(ctx context.Context, pageID string) (*Page, error)
}

// Fetcher implementiert das Provider-Interface für eine Notion-Datenbank.
type Fetcher struct {
	DatabaseID  string
	Client      Database
	Normalizer  *Normalizer
	Concurrency int
	Logger      *zap.Logger
}

// NewFetcher erstellt einen neuen Notion-Fetcher aus der Konfiguration.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	client := NewClient(cfg.NotionBaseURL, cfg.NotionToken, cfg.NotionVersion, cfg.NotionRateLimit, logger)
	return &Fetcher{
		DatabaseID:  cfg.NotionDatabaseID,
		Client:      client,
		Normalizer:  NewNormalizer(client, cfg.AuthorName, logger),
		Concurrency: cfg.NotionConcurrency,
		Logger:      logger,
	}
}

// Name gibt den Namen des Providers zurück.
func (f *Fetcher) Name() string {
	return ProviderName
}

// Capabilities gibt an, dass Notion alle Anfragearten inklusive Einzelseiten beantwortet.
func (f *Fetcher) Capabilities() providers.Capability {
	return providers.AllCapabilities
}

// Query übersetzt die Anfrage in Notion-Filter und normalisiert die gefundenen Seiten.
func (f *Fetcher) Query(ctx context.Context, q providers.Query) ([]*models.Article, error) {
	log := f.Logger.With(zap.String("provider", ProviderName), zap.Stringer("kind", q.Kind))

	if q.Kind == providers.KindByID {
		return f.byID(ctx, q.ID)
	}

	req, limit, err := buildQuery(q)
	if err != nil {
		return nil, err
	}
	pages, err := f.Client.QueryDatabase(ctx, f.DatabaseID, req, limit)
	if err != nil {
		return nil, err
	}
	log.Debug("Notion-Seiten erhalten", zap.Int("pages", len(pages)))

	return f.Normalizer.NormalizeAll(ctx, pages, f.Concurrency), nil
}

func (f *Fetcher) byID(ctx context.Context, id string) ([]*models.Article, error) {
	if id == "" {
		return nil, errors.New("notion: empty page id")
	}
	page, err := f.Client.RetrievePage(ctx, id)
	if err != nil {
		return nil, err
	}
	if page.Properties == nil {
		return nil, nil
	}
	article := f.Normalizer.Normalize(ctx, page)
	if article == nil {
		return nil, nil
	}
	return []*models.Article{article}, nil
}

func publishedFilter() Filter {
	return Filter{Property: statusProperty, Status: &EqualsCondition{Equals: publishedStatus}}
}

func dateDescending() []Sort {
	return []Sort{{Property: dateProperty, Direction: "descending"}}
}

// buildQuery übersetzt eine Query in den Notion-Request und ein Ergebnislimit.
func buildQuery(q providers.Query) (QueryRequest, int, error) {
	published := publishedFilter()
	switch q.Kind {
	case providers.KindAll:
		return QueryRequest{Filter: &published, Sorts: dateDescending()}, 0, nil
	case providers.KindSlug:
		filter := Filter{And: []Filter{
			{Property: slugProperty, RichText: &EqualsCondition{Equals: q.Slug}},
			published,
		}}
		return QueryRequest{Filter: &filter}, 1, nil
	case providers.KindCategory:
		filter := Filter{And: []Filter{
			{Property: categoryProperty, MultiSelect: &ContainsCondition{Contains: q.Category}},
			published,
		}}
		return QueryRequest{Filter: &filter, Sorts: dateDescending()}, 0, nil
	case providers.KindTag:
		filter := Filter{And: []Filter{
			{Property: tagsProperty, MultiSelect: &ContainsCondition{Contains: q.Tag}},
			published,
		}}
		return QueryRequest{Filter: &filter, Sorts: dateDescending()}, 0, nil
	case providers.KindRecent:
		return QueryRequest{Filter: &published, Sorts: dateDescending()}, q.Limit, nil
	default:
		return QueryRequest{}, 0, errors.New("notion: unsupported query kind " + q.Kind.String())
	}
}
