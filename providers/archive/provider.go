package archive

import (
	"context"
	"errors"

	"blog-hand/models"
	"blog-hand/providers"
	"blog-hand/storage"

	"go.uber.org/zap"
)

// ProviderName ist der Name, unter dem das Archiv in ENABLED_PROVIDERS aktiviert wird.
const ProviderName = "archive"

// Provider beantwortet Anfragen aus dem zuletzt gespeicherten Snapshot.
type Provider struct {
	Store  storage.ArticleStore
	Logger *zap.Logger
}

func NewProvider(store storage.ArticleStore, logger *zap.Logger) *Provider {
	return &Provider{Store: store, Logger: logger}
}

func (p *Provider) Name() string {
	return ProviderName
}

func (p *Provider) Capabilities() providers.Capability {
	return providers.AllCapabilities
}

// Query übersetzt die Anfrage in einen Store-Filter.
func (p *Provider) Query(ctx context.Context, q providers.Query) ([]*models.Article, error) {
	f, err := filterFor(q)
	if err != nil {
		return nil, err
	}
	articles, err := p.Store.List(ctx, f)
	if err != nil {
		return nil, err
	}
	for _, a := range articles {
		a.Source = ProviderName
	}
	return articles, nil
}

func filterFor(q providers.Query) (storage.Filter, error) {
	switch q.Kind {
	case providers.KindAll:
		return storage.Filter{}, nil
	case providers.KindSlug:
		return storage.Filter{Slug: q.Slug, Limit: 1}, nil
	case providers.KindCategory:
		return storage.Filter{Category: q.Category}, nil
	case providers.KindTag:
		return storage.Filter{Tag: q.Tag}, nil
	case providers.KindRecent:
		return storage.Filter{Limit: q.Limit}, nil
	case providers.KindByID:
		if q.ID == "" {
			return storage.Filter{}, errors.New("archive: empty id")
		}
		return storage.Filter{ID: q.ID, Limit: 1}, nil
	default:
		return storage.Filter{}, errors.New("archive: unsupported query kind " + q.Kind.String())
	}
}
