package sanity

import (
	"context"
	"errors"
	"strings"

	"blog-hand/config"
	"blog-hand/models"
	"blog-hand/providers"
	"blog-hand/services"

	"go.uber.org/zap"
)

// ProviderName ist der Name, unter dem Sanity in ENABLED_PROVIDERS aktiviert wird.
const ProviderName = "sanity"

const (
	postFilter = `_type == "post" && !(_id in path("drafts.**"))`
	orderDesc  = ` | order(publishedAt desc)`
	projection = ` {
  _id, _createdAt, title, slug, excerpt, content,
  featuredImage { asset->{ _id, url }, alt },
  categories[]->{ _id, title, slug },
  tags[]->{ _id, title, slug },
  publishedAt, updatedAt,
  author->{ name }
}`
	// Referenziert der Post eine Kategorie bzw. einen Tag, deren Slug oder Titel passt?
	termMatch = `references(*[_type == $termType && (slug.current == $value || title == $value)]._id)`
)

// Querier führt GROQ-Queries aus.
type Querier interface {
	Fetch(ctx context.Context, query string, params map[string]any, out any) error
}

// Fetcher implementiert das Provider-Interface für ein Sanity-Dataset.
type Fetcher struct {
	Client        Querier
	Renderer      *Renderer
	DefaultAuthor string
	Logger        *zap.Logger
}

// NewFetcher erstellt einen neuen Sanity-Fetcher aus der Konfiguration.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	endpoint := QueryEndpoint(cfg.SanityBaseURL, cfg.SanityProjectID, cfg.SanityDataset, cfg.SanityAPIVersion, cfg.SanityUseCDN)
	return &Fetcher{
		Client:        NewClient(endpoint, cfg.SanityToken, logger),
		Renderer:      NewRenderer(cfg.SanityProjectID, cfg.SanityDataset, logger),
		DefaultAuthor: cfg.AuthorName,
		Logger:        logger,
	}
}

// Name gibt den Namen des Providers zurück.
func (f *Fetcher) Name() string {
	return ProviderName
}

// Capabilities gibt an, dass Sanity alle Anfragearten beantwortet.
func (f *Fetcher) Capabilities() providers.Capability {
	return providers.AllCapabilities
}

// Query führt die passende GROQ-Query aus und bildet die Posts auf Artikel ab.
func (f *Fetcher) Query(ctx context.Context, q providers.Query) ([]*models.Article, error) {
	groq, params, err := buildQuery(q)
	if err != nil {
		return nil, err
	}

	var posts []Post
	if err := f.Client.Fetch(ctx, groq, params, &posts); err != nil {
		return nil, err
	}
	f.Logger.Debug("Sanity-Posts erhalten",
		zap.String("provider", ProviderName),
		zap.Stringer("kind", q.Kind),
		zap.Int("posts", len(posts)))

	articles := make([]*models.Article, 0, len(posts))
	for i := range posts {
		if a := f.toArticle(&posts[i]); a != nil {
			articles = append(articles, a)
		}
	}
	return articles, nil
}

// buildQuery liefert GROQ und Parameter für eine Anfrage. Jede Query liefert ein Array.
func buildQuery(q providers.Query) (string, map[string]any, error) {
	switch q.Kind {
	case providers.KindAll:
		return `*[` + postFilter + `]` + orderDesc + projection, nil, nil
	case providers.KindSlug:
		return `*[` + postFilter + ` && slug.current == $slug]` + orderDesc + `[0...1]` + projection,
			map[string]any{"slug": q.Slug}, nil
	case providers.KindCategory:
		return `*[` + postFilter + ` && ` + termMatch + `]` + orderDesc + projection,
			map[string]any{"termType": "category", "value": q.Category}, nil
	case providers.KindTag:
		return `*[` + postFilter + ` && ` + termMatch + `]` + orderDesc + projection,
			map[string]any{"termType": "tag", "value": q.Tag}, nil
	case providers.KindRecent:
		if q.Limit <= 0 {
			return `*[` + postFilter + `]` + orderDesc + projection, nil, nil
		}
		return `*[` + postFilter + `]` + orderDesc + `[0...$limit]` + projection,
			map[string]any{"limit": q.Limit}, nil
	case providers.KindByID:
		if q.ID == "" {
			return "", nil, errors.New("sanity: empty document id")
		}
		return `*[` + postFilter + ` && _id == $id][0...1]` + projection,
			map[string]any{"id": q.ID}, nil
	default:
		return "", nil, errors.New("sanity: unsupported query kind " + q.Kind.String())
	}
}

func (f *Fetcher) toArticle(p *Post) *models.Article {
	if p.ID == "" {
		f.Logger.Warn("Sanity-Post ohne _id übersprungen")
		return nil
	}

	title := strings.TrimSpace(p.Title)
	if title == "" {
		title = services.DefaultTitle
	}
	slug := ""
	if p.Slug != nil {
		slug = strings.TrimSpace(p.Slug.Current)
	}
	if slug == "" {
		slug = services.Slugify(title)
	}

	content := f.Renderer.Render(p.Content)
	excerpt := strings.TrimSpace(p.Excerpt)
	if excerpt == "" {
		excerpt = services.Excerpt(content)
	}

	publishedAt := p.PublishedAt
	if publishedAt == "" {
		publishedAt = p.CreatedAt
	}
	author := f.DefaultAuthor
	if p.Author != nil && p.Author.Name != "" {
		author = p.Author.Name
	}

	article := &models.Article{
		ID:          p.ID,
		Slug:        slug,
		Title:       title,
		Excerpt:     excerpt,
		Content:     content,
		Categories:  terms(p.Categories),
		Tags:        terms(p.Tags),
		PublishedAt: publishedAt,
		UpdatedAt:   p.UpdatedAt,
		Author:      author,
		Source:      ProviderName,
	}
	if p.FeaturedImage != nil {
		if src := f.Renderer.ImageURL(p.FeaturedImage.Asset); src != "" {
			alt := p.FeaturedImage.Alt
			if alt == "" {
				alt = title
			}
			article.FeaturedImage = &models.Image{URL: src, Alt: alt}
		}
	}
	return article
}

// terms übernimmt dereferenzierte Kategorien/Tags. Unaufgelöste Referenzen (ohne Titel) fallen weg.
func terms(refs []Reference) []models.Term {
	out := make([]models.Term, 0, len(refs))
	for _, r := range refs {
		title := strings.TrimSpace(r.Title)
		if title == "" {
			continue
		}
		slug := ""
		if r.Slug != nil {
			slug = r.Slug.Current
		}
		if slug == "" {
			slug = services.Slugify(title)
		}
		out = append(out, models.Term{Title: title, Slug: slug})
	}
	return out
}
