package notion

import (
	"context"
	"errors"
	"strings"
	"time"

	"blog-hand/models"
	"blog-hand/services"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	coverAlt           = "Blog featured image"
	contentUnavailable = "<p>The content could not be loaded.</p>"
	isoMillis          = "2006-01-02T15:04:05.000Z07:00"
)

// field ist ein kanonisches Artikelfeld, das aus Seiten-Properties gelesen wird.
type field int

const (
	fieldTitle field = iota
	fieldSlug
	fieldDate
	fieldStatus
	fieldCategories
	fieldTags
)

// fieldSpec ordnet einem kanonischen Feld die akzeptierten Property-Namen (in Prioritätsreihenfolge)
// und einen typisierten Extraktor zu. Der erste nicht-leere Treffer gewinnt.
type fieldSpec struct {
	aliases []string
	value   func(Property) string
	values  func(Property) []string
}

var fieldTable = map[field]fieldSpec{
	fieldTitle:      {aliases: []string{"Title", "Name", "title"}, value: propertyText},
	fieldSlug:       {aliases: []string{"Slug", "slug"}, value: propertyText},
	fieldDate:       {aliases: []string{"Date", "Published", "date"}, value: propertyText},
	fieldStatus:     {aliases: []string{"Status", "status"}, value: propertyText},
	fieldCategories: {aliases: []string{"Category", "Categories", "category"}, values: multiSelectNames},
	fieldTags:       {aliases: []string{"Tags", "tags"}, values: multiSelectNames},
}

// BlockLister liefert die Kind-Blöcke einer Seite.
type BlockLister interface {
	ListBlockChildren(ctx context.Context, blockID string) ([]Block, error)
}

// Normalizer wandelt Notion-Seiten in Artikel um.
type Normalizer struct {
	Blocks   BlockLister
	Renderer *BlockRenderer
	Author   string
	Logger   *zap.Logger
	Now      func() time.Time
}

// NewNormalizer erstellt einen Normalizer mit Standard-Renderer.
func NewNormalizer(blocks BlockLister, author string, logger *zap.Logger) *Normalizer {
	return &Normalizer{
		Blocks:   blocks,
		Renderer: &BlockRenderer{Logger: logger},
		Author:   author,
		Logger:   logger,
		Now:      time.Now,
	}
}

// Normalize konvertiert eine Seite. Fehler verlassen diese Funktion nie: sie werden geloggt
// und als nil zurückgegeben, damit der Aufrufer die Seite aus dem Batch filtern kann.
func (n *Normalizer) Normalize(ctx context.Context, page *Page) *models.Article {
	article, err := n.normalize(ctx, page)
	if err != nil {
		id := ""
		if page != nil {
			id = page.ID
		}
		n.Logger.Warn("Seitenkonvertierung fehlgeschlagen", zap.String("page_id", id), zap.Error(err))
		return nil
	}
	return article
}

// NormalizeAll konvertiert Seiten nebenläufig (höchstens concurrency gleichzeitig)
// und behält die Reihenfolge bei. Nicht konvertierbare Seiten fehlen im Ergebnis.
func (n *Normalizer) NormalizeAll(ctx context.Context, pages []Page, concurrency int) []*models.Article {
	results := make([]*models.Article, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for i := range pages {
		g.Go(func() error {
			results[i] = n.Normalize(gctx, &pages[i])
			return nil
		})
	}
	_ = g.Wait()

	articles := make([]*models.Article, 0, len(results))
	for _, a := range results {
		if a != nil {
			articles = append(articles, a)
		}
	}
	return articles
}

func (n *Normalizer) normalize(ctx context.Context, page *Page) (*models.Article, error) {
	if page == nil || page.ID == "" {
		return nil, errors.New("page without id")
	}
	props := page.Properties

	title := lookup(props, fieldTitle)
	if title == "" {
		title = services.DefaultTitle
	}
	slug := lookup(props, fieldSlug)
	if slug == "" {
		slug = services.Slugify(title)
	}
	publishedAt := lookup(props, fieldDate)
	if publishedAt == "" {
		publishedAt = n.Now().UTC().Format(isoMillis)
	}

	content := n.content(ctx, page.ID)
	article := &models.Article{
		ID:          CanonicalID(page.ID),
		Slug:        slug,
		Title:       title,
		Excerpt:     services.Excerpt(content),
		Content:     content,
		Categories:  terms(lookupAll(props, fieldCategories)),
		Tags:        terms(lookupAll(props, fieldTags)),
		PublishedAt: publishedAt,
		UpdatedAt:   page.LastEditedTime,
		Author:      n.Author,
		Status:      lookup(props, fieldStatus),
		Source:      ProviderName,
	}
	if src := ImageURL(page.Cover); src != "" {
		article.FeaturedImage = &models.Image{URL: src, Alt: coverAlt}
	}
	return article, nil
}

func (n *Normalizer) content(ctx context.Context, pageID string) string {
	if n.Blocks == nil {
		return ""
	}
	blocks, err := n.Blocks.ListBlockChildren(ctx, pageID)
	if err != nil {
		n.Logger.Warn("Inhalt konnte nicht geladen werden", zap.String("page_id", pageID), zap.Error(err))
		return contentUnavailable
	}
	return n.Renderer.Render(blocks)
}

func lookup(props map[string]Property, f field) string {
	def := fieldTable[f]
	for _, key := range def.aliases {
		prop, ok := props[key]
		if !ok {
			continue
		}
		if v := strings.TrimSpace(def.value(prop)); v != "" {
			return v
		}
	}
	return ""
}

func lookupAll(props map[string]Property, f field) []string {
	def := fieldTable[f]
	for _, key := range def.aliases {
		prop, ok := props[key]
		if !ok {
			continue
		}
		if v := def.values(prop); len(v) > 0 {
			return v
		}
	}
	return nil
}

func terms(labels []string) []models.Term {
	out := make([]models.Term, 0, len(labels))
	for _, label := range labels {
		out = append(out, models.Term{Title: label, Slug: services.Slugify(label)})
	}
	return out
}

// propertyText liest einen skalaren Wert abhängig vom Property-Typ.
func propertyText(p Property) string {
	switch p.Type {
	case "title":
		return PlainText(p.Title)
	case "rich_text":
		return PlainText(p.RichText)
	case "date":
		if p.Date != nil {
			return p.Date.Start
		}
	case "select":
		if p.Select != nil {
			return p.Select.Name
		}
	case "status":
		if p.Status != nil {
			return p.Status.Name
		}
	}
	return ""
}

func multiSelectNames(p Property) []string {
	if p.Type != "multi_select" {
		return nil
	}
	names := make([]string, 0, len(p.MultiSelect))
	for _, opt := range p.MultiSelect {
		if opt.Name != "" {
			names = append(names, opt.Name)
		}
	}
	return names
}

// CanonicalID bringt Notion-IDs in die Bindestrich-Form einer UUID. Andere IDs bleiben unverändert.
func CanonicalID(id string) string {
	if u, err := uuid.Parse(id); err == nil {
		return u.String()
	}
	return id
}
