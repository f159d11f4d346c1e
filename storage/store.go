package storage

import (
	"context"
	"sort"

	"blog-hand/models"
)

// Filter schränkt List ein. Leere Felder filtern nicht.
// Category und Tag passen auf Titel (ohne Groß-/Kleinschreibung) oder Slug.
type Filter struct {
	ID       string
	Slug     string
	Category string
	Tag      string
	Limit    int
}

// ArticleStore hält einen Snapshot der zuletzt aufgelösten Artikel.
type ArticleStore interface {
	// ReplaceAll ersetzt den Snapshot: vorhandene Artikel werden aktualisiert,
	// nicht mehr enthaltene gelöscht. Gibt die Anzahl gespeicherter Artikel zurück.
	ReplaceAll(ctx context.Context, articles []*models.Article) (int, error)

	// List gibt passende Artikel absteigend nach Veröffentlichungsdatum zurück.
	List(ctx context.Context, f Filter) ([]*models.Article, error)

	Count(ctx context.Context) (int64, error)
}

// Matches prüft einen Artikel gegen den Filter (ohne Limit).
func (f Filter) Matches(a *models.Article) bool {
	if f.ID != "" && a.ID != f.ID {
		return false
	}
	if f.Slug != "" && a.Slug != f.Slug {
		return false
	}
	if f.Category != "" && !a.HasCategory(f.Category) {
		return false
	}
	if f.Tag != "" && !a.HasTag(f.Tag) {
		return false
	}
	return true
}

// ApplyFilter filtert, sortiert absteigend nach Veröffentlichungszeit und begrenzt.
func ApplyFilter(articles []*models.Article, f Filter) []*models.Article {
	out := make([]*models.Article, 0, len(articles))
	for _, a := range articles {
		if f.Matches(a) {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishedTime().After(out[j].PublishedTime())
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}

func articleIDs(articles []*models.Article) []string {
	ids := make([]string, 0, len(articles))
	for _, a := range articles {
		ids = append(ids, a.ID)
	}
	return ids
}
