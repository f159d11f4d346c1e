package providers

import (
	"context"
	"fmt"

	"blog-hand/models"
)

// Kind bezeichnet die logische Art einer Content-Anfrage.
type Kind int

const (
	KindAll Kind = iota
	KindSlug
	KindCategory
	KindTag
	KindRecent
	KindByID
)

func (k Kind) String() string {
	switch k {
	case KindAll:
		return "all"
	case KindSlug:
		return "slug"
	case KindCategory:
		return "category"
	case KindTag:
		return "tag"
	case KindRecent:
		return "recent"
	case KindByID:
		return "by_id"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Capability ist eine Bitmenge der Anfragearten, die ein Provider beantworten kann.
type Capability uint

// Of liefert die Capability für eine einzelne Anfrageart.
func Of(kinds ...Kind) Capability {
	var c Capability
	for _, k := range kinds {
		c |= 1 << uint(k)
	}
	return c
}

// AllCapabilities deckt jede bekannte Anfrageart ab.
var AllCapabilities = Of(KindAll, KindSlug, KindCategory, KindTag, KindRecent, KindByID)

// Has prüft, ob die Capability die Anfrageart enthält.
func (c Capability) Has(k Kind) bool {
	return c&(1<<uint(k)) != 0
}

// Query beschreibt eine Content-Anfrage. Nur die zur Kind passenden Felder sind gesetzt.
type Query struct {
	Kind     Kind
	Slug     string
	Category string
	Tag      string
	ID       string
	Limit    int
}

// Target gibt den Bezeichner der Anfrage für Logs zurück.
func (q Query) Target() string {
	switch q.Kind {
	case KindSlug:
		return q.Slug
	case KindCategory:
		return q.Category
	case KindTag:
		return q.Tag
	case KindByID:
		return q.ID
	case KindRecent:
		return fmt.Sprintf("limit=%d", q.Limit)
	default:
		return ""
	}
}

// Provider ist das Interface, das jede Content-Quelle (z.B. Notion, Sanity) implementieren muss.
type Provider interface {
	// Name gibt den eindeutigen Namen des Providers zurück (z.B. "notion").
	Name() string

	// Capabilities gibt an, welche Anfragearten der Provider beantworten kann.
	Capabilities() Capability

	// Query führt eine Anfrage aus und gibt normalisierte Artikel in Provider-Reihenfolge zurück.
	Query(ctx context.Context, q Query) ([]*models.Article, error)
}
