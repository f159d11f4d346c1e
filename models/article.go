package models

import (
	"strings"
	"time"
)

// Article ist der gemeinsame, normalisierte Datensatz, den jeder Provider liefert.
// Er wird pro Aufruf frisch erzeugt und danach nicht mehr verändert.
type Article struct {
	ID      string `json:"id" gorm:"primaryKey" bson:"_id"`
	Slug    string `json:"slug" gorm:"index" bson:"slug"`
	Title   string `json:"title" gorm:"not null" bson:"title"`
	Excerpt string `json:"excerpt" gorm:"type:text" bson:"excerpt"`
	Content string `json:"content,omitempty" gorm:"type:text" bson:"content"`

	FeaturedImage *Image `json:"featured_image,omitempty" gorm:"serializer:json;type:jsonb" bson:"featured_image,omitempty"`

	// Kategorisierung
	Categories []Term `json:"categories" gorm:"serializer:json;type:jsonb" bson:"categories"`
	Tags       []Term `json:"tags" gorm:"serializer:json;type:jsonb" bson:"tags"`

	// Zeitstempel als ISO-Strings, so wie die Provider sie liefern
	PublishedAt string `json:"published_at" gorm:"index" bson:"published_at"`
	UpdatedAt   string `json:"updated_at,omitempty" gorm:"column:updated_at;autoUpdateTime:false" bson:"updated_at,omitempty"`

	Author string `json:"author" bson:"author"`
	Status string `json:"status,omitempty" bson:"status,omitempty"`
	Source string `json:"source" gorm:"index" bson:"source"`
}

// TableName gibt explizit den Tabellennamen für das Archiv an.
func (Article) TableName() string {
	return "archived_articles"
}

// Image ist ein einzelnes Bild mit Alt-Text.
type Image struct {
	URL string `json:"url" bson:"url"`
	Alt string `json:"alt,omitempty" bson:"alt,omitempty"`
}

// Term ist eine Kategorie oder ein Tag.
type Term struct {
	Title string `json:"title" bson:"title"`
	Slug  string `json:"slug" bson:"slug"`
}

// Matches prüft, ob value dem Titel oder dem Slug entspricht.
func (t Term) Matches(value string) bool {
	return t.Slug == value || strings.EqualFold(t.Title, value)
}

var publishedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04",
	"2006-01-02",
}

// PublishedTime parst PublishedAt. Nicht parsebare Werte ergeben die Nullzeit.
func (a *Article) PublishedTime() time.Time {
	for _, layout := range publishedLayouts {
		t, err := time.Parse(layout, a.PublishedAt)
		if err == nil {
			return t
		}
	}
	return time.Time{}
}

// HasCategory prüft, ob der Artikel eine Kategorie mit passendem Titel oder Slug hat.
func (a *Article) HasCategory(value string) bool {
	for _, c := range a.Categories {
		if c.Matches(value) {
			return true
		}
	}
	return false
}

// HasTag prüft, ob der Artikel einen Tag mit passendem Titel oder Slug hat.
func (a *Article) HasTag(value string) bool {
	for _, t := range a.Tags {
		if t.Matches(value) {
			return true
		}
	}
	return false
}
