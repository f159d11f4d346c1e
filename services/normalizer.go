package services

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"
)

const (
	// ExcerptLength ist die Anzahl Zeichen (Runes), die in einen Auszug übernommen werden.
	ExcerptLength = 120
	// ExcerptEllipsis wird an nicht-leere Auszüge angehängt.
	ExcerptEllipsis = "…"
	// DefaultExcerpt ersetzt den Auszug, wenn der Inhalt keinen Text enthält.
	DefaultExcerpt = "Read the full article for details."
	// DefaultTitle wird verwendet, wenn eine Quelle keinen Titel liefert.
	DefaultTitle = "Untitled"
)

var (
	nonSlugRE    = regexp.MustCompile(`[^\w\s-]`)
	whitespaceRE = regexp.MustCompile(`\s+`)
	tagRE        = regexp.MustCompile(`<[^>]*>`)
)

// Slugify leitet einen URL-Slug deterministisch aus einem Titel ab:
// Kleinbuchstaben, Nicht-Wort-Zeichen entfernt, Whitespace-Läufe zu einem Bindestrich.
// Nur ASCII-Wortzeichen bleiben erhalten; ein rein japanischer Titel ergibt einen leeren Slug.
func Slugify(title string) string {
	s := strings.ToLower(title)
	// Unicode-Leerzeichen (z.B. U+3000) wie normale Leerzeichen behandeln
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, s)
	s = nonSlugRE.ReplaceAllString(s, "")
	s = whitespaceRE.ReplaceAllString(s, "-")
	return strings.TrimSpace(s)
}

// StripMarkup entfernt alle Tags aus einem Markup-Fragment und gibt den NFC-normalisierten Text zurück.
func StripMarkup(fragment string) string {
	var text string
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		text = tagRE.ReplaceAllString(fragment, "")
	} else {
		text = doc.Text()
	}
	return norm.NFC.String(text)
}

// Excerpt erzeugt einen Auszug aus gerendertem Inhalt. Die Transformation ist verlustbehaftet.
func Excerpt(content string) string {
	runes := []rune(StripMarkup(content))
	if len(runes) > ExcerptLength {
		runes = runes[:ExcerptLength]
	}
	excerpt := strings.TrimSpace(string(runes))
	if excerpt == "" {
		return DefaultExcerpt
	}
	return excerpt + ExcerptEllipsis
}
