package notion

import (
	"html"
	"strings"

	"go.uber.org/zap"
)

// Blockarten, die in Markup übersetzt werden. Alle anderen werden bewusst übersprungen.
const (
	blockParagraph        = "paragraph"
	blockHeading1         = "heading_1"
	blockHeading2         = "heading_2"
	blockHeading3         = "heading_3"
	blockBulletedListItem = "bulleted_list_item"
	blockNumberedListItem = "numbered_list_item"
	blockImage            = "image"
	blockQuote            = "quote"
	blockDivider          = "divider"
	blockChildPage        = "child_page"
	blockTableOfContents  = "table_of_contents"
)

const (
	defaultImageAlt = "Blog image"
	childPageLabel  = "Sub page"
	tocPlaceholder  = `<div class="notion-toc"><h4>Table of contents</h4><p>The table of contents for this article is shown here.</p></div>`
)

// BlockRenderer übersetzt Notion-Blöcke in HTML-Fragmente.
type BlockRenderer struct {
	Logger *zap.Logger
}

// Render konvertiert Blöcke in Quellreihenfolge. Unbekannte Blockarten liefern keinen Beitrag
// und brechen die Konvertierung nachfolgender Blöcke nicht ab.
// Listeneinträge werden ohne umschließendes <ul>/<ol> ausgegeben.
func (r *BlockRenderer) Render(blocks []Block) string {
	var sb strings.Builder
	for i := range blocks {
		sb.WriteString(r.renderBlock(&blocks[i]))
	}
	return sb.String()
}

func (r *BlockRenderer) renderBlock(b *Block) string {
	switch b.Type {
	case blockParagraph:
		text := textOf(b.Paragraph)
		if strings.TrimSpace(text) == "" {
			return ""
		}
		return "<p>" + text + "</p>"
	case blockHeading1:
		return "<h1>" + textOf(b.Heading1) + "</h1>"
	case blockHeading2:
		return "<h2>" + textOf(b.Heading2) + "</h2>"
	case blockHeading3:
		return "<h3>" + textOf(b.Heading3) + "</h3>"
	case blockBulletedListItem:
		return "<li>" + textOf(b.BulletedListItem) + "</li>"
	case blockNumberedListItem:
		return "<li>" + textOf(b.NumberedListItem) + "</li>"
	case blockImage:
		return renderImage(b.Image)
	case blockQuote:
		return "<blockquote>" + textOf(b.Quote) + "</blockquote>"
	case blockDivider:
		return "<hr />"
	case blockChildPage:
		title := ""
		if b.ChildPage != nil {
			title = html.EscapeString(b.ChildPage.Title)
		}
		return `<div class="notion-child-page"><h4>` + childPageLabel + `</h4><p>` + title + `</p></div>`
	case blockTableOfContents:
		return tocPlaceholder
	default:
		if r.Logger != nil {
			r.Logger.Debug("Nicht unterstützte Blockart übersprungen", zap.String("type", b.Type), zap.String("block_id", b.ID))
		}
		return ""
	}
}

func renderImage(img *FileObject) string {
	src := ImageURL(img)
	if src == "" {
		return ""
	}
	caption := FormatRichText(img.Caption)
	alt := PlainText(img.Caption)
	if alt == "" {
		alt = defaultImageAlt
	}

	var sb strings.Builder
	sb.WriteString(`<figure><img src="`)
	sb.WriteString(html.EscapeString(src))
	sb.WriteString(`" alt="`)
	sb.WriteString(html.EscapeString(alt))
	sb.WriteString(`" />`)
	if caption != "" {
		sb.WriteString("<figcaption>" + caption + "</figcaption>")
	}
	sb.WriteString("</figure>")
	return sb.String()
}

func textOf(tb *TextBlock) string {
	if tb == nil {
		return ""
	}
	return FormatRichText(tb.RichText)
}

// FormatRichText rendert Textläufe in Quellreihenfolge ohne Trennzeichen.
// Formatierungen werden in fester Reihenfolge verschachtelt, der Link umschließt zuletzt.
func FormatRichText(runs []RichText) string {
	var sb strings.Builder
	for _, run := range runs {
		text := html.EscapeString(run.PlainText)
		a := run.Annotations
		if a.Bold {
			text = "<strong>" + text + "</strong>"
		}
		if a.Italic {
			text = "<em>" + text + "</em>"
		}
		if a.Strikethrough {
			text = "<del>" + text + "</del>"
		}
		if a.Underline {
			text = "<u>" + text + "</u>"
		}
		if a.Code {
			text = "<code>" + text + "</code>"
		}
		if run.Href != nil && *run.Href != "" {
			text = `<a href="` + html.EscapeString(*run.Href) + `" target="_blank" rel="noopener noreferrer">` + text + "</a>"
		}
		sb.WriteString(text)
	}
	return sb.String()
}

// PlainText verbindet die unformatierten Texte aller Läufe.
func PlainText(runs []RichText) string {
	var sb strings.Builder
	for _, run := range runs {
		sb.WriteString(run.PlainText)
	}
	return sb.String()
}

// ImageURL löst die URL einer Dateireferenz anhand ihres Typs auf.
// Unbekannte oder unvollständige Referenzen ergeben einen leeren String.
func ImageURL(f *FileObject) string {
	if f == nil {
		return ""
	}
	switch f.Type {
	case "file":
		if f.File != nil {
			return f.File.URL
		}
	case "external":
		if f.External != nil {
			return f.External.URL
		}
	}
	return ""
}
