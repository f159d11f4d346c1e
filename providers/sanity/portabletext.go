package sanity

import (
	"bytes"
	"encoding/json"
	"html"
	"regexp"
	"slices"
	"strings"

	"github.com/yuin/goldmark"
	"go.uber.org/zap"
)

const defaultImageAlt = "Blog image"

// Dekoratoren in der Reihenfolge, in der sie verschachtelt werden.
var decorators = []struct {
	mark string
	tag  string
}{
	{"strong", "strong"},
	{"em", "em"},
	{"strike-through", "del"},
	{"underline", "u"},
	{"code", "code"},
}

var blockTags = map[string]string{
	"normal":     "p",
	"h1":         "h1",
	"h2":         "h2",
	"h3":         "h3",
	"h4":         "h4",
	"blockquote": "blockquote",
}

// image-<id>-<width>x<height>-<format>
var assetRefRE = regexp.MustCompile(`^image-([a-zA-Z0-9]+)-(\d+x\d+)-([a-z]+)$`)

// Renderer wandelt Sanity-Inhalte (Portable Text oder Markdown) in HTML um.
type Renderer struct {
	ProjectID string
	Dataset   string
	Markdown  goldmark.Markdown
	Logger    *zap.Logger
}

// NewRenderer erstellt einen Renderer mit Standard-Markdown-Konfiguration.
func NewRenderer(projectID, dataset string, logger *zap.Logger) *Renderer {
	return &Renderer{ProjectID: projectID, Dataset: dataset, Markdown: goldmark.New(), Logger: logger}
}

// Render erkennt die Form des Inhalts: ein JSON-Array wird als Portable Text,
// ein String als Markdown behandelt. Alles andere ergibt einen leeren String.
func (r *Renderer) Render(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return ""
	}
	switch trimmed[0] {
	case '[':
		var blocks []Block
		if err := json.Unmarshal(trimmed, &blocks); err != nil {
			r.debug("Portable Text nicht lesbar", err)
			return ""
		}
		return r.RenderBlocks(blocks)
	case '"':
		var md string
		if err := json.Unmarshal(trimmed, &md); err != nil {
			r.debug("Markdown-Inhalt nicht lesbar", err)
			return ""
		}
		return r.RenderMarkdown(md)
	default:
		return ""
	}
}

// RenderMarkdown konvertiert Markdown mit goldmark. Rohes HTML wird nicht übernommen.
func (r *Renderer) RenderMarkdown(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := r.Markdown.Convert([]byte(md), &buf); err != nil {
		r.debug("Markdown-Konvertierung fehlgeschlagen", err)
		return ""
	}
	return strings.TrimSpace(buf.String())
}

// RenderBlocks rendert Portable-Text-Blöcke in Quellreihenfolge.
// Listeneinträge werden wie bei Notion ohne umschließende Liste ausgegeben.
func (r *Renderer) RenderBlocks(blocks []Block) string {
	var sb strings.Builder
	for i := range blocks {
		sb.WriteString(r.renderBlock(&blocks[i]))
	}
	return sb.String()
}

func (r *Renderer) renderBlock(b *Block) string {
	switch b.Type {
	case "block":
		text := renderSpans(b.Children, b.MarkDefs)
		if b.ListItem != "" {
			return "<li>" + text + "</li>"
		}
		tag, ok := blockTags[b.Style]
		if !ok {
			tag = "p"
		}
		if tag == "p" && strings.TrimSpace(text) == "" {
			return ""
		}
		return "<" + tag + ">" + text + "</" + tag + ">"
	case "image":
		return r.renderImage(b)
	default:
		if r.Logger != nil {
			r.Logger.Debug("Nicht unterstützter Portable-Text-Typ übersprungen", zap.String("type", b.Type))
		}
		return ""
	}
}

func (r *Renderer) renderImage(b *Block) string {
	src := r.ImageURL(b.Asset)
	if src == "" {
		return ""
	}
	alt := b.Alt
	if alt == "" {
		alt = defaultImageAlt
	}
	var sb strings.Builder
	sb.WriteString(`<figure><img src="` + html.EscapeString(src) + `" alt="` + html.EscapeString(alt) + `" />`)
	if b.Caption != "" {
		sb.WriteString("<figcaption>" + html.EscapeString(b.Caption) + "</figcaption>")
	}
	sb.WriteString("</figure>")
	return sb.String()
}

// ImageURL gibt die URL eines Assets zurück. Unaufgelöste Referenzen werden
// in eine CDN-URL übersetzt.
func (r *Renderer) ImageURL(a *Asset) string {
	if a == nil {
		return ""
	}
	if a.URL != "" {
		return a.URL
	}
	ref := a.Ref
	if ref == "" {
		ref = a.ID
	}
	m := assetRefRE.FindStringSubmatch(ref)
	if m == nil || r.ProjectID == "" || r.Dataset == "" {
		return ""
	}
	return "https://cdn.sanity.io/images/" + r.ProjectID + "/" + r.Dataset + "/" + m[1] + "-" + m[2] + "." + m[3]
}

func renderSpans(spans []Span, defs []MarkDef) string {
	links := make(map[string]string, len(defs))
	for _, d := range defs {
		if d.Type == "link" && d.Href != "" {
			links[d.Key] = d.Href
		}
	}

	var sb strings.Builder
	for _, span := range spans {
		text := html.EscapeString(span.Text)
		for _, d := range decorators {
			if slices.Contains(span.Marks, d.mark) {
				text = "<" + d.tag + ">" + text + "</" + d.tag + ">"
			}
		}
		for _, m := range span.Marks {
			if href, ok := links[m]; ok {
				text = `<a href="` + html.EscapeString(href) + `" target="_blank" rel="noopener noreferrer">` + text + "</a>"
				break
			}
		}
		sb.WriteString(text)
	}
	return sb.String()
}

func (r *Renderer) debug(msg string, err error) {
	if r.Logger != nil {
		r.Logger.Debug(msg, zap.Error(err))
	}
}
