package sanity

import "encoding/json"

// queryRequest ist der Body für POST /data/query/{dataset}.
type queryRequest struct {
	Query  string         `json:"query"`
	Params map[string]any `json:"params,omitempty"`
}

// queryResponse ist die Antwort der Query-API. Result wird erst im Aufrufer dekodiert.
type queryResponse struct {
	Query  string          `json:"query"`
	Result json.RawMessage `json:"result"`
	Ms     int             `json:"ms"`
}

// errorEnvelope ist das Fehlerformat der Sanity-API.
type errorEnvelope struct {
	Error struct {
		Type        string `json:"type"`
		Description string `json:"description"`
	} `json:"error"`
}

// Post ist ein Dokument vom Typ "post" in der Projektion der GROQ-Queries.
type Post struct {
	ID            string          `json:"_id"`
	CreatedAt     string          `json:"_createdAt"`
	Title         string          `json:"title"`
	Slug          *Slug           `json:"slug"`
	Excerpt       string          `json:"excerpt"`
	Content       json.RawMessage `json:"content"`
	FeaturedImage *ImageRef       `json:"featuredImage"`
	Categories    []Reference     `json:"categories"`
	Tags          []Reference     `json:"tags"`
	PublishedAt   string          `json:"publishedAt"`
	UpdatedAt     string          `json:"updatedAt"`
	Author        *Author         `json:"author"`
}

type Slug struct {
	Current string `json:"current"`
}

// ImageRef ist ein Bildfeld mit aufgelöstem oder unaufgelöstem Asset.
type ImageRef struct {
	Asset *Asset `json:"asset"`
	Alt   string `json:"alt"`
}

// Asset ist ein Bild-Asset. URL ist nur gesetzt, wenn die Query das Asset dereferenziert.
type Asset struct {
	Ref string `json:"_ref"`
	ID  string `json:"_id"`
	URL string `json:"url"`
}

// Reference ist eine dereferenzierte Kategorie oder ein Tag.
type Reference struct {
	ID    string `json:"_id"`
	Title string `json:"title"`
	Slug  *Slug  `json:"slug"`
}

type Author struct {
	Name string `json:"name"`
}

// Block ist ein Element eines Portable-Text-Arrays (Textblock oder Bild).
type Block struct {
	Type     string    `json:"_type"`
	Key      string    `json:"_key"`
	Style    string    `json:"style"`
	ListItem string    `json:"listItem"`
	Level    int       `json:"level"`
	Children []Span    `json:"children"`
	MarkDefs []MarkDef `json:"markDefs"`

	// Felder von Bildblöcken
	Asset   *Asset `json:"asset"`
	Alt     string `json:"alt"`
	Caption string `json:"caption"`
}

// Span ist ein Textlauf mit Dekoratoren bzw. Verweisen auf MarkDefs.
type Span struct {
	Type  string   `json:"_type"`
	Text  string   `json:"text"`
	Marks []string `json:"marks"`
}

// MarkDef ist eine Annotation (z.B. ein Link), auf die Spans per Key verweisen.
type MarkDef struct {
	Key  string `json:"_key"`
	Type string `json:"_type"`
	Href string `json:"href"`
}
