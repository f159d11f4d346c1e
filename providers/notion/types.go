package notion

import "encoding/json"

// QueryRequest ist der Body für POST /databases/{id}/query.
type QueryRequest struct {
	Filter      *Filter `json:"filter,omitempty"`
	Sorts       []Sort  `json:"sorts,omitempty"`
	PageSize    int     `json:"page_size,omitempty"`
	StartCursor string  `json:"start_cursor,omitempty"`
}

// Filter bildet die Notion-Filtersprache ab: entweder ein Property-Filter oder ein "and".
type Filter struct {
	Property    string             `json:"property,omitempty"`
	Status      *EqualsCondition   `json:"status,omitempty"`
	RichText    *EqualsCondition   `json:"rich_text,omitempty"`
	MultiSelect *ContainsCondition `json:"multi_select,omitempty"`
	And         []Filter           `json:"and,omitempty"`
}

type EqualsCondition struct {
	Equals string `json:"equals"`
}

type ContainsCondition struct {
	Contains string `json:"contains"`
}

// Sort sortiert nach einer einzelnen Property.
type Sort struct {
	Property  string `json:"property"`
	Direction string `json:"direction"` // ascending, descending
}

// QueryResponse ist eine Seite eines Datenbank-Queries.
type QueryResponse struct {
	Results    []Page `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor"`
}

// BlockListResponse ist eine Seite von /blocks/{id}/children.
type BlockListResponse struct {
	Results    []Block `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor string  `json:"next_cursor"`
}

// Page ist eine Notion-Seite mit ihren Properties.
type Page struct {
	Object         string              `json:"object"`
	ID             string              `json:"id"`
	CreatedTime    string              `json:"created_time"`
	LastEditedTime string              `json:"last_edited_time"`
	Cover          *FileObject         `json:"cover"`
	Properties     map[string]Property `json:"properties"`
	URL            string              `json:"url"`
}

// Property ist ein typisierter Property-Wert. Welches Feld gesetzt ist, bestimmt Type.
type Property struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	Title       []RichText `json:"title,omitempty"`
	RichText    []RichText `json:"rich_text,omitempty"`
	Date        *DateValue `json:"date,omitempty"`
	Select      *Option    `json:"select,omitempty"`
	Status      *Option    `json:"status,omitempty"`
	MultiSelect []Option   `json:"multi_select,omitempty"`
}

type DateValue struct {
	Start string `json:"start"`
	End   string `json:"end,omitempty"`
}

type Option struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// RichText ist ein einzelner Textlauf mit Formatierung.
type RichText struct {
	Type        string      `json:"type"`
	PlainText   string      `json:"plain_text"`
	Href        *string     `json:"href"`
	Annotations Annotations `json:"annotations"`
}

type Annotations struct {
	Bold          bool   `json:"bold"`
	Italic        bool   `json:"italic"`
	Strikethrough bool   `json:"strikethrough"`
	Underline     bool   `json:"underline"`
	Code          bool   `json:"code"`
	Color         string `json:"color,omitempty"`
}

// FileObject referenziert eine Datei, entweder von Notion gehostet ("file") oder extern ("external").
type FileObject struct {
	Type     string     `json:"type"`
	File     *FileURL   `json:"file,omitempty"`
	External *FileURL   `json:"external,omitempty"`
	Caption  []RichText `json:"caption,omitempty"`
}

type FileURL struct {
	URL        string `json:"url"`
	ExpiryTime string `json:"expiry_time,omitempty"`
}

// Block ist ein Inhaltsblock einer Seite. Nur der zu Type passende Payload ist gesetzt.
type Block struct {
	Object      string `json:"object"`
	ID          string `json:"id"`
	Type        string `json:"type"`
	HasChildren bool   `json:"has_children"`

	Paragraph        *TextBlock  `json:"paragraph,omitempty"`
	Heading1         *TextBlock  `json:"heading_1,omitempty"`
	Heading2         *TextBlock  `json:"heading_2,omitempty"`
	Heading3         *TextBlock  `json:"heading_3,omitempty"`
	BulletedListItem *TextBlock  `json:"bulleted_list_item,omitempty"`
	NumberedListItem *TextBlock  `json:"numbered_list_item,omitempty"`
	Quote            *TextBlock  `json:"quote,omitempty"`
	Image            *FileObject `json:"image,omitempty"`
	ChildPage        *ChildPage  `json:"child_page,omitempty"`

	Divider         json.RawMessage `json:"divider,omitempty"`
	TableOfContents json.RawMessage `json:"table_of_contents,omitempty"`
}

type TextBlock struct {
	RichText []RichText `json:"rich_text"`
	Color    string     `json:"color,omitempty"`
}

type ChildPage struct {
	Title string `json:"title"`
}

// errorEnvelope ist die Fehlerantwort der Notion-API.
type errorEnvelope struct {
	Object  string `json:"object"`
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
