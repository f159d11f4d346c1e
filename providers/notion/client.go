package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// maxPageSize ist die größte Seitengröße, die die Notion-API akzeptiert.
const maxPageSize = 100

// APIError ist ein Fehler aus dem Notion-Fehlerformat.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notion api: status %d (%s): %s", e.Status, e.Code, e.Message)
}

// Client kapselt die HTTP-Aufrufe gegen die Notion-API.
type Client struct {
	baseURL string
	version string
	http    *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewClient erstellt einen Notion-Client. Das Token wird als Bearer über oauth2 gesetzt.
func NewClient(baseURL, token, version string, requestsPerSecond float64, logger *zap.Logger) *Client {
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: 60 * time.Second})
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	httpClient.Timeout = 60 * time.Second

	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		version: version,
		http:    httpClient,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}
}

// QueryDatabase führt einen Datenbank-Query aus und folgt der Pagination.
// Bei limit > 0 werden höchstens limit Seiten zurückgegeben.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, req QueryRequest, limit int) ([]Page, error) {
	var pages []Page
	for {
		req.PageSize = maxPageSize
		if limit > 0 && limit-len(pages) < maxPageSize {
			req.PageSize = limit - len(pages)
		}

		var resp QueryResponse
		path := "/databases/" + url.PathEscape(databaseID) + "/query"
		if err := c.do(ctx, http.MethodPost, path, req, &resp); err != nil {
			return nil, fmt.Errorf("query database %s: %w", databaseID, err)
		}
		pages = append(pages, resp.Results...)

		if !resp.HasMore || resp.NextCursor == "" || (limit > 0 && len(pages) >= limit) {
			break
		}
		req.StartCursor = resp.NextCursor
	}
	if limit > 0 && len(pages) > limit {
		pages = pages[:limit]
	}
	return pages, nil
}

// ListBlockChildren gibt alle direkten Kind-Blöcke eines Blocks (bzw. einer Seite) zurück.
func (c *Client) ListBlockChildren(ctx context.Context, blockID string) ([]Block, error) {
	var blocks []Block
	cursor := ""
	for {
		q := url.Values{}
		q.Set("page_size", fmt.Sprint(maxPageSize))
		if cursor != "" {
			q.Set("start_cursor", cursor)
		}

		var resp BlockListResponse
		path := "/blocks/" + url.PathEscape(blockID) + "/children?" + q.Encode()
		if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
			return nil, fmt.Errorf("list children of %s: %w", blockID, err)
		}
		blocks = append(blocks, resp.Results...)

		if !resp.HasMore || resp.NextCursor == "" {
			break
		}
		cursor = resp.NextCursor
	}
	return blocks, nil
}

// RetrievePage holt eine einzelne Seite anhand ihrer ID.
func (c *Client) RetrievePage(ctx context.Context, pageID string) (*Page, error) {
	var page Page
	if err := c.do(ctx, http.MethodGet, "/pages/"+url.PathEscape(pageID), nil, &page); err != nil {
		return nil, fmt.Errorf("retrieve page %s: %w", pageID, err)
	}
	return &page, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Notion-Version", c.version)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("Rufe Notion API auf", zap.String("method", method), zap.String("path", path))
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		var env errorEnvelope
		if err := json.Unmarshal(raw, &env); err != nil || env.Message == "" {
			return &APIError{Status: resp.StatusCode, Code: "unknown", Message: strings.TrimSpace(string(raw))}
		}
		return &APIError{Status: resp.StatusCode, Code: env.Code, Message: env.Message}
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
