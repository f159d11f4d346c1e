package sanity

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
)

// APIError ist ein Fehler aus dem Sanity-Fehlerformat.
type APIError struct {
	Status      int
	Type        string
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sanity api: status %d (%s): %s", e.Status, e.Type, e.Description)
}

// Client führt GROQ-Queries gegen die Sanity Query-API aus.
type Client struct {
	endpoint string
	http     *http.Client
	logger   *zap.Logger
}

// QueryEndpoint baut die Query-URL für Projekt und Dataset.
// Ist baseURL gesetzt, ersetzt sie den Host (z.B. für Tests oder Proxies).
func QueryEndpoint(baseURL, projectID, dataset, apiVersion string, useCDN bool) string {
	if baseURL == "" {
		host := "api"
		if useCDN {
			host = "apicdn"
		}
		baseURL = fmt.Sprintf("https://%s.%s.sanity.io", projectID, host)
	}
	return strings.TrimRight(baseURL, "/") + "/v" + strings.TrimPrefix(apiVersion, "v") +
		"/data/query/" + url.PathEscape(dataset)
}

// NewClient erstellt einen Client. Ohne Token werden nur öffentliche Dokumente gelesen.
func NewClient(endpoint, token string, logger *zap.Logger) *Client {
	httpClient := &http.Client{Timeout: 30 * time.Second}
	if token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
		httpClient.Timeout = 30 * time.Second
	}
	return &Client{endpoint: endpoint, http: httpClient, logger: logger}
}

// Fetch führt query mit params aus und dekodiert das Feld "result" nach out.
func (c *Client) Fetch(ctx context.Context, query string, params map[string]any, out any) error {
	payload, err := json.Marshal(queryRequest{Query: query, Params: params})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("Führe GROQ-Query aus", zap.String("endpoint", c.endpoint))
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sanity query: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		var env errorEnvelope
		if err := json.Unmarshal(raw, &env); err != nil || env.Error.Description == "" {
			return &APIError{Status: resp.StatusCode, Type: "unknown", Description: strings.TrimSpace(string(raw))}
		}
		return &APIError{Status: resp.StatusCode, Type: env.Error.Type, Description: env.Error.Description}
	}

	var qr queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&qr); err != nil {
		return fmt.Errorf("decode sanity response: %w", err)
	}
	if len(qr.Result) == 0 || string(qr.Result) == "null" {
		return nil
	}
	return json.Unmarshal(qr.Result, out)
}
