package masterapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	dashboard "github.com/saludarte/go-master-dashboard/components/dashboard"
)

const (
	pathProducts        = "/master/api/products"
	pathSearch          = "/master/api/products/search"
	pathFilter          = "/master/api/products/filter"
	pathAddProduct      = "/master/api/products/add"
	pathDeleteProduct   = "/master/api/products/delete/"
	pathUploadCatalog   = "/master/upload_catalog"
	pathMovements       = "/master/api/movements"
	pathUnresolved      = "/master/api/unresolved"
	pathAnalytics       = "/master/api/analytics"
	pathProblemAnalysis = "/master/api/problem-analysis"

	// CatalogField is the multipart field carrying the catalog spreadsheet.
	CatalogField = "catalog_file"
)

// HTTPConfig configures the master API client.
type HTTPConfig struct {
	BaseURL    string
	HTTPClient *http.Client
	// Timeout applies only when HTTPClient is nil. Zero leaves requests bounded
	// by the caller context alone.
	Timeout time.Duration
	// Location interprets timestamps that carry no offset. Defaults to time.Local.
	Location *time.Location
}

// HTTPClient talks to the /master/api backend.
type HTTPClient struct {
	baseURL  string
	client   *http.Client
	location *time.Location
	schemas  *schemaSet
}

var _ dashboard.APIClient = (*HTTPClient)(nil)

// NewHTTPClient builds a client for the backend at cfg.BaseURL.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("masterapi: base url is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("masterapi: invalid base url %q: %w", cfg.BaseURL, err)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	location := cfg.Location
	if location == nil {
		location = time.Local
	}
	return &HTTPClient{
		baseURL:  base,
		client:   httpClient,
		location: location,
		schemas:  newSchemaSet(),
	}, nil
}

// ListProducts fetches the full catalog.
func (c *HTTPClient) ListProducts(ctx context.Context) ([]dashboard.Product, error) {
	return c.fetchProducts(ctx, pathProducts, nil)
}

// SearchProducts delegates matching to the server.
func (c *HTTPClient) SearchProducts(ctx context.Context, query string) ([]dashboard.Product, error) {
	return c.fetchProducts(ctx, pathSearch, url.Values{"q": {query}})
}

// FilterProducts narrows by category; an empty category lists everything.
func (c *HTTPClient) FilterProducts(ctx context.Context, category string) ([]dashboard.Product, error) {
	if strings.TrimSpace(category) == "" {
		return c.ListProducts(ctx)
	}
	return c.fetchProducts(ctx, pathFilter, url.Values{"category": {category}})
}

func (c *HTTPClient) fetchProducts(ctx context.Context, p string, query url.Values) ([]dashboard.Product, error) {
	var rows []map[string]any
	if err := c.getJSON(ctx, p, query, schemaProducts, &rows); err != nil {
		return nil, err
	}
	return decodeProducts(rows), nil
}

// AddProduct posts the dialog form as JSON.
func (c *HTTPClient) AddProduct(ctx context.Context, form dashboard.ProductForm) (dashboard.MutationResult, error) {
	body, err := json.Marshal(form)
	if err != nil {
		return dashboard.MutationResult{}, &dashboard.ApplicationError{Path: pathAddProduct, Err: fmt.Errorf("encode form: %w", err)}
	}
	return c.mutate(ctx, http.MethodPost, pathAddProduct, bytes.NewReader(body), "application/json")
}

// UploadCatalog sends the spreadsheet as multipart form data.
func (c *HTTPClient) UploadCatalog(ctx context.Context, upload dashboard.CatalogUpload) (dashboard.MutationResult, error) {
	if upload.Content == nil {
		return dashboard.MutationResult{}, dashboard.ErrNoFile
	}
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	filename := path.Base(strings.TrimSpace(upload.Filename))
	if filename == "." || filename == "/" || filename == "" {
		filename = "catalog.xlsx"
	}
	part, err := writer.CreateFormFile(CatalogField, filename)
	if err != nil {
		return dashboard.MutationResult{}, &dashboard.ApplicationError{Path: pathUploadCatalog, Err: fmt.Errorf("build multipart: %w", err)}
	}
	if _, err := io.Copy(part, upload.Content); err != nil {
		return dashboard.MutationResult{}, &dashboard.ApplicationError{Path: pathUploadCatalog, Err: fmt.Errorf("read catalog file: %w", err)}
	}
	if err := writer.Close(); err != nil {
		return dashboard.MutationResult{}, &dashboard.ApplicationError{Path: pathUploadCatalog, Err: fmt.Errorf("finish multipart: %w", err)}
	}
	return c.mutate(ctx, http.MethodPost, pathUploadCatalog, &buf, writer.FormDataContentType())
}

// DeleteProduct removes the catalog row at index.
func (c *HTTPClient) DeleteProduct(ctx context.Context, index int) (dashboard.MutationResult, error) {
	p := pathDeleteProduct + strconv.Itoa(index)
	if index < 0 {
		return dashboard.MutationResult{}, &dashboard.ApplicationError{Path: p, Err: fmt.Errorf("invalid product index %d", index)}
	}
	return c.mutate(ctx, http.MethodDelete, p, nil, "")
}

// ListMovements fetches the catalog activity log.
func (c *HTTPClient) ListMovements(ctx context.Context, query dashboard.MovementQuery) ([]dashboard.Movement, error) {
	params := url.Values{}
	if query.Days > 0 {
		params.Set("days", strconv.Itoa(query.Days))
	}
	if query.Limit > 0 {
		params.Set("limit", strconv.Itoa(query.Limit))
	}
	var rows []movementRecord
	if err := c.getJSON(ctx, pathMovements, params, schemaMovements, &rows); err != nil {
		return nil, err
	}
	movements, err := decodeMovements(rows, c.location)
	if err != nil {
		return nil, &dashboard.ApplicationError{Path: pathMovements, Status: http.StatusOK, Err: err}
	}
	return movements, nil
}

// ListUnresolved fetches the unresolved cases, optionally filtered by status.
func (c *HTTPClient) ListUnresolved(ctx context.Context, query dashboard.CaseQuery) ([]dashboard.UnresolvedCase, error) {
	params := url.Values{}
	if status := strings.TrimSpace(query.Status); status != "" {
		params.Set("status", status)
	}
	var rows []caseRecord
	if err := c.getJSON(ctx, pathUnresolved, params, schemaUnresolved, &rows); err != nil {
		return nil, err
	}
	cases, err := decodeCases(rows, c.location)
	if err != nil {
		return nil, &dashboard.ApplicationError{Path: pathUnresolved, Status: http.StatusOK, Err: err}
	}
	return cases, nil
}

// ResolveCase marks a case as resolved.
func (c *HTTPClient) ResolveCase(ctx context.Context, id string) (dashboard.MutationResult, error) {
	return c.mutate(ctx, http.MethodPost, casePath(id, "resolve"), nil, "")
}

// AddCaseNotes attaches operator notes to a case.
func (c *HTTPClient) AddCaseNotes(ctx context.Context, id, notes string) (dashboard.MutationResult, error) {
	body, err := json.Marshal(map[string]string{"notes": notes})
	if err != nil {
		return dashboard.MutationResult{}, &dashboard.ApplicationError{Path: casePath(id, "notes"), Err: err}
	}
	return c.mutate(ctx, http.MethodPost, casePath(id, "notes"), bytes.NewReader(body), "application/json")
}

// FetchAnalytics fetches usage analytics for the trailing window.
func (c *HTTPClient) FetchAnalytics(ctx context.Context, days int) (dashboard.AnalyticsSnapshot, error) {
	params := url.Values{}
	if days > 0 {
		params.Set("days", strconv.Itoa(days))
	}
	var payload analyticsPayload
	if err := c.getJSON(ctx, pathAnalytics, params, schemaAnalytics, &payload); err != nil {
		return dashboard.AnalyticsSnapshot{}, err
	}
	snapshot, err := payload.toSnapshot()
	if err != nil {
		return dashboard.AnalyticsSnapshot{}, &dashboard.ApplicationError{Path: pathAnalytics, Status: http.StatusOK, Err: err}
	}
	return snapshot, nil
}

// FetchProblemAnalysis fetches the unresolved case breakdown.
func (c *HTTPClient) FetchProblemAnalysis(ctx context.Context) (dashboard.ProblemAnalysis, error) {
	var payload problemPayload
	if err := c.getJSON(ctx, pathProblemAnalysis, nil, schemaProblemAnalysis, &payload); err != nil {
		return dashboard.ProblemAnalysis{}, err
	}
	analysis, err := payload.toAnalysis()
	if err != nil {
		return dashboard.ProblemAnalysis{}, &dashboard.ApplicationError{Path: pathProblemAnalysis, Status: http.StatusOK, Err: err}
	}
	return analysis, nil
}

func casePath(id, action string) string {
	return pathUnresolved + "/" + url.PathEscape(id) + "/" + action
}

func (c *HTTPClient) getJSON(ctx context.Context, p string, query url.Values, schema string, target any) error {
	status, body, err := c.do(ctx, http.MethodGet, p, query, nil, "")
	if err != nil {
		return err
	}
	return c.decode(p, status, schema, body, target)
}

func (c *HTTPClient) mutate(ctx context.Context, method, p string, payload io.Reader, contentType string) (dashboard.MutationResult, error) {
	status, body, err := c.do(ctx, method, p, nil, payload, contentType)
	if err != nil {
		return dashboard.MutationResult{}, err
	}
	var envelope mutationEnvelope
	if err := c.decode(p, status, schemaMutation, body, &envelope); err != nil {
		return dashboard.MutationResult{}, err
	}
	if envelope.Success == nil || !*envelope.Success {
		return dashboard.MutationResult{}, &dashboard.ApplicationError{Path: p, Status: status, Message: envelope.Error}
	}
	return dashboard.MutationResult{Message: envelope.Message}, nil
}

func (c *HTTPClient) decode(p string, status int, schema string, body []byte, target any) error {
	if err := c.schemas.Validate(schema, body); err != nil {
		return &dashboard.ApplicationError{Path: p, Status: status, Err: err}
	}
	if err := json.Unmarshal(body, target); err != nil {
		return &dashboard.ApplicationError{Path: p, Status: status, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// do performs a single attempt. Failures before a readable body exist are
// transport errors; error bodies and non-2xx statuses are application errors.
func (c *HTTPClient) do(ctx context.Context, method, p string, query url.Values, payload io.Reader, contentType string) (int, []byte, error) {
	target := c.baseURL + p
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, payload)
	if err != nil {
		return 0, nil, &dashboard.TransportError{Method: method, Path: p, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, &dashboard.TransportError{Method: method, Path: p, Err: err}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, &dashboard.TransportError{Method: method, Path: p, Err: fmt.Errorf("read body: %w", err)}
	}
	message := errorMessage(body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, body, &dashboard.ApplicationError{
			Path:    p,
			Status:  resp.StatusCode,
			Message: message,
			Err:     fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}
	if message != "" {
		return resp.StatusCode, body, &dashboard.ApplicationError{Path: p, Status: resp.StatusCode, Message: message}
	}
	return resp.StatusCode, body, nil
}

type mutationEnvelope struct {
	Success *bool  `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// errorMessage extracts the "error" member of an object body, if any.
func errorMessage(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return ""
	}
	var probe struct {
		Error any `json:"error"`
	}
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return ""
	}
	switch v := probe.Error.(type) {
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
