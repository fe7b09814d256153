package pdfapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bnema/pdfmcp/internal/domain"
	"github.com/bnema/pdfmcp/internal/ports"
)

const (
	DefaultBaseURL        = "https://api.pdfnoodle.com/v1/"
	DefaultRequestTimeout = 60 * time.Second

	maxResponseBytes = 1 << 20
	userAgent        = "pdfmcp"
)

const (
	templatesPath         = "integration/templates"
	templateVariablesPath = "integration/templates/%s/variables"
	htmlRenderPath        = "html-to-pdf/sync"
	templateRenderPath    = "pdf/sync"
	statusPath            = "pdf/status/%s"
)

// Client talks to the PDF generation API. The credential is supplied per call
// and only ever placed in the Authorization header.
type Client struct {
	BaseURL        string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

var _ ports.PDFAPI = Client{}

func (c Client) ListTemplates(ctx context.Context, credential string) ([]json.RawMessage, error) {
	status, body, err := c.do(ctx, credential, http.MethodGet, templatesPath, nil)
	if err != nil {
		return nil, err
	}
	if err := expectSuccess(status, body); err != nil {
		return nil, err
	}

	templates, err := decodeTemplateList(body)
	if err != nil {
		return nil, fmt.Errorf("decode templates: %w", err)
	}
	return templates, nil
}

func (c Client) TemplateVariables(ctx context.Context, credential string, id domain.TemplateID) (json.RawMessage, error) {
	if !id.Valid() {
		return nil, fmt.Errorf("%w: templateId", domain.ErrMissingParameter)
	}

	status, body, err := c.do(ctx, credential, http.MethodGet, fmt.Sprintf(templateVariablesPath, url.PathEscape(string(id))), nil)
	if err != nil {
		return nil, err
	}
	if err := expectSuccess(status, body); err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && !json.Valid(trimmed) {
		return nil, fmt.Errorf("decode template variables: %w", domain.ErrUnexpectedResponse)
	}
	return json.RawMessage(trimmed), nil
}

func (c Client) RenderHTML(ctx context.Context, credential string, req ports.HTMLRenderRequest) (domain.Submission, error) {
	payload := htmlRenderBody{
		HTML:           req.HTML,
		PDFParams:      req.PDFParams,
		ConvertToImage: req.ConvertToImage,
		Metadata:       req.Metadata,
		HasCover:       req.HasCover,
	}
	return c.submit(ctx, credential, htmlRenderPath, payload)
}

func (c Client) RenderTemplate(ctx context.Context, credential string, req ports.TemplateRenderRequest) (domain.Submission, error) {
	payload := templateRenderBody{
		TemplateID: string(req.TemplateID),
		Data:       req.Data,
	}
	return c.submit(ctx, credential, templateRenderPath, payload)
}

func (c Client) JobStatus(ctx context.Context, credential string, id domain.RequestID) (domain.JobStatus, error) {
	if strings.TrimSpace(string(id)) == "" {
		return domain.JobStatus{}, fmt.Errorf("%w: requestId", domain.ErrMissingParameter)
	}

	status, body, err := c.do(ctx, credential, http.MethodGet, fmt.Sprintf(statusPath, url.PathEscape(string(id))), nil)
	if err != nil {
		return domain.JobStatus{}, err
	}
	if err := expectSuccess(status, body); err != nil {
		return domain.JobStatus{}, err
	}

	var decoded statusResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return domain.JobStatus{}, fmt.Errorf("decode status: %w", err)
	}

	job := domain.JobStatus{
		RequestID: domain.RequestID(decoded.RequestID),
		Status:    domain.ParseRenderStatus(decoded.RenderStatus),
		Result: domain.RenderResult{
			SignedURL: decoded.SignedURL,
			Metadata:  decoded.Metadata.toDomain(),
		},
	}
	if job.RequestID == "" {
		job.RequestID = id
	}
	return job, nil
}

func (c Client) submit(ctx context.Context, credential, path string, payload any) (domain.Submission, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return domain.Submission{}, fmt.Errorf("encode request: %w", err)
	}

	status, body, err := c.do(ctx, credential, http.MethodPost, path, encoded)
	if err != nil {
		return domain.Submission{}, err
	}
	if err := expectSuccess(status, body); err != nil {
		return domain.Submission{}, err
	}

	submission := domain.Submission{StatusCode: status}
	switch status {
	case http.StatusOK:
		var decoded renderResponse
		if err := json.Unmarshal(body, &decoded); err != nil {
			return domain.Submission{}, fmt.Errorf("decode render result: %w", err)
		}
		submission.Result = &domain.RenderResult{
			SignedURL: decoded.SignedURL,
			Metadata:  decoded.Metadata.toDomain(),
		}
	case http.StatusAccepted:
		var decoded queuedResponse
		if err := json.Unmarshal(body, &decoded); err != nil {
			return domain.Submission{}, fmt.Errorf("decode queued job: %w", err)
		}
		submission.Queued = &domain.QueuedJob{
			RequestID: domain.RequestID(decoded.RequestID),
			StatusURL: decoded.StatusURL,
			Message:   decoded.Message,
		}
	}

	return submission, nil
}

func (c Client) do(ctx context.Context, credential, method, path string, payload []byte) (int, []byte, error) {
	endpoint, err := buildAPIURL(c.baseURL(), path)
	if err != nil {
		return 0, nil, err
	}

	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(requestCtx, method, endpoint, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+credential)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.httpClient().Do(req)
	if err != nil {
		c.logger().WarnContext(ctx, "upstream request failed", "method", method, "path", path, "error", err)
		return 0, nil, fmt.Errorf("perform request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}

	c.logger().DebugContext(ctx, "upstream request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(started),
	)

	return resp.StatusCode, body, nil
}

func (c Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}

	timeout := c.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return context.WithTimeout(ctx, timeout)
}

func (c Client) baseURL() string {
	if strings.TrimSpace(c.BaseURL) == "" {
		return DefaultBaseURL
	}
	return c.BaseURL
}

func (c Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c Client) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func expectSuccess(status int, body []byte) error {
	if status < 200 || status > 299 {
		return &domain.APIError{StatusCode: status, Body: strings.TrimSpace(string(body))}
	}
	return nil
}

// buildAPIURL resolves path against baseURL. A base without a trailing slash
// is treated as a directory so "…/v1" and "…/v1/" behave the same.
func buildAPIURL(baseURL string, path string) (string, error) {
	if baseURL == "" {
		return "", errors.New("api base url is required")
	}
	if path == "" {
		return "", errors.New("api path is required")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("api base url must use http or https")
	}
	if parsed.Host == "" {
		return "", errors.New("api base url host is required")
	}
	if !strings.HasSuffix(parsed.Path, "/") {
		parsed.Path += "/"
	}

	endpoint, err := parsed.Parse(strings.TrimLeft(path, "/"))
	if err != nil {
		return "", fmt.Errorf("parse api path: %w", err)
	}
	return endpoint.String(), nil
}
