package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bnema/pdfmcp/internal/domain"
	"github.com/bnema/pdfmcp/internal/ports"
)

const (
	ToolListTemplates        = "list_templates"
	ToolGetTemplateVariables = "get_template_variables"
	ToolHTMLToPDF            = "html_to_pdf"
	ToolGeneratePDF          = "generate_pdf"
	ToolCheckPDFStatus       = "check_pdf_status"
)

// ToolResult is what a tool hands back to the caller. Failures are carried as
// IsError results, never as Go errors.
type ToolResult struct {
	Text    string
	Data    any
	IsError bool
}

type ListTemplatesInput struct {
	APIKey string
	Limit  int
}

type TemplateVariablesInput struct {
	APIKey     string
	TemplateID string
}

type HTMLToPDFInput struct {
	APIKey            string
	HTML              string
	PDFParams         string
	ConvertToImage    *bool
	Metadata          string
	HasCover          *bool
	WaitForCompletion *bool
}

type GeneratePDFInput struct {
	APIKey            string
	TemplateID        string
	Data              string
	WaitForCompletion *bool
}

type CheckStatusInput struct {
	APIKey    string
	RequestID string
}

type Dispatcher struct {
	api     ports.PDFAPI
	tracker *Tracker
	logger  *slog.Logger
}

func NewDispatcher(api ports.PDFAPI, tracker *Tracker, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if tracker == nil {
		tracker = NewTracker(api, nil, DefaultBackoff(), logger)
	}

	return &Dispatcher{api: api, tracker: tracker, logger: logger}
}

func (d *Dispatcher) ListTemplates(ctx context.Context, in ListTemplatesInput) ToolResult {
	return d.contain(ctx, ToolListTemplates, func() (ToolResult, error) {
		if err := requireParam("apiKey", in.APIKey); err != nil {
			return ToolResult{}, err
		}

		templates, err := d.api.ListTemplates(ctx, in.APIKey)
		if err != nil {
			return ToolResult{}, fmt.Errorf("list templates: %w", err)
		}

		total := len(templates)
		if in.Limit > 0 && in.Limit < total {
			templates = templates[:in.Limit]
		}

		return templatesResult(templates, total)
	})
}

func (d *Dispatcher) TemplateVariables(ctx context.Context, in TemplateVariablesInput) ToolResult {
	return d.contain(ctx, ToolGetTemplateVariables, func() (ToolResult, error) {
		if err := requireParam("apiKey", in.APIKey); err != nil {
			return ToolResult{}, err
		}
		if err := requireParam("templateId", in.TemplateID); err != nil {
			return ToolResult{}, err
		}

		id := domain.TemplateID(strings.TrimSpace(in.TemplateID))
		variables, err := d.api.TemplateVariables(ctx, in.APIKey, id)
		if err != nil {
			return ToolResult{}, fmt.Errorf("get template variables: %w", err)
		}

		return variablesResult(id, variables)
	})
}

func (d *Dispatcher) HTMLToPDF(ctx context.Context, in HTMLToPDFInput) ToolResult {
	return d.contain(ctx, ToolHTMLToPDF, func() (ToolResult, error) {
		if err := requireParam("apiKey", in.APIKey); err != nil {
			return ToolResult{}, err
		}
		if err := requireParam("html", in.HTML); err != nil {
			return ToolResult{}, err
		}

		pdfParams, err := parseJSONParam("pdfParams", in.PDFParams)
		if err != nil {
			return ToolResult{}, err
		}
		metadata, err := parseJSONParam("metadata", in.Metadata)
		if err != nil {
			return ToolResult{}, err
		}

		submission, err := d.api.RenderHTML(ctx, in.APIKey, ports.HTMLRenderRequest{
			HTML:           in.HTML,
			PDFParams:      pdfParams,
			ConvertToImage: in.ConvertToImage,
			Metadata:       metadata,
			HasCover:       in.HasCover,
		})
		if err != nil {
			return ToolResult{}, fmt.Errorf("submit html render: %w", err)
		}

		return d.settle(ctx, in.APIKey, submission, waitFor(in.WaitForCompletion))
	})
}

func (d *Dispatcher) GeneratePDF(ctx context.Context, in GeneratePDFInput) ToolResult {
	return d.contain(ctx, ToolGeneratePDF, func() (ToolResult, error) {
		if err := requireParam("apiKey", in.APIKey); err != nil {
			return ToolResult{}, err
		}
		if err := requireParam("templateId", in.TemplateID); err != nil {
			return ToolResult{}, err
		}
		if err := requireParam("data", in.Data); err != nil {
			return ToolResult{}, err
		}

		data, err := parseJSONParam("data", in.Data)
		if err != nil {
			return ToolResult{}, err
		}

		submission, err := d.api.RenderTemplate(ctx, in.APIKey, ports.TemplateRenderRequest{
			TemplateID: domain.TemplateID(strings.TrimSpace(in.TemplateID)),
			Data:       data,
		})
		if err != nil {
			return ToolResult{}, fmt.Errorf("submit template render: %w", err)
		}

		return d.settle(ctx, in.APIKey, submission, waitFor(in.WaitForCompletion))
	})
}

func (d *Dispatcher) CheckStatus(ctx context.Context, in CheckStatusInput) ToolResult {
	return d.contain(ctx, ToolCheckPDFStatus, func() (ToolResult, error) {
		if err := requireParam("apiKey", in.APIKey); err != nil {
			return ToolResult{}, err
		}
		if err := requireParam("requestId", in.RequestID); err != nil {
			return ToolResult{}, err
		}

		status, err := d.api.JobStatus(ctx, in.APIKey, domain.RequestID(strings.TrimSpace(in.RequestID)))
		if err != nil {
			return ToolResult{}, fmt.Errorf("check pdf status: %w", err)
		}

		return statusResult(status), nil
	})
}

// settle maps an accepted submission to a result: 200 is final, 202 is either
// handed back to the caller or tracked to completion.
func (d *Dispatcher) settle(ctx context.Context, credential string, submission domain.Submission, wait bool) (ToolResult, error) {
	switch submission.StatusCode {
	case http.StatusOK:
		if submission.Result == nil {
			return ToolResult{}, fmt.Errorf("%w: status 200 without a result", domain.ErrUnexpectedResponse)
		}
		return successResult(*submission.Result), nil
	case http.StatusAccepted:
		if submission.Queued == nil || submission.Queued.RequestID == "" {
			return ToolResult{}, fmt.Errorf("%w: status 202 without a request id", domain.ErrUnexpectedResponse)
		}
		if !wait {
			return queuedResult(*submission.Queued), nil
		}

		result, err := d.tracker.AwaitCompletion(ctx, credential, submission.Queued.RequestID)
		if err != nil {
			return ToolResult{}, err
		}
		return successResult(result), nil
	default:
		return ToolResult{}, fmt.Errorf("%w status %d", domain.ErrUnexpectedResponse, submission.StatusCode)
	}
}

func (d *Dispatcher) contain(ctx context.Context, tool string, run func() (ToolResult, error)) (result ToolResult) {
	started := time.Now()
	defer func() {
		if recovered := recover(); recovered != nil {
			d.logger.ErrorContext(ctx, "tool panicked", "tool", tool, "panic", recovered)
			result = failureResult(fmt.Errorf("internal error: %v", recovered))
		}
		d.logger.InfoContext(ctx, "tool call finished",
			"tool", tool,
			"duration", time.Since(started),
			"is_error", result.IsError,
		)
	}()

	result, err := run()
	if err != nil {
		return failureResult(err)
	}

	return result
}

func requireParam(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s", domain.ErrMissingParameter, name)
	}
	return nil
}

func parseJSONParam(name, raw string) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}

	var decoded any
	if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, fmt.Errorf("%w %s: %s at offset %d", domain.ErrInvalidJSONParameter, name, syntaxErr.Error(), syntaxErr.Offset)
		}
		return nil, fmt.Errorf("%w %s: %v", domain.ErrInvalidJSONParameter, name, err)
	}

	return json.RawMessage(trimmed), nil
}

func waitFor(flag *bool) bool {
	return flag == nil || *flag
}
