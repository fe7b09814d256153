package application

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bnema/pdfmcp/internal/domain"
)

func successResult(result domain.RenderResult) ToolResult {
	var b strings.Builder
	b.WriteString("PDF generated successfully!\n\n")
	writeRenderResult(&b, result)

	return ToolResult{
		Text: strings.TrimRight(b.String(), "\n"),
		Data: renderResultData(result),
	}
}

func queuedResult(job domain.QueuedJob) ToolResult {
	var b strings.Builder
	b.WriteString("PDF generation queued.\n\n")
	fmt.Fprintf(&b, "Request ID: %s\n", job.RequestID)
	if job.StatusURL != "" {
		fmt.Fprintf(&b, "Status URL: %s\n", job.StatusURL)
	}
	if job.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", job.Message)
	}
	fmt.Fprintf(&b, "\nUse %s with requestId %q to check progress.", ToolCheckPDFStatus, job.RequestID)

	return ToolResult{
		Text: b.String(),
		Data: map[string]any{
			"status":    "queued",
			"requestId": string(job.RequestID),
			"statusUrl": job.StatusURL,
			"message":   job.Message,
		},
	}
}

func statusResult(status domain.JobStatus) ToolResult {
	var b strings.Builder
	fmt.Fprintf(&b, "Status: %s\n", status.Status)
	fmt.Fprintf(&b, "Request ID: %s\n\n", status.RequestID)

	switch status.Status {
	case domain.RenderStatusSuccess:
		writeRenderResult(&b, status.Result)
	case domain.RenderStatusFailed:
		b.WriteString("PDF generation failed.")
	default:
		fmt.Fprintf(&b, "The PDF is still being generated. Call %s again later.", ToolCheckPDFStatus)
	}

	data := map[string]any{
		"requestId":    string(status.RequestID),
		"renderStatus": string(status.Status),
	}
	if status.Status == domain.RenderStatusSuccess {
		for k, v := range renderResultData(status.Result) {
			data[k] = v
		}
	}

	return ToolResult{Text: strings.TrimRight(b.String(), "\n"), Data: data}
}

func templatesResult(templates []json.RawMessage, total int) (ToolResult, error) {
	if templates == nil {
		templates = []json.RawMessage{}
	}

	pretty, err := indentJSON(templates)
	if err != nil {
		return ToolResult{}, fmt.Errorf("format templates: %w", err)
	}

	header := fmt.Sprintf("Found %d templates", total)
	if len(templates) < total {
		header = fmt.Sprintf("Showing %d of %d templates", len(templates), total)
	}

	return ToolResult{
		Text: header + ":\n\n" + pretty,
		Data: map[string]any{
			"templates": templates,
			"count":     len(templates),
			"total":     total,
		},
	}, nil
}

func variablesResult(id domain.TemplateID, variables json.RawMessage) (ToolResult, error) {
	if len(bytes.TrimSpace(variables)) == 0 {
		variables = json.RawMessage("[]")
	}

	pretty, err := indentJSON(variables)
	if err != nil {
		return ToolResult{}, fmt.Errorf("format template variables: %w", err)
	}

	return ToolResult{
		Text: fmt.Sprintf("Variables for template %s:\n\n%s", id, pretty),
		Data: map[string]any{
			"templateId": string(id),
			"variables":  variables,
		},
	}, nil
}

func failureResult(err error) ToolResult {
	return ToolResult{
		Text:    "Error: " + err.Error(),
		IsError: true,
	}
}

func writeRenderResult(b *strings.Builder, result domain.RenderResult) {
	fmt.Fprintf(b, "Download URL: %s\n", result.SignedURL)
	if result.Metadata.ExecutionTime != "" {
		fmt.Fprintf(b, "Execution time: %s\n", result.Metadata.ExecutionTime)
	}
	if result.Metadata.FileSize != "" {
		fmt.Fprintf(b, "File size: %s\n", result.Metadata.FileSize)
	}
}

func renderResultData(result domain.RenderResult) map[string]any {
	data := map[string]any{"signedUrl": result.SignedURL}
	if !result.Metadata.IsZero() {
		data["metadata"] = map[string]string{
			"executionTime": result.Metadata.ExecutionTime,
			"fileSize":      result.Metadata.FileSize,
		}
	}
	return data
}

func indentJSON(value any) (string, error) {
	encoded, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}
