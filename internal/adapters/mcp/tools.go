package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/bnema/pdfmcp/internal/application"
)

type listTemplatesArgs struct {
	APIKey string `json:"apiKey" jsonschema:"API key for the PDF generation service"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Maximum number of templates to return"`
}

type templateVariablesArgs struct {
	APIKey     string `json:"apiKey" jsonschema:"API key for the PDF generation service"`
	TemplateID string `json:"templateId" jsonschema:"Identifier of the template"`
}

type htmlToPDFArgs struct {
	APIKey            string `json:"apiKey" jsonschema:"API key for the PDF generation service"`
	HTML              string `json:"html" jsonschema:"HTML markup to render"`
	PDFParams         string `json:"pdfParams,omitempty" jsonschema:"JSON string with page options such as format, margins or orientation"`
	ConvertToImage    *bool  `json:"convertToImage,omitempty" jsonschema:"Render to an image instead of a PDF"`
	Metadata          string `json:"metadata,omitempty" jsonschema:"JSON string with document metadata such as title or author"`
	HasCover          *bool  `json:"hasCover,omitempty" jsonschema:"Whether the first page is a cover page"`
	WaitForCompletion *bool  `json:"waitForCompletion,omitempty" jsonschema:"Wait for queued jobs to finish (default true)"`
}

type generatePDFArgs struct {
	APIKey            string `json:"apiKey" jsonschema:"API key for the PDF generation service"`
	TemplateID        string `json:"templateId" jsonschema:"Identifier of the template to render"`
	Data              string `json:"data" jsonschema:"JSON string with the template variable values"`
	WaitForCompletion *bool  `json:"waitForCompletion,omitempty" jsonschema:"Wait for queued jobs to finish (default true)"`
}

type checkStatusArgs struct {
	APIKey    string `json:"apiKey" jsonschema:"API key for the PDF generation service"`
	RequestID string `json:"requestId" jsonschema:"Request ID returned by a queued render"`
}

// Tool is one entry of the catalog advertised by tools/list.
type Tool struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	InputSchema *jsonschema.Schema `json:"inputSchema"`

	resolved *jsonschema.Resolved
	run      func(ctx context.Context, args json.RawMessage) application.ToolResult
}

// Call validates args against the input schema and runs the tool. Invalid
// arguments come back as a flagged result.
func (t Tool) Call(ctx context.Context, args json.RawMessage) application.ToolResult {
	if len(bytes.TrimSpace(args)) == 0 || bytes.Equal(bytes.TrimSpace(args), []byte("null")) {
		args = json.RawMessage("{}")
	}

	var instance map[string]any
	if err := json.Unmarshal(args, &instance); err != nil {
		return invalidArguments(t.Name, err)
	}
	if err := t.resolved.Validate(instance); err != nil {
		return invalidArguments(t.Name, err)
	}

	return t.run(ctx, args)
}

func invalidArguments(tool string, err error) application.ToolResult {
	return application.ToolResult{
		Text:    fmt.Sprintf("Error: invalid arguments for %s: %v", tool, err),
		IsError: true,
	}
}

type Toolset struct {
	tools map[string]Tool
}

func NewToolset(dispatcher *application.Dispatcher) (*Toolset, error) {
	builders := []func() (Tool, error){
		func() (Tool, error) {
			return newTool(application.ToolListTemplates,
				"List the PDF templates available to the account.",
				func(ctx context.Context, in listTemplatesArgs) application.ToolResult {
					return dispatcher.ListTemplates(ctx, application.ListTemplatesInput{APIKey: in.APIKey, Limit: in.Limit})
				})
		},
		func() (Tool, error) {
			return newTool(application.ToolGetTemplateVariables,
				"Get the variables a template expects.",
				func(ctx context.Context, in templateVariablesArgs) application.ToolResult {
					return dispatcher.TemplateVariables(ctx, application.TemplateVariablesInput{APIKey: in.APIKey, TemplateID: in.TemplateID})
				})
		},
		func() (Tool, error) {
			return newTool(application.ToolHTMLToPDF,
				"Render HTML markup to a PDF (or image) and return a download URL.",
				func(ctx context.Context, in htmlToPDFArgs) application.ToolResult {
					return dispatcher.HTMLToPDF(ctx, application.HTMLToPDFInput{
						APIKey:            in.APIKey,
						HTML:              in.HTML,
						PDFParams:         in.PDFParams,
						ConvertToImage:    in.ConvertToImage,
						Metadata:          in.Metadata,
						HasCover:          in.HasCover,
						WaitForCompletion: in.WaitForCompletion,
					})
				})
		},
		func() (Tool, error) {
			return newTool(application.ToolGeneratePDF,
				"Render a template with data to a PDF and return a download URL.",
				func(ctx context.Context, in generatePDFArgs) application.ToolResult {
					return dispatcher.GeneratePDF(ctx, application.GeneratePDFInput{
						APIKey:            in.APIKey,
						TemplateID:        in.TemplateID,
						Data:              in.Data,
						WaitForCompletion: in.WaitForCompletion,
					})
				})
		},
		func() (Tool, error) {
			return newTool(application.ToolCheckPDFStatus,
				"Check the status of a queued PDF render once.",
				func(ctx context.Context, in checkStatusArgs) application.ToolResult {
					return dispatcher.CheckStatus(ctx, application.CheckStatusInput{APIKey: in.APIKey, RequestID: in.RequestID})
				})
		},
	}

	set := &Toolset{tools: make(map[string]Tool, len(builders))}
	for _, build := range builders {
		tool, err := build()
		if err != nil {
			return nil, err
		}
		set.tools[tool.Name] = tool
	}

	return set, nil
}

func newTool[T any](name, description string, run func(context.Context, T) application.ToolResult) (Tool, error) {
	schema, err := jsonschema.For[T](nil)
	if err != nil {
		return Tool{}, fmt.Errorf("tool %s: infer input schema: %w", name, err)
	}
	// Unknown argument keys are dropped, not rejected.
	schema.AdditionalProperties = nil

	resolved, err := schema.Resolve(nil)
	if err != nil {
		return Tool{}, fmt.Errorf("tool %s: resolve input schema: %w", name, err)
	}

	return Tool{
		Name:        name,
		Description: description,
		InputSchema: schema,
		resolved:    resolved,
		run: func(ctx context.Context, args json.RawMessage) application.ToolResult {
			var in T
			if err := json.Unmarshal(args, &in); err != nil {
				return invalidArguments(name, err)
			}
			return run(ctx, in)
		},
	}, nil
}

func (s *Toolset) Lookup(name string) (Tool, bool) {
	tool, ok := s.tools[name]
	return tool, ok
}

// List returns the catalog sorted by name.
func (s *Toolset) List() []Tool {
	out := make([]Tool, 0, len(s.tools))
	for _, tool := range s.tools {
		out = append(out, tool)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func toCallResult(result application.ToolResult) toolCallResult {
	out := toolCallResult{
		Content: []contentBlock{{Type: "text", Text: result.Text}},
		IsError: result.IsError,
	}
	if !result.IsError && result.Data != nil {
		out.StructuredContent = result.Data
	}
	return out
}
