package ports

import (
	"context"
	"encoding/json"

	"github.com/bnema/pdfmcp/internal/domain"
)

type HTMLRenderRequest struct {
	HTML           string
	PDFParams      json.RawMessage
	ConvertToImage *bool
	Metadata       json.RawMessage
	HasCover       *bool
}

type TemplateRenderRequest struct {
	TemplateID domain.TemplateID
	Data       json.RawMessage
}

// PDFAPI is the upstream rendering service. The credential is passed on every
// call and never retained by implementations.
type PDFAPI interface {
	ListTemplates(ctx context.Context, credential string) ([]json.RawMessage, error)
	TemplateVariables(ctx context.Context, credential string, id domain.TemplateID) (json.RawMessage, error)
	RenderHTML(ctx context.Context, credential string, req HTMLRenderRequest) (domain.Submission, error)
	RenderTemplate(ctx context.Context, credential string, req TemplateRenderRequest) (domain.Submission, error)
	JobStatus(ctx context.Context, credential string, id domain.RequestID) (domain.JobStatus, error)
}
