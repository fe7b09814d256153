package pdfapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/bnema/pdfmcp/internal/domain"
)

type htmlRenderBody struct {
	HTML           string          `json:"html"`
	PDFParams      json.RawMessage `json:"pdfParams,omitempty"`
	ConvertToImage *bool           `json:"convertToImage,omitempty"`
	Metadata       json.RawMessage `json:"metadata,omitempty"`
	HasCover       *bool           `json:"hasCover,omitempty"`
}

type templateRenderBody struct {
	TemplateID string          `json:"templateId"`
	Data       json.RawMessage `json:"data"`
}

type renderResponse struct {
	SignedURL string         `json:"signedUrl"`
	Metadata  renderMetadata `json:"metadata"`
}

type queuedResponse struct {
	RequestID string `json:"requestId"`
	StatusURL string `json:"statusUrl"`
	Message   string `json:"message"`
}

type statusResponse struct {
	RequestID    string         `json:"requestId"`
	RenderStatus string         `json:"renderStatus"`
	SignedURL    string         `json:"signedUrl"`
	Metadata     renderMetadata `json:"metadata"`
}

type renderMetadata struct {
	ExecutionTime flexString `json:"executionTime"`
	FileSize      flexString `json:"fileSize"`
}

func (m renderMetadata) toDomain() domain.RenderMetadata {
	return domain.RenderMetadata{
		ExecutionTime: string(m.ExecutionTime),
		FileSize:      string(m.FileSize),
	}
}

// flexString keeps a JSON string or number as its literal text.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*f = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// decodeTemplateList accepts a bare array or an object wrapping it under
// "templates" or "data".
func decodeTemplateList(body []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return []json.RawMessage{}, nil
	}

	if strings.HasPrefix(string(trimmed), "[") {
		var list []json.RawMessage
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, err
		}
		return list, nil
	}

	var wrapped struct {
		Templates []json.RawMessage `json:"templates"`
		Data      []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, err
	}
	switch {
	case wrapped.Templates != nil:
		return wrapped.Templates, nil
	case wrapped.Data != nil:
		return wrapped.Data, nil
	default:
		return nil, errors.New("no template list in response")
	}
}
