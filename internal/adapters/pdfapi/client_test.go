package pdfapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bnema/pdfmcp/internal/domain"
	"github.com/bnema/pdfmcp/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return Client{BaseURL: server.URL + "/v1", HTTPClient: server.Client()}
}

func TestRenderHTMLSendsBodyAndParsesImmediateResult(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/html-to-pdf/sync", r.URL.Path)
		assert.Equal(t, "Bearer secret-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"html":"<h1>Hi</h1>","pdfParams":{"format":"A4"},"hasCover":false}`, string(body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"signedUrl":"https://x/y.pdf","metadata":{"executionTime":"1.2s","fileSize":"10KB"}}`))
	})

	hasCover := false
	submission, err := client.RenderHTML(context.Background(), "secret-key", ports.HTMLRenderRequest{
		HTML:      "<h1>Hi</h1>",
		PDFParams: json.RawMessage(`{"format":"A4"}`),
		HasCover:  &hasCover,
	})

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, submission.StatusCode)
	require.NotNil(t, submission.Result)
	assert.Nil(t, submission.Queued)
	assert.Equal(t, "https://x/y.pdf", submission.Result.SignedURL)
	assert.Equal(t, "1.2s", submission.Result.Metadata.ExecutionTime)
	assert.Equal(t, "10KB", submission.Result.Metadata.FileSize)
}

func TestRenderTemplateParsesQueuedJob(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/pdf/sync", r.URL.Path)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"templateId":"invoice","data":{"total":12}}`, string(body))

		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"requestId":"r1","statusUrl":"https://api/pdf/status/r1","message":"queued"}`))
	})

	submission, err := client.RenderTemplate(context.Background(), "k", ports.TemplateRenderRequest{
		TemplateID: "invoice",
		Data:       json.RawMessage(`{"total":12}`),
	})

	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, submission.StatusCode)
	require.NotNil(t, submission.Queued)
	assert.Equal(t, domain.RequestID("r1"), submission.Queued.RequestID)
	assert.Equal(t, "https://api/pdf/status/r1", submission.Queued.StatusURL)
	assert.Equal(t, "queued", submission.Queued.Message)
}

func TestSubmitKeepsOtherSuccessStatusForCaller(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	submission, err := client.RenderHTML(context.Background(), "k", ports.HTMLRenderRequest{HTML: "<p/>"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, submission.StatusCode)
	assert.Nil(t, submission.Result)
	assert.Nil(t, submission.Queued)
}

func TestNonSuccessStatusReturnsAPIError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(` {"message":"invalid api key"} `))
	})

	_, err := client.ListTemplates(context.Background(), "bad")
	require.Error(t, err)

	var apiErr *domain.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, `{"message":"invalid api key"}`, apiErr.Body)
	assert.NotContains(t, err.Error(), "bad")
}

func TestListTemplatesAcceptsArrayAndWrappedShapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "array", body: `[{"id":"a"},{"id":"b"}]`, want: 2},
		{name: "templates key", body: `{"templates":[{"id":"a"}]}`, want: 1},
		{name: "data key", body: `{"data":[{"id":"a"},{"id":"b"},{"id":"c"}]}`, want: 3},
		{name: "empty body", body: ``, want: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v1/integration/templates", r.URL.Path)
				_, _ = w.Write([]byte(tc.body))
			})

			templates, err := client.ListTemplates(context.Background(), "k")
			require.NoError(t, err)
			assert.Len(t, templates, tc.want)
		})
	}
}

func TestListTemplatesRejectsUnknownObject(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":[]}`))
	})

	_, err := client.ListTemplates(context.Background(), "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode templates")
}

func TestTemplateVariablesEscapesIdentifier(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/integration/templates/inv%2F2026/variables", r.URL.EscapedPath())
		_, _ = w.Write([]byte(`["name","total"]`))
	})

	variables, err := client.TemplateVariables(context.Background(), "k", "inv/2026")
	require.NoError(t, err)
	assert.JSONEq(t, `["name","total"]`, string(variables))
}

func TestJobStatusParsesNumericMetadata(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/pdf/status/r1", r.URL.Path)
		_, _ = w.Write([]byte(`{"requestId":"r1","renderStatus":"success","signedUrl":"https://x/r1.pdf","metadata":{"executionTime":1.5,"fileSize":2048}}`))
	})

	status, err := client.JobStatus(context.Background(), "k", "r1")
	require.NoError(t, err)
	assert.Equal(t, domain.RequestID("r1"), status.RequestID)
	assert.Equal(t, domain.RenderStatusSuccess, status.Status)
	assert.Equal(t, "https://x/r1.pdf", status.Result.SignedURL)
	assert.Equal(t, "1.5", status.Result.Metadata.ExecutionTime)
	assert.Equal(t, "2048", status.Result.Metadata.FileSize)
}

func TestJobStatusFallsBackToRequestedID(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"renderStatus":"ONGOING"}`))
	})

	status, err := client.JobStatus(context.Background(), "k", "r2")
	require.NoError(t, err)
	assert.Equal(t, domain.RequestID("r2"), status.RequestID)
	assert.Equal(t, domain.RenderStatusOngoing, status.Status)
}

func TestRequestTimesOutWithoutCallerDeadline(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		_, _ = w.Write([]byte(`[]`))
	})
	client.RequestTimeout = 10 * time.Millisecond

	_, err := client.ListTemplates(context.Background(), "k")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestBuildAPIURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		base    string
		path    string
		want    string
		wantErr string
	}{
		{name: "trailing slash", base: "https://api.example/v1/", path: "pdf/sync", want: "https://api.example/v1/pdf/sync"},
		{name: "no trailing slash", base: "https://api.example/v1", path: "pdf/sync", want: "https://api.example/v1/pdf/sync"},
		{name: "leading slash path", base: "https://api.example/v1", path: "/pdf/sync", want: "https://api.example/v1/pdf/sync"},
		{name: "bad scheme", base: "ftp://api.example", path: "pdf/sync", wantErr: "http or https"},
		{name: "missing host", base: "https:///v1", path: "pdf/sync", wantErr: "host is required"},
		{name: "empty base", base: "", path: "pdf/sync", wantErr: "base url is required"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := buildAPIURL(tc.base, tc.path)
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
