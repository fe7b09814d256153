package status

import (
	"errors"
	"strings"
	"testing"

	"github.com/bnema/pdfmcp/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSuccessfulJob(t *testing.T) {
	output, err := Render([]Job{
		{
			Status: domain.JobStatus{
				RequestID: "req-1",
				Status:    domain.RenderStatusSuccess,
				Result: domain.RenderResult{
					SignedURL: "https://cdn.example/doc.pdf",
					Metadata:  domain.RenderMetadata{ExecutionTime: "1.2s", FileSize: "10KB"},
				},
			},
		},
	}, RenderOptions{MaxAttempts: 20})

	require.NoError(t, err)
	assert.Contains(t, output, "PDF Render Jobs")
	assert.Contains(t, output, "jobs: 1")
	assert.Contains(t, output, "req-1")
	assert.Contains(t, output, "[SUCCESS]")
	assert.Contains(t, output, "url: https://cdn.example/doc.pdf")
	assert.Contains(t, output, "execution time: 1.2s")
	assert.Contains(t, output, "file size: 10KB")
	assert.NotContains(t, output, "polls:")
}

func TestRenderWaitedJobShowsPollBudget(t *testing.T) {
	output, err := Render([]Job{
		{
			Status:   domain.JobStatus{RequestID: "req-2", Status: domain.RenderStatusOngoing},
			Attempts: 5,
		},
	}, RenderOptions{MaxAttempts: 20})

	require.NoError(t, err)
	assert.Contains(t, output, "[ONGOING]")
	assert.Contains(t, output, "polls: [=====---------------] 5/20")
	assert.Contains(t, output, "Still rendering.")
}

func TestRenderPollsWithoutBudget(t *testing.T) {
	output, err := Render([]Job{
		{Status: domain.JobStatus{RequestID: "req-3", Status: domain.RenderStatusSuccess}, Attempts: 3},
	}, RenderOptions{})

	require.NoError(t, err)
	assert.Contains(t, output, "polls: 3")
	assert.Contains(t, output, "url: n/a")
}

func TestRenderFailedAndErroredJobs(t *testing.T) {
	output, err := Render([]Job{
		{Status: domain.JobStatus{RequestID: "req-4", Status: domain.RenderStatusFailed}},
		{
			Status: domain.JobStatus{RequestID: "req-5", Status: domain.RenderStatusOngoing},
			Err:    errors.New("pdf render req-5 timed out after 20 attempts"),
		},
		{Status: domain.JobStatus{RequestID: "req-6"}},
	}, RenderOptions{})

	require.NoError(t, err)
	assert.Contains(t, output, "jobs: 3")
	assert.Contains(t, output, "[FAILED]")
	assert.Contains(t, output, "The render failed upstream.")
	assert.Contains(t, output, "error: pdf render req-5 timed out after 20 attempts")
	assert.NotContains(t, output, "Still rendering.")
	assert.Contains(t, output, "[UNKNOWN]")
	assert.Contains(t, output, "1 failed, 1 rendering, 1 unknown, 1 errored")
}

func TestRenderKeepsJobOrderAndTalliesOutcomes(t *testing.T) {
	output, err := Render([]Job{
		{Status: domain.JobStatus{RequestID: "req-b", Status: domain.RenderStatusSuccess}},
		{Status: domain.JobStatus{RequestID: "req-a", Status: domain.RenderStatusSuccess}},
		{Status: domain.JobStatus{RequestID: "req-c", Status: domain.RenderStatusOngoing}},
	}, RenderOptions{})

	require.NoError(t, err)
	assert.Contains(t, output, "2 done, 1 rendering")
	b, a, c := strings.Index(output, "req-b"), strings.Index(output, "req-a"), strings.Index(output, "req-c")
	assert.True(t, b < a && a < c, "jobs drawn in input order")
}

func TestSummaryLineSkipsZeroCounts(t *testing.T) {
	assert.Equal(t, "", summaryLine(tally{}))
	assert.Equal(t, "3 done, 2 errored", summaryLine(tally{done: 3, errored: 2}))
}

func TestRenderEmpty(t *testing.T) {
	output, err := Render(nil, RenderOptions{})

	require.NoError(t, err)
	assert.Contains(t, output, "jobs: 0")
	assert.Contains(t, output, "No render jobs to show.")
}

func TestRenderProgressBarClamps(t *testing.T) {
	s := newStyles()

	assert.Equal(t, "[----]", renderProgressBar(-10, 4, s))
	assert.Equal(t, "[====]", renderProgressBar(250, 4, s))
	assert.Equal(t, "[==--]", renderProgressBar(50, 4, s))
	assert.Empty(t, renderProgressBar(50, 0, s))
}

func TestInterpolateColor(t *testing.T) {
	assert.Equal(t, "240", string(interpolateColor(0, 0, 100)))
	assert.Equal(t, "255", string(interpolateColor(100, 0, 100)))
	assert.Equal(t, "255", string(interpolateColor(5, 1, 1)))
	assert.Equal(t, "240", string(interpolateColor(-5, 0, 100)))
}
