package status

import (
	"fmt"
	"math"
	"strings"

	"github.com/bnema/pdfmcp/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const barWidth = 20

// Job is one status line. Attempts is the number of status queries spent
// waiting for it; zero means the status was read once. Err is set when the
// job could not be queried or waited on.
type Job struct {
	Status   domain.JobStatus
	Attempts int
	Err      error
}

type RenderOptions struct {
	// MaxAttempts is the polling budget drawn next to waited jobs.
	MaxAttempts int
}

func renderView(total int, t tally, sections []string, s styles) string {
	lines := []string{
		s.title.Render("PDF Render Jobs"),
		s.header.Render(fmt.Sprintf("jobs: %d", total)),
	}

	if total == 0 {
		lines = append(lines, s.empty.Render("No render jobs to show."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	lines = append(lines, s.detail.Render(summaryLine(t)))
	lines = append(lines, sections...)
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// summaryLine lists the non-zero outcome counts in a fixed order.
func summaryLine(t tally) string {
	counts := []struct {
		n     int
		label string
	}{
		{t.done, "done"},
		{t.failed, "failed"},
		{t.rendering, "rendering"},
		{t.unknown, "unknown"},
		{t.errored, "errored"},
	}

	parts := make([]string, 0, len(counts))
	for _, c := range counts {
		if c.n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", c.n, c.label))
		}
	}
	return strings.Join(parts, ", ")
}

func renderJob(job Job, opts RenderOptions, s styles) string {
	title := lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.job.Render(string(job.Status.RequestID)),
		" ",
		statusBadge(job.Status.Status, s),
	)
	parts := []string{title}

	if job.Err != nil {
		parts = append(parts, s.warning.Render("error: "+job.Err.Error()))
	}
	if job.Attempts > 0 {
		parts = append(parts, attemptsLine(job.Attempts, opts.MaxAttempts, s))
	}

	switch job.Status.Status {
	case domain.RenderStatusSuccess:
		parts = append(parts, resultLines(job.Status.Result, s)...)
	case domain.RenderStatusFailed:
		parts = append(parts, s.detail.Render("The render failed upstream."))
	case domain.RenderStatusOngoing:
		if job.Err == nil {
			parts = append(parts, s.detail.Render("Still rendering."))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func statusBadge(status domain.RenderStatus, s styles) string {
	label := "[" + statusLabel(status) + "]"
	switch status {
	case domain.RenderStatusSuccess:
		return s.success.Render(label)
	case domain.RenderStatusFailed:
		return s.failed.Render(label)
	case domain.RenderStatusOngoing:
		return s.ongoing.Render(label)
	default:
		return s.unknown.Render(label)
	}
}

func statusLabel(status domain.RenderStatus) string {
	if status == "" {
		return "UNKNOWN"
	}
	return string(status)
}

func resultLines(result domain.RenderResult, s styles) []string {
	lines := make([]string, 0, 3)
	if result.SignedURL != "" {
		lines = append(lines, field("url", s.link.Render(result.SignedURL), s))
	} else {
		lines = append(lines, field("url", s.empty.Render("n/a"), s))
	}
	if result.Metadata.ExecutionTime != "" {
		lines = append(lines, field("execution time", s.detail.Render(result.Metadata.ExecutionTime), s))
	}
	if result.Metadata.FileSize != "" {
		lines = append(lines, field("file size", s.detail.Render(result.Metadata.FileSize), s))
	}
	return lines
}

func field(key, value string, s styles) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, s.key.Render(key+":"), " ", value)
}

func attemptsLine(attempts, maxAttempts int, s styles) string {
	if maxAttempts <= 0 {
		return field("polls", s.detail.Render(fmt.Sprintf("%d", attempts)), s)
	}

	used := 100 * float64(attempts) / float64(maxAttempts)
	meta := lipgloss.NewStyle().
		Foreground(interpolateColor(100-clampPercent(used), 0, 100)).
		Render(fmt.Sprintf("%d/%d", attempts, maxAttempts))

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.key.Render("polls:"),
		" ",
		renderProgressBar(used, barWidth, s),
		" ",
		meta,
	)
}

// renderProgressBar fills the bar in proportion to usedPercent.
func renderProgressBar(usedPercent float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	used := clampPercent(usedPercent)
	filled := int(math.Round(float64(width) * used / 100.0))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}

	fill := lipgloss.NewStyle().Foreground(interpolateColor(100-used, 0, 100))
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		fill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", width-filled)),
		s.barBracket.Render("]"),
	)
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// interpolateColor maps value onto the 240..255 greyscale ramp, brighter as
// value approaches max.
func interpolateColor(value, min, max float64) lipgloss.Color {
	if max == min {
		return lipgloss.Color("255")
	}

	normalized := (value - min) / (max - min)
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	const base, target = 240.0, 255.0
	return lipgloss.Color(fmt.Sprintf("%d", int(base+(target-base)*normalized)))
}
