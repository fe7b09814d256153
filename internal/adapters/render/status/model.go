package status

import (
	"errors"
	"io"

	"github.com/bnema/pdfmcp/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
)

var ErrUnexpectedRenderModel = errors.New("unexpected final bubbletea model type")

// jobMsg asks the model to draw jobs[index].
type jobMsg struct {
	index int
}

type listDoneMsg struct{}

// model draws one job per message and keeps a per-outcome tally for the
// header, which is only known once every job has been drawn.
type model struct {
	jobs     []Job
	opts     RenderOptions
	styles   styles
	sections []string
	tally    tally
	output   string
}

func newModel(jobs []Job, opts RenderOptions) model {
	return model{
		jobs:     jobs,
		opts:     opts,
		styles:   newStyles(),
		sections: make([]string, 0, len(jobs)),
	}
}

func (m model) Init() tea.Cmd {
	return m.next(0)
}

func (m model) next(index int) tea.Cmd {
	if index >= len(m.jobs) {
		return func() tea.Msg { return listDoneMsg{} }
	}
	return func() tea.Msg { return jobMsg{index: index} }
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case jobMsg:
		job := m.jobs[msg.index]
		m.sections = append(m.sections, m.styles.section.Render(renderJob(job, m.opts, m.styles)))
		m.tally.add(job)
		return m, m.next(msg.index + 1)
	case listDoneMsg:
		m.output = renderView(len(m.jobs), m.tally, m.sections, m.styles)
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m model) View() string {
	return m.output
}

type tally struct {
	done      int
	failed    int
	rendering int
	unknown   int
	errored   int
}

func (t *tally) add(job Job) {
	if job.Err != nil {
		t.errored++
	}
	switch job.Status.Status {
	case domain.RenderStatusSuccess:
		t.done++
	case domain.RenderStatusFailed:
		t.failed++
	case domain.RenderStatusOngoing:
		t.rendering++
	default:
		if job.Err == nil {
			t.unknown++
		}
	}
}

// Render draws the job list once and returns it as a string.
func Render(jobs []Job, opts RenderOptions) (string, error) {
	p := tea.NewProgram(
		newModel(jobs, opts),
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
	)

	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	rendered, ok := finalModel.(model)
	if !ok {
		return "", ErrUnexpectedRenderModel
	}

	return rendered.View(), nil
}
