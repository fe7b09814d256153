package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/bnema/pdfmcp/internal/application"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type waitDoneMsg struct {
	err error
}

type waitProgressMsg application.PollEvent

type waitSpinnerModel struct {
	spinner spinner.Model
	label   string
	detail  string
	work    tea.Cmd
	err     error
	done    bool
}

func newWaitSpinnerModel(label string, work tea.Cmd) waitSpinnerModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	return waitSpinnerModel{
		spinner: s,
		label:   label,
		work:    work,
	}
}

func (m waitSpinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.work)
}

func (m waitSpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case waitProgressMsg:
		m.detail = fmt.Sprintf("%s is %s, attempt %d/%d, next check in %s",
			msg.RequestID, msg.Status, msg.Attempt, msg.MaxAttempts, msg.NextDelay)
		return m, nil
	case waitDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m waitSpinnerModel) View() string {
	if m.done {
		return ""
	}
	if m.detail != "" {
		return fmt.Sprintf("%s %s (%s)", m.spinner.View(), m.label, m.detail)
	}
	return fmt.Sprintf("%s %s", m.spinner.View(), m.label)
}

// runWaitSpinner runs work while a spinner on output reports the poll events
// work receives through its context.
func runWaitSpinner(ctx context.Context, output io.Writer, label string, work func(context.Context) error) error {
	var p *tea.Program
	workCmd := func() tea.Msg {
		progressCtx := application.WithProgress(ctx, func(event application.PollEvent) {
			p.Send(waitProgressMsg(event))
		})
		return waitDoneMsg{err: work(progressCtx)}
	}

	p = tea.NewProgram(
		newWaitSpinnerModel(label, workCmd),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	result, ok := finalModel.(waitSpinnerModel)
	if !ok {
		return fmt.Errorf("unexpected final spinner model type %T", finalModel)
	}

	return result.err
}
