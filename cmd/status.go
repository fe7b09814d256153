package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	statusadapter "github.com/bnema/pdfmcp/internal/adapters/render/status"
	"github.com/bnema/pdfmcp/internal/application"
	"github.com/bnema/pdfmcp/internal/domain"
	"github.com/spf13/cobra"
)

func newStatusCmd(c *cli) *cobra.Command {
	var asJSON bool
	var wait bool

	cmd := &cobra.Command{
		Use:   "status requestId [requestId...]",
		Short: "Check the status of queued PDF renders",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, c, args, wait, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")
	cmd.Flags().BoolVar(&wait, "wait", false, "Poll until each render finishes")

	return cmd
}

func runStatus(cmd *cobra.Command, c *cli, args []string, wait, asJSON bool) error {
	ids, err := requestIDs(args)
	if err != nil {
		return err
	}

	app, err := c.load(cmd)
	if err != nil {
		return err
	}
	apiKey, err := c.resolveAPIKey(cmd.Context(), app)
	if err != nil {
		return err
	}

	jobs := make([]statusadapter.Job, len(ids))
	collect := func(ctx context.Context) error {
		for i, id := range ids {
			if wait {
				jobs[i] = awaitJob(ctx, app, apiKey, id)
			} else {
				jobs[i] = checkJob(ctx, app, apiKey, id)
			}
		}
		return nil
	}

	if wait && !asJSON {
		label := fmt.Sprintf("Waiting for %d render job(s)...", len(ids))
		if err := runWaitSpinner(cmd.Context(), cmd.ErrOrStderr(), label, collect); err != nil {
			return err
		}
	} else if err := collect(cmd.Context()); err != nil {
		return err
	}

	if err := writeJobsOutput(cmd, app, jobs, asJSON); err != nil {
		return err
	}

	return jobsError(jobs)
}

func requestIDs(args []string) ([]domain.RequestID, error) {
	ids := make([]domain.RequestID, 0, len(args))
	for _, arg := range args {
		id := strings.TrimSpace(arg)
		if id == "" {
			return nil, fmt.Errorf("%w: requestId", domain.ErrMissingParameter)
		}
		ids = append(ids, domain.RequestID(id))
	}
	return ids, nil
}

func checkJob(ctx context.Context, app *app, apiKey string, id domain.RequestID) statusadapter.Job {
	status, err := app.api.JobStatus(ctx, apiKey, id)
	if err != nil {
		return statusadapter.Job{Status: domain.JobStatus{RequestID: id}, Err: err}
	}
	return statusadapter.Job{Status: status}
}

func awaitJob(ctx context.Context, app *app, apiKey string, id domain.RequestID) statusadapter.Job {
	attempts := 0
	forward := application.ProgressFrom(ctx)
	counted := application.WithProgress(ctx, func(event application.PollEvent) {
		attempts = event.Attempt
		if forward != nil {
			forward(event)
		}
	})

	result, err := app.tracker.AwaitCompletion(counted, apiKey, id)
	job := statusadapter.Job{Status: domain.JobStatus{RequestID: id}, Attempts: attempts + 1}
	switch {
	case err == nil:
		job.Status.Status = domain.RenderStatusSuccess
		job.Status.Result = result
	case errors.Is(err, domain.ErrRenderFailed):
		job.Status.Status = domain.RenderStatusFailed
		job.Err = err
	case errors.Is(err, domain.ErrRenderTimeout):
		job.Status.Status = domain.RenderStatusOngoing
		job.Attempts = attempts
		job.Err = err
	default:
		job.Err = err
	}
	return job
}

type jobOutput struct {
	RequestID     string `json:"requestId"`
	Status        string `json:"status"`
	SignedURL     string `json:"signedUrl,omitempty"`
	ExecutionTime string `json:"executionTime,omitempty"`
	FileSize      string `json:"fileSize,omitempty"`
	Attempts      int    `json:"attempts,omitempty"`
	Error         string `json:"error,omitempty"`
}

func writeJobsOutput(cmd *cobra.Command, app *app, jobs []statusadapter.Job, asJSON bool) error {
	if asJSON {
		out := make([]jobOutput, 0, len(jobs))
		for _, job := range jobs {
			entry := jobOutput{
				RequestID:     string(job.Status.RequestID),
				Status:        string(job.Status.Status),
				SignedURL:     job.Status.Result.SignedURL,
				ExecutionTime: job.Status.Result.Metadata.ExecutionTime,
				FileSize:      job.Status.Result.Metadata.FileSize,
				Attempts:      job.Attempts,
			}
			if job.Err != nil {
				entry.Error = job.Err.Error()
			}
			out = append(out, entry)
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	rendered, err := app.statusRenderer(jobs, statusadapter.RenderOptions{
		MaxAttempts: app.tracker.Backoff().MaxAttempts,
	})
	if err != nil {
		return fmt.Errorf("render status: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}

func jobsError(jobs []statusadapter.Job) error {
	failed := 0
	for _, job := range jobs {
		if job.Err != nil {
			failed++
		}
	}
	if failed == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d status checks failed", failed, len(jobs))
}
