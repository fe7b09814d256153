package application

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/bnema/pdfmcp/internal/domain"
	"github.com/bnema/pdfmcp/internal/ports"
)

const (
	DefaultMaxAttempts  = 20
	DefaultInitialDelay = 2 * time.Second
	DefaultMaxDelay     = 10 * time.Second
	DefaultFactor       = 1.5
)

// Backoff is the poll schedule for queued render jobs. Jitter is a fraction in
// [0, 1) applied symmetrically to each wait; zero keeps the schedule exact.
type Backoff struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Factor       float64
	Jitter       float64
}

func DefaultBackoff() Backoff {
	return Backoff{
		MaxAttempts:  DefaultMaxAttempts,
		InitialDelay: DefaultInitialDelay,
		MaxDelay:     DefaultMaxDelay,
		Factor:       DefaultFactor,
	}
}

func (b Backoff) withDefaults() Backoff {
	if b.MaxAttempts <= 0 {
		b.MaxAttempts = DefaultMaxAttempts
	}
	if b.InitialDelay <= 0 {
		b.InitialDelay = DefaultInitialDelay
	}
	if b.MaxDelay <= 0 {
		b.MaxDelay = DefaultMaxDelay
	}
	if b.Factor < 1 {
		b.Factor = DefaultFactor
	}
	if b.Jitter < 0 || b.Jitter >= 1 {
		b.Jitter = 0
	}

	return b
}

// Next returns the wait that follows delay: delay*Factor, capped at MaxDelay.
func (b Backoff) Next(delay time.Duration) time.Duration {
	next := time.Duration(float64(delay) * b.Factor)
	if next > b.MaxDelay {
		return b.MaxDelay
	}
	return next
}

// Schedule lists the un-jittered wait before each attempt.
func (b Backoff) Schedule() []time.Duration {
	b = b.withDefaults()

	waits := make([]time.Duration, 0, b.MaxAttempts)
	delay := b.InitialDelay
	for range b.MaxAttempts {
		waits = append(waits, delay)
		delay = b.Next(delay)
	}

	return waits
}

type PollEvent struct {
	RequestID   domain.RequestID
	Attempt     int
	MaxAttempts int
	Status      domain.RenderStatus
	NextDelay   time.Duration
}

type ProgressFunc func(PollEvent)

type progressKey struct{}

// WithProgress attaches fn to ctx; trackers running under ctx report every
// non-terminal poll to it.
func WithProgress(ctx context.Context, fn ProgressFunc) context.Context {
	if fn == nil {
		return ctx
	}
	return context.WithValue(ctx, progressKey{}, fn)
}

// ProgressFrom returns the callback attached by WithProgress, or nil.
func ProgressFrom(ctx context.Context) ProgressFunc {
	fn, _ := ctx.Value(progressKey{}).(ProgressFunc)
	return fn
}

type Tracker struct {
	api     ports.PDFAPI
	clock   ports.Clock
	backoff Backoff
	logger  *slog.Logger
	random  func() float64
}

func NewTracker(api ports.PDFAPI, clock ports.Clock, backoff Backoff, logger *slog.Logger) *Tracker {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Tracker{
		api:     api,
		clock:   clock,
		backoff: backoff.withDefaults(),
		logger:  logger,
		random:  rand.Float64,
	}
}

func (t *Tracker) Backoff() Backoff {
	return t.backoff
}

// AwaitCompletion waits then polls the job status until it succeeds, fails, or
// the attempt budget runs out. It returns the first SUCCESS result.
func (t *Tracker) AwaitCompletion(ctx context.Context, credential string, id domain.RequestID) (domain.RenderResult, error) {
	b := t.backoff
	progress := ProgressFrom(ctx)

	delay := b.InitialDelay
	for attempt := 1; attempt <= b.MaxAttempts; attempt++ {
		if err := t.clock.Sleep(ctx, t.jittered(delay)); err != nil {
			return domain.RenderResult{}, fmt.Errorf("wait for request %s: %w", id, err)
		}

		status, err := t.api.JobStatus(ctx, credential, id)
		if err != nil {
			return domain.RenderResult{}, fmt.Errorf("check status of request %s: %w", id, err)
		}

		switch status.Status {
		case domain.RenderStatusSuccess:
			t.logger.DebugContext(ctx, "render job completed", "request_id", id, "attempt", attempt)
			return status.Result, nil
		case domain.RenderStatusFailed:
			t.logger.DebugContext(ctx, "render job failed", "request_id", id, "attempt", attempt)
			return domain.RenderResult{}, fmt.Errorf("%w for request %s", domain.ErrRenderFailed, id)
		}

		if !status.Status.Known() {
			t.logger.WarnContext(ctx, "unknown render status, still waiting", "request_id", id, "status", status.Status)
		}

		delay = b.Next(delay)
		t.logger.DebugContext(ctx, "render job pending",
			"request_id", id,
			"attempt", attempt,
			"max_attempts", b.MaxAttempts,
			"status", status.Status,
			"next_delay", delay,
		)
		if progress != nil {
			progress(PollEvent{
				RequestID:   id,
				Attempt:     attempt,
				MaxAttempts: b.MaxAttempts,
				Status:      status.Status,
				NextDelay:   delay,
			})
		}
	}

	return domain.RenderResult{}, fmt.Errorf("%w after %d attempts for request %s", domain.ErrRenderTimeout, b.MaxAttempts, id)
}

func (t *Tracker) jittered(delay time.Duration) time.Duration {
	if t.backoff.Jitter == 0 {
		return delay
	}

	spread := t.backoff.Jitter * (2*t.random() - 1)
	return time.Duration(float64(delay) * (1 + spread))
}
