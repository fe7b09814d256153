package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bnema/pdfmcp/internal/domain"
	"github.com/bnema/pdfmcp/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type recordingClock struct {
	mu     sync.Mutex
	sleeps []time.Duration
}

func (c *recordingClock) Now() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func (c *recordingClock) Sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
	return ctx.Err()
}

func (c *recordingClock) total() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	var sum time.Duration
	for _, d := range c.sleeps {
		sum += d
	}
	return sum
}

// scriptStatuses makes JobStatus answer with the given statuses in order and
// returns a counter of how many queries were made.
func scriptStatuses(t *testing.T, api *mocks.MockPDFAPI, statuses ...domain.RenderStatus) *int {
	t.Helper()

	queries := 0
	api.EXPECT().JobStatus(mock.Anything, "key-1", domain.RequestID("r1")).
		RunAndReturn(func(_ context.Context, _ string, id domain.RequestID) (domain.JobStatus, error) {
			require.Less(t, queries, len(statuses), "tracker issued more status queries than scripted")
			status := statuses[queries]
			queries++

			job := domain.JobStatus{RequestID: id, Status: status}
			if status == domain.RenderStatusSuccess {
				job.Result = domain.RenderResult{
					SignedURL: "https://cdn.example/r1.pdf",
					Metadata:  domain.RenderMetadata{ExecutionTime: "4.1s", FileSize: "88KB"},
				}
			}
			return job, nil
		})

	return &queries
}

func repeatStatus(status domain.RenderStatus, n int) []domain.RenderStatus {
	out := make([]domain.RenderStatus, n)
	for i := range out {
		out[i] = status
	}
	return out
}

func expectedWait(attempts int) time.Duration {
	var sum time.Duration
	delay := 2000 * time.Millisecond
	for i := 0; i < attempts; i++ {
		sum += delay
		delay = delay * 3 / 2
		if delay > 10000*time.Millisecond {
			delay = 10000 * time.Millisecond
		}
	}
	return sum
}

func TestTrackerReturnsSuccessAfterPendingPolls(t *testing.T) {
	t.Parallel()

	for k := 0; k < DefaultMaxAttempts; k++ {
		api := mocks.NewMockPDFAPI(t)
		clock := &recordingClock{}
		queries := scriptStatuses(t, api, append(repeatStatus(domain.RenderStatusOngoing, k), domain.RenderStatusSuccess)...)

		tracker := NewTracker(api, clock, DefaultBackoff(), nil)
		result, err := tracker.AwaitCompletion(context.Background(), "key-1", "r1")

		require.NoError(t, err, "k=%d", k)
		assert.Equal(t, "https://cdn.example/r1.pdf", result.SignedURL)
		assert.Equal(t, k+1, *queries, "k=%d", k)
		assert.Equal(t, expectedWait(k+1), clock.total(), "k=%d", k)
	}
}

func TestTrackerTimesOutAfterBudgetWithoutExtraQuery(t *testing.T) {
	t.Parallel()

	api := mocks.NewMockPDFAPI(t)
	clock := &recordingClock{}
	queries := scriptStatuses(t, api, repeatStatus(domain.RenderStatusOngoing, 20)...)

	tracker := NewTracker(api, clock, DefaultBackoff(), nil)
	_, err := tracker.AwaitCompletion(context.Background(), "key-1", "r1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrRenderTimeout))
	assert.ErrorContains(t, err, "after 20 attempts")
	assert.ErrorContains(t, err, "r1")
	assert.Equal(t, 20, *queries)
	assert.Len(t, clock.sleeps, 20)
}

func TestTrackerFailsImmediatelyOnFailedStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		statuses []domain.RenderStatus
	}{
		{name: "first poll", statuses: []domain.RenderStatus{domain.RenderStatusFailed}},
		{name: "after pending", statuses: []domain.RenderStatus{domain.RenderStatusOngoing, domain.RenderStatusOngoing, domain.RenderStatusFailed}},
		{name: "last attempt", statuses: append(repeatStatus(domain.RenderStatusOngoing, 19), domain.RenderStatusFailed)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			api := mocks.NewMockPDFAPI(t)
			clock := &recordingClock{}
			queries := scriptStatuses(t, api, tc.statuses...)

			tracker := NewTracker(api, clock, DefaultBackoff(), nil)
			_, err := tracker.AwaitCompletion(context.Background(), "key-1", "r1")

			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrRenderFailed))
			assert.ErrorContains(t, err, "r1")
			assert.Equal(t, len(tc.statuses), *queries)
		})
	}
}

func TestTrackerTreatsUnknownStatusAsPending(t *testing.T) {
	t.Parallel()

	api := mocks.NewMockPDFAPI(t)
	clock := &recordingClock{}
	queries := scriptStatuses(t, api, domain.RenderStatus("QUEUED"), domain.RenderStatusSuccess)

	tracker := NewTracker(api, clock, DefaultBackoff(), nil)
	_, err := tracker.AwaitCompletion(context.Background(), "key-1", "r1")

	require.NoError(t, err)
	assert.Equal(t, 2, *queries)
}

func TestTrackerAbortsOnStatusQueryError(t *testing.T) {
	t.Parallel()

	api := mocks.NewMockPDFAPI(t)
	clock := &recordingClock{}
	api.EXPECT().JobStatus(mock.Anything, "key-1", domain.RequestID("r1")).
		Return(domain.JobStatus{}, &domain.APIError{StatusCode: 500, Body: "boom"}).Once()

	tracker := NewTracker(api, clock, DefaultBackoff(), nil)
	_, err := tracker.AwaitCompletion(context.Background(), "key-1", "r1")

	require.Error(t, err)
	var apiErr *domain.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 500, apiErr.StatusCode)
	assert.Len(t, clock.sleeps, 1)
}

func TestTrackerStopsWhenContextCancelled(t *testing.T) {
	t.Parallel()

	api := mocks.NewMockPDFAPI(t)
	clock := &recordingClock{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tracker := NewTracker(api, clock, DefaultBackoff(), nil)
	_, err := tracker.AwaitCompletion(ctx, "key-1", "r1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	api.AssertNotCalled(t, "JobStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestTrackerStopsWhenSleepIsInterruptedMidBudget(t *testing.T) {
	t.Parallel()

	api := mocks.NewMockPDFAPI(t)
	clock := mocks.NewMockClock(t)

	clock.EXPECT().Sleep(mock.Anything, 2*time.Second).Return(nil).Once()
	clock.EXPECT().Sleep(mock.Anything, 3*time.Second).Return(context.DeadlineExceeded).Once()
	api.EXPECT().JobStatus(mock.Anything, "key-1", domain.RequestID("r1")).
		Return(domain.JobStatus{RequestID: "r1", Status: domain.RenderStatusOngoing}, nil).Once()

	tracker := NewTracker(api, clock, DefaultBackoff(), nil)
	_, err := tracker.AwaitCompletion(context.Background(), "key-1", "r1")

	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "wait for request r1")
}

func TestTrackerReportsProgressForPendingPolls(t *testing.T) {
	t.Parallel()

	api := mocks.NewMockPDFAPI(t)
	clock := &recordingClock{}
	scriptStatuses(t, api, domain.RenderStatusOngoing, domain.RenderStatusOngoing, domain.RenderStatusSuccess)

	var events []PollEvent
	ctx := WithProgress(context.Background(), func(event PollEvent) {
		events = append(events, event)
	})

	tracker := NewTracker(api, clock, DefaultBackoff(), nil)
	_, err := tracker.AwaitCompletion(ctx, "key-1", "r1")
	require.NoError(t, err)

	require.Len(t, events, 2)
	assert.Equal(t, 1, events[0].Attempt)
	assert.Equal(t, 20, events[0].MaxAttempts)
	assert.Equal(t, 3*time.Second, events[0].NextDelay)
	assert.Equal(t, 2, events[1].Attempt)
	assert.Equal(t, 4500*time.Millisecond, events[1].NextDelay)
}

func TestTrackerJitterStaysWithinBounds(t *testing.T) {
	t.Parallel()

	api := mocks.NewMockPDFAPI(t)
	clock := &recordingClock{}
	scriptStatuses(t, api, domain.RenderStatusOngoing, domain.RenderStatusSuccess)

	backoff := DefaultBackoff()
	backoff.Jitter = 0.2
	tracker := NewTracker(api, clock, backoff, nil)
	tracker.random = func() float64 { return 1 }

	_, err := tracker.AwaitCompletion(context.Background(), "key-1", "r1")
	require.NoError(t, err)

	require.Len(t, clock.sleeps, 2)
	assert.InDelta(t, float64(2400*time.Millisecond), float64(clock.sleeps[0]), float64(time.Millisecond))
	assert.InDelta(t, float64(3600*time.Millisecond), float64(clock.sleeps[1]), float64(time.Millisecond))
}

func TestBackoffSchedule(t *testing.T) {
	t.Parallel()

	schedule := DefaultBackoff().Schedule()
	require.Len(t, schedule, 20)
	assert.Equal(t, []time.Duration{
		2 * time.Second,
		3 * time.Second,
		4500 * time.Millisecond,
		6750 * time.Millisecond,
		10 * time.Second,
	}, schedule[:5])
	for _, wait := range schedule[4:] {
		assert.Equal(t, 10*time.Second, wait)
	}
}

func TestBackoffWithDefaultsFillsZeroValues(t *testing.T) {
	t.Parallel()

	b := Backoff{MaxAttempts: 3, Jitter: 2}.withDefaults()
	assert.Equal(t, 3, b.MaxAttempts)
	assert.Equal(t, DefaultInitialDelay, b.InitialDelay)
	assert.Equal(t, DefaultMaxDelay, b.MaxDelay)
	assert.Equal(t, DefaultFactor, b.Factor)
	assert.Zero(t, b.Jitter)
}
