package pass

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceGetUsesPassShowAndKeepsFirstLine(t *testing.T) {
	t.Parallel()

	source := &Source{
		run: func(ctx context.Context, args ...string) (string, string, error) {
			assert.Equal(t, []string{"show", "pdfmcp/default"}, args)
			return "pk_live_123\nlogin: ops@example.com\n", "", nil
		},
	}

	value, err := source.Get(context.Background(), "pdfmcp/default")
	require.NoError(t, err)
	assert.Equal(t, "pk_live_123", value)
}

func TestSourceGetTrimsCarriageReturn(t *testing.T) {
	t.Parallel()

	source := &Source{
		run: func(ctx context.Context, args ...string) (string, string, error) {
			return "pk_live_123\r\n", "", nil
		},
	}

	value, err := source.Get(context.Background(), "pdfmcp/default")
	require.NoError(t, err)
	assert.Equal(t, "pk_live_123", value)
}

func TestSourceGetReturnsClearError(t *testing.T) {
	t.Parallel()

	source := &Source{
		run: func(ctx context.Context, args ...string) (string, string, error) {
			return "", "entry not found", errors.New("exit status 1")
		},
	}

	_, err := source.Get(context.Background(), "pdfmcp/default")
	require.Error(t, err)
	assert.ErrorContains(t, err, "pass show")
	assert.ErrorContains(t, err, "pdfmcp/default")
	assert.ErrorContains(t, err, "entry not found")
}

func TestSourceGetRejectsEmptyKeyAndCancelledContext(t *testing.T) {
	t.Parallel()

	source := &Source{
		run: func(ctx context.Context, args ...string) (string, string, error) {
			t.Fatal("pass must not run")
			return "", "", nil
		},
	}

	_, err := source.Get(context.Background(), "  ")
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = source.Get(ctx, "pdfmcp/default")
	assert.ErrorIs(t, err, context.Canceled)
}
