package pass

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/bnema/pdfmcp/internal/ports"
)

var ErrUnavailable = errors.New("pass command unavailable")

type runFunc func(ctx context.Context, args ...string) (stdout string, stderr string, err error)

// Source reads API keys from the pass password store. It never writes.
type Source struct {
	run runFunc
}

var _ ports.CredentialSource = (*Source)(nil)

func NewSource() *Source {
	return &Source{run: runPassCommand}
}

func (s *Source) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(key) == "" {
		return "", errors.New("credential key is empty")
	}

	stdout, stderr, err := s.run(ctx, "show", key)
	if err != nil {
		return "", formatError(key, err, stderr)
	}

	// pass show prints the whole entry; the secret is the first line.
	first, _, _ := strings.Cut(stdout, "\n")
	return strings.TrimSuffix(first, "\r"), nil
}

func runPassCommand(ctx context.Context, args ...string) (string, string, error) {
	path, err := exec.LookPath("pass")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", "", ErrUnavailable
		}
		return "", "", fmt.Errorf("locate pass command: %w", err)
	}

	cmd := exec.CommandContext(ctx, path, args...)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	return stdout.String(), strings.TrimSpace(stderr.String()), err
}

func formatError(key string, err error, stderr string) error {
	if stderr == "" {
		return fmt.Errorf("pass show %q: %w", key, err)
	}

	return fmt.Errorf("pass show %q: %w: %s", key, err, stderr)
}
