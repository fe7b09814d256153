package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bnema/pdfmcp/internal/ports"
)

// Source reads API keys stored one per file under root, e.g.
// ~/.config/pdfmcp/secrets/<key>. Files readable by group or others are
// refused.
type Source struct {
	root string
}

var _ ports.CredentialSource = (*Source)(nil)

func NewSource(root string) *Source {
	return &Source{root: filepath.Clean(root)}
}

func (s *Source) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path, err := s.pathForKey(key)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("credential file %q not found: %w", key, err)
		}
		return "", fmt.Errorf("stat credential file %q: %w", key, err)
	}
	if info.Mode().Perm()&0o077 != 0 {
		return "", fmt.Errorf("credential file %q is accessible by other users (mode %#o)", key, info.Mode().Perm())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read credential file %q: %w", key, err)
	}

	value := strings.TrimSpace(string(data))
	if value == "" {
		return "", fmt.Errorf("credential file %q is empty", key)
	}

	return value, nil
}

func (s *Source) pathForKey(key string) (string, error) {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return "", errors.New("credential key is empty")
	}

	cleaned := filepath.Clean(trimmed)
	if filepath.IsAbs(cleaned) || strings.HasPrefix(cleaned, "..") || cleaned == "." {
		return "", fmt.Errorf("invalid credential key %q", key)
	}

	return filepath.Join(s.root, cleaned), nil
}
