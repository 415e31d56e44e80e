package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// File names keep only alphanumerics, dot and hyphen; everything else
// becomes an underscore.
var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9.\-]`)

type LocalStore struct {
	basePath string
}

func NewLocalStore(basePath string) (*LocalStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalStore{basePath: basePath}, nil
}

func (s *LocalStore) Store(ctx context.Context, r io.Reader, originalName string) (string, error) {
	if r == nil {
		return "", nil
	}

	ref := uuid.NewString() + "_" + unsafeNameChars.ReplaceAllString(originalName, "_")
	fullPath := filepath.Join(s.basePath, ref)

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		// Cleanup on error
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return ref, nil
}

func (s *LocalStore) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	cleanRef := filepath.Clean(ref)
	fullPath := filepath.Join(s.basePath, cleanRef)

	// Keep lookups inside the storage directory
	if !strings.HasPrefix(fullPath, filepath.Clean(s.basePath)+string(os.PathSeparator)) {
		return nil, fmt.Errorf("invalid document reference: %s", ref)
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("document not found: %s", ref)
		}
		return nil, fmt.Errorf("failed to open document: %w", err)
	}

	return file, nil
}
