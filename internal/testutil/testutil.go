// Package testutil provides test helpers shared by qaforge packages.
//
// It should only be imported by test files (*_test.go).
package testutil

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// Mock errors for simulating collaborator and filesystem failures.
var (
	// ErrMockCollaborator stands in for a collaborator that could not start.
	ErrMockCollaborator = errors.New("collaborator unavailable")

	// ErrMockDiskFull stands in for a failed artifact write.
	ErrMockDiskFull = errors.New("no space left on device")
)

// Context returns a background context carrying a discarding logger, so
// code under test can call zerolog.Ctx freely.
func Context() context.Context {
	return zerolog.Nop().WithContext(context.Background())
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

// ReadFile returns the content of path as a string.
func ReadFile(t testing.TB, path string) string {
	t.Helper()
	data, err := os.ReadFile(path) //#nosec G304 -- test path
	require.NoError(t, err)
	return string(data)
}
