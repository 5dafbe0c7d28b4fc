package poetry

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// sourceOps is the seam used by EnsureCorrectSource so the state machine can
// be exercised against fakes.
type sourceOps interface {
	SourceRegistered(ctx context.Context, projectDir, sourceName string) (bool, error)
	AddSource(ctx context.Context, sourceURL, projectDir, sourceName string) error
	RemoveSource(ctx context.Context, projectDir, sourceName string, refreshLock bool) error
	RefreshLock(ctx context.Context, projectDir string) error
}

// EnsureCorrectSource makes the registered package source match the
// environment: present with the proxy URL on-premises, absent otherwise.
// After it returns without error, the lockfile is consistent with the
// source state.
func (c *Client) EnsureCorrectSource(ctx context.Context, projectDir string, onprem bool) error {
	return ensureCorrectSource(ctx, c, projectDir, onprem, c.SourceURL, c.SourceName)
}

func ensureCorrectSource(ctx context.Context, ops sourceOps, projectDir string, onprem bool, sourceURL, sourceName string) error {
	if onprem {
		// Adding a source with an already-registered name refreshes its
		// URL in place, so a single add covers both on-prem states.
		if err := ops.AddSource(ctx, sourceURL, projectDir, sourceName); err != nil {
			return err
		}
		if ShouldUpdateLockFile(sourceURL, projectDir) {
			return ops.RefreshLock(ctx, projectDir)
		}
		return nil
	}

	registered, err := ops.SourceRegistered(ctx, projectDir, sourceName)
	if err != nil {
		return err
	}
	if registered {
		return ops.RemoveSource(ctx, projectDir, sourceName, true)
	}

	return nil
}

// ShouldUpdateLockFile reports whether a lock refresh is needed after the
// source URL changed. A missing lockfile needs no refresh (the subsequent
// install creates it), and a lockfile that already mentions the URL needs
// none either.
//
// The check is a literal substring match of the lockfile text, not a
// structured parse. Known fragility: a URL appearing as a substring of
// another token would skip a refresh that is actually needed.
func ShouldUpdateLockFile(sourceURL, projectDir string) bool {
	data, err := os.ReadFile(filepath.Join(projectDir, LockFileName))
	if err != nil {
		return false
	}

	return !strings.Contains(string(data), sourceURL)
}
