package git

import (
	"context"
	"fmt"
	"strings"
)

// WorkdirStatus represents the result of checking for uncommitted changes.
type WorkdirStatus struct {
	// HasChanges is true if there are any uncommitted changes
	HasChanges bool

	// ChangedFiles is a list of files with uncommitted changes,
	// including untracked files
	ChangedFiles []string
}

// GetWorkdirStatus checks the working directory for uncommitted changes.
// Uses "git status --porcelain" which outputs nothing for a clean working directory.
func GetWorkdirStatus(ctx context.Context, dir string) (*WorkdirStatus, error) {
	output, err := gitExec(ctx, dir, "status", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("failed to check git status: %w", err)
	}

	result := &WorkdirStatus{
		ChangedFiles: []string{},
	}

	// Parse porcelain output - each line is "XY filename" where XY is the
	// 2-char status code. Don't TrimSpace the output: the first char of
	// each line is part of the status.
	lines := strings.Split(output, "\n")
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		result.HasChanges = true

		if len(line) >= 3 {
			filename := line[3:]
			// Handle renamed files: "R  old -> new"
			if idx := strings.Index(filename, " -> "); idx != -1 {
				filename = filename[idx+4:]
			}
			result.ChangedFiles = append(result.ChangedFiles, filename)
		}
	}

	return result, nil
}

// DiffStaged returns the unified diff of staged changes against HEAD.
func DiffStaged(ctx context.Context, dir string) (string, error) {
	output, err := gitExec(ctx, dir, "diff", "--cached")
	if err != nil {
		return "", fmt.Errorf("failed to diff staged changes: %w", err)
	}
	return output, nil
}

// Diff returns the unified diff of tracked working-tree changes against HEAD.
func Diff(ctx context.Context, dir string) (string, error) {
	output, err := gitExec(ctx, dir, "diff", "HEAD")
	if err != nil {
		return "", fmt.Errorf("failed to diff working tree: %w", err)
	}
	return output, nil
}
