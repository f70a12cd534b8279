package review

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bailiff-dev/bailiff/internal/git"
)

// maxFileBytes caps how much of any single file is handed to the judges.
const maxFileBytes = 256 * 1024

// CollectInputs gathers the staged diff and the contents of staged files
// under target. The caller is expected to have staged the work first.
func CollectInputs(ctx context.Context, workdir, target string) (string, map[string]string, error) {
	diff, err := git.DiffStaged(ctx, workdir)
	if err != nil {
		return "", nil, fmt.Errorf("collect diff: %w", err)
	}

	staged, err := git.GetStagedFiles(ctx, workdir)
	if err != nil {
		return "", nil, fmt.Errorf("collect staged files: %w", err)
	}

	return diff, readFiles(workdir, target, staged), nil
}

// CollectWorkdirInputs gathers the diff of uncommitted tracked changes
// against HEAD and the contents of every changed file under target,
// untracked files included. The index is left alone.
func CollectWorkdirInputs(ctx context.Context, workdir, target string) (string, map[string]string, error) {
	diff, err := git.Diff(ctx, workdir)
	if err != nil {
		return "", nil, fmt.Errorf("collect diff: %w", err)
	}

	status, err := git.GetWorkdirStatus(ctx, workdir)
	if err != nil {
		return "", nil, fmt.Errorf("collect changed files: %w", err)
	}

	return diff, readFiles(workdir, target, status.ChangedFiles), nil
}

// readFiles loads the named files under target, skipping deletions,
// binaries, and anything over maxFileBytes.
func readFiles(workdir, target string, names []string) map[string]string {
	files := make(map[string]string)
	for _, f := range names {
		if !underTarget(f, target) {
			continue
		}

		content, err := os.ReadFile(filepath.Join(workdir, f))
		if err != nil {
			// Deletions have no file on disk
			continue
		}
		if len(content) > maxFileBytes || bytes.IndexByte(content, 0) != -1 {
			continue
		}
		files[f] = string(content)
	}
	return files
}

// underTarget reports whether file falls under the target path.
// An empty or "." target matches everything.
func underTarget(file, target string) bool {
	target = path.Clean(target)
	if target == "." {
		return true
	}
	file = path.Clean(file)
	return file == target || strings.HasPrefix(file, target+"/")
}
