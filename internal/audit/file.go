package audit

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// FileSink writes one JSONL file per run under a directory.
// Each entry is a single JSON line, appended and flushed before the
// transition it records proceeds.
type FileSink struct {
	dir string
	mu  sync.Mutex
}

// NewFileSink creates the directory if needed and returns a sink
// writing to <dir>/<runID>.jsonl.
func NewFileSink(dir string) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create audit dir: %w", err)
	}
	return &FileSink{dir: dir}, nil
}

func (s *FileSink) path(runID string) string {
	return filepath.Join(s.dir, runID+".jsonl")
}

// Append writes the entry as one JSON line to the run's file.
func (s *FileSink) Append(_ context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path(e.RunID), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit file: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(e); err != nil {
		return fmt.Errorf("write audit entry: %w", err)
	}
	return f.Sync()
}

// List reads the run's file back in append order.
// A missing file means no entries, not an error.
func (s *FileSink) List(_ context.Context, runID string) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path(runID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open audit file: %w", err)
	}
	defer f.Close()

	var entries []Entry
	r := bufio.NewReader(f)
	for {
		line, err := r.ReadBytes('\n')
		if len(bytes.TrimSpace(line)) > 0 {
			var e Entry
			if decodeErr := json.Unmarshal(line, &e); decodeErr != nil {
				return nil, fmt.Errorf("decode audit entry: %w", decodeErr)
			}
			entries = append(entries, e)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read audit file: %w", err)
		}
	}
	return entries, nil
}

// Close is a no-op; files are closed after each append.
func (s *FileSink) Close() error {
	return nil
}
