package audit

import (
	"context"
	"errors"
	"sync"
)

// MultiSink fans entries out to several sinks, e.g. JSONL for humans
// plus SQLite for the audit command.
type MultiSink struct {
	sinks []Sink
}

// NewMulti creates a MultiSink that appends to all provided sinks.
func NewMulti(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// Append sends the entry to all sinks concurrently.
// Returns the first error encountered, but continues writing to all sinks.
func (m *MultiSink) Append(ctx context.Context, e Entry) error {
	if len(m.sinks) == 0 {
		return nil
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	for _, s := range m.sinks {
		wg.Add(1)
		go func(s Sink) {
			defer wg.Done()
			if err := s.Append(ctx, e); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}(s)
	}

	wg.Wait()
	return firstErr
}

// List reads from the first sink; all sinks receive the same entries.
func (m *MultiSink) List(ctx context.Context, runID string) ([]Entry, error) {
	if len(m.sinks) == 0 {
		return nil, nil
	}
	return m.sinks[0].List(ctx, runID)
}

// Close closes every sink and joins their errors.
func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
