package escalate

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Multi fans an escalation out to several backends concurrently
type Multi struct {
	escalators []Escalator
}

// NewMulti creates a Multi escalator that sends to all provided backends
func NewMulti(escalators ...Escalator) *Multi {
	return &Multi{escalators: escalators}
}

// Escalate sends the escalation to every backend. Each failure is
// reported, named after its backend, so a dead webhook does not hide a
// dead Slack hook. A partial failure still means every reachable human
// was notified.
func (m *Multi) Escalate(ctx context.Context, e Escalation) error {
	if len(m.escalators) == 0 {
		return nil
	}

	var wg sync.WaitGroup
	errs := make([]error, len(m.escalators))

	for i, esc := range m.escalators {
		wg.Add(1)
		go func(i int, esc Escalator) {
			defer wg.Done()
			if err := esc.Escalate(ctx, e); err != nil {
				errs[i] = fmt.Errorf("%s: %w", esc.Name(), err)
			}
		}(i, esc)
	}

	wg.Wait()
	return errors.Join(errs...)
}

// Name returns "multi"
func (m *Multi) Name() string {
	return "multi"
}
