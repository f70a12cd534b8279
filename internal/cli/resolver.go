package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bailiff-dev/bailiff/internal/cycle"
)

// TerminalResolver prompts for escalation decisions on the terminal.
// Used in plain-log mode; the TUI bridge handles escalations otherwise.
type TerminalResolver struct {
	in  *bufio.Reader
	out io.Writer
}

// NewTerminalResolver creates a resolver reading choices from in.
func NewTerminalResolver(in io.Reader, out io.Writer) *TerminalResolver {
	return &TerminalResolver{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// Resolve prints the escalation and blocks until a valid choice is read.
func (r *TerminalResolver) Resolve(ctx context.Context, p cycle.EscalationPrompt) (cycle.Answer, error) {
	fmt.Fprintf(r.out, "\n⚠️  Layer %q failed review after %d fix attempts", p.Layer, p.IterationCount)
	if p.Result != nil {
		fmt.Fprintf(r.out, " (score %.2f, threshold %.2f)", p.Result.CombinedScore, p.Threshold)
		for _, reason := range p.Result.Decision.Reasons {
			fmt.Fprintf(r.out, "\n    - %s", reason)
		}
	}
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, "  [c] continue - changes were fixed manually, run one more review")
	fmt.Fprintln(r.out, "  [l] lower the threshold for this layer and re-review")
	fmt.Fprintln(r.out, "  [s] skip this layer and move on")
	fmt.Fprintln(r.out, "  [a] abort the run")

	for {
		if err := ctx.Err(); err != nil {
			return cycle.Answer{}, err
		}

		choice, err := r.readLine("choice [c/l/s/a]: ")
		if err != nil {
			return cycle.Answer{}, err
		}

		switch strings.ToLower(choice) {
		case "c", "continue":
			return cycle.Answer{Resolution: cycle.ResolutionContinueManually}, nil
		case "s", "skip":
			return cycle.Answer{Resolution: cycle.ResolutionSkipLayer}, nil
		case "a", "abort":
			return cycle.Answer{Resolution: cycle.ResolutionAbort}, nil
		case "l", "lower":
			threshold, err := r.readThreshold(p.Threshold)
			if err != nil {
				return cycle.Answer{}, err
			}
			return cycle.Answer{Resolution: cycle.ResolutionLowerThreshold, NewThreshold: threshold}, nil
		default:
			fmt.Fprintf(r.out, "unrecognized choice %q\n", choice)
		}
	}
}

// readThreshold loops until a threshold strictly between 0 and current
// is entered.
func (r *TerminalResolver) readThreshold(current float64) (float64, error) {
	for {
		line, err := r.readLine(fmt.Sprintf("new threshold (0 < t < %.2f): ", current))
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseFloat(line, 64)
		if err != nil || v <= 0 || v >= current {
			fmt.Fprintf(r.out, "threshold must be a number below %.2f\n", current)
			continue
		}
		return v, nil
	}
}

func (r *TerminalResolver) readLine(prompt string) (string, error) {
	fmt.Fprint(r.out, prompt)
	line, err := r.in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read escalation choice: %w", err)
	}
	return strings.TrimSpace(line), nil
}
