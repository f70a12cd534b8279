package review

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bailiff-dev/bailiff/internal/events"
	"github.com/bailiff-dev/bailiff/internal/gate"
	"github.com/bailiff-dev/bailiff/internal/judge"
	"github.com/bailiff-dev/bailiff/internal/pattern"
	"github.com/bailiff-dev/bailiff/internal/scoring"
)

// ErrNoPatterns indicates Evaluate was called with no patterns to score against.
var ErrNoPatterns = errors.New("no patterns to evaluate")

// Request carries everything the judges need to score one body of work.
type Request struct {
	// Layer labels emitted events (layer name, or target path for one-shot reviews)
	Layer string

	// Target is the path being reviewed, relative to Workdir
	Target string

	// Workdir is the repository root
	Workdir string

	// Diff is the unified diff under review
	Diff string

	// Files maps changed file paths to their full contents
	Files map[string]string

	// PlanContext optionally frames the work for the judge (feature,
	// layer, plan brief); empty for one-shot reviews
	PlanContext string

	// Patterns are the declarations to score against
	Patterns []pattern.Pattern

	// Thresholds configure the quality gate for this review.
	// Layers can carry different thresholds, so these ride the
	// request rather than the evaluator.
	Thresholds gate.Thresholds
}

// PatternEvaluation is the outcome for a single pattern.
type PatternEvaluation struct {
	Pattern  pattern.Pattern      `json:"pattern"`
	Judgment *judge.JudgmentPass  `json:"judgment"`
	Score    scoring.PatternScore `json:"score"`
}

// Result is a complete review: per-pattern scores, the gate decision,
// and the recommendations derived from its issues.
type Result struct {
	Target          string              `json:"target"`
	CombinedScore   float64             `json:"combinedScore"`
	Decision        gate.Decision       `json:"decision"`
	Patterns        []PatternEvaluation `json:"patterns"`
	Recommendations []string            `json:"recommendations,omitempty"`
	Passes          int                 `json:"passes"`
	Duration        time.Duration       `json:"duration"`
}

// Passed reports whether the quality gate held.
func (r *Result) Passed() bool {
	return r.Decision.Passed
}

// Options configures an Evaluator.
type Options struct {
	// Passes is the number of independent judge passes per pattern (min 1)
	Passes int

	// JudgeTimeout bounds each individual pass (0 = no limit)
	JudgeTimeout time.Duration

	// Bus receives review lifecycle events (nil = no events)
	Bus *events.Bus
}

// Evaluator runs multi-pass judge reviews and gates the scores.
type Evaluator struct {
	gateway      judge.Gateway
	passes       int
	judgeTimeout time.Duration
	bus          *events.Bus
}

// New creates an Evaluator around a judge gateway.
func New(gateway judge.Gateway, opts Options) *Evaluator {
	passes := opts.Passes
	if passes < 1 {
		passes = 1
	}
	return &Evaluator{
		gateway:      gateway,
		passes:       passes,
		judgeTimeout: opts.JudgeTimeout,
		bus:          opts.Bus,
	}
}

// Evaluate scores the request against every pattern and applies the
// quality gate. Any failing judge pass fails the whole evaluation;
// scores are never built from a partial pass set.
func (e *Evaluator) Evaluate(ctx context.Context, req Request) (*Result, error) {
	if len(req.Patterns) == 0 {
		return nil, ErrNoPatterns
	}

	start := time.Now()
	e.emit(events.NewEvent(events.ReviewStarted, req.Layer).
		WithPayload(map[string]any{"patterns": len(req.Patterns), "passes": e.passes}))

	evaluations := make([]PatternEvaluation, 0, len(req.Patterns))
	scores := make([]scoring.PatternScore, 0, len(req.Patterns))

	for _, p := range req.Patterns {
		judgment, err := e.judgePattern(ctx, req, p)
		if err != nil {
			e.emit(events.NewEvent(events.ReviewFailed, req.Layer).WithError(err))
			return nil, fmt.Errorf("pattern %s: %w", p.Name, err)
		}

		score, err := scoring.Score(&p, judgment)
		if err != nil {
			e.emit(events.NewEvent(events.ReviewFailed, req.Layer).WithError(err))
			return nil, fmt.Errorf("pattern %s: %w", p.Name, err)
		}

		e.emit(events.NewEvent(events.PatternScored, req.Layer).
			WithPayload(map[string]any{
				"pattern":           p.Name,
				"tacticsScore":      score.TacticsScore,
				"constraintsPassed": score.ConstraintsPassed,
				"overallScore":      score.OverallScore,
			}))

		evaluations = append(evaluations, PatternEvaluation{Pattern: p, Judgment: judgment, Score: *score})
		scores = append(scores, *score)
	}

	decision := gate.Evaluate(scores, req.Thresholds)
	if decision.Passed {
		e.emit(events.NewEvent(events.GatePassed, req.Layer).
			WithPayload(map[string]any{"combinedScore": decision.CombinedScore}))
	} else {
		e.emit(events.NewEvent(events.GateFailed, req.Layer).
			WithPayload(map[string]any{
				"combinedScore": decision.CombinedScore,
				"reasons":       decision.Reasons,
			}))
	}

	result := &Result{
		Target:          req.Target,
		CombinedScore:   decision.CombinedScore,
		Decision:        decision,
		Patterns:        evaluations,
		Recommendations: decision.Recommendations(),
		Passes:          e.passes,
		Duration:        time.Since(start),
	}

	e.emit(events.NewEvent(events.ReviewCompleted, req.Layer).
		WithPayload(map[string]any{
			"combinedScore": decision.CombinedScore,
			"passed":        decision.Passed,
			"duration":      result.Duration.String(),
		}))

	return result, nil
}

// judgePattern runs the configured number of independent judge passes
// concurrently and aggregates them into a single judgment.
func (e *Evaluator) judgePattern(ctx context.Context, req Request, p pattern.Pattern) (*judge.JudgmentPass, error) {
	jreq := judge.Request{
		Pattern:     p,
		TargetPath:  req.Target,
		Workdir:     req.Workdir,
		Diff:        req.Diff,
		Files:       req.Files,
		PlanContext: req.PlanContext,
	}

	passes := make([]judge.JudgmentPass, e.passes)
	errs := make([]error, e.passes)

	var wg sync.WaitGroup
	for i := 0; i < e.passes; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			passCtx := ctx
			if e.judgeTimeout > 0 {
				var cancel context.CancelFunc
				passCtx, cancel = context.WithTimeout(ctx, e.judgeTimeout)
				defer cancel()
			}

			e.emit(events.NewEvent(events.JudgePassStarted, req.Layer).
				WithPayload(map[string]any{"pattern": p.Name, "pass": i + 1}))

			result, err := e.gateway.Judge(passCtx, jreq)
			if err != nil {
				errs[i] = err
				e.emit(events.NewEvent(events.JudgePassFailed, req.Layer).
					WithPayload(map[string]any{"pattern": p.Name, "pass": i + 1}).
					WithError(err))
				return
			}

			passes[i] = *result
			e.emit(events.NewEvent(events.JudgePassCompleted, req.Layer).
				WithPayload(map[string]any{"pattern": p.Name, "pass": i + 1}))
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("judge pass %d: %w", i+1, err)
		}
	}

	return scoring.Aggregate(passes)
}

func (e *Evaluator) emit(evt events.Event) {
	if e.bus != nil {
		e.bus.Emit(evt)
	}
}
