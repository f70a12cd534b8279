package review

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bailiff-dev/bailiff/internal/events"
	"github.com/bailiff-dev/bailiff/internal/gate"
	"github.com/bailiff-dev/bailiff/internal/judge"
	"github.com/bailiff-dev/bailiff/internal/pattern"
	"github.com/bailiff-dev/bailiff/internal/scoring"
)

// scriptedGateway returns canned judgments per call. Calls are counted
// across goroutines, so per-call scripts must be order-insensitive.
type scriptedGateway struct {
	mu    sync.Mutex
	calls int
	reqs  []judge.Request
	fn    func(call int, req judge.Request) (*judge.JudgmentPass, error)
}

func (g *scriptedGateway) Judge(_ context.Context, req judge.Request) (*judge.JudgmentPass, error) {
	g.mu.Lock()
	call := g.calls
	g.calls++
	g.reqs = append(g.reqs, req)
	g.mu.Unlock()
	return g.fn(call, req)
}

func (g *scriptedGateway) Name() string { return "scripted" }

func (g *scriptedGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func steadyGateway(pass *judge.JudgmentPass) *scriptedGateway {
	return &scriptedGateway{fn: func(int, judge.Request) (*judge.JudgmentPass, error) {
		p := *pass
		return &p, nil
	}}
}

type eventLog struct {
	mu     sync.Mutex
	events []events.Event
}

func (l *eventLog) handler() events.Handler {
	return func(e events.Event) {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.events = append(l.events, e)
	}
}

func (l *eventLog) all() []events.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]events.Event, len(l.events))
	copy(out, l.events)
	return out
}

func (l *eventLog) count(t events.EventType) int {
	n := 0
	for _, e := range l.all() {
		if e.Type == t {
			n++
		}
	}
	return n
}

func hexagonalPattern() pattern.Pattern {
	return pattern.Pattern{
		Name: "hexagonal-core",
		Tactics: []pattern.Tactic{
			{ID: "ports-first", Title: "Define ports before adapters", Priority: pattern.PriorityCritical},
			{ID: "thin-adapters", Title: "Keep adapters free of domain logic", Priority: pattern.PriorityOptional},
		},
		Constraints: []pattern.Constraint{
			{ID: "no-io-in-domain", Rule: "Domain packages must not perform I/O"},
		},
	}
}

func hexagonalJudgment(critical, optional int, verdict judge.ConstraintVerdict) *judge.JudgmentPass {
	return &judge.JudgmentPass{
		Tactics: []judge.TacticJudgment{
			{TacticID: "ports-first", Score: critical, Reasoning: "ports declared before adapters"},
			{TacticID: "thin-adapters", Score: optional, Reasoning: "adapters delegate to the core"},
		},
		Constraints: []judge.ConstraintJudgment{
			{ConstraintID: "no-io-in-domain", Verdict: verdict, Reasoning: "domain stays pure"},
		},
		OverallReasoning: "clean separation overall",
	}
}

func reviewRequest() Request {
	return Request{
		Layer:   "domain",
		Target:  "internal/billing",
		Workdir: "/repo",
		Diff:    "diff --git a/internal/billing/refund.go b/internal/billing/refund.go",
		Files:   map[string]string{"internal/billing/refund.go": "package billing\n"},
		Patterns: []pattern.Pattern{
			hexagonalPattern(),
		},
		Thresholds: gate.DefaultThresholds(),
	}
}

func TestEvaluate_SinglePatternPasses(t *testing.T) {
	gw := steadyGateway(hexagonalJudgment(5, 4, judge.VerdictPass))
	ev := New(gw, Options{Passes: 3})

	result, err := ev.Evaluate(context.Background(), reviewRequest())
	require.NoError(t, err)

	assert.Equal(t, 3, gw.callCount())
	assert.Equal(t, "internal/billing", result.Target)
	assert.Equal(t, 3, result.Passes)
	assert.Positive(t, result.Duration)
	assert.True(t, result.Passed())

	require.Len(t, result.Patterns, 1)
	pe := result.Patterns[0]
	assert.Equal(t, "hexagonal-core", pe.Pattern.Name)
	require.NotNil(t, pe.Judgment)
	assert.Len(t, pe.Judgment.Tactics, 2)

	// (5*3 + 4*1) / 4, then 70/30 blend with full constraint marks
	assert.InDelta(t, 4.75, pe.Score.TacticsScore, 0.0001)
	assert.True(t, pe.Score.ConstraintsPassed)
	assert.InDelta(t, 4.825, pe.Score.OverallScore, 0.0001)
	assert.InDelta(t, 4.825, result.CombinedScore, 0.0001)
	assert.Empty(t, result.Decision.Reasons)
	assert.Empty(t, result.Recommendations)
}

func TestEvaluate_PassesForwardTheRequest(t *testing.T) {
	gw := steadyGateway(hexagonalJudgment(5, 5, judge.VerdictPass))
	ev := New(gw, Options{Passes: 2})

	req := reviewRequest()
	req.PlanContext = "Feature: refunds"
	_, err := ev.Evaluate(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, gw.reqs, 2)
	for _, jr := range gw.reqs {
		assert.Equal(t, "hexagonal-core", jr.Pattern.Name)
		assert.Equal(t, req.Target, jr.TargetPath)
		assert.Equal(t, req.Workdir, jr.Workdir)
		assert.Equal(t, req.Diff, jr.Diff)
		assert.Equal(t, req.Files, jr.Files)
		assert.Equal(t, "Feature: refunds", jr.PlanContext)
	}
}

func TestEvaluate_AggregatesLowerMedianAcrossPasses(t *testing.T) {
	// Critical tactic scores 5, 3, 4 across the passes; the lower
	// median is 4 regardless of which goroutine got which script.
	criticalScores := []int{5, 3, 4}
	gw := &scriptedGateway{fn: func(call int, _ judge.Request) (*judge.JudgmentPass, error) {
		return hexagonalJudgment(criticalScores[call], 4, judge.VerdictPass), nil
	}}
	ev := New(gw, Options{Passes: 3})

	result, err := ev.Evaluate(context.Background(), reviewRequest())
	require.NoError(t, err)

	score := result.Patterns[0].Score
	assert.InDelta(t, 4.0, score.TacticsScore, 0.0001)
	assert.InDelta(t, 4.3, score.OverallScore, 0.0001)

	agg, ok := result.Patterns[0].Judgment.Tactic("ports-first")
	require.True(t, ok)
	assert.Equal(t, 4, agg.Score)
}

func TestEvaluate_DefaultsToOnePass(t *testing.T) {
	gw := steadyGateway(hexagonalJudgment(5, 5, judge.VerdictPass))
	ev := New(gw, Options{})

	result, err := ev.Evaluate(context.Background(), reviewRequest())
	require.NoError(t, err)

	assert.Equal(t, 1, gw.callCount())
	assert.Equal(t, 1, result.Passes)
}

func TestEvaluate_NoPatterns(t *testing.T) {
	gw := steadyGateway(hexagonalJudgment(5, 5, judge.VerdictPass))
	log := &eventLog{}
	bus := events.NewBus()
	bus.Subscribe(log.handler())
	ev := New(gw, Options{Passes: 3, Bus: bus})

	req := reviewRequest()
	req.Patterns = nil

	result, err := ev.Evaluate(context.Background(), req)
	assert.ErrorIs(t, err, ErrNoPatterns)
	assert.Nil(t, result)
	assert.Zero(t, gw.callCount())
	assert.Empty(t, log.all())
}

func TestEvaluate_FailingPassFailsWholeReview(t *testing.T) {
	boom := errors.New("judge subprocess exited 1")
	gw := &scriptedGateway{fn: func(call int, _ judge.Request) (*judge.JudgmentPass, error) {
		if call == 1 {
			return nil, boom
		}
		return hexagonalJudgment(5, 5, judge.VerdictPass), nil
	}}
	log := &eventLog{}
	bus := events.NewBus()
	bus.Subscribe(log.handler())
	ev := New(gw, Options{Passes: 3, Bus: bus})

	result, err := ev.Evaluate(context.Background(), reviewRequest())
	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "pattern hexagonal-core: judge pass")

	// All three passes still ran; no score was built from the survivors.
	assert.Equal(t, 3, gw.callCount())
	assert.Equal(t, 1, log.count(events.JudgePassFailed))
	assert.Equal(t, 1, log.count(events.ReviewFailed))
	assert.Zero(t, log.count(events.PatternScored))
	assert.Zero(t, log.count(events.ReviewCompleted))
}

func TestEvaluate_SinglePassErrorNamesThePass(t *testing.T) {
	boom := errors.New("malformed judge output")
	gw := &scriptedGateway{fn: func(int, judge.Request) (*judge.JudgmentPass, error) {
		return nil, boom
	}}
	ev := New(gw, Options{Passes: 1})

	_, err := ev.Evaluate(context.Background(), reviewRequest())
	require.Error(t, err)
	assert.EqualError(t, err, "pattern hexagonal-core: judge pass 1: malformed judge output")
}

func TestEvaluate_InconsistentPasses(t *testing.T) {
	// One pass judges a tactic the others never saw.
	gw := &scriptedGateway{fn: func(call int, _ judge.Request) (*judge.JudgmentPass, error) {
		p := hexagonalJudgment(5, 5, judge.VerdictPass)
		if call == 2 {
			p.Tactics[1].TacticID = "stray-tactic"
		}
		return p, nil
	}}
	ev := New(gw, Options{Passes: 3})

	result, err := ev.Evaluate(context.Background(), reviewRequest())
	require.Error(t, err)
	assert.Nil(t, result)

	var inconsistent *scoring.InconsistentPassesError
	assert.ErrorAs(t, err, &inconsistent)
	assert.ErrorContains(t, err, "pattern hexagonal-core")
}

func TestEvaluate_GateFailureCarriesReasons(t *testing.T) {
	gw := steadyGateway(hexagonalJudgment(2, 1, judge.VerdictPass))
	ev := New(gw, Options{Passes: 3})

	result, err := ev.Evaluate(context.Background(), reviewRequest())
	require.NoError(t, err)

	assert.False(t, result.Passed())
	assert.InDelta(t, 2.725, result.CombinedScore, 0.0001)
	require.NotEmpty(t, result.Decision.Reasons)
	assert.Contains(t, result.Decision.Reasons[0], "below threshold")
	require.Len(t, result.Decision.Issues.Critical, 1)
	assert.Equal(t, "ports-first", result.Decision.Issues.Critical[0].TacticID)
	require.Len(t, result.Decision.Issues.Optional, 1)
	assert.Equal(t, "thin-adapters", result.Decision.Issues.Optional[0].TacticID)

	// Blocking issues lead the recommendations, informational ones trail.
	require.Len(t, result.Recommendations, 2)
	assert.Contains(t, result.Recommendations[0], `improve "Define ports before adapters" (scored 2/5)`)
	assert.Contains(t, result.Recommendations[1], "consider improving")
}

func TestEvaluate_ConstraintFailureBlocksGate(t *testing.T) {
	gw := steadyGateway(hexagonalJudgment(5, 5, judge.VerdictFail))
	ev := New(gw, Options{Passes: 3})

	result, err := ev.Evaluate(context.Background(), reviewRequest())
	require.NoError(t, err)

	assert.False(t, result.Passed())
	assert.False(t, result.Patterns[0].Score.ConstraintsPassed)
	require.Len(t, result.Decision.Issues.ConstraintFailures, 1)
	assert.Equal(t, "no-io-in-domain", result.Decision.Issues.ConstraintFailures[0].ConstraintID)
}

func TestEvaluate_CombinedScoreAveragesPatterns(t *testing.T) {
	strong := hexagonalPattern()
	weak := pattern.Pattern{
		Name: "repository-boundary",
		Tactics: []pattern.Tactic{
			{ID: "single-store", Title: "One store type per aggregate", Priority: pattern.PriorityOptional},
		},
	}

	gw := &scriptedGateway{fn: func(_ int, jr judge.Request) (*judge.JudgmentPass, error) {
		if jr.Pattern.Name == "repository-boundary" {
			return &judge.JudgmentPass{
				Tactics: []judge.TacticJudgment{
					{TacticID: "single-store", Score: 3, Reasoning: "two stores share an aggregate"},
				},
			}, nil
		}
		return hexagonalJudgment(5, 4, judge.VerdictPass), nil
	}}
	ev := New(gw, Options{Passes: 2})

	req := reviewRequest()
	req.Patterns = []pattern.Pattern{strong, weak}

	result, err := ev.Evaluate(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, result.Patterns, 2)
	assert.Equal(t, "hexagonal-core", result.Patterns[0].Pattern.Name)
	assert.Equal(t, "repository-boundary", result.Patterns[1].Pattern.Name)

	// (4.825 + 3.6) / 2
	assert.InDelta(t, 4.2125, result.CombinedScore, 0.0001)
	assert.Equal(t, 4, gw.callCount())
}

func TestEvaluate_EmitsLifecycleEvents(t *testing.T) {
	gw := steadyGateway(hexagonalJudgment(5, 4, judge.VerdictPass))
	log := &eventLog{}
	bus := events.NewBus()
	bus.Subscribe(log.handler())
	ev := New(gw, Options{Passes: 2, Bus: bus})

	_, err := ev.Evaluate(context.Background(), reviewRequest())
	require.NoError(t, err)

	all := log.all()
	require.NotEmpty(t, all)
	assert.Equal(t, events.ReviewStarted, all[0].Type)
	assert.Equal(t, "domain", all[0].Layer)
	assert.Equal(t, events.ReviewCompleted, all[len(all)-1].Type)

	payload, ok := all[0].Payload.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 1, payload["patterns"])
	assert.Equal(t, 2, payload["passes"])

	assert.Equal(t, 2, log.count(events.JudgePassStarted))
	assert.Equal(t, 2, log.count(events.JudgePassCompleted))
	assert.Equal(t, 1, log.count(events.PatternScored))
	assert.Equal(t, 1, log.count(events.GatePassed))
	assert.Zero(t, log.count(events.GateFailed))

	// pattern.scored only fires once every pass is in
	scoredAt, lastPassAt := -1, -1
	for i, e := range all {
		switch e.Type {
		case events.PatternScored:
			scoredAt = i
		case events.JudgePassCompleted:
			lastPassAt = i
		}
	}
	assert.Greater(t, scoredAt, lastPassAt)
}

func TestEvaluate_EmitsGateFailed(t *testing.T) {
	gw := steadyGateway(hexagonalJudgment(2, 2, judge.VerdictPass))
	log := &eventLog{}
	bus := events.NewBus()
	bus.Subscribe(log.handler())
	ev := New(gw, Options{Passes: 1, Bus: bus})

	result, err := ev.Evaluate(context.Background(), reviewRequest())
	require.NoError(t, err)
	assert.False(t, result.Passed())

	assert.Equal(t, 1, log.count(events.GateFailed))
	assert.Zero(t, log.count(events.GatePassed))
	assert.Equal(t, 1, log.count(events.ReviewCompleted))
}
