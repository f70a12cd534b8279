package cycle

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bailiff-dev/bailiff/internal/agent"
	"github.com/bailiff-dev/bailiff/internal/audit"
	"github.com/bailiff-dev/bailiff/internal/escalate"
	"github.com/bailiff-dev/bailiff/internal/events"
	"github.com/bailiff-dev/bailiff/internal/gate"
	"github.com/bailiff-dev/bailiff/internal/git"
	"github.com/bailiff-dev/bailiff/internal/review"
)

// Run processes every layer in order until all reach a terminal state,
// a layer escalates with no resolver, or the run is aborted. The first
// audit entry records the run configuration; every state transition
// appends its entry before the next state's work begins.
func (c *Coordinator) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	// Best effort: a detached HEAD still runs, the trail just carries
	// no branch name.
	branch, _ := git.GetCurrentBranch(ctx, c.cfg.Workdir)

	opening := audit.NewEntry(c.cfg.RunID, "", audit.ActorHuman, audit.ActorCoordinator, "run started").
		WithDetail("threshold", formatScore(c.cfg.Threshold)).
		WithDetail("max_iterations", strconv.Itoa(c.cfg.MaxIterations)).
		WithDetail("layers", strings.Join(c.layerNames(), ","))
	if branch != "" {
		opening = opening.WithDetail("branch", branch)
	}
	if err := c.sink.Append(ctx, opening); err != nil {
		return c.buildResult(start), fmt.Errorf("audit append: %w", err)
	}

	payload := map[string]any{
		"runId":         c.cfg.RunID,
		"feature":       c.cfg.Feature,
		"layers":        c.layerNames(),
		"threshold":     c.cfg.Threshold,
		"maxIterations": c.cfg.MaxIterations,
	}
	if branch != "" {
		payload["branch"] = branch
	}
	c.emit(events.NewEvent(events.RunStarted, "").WithPayload(payload))
	for i, st := range c.states {
		c.emit(events.NewEvent(events.LayerQueued, st.Layer).WithPayload(map[string]any{
			"patterns":  patternNames(c.specs[i].Patterns),
			"threshold": c.specs[i].Threshold,
		}))
	}

	for i := range c.specs {
		spec := &c.specs[i]
		st := c.states[i]

		if err := ctx.Err(); err != nil {
			return c.failRun(ctx, start, st, err)
		}
		if err := c.runLayer(ctx, spec, st); err != nil {
			return c.failRun(ctx, start, st, err)
		}
		if st.Status == StatusAborted {
			c.appendRunEnd(ctx, "run aborted", map[string]string{"layer": st.Layer})
			c.emit(events.NewEvent(events.RunAborted, "").WithPayload(map[string]any{"layer": st.Layer}))
			return c.buildResult(start), nil
		}
	}

	result := c.buildResult(start)
	c.appendRunEnd(ctx, "run completed", map[string]string{
		"passed":  strconv.Itoa(result.PassedLayers),
		"skipped": strconv.Itoa(result.SkippedLayers),
	})
	c.emit(events.NewEvent(events.RunCompleted, "").WithPayload(map[string]any{
		"passed":   result.PassedLayers,
		"skipped":  result.SkippedLayers,
		"duration": result.Duration.String(),
	}))
	return result, nil
}

// runLayer drives one layer until it is passed, skipped, or aborted.
func (c *Coordinator) runLayer(ctx context.Context, spec *LayerSpec, st *LayerState) error {
	if err := c.implement(ctx, spec, st); err != nil {
		return err
	}

	from := audit.ActorImplementer
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		result, err := c.reviewOnce(ctx, spec, st, from)
		if err != nil {
			return err
		}

		if result.Passed() {
			return c.finishLayer(ctx, st, result)
		}

		if st.IterationCount < c.cfg.MaxIterations {
			// The count moves before the fix is dispatched, so an
			// interrupted fix still burns its iteration.
			st.IterationCount++
			if err := c.fix(ctx, spec, st, result); err != nil {
				return err
			}
			from = audit.ActorImplementer
			continue
		}

		if err := c.escalateLayer(ctx, st, result); err != nil {
			return err
		}
		break
	}

	for st.Status == StatusEscalated {
		if c.resolver == nil {
			return fmt.Errorf("layer %q: %w", st.Layer, ErrEscalated)
		}
		answer, err := c.resolver.Resolve(ctx, EscalationPrompt{
			Layer:          st.Layer,
			IterationCount: st.IterationCount,
			Threshold:      spec.Threshold,
			Result:         st.LastResult,
		})
		if err != nil {
			return fmt.Errorf("resolve layer %q: %w", st.Layer, err)
		}
		if err := c.Resolve(ctx, st.Layer, answer); err != nil {
			return err
		}
	}
	return nil
}

// Resolve applies a human decision to an escalated layer. Continue and
// lower-threshold resolutions trigger a verification review; a failing
// verification escalates again. Run calls this with the answers its
// Resolver produces, and tools driving a coordinator directly may call
// it themselves.
func (c *Coordinator) Resolve(ctx context.Context, layer string, answer Answer) error {
	i, ok := c.index[layer]
	if !ok {
		return fmt.Errorf("unknown layer %q", layer)
	}
	spec := &c.specs[i]
	st := c.states[i]

	if st.Status != StatusEscalated {
		return fmt.Errorf("layer %q is %s, not escalated", layer, st.Status)
	}
	if !answer.Resolution.Valid() {
		return fmt.Errorf("unknown resolution %q", answer.Resolution)
	}
	if answer.Resolution == ResolutionLowerThreshold {
		if answer.NewThreshold <= 0 || answer.NewThreshold >= spec.Threshold {
			return fmt.Errorf("new threshold %.2f must be lower than current %.2f",
				answer.NewThreshold, spec.Threshold)
		}
	}

	entry := audit.NewEntry(c.cfg.RunID, layer, audit.ActorHuman, audit.ActorCoordinator,
		fmt.Sprintf("escalation resolved: %s", answer.Resolution))
	if answer.Resolution == ResolutionLowerThreshold {
		entry = entry.WithDetail("new_threshold", formatScore(answer.NewThreshold))
	}
	if err := c.sink.Append(ctx, entry); err != nil {
		return fmt.Errorf("audit append: %w", err)
	}
	c.emit(events.NewEvent(events.EscalationResolved, layer).WithPayload(map[string]any{
		"resolution": string(answer.Resolution),
	}))

	switch answer.Resolution {
	case ResolutionSkipLayer:
		st.Status = StatusSkipped
		c.emit(events.NewEvent(events.LayerSkipped, layer))
		return nil

	case ResolutionAbort:
		st.Status = StatusAborted
		return nil

	case ResolutionLowerThreshold:
		spec.Threshold = answer.NewThreshold
		return c.verify(ctx, spec, st)

	case ResolutionContinueManually:
		return c.verify(ctx, spec, st)
	}
	return nil
}

// verify runs the single post-resolution review.
func (c *Coordinator) verify(ctx context.Context, spec *LayerSpec, st *LayerState) error {
	result, err := c.reviewOnce(ctx, spec, st, audit.ActorHuman)
	if err != nil {
		return err
	}
	if result.Passed() {
		return c.finishLayer(ctx, st, result)
	}
	return c.escalateLayer(ctx, st, result)
}

// implement dispatches the layer's initial implementation to the agent.
func (c *Coordinator) implement(ctx context.Context, spec *LayerSpec, st *LayerState) error {
	if err := c.transition(ctx, st, StatusImplementing,
		audit.ActorCoordinator, audit.ActorImplementer, "implementation dispatched", nil); err != nil {
		return err
	}
	c.emit(events.NewEvent(events.LayerImplementing, st.Layer))
	c.emit(events.NewEvent(events.ImplementStarted, st.Layer).WithPayload(map[string]any{
		"agent": c.agent.Name(),
	}))

	outcome, err := c.agent.Run(ctx, agent.Task{
		Instructions: BuildImplementPrompt(c.cfg.Feature, c.cfg.Brief, *spec),
		Workdir:      c.cfg.Workdir,
		MaxTurns:     c.cfg.AgentMaxTurns,
		Timeout:      c.cfg.AgentTimeout,
	})
	if err != nil {
		c.emit(events.NewEvent(events.ImplementFailed, st.Layer).WithError(err))
		return fmt.Errorf("implement layer %q: %w", st.Layer, err)
	}

	c.emit(events.NewEvent(events.ImplementCompleted, st.Layer).WithPayload(map[string]any{
		"duration": outcome.Duration.String(),
	}))
	return nil
}

// fix dispatches one fix attempt with the failing review inlined.
func (c *Coordinator) fix(ctx context.Context, spec *LayerSpec, st *LayerState, result *review.Result) error {
	iter := st.IterationCount
	if err := c.transition(ctx, st, StatusFixing,
		audit.ActorReviewer, audit.ActorImplementer,
		fmt.Sprintf("fix dispatched (iteration %d of %d)", iter, c.cfg.MaxIterations),
		map[string]string{"combined_score": formatScore(result.CombinedScore)}); err != nil {
		return err
	}
	c.emit(events.NewEvent(events.LayerFixing, st.Layer).WithIteration(iter))
	c.emit(events.NewEvent(events.FixDispatched, st.Layer).WithIteration(iter).WithPayload(map[string]any{
		"combinedScore": result.CombinedScore,
		"reasons":       result.Decision.Reasons,
	}))

	outcome, err := c.agent.Run(ctx, agent.Task{
		Instructions: BuildFixPrompt(st.Layer, iter, c.cfg.MaxIterations, result),
		Workdir:      c.cfg.Workdir,
		MaxTurns:     c.cfg.AgentMaxTurns,
		Timeout:      c.cfg.AgentTimeout,
	})
	if err != nil {
		c.emit(events.NewEvent(events.FixFailed, st.Layer).WithIteration(iter).WithError(err))
		return fmt.Errorf("fix layer %q (iteration %d): %w", st.Layer, iter, err)
	}

	c.emit(events.NewEvent(events.FixApplied, st.Layer).WithIteration(iter).WithPayload(map[string]any{
		"duration": outcome.Duration.String(),
	}))
	return nil
}

// reviewOnce stages the working tree, collects inputs, and runs one
// full evaluation against the layer's threshold.
func (c *Coordinator) reviewOnce(ctx context.Context, spec *LayerSpec, st *LayerState, from audit.Actor) (*review.Result, error) {
	if err := c.transition(ctx, st, StatusReviewing, from, audit.ActorReviewer,
		fmt.Sprintf("review started (iteration %d)", st.IterationCount), nil); err != nil {
		return nil, err
	}
	c.emit(events.NewEvent(events.LayerReviewing, st.Layer).WithIteration(st.IterationCount))

	// Staging before the diff is taken makes untracked files reviewable.
	if err := git.StageAll(ctx, c.cfg.Workdir); err != nil {
		return nil, fmt.Errorf("stage layer %q: %w", st.Layer, err)
	}
	diff, files, err := review.CollectInputs(ctx, c.cfg.Workdir, ".")
	if err != nil {
		return nil, fmt.Errorf("collect inputs for layer %q: %w", st.Layer, err)
	}

	result, err := c.reviewer.Evaluate(ctx, review.Request{
		Layer:       st.Layer,
		Target:      ".",
		Workdir:     c.cfg.Workdir,
		Diff:        diff,
		Files:       files,
		PlanContext: BuildPlanContext(c.cfg.Feature, st.Layer, c.cfg.Brief),
		Patterns:    spec.Patterns,
		Thresholds: gate.Thresholds{
			Overall: spec.Threshold,
			Strict:  c.cfg.Strict,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("review layer %q: %w", st.Layer, err)
	}

	st.LastResult = result
	return result, nil
}

// finishLayer records the pass and commits the staged work.
func (c *Coordinator) finishLayer(ctx context.Context, st *LayerState, result *review.Result) error {
	if err := c.transition(ctx, st, StatusPassed,
		audit.ActorReviewer, audit.ActorCoordinator,
		fmt.Sprintf("gate passed at %s", formatScore(result.CombinedScore)),
		map[string]string{"iterations": strconv.Itoa(st.IterationCount)}); err != nil {
		return err
	}
	c.emit(events.NewEvent(events.LayerPassed, st.Layer).WithPayload(map[string]any{
		"combinedScore": result.CombinedScore,
		"iterations":    st.IterationCount,
	}))

	return c.commitLayer(ctx, st, result.CombinedScore)
}

// commitLayer commits the already-staged layer work.
func (c *Coordinator) commitLayer(ctx context.Context, st *LayerState, score float64) error {
	if !c.cfg.CommitEnabled {
		return nil
	}

	dirty, err := git.HasUncommittedChanges(ctx, c.cfg.Workdir)
	if err != nil {
		return fmt.Errorf("commit layer %q: %w", st.Layer, err)
	}
	if !dirty {
		return nil
	}

	msg := fmt.Sprintf("layer %s: pass at score %.1f", st.Layer, score)
	entry := audit.NewEntry(c.cfg.RunID, st.Layer, audit.ActorCoordinator, audit.ActorGit, "commit layer work").
		WithDetail("message", msg)
	if err := c.sink.Append(ctx, entry); err != nil {
		return fmt.Errorf("audit append: %w", err)
	}

	if err := git.Commit(ctx, c.cfg.Workdir, git.CommitOptions{
		Message:  msg,
		NoVerify: c.cfg.CommitNoVerify,
	}); err != nil {
		return fmt.Errorf("commit layer %q: %w", st.Layer, err)
	}

	hash, err := git.GetCommitHash(ctx, c.cfg.Workdir)
	if err != nil {
		return fmt.Errorf("commit layer %q: %w", st.Layer, err)
	}
	c.emit(events.NewEvent(events.ChangesCommitted, st.Layer).WithPayload(map[string]any{
		"hash":    hash,
		"message": msg,
	}))
	return nil
}

// escalateLayer parks the layer for a human decision and notifies the
// escalation backends.
func (c *Coordinator) escalateLayer(ctx context.Context, st *LayerState, result *review.Result) error {
	if err := c.transition(ctx, st, StatusEscalated,
		audit.ActorReviewer, audit.ActorHuman,
		fmt.Sprintf("fix budget exhausted after %d iterations", st.IterationCount),
		map[string]string{"combined_score": formatScore(result.CombinedScore)}); err != nil {
		return err
	}
	c.emit(events.NewEvent(events.LayerEscalated, st.Layer).WithPayload(map[string]any{
		"iterations":    st.IterationCount,
		"combinedScore": result.CombinedScore,
		"reasons":       result.Decision.Reasons,
	}))

	raised := events.NewEvent(events.EscalationRaised, st.Layer)
	if c.escalator != nil {
		err := c.escalator.Escalate(ctx, escalate.Escalation{
			Severity: escalate.SeverityBlocking,
			RunID:    c.cfg.RunID,
			Layer:    st.Layer,
			Title:    fmt.Sprintf("Layer %s failed review after %d fix attempts", st.Layer, st.IterationCount),
			Message:  strings.Join(result.Decision.Reasons, "; "),
			Context: map[string]string{
				"iterations":     strconv.Itoa(st.IterationCount),
				"combined_score": formatScore(result.CombinedScore),
				"threshold":      formatScore(result.Decision.Threshold),
			},
		})
		// Notification failure must not lose the escalation itself.
		raised = raised.WithError(err)
	}
	c.emit(raised)
	return nil
}

// transition appends the audit entry for a state change, then applies it.
// The entry always lands before the next state's work begins.
func (c *Coordinator) transition(ctx context.Context, st *LayerState, to Status, from, toActor audit.Actor, summary string, details map[string]string) error {
	entry := audit.NewEntry(c.cfg.RunID, st.Layer, from, toActor, summary)
	for k, v := range details {
		entry = entry.WithDetail(k, v)
	}
	if err := c.sink.Append(ctx, entry); err != nil {
		return fmt.Errorf("audit append: %w", err)
	}
	st.Status = to
	return nil
}

func (c *Coordinator) failRun(ctx context.Context, start time.Time, st *LayerState, err error) (*Result, error) {
	// The run is already failing; a lost closing entry must not mask err.
	c.appendRunEnd(ctx, "run failed", map[string]string{"error": err.Error()})
	if st.Status != StatusQueued {
		c.emit(events.NewEvent(events.LayerFailed, st.Layer).WithError(err))
	}
	c.emit(events.NewEvent(events.RunFailed, "").WithError(err))
	return c.buildResult(start), err
}

func (c *Coordinator) appendRunEnd(ctx context.Context, summary string, details map[string]string) {
	entry := audit.NewEntry(c.cfg.RunID, "", audit.ActorCoordinator, audit.ActorHuman, summary)
	for k, v := range details {
		entry = entry.WithDetail(k, v)
	}
	_ = c.sink.Append(ctx, entry)
}

func (c *Coordinator) buildResult(start time.Time) *Result {
	result := &Result{
		RunID:       c.cfg.RunID,
		TotalLayers: len(c.states),
		Duration:    time.Since(start),
	}
	for _, st := range c.states {
		result.States = append(result.States, *st)
		switch st.Status {
		case StatusPassed:
			result.PassedLayers++
		case StatusSkipped:
			result.SkippedLayers++
		case StatusEscalated:
			result.EscalatedLayers++
		case StatusAborted:
			result.Aborted = true
		}
	}
	return result
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
