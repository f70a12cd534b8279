package audit

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSink_AppendAndList(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	sink, err := NewFileSink(dir)
	require.NoError(t, err)
	defer sink.Close()

	first := NewEntry("run-1", "domain", ActorCoordinator, ActorImplementer, "first").
		WithDetail("threshold", "4.0")
	second := NewEntry("run-1", "domain", ActorImplementer, ActorCoordinator, "second")
	other := NewEntry("run-2", "api", ActorCoordinator, ActorReviewer, "other run")

	require.NoError(t, sink.Append(ctx, first))
	require.NoError(t, sink.Append(ctx, second))
	require.NoError(t, sink.Append(ctx, other))

	got, err := sink.List(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, first.ID, got[0].ID)
	assert.Equal(t, "first", got[0].Summary)
	assert.Equal(t, "4.0", got[0].Details["threshold"])
	assert.Equal(t, "second", got[1].Summary)
	assert.Equal(t, first.Time, got[0].Time)
}

func TestFileSink_OneFilePerRun(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	sink, err := NewFileSink(dir)
	require.NoError(t, err)
	defer sink.Close()

	require.NoError(t, sink.Append(ctx, NewEntry("run-1", "", ActorCoordinator, ActorReviewer, "a")))
	require.NoError(t, sink.Append(ctx, NewEntry("run-2", "", ActorCoordinator, ActorReviewer, "b")))

	_, err = os.Stat(filepath.Join(dir, "run-1.jsonl"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "run-2.jsonl"))
	assert.NoError(t, err)
}

func TestFileSink_ListUnknownRun(t *testing.T) {
	dir := t.TempDir()

	sink, err := NewFileSink(dir)
	require.NoError(t, err)
	defer sink.Close()

	got, err := sink.List(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFileSink_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "audit")

	sink, err := NewFileSink(dir)
	require.NoError(t, err)
	defer sink.Close()

	require.NoError(t, sink.Append(context.Background(), NewEntry("run-1", "", ActorCoordinator, ActorReviewer, "a")))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
