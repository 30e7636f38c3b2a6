package insight

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/continuum/internal/domain"
)

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		got, err := ParseKind(" " + string(k) + " ")
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseKind("astrology")
	assert.ErrorIs(t, err, ErrUnknownKind)
	assert.Equal(t, "Cognitive Bias Detection", KindBiases.Title())
}

func TestRunOnEmptyStoreResolvesEmpty(t *testing.T) {
	g := NewGenerator(analyzer(), WithLatency(0))
	for _, k := range Kinds {
		task, err := g.Run(k, nil)
		require.NoError(t, err)

		insights, err := task.Wait(context.Background())
		require.NoError(t, err)
		assert.Empty(t, insights, k)
	}
}

func TestRunIsDeferred(t *testing.T) {
	g := NewGenerator(analyzer(), WithLatency(50*time.Millisecond))
	b := &builder{}
	records := b.many(2, reasoning("short"))

	start := time.Now()
	task, err := g.Run(KindImprovements, records)
	require.NoError(t, err)
	assert.NotEmpty(t, task.ID)
	assert.Equal(t, 2, task.Records)

	select {
	case <-task.Done():
		t.Fatal("task completed before its latency elapsed")
	default:
	}

	insights, err := task.Wait(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	_, ok := find(insights, "Improve Documentation")
	assert.True(t, ok)
}

func TestRunSnapshotsRecords(t *testing.T) {
	g := NewGenerator(analyzer(), WithLatency(20*time.Millisecond))
	b := &builder{}
	records := []domain.Decision{b.rec(reasoning("we already invested"))}

	task, err := g.Run(KindBiases, records)
	require.NoError(t, err)
	records[0].Reasoning = "clean slate"

	insights, err := task.Wait(context.Background())
	require.NoError(t, err)
	_, ok := find(insights, "Sunk Cost Fallacy Alert")
	assert.True(t, ok)
}

func TestWaitHonoursContextButTaskCompletes(t *testing.T) {
	g := NewGenerator(analyzer(), WithLatency(30*time.Millisecond))
	task, err := g.Run(KindPatterns, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = task.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	task.Cancel()
	insights, err := task.Wait(context.Background())
	require.NoError(t, err)
	assert.Empty(t, insights)
}

func TestConcurrentRunsAreIndependent(t *testing.T) {
	g := NewGenerator(analyzer(), WithLatency(10*time.Millisecond))
	b := &builder{}

	first, err := g.Run(KindBiases, []domain.Decision{b.rec(reasoning("already invested"))})
	require.NoError(t, err)
	second, err := g.Run(KindBiases, []domain.Decision{b.rec()})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	a, err := first.Wait(context.Background())
	require.NoError(t, err)
	c, err := second.Wait(context.Background())
	require.NoError(t, err)

	_, ok := find(a, "Sunk Cost Fallacy Alert")
	assert.True(t, ok)
	_, ok = find(c, "Sunk Cost Fallacy Alert")
	assert.False(t, ok)
}

func TestRunUnknownKind(t *testing.T) {
	g := NewGenerator(analyzer())
	_, err := g.Run("vibes", nil)
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, err = g.Analyze("vibes", nil)
	assert.ErrorIs(t, err, ErrUnknownKind)
}
