package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressUpdate(t *testing.T) {
	var seen []Counters
	tr := &Progress{}
	tr.OnChange(func(c Counters) { seen = append(seen, c) })
	tr.Start("boot", "demo")
	tr.Update(Delta{Spawned: 2, Dispatched: 1})
	tr.Update(Delta{Completed: 1, Rejected: 1})

	snapshot := tr.Snapshot()
	assert.Equal(t, "demo", snapshot.App)
	assert.Equal(t, "boot", snapshot.BootID)
	assert.Equal(t, 2, snapshot.Spawned)
	assert.Equal(t, 1, snapshot.Completed)
	assert.Equal(t, 1, snapshot.Rejected)
	require.Len(t, seen, 2)
	assert.Equal(t, 0, seen[0].Completed)
	assert.Equal(t, 1, seen[1].Completed)

	tr.OnChange(nil)
	tr.Update(Delta{IdleWaits: 1})
	assert.Len(t, seen, 2)
	assert.Equal(t, 1, tr.Snapshot().IdleWaits)

	var nilTracker *Progress
	nilTracker.Update(Delta{Spawned: 1})
	nilTracker.OnChange(func(Counters) {})
	assert.Equal(t, 0, nilTracker.Snapshot().Spawned)
}
