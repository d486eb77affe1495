package game

import (
	"testing"

	"github.com/plus3/rustling/ecs"
	"github.com/stretchr/testify/require"
)

const frameDt = 1.0 / 60

func newTestWorld(t *testing.T) *World {
	t.Helper()
	tuning, err := DefaultTuning()
	require.NoError(t, err)
	w, err := NewWorld(tuning, 1)
	require.NoError(t, err)
	return w
}

// runPhases steps only the named phases, in the given order, over w's store
func runPhases(t *testing.T, w *World, dt float64, phases ...string) {
	t.Helper()
	scheduler := ecs.NewScheduler(w.Storage)
	for _, phase := range phases {
		system := NewSystem(phase)
		require.NotNil(t, system, phase)
		scheduler.Register(phase, system)
	}
	require.NoError(t, scheduler.Once(dt))
}

func spawnPlayer(t *testing.T, w *World, x, y float64) ecs.EntityId {
	t.Helper()
	id, err := w.SpawnPlayer(Vec2{X: x, Y: y})
	require.NoError(t, err)
	return id
}

func spawnEnemy(t *testing.T, w *World, kind EnemyKind, x, y float64) ecs.EntityId {
	t.Helper()
	id, err := w.SpawnEnemy(kind, Vec2{X: x, Y: y})
	require.NoError(t, err)
	return id
}

func mustMut[T any](t *testing.T, w *World, id ecs.EntityId) *T {
	t.Helper()
	c, err := ecs.GetMut[T](w.Storage, id)
	require.NoError(t, err)
	require.NotNil(t, c)
	return c
}

func mustGet[T any](t *testing.T, w *World, id ecs.EntityId) T {
	t.Helper()
	c, ok, err := ecs.Get[T](w.Storage, id)
	require.NoError(t, err)
	require.True(t, ok)
	return c
}
