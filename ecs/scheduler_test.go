package ecs_test

import (
	"context"
	"testing"
	"time"

	"github.com/plus3/rustling/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MovementSystem struct {
	Entities ecs.Query[struct {
		*Position
		Velocity
	}]
	ExecuteCount int
}

func (s *MovementSystem) Execute(frame *ecs.UpdateFrame) {
	s.ExecuteCount++
	for _, item := range s.Entities.Iter() {
		item.Position.X += item.Velocity.DX * float32(frame.DeltaTime)
		item.Position.Y += item.Velocity.DY * float32(frame.DeltaTime)
	}
}

type HealthSystem struct {
	Entities ecs.Query[struct {
		*Health
	}]
	Bonus        ecs.Singleton[Score]
	ExecuteCount int
	TotalHealth  float64
}

func (s *HealthSystem) Execute(frame *ecs.UpdateFrame) {
	s.ExecuteCount++
	s.TotalHealth = 0
	for _, item := range s.Entities.Iter() {
		s.TotalHealth += float64(item.Health.Current)
	}
	if bonus := s.Bonus.Get(); bonus != nil {
		s.TotalHealth += float64(*bonus)
	}
}

type brokenSystem struct {
	Entities ecs.Query[struct{ U *Unregistered }]
}

func (s *brokenSystem) Execute(frame *ecs.UpdateFrame) {}

func TestScheduler(t *testing.T) {
	registry := newTestRegistry()

	t.Run("phase order and query initialization", func(t *testing.T) {
		storage := ecs.NewStorage(registry)
		scheduler := ecs.NewScheduler(storage)

		var order []string
		record := func(name string) ecs.System {
			return ecs.SystemFunc(func(frame *ecs.UpdateFrame) {
				assert.Equal(t, name, frame.Phase)
				order = append(order, name)
			})
		}

		movement := &MovementSystem{}
		scheduler.Register("input", record("input"))
		scheduler.Register("movement", movement)
		scheduler.Register("animation", record("animation"))

		assert.Equal(t, []string{"input", "movement", "animation"}, scheduler.Phases())

		require.NoError(t, scheduler.Once(1.0))
		require.NoError(t, scheduler.Once(1.0))

		assert.Equal(t, []string{"input", "animation", "input", "animation"}, order)
		assert.Equal(t, 2, movement.ExecuteCount)
	})

	t.Run("duplicate phase panics", func(t *testing.T) {
		scheduler := ecs.NewScheduler(ecs.NewStorage(registry))
		scheduler.Register("input", &MovementSystem{})
		assert.Panics(t, func() { scheduler.Register("input", &HealthSystem{}) })
	})

	t.Run("bad query declaration names the field", func(t *testing.T) {
		scheduler := ecs.NewScheduler(ecs.NewStorage(registry))
		assert.PanicsWithValue(t,
			"initializing brokenSystem.Entities: component type ecs_test.Unregistered not registered",
			func() { scheduler.Register("broken", &brokenSystem{}) })
	})

	t.Run("custom state and singletons", func(t *testing.T) {
		storage := ecs.NewStorage(registry)
		scheduler := ecs.NewScheduler(storage)

		spawn(t, storage, Health{Current: 50, Max: 100})
		spawn(t, storage, Health{Current: 75, Max: 100})

		health := &HealthSystem{}
		scheduler.Register("health", health)

		require.NoError(t, scheduler.Once(1.0))
		assert.Equal(t, 125.0, health.TotalHealth)

		spawn(t, storage, Health{Current: 25, Max: 100})
		storage.AddSingleton(Score(5))

		require.NoError(t, scheduler.Once(1.0))
		assert.Equal(t, 155.0, health.TotalHealth)
	})

	t.Run("delta time reaches systems", func(t *testing.T) {
		storage := ecs.NewStorage(registry)
		scheduler := ecs.NewScheduler(storage)

		id := spawn(t, storage, Position{X: 0, Y: 0}, Velocity{DX: 10, DY: 20})

		scheduler.Register("movement", &MovementSystem{})
		require.NoError(t, scheduler.Once(0.5))

		pos, _, _ := ecs.Get[Position](storage, id)
		assert.Equal(t, Position{X: 5, Y: 10}, pos)
	})

	t.Run("commands flushed between frames", func(t *testing.T) {
		storage := ecs.NewStorage(registry)
		scheduler := ecs.NewScheduler(storage)

		spawner := &testSpawnSystem{}
		movement := &MovementSystem{}
		scheduler.Register("spawn", spawner)
		scheduler.Register("movement", movement)

		require.NoError(t, scheduler.Once(1.0))
		assert.Equal(t, 1, movement.Entities.Count())
	})

	t.Run("context cancellation stops run", func(t *testing.T) {
		storage := ecs.NewStorage(registry)
		scheduler := ecs.NewScheduler(storage)

		movement := &MovementSystem{}
		scheduler.Register("movement", movement)

		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan error)
		go func() {
			done <- scheduler.Run(ctx, time.Millisecond)
		}()

		time.Sleep(20 * time.Millisecond)
		cancel()

		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("scheduler did not stop after context cancellation")
		}

		assert.Greater(t, movement.ExecuteCount, 0)
	})
}

type sleepySystem struct {
	executeCount int
	sleepDur     time.Duration
}

func (s *sleepySystem) Execute(frame *ecs.UpdateFrame) {
	s.executeCount++
	time.Sleep(s.sleepDur)
}

func TestSchedulerStats(t *testing.T) {
	scheduler := ecs.NewScheduler(ecs.NewStorage(newTestRegistry()))

	stats := scheduler.GetStats()
	assert.Equal(t, 0, stats.SystemCount)
	assert.Equal(t, int64(0), stats.TotalExecutions)

	sys1 := &sleepySystem{sleepDur: time.Millisecond}
	sys2 := &sleepySystem{sleepDur: 2 * time.Millisecond}
	scheduler.Register("first", sys1)
	scheduler.Register("second", sys2)

	stats = scheduler.GetStats()
	assert.Equal(t, 2, stats.SystemCount)
	for _, sysStats := range stats.Systems {
		assert.Zero(t, sysStats.MinDuration, "phases that never ran report zero")
	}

	for range 3 {
		require.NoError(t, scheduler.Once(0.016))
	}

	stats = scheduler.GetStats()
	assert.Equal(t, int64(6), stats.TotalExecutions)
	require.Len(t, stats.Systems, 2)
	assert.Equal(t, "first", stats.Systems[0].Name)
	assert.Equal(t, "second", stats.Systems[1].Name)

	for _, sysStats := range stats.Systems {
		assert.Equal(t, int64(3), sysStats.ExecutionCount)
		assert.NotZero(t, sysStats.MinDuration)
		assert.NotZero(t, sysStats.LastDuration)
		assert.LessOrEqual(t, sysStats.MinDuration, sysStats.AvgDuration)
		assert.LessOrEqual(t, sysStats.AvgDuration, sysStats.MaxDuration)
		assert.Equal(t, sysStats.TotalDuration/3, sysStats.AvgDuration)
	}
	assert.GreaterOrEqual(t, stats.Systems[1].MinDuration, 2*time.Millisecond)

	assert.Equal(t, 3, sys1.executeCount)
	assert.Equal(t, 3, sys2.executeCount)
}
