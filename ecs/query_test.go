package ecs_test

import (
	"testing"

	"github.com/plus3/rustling/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type movingEntity struct {
	Id       ecs.EntityId
	Position *Position
	Velocity Velocity
}

func TestQuery(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())

	spawn(t, storage, Position{X: 1, Y: 2}, Velocity{DX: 0.5, DY: 0.5})
	spawn(t, storage, Position{X: 3, Y: 4}, Velocity{DX: 1.0, DY: 1.0})
	spawn(t, storage, Position{X: 5, Y: 6}, Velocity{DX: 1.5, DY: 1.5}, Health{Current: 100, Max: 100})
	spawn(t, storage, Position{X: 7, Y: 8})

	query := ecs.NewQuery[movingEntity](storage)

	t.Run("matches entities with every required kind", func(t *testing.T) {
		var ids []ecs.EntityId
		for id := range query.Iter() {
			ids = append(ids, id)
		}
		assert.Equal(t, []ecs.EntityId{0, 1, 2}, ids)
		assert.Equal(t, 3, query.Count())
	})

	t.Run("multiple iterations are consistent", func(t *testing.T) {
		var first, second []ecs.EntityId
		for id := range query.Iter() {
			first = append(first, id)
		}
		for id := range query.Iter() {
			second = append(second, id)
		}
		assert.Equal(t, first, second)
	})

	t.Run("cache reflects new spawns", func(t *testing.T) {
		spawn(t, storage, Position{X: 9}, Velocity{DX: 2})
		assert.Equal(t, 4, query.Count())
	})

	t.Run("cache reflects late attaches", func(t *testing.T) {
		require.NoError(t, storage.Attach(3, Velocity{DX: 3}))
		assert.Equal(t, 5, query.Count())

		var ids []ecs.EntityId
		for id := range query.Iter() {
			ids = append(ids, id)
		}
		assert.Equal(t, []ecs.EntityId{0, 1, 2, 3, 4}, ids)
	})

	t.Run("mutations through pointers persist", func(t *testing.T) {
		for _, item := range query.Iter() {
			item.Position.X += item.Velocity.DX
		}
		pos, _, _ := ecs.Get[Position](storage, 0)
		assert.Equal(t, float32(1.5), pos.X)
	})

	t.Run("values and first", func(t *testing.T) {
		count := 0
		for item := range query.Values() {
			assert.NotNil(t, item.Position)
			count++
		}
		assert.Equal(t, 5, count)

		first, ok := query.First()
		require.True(t, ok)
		assert.Equal(t, ecs.EntityId(0), first.Id)
	})
}

func TestQueryEmpty(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	spawn(t, storage, Name{Value: "lonely"})

	query := ecs.NewQuery[movingEntity](storage)
	_, ok := query.First()
	assert.False(t, ok)
	assert.Equal(t, 0, query.Count())
}

func TestQueryUninitializedPanics(t *testing.T) {
	var query ecs.Query[movingEntity]
	assert.Panics(t, func() {
		for range query.Iter() {
		}
	})
}

func TestQueryCommandsDuringIteration(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	for i := range 3 {
		spawn(t, storage, Position{X: float32(i)}, Velocity{})
	}

	query := ecs.NewQuery[movingEntity](storage)
	commands := &ecs.Commands{}
	for id := range query.Iter() {
		commands.Attach(id, Health{Current: 1})
		commands.Spawn(Position{}, Velocity{})
	}
	require.NoError(t, commands.Flush(storage))

	assert.Equal(t, 6, query.Count())
	health, ok, err := ecs.Get[Health](storage, 2)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, health.Current)
}

func TestQueryFirstAndWithFirst(t *testing.T) {
	storage := ecs.NewStorage(newTestRegistry())
	spawn(t, storage, Position{X: 7})
	id := spawn(t, storage, Position{X: 1}, Velocity{DX: 2})
	spawn(t, storage, Position{X: 3}, Velocity{DX: 4})

	query := ecs.NewQuery[movingEntity](storage)

	first, ok := query.First()
	require.True(t, ok)
	assert.Equal(t, id, first.Id)
	_, err := ecs.GetMut[Position](storage, id)
	assert.NoError(t, err, "First releases its borrow before returning")

	called := query.WithFirst(func(item movingEntity) {
		assert.Equal(t, id, item.Id)
		_, err := ecs.GetMut[Position](storage, id)
		assert.ErrorIs(t, err, ecs.ErrBorrowConflict, "borrow is held while fn runs")
		item.Position.X = 10
	})
	assert.True(t, called)

	pos, _, err := ecs.Get[Position](storage, id)
	require.NoError(t, err)
	assert.Equal(t, float32(10), pos.X)
	_, err = ecs.GetMut[Position](storage, id)
	assert.NoError(t, err)

	empty := ecs.NewQuery[struct{ Health *Health }](storage)
	assert.False(t, empty.WithFirst(func(struct{ Health *Health }) {
		t.Fatal("no match expected")
	}))
}
