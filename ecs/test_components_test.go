package ecs_test

import (
	"testing"

	"github.com/plus3/rustling/ecs"
	"github.com/stretchr/testify/require"
)

// Common test component types
type Position struct {
	X, Y float32
}

type Velocity struct {
	DX, DY float32
}

type Name struct {
	Value string
}

type Health struct {
	Current int
	Max     int
}

type PlayerController struct{}

type AI struct {
	State int
}

// Custom primitive types for testing non-struct components
type Score int32
type Tag string
type Temperature float64

type Inventory struct {
	Items []string
}

// Unregistered is never added to the test registry
type Unregistered struct {
	Value int
}

func newTestRegistry() *ecs.ComponentRegistry {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Velocity](registry)
	ecs.RegisterComponent[Name](registry)
	ecs.RegisterComponent[Health](registry)
	ecs.RegisterComponent[PlayerController](registry)
	ecs.RegisterComponent[AI](registry)
	ecs.RegisterComponent[Score](registry)
	ecs.RegisterComponent[Tag](registry)
	ecs.RegisterComponent[Temperature](registry)
	ecs.RegisterComponent[Inventory](registry)
	return registry
}

// spawn creates an entity and fails the test if any attach is rejected
func spawn(t testing.TB, storage *ecs.Storage, components ...any) ecs.EntityId {
	t.Helper()
	id, err := storage.Spawn(components...)
	require.NoError(t, err)
	return id
}
