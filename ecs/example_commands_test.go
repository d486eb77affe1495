package ecs_test

import (
	"fmt"

	"github.com/plus3/rustling/ecs"
)

// ExampleCommands demonstrates deferring structural changes. Systems can't
// create entities while a query iterates, so they queue the work and the
// scheduler applies it after the last phase of the frame.
func ExampleCommands() {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Health](registry)
	storage := ecs.NewStorage(registry)

	storage.Spawn(Position{X: 1}, Health{Current: 0})
	storage.Spawn(Position{X: 2}, Health{Current: 10})

	scheduler := ecs.NewScheduler(storage)
	scheduler.Register("respawn", ecs.SystemFunc(func(frame *ecs.UpdateFrame) {
		for _, item := range ecs.NewView[struct {
			Position Position
			Health   Health
		}](frame.Storage).Iter() {
			if item.Health.Current == 0 {
				frame.Commands.Spawn(Position{X: item.Position.X}, Health{Current: 10})
			}
		}
		frame.Commands.Defer(func() {
			fmt.Println("entities after flush:", frame.Storage.Len())
		})
	}))

	fmt.Println("entities before:", storage.Len())
	scheduler.Once(0.016)

	// Output:
	// entities before: 2
	// entities after flush: 3
}
