package ecs

// Commands provides a buffer for deferred ECS operations that are executed at the end of a frame.
// Structural changes (new entities, first component of a kind) are not
// allowed while a query iterates, so systems queue them here instead.
type Commands struct {
	spawns  []spawnCommand
	attachs []attachCommand
	defers  []deferCommand
}

func newCommands() *Commands {
	return &Commands{}
}

type deferCommand struct {
	fn func()
}

type spawnCommand struct {
	components []any
}

type attachCommand struct {
	entity    EntityId
	component any
}

// Defer queues a function execution operation.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, deferCommand{fn: fn})
}

// Spawn queues an entity spawn operation with the given components.
func (c *Commands) Spawn(components ...any) {
	c.spawns = append(c.spawns, spawnCommand{components: components})
}

// Attach queues a component attach operation.
func (c *Commands) Attach(entity EntityId, component any) {
	c.attachs = append(c.attachs, attachCommand{
		entity:    entity,
		component: component,
	})
}

// Flush flushes all commands to the provided storage, resetting the buffer
// state. The first failing operation stops the flush and is returned; the
// remaining commands are dropped.
func (c *Commands) Flush(storage *Storage) error {
	defer c.reset()

	for _, cmd := range c.attachs {
		if err := storage.Attach(cmd.entity, cmd.component); err != nil {
			return err
		}
	}

	for _, cmd := range c.spawns {
		if _, err := storage.Spawn(cmd.components...); err != nil {
			return err
		}
	}

	for _, df := range c.defers {
		df.fn()
	}
	return nil
}

func (c *Commands) reset() {
	c.spawns = c.spawns[:0]
	c.attachs = c.attachs[:0]
	c.defers = c.defers[:0]
}
