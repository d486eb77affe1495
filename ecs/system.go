package ecs

// System represents a behavior that operates on entities with specific components.
// User-defined systems should implement this interface and can include Query
// and Singleton fields, which the Scheduler initializes on registration.
// Systems keep no state between frames other than what they store in components.
type System interface {
	Execute(frame *UpdateFrame)
}

// SystemFunc adapts a plain function to the System interface
type SystemFunc func(frame *UpdateFrame)

func (f SystemFunc) Execute(frame *UpdateFrame) {
	f(frame)
}
