// Package debugui provides immediate-mode GUI integration for ECS applications using Dear ImGui.
// It manages ImGui rendering and input state through ECS components and systems.
package debugui

import (
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/rustling/ecs"
)

// ImguiItem is a component that holds a Dear ImGui render function.
// Attach this to entities that should render ImGui widgets each frame.
type ImguiItem struct {
	Render func()
}

// ImguiInputState tracks Dear ImGui's input capture state as a singleton component.
// Use this to determine if ImGui is consuming mouse or keyboard input.
type ImguiInputState struct {
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

// ImguiSystem queries all ImguiItem components and defers their render functions,
// so widgets draw after every other phase has released its borrows.
// It also updates the ImguiInputState singleton with current input capture state.
type ImguiSystem struct {
	Items      ecs.Query[struct{ *ImguiItem }]
	InputState ecs.Singleton[ImguiInputState]
}

// Execute updates input state and queues all ImGui render functions for execution.
func (i *ImguiSystem) Execute(frame *ecs.UpdateFrame) {
	if state := i.InputState.Get(); state != nil {
		io := imgui.CurrentIO()
		state.WantCaptureMouse = io.WantCaptureMouse()
		state.WantCaptureKeyboard = io.WantCaptureKeyboard()
	}

	for item := range i.Items.Values() {
		if item.Render != nil {
			frame.Commands.Defer(item.Render)
		}
	}
}

// RegisterComponents registers the debug UI component and singleton types
func RegisterComponents(registry *ecs.ComponentRegistry) {
	ecs.RegisterComponent[ImguiItem](registry)
	ecs.RegisterComponent[ImguiInputState](registry)
}
