// Package ebiten provides Dear ImGui backend integration for the Ebiten game engine.
package ebiten

import (
	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/AllenDang/cimgui-go/imgui"
)

// ImguiBackend wraps the Ebiten-specific Dear ImGui backend implementation.
// Use this to integrate Dear ImGui rendering into Ebiten game loops.
type ImguiBackend struct {
	*ebitenbackend.EbitenBackend
}

// NewImguiBackend creates the backend and its window. imgui.ini persistence
// is disabled.
func NewImguiBackend(title string, width, height int) ImguiBackend {
	backend := ebitenbackend.NewEbitenBackend()
	backend.CreateWindow(title, width, height)
	imgui.CurrentIO().SetIniFilename("")
	return ImguiBackend{EbitenBackend: backend}
}
