package debugui

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/rustling/ecs"
)

// maxListedMatches caps the ids listed under a query
const maxListedMatches = 200

type QueryDebuggerCache struct {
	componentTypes []reflect.Type
	typeCount      int
}

// NewQueryDebugger lists the entities holding every selected kind. Clicking
// a match selects it in browser.
func NewQueryDebugger(browser *EntityBrowser) *QueryDebugger {
	return &QueryDebugger{
		selectedComponentTypes: make(map[string]bool),
		browser:                browser,
		cache: &QueryDebuggerCache{
			typeCount: -1,
		},
	}
}

func (qd *QueryDebugger) Render(storage *ecs.Storage) {
	if !imgui.BeginV("Query Debugger", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	qd.rebuildCacheIfNeeded(storage)

	imgui.Text("Select Component Types:")
	imgui.Separator()

	if imgui.Button("Clear All") {
		qd.selectedComponentTypes = make(map[string]bool)
	}

	for _, compType := range qd.cache.componentTypes {
		name := compType.String()
		selected := qd.selectedComponentTypes[name]
		if imgui.Checkbox(name, &selected) {
			if selected {
				qd.selectedComponentTypes[name] = true
			} else {
				delete(qd.selectedComponentTypes, name)
			}
		}
	}

	imgui.Separator()

	selectedTypes := qd.selectedTypes()
	if len(selectedTypes) == 0 {
		imgui.Text("No component types selected")
		imgui.End()
		return
	}

	matching := MatchingEntities(storage, selectedTypes)
	imgui.Text(fmt.Sprintf("Matching Entities: %d", len(matching)))

	if imgui.TreeNodeStr("Matches") {
		for _, id := range matching[:min(len(matching), maxListedMatches)] {
			selectedId, ok := qd.browser.Selected()
			isSelected := ok && selectedId == id
			if imgui.SelectableBoolV(fmt.Sprintf("entity %d", id), isSelected, imgui.SelectableFlagsNone, imgui.NewVec2(0, 0)) {
				qd.browser.Select(id)
			}
		}
		if len(matching) > maxListedMatches {
			imgui.Text(fmt.Sprintf("... %d more", len(matching)-maxListedMatches))
		}
		imgui.TreePop()
	}

	imgui.End()
}

func (qd *QueryDebugger) rebuildCacheIfNeeded(storage *ecs.Storage) {
	types := storage.Registry().Types()
	if qd.cache.typeCount == len(types) {
		return
	}
	qd.cache.typeCount = len(types)

	sort.Slice(types, func(i, j int) bool {
		return types[i].String() < types[j].String()
	})
	qd.cache.componentTypes = types
}

func (qd *QueryDebugger) selectedTypes() []reflect.Type {
	selected := make([]reflect.Type, 0, len(qd.selectedComponentTypes))
	for _, t := range qd.cache.componentTypes {
		if qd.selectedComponentTypes[t.String()] {
			selected = append(selected, t)
		}
	}
	return selected
}

// MatchingEntities returns, in ascending order, the ids of entities that hold
// every one of types.
func MatchingEntities(storage *ecs.Storage, types []reflect.Type) []ecs.EntityId {
	var matching []ecs.EntityId
	for i := range storage.Len() {
		id := ecs.EntityId(i)
		if hasAllTypes(storage, id, types) {
			matching = append(matching, id)
		}
	}
	return matching
}

func hasAllTypes(storage *ecs.Storage, id ecs.EntityId, types []reflect.Type) bool {
	for _, t := range types {
		if !storage.HasComponent(id, t) {
			return false
		}
	}
	return true
}
