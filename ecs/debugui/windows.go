package debugui

import "github.com/plus3/rustling/ecs"

// Windows are the stock inspection windows over one storage
type Windows struct {
	Browser   *EntityBrowser
	Inspector *ComponentInspector
	Stats     *PerformanceStats
	Queries   *QueryDebugger
}

func NewWindows(scheduler *ecs.Scheduler) *Windows {
	browser := NewEntityBrowser(100)
	return &Windows{
		Browser:   browser,
		Inspector: NewComponentInspector(browser),
		Stats:     NewPerformanceStats(scheduler, 120),
		Queries:   NewQueryDebugger(browser),
	}
}

// Spawn adds one ImguiItem per window. The registry must include the debug UI
// components, see RegisterComponents.
func (w *Windows) Spawn(storage *ecs.Storage) error {
	renders := []func(*ecs.Storage){
		w.Browser.Render,
		w.Inspector.Render,
		w.Stats.Render,
		w.Queries.Render,
	}
	for _, render := range renders {
		if _, err := storage.Spawn(ImguiItem{Render: func() { render(storage) }}); err != nil {
			return err
		}
	}
	return nil
}
