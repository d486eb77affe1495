package debugui

import (
	"github.com/plus3/rustling/ecs"
)

type EntityBrowser struct {
	cache              *EntityBrowserCache
	selectedEntityId   ecs.EntityId
	hasSelection       bool
	filterText         string
	maxEntitiesPerPage int
	currentPage        int
}

type ComponentInspector struct {
	browser *EntityBrowser
}

type PerformanceStats struct {
	scheduler     *ecs.Scheduler
	timer         *FrameTimer
	historyFrames int
	frameHistory  []float32
	frameIndex    int
}

type QueryDebugger struct {
	selectedComponentTypes map[string]bool
	browser                *EntityBrowser
	cache                  *QueryDebuggerCache
}
