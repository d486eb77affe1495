package debugui

import (
	"fmt"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/rustling/ecs"
)

func NewPerformanceStats(scheduler *ecs.Scheduler, historyFrames int) *PerformanceStats {
	historyFrames = max(historyFrames, 1)
	return &PerformanceStats{
		scheduler:     scheduler,
		timer:         NewFrameTimer(),
		historyFrames: historyFrames,
		frameHistory:  make([]float32, historyFrames),
	}
}

// Record adds one frame time to the history
func (ps *PerformanceStats) Record(deltaTime float32) {
	ps.frameHistory[ps.frameIndex] = deltaTime * 1000.0
	ps.frameIndex = (ps.frameIndex + 1) % ps.historyFrames
}

// AverageFrameTime is the mean of the history in milliseconds
func (ps *PerformanceStats) AverageFrameTime() float32 {
	var total float32
	for _, ft := range ps.frameHistory {
		total += ft
	}
	return total / float32(ps.historyFrames)
}

func (ps *PerformanceStats) Render(storage *ecs.Storage) {
	ps.Record(ps.timer.GetDeltaTime())

	if !imgui.BeginV("Performance Stats", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	stats := storage.CollectStats()

	imgui.Text(fmt.Sprintf("Total Entities: %d", stats.EntityCount))
	imgui.Text(fmt.Sprintf("Columns: %d", stats.ColumnCount))
	imgui.Text(fmt.Sprintf("Singletons: %d", stats.SingletonCount))

	avgFrameTime := ps.AverageFrameTime()
	if avgFrameTime > 0 {
		imgui.Text(fmt.Sprintf("Avg Frame Time: %.2f ms (%.0f FPS)", avgFrameTime, 1000.0/avgFrameTime))
	}

	imgui.Separator()
	imgui.Text("Frame Time Graph (ms)")
	imgui.PlotLinesFloatPtr("##frametime", &ps.frameHistory[0], int32(len(ps.frameHistory)))

	if ps.scheduler != nil && imgui.TreeNodeStr("Phase Timings") {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("PhaseStatsTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("Phase")
			imgui.TableSetupColumn("Last")
			imgui.TableSetupColumn("Avg")
			imgui.TableSetupColumn("Max")
			imgui.TableHeadersRow()

			for _, phase := range ps.scheduler.GetStats().Systems {
				imgui.TableNextRow()
				imgui.TableNextColumn()
				imgui.Text(phase.Name)
				imgui.TableNextColumn()
				imgui.Text(phase.LastDuration.String())
				imgui.TableNextColumn()
				imgui.Text(phase.AvgDuration.String())
				imgui.TableNextColumn()
				imgui.Text(phase.MaxDuration.String())
			}

			imgui.EndTable()
		}
		imgui.TreePop()
	}

	if imgui.TreeNodeStr("Column Details") {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("ColumnStatsTable", 3, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("Component")
			imgui.TableSetupColumn("Filled")
			imgui.TableSetupColumn("Slots")
			imgui.TableHeadersRow()

			for _, column := range stats.Columns {
				imgui.TableNextRow()
				imgui.TableNextColumn()
				imgui.Text(column.Name)
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%d", column.Filled))
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%d", column.Len))
			}

			imgui.EndTable()
		}
		imgui.TreePop()
	}

	if imgui.TreeNodeStr("Singleton Details") {
		for _, singletonType := range stats.SingletonTypes {
			imgui.BulletText(singletonType)
		}
		imgui.TreePop()
	}

	imgui.End()
}

type FrameTimer struct {
	lastFrameTime time.Time
}

func NewFrameTimer() *FrameTimer {
	return &FrameTimer{
		lastFrameTime: time.Now(),
	}
}

func (ft *FrameTimer) GetDeltaTime() float32 {
	now := time.Now()
	delta := float32(now.Sub(ft.lastFrameTime).Seconds())
	ft.lastFrameTime = now
	return delta
}
