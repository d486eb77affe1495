package main

import (
	"fmt"
	"io"
	"runtime"
	"text/template"
	"time"

	"github.com/plus3/rustling/ecs"
	"github.com/plus3/rustling/game"
)

type Report struct {
	// Configuration
	RunID    string
	Seed     uint64
	Map      string
	Duration time.Duration
	Entities int
	Enemies  int

	// Results
	Frames        int64
	SimulatedTime time.Duration
	TotalTime     time.Duration
	FrameTime     Stats
	Phases        []ecs.SystemStats
	EnemyStates   []StateCount
	MemStatsStart runtime.MemStats
	MemStatsEnd   runtime.MemStats
}

type StateCount struct {
	State game.AIState
	Count int
}

// stateCounts lists every AI state in declaration order, zeros included
func stateCounts(counts map[game.AIState]int) []StateCount {
	states := []game.AIState{game.StateWander, game.StateChasePlayer, game.StateAttack, game.StateDead}
	out := make([]StateCount, 0, len(states))
	for _, state := range states {
		out = append(out, StateCount{State: state, Count: counts[state]})
	}
	return out
}

type Stats struct {
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	Samples []time.Duration
}

func (s *Stats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}

	var total time.Duration
	s.Min = s.Samples[0]
	s.Max = s.Samples[0]

	for _, sample := range s.Samples {
		s.Min = min(s.Min, sample)
		s.Max = max(s.Max, sample)
		total += sample
	}
	s.Avg = total / time.Duration(len(s.Samples))
}

const reportTemplate = `
# Simulation Report

## Run
- **Run ID:** {{.RunID}}
- **Seed:** {{.Seed}}
- **Arena:** {{if .Map}}{{.Map}}{{else}}generated{{end}}
- **Run Duration:** {{.Duration}}
- **Entities:** {{.Entities}} ({{.Enemies}} enemies)

## Frames
- **Frames:** {{.Frames}}
- **Simulated Time:** {{.SimulatedTime}}
- **Wall Time:** {{.TotalTime}}
- **Frame Time:**
  - **Avg:** {{.FrameTime.Avg}}
  - **Min:** {{.FrameTime.Min}}
  - **Max:** {{.FrameTime.Max}}

## Phases
| phase | runs | avg | min | max | total |
|---|---|---|---|---|---|
{{- range .Phases}}
| {{.Name}} | {{.ExecutionCount}} | {{.AvgDuration}} | {{.MinDuration}} | {{.MaxDuration}} | {{.TotalDuration}} |
{{- end}}

## Enemies
{{- range .EnemyStates}}
- {{.State}}: {{.Count}}
{{- end}}

## Memory Usage
- Heap Alloc:     {{mb .MemStatsStart.HeapAlloc}} MB (start) -> {{mb .MemStatsEnd.HeapAlloc}} MB (end)
- Total Alloc:    {{mb (bsub .MemStatsEnd.TotalAlloc .MemStatsStart.TotalAlloc)}} MB during the run
- Sys Memory:     {{mb .MemStatsEnd.Sys}} MB
- Num GC:         {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}
- GC Pause:       {{ns (bsub .MemStatsEnd.PauseTotalNs .MemStatsStart.PauseTotalNs)}}
`

var reportFuncs = template.FuncMap{
	"mb": func(v any) string {
		switch val := v.(type) {
		case uint64:
			return fmt.Sprintf("%.2f", float64(val)/1024/1024)
		case int64:
			return fmt.Sprintf("%.2f", float64(val)/1024/1024)
		default:
			return "N/A"
		}
	},
	"bsub": func(a, b uint64) int64 {
		return int64(a) - int64(b)
	},
	"usub": func(a, b uint32) uint32 {
		return a - b
	},
	"ns": func(ns int64) string {
		return time.Duration(ns).String()
	},
}

var reportTmpl = template.Must(template.New("report").Funcs(reportFuncs).Parse(reportTemplate))

func (r *Report) Generate(w io.Writer) error {
	return reportTmpl.Execute(w, r)
}
