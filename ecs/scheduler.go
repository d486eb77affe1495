package ecs

import (
	"context"
	"fmt"
	"reflect"
	"time"
)

// SchedulerStats provides statistics about scheduler execution.
type SchedulerStats struct {
	SystemCount     int
	TotalExecutions int64
	Systems         []SystemStats
}

// SystemStats provides execution statistics for a single phase.
type SystemStats struct {
	Name           string
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type systemStatsInternal struct {
	executionCount int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

type phase struct {
	name   string
	system System
	stats  systemStatsInternal
}

// storageInitializer is implemented by Query and Singleton fields
type storageInitializer interface {
	Init(storage *Storage)
}

// Scheduler runs named phases in registration order, once per frame.
// The order is data: Phases reports it and tests can assert on it.
type Scheduler struct {
	storage *Storage
	phases  []*phase
}

// NewScheduler creates a new scheduler for the given storage.
func NewScheduler(storage *Storage) *Scheduler {
	return &Scheduler{
		storage: storage,
	}
}

// Register appends a named phase and initializes the system's Query and
// Singleton fields. Phase names must be unique.
func (s *Scheduler) Register(name string, system System) {
	for _, p := range s.phases {
		if p.name == name {
			panic("phase already registered: " + name)
		}
	}
	s.initializeQueries(system)
	s.phases = append(s.phases, &phase{
		name:   name,
		system: system,
		stats:  systemStatsInternal{minDuration: time.Duration(1<<63 - 1)},
	})
}

// Phases returns the phase names in execution order
func (s *Scheduler) Phases() []string {
	names := make([]string, len(s.phases))
	for i, p := range s.phases {
		names[i] = p.name
	}
	return names
}

func (s *Scheduler) initializeQueries(system System) {
	systemValue := reflect.ValueOf(system)
	if systemValue.Kind() == reflect.Ptr {
		systemValue = systemValue.Elem()
	}

	if systemValue.Kind() != reflect.Struct {
		return
	}

	systemType := systemValue.Type()

	for i := 0; i < systemValue.NumField(); i++ {
		field := systemValue.Field(i)
		if !field.CanSet() || field.Kind() != reflect.Struct {
			continue
		}

		initializer, ok := field.Addr().Interface().(storageInitializer)
		if !ok {
			continue
		}
		func() {
			defer func() {
				if r := recover(); r != nil {
					panic(fmt.Sprintf("initializing %s.%s: %v", systemType.Name(), systemType.Field(i).Name, r))
				}
			}()
			initializer.Init(s.storage)
		}()
	}
}

// Once executes all registered phases once with the given delta time, then
// flushes the commands they queued.
func (s *Scheduler) Once(dt float64) error {
	frame := newUpdateFrame(dt, s.storage)

	for _, p := range s.phases {
		frame.Phase = p.name

		start := time.Now()
		p.system.Execute(frame)
		duration := time.Since(start)

		stats := &p.stats
		stats.executionCount++
		stats.lastDuration = duration
		stats.totalDuration += duration

		if duration < stats.minDuration {
			stats.minDuration = duration
		}
		if duration > stats.maxDuration {
			stats.maxDuration = duration
		}
	}

	frame.Phase = ""
	if err := frame.Commands.Flush(s.storage); err != nil {
		return fmt.Errorf("ecs: flush commands: %w", err)
	}
	return nil
}

// Run executes all phases repeatedly at the given interval until the context
// is cancelled. Each pass receives the measured time since the previous one.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			dt := now.Sub(lastTime).Seconds()
			lastTime = now
			if err := s.Once(dt); err != nil {
				return err
			}
		}
	}
}

// GetStats returns statistics about phase execution.
func (s *Scheduler) GetStats() *SchedulerStats {
	stats := &SchedulerStats{
		SystemCount: len(s.phases),
		Systems:     make([]SystemStats, len(s.phases)),
	}

	var totalExecs int64
	for i, p := range s.phases {
		internal := p.stats
		avgDuration := time.Duration(0)
		minDuration := internal.minDuration
		if internal.executionCount > 0 {
			avgDuration = internal.totalDuration / time.Duration(internal.executionCount)
		} else {
			minDuration = 0
		}

		stats.Systems[i] = SystemStats{
			Name:           p.name,
			ExecutionCount: internal.executionCount,
			MinDuration:    minDuration,
			MaxDuration:    internal.maxDuration,
			AvgDuration:    avgDuration,
			LastDuration:   internal.lastDuration,
			TotalDuration:  internal.totalDuration,
		}
		totalExecs += internal.executionCount
	}

	stats.TotalExecutions = totalExecs
	return stats
}
