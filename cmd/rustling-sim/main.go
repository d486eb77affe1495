package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/profile"
	"github.com/plus3/rustling/game"
	"github.com/plus3/rustling/tiled"
)

// frameDt is the fixed simulated step of one frame
const frameDt = 1.0 / 60

// options are the command line settings of one run
type options struct {
	Duration   time.Duration
	Enemies    int
	MapPath    string
	TuningPath string
	Seed       uint64
	Profile    string
	ProfileDir string
}

func main() {
	var opts options
	flag.DurationVar(&opts.Duration, "duration", 10*time.Second, "The total wall time the simulation should run for.")
	flag.IntVar(&opts.Enemies, "enemies", 200, "Enemies to spawn on top of the ones the map places.")
	flag.StringVar(&opts.MapPath, "map", "", "Tiled JSON map to run on. Empty generates an arena.")
	flag.StringVar(&opts.TuningPath, "tuning", "", "YAML tuning file. Empty uses the built-in tuning.")
	flag.Uint64Var(&opts.Seed, "seed", 1, "Seed for the arena and enemy wandering.")
	flag.StringVar(&opts.Profile, "profile", "", "Write a cpu or mem profile.")
	flag.StringVar(&opts.ProfileDir, "profile-dir", ".", "Directory profiles are written to.")
	flag.Parse()

	if err := simulate(opts, os.Stdout); err != nil {
		log.Fatalf("Simulation failed: %v", err)
	}
	log.Println("Simulation complete.")
}

// startProfile starts the profiler named by mode. The returned stop func is
// never nil.
func startProfile(mode, dir string) (func(), error) {
	switch mode {
	case "":
		return func() {}, nil
	case "cpu":
		return profile.Start(profile.CPUProfile, profile.ProfilePath(dir), profile.NoShutdownHook).Stop, nil
	case "mem":
		return profile.Start(profile.MemProfileAllocs, profile.ProfilePath(dir), profile.NoShutdownHook).Stop, nil
	}
	return nil, fmt.Errorf("unknown profile mode %q, want cpu or mem", mode)
}

// simulate builds the arena, runs it for opts.Duration and writes the report
// to out. The profile is flushed on every return path.
func simulate(opts options, out io.Writer) error {
	stop, err := startProfile(opts.Profile, opts.ProfileDir)
	if err != nil {
		return err
	}
	defer stop()

	runID := uuid.New().String()
	log.Printf("Starting simulation %s...\n", runID)

	tuning, err := game.LoadTuning(opts.TuningPath)
	if err != nil {
		return fmt.Errorf("load tuning: %w", err)
	}

	arena := Arena{Tuning: tuning, Seed: opts.Seed, Enemies: opts.Enemies}
	if opts.MapPath != "" {
		if arena.Map, err = tiled.Load(opts.MapPath); err != nil {
			return fmt.Errorf("load map: %w", err)
		}
	}
	world, err := arena.Build()
	if err != nil {
		return fmt.Errorf("build arena: %w", err)
	}
	log.Printf("Arena ready: %d entities, %d obstacles\n", world.Storage.Len(), len(world.Obstacles().Rects))

	report := &Report{
		RunID:    runID,
		Seed:     opts.Seed,
		Map:      opts.MapPath,
		Duration: opts.Duration,
		Entities: world.Storage.Len(),
	}
	for _, count := range world.EnemyStates() {
		report.Enemies += count
	}

	runtime.ReadMemStats(&report.MemStatsStart)

	log.Printf("Running simulation for %s...\n", opts.Duration)
	ctx, cancel := context.WithTimeout(context.Background(), opts.Duration)
	defer cancel()

	if err := run(ctx, world, script{legFrames: 90, attackEvery: 20}, report); err != nil {
		return err
	}

	runtime.ReadMemStats(&report.MemStatsEnd)
	log.Println("Simulation finished.")

	fmt.Fprintln(out, "\n\n--- Simulation Report ---")
	if err := report.Generate(out); err != nil {
		return fmt.Errorf("generate report: %w", err)
	}
	fmt.Fprintln(out, "--- End of Report ---")
	return nil
}

// run steps world with scripted input until ctx is done, recording frame
// times, phase timings and the final enemy states into report.
func run(ctx context.Context, world *game.World, input script, report *Report) error {
	startTime := time.Now()
	var frame int

Loop:
	for {
		select {
		case <-ctx.Done():
			break Loop
		default:
			input.Apply(frame, world.Actions())

			updateStart := time.Now()
			if err := world.Step(frameDt); err != nil {
				return err
			}
			report.FrameTime.Samples = append(report.FrameTime.Samples, time.Since(updateStart))
			frame++
		}
	}

	report.TotalTime = time.Since(startTime)
	report.Frames = int64(frame)
	report.SimulatedTime = time.Duration(float64(frame) * frameDt * float64(time.Second))
	report.FrameTime.Finalize()
	report.Phases = world.Scheduler.GetStats().Systems
	report.EnemyStates = stateCounts(world.EnemyStates())
	return nil
}
