package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/plus3/rustling/ecs"
	"github.com/plus3/rustling/game"
	"github.com/plus3/rustling/tiled"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMap = `{
  "width": 20, "height": 15, "tilewidth": 16, "tileheight": 16,
  "layers": [
    {"name": "collisions", "type": "objectgroup", "objects": [
      {"id": 1, "x": 0, "y": 0, "width": 320, "height": 16}
    ]},
    {"name": "animated", "type": "objectgroup", "objects": []},
    {"name": "entities", "type": "objectgroup", "objects": [
      {"id": 2, "name": "player", "x": 100, "y": 100},
      {"id": 3, "name": "slime", "x": 200, "y": 150}
    ]}
  ]
}`

func testTuning(t *testing.T) *game.Tuning {
	t.Helper()
	tuning, err := game.DefaultTuning()
	require.NoError(t, err)
	return tuning
}

type enemyBody struct {
	Position game.Position
	Collider game.Collider
	Enemy    game.Enemy
}

func TestArenaGenerated(t *testing.T) {
	world, err := Arena{Tuning: testTuning(t), Seed: 7, Enemies: 40}.Build()
	require.NoError(t, err)

	bounds := *world.Bounds()
	rects := world.Obstacles().Rects
	require.GreaterOrEqual(t, len(rects), 4)
	assert.Equal(t, walls(bounds), rects[:4])

	body, ok := world.PlayerBody()
	require.True(t, ok)
	assert.Equal(t, game.Position{X: bounds.Width / 2, Y: bounds.Height / 2}, body.Position)
	assert.False(t, world.Obstacles().Blocked(body.Collider.Rect(body.Position.Vec())), "player starts on free ground")

	enemies := ecs.NewQuery[enemyBody](world.Storage)
	assert.Equal(t, 40, enemies.Count())
	kinds := map[game.EnemyKind]int{}
	for enemy := range enemies.Values() {
		kinds[enemy.Enemy.Kind]++
		box := enemy.Collider.Rect(enemy.Position.Vec())
		assert.False(t, world.Obstacles().Blocked(box))
	}
	assert.Equal(t, map[game.EnemyKind]int{game.EnemySkeleton: 20, game.EnemySlime: 20}, kinds)
}

func TestArenaIsDeterministic(t *testing.T) {
	a, err := Arena{Tuning: testTuning(t), Seed: 3, Enemies: 10}.Build()
	require.NoError(t, err)
	b, err := Arena{Tuning: testTuning(t), Seed: 3, Enemies: 10}.Build()
	require.NoError(t, err)
	assert.Equal(t, a.Obstacles().Rects, b.Obstacles().Rects)

	var pa, pb []game.Position
	for enemy := range ecs.NewQuery[enemyBody](a.Storage).Values() {
		pa = append(pa, enemy.Position)
	}
	for enemy := range ecs.NewQuery[enemyBody](b.Storage).Values() {
		pb = append(pb, enemy.Position)
	}
	assert.Equal(t, pa, pb)
}

func TestArenaFromMap(t *testing.T) {
	m, err := tiled.Parse([]byte(testMap))
	require.NoError(t, err)

	world, err := Arena{Tuning: testTuning(t), Map: m, Seed: 1, Enemies: 3}.Build()
	require.NoError(t, err)
	assert.Equal(t, game.WorldBounds{Width: 320, Height: 240}, *world.Bounds())
	assert.Len(t, world.Obstacles().Rects, 1)
	assert.Equal(t, 4, ecs.NewQuery[enemyBody](world.Storage).Count())
}

func TestWallsAndClearSpawn(t *testing.T) {
	bounds := game.WorldBounds{Width: 320, Height: 240}
	obstacles := &game.Obstacles{Rects: append(walls(bounds), game.Rect{X: 150, Y: 110, W: 20, H: 20})}
	for _, wall := range obstacles.Rects[:4] {
		assert.True(t, wall.X == 0 || wall.Right() == bounds.Width)
		assert.True(t, wall.Y == 0 || wall.Bottom() == bounds.Height)
	}

	collider := game.Collider{Offset: game.Vec2{X: 5, Y: 5}, Size: game.Vec2{X: 10, Y: 10}}
	clearSpawn(obstacles, game.Vec2{X: 150, Y: 110}, collider)
	assert.Len(t, obstacles.Rects, 4, "only the obstacle under the spawn is removed")
}

func TestScript(t *testing.T) {
	s := script{legFrames: 10, attackEvery: 4}
	var actions game.Actions

	legs := map[int]game.Action{0: game.ActionRight, 15: game.ActionDown, 25: game.ActionLeft, 39: game.ActionUp, 40: game.ActionRight}
	for frame, want := range legs {
		s.Apply(frame, &actions)
		for _, action := range squareLegs {
			assert.Equal(t, action == want, actions.Held(action), "frame %d %s", frame, action)
		}
	}

	s.Apply(8, &actions)
	assert.True(t, actions.Held(game.ActionAttack))
	s.Apply(9, &actions)
	assert.False(t, actions.Held(game.ActionAttack), "released between swings")
}

func TestRunAndReport(t *testing.T) {
	world, err := Arena{Tuning: testTuning(t), Seed: 5, Enemies: 20}.Build()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	report := &Report{RunID: "run-1", Seed: 5, Duration: 50 * time.Millisecond, Entities: world.Storage.Len(), Enemies: 20}
	require.NoError(t, run(ctx, world, script{legFrames: 30, attackEvery: 10}, report))

	assert.Positive(t, report.Frames)
	assert.Len(t, report.FrameTime.Samples, int(report.Frames))
	assert.LessOrEqual(t, report.FrameTime.Min, report.FrameTime.Max)
	require.Len(t, report.Phases, len(game.Phases))
	for i, phase := range report.Phases {
		assert.Equal(t, game.Phases[i], phase.Name)
		assert.Equal(t, report.Frames, phase.ExecutionCount)
	}

	total := 0
	for _, state := range report.EnemyStates {
		total += state.Count
	}
	assert.Equal(t, 20, total)

	var out bytes.Buffer
	require.NoError(t, report.Generate(&out))
	text := out.String()
	assert.Contains(t, text, "**Run ID:** run-1")
	assert.Contains(t, text, "**Arena:** generated")
	assert.Contains(t, text, "| enemy-aggro |")
	assert.Contains(t, text, "- Wander: ")
	assert.Contains(t, text, "- Dead: ")
}

func TestStatsFinalize(t *testing.T) {
	s := Stats{Samples: []time.Duration{3, 1, 2}}
	s.Finalize()
	assert.Equal(t, time.Duration(1), s.Min)
	assert.Equal(t, time.Duration(3), s.Max)
	assert.Equal(t, time.Duration(2), s.Avg)

	var empty Stats
	empty.Finalize()
	assert.Zero(t, empty.Avg)
}

func TestStartProfile(t *testing.T) {
	stop, err := startProfile("", t.TempDir())
	require.NoError(t, err)
	assert.NotPanics(t, stop)

	_, err = startProfile("trace", t.TempDir())
	assert.ErrorContains(t, err, `unknown profile mode "trace"`)
}

func TestSimulateFlushesProfileOnFailure(t *testing.T) {
	dir := t.TempDir()
	err := simulate(options{
		Duration:   time.Second,
		MapPath:    filepath.Join(dir, "missing.json"),
		Profile:    "cpu",
		ProfileDir: dir,
	}, &bytes.Buffer{})
	require.ErrorContains(t, err, "load map")

	info, err := os.Stat(filepath.Join(dir, "cpu.pprof"))
	require.NoError(t, err, "the profile is written even when the run fails")
	assert.Positive(t, info.Size())
}

func TestSimulateWritesReport(t *testing.T) {
	var out bytes.Buffer
	err := simulate(options{Duration: 50 * time.Millisecond, Enemies: 5, Seed: 3}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "--- Simulation Report ---")
	assert.Contains(t, out.String(), "--- End of Report ---")
}
