package main

import (
	"math/rand/v2"

	"github.com/plus3/rustling/game"
	"github.com/plus3/rustling/tiled"
)

const (
	wallThickness    = 16
	minObstacleSize  = 16
	maxObstacleSize  = 64
	obstaclesPerArea = 1.0 / (160 * 160)
	spawnAttempts    = 50
)

// Arena is how the world of one run is built
type Arena struct {
	Tuning  *game.Tuning
	Map     *tiled.Map
	Seed    uint64
	Enemies int
}

// Build loads the map when one is given, otherwise it walls in the tuned
// world bounds and scatters obstacles. Enemies extra enemies are spawned on
// free ground either way.
func (a Arena) Build() (*game.World, error) {
	var (
		world *game.World
		err   error
	)
	rng := rand.New(rand.NewPCG(a.Seed, a.Seed+1))

	if a.Map != nil {
		world, err = game.BuildWorld(a.Tuning, a.Map, a.Seed)
		if err != nil {
			return nil, err
		}
	} else {
		world, err = game.NewWorld(a.Tuning, a.Seed)
		if err != nil {
			return nil, err
		}
		bounds := *world.Bounds()
		obstacles := world.Obstacles()
		obstacles.Rects = append(walls(bounds), scatter(rng, bounds)...)

		center := game.Vec2{X: bounds.Width / 2, Y: bounds.Height / 2}
		clearSpawn(obstacles, center, world.Player.Collider)
		if _, err := world.SpawnPlayer(center); err != nil {
			return nil, err
		}
	}

	for i := range a.Enemies {
		kind := game.EnemyKinds[i%len(game.EnemyKinds)]
		collider := world.Archetypes[kind].Collider
		pos, ok := freeSpot(rng, world, collider)
		if !ok {
			continue
		}
		if _, err := world.SpawnEnemy(kind, pos); err != nil {
			return nil, err
		}
	}
	return world, nil
}

func walls(b game.WorldBounds) []game.Rect {
	return []game.Rect{
		{X: 0, Y: 0, W: b.Width, H: wallThickness},
		{X: 0, Y: b.Height - wallThickness, W: b.Width, H: wallThickness},
		{X: 0, Y: 0, W: wallThickness, H: b.Height},
		{X: b.Width - wallThickness, Y: 0, W: wallThickness, H: b.Height},
	}
}

func scatter(rng *rand.Rand, b game.WorldBounds) []game.Rect {
	n := int(b.Width * b.Height * obstaclesPerArea)
	rects := make([]game.Rect, 0, n)
	for range n {
		w := minObstacleSize + rng.Float64()*(maxObstacleSize-minObstacleSize)
		h := minObstacleSize + rng.Float64()*(maxObstacleSize-minObstacleSize)
		rects = append(rects, game.Rect{
			X: wallThickness + rng.Float64()*(b.Width-2*wallThickness-w),
			Y: wallThickness + rng.Float64()*(b.Height-2*wallThickness-h),
			W: w,
			H: h,
		})
	}
	return rects
}

// clearSpawn drops every obstacle the collider would start inside
func clearSpawn(o *game.Obstacles, pos game.Vec2, c game.Collider) {
	box := c.Rect(pos)
	kept := o.Rects[:0]
	for _, r := range o.Rects {
		if !r.Overlaps(box) {
			kept = append(kept, r)
		}
	}
	o.Rects = kept
}

// freeSpot picks a position inside the bounds where the collider touches
// no obstacle.
func freeSpot(rng *rand.Rand, world *game.World, c game.Collider) (game.Vec2, bool) {
	bounds := *world.Bounds()
	obstacles := world.Obstacles()
	for range spawnAttempts {
		pos := game.ClampToBounds(game.Vec2{
			X: rng.Float64() * bounds.Width,
			Y: rng.Float64() * bounds.Height,
		}, c, bounds)
		if !obstacles.Blocked(c.Rect(pos)) {
			return pos, true
		}
	}
	return game.Vec2{}, false
}
