package game

import (
	"errors"
	"fmt"
	"strings"

	"github.com/plus3/rustling/ecs"
	"github.com/plus3/rustling/tiled"
)

// Map layers read by BuildWorld
const (
	LayerCollisions = "collisions"
	LayerAnimated   = "animated"
	LayerEntities   = "entities"
)

// PlayerObject is the entities-layer object name of the player spawn
const PlayerObject = "player"

var ErrNoPlayer = errors.New("game: map has no player spawn")

// NewRegistry registers every game component
func NewRegistry() *ecs.ComponentRegistry {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Velocity](registry)
	ecs.RegisterComponent[Collider](registry)
	ecs.RegisterComponent[Sprite](registry)
	ecs.RegisterComponent[Player](registry)
	ecs.RegisterComponent[Enemy](registry)
	ecs.RegisterComponent[Decoration](registry)
	return registry
}

// World bundles a populated store with the scheduler that steps it
type World struct {
	Storage    *ecs.Storage
	Scheduler  *ecs.Scheduler
	Archetypes Archetypes
	Player     PlayerArchetype
}

// NewWorld creates an empty world with every phase registered and the
// frame singletons in place. Bounds are taken from the tuning.
func NewWorld(tuning *Tuning, seed uint64) (*World, error) {
	archetypes, err := NewArchetypes(tuning)
	if err != nil {
		return nil, err
	}
	player, err := NewPlayerArchetype(tuning)
	if err != nil {
		return nil, err
	}

	storage := ecs.NewStorage(NewRegistry())
	storage.AddSingleton(Actions{})
	storage.AddSingleton(Obstacles{})
	storage.AddSingleton(WorldBounds{Width: tuning.World.Width, Height: tuning.World.Height})
	storage.AddSingleton(NewRand(seed))

	scheduler := ecs.NewScheduler(storage)
	RegisterSystems(scheduler)

	return &World{
		Storage:    storage,
		Scheduler:  scheduler,
		Archetypes: archetypes,
		Player:     player,
	}, nil
}

// Step runs one frame
func (w *World) Step(dt float64) error {
	return w.Scheduler.Once(dt)
}

// Actions is the input snapshot the frontend writes before each Step
func (w *World) Actions() *Actions {
	return ecs.ReadSingleton[Actions](w.Storage)
}

func (w *World) Obstacles() *Obstacles {
	return ecs.ReadSingleton[Obstacles](w.Storage)
}

func (w *World) Bounds() *WorldBounds {
	return ecs.ReadSingleton[WorldBounds](w.Storage)
}

func (w *World) SpawnPlayer(pos Vec2) (ecs.EntityId, error) {
	a := w.Player
	return w.Storage.Spawn(
		Position{X: pos.X, Y: pos.Y},
		Velocity{},
		a.Collider,
		a.Sprite.clone(),
		a.Player,
	)
}

func (w *World) SpawnEnemy(kind EnemyKind, pos Vec2) (ecs.EntityId, error) {
	a, ok := w.Archetypes[kind]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownEnemyKind, kind)
	}
	return w.Storage.Spawn(
		Position{X: pos.X, Y: pos.Y},
		Velocity{},
		a.Collider,
		a.Sprite.clone(),
		a.Enemy,
	)
}

// SpawnDecoration adds animated scenery. Decorations have no collider and
// never move.
func (w *World) SpawnDecoration(name string, pos Vec2, sprite Sprite) (ecs.EntityId, error) {
	return w.Storage.Spawn(Position{X: pos.X, Y: pos.Y}, sprite, Decoration{Name: name})
}

// BuildWorld populates a world from a Tiled map: obstacles from the
// collisions layer, decorations from the animated layer and spawn points
// from the entities layer. The map pixel size replaces the tuned bounds.
func BuildWorld(tuning *Tuning, m *tiled.Map, seed uint64) (*World, error) {
	world, err := NewWorld(tuning, seed)
	if err != nil {
		return nil, err
	}

	if w, h := m.PixelSize(); w > 0 && h > 0 {
		*world.Bounds() = WorldBounds{Width: w, Height: h}
	}

	collisions, err := m.Objects(LayerCollisions)
	if err != nil {
		return nil, err
	}
	obstacles := world.Obstacles()
	for _, obj := range collisions {
		obstacles.Rects = append(obstacles.Rects, Rect{X: obj.X, Y: obj.Y, W: obj.Width, H: obj.Height})
	}

	animated, err := m.Objects(LayerAnimated)
	if err != nil {
		return nil, err
	}
	for i := range animated {
		obj := &animated[i]
		sprite, err := DecorationSprite(obj, tuning.Decorations)
		if err != nil {
			return nil, err
		}
		if _, err := world.SpawnDecoration(obj.Name, Vec2{X: obj.X, Y: obj.Y}, sprite); err != nil {
			return nil, err
		}
	}

	entities, err := m.Objects(LayerEntities)
	if err != nil {
		return nil, err
	}
	players := 0
	for _, obj := range entities {
		pos := Vec2{X: obj.X, Y: obj.Y}
		if strings.EqualFold(obj.Name, PlayerObject) {
			players++
			if _, err := world.SpawnPlayer(pos); err != nil {
				return nil, err
			}
			continue
		}
		kind, err := ParseEnemyKind(obj.Name)
		if err != nil {
			return nil, fmt.Errorf("game: entities object %d: %w", obj.ID, err)
		}
		if _, err := world.SpawnEnemy(kind, pos); err != nil {
			return nil, err
		}
	}
	if players == 0 {
		return nil, ErrNoPlayer
	}
	return world, nil
}

// DecorationSprite builds the looping sprite of an animated-layer object.
// source_x/source_y locate the first frame in the sheet, source_w/source_h
// size every frame and row/frames select the strip. fps and texture are
// optional and default to the decoration tuning.
func DecorationSprite(obj *tiled.Object, t DecorationTuning) (Sprite, error) {
	var (
		props  = [...]string{"source_x", "source_y", "source_w", "source_h", "dest_w", "dest_h"}
		values [len(props)]float64
	)
	for i, name := range props {
		v, err := obj.Float(name)
		if err != nil {
			return Sprite{}, err
		}
		values[i] = v
	}
	row, err := obj.Int("row")
	if err != nil {
		return Sprite{}, err
	}
	frames, err := obj.Int("frames")
	if err != nil {
		return Sprite{}, err
	}
	fps, err := obj.FloatOr("fps", t.FPS)
	if err != nil {
		return Sprite{}, err
	}
	texture := t.Texture
	if v, err := obj.String("texture"); err == nil {
		texture = v
	}

	clips := []Clip{{Name: obj.Name, Row: row, Frames: frames, FPS: fps}}
	animator := NewAnimator(values[2], values[3], clips)
	animator.Origin = Vec2{X: values[0], Y: values[1]}
	return Sprite{
		Texture:   texture,
		Animation: animator,
		DestSize:  Vec2{X: values[4], Y: values[5]},
		Clips:     ClipSet{Death: -1},
	}, nil
}

// clone gives a spawned sprite its own clip slice
func (s Sprite) clone() Sprite {
	clips := make([]Clip, len(s.Animation.Clips))
	copy(clips, s.Animation.Clips)
	s.Animation.Clips = clips
	return s
}

// PlayerBody is what a frontend needs to follow and outline the player
type PlayerBody struct {
	Id       ecs.EntityId
	Position Position
	Collider Collider
	Player   Player
}

// PlayerBody returns the first player, if one was spawned
func (w *World) PlayerBody() (PlayerBody, bool) {
	return ecs.NewQuery[PlayerBody](w.Storage).First()
}

// EnemyStates counts enemies per AI state. States no enemy is in are absent.
func (w *World) EnemyStates() map[AIState]int {
	counts := make(map[AIState]int)
	for enemy := range ecs.NewQuery[struct{ Enemy Enemy }](w.Storage).Values() {
		counts[enemy.Enemy.State]++
	}
	return counts
}
