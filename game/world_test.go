package game

import (
	"reflect"
	"strings"
	"testing"

	"github.com/plus3/rustling/ecs"
	"github.com/plus3/rustling/tiled"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLevel = `{
  "width": 40, "height": 30, "tilewidth": 16, "tileheight": 16,
  "layers": [
    {"name": "collisions", "type": "objectgroup", "objects": [
      {"id": 1, "x": 0, "y": 0, "width": 640, "height": 16},
      {"id": 2, "x": 200, "y": 200, "width": 32, "height": 32}
    ]},
    {"name": "animated", "type": "objectgroup", "objects": [
      {"id": 3, "name": "torch", "x": 64, "y": 80, "properties": [
        {"name": "source_x", "type": "int", "value": 96},
        {"name": "source_y", "type": "int", "value": 32},
        {"name": "source_w", "type": "int", "value": 16},
        {"name": "source_h", "type": "int", "value": 32},
        {"name": "dest_w", "type": "int", "value": 16},
        {"name": "dest_h", "type": "int", "value": 32},
        {"name": "row", "type": "int", "value": 1},
        {"name": "frames", "type": "int", "value": 4}
      ]}
    ]},
    {"name": "entities", "type": "objectgroup", "objects": [
      {"id": 4, "name": "Player", "x": 300, "y": 300},
      {"id": 5, "name": "skeleton", "x": 100, "y": 400},
      {"id": 6, "name": "slime", "x": 500, "y": 100},
      {"id": 7, "name": "skeleton", "x": 450, "y": 420}
    ]}
  ]
}`

func buildLevel(t *testing.T, level string) (*World, error) {
	t.Helper()
	m, err := tiled.Parse([]byte(level))
	require.NoError(t, err)
	tuning, err := DefaultTuning()
	require.NoError(t, err)
	return BuildWorld(tuning, m, 1)
}

func TestBuildWorld(t *testing.T) {
	w, err := buildLevel(t, testLevel)
	require.NoError(t, err)

	assert.Equal(t, WorldBounds{Width: 640, Height: 480}, *w.Bounds())
	assert.Equal(t, []Rect{{X: 0, Y: 0, W: 640, H: 16}, {X: 200, Y: 200, W: 32, H: 32}}, w.Obstacles().Rects)
	require.NotNil(t, w.Actions())

	players := ecs.NewQuery[playerView](w.Storage)
	require.Equal(t, 1, players.Count())
	player, _ := players.First()
	assert.Equal(t, Position{X: 300, Y: 300}, player.Position)

	kinds := map[EnemyKind]int{}
	for _, item := range ecs.NewQuery[struct{ Enemy Enemy }](w.Storage).Iter() {
		kinds[item.Enemy.Kind]++
	}
	assert.Equal(t, map[EnemyKind]int{EnemySkeleton: 2, EnemySlime: 1}, kinds)

	decorations := ecs.NewQuery[struct {
		Id         ecs.EntityId
		Decoration Decoration
		Sprite     Sprite
	}](w.Storage)
	require.Equal(t, 1, decorations.Count())
	torch, _ := decorations.First()
	assert.Equal(t, "torch", torch.Decoration.Name)
	assert.False(t, w.Storage.HasComponent(torch.Id, reflect.TypeFor[Collider]()), "decorations never collide")

	require.NoError(t, w.Step(frameDt))
}

func TestBuildWorldSpritesAreIndependent(t *testing.T) {
	w, err := buildLevel(t, testLevel)
	require.NoError(t, err)

	var sprites []*Sprite
	for _, item := range ecs.NewQuery[struct {
		Sprite *Sprite
		Enemy  Enemy
	}](w.Storage).Iter() {
		sprites = append(sprites, item.Sprite)
	}
	require.Len(t, sprites, 3)

	sprites[0].Animation.Clips[0].FPS = 99
	assert.NotEqual(t, 99.0, sprites[1].Animation.Clips[0].FPS)
	assert.NotEqual(t, 99.0, w.Archetypes[EnemySkeleton].Sprite.Animation.Clips[0].FPS)
}

func TestBuildWorldErrors(t *testing.T) {
	tests := []struct {
		name string
		old  string
		new  string
		want error
	}{
		{"missing layer", `"name": "collisions"`, `"name": "walls"`, tiled.ErrLayerNotFound},
		{"unknown enemy", `"name": "slime"`, `"name": "goblin"`, ErrUnknownEnemyKind},
		{"no player", `"name": "Player"`, `"name": "skeleton"`, ErrNoPlayer},
		{"missing property", `{"name": "row", "type": "int", "value": 1},`, ``, tiled.ErrPropertyNotFound},
		{"non-numeric property", `"value": 96`, `"value": "left"`, tiled.ErrPropertyType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level := strings.Replace(testLevel, tt.old, tt.new, 1)
			require.NotEqual(t, testLevel, level)

			_, err := buildLevel(t, level)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDecorationSprite(t *testing.T) {
	obj := &tiled.Object{
		Name: "banner",
		Properties: tiled.Properties{
			"source_x": "96", "source_y": "32",
			"source_w": "16", "source_h": "32",
			"dest_w": "32", "dest_h": "64",
			"row": "2", "frames": "3",
			"fps": "5", "texture": "images/banner.png",
		},
	}
	defaults := DecorationTuning{Texture: "images/decor.png", FPS: 6}

	sprite, err := DecorationSprite(obj, defaults)
	require.NoError(t, err)
	assert.Equal(t, "images/banner.png", sprite.Texture)
	assert.Equal(t, Vec2{X: 32, Y: 64}, sprite.DestSize)
	assert.Equal(t, []Clip{{Name: "banner", Row: 2, Frames: 3, FPS: 5}}, sprite.Animation.Clips)
	assert.Equal(t, Rect{X: 96, Y: 96, W: 16, H: 32}, sprite.Frame())

	sprite.Animation.Update(0.2)
	assert.Equal(t, Rect{X: 112, Y: 96, W: 16, H: 32}, sprite.Frame())

	delete(obj.Properties, "fps")
	delete(obj.Properties, "texture")
	sprite, err = DecorationSprite(obj, defaults)
	require.NoError(t, err)
	assert.Equal(t, "images/decor.png", sprite.Texture)
	assert.Equal(t, 6.0, sprite.Animation.Clips[0].FPS)
}

func TestNewWorldSingletons(t *testing.T) {
	w := newTestWorld(t)
	assert.Equal(t, WorldBounds{Width: 1600, Height: 960}, *w.Bounds())
	assert.Empty(t, w.Obstacles().Rects)
	assert.NotNil(t, ecs.ReadSingleton[Rand](w.Storage))

	_, err := w.SpawnEnemy(EnemyKind(7), Vec2{})
	assert.ErrorIs(t, err, ErrUnknownEnemyKind)
}

func TestPlayerBodyAndEnemyStates(t *testing.T) {
	w := newTestWorld(t)
	_, ok := w.PlayerBody()
	assert.False(t, ok)
	assert.Empty(t, w.EnemyStates())

	player := spawnPlayer(t, w, 40, 50)
	spawnEnemy(t, w, EnemySkeleton, 1000, 800)
	dead := spawnEnemy(t, w, EnemySlime, 1200, 100)
	spawnEnemy(t, w, EnemySlime, 1300, 100)
	mustMut[Enemy](t, w, dead).State = StateDead

	body, ok := w.PlayerBody()
	require.True(t, ok)
	assert.Equal(t, player, body.Id)
	assert.Equal(t, Position{X: 40, Y: 50}, body.Position)
	assert.Equal(t, w.Player.Collider, body.Collider)

	assert.Equal(t, map[AIState]int{StateWander: 2, StateDead: 1}, w.EnemyStates())
}
