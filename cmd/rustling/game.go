package main

import (
	"fmt"
	"image"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/plus3/rustling/ecs"
	"github.com/plus3/rustling/ecs/debugui"
	debugui_ebiten "github.com/plus3/rustling/ecs/debugui/ebiten"
	"github.com/plus3/rustling/game"
	"github.com/plus3/rustling/tiled"
	"golang.org/x/image/colornames"
)

const (
	// zoom is how many window pixels one world unit covers
	zoom = 2
	// maxFrameTime caps dt after a stall so nothing tunnels through walls
	maxFrameTime = 0.1
	// foregroundLayer names tile layers drawn over the sprites
	foregroundLayer = "foreground"
)

// keyBindings maps each action to the keys that hold it
var keyBindings = []struct {
	action game.Action
	keys   []ebiten.Key
}{
	{game.ActionUp, []ebiten.Key{ebiten.KeyArrowUp}},
	{game.ActionDown, []ebiten.Key{ebiten.KeyArrowDown}},
	{game.ActionLeft, []ebiten.Key{ebiten.KeyArrowLeft}},
	{game.ActionRight, []ebiten.Key{ebiten.KeyArrowRight}},
	{game.ActionAttack, []ebiten.Key{ebiten.KeyZ}},
}

// Game drives a world from ebiten's update and draw callbacks
type Game struct {
	world    *game.World
	level    *tiled.Map
	textures *textures
	camera   camera
	canvas   *ebiten.Image

	lastUpdate time.Time
	overlay    bool

	imgui *ecs.Singleton[debugui_ebiten.ImguiBackend]
}

func NewGame(world *game.World, level *tiled.Map, textures *textures) *Game {
	return &Game{
		world:    world,
		level:    level,
		textures: textures,
	}
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		g.overlay = !g.overlay
	}

	now := time.Now()
	dt := 0.0
	if !g.lastUpdate.IsZero() {
		dt = min(now.Sub(g.lastUpdate).Seconds(), maxFrameTime)
	}
	g.lastUpdate = now

	g.pollInput()

	if g.imgui != nil {
		g.imgui.Get().BeginFrame()
	}
	err := g.world.Step(dt)
	if g.imgui != nil {
		g.imgui.Get().EndFrame()
	}
	return err
}

func (g *Game) pollInput() {
	actions := g.world.Actions()
	actions.Clear()
	if state := ecs.ReadSingleton[debugui.ImguiInputState](g.world.Storage); state != nil && state.WantCaptureKeyboard {
		return
	}
	for _, binding := range keyBindings {
		for _, key := range binding.keys {
			if ebiten.IsKeyPressed(key) {
				actions.Set(binding.action, true)
			}
		}
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.resizeCanvas(screen.Bounds().Dx()/zoom, screen.Bounds().Dy()/zoom)
	if body, ok := g.world.PlayerBody(); ok {
		g.camera.Follow(playerFocus(body), *g.world.Bounds())
	}

	g.canvas.Fill(colornames.Black)
	g.drawTiles(g.canvas, tileLayers(g.level, false))
	for record := range game.DrawRecords(g.world.Storage) {
		g.drawRecord(g.canvas, record)
	}
	g.drawTiles(g.canvas, tileLayers(g.level, true))
	if g.overlay {
		drawOverlay(g.canvas, g.world, &g.camera)
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(zoom, zoom)
	screen.DrawImage(g.canvas, op)

	if g.overlay {
		ebitenutil.DebugPrintAt(screen, g.status(), 8, 8)
	}
	if g.imgui != nil {
		g.imgui.Get().Draw(screen)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if g.imgui != nil {
		g.imgui.Get().Layout(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}

func (g *Game) resizeCanvas(w, h int) {
	w, h = max(w, 1), max(h, 1)
	if g.canvas != nil && g.canvas.Bounds().Dx() == w && g.canvas.Bounds().Dy() == h {
		return
	}
	g.canvas = ebiten.NewImage(w, h)
	g.camera.W, g.camera.H = float64(w), float64(h)
}

// tileLayers returns the visible tile layers of m in map order, either the
// foreground ones or all the others.
func tileLayers(m *tiled.Map, foreground bool) []*tiled.Layer {
	var layers []*tiled.Layer
	for i := range m.Layers {
		layer := &m.Layers[i]
		if layer.Type != tiled.TileLayer || !layer.Visible || layer.Width == 0 {
			continue
		}
		if (layer.Name == foregroundLayer) == foreground {
			layers = append(layers, layer)
		}
	}
	return layers
}

func (g *Game) drawTiles(dst *ebiten.Image, layers []*tiled.Layer) {
	m := g.level
	for _, layer := range layers {
		for cell, gid := range layer.Data {
			tile, ok := m.Tile(gid)
			if !ok {
				continue
			}
			pos := game.Vec2{
				X: float64((cell % layer.Width) * m.TileWidth),
				Y: float64((cell/layer.Width)*m.TileHeight + m.TileHeight - tile.H),
			}
			if !g.camera.Visible(game.Rect{X: pos.X, Y: pos.Y, W: float64(tile.W), H: float64(tile.H)}) {
				continue
			}
			img := g.textures.Get(tile.Tileset.Image)
			if img == nil {
				continue
			}
			src := img.SubImage(image.Rect(tile.SrcX, tile.SrcY, tile.SrcX+tile.W, tile.SrcY+tile.H)).(*ebiten.Image)
			op := &ebiten.DrawImageOptions{GeoM: tileGeoM(tile, g.camera.ToScreen(pos))}
			dst.DrawImage(src, op)
		}
	}
}

func (g *Game) drawRecord(dst *ebiten.Image, record game.DrawRecord) {
	img := g.textures.Get(record.Texture)
	if img == nil {
		return
	}
	if src := record.Source; src.W > 0 && src.H > 0 {
		img = img.SubImage(image.Rect(int(src.X), int(src.Y), int(src.X+src.W), int(src.Y+src.H))).(*ebiten.Image)
	}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	op := &ebiten.DrawImageOptions{GeoM: spriteGeoM(record, float64(w), float64(h), g.camera.ToScreen(record.Position))}
	dst.DrawImage(img, op)
}

// spriteGeoM scales a w by h source to the record's destination size,
// mirrors it in place when flipped and moves it to screen position at.
func spriteGeoM(record game.DrawRecord, w, h float64, at game.Vec2) ebiten.GeoM {
	dest := record.DestSize
	if dest.X == 0 || dest.Y == 0 {
		dest = game.Vec2{X: w, Y: h}
	}
	var m ebiten.GeoM
	if record.FlipX {
		m.Scale(-1, 1)
		m.Translate(w, 0)
	}
	m.Scale(dest.X/w, dest.Y/h)
	m.Translate(at.X, at.Y)
	return m
}

// tileGeoM mirrors a tile within its own cell and moves it to at
func tileGeoM(tile tiled.Tile, at game.Vec2) ebiten.GeoM {
	var m ebiten.GeoM
	w, h := float64(tile.W), float64(tile.H)
	if tile.FlipH {
		m.Scale(-1, 1)
		m.Translate(w, 0)
	}
	if tile.FlipV {
		m.Scale(1, -1)
		m.Translate(0, h)
	}
	m.Translate(at.X, at.Y)
	return m
}

func (g *Game) status() string {
	states := g.world.EnemyStates()
	return fmt.Sprintf("FPS %.0f  TPS %.0f\nentities %d\nwander %d  chase %d  attack %d  dead %d",
		ebiten.ActualFPS(), ebiten.ActualTPS(),
		g.world.Storage.Len(),
		states[game.StateWander], states[game.StateChasePlayer], states[game.StateAttack], states[game.StateDead])
}
