package main

import (
	"flag"
	"log"
	"path/filepath"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/rustling/ecs"
	"github.com/plus3/rustling/ecs/debugui"
	debugui_ebiten "github.com/plus3/rustling/ecs/debugui/ebiten"
	"github.com/plus3/rustling/game"
	"github.com/plus3/rustling/tiled"
)

const (
	windowWidth  = 1280
	windowHeight = 720
	windowTitle  = "rustling"
)

func main() {
	mapPath := flag.String("map", "assets/maps/level.json", "Tiled JSON map to play.")
	assetsDir := flag.String("assets", "assets", "Directory sprite textures are resolved against.")
	tuningPath := flag.String("tuning", "", "YAML tuning file. Empty uses the built-in tuning.")
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "Seed for enemy wandering.")
	debug := flag.Bool("debug", false, "Show the collision overlay and the ImGui debug windows.")
	flag.Parse()

	tuning, err := game.LoadTuning(*tuningPath)
	if err != nil {
		log.Fatalf("Failed to load tuning: %v", err)
	}

	m, err := tiled.Load(*mapPath)
	if err != nil {
		log.Fatalf("Failed to load map: %v", err)
	}
	log.Printf("Loaded map %s (%dx%d tiles, %d layers)\n", *mapPath, m.Width, m.Height, len(m.Layers))

	world, err := game.BuildWorld(tuning, m, *seed)
	if err != nil {
		log.Fatalf("Failed to build world: %v", err)
	}
	log.Printf("Spawned %d entities, %d obstacles\n", world.Storage.Len(), len(world.Obstacles().Rects))

	textures := newTextures()
	for record := range game.DrawRecords(world.Storage) {
		if err := textures.Load(record.Texture, filepath.Join(*assetsDir, record.Texture)); err != nil {
			log.Fatalf("Failed to load texture: %v", err)
		}
	}
	mapDir := filepath.Dir(*mapPath)
	for _, ts := range m.Tilesets {
		if err := textures.Load(ts.Image, filepath.Join(mapDir, ts.Image)); err != nil {
			log.Fatalf("Failed to load tileset %s: %v", ts.Name, err)
		}
	}
	log.Printf("Loaded %d textures\n", textures.Len())

	g := NewGame(world, m, textures)
	g.overlay = *debug

	if *debug {
		debugui.RegisterComponents(world.Storage.Registry())
		backend := ecs.NewSingleton[debugui_ebiten.ImguiBackend](world.Storage,
			debugui_ebiten.NewImguiBackend(windowTitle, windowWidth, windowHeight))
		ecs.NewSingleton[debugui.ImguiInputState](world.Storage)
		world.Scheduler.Register("imgui", &debugui.ImguiSystem{})

		if err := debugui.NewWindows(world.Scheduler).Spawn(world.Storage); err != nil {
			log.Fatalf("Failed to spawn debug windows: %v", err)
		}
		g.imgui = backend
	} else {
		ebiten.SetWindowSize(windowWidth, windowHeight)
		ebiten.SetWindowTitle(windowTitle)
	}
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(g); err != nil {
		log.Fatalf("Game exited: %v", err)
	}
}
