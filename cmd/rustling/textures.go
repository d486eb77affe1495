package main

import (
	"bytes"
	"fmt"
	"image"
	_ "image/png"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
)

// textures holds every image the world draws, keyed by the path written in
// the tuning or the map.
type textures struct {
	images map[string]*ebiten.Image
}

func newTextures() *textures {
	return &textures{images: make(map[string]*ebiten.Image)}
}

// Load decodes the file at path under key. Loading a key twice is a no-op.
func (t *textures) Load(key, path string) error {
	if key == "" {
		return fmt.Errorf("empty texture key")
	}
	if _, ok := t.images[key]; ok {
		return nil
	}
	img, err := decodeImage(path)
	if err != nil {
		return err
	}
	t.images[key] = ebiten.NewImageFromImage(img)
	return nil
}

func (t *textures) Get(key string) *ebiten.Image {
	return t.images[key]
}

func (t *textures) Len() int {
	return len(t.images)
}

func decodeImage(path string) (image.Image, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}
