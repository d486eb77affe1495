package game

import (
	"iter"

	"github.com/plus3/rustling/ecs"
)

// DrawRecord is everything a renderer needs to draw one sprite. A zero
// Source means the whole texture and a zero DestSize the source size.
type DrawRecord struct {
	Entity   ecs.EntityId
	Position Vec2
	Texture  string
	Source   Rect
	DestSize Vec2
	FlipX    bool
}

type drawable struct {
	Id       ecs.EntityId
	Position Position
	Sprite   Sprite
}

// DrawRecords yields a record per Sprite+Position entity in ascending id
// order. Run it after the animation phase.
func DrawRecords(storage *ecs.Storage) iter.Seq[DrawRecord] {
	view := ecs.NewView[drawable](storage)
	return func(yield func(DrawRecord) bool) {
		for _, item := range view.Iter() {
			record := DrawRecord{
				Entity:   item.Id,
				Position: item.Position.Vec(),
				Texture:  item.Sprite.Texture,
				Source:   item.Sprite.Frame(),
				DestSize: item.Sprite.DestSize,
				FlipX:    item.Sprite.FlipX,
			}
			if !yield(record) {
				return
			}
		}
	}
}
