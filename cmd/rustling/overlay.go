package main

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/plus3/rustling/ecs"
	"github.com/plus3/rustling/game"
	"golang.org/x/image/colornames"
)

type overlayBody struct {
	Position game.Position
	Collider game.Collider
	Enemy    *game.Enemy `ecs:"optional"`
}

// drawOverlay outlines obstacles, colliders and the player's combat boxes
func drawOverlay(dst *ebiten.Image, world *game.World, cam *camera) {
	for _, r := range world.Obstacles().Rects {
		strokeRect(dst, cam, r, colornames.Red)
	}

	for body := range ecs.NewQuery[overlayBody](world.Storage).Values() {
		c := colornames.Yellow
		if body.Enemy != nil {
			switch body.Enemy.State {
			case game.StateChasePlayer:
				c = colornames.Orange
			case game.StateAttack:
				c = colornames.Magenta
			case game.StateDead:
				c = colornames.Gray
			}
		}
		strokeRect(dst, cam, body.Collider.Rect(body.Position.Vec()), c)
	}

	body, ok := world.PlayerBody()
	if !ok {
		return
	}
	pos := body.Position.Vec()
	hurt := colornames.Lime
	if body.Player.HitCooldownTimer > 0 {
		hurt = colornames.Cyan
	}
	strokeRect(dst, cam, game.PlayerHurtbox(pos), hurt)
	if body.Player.Attacking {
		strokeRect(dst, cam, game.AttackHitbox(pos, body.Player.LastDirection), colornames.Crimson)
	}
}

func strokeRect(dst *ebiten.Image, cam *camera, r game.Rect, c color.Color) {
	if !cam.Visible(r) {
		return
	}
	at := cam.ToScreen(game.Vec2{X: r.X, Y: r.Y})
	vector.StrokeRect(dst, float32(at.X), float32(at.Y), float32(r.W), float32(r.H), 1, c, false)
}
