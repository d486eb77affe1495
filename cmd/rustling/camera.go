package main

import "github.com/plus3/rustling/game"

// camera is the top-left corner and size of the visible part of the world
type camera struct {
	X, Y float64
	W, H float64
}

// Follow centers the view on target without showing anything outside
// bounds. A world smaller than the view is centered instead.
func (c *camera) Follow(target game.Vec2, bounds game.WorldBounds) {
	c.X = followAxis(target.X, c.W, bounds.Width)
	c.Y = followAxis(target.Y, c.H, bounds.Height)
}

func followAxis(target, view, world float64) float64 {
	if world <= view {
		return (world - view) / 2
	}
	return min(max(target-view/2, 0), world-view)
}

// ToScreen maps a world position into view coordinates
func (c *camera) ToScreen(v game.Vec2) game.Vec2 {
	return game.Vec2{X: v.X - c.X, Y: v.Y - c.Y}
}

// Visible reports whether any part of r is inside the view
func (c *camera) Visible(r game.Rect) bool {
	return r.Overlaps(game.Rect{X: c.X, Y: c.Y, W: c.W, H: c.H})
}

// playerFocus is the middle of the player's visible sprite
func playerFocus(body game.PlayerBody) game.Vec2 {
	c := body.Collider
	return body.Position.Vec().Add(c.Padding).Add(c.Visible.Scale(0.5))
}
