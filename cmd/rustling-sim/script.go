package main

import "github.com/plus3/rustling/game"

var squareLegs = [...]game.Action{game.ActionRight, game.ActionDown, game.ActionLeft, game.ActionUp}

// script is the input of an unattended run: the player walks a square, one
// leg every legFrames, and starts a swing every attackEvery frames.
type script struct {
	legFrames   int
	attackEvery int
}

func (s script) Apply(frame int, actions *game.Actions) {
	actions.Clear()
	if s.legFrames > 0 {
		leg := (frame / s.legFrames) % len(squareLegs)
		actions.Set(squareLegs[leg], true)
	}
	if s.attackEvery > 0 && frame%s.attackEvery == 0 {
		actions.Set(game.ActionAttack, true)
	}
}
