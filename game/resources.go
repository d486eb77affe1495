package game

import (
	"math/rand/v2"
)

//go:generate go tool stringer -type=Action -trimprefix=Action

// Action is a named input the frontend can hold down
type Action int

const (
	ActionUp Action = iota
	ActionDown
	ActionLeft
	ActionRight
	ActionAttack
)

const NumActions = int(ActionAttack) + 1

// Actions is the input snapshot for the current frame, written by the
// frontend before the scheduler runs.
type Actions struct {
	held [NumActions]bool
}

func (a *Actions) Set(action Action, held bool) {
	a.held[action] = held
}

func (a *Actions) Held(action Action) bool {
	return a.held[action]
}

func (a *Actions) Clear() {
	a.held = [NumActions]bool{}
}

// Obstacles are the static collision rectangles of the level
type Obstacles struct {
	Rects []Rect
}

// Blocked reports whether r overlaps any obstacle
func (o *Obstacles) Blocked(r Rect) bool {
	for _, obstacle := range o.Rects {
		if r.Overlaps(obstacle) {
			return true
		}
	}
	return false
}

// WorldBounds is the playable area, anchored at the origin
type WorldBounds struct {
	Width, Height float64
}

// Rand is the random source for wander decisions
type Rand struct {
	*rand.Rand
}

// NewRand returns a deterministic source for seed
func NewRand(seed uint64) Rand {
	return Rand{Rand: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}
