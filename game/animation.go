package game

import (
	"errors"
	"fmt"
)

var ErrMissingClip = errors.New("game: missing animation clip")

// Clip is one row of a sprite sheet
type Clip struct {
	Name   string
	Row    int
	Frames int
	FPS    float64
	// Once clips stop on their last frame instead of looping
	Once bool
}

// Animator walks the frames of the current clip. Frame sizes and the sheet
// origin are in texture pixels.
type Animator struct {
	FrameW, FrameH float64
	Origin         Vec2
	Clips          []Clip
	Current        int
	Frame          int
	Timer          float64
	Playing        bool
}

func NewAnimator(frameW, frameH float64, clips []Clip) Animator {
	return Animator{
		FrameW:  frameW,
		FrameH:  frameH,
		Clips:   clips,
		Playing: true,
	}
}

// SetClip switches to clip, restarting it only when it changes
func (a *Animator) SetClip(clip int) {
	if clip < 0 || clip >= len(a.Clips) || clip == a.Current {
		return
	}
	a.Current = clip
	a.Frame = 0
	a.Timer = 0
}

// Update advances the frame timer by dt seconds
func (a *Animator) Update(dt float64) {
	if !a.Playing || len(a.Clips) == 0 {
		return
	}
	clip := a.Clips[a.Current]
	if clip.FPS <= 0 || clip.Frames <= 0 {
		return
	}

	step := 1 / clip.FPS
	a.Timer += dt
	for a.Timer >= step {
		a.Timer -= step
		a.Frame++
		if a.Frame >= clip.Frames {
			if clip.Once {
				a.Frame = clip.Frames - 1
				a.Timer = 0
				return
			}
			a.Frame = 0
		}
	}
}

func (a *Animator) IsLastFrame() bool {
	if len(a.Clips) == 0 {
		return false
	}
	return a.Frame == a.Clips[a.Current].Frames-1
}

// SourceRect is the sheet rectangle of the current frame
func (a *Animator) SourceRect() Rect {
	if len(a.Clips) == 0 {
		return Rect{}
	}
	row := a.Clips[a.Current].Row
	return Rect{
		X: a.Origin.X + float64(a.Frame)*a.FrameW,
		Y: a.Origin.Y + float64(row)*a.FrameH,
		W: a.FrameW,
		H: a.FrameH,
	}
}

// Clip names used to resolve a ClipSet
const (
	ClipIdleDown   = "idle_down"
	ClipIdleSide   = "idle_side"
	ClipIdleUp     = "idle_up"
	ClipMoveDown   = "move_down"
	ClipMoveSide   = "move_side"
	ClipMoveUp     = "move_up"
	ClipAttackDown = "attack_down"
	ClipAttackSide = "attack_side"
	ClipAttackUp   = "attack_up"
	ClipDeath      = "death"
)

// ClipSet maps animation roles to clip indices. Death is -1 for sprites
// that never die.
type ClipSet struct {
	IdleDown, IdleSide, IdleUp       int
	MoveDown, MoveSide, MoveUp       int
	AttackDown, AttackSide, AttackUp int
	Death                            int
}

// NewClipSet resolves every role by clip name
func NewClipSet(clips []Clip) (ClipSet, error) {
	index := make(map[string]int, len(clips))
	for i, clip := range clips {
		index[clip.Name] = i
	}

	var missing []string
	lookup := func(name string) int {
		i, ok := index[name]
		if !ok {
			missing = append(missing, name)
			return 0
		}
		return i
	}

	set := ClipSet{
		IdleDown:   lookup(ClipIdleDown),
		IdleSide:   lookup(ClipIdleSide),
		IdleUp:     lookup(ClipIdleUp),
		MoveDown:   lookup(ClipMoveDown),
		MoveSide:   lookup(ClipMoveSide),
		MoveUp:     lookup(ClipMoveUp),
		AttackDown: lookup(ClipAttackDown),
		AttackSide: lookup(ClipAttackSide),
		AttackUp:   lookup(ClipAttackUp),
		Death:      -1,
	}
	if i, ok := index[ClipDeath]; ok {
		set.Death = i
	}
	if len(missing) > 0 {
		return ClipSet{}, fmt.Errorf("%w: %v", ErrMissingClip, missing)
	}
	return set, nil
}

// idleFor returns the idle clip that matches the last movement clip
func (c ClipSet) idleFor(lastMove int) int {
	switch lastMove {
	case c.MoveSide:
		return c.IdleSide
	case c.MoveUp:
		return c.IdleUp
	default:
		return c.IdleDown
	}
}

// attackFor returns the attack clip that matches the last movement clip
func (c ClipSet) attackFor(lastMove int) int {
	switch lastMove {
	case c.MoveSide:
		return c.AttackSide
	case c.MoveUp:
		return c.AttackUp
	default:
		return c.AttackDown
	}
}

// moveClip picks the movement clip for a non-zero velocity. Right wins over
// left, then up, then down.
func (c ClipSet) moveClip(v Velocity) (clip int, flip bool) {
	switch {
	case v.X > 0:
		return c.MoveSide, false
	case v.X < 0:
		return c.MoveSide, true
	case v.Y < 0:
		return c.MoveUp, false
	default:
		return c.MoveDown, false
	}
}
