package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClips() []Clip {
	return []Clip{
		{Name: ClipIdleDown, Row: 0, Frames: 4, FPS: 4},
		{Name: ClipIdleSide, Row: 1, Frames: 4, FPS: 4},
		{Name: ClipIdleUp, Row: 2, Frames: 4, FPS: 4},
		{Name: ClipMoveDown, Row: 3, Frames: 6, FPS: 10},
		{Name: ClipMoveSide, Row: 4, Frames: 6, FPS: 10},
		{Name: ClipMoveUp, Row: 5, Frames: 6, FPS: 10},
		{Name: ClipAttackDown, Row: 6, Frames: 3, FPS: 10},
		{Name: ClipAttackSide, Row: 7, Frames: 3, FPS: 10},
		{Name: ClipAttackUp, Row: 8, Frames: 3, FPS: 10},
		{Name: ClipDeath, Row: 9, Frames: 2, FPS: 4, Once: true},
	}
}

func TestAnimatorUpdate(t *testing.T) {
	a := NewAnimator(16, 16, testClips())

	a.Update(0.2)
	assert.Equal(t, 0, a.Frame)
	a.Update(0.05)
	assert.Equal(t, 1, a.Frame)

	// one large step can cross several frames and wraps
	a.Update(0.75)
	assert.Equal(t, 0, a.Frame)
	assert.True(t, a.Playing)

	a.SetClip(9)
	a.Update(10)
	assert.Equal(t, 1, a.Frame, "once clips stop on the last frame")
	assert.True(t, a.IsLastFrame())
}

func TestAnimatorSetClip(t *testing.T) {
	a := NewAnimator(16, 16, testClips())
	a.SetClip(3)
	a.Update(0.25)
	require.Equal(t, 2, a.Frame)

	a.SetClip(3)
	assert.Equal(t, 2, a.Frame, "same clip keeps playing")

	a.SetClip(4)
	assert.Equal(t, 4, a.Current)
	assert.Zero(t, a.Frame)
	assert.Zero(t, a.Timer)

	a.SetClip(-1)
	a.SetClip(99)
	assert.Equal(t, 4, a.Current, "out of range clips are ignored")
}

func TestAnimatorSourceRect(t *testing.T) {
	a := NewAnimator(32, 24, testClips())
	a.Origin = Vec2{X: 8, Y: 4}
	a.SetClip(5)
	a.Update(0.35)

	assert.Equal(t, Rect{X: 8 + 3*32, Y: 4 + 5*24, W: 32, H: 24}, a.SourceRect())

	a.Playing = false
	a.Update(1)
	assert.Equal(t, 3, a.Frame, "paused animators keep their frame")

	var empty Animator
	assert.Equal(t, Rect{}, empty.SourceRect())
	assert.False(t, empty.IsLastFrame())
}

func TestNewClipSet(t *testing.T) {
	set, err := NewClipSet(testClips())
	require.NoError(t, err)
	assert.Equal(t, ClipSet{
		IdleDown: 0, IdleSide: 1, IdleUp: 2,
		MoveDown: 3, MoveSide: 4, MoveUp: 5,
		AttackDown: 6, AttackSide: 7, AttackUp: 8,
		Death: 9,
	}, set)

	set, err = NewClipSet(testClips()[:9])
	require.NoError(t, err)
	assert.Equal(t, -1, set.Death, "death is optional")

	_, err = NewClipSet(testClips()[1:])
	assert.ErrorIs(t, err, ErrMissingClip)
	assert.ErrorContains(t, err, ClipIdleDown)
}

func TestClipSetRoles(t *testing.T) {
	set, err := NewClipSet(testClips())
	require.NoError(t, err)

	assert.Equal(t, set.IdleSide, set.idleFor(set.MoveSide))
	assert.Equal(t, set.IdleUp, set.idleFor(set.MoveUp))
	assert.Equal(t, set.IdleDown, set.idleFor(set.MoveDown))
	assert.Equal(t, set.AttackSide, set.attackFor(set.MoveSide))
	assert.Equal(t, set.AttackUp, set.attackFor(set.MoveUp))
	assert.Equal(t, set.AttackDown, set.attackFor(set.MoveDown))
}
