package game

//go:generate go tool stringer -type=AIState -trimprefix=State
//go:generate go tool stringer -type=Direction -trimprefix=Direction
//go:generate go tool stringer -type=EnemyKind -trimprefix=Enemy

type Position struct {
	X, Y float64
}

func (p Position) Vec() Vec2 {
	return Vec2{X: p.X, Y: p.Y}
}

// Velocity is in world units per second
type Velocity struct {
	X, Y float64
}

func (v Velocity) Vec() Vec2 {
	return Vec2{X: v.X, Y: v.Y}
}

func (v Velocity) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// Collider separates collision geometry from the drawn sprite. Offset and Size
// describe the collision box relative to Position; Padding is the distance
// from Position to the visible part of the sprite and Visible its size.
type Collider struct {
	Offset  Vec2
	Size    Vec2
	Padding Vec2
	Visible Vec2
}

// Rect returns the collision box for an entity standing at pos
func (c Collider) Rect(pos Vec2) Rect {
	return NewRect(pos.Add(c.Offset), c.Size)
}

type Sprite struct {
	Texture string
	// Source is used when the sprite has no animation. A zero Source means
	// the whole texture.
	Source    Rect
	Animation Animator
	DestSize  Vec2
	FlipX     bool
	Clips     ClipSet
	// LastMove is the clip index of the last non-idle movement clip
	LastMove int
}

// Animated reports whether the sprite draws frames from an animator
func (s *Sprite) Animated() bool {
	return len(s.Animation.Clips) > 0
}

// Frame returns the source rectangle to draw this frame
func (s *Sprite) Frame() Rect {
	if s.Animated() {
		return s.Animation.SourceRect()
	}
	return s.Source
}

type Direction int

const (
	DirectionDown Direction = iota
	DirectionUp
	DirectionLeft
	DirectionRight
)

type Player struct {
	WalkSpeed      float64
	Attacking      bool
	AttackTimer    float64
	AttackDuration float64
	// HitCooldown is the invulnerability window after being hit
	HitCooldown      float64
	HitCooldownTimer float64
	LastDirection    Direction
	// AttackHeld is the attack input level of the previous frame
	AttackHeld bool
}

type AIState int

const (
	StateWander AIState = iota
	StateChasePlayer
	StateAttack
	StateDead
)

type EnemyKind int

const (
	EnemySkeleton EnemyKind = iota
	EnemySlime
)

type Enemy struct {
	Kind  EnemyKind
	State AIState

	WalkSpeed   float64
	ChaseSpeed  float64
	AttackSpeed float64

	WanderTimer             float64
	ChangeDirectionInterval float64

	AggroRange  float64
	AttackRange float64

	AttackInterval          float64
	AttackTimer             float64
	Attacking               bool
	AttackAnimationTimer    float64
	AttackAnimationDuration float64

	HitCooldown            float64
	DeathAnimationFinished bool
}

func (e *Enemy) Dead() bool {
	return e.State == StateDead
}

// Decoration marks animated scenery spawned from the map
type Decoration struct {
	Name string
}
