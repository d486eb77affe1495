package game

import (
	"math"

	"github.com/plus3/rustling/ecs"
)

type playerView struct {
	Id       ecs.EntityId
	Position Position
	Player   *Player
}

// InputSystem turns the held actions into player velocity and attack state
type InputSystem struct {
	Actions ecs.Singleton[Actions]
	Players ecs.Query[inputView]
}

type inputView struct {
	Velocity *Velocity
	Player   *Player
}

func (s *InputSystem) Execute(frame *ecs.UpdateFrame) {
	actions := s.Actions.Get()
	if actions == nil {
		return
	}
	s.Players.WithFirst(func(item inputView) {
		drivePlayer(item.Player, item.Velocity, actions, frame.DeltaTime)
	})
}

func drivePlayer(player *Player, velocity *Velocity, actions *Actions, dt float64) {
	*velocity = Velocity{}
	if actions.Held(ActionUp) {
		velocity.Y = -player.WalkSpeed
		player.LastDirection = DirectionUp
	}
	if actions.Held(ActionDown) {
		velocity.Y = player.WalkSpeed
		player.LastDirection = DirectionDown
	}
	if actions.Held(ActionLeft) {
		velocity.X = -player.WalkSpeed
		player.LastDirection = DirectionLeft
	}
	if actions.Held(ActionRight) {
		velocity.X = player.WalkSpeed
		player.LastDirection = DirectionRight
	}

	// diagonals move at walk speed too
	if !velocity.IsZero() {
		v := velocity.Vec().Normalize().Scale(player.WalkSpeed)
		velocity.X, velocity.Y = v.X, v.Y
	}

	held := actions.Held(ActionAttack)
	if held && !player.AttackHeld {
		player.Attacking = true
		player.AttackTimer = player.AttackDuration
	}
	player.AttackHeld = held

	if player.AttackTimer > 0 {
		player.AttackTimer -= dt
		if player.AttackTimer <= 0 {
			player.AttackTimer = 0
			player.Attacking = false
		}
	}
}

// Classify returns the state for an enemy at enemyPos. Ranges compare
// squared distances and are inclusive.
func Classify(e *Enemy, enemyPos, playerPos Vec2) AIState {
	d2 := enemyPos.Sub(playerPos).LengthSquared()
	switch {
	case d2 <= e.AttackRange*e.AttackRange:
		return StateAttack
	case d2 <= e.AggroRange*e.AggroRange:
		return StateChasePlayer
	default:
		return StateWander
	}
}

// EnemyAggroSystem reclassifies every living enemy against the player position
type EnemyAggroSystem struct {
	Players ecs.Query[playerView]
	Enemies ecs.Query[struct {
		Position Position
		Enemy    *Enemy
	}]
}

func (s *EnemyAggroSystem) Execute(frame *ecs.UpdateFrame) {
	player, ok := s.Players.First()
	if !ok {
		return
	}
	playerPos := player.Position.Vec()

	for _, item := range s.Enemies.Iter() {
		if item.Enemy.Dead() {
			continue
		}
		item.Enemy.State = Classify(item.Enemy, item.Position.Vec(), playerPos)
	}
}

// EnemyMovementSystem sets enemy velocity and advances the wander and attack
// timers for the state chosen this frame.
type EnemyMovementSystem struct {
	Rand    ecs.Singleton[Rand]
	Players ecs.Query[playerView]
	Enemies ecs.Query[struct {
		Position Position
		Velocity *Velocity
		Enemy    *Enemy
	}]
}

func (s *EnemyMovementSystem) Execute(frame *ecs.UpdateFrame) {
	player, ok := s.Players.First()
	if !ok {
		return
	}
	rng := s.Rand.Get()
	playerPos := player.Position.Vec()
	dt := frame.DeltaTime

	for _, item := range s.Enemies.Iter() {
		enemy, velocity := item.Enemy, item.Velocity
		toward := playerPos.Sub(item.Position.Vec()).Normalize()

		switch enemy.State {
		case StateWander:
			enemy.Attacking = false
			enemy.WanderTimer += dt
			if enemy.WanderTimer >= enemy.ChangeDirectionInterval {
				enemy.WanderTimer = 0
				if rng != nil {
					*velocity = WanderVelocity(rng, enemy.WalkSpeed)
				}
			}

		case StateChasePlayer:
			enemy.Attacking = false
			setVelocity(velocity, toward.Scale(enemy.ChaseSpeed))

		case StateAttack:
			enemy.AttackTimer += dt
			if enemy.AttackTimer >= enemy.AttackInterval {
				enemy.AttackTimer = 0
				enemy.Attacking = true
				enemy.AttackAnimationTimer = 0
			}

			if enemy.Attacking {
				enemy.AttackAnimationTimer += dt
				// lunge for the whole swing
				setVelocity(velocity, toward.Scale(enemy.AttackSpeed))
				if enemy.AttackAnimationTimer >= enemy.AttackAnimationDuration {
					enemy.Attacking = false
				}
			} else {
				*velocity = Velocity{}
			}

		case StateDead:
			*velocity = Velocity{}
		}
	}
}

// WanderVelocity draws a new wander direction. Half of the draws pause the
// enemy; the rest move at speed in a uniformly random direction.
func WanderVelocity(rng *Rand, speed float64) Velocity {
	angle := rng.Float64() * 2 * math.Pi
	if rng.Float64() < 0.5 {
		return Velocity{}
	}
	return Velocity{X: math.Cos(angle) * speed, Y: math.Sin(angle) * speed}
}

func setVelocity(velocity *Velocity, v Vec2) {
	velocity.X, velocity.Y = v.X, v.Y
}

// Melee hitboxes relative to the player position, by facing
var attackHitboxes = [...]Rect{
	DirectionDown:  {X: 15, Y: 36, W: 20, H: 15},
	DirectionUp:    {X: 14, Y: 18, W: 20, H: 20},
	DirectionLeft:  {X: 3, Y: 24, W: 15, H: 20},
	DirectionRight: {X: 30, Y: 24, W: 15, H: 20},
}

// playerHurtbox is the fixed area enemies must touch to hit the player
var playerHurtbox = Rect{X: 18, Y: 20, W: 13, H: 22}

// AttackHitbox returns the melee rectangle for a player at pos facing dir
func AttackHitbox(pos Vec2, dir Direction) Rect {
	return attackHitboxes[dir].Offset(pos)
}

// PlayerHurtbox returns the player's hit rectangle at pos
func PlayerHurtbox(pos Vec2) Rect {
	return playerHurtbox.Offset(pos)
}

// PlayerAttackSystem cools down enemy hit timers and kills every living enemy
// the open swing overlaps.
type PlayerAttackSystem struct {
	Cooldowns ecs.Query[struct{ Enemy *Enemy }]
	Players   ecs.Query[playerView]
	Targets   ecs.Query[struct {
		Position Position
		Collider Collider
		Enemy    *Enemy
		Velocity *Velocity `ecs:"optional"`
	}]
}

func (s *PlayerAttackSystem) Execute(frame *ecs.UpdateFrame) {
	for _, item := range s.Cooldowns.Iter() {
		item.Enemy.HitCooldown = max(item.Enemy.HitCooldown-frame.DeltaTime, 0)
	}

	player, ok := s.Players.First()
	if !ok || !player.Player.Attacking {
		return
	}
	hitbox := AttackHitbox(player.Position.Vec(), player.Player.LastDirection)

	// no early exit: one swing can kill several enemies
	for _, target := range s.Targets.Iter() {
		enemy := target.Enemy
		if enemy.Dead() || enemy.HitCooldown > 0 {
			continue
		}
		if !hitbox.Overlaps(target.Collider.Rect(target.Position.Vec())) {
			continue
		}
		enemy.State = StateDead
		enemy.Attacking = false
		if target.Velocity != nil {
			*target.Velocity = Velocity{}
		}
	}
}

// PlayerHitSystem grants the player invulnerability after an attacking enemy
// touches it.
type PlayerHitSystem struct {
	Players   ecs.Query[playerView]
	Attackers ecs.Query[struct {
		Position Position
		Collider Collider
		Enemy    Enemy
	}]
}

func (s *PlayerHitSystem) Execute(frame *ecs.UpdateFrame) {
	s.Players.WithFirst(func(item playerView) {
		s.resolve(item.Player, item.Position.Vec(), frame.DeltaTime)
	})
}

// resolve runs while the player is borrowed; attackers are only read
func (s *PlayerHitSystem) resolve(player *Player, pos Vec2, dt float64) {
	player.HitCooldownTimer = max(player.HitCooldownTimer-dt, 0)
	if player.HitCooldownTimer > 0 {
		return
	}

	hurtbox := PlayerHurtbox(pos)
	for _, attacker := range s.Attackers.Iter() {
		if !attacker.Enemy.Attacking || attacker.Enemy.Dead() {
			continue
		}
		if hurtbox.Overlaps(attacker.Collider.Rect(attacker.Position.Vec())) {
			player.HitCooldownTimer = player.HitCooldown
			return
		}
	}
}

// MovementSystem integrates velocity, rejecting any move whose collision box
// would touch an obstacle, then clamps the visible sprite to the world.
type MovementSystem struct {
	Obstacles ecs.Singleton[Obstacles]
	Bounds    ecs.Singleton[WorldBounds]
	Movers    ecs.Query[struct {
		Position *Position
		Velocity Velocity
		Collider Collider
	}]
}

func (s *MovementSystem) Execute(frame *ecs.UpdateFrame) {
	obstacles := s.Obstacles.Get()
	bounds := s.Bounds.Get()

	for _, item := range s.Movers.Iter() {
		next := item.Position.Vec().Add(item.Velocity.Vec().Scale(frame.DeltaTime))
		if obstacles != nil && obstacles.Blocked(item.Collider.Rect(next)) {
			continue
		}
		if bounds != nil {
			next = ClampToBounds(next, item.Collider, *bounds)
		}
		item.Position.X, item.Position.Y = next.X, next.Y
	}
}

// ClampToBounds keeps the visible part of a sprite at pos inside the world
func ClampToBounds(pos Vec2, c Collider, bounds WorldBounds) Vec2 {
	visible := pos.Add(c.Padding)
	visible.X = clamp(visible.X, 0, bounds.Width-c.Visible.X)
	visible.Y = clamp(visible.Y, 0, bounds.Height-c.Visible.Y)
	return visible.Sub(c.Padding)
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		return lo
	}
	return math.Min(math.Max(v, lo), hi)
}

// AnimationSystem picks the clip for players and enemies, then advances
// every animator once.
type AnimationSystem struct {
	Players ecs.Query[struct {
		Sprite   *Sprite
		Velocity Velocity
		Player   Player
	}]
	Enemies ecs.Query[struct {
		Sprite   *Sprite
		Velocity Velocity
		Enemy    *Enemy
	}]
	Sprites ecs.Query[struct{ Sprite *Sprite }]
}

func (s *AnimationSystem) Execute(frame *ecs.UpdateFrame) {
	for _, item := range s.Players.Iter() {
		animatePlayer(item.Sprite, item.Velocity, &item.Player)
	}
	for _, item := range s.Enemies.Iter() {
		animateEnemy(item.Sprite, item.Velocity, item.Enemy)
	}
	for _, item := range s.Sprites.Iter() {
		if item.Sprite.Animated() {
			item.Sprite.Animation.Update(frame.DeltaTime)
		}
	}
}

// selectMovement applies the movement or idle clip for v
func selectMovement(sprite *Sprite, v Velocity) {
	clips := sprite.Clips
	if v.IsZero() {
		sprite.Animation.SetClip(clips.idleFor(sprite.LastMove))
		return
	}
	clip, flip := clips.moveClip(v)
	sprite.FlipX = flip
	sprite.LastMove = clip
	sprite.Animation.SetClip(clip)
}

func animatePlayer(sprite *Sprite, v Velocity, player *Player) {
	if !sprite.Animated() {
		return
	}
	selectMovement(sprite, v)
	if !player.Attacking {
		return
	}

	clips := sprite.Clips
	switch player.LastDirection {
	case DirectionUp:
		sprite.Animation.SetClip(clips.AttackUp)
	case DirectionLeft:
		sprite.FlipX = true
		sprite.Animation.SetClip(clips.AttackSide)
	case DirectionRight:
		sprite.FlipX = false
		sprite.Animation.SetClip(clips.AttackSide)
	default:
		sprite.Animation.SetClip(clips.AttackDown)
	}
}

func animateEnemy(sprite *Sprite, v Velocity, enemy *Enemy) {
	if !sprite.Animated() {
		return
	}

	if enemy.Dead() {
		if enemy.DeathAnimationFinished || sprite.Clips.Death < 0 {
			return
		}
		sprite.Animation.SetClip(sprite.Clips.Death)
		if sprite.Animation.IsLastFrame() {
			sprite.Animation.Playing = false
			enemy.DeathAnimationFinished = true
		}
		return
	}

	selectMovement(sprite, v)
	if enemy.Attacking {
		sprite.Animation.SetClip(sprite.Clips.attackFor(sprite.LastMove))
	}
}
