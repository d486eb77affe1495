package game

import "github.com/plus3/rustling/ecs"

// Phase names in execution order
const (
	PhaseInput         = "input"
	PhaseEnemyAggro    = "enemy-aggro"
	PhaseEnemyMovement = "enemy-movement"
	PhasePlayerAttack  = "player-attack"
	PhasePlayerHit     = "player-hit"
	PhaseMovement      = "movement"
	PhaseAnimation     = "animation"
)

// Phases is the fixed per-frame order. Classification runs before enemy
// movement, and both combat passes run before positions are integrated.
var Phases = []string{
	PhaseInput,
	PhaseEnemyAggro,
	PhaseEnemyMovement,
	PhasePlayerAttack,
	PhasePlayerHit,
	PhaseMovement,
	PhaseAnimation,
}

// NewSystem returns a fresh system for a phase name, or nil if the name is
// not a game phase.
func NewSystem(phase string) ecs.System {
	switch phase {
	case PhaseInput:
		return &InputSystem{}
	case PhaseEnemyAggro:
		return &EnemyAggroSystem{}
	case PhaseEnemyMovement:
		return &EnemyMovementSystem{}
	case PhasePlayerAttack:
		return &PlayerAttackSystem{}
	case PhasePlayerHit:
		return &PlayerHitSystem{}
	case PhaseMovement:
		return &MovementSystem{}
	case PhaseAnimation:
		return &AnimationSystem{}
	}
	return nil
}

// RegisterSystems appends every game phase to scheduler in order
func RegisterSystems(scheduler *ecs.Scheduler) {
	for _, phase := range Phases {
		scheduler.Register(phase, NewSystem(phase))
	}
}
