package game

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownEnemyKind = errors.New("game: unknown enemy kind")

// EnemyKinds lists every kind in declaration order
var EnemyKinds = []EnemyKind{EnemySkeleton, EnemySlime}

// ParseEnemyKind maps a map object or tuning name such as "skeleton" to its
// kind. Matching ignores case.
func ParseEnemyKind(name string) (EnemyKind, error) {
	for _, kind := range EnemyKinds {
		if strings.EqualFold(name, kind.String()) {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownEnemyKind, name)
}

// EnemyArchetype is the spawn template of one enemy kind
type EnemyArchetype struct {
	Kind     EnemyKind
	Enemy    Enemy
	Sprite   Sprite
	Collider Collider
}

// Archetypes is the stat table looked up once per spawn
type Archetypes map[EnemyKind]EnemyArchetype

// NewArchetypes builds the table from tuning. Every kind must be tuned.
func NewArchetypes(t *Tuning) (Archetypes, error) {
	table := make(Archetypes, len(EnemyKinds))
	for name, et := range t.Enemies {
		kind, err := ParseEnemyKind(name)
		if err != nil {
			return nil, err
		}
		sprite, err := et.Sprite.sprite()
		if err != nil {
			return nil, fmt.Errorf("game: enemy %s: %w", name, err)
		}
		table[kind] = EnemyArchetype{
			Kind: kind,
			Enemy: Enemy{
				Kind:                    kind,
				State:                   StateWander,
				WalkSpeed:               et.WalkSpeed,
				ChaseSpeed:              et.ChaseSpeed,
				AttackSpeed:             et.AttackSpeed,
				ChangeDirectionInterval: et.ChangeDirectionInterval,
				AggroRange:              et.AggroRange,
				AttackRange:             et.AttackRange,
				AttackInterval:          et.AttackInterval,
				AttackTimer:             et.AttackInterval,
				AttackAnimationTimer:    et.AttackAnimationDuration,
				AttackAnimationDuration: et.AttackAnimationDuration,
				HitCooldown:             et.HitCooldown,
			},
			Sprite:   sprite,
			Collider: et.Collider.collider(),
		}
	}

	for _, kind := range EnemyKinds {
		if _, ok := table[kind]; !ok {
			return nil, fmt.Errorf("%w: %s has no tuning", ErrInvalidTuning, kind)
		}
	}
	return table, nil
}

// PlayerArchetype is the spawn template of the player
type PlayerArchetype struct {
	Player   Player
	Sprite   Sprite
	Collider Collider
}

func NewPlayerArchetype(t *Tuning) (PlayerArchetype, error) {
	sprite, err := t.Player.Sprite.sprite()
	if err != nil {
		return PlayerArchetype{}, fmt.Errorf("game: player: %w", err)
	}
	return PlayerArchetype{
		Player: Player{
			WalkSpeed:      t.Player.WalkSpeed,
			AttackDuration: t.Player.AttackDuration,
			HitCooldown:    t.Player.HitCooldown,
			LastDirection:  DirectionDown,
		},
		Sprite:   sprite,
		Collider: t.Player.Collider.collider(),
	}, nil
}
