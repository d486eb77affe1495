package game

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var ErrInvalidTuning = errors.New("game: invalid tuning")

//go:embed tuning.yaml
var defaultTuning []byte

type Tuning struct {
	World       WorldTuning            `yaml:"world"`
	Player      PlayerTuning           `yaml:"player"`
	Enemies     map[string]EnemyTuning `yaml:"enemies"`
	Decorations DecorationTuning       `yaml:"decorations"`
}

// WorldTuning is the arena size used when no map provides one
type WorldTuning struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type ClipTuning struct {
	Name   string  `yaml:"name"`
	Row    int     `yaml:"row"`
	Frames int     `yaml:"frames"`
	FPS    float64 `yaml:"fps"`
	Once   bool    `yaml:"once"`
}

type SpriteTuning struct {
	Texture string       `yaml:"texture"`
	FrameW  float64      `yaml:"frame_w"`
	FrameH  float64      `yaml:"frame_h"`
	DestW   float64      `yaml:"dest_w"`
	DestH   float64      `yaml:"dest_h"`
	Clips   []ClipTuning `yaml:"clips"`
}

type ColliderTuning struct {
	OffsetX  float64 `yaml:"offset_x"`
	OffsetY  float64 `yaml:"offset_y"`
	Width    float64 `yaml:"width"`
	Height   float64 `yaml:"height"`
	PaddingX float64 `yaml:"padding_x"`
	PaddingY float64 `yaml:"padding_y"`
	VisibleW float64 `yaml:"visible_w"`
	VisibleH float64 `yaml:"visible_h"`
}

type PlayerTuning struct {
	WalkSpeed      float64        `yaml:"walk_speed"`
	AttackDuration float64        `yaml:"attack_duration"`
	HitCooldown    float64        `yaml:"hit_cooldown"`
	Sprite         SpriteTuning   `yaml:"sprite"`
	Collider       ColliderTuning `yaml:"collider"`
}

type EnemyTuning struct {
	WalkSpeed               float64        `yaml:"walk_speed"`
	ChaseSpeed              float64        `yaml:"chase_speed"`
	AttackSpeed             float64        `yaml:"attack_speed"`
	ChangeDirectionInterval float64        `yaml:"change_direction_interval"`
	AttackInterval          float64        `yaml:"attack_interval"`
	AggroRange              float64        `yaml:"aggro_range"`
	AttackRange             float64        `yaml:"attack_range"`
	AttackAnimationDuration float64        `yaml:"attack_animation_duration"`
	HitCooldown             float64        `yaml:"hit_cooldown"`
	Sprite                  SpriteTuning   `yaml:"sprite"`
	Collider                ColliderTuning `yaml:"collider"`
}

type DecorationTuning struct {
	Texture string  `yaml:"texture"`
	FPS     float64 `yaml:"fps"`
}

// DefaultTuning decodes the embedded tuning.yaml
func DefaultTuning() (*Tuning, error) {
	return ParseTuning(defaultTuning)
}

// LoadTuning reads a tuning file from disk, or the embedded defaults when
// path is empty.
func LoadTuning(path string) (*Tuning, error) {
	if path == "" {
		return DefaultTuning()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("game: load tuning %s: %w", path, err)
	}
	tuning, err := ParseTuning(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tuning, nil
}

// ParseTuning decodes and validates tuning YAML. Unknown fields are rejected.
func ParseTuning(data []byte) (*Tuning, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var tuning Tuning
	if err := decoder.Decode(&tuning); err != nil {
		return nil, fmt.Errorf("game: unmarshal tuning: %w", err)
	}
	if err := tuning.validate(); err != nil {
		return nil, err
	}
	return &tuning, nil
}

func (t *Tuning) validate() error {
	if t.Player.WalkSpeed <= 0 {
		return fmt.Errorf("%w: player walk_speed must be positive", ErrInvalidTuning)
	}
	if t.Player.AttackDuration <= 0 {
		return fmt.Errorf("%w: player attack_duration must be positive", ErrInvalidTuning)
	}
	if _, err := t.Player.Sprite.clipSet(); err != nil {
		return fmt.Errorf("%w: player sprite: %w", ErrInvalidTuning, err)
	}

	for name, enemy := range t.Enemies {
		if _, err := ParseEnemyKind(name); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidTuning, err)
		}
		if enemy.AttackRange >= enemy.AggroRange {
			return fmt.Errorf("%w: enemy %s: attack_range must be below aggro_range", ErrInvalidTuning, name)
		}
		if enemy.ChangeDirectionInterval <= 0 || enemy.AttackInterval <= 0 {
			return fmt.Errorf("%w: enemy %s: intervals must be positive", ErrInvalidTuning, name)
		}
		clips, err := enemy.Sprite.clipSet()
		if err != nil {
			return fmt.Errorf("%w: enemy %s sprite: %w", ErrInvalidTuning, name, err)
		}
		if clips.Death < 0 {
			return fmt.Errorf("%w: enemy %s sprite: %w: [%s]", ErrInvalidTuning, name, ErrMissingClip, ClipDeath)
		}
	}
	return nil
}

func (s SpriteTuning) clips() []Clip {
	clips := make([]Clip, len(s.Clips))
	for i, c := range s.Clips {
		clips[i] = Clip{Name: c.Name, Row: c.Row, Frames: c.Frames, FPS: c.FPS, Once: c.Once}
	}
	return clips
}

func (s SpriteTuning) clipSet() (ClipSet, error) {
	return NewClipSet(s.clips())
}

// sprite builds a Sprite with its animator on the idle-down clip
func (s SpriteTuning) sprite() (Sprite, error) {
	clips := s.clips()
	set, err := NewClipSet(clips)
	if err != nil {
		return Sprite{}, err
	}
	animator := NewAnimator(s.FrameW, s.FrameH, clips)
	animator.Current = set.IdleDown
	return Sprite{
		Texture:   s.Texture,
		Animation: animator,
		DestSize:  Vec2{X: s.DestW, Y: s.DestH},
		Clips:     set,
		LastMove:  set.MoveDown,
	}, nil
}

func (c ColliderTuning) collider() Collider {
	return Collider{
		Offset:  Vec2{X: c.OffsetX, Y: c.OffsetY},
		Size:    Vec2{X: c.Width, Y: c.Height},
		Padding: Vec2{X: c.PaddingX, Y: c.PaddingY},
		Visible: Vec2{X: c.VisibleW, Y: c.VisibleH},
	}
}
