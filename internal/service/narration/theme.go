package narration

import (
	"fmt"

	"whodunnit-be/internal/service/game"

	"gopkg.in/yaml.v3"
)

// 叙述文案的分桶
type Bucket string

const (
	BucketOpening       Bucket = "opening"
	BucketBetweenPhases Bucket = "between_phases"
	BucketEscalation    Bucket = "escalation"
	BucketEndgame       Bucket = "endgame"
)

var buckets = []Bucket{BucketOpening, BucketBetweenPhases, BucketEscalation, BucketEndgame}

const (
	escalationRound = 3
	endgameRound    = 5
	fallbackRole    = "civilian"
)

type Atmosphere struct {
	Tone   string   `yaml:"tone" json:"tone"`
	Pacing string   `yaml:"pacing" json:"pacing"`
	Mood   []string `yaml:"mood" json:"mood"`
}

// Brief 是面向玩家的角色说明，Ability 为空表示没有主动能力
type Brief struct {
	Ability string `yaml:"ability" json:"ability,omitempty"`
	When    string `yaml:"when" json:"when"`
}

// Option 是一段可供主持人朗读的文案
type Option struct {
	ID     string   `yaml:"id" json:"id"`
	Intent string   `yaml:"intent" json:"intent"`
	Weight *float64 `yaml:"weight" json:"weight,omitempty"`
	Lines  []string `yaml:"lines" json:"lines"`
}

func (o Option) weight() float64 {
	if o.Weight == nil {
		return 1
	}
	return max(0, *o.Weight)
}

type Theme struct {
	ID         string                      `yaml:"id"`
	Name       string                      `yaml:"name"`
	Atmosphere Atmosphere                  `yaml:"atmosphere"`
	Visuals    map[string]string           `yaml:"visuals"`
	RoleMap    map[string][]game.Character `yaml:"role_map"`
	RoleBriefs map[string]Brief            `yaml:"role_briefs"`
	Narration  map[Bucket][]Option         `yaml:"narration"`
}

// ParseTheme 解析并校验一个主题文件
func ParseTheme(data []byte) (*Theme, error) {
	var t Theme
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse theme: %w", err)
	}

	if t.ID == "" {
		return nil, fmt.Errorf("theme without id")
	}
	if t.Name == "" {
		t.Name = t.ID
	}

	for _, b := range buckets {
		if len(t.Narration[b]) == 0 {
			return nil, fmt.Errorf("theme %q: narration bucket %q is empty", t.ID, b)
		}
		for _, opt := range t.Narration[b] {
			if len(opt.Lines) == 0 {
				return nil, fmt.Errorf("theme %q: narration option %q has no lines", t.ID, opt.ID)
			}
		}
	}

	return &t, nil
}

// Brief 返回某个角色在本主题下的说明
func (t *Theme) Brief(roleID string) (Brief, bool) {
	b, ok := t.RoleBriefs[roleID]
	return b, ok
}

// ResolveBucket 按阶段与轮次选择文案分桶
func ResolveBucket(phase game.Phase, round int) Bucket {
	switch {
	case phase == game.PhaseSetup:
		return BucketOpening
	case round >= endgameRound:
		return BucketEndgame
	case round >= escalationRound:
		return BucketEscalation
	default:
		return BucketBetweenPhases
	}
}

// PickWeighted 按权重随机选择，所有权重都不为正时退化为均匀选择
func PickWeighted(options []Option, r game.Rand) (Option, bool) {
	if len(options) == 0 {
		return Option{}, false
	}

	total := 0.0
	for _, o := range options {
		total += o.weight()
	}

	if total <= 0 {
		return options[r.IntN(len(options))], true
	}

	roll := r.Float64() * total
	for _, o := range options {
		roll -= o.weight()
		if roll < 0 {
			return o, true
		}
	}

	return options[len(options)-1], true
}

type Narration struct {
	ThemeID string     `json:"theme_id"`
	Phase   game.Phase `json:"phase"`
	Round   int        `json:"round"`
	Bucket  Bucket     `json:"bucket"`
	Option  Option     `json:"narration"`
}

// Narrate 为当前阶段挑选一段文案
func (t *Theme) Narrate(phase game.Phase, round int, r game.Rand) (Narration, error) {
	bucket := ResolveBucket(phase, round)

	opt, ok := PickWeighted(t.Narration[bucket], r)
	if !ok {
		return Narration{}, fmt.Errorf("theme %q has no narration for bucket %q", t.ID, bucket)
	}

	return Narration{
		ThemeID: t.ID,
		Phase:   phase,
		Round:   round,
		Bucket:  bucket,
		Option:  opt,
	}, nil
}

// AssignCharacters 为每个玩家抽取一个不重复的人物形象。
// 角色的形象用完后使用 civilian 列表的最后一项作为兜底。
func (t *Theme) AssignCharacters(roles map[string]string, order []string, r game.Rand) map[string]game.Character {
	pools := make(map[string][]game.Character, len(t.RoleMap))
	for roleID, variants := range t.RoleMap {
		pool := append([]game.Character(nil), variants...)
		r.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
		pools[roleID] = pool
	}

	var fallback *game.Character
	if generic := t.RoleMap[fallbackRole]; len(generic) > 0 {
		fallback = &generic[len(generic)-1]
	}

	out := make(map[string]game.Character, len(roles))
	for _, playerID := range order {
		roleID, ok := roles[playerID]
		if !ok {
			continue
		}

		if pool := pools[roleID]; len(pool) > 0 {
			out[playerID] = pool[0]
			pools[roleID] = pool[1:]
			continue
		}

		if fallback != nil {
			out[playerID] = *fallback
		}
	}

	return out
}
