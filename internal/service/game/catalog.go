package game

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog/roles.yaml
var defaultCatalogData []byte

// RoleDefinition 是角色表中的一条不可变定义
type RoleDefinition struct {
	ID             string    `yaml:"id"`
	Alignment      Alignment `yaml:"alignment"`
	Objective      string    `yaml:"objective"`
	Category       string    `yaml:"category"`
	Abilities      []Ability `yaml:"abilities"`
	Required       bool      `yaml:"required"`
	Filler         bool      `yaml:"filler"`
	Narrator       bool      `yaml:"narrator"`
	MaxPerGame     int       `yaml:"max_per_game"`
	CountsAsPlayer bool      `yaml:"counts_as_player"`
	VoteWeight     int       `yaml:"vote_weight"`
}

type AbilityDefinition struct {
	ID            Ability `yaml:"id"`
	Phase         string  `yaml:"phase"`
	Resolves      string  `yaml:"resolves"`
	PrivateResult bool    `yaml:"private_result"`
	Passive       bool    `yaml:"passive"`
	UsesPerGame   int     `yaml:"uses_per_game"`
	Description   string  `yaml:"description"`
}

// Rules 是角色分配使用的参数
type Rules struct {
	MinPlayers     int      `yaml:"min_players"`
	SpecialChance  float64  `yaml:"special_chance"`
	MafiaRole      string   `yaml:"mafia_role"`
	MafiaDivisor   int      `yaml:"mafia_divisor"`
	RequiredScarce []string `yaml:"required_scarce"`
}

// Catalog 加载后不再修改，可以在多个会话之间共享引用
type Catalog struct {
	rules     Rules
	roles     []RoleDefinition
	roleIdx   map[string]int
	abilities map[Ability]AbilityDefinition
	filler    string
}

type catalogFile struct {
	Rules     Rules               `yaml:"rules"`
	Abilities []AbilityDefinition `yaml:"abilities"`
	Roles     []RoleDefinition    `yaml:"roles"`
}

var (
	defaultCatalog     *Catalog
	defaultCatalogOnce sync.Once
)

// DefaultCatalog 返回内置的角色表
func DefaultCatalog() *Catalog {
	defaultCatalogOnce.Do(func() {
		c, err := LoadCatalog(defaultCatalogData)
		if err != nil {
			panic("Failed to load embedded role catalog: " + err.Error())
		}
		defaultCatalog = c
	})

	return defaultCatalog
}

// LoadCatalog 解析并校验一份 YAML 角色表
func LoadCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse role catalog: %w", err)
	}

	c := &Catalog{
		rules:     file.Rules,
		roles:     file.Roles,
		roleIdx:   make(map[string]int, len(file.Roles)),
		abilities: make(map[Ability]AbilityDefinition, len(file.Abilities)),
	}

	if c.rules.MinPlayers <= 0 {
		c.rules.MinPlayers = 3
	}
	if c.rules.MafiaDivisor <= 0 {
		c.rules.MafiaDivisor = 4
	}
	if c.rules.SpecialChance < 0 || c.rules.SpecialChance > 1 {
		return nil, fmt.Errorf("special_chance must be within [0, 1], got %v", c.rules.SpecialChance)
	}

	for _, a := range file.Abilities {
		if a.ID == "" {
			return nil, fmt.Errorf("ability without id")
		}
		if _, dup := c.abilities[a.ID]; dup {
			return nil, fmt.Errorf("duplicate ability %q", a.ID)
		}
		c.abilities[a.ID] = a
	}

	for i := range c.roles {
		r := &c.roles[i]
		if r.ID == "" {
			return nil, fmt.Errorf("role without id")
		}
		if _, dup := c.roleIdx[r.ID]; dup {
			return nil, fmt.Errorf("duplicate role %q", r.ID)
		}

		switch r.Alignment {
		case AlignmentTown, AlignmentMafia, AlignmentIndependent, AlignmentNeutral:
		default:
			return nil, fmt.Errorf("role %q has unknown alignment %q", r.ID, r.Alignment)
		}

		for _, a := range r.Abilities {
			if _, ok := c.abilities[a]; !ok {
				return nil, fmt.Errorf("role %q references unknown ability %q", r.ID, a)
			}
		}

		if r.VoteWeight <= 0 {
			r.VoteWeight = 1
		}

		if r.Filler {
			if c.filler != "" {
				return nil, fmt.Errorf("more than one filler role: %q and %q", c.filler, r.ID)
			}
			c.filler = r.ID
		}

		c.roleIdx[r.ID] = i
	}

	if c.filler == "" {
		return nil, fmt.Errorf("catalog has no filler role")
	}

	mafia, ok := c.Role(c.rules.MafiaRole)
	if !ok {
		return nil, fmt.Errorf("mafia role %q is not defined", c.rules.MafiaRole)
	}
	if mafia.Alignment != AlignmentMafia {
		return nil, fmt.Errorf("mafia role %q is not mafia aligned", mafia.ID)
	}

	for _, id := range c.rules.RequiredScarce {
		if _, ok := c.Role(id); !ok {
			return nil, fmt.Errorf("required role %q is not defined", id)
		}
	}

	return c, nil
}

func (c *Catalog) Rules() Rules {
	return c.rules
}

func (c *Catalog) Role(id string) (RoleDefinition, bool) {
	i, ok := c.roleIdx[id]
	if !ok {
		return RoleDefinition{}, false
	}
	return c.roles[i], true
}

func (c *Catalog) Ability(id Ability) (AbilityDefinition, bool) {
	a, ok := c.abilities[id]
	return a, ok
}

// Roles 按定义顺序返回全部角色
func (c *Catalog) Roles() []RoleDefinition {
	roles := make([]RoleDefinition, len(c.roles))
	copy(roles, c.roles)
	return roles
}

func (c *Catalog) FillerRole() string {
	return c.filler
}

// assignable 返回可被抽取的特殊角色：计入玩家、非必需、非填充、非主持人
func (c *Catalog) assignable() []RoleDefinition {
	out := make([]RoleDefinition, 0, len(c.roles))
	for _, r := range c.roles {
		if !r.CountsAsPlayer || r.Required || r.Filler || r.Narrator {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (rd RoleDefinition) instantiate() *Role {
	abilities := make([]Ability, len(rd.Abilities))
	copy(abilities, rd.Abilities)

	return &Role{
		ID:         rd.ID,
		Alignment:  rd.Alignment,
		Objective:  rd.Objective,
		Abilities:  abilities,
		VoteWeight: rd.VoteWeight,
	}
}
