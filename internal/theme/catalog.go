// Package theme provides the area theme catalog: static configuration tying
// each theme to a preferred layout algorithm, default content densities, a
// recommended player level, and the descriptive vocabulary used for room
// flavor text.
package theme

import (
	"fmt"
	"sort"
)

// Algorithm identifies a layout generation strategy.
type Algorithm string

// Supported layout algorithms.
const (
	AlgorithmBSP          Algorithm = "bsp"
	AlgorithmCellular     Algorithm = "cellular"
	AlgorithmSimpleRandom Algorithm = "simple_random"
)

// Valid reports whether a is a recognised algorithm.
func (a Algorithm) Valid() bool {
	switch a {
	case AlgorithmBSP, AlgorithmCellular, AlgorithmSimpleRandom:
		return true
	}
	return false
}

// Area identifies a visual and content theme for generated areas.
type Area string

// Built-in area themes.
const (
	Dungeon         Area = "dungeon"
	Cave            Area = "cave"
	Forest          Area = "forest"
	Ruins           Area = "ruins"
	Castle          Area = "castle"
	Temple          Area = "temple"
	Sewers          Area = "sewers"
	UndergroundCity Area = "underground_city"
)

// Vocabulary holds the noun and adjective sets substituted into room
// description templates.
type Vocabulary struct {
	// RoomNouns names the kinds of spaces found in this theme.
	RoomNouns []string `yaml:"room_nouns"`
	// TileNouns names the floor/wall material of this theme.
	TileNouns []string `yaml:"tile_nouns"`
	// Adjectives sets the mood of generated descriptions.
	Adjectives []string `yaml:"adjectives"`
}

// Template is the generation profile for a themed area.
type Template struct {
	// Name is the display name of the theme.
	Name string `yaml:"name"`
	// Theme is the theme identifier.
	Theme Area `yaml:"theme"`
	// Description summarizes the area in one sentence.
	Description string `yaml:"description"`
	// Algorithm selects the layout generation strategy.
	Algorithm Algorithm `yaml:"algorithm"`
	// MonsterDensity is the monster spawn density in [0, 1].
	MonsterDensity float64 `yaml:"monster_density"`
	// TreasureDensity is the treasure density in [0, 1].
	TreasureDensity float64 `yaml:"treasure_density"`
	// TrapDensity is the trap density in [0, 1].
	TrapDensity float64 `yaml:"trap_density"`
	// RecommendedLevel is the suggested player level, >= 1.
	RecommendedLevel int `yaml:"recommended_level"`
	// Vocabulary feeds the room description templates.
	Vocabulary Vocabulary `yaml:"vocabulary"`
}

// Validate checks template invariants.
//
// Postcondition: Returns nil if valid, or an error describing the first violation.
func (t Template) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("template: name must not be empty")
	}
	if t.Theme == "" {
		return fmt.Errorf("template %q: theme must not be empty", t.Name)
	}
	if !t.Algorithm.Valid() {
		return fmt.Errorf("template %q: unknown algorithm %q", t.Name, t.Algorithm)
	}
	for _, d := range []struct {
		name  string
		value float64
	}{
		{"monster_density", t.MonsterDensity},
		{"treasure_density", t.TreasureDensity},
		{"trap_density", t.TrapDensity},
	} {
		if d.value < 0 || d.value > 1 {
			return fmt.Errorf("template %q: %s %v outside [0, 1]", t.Name, d.name, d.value)
		}
	}
	if t.RecommendedLevel < 1 {
		return fmt.Errorf("template %q: recommended_level must be >= 1, got %d", t.Name, t.RecommendedLevel)
	}
	if len(t.Vocabulary.RoomNouns) == 0 || len(t.Vocabulary.TileNouns) == 0 {
		return fmt.Errorf("template %q: vocabulary must include room nouns and tile nouns", t.Name)
	}
	return nil
}

// Catalog maps themes to their generation templates.
type Catalog struct {
	templates map[Area]Template
}

// NewCatalog creates a catalog populated with the eight built-in themes.
//
// Postcondition: every built-in template validates.
func NewCatalog() *Catalog {
	c := &Catalog{templates: make(map[Area]Template, len(builtins))}
	for _, t := range builtins {
		c.templates[t.Theme] = t
	}
	return c
}

// Template returns the template for the given theme.
//
// Postcondition: Returns (template, true) if found, or (Template{}, false).
func (c *Catalog) Template(area Area) (Template, bool) {
	t, ok := c.templates[area]
	return t, ok
}

// Register adds or replaces a template after validating it.
//
// Postcondition: Template(t.Theme) returns t if Register returned nil.
func (c *Catalog) Register(t Template) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("registering theme: %w", err)
	}
	c.templates[t.Theme] = t
	return nil
}

// Themes returns all registered theme identifiers in sorted order.
func (c *Catalog) Themes() []Area {
	out := make([]Area, 0, len(c.templates))
	for a := range c.templates {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// builtins holds the eight shipped theme profiles.
var builtins = []Template{
	{
		Name:             "Dungeon",
		Theme:            Dungeon,
		Description:      "A dark underground dungeon with stone walls",
		Algorithm:        AlgorithmBSP,
		MonsterDensity:   0.6,
		TreasureDensity:  0.3,
		TrapDensity:      0.3,
		RecommendedLevel: 3,
		Vocabulary: Vocabulary{
			RoomNouns:  []string{"chamber", "cell block", "guard post", "vault"},
			TileNouns:  []string{"worn flagstones", "rough-hewn stone", "cracked masonry"},
			Adjectives: []string{"dank", "torchlit", "echoing", "forgotten"},
		},
	},
	{
		Name:             "Cave",
		Theme:            Cave,
		Description:      "A natural limestone cave with organic passages",
		Algorithm:        AlgorithmCellular,
		MonsterDensity:   0.4,
		TreasureDensity:  0.2,
		TrapDensity:      0.1,
		RecommendedLevel: 2,
		Vocabulary: Vocabulary{
			RoomNouns:  []string{"cavern", "grotto", "hollow", "gallery"},
			TileNouns:  []string{"damp limestone", "dripping stalactites", "smooth river stone"},
			Adjectives: []string{"echoing", "pitch-black", "humid", "winding"},
		},
	},
	{
		Name:             "Forest",
		Theme:            Forest,
		Description:      "A dense magical forest with twisted paths",
		Algorithm:        AlgorithmSimpleRandom,
		MonsterDensity:   0.3,
		TreasureDensity:  0.2,
		TrapDensity:      0.1,
		RecommendedLevel: 1,
		Vocabulary: Vocabulary{
			RoomNouns:  []string{"clearing", "glade", "thicket", "grove"},
			TileNouns:  []string{"tangled roots", "moss-covered earth", "fallen leaves"},
			Adjectives: []string{"overgrown", "sun-dappled", "whispering", "ancient"},
		},
	},
	{
		Name:             "Ancient Ruins",
		Theme:            Ruins,
		Description:      "Crumbling ancient structures overgrown with nature",
		Algorithm:        AlgorithmBSP,
		MonsterDensity:   0.5,
		TreasureDensity:  0.4,
		TrapDensity:      0.2,
		RecommendedLevel: 4,
		Vocabulary: Vocabulary{
			RoomNouns:  []string{"ruined hall", "collapsed atrium", "broken colonnade", "sunken courtyard"},
			TileNouns:  []string{"shattered tiles", "vine-choked rubble", "faded mosaics"},
			Adjectives: []string{"crumbling", "weathered", "silent", "half-buried"},
		},
	},
	{
		Name:             "Castle",
		Theme:            Castle,
		Description:      "An imposing fortress with fortified halls",
		Algorithm:        AlgorithmBSP,
		MonsterDensity:   0.7,
		TreasureDensity:  0.3,
		TrapDensity:      0.2,
		RecommendedLevel: 6,
		Vocabulary: Vocabulary{
			RoomNouns:  []string{"great hall", "armory", "barracks", "keep"},
			TileNouns:  []string{"polished granite", "iron-banded doors", "heavy stonework"},
			Adjectives: []string{"fortified", "imposing", "drafty", "banner-hung"},
		},
	},
	{
		Name:             "Temple",
		Theme:            Temple,
		Description:      "A sacred temple with mystical architecture",
		Algorithm:        AlgorithmCellular,
		MonsterDensity:   0.4,
		TreasureDensity:  0.5,
		TrapDensity:      0.3,
		RecommendedLevel: 5,
		Vocabulary: Vocabulary{
			RoomNouns:  []string{"sanctum", "shrine", "reliquary", "prayer hall"},
			TileNouns:  []string{"gilded marble", "incense-stained stone", "carved altars"},
			Adjectives: []string{"sacred", "hushed", "candlelit", "mystical"},
		},
	},
	{
		Name:             "Sewers",
		Theme:            Sewers,
		Description:      "Disgusting underground sewage tunnels",
		Algorithm:        AlgorithmCellular,
		MonsterDensity:   0.5,
		TreasureDensity:  0.1,
		TrapDensity:      0.2,
		RecommendedLevel: 2,
		Vocabulary: Vocabulary{
			RoomNouns:  []string{"cistern", "junction", "overflow basin", "drainage tunnel"},
			TileNouns:  []string{"slick brickwork", "fetid sludge", "rusted grates"},
			Adjectives: []string{"reeking", "flooded", "claustrophobic", "vermin-ridden"},
		},
	},
	{
		Name:             "Underground City",
		Theme:            UndergroundCity,
		Description:      "An ancient dwarven city deep below the surface",
		Algorithm:        AlgorithmSimpleRandom,
		MonsterDensity:   0.3,
		TreasureDensity:  0.4,
		TrapDensity:      0.1,
		RecommendedLevel: 7,
		Vocabulary: Vocabulary{
			RoomNouns:  []string{"plaza", "forge hall", "market square", "stone manor"},
			TileNouns:  []string{"geometric pavement", "rune-carved pillars", "dwarven stonework"},
			Adjectives: []string{"abandoned", "cavernous", "lamplit", "dust-laden"},
		},
	},
}
