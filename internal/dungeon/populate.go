package dungeon

import (
	"math"

	"go.uber.org/zap"

	"github.com/cory-johannsen/mapsmith/internal/rng"
)

// PopulateOptions are the tunables for content population.
type PopulateOptions struct {
	// Normalization is the tile area that yields one feature at density 1.0.
	Normalization float64 `mapstructure:"normalization"`
	// BossMonstersMin and BossMonstersMax bound the boss room's guard count.
	BossMonstersMin int `mapstructure:"boss_monsters_min"`
	BossMonstersMax int `mapstructure:"boss_monsters_max"`
}

// DefaultPopulateOptions returns the shipped population tuning.
func DefaultPopulateOptions() PopulateOptions {
	return PopulateOptions{
		Normalization:   16,
		BossMonstersMin: 2,
		BossMonstersMax: 4,
	}
}

// validate checks option invariants.
func (o PopulateOptions) validate() error {
	if o.Normalization <= 0 {
		return &InvalidParameterError{Param: "populate.normalization", Reason: "must be > 0"}
	}
	if o.BossMonstersMin < 0 || o.BossMonstersMax < o.BossMonstersMin {
		return &InvalidParameterError{Param: "populate.boss_monsters", Reason: "must satisfy 0 <= min <= max"}
	}
	return nil
}

// Populate tags the spawn and boss rooms and fills the feature counts of
// every other room from the template densities. This is the only mutation a
// DungeonMap permits after layout generation.
//
// The spawn room is the first room in generation order and stays empty; the
// boss room is the last and gets a guard pack. A single-room map is both
// spawn and boss. Feature counts use stochastic rounding of
// density * area / normalization, so the expected count matches the density
// exactly while individual rooms jitter deterministically with the rng.
//
// Precondition: m has at least one room; r is the generation rng.
func Populate(m *DungeonMap, r *rng.Source, opts PopulateOptions, logger *zap.Logger) error {
	if err := opts.validate(); err != nil {
		return err
	}
	if len(m.Rooms) == 0 {
		return &InvalidParameterError{Param: "map", Reason: "cannot populate a map with no rooms"}
	}

	tmpl := m.Template
	for i := range m.Rooms {
		room := &m.Rooms[i]
		switch {
		case i == 0 && len(m.Rooms) == 1:
			// Sole room doubles as spawn and boss arena.
			room.Kind = RoomSpawn
			room.Monsters = r.IntRange(opts.BossMonstersMin, opts.BossMonstersMax)
		case i == 0:
			room.Kind = RoomSpawn
		case i == len(m.Rooms)-1:
			room.Kind = RoomBoss
			room.Monsters = r.IntRange(opts.BossMonstersMin, opts.BossMonstersMax)
		default:
			room.Kind = RoomNormal
			room.Monsters = featureCount(tmpl.MonsterDensity, room.Area(), opts.Normalization, r)
			room.Treasures = featureCount(tmpl.TreasureDensity, room.Area(), opts.Normalization, r)
			room.Traps = featureCount(tmpl.TrapDensity, room.Area(), opts.Normalization, r)
		}
	}

	logger.Debug("map populated",
		zap.Int("rooms", len(m.Rooms)),
		zap.String("theme", string(tmpl.Theme)),
	)
	return nil
}

// featureCount converts a density and room area into a feature count using
// stochastic rounding: the fractional part of density*area/normalization
// becomes a probabilistic +1, so E[count] == density*area/normalization.
//
// Postcondition: result >= 0.
func featureCount(density float64, area int, normalization float64, r *rng.Source) int {
	exact := density * float64(area) / normalization
	count := int(math.Floor(exact))
	if r.Float64() < exact-float64(count) {
		count++
	}
	if count < 0 {
		count = 0
	}
	return count
}
