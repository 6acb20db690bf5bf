package dungeon

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/mapsmith/internal/rng"
	"github.com/cory-johannsen/mapsmith/internal/theme"
)

// LayoutGenerator is the capability shared by the three layout strategies.
// Implementations carve rooms (and corridors, where the algorithm uses them)
// into an all-Wall map using only the supplied randomness source.
type LayoutGenerator interface {
	Generate(m *DungeonMap, r *rng.Source) error
}

// Options bundles the grid size and per-algorithm tuning for an Engine.
type Options struct {
	Width    int             `mapstructure:"width"`
	Height   int             `mapstructure:"height"`
	BSP      BSPOptions      `mapstructure:"bsp"`
	Cellular CellularOptions `mapstructure:"cellular"`
	Simple   SimpleOptions   `mapstructure:"simple"`
	Populate PopulateOptions `mapstructure:"populate"`
}

// DefaultOptions returns the shipped engine tuning on a 64x64 grid.
func DefaultOptions() Options {
	return Options{
		Width:    64,
		Height:   64,
		BSP:      DefaultBSPOptions(),
		Cellular: DefaultCellularOptions(),
		Simple:   DefaultSimpleOptions(),
		Populate: DefaultPopulateOptions(),
	}
}

// Engine is the generation entry point consumed by the IDE preview, the
// gameplay loop, and persistence. It is stateless apart from configuration;
// independent Generate calls are safe to run concurrently.
type Engine struct {
	opts   Options
	logger *zap.Logger
}

// NewEngine creates an Engine with the given tuning.
//
// Precondition: logger must be non-nil.
func NewEngine(opts Options, logger *zap.Logger) *Engine {
	return &Engine{opts: opts, logger: logger}
}

// Generate synthesizes a populated DungeonMap from (seed, template).
//
// All parameters are validated before any randomness is consumed; invalid
// input returns an InvalidParameterError and no map. The same (seed,
// template, options) triple always yields a structurally identical map.
// A partial result from the simple generator is a success with a warning
// attached to the map, never an error.
func (e *Engine) Generate(seed int64, tmpl theme.Template) (*DungeonMap, error) {
	if err := e.validate(tmpl); err != nil {
		return nil, err
	}

	layout, err := e.layoutFor(tmpl.Algorithm)
	if err != nil {
		return nil, err
	}

	r := rng.New(seed)
	m := NewDungeonMap(e.opts.Width, e.opts.Height, seed, tmpl)
	if err := layout.Generate(m, r); err != nil {
		return nil, err
	}
	if err := Populate(m, r, e.opts.Populate, e.logger); err != nil {
		return nil, err
	}

	e.logger.Info("area generated",
		zap.Int64("seed", seed),
		zap.String("theme", string(tmpl.Theme)),
		zap.String("algorithm", string(tmpl.Algorithm)),
		zap.Int("rooms", len(m.Rooms)),
		zap.Int("floor_tiles", m.FloorCount()),
		zap.Int("warnings", len(m.Warnings)),
	)
	return m, nil
}

// validate runs the fail-fast parameter checks shared by all algorithms.
// Algorithm-specific option checks run inside each generator, still before
// any randomness is consumed.
func (e *Engine) validate(tmpl theme.Template) error {
	if e.opts.Width < 1 {
		return &InvalidParameterError{Param: "width", Reason: "must be positive"}
	}
	if e.opts.Height < 1 {
		return &InvalidParameterError{Param: "height", Reason: "must be positive"}
	}
	if err := tmpl.Validate(); err != nil {
		return &InvalidParameterError{Param: "template", Reason: err.Error()}
	}
	return nil
}

// layoutFor selects the strategy for the template's algorithm.
func (e *Engine) layoutFor(algorithm theme.Algorithm) (LayoutGenerator, error) {
	switch algorithm {
	case theme.AlgorithmBSP:
		return &BSPGenerator{Opts: e.opts.BSP, Logger: e.logger}, nil
	case theme.AlgorithmCellular:
		return &CellularGenerator{Opts: e.opts.Cellular, Logger: e.logger}, nil
	case theme.AlgorithmSimpleRandom:
		return &SimpleGenerator{Opts: e.opts.Simple, Logger: e.logger}, nil
	}
	return nil, &InvalidParameterError{Param: "algorithm", Reason: "unknown algorithm " + string(algorithm)}
}
