package dungeon_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/mapsmith/internal/dungeon"
	"github.com/cory-johannsen/mapsmith/internal/theme"
)

func testEngine(t *testing.T, opts dungeon.Options) *dungeon.Engine {
	t.Helper()
	return dungeon.NewEngine(opts, zap.NewNop())
}

func scenarioOptions() dungeon.Options {
	opts := dungeon.DefaultOptions()
	opts.Width = 40
	opts.Height = 40
	opts.BSP = dungeon.BSPOptions{
		MinLeafSize:  6,
		MaxDepth:     4,
		MinRoomSize:  3,
		Padding:      1,
		MinRoomCount: 1,
	}
	return opts
}

// TestGenerate_ScenarioBSP runs the reference scenario: seed 42, Dungeon/BSP
// on a 40x40 grid with min leaf 6 and max depth 4. The result has at least
// one room, spawn and boss tags, and passes the connectivity check.
func TestGenerate_ScenarioBSP(t *testing.T) {
	e := testEngine(t, scenarioOptions())
	m, err := e.Generate(42, dungeonTemplate(t))
	require.NoError(t, err)

	require.NotEmpty(t, m.Rooms)
	spawn, ok := m.SpawnRoom()
	require.True(t, ok, "a spawn room must be tagged")
	boss, ok := m.BossRoom()
	require.True(t, ok, "a boss room must be tagged")
	if len(m.Rooms) == 1 {
		assert.Equal(t, spawn.ID, boss.ID, "a single room serves as both spawn and boss")
	} else {
		assert.NotEqual(t, spawn.ID, boss.ID)
	}
	assert.True(t, m.Connected(), "generated map must pass the connectivity check:\n%s", m.Render())
}

// TestGenerate_Deterministic verifies the determinism contract for every
// built-in theme: two calls with the same (seed, template) yield structurally
// identical maps.
func TestGenerate_Deterministic(t *testing.T) {
	catalog := theme.NewCatalog()
	e := testEngine(t, dungeon.DefaultOptions())

	for _, area := range catalog.Themes() {
		tmpl, ok := catalog.Template(area)
		require.True(t, ok)
		t.Run(string(area), func(t *testing.T) {
			m1, err := e.Generate(1234, tmpl)
			require.NoError(t, err)
			m2, err := e.Generate(1234, tmpl)
			require.NoError(t, err)
			assert.Equal(t, m1.Snapshot(), m2.Snapshot(),
				"theme %q must replay identically", area)
		})
	}
}

// TestGenerate_SeedSensitive verifies that, for a fixed template, nearby
// seeds produce different tile grids with high probability. A single
// collision across many pairs fails the tolerance.
func TestGenerate_SeedSensitive(t *testing.T) {
	e := testEngine(t, scenarioOptions())
	tmpl := dungeonTemplate(t)

	differing := 0
	const pairs = 20
	for seed := int64(0); seed < pairs; seed++ {
		m1, err := e.Generate(seed, tmpl)
		require.NoError(t, err)
		m2, err := e.Generate(seed+1, tmpl)
		require.NoError(t, err)
		if !assert.ObjectsAreEqual(m1.Snapshot().Tiles, m2.Snapshot().Tiles) {
			differing++
		}
	}
	assert.GreaterOrEqual(t, differing, pairs-1,
		"adjacent seeds should almost always produce different layouts")
}

// TestGenerate_ConnectivityAllThemes verifies the connectivity invariant
// end-to-end for every theme and several seeds.
func TestGenerate_ConnectivityAllThemes(t *testing.T) {
	catalog := theme.NewCatalog()
	e := testEngine(t, dungeon.DefaultOptions())

	for _, area := range catalog.Themes() {
		tmpl, _ := catalog.Template(area)
		for seed := int64(0); seed < 5; seed++ {
			m, err := e.Generate(seed, tmpl)
			require.NoError(t, err, "theme %q seed %d", area, seed)
			require.True(t, m.Connected(), "theme %q seed %d: disconnected map", area, seed)
		}
	}
}

// TestGenerate_DensityConformance verifies that with monster_density = 0.5
// the mean monsters-per-normalized-area over many maps' normal rooms falls
// inside a tolerance band around the configured density.
func TestGenerate_DensityConformance(t *testing.T) {
	opts := scenarioOptions()
	e := testEngine(t, opts)
	tmpl := dungeonTemplate(t)
	tmpl.MonsterDensity = 0.5

	var ratioSum float64
	var rooms int
	for seed := int64(0); seed < 60; seed++ {
		m, err := e.Generate(seed, tmpl)
		require.NoError(t, err)
		for _, r := range m.Rooms {
			if r.Kind != dungeon.RoomNormal {
				continue
			}
			ratioSum += float64(r.Monsters) * opts.Populate.Normalization / float64(r.Area())
			rooms++
		}
	}
	require.Greater(t, rooms, 100, "need a meaningful sample of normal rooms")

	mean := ratioSum / float64(rooms)
	assert.InDelta(t, 0.5, mean, 0.1,
		"mean monsters per normalized area must track the configured density")
}

// TestGenerate_InvalidParameters verifies fail-fast rejection of bad input
// before generation starts.
func TestGenerate_InvalidParameters(t *testing.T) {
	tmpl := dungeonTemplate(t)

	t.Run("non-positive width", func(t *testing.T) {
		opts := dungeon.DefaultOptions()
		opts.Width = 0
		_, err := testEngine(t, opts).Generate(1, tmpl)
		var invalid *dungeon.InvalidParameterError
		require.ErrorAs(t, err, &invalid)
	})

	t.Run("density out of range", func(t *testing.T) {
		bad := tmpl
		bad.MonsterDensity = 1.2
		_, err := testEngine(t, dungeon.DefaultOptions()).Generate(1, bad)
		var invalid *dungeon.InvalidParameterError
		require.ErrorAs(t, err, &invalid)
	})

	t.Run("non-positive level", func(t *testing.T) {
		bad := tmpl
		bad.RecommendedLevel = 0
		_, err := testEngine(t, dungeon.DefaultOptions()).Generate(1, bad)
		var invalid *dungeon.InvalidParameterError
		require.ErrorAs(t, err, &invalid)
	})

	t.Run("unknown algorithm", func(t *testing.T) {
		bad := tmpl
		bad.Algorithm = "wave_function_collapse"
		_, err := testEngine(t, dungeon.DefaultOptions()).Generate(1, bad)
		var invalid *dungeon.InvalidParameterError
		require.ErrorAs(t, err, &invalid)
	})
}

// TestGenerate_NoMapOnError verifies the all-or-nothing publication rule:
// a failed generation returns no partially built map.
func TestGenerate_NoMapOnError(t *testing.T) {
	opts := dungeon.DefaultOptions()
	opts.Cellular.FillProbability = 0.0
	m, err := testEngine(t, opts).Generate(1, caveTemplate(t))
	require.Error(t, err)
	assert.Nil(t, m)
}
