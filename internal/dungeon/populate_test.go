package dungeon_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/mapsmith/internal/dungeon"
	"github.com/cory-johannsen/mapsmith/internal/rng"
)

// populatedMap hand-builds a three-room map and populates it.
func populatedMap(t *testing.T, seed int64) *dungeon.DungeonMap {
	t.Helper()
	m := dungeon.NewDungeonMap(30, 10, seed, dungeonTemplate(t))
	for i := 0; i < 3; i++ {
		room := dungeon.Room{ID: i, X: 1 + i*10, Y: 1, Width: 6, Height: 6, Kind: dungeon.RoomNormal}
		m.CarveRoom(room)
		m.Rooms = append(m.Rooms, room)
	}
	require.NoError(t, dungeon.Populate(m, rng.New(seed), dungeon.DefaultPopulateOptions(), zap.NewNop()))
	return m
}

// TestPopulate_SpawnAndBossTags verifies first room = spawn, last = boss.
func TestPopulate_SpawnAndBossTags(t *testing.T) {
	m := populatedMap(t, 1)
	assert.Equal(t, dungeon.RoomSpawn, m.Rooms[0].Kind)
	assert.Equal(t, dungeon.RoomNormal, m.Rooms[1].Kind)
	assert.Equal(t, dungeon.RoomBoss, m.Rooms[2].Kind)
}

// TestPopulate_SpawnRoomStaysEmpty verifies the spawn room gets no features.
func TestPopulate_SpawnRoomStaysEmpty(t *testing.T) {
	m := populatedMap(t, 5)
	spawn, ok := m.SpawnRoom()
	require.True(t, ok)
	assert.Zero(t, spawn.Monsters)
	assert.Zero(t, spawn.Treasures)
	assert.Zero(t, spawn.Traps)
}

// TestPopulate_BossRoomGuarded verifies the boss room's guard pack respects
// the configured bounds.
func TestPopulate_BossRoomGuarded(t *testing.T) {
	opts := dungeon.DefaultPopulateOptions()
	for seed := int64(0); seed < 20; seed++ {
		m := populatedMap(t, seed)
		boss, ok := m.BossRoom()
		require.True(t, ok)
		assert.GreaterOrEqual(t, boss.Monsters, opts.BossMonstersMin)
		assert.LessOrEqual(t, boss.Monsters, opts.BossMonstersMax)
	}
}

// TestPopulate_SingleRoomIsSpawnAndBoss verifies the one-room edge case: the
// sole room is the spawn and doubles as the boss arena.
func TestPopulate_SingleRoomIsSpawnAndBoss(t *testing.T) {
	m := dungeon.NewDungeonMap(10, 10, 3, dungeonTemplate(t))
	room := dungeon.Room{ID: 0, X: 1, Y: 1, Width: 6, Height: 6, Kind: dungeon.RoomNormal}
	m.CarveRoom(room)
	m.Rooms = append(m.Rooms, room)
	require.NoError(t, dungeon.Populate(m, rng.New(3), dungeon.DefaultPopulateOptions(), zap.NewNop()))

	spawn, ok := m.SpawnRoom()
	require.True(t, ok)
	boss, ok := m.BossRoom()
	require.True(t, ok)
	assert.Equal(t, spawn.ID, boss.ID)
	assert.Positive(t, boss.Monsters, "the shared room still hosts the boss pack")
}

// TestPopulate_GeometryUntouched verifies population mutates feature counts
// and tags only, never geometry or tiles.
func TestPopulate_GeometryUntouched(t *testing.T) {
	m := dungeon.NewDungeonMap(30, 10, 8, dungeonTemplate(t))
	var before []dungeon.Room
	for i := 0; i < 3; i++ {
		room := dungeon.Room{ID: i, X: 1 + i*10, Y: 1, Width: 6, Height: 6, Kind: dungeon.RoomNormal}
		m.CarveRoom(room)
		m.Rooms = append(m.Rooms, room)
		before = append(before, room)
	}
	floor := m.FloorCount()
	require.NoError(t, dungeon.Populate(m, rng.New(8), dungeon.DefaultPopulateOptions(), zap.NewNop()))

	assert.Equal(t, floor, m.FloorCount(), "tiles must not change")
	for i, r := range m.Rooms {
		assert.Equal(t, before[i].X, r.X)
		assert.Equal(t, before[i].Y, r.Y)
		assert.Equal(t, before[i].Width, r.Width)
		assert.Equal(t, before[i].Height, r.Height)
	}
}

// TestPopulate_Deterministic verifies identical inputs produce identical
// feature counts.
func TestPopulate_Deterministic(t *testing.T) {
	m1 := populatedMap(t, 77)
	m2 := populatedMap(t, 77)
	assert.Equal(t, m1.Rooms, m2.Rooms)
}

// TestPopulate_EmptyMapRejected verifies populating a roomless map fails.
func TestPopulate_EmptyMapRejected(t *testing.T) {
	m := dungeon.NewDungeonMap(10, 10, 1, dungeonTemplate(t))
	err := dungeon.Populate(m, rng.New(1), dungeon.DefaultPopulateOptions(), zap.NewNop())
	var invalid *dungeon.InvalidParameterError
	require.ErrorAs(t, err, &invalid)
}

// TestPopulate_InvalidOptions verifies option validation.
func TestPopulate_InvalidOptions(t *testing.T) {
	m := populatedMap(t, 1)

	opts := dungeon.DefaultPopulateOptions()
	opts.Normalization = 0
	err := dungeon.Populate(m, rng.New(1), opts, zap.NewNop())
	var invalid *dungeon.InvalidParameterError
	require.ErrorAs(t, err, &invalid)

	opts = dungeon.DefaultPopulateOptions()
	opts.BossMonstersMax = opts.BossMonstersMin - 1
	err = dungeon.Populate(m, rng.New(1), opts, zap.NewNop())
	require.ErrorAs(t, err, &invalid)
}
