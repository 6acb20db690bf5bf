package dungeon

import (
	"fmt"

	"github.com/cory-johannsen/mapsmith/internal/rng"
	"github.com/cory-johannsen/mapsmith/internal/theme"
)

// contentSeedOffset separates the derived-content stream from the layout
// stream so the pass is a pure function of the finished map.
const contentSeedOffset = 0x5eed

// Encounter is a derived encounter for a monster-bearing room.
type Encounter struct {
	// RoomID is the room hosting the encounter.
	RoomID int
	// Type is the encounter archetype, e.g. "monster_pack".
	Type string
	// Difficulty is the scaled challenge rating.
	Difficulty float64
}

// Quest is a derived quest hook for the whole area.
type Quest struct {
	// Name is the templated quest headline.
	Name string
	// Difficulty is in [1, 10].
	Difficulty int
	// Reward is the gold value, proportional to difficulty.
	Reward int
}

// DerivedContent is the read-only narrative layer computed over a populated
// map: per-room descriptions, per-room encounters, and an area quest hook.
type DerivedContent struct {
	// Descriptions maps room ID to flavor text.
	Descriptions map[int]string
	// Encounters lists one entry per monster-bearing room, in room order.
	Encounters []Encounter
	// Quest is the area quest hook.
	Quest Quest
}

// encounterArchetypes pairs encounter types with base difficulty.
var encounterArchetypes = []struct {
	kind string
	base float64
}{
	{"monster_pack", 0.5},
	{"treasure_room", 0.3},
	{"trap_gauntlet", 0.4},
	{"puzzle_chamber", 0.6},
}

// bossArchetype is always used for the boss room.
var bossArchetype = struct {
	kind string
	base float64
}{"boss_room", 0.9}

// questTemplates are the quest headline formats. The %s/%d slots are filled
// from the map's theme vocabulary and monster totals.
var questTemplates = []string{
	"Slay the %d beasts of the %s",
	"Recover the lost relic from the %[2]s",
	"Explore the depths of the %[2]s",
	"Survive %d encounters within the %s",
}

// DeriveContent computes the narrative layer for a populated map. It never
// mutates the map: all randomness comes from a fresh source derived from the
// map seed, so two calls over the same map return identical content.
//
// Precondition: m has been populated (spawn/boss tags assigned).
func DeriveContent(m *DungeonMap) DerivedContent {
	cr := rng.New(m.Seed + contentSeedOffset)
	tmpl := m.Template
	levelScale := 1 + 0.1*float64(tmpl.RecommendedLevel-1)

	out := DerivedContent{Descriptions: make(map[int]string, len(m.Rooms))}
	for _, room := range m.Rooms {
		out.Descriptions[room.ID] = describeRoom(room, tmpl, cr)

		if room.Monsters == 0 {
			continue
		}
		arch := bossArchetype
		if room.Kind != RoomBoss && len(m.Rooms) > 1 {
			arch = encounterArchetypes[cr.Choice(len(encounterArchetypes))]
		}
		out.Encounters = append(out.Encounters, Encounter{
			RoomID:     room.ID,
			Type:       arch.kind,
			Difficulty: arch.base * levelScale,
		})
	}

	out.Quest = deriveQuest(m, cr)
	return out
}

// describeRoom renders the fixed sentence template with theme vocabulary.
func describeRoom(room Room, tmpl theme.Template, cr *rng.Source) string {
	vocab := tmpl.Vocabulary
	adjective := "dim"
	if len(vocab.Adjectives) > 0 {
		adjective = vocab.Adjectives[cr.Choice(len(vocab.Adjectives))]
	}
	noun := vocab.RoomNouns[cr.Choice(len(vocab.RoomNouns))]
	tile := vocab.TileNouns[cr.Choice(len(vocab.TileNouns))]

	switch room.Kind {
	case RoomSpawn:
		return fmt.Sprintf("A %s %s, %d by %d paces of %s. A faint draft marks the way in.",
			adjective, noun, room.Width, room.Height, tile)
	case RoomBoss:
		return fmt.Sprintf("A %s %s, %d by %d paces of %s. Something large has made its lair here.",
			adjective, noun, room.Width, room.Height, tile)
	default:
		return fmt.Sprintf("A %s %s, %d by %d paces of %s.",
			adjective, noun, room.Width, room.Height, tile)
	}
}

// deriveQuest builds the area quest hook from the map totals.
func deriveQuest(m *DungeonMap, cr *rng.Source) Quest {
	monsters := 0
	for _, r := range m.Rooms {
		monsters += r.Monsters
	}
	if monsters < 1 {
		monsters = 1
	}

	format := questTemplates[cr.Choice(len(questTemplates))]
	name := fmt.Sprintf(format, monsters, m.Template.Name)
	difficulty := cr.IntRange(1, 10)
	return Quest{
		Name:       name,
		Difficulty: difficulty,
		Reward:     difficulty * 100,
	}
}
