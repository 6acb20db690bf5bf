// Package main provides the map generation binary: it renders a themed map
// for a seed, derives its content, and optionally archives it.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/mapsmith/internal/config"
	"github.com/cory-johannsen/mapsmith/internal/dungeon"
	"github.com/cory-johannsen/mapsmith/internal/observability"
	"github.com/cory-johannsen/mapsmith/internal/scripting"
	"github.com/cory-johannsen/mapsmith/internal/storage/postgres"
	"github.com/cory-johannsen/mapsmith/internal/theme"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	seed := flag.Int64("seed", 0, "generation seed; 0 = current time")
	themeName := flag.String("theme", "dungeon", "area theme")
	width := flag.Int("width", 0, "grid width override; 0 = from config")
	height := flag.Int("height", 0, "grid height override; 0 = from config")
	party := flag.String("party", "", "comma-separated party as Class:Level pairs, e.g. Warrior:3,Mage:4")
	jsonOut := flag.Bool("json", false, "emit the snapshot as JSON instead of ASCII")
	saveName := flag.String("save", "", "archive the map in the database under this name")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	catalog := theme.NewCatalog()
	if cfg.Themes.Dir != "" {
		if info, statErr := os.Stat(cfg.Themes.Dir); statErr == nil && info.IsDir() {
			loaded, err := catalog.LoadDir(cfg.Themes.Dir)
			if err != nil {
				logger.Fatal("loading theme templates", zap.String("dir", cfg.Themes.Dir), zap.Error(err))
			}
			logger.Info("extra theme templates loaded",
				zap.String("dir", cfg.Themes.Dir),
				zap.Int("count", loaded),
			)
		}
	}

	tmpl, ok := catalog.Template(theme.Area(*themeName))
	if !ok {
		var known []string
		for _, a := range catalog.Themes() {
			known = append(known, string(a))
		}
		sort.Strings(known)
		logger.Fatal("unknown theme",
			zap.String("theme", *themeName),
			zap.Strings("known", known),
		)
	}

	opts := cfg.Generation.Options()
	if *width > 0 {
		opts.Width = *width
	}
	if *height > 0 {
		opts.Height = *height
	}

	engine := dungeon.NewEngine(opts, logger)

	genStart := time.Now()
	m, err := engine.Generate(*seed, tmpl)
	if err != nil {
		logger.Fatal("generation failed", zap.Error(err))
	}
	logger.Info("map generated",
		append(observability.GenerationFields(*seed, *themeName, opts.Width, opts.Height),
			zap.Int("rooms", len(m.Rooms)),
			zap.Int("corridors", len(m.Corridors)),
			zap.Duration("elapsed", time.Since(genStart)),
		)...,
	)
	for _, w := range m.Warnings {
		logger.Warn("partial generation", zap.String("detail", w.String()))
	}

	content := dungeon.DeriveContent(m)

	// Theme scripts may override the derived descriptions.
	if cfg.Themes.ScriptDir != "" {
		if info, statErr := os.Stat(cfg.Themes.ScriptDir); statErr == nil && info.IsDir() {
			scriptMgr := scripting.NewManager(logger)
			if err := scriptMgr.LoadTheme(*themeName, cfg.Themes.ScriptDir, 0); err != nil {
				logger.Fatal("loading theme scripts", zap.Error(err))
			}
			defer scriptMgr.Close()
			overridden := 0
			for _, room := range m.Rooms {
				desc, changed := scriptMgr.DescribeRoom(*themeName, scripting.RoomContext{
					Kind:   string(room.Kind),
					Width:  room.Width,
					Height: room.Height,
					Seed:   m.Seed,
					Base:   content.Descriptions[room.ID],
				})
				if changed {
					content.Descriptions[room.ID] = desc
					overridden++
				}
			}
			logger.Info("theme scripts applied",
				zap.String("dir", cfg.Themes.ScriptDir),
				zap.Int("overridden", overridden),
			)
		}
	}

	encounters := content.Encounters
	if *party != "" {
		members, err := parseParty(*party)
		if err != nil {
			logger.Fatal("parsing party", zap.Error(err))
		}
		scaler := dungeon.AnalyzeParty(members)
		encounters = scaler.ScaleEncounters(encounters)
		logger.Info("encounters scaled for party",
			zap.Int("size", scaler.PartySize),
			zap.Int("avg_level", scaler.AverageLevel),
			zap.Float64("multiplier", scaler.Multiplier()),
		)
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(m.Snapshot()); err != nil {
			logger.Fatal("encoding snapshot", zap.Error(err))
		}
	} else {
		fmt.Println(m.Render())
		fmt.Printf("quest: %s (difficulty %d, reward %d gold)\n",
			content.Quest.Name, content.Quest.Difficulty, content.Quest.Reward)
		for _, e := range encounters {
			fmt.Printf("room %d: %s (difficulty %.2f)\n", e.RoomID, e.Type, e.Difficulty)
		}
	}

	if *saveName != "" {
		dbStart := time.Now()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		defer pool.Close()

		repo := postgres.NewMapRepository(pool.DB())
		stored, err := repo.Save(ctx, *saveName, m.Snapshot())
		if err != nil {
			logger.Fatal("archiving map", zap.String("name", *saveName), zap.Error(err))
		}
		logger.Info("map archived",
			zap.String("name", stored.Name),
			zap.String("id", stored.ID.String()),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
	}

	logger.Info("done", zap.Duration("total", time.Since(start)))
}

// parseParty parses "Warrior:3,Mage:4" into party members.
func parseParty(s string) ([]dungeon.PartyMember, error) {
	var members []dungeon.PartyMember
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		class, levelStr, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("party member %q: want Class:Level", part)
		}
		level, err := strconv.Atoi(levelStr)
		if err != nil || level < 1 {
			return nil, fmt.Errorf("party member %q: invalid level", part)
		}
		members = append(members, dungeon.PartyMember{Class: class, Level: level})
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("party %q: no members", s)
	}
	return members, nil
}
