package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/mapsmith/internal/dungeon"
)

// ErrMapNotFound is returned when a map lookup yields no results.
var ErrMapNotFound = errors.New("map not found")

// ErrMapExists is returned when attempting to store a duplicate map name.
var ErrMapExists = errors.New("map already exists")

// StoredMap is an archived generated map. The snapshot holds the full
// serialized form; the remaining columns are denormalized for listing.
type StoredMap struct {
	ID        uuid.UUID
	Name      string
	Theme     string
	Seed      int64
	Width     int
	Height    int
	Snapshot  dungeon.Snapshot
	CreatedAt time.Time
}

// MapSummary is a listing row without the snapshot payload.
type MapSummary struct {
	ID        uuid.UUID
	Name      string
	Theme     string
	Seed      int64
	Width     int
	Height    int
	CreatedAt time.Time
}

// MapRepository provides map archive persistence operations.
type MapRepository struct {
	db *pgxpool.Pool
}

// NewMapRepository creates a MapRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewMapRepository(db *pgxpool.Pool) *MapRepository {
	return &MapRepository{db: db}
}

// Save archives a snapshot under the given name.
//
// Precondition: name must be non-empty; snap must be a valid snapshot.
// Postcondition: Returns the stored map with ID and CreatedAt set, or
// ErrMapExists if the name is taken.
func (r *MapRepository) Save(ctx context.Context, name string, snap dungeon.Snapshot) (StoredMap, error) {
	if name == "" {
		return StoredMap{}, errors.New("map name must not be empty")
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return StoredMap{}, fmt.Errorf("encoding snapshot: %w", err)
	}

	stored := StoredMap{
		Name:     name,
		Theme:    string(snap.Template.Theme),
		Seed:     snap.Seed,
		Width:    snap.Width,
		Height:   snap.Height,
		Snapshot: snap,
	}
	err = r.db.QueryRow(ctx,
		`INSERT INTO dungeon_maps (id, name, theme, seed, width, height, snapshot)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		uuid.New(), name, string(snap.Template.Theme), snap.Seed, snap.Width, snap.Height, payload,
	).Scan(&stored.ID, &stored.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return StoredMap{}, ErrMapExists
		}
		return StoredMap{}, fmt.Errorf("inserting map: %w", err)
	}
	return stored, nil
}

// Get retrieves an archived map by ID.
//
// Postcondition: Returns the StoredMap or ErrMapNotFound.
func (r *MapRepository) Get(ctx context.Context, id uuid.UUID) (StoredMap, error) {
	return r.scanOne(r.db.QueryRow(ctx,
		`SELECT id, name, theme, seed, width, height, snapshot, created_at
		 FROM dungeon_maps WHERE id = $1`,
		id,
	))
}

// GetByName retrieves an archived map by name.
//
// Precondition: name must be non-empty.
// Postcondition: Returns the StoredMap or ErrMapNotFound.
func (r *MapRepository) GetByName(ctx context.Context, name string) (StoredMap, error) {
	return r.scanOne(r.db.QueryRow(ctx,
		`SELECT id, name, theme, seed, width, height, snapshot, created_at
		 FROM dungeon_maps WHERE name = $1`,
		name,
	))
}

func (r *MapRepository) scanOne(row pgx.Row) (StoredMap, error) {
	var (
		stored  StoredMap
		payload []byte
	)
	err := row.Scan(&stored.ID, &stored.Name, &stored.Theme, &stored.Seed,
		&stored.Width, &stored.Height, &payload, &stored.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return StoredMap{}, ErrMapNotFound
		}
		return StoredMap{}, fmt.Errorf("querying map: %w", err)
	}
	if err := json.Unmarshal(payload, &stored.Snapshot); err != nil {
		return StoredMap{}, fmt.Errorf("decoding snapshot: %w", err)
	}
	return stored, nil
}

// List returns archive summaries, newest first. An empty theme matches all
// themes; limit <= 0 means no limit.
func (r *MapRepository) List(ctx context.Context, themeName string, limit int) ([]MapSummary, error) {
	query := `SELECT id, name, theme, seed, width, height, created_at
		 FROM dungeon_maps
		 WHERE ($1 = '' OR theme = $1)
		 ORDER BY created_at DESC, name`
	args := []any{themeName}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing maps: %w", err)
	}
	defer rows.Close()

	var out []MapSummary
	for rows.Next() {
		var s MapSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Theme, &s.Seed, &s.Width, &s.Height, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning map row: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating map rows: %w", err)
	}
	return out, nil
}

// Delete removes an archived map.
//
// Postcondition: The map is deleted, or ErrMapNotFound is returned.
func (r *MapRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM dungeon_maps WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting map: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrMapNotFound
	}
	return nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	// pgx wraps PostgreSQL errors; check for SQLSTATE 23505 (unique_violation)
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
