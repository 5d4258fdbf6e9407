package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/MapKeeper/internal/models"
)

// PostgresLocationRepository implements the locations table against a PostgreSQL database.
// Every query is scoped to the owning user.
type PostgresLocationRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresLocationRepository creates a new PostgresLocationRepository using the provided *sql.DB.
func NewPostgresLocationRepository(db *sql.DB) *PostgresLocationRepository {
	return &PostgresLocationRepository{DB: db}
}

// List returns all locations of the user ordered by id.
func (r *PostgresLocationRepository) List(ctx context.Context, userID string) ([]models.Location, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, lat, lon, name FROM locations WHERE user_id = $1 ORDER BY id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	locations := make([]models.Location, 0)
	for rows.Next() {
		var loc models.Location
		if err := rows.Scan(&loc.ID, &loc.Lat, &loc.Lon, &loc.Name); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		locations = append(locations, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return locations, nil
}

// Insert stores a new location and returns the inserted row.
func (r *PostgresLocationRepository) Insert(ctx context.Context, userID string, loc models.Location) (models.Location, error) {
	out := loc
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO locations (user_id, lat, lon, name) VALUES ($1, $2, $3, $4)
		RETURNING id
	`, userID, loc.Lat, loc.Lon, loc.Name).Scan(&out.ID)
	if err != nil {
		return models.Location{}, fmt.Errorf("Insert: %w", err)
	}
	return out, nil
}

// Get fetches one location by id.
func (r *PostgresLocationRepository) Get(ctx context.Context, userID string, id int64) (models.Location, error) {
	var loc models.Location
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, lat, lon, name FROM locations WHERE user_id = $1 AND id = $2
	`, userID, id).Scan(&loc.ID, &loc.Lat, &loc.Lon, &loc.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Location{}, ErrNotFound
	}
	if err != nil {
		return models.Location{}, fmt.Errorf("Get: %w", err)
	}
	return loc, nil
}

// Update overwrites the position and name of a location by id.
func (r *PostgresLocationRepository) Update(ctx context.Context, userID string, loc models.Location) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE locations SET lat = $3, lon = $4, name = $5 WHERE user_id = $1 AND id = $2
	`, userID, loc.ID, loc.Lat, loc.Lon, loc.Name)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a location by id.
func (r *PostgresLocationRepository) Delete(ctx context.Context, userID string, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM locations WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
