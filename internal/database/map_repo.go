package database

import (
	"database/sql"
	"fmt"

	"github.com/valorats/slack-premier-bot/internal/domain/contract"
	"github.com/valorats/slack-premier-bot/internal/domain/entity"
)

type mapRepository struct {
	db dbConn
}

func newMapRepo(db dbConn) contract.MapRepo {
	return &mapRepository{db: db}
}

const mapColumns = `id, name, in_pool, weight, image_url, created_at`

func (r *mapRepository) Create(m *entity.Map) error {
	query := `
		INSERT INTO maps (name, in_pool, weight, image_url)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.db.Exec(query, m.Name, m.InPool, m.Weight, m.ImageURL)
	if err != nil {
		return fmt.Errorf("failed to create map: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	m.ID = id
	return nil
}

func (r *mapRepository) GetByName(name string) (*entity.Map, error) {
	m := &entity.Map{}
	query := `
		SELECT ` + mapColumns + `
		FROM maps
		WHERE name = ?
	`

	err := r.db.QueryRow(query, name).Scan(
		&m.ID,
		&m.Name,
		&m.InPool,
		&m.Weight,
		&m.ImageURL,
		&m.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get map: %w", err)
	}

	return m, nil
}

func (r *mapRepository) ListAll() ([]*entity.Map, error) {
	query := `
		SELECT ` + mapColumns + `
		FROM maps
		ORDER BY name ASC
	`
	return r.list(query)
}

func (r *mapRepository) ListPool() ([]*entity.Map, error) {
	query := `
		SELECT ` + mapColumns + `
		FROM maps
		WHERE in_pool = 1
		ORDER BY name ASC
	`
	return r.list(query)
}

func (r *mapRepository) ListByWeightDesc() ([]*entity.Map, error) {
	query := `
		SELECT ` + mapColumns + `
		FROM maps
		ORDER BY weight DESC, id ASC
	`
	return r.list(query)
}

func (r *mapRepository) list(query string, args ...interface{}) ([]*entity.Map, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list maps: %w", err)
	}
	defer rows.Close()

	var maps []*entity.Map
	for rows.Next() {
		m := &entity.Map{}
		err := rows.Scan(
			&m.ID,
			&m.Name,
			&m.InPool,
			&m.Weight,
			&m.ImageURL,
			&m.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan map: %w", err)
		}
		maps = append(maps, m)
	}

	return maps, rows.Err()
}

func (r *mapRepository) AddWeight(mapID int64, delta int) error {
	query := `UPDATE maps SET weight = weight + ? WHERE id = ?`

	_, err := r.db.Exec(query, delta, mapID)
	if err != nil {
		return fmt.Errorf("failed to update map weight: %w", err)
	}

	return nil
}

func (r *mapRepository) SetInPool(mapID int64, inPool bool) error {
	query := `UPDATE maps SET in_pool = ? WHERE id = ?`

	_, err := r.db.Exec(query, inPool, mapID)
	if err != nil {
		return fmt.Errorf("failed to update pool membership: %w", err)
	}

	return nil
}

func (r *mapRepository) ClearPool() error {
	query := `UPDATE maps SET in_pool = 0`

	_, err := r.db.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to clear pool: %w", err)
	}

	return nil
}

// RecomputeWeights rebuilds every weight from the preference rows. Used
// after bulk preference deletions.
func (r *mapRepository) RecomputeWeights() error {
	query := `
		UPDATE maps SET weight = (
			SELECT COALESCE(SUM(value), 0)
			FROM preferences
			WHERE preferences.map_id = maps.id
		)
	`

	_, err := r.db.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to recompute weights: %w", err)
	}

	return nil
}

func (r *mapRepository) Delete(mapID int64) error {
	query := `DELETE FROM maps WHERE id = ?`

	_, err := r.db.Exec(query, mapID)
	if err != nil {
		return fmt.Errorf("failed to delete map: %w", err)
	}

	return nil
}
