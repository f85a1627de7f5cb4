package repositories

import (
	"database/sql"
	"fmt"

	"pressroom/app/models"
)

type locationRepository struct {
	db *sql.DB
}

func (r *locationRepository) Create(location *models.Location) error {
	location.BeforeCreate()

	res, err := r.db.Exec(
		`INSERT INTO locations (name, is_published, created_at) VALUES (?, ?, ?)`,
		location.Name, location.IsPublished, location.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create location: %v", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	location.ID = int(id)
	return nil
}

func (r *locationRepository) GetByID(id int) (*models.Location, error) {
	var l models.Location
	err := r.db.QueryRow(
		`SELECT id, name, is_published, created_at FROM locations WHERE id = ?`, id,
	).Scan(&l.ID, &l.Name, &l.IsPublished, &l.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *locationRepository) List() ([]*models.Location, error) {
	rows, err := r.db.Query(
		`SELECT id, name, is_published, created_at FROM locations ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locations []*models.Location
	for rows.Next() {
		var l models.Location
		if err := rows.Scan(&l.ID, &l.Name, &l.IsPublished, &l.CreatedAt); err != nil {
			return nil, err
		}
		locations = append(locations, &l)
	}
	return locations, rows.Err()
}

func (r *locationRepository) Delete(id int) error {
	res, err := r.db.Exec(`DELETE FROM locations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete location: %v", err)
	}
	return requireAffected(res)
}
