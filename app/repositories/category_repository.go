package repositories

import (
	"database/sql"
	"fmt"

	"pressroom/app/models"
)

type categoryRepository struct {
	db *sql.DB
}

func (r *categoryRepository) Create(category *models.Category) error {
	category.BeforeCreate()

	res, err := r.db.Exec(
		`INSERT INTO categories (title, description, slug, is_published, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		category.Title, category.Description, category.Slug, category.IsPublished, category.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("failed to create category: %v", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	category.ID = int(id)
	return nil
}

func (r *categoryRepository) GetByID(id int) (*models.Category, error) {
	return r.scanOne(r.db.QueryRow(
		`SELECT id, title, description, slug, is_published, created_at
		 FROM categories WHERE id = ?`, id))
}

func (r *categoryRepository) GetBySlug(slug string) (*models.Category, error) {
	return r.scanOne(r.db.QueryRow(
		`SELECT id, title, description, slug, is_published, created_at
		 FROM categories WHERE slug = ?`, slug))
}

func (r *categoryRepository) List() ([]*models.Category, error) {
	rows, err := r.db.Query(
		`SELECT id, title, description, slug, is_published, created_at
		 FROM categories ORDER BY title`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.Slug, &c.IsPublished, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, &c)
	}
	return categories, rows.Err()
}

func (r *categoryRepository) Delete(id int) error {
	res, err := r.db.Exec(`DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %v", err)
	}
	return requireAffected(res)
}

func (r *categoryRepository) scanOne(row *sql.Row) (*models.Category, error) {
	var c models.Category
	err := row.Scan(&c.ID, &c.Title, &c.Description, &c.Slug, &c.IsPublished, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
