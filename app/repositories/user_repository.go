package repositories

import (
	"database/sql"
	"fmt"
	"strings"

	"pressroom/app/models"
)

type userRepository struct {
	db *sql.DB
}

func (r *userRepository) Create(user *models.User) error {
	user.BeforeCreate()

	res, err := r.db.Exec(
		`INSERT INTO users (username, email, first_name, last_name, password_hash, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.Username, user.Email, user.FirstName, user.LastName, user.PasswordHash, user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("failed to create user: %v", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	user.ID = int(id)
	return nil
}

func (r *userRepository) GetByID(id int) (*models.User, error) {
	return r.scanOne(r.db.QueryRow(
		`SELECT id, username, email, first_name, last_name, password_hash, created_at
		 FROM users WHERE id = ?`, id))
}

func (r *userRepository) GetByUsername(username string) (*models.User, error) {
	return r.scanOne(r.db.QueryRow(
		`SELECT id, username, email, first_name, last_name, password_hash, created_at
		 FROM users WHERE username = ?`, username))
}

func (r *userRepository) Update(user *models.User) error {
	res, err := r.db.Exec(
		`UPDATE users SET username = ?, email = ?, first_name = ?, last_name = ?, password_hash = ?
		 WHERE id = ?`,
		user.Username, user.Email, user.FirstName, user.LastName, user.PasswordHash, user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("failed to update user: %v", err)
	}
	return requireAffected(res)
}

func (r *userRepository) Delete(id int) error {
	res, err := r.db.Exec(`DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %v", err)
	}
	return requireAffected(res)
}

func (r *userRepository) scanOne(row *sql.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Username, &user.Email,
		&user.FirstName, &user.LastName, &user.PasswordHash, &user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// isUniqueViolation detects SQLite's UNIQUE constraint error without
// depending on driver-specific error types.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
