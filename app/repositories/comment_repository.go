package repositories

import (
	"database/sql"
	"fmt"

	"pressroom/app/models"
)

type commentRepository struct {
	db *sql.DB
}

func (r *commentRepository) Create(comment *models.Comment) error {
	comment.BeforeCreate()

	res, err := r.db.Exec(
		`INSERT INTO comments (text, created_at, post_id, author_id) VALUES (?, ?, ?, ?)`,
		comment.Text, comment.CreatedAt, comment.PostID, comment.AuthorID,
	)
	if err != nil {
		return fmt.Errorf("failed to create comment: %v", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	comment.ID = int(id)
	return nil
}

func (r *commentRepository) GetByID(id int) (*models.Comment, error) {
	var (
		comment models.Comment
		author  models.User
	)
	err := r.db.QueryRow(
		`SELECT cm.id, cm.text, cm.created_at, cm.post_id, cm.author_id,
		        u.username, u.email, u.first_name, u.last_name
		 FROM comments cm
		 JOIN users u ON u.id = cm.author_id
		 WHERE cm.id = ?`, id,
	).Scan(
		&comment.ID, &comment.Text, &comment.CreatedAt, &comment.PostID, &comment.AuthorID,
		&author.Username, &author.Email, &author.FirstName, &author.LastName,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	author.ID = comment.AuthorID
	comment.Author = &author
	return &comment, nil
}

func (r *commentRepository) Update(comment *models.Comment) error {
	res, err := r.db.Exec(`UPDATE comments SET text = ? WHERE id = ?`, comment.Text, comment.ID)
	if err != nil {
		return fmt.Errorf("failed to update comment: %v", err)
	}
	return requireAffected(res)
}

func (r *commentRepository) Delete(id int) error {
	res, err := r.db.Exec(`DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %v", err)
	}
	return requireAffected(res)
}

func (r *commentRepository) ListByPost(postID int) ([]*models.Comment, error) {
	rows, err := r.db.Query(
		`SELECT cm.id, cm.text, cm.created_at, cm.post_id, cm.author_id,
		        u.username, u.email, u.first_name, u.last_name
		 FROM comments cm
		 JOIN users u ON u.id = cm.author_id
		 WHERE cm.post_id = ?
		 ORDER BY cm.created_at ASC, cm.id ASC`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		var (
			comment models.Comment
			author  models.User
		)
		err := rows.Scan(
			&comment.ID, &comment.Text, &comment.CreatedAt, &comment.PostID, &comment.AuthorID,
			&author.Username, &author.Email, &author.FirstName, &author.LastName,
		)
		if err != nil {
			return nil, err
		}
		author.ID = comment.AuthorID
		comment.Author = &author
		comments = append(comments, &comment)
	}
	return comments, rows.Err()
}

func (r *commentRepository) CountByPost(postID int) (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM comments WHERE post_id = ?`, postID).Scan(&n)
	return n, err
}
