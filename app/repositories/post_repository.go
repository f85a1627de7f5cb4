package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"pressroom/app/models"
)

type postRepository struct {
	db *sql.DB
}

// selectPosts is the shared projection for post reads: author joined,
// category and location left-joined, comment count computed live.
const selectPosts = `
SELECT p.id, p.title, p.text, p.pub_date, p.image, p.is_published, p.created_at,
       p.author_id, p.location_id, p.category_id,
       u.username, u.email, u.first_name, u.last_name,
       c.title, c.description, c.slug, c.is_published, c.created_at,
       l.name, l.is_published, l.created_at,
       (SELECT COUNT(*) FROM comments cm WHERE cm.post_id = p.id)
FROM posts p
JOIN users u ON u.id = p.author_id
LEFT JOIN categories c ON c.id = p.category_id
LEFT JOIN locations l ON l.id = p.location_id
`

// visibleWhere is the public visibility predicate. Posts without a
// category never match: the category join must produce a published row.
const visibleWhere = `p.is_published = 1 AND p.pub_date <= ? AND c.is_published = 1`

func (r *postRepository) Create(post *models.Post) error {
	post.BeforeCreate()

	res, err := r.db.Exec(
		`INSERT INTO posts (title, text, pub_date, image, is_published, created_at, author_id, location_id, category_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		post.Title, post.Text, post.PubDate, post.Image, post.IsPublished, post.CreatedAt,
		post.AuthorID, nullableID(post.LocationID), nullableID(post.CategoryID),
	)
	if err != nil {
		return fmt.Errorf("failed to create post: %v", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	post.ID = int(id)
	return nil
}

func (r *postRepository) GetByID(id int) (*models.Post, error) {
	row := r.db.QueryRow(selectPosts+`WHERE p.id = ?`, id)
	post, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (r *postRepository) Update(post *models.Post) error {
	res, err := r.db.Exec(
		`UPDATE posts SET title = ?, text = ?, pub_date = ?, image = ?, is_published = ?, location_id = ?, category_id = ?
		 WHERE id = ?`,
		post.Title, post.Text, post.PubDate, post.Image, post.IsPublished,
		nullableID(post.LocationID), nullableID(post.CategoryID), post.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update post: %v", err)
	}
	return requireAffected(res)
}

func (r *postRepository) Delete(id int) error {
	// Comments go with the post via ON DELETE CASCADE.
	res, err := r.db.Exec(`DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %v", err)
	}
	return requireAffected(res)
}

func (r *postRepository) ListPublished(now time.Time, limit, offset int) ([]*models.Post, error) {
	return r.list(
		selectPosts+`WHERE `+visibleWhere+` ORDER BY p.pub_date DESC LIMIT ? OFFSET ?`,
		now, limit, offset)
}

func (r *postRepository) CountPublished(now time.Time) (int, error) {
	return r.count(
		`SELECT COUNT(*) FROM posts p JOIN categories c ON c.id = p.category_id WHERE `+visibleWhere,
		now)
}

func (r *postRepository) ListByCategory(categoryID int, now time.Time, limit, offset int) ([]*models.Post, error) {
	return r.list(
		selectPosts+`WHERE p.category_id = ? AND `+visibleWhere+` ORDER BY p.pub_date DESC LIMIT ? OFFSET ?`,
		categoryID, now, limit, offset)
}

func (r *postRepository) CountByCategory(categoryID int, now time.Time) (int, error) {
	return r.count(
		`SELECT COUNT(*) FROM posts p JOIN categories c ON c.id = p.category_id WHERE p.category_id = ? AND `+visibleWhere,
		categoryID, now)
}

func (r *postRepository) ListByAuthor(authorID int, limit, offset int) ([]*models.Post, error) {
	return r.list(
		selectPosts+`WHERE p.author_id = ? ORDER BY p.pub_date DESC LIMIT ? OFFSET ?`,
		authorID, limit, offset)
}

func (r *postRepository) CountByAuthor(authorID int) (int, error) {
	return r.count(`SELECT COUNT(*) FROM posts p WHERE p.author_id = ?`, authorID)
}

func (r *postRepository) list(query string, args ...interface{}) ([]*models.Post, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (r *postRepository) count(query string, args ...interface{}) (int, error) {
	var n int
	if err := r.db.QueryRow(query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPost(row rowScanner) (*models.Post, error) {
	var (
		post       models.Post
		author     models.User
		locationID sql.NullInt64
		categoryID sql.NullInt64

		catTitle, catDescription, catSlug sql.NullString
		catPublished                      sql.NullBool
		catCreated                        sql.NullTime

		locName      sql.NullString
		locPublished sql.NullBool
		locCreated   sql.NullTime
	)

	err := row.Scan(
		&post.ID, &post.Title, &post.Text, &post.PubDate, &post.Image,
		&post.IsPublished, &post.CreatedAt,
		&post.AuthorID, &locationID, &categoryID,
		&author.Username, &author.Email, &author.FirstName, &author.LastName,
		&catTitle, &catDescription, &catSlug, &catPublished, &catCreated,
		&locName, &locPublished, &locCreated,
		&post.CommentCount,
	)
	if err != nil {
		return nil, err
	}

	author.ID = post.AuthorID
	post.Author = &author

	if categoryID.Valid {
		id := int(categoryID.Int64)
		post.CategoryID = &id
		post.Category = &models.Category{
			ID:          id,
			Title:       catTitle.String,
			Description: catDescription.String,
			Slug:        catSlug.String,
			Publication: models.Publication{
				IsPublished: catPublished.Bool,
				CreatedAt:   catCreated.Time,
			},
		}
	}
	if locationID.Valid {
		id := int(locationID.Int64)
		post.LocationID = &id
		post.Location = &models.Location{
			ID:   id,
			Name: locName.String,
			Publication: models.Publication{
				IsPublished: locPublished.Bool,
				CreatedAt:   locCreated.Time,
			},
		}
	}

	return &post, nil
}

func nullableID(id *int) interface{} {
	if id == nil {
		return nil
	}
	return *id
}
