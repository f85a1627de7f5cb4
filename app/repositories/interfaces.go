package repositories

import (
	"errors"
	"time"

	"pressroom/app/models"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id int) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	Update(user *models.User) error
	Delete(id int) error
}

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	Create(category *models.Category) error
	GetByID(id int) (*models.Category, error)
	GetBySlug(slug string) (*models.Category, error)
	List() ([]*models.Category, error)
	Delete(id int) error
}

// LocationRepository defines the interface for location data access
type LocationRepository interface {
	Create(location *models.Location) error
	GetByID(id int) (*models.Location, error)
	List() ([]*models.Location, error)
	Delete(id int) error
}

// PostRepository defines the interface for post data access.
// List methods return posts annotated with author, category, location and
// a live comment count, ordered by pub_date descending.
type PostRepository interface {
	Create(post *models.Post) error
	GetByID(id int) (*models.Post, error)
	Update(post *models.Post) error
	Delete(id int) error

	// ListPublished returns publicly visible posts as of now.
	ListPublished(now time.Time, limit, offset int) ([]*models.Post, error)
	CountPublished(now time.Time) (int, error)

	// ListByCategory returns publicly visible posts in the category.
	ListByCategory(categoryID int, now time.Time, limit, offset int) ([]*models.Post, error)
	CountByCategory(categoryID int, now time.Time) (int, error)

	// ListByAuthor returns every post by the author, visible or not.
	ListByAuthor(authorID int, limit, offset int) ([]*models.Post, error)
	CountByAuthor(authorID int) (int, error)
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	Create(comment *models.Comment) error
	GetByID(id int) (*models.Comment, error)
	Update(comment *models.Comment) error
	Delete(id int) error

	// ListByPost returns the post's comments ordered by created_at
	// ascending with authors preloaded.
	ListByPost(postID int) ([]*models.Comment, error)
	CountByPost(postID int) (int, error)
}
