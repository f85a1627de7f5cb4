package models

import (
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

var (
	slugPattern     = regexp.MustCompile(`^[a-z0-9_-]+$`)
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.@+-]+$`)
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	return v
}

// Publication carries the publish flag and creation timestamp shared by
// categories, locations and posts.
type Publication struct {
	IsPublished bool      `validate:"-"`
	CreatedAt   time.Time `validate:"-"`
}

// User represents a registered author.
type User struct {
	ID           int       `validate:"gte=0"`
	Username     string    `validate:"required,min=2,max=64,username"`
	Email        string    `validate:"required,email"`
	FirstName    string    `validate:"max=128"`
	LastName     string    `validate:"max=128"`
	PasswordHash string    `validate:"-"`
	CreatedAt    time.Time `validate:"-"`
}

// Category groups posts under a unique URL slug.
type Category struct {
	ID          int    `validate:"gte=0"`
	Title       string `validate:"required,max=256"`
	Description string `validate:"required"`
	Slug        string `validate:"required,max=64,slug"`
	Publication
}

// Location is an optional place tag for posts.
type Location struct {
	ID   int    `validate:"gte=0"`
	Name string `validate:"required,max=256"`
	Publication
}

// Post is a blog entry. PubDate may lie in the future for scheduled
// publishing; such posts stay hidden from public listings until then.
type Post struct {
	ID         int       `validate:"gte=0"`
	Title      string    `validate:"required,max=256"`
	Text       string    `validate:"required"`
	PubDate    time.Time `validate:"required"`
	Image      string    `validate:"-"`
	AuthorID   int       `validate:"required,gt=0"`
	LocationID *int      `validate:"-"`
	CategoryID *int      `validate:"-"`
	Publication

	// Read-side fields filled by queries, not persisted columns.
	Author       *User     `validate:"-"`
	Location     *Location `validate:"-"`
	Category     *Category `validate:"-"`
	CommentCount int       `validate:"-"`
}

// Comment is a reader's remark on a post, ordered oldest first.
type Comment struct {
	ID        int       `validate:"gte=0"`
	Text      string    `validate:"required,max=2000"`
	PostID    int       `validate:"required,gt=0"`
	AuthorID  int       `validate:"required,gt=0"`
	CreatedAt time.Time `validate:"-"`

	Author *User `validate:"-"`
}
