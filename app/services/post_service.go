package services

import (
	"errors"
	"fmt"
	"time"

	"pressroom/app/models"
	"pressroom/app/repositories"
)

// PostService handles business logic for posts: listing with the public
// visibility predicate, the detail self-override, and ownership checks
// on mutation.
type PostService struct {
	postRepo     repositories.PostRepository
	commentRepo  repositories.CommentRepository
	categoryRepo repositories.CategoryRepository
	locationRepo repositories.LocationRepository

	// now is swappable so tests can pin the clock.
	now func() time.Time
}

// NewPostService creates a new PostService
func NewPostService(postRepo repositories.PostRepository, commentRepo repositories.CommentRepository, categoryRepo repositories.CategoryRepository, locationRepo repositories.LocationRepository) *PostService {
	return &PostService{
		postRepo:     postRepo,
		commentRepo:  commentRepo,
		categoryRepo: categoryRepo,
		locationRepo: locationRepo,
		now:          time.Now,
	}
}

// SetClock overrides the service clock, for tests.
func (s *PostService) SetClock(now func() time.Time) {
	s.now = now
}

// ListPublished returns one page of publicly visible posts, newest
// pub_date first, each annotated with its live comment count.
func (s *PostService) ListPublished(page int) (*PostPage, error) {
	page = clampPage(page)
	now := s.now()

	total, err := s.postRepo.CountPublished(now)
	if err != nil {
		return nil, fmt.Errorf("failed to count posts: %v", err)
	}
	posts, err := s.postRepo.ListPublished(now, PostsPerPage, (page-1)*PostsPerPage)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %v", err)
	}

	return &PostPage{Posts: posts, Number: page, PerPage: PostsPerPage, Total: total}, nil
}

// ListByCategory resolves the category by slug and returns one page of
// its publicly visible posts. A missing or unpublished category is
// indistinguishable from an absent one.
func (s *PostService) ListByCategory(slug string, page int) (*models.Category, *PostPage, error) {
	category, err := s.categoryRepo.GetBySlug(slug)
	if err != nil {
		return nil, nil, err
	}
	if !category.IsPublished {
		return nil, nil, repositories.ErrNotFound
	}

	page = clampPage(page)
	now := s.now()

	total, err := s.postRepo.CountByCategory(category.ID, now)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to count posts: %v", err)
	}
	posts, err := s.postRepo.ListByCategory(category.ID, now, PostsPerPage, (page-1)*PostsPerPage)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list posts: %v", err)
	}

	return category, &PostPage{Posts: posts, Number: page, PerPage: PostsPerPage, Total: total}, nil
}

// GetForViewer retrieves a post for display. Hidden posts are reported
// as not found unless the viewer is the author, so their existence never
// leaks. Comments come back oldest first with authors preloaded.
func (s *PostService) GetForViewer(id, viewerID int) (*models.Post, []*models.Comment, error) {
	post, err := s.postRepo.GetByID(id)
	if err != nil {
		return nil, nil, err
	}

	if !post.VisibleTo(viewerID, s.now()) {
		return nil, nil, repositories.ErrNotFound
	}

	comments, err := s.commentRepo.ListByPost(id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get comments: %v", err)
	}

	return post, comments, nil
}

// Create validates and persists a new post. The author is fixed at
// creation and immutable afterwards.
func (s *PostService) Create(post *models.Post) error {
	if err := validatePostInput(post); err != nil {
		return err
	}
	if err := s.checkReferences(post); err != nil {
		return err
	}
	post.IsPublished = true
	return s.postRepo.Create(post)
}

// Update applies the full editable field set to an existing post. A
// caller that is not the author gets ErrNotOwner and no state change.
func (s *PostService) Update(post *models.Post, editorID int) error {
	existing, err := s.postRepo.GetByID(post.ID)
	if err != nil {
		return err
	}
	if existing.AuthorID != editorID {
		return ErrNotOwner
	}

	if err := validatePostInput(post); err != nil {
		return err
	}
	if err := s.checkReferences(post); err != nil {
		return err
	}

	// Author and creation time never change on edit.
	post.AuthorID = existing.AuthorID
	post.CreatedAt = existing.CreatedAt
	post.IsPublished = existing.IsPublished
	if post.Image == "" {
		post.Image = existing.Image
	}

	return s.postRepo.Update(post)
}

// Delete removes a post and, through the schema, its comments. Only the
// author may delete.
func (s *PostService) Delete(id, callerID int) error {
	existing, err := s.postRepo.GetByID(id)
	if err != nil {
		return err
	}
	if existing.AuthorID != callerID {
		return ErrNotOwner
	}
	return s.postRepo.Delete(id)
}

// GetOwned fetches a post for its author, e.g. to pre-fill the edit
// form. Non-owners get ErrNotOwner.
func (s *PostService) GetOwned(id, callerID int) (*models.Post, error) {
	post, err := s.postRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != callerID {
		return nil, ErrNotOwner
	}
	return post, nil
}

// Categories lists all categories for the post form selects.
func (s *PostService) Categories() ([]*models.Category, error) {
	return s.categoryRepo.List()
}

// Locations lists all locations for the post form selects.
func (s *PostService) Locations() ([]*models.Location, error) {
	return s.locationRepo.List()
}

// checkReferences verifies the optional foreign keys point at real rows,
// so a tampered form reads as a validation error instead of a database
// constraint failure.
func (s *PostService) checkReferences(post *models.Post) error {
	ve := newValidationError()
	if post.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(*post.CategoryID); err != nil {
			ve.add("category", "unknown category")
		}
	}
	if post.LocationID != nil {
		if _, err := s.locationRepo.GetByID(*post.LocationID); err != nil {
			ve.add("location", "unknown location")
		}
	}
	return ve.orNil()
}

func validatePostInput(post *models.Post) error {
	ve := newValidationError()
	if post.Title == "" {
		ve.add("title", "title is required")
	}
	if len(post.Title) > 256 {
		ve.add("title", "title is too long (maximum 256 characters)")
	}
	if post.Text == "" {
		ve.add("text", "text is required")
	}
	if post.PubDate.IsZero() {
		ve.add("pub_date", "publication date is required")
	}
	if post.AuthorID <= 0 {
		ve.add("author", "author is required")
	}
	return ve.orNil()
}

// IsNotFound reports whether err means the entity does not exist (or is
// hidden from the caller, which reads the same from outside).
func IsNotFound(err error) bool {
	return errors.Is(err, repositories.ErrNotFound)
}
