package services

import (
	"fmt"
	"strings"

	"pressroom/app/models"
	"pressroom/app/repositories"
)

// CommentService handles business logic for comments
type CommentService struct {
	commentRepo repositories.CommentRepository
	postRepo    repositories.PostRepository
}

// NewCommentService creates a new CommentService
func NewCommentService(commentRepo repositories.CommentRepository, postRepo repositories.PostRepository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
	}
}

// Add validates and persists a comment by authorID on the given post.
// The target post must exist; invalid text surfaces as a
// ValidationError rather than being dropped.
func (s *CommentService) Add(postID, authorID int, text string) (*models.Comment, error) {
	if _, err := s.postRepo.GetByID(postID); err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if err := validateCommentText(text); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Text:     text,
		PostID:   postID,
		AuthorID: authorID,
	}
	if err := s.commentRepo.Create(comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %v", err)
	}
	return comment, nil
}

// Get retrieves a comment by ID with its author preloaded.
func (s *CommentService) Get(id int) (*models.Comment, error) {
	return s.commentRepo.GetByID(id)
}

// GetOwned fetches a comment for its author. Non-owners get ErrNotOwner.
func (s *CommentService) GetOwned(id, callerID int) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != callerID {
		return nil, ErrNotOwner
	}
	return comment, nil
}

// Update replaces the comment text. Only the author may edit; the post
// binding and creation time never change.
func (s *CommentService) Update(commentID, editorID int, text string) (*models.Comment, error) {
	existing, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		return nil, err
	}
	if existing.AuthorID != editorID {
		return nil, ErrNotOwner
	}

	text = strings.TrimSpace(text)
	if err := validateCommentText(text); err != nil {
		return nil, err
	}

	existing.Text = text
	if err := s.commentRepo.Update(existing); err != nil {
		return nil, fmt.Errorf("failed to update comment: %v", err)
	}
	return existing, nil
}

// Delete removes a comment. Only the author may delete.
func (s *CommentService) Delete(commentID, callerID int) error {
	existing, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		return err
	}
	if existing.AuthorID != callerID {
		return ErrNotOwner
	}
	return s.commentRepo.Delete(commentID)
}

func validateCommentText(text string) error {
	ve := newValidationError()
	if text == "" {
		ve.add("text", "comment text is required")
	}
	if len(text) > 2000 {
		ve.add("text", "comment is too long (maximum 2000 characters)")
	}
	return ve.orNil()
}
