package services

import (
	"errors"
	"fmt"
	"strings"

	"pressroom/app/models"
	"pressroom/app/repositories"
)

// ProfileService handles profile pages and profile edits.
type ProfileService struct {
	userRepo repositories.UserRepository
	postRepo repositories.PostRepository
}

// NewProfileService creates a new ProfileService
func NewProfileService(userRepo repositories.UserRepository, postRepo repositories.PostRepository) *ProfileService {
	return &ProfileService{
		userRepo: userRepo,
		postRepo: postRepo,
	}
}

// Get resolves a profile by username.
func (s *ProfileService) Get(username string) (*models.User, error) {
	return s.userRepo.GetByUsername(username)
}

// ListPosts returns one page of every post by the user, hidden ones
// included. Profile listings are not visibility-filtered; the page is
// the author's own record of their writing.
func (s *ProfileService) ListPosts(username string, page int) (*models.User, *PostPage, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, nil, err
	}

	page = clampPage(page)
	total, err := s.postRepo.CountByAuthor(user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to count posts: %v", err)
	}
	posts, err := s.postRepo.ListByAuthor(user.ID, PostsPerPage, (page-1)*PostsPerPage)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list posts: %v", err)
	}

	return user, &PostPage{Posts: posts, Number: page, PerPage: PostsPerPage, Total: total}, nil
}

// ProfileUpdate is the editable field set of a profile.
type ProfileUpdate struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
}

// Update applies the edit to the caller's own record. The urlUsername
// names the record the request targets; a caller that is not that user
// gets ErrNotOwner and no state change.
func (s *ProfileService) Update(callerID int, urlUsername string, update ProfileUpdate) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(urlUsername)
	if err != nil {
		return nil, err
	}
	if user.ID != callerID {
		return nil, ErrNotOwner
	}

	if err := validateProfileUpdate(update); err != nil {
		return nil, err
	}

	user.FirstName = update.FirstName
	user.LastName = update.LastName
	user.Username = update.Username
	user.Email = update.Email

	if err := s.userRepo.Update(user); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return user, nil
}

func validateProfileUpdate(update ProfileUpdate) error {
	ve := newValidationError()
	if update.Username == "" {
		ve.add("username", "username is required")
	} else if len(update.Username) > 64 {
		ve.add("username", "username is too long (maximum 64 characters)")
	}
	if update.Email == "" {
		ve.add("email", "email is required")
	} else if !strings.Contains(update.Email, "@") {
		ve.add("email", "email is not valid")
	}
	if len(update.FirstName) > 128 {
		ve.add("first_name", "first name is too long (maximum 128 characters)")
	}
	if len(update.LastName) > 128 {
		ve.add("last_name", "last name is too long (maximum 128 characters)")
	}
	return ve.orNil()
}
