package services

import (
	"errors"
	"fmt"

	"pressroom/app/models"
	"pressroom/app/repositories"
	"pressroom/app/sessions"
)

// AuthService handles registration, login and session issuance.
type AuthService struct {
	userRepo repositories.UserRepository
	store    *sessions.Store
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repositories.UserRepository, store *sessions.Store) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		store:    store,
	}
}

// Register creates a user with a hashed password.
func (s *AuthService) Register(username, email, password string) (*models.User, error) {
	ve := newValidationError()
	if username == "" {
		ve.add("username", "username is required")
	}
	if email == "" {
		ve.add("email", "email is required")
	}
	if len(password) < 8 {
		ve.add("password", "password must be at least 8 characters")
	}
	if err := ve.orNil(); err != nil {
		return nil, err
	}

	user := &models.User{Username: username, Email: email}
	if err := user.SetPassword(password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %v", err)
	}
	if err := user.Validate(); err != nil {
		invalid := newValidationError()
		invalid.add("username", "username may only contain letters, digits and _.@+-")
		return nil, invalid
	}

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return user, nil
}

// Login checks credentials and opens a session, returning its token.
func (s *AuthService) Login(username, password string) (*models.User, string, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !user.CheckPassword(password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.store.Create(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create session: %v", err)
	}
	return user, token, nil
}

// Logout drops the session behind the token.
func (s *AuthService) Logout(token string) error {
	return s.store.Delete(token)
}

// UserForToken resolves a session token to its user, or ErrNoSession.
func (s *AuthService) UserForToken(token string) (*models.User, error) {
	userID, err := s.store.Get(token)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// Stale session for a deleted user.
			s.store.Delete(token)
			return nil, sessions.ErrNoSession
		}
		return nil, err
	}
	return user, nil
}
