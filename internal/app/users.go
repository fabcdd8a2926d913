package app

import (
	"context"
	"fmt"

	"github.com/shrimpsizemoose/kladdkaka/internal/auth"
	"github.com/shrimpsizemoose/kladdkaka/internal/models"
	"github.com/shrimpsizemoose/kladdkaka/internal/store"
)

// RegisterUser creates an account. Username uniqueness is a caller-side
// pre-check against the username index, same rule as course codes.
func (s *Service) RegisterUser(user *models.User, password, actorID, sourceID string) error {
	if user.ID == "" {
		user.ID = models.NewID("usr")
	}
	if user.Status == "" {
		user.Status = models.UserActive
	}

	salt, err := auth.NewSalt()
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(password, salt)
	if err != nil {
		return err
	}
	user.Salt = salt
	user.PasswordHash = hash
	user.IsFirstLogin = true

	if err := user.Validate(); err != nil {
		return fmt.Errorf("invalid user: %w", err)
	}

	existing, err := s.Store.GetByIndex("users", "username", user.Username)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return fmt.Errorf("username %s: %w", user.Username, ErrUsernameTaken)
	}

	doc, err := store.ToDocument(user)
	if err != nil {
		return err
	}
	if _, err := s.Store.Add("users", doc); err != nil {
		return err
	}

	s.Audit(actorID, "user.register", user.ID, user.Username)
	s.Bus.Emit("users", sourceID)
	return nil
}

func (s *Service) userByUsername(username string) (*models.User, error) {
	docs, err := s.Store.GetByIndex("users", "username", username)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	var user models.User
	if err := store.FromDocument(docs[0], &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login verifies credentials and mints a session token. Both outcomes are
// audited; the error distinguishes bad credentials from a locked account
// so the panel can word it properly.
func (s *Service) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	user, err := s.userByUsername(username)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", ErrBadCredentials
	}
	if user.Status != models.UserActive {
		s.Audit(user.ID, "auth.login_rejected", username, user.Status)
		return nil, "", ErrAccountLocked
	}
	if !auth.CheckPassword(user.PasswordHash, password, user.Salt) {
		s.Audit(user.ID, "auth.login_failed", username, "")
		return nil, "", ErrBadCredentials
	}

	token, err := s.Tokens.Issue(ctx, username)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue session: %w", err)
	}

	s.Audit(user.ID, "auth.login", username, "")
	return user, token, nil
}

func (s *Service) Logout(ctx context.Context, user *models.User) error {
	if err := s.Tokens.Revoke(ctx, user.Username); err != nil {
		return err
	}
	s.Audit(user.ID, "auth.logout", user.Username, "")
	return nil
}

// ChangePassword rehashes with a fresh salt and clears the first-login
// flag.
func (s *Service) ChangePassword(user *models.User, newPassword, sourceID string) error {
	salt, err := auth.NewSalt()
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(newPassword, salt)
	if err != nil {
		return err
	}

	user.Salt = salt
	user.PasswordHash = hash
	user.IsFirstLogin = false

	doc, err := store.ToDocument(user)
	if err != nil {
		return err
	}
	if _, err := s.Store.Update("users", doc); err != nil {
		return err
	}

	s.Audit(user.ID, "user.change_password", user.ID, "")
	s.Bus.Emit("users", sourceID)
	return nil
}
