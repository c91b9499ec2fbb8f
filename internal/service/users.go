package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dukaan/backend/internal/domain"
	"dukaan/backend/internal/store"
)

// Authenticate checks a username and password and returns the active user.
func (s *Service) Authenticate(ctx context.Context, username string, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.repo.GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !verifyPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInactiveAccount
	}
	return user, nil
}

// SessionActor builds the request actor from the stored user behind a token.
// Deleted users are unauthorized and deactivated ones are refused.
func (s *Service) SessionActor(ctx context.Context, userID int64) (domain.Actor, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Actor{}, ErrUnauthorized
	}
	if err != nil {
		return domain.Actor{}, err
	}
	if !user.IsActive {
		return domain.Actor{}, ErrInactiveAccount
	}
	return domain.Actor{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		BranchID: user.BranchID,
	}, nil
}

// BootstrapAdmin creates the first admin account when the store has no users.
// It reports whether an account was created.
func (s *Service) BootstrapAdmin(ctx context.Context, username string, password string) (bool, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return false, nil
	}
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return false, err
	}
	if len(users) > 0 {
		return false, nil
	}
	if len(password) < 6 {
		return false, fmt.Errorf("bootstrap admin password must be at least 6 characters")
	}

	hash, err := hashPassword(password)
	if err != nil {
		return false, err
	}
	created, err := s.repo.CreateUser(ctx, domain.User{
		Name:         "Administrator",
		Username:     username,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		IsActive:     true,
	})
	if err != nil {
		return false, err
	}
	s.logAudit(ctx, "user_bootstrap", "user", created.ID, "username="+created.Username)
	return true, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	if _, err := requireRole(ctx, domain.RoleAdmin); err != nil {
		return nil, err
	}
	return s.repo.ListUsers(ctx)
}

func (s *Service) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	actor, err := requireRole(ctx)
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleAdmin && actor.UserID != id {
		return nil, ErrForbidden
	}
	return s.repo.GetUser(ctx, id)
}

func (s *Service) RegisterUser(ctx context.Context, req domain.UserCreateRequest) (*domain.User, error) {
	if _, err := requireRole(ctx, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if err := s.validate(req); err != nil {
		return nil, err
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return nil, invalidField("role", "%s", err.Error())
	}
	if req.BranchID != nil {
		if _, err := s.repo.GetBranch(ctx, *req.BranchID); err != nil {
			return nil, err
		}
	}
	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.repo.CreateUser(ctx, domain.User{
		BranchID:     req.BranchID,
		Name:         strings.TrimSpace(req.Name),
		Username:     strings.TrimSpace(req.Username),
		PasswordHash: hash,
		Role:         role,
		Phone:        strings.TrimSpace(req.Phone),
		IsActive:     true,
	})
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, "user_create", "user", created.ID, fmt.Sprintf("username=%s,role=%s", created.Username, created.Role))
	return created, nil
}

func (s *Service) UpdateUser(ctx context.Context, id int64, req domain.UserUpdateRequest) (*domain.User, error) {
	actor, err := requireRole(ctx, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if err := s.validate(req); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *existing
	updated.PasswordHash = ""
	setString(&updated.Name, req.Name)
	setString(&updated.Phone, req.Phone)
	if req.Role != nil {
		role, err := domain.ParseRole(*req.Role)
		if err != nil {
			return nil, invalidField("role", "%s", err.Error())
		}
		updated.Role = role
	}
	if req.BranchID != nil {
		if _, err := s.repo.GetBranch(ctx, *req.BranchID); err != nil {
			return nil, err
		}
		updated.BranchID = req.BranchID
	}
	if req.IsActive != nil {
		if !*req.IsActive && actor.UserID == id {
			return nil, domain.Conflict("cannot deactivate your own account")
		}
		updated.IsActive = *req.IsActive
	}

	saved, err := s.repo.UpdateUser(ctx, updated)
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, "user_update", "user", saved.ID, fmt.Sprintf("role=%s,active=%t", saved.Role, saved.IsActive))
	return saved, nil
}

func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	actor, err := requireRole(ctx, domain.RoleAdmin)
	if err != nil {
		return err
	}
	if actor.UserID == id {
		return domain.Conflict("cannot delete your own account")
	}
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.logAudit(ctx, "user_delete", "user", id, "")
	return nil
}

// ChangePassword updates the calling user's own password.
func (s *Service) ChangePassword(ctx context.Context, req domain.PasswordChangeRequest) error {
	actor, err := requireRole(ctx)
	if err != nil {
		return err
	}
	if err := s.validate(req); err != nil {
		return err
	}
	user, err := s.repo.GetUser(ctx, actor.UserID)
	if err != nil {
		return err
	}
	if !verifyPassword(user.PasswordHash, req.CurrentPassword) {
		return invalidField("current_password", "current password is incorrect")
	}
	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.repo.UpdateUserPassword(ctx, user.ID, hash); err != nil {
		return err
	}
	s.logAudit(ctx, "password_change", "user", user.ID, "")
	return nil
}
