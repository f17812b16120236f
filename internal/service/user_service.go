package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/ticketai/triage-service/internal/domain"
	"github.com/ticketai/triage-service/internal/repository"
	apperrors "github.com/ticketai/triage-service/pkg/util/errorutil"
)

// UserService handles admin-facing directory management.
type UserService struct {
	users repository.UserRepository
}

// NewUserService constructs the service.
func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// UserUpdateInput describes an admin edit. Empty fields leave the current
// value in place.
type UserUpdateInput struct {
	Email  string
	Role   domain.UserRole
	Skills []string
}

// ListUsers returns directory entries. Admin only.
func (s *UserService) ListUsers(ctx context.Context, actor *domain.User, filter repository.UserFilter) ([]domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.users.List(ctx, filter)
}

// UpdateUser changes role and declared skills for the account identified by
// email. Admin only.
func (s *UserService) UpdateUser(ctx context.Context, actor *domain.User, input UserUpdateInput) (*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, apperrors.NewValidationError("email required", nil)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"email": email})
		}
		return nil, apperrors.MapError(err)
	}

	if input.Role != "" {
		if !validRole(input.Role) {
			return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": input.Role})
		}
		user.Role = input.Role
	}
	if len(input.Skills) > 0 {
		user.Skills = domain.NormalizeSkills(input.Skills)
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

func requireAdmin(actor *domain.User) error {
	if actor == nil {
		return apperrors.NewUnauthorized("user required")
	}
	if actor.Role != domain.UserRoleAdmin {
		return apperrors.NewForbidden("admin role required")
	}
	return nil
}

func validRole(role domain.UserRole) bool {
	switch role {
	case domain.UserRoleUser, domain.UserRoleModerator, domain.UserRoleAdmin:
		return true
	default:
		return false
	}
}
