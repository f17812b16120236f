package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/ticketai/triage-service/internal/domain"
	"github.com/ticketai/triage-service/internal/repository"
	apperrors "github.com/ticketai/triage-service/pkg/util/errorutil"
)

func TestListUsersRequiresAdmin(t *testing.T) {
	repo := newFakeUserRepo(&domain.User{ID: "u1", Email: "a@example.com", Role: domain.UserRoleUser})
	svc := NewUserService(repo)

	var domainErr *apperrors.DomainError

	_, err := svc.ListUsers(context.Background(), nil, repository.UserFilter{})
	if !errors.As(err, &domainErr) || domainErr.Code != "UNAUTHORIZED" {
		t.Errorf("nil actor err = %v, want UNAUTHORIZED", err)
	}

	mod := &domain.User{ID: "m1", Role: domain.UserRoleModerator}
	_, err = svc.ListUsers(context.Background(), mod, repository.UserFilter{})
	if !errors.As(err, &domainErr) || domainErr.Code != "FORBIDDEN" {
		t.Errorf("moderator err = %v, want FORBIDDEN", err)
	}

	admin := &domain.User{ID: "a1", Role: domain.UserRoleAdmin}
	users, err := svc.ListUsers(context.Background(), admin, repository.UserFilter{})
	if err != nil {
		t.Fatalf("admin ListUsers: %v", err)
	}
	if len(users) != 1 {
		t.Errorf("got %d users, want 1", len(users))
	}
}

func TestUpdateUserPromotesAndSetsSkills(t *testing.T) {
	repo := newFakeUserRepo(&domain.User{ID: "u1", Email: "pat@example.com", Role: domain.UserRoleUser})
	svc := NewUserService(repo)
	admin := &domain.User{ID: "a1", Role: domain.UserRoleAdmin}

	updated, err := svc.UpdateUser(context.Background(), admin, UserUpdateInput{
		Email:  "PAT@example.com",
		Role:   domain.UserRoleModerator,
		Skills: []string{" Auth ", "NETWORKING"},
	})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if updated.Role != domain.UserRoleModerator {
		t.Errorf("role = %s, want moderator", updated.Role)
	}
	if !reflect.DeepEqual(updated.Skills, []string{"auth", "networking"}) {
		t.Errorf("skills = %v, want normalized", updated.Skills)
	}

	stored, err := repo.GetByID(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Role != domain.UserRoleModerator {
		t.Errorf("stored role = %s, want moderator", stored.Role)
	}
}

func TestUpdateUserPartialEdit(t *testing.T) {
	repo := newFakeUserRepo(&domain.User{
		ID: "u1", Email: "pat@example.com",
		Role: domain.UserRoleModerator, Skills: []string{"auth"},
	})
	svc := NewUserService(repo)
	admin := &domain.User{ID: "a1", Role: domain.UserRoleAdmin}

	// Empty role and skills leave current values untouched.
	updated, err := svc.UpdateUser(context.Background(), admin, UserUpdateInput{Email: "pat@example.com"})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if updated.Role != domain.UserRoleModerator || !reflect.DeepEqual(updated.Skills, []string{"auth"}) {
		t.Errorf("partial edit changed fields: %+v", updated)
	}
}

func TestUpdateUserValidation(t *testing.T) {
	repo := newFakeUserRepo(&domain.User{ID: "u1", Email: "pat@example.com", Role: domain.UserRoleUser})
	svc := NewUserService(repo)
	admin := &domain.User{ID: "a1", Role: domain.UserRoleAdmin}

	var domainErr *apperrors.DomainError

	_, err := svc.UpdateUser(context.Background(), admin, UserUpdateInput{Email: ""})
	if !errors.As(err, &domainErr) || domainErr.Code != "VALIDATION_FAILED" {
		t.Errorf("empty email err = %v, want VALIDATION_FAILED", err)
	}

	_, err = svc.UpdateUser(context.Background(), admin, UserUpdateInput{Email: "pat@example.com", Role: domain.UserRole("owner")})
	if !errors.As(err, &domainErr) || domainErr.Code != "VALIDATION_FAILED" {
		t.Errorf("bad role err = %v, want VALIDATION_FAILED", err)
	}

	_, err = svc.UpdateUser(context.Background(), admin, UserUpdateInput{Email: "nobody@example.com"})
	if !errors.As(err, &domainErr) || domainErr.Code != "NOT_FOUND" {
		t.Errorf("unknown email err = %v, want NOT_FOUND", err)
	}
}
