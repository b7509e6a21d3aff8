package app_test

import (
	"context"
	"errors"
	"testing"

	"adaptive-quiz-service/internal/app"
	"adaptive-quiz-service/internal/domain"
	"adaptive-quiz-service/internal/infra/memory"
)

func TestAuthenticateCreatesThenReturnsExisting(t *testing.T) {
	ctx := context.Background()
	service := app.NewUserService(memory.NewUserStore())

	profile := domain.UserProfile{
		AuthID:    "google-oauth2|1",
		Name:      "Ada Lovelace",
		GivenName: "Ada",
		Email:     "ada@example.com",
		Picture:   "https://example.com/ada.png",
	}
	user, created, err := service.Authenticate(ctx, profile)
	if err != nil || !created {
		t.Fatalf("first sign-in: created=%v err=%v", created, err)
	}
	if user.Name != "Ada" || user.ID == "" {
		t.Fatalf("unexpected user %+v", user)
	}

	again, created, err := service.Authenticate(ctx, profile)
	if err != nil || created || again.ID != user.ID {
		t.Fatalf("second sign-in: %+v created=%v err=%v", again, created, err)
	}

	got, err := service.Get(ctx, profile.AuthID)
	if err != nil || got.Email != profile.Email {
		t.Fatalf("get: %+v %v", got, err)
	}
}

func TestAuthenticateNaming(t *testing.T) {
	ctx := context.Background()
	service := app.NewUserService(memory.NewUserStore())

	named, _, _ := service.Authenticate(ctx, domain.UserProfile{AuthID: "a", Name: "Grace Hopper", Email: "grace@example.com", Picture: "p"})
	if named.Name != "Grace Hopper" {
		t.Fatalf("expected full name, got %q", named.Name)
	}
	fallback, _, _ := service.Authenticate(ctx, domain.UserProfile{AuthID: "b", Email: "linus@example.com", Picture: "p"})
	if fallback.Name != "linus" {
		t.Fatalf("expected email local part, got %q", fallback.Name)
	}
}

func TestAuthenticateErrors(t *testing.T) {
	ctx := context.Background()
	service := app.NewUserService(memory.NewUserStore())

	if _, _, err := service.Authenticate(ctx, domain.UserProfile{AuthID: "a", Email: "x@example.com"}); !errors.Is(err, domain.ErrInvalidUser) {
		t.Fatalf("expected invalid user, got %v", err)
	}

	_, _, _ = service.Authenticate(ctx, domain.UserProfile{AuthID: "a", Email: "x@example.com", Picture: "p"})
	if _, _, err := service.Authenticate(ctx, domain.UserProfile{AuthID: "b", Email: "x@example.com", Picture: "p"}); !errors.Is(err, domain.ErrUserConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if _, err := service.Get(ctx, "missing"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
