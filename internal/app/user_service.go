package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"adaptive-quiz-service/internal/domain"
	"go.uber.org/zap"
)

// UserRepository stores identity-provider accounts.
type UserRepository interface {
	GetByAuthID(ctx context.Context, authID string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	Create(ctx context.Context, user domain.User) (domain.User, error)
}

// UserService registers users the first time they sign in.
type UserService struct {
	repo   UserRepository
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

func NewUserService(repo UserRepository, opts ...Option) *UserService {
	o := buildOptions(opts)
	return &UserService{repo: repo, logger: o.logger, now: o.now, newID: o.newID}
}

// Authenticate returns the account for profile.AuthID, creating it on first
// sign-in. The boolean reports whether a new account was created.
func (u *UserService) Authenticate(ctx context.Context, profile domain.UserProfile) (domain.User, bool, error) {
	if profile.AuthID == "" || profile.Email == "" || profile.Picture == "" {
		return domain.User{}, false, domain.ErrInvalidUser
	}

	existing, err := u.repo.GetByAuthID(ctx, profile.AuthID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return domain.User{}, false, err
	}

	if _, err := u.repo.GetByEmail(ctx, profile.Email); err == nil {
		u.logger.Warn("user email already registered", zap.String("auth_id", profile.AuthID))
		return domain.User{}, false, domain.ErrUserConflict
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return domain.User{}, false, err
	}

	user, err := u.repo.Create(ctx, domain.User{
		ID:        u.newID(),
		AuthID:    profile.AuthID,
		Name:      displayName(profile),
		Email:     profile.Email,
		Picture:   profile.Picture,
		CreatedAt: u.now(),
	})
	if err != nil {
		return domain.User{}, false, err
	}
	u.logger.Info("user registered", zap.String("auth_id", user.AuthID))
	return user, true, nil
}

// Get looks up a user by identity-provider id.
func (u *UserService) Get(ctx context.Context, authID string) (domain.User, error) {
	return u.repo.GetByAuthID(ctx, authID)
}

// displayName prefers the given name (social logins), then the full name,
// then the local part of the email.
func displayName(p domain.UserProfile) string {
	if p.GivenName != "" {
		return p.GivenName
	}
	if p.Name != "" {
		return p.Name
	}
	local, _, _ := strings.Cut(p.Email, "@")
	return local
}
