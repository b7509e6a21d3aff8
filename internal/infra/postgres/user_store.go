package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"adaptive-quiz-service/internal/domain"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

type userModel struct {
	bun.BaseModel `bun:"table:users"`

	ID        string    `bun:"id,pk,type:uuid"`
	AuthID    string    `bun:"auth_id,notnull,unique"`
	Name      string    `bun:"name"`
	Email     string    `bun:"email,notnull,unique"`
	Picture   string    `bun:"picture"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

// UserStore keeps identity-provider accounts in the users table.
type UserStore struct {
	db *bun.DB
}

func NewUserStore(db *bun.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) GetByAuthID(ctx context.Context, authID string) (domain.User, error) {
	return s.getBy(ctx, "auth_id", authID)
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return s.getBy(ctx, "email", email)
}

func (s *UserStore) Create(ctx context.Context, user domain.User) (domain.User, error) {
	model := &userModel{
		ID:        user.ID,
		AuthID:    user.AuthID,
		Name:      user.Name,
		Email:     user.Email,
		Picture:   user.Picture,
		CreatedAt: user.CreatedAt,
	}
	if _, err := s.db.NewInsert().Model(model).Exec(ctx); err != nil {
		var pgErr pgdriver.Error
		if errors.As(err, &pgErr) && pgErr.IntegrityViolation() {
			return domain.User{}, domain.ErrUserConflict
		}
		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

func (s *UserStore) getBy(ctx context.Context, column, value string) (domain.User, error) {
	model := new(userModel)
	err := s.db.NewSelect().Model(model).Where("? = ?", bun.Ident(column), value).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("select user by %s: %w", column, err)
	}
	return domain.User{
		ID:        model.ID,
		AuthID:    model.AuthID,
		Name:      model.Name,
		Email:     model.Email,
		Picture:   model.Picture,
		CreatedAt: model.CreatedAt,
	}, nil
}
