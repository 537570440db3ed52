package repository

import (
	"context"

	"laostream/internal/domain/entity"
)

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Get(ctx context.Context, id int64) (*entity.User, error)
	Create(ctx context.Context, user *entity.User) error
}
