package repository

import (
	"context"

	"github.com/jhoicas/redevance-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	// Activate cambia estado y rol de la cuenta (fin de la identificación).
	Activate(ctx context.Context, id, role string) error
}
