package repository

import (
	"context"

	"github.com/jhoicas/redevance-api/internal/domain/entity"
)

// DeclarationRepository define el puerto de persistencia para declaraciones y sus líneas.
type DeclarationRepository interface {
	Create(ctx context.Context, d *entity.Declaration) error
	CreateLine(ctx context.Context, l *entity.DeclarationLine) error
	GetByID(ctx context.Context, id string) (*entity.Declaration, error)
	// GetLatestByAssujetti devuelve la declaración más reciente o (nil, nil).
	GetLatestByAssujetti(ctx context.Context, assujettiID string) (*entity.Declaration, error)
	GetLines(ctx context.Context, declarationID string) ([]*entity.DeclarationLine, error)
}
