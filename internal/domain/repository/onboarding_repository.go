package repository

import (
	"context"

	"github.com/jhoicas/redevance-api/internal/domain/entity"
)

// OnboardingRepository define el puerto de persistencia del progreso de identificación.
type OnboardingRepository interface {
	GetByUserID(ctx context.Context, userID string) (*entity.OnboardingProgress, error)
	// Save inserta o actualiza el progreso del usuario.
	Save(ctx context.Context, p *entity.OnboardingProgress) error
}
