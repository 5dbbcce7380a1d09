package repository

import (
	"context"

	"github.com/jhoicas/redevance-api/internal/domain/entity"
)

// AssujettiRepository define el puerto de persistencia para Assujetti.
type AssujettiRepository interface {
	Create(ctx context.Context, a *entity.Assujetti) error
	GetByID(ctx context.Context, id string) (*entity.Assujetti, error)
	GetByUserID(ctx context.Context, userID string) (*entity.Assujetti, error)
	// LockByID obtiene el registro con bloqueo de fila (SELECT ... FOR UPDATE).
	// Solo tiene sentido dentro de una transacción.
	LockByID(ctx context.Context, id string) (*entity.Assujetti, error)
	// ContactTaken indica si email o teléfono ya pertenecen a otro assujetti (excluye excludeID).
	ContactTaken(ctx context.Context, email, phone, excludeID string) (emailTaken, phoneTaken bool, err error)
	// CompleteIdentification persiste identificador fiscal, clasificación, ubicación,
	// datos de contacto/legales, flags de perfil y la última declaración.
	CompleteIdentification(ctx context.Context, a *entity.Assujetti) error
}
