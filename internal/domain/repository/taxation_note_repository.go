package repository

import (
	"context"

	"github.com/jhoicas/redevance-api/internal/domain/entity"
)

// TaxationNoteRepository define el puerto de persistencia para notas de taxación.
type TaxationNoteRepository interface {
	// Create devuelve domain.ErrDuplicateNoteNumber si el número ya existe.
	Create(ctx context.Context, n *entity.TaxationNote) error
	GetByID(ctx context.Context, id string) (*entity.TaxationNote, error)
	GetByNumber(ctx context.Context, number string) (*entity.TaxationNote, error)
	// GetPayableForYear devuelve la nota emitida/vencida/pagada más reciente del ejercicio o (nil, nil).
	GetPayableForYear(ctx context.Context, assujettiID string, fiscalYear int) (*entity.TaxationNote, error)
}
