package repository

import (
	"context"
	"time"

	"github.com/jhoicas/redevance-api/internal/domain/entity"
)

// ControlRepository define el puerto de persistencia de los PV de control y rectificaciones.
type ControlRepository interface {
	Create(ctx context.Context, c *entity.ControlRecord) error
	// CreateRectification devuelve domain.ErrDuplicateReference si la referencia ya existe.
	CreateRectification(ctx context.Context, r *entity.RectificationNote) error
	GetByID(ctx context.Context, id string) (*entity.ControlRecord, error)
	// LockByID obtiene el PV con bloqueo de fila (SELECT ... FOR UPDATE).
	LockByID(ctx context.Context, id string) (*entity.ControlRecord, error)
	// MarkFinalized pasa un PV en borrador a finalizado; si ya no está en borrador devuelve domain.ErrAlreadyCompleted.
	MarkFinalized(ctx context.Context, id string, at time.Time) error
	GetRectificationByControl(ctx context.Context, controlID string) (*entity.RectificationNote, error)
}
