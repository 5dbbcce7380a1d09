package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/redevance-api/internal/domain"
	"github.com/jhoicas/redevance-api/internal/domain/entity"
	"github.com/jhoicas/redevance-api/internal/domain/repository"
)

var _ repository.AssujettiRepository = (*AssujettiRepo)(nil)

const assujettiColumns = `id, user_id, name, person_type, nif, rccm, id_nat, representative, email, phone, address,
	geography_id, fiscal_id, classification, activities, profile_complete, is_active, last_declaration_id,
	created_at, updated_at`

// AssujettiRepo implementación de AssujettiRepository (usable con pool o tx).
type AssujettiRepo struct {
	q Querier
}

// NewAssujettiRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAssujettiRepository(q Querier) *AssujettiRepo {
	return &AssujettiRepo{q: q}
}

// Create persiste un assujetti pendiente de identificación.
func (r *AssujettiRepo) Create(ctx context.Context, a *entity.Assujetti) error {
	query := `
		INSERT INTO assujettis (` + assujettiColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`
	activities := a.Activities
	if activities == nil {
		activities = []string{}
	}
	_, err := r.q.Exec(ctx, query,
		a.ID, a.UserID, a.Name, a.PersonType, a.NIF, a.RCCM, a.IDNat, a.Representative, a.Email, a.Phone, a.Address,
		a.GeographyID, a.FiscalID, a.Classification, activities, a.ProfileComplete, a.IsActive, a.LastDeclarationID,
		a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		if mapped := mapUniqueViolation(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("insert assujetti: %w", err)
	}
	return nil
}

// GetByID obtiene un assujetti por ID.
func (r *AssujettiRepo) GetByID(ctx context.Context, id string) (*entity.Assujetti, error) {
	return r.scanOne(ctx, `SELECT `+assujettiColumns+` FROM assujettis WHERE id = $1`, id)
}

// GetByUserID obtiene el assujetti de una cuenta.
func (r *AssujettiRepo) GetByUserID(ctx context.Context, userID string) (*entity.Assujetti, error) {
	return r.scanOne(ctx, `SELECT `+assujettiColumns+` FROM assujettis WHERE user_id = $1`, userID)
}

// LockByID SELECT ... FOR UPDATE: serializa finalizaciones concurrentes del mismo assujetti.
func (r *AssujettiRepo) LockByID(ctx context.Context, id string) (*entity.Assujetti, error) {
	return r.scanOne(ctx, `SELECT `+assujettiColumns+` FROM assujettis WHERE id = $1 FOR UPDATE`, id)
}

// ContactTaken indica si email o teléfono pertenecen a otro assujetti.
func (r *AssujettiRepo) ContactTaken(ctx context.Context, email, phone, excludeID string) (bool, bool, error) {
	query := `
		SELECT
			COALESCE(bool_or($1 <> '' AND lower(email) = lower($1)), FALSE),
			COALESCE(bool_or($2 <> '' AND phone = $2), FALSE)
		FROM assujettis
		WHERE id <> $3`
	var emailTaken, phoneTaken bool
	if err := r.q.QueryRow(ctx, query, email, phone, excludeID).Scan(&emailTaken, &phoneTaken); err != nil {
		return false, false, fmt.Errorf("check contact: %w", err)
	}
	return emailTaken, phoneTaken, nil
}

// CompleteIdentification persiste el resultado de la identificación.
func (r *AssujettiRepo) CompleteIdentification(ctx context.Context, a *entity.Assujetti) error {
	query := `
		UPDATE assujettis SET
			name = $2, person_type = $3, nif = $4, rccm = $5, id_nat = $6, representative = $7,
			email = $8, phone = $9, address = $10, geography_id = $11, fiscal_id = $12,
			classification = $13, activities = $14, profile_complete = $15, is_active = $16,
			last_declaration_id = $17, updated_at = $18
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		a.ID, a.Name, a.PersonType, a.NIF, a.RCCM, a.IDNat, a.Representative,
		a.Email, a.Phone, a.Address, a.GeographyID, a.FiscalID,
		a.Classification, a.Activities, a.ProfileComplete, a.IsActive,
		a.LastDeclarationID, a.UpdatedAt,
	)
	if err != nil {
		if mapped := mapUniqueViolation(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("complete identification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaxpayerNotFound
	}
	return nil
}

func (r *AssujettiRepo) scanOne(ctx context.Context, query string, args ...any) (*entity.Assujetti, error) {
	var a entity.Assujetti
	err := r.q.QueryRow(ctx, query, args...).Scan(
		&a.ID, &a.UserID, &a.Name, &a.PersonType, &a.NIF, &a.RCCM, &a.IDNat, &a.Representative,
		&a.Email, &a.Phone, &a.Address, &a.GeographyID, &a.FiscalID, &a.Classification, &a.Activities,
		&a.ProfileComplete, &a.IsActive, &a.LastDeclarationID, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get assujetti: %w", err)
	}
	return &a, nil
}
