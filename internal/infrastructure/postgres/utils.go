package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/redevance-api/internal/domain"
)

const codeUniqueViolation = "23505"

// Constraints únicos con significado de dominio (ver migrations/000001_init.up.sql).
var uniqueConstraintErrors = map[string]error{
	"uq_users_email":                   domain.ErrEmailAlreadyExists,
	"uq_assujettis_email":              domain.ErrDuplicateEmail,
	"uq_assujettis_phone":              domain.ErrDuplicatePhone,
	"uq_assujettis_fiscal_id":          domain.ErrDuplicateFiscalID,
	"uq_taxation_notes_number":         domain.ErrDuplicateNoteNumber,
	"uq_rectification_notes_reference": domain.ErrDuplicateReference,
	"uq_rectification_notes_control":   domain.ErrConflict,
	"uq_onboarding_user":               domain.ErrConflict,
	"uq_assujettis_user":               domain.ErrConflict,
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}

// mapUniqueViolation traduce la violación al error de dominio según el constraint.
// Devuelve nil si err no es una violación de unicidad conocida.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != codeUniqueViolation {
		return nil
	}
	if mapped, ok := uniqueConstraintErrors[pgErr.ConstraintName]; ok {
		return mapped
	}
	return domain.ErrConflict
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
