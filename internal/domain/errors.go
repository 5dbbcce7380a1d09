package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	// Validación
	ErrInvalidInput = errors.New("entrada inválida")

	// No encontrado
	ErrNotFound         = errors.New("recurso no encontrado")
	ErrUserNotFound     = errors.New("usuario no encontrado")
	ErrCategoryNotFound = errors.New("ninguna categoría tarifaria en la jerarquía geográfica")
	ErrRuleNotFound     = errors.New("no existe tarifa para la categoría y clasificación")
	ErrTaxpayerNotFound = errors.New("assujetti no encontrado")
	ErrNoteNotFound     = errors.New("nota de taxación no encontrada")

	// Conflicto
	ErrAlreadyCompleted   = errors.New("identificación ya completada")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrDuplicateEmail     = errors.New("el email ya pertenece a otro assujetti")
	ErrDuplicatePhone     = errors.New("el teléfono ya pertenece a otro assujetti")
	ErrConflict           = errors.New("conflicto con el estado actual")

	// Unicidad de identificadores generados (se reintenta la unidad de trabajo)
	ErrDuplicateFiscalID   = errors.New("identificador fiscal duplicado")
	ErrDuplicateNoteNumber = errors.New("número de nota duplicado")
	ErrDuplicateReference  = errors.New("referencia de pago duplicada")

	// Integridad (datos de referencia corruptos o agotamiento de reintentos)
	ErrIntegrity           = errors.New("integridad de datos de referencia")
	ErrIdentifierExhausted = errors.New("no se pudo generar un identificador único")

	// Acceso
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrInvalidToken = errors.New("token de pago inválido")
)

// IsRetryableUniqueness indica si el error proviene de un identificador aleatorio ya usado.
func IsRetryableUniqueness(err error) bool {
	return errors.Is(err, ErrDuplicateFiscalID) ||
		errors.Is(err, ErrDuplicateNoteNumber) ||
		errors.Is(err, ErrDuplicateReference)
}
