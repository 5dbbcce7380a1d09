package entity

import "time"

// Tipos de persona declarados por el assujetti.
const (
	PersonPhysical = "physique"
	PersonLegal    = "morale"
)

// Assujetti contribuyente de la redevance.
// Se crea al registrar la cuenta en estado pendiente; el finalizador de identificación
// le asigna FiscalID, Classification y GeographyID una sola vez.
type Assujetti struct {
	ID                string
	UserID            string
	Name              string
	PersonType        string // physique | morale
	NIF               string // número de impuestos
	RCCM              string // registro de comercio
	IDNat             string // identificación nacional
	Representative    string
	Email             string
	Phone             string
	Address           string
	GeographyID       *string // nodo más específico seleccionado
	FiscalID          *string // asignado una vez, inmutable
	Classification    *string // pm | pmta | ppta
	Activities        []string
	ProfileComplete   bool
	IsActive          bool
	LastDeclarationID *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsIdentified indica si la identificación ya fue completada.
func (a *Assujetti) IsIdentified() bool {
	return a.IsActive || a.FiscalID != nil
}
