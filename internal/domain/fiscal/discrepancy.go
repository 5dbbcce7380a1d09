package fiscal

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"

	"github.com/jhoicas/redevance-api/internal/domain/entity"
)

// PenaltyRate tasa fija de penalidad sobre el principal (50%).
var PenaltyRate = decimal.New(5, -1)

// Evaluation resultado del motor de discrepancias.
type Evaluation struct {
	DeltaTV    int
	DeltaRadio int
	Principal  decimal.Decimal
	Penalty    decimal.Decimal
	Total      decimal.Decimal
}

// HasDeviceDiscrepancy indica si se encontraron aparatos no declarados.
func (e Evaluation) HasDeviceDiscrepancy() bool {
	return e.DeltaTV > 0 || e.DeltaRadio > 0
}

// Evaluate compara el conteo constatado con el declarado.
// Solo los faltantes positivos generan principal; la sobre-declaración no se reembolsa.
//
//	principal = (max(0, ΔTV) + max(0, ΔRadio)) × precio
//	penalidad = redondeo(principal × 0.5, 2)
//	total     = principal + penalidad
//
// unitPrice debe tener a lo sumo dos decimales (IsMoneyAmount).
func Evaluate(declared, observed DeviceCounts, unitPrice decimal.Decimal) Evaluation {
	e := Evaluation{
		DeltaTV:    observed.TV - declared.TV,
		DeltaRadio: observed.Radio - declared.Radio,
	}
	shortfall := max(0, e.DeltaTV) + max(0, e.DeltaRadio)
	e.Principal = unitPrice.Mul(decimal.NewFromInt(int64(shortfall)))
	e.Penalty = e.Principal.Mul(PenaltyRate).Round(MoneyPlaces)
	e.Total = e.Principal.Add(e.Penalty)
	return e
}

// IdentityCheck resultado de la conformidad de identidad.
type IdentityCheck struct {
	Conform    bool
	Mismatches []string // nombres de campos no conformes
}

// CheckIdentity compara cada campo constatado (no vacío) con el declarado sin distinguir
// mayúsculas ni espacios en los extremos.
func CheckIdentity(declared, observed entity.ObservedIdentity) IdentityCheck {
	fold := cases.Fold()
	norm := func(s string) string {
		return fold.String(collapseSpaces(s))
	}
	fields := []struct {
		name          string
		declared, obs string
	}{
		{"name", declared.Name, observed.Name},
		{"nif", declared.NIF, observed.NIF},
		{"rccm", declared.RCCM, observed.RCCM},
		{"id_nat", declared.IDNat, observed.IDNat},
		{"representative", declared.Representative, observed.Representative},
		{"address", declared.Address, observed.Address},
	}
	check := IdentityCheck{Conform: true}
	for _, f := range fields {
		if collapseSpaces(f.obs) == "" {
			continue
		}
		if norm(f.obs) != norm(f.declared) {
			check.Conform = false
			check.Mismatches = append(check.Mismatches, f.name)
		}
	}
	return check
}

// Outcome decide el resultado de la visita: cualquier discrepancia de aparatos o de identidad
// exige regularización.
func Outcome(e Evaluation, id IdentityCheck) string {
	if e.HasDeviceDiscrepancy() || !id.Conform {
		return entity.ControlOutcomeRegularization
	}
	return entity.ControlOutcomeConforming
}

func collapseSpaces(s string) string {
	out := make([]rune, 0, len(s))
	space := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			space = true
			continue
		}
		if space && len(out) > 0 {
			out = append(out, ' ')
		}
		space = false
		out = append(out, r)
	}
	return string(out)
}
