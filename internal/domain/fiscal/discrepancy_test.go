package fiscal_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/redevance-api/internal/domain/entity"
	"github.com/jhoicas/redevance-api/internal/domain/fiscal"
)

// Declarado TV 2, constatado TV 5, precio 10 → Δ 3, principal 30, penalidad 15, total 45.
func TestEvaluate_LeyDePenalidad(t *testing.T) {
	e := fiscal.Evaluate(fiscal.DeviceCounts{TV: 2}, fiscal.DeviceCounts{TV: 5}, decimal.NewFromInt(10))

	assert.Equal(t, 3, e.DeltaTV)
	assert.Equal(t, 0, e.DeltaRadio)
	assert.True(t, e.Principal.Equal(decimal.NewFromInt(30)), e.Principal.String())
	assert.True(t, e.Penalty.Equal(decimal.NewFromInt(15)), e.Penalty.String())
	assert.True(t, e.Total.Equal(decimal.NewFromInt(45)), e.Total.String())
	assert.True(t, e.HasDeviceDiscrepancy())
}

// Principal impar en centavos: la penalidad se redondea y el total sigue siendo la suma.
func TestEvaluate_PenalidadRedondeadaACentavos(t *testing.T) {
	e := fiscal.Evaluate(fiscal.DeviceCounts{}, fiscal.DeviceCounts{TV: 1}, decimal.RequireFromString("0.03"))

	assert.True(t, e.Principal.Equal(decimal.RequireFromString("0.03")), e.Principal.String())
	assert.True(t, e.Penalty.Equal(decimal.RequireFromString("0.02")), e.Penalty.String())
	assert.True(t, e.Total.Equal(decimal.RequireFromString("0.05")), e.Total.String())
	for _, d := range []decimal.Decimal{e.Principal, e.Penalty, e.Total} {
		assert.True(t, fiscal.IsMoneyAmount(d), d.String())
	}
	assert.True(t, e.Total.Equal(e.Principal.Add(e.Penalty)))
}

func TestIsMoneyAmount(t *testing.T) {
	assert.True(t, fiscal.IsMoneyAmount(decimal.NewFromInt(45)))
	assert.True(t, fiscal.IsMoneyAmount(decimal.RequireFromString("12.50")))
	assert.True(t, fiscal.IsMoneyAmount(decimal.RequireFromString("12.500")))
	assert.False(t, fiscal.IsMoneyAmount(decimal.RequireFromString("0.0166")))
}

func TestEvaluate_SinReembolso(t *testing.T) {
	e := fiscal.Evaluate(fiscal.DeviceCounts{TV: 4, Radio: 3}, fiscal.DeviceCounts{TV: 1, Radio: 0}, decimal.NewFromInt(10))

	assert.Equal(t, -3, e.DeltaTV)
	assert.Equal(t, -3, e.DeltaRadio)
	assert.True(t, e.Principal.IsZero())
	assert.True(t, e.Total.IsZero())
	assert.False(t, e.HasDeviceDiscrepancy())

	id := fiscal.CheckIdentity(entity.ObservedIdentity{Name: "Hotel Memling"}, entity.ObservedIdentity{Name: "hotel memling"})
	assert.Equal(t, entity.ControlOutcomeConforming, fiscal.Outcome(e, id))
}

func TestEvaluate_SoloFaltantesPositivosSuman(t *testing.T) {
	// TV sobre-declarada (-2) no compensa radio faltante (+3).
	e := fiscal.Evaluate(fiscal.DeviceCounts{TV: 5, Radio: 1}, fiscal.DeviceCounts{TV: 3, Radio: 4}, decimal.NewFromInt(4))

	assert.True(t, e.Principal.Equal(decimal.NewFromInt(12)))
	assert.True(t, e.Penalty.Equal(decimal.NewFromInt(6)))
	assert.True(t, e.Total.Equal(decimal.NewFromInt(18)))
}

func TestCheckIdentity(t *testing.T) {
	declared := entity.ObservedIdentity{
		Name: "Société Générale de Kinshasa", NIF: "A1234567B", RCCM: "CD/KIN/RCCM/14-B-1234",
		Representative: "Jean Mukendi", Address: "12, avenue du Commerce",
	}

	t.Run("mayúsculas acentuadas y espacios", func(t *testing.T) {
		obs := entity.ObservedIdentity{Name: "  SOCIÉTÉ   GÉNÉRALE DE KINSHASA ", NIF: "a1234567b"}
		check := fiscal.CheckIdentity(declared, obs)
		assert.True(t, check.Conform)
		assert.Empty(t, check.Mismatches)
	})

	t.Run("campos vacíos no se comparan", func(t *testing.T) {
		assert.True(t, fiscal.CheckIdentity(declared, entity.ObservedIdentity{}).Conform)
	})

	t.Run("discrepancias", func(t *testing.T) {
		obs := entity.ObservedIdentity{Representative: "Paul Kabila", Address: "3, rue de la Paix", IDNat: "01-234"}
		check := fiscal.CheckIdentity(declared, obs)
		assert.False(t, check.Conform)
		assert.Equal(t, []string{"id_nat", "representative", "address"}, check.Mismatches)
	})
}

func TestOutcome_IdentidadSolaExigeRegularizacion(t *testing.T) {
	e := fiscal.Evaluate(fiscal.DeviceCounts{TV: 1}, fiscal.DeviceCounts{TV: 1}, decimal.NewFromInt(10))
	id := fiscal.CheckIdentity(entity.ObservedIdentity{Name: "A"}, entity.ObservedIdentity{Name: "B"})
	assert.Equal(t, entity.ControlOutcomeRegularization, fiscal.Outcome(e, id))
}
