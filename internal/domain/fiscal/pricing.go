package fiscal

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/redevance-api/internal/domain"
	"github.com/jhoicas/redevance-api/internal/domain/entity"
)

// RemarkRadioNotBilled anotación de la línea radio cuando la TV prima.
const RemarkRadioNotBilled = "Non facturé : la télévision prime sur la radio (une licence par emplacement)"

// DeviceCounts conteo de aparatos por categoría.
type DeviceCounts struct {
	TV    int
	Radio int
}

// Total suma de aparatos.
func (d DeviceCounts) Total() int { return d.TV + d.Radio }

// MoneyPlaces decimales de los montos persistidos (NUMERIC(14,2)).
const MoneyPlaces = 2

// IsMoneyAmount indica si d no tiene más decimales que los persistidos.
func IsMoneyAmount(d decimal.Decimal) bool {
	return d.Equal(d.Round(MoneyPlaces))
}

// PricedLine línea tarificada de la declaración.
type PricedLine struct {
	Device    string
	Quantity  int
	UnitPrice decimal.Decimal
	Amount    decimal.Decimal
	Billed    bool
	Remark    string
}

// Pricing desglose de la tarificación.
type Pricing struct {
	Lines        []PricedLine
	BilledDevice string
	Total        decimal.Decimal
}

// PriceDevices aplica la regla de una licencia por emplacement: si hay TV solo se factura la TV
// (precio × cantidad TV) y la radio queda como línea anotada de monto cero; si no, se factura la radio.
// Las categorías con cantidad cero no producen línea.
func PriceDevices(counts DeviceCounts, unitPrice decimal.Decimal) (Pricing, error) {
	if counts.TV < 0 || counts.Radio < 0 {
		return Pricing{}, fmt.Errorf("%w: cantidades negativas", domain.ErrInvalidInput)
	}
	if unitPrice.IsNegative() {
		return Pricing{}, fmt.Errorf("%w: precio unitario negativo", domain.ErrInvalidInput)
	}
	if !IsMoneyAmount(unitPrice) {
		return Pricing{}, fmt.Errorf("%w: precio unitario con más de %d decimales", domain.ErrInvalidInput, MoneyPlaces)
	}
	p := Pricing{Total: decimal.Zero}
	if counts.TV > 0 {
		amount := unitPrice.Mul(decimal.NewFromInt(int64(counts.TV)))
		p.Lines = append(p.Lines, PricedLine{
			Device: entity.DeviceTV, Quantity: counts.TV,
			UnitPrice: unitPrice, Amount: amount, Billed: true,
		})
		p.BilledDevice = entity.DeviceTV
		p.Total = amount
		if counts.Radio > 0 {
			p.Lines = append(p.Lines, PricedLine{
				Device: entity.DeviceRadio, Quantity: counts.Radio,
				UnitPrice: unitPrice, Amount: decimal.Zero, Remark: RemarkRadioNotBilled,
			})
		}
		return p, nil
	}
	if counts.Radio > 0 {
		amount := unitPrice.Mul(decimal.NewFromInt(int64(counts.Radio)))
		p.Lines = append(p.Lines, PricedLine{
			Device: entity.DeviceRadio, Quantity: counts.Radio,
			UnitPrice: unitPrice, Amount: amount, Billed: true,
		})
		p.BilledDevice = entity.DeviceRadio
		p.Total = amount
	}
	return p, nil
}
