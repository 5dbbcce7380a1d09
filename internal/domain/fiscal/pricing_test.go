package fiscal_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/redevance-api/internal/domain"
	"github.com/jhoicas/redevance-api/internal/domain/entity"
	"github.com/jhoicas/redevance-api/internal/domain/fiscal"
)

// TV 3 + radio 5: solo se factura la TV; la radio queda anotada con monto cero.
func TestPriceDevices_TVPrimaSobreRadio(t *testing.T) {
	p, err := fiscal.PriceDevices(fiscal.DeviceCounts{TV: 3, Radio: 5}, decimal.NewFromInt(10))
	require.NoError(t, err)

	require.Len(t, p.Lines, 2)
	assert.Equal(t, entity.DeviceTV, p.BilledDevice)
	assert.True(t, p.Total.Equal(decimal.NewFromInt(30)))

	tv, radio := p.Lines[0], p.Lines[1]
	assert.Equal(t, entity.DeviceTV, tv.Device)
	assert.True(t, tv.Billed)
	assert.True(t, tv.Amount.Equal(decimal.NewFromInt(30)))

	assert.Equal(t, entity.DeviceRadio, radio.Device)
	assert.Equal(t, 5, radio.Quantity)
	assert.False(t, radio.Billed)
	assert.True(t, radio.Amount.IsZero())
	assert.Equal(t, fiscal.RemarkRadioNotBilled, radio.Remark)
}

func TestPriceDevices_SoloRadio(t *testing.T) {
	p, err := fiscal.PriceDevices(fiscal.DeviceCounts{Radio: 4}, decimal.RequireFromString("2.5"))
	require.NoError(t, err)

	require.Len(t, p.Lines, 1)
	assert.Equal(t, entity.DeviceRadio, p.BilledDevice)
	assert.True(t, p.Total.Equal(decimal.NewFromInt(10)))
}

func TestPriceDevices_SoloTVSinLineaRadio(t *testing.T) {
	p, err := fiscal.PriceDevices(fiscal.DeviceCounts{TV: 2}, decimal.NewFromInt(7))
	require.NoError(t, err)
	require.Len(t, p.Lines, 1, "categorías con cantidad cero no producen línea")
}

func TestPriceDevices_SinAparatos(t *testing.T) {
	p, err := fiscal.PriceDevices(fiscal.DeviceCounts{}, decimal.NewFromInt(7))
	require.NoError(t, err)
	assert.Empty(t, p.Lines)
	assert.True(t, p.Total.IsZero())
}

func TestPriceDevices_Negativos(t *testing.T) {
	_, err := fiscal.PriceDevices(fiscal.DeviceCounts{TV: -1}, decimal.NewFromInt(7))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = fiscal.PriceDevices(fiscal.DeviceCounts{TV: 1}, decimal.NewFromInt(-7))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = fiscal.PriceDevices(fiscal.DeviceCounts{TV: 1}, decimal.RequireFromString("7.001"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
