package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPrometheus_Contadores(t *testing.T) {
	m := New()

	m.IdentificationCompleted("pmta")
	m.IdentificationCompleted("pmta")
	m.IdentificationFailed("validation")
	m.ControlSaved("regularisation", true)
	m.PaymentTokenVerified(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.identificationsDone.WithLabelValues("pmta")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.identificationsFailed.WithLabelValues("validation")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.controlsSaved.WithLabelValues("regularisation", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.paymentTokensVerified.WithLabelValues("false")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.paymentTokensVerified.WithLabelValues("true")))
}

func TestPrometheus_RegistrosIndependientes(t *testing.T) {
	a, b := New(), New()
	a.IdentificationCompleted("pm")
	assert.Equal(t, 0.0, testutil.ToFloat64(b.identificationsDone.WithLabelValues("pm")))
}
