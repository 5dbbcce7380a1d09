// Package metrics adaptador Prometheus de ports.Metrics.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/redevance-api/internal/application/ports"
)

var _ ports.Metrics = (*Prometheus)(nil)

// Prometheus contadores operativos de identificación, control y pago.
type Prometheus struct {
	registry              *prometheus.Registry
	identificationsDone   *prometheus.CounterVec
	identificationsFailed *prometheus.CounterVec
	controlsSaved         *prometheus.CounterVec
	paymentTokensVerified *prometheus.CounterVec
}

// New registra los contadores en un registro propio (evita colisiones entre tests).
func New() *Prometheus {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	f := promauto.With(reg)
	return &Prometheus{
		registry: reg,
		identificationsDone: f.NewCounterVec(prometheus.CounterOpts{
			Name: "redevance_identifications_completed_total",
			Help: "Identificaciones completadas por clasificación fiscal",
		}, []string{"classification"}),
		identificationsFailed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "redevance_identifications_failed_total",
			Help: "Identificaciones rechazadas por motivo",
		}, []string{"reason"}),
		controlsSaved: f.NewCounterVec(prometheus.CounterOpts{
			Name: "redevance_controls_saved_total",
			Help: "Controles de campo guardados por resultado",
		}, []string{"outcome", "rectified"}),
		paymentTokensVerified: f.NewCounterVec(prometheus.CounterOpts{
			Name: "redevance_payment_tokens_verified_total",
			Help: "Verificaciones de códigos de pago",
		}, []string{"valid"}),
	}
}

func (p *Prometheus) IdentificationCompleted(classification string) {
	p.identificationsDone.WithLabelValues(classification).Inc()
}

func (p *Prometheus) IdentificationFailed(reason string) {
	p.identificationsFailed.WithLabelValues(reason).Inc()
}

func (p *Prometheus) ControlSaved(outcome string, rectified bool) {
	p.controlsSaved.WithLabelValues(outcome, strconv.FormatBool(rectified)).Inc()
}

func (p *Prometheus) PaymentTokenVerified(valid bool) {
	p.paymentTokensVerified.WithLabelValues(strconv.FormatBool(valid)).Inc()
}

// Registry expone el registro (tests).
func (p *Prometheus) Registry() *prometheus.Registry { return p.registry }

// Handler sirve las métricas en formato de exposición.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
