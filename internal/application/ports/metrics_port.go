package ports

// Metrics puerto de salida para contadores operativos. El adaptador Prometheus vive en
// infrastructure/metrics; la aplicación solo conoce este contrato.
type Metrics interface {
	IdentificationCompleted(classification string)
	IdentificationFailed(reason string)
	ControlSaved(outcome string, rectified bool)
	PaymentTokenVerified(valid bool)
}

// NopMetrics implementación vacía (tests y arranque sin métricas).
type NopMetrics struct{}

func (NopMetrics) IdentificationCompleted(string) {}
func (NopMetrics) IdentificationFailed(string)    {}
func (NopMetrics) ControlSaved(string, bool)      {}
func (NopMetrics) PaymentTokenVerified(bool)      {}
