package fiscal

import (
	"strings"

	"github.com/jhoicas/redevance-api/internal/domain/entity"
)

// ActivityOther actividad comodín: por sí sola no implica ventaja comercial.
const ActivityOther = "autre"

// DerivesAdvantage indica si alguna actividad declarada es distinta de la comodín.
func DerivesAdvantage(activities []string) bool {
	for _, a := range activities {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == "" {
			continue
		}
		if a != ActivityOther {
			return true
		}
	}
	return false
}

// Classify deriva la clasificación fiscal. Función total sobre el conjunto de actividades:
// sin ventaja comercial → pm; con ventaja, el tipo de persona declarado decide pmta o ppta.
func Classify(activities []string, personType string) string {
	if !DerivesAdvantage(activities) {
		return entity.ClassificationPM
	}
	if personType == entity.PersonPhysical {
		return entity.ClassificationPPTA
	}
	return entity.ClassificationPMTA
}
