package fiscal_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/redevance-api/internal/domain/entity"
	"github.com/jhoicas/redevance-api/internal/domain/fiscal"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name       string
		activities []string
		person     string
		want       string
	}{
		{"sin actividades", nil, entity.PersonLegal, entity.ClassificationPM},
		{"solo comodín", []string{"autre"}, entity.PersonLegal, entity.ClassificationPM},
		{"comodín con mayúsculas y espacios", []string{" Autre ", ""}, entity.PersonPhysical, entity.ClassificationPM},
		{"jurídica con ventaja", []string{"autre", "hotel"}, entity.PersonLegal, entity.ClassificationPMTA},
		{"física con ventaja", []string{"bar"}, entity.PersonPhysical, entity.ClassificationPPTA},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, fiscal.Classify(tc.activities, tc.person))
		})
	}
}
