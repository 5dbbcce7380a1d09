package fiscal

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jhoicas/redevance-api/internal/domain"
	"github.com/jhoicas/redevance-api/internal/domain/entity"
)

// NewOnboardingProgress progreso inicial (pending, sin pasos).
func NewOnboardingProgress(id, userID string, now time.Time) *entity.OnboardingProgress {
	return &entity.OnboardingProgress{
		ID:        id,
		UserID:    userID,
		Status:    entity.OnboardingPending,
		Answers:   map[int]json.RawMessage{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ApplyStep registra la respuesta de un paso. Transiciones válidas:
//
//	pending → step_done(1)
//	step_done(n) → step_done(n+1)   (todos los pasos previos registrados)
//	step_done(n) → step_done(n)     (re-envío de un paso ya hecho, el cursor no retrocede)
//
// completed es terminal y solo lo escribe el finalizador.
func ApplyStep(p *entity.OnboardingProgress, step int, answer json.RawMessage, now time.Time) error {
	if p.Status == entity.OnboardingCompleted {
		return domain.ErrAlreadyCompleted
	}
	if step < 1 || step > entity.TotalSteps {
		return fmt.Errorf("%w: paso %d fuera de rango", domain.ErrInvalidInput, step)
	}
	if !isJSONObject(answer) {
		return fmt.Errorf("%w: la respuesta del paso %d debe ser un objeto JSON", domain.ErrInvalidInput, step)
	}
	if p.Answers == nil {
		p.Answers = map[int]json.RawMessage{}
	}
	for prev := 1; prev < step; prev++ {
		if _, ok := p.Answers[prev]; !ok {
			return fmt.Errorf("%w: el paso %d requiere completar el paso %d", domain.ErrInvalidInput, step, prev)
		}
	}
	p.Answers[step] = answer
	if step > p.CurrentStep {
		p.CurrentStep = step
	}
	p.Status = entity.OnboardingStepDone
	p.UpdatedAt = now
	return nil
}

// CompleteOnboarding transición terminal; idempotente respecto del estado.
func CompleteOnboarding(p *entity.OnboardingProgress, now time.Time) {
	p.Status = entity.OnboardingCompleted
	p.CurrentStep = entity.TotalSteps
	p.CompletedAt = &now
	p.UpdatedAt = now
}

func isJSONObject(raw json.RawMessage) bool {
	var obj map[string]json.RawMessage
	return len(raw) > 0 && json.Unmarshal(raw, &obj) == nil && obj != nil
}
