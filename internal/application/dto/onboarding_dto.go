package dto

import "encoding/json"

// OnboardingResponse progreso del asistente.
type OnboardingResponse struct {
	Status      string                  `json:"status"`
	CurrentStep int                     `json:"current_step"`
	TotalSteps  int                     `json:"total_steps"`
	Answers     map[int]json.RawMessage `json:"answers"`
}

// SaveStepRequest body de PUT /api/onboarding/steps/:step.
type SaveStepRequest struct {
	Answer json.RawMessage `json:"answer"`
}
