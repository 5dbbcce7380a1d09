package entity

import (
	"encoding/json"
	"time"
)

// Estados del progreso de identificación.
const (
	OnboardingPending   = "pending"
	OnboardingStepDone  = "step_done"
	OnboardingCompleted = "completed"
)

// Pasos del asistente de identificación.
const (
	StepIdentity   = 1
	StepLocation   = 2
	StepActivities = 3
	StepDevices    = 4
	TotalSteps     = StepDevices
)

// OnboardingProgress cursor de pasos y respuestas por paso para reanudar la identificación.
type OnboardingProgress struct {
	ID          string
	UserID      string
	Status      string
	CurrentStep int                     // último paso registrado (0 = ninguno)
	Answers     map[int]json.RawMessage // respuestas por paso
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
