package onboarding

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/redevance-api/internal/application/dto"
	"github.com/jhoicas/redevance-api/internal/domain"
	"github.com/jhoicas/redevance-api/internal/domain/entity"
	"github.com/jhoicas/redevance-api/internal/domain/fiscal"
	"github.com/jhoicas/redevance-api/internal/domain/repository"
	"github.com/jhoicas/redevance-api/pkg/jwt"
)

// UseCase progreso del asistente de identificación (reanudable).
type UseCase struct {
	repo repository.OnboardingRepository
	now  func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(repo repository.OnboardingRepository) *UseCase {
	return &UseCase{repo: repo, now: time.Now}
}

// Get devuelve el progreso del usuario; si no existe, uno vacío sin persistir.
func (uc *UseCase) Get(ctx context.Context, caller jwt.Session) (*dto.OnboardingResponse, error) {
	if caller.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	p, err := uc.repo.GetByUserID(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		p = fiscal.NewOnboardingProgress("", caller.UserID, uc.now())
	}
	return toResponse(p), nil
}

// SaveStep registra la respuesta de un paso. El estado completed solo lo fija la identificación.
func (uc *UseCase) SaveStep(ctx context.Context, caller jwt.Session, step int, in dto.SaveStepRequest) (*dto.OnboardingResponse, error) {
	if caller.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	now := uc.now()
	p, err := uc.repo.GetByUserID(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		p = fiscal.NewOnboardingProgress(uuid.New().String(), caller.UserID, now)
	}
	if err := fiscal.ApplyStep(p, step, in.Answer, now); err != nil {
		return nil, err
	}
	if err := uc.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	return toResponse(p), nil
}

func toResponse(p *entity.OnboardingProgress) *dto.OnboardingResponse {
	return &dto.OnboardingResponse{
		Status:      p.Status,
		CurrentStep: p.CurrentStep,
		TotalSteps:  entity.TotalSteps,
		Answers:     p.Answers,
	}
}
