package onboarding_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/redevance-api/internal/application/dto"
	"github.com/jhoicas/redevance-api/internal/application/onboarding"
	"github.com/jhoicas/redevance-api/internal/domain"
	"github.com/jhoicas/redevance-api/internal/domain/entity"
	"github.com/jhoicas/redevance-api/internal/domain/fiscal"
	"github.com/jhoicas/redevance-api/internal/testutil/memstore"
	"github.com/jhoicas/redevance-api/pkg/jwt"
)

func session() jwt.Session {
	return jwt.Session{UserID: "user-1", AssujettiID: "assujetti-1", Role: entity.RolePending}
}

func answer(s string) dto.SaveStepRequest {
	return dto.SaveStepRequest{Answer: json.RawMessage(s)}
}

func TestGet_SinProgresoDevuelvePendiente(t *testing.T) {
	uc := onboarding.NewUseCase(memstore.New().Repos().Onboarding)

	res, err := uc.Get(context.Background(), session())
	require.NoError(t, err)
	assert.Equal(t, entity.OnboardingPending, res.Status)
	assert.Zero(t, res.CurrentStep)
	assert.Equal(t, entity.TotalSteps, res.TotalSteps)
}

func TestSaveStep_AvanzaYSeReanuda(t *testing.T) {
	s := memstore.New()
	uc := onboarding.NewUseCase(s.Repos().Onboarding)
	ctx := context.Background()

	_, err := uc.SaveStep(ctx, session(), entity.StepIdentity, answer(`{"name":"Hôtel du Fleuve"}`))
	require.NoError(t, err)
	_, err = uc.SaveStep(ctx, session(), entity.StepLocation, answer(`{"location_id":"quartier-golf"}`))
	require.NoError(t, err)

	res, err := uc.Get(ctx, session())
	require.NoError(t, err)
	assert.Equal(t, entity.OnboardingStepDone, res.Status)
	assert.Equal(t, entity.StepLocation, res.CurrentStep)
	assert.JSONEq(t, `{"location_id":"quartier-golf"}`, string(res.Answers[entity.StepLocation]))

	// volver a un paso anterior no retrocede el cursor
	_, err = uc.SaveStep(ctx, session(), entity.StepIdentity, answer(`{"name":"Hôtel du Fleuve SARL"}`))
	require.NoError(t, err)
	res, err = uc.Get(ctx, session())
	require.NoError(t, err)
	assert.Equal(t, entity.StepLocation, res.CurrentStep)
}

func TestSaveStep_NoSaltaPasos(t *testing.T) {
	uc := onboarding.NewUseCase(memstore.New().Repos().Onboarding)

	_, err := uc.SaveStep(context.Background(), session(), entity.StepDevices, answer(`{"tv_count":1}`))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSaveStep_RespuestaNoObjeto(t *testing.T) {
	uc := onboarding.NewUseCase(memstore.New().Repos().Onboarding)

	_, err := uc.SaveStep(context.Background(), session(), entity.StepIdentity, answer(`[1,2]`))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSaveStep_TrasCompletarFalla(t *testing.T) {
	s := memstore.New()
	repo := s.Repos().Onboarding
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	p := fiscal.NewOnboardingProgress("p-1", "user-1", now)
	fiscal.CompleteOnboarding(p, now)
	require.NoError(t, repo.Save(context.Background(), p))

	uc := onboarding.NewUseCase(repo)
	_, err := uc.SaveStep(context.Background(), session(), entity.StepIdentity, answer(`{"name":"x"}`))
	assert.ErrorIs(t, err, domain.ErrAlreadyCompleted)
}

func TestSaveStep_SinUsuario(t *testing.T) {
	uc := onboarding.NewUseCase(memstore.New().Repos().Onboarding)
	_, err := uc.SaveStep(context.Background(), jwt.Session{}, 1, answer(`{}`))
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
