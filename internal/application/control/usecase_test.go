package control_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/redevance-api/internal/application/control"
	"github.com/jhoicas/redevance-api/internal/application/dto"
	"github.com/jhoicas/redevance-api/internal/domain"
	"github.com/jhoicas/redevance-api/internal/domain/entity"
	"github.com/jhoicas/redevance-api/internal/testutil/memstore"
	"github.com/jhoicas/redevance-api/pkg/jwt"
)

const assujettiID = "assujetti-1"

var fixedNow = time.Date(2026, 6, 10, 14, 30, 0, 0, time.UTC)

func newUseCase(t *testing.T) (*memstore.Store, *control.UseCase) {
	t.Helper()
	s := memstore.New()
	fid := "ABC1234D"
	s.SetAssujetti(entity.Assujetti{
		ID: assujettiID, UserID: "user-1", Name: "Hôtel du Fleuve", PersonType: entity.PersonLegal,
		NIF: "A1234567B", Address: "12, avenue du Port", FiscalID: &fid, IsActive: true,
	})
	uc := control.NewUseCase(s, s.Repos().Assujettis, s.Repos().Declarations, nil, nil, "USD").
		WithClock(func() time.Time { return fixedNow })
	return s, uc
}

func agent() jwt.Session {
	return jwt.Session{UserID: "agent-1", Role: entity.RoleAgent}
}

func evalRequest(declTV, declRadio, obsTV, obsRadio int) dto.EvaluateControlRequest {
	return dto.EvaluateControlRequest{
		AssujettiID: assujettiID, DeclaredTV: declTV, DeclaredRadio: declRadio,
		ObservedTV: obsTV, ObservedRadio: obsRadio, UnitPrice: decimal.NewFromInt(10),
	}
}

func dec(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func TestBaseline_SinDeclaracionEsCero(t *testing.T) {
	_, uc := newUseCase(t)

	res, err := uc.Baseline(context.Background(), assujettiID)
	require.NoError(t, err)
	assert.False(t, res.HasBaseline)
	assert.Zero(t, res.DeclaredTV)
	assert.Zero(t, res.DeclaredRadio)
	assert.True(t, res.UnitPrice.IsZero())
	assert.Equal(t, 2026, res.FiscalYear)
}

func TestBaseline_UltimaDeclaracion(t *testing.T) {
	s, uc := newUseCase(t)
	old := fixedNow.AddDate(-1, 0, 0)
	s.SeedDeclaration(entity.Declaration{ID: "d-2025", AssujettiID: assujettiID, FiscalYear: 2025, TVCount: 1, CreatedAt: old},
		entity.DeclarationLine{ID: "l0", DeclarationID: "d-2025", DeviceCategory: entity.DeviceTV, Quantity: 1, UnitPrice: decimal.NewFromInt(8), Amount: decimal.NewFromInt(8)})
	s.SeedDeclaration(entity.Declaration{ID: "d-2026", AssujettiID: assujettiID, FiscalYear: 2026, TVCount: 3, RadioCount: 5, CreatedAt: fixedNow},
		entity.DeclarationLine{ID: "l1", DeclarationID: "d-2026", DeviceCategory: entity.DeviceTV, Quantity: 3, UnitPrice: decimal.NewFromInt(15), Amount: decimal.NewFromInt(45)},
		entity.DeclarationLine{ID: "l2", DeclarationID: "d-2026", DeviceCategory: entity.DeviceRadio, Quantity: 5, UnitPrice: decimal.NewFromInt(15), Amount: decimal.Zero})

	res, err := uc.Baseline(context.Background(), assujettiID)
	require.NoError(t, err)
	assert.True(t, res.HasBaseline)
	assert.Equal(t, 3, res.DeclaredTV)
	assert.Equal(t, 5, res.DeclaredRadio)
	assert.True(t, res.UnitPrice.Equal(decimal.NewFromInt(15)))
}

func TestBaseline_AssujettiInexistente(t *testing.T) {
	_, uc := newUseCase(t)
	_, err := uc.Baseline(context.Background(), "nadie")
	assert.ErrorIs(t, err, domain.ErrTaxpayerNotFound)
}

func TestEvaluate_LeyDeMulta(t *testing.T) {
	_, uc := newUseCase(t)

	res, err := uc.Evaluate(context.Background(), evalRequest(2, 0, 5, 0))
	require.NoError(t, err)
	assert.Equal(t, 3, res.DeltaTV)
	assert.True(t, res.Principal.Equal(decimal.NewFromInt(30)))
	assert.True(t, res.Penalty.Equal(decimal.NewFromInt(15)))
	assert.True(t, res.Total.Equal(decimal.NewFromInt(45)))
	assert.Equal(t, entity.ControlOutcomeRegularization, res.Outcome)
}

func TestEvaluate_SinReembolsoEsConforme(t *testing.T) {
	_, uc := newUseCase(t)

	res, err := uc.Evaluate(context.Background(), evalRequest(4, 3, 1, 0))
	require.NoError(t, err)
	assert.Equal(t, -3, res.DeltaTV)
	assert.True(t, res.Principal.IsZero())
	assert.Equal(t, entity.ControlOutcomeConforming, res.Outcome)
}

func TestEvaluate_IdentidadNoConforme(t *testing.T) {
	_, uc := newUseCase(t)
	in := evalRequest(1, 0, 1, 0)
	in.Observed = dto.ObservedIdentityRequest{Name: "HÔTEL  DU FLEUVE", NIF: "Z9999999Z"}

	res, err := uc.Evaluate(context.Background(), in)
	require.NoError(t, err)
	assert.False(t, res.IdentityConform)
	assert.Equal(t, []string{"nif"}, res.Mismatches)
	assert.Equal(t, entity.ControlOutcomeRegularization, res.Outcome)
	assert.True(t, res.Total.IsZero())
}

func TestEvaluate_Validaciones(t *testing.T) {
	_, uc := newUseCase(t)
	_, err := uc.Evaluate(context.Background(), evalRequest(-1, 0, 0, 0))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	in := evalRequest(0, 0, 0, 0)
	in.AssujettiID = ""
	_, err = uc.Evaluate(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Más de dos decimales: principal y penalidad no se podrían persistir de forma coherente.
	in = evalRequest(0, 0, 1, 0)
	in.UnitPrice = decimal.RequireFromString("0.0166")
	_, err = uc.Evaluate(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSave_PrecioConMasDeDosDecimalesNoPersiste(t *testing.T) {
	s, uc := newUseCase(t)
	in := evalRequest(0, 0, 1, 0)
	in.UnitPrice = decimal.RequireFromString("0.0166")

	_, err := uc.Save(context.Background(), agent(), dto.SaveControlRequest{EvaluateControlRequest: in, Finalize: true})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, s.Counts().Controls)
	assert.Zero(t, s.Counts().Rectifications)
}

func TestSave_FinalizadoConFaltanteCreaRectificacion(t *testing.T) {
	s, uc := newUseCase(t)
	lat, lng := -4.3217, 15.3125

	res, err := uc.Save(context.Background(), agent(), dto.SaveControlRequest{
		EvaluateControlRequest: evalRequest(2, 0, 5, 0),
		Principal:              dec(30), Penalty: dec(15), Total: dec(45),
		Observations: "3 téléviseurs non déclarés au bar",
		Latitude:     &lat, Longitude: &lng,
		Finalize: true,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.ControlStatusFinalized, res.Status)
	require.NotNil(t, res.Rectification)
	assert.Regexp(t, `^RECT-2026-[A-Z0-9]{8}$`, res.Rectification.PaymentReference)
	assert.True(t, res.Rectification.Total.Equal(decimal.NewFromInt(45)))
	assert.Equal(t, entity.RectificationPending, res.Rectification.PaymentStatus)

	c := s.Counts()
	assert.Equal(t, 1, c.Controls)
	assert.Equal(t, 1, c.Rectifications)

	rec, err := s.Repos().Controls.GetByID(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, "agent-1", rec.AgentID)
	require.NotNil(t, rec.Latitude)
	assert.InDelta(t, lat, *rec.Latitude, 1e-9)
}

func TestSave_ConformeSeFinalizaSinRectificacion(t *testing.T) {
	s, uc := newUseCase(t)

	res, err := uc.Save(context.Background(), agent(), dto.SaveControlRequest{EvaluateControlRequest: evalRequest(3, 0, 3, 0)})
	require.NoError(t, err)
	assert.Equal(t, entity.ControlStatusFinalized, res.Status)
	assert.Nil(t, res.Rectification)
	assert.Zero(t, s.Counts().Rectifications)
}

func TestSave_BorradorSinRectificacion(t *testing.T) {
	s, uc := newUseCase(t)

	res, err := uc.Save(context.Background(), agent(), dto.SaveControlRequest{EvaluateControlRequest: evalRequest(2, 0, 5, 0)})
	require.NoError(t, err)
	assert.Equal(t, entity.ControlStatusDraft, res.Status)
	assert.Nil(t, res.Rectification)
	assert.Equal(t, 1, s.Counts().Controls)
	assert.Zero(t, s.Counts().Rectifications)
}

func TestSave_MontoDelClienteNoCoincide(t *testing.T) {
	s, uc := newUseCase(t)

	_, err := uc.Save(context.Background(), agent(), dto.SaveControlRequest{
		EvaluateControlRequest: evalRequest(2, 0, 5, 0),
		Total:                  dec(30),
		Finalize:               true,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, s.Counts().Controls)
}

func TestSave_SoloAgentes(t *testing.T) {
	_, uc := newUseCase(t)
	for _, role := range []string{entity.RoleAssujetti, entity.RolePending, ""} {
		_, err := uc.Save(context.Background(), jwt.Session{UserID: "u", Role: role}, dto.SaveControlRequest{EvaluateControlRequest: evalRequest(0, 0, 1, 0)})
		assert.ErrorIs(t, err, domain.ErrForbidden, role)
	}
}

func TestSave_FalloDeRectificacionRevierteControl(t *testing.T) {
	s, uc := newUseCase(t)
	boom := errors.New("timeout")
	s.FailOn("controls.create_rectification", boom, 1)

	_, err := uc.Save(context.Background(), agent(), dto.SaveControlRequest{EvaluateControlRequest: evalRequest(0, 0, 2, 1), Finalize: true})
	require.ErrorIs(t, err, boom)
	assert.Zero(t, s.Counts().Controls)
	assert.Zero(t, s.Counts().Rectifications)
}

func TestSave_ReintentaReferenciaDuplicada(t *testing.T) {
	s, uc := newUseCase(t)
	s.FailOn("controls.create_rectification", domain.ErrDuplicateReference, 2)

	res, err := uc.Save(context.Background(), agent(), dto.SaveControlRequest{EvaluateControlRequest: evalRequest(0, 0, 2, 1), Finalize: true})
	require.NoError(t, err)
	require.NotNil(t, res.Rectification)
	assert.Equal(t, 1, s.Counts().Controls)
	assert.Equal(t, 1, s.Counts().Rectifications)
}

func TestFinalize_BorradorCreaRectificacion(t *testing.T) {
	s, uc := newUseCase(t)
	draft, err := uc.Save(context.Background(), agent(), dto.SaveControlRequest{EvaluateControlRequest: evalRequest(2, 0, 5, 0)})
	require.NoError(t, err)
	require.Equal(t, entity.ControlStatusDraft, draft.Status)

	res, err := uc.Finalize(context.Background(), agent(), draft.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ControlStatusFinalized, res.Status)
	require.NotNil(t, res.Rectification)
	assert.True(t, res.Rectification.Total.Equal(decimal.NewFromInt(45)))
	assert.Regexp(t, `^RECT-2026-[A-Z0-9]{8}$`, res.Rectification.PaymentReference)

	rec, err := s.Repos().Controls.GetByID(context.Background(), draft.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ControlStatusFinalized, rec.Status)
	require.NotNil(t, rec.FinalizedAt)
	assert.True(t, fixedNow.Equal(*rec.FinalizedAt))
	assert.Equal(t, 1, s.Counts().Controls)
	assert.Equal(t, 1, s.Counts().Rectifications)
}

func TestFinalize_SegundaVezYaCompletado(t *testing.T) {
	s, uc := newUseCase(t)
	draft, err := uc.Save(context.Background(), agent(), dto.SaveControlRequest{EvaluateControlRequest: evalRequest(2, 0, 5, 0)})
	require.NoError(t, err)
	_, err = uc.Finalize(context.Background(), agent(), draft.ID)
	require.NoError(t, err)

	_, err = uc.Finalize(context.Background(), agent(), draft.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyCompleted)
	assert.Equal(t, 1, s.Counts().Rectifications)

	conform, err := uc.Save(context.Background(), agent(), dto.SaveControlRequest{EvaluateControlRequest: evalRequest(3, 0, 3, 0)})
	require.NoError(t, err)
	_, err = uc.Finalize(context.Background(), agent(), conform.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyCompleted)
}

func TestFinalize_Validaciones(t *testing.T) {
	_, uc := newUseCase(t)

	_, err := uc.Finalize(context.Background(), agent(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.Finalize(context.Background(), agent(), " ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Finalize(context.Background(), jwt.Session{UserID: "u", Role: entity.RoleAssujetti}, "c-1")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestFinalize_FalloDeRectificacionMantieneBorrador(t *testing.T) {
	s, uc := newUseCase(t)
	draft, err := uc.Save(context.Background(), agent(), dto.SaveControlRequest{EvaluateControlRequest: evalRequest(0, 0, 2, 1)})
	require.NoError(t, err)
	boom := errors.New("timeout")
	s.FailOn("controls.create_rectification", boom, 1)

	_, err = uc.Finalize(context.Background(), agent(), draft.ID)
	require.ErrorIs(t, err, boom)
	rec, err := s.Repos().Controls.GetByID(context.Background(), draft.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ControlStatusDraft, rec.Status)
	assert.Nil(t, rec.FinalizedAt)
	assert.Zero(t, s.Counts().Rectifications)
}

func TestFinalize_ReintentaReferenciaDuplicada(t *testing.T) {
	s, uc := newUseCase(t)
	draft, err := uc.Save(context.Background(), agent(), dto.SaveControlRequest{EvaluateControlRequest: evalRequest(0, 0, 2, 1)})
	require.NoError(t, err)
	s.FailOn("controls.create_rectification", domain.ErrDuplicateReference, 2)

	res, err := uc.Finalize(context.Background(), agent(), draft.ID)
	require.NoError(t, err)
	require.NotNil(t, res.Rectification)
	assert.Equal(t, 1, s.Counts().Rectifications)
}
