package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/redevance-api/internal/domain/entity"
	"github.com/jhoicas/redevance-api/internal/domain/repository"
)

var _ repository.OnboardingRepository = (*OnboardingRepo)(nil)

// OnboardingRepo progreso de identificación; las respuestas por paso se guardan como JSONB.
type OnboardingRepo struct {
	q Querier
}

// NewOnboardingRepository construye el adaptador.
func NewOnboardingRepository(q Querier) *OnboardingRepo {
	return &OnboardingRepo{q: q}
}

// GetByUserID progreso del usuario o (nil, nil).
func (r *OnboardingRepo) GetByUserID(ctx context.Context, userID string) (*entity.OnboardingProgress, error) {
	var (
		p   entity.OnboardingProgress
		raw []byte
	)
	err := r.q.QueryRow(ctx, `
		SELECT id, user_id, status, current_step, answers, completed_at, created_at, updated_at
		FROM onboarding_progress WHERE user_id = $1`, userID,
	).Scan(&p.ID, &p.UserID, &p.Status, &p.CurrentStep, &raw, &p.CompletedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get onboarding: %w", err)
	}
	p.Answers = map[int]json.RawMessage{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &p.Answers); err != nil {
			return nil, fmt.Errorf("decode onboarding answers: %w", err)
		}
	}
	return &p, nil
}

// Save inserta o actualiza por user_id.
func (r *OnboardingRepo) Save(ctx context.Context, p *entity.OnboardingProgress) error {
	answers := p.Answers
	if answers == nil {
		answers = map[int]json.RawMessage{}
	}
	raw, err := json.Marshal(answers)
	if err != nil {
		return fmt.Errorf("encode onboarding answers: %w", err)
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO onboarding_progress (id, user_id, status, current_step, answers, completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			status = EXCLUDED.status,
			current_step = EXCLUDED.current_step,
			answers = EXCLUDED.answers,
			completed_at = EXCLUDED.completed_at,
			updated_at = EXCLUDED.updated_at`,
		p.ID, p.UserID, p.Status, p.CurrentStep, raw, p.CompletedAt, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save onboarding: %w", err)
	}
	return nil
}
