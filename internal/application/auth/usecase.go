package auth

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/redevance-api/internal/application/dto"
	"github.com/jhoicas/redevance-api/internal/domain"
	"github.com/jhoicas/redevance-api/internal/domain/entity"
	"github.com/jhoicas/redevance-api/internal/domain/fiscal"
	"github.com/jhoicas/redevance-api/internal/domain/repository"
	"github.com/jhoicas/redevance-api/pkg/jwt"
)

const minPasswordLength = 8

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: registro, login y alta de agentes.
type AuthUseCase struct {
	tx         repository.TxRunner
	userRepo   repository.UserRepository
	assujettis repository.AssujettiRepository
	jwtCfg     JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(tx repository.TxRunner, userRepo repository.UserRepository, assujettis repository.AssujettiRepository, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{tx: tx, userRepo: userRepo, assujettis: assujettis, jwtCfg: jwtCfg}
}

// Issue emite un JWT para la sesión (renovación tras la identificación).
func (uc *AuthUseCase) Issue(s jwt.Session) (string, error) {
	return jwt.Generate(uc.jwtCfg.Secret, s, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
}

// Register crea la cuenta del assujetti en estado pendiente: usuario, assujetti sin identificar y
// progreso de identificación, en una sola transacción.
func (uc *AuthUseCase) Register(ctx context.Context, in dto.RegisterRequest) (*dto.LoginResponse, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	if err := validateCredentials(in.Email, in.Password); err != nil {
		return nil, err
	}
	if in.Name == "" || (in.PersonType != entity.PersonPhysical && in.PersonType != entity.PersonLegal) {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.userRepo.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        in.Email,
		PasswordHash: string(hash),
		Name:         in.Name,
		Role:         entity.RolePending,
		Status:       entity.UserStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	a := &entity.Assujetti{
		ID:         uuid.New().String(),
		UserID:     user.ID,
		Name:       in.Name,
		PersonType: in.PersonType,
		Email:      in.Email,
		Phone:      in.Phone,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	err = uc.tx.RunInTx(ctx, func(r repository.TxRepos) error {
		if err := r.Users.Create(ctx, user); err != nil {
			return err
		}
		if err := r.Assujettis.Create(ctx, a); err != nil {
			return err
		}
		return r.Onboarding.Save(ctx, fiscal.NewOnboardingProgress(uuid.New().String(), user.ID, now))
	})
	if err != nil {
		return nil, err
	}
	return uc.session(user, a.ID)
}

// CreateAgent alta de un agente de control (solo administradores, validado en el router).
func (uc *AuthUseCase) CreateAgent(ctx context.Context, in dto.CreateAgentRequest) (*dto.UserResponse, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	if err := validateCredentials(in.Email, in.Password); err != nil {
		return nil, err
	}
	if in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.userRepo.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        in.Email,
		PasswordHash: string(hash),
		Name:         in.Name,
		Role:         entity.RoleAgent,
		Status:       entity.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return toUserResponse(user, ""), nil
}

// Login verifica email/password, genera JWT y retorna token + usuario.
// Las cuentas pendientes pueden entrar para completar la identificación; las suspendidas no.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if user.Status == entity.UserStatusSuspended {
		return nil, domain.ErrForbidden
	}
	var assujettiID string
	if user.Role == entity.RolePending || user.Role == entity.RoleAssujetti {
		a, err := uc.assujettis.GetByUserID(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		if a != nil {
			assujettiID = a.ID
		}
	}
	return uc.session(user, assujettiID)
}

func (uc *AuthUseCase) session(user *entity.User, assujettiID string) (*dto.LoginResponse, error) {
	token, err := uc.Issue(jwt.Session{UserID: user.ID, AssujettiID: assujettiID, Role: user.Role})
	if err != nil {
		return nil, fmt.Errorf("generar token: %w", err)
	}
	return &dto.LoginResponse{
		Token: token,
		User:  *toUserResponse(user, assujettiID),
	}, nil
}

func validateCredentials(email, password string) error {
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return fmt.Errorf("%w: email inválido", domain.ErrInvalidInput)
	}
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: la contraseña debe tener al menos %d caracteres", domain.ErrInvalidInput, minPasswordLength)
	}
	return nil
}

func toUserResponse(u *entity.User, assujettiID string) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:          u.ID,
		AssujettiID: assujettiID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        u.Role,
		Status:      u.Status,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
