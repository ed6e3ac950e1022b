package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/hub-inventory/internal/application/dto"
	"github.com/jhoicas/hub-inventory/internal/domain"
	"github.com/jhoicas/hub-inventory/internal/domain/entity"
	"github.com/jhoicas/hub-inventory/internal/domain/repository"
	"github.com/jhoicas/hub-inventory/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// MinPasswordLength largo mínimo de contraseña al crear usuarios.
const MinPasswordLength = 8

// AuthUseCase casos de uso de autenticación y administración de usuarios.
type AuthUseCase struct {
	userRepo repository.UserRepository
	hubRepo  repository.HubRepository
	jwtCfg   JWTConfig
	cost     int
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, hubRepo repository.HubRepository, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, hubRepo: hubRepo, jwtCfg: jwtCfg, cost: bcrypt.DefaultCost}
}

// WithBcryptCost cambia el costo de bcrypt (los tests usan bcrypt.MinCost).
func (uc *AuthUseCase) WithBcryptCost(cost int) *AuthUseCase {
	uc.cost = cost
	return uc
}

// Login verifica username/password, genera JWT y retorna token + usuario.
// Usuario inexistente y contraseña incorrecta devuelven el mismo ErrUnauthorized.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	if strings.TrimSpace(in.Username) == "" || in.Password == "" {
		return nil, domain.ErrInvalidInput
	}
	user, err := uc.userRepo.GetByUsername(ctx, strings.TrimSpace(in.Username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.HubID, user.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token: token,
		User:  *ToUserResponse(user),
	}, nil
}

// CreateUser crea un usuario: valida rol y hub, hashea password con bcrypt y persiste.
func (uc *AuthUseCase) CreateUser(ctx context.Context, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	username := strings.TrimSpace(in.Username)
	role := strings.ToUpper(strings.TrimSpace(in.Role))
	if username == "" || len(in.Password) < MinPasswordLength || !entity.IsValidRole(role) {
		return nil, domain.ErrInvalidInput
	}
	if in.HubID != "" {
		hub, err := uc.hubRepo.GetByID(ctx, in.HubID)
		if err != nil {
			return nil, err
		}
		if hub == nil {
			return nil, domain.ErrNotFound
		}
	}
	existing, err := uc.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), uc.cost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	user := &entity.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		HubID:        in.HubID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return ToUserResponse(user), nil
}

// EnsureUser crea el usuario o, si ya existe, actualiza rol, hub y contraseña. Lo usa el seed de la CLI.
func (uc *AuthUseCase) EnsureUser(ctx context.Context, in dto.CreateUserRequest) (*dto.UserResponse, bool, error) {
	existing, err := uc.userRepo.GetByUsername(ctx, strings.TrimSpace(in.Username))
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		resp, err := uc.CreateUser(ctx, in)
		return resp, true, err
	}
	role := strings.ToUpper(strings.TrimSpace(in.Role))
	if !entity.IsValidRole(role) {
		return nil, false, domain.ErrInvalidInput
	}
	existing.Role = role
	existing.HubID = in.HubID
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), uc.cost)
		if err != nil {
			return nil, false, err
		}
		existing.PasswordHash = string(hash)
	}
	existing.UpdatedAt = time.Now().UTC()
	if err := uc.userRepo.Update(ctx, existing); err != nil {
		return nil, false, err
	}
	return ToUserResponse(existing), false, nil
}

// Me devuelve el usuario del token.
func (uc *AuthUseCase) Me(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return ToUserResponse(user), nil
}

// ListUsers lista todos los usuarios.
func (uc *AuthUseCase) ListUsers(ctx context.Context) ([]dto.UserResponse, error) {
	list, err := uc.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		out = append(out, *ToUserResponse(u))
	}
	return out, nil
}

// ToUserResponse convierte la entidad en DTO sin el hash.
func ToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Role:      u.Role,
		HubID:     u.HubID,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
