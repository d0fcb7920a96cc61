package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-lotes/internal/application/auth"
	"github.com/jhoicas/Inventario-lotes/internal/application/dto"
	"github.com/jhoicas/Inventario-lotes/internal/domain"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/Inventario-lotes/internal/infrastructure/memory"
	"github.com/jhoicas/Inventario-lotes/pkg/jwt"
)

const secret = "test-secret"

func newAuth() (*auth.AuthUseCase, *memory.Store) {
	store := memory.NewStore()
	return auth.NewAuthUseCase(store.Users(), auth.JWTConfig{Secret: secret, ExpMinutes: 5, Issuer: "test"}), store
}

func TestRegisterUser_RolPorDefectoYEmailNormalizado(t *testing.T) {
	uc, _ := newAuth()
	u, err := uc.RegisterUser(context.Background(), dto.RegisterRequest{Email: "  Bodega@Ejemplo.COM ", Password: "secreta123"})
	require.NoError(t, err)
	assert.Equal(t, "bodega@ejemplo.com", u.Email)
	assert.Equal(t, entity.RoleVendedor, u.Role)
	assert.Equal(t, entity.UserStatusActive, u.Status)

	_, err = uc.RegisterUser(context.Background(), dto.RegisterRequest{Email: "bodega@ejemplo.com", Password: "otra-clave"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestRegisterUser_RolInvalido(t *testing.T) {
	uc, _ := newAuth()
	_, err := uc.RegisterUser(context.Background(), dto.RegisterRequest{Email: "x@ejemplo.com", Password: "secreta123", Role: "gerente"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLogin_TokenConActorYRol(t *testing.T) {
	uc, _ := newAuth()
	ctx := context.Background()
	u, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: "b@ejemplo.com", Password: "secreta123", Role: entity.RoleBodeguero})
	require.NoError(t, err)

	out, err := uc.Login(ctx, dto.LoginRequest{Email: "B@ejemplo.com", Password: "secreta123"})
	require.NoError(t, err)
	userID, role, err := jwt.Parse(secret, out.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, userID)
	assert.Equal(t, entity.RoleBodeguero, role)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "b@ejemplo.com", Password: "incorrecta"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "nadie@ejemplo.com", Password: "secreta123"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestLogin_UsuarioInactivo(t *testing.T) {
	uc, store := newAuth()
	ctx := context.Background()
	_, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: "v@ejemplo.com", Password: "secreta123"})
	require.NoError(t, err)

	u, err := store.Users().GetByEmail(ctx, "v@ejemplo.com")
	require.NoError(t, err)
	u.Status = entity.UserStatusInactive
	require.NoError(t, store.Users().Update(ctx, u))

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "v@ejemplo.com", Password: "secreta123"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestEnsureAdmin_Idempotente(t *testing.T) {
	uc, store := newAuth()
	ctx := context.Background()

	created, err := uc.EnsureAdmin(ctx, "admin@ejemplo.com", "admin-1234")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = uc.EnsureAdmin(ctx, "admin@ejemplo.com", "admin-1234")
	require.NoError(t, err)
	assert.False(t, created)

	u, err := store.Users().GetByEmail(ctx, "admin@ejemplo.com")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, u.Role)

	_, err = uc.EnsureAdmin(ctx, "otro@ejemplo.com", "corta")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
