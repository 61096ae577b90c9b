package perfil

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type repoStub struct {
	usuarios  []Usuario
	crearErr  error
	creado    *CrearUsuarioInput
	userID    string
	eliminado int64
}

func (r *repoStub) PorEmail(ctx context.Context, email string) (*Usuario, error) {
	return nil, ErrNoEncontrado
}

func (r *repoStub) Listar(ctx context.Context) ([]Usuario, error) {
	return r.usuarios, nil
}

func (r *repoStub) Crear(ctx context.Context, input CrearUsuarioInput) (*Usuario, error) {
	if r.crearErr != nil {
		return nil, r.crearErr
	}
	r.creado = &input
	return &Usuario{ID: 1, Nombre: input.Nombre, Apellido: input.Apellido, Email: input.Email, Perfil: input.Perfil}, nil
}

func (r *repoStub) Actualizar(ctx context.Context, input ActualizarUsuarioInput) (*Usuario, error) {
	return &Usuario{ID: input.ID, Nombre: input.Nombre, Apellido: input.Apellido, Perfil: input.Perfil}, nil
}

func (r *repoStub) Eliminar(ctx context.Context, id int64) (string, error) {
	r.eliminado = id
	return r.userID, nil
}

type cuentasStub struct {
	creadas    int
	eliminadas []string
	crearErr   error
}

func (c *cuentasStub) CrearUsuario(ctx context.Context, email, contrasena string) (string, error) {
	if c.crearErr != nil {
		return "", c.crearErr
	}
	c.creadas++
	return "uuid-proveedor", nil
}

func (c *cuentasStub) EliminarUsuario(ctx context.Context, id string) error {
	c.eliminadas = append(c.eliminadas, id)
	return nil
}

func entradaValida() CrearUsuarioInput {
	return CrearUsuarioInput{
		Nombre:   "Ana",
		Apellido: "López",
		Email:    "ana@gep.com.mx",
		Perfil:   "Analista GEP",
		Activo:   true,
	}
}

func TestCrearExitoso(t *testing.T) {
	repo := &repoStub{}
	cuentas := &cuentasStub{}
	svc := NewService(repo, cuentas)

	usuario, err := svc.Crear(context.Background(), entradaValida(), "secreta123")
	require.NoError(t, err)
	require.Equal(t, "Ana", usuario.Nombre)
	require.Equal(t, 1, cuentas.creadas)
	require.Equal(t, "uuid-proveedor", repo.creado.UserID)
}

func TestCrearCamposIncompletos(t *testing.T) {
	cuentas := &cuentasStub{}
	svc := NewService(&repoStub{}, cuentas)

	input := entradaValida()
	input.Apellido = "  "

	_, err := svc.Crear(context.Background(), input, "secreta123")
	require.ErrorIs(t, err, ErrDatosIncompletos)
	require.Zero(t, cuentas.creadas)
}

func TestCrearRolInvalido(t *testing.T) {
	cuentas := &cuentasStub{}
	svc := NewService(&repoStub{}, cuentas)

	input := entradaValida()
	input.Perfil = "Supervisor"

	_, err := svc.Crear(context.Background(), input, "secreta123")
	require.ErrorIs(t, err, ErrPerfilInvalido)
	require.Zero(t, cuentas.creadas)
}

func TestCrearRevierteCuentaSiLaFilaFalla(t *testing.T) {
	repo := &repoStub{crearErr: errors.New("violación de constraint")}
	cuentas := &cuentasStub{}
	svc := NewService(repo, cuentas)

	_, err := svc.Crear(context.Background(), entradaValida(), "secreta123")
	require.Error(t, err)
	require.Equal(t, []string{"uuid-proveedor"}, cuentas.eliminadas)
}

func TestActualizarRolInvalido(t *testing.T) {
	svc := NewService(&repoStub{}, &cuentasStub{})

	_, err := svc.Actualizar(context.Background(), ActualizarUsuarioInput{ID: 1, Perfil: "Gerente"})
	require.ErrorIs(t, err, ErrPerfilInvalido)
}

func TestEliminarBorraCuentaDelProveedor(t *testing.T) {
	repo := &repoStub{userID: "uuid-proveedor"}
	cuentas := &cuentasStub{}
	svc := NewService(repo, cuentas)

	require.NoError(t, svc.Eliminar(context.Background(), 7))
	require.Equal(t, int64(7), repo.eliminado)
	require.Equal(t, []string{"uuid-proveedor"}, cuentas.eliminadas)
}

func TestEliminarSinCuentaVinculada(t *testing.T) {
	repo := &repoStub{userID: ""}
	cuentas := &cuentasStub{}
	svc := NewService(repo, cuentas)

	require.NoError(t, svc.Eliminar(context.Background(), 7))
	require.Empty(t, cuentas.eliminadas)
}
