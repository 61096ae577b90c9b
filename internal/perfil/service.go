package perfil

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/gepdigital/consola/internal/acceso"
)

var (
	// ErrPerfilInvalido indica un rol fuera de la enumeración al crear o editar.
	ErrPerfilInvalido = errors.New("perfil inválido")
	// ErrDatosIncompletos indica campos obligatorios vacíos.
	ErrDatosIncompletos = errors.New("nombre, apellido y email son obligatorios")
)

type repositorio interface {
	PorEmail(ctx context.Context, email string) (*Usuario, error)
	Listar(ctx context.Context) ([]Usuario, error)
	Crear(ctx context.Context, input CrearUsuarioInput) (*Usuario, error)
	Actualizar(ctx context.Context, input ActualizarUsuarioInput) (*Usuario, error)
	Eliminar(ctx context.Context, id int64) (string, error)
}

type cuentasProveedor interface {
	CrearUsuario(ctx context.Context, email, contrasena string) (string, error)
	EliminarUsuario(ctx context.Context, id string) error
}

// Service administra usuarios: mantiene alineadas la fila de perfil y la
// cuenta del proveedor, que se crean y destruyen juntas.
type Service struct {
	repo    repositorio
	cuentas cuentasProveedor
}

func NewService(repo repositorio, cuentas cuentasProveedor) *Service {
	return &Service{repo: repo, cuentas: cuentas}
}

// Listar devuelve todos los perfiles.
func (s *Service) Listar(ctx context.Context) ([]Usuario, error) {
	return s.repo.Listar(ctx)
}

// Crear da de alta la cuenta en el proveedor y luego la fila de perfil.
// Si la fila falla, la cuenta recién creada se elimina para no dejar
// credenciales válidas sin perfil.
func (s *Service) Crear(ctx context.Context, input CrearUsuarioInput, contrasena string) (*Usuario, error) {
	if strings.TrimSpace(input.Nombre) == "" || strings.TrimSpace(input.Apellido) == "" || strings.TrimSpace(input.Email) == "" {
		return nil, ErrDatosIncompletos
	}
	if _, err := acceso.ParseRol(input.Perfil); err != nil {
		return nil, ErrPerfilInvalido
	}

	userID, err := s.cuentas.CrearUsuario(ctx, input.Email, contrasena)
	if err != nil {
		return nil, err
	}
	input.UserID = userID

	usuario, err := s.repo.Crear(ctx, input)
	if err != nil {
		if rerr := s.cuentas.EliminarUsuario(ctx, userID); rerr != nil {
			log.Error().Err(rerr).Str("user_id", userID).Msg("no se pudo revertir la cuenta del proveedor")
		}
		return nil, err
	}
	return usuario, nil
}

// Actualizar edita los datos del perfil.
func (s *Service) Actualizar(ctx context.Context, input ActualizarUsuarioInput) (*Usuario, error) {
	if _, err := acceso.ParseRol(input.Perfil); err != nil {
		return nil, ErrPerfilInvalido
	}
	return s.repo.Actualizar(ctx, input)
}

// Eliminar borra la fila de perfil y, en el mejor esfuerzo, la cuenta del proveedor.
func (s *Service) Eliminar(ctx context.Context, id int64) error {
	userID, err := s.repo.Eliminar(ctx, id)
	if err != nil {
		return err
	}
	if userID != "" {
		if err := s.cuentas.EliminarUsuario(ctx, userID); err != nil {
			log.Warn().Err(err).Str("user_id", userID).Msg("la cuenta del proveedor quedó huérfana")
		}
	}
	return nil
}
