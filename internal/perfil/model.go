// Package perfil accede a la tabla usuarios del backend: el registro durable
// que vincula cada email del personal con su rol y su estado activo/inactivo.
package perfil

import (
	"errors"
	"time"
)

var (
	// ErrNoEncontrado indica ausencia confirmada de registro (distinto de una falla de consulta).
	ErrNoEncontrado = errors.New("usuario no encontrado")
	// ErrEmailDuplicado indica que ya existe un usuario con ese email.
	ErrEmailDuplicado = errors.New("ya existe un usuario con ese email")
)

// Usuario es la fila de la tabla usuarios.
type Usuario struct {
	ID       int64     `json:"id"`
	CreadoEn time.Time `json:"created_at"`
	UserID   *string   `json:"user_id,omitempty"`
	Nombre   string    `json:"nombre"`
	Apellido string    `json:"apellido"`
	Email    string    `json:"email"`
	Perfil   string    `json:"perfil"`
	Activo   *bool     `json:"activo,omitempty"`
}

// EsActivo trata la ausencia del campo como activo: inactivo debe ser explícito.
func (u Usuario) EsActivo() bool {
	return u.Activo == nil || *u.Activo
}

// CrearUsuarioInput son los datos de alta (la contraseña viaja al proveedor, nunca se guarda).
type CrearUsuarioInput struct {
	Nombre   string
	Apellido string
	Email    string
	Perfil   string
	Activo   bool
	UserID   string
}

// ActualizarUsuarioInput son los datos editables del usuario.
type ActualizarUsuarioInput struct {
	ID       int64
	Nombre   string
	Apellido string
	Perfil   string
	Activo   bool
}
