package session

import "errors"

var (
	// ErrNoRegistrado indica email sin fila de perfil; el proveedor nunca llega a consultarse.
	ErrNoRegistrado = errors.New("El usuario no está registrado en la plataforma. Verifique sus datos o contacte al administrador.")
	// ErrContrasenaIncorrecta indica perfil existente con credenciales rechazadas.
	ErrContrasenaIncorrecta = errors.New("Contraseña incorrecta. Intente nuevamente.")
	// ErrCuentaInactiva indica cuenta desactivada por un administrador.
	ErrCuentaInactiva = errors.New("Tu cuenta está inactiva. Contacta al administrador del sistema.")
	// ErrProveedor envuelve cualquier otra falla del proveedor durante la autenticación.
	ErrProveedor = errors.New("error del proveedor de autenticación")
)
