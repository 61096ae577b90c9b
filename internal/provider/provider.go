// Package provider implementa el cliente del backend externo (GoTrue
// self-hosted) del que dependen la sesión y las pantallas de la consola:
// autenticación por contraseña, persistencia y restauración de sesión,
// renovación automática de tokens y el flujo de eventos de autenticación.
package provider

import (
	"errors"
	"time"
)

var (
	// ErrCredencialesInvalidas señala el rechazo genérico de credenciales del proveedor.
	ErrCredencialesInvalidas = errors.New("credenciales inválidas")
	// ErrSinSesion indica operaciones que requieren una sesión vigente.
	ErrSinSesion = errors.New("no hay sesión activa")
)

// Identidad es la copia local de la identidad emitida por el proveedor.
type Identidad struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiraEn     time.Time `json:"expira_en"`
}

// Evento clasifica las notificaciones de cambio de estado de autenticación.
type Evento string

const (
	EventoSignedIn      Evento = "SIGNED_IN"
	EventoSignedOut     Evento = "SIGNED_OUT"
	EventoTokenRenovado Evento = "TOKEN_REFRESHED"
)

// CambioAuth es la notificación entregada a los suscriptores.
type CambioAuth struct {
	Evento    Evento     `json:"evento"`
	Identidad *Identidad `json:"identidad,omitempty"`
}
