package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gepdigital/consola/internal/session"
)

type sesionDTO struct {
	Autenticada bool   `json:"autenticada"`
	Email       string `json:"email,omitempty"`
	Nombre      string `json:"nombre,omitempty"`
	Apellido    string `json:"apellido,omitempty"`
	Rol         string `json:"rol,omitempty"`
	Degradado   bool   `json:"degradado,omitempty"`
	Estado      string `json:"estado"`
	Cargando    bool   `json:"cargando"`
}

func nuevaSesionDTO(s session.Sesion) sesionDTO {
	dto := sesionDTO{
		Autenticada: s.Autenticada(),
		Estado:      string(s.Estado),
		Cargando:    s.Cargando,
	}
	if s.Autenticada() {
		dto.Email = s.Identidad.Email
		dto.Nombre = s.Nombre
		dto.Apellido = s.Apellido
		dto.Rol = s.Rol.String()
		dto.Degradado = s.Degradado
	}
	return dto
}

// Login autentica al personal de la consola.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email      string `json:"email"`
		Contrasena string `json:"contrasena"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	if strings.TrimSpace(payload.Email) == "" || strings.TrimSpace(payload.Contrasena) == "" {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "email y contraseña son obligatorios", nil)
		return
	}

	if err := h.sesiones.SignIn(r.Context(), payload.Email, payload.Contrasena); err != nil {
		h.handleAuthError(w, err)
		return
	}

	h.puerta.Reevaluar()
	WriteJSON(w, http.StatusOK, nuevaSesionDTO(h.sesiones.Actual()))
}

// Logout cierra la sesión vigente. Repetirlo no es error.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sesiones.SignOut(r.Context())
	h.puerta.Reevaluar()
	WriteJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// Sesion devuelve la foto del estado vigente, autenticado o no.
func (h *Handler) Sesion(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, nuevaSesionDTO(h.sesiones.Actual()))
}

func (h *Handler) handleAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNoRegistrado):
		WriteError(w, http.StatusUnauthorized, "NOT_REGISTERED", err.Error(), nil)
	case errors.Is(err, session.ErrContrasenaIncorrecta):
		WriteError(w, http.StatusUnauthorized, "WRONG_PASSWORD", err.Error(), nil)
	case errors.Is(err, session.ErrCuentaInactiva):
		WriteError(w, http.StatusForbidden, "ACCOUNT_INACTIVE", err.Error(), nil)
	default:
		WriteError(w, http.StatusBadGateway, "PROVIDER", "error al autenticar", nil)
	}
}
