package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gepdigital/consola/internal/acceso"
)

type moduloDTO struct {
	ID       string `json:"id"`
	Etiqueta string `json:"etiqueta"`
}

// Modulos lista los módulos accesibles para el rol vigente.
func (h *Handler) Modulos(w http.ResponseWriter, r *http.Request) {
	rol, ok := h.sesiones.RolActual()
	if !ok {
		WriteError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "Sesión no iniciada", nil)
		return
	}

	permitidos := acceso.ModulosPermitidos(rol)
	modulos := make([]moduloDTO, 0, len(permitidos))
	for _, m := range permitidos {
		modulos = append(modulos, moduloDTO{ID: string(m), Etiqueta: m.Etiqueta()})
	}
	WriteJSON(w, http.StatusOK, modulos)
}

// Navegar evalúa un intento imperativo de cambiar de módulo.
func (h *Handler) Navegar(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Modulo string `json:"modulo"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	modulo, err := acceso.ParseModulo(payload.Modulo)
	if err != nil {
		if errors.Is(err, acceso.ErrModuloDesconocido) {
			WriteError(w, http.StatusBadRequest, "UNKNOWN_MODULE", err.Error(), nil)
			return
		}
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	WriteJSON(w, http.StatusOK, h.puerta.Navegar(modulo))
}

// NavegacionEstado devuelve el módulo presentado y el aviso pendiente.
func (h *Handler) NavegacionEstado(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.puerta.Estado())
}
