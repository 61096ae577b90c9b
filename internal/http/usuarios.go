package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gepdigital/consola/internal/perfil"
	"github.com/gepdigital/consola/internal/util"
)

// ListUsuarios lista los perfiles del personal.
func (h *Handler) ListUsuarios(w http.ResponseWriter, r *http.Request) {
	usuarios, err := h.usuarios.Listar(r.Context())
	if err != nil {
		h.handleUsuarioError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, usuarios)
}

// CreateUsuario da de alta la cuenta en el proveedor y la fila de perfil.
func (h *Handler) CreateUsuario(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Nombre     string `json:"nombre"`
		Apellido   string `json:"apellido"`
		Email      string `json:"email"`
		Perfil     string `json:"perfil"`
		Activo     bool   `json:"activo"`
		Contrasena string `json:"contrasena"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	if err := util.ValidarEmail(payload.Email); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}
	if err := util.ValidarContrasena(payload.Contrasena); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	input := perfil.CrearUsuarioInput{
		Nombre:   payload.Nombre,
		Apellido: payload.Apellido,
		Email:    payload.Email,
		Perfil:   payload.Perfil,
		Activo:   payload.Activo,
	}

	usuario, err := h.usuarios.Crear(r.Context(), input, payload.Contrasena)
	if err != nil {
		h.handleUsuarioError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, usuario)
}

// UpdateUsuario edita nombre, rol y estado activo del perfil.
func (h *Handler) UpdateUsuario(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var input perfil.ActualizarUsuarioInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}
	input.ID = id

	usuario, err := h.usuarios.Actualizar(r.Context(), input)
	if err != nil {
		h.handleUsuarioError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, usuario)
}

// DeleteUsuario borra el perfil y su cuenta en el proveedor.
func (h *Handler) DeleteUsuario(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	if err := h.usuarios.Eliminar(r.Context(), id); err != nil {
		h.handleUsuarioError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) handleUsuarioError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, perfil.ErrNoEncontrado):
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "usuario no encontrado", nil)
	case errors.Is(err, perfil.ErrEmailDuplicado):
		WriteError(w, http.StatusConflict, "DUPLICATED", err.Error(), nil)
	case errors.Is(err, perfil.ErrPerfilInvalido), errors.Is(err, perfil.ErrDatosIncompletos):
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
	default:
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "error al administrar usuarios", nil)
	}
}
