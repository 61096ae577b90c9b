package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gepdigital/consola/internal/catalogo"
)

// ListEmpresas lista empresas, con filtro opcional por nombre.
func (h *Handler) ListEmpresas(w http.ResponseWriter, r *http.Request) {
	empresas, err := h.empresas.Listar(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.handleCatalogoError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, empresas)
}

// CreateEmpresa da de alta una empresa.
func (h *Handler) CreateEmpresa(w http.ResponseWriter, r *http.Request) {
	var input catalogo.EmpresaInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	empresa, err := h.empresas.Crear(r.Context(), input)
	if err != nil {
		h.handleCatalogoError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, empresa)
}

// GetEmpresa recupera una empresa por id.
func (h *Handler) GetEmpresa(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	empresa, err := h.empresas.Obtener(r.Context(), id)
	if err != nil {
		h.handleCatalogoError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, empresa)
}

// UpdateEmpresa edita los datos de la empresa.
func (h *Handler) UpdateEmpresa(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var input catalogo.EmpresaInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	empresa, err := h.empresas.Actualizar(r.Context(), id, input)
	if err != nil {
		h.handleCatalogoError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, empresa)
}

// DeleteEmpresa borra la empresa.
func (h *Handler) DeleteEmpresa(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	if err := h.empresas.Eliminar(r.Context(), id); err != nil {
		h.handleCatalogoError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListClientes lista clientes paginados con filtros de estado y búsqueda.
func (h *Handler) ListClientes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filtro := catalogo.FiltroClientes{
		Estado:    q.Get("estado"),
		Busqueda:  q.Get("q"),
		Pagina:    intQuery(q.Get("pagina")),
		PorPagina: intQuery(q.Get("por_pagina")),
	}

	pagina, err := h.clientes.Listar(r.Context(), filtro)
	if err != nil {
		h.handleCatalogoError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, pagina)
}

// CreateCliente da de alta un cliente.
func (h *Handler) CreateCliente(w http.ResponseWriter, r *http.Request) {
	var input catalogo.ClienteInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	cliente, err := h.clientes.Crear(r.Context(), input)
	if err != nil {
		h.handleCatalogoError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, cliente)
}

// GetCliente recupera un cliente por id.
func (h *Handler) GetCliente(w http.ResponseWriter, r *http.Request) {
	cliente, err := h.clientes.Obtener(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleCatalogoError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, cliente)
}

// UpdateCliente edita los datos del cliente.
func (h *Handler) UpdateCliente(w http.ResponseWriter, r *http.Request) {
	var input catalogo.ClienteInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	cliente, err := h.clientes.Actualizar(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		h.handleCatalogoError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, cliente)
}

// DeleteCliente borra el cliente.
func (h *Handler) DeleteCliente(w http.ResponseWriter, r *http.Request) {
	if err := h.clientes.Eliminar(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.handleCatalogoError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListTemas lista los temas con sus subtemas anidados.
func (h *Handler) ListTemas(w http.ResponseWriter, r *http.Request) {
	temas, err := h.temas.Listar(r.Context())
	if err != nil {
		h.handleCatalogoError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, temas)
}

// CreateTema da de alta un tema.
func (h *Handler) CreateTema(w http.ResponseWriter, r *http.Request) {
	var input catalogo.TemaInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	tema, err := h.temas.CrearTema(r.Context(), input)
	if err != nil {
		h.handleCatalogoError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, tema)
}

// UpdateTema edita nombre y descripción del tema.
func (h *Handler) UpdateTema(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var input catalogo.TemaInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	tema, err := h.temas.ActualizarTema(r.Context(), id, input)
	if err != nil {
		h.handleCatalogoError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, tema)
}

// DeleteTema borra el tema y sus subtemas.
func (h *Handler) DeleteTema(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	if err := h.temas.EliminarTema(r.Context(), id); err != nil {
		h.handleCatalogoError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListSubtemas lista los subtemas de un tema.
func (h *Handler) ListSubtemas(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	subtemas, err := h.temas.ListarSubtemas(r.Context(), id)
	if err != nil {
		h.handleCatalogoError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, subtemas)
}

// CreateSubtema da de alta un subtema bajo el tema indicado.
func (h *Handler) CreateSubtema(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var input catalogo.SubtemaInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	subtema, err := h.temas.CrearSubtema(r.Context(), id, input)
	if err != nil {
		h.handleCatalogoError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, subtema)
}

// DeleteSubtema borra un subtema.
func (h *Handler) DeleteSubtema(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	if err := h.temas.EliminarSubtema(r.Context(), id); err != nil {
		h.handleCatalogoError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) handleCatalogoError(w http.ResponseWriter, err error) {
	if errors.Is(err, catalogo.ErrNoEncontrado) {
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "registro no encontrado", nil)
		return
	}
	WriteError(w, http.StatusInternalServerError, "INTERNAL", "error de base de datos", nil)
}

func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func intQuery(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
