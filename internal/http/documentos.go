package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gepdigital/consola/internal/documentos"
)

// ListDocumentos lista documentos legislativos con filtros de fuente,
// rango de fechas y búsqueda de texto.
func (h *Handler) ListDocumentos(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filtro := documentos.Filtro{
		Fuente:    q.Get("fuente"),
		Busqueda:  q.Get("q"),
		Pagina:    intQuery(q.Get("pagina")),
		PorPagina: intQuery(q.Get("por_pagina")),
	}

	if desde := q.Get("desde"); desde != "" {
		t, err := time.Parse("2006-01-02", desde)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "VALIDATION", "desde inválido, formato esperado AAAA-MM-DD", nil)
			return
		}
		filtro.FechaDesde = &t
	}
	if hasta := q.Get("hasta"); hasta != "" {
		t, err := time.Parse("2006-01-02", hasta)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "VALIDATION", "hasta inválido, formato esperado AAAA-MM-DD", nil)
			return
		}
		// el límite superior incluye el día completo
		t = t.Add(24*time.Hour - time.Nanosecond)
		filtro.FechaHasta = &t
	}

	resultado, err := h.documentos.Listar(r.Context(), filtro)
	if err != nil {
		h.handleDocumentoError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, resultado)
}

// GetDocumento recupera un documento por id.
func (h *Handler) GetDocumento(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	doc, err := h.documentos.Obtener(r.Context(), id)
	if err != nil {
		h.handleDocumentoError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, doc)
}

// UpdateDocumento edita los campos curables del documento.
func (h *Handler) UpdateDocumento(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var input documentos.DocumentoInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	doc, err := h.documentos.Actualizar(r.Context(), id, input)
	if err != nil {
		h.handleDocumentoError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, doc)
}

// DeleteDocumento borra el documento capturado.
func (h *Handler) DeleteDocumento(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	if err := h.documentos.Eliminar(r.Context(), id); err != nil {
		h.handleDocumentoError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) handleDocumentoError(w http.ResponseWriter, err error) {
	if errors.Is(err, documentos.ErrNoEncontrado) {
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "documento no encontrado", nil)
		return
	}
	WriteError(w, http.StatusInternalServerError, "INTERNAL", "error de base de datos", nil)
}
