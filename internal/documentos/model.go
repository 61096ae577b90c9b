// Package documentos accede a los documentos legislativos capturados
// (tabla senado), con filtros, orden y paginación por rango.
package documentos

import (
	"errors"
	"time"
)

var (
	// ErrNoEncontrado es devuelto cuando el documento no existe.
	ErrNoEncontrado = errors.New("documento no encontrado")
)

// Documento es la fila de la tabla senado.
type Documento struct {
	ID             int64     `json:"id_senado_do"`
	CreadoEn       time.Time `json:"created_at"`
	Sinopsis       *string   `json:"sinopsis,omitempty"`
	IniciativaText *string   `json:"iniciativa_text,omitempty"`
	IniciativaID   *string   `json:"iniciativa_id,omitempty"`
	Gaceta         *string   `json:"gaceta,omitempty"`
	LinkIniciativa *string   `json:"link_iniciativa,omitempty"`
	Fuente         string    `json:"fuente"`
	ImagenLink     *string   `json:"imagen_link,omitempty"`
	Temas          *string   `json:"temas,omitempty"`
	Personas       *string   `json:"personas,omitempty"`
	Partidos       *string   `json:"partidos,omitempty"`
	Leyes          *string   `json:"leyes,omitempty"`
	Resumen        *string   `json:"resumen,omitempty"`
	Analisis       *string   `json:"analisis,omitempty"`
	Objeto         *string   `json:"objeto,omitempty"`
	Correspondier  *string   `json:"correspondier,omitempty"`
	Tipo           *string   `json:"tipo,omitempty"`
}

// DocumentoInput son los campos editables desde la consola.
type DocumentoInput struct {
	Sinopsis string `json:"sinopsis"`
	Temas    string `json:"temas"`
	Resumen  string `json:"resumen"`
	Analisis string `json:"analisis"`
	Objeto   string `json:"objeto"`
	Tipo     string `json:"tipo"`
}

// Filtro acota el listado de documentos.
type Filtro struct {
	Fuente     string
	FechaDesde *time.Time
	FechaHasta *time.Time
	Busqueda   string
	Pagina     int
	PorPagina  int
}

// Resultado es una página de documentos con el total exacto.
type Resultado struct {
	Documentos []Documento `json:"documentos"`
	Total      int64       `json:"total"`
	Pagina     int         `json:"pagina"`
	PorPagina  int         `json:"por_pagina"`
}
