// Package catalogo accede a las tablas de referencia del backend remoto:
// empresas, clientes y el catálogo de temas con sus subtemas.
package catalogo

import (
	"errors"
	"time"
)

var (
	// ErrNoEncontrado es devuelto cuando el registro no existe.
	ErrNoEncontrado = errors.New("registro no encontrado")
)

// Empresa es la fila de la tabla empresas.
type Empresa struct {
	ID        int64     `json:"id_empresa"`
	CreadoEn  time.Time `json:"created_at"`
	IDUsuario *int64    `json:"id_usuario,omitempty"`
	Nombre    string    `json:"nombre_em"`
	RFC       *string   `json:"rfc,omitempty"`
	Giro      *string   `json:"giro,omitempty"`
	SitioWeb  *string   `json:"sitio_web,omitempty"`
}

// EmpresaInput son los campos editables de una empresa.
type EmpresaInput struct {
	Nombre   string `json:"nombre_em"`
	RFC      string `json:"rfc"`
	Giro     string `json:"giro"`
	SitioWeb string `json:"sitio_web"`
}

// Cliente es la fila de la tabla clientes (contactos suscritos).
type Cliente struct {
	ID             string    `json:"id"`
	EmpresaAdmin   *int64    `json:"empresa_admin,omitempty"`
	NombreContacto string    `json:"nombre_contacto"`
	Cargo          *string   `json:"cargo,omitempty"`
	Email          string    `json:"email"`
	Telefono       *string   `json:"telefono,omitempty"`
	TemasSuscritos []string  `json:"temas_suscrit"`
	Estado         string    `json:"estado"`
	CreadoEn       time.Time `json:"creado_en"`
}

// ClienteInput son los campos editables de un cliente.
type ClienteInput struct {
	EmpresaAdmin   *int64   `json:"empresa_admin"`
	NombreContacto string   `json:"nombre_contacto"`
	Cargo          string   `json:"cargo"`
	Email          string   `json:"email"`
	Telefono       string   `json:"telefono"`
	TemasSuscritos []string `json:"temas_suscrit"`
	Estado         string   `json:"estado"`
}

// FiltroClientes acota el listado paginado de clientes.
type FiltroClientes struct {
	Estado    string
	Busqueda  string
	Pagina    int
	PorPagina int
}

// Tema es la fila de la tabla temas.
type Tema struct {
	ID          int64     `json:"id_tema"`
	CreadoEn    time.Time `json:"created_at"`
	Nombre      string    `json:"nombre_tema"`
	Descripcion *string   `json:"desc_tema,omitempty"`
	IDUsuario   *int64    `json:"id_usuario,omitempty"`
	Subtemas    []Subtema `json:"subtemas,omitempty"`
}

// Subtema es la fila de la tabla subtemas, siempre colgada de un tema.
type Subtema struct {
	ID          int64     `json:"id_subtema"`
	CreadoEn    time.Time `json:"created_at"`
	IDTema      int64     `json:"id_tema"`
	Texto       string    `json:"subtema_text"`
	Descripcion *string   `json:"subtema_desc,omitempty"`
}

// TemaInput son los campos editables de un tema.
type TemaInput struct {
	Nombre      string `json:"nombre_tema"`
	Descripcion string `json:"desc_tema"`
}

// SubtemaInput son los campos editables de un subtema.
type SubtemaInput struct {
	Texto       string `json:"subtema_text"`
	Descripcion string `json:"subtema_desc"`
}

// Pagina envuelve un listado paginado con su total exacto.
type Pagina[T any] struct {
	Elementos []T   `json:"elementos"`
	Total     int64 `json:"total"`
	Pagina    int   `json:"pagina"`
	PorPagina int   `json:"por_pagina"`
}
