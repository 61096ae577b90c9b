// Package panel arma el resumen del dashboard: los conteos que alimentan
// las tarjetas de métricas de la pantalla inicial.
package panel

import (
	"context"

	"github.com/rs/zerolog/log"
)

type contador interface {
	Contar(ctx context.Context) (int64, error)
}

type contadorTemas interface {
	ContarTemas(ctx context.Context) (int64, error)
}

// Resumen agrega los totales por módulo.
type Resumen struct {
	Documentos int64 `json:"documentos"`
	Clientes   int64 `json:"clientes"`
	Empresas   int64 `json:"empresas"`
	Temas      int64 `json:"temas"`
}

// Service consulta los conteos de cada repositorio.
type Service struct {
	documentos contador
	clientes   contador
	empresas   contador
	temas      contadorTemas
}

func NewService(documentos, clientes, empresas contador, temas contadorTemas) *Service {
	return &Service{documentos: documentos, clientes: clientes, empresas: empresas, temas: temas}
}

// Resumen junta los totales. Un conteo fallido se reporta como cero en vez
// de tirar el dashboard completo.
func (s *Service) Resumen(ctx context.Context) Resumen {
	var r Resumen
	r.Documentos = s.contar(ctx, "documentos", s.documentos.Contar)
	r.Clientes = s.contar(ctx, "clientes", s.clientes.Contar)
	r.Empresas = s.contar(ctx, "empresas", s.empresas.Contar)
	r.Temas = s.contar(ctx, "temas", s.temas.ContarTemas)
	return r
}

func (s *Service) contar(ctx context.Context, nombre string, fn func(context.Context) (int64, error)) int64 {
	total, err := fn(ctx)
	if err != nil {
		log.Warn().Err(err).Str("tabla", nombre).Msg("conteo del dashboard falló")
		return 0
	}
	return total
}
