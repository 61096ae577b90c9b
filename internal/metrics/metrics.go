package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ProveedorLlamadas cuenta llamadas al proveedor externo por operación y resultado.
	ProveedorLlamadas = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "consola", Name: "proveedor_llamadas_total", Help: "Llamadas al proveedor externo por operación y resultado."},
		[]string{"operacion", "resultado"},
	)
	// NavegacionDenegada cuenta navegaciones rechazadas por la puerta, por módulo.
	NavegacionDenegada = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "consola", Name: "navegacion_denegada_total", Help: "Intentos de navegación denegados por módulo."},
		[]string{"modulo"},
	)
	// SesionesIniciadas cuenta inicios de sesión exitosos.
	SesionesIniciadas = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "consola", Name: "sesiones_iniciadas_total", Help: "Inicios de sesión exitosos."},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(ProveedorLlamadas)
	reg.MustRegister(NavegacionDenegada)
	reg.MustRegister(SesionesIniciadas)
}
