package acceso

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gepdigital/consola/internal/metrics"
)

// AvisoTTL es el tiempo que permanece visible un aviso de acceso denegado.
const AvisoTTL = 5 * time.Second

// FuenteRol expone el rol vigente de la sesión. Devuelve ok=false cuando no
// hay sesión autenticada.
type FuenteRol interface {
	RolActual() (Rol, bool)
}

// Decision es el resultado de un intento de navegación.
type Decision struct {
	Permitido bool   `json:"permitido"`
	Modulo    Modulo `json:"modulo"`
	Aviso     string `json:"aviso,omitempty"`
}

// Puerta filtra cada navegación contra el conjunto permitido del rol vigente.
// Mantiene el módulo actualmente presentado para poder reevaluarlo cuando el
// rol cambia debajo de una pantalla ya servida.
type Puerta struct {
	fuente FuenteRol
	ahora  func() time.Time

	mu          sync.Mutex
	actual      Modulo
	aviso       string
	avisoExpira time.Time
}

// NuevaPuerta crea la puerta de navegación posicionada en el módulo por defecto.
func NuevaPuerta(fuente FuenteRol) *Puerta {
	return &Puerta{
		fuente: fuente,
		ahora:  time.Now,
		actual: ModuloPorDefecto,
	}
}

// Navegar evalúa imperativamente un intento de navegación. El módulo por
// defecto siempre es accesible para cualquier sesión autenticada; el resto
// exige pertenencia al conjunto del rol. Un rechazo redirige al módulo por
// defecto y deja un aviso transitorio.
func (p *Puerta) Navegar(modulo Modulo) Decision {
	p.mu.Lock()
	defer p.mu.Unlock()

	rol, ok := p.fuente.RolActual()
	if modulo != ModuloPorDefecto && (!ok || !TieneAcceso(rol, modulo)) {
		log.Warn().Str("modulo", string(modulo)).Str("rol", rol.String()).Msg("navegación denegada")
		return p.denegarLocked(modulo)
	}

	p.actual = modulo
	return Decision{Permitido: true, Modulo: modulo}
}

// Reevaluar vuelve a validar el módulo actual contra el rol vigente. Debe
// invocarse cada vez que la sesión cambia: una pantalla ya servida de un
// módulo ahora prohibido es un error de corrección, no un detalle cosmético.
func (p *Puerta) Reevaluar() Decision {
	p.mu.Lock()
	defer p.mu.Unlock()

	rol, ok := p.fuente.RolActual()
	if p.actual == ModuloPorDefecto || (ok && TieneAcceso(rol, p.actual)) {
		return Decision{Permitido: true, Modulo: p.actual, Aviso: p.avisoLocked()}
	}

	log.Warn().Str("modulo", string(p.actual)).Msg("módulo presentado ya no es accesible")
	return p.denegarLocked(p.actual)
}

// Estado devuelve el módulo actual y el aviso pendiente, si aún no expira.
func (p *Puerta) Estado() Decision {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Decision{Permitido: true, Modulo: p.actual, Aviso: p.avisoLocked()}
}

func (p *Puerta) denegarLocked(modulo Modulo) Decision {
	metrics.NavegacionDenegada.WithLabelValues(string(modulo)).Inc()
	p.actual = ModuloPorDefecto
	p.aviso = "No tienes permisos para acceder a " + modulo.Etiqueta() + "."
	p.avisoExpira = p.ahora().Add(AvisoTTL)
	return Decision{Permitido: false, Modulo: ModuloPorDefecto, Aviso: p.aviso}
}

func (p *Puerta) avisoLocked() string {
	if p.aviso == "" || p.ahora().After(p.avisoExpira) {
		p.aviso = ""
		return ""
	}
	return p.aviso
}
