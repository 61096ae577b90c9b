// Package session es el dueño del único estado identidad-o-anónimo del
// proceso. Resuelve la identidad firmada en un rol de la consola, aplica la
// política de cuentas inactivas y publica cada cambio a sus observadores.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gepdigital/consola/internal/acceso"
	"github.com/gepdigital/consola/internal/metrics"
	"github.com/gepdigital/consola/internal/perfil"
	"github.com/gepdigital/consola/internal/provider"
)

// Estado refleja la conectividad con el proveedor.
type Estado string

const (
	EstadoConectando Estado = "connecting"
	EstadoConectado  Estado = "connected"
	EstadoError      Estado = "error"
)

// Sesion es la foto publicada del estado vigente. Invariante: si Identidad
// no es nula, Rol es uno de los dos roles válidos.
type Sesion struct {
	Identidad *provider.Identidad
	Rol       acceso.Rol
	Nombre    string
	Apellido  string
	Degradado bool
	Estado    Estado
	Cargando  bool
}

// Autenticada indica si hay identidad vigente.
func (s Sesion) Autenticada() bool {
	return s.Identidad != nil
}

// Config fija los tres relojes de guardia del lado cliente.
type Config struct {
	TimeoutBootstrap time.Duration // carrera contra GetSession en el arranque
	TimeoutPerfil    time.Duration // por consulta de perfil
	TimeoutSignOut   time.Duration // cierre de sesión en el proveedor
}

// ConfigPorDefecto son los valores de producción.
func ConfigPorDefecto() Config {
	return Config{
		TimeoutBootstrap: 15 * time.Second,
		TimeoutPerfil:    5 * time.Second,
		TimeoutSignOut:   10 * time.Second,
	}
}

func (c Config) normalizada() Config {
	def := ConfigPorDefecto()
	if c.TimeoutBootstrap <= 0 {
		c.TimeoutBootstrap = def.TimeoutBootstrap
	}
	if c.TimeoutPerfil <= 0 {
		c.TimeoutPerfil = def.TimeoutPerfil
	}
	if c.TimeoutSignOut <= 0 {
		c.TimeoutSignOut = def.TimeoutSignOut
	}
	return c
}

// Proveedor son las cinco operaciones del backend externo de las que
// depende el manejador de sesión.
type Proveedor interface {
	GetSession(ctx context.Context) (*provider.Identidad, error)
	SignInWithPassword(ctx context.Context, email, contrasena string) (*provider.Identidad, error)
	SignOut(ctx context.Context) error
	OnAuthStateChange(fn func(provider.CambioAuth)) func()
}

// AlmacenPerfiles es la consulta de una sola fila sobre la tabla usuarios.
type AlmacenPerfiles interface {
	PorEmail(ctx context.Context, email string) (*perfil.Usuario, error)
}

// resuelto es el resultado de una resolución de perfil. nil significa
// "no aprovisionado" (ausencia confirmada), distinto de una falla de consulta.
type resuelto struct {
	Rol       acceso.Rol
	Activo    bool
	Nombre    string
	Apellido  string
	Degradado bool
}

// Manager implementa la máquina de estados de la sesión.
type Manager struct {
	proveedor Proveedor
	perfiles  AlmacenPerfiles
	cfg       Config

	mu          sync.Mutex
	sesion      Sesion
	seq         uint64 // último intento de resolución emitido
	vivo        bool
	cancelarSub func()

	obsMu        sync.Mutex
	observadores map[int]func(Sesion)
	siguienteObs int
}

// NewManager construye el manejador sin arrancarlo. Iniciar debe llamarse
// exactamente una vez.
func NewManager(proveedor Proveedor, perfiles AlmacenPerfiles, cfg Config) *Manager {
	return &Manager{
		proveedor:    proveedor,
		perfiles:     perfiles,
		cfg:          cfg.normalizada(),
		sesion:       Sesion{Estado: EstadoConectando, Cargando: true},
		vivo:         true,
		observadores: make(map[int]func(Sesion)),
	}
}

// Iniciar ejecuta el protocolo de arranque: instala la suscripción de
// cambios de autenticación y restaura la sesión existente, acotado por el
// guardián de 15 segundos. Un vencimiento es falla dura (EstadoError, sin
// reintento); una cuenta inactiva restaurada se revoca en silencio.
func (m *Manager) Iniciar(ctx context.Context) {
	m.cancelarSub = m.proveedor.OnAuthStateChange(m.alCambioAuth)

	// cargando=false pase lo que pase, éxito o error
	defer m.terminarCarga()

	bctx, cancelar := context.WithTimeout(ctx, m.cfg.TimeoutBootstrap)
	defer cancelar()

	ident, err := m.proveedor.GetSession(bctx)
	if err != nil {
		log.Error().Err(err).Msg("arranque de sesión fallido")
		m.mu.Lock()
		if m.vivo {
			m.sesion.Estado = EstadoError
		}
		m.mu.Unlock()
		m.notificar()
		return
	}

	m.mu.Lock()
	if m.vivo {
		m.sesion.Estado = EstadoConectado
	}
	m.mu.Unlock()

	if ident == nil {
		m.confirmar(m.siguienteSeq(), nil, resuelto{})
		return
	}

	seq := m.siguienteSeq()
	res := m.resolver(ctx, ident.Email)
	if res != nil && !res.Activo {
		// revocación silenciosa: la conexión sigue siendo válida
		log.Warn().Str("email", ident.Email).Msg("cuenta inactiva restaurada, cerrando sesión")
		m.cerrarEnProveedor()
		m.confirmar(seq, nil, resuelto{})
		return
	}

	m.confirmar(seq, ident, autenticada(res))
}

// Cerrar marca el fin de vida del manejador: cancela la suscripción y hace
// que cualquier escritura pendiente del arranque quede en no-op.
func (m *Manager) Cerrar() {
	m.mu.Lock()
	m.vivo = false
	cancelar := m.cancelarSub
	m.cancelarSub = nil
	m.mu.Unlock()
	if cancelar != nil {
		cancelar()
	}
}

// SignIn autentica al personal. Orden deliberado: primero el perfil (sin
// fila → ErrNoRegistrado sin tocar al proveedor), luego el estado activo,
// luego el proveedor, y una re-resolución final que cubre la desactivación
// ocurrida entre la primera consulta y la confirmación del proveedor.
func (m *Manager) SignIn(ctx context.Context, email, contrasena string) error {
	email = strings.TrimSpace(email)

	m.ponerCarga(true)
	defer m.ponerCarga(false)

	res := m.resolver(ctx, email)
	if res == nil {
		return ErrNoRegistrado
	}
	if !res.Activo {
		return ErrCuentaInactiva
	}

	ident, err := m.proveedor.SignInWithPassword(ctx, email, contrasena)
	if err != nil {
		if errors.Is(err, provider.ErrCredencialesInvalidas) {
			return ErrContrasenaIncorrecta
		}
		return fmt.Errorf("%w: %v", ErrProveedor, err)
	}

	seq := m.siguienteSeq()
	final := m.resolver(ctx, ident.Email)
	if final != nil && !final.Activo {
		// desactivada durante el propio inicio de sesión
		m.cerrarEnProveedor()
		m.confirmar(seq, nil, resuelto{})
		return ErrCuentaInactiva
	}

	m.confirmar(seq, ident, autenticada(final))
	metrics.SesionesIniciadas.Inc()
	return nil
}

// SignOut cierra la sesión: mejor esfuerzo contra el proveedor acotado por
// su guardián, y limpieza local incondicional. Llamarlo repetidamente es
// válido y no produce error.
func (m *Manager) SignOut(ctx context.Context) {
	m.ponerCarga(true)
	defer m.ponerCarga(false)

	sctx, cancelar := context.WithTimeout(ctx, m.cfg.TimeoutSignOut)
	defer cancelar()

	if err := m.proveedor.SignOut(sctx); err != nil {
		log.Warn().Err(err).Msg("cierre de sesión en el proveedor falló; limpiando igualmente")
	}

	m.confirmar(m.siguienteSeq(), nil, resuelto{})
}

// Actual devuelve la foto vigente.
func (m *Manager) Actual() Sesion {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sesion
}

// RolActual implementa acceso.FuenteRol.
func (m *Manager) RolActual() (acceso.Rol, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sesion.Identidad == nil {
		return 0, false
	}
	return m.sesion.Rol, true
}

// Observar registra un observador de cambios y devuelve su cancelación.
func (m *Manager) Observar(fn func(Sesion)) func() {
	m.obsMu.Lock()
	defer m.obsMu.Unlock()

	id := m.siguienteObs
	m.siguienteObs++
	m.observadores[id] = fn

	return func() {
		m.obsMu.Lock()
		defer m.obsMu.Unlock()
		delete(m.observadores, id)
	}
}

// alCambioAuth atiende la suscripción del proveedor: único camino, además de
// SignIn/SignOut explícitos, que puede mutar la sesión tras el arranque.
// Cubre inicios y cierres originados en otras instancias y renovaciones de
// token fuera del control directo de este componente.
func (m *Manager) alCambioAuth(cambio provider.CambioAuth) {
	m.mu.Lock()
	vivo := m.vivo
	m.mu.Unlock()
	if !vivo {
		return
	}

	switch cambio.Evento {
	case provider.EventoSignedIn, provider.EventoTokenRenovado:
		if cambio.Identidad == nil {
			return
		}
		seq := m.siguienteSeq()
		res := m.resolver(context.Background(), cambio.Identidad.Email)
		if res != nil && !res.Activo {
			log.Warn().Str("email", cambio.Identidad.Email).Msg("cuenta inactiva detectada en evento de autenticación")
			m.cerrarEnProveedor()
			m.confirmar(seq, nil, resuelto{})
			return
		}
		m.confirmar(seq, cambio.Identidad, autenticada(res))
	case provider.EventoSignedOut:
		m.confirmar(m.siguienteSeq(), nil, resuelto{})
	}
}

// resolver consulta el perfil acotado por el guardián de 5 segundos.
// Ausencia confirmada → nil. Falla o vencimiento → perfil de respaldo
// marcado como degradado, con rol heurístico por el email. Nunca devuelve
// error: ante un backend inestable se prefiere disponibilidad.
func (m *Manager) resolver(ctx context.Context, email string) *resuelto {
	email = strings.ToLower(strings.TrimSpace(email))

	rctx, cancelar := context.WithTimeout(ctx, m.cfg.TimeoutPerfil)
	defer cancelar()

	u, err := m.perfiles.PorEmail(rctx, email)
	if err != nil {
		if errors.Is(err, perfil.ErrNoEncontrado) {
			return nil
		}
		log.Warn().Err(err).Str("email", email).Msg("consulta de perfil falló, usando respaldo")
		return respaldo(email)
	}

	rol, err := acceso.ParseRol(u.Perfil)
	if err != nil {
		log.Warn().Str("perfil", u.Perfil).Str("email", email).Msg("rol almacenado desconocido, usando respaldo")
		return respaldo(email)
	}

	return &resuelto{
		Rol:      rol,
		Activo:   u.EsActivo(),
		Nombre:   u.Nombre,
		Apellido: u.Apellido,
	}
}

// respaldo es el perfil heurístico ante fallas de consulta.
func respaldo(email string) *resuelto {
	rol := acceso.RolAnalistaGEP
	if strings.Contains(email, "admin") || strings.Contains(email, "administrador") {
		rol = acceso.RolAdministrador
	}
	return &resuelto{Rol: rol, Activo: true, Degradado: true}
}

// autenticada arma los campos de sesión a partir de una resolución que pudo
// ser nula (perfil ausente pero identidad válida: rol analista por defecto).
func autenticada(res *resuelto) resuelto {
	if res == nil {
		return resuelto{Rol: acceso.RolAnalistaGEP, Activo: true}
	}
	return *res
}

// confirmar aplica la escritura del intento seq. Se descarta si el
// manejador ya no está vivo o si existe un intento más nuevo: el número de
// secuencia monótono reemplaza al frágil "gana el último en llegar".
func (m *Manager) confirmar(seq uint64, ident *provider.Identidad, res resuelto) {
	m.mu.Lock()
	if !m.vivo || seq != m.seq {
		m.mu.Unlock()
		return
	}
	m.sesion.Identidad = ident
	if ident != nil {
		m.sesion.Rol = res.Rol
		m.sesion.Nombre = res.Nombre
		m.sesion.Apellido = res.Apellido
		m.sesion.Degradado = res.Degradado
	} else {
		m.sesion.Rol = 0
		m.sesion.Nombre = ""
		m.sesion.Apellido = ""
		m.sesion.Degradado = false
	}
	m.mu.Unlock()

	m.notificar()
}

func (m *Manager) siguienteSeq() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	return m.seq
}

func (m *Manager) cerrarEnProveedor() {
	sctx, cancelar := context.WithTimeout(context.Background(), m.cfg.TimeoutSignOut)
	defer cancelar()
	if err := m.proveedor.SignOut(sctx); err != nil {
		log.Warn().Err(err).Msg("cierre forzado en el proveedor falló")
	}
}

func (m *Manager) ponerCarga(cargando bool) {
	m.mu.Lock()
	m.sesion.Cargando = cargando
	m.mu.Unlock()
	m.notificar()
}

func (m *Manager) terminarCarga() {
	m.mu.Lock()
	if m.vivo {
		m.sesion.Cargando = false
	}
	m.mu.Unlock()
	m.notificar()
}

func (m *Manager) notificar() {
	foto := m.Actual()

	m.obsMu.Lock()
	fns := make([]func(Sesion), 0, len(m.observadores))
	for _, fn := range m.observadores {
		fns = append(fns, fn)
	}
	m.obsMu.Unlock()

	for _, fn := range fns {
		fn(foto)
	}
}
