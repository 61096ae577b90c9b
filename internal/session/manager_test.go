package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gepdigital/consola/internal/acceso"
	"github.com/gepdigital/consola/internal/perfil"
	"github.com/gepdigital/consola/internal/provider"
)

func configRapida() Config {
	return Config{
		TimeoutBootstrap: 200 * time.Millisecond,
		TimeoutPerfil:    100 * time.Millisecond,
		TimeoutSignOut:   100 * time.Millisecond,
	}
}

type proveedorStub struct {
	mu sync.Mutex

	ident           *provider.Identidad
	errGetSession   error
	demoraGet       time.Duration
	signInIdent     *provider.Identidad
	signInErr       error
	signInLlamadas  int
	signOutLlamadas int
	fn              func(provider.CambioAuth)
}

func (p *proveedorStub) GetSession(ctx context.Context) (*provider.Identidad, error) {
	if p.demoraGet > 0 {
		select {
		case <-time.After(p.demoraGet):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return p.ident, p.errGetSession
}

func (p *proveedorStub) SignInWithPassword(ctx context.Context, email, contrasena string) (*provider.Identidad, error) {
	p.mu.Lock()
	p.signInLlamadas++
	p.mu.Unlock()
	if p.signInErr != nil {
		return nil, p.signInErr
	}
	return p.signInIdent, nil
}

func (p *proveedorStub) SignOut(ctx context.Context) error {
	p.mu.Lock()
	p.signOutLlamadas++
	p.mu.Unlock()
	return nil
}

func (p *proveedorStub) OnAuthStateChange(fn func(provider.CambioAuth)) func() {
	p.fn = fn
	return func() {}
}

func (p *proveedorStub) llamadasSignIn() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.signInLlamadas
}

func (p *proveedorStub) llamadasSignOut() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.signOutLlamadas
}

type almacenStub struct {
	mu       sync.Mutex
	usuarios map[string]perfil.Usuario
	err      error
	llamadas int
	alLeer   func(llamada int)
}

func (a *almacenStub) PorEmail(ctx context.Context, email string) (*perfil.Usuario, error) {
	a.mu.Lock()
	a.llamadas++
	n := a.llamadas
	hook := a.alLeer
	a.mu.Unlock()

	if hook != nil {
		hook(n)
	}
	if a.err != nil {
		return nil, a.err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if u, ok := a.usuarios[email]; ok {
		copia := u
		return &copia, nil
	}
	return nil, perfil.ErrNoEncontrado
}

func (a *almacenStub) poner(u perfil.Usuario) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.usuarios == nil {
		a.usuarios = make(map[string]perfil.Usuario)
	}
	a.usuarios[u.Email] = u
}

func identidadDePrueba(email string) *provider.Identidad {
	return &provider.Identidad{
		ID:          "11111111-1111-1111-1111-111111111111",
		Email:       email,
		AccessToken: "token",
		ExpiraEn:    time.Now().Add(time.Hour),
	}
}

func activo(b bool) *bool { return &b }

func TestIniciarSinSesionPrevia(t *testing.T) {
	prov := &proveedorStub{}
	m := NewManager(prov, &almacenStub{}, configRapida())
	defer m.Cerrar()

	m.Iniciar(context.Background())

	s := m.Actual()
	require.Equal(t, EstadoConectado, s.Estado)
	require.False(t, s.Autenticada())
	require.False(t, s.Cargando)
}

func TestIniciarVencimientoEsErrorTerminal(t *testing.T) {
	prov := &proveedorStub{demoraGet: time.Second}
	m := NewManager(prov, &almacenStub{}, configRapida())
	defer m.Cerrar()

	m.Iniciar(context.Background())

	s := m.Actual()
	require.Equal(t, EstadoError, s.Estado)
	require.False(t, s.Autenticada())
	require.False(t, s.Cargando)
}

func TestIniciarRestauraSesion(t *testing.T) {
	almacen := &almacenStub{}
	almacen.poner(perfil.Usuario{Email: "ana@gep.com.mx", Nombre: "Ana", Apellido: "López", Perfil: "Analista GEP", Activo: activo(true)})

	prov := &proveedorStub{ident: identidadDePrueba("ana@gep.com.mx")}
	m := NewManager(prov, almacen, configRapida())
	defer m.Cerrar()

	m.Iniciar(context.Background())

	s := m.Actual()
	require.True(t, s.Autenticada())
	require.Equal(t, acceso.RolAnalistaGEP, s.Rol)
	require.Equal(t, "Ana", s.Nombre)
	require.False(t, s.Degradado)
}

func TestIniciarRevocaCuentaInactivaEnSilencio(t *testing.T) {
	almacen := &almacenStub{}
	almacen.poner(perfil.Usuario{Email: "ana@gep.com.mx", Perfil: "Analista GEP", Activo: activo(false)})

	prov := &proveedorStub{ident: identidadDePrueba("ana@gep.com.mx")}
	m := NewManager(prov, almacen, configRapida())
	defer m.Cerrar()

	m.Iniciar(context.Background())

	s := m.Actual()
	require.Equal(t, EstadoConectado, s.Estado)
	require.False(t, s.Autenticada())
	require.Equal(t, 1, prov.llamadasSignOut())
}

func TestSignInNoRegistradoNoTocaProveedor(t *testing.T) {
	prov := &proveedorStub{signInIdent: identidadDePrueba("x@gep.com.mx")}
	m := NewManager(prov, &almacenStub{}, configRapida())
	defer m.Cerrar()

	err := m.SignIn(context.Background(), "x@gep.com.mx", "secreta123")
	require.ErrorIs(t, err, ErrNoRegistrado)
	require.Equal(t, 0, prov.llamadasSignIn())
}

func TestSignInCuentaInactivaNoTocaProveedor(t *testing.T) {
	almacen := &almacenStub{}
	almacen.poner(perfil.Usuario{Email: "admin@gep.com.mx", Perfil: "Administrador", Activo: activo(false)})

	prov := &proveedorStub{signInIdent: identidadDePrueba("admin@gep.com.mx")}
	m := NewManager(prov, almacen, configRapida())
	defer m.Cerrar()

	err := m.SignIn(context.Background(), "admin@gep.com.mx", "la-correcta")
	require.ErrorIs(t, err, ErrCuentaInactiva)
	require.Equal(t, 0, prov.llamadasSignIn())
}

func TestSignInContrasenaIncorrecta(t *testing.T) {
	almacen := &almacenStub{}
	almacen.poner(perfil.Usuario{Email: "ana@gep.com.mx", Perfil: "Analista GEP", Activo: activo(true)})

	prov := &proveedorStub{signInErr: provider.ErrCredencialesInvalidas}
	m := NewManager(prov, almacen, configRapida())
	defer m.Cerrar()

	err := m.SignIn(context.Background(), "ana@gep.com.mx", "equivocada")
	require.ErrorIs(t, err, ErrContrasenaIncorrecta)
	require.False(t, m.Actual().Autenticada())
}

func TestSignInExitosoAnalista(t *testing.T) {
	almacen := &almacenStub{}
	almacen.poner(perfil.Usuario{Email: "ana@gep.com.mx", Nombre: "Ana", Apellido: "López", Perfil: "Analista GEP", Activo: activo(true)})

	prov := &proveedorStub{signInIdent: identidadDePrueba("ana@gep.com.mx")}
	m := NewManager(prov, almacen, configRapida())
	defer m.Cerrar()

	require.NoError(t, m.SignIn(context.Background(), "ana@gep.com.mx", "secreta123"))

	rol, ok := m.RolActual()
	require.True(t, ok)
	require.Equal(t, acceso.RolAnalistaGEP, rol)
	require.True(t, acceso.TieneAcceso(rol, acceso.ModuloDocumentos))
	require.False(t, acceso.TieneAcceso(rol, acceso.ModuloUsuarios))
	require.False(t, m.Actual().Cargando)
}

func TestSignInDesactivadaDuranteElLogin(t *testing.T) {
	almacen := &almacenStub{}
	almacen.poner(perfil.Usuario{Email: "ana@gep.com.mx", Perfil: "Analista GEP", Activo: activo(true)})
	almacen.alLeer = func(llamada int) {
		if llamada == 2 {
			almacen.poner(perfil.Usuario{Email: "ana@gep.com.mx", Perfil: "Analista GEP", Activo: activo(false)})
		}
	}

	prov := &proveedorStub{signInIdent: identidadDePrueba("ana@gep.com.mx")}
	m := NewManager(prov, almacen, configRapida())
	defer m.Cerrar()

	err := m.SignIn(context.Background(), "ana@gep.com.mx", "secreta123")
	require.ErrorIs(t, err, ErrCuentaInactiva)
	require.Equal(t, 1, prov.llamadasSignOut())
	require.False(t, m.Actual().Autenticada())
}

func TestSignInConPerfilCaidoUsaRespaldo(t *testing.T) {
	almacen := &almacenStub{err: errors.New("backend caído")}
	prov := &proveedorStub{signInIdent: identidadDePrueba("admin@gep.com.mx")}
	m := NewManager(prov, almacen, configRapida())
	defer m.Cerrar()

	require.NoError(t, m.SignIn(context.Background(), "admin@gep.com.mx", "secreta123"))

	s := m.Actual()
	require.True(t, s.Autenticada())
	require.True(t, s.Degradado)
	require.Equal(t, acceso.RolAdministrador, s.Rol)
}

func TestRespaldoHeuristicoPorEmail(t *testing.T) {
	require.Equal(t, acceso.RolAdministrador, respaldo("admin@gep.com.mx").Rol)
	require.Equal(t, acceso.RolAdministrador, respaldo("administrador.juarez@gep.com.mx").Rol)
	require.Equal(t, acceso.RolAnalistaGEP, respaldo("ana@gep.com.mx").Rol)
}

func TestSignOutEsIdempotente(t *testing.T) {
	almacen := &almacenStub{}
	almacen.poner(perfil.Usuario{Email: "ana@gep.com.mx", Perfil: "Analista GEP", Activo: activo(true)})

	prov := &proveedorStub{signInIdent: identidadDePrueba("ana@gep.com.mx")}
	m := NewManager(prov, almacen, configRapida())
	defer m.Cerrar()

	require.NoError(t, m.SignIn(context.Background(), "ana@gep.com.mx", "secreta123"))

	m.SignOut(context.Background())
	m.SignOut(context.Background())

	require.False(t, m.Actual().Autenticada())
	require.Equal(t, 2, prov.llamadasSignOut())
}

func TestEventoConCuentaDesactivadaVuelveAnonima(t *testing.T) {
	almacen := &almacenStub{}
	almacen.poner(perfil.Usuario{Email: "ana@gep.com.mx", Perfil: "Analista GEP", Activo: activo(true)})

	prov := &proveedorStub{ident: identidadDePrueba("ana@gep.com.mx")}
	m := NewManager(prov, almacen, configRapida())
	defer m.Cerrar()

	m.Iniciar(context.Background())
	require.True(t, m.Actual().Autenticada())

	almacen.poner(perfil.Usuario{Email: "ana@gep.com.mx", Perfil: "Analista GEP", Activo: activo(false)})
	prov.fn(provider.CambioAuth{Evento: provider.EventoSignedIn, Identidad: identidadDePrueba("ana@gep.com.mx")})

	require.False(t, m.Actual().Autenticada())
	require.Equal(t, EstadoConectado, m.Actual().Estado)
}

func TestEventoSignedOutLimpiaSesion(t *testing.T) {
	almacen := &almacenStub{}
	almacen.poner(perfil.Usuario{Email: "ana@gep.com.mx", Perfil: "Analista GEP", Activo: activo(true)})

	prov := &proveedorStub{ident: identidadDePrueba("ana@gep.com.mx")}
	m := NewManager(prov, almacen, configRapida())
	defer m.Cerrar()

	m.Iniciar(context.Background())
	require.True(t, m.Actual().Autenticada())

	prov.fn(provider.CambioAuth{Evento: provider.EventoSignedOut})
	require.False(t, m.Actual().Autenticada())
}

func TestObservadoresRecibenCambios(t *testing.T) {
	almacen := &almacenStub{}
	almacen.poner(perfil.Usuario{Email: "ana@gep.com.mx", Perfil: "Analista GEP", Activo: activo(true)})

	prov := &proveedorStub{signInIdent: identidadDePrueba("ana@gep.com.mx")}
	m := NewManager(prov, almacen, configRapida())
	defer m.Cerrar()

	var mu sync.Mutex
	var fotos []Sesion
	cancelar := m.Observar(func(s Sesion) {
		mu.Lock()
		fotos = append(fotos, s)
		mu.Unlock()
	})
	defer cancelar()

	require.NoError(t, m.SignIn(context.Background(), "ana@gep.com.mx", "secreta123"))

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, fotos)
	ultima := fotos[len(fotos)-1]
	require.True(t, ultima.Autenticada())
}

func TestCerrarDescartaEscriturasTardias(t *testing.T) {
	almacen := &almacenStub{}
	almacen.poner(perfil.Usuario{Email: "ana@gep.com.mx", Perfil: "Analista GEP", Activo: activo(true)})

	prov := &proveedorStub{ident: identidadDePrueba("ana@gep.com.mx")}
	m := NewManager(prov, almacen, configRapida())

	m.Cerrar()
	m.Iniciar(context.Background())

	require.False(t, m.Actual().Autenticada())
}
