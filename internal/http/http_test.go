package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gepdigital/consola/internal/acceso"
	httpmiddleware "github.com/gepdigital/consola/internal/http/middleware"
	"github.com/gepdigital/consola/internal/perfil"
	"github.com/gepdigital/consola/internal/provider"
	"github.com/gepdigital/consola/internal/session"
)

type proveedorFalso struct {
	signInErr error
}

func (p *proveedorFalso) GetSession(ctx context.Context) (*provider.Identidad, error) {
	return nil, nil
}

func (p *proveedorFalso) SignInWithPassword(ctx context.Context, email, contrasena string) (*provider.Identidad, error) {
	if p.signInErr != nil {
		return nil, p.signInErr
	}
	return &provider.Identidad{
		ID:          "u-1",
		Email:       strings.ToLower(email),
		AccessToken: "token",
		ExpiraEn:    time.Now().Add(time.Hour),
	}, nil
}

func (p *proveedorFalso) SignOut(ctx context.Context) error { return nil }

func (p *proveedorFalso) OnAuthStateChange(fn func(provider.CambioAuth)) func() {
	return func() {}
}

type almacenFalso struct {
	usuarios map[string]perfil.Usuario
}

func (a *almacenFalso) PorEmail(ctx context.Context, email string) (*perfil.Usuario, error) {
	if u, ok := a.usuarios[email]; ok {
		copia := u
		return &copia, nil
	}
	return nil, perfil.ErrNoEncontrado
}

type sobreRespuesta struct {
	Data  json.RawMessage `json:"data"`
	Error *ErrorBody      `json:"error"`
}

func entornoPrueba(t *testing.T, prov *proveedorFalso) *Handler {
	t.Helper()

	esActivo := true
	almacen := &almacenFalso{usuarios: map[string]perfil.Usuario{
		"ana@gep.com.mx":   {Nombre: "Ana", Apellido: "López", Email: "ana@gep.com.mx", Perfil: "Analista GEP", Activo: &esActivo},
		"admin@gep.com.mx": {Nombre: "Marco", Apellido: "Ruiz", Email: "admin@gep.com.mx", Perfil: "Administrador", Activo: &esActivo},
	}}

	sesiones := session.NewManager(prov, almacen, session.Config{
		TimeoutBootstrap: 200 * time.Millisecond,
		TimeoutPerfil:    100 * time.Millisecond,
		TimeoutSignOut:   100 * time.Millisecond,
	})
	t.Cleanup(sesiones.Cerrar)
	sesiones.Iniciar(context.Background())

	puerta := acceso.NuevaPuerta(sesiones)
	cancelar := sesiones.Observar(func(session.Sesion) { puerta.Reevaluar() })
	t.Cleanup(cancelar)

	return &Handler{sesiones: sesiones, puerta: puerta}
}

func decodificar(t *testing.T, rec *httptest.ResponseRecorder) sobreRespuesta {
	t.Helper()
	var sobre sobreRespuesta
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sobre))
	return sobre
}

func peticionJSON(metodo, ruta, cuerpo string) *http.Request {
	req := httptest.NewRequest(metodo, ruta, strings.NewReader(cuerpo))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestLoginExitoso(t *testing.T) {
	h := entornoPrueba(t, &proveedorFalso{})

	rec := httptest.NewRecorder()
	h.Login(rec, peticionJSON(http.MethodPost, "/auth/login", `{"email":"ana@gep.com.mx","contrasena":"secreta123"}`))

	require.Equal(t, http.StatusOK, rec.Code)

	var dto sesionDTO
	sobre := decodificar(t, rec)
	require.Nil(t, sobre.Error)
	require.NoError(t, json.Unmarshal(sobre.Data, &dto))
	require.True(t, dto.Autenticada)
	require.Equal(t, "Analista GEP", dto.Rol)
	require.Equal(t, "Ana", dto.Nombre)
}

func TestLoginNoRegistrado(t *testing.T) {
	h := entornoPrueba(t, &proveedorFalso{})

	rec := httptest.NewRecorder()
	h.Login(rec, peticionJSON(http.MethodPost, "/auth/login", `{"email":"nadie@gep.com.mx","contrasena":"secreta123"}`))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	sobre := decodificar(t, rec)
	require.Equal(t, "NOT_REGISTERED", sobre.Error.Code)
}

func TestLoginContrasenaIncorrecta(t *testing.T) {
	h := entornoPrueba(t, &proveedorFalso{signInErr: provider.ErrCredencialesInvalidas})

	rec := httptest.NewRecorder()
	h.Login(rec, peticionJSON(http.MethodPost, "/auth/login", `{"email":"ana@gep.com.mx","contrasena":"equivocada"}`))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	sobre := decodificar(t, rec)
	require.Equal(t, "WRONG_PASSWORD", sobre.Error.Code)
}

func TestLoginSinCampos(t *testing.T) {
	h := entornoPrueba(t, &proveedorFalso{})

	rec := httptest.NewRecorder()
	h.Login(rec, peticionJSON(http.MethodPost, "/auth/login", `{"email":"","contrasena":""}`))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	sobre := decodificar(t, rec)
	require.Equal(t, "VALIDATION", sobre.Error.Code)
}

func TestSesionAnonima(t *testing.T) {
	h := entornoPrueba(t, &proveedorFalso{})

	rec := httptest.NewRecorder()
	h.Sesion(rec, httptest.NewRequest(http.MethodGet, "/sesion", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var dto sesionDTO
	sobre := decodificar(t, rec)
	require.NoError(t, json.Unmarshal(sobre.Data, &dto))
	require.False(t, dto.Autenticada)
	require.Equal(t, "connected", dto.Estado)
}

func TestLogoutEsIdempotente(t *testing.T) {
	h := entornoPrueba(t, &proveedorFalso{})

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.Logout(rec, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestModulosDelAnalista(t *testing.T) {
	h := entornoPrueba(t, &proveedorFalso{})

	rec := httptest.NewRecorder()
	h.Login(rec, peticionJSON(http.MethodPost, "/auth/login", `{"email":"ana@gep.com.mx","contrasena":"secreta123"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.Modulos(rec, httptest.NewRequest(http.MethodGet, "/modulos", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var modulos []moduloDTO
	sobre := decodificar(t, rec)
	require.NoError(t, json.Unmarshal(sobre.Data, &modulos))
	require.Len(t, modulos, 6)
	for _, m := range modulos {
		require.NotEqual(t, "users", m.ID)
		require.NotEqual(t, "bots", m.ID)
	}
}

func TestNavegarDenegadoRedirigeConAviso(t *testing.T) {
	h := entornoPrueba(t, &proveedorFalso{})

	rec := httptest.NewRecorder()
	h.Login(rec, peticionJSON(http.MethodPost, "/auth/login", `{"email":"ana@gep.com.mx","contrasena":"secreta123"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.Navegar(rec, peticionJSON(http.MethodPost, "/navegacion", `{"modulo":"users"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	var dec acceso.Decision
	sobre := decodificar(t, rec)
	require.NoError(t, json.Unmarshal(sobre.Data, &dec))
	require.False(t, dec.Permitido)
	require.Equal(t, acceso.ModuloPorDefecto, dec.Modulo)
	require.Contains(t, dec.Aviso, "No tienes permisos")
}

func TestNavegarModuloDesconocido(t *testing.T) {
	h := entornoPrueba(t, &proveedorFalso{})

	rec := httptest.NewRecorder()
	h.Navegar(rec, peticionJSON(http.MethodPost, "/navegacion", `{"modulo":"reportes"}`))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	sobre := decodificar(t, rec)
	require.Equal(t, "UNKNOWN_MODULE", sobre.Error.Code)
}

func TestRequiereModuloBloqueaAnonimos(t *testing.T) {
	h := entornoPrueba(t, &proveedorFalso{})

	protegido := httpmiddleware.RequiereModulo(h.sesiones, acceso.ModuloUsuarios)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	)

	rec := httptest.NewRecorder()
	protegido.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/usuarios", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequiereModuloBloqueaRolSinPermiso(t *testing.T) {
	h := entornoPrueba(t, &proveedorFalso{})

	rec := httptest.NewRecorder()
	h.Login(rec, peticionJSON(http.MethodPost, "/auth/login", `{"email":"ana@gep.com.mx","contrasena":"secreta123"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	protegido := httpmiddleware.RequiereModulo(h.sesiones, acceso.ModuloUsuarios)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	)

	rec = httptest.NewRecorder()
	protegido.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/usuarios", nil))
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	h.Login(rec, peticionJSON(http.MethodPost, "/auth/login", `{"email":"admin@gep.com.mx","contrasena":"secreta123"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	protegido.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/usuarios", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}
