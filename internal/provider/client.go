package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/gepdigital/consola/internal/metrics"
)

const (
	claveSesion = "consola:sesion"
	canalAuth   = "consola:auth"

	// margenRenovacion es cuánto antes de la expiración se renueva el token.
	margenRenovacion = 30 * time.Second
)

// Config describe las credenciales del proveedor.
type Config struct {
	URL        string
	AnonKey    string
	ServiceKey string
	Redis      *redis.Client
}

// Cliente habla con el proveedor externo y mantiene la sesión persistida en
// Redis, de modo que un reinicio de la consola restaure la sesión vigente y
// otras instancias reciban los cambios de autenticación por pub/sub.
type Cliente struct {
	httpClient *http.Client
	baseURL    string
	anonKey    string
	serviceKey string
	redis      *redis.Client
	origen     string

	mu        sync.Mutex
	subs      map[int]func(CambioAuth)
	siguiente int
	timer     *time.Timer
	cerrado   bool

	cancelarEscucha context.CancelFunc
}

// Nuevo crea el cliente y arranca la escucha de eventos entre instancias.
func Nuevo(cfg Config) (*Cliente, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("provider: URL obligatoria")
	}
	if strings.TrimSpace(cfg.AnonKey) == "" {
		return nil, errors.New("provider: anon key obligatoria")
	}
	if cfg.Redis == nil {
		return nil, errors.New("provider: cliente redis obligatorio")
	}

	ctx, cancelar := context.WithCancel(context.Background())
	c := &Cliente{
		httpClient:      &http.Client{Timeout: 15 * time.Second},
		baseURL:         strings.TrimRight(strings.TrimSpace(cfg.URL), "/"),
		anonKey:         cfg.AnonKey,
		serviceKey:      cfg.ServiceKey,
		redis:           cfg.Redis,
		origen:          uuid.NewString(),
		subs:            make(map[int]func(CambioAuth)),
		cancelarEscucha: cancelar,
	}

	go c.escucharRelevo(ctx)

	return c, nil
}

// Cerrar detiene la renovación pendiente y la escucha de eventos.
func (c *Cliente) Cerrar() {
	c.mu.Lock()
	c.cerrado = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()
	c.cancelarEscucha()
}

// GetSession restaura la sesión persistida. Devuelve (nil, nil) cuando no
// hay sesión guardada o el proveedor la rechazó; error sólo ante fallas de
// conectividad, que el arranque de la consola trata como fatales.
func (c *Cliente) GetSession(ctx context.Context) (*Identidad, error) {
	raw, err := c.redis.Get(ctx, claveSesion).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("provider: leer sesión persistida: %w", err)
	}

	var ident Identidad
	if err := json.Unmarshal(raw, &ident); err != nil {
		log.Warn().Err(err).Msg("sesión persistida corrupta, descartando")
		_ = c.redis.Del(ctx, claveSesion).Err()
		return nil, nil
	}

	if time.Until(ident.ExpiraEn) > margenRenovacion {
		c.programarRenovacion(&ident)
		return &ident, nil
	}

	renovada, err := c.renovar(ctx, ident.RefreshToken)
	if err != nil {
		if errors.Is(err, ErrSinSesion) {
			_ = c.redis.Del(ctx, claveSesion).Err()
			return nil, nil
		}
		return nil, err
	}
	return renovada, nil
}

// SignInWithPassword autentica con email y contraseña.
func (c *Cliente) SignInWithPassword(ctx context.Context, email, contrasena string) (*Identidad, error) {
	body := map[string]string{"email": strings.TrimSpace(email), "password": contrasena}

	var resp respuestaToken
	status, err := c.hacer(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", c.anonKey, body, &resp)
	if err != nil {
		metrics.ProveedorLlamadas.WithLabelValues("sign_in", "error").Inc()
		return nil, fmt.Errorf("provider: autenticación: %w", err)
	}
	if status != http.StatusOK {
		if resp.esCredencialesInvalidas() {
			metrics.ProveedorLlamadas.WithLabelValues("sign_in", "rechazado").Inc()
			return nil, ErrCredencialesInvalidas
		}
		metrics.ProveedorLlamadas.WithLabelValues("sign_in", "error").Inc()
		return nil, fmt.Errorf("provider: autenticación: %s", resp.mensaje(status))
	}
	metrics.ProveedorLlamadas.WithLabelValues("sign_in", "ok").Inc()

	ident := resp.identidad()
	if err := c.guardar(ctx, ident); err != nil {
		log.Warn().Err(err).Msg("no se pudo persistir la sesión")
	}
	c.programarRenovacion(ident)
	c.difundir(ctx, CambioAuth{Evento: EventoSignedIn, Identidad: ident})

	return ident, nil
}

// SignOut cierra la sesión en el proveedor y descarta la copia persistida.
// La limpieza local ocurre aunque el proveedor falle.
func (c *Cliente) SignOut(ctx context.Context) error {
	var bearer string
	if raw, err := c.redis.Get(ctx, claveSesion).Bytes(); err == nil {
		var ident Identidad
		if json.Unmarshal(raw, &ident) == nil {
			bearer = ident.AccessToken
		}
	}

	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()

	_ = c.redis.Del(ctx, claveSesion).Err()
	c.difundir(ctx, CambioAuth{Evento: EventoSignedOut})

	if bearer == "" {
		return nil
	}

	status, err := c.hacer(ctx, http.MethodPost, "/auth/v1/logout", bearer, nil, nil)
	if err != nil {
		metrics.ProveedorLlamadas.WithLabelValues("sign_out", "error").Inc()
		return fmt.Errorf("provider: cierre de sesión: %w", err)
	}
	if status >= http.StatusInternalServerError {
		metrics.ProveedorLlamadas.WithLabelValues("sign_out", "error").Inc()
		return fmt.Errorf("provider: cierre de sesión: status %d", status)
	}
	metrics.ProveedorLlamadas.WithLabelValues("sign_out", "ok").Inc()
	return nil
}

// OnAuthStateChange registra un suscriptor y devuelve su cancelación.
// Recibe tanto los eventos locales como los relevados de otras instancias.
func (c *Cliente) OnAuthStateChange(fn func(CambioAuth)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.siguiente
	c.siguiente++
	c.subs[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

// CrearUsuario da de alta una cuenta en el proveedor (operación privilegiada).
func (c *Cliente) CrearUsuario(ctx context.Context, email, contrasena string) (string, error) {
	if strings.TrimSpace(c.serviceKey) == "" {
		return "", errors.New("provider: service key no configurada")
	}

	body := map[string]any{
		"email":         strings.ToLower(strings.TrimSpace(email)),
		"password":      contrasena,
		"email_confirm": true,
	}

	var resp struct {
		ID string `json:"id"`
		respuestaError
	}
	status, err := c.hacerAdmin(ctx, http.MethodPost, "/auth/v1/admin/users", body, &resp)
	if err != nil {
		return "", fmt.Errorf("provider: crear usuario: %w", err)
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return "", fmt.Errorf("provider: crear usuario: %s", resp.mensaje(status))
	}
	return resp.ID, nil
}

// EliminarUsuario borra la cuenta del proveedor (operación privilegiada).
func (c *Cliente) EliminarUsuario(ctx context.Context, id string) error {
	if strings.TrimSpace(c.serviceKey) == "" {
		return errors.New("provider: service key no configurada")
	}

	var resp respuestaError
	status, err := c.hacerAdmin(ctx, http.MethodDelete, "/auth/v1/admin/users/"+id, nil, &resp)
	if err != nil {
		return fmt.Errorf("provider: eliminar usuario: %w", err)
	}
	if status != http.StatusOK && status != http.StatusNoContent && status != http.StatusNotFound {
		return fmt.Errorf("provider: eliminar usuario: %s", resp.mensaje(status))
	}
	return nil
}

func (c *Cliente) renovar(ctx context.Context, refreshToken string) (*Identidad, error) {
	if refreshToken == "" {
		return nil, ErrSinSesion
	}

	body := map[string]string{"refresh_token": refreshToken}

	var resp respuestaToken
	status, err := c.hacer(ctx, http.MethodPost, "/auth/v1/token?grant_type=refresh_token", c.anonKey, body, &resp)
	if err != nil {
		metrics.ProveedorLlamadas.WithLabelValues("refresh", "error").Inc()
		return nil, fmt.Errorf("provider: renovación: %w", err)
	}
	if status != http.StatusOK {
		metrics.ProveedorLlamadas.WithLabelValues("refresh", "rechazado").Inc()
		return nil, ErrSinSesion
	}
	metrics.ProveedorLlamadas.WithLabelValues("refresh", "ok").Inc()

	ident := resp.identidad()
	if err := c.guardar(ctx, ident); err != nil {
		log.Warn().Err(err).Msg("no se pudo persistir la sesión renovada")
	}
	c.programarRenovacion(ident)
	return ident, nil
}

// programarRenovacion agenda la próxima renovación un margen antes de expirar.
func (c *Cliente) programarRenovacion(ident *Identidad) {
	espera := time.Until(ident.ExpiraEn) - margenRenovacion
	if espera < time.Second {
		espera = time.Second
	}

	refresh := ident.RefreshToken

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cerrado {
		return
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(espera, func() {
		ctx, cancelar := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelar()

		renovada, err := c.renovar(ctx, refresh)
		if err != nil {
			log.Warn().Err(err).Msg("renovación de token fallida, cerrando sesión local")
			_ = c.redis.Del(ctx, claveSesion).Err()
			c.difundir(ctx, CambioAuth{Evento: EventoSignedOut})
			return
		}
		c.difundir(ctx, CambioAuth{Evento: EventoTokenRenovado, Identidad: renovada})
	})
}

func (c *Cliente) guardar(ctx context.Context, ident *Identidad) error {
	raw, err := json.Marshal(ident)
	if err != nil {
		return err
	}
	return c.redis.Set(ctx, claveSesion, raw, 0).Err()
}

type sobreEvento struct {
	Origen string     `json:"origen"`
	Cambio CambioAuth `json:"cambio"`
}

// difundir entrega el cambio a los suscriptores locales y lo releva por
// pub/sub para que otras instancias de la consola lo reciban.
func (c *Cliente) difundir(ctx context.Context, cambio CambioAuth) {
	c.emitir(cambio)

	raw, err := json.Marshal(sobreEvento{Origen: c.origen, Cambio: cambio})
	if err != nil {
		return
	}
	if err := c.redis.Publish(ctx, canalAuth, raw).Err(); err != nil {
		log.Warn().Err(err).Msg("no se pudo relevar el evento de autenticación")
	}
}

func (c *Cliente) emitir(cambio CambioAuth) {
	c.mu.Lock()
	fns := make([]func(CambioAuth), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(cambio)
	}
}

func (c *Cliente) escucharRelevo(ctx context.Context) {
	pubsub := c.redis.Subscribe(ctx, canalAuth)
	defer pubsub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-pubsub.Channel():
			if !ok {
				return
			}
			var sobre sobreEvento
			if err := json.Unmarshal([]byte(msg.Payload), &sobre); err != nil {
				log.Warn().Err(err).Msg("evento de autenticación ilegible")
				continue
			}
			if sobre.Origen == c.origen {
				continue
			}
			c.emitir(sobre.Cambio)
		}
	}
}

type respuestaToken struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	User         struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
	respuestaError
}

type respuestaError struct {
	Codigo      string `json:"error"`
	Descripcion string `json:"error_description"`
	Msg         string `json:"msg"`
}

func (r respuestaError) esCredencialesInvalidas() bool {
	if r.Codigo == "invalid_grant" || r.Codigo == "invalid_credentials" {
		return true
	}
	texto := r.Descripcion + " " + r.Msg
	return strings.Contains(texto, "Invalid login credentials") ||
		strings.Contains(texto, "invalid_credentials")
}

func (r respuestaError) mensaje(status int) string {
	for _, s := range []string{r.Descripcion, r.Msg, r.Codigo} {
		if s != "" {
			return s
		}
	}
	return fmt.Sprintf("status %d", status)
}

// identidad arma la copia local, prefiriendo la expiración de los claims.
func (r respuestaToken) identidad() *Identidad {
	ident := &Identidad{
		ID:           r.User.ID,
		Email:        strings.ToLower(r.User.Email),
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		ExpiraEn:     time.Now().Add(time.Duration(r.ExpiresIn) * time.Second),
	}
	if sub, email, expira, err := leerToken(r.AccessToken); err == nil {
		if ident.ID == "" {
			ident.ID = sub
		}
		if ident.Email == "" {
			ident.Email = strings.ToLower(email)
		}
		ident.ExpiraEn = expira
	}
	return ident
}

func (c *Cliente) hacer(ctx context.Context, metodo, ruta, bearer string, cuerpo, salida any) (int, error) {
	return c.solicitar(ctx, metodo, ruta, bearer, cuerpo, salida)
}

func (c *Cliente) hacerAdmin(ctx context.Context, metodo, ruta string, cuerpo, salida any) (int, error) {
	return c.solicitar(ctx, metodo, ruta, c.serviceKey, cuerpo, salida)
}

func (c *Cliente) solicitar(ctx context.Context, metodo, ruta, bearer string, cuerpo, salida any) (int, error) {
	var lector *bytes.Buffer
	if cuerpo != nil {
		raw, err := json.Marshal(cuerpo)
		if err != nil {
			return 0, err
		}
		lector = bytes.NewBuffer(raw)
	} else {
		lector = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, metodo, c.baseURL+ruta, lector)
	if err != nil {
		return 0, err
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if salida != nil {
		_ = json.NewDecoder(resp.Body).Decode(salida)
	}
	return resp.StatusCode, nil
}
