// Package http expone la superficie REST de la consola: autenticación,
// navegación entre módulos y los catálogos administrativos.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/gepdigital/consola/internal/acceso"
	"github.com/gepdigital/consola/internal/catalogo"
	"github.com/gepdigital/consola/internal/config"
	"github.com/gepdigital/consola/internal/documentos"
	httpmiddleware "github.com/gepdigital/consola/internal/http/middleware"
	"github.com/gepdigital/consola/internal/panel"
	"github.com/gepdigital/consola/internal/perfil"
	"github.com/gepdigital/consola/internal/session"
)

type Handler struct {
	cfg           *config.Config
	pool          *pgxpool.Pool
	redis         *redis.Client
	sesiones      *session.Manager
	puerta        *acceso.Puerta
	usuarios      *perfil.Service
	empresas      *catalogo.Empresas
	clientes      *catalogo.Clientes
	temas         *catalogo.Temas
	documentos    *documentos.Repository
	panel         *panel.Service
	publicLimiter *httpmiddleware.RateLimiter
	authLimiter   *httpmiddleware.RateLimiter
}

// NewRouter devuelve el enrutador configurado.
func NewRouter(
	cfg *config.Config,
	pool *pgxpool.Pool,
	redisClient *redis.Client,
	sesiones *session.Manager,
	puerta *acceso.Puerta,
	usuarios *perfil.Service,
	registro *prometheus.Registry,
) http.Handler {
	empresas := catalogo.NewEmpresas(pool)
	clientes := catalogo.NewClientes(pool)
	temas := catalogo.NewTemas(pool)
	docs := documentos.NewRepository(pool)
	tablero := panel.NewService(docs, clientes, empresas, temas)

	h := &Handler{
		cfg:           cfg,
		pool:          pool,
		redis:         redisClient,
		sesiones:      sesiones,
		puerta:        puerta,
		usuarios:      usuarios,
		empresas:      empresas,
		clientes:      clientes,
		temas:         temas,
		documentos:    docs,
		panel:         tablero,
		publicLimiter: httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst),
		authLimiter:   httpmiddleware.NewRateLimiter(cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst),
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))

	r.Group(func(public chi.Router) {
		public.Use(httpmiddleware.IPRateLimit(h.publicLimiter))

		public.Get("/health", h.Health)
		public.Get("/ready", h.Ready)
		public.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registro, promhttp.HandlerOpts{}))
	})

	r.Group(func(auth chi.Router) {
		auth.Use(httpmiddleware.IPRateLimit(h.authLimiter))

		auth.Post("/auth/login", h.Login)
		auth.Post("/auth/logout", h.Logout)
		auth.Get("/sesion", h.Sesion)
	})

	r.Group(func(private chi.Router) {
		private.Use(httpmiddleware.RequiereSesion(sesiones))

		private.Get("/modulos", h.Modulos)
		private.Route("/navegacion", func(nav chi.Router) {
			nav.Get("/", h.NavegacionEstado)
			nav.Post("/", h.Navegar)
		})

		private.Group(func(g chi.Router) {
			g.Use(httpmiddleware.RequiereModulo(sesiones, acceso.ModuloDashboard))
			g.Get("/dashboard/resumen", h.DashboardResumen)
		})

		private.Group(func(g chi.Router) {
			g.Use(httpmiddleware.RequiereModulo(sesiones, acceso.ModuloDocumentos))
			g.Route("/documentos", func(d chi.Router) {
				d.Get("/", h.ListDocumentos)
				d.Get("/{id}", h.GetDocumento)
				d.Put("/{id}", h.UpdateDocumento)
				d.Delete("/{id}", h.DeleteDocumento)
			})
		})

		private.Group(func(g chi.Router) {
			g.Use(httpmiddleware.RequiereModulo(sesiones, acceso.ModuloClientes))
			g.Route("/clientes", func(c chi.Router) {
				c.Get("/", h.ListClientes)
				c.Post("/", h.CreateCliente)
				c.Get("/{id}", h.GetCliente)
				c.Put("/{id}", h.UpdateCliente)
				c.Delete("/{id}", h.DeleteCliente)
			})
		})

		private.Group(func(g chi.Router) {
			g.Use(httpmiddleware.RequiereModulo(sesiones, acceso.ModuloEmpresas))
			g.Route("/empresas", func(e chi.Router) {
				e.Get("/", h.ListEmpresas)
				e.Post("/", h.CreateEmpresa)
				e.Get("/{id}", h.GetEmpresa)
				e.Put("/{id}", h.UpdateEmpresa)
				e.Delete("/{id}", h.DeleteEmpresa)
			})
		})

		private.Group(func(g chi.Router) {
			g.Use(httpmiddleware.RequiereModulo(sesiones, acceso.ModuloTemas))
			g.Route("/temas", func(t chi.Router) {
				t.Get("/", h.ListTemas)
				t.Post("/", h.CreateTema)
				t.Put("/{id}", h.UpdateTema)
				t.Delete("/{id}", h.DeleteTema)
				t.Get("/{id}/subtemas", h.ListSubtemas)
				t.Post("/{id}/subtemas", h.CreateSubtema)
			})
			g.Delete("/subtemas/{id}", h.DeleteSubtema)
		})

		private.Group(func(g chi.Router) {
			g.Use(httpmiddleware.RequiereModulo(sesiones, acceso.ModuloUsuarios))
			g.Route("/usuarios", func(u chi.Router) {
				u.Get("/", h.ListUsuarios)
				u.Post("/", h.CreateUsuario)
				u.Put("/{id}", h.UpdateUsuario)
				u.Delete("/{id}", h.DeleteUsuario)
			})
		})
	})

	return r
}

// Health responde un status simple.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready valida las conexiones con Postgres y Redis.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	dbErr := h.pool.Ping(ctx)
	redisErr := h.redis.Ping(ctx).Err()

	if dbErr != nil || redisErr != nil {
		WriteError(w, http.StatusServiceUnavailable, "INTERNAL", "dependencias no disponibles", map[string]any{
			"db":    errorString(dbErr),
			"redis": errorString(redisErr),
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"ready": true})
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
