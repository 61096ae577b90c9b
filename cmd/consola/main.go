package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gepdigital/consola/internal/acceso"
	"github.com/gepdigital/consola/internal/config"
	"github.com/gepdigital/consola/internal/db"
	internalhttp "github.com/gepdigital/consola/internal/http"
	"github.com/gepdigital/consola/internal/metrics"
	"github.com/gepdigital/consola/internal/perfil"
	"github.com/gepdigital/consola/internal/provider"
	"github.com/gepdigital/consola/internal/session"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("consola terminada con error")
	}
}

func run() error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx := context.Background()

	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer pool.Close()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis parse: %w", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	proveedor, err := provider.Nuevo(provider.Config{
		URL:        cfg.ProviderURL,
		AnonKey:    cfg.ProviderAnonKey,
		ServiceKey: cfg.ProviderServiceKey,
		Redis:      redisClient,
	})
	if err != nil {
		return fmt.Errorf("provider: %w", err)
	}
	defer proveedor.Cerrar()

	perfiles := perfil.NewRepository(pool)
	usuarios := perfil.NewService(perfiles, proveedor)

	sesiones := session.NewManager(proveedor, perfiles, session.Config{
		TimeoutBootstrap: cfg.TimeoutBootstrap,
		TimeoutPerfil:    cfg.TimeoutPerfil,
		TimeoutSignOut:   cfg.TimeoutSignOut,
	})
	defer sesiones.Cerrar()

	puerta := acceso.NuevaPuerta(sesiones)
	cancelarObs := sesiones.Observar(func(session.Sesion) {
		puerta.Reevaluar()
	})
	defer cancelarObs()

	go sesiones.Iniciar(ctx)

	registro := prometheus.NewRegistry()
	metrics.RegisterCollectors(registro)

	handler := internalhttp.NewRouter(cfg, pool, redisClient, sesiones, puerta, usuarios, registro)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("consola escuchando en :%d", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("cerrando...")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
