package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config centraliza la configuración cargada del ambiente.
type Config struct {
	Port               int
	ProviderURL        string
	ProviderAnonKey    string
	ProviderServiceKey string
	DBDSN              string
	RedisURL           string
	AllowOrigins       []string
	TimeoutBootstrap   time.Duration
	TimeoutPerfil      time.Duration
	TimeoutSignOut     time.Duration
	RateLimitPublic    RateLimitConfig
	RateLimitAuth      RateLimitConfig
}

// RateLimitConfig representa límites simples de throttling.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// Load carga variables de ambiente y aplica defaults seguros.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 {
		return nil, errors.New("PORT inválido")
	}
	cfg.Port = port

	cfg.ProviderURL = strings.TrimRight(strings.TrimSpace(getEnv("PROVIDER_URL", "")), "/")
	if cfg.ProviderURL == "" {
		return nil, errors.New("PROVIDER_URL obligatorio")
	}

	cfg.ProviderAnonKey = strings.TrimSpace(getEnv("PROVIDER_ANON_KEY", ""))
	if cfg.ProviderAnonKey == "" {
		return nil, errors.New("PROVIDER_ANON_KEY obligatoria")
	}

	// Sin service key la gestión de usuarios queda deshabilitada.
	cfg.ProviderServiceKey = strings.TrimSpace(getEnv("PROVIDER_SERVICE_KEY", ""))

	cfg.DBDSN = getEnv("DB_DSN", "")
	if cfg.DBDSN == "" {
		return nil, errors.New("DB_DSN obligatorio")
	}

	cfg.RedisURL = getEnv("REDIS_URL", "")
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL obligatorio")
	}

	timeoutBootstrap, err := parseDurationEnv("TIMEOUT_BOOTSTRAP", 15*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.TimeoutBootstrap = timeoutBootstrap

	timeoutPerfil, err := parseDurationEnv("TIMEOUT_PERFIL", 5*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.TimeoutPerfil = timeoutPerfil

	timeoutSignOut, err := parseDurationEnv("TIMEOUT_SIGNOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.TimeoutSignOut = timeoutSignOut

	allowOrigins := strings.Split(getEnv("ALLOW_ORIGINS", ""), ",")
	cfg.AllowOrigins = nil
	for _, origin := range allowOrigins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
		}
	}

	cfg.RateLimitPublic = RateLimitConfig{RequestsPerSecond: 10, Burst: 20}
	cfg.RateLimitAuth = RateLimitConfig{RequestsPerSecond: 10, Burst: 40}

	return cfg, nil
}

func getEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	val := getEnv(key, "")
	if val == "" {
		return def, nil
	}
	dur, err := time.ParseDuration(val)
	if err != nil {
		return 0, errors.New(key + " inválido")
	}
	return dur, nil
}
