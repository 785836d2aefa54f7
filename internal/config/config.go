package config

import (
	"os"
	"strings"
)

type Config struct {
	HTTPAddr    string
	Environment string
	Version     string

	// Shared secret for /api/* routes. APIKeyHash (bcrypt) wins over the
	// plaintext key when both are set.
	APIKey     string
	APIKeyHash string

	TemplatesDir    string
	MaxTemplateSize int64 // bytes

	// Registry backend: memory|sqlite|postgres
	RegistryDriver string
	RegistryDSN    string

	DefaultLanguage string
	DefaultTheme    string

	CORSOrigins []string
}

const DefaultMaxTemplateSize = 5 << 20

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		HTTPAddr:        addr,
		Environment:     envOr("ENVIRONMENT", "development"),
		Version:         envOr("VERSION", "1.0.0"),
		APIKey:          os.Getenv("API_KEY"),
		APIKeyHash:      os.Getenv("API_KEY_HASH"),
		TemplatesDir:    envOr("TEMPLATES_DIR", "./templates"),
		MaxTemplateSize: envInt64("MAX_TEMPLATE_SIZE", DefaultMaxTemplateSize),
		RegistryDriver:  envOr("REGISTRY_DRIVER", "memory"),
		RegistryDSN:     os.Getenv("REGISTRY_DSN"),
		DefaultLanguage: envOr("DEFAULT_LANGUAGE", "python"),
		DefaultTheme:    envOr("DEFAULT_THEME", "github"),
		CORSOrigins:     csvOr("CORS_ORIGINS", "*"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envInt64(k string, def int64) int64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	var n int64
	for _, c := range v {
		if c < '0' || c > '9' {
			return def
		}
		n = n*10 + int64(c-'0')
	}
	return n
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
