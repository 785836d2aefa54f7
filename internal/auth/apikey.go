package auth

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrMissingKey    = errors.New("api key required")
	ErrInvalidKey    = errors.New("invalid api key")
	ErrNotConfigured = errors.New("api key not configured")
)

// Service checks caller-supplied API keys against the single
// server-configured secret. When a bcrypt hash is configured the plaintext
// secret never has to live in the environment.
type Service struct {
	key     string
	keyHash []byte
	log     *zap.Logger
}

func NewService(key, keyHash string, log *zap.Logger) *Service {
	return &Service{key: key, keyHash: []byte(keyHash), log: log}
}

func (s *Service) Verify(candidate string) error {
	if candidate == "" {
		return ErrMissingKey
	}
	if len(s.keyHash) > 0 {
		if bcrypt.CompareHashAndPassword(s.keyHash, []byte(candidate)) != nil {
			return ErrInvalidKey
		}
		return nil
	}
	if s.key == "" {
		return ErrNotConfigured
	}
	if subtle.ConstantTimeCompare([]byte(s.key), []byte(candidate)) != 1 {
		return ErrInvalidKey
	}
	return nil
}

// KeyFromRequest reads the key from X-API-Key, falling back to a bearer
// token.
func KeyFromRequest(r *http.Request) string {
	if k := r.Header.Get("X-API-Key"); k != "" {
		return k
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

// Middleware guards the /api/* routes. Failures get the standard error
// envelope with a machine-readable code.
func Middleware(s *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			err := s.Verify(KeyFromRequest(r))
			switch {
			case err == nil:
				next.ServeHTTP(w, r)
			case errors.Is(err, ErrMissingKey):
				s.log.Warn("api key missing", zap.String("path", r.URL.Path), zap.String("ip", r.RemoteAddr))
				writeAuthError(w, http.StatusUnauthorized, "API key required", "MISSING_API_KEY",
					"Provide a valid API key in the X-API-Key header or as a bearer token")
			case errors.Is(err, ErrNotConfigured):
				s.log.Error("API_KEY not configured")
				writeAuthError(w, http.StatusInternalServerError, "Server configuration error", "SERVER_CONFIG_ERROR", "")
			default:
				s.log.Warn("invalid api key", zap.String("path", r.URL.Path), zap.String("ip", r.RemoteAddr))
				writeAuthError(w, http.StatusUnauthorized, "Invalid API key", "INVALID_API_KEY", "")
			}
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, msg, code, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]interface{}{
		"success": false,
		"error": map[string]interface{}{
			"message": msg,
			"code":    code,
		},
	}
	if details != "" {
		body["error"].(map[string]interface{})["details"] = details
	}
	_ = json.NewEncoder(w).Encode(body)
}
