package http

import (
	"net/http"
	"time"
)

// GET /health (unauthenticated liveness probe)
func HealthHandler(start time.Time, environment, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":      "healthy",
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
			"uptime":      time.Since(start).Seconds(),
			"environment": environment,
			"version":     version,
		})
	}
}

// GET / (service descriptor)
func RootHandler(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"name":        "DocForge API",
			"version":     version,
			"description": "API for generating DOCX and HTML documents from templates",
			"endpoints": map[string]string{
				"health":             "/health",
				"generateDocx":       "/api/generate-docx",
				"generateExercise":   "/api/generate-exercise",
				"templates":          "/api/templates",
				"exerciseTemplate":   "/api/exercise-template",
				"validateExercise":   "/api/validate-exercise",
				"exerciseCategories": "/api/exercise-categories",
				"exerciseTopics":     "/api/exercise-topics",
				"supportedLanguages": "/api/supported-languages",
				"exerciseStats":      "/api/exercise-stats",
				"searchExercises":    "/api/search-exercises",
			},
		})
	}
}

// NotFoundHandler keeps unknown routes on the JSON envelope.
func NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Endpoint not found", "NOT_FOUND",
			"The requested endpoint "+r.URL.Path+" does not exist")
	}
}
