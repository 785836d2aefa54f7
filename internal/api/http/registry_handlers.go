package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/docforge/docforge/internal/exercise"
	"github.com/docforge/docforge/internal/registry"
	"github.com/docforge/docforge/internal/render"
)

// GET /api/exercise-categories
func ListCategoriesHandler(repo registry.Repo, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cats, err := repo.Categories(r.Context())
		if err != nil {
			log.Error("category list failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Could not list categories", "STORE_ERROR", nil)
			return
		}
		writeData(w, http.StatusOK, map[string]interface{}{
			"categories": cats,
			"count":      len(cats),
		})
	}
}

// POST /api/exercise-categories
func CreateCategoryHandler(repo registry.Repo, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "Request body must be valid JSON", "BAD_REQUEST", nil)
			return
		}
		var ferrs []exercise.FieldError
		if n := len(strings.TrimSpace(in.Name)); n < 3 || n > 100 {
			ferrs = append(ferrs, exercise.FieldError{Field: "name", Message: "name must be 3-100 characters"})
		}
		if n := len(strings.TrimSpace(in.Description)); n < 10 || n > 500 {
			ferrs = append(ferrs, exercise.FieldError{Field: "description", Message: "description must be 10-500 characters"})
		}
		if ferrs != nil {
			writeError(w, http.StatusBadRequest, "Validation error", "VALIDATION_ERROR", ferrs)
			return
		}
		cat, err := repo.CreateCategory(r.Context(), registry.Category{
			Name:        strings.TrimSpace(in.Name),
			Description: strings.TrimSpace(in.Description),
		})
		if err != nil {
			log.Error("category create failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Could not create category", "STORE_ERROR", nil)
			return
		}
		log.Info("category created", zap.Int("id", cat.ID), zap.String("name", cat.Name))
		writeData(w, http.StatusCreated, cat)
	}
}

// GET /api/exercise-topics?categoryId=&language=
func ListTopicsHandler(repo registry.Repo, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f := registry.TopicFilter{Language: r.URL.Query().Get("language")}
		if v := r.URL.Query().Get("categoryId"); v != "" {
			id, err := strconv.Atoi(v)
			if err != nil {
				writeError(w, http.StatusBadRequest, "categoryId must be an integer", "BAD_REQUEST", nil)
				return
			}
			f.CategoryID = id
		}
		topics, err := repo.Topics(r.Context(), f)
		if err != nil {
			log.Error("topic list failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Could not list topics", "STORE_ERROR", nil)
			return
		}
		writeData(w, http.StatusOK, map[string]interface{}{
			"topics": topics,
			"count":  len(topics),
			"filters": map[string]string{
				"categoryId": r.URL.Query().Get("categoryId"),
				"language":   f.Language,
			},
		})
	}
}

// POST /api/exercise-topics
func CreateTopicHandler(repo registry.Repo, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			CategoryID int      `json:"categoryId"`
			Name       string   `json:"name"`
			Languages  []string `json:"languages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "Request body must be valid JSON", "BAD_REQUEST", nil)
			return
		}
		var ferrs []exercise.FieldError
		if in.CategoryID < 1 {
			ferrs = append(ferrs, exercise.FieldError{Field: "categoryId", Message: "categoryId is required"})
		}
		if n := len(strings.TrimSpace(in.Name)); n < 3 || n > 100 {
			ferrs = append(ferrs, exercise.FieldError{Field: "name", Message: "name must be 3-100 characters"})
		}
		if len(in.Languages) == 0 {
			ferrs = append(ferrs, exercise.FieldError{Field: "languages", Message: "at least one language is required"})
		}
		if ferrs != nil {
			writeError(w, http.StatusBadRequest, "Validation error", "VALIDATION_ERROR", ferrs)
			return
		}
		topic, err := repo.CreateTopic(r.Context(), registry.Topic{
			CategoryID: in.CategoryID,
			Name:       strings.TrimSpace(in.Name),
			Languages:  in.Languages,
		})
		if err != nil {
			if errors.Is(err, registry.ErrCategoryNotFound) {
				writeError(w, http.StatusBadRequest, "Invalid category ID", "VALIDATION_ERROR",
					"Category does not exist")
				return
			}
			log.Error("topic create failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Could not create topic", "STORE_ERROR", nil)
			return
		}
		log.Info("topic created", zap.Int("id", topic.ID), zap.String("name", topic.Name))
		writeData(w, http.StatusCreated, topic)
	}
}

// GET /api/supported-languages
func SupportedLanguagesHandler() http.HandlerFunc {
	type languageInfo struct {
		Code      string `json:"code"`
		Name      string `json:"name"`
		Extension string `json:"extension"`
	}
	type themeInfo struct {
		Code string `json:"code"`
		URL  string `json:"url"`
	}
	type difficultyInfo struct {
		Code        string `json:"code"`
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		langs := make([]languageInfo, 0, len(exercise.SupportedLanguages))
		for _, code := range exercise.SupportedLanguages {
			langs = append(langs, languageInfo{
				Code:      code,
				Name:      exercise.LanguageDisplayName(code),
				Extension: exercise.LanguageExtension(code),
			})
		}
		themeList := make([]themeInfo, 0)
		for _, code := range render.ThemeNames() {
			themeList = append(themeList, themeInfo{Code: code, URL: render.ThemeURL(code)})
		}
		diffs := make([]difficultyInfo, 0, len(exercise.Difficulties))
		for _, d := range exercise.Difficulties {
			diffs = append(diffs, difficultyInfo{Code: d, Name: d, Description: exercise.DifficultyDescription(d)})
		}
		writeData(w, http.StatusOK, map[string]interface{}{
			"languages":    langs,
			"themes":       themeList,
			"difficulties": diffs,
		})
	}
}

// GET /api/exercise-stats
func ExerciseStatsHandler(repo registry.Repo, log *zap.Logger) http.HandlerFunc {
	type categoryStat struct {
		ID         int    `json:"id"`
		Name       string `json:"name"`
		TopicCount int    `json:"topicCount"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		cats, err := repo.Categories(r.Context())
		if err == nil {
			var topics []registry.Topic
			topics, err = repo.Topics(r.Context(), registry.TopicFilter{})
			if err == nil {
				catStats := make([]categoryStat, 0, len(cats))
				for _, c := range cats {
					n := 0
					for _, t := range topics {
						if t.CategoryID == c.ID {
							n++
						}
					}
					catStats = append(catStats, categoryStat{ID: c.ID, Name: c.Name, TopicCount: n})
				}
				writeData(w, http.StatusOK, map[string]interface{}{
					"categories": map[string]interface{}{"total": len(cats), "list": catStats},
					"topics": map[string]interface{}{
						"total":      len(topics),
						"byLanguage": registry.TopicsByLanguage(topics),
					},
					"languages": map[string]interface{}{
						"supported": len(exercise.SupportedLanguages),
						"mostUsed":  registry.MostUsedLanguages(topics, 5),
					},
				})
				return
			}
		}
		log.Error("stats failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Could not compute stats", "STORE_ERROR", nil)
	}
}

// GET /api/search-exercises?q=&category=&language=
func SearchExercisesHandler(repo registry.Repo, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		f := registry.TopicFilter{
			Language: q.Get("language"),
			Query:    q.Get("q"),
		}
		if v := q.Get("category"); v != "" {
			id, err := strconv.Atoi(v)
			if err != nil {
				writeError(w, http.StatusBadRequest, "category must be an integer", "BAD_REQUEST", nil)
				return
			}
			f.CategoryID = id
		}
		results, err := repo.Topics(r.Context(), f)
		if err != nil {
			log.Error("search failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Search failed", "STORE_ERROR", nil)
			return
		}
		writeData(w, http.StatusOK, map[string]interface{}{
			"results": results,
			"count":   len(results),
			"query": map[string]string{
				"q": f.Query, "category": q.Get("category"), "language": f.Language,
			},
		})
	}
}
