package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	api "github.com/docforge/docforge/internal/api/http"
	"github.com/docforge/docforge/internal/registry"
	"github.com/docforge/docforge/internal/render"
	"github.com/docforge/docforge/internal/storage"
)

const docxMIME = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

func testDeps(t *testing.T) (api.RenderDeps, *storage.TemplateStore) {
	t.Helper()
	store, err := storage.NewTemplateStore(t.TempDir())
	require.NoError(t, err)
	return api.RenderDeps{
		Docx:            render.NewDocxRenderer(store),
		HTML:            render.NewHTMLRenderer(),
		Log:             zap.NewNop(),
		DefaultLanguage: "python",
		DefaultTheme:    "github",
	}, store
}

func exerciseBody() map[string]interface{} {
	return map[string]interface{}{
		"topic":               "Python",
		"subtopic":            "Web Scraping",
		"difficulty":          "Easy",
		"questionDescription": "Fetch and parse a page.",
		"instructions": []map[string]interface{}{
			{"blankNumber": 1, "instruction": "Fetch the url."},
		},
		"codeBlock": "page = Blank 1: Enter your code here",
		"answers": []map[string]interface{}{
			{"answerNumber": 1, "answerCode": "requests.get(url).text"},
		},
	}
}

func postJSON(handler http.HandlerFunc, body interface{}) *httptest.ResponseRecorder {
	buf, _ := json.Marshal(body)
	r := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(buf))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, r)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Message string          `json:"message"`
		Code    string          `json:"code"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestGenerateExerciseHTML(t *testing.T) {
	deps, _ := testDeps(t)
	body := exerciseBody()
	body["format"] = "html"

	w := postJSON(api.GenerateExerciseHandler(deps), body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	html := w.Body.String()
	assert.Contains(t, html, "Topic: Python")
	assert.Contains(t, html, "At Blank 1: Fetch the url.")
	assert.Contains(t, html, "1. requests.get(url).text")
}

func TestGenerateExerciseDefaultsToHTML(t *testing.T) {
	deps, _ := testDeps(t)
	w := postJSON(api.GenerateExerciseHandler(deps), exerciseBody())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
}

func TestGenerateExerciseRendersEveryRow(t *testing.T) {
	deps, _ := testDeps(t)
	body := exerciseBody()
	instructions := make([]map[string]interface{}, 0, 5)
	answers := make([]map[string]interface{}, 0, 5)
	for i := 1; i <= 5; i++ {
		instructions = append(instructions, map[string]interface{}{
			"blankNumber": i, "instruction": fmt.Sprintf("Step %d", i),
		})
		answers = append(answers, map[string]interface{}{
			"answerNumber": i, "answerCode": fmt.Sprintf("line_%d()", i),
		})
	}
	body["instructions"] = instructions
	body["answers"] = answers
	body["format"] = "html"

	w := postJSON(api.GenerateExerciseHandler(deps), body)
	require.Equal(t, http.StatusOK, w.Code)
	html := w.Body.String()
	assert.Equal(t, 5, strings.Count(html, `<div class="instruction">`))
	assert.Equal(t, 5, strings.Count(html, `<div class="answer">`))
	assert.Contains(t, html, "5. line_5()")
}

func TestGenerateExerciseValidationError(t *testing.T) {
	deps, _ := testDeps(t)
	body := exerciseBody()
	body["difficulty"] = "Extreme"

	w := postJSON(api.GenerateExerciseHandler(deps), body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w)
	assert.False(t, env.Success)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, string(env.Error.Details), "Difficulty must be Easy, Medium, or Hard")
}

func TestGenerateExerciseMissingTemplate(t *testing.T) {
	deps, _ := testDeps(t)
	body := exerciseBody()
	body["format"] = "docx"

	w := postJSON(api.GenerateExerciseHandler(deps), body)
	require.Equal(t, http.StatusNotFound, w.Code)
	env := decodeEnvelope(t, w)
	assert.False(t, env.Success)
	assert.Equal(t, "TEMPLATE_NOT_FOUND", env.Error.Code)
	assert.Contains(t, env.Error.Message, api.DefaultExerciseTemplate)
}

func TestValidateExercise(t *testing.T) {
	deps, _ := testDeps(t)

	w := postJSON(api.ValidateExerciseHandler(deps), exerciseBody())
	require.Equal(t, http.StatusOK, w.Code)
	var ok struct {
		Success  bool            `json:"success"`
		Valid    bool            `json:"valid"`
		Warnings []string        `json:"warnings"`
		Data     json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ok))
	assert.True(t, ok.Success)
	assert.True(t, ok.Valid)
	assert.Empty(t, ok.Warnings)
	assert.NotEmpty(t, ok.Data)

	bad := exerciseBody()
	bad["difficulty"] = "Extreme"
	w = postJSON(api.ValidateExerciseHandler(deps), bad)
	require.Equal(t, http.StatusBadRequest, w.Code)
	var fail struct {
		Success bool `json:"success"`
		Valid   bool `json:"valid"`
		Errors  []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fail))
	assert.False(t, fail.Success)
	assert.False(t, fail.Valid)
	require.Len(t, fail.Errors, 1)
	assert.Equal(t, "difficulty", fail.Errors[0].Field)
}

func TestValidateExerciseWarnings(t *testing.T) {
	deps, _ := testDeps(t)
	body := exerciseBody()
	body["answers"] = []map[string]interface{}{
		{"answerNumber": 1, "answerCode": "a"},
		{"answerNumber": 2, "answerCode": "b"},
	}
	w := postJSON(api.ValidateExerciseHandler(deps), body)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Valid    bool     `json:"valid"`
		Warnings []string `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Valid)
	require.Len(t, resp.Warnings, 1)
	assert.Contains(t, resp.Warnings[0], "does not match")
}

func TestGenerateDocxRequiresData(t *testing.T) {
	deps, _ := testDeps(t)
	w := postJSON(api.GenerateDocxHandler(deps), map[string]interface{}{"template": "x.docx"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, string(env.Error.Details), "data is required")
}

func TestGenerateDocxRejectsFormat(t *testing.T) {
	deps, _ := testDeps(t)
	w := postJSON(api.GenerateDocxHandler(deps), map[string]interface{}{
		"data":   exerciseBody(),
		"format": "pdf",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestGenerateDocxHTMLFormat(t *testing.T) {
	deps, _ := testDeps(t)
	w := postJSON(api.GenerateDocxHandler(deps), map[string]interface{}{
		"data":   exerciseBody(),
		"format": "html",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
}

func TestGenerateDocxAcceptsAnyObjectShape(t *testing.T) {
	deps, _ := testDeps(t)
	w := postJSON(api.GenerateDocxHandler(deps), map[string]interface{}{
		"data": map[string]interface{}{
			"topic":   "Python",
			"answers": map[string]interface{}{"unexpected": "shape"},
			"custom":  "rides along",
		},
		"format": "html",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "Topic: Python")
}

func TestGenerateDocxMissingTemplate(t *testing.T) {
	deps, _ := testDeps(t)
	w := postJSON(api.GenerateDocxHandler(deps), map[string]interface{}{
		"data":     exerciseBody(),
		"template": "custom.docx",
	})
	require.Equal(t, http.StatusNotFound, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, "TEMPLATE_NOT_FOUND", env.Error.Code)
}

func multipartUpload(t *testing.T, field, filename, contentType string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/api/templates", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return r
}

func TestUploadTemplate(t *testing.T) {
	_, store := testDeps(t)
	handler := api.UploadTemplateHandler(store, 5<<20, zap.NewNop())

	w := httptest.NewRecorder()
	handler(w, multipartUpload(t, "template", "custom.docx", docxMIME, []byte("docx bytes")))
	require.Equal(t, http.StatusCreated, w.Code)
	env := decodeEnvelope(t, w)
	assert.True(t, env.Success)

	saved, err := store.Read("custom.docx")
	require.NoError(t, err)
	assert.Equal(t, []byte("docx bytes"), saved)
}

func TestUploadTemplateRejectsNonDocx(t *testing.T) {
	_, store := testDeps(t)
	handler := api.UploadTemplateHandler(store, 5<<20, zap.NewNop())

	w := httptest.NewRecorder()
	handler(w, multipartUpload(t, "template", "notes.txt", "text/plain", []byte("hello")))
	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, "Only DOCX files are allowed", env.Error.Message)

	templates, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, templates)
}

func TestUploadTemplateMissingFile(t *testing.T) {
	_, store := testDeps(t)
	handler := api.UploadTemplateHandler(store, 5<<20, zap.NewNop())

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("filename", "x.docx"))
	require.NoError(t, mw.Close())
	r := httptest.NewRequest(http.MethodPost, "/api/templates", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())

	w := httptest.NewRecorder()
	handler(w, r)
	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, "No template file provided", env.Error.Message)
}

func TestListTemplates(t *testing.T) {
	_, store := testDeps(t)
	_, err := store.Save([]byte("x"), "one.docx")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	api.ListTemplatesHandler(store, zap.NewNop())(w, httptest.NewRequest(http.MethodGet, "/api/templates", nil))
	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.True(t, env.Success)
	assert.Contains(t, string(env.Data), "one.docx")
}

func TestExerciseTemplateDescriptor(t *testing.T) {
	w := httptest.NewRecorder()
	api.ExerciseTemplateHandler()(w, httptest.NewRequest(http.MethodGet, "/api/exercise-template", nil))
	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.True(t, env.Success)
	var data struct {
		Template              map[string]interface{} `json:"template"`
		SupportedLanguages    []string               `json:"supportedLanguages"`
		SupportedDifficulties []string               `json:"supportedDifficulties"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Contains(t, data.Template, "codeBlock")
	assert.Contains(t, data.SupportedLanguages, "python")
	assert.Equal(t, []string{"Easy", "Medium", "Hard"}, data.SupportedDifficulties)
}

func TestListCategories(t *testing.T) {
	repo := registry.NewMemoryRepo()
	w := httptest.NewRecorder()
	api.ListCategoriesHandler(repo, zap.NewNop())(w, httptest.NewRequest(http.MethodGet, "/api/exercise-categories", nil))
	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	var data struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, 5, data.Count)
}

func TestCreateCategoryValidation(t *testing.T) {
	repo := registry.NewMemoryRepo()
	w := postJSON(api.CreateCategoryHandler(repo, zap.NewNop()), map[string]string{
		"name":        "ab",
		"description": "too short",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestCreateTopicUnknownCategory(t *testing.T) {
	repo := registry.NewMemoryRepo()
	w := postJSON(api.CreateTopicHandler(repo, zap.NewNop()), map[string]interface{}{
		"categoryId": 42,
		"name":       "Orphan Topic",
		"languages":  []string{"go"},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, "Invalid category ID", env.Error.Message)
}

func TestListTopicsFilter(t *testing.T) {
	repo := registry.NewMemoryRepo()
	w := httptest.NewRecorder()
	api.ListTopicsHandler(repo, zap.NewNop())(w,
		httptest.NewRequest(http.MethodGet, "/api/exercise-topics?language=sql", nil))
	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	var data struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, 1, data.Count)
}

func TestSupportedLanguages(t *testing.T) {
	w := httptest.NewRecorder()
	api.SupportedLanguagesHandler()(w, httptest.NewRequest(http.MethodGet, "/api/supported-languages", nil))
	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	var data struct {
		Languages []struct {
			Code string `json:"code"`
			Name string `json:"name"`
		} `json:"languages"`
		Themes []struct {
			Code string `json:"code"`
		} `json:"themes"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Len(t, data.Languages, 20)
	assert.Len(t, data.Themes, 5)
}

func TestSearchExercises(t *testing.T) {
	repo := registry.NewMemoryRepo()
	w := httptest.NewRecorder()
	api.SearchExercisesHandler(repo, zap.NewNop())(w,
		httptest.NewRequest(http.MethodGet, "/api/search-exercises?q=linked", nil))
	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	var data struct {
		Count   int `json:"count"`
		Results []struct {
			Name string `json:"name"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Equal(t, 1, data.Count)
	assert.Equal(t, "Linked Lists", data.Results[0].Name)
}

func TestHealth(t *testing.T) {
	w := httptest.NewRecorder()
	api.HealthHandler(time.Now().Add(-time.Minute), "test", "1.2.3")(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Status      string  `json:"status"`
		Uptime      float64 `json:"uptime"`
		Environment string  `json:"environment"`
		Version     string  `json:"version"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Greater(t, body.Uptime, 0.0)
	assert.Equal(t, "test", body.Environment)
	assert.Equal(t, "1.2.3", body.Version)
}

func TestRootDescriptor(t *testing.T) {
	w := httptest.NewRecorder()
	api.RootHandler("1.0.0")(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "/api/generate-exercise"))
}
