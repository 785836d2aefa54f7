package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/docforge/docforge/internal/exercise"
	"github.com/docforge/docforge/internal/render"
	"github.com/docforge/docforge/internal/storage"
)

const (
	// DefaultExerciseTemplate is the store name of the built-in DOCX layout.
	DefaultExerciseTemplate = "coding-exercise-template.docx"

	docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	maxBodyBytes = 10 << 20
)

// RenderDeps bundles what the generation handlers need.
type RenderDeps struct {
	Docx *render.DocxRenderer
	HTML *render.HTMLRenderer
	Log  *zap.Logger

	DefaultLanguage string
	DefaultTheme    string
}

func (d RenderDeps) normalizeOptions(req exercise.Request) exercise.NormalizeOptions {
	return exercise.NormalizeOptions{
		Language:           req.Language,
		Theme:              req.Options.Theme,
		SyntaxHighlighting: req.Options.Highlighting(),
	}
}

// POST /api/generate-exercise
func GenerateExerciseHandler(deps RenderDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			writeError(w, http.StatusBadRequest, "Request body unreadable", "BAD_REQUEST", nil)
			return
		}
		req, ferrs := exercise.Decode(body)
		if ferrs == nil {
			ferrs = exercise.Validate(&req)
		}
		if ferrs != nil {
			writeError(w, http.StatusBadRequest, "Validation error", "VALIDATION_ERROR", ferrs)
			return
		}
		req.Defaults(exercise.FormatHTML, deps.DefaultLanguage, deps.DefaultTheme)

		payload := exercise.Process(req, deps.normalizeOptions(req))

		if req.Format == exercise.FormatHTML {
			html, err := deps.HTML.RenderExercise(payload)
			if err != nil {
				deps.Log.Error("html render failed", zap.Error(err), zap.String("topic", req.Topic))
				writeError(w, http.StatusInternalServerError, "Rendering failed", "RENDER_ERROR", renderDetails(err))
				return
			}
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
			_, _ = io.WriteString(w, html)
			deps.Log.Info("html exercise generated",
				zap.String("topic", req.Topic), zap.Int("size", len(html)))
			return
		}

		docBytes, err := deps.Docx.Render(DefaultExerciseTemplate, payload)
		if err != nil {
			respondRenderFailure(w, deps.Log, DefaultExerciseTemplate, err)
			return
		}
		filename := downloadFilename(req.Topic, req.Subtopic)
		w.Header().Set("Content-Type", docxContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		w.Header().Set("Content-Length", strconv.Itoa(len(docBytes)))
		_, _ = w.Write(docBytes)
		deps.Log.Info("docx exercise generated",
			zap.String("topic", req.Topic), zap.String("filename", filename), zap.Int("size", len(docBytes)))
	}
}

// POST /api/validate-exercise
func ValidateExerciseHandler(deps RenderDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			writeError(w, http.StatusBadRequest, "Request body unreadable", "BAD_REQUEST", nil)
			return
		}
		req, ferrs := exercise.Decode(body)
		if ferrs == nil {
			ferrs = exercise.Validate(&req)
		}
		if ferrs != nil {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{
				"success": false,
				"valid":   false,
				"errors":  ferrs,
			})
			return
		}
		req.Defaults(exercise.FormatHTML, deps.DefaultLanguage, deps.DefaultTheme)

		resp := map[string]interface{}{
			"success": true,
			"valid":   true,
			"data":    req,
		}
		if warnings := exercise.Warnings(req); len(warnings) > 0 {
			resp["warnings"] = warnings
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// GET /api/exercise-template
func ExerciseTemplateHandler() http.HandlerFunc {
	shape := map[string]interface{}{
		"topic":               "string (required) - Main programming topic",
		"subtopic":            "string (required) - Specific subtopic",
		"difficulty":          "string (required) - Easy, Medium, or Hard",
		"questionNumber":      "number (optional) - Question number, defaults to 1",
		"questionDescription": "string (required) - Detailed question description",
		"instructions": []map[string]interface{}{{
			"blankNumber": "number (required) - Blank number (1, 2, 3...)",
			"instruction": "string (required) - Instruction text",
		}},
		"codeBlock": "string (required) - Code with blanks marked as 'Blank X: Enter your code here'",
		"answers": []map[string]interface{}{{
			"answerNumber": "number (required) - Answer number (1, 2, 3...)",
			"answerCode":   "string (required) - The actual code answer",
		}},
		"format":   "string (optional) - 'html' or 'docx', defaults to 'html'",
		"language": "string (optional) - Programming language for syntax highlighting, defaults to 'python'",
		"options": map[string]interface{}{
			"syntaxHighlighting": "boolean (optional) - Enable syntax highlighting, defaults to true",
			"includeLineNumbers": "boolean (optional) - Include line numbers, defaults to false",
			"theme":              "string (optional) - Syntax highlighting theme, defaults to 'github'",
		},
	}
	example := exercise.Request{
		Topic:               "Python",
		Subtopic:            "Conditional branching for element presence verification",
		Difficulty:          "Easy",
		QuestionNumber:      1,
		QuestionDescription: "Alex needs to perform several tasks involving web scraping using Python's conditional branching for element presence verification. The code uses the requests library to fetch webpage content and BeautifulSoup to parse HTML.",
		Instructions: []exercise.Instruction{
			{BlankNumber: 1, Instruction: "Create a GET request to fetch the webpage content from the given url as a string."},
			{BlankNumber: 2, Instruction: "Parse the fetched webpage content with BeautifulSoup specifying the proper parser."},
		},
		CodeBlock: "import requests\nfrom bs4 import BeautifulSoup\n\ndef main():\n    url = \"https://example.com\"\n\n    # 1. Fetch webpage content from URL\n    page_content = Blank 1: Enter your code here\n\n    # 2. Parse the webpage content using BeautifulSoup\n    soup = Blank 2: Enter your code here",
		Answers: []exercise.Answer{
			{AnswerNumber: 1, AnswerCode: "requests.get(url).text"},
			{AnswerNumber: 2, AnswerCode: `BeautifulSoup(page_content, "html.parser")`},
		},
		Format:   exercise.FormatHTML,
		Language: "python",
	}
	return func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, map[string]interface{}{
			"template":              shape,
			"example":               example,
			"supportedLanguages":    exercise.SupportedLanguages,
			"supportedFormats":      []string{exercise.FormatHTML, exercise.FormatDocx},
			"supportedDifficulties": exercise.Difficulties,
		})
	}
}

func respondRenderFailure(w http.ResponseWriter, log *zap.Logger, template string, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Template not found: "+template, "TEMPLATE_NOT_FOUND", nil)
		return
	}
	log.Error("docx render failed", zap.String("template", template), zap.Error(err))
	writeError(w, http.StatusInternalServerError, "Rendering failed", "RENDER_ERROR", renderDetails(err))
}

func renderDetails(err error) interface{} {
	var re *render.RenderError
	if errors.As(err, &re) {
		return map[string]interface{}{"template": re.Template, "tags": re.Tags, "cause": re.Err.Error()}
	}
	return nil
}

func downloadFilename(topic, subtopic string) string {
	base := strings.ReplaceAll(topic, " ", "_")
	if subtopic != "" {
		base += "_" + strings.ReplaceAll(subtopic, " ", "_")
	}
	if base == "" || base == "_" {
		base = "document"
	}
	return fmt.Sprintf("%s_%d.docx", base, time.Now().UnixMilli())
}
