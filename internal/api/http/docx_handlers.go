package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/docforge/docforge/internal/exercise"
	"github.com/docforge/docforge/internal/storage"
)

// POST /api/generate-docx
//
// Body: {template, data, format, options}. data may be any JSON object:
// known exercise fields are used when their types fit, everything else
// rides along as passthrough tags.
func GenerateDocxHandler(deps RenderDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Template string           `json:"template"`
			Data     json.RawMessage  `json:"data"`
			Format   string           `json:"format"`
			Options  exercise.Options `json:"options"`
			Language string           `json:"language"`
		}
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "Request body must be valid JSON", "BAD_REQUEST", nil)
			return
		}
		if len(body.Data) == 0 || string(body.Data) == "null" {
			writeError(w, http.StatusBadRequest, "Validation error", "VALIDATION_ERROR",
				[]exercise.FieldError{{Field: "data", Message: "data is required"}})
			return
		}
		switch body.Format {
		case "", exercise.FormatDocx, exercise.FormatHTML:
		default:
			writeError(w, http.StatusBadRequest, "Validation error", "VALIDATION_ERROR",
				[]exercise.FieldError{{Field: "format", Message: `Format must be either "docx" or "html"`}})
			return
		}
		if body.Template == "" {
			body.Template = DefaultExerciseTemplate
		}
		if body.Format == "" {
			body.Format = exercise.FormatDocx
		}

		req, ferrs := exercise.DecodeLoose(body.Data)
		if ferrs != nil {
			writeError(w, http.StatusBadRequest, "Validation error", "VALIDATION_ERROR", ferrs)
			return
		}
		req.Format = body.Format
		if req.Language == "" {
			req.Language = body.Language
		}
		if req.Options == (exercise.Options{}) {
			req.Options = body.Options
		}
		req.Defaults(body.Format, deps.DefaultLanguage, deps.DefaultTheme)

		payload := exercise.Process(req, deps.normalizeOptions(req))

		if body.Format == exercise.FormatHTML {
			html, err := deps.HTML.RenderExercise(payload)
			if err != nil {
				deps.Log.Error("html render failed", zap.Error(err), zap.String("template", body.Template))
				writeError(w, http.StatusInternalServerError, "Rendering failed", "RENDER_ERROR", renderDetails(err))
				return
			}
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = io.WriteString(w, html)
			return
		}

		docBytes, err := deps.Docx.Render(body.Template, payload)
		if err != nil {
			respondRenderFailure(w, deps.Log, body.Template, err)
			return
		}
		topic := payload.Topic
		if topic == "" {
			topic = "document"
		}
		filename := fmt.Sprintf("%s_%d.docx", topic, time.Now().UnixMilli())
		w.Header().Set("Content-Type", docxContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		w.Header().Set("Content-Length", strconv.Itoa(len(docBytes)))
		_, _ = w.Write(docBytes)
		deps.Log.Info("docx generated",
			zap.String("template", body.Template), zap.String("filename", filename), zap.Int("size", len(docBytes)))
	}
}

// GET /api/templates
func ListTemplatesHandler(store *storage.TemplateStore, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		templates, err := store.List()
		if err != nil {
			log.Error("template list failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Could not list templates", "STORE_ERROR", nil)
			return
		}
		writeData(w, http.StatusOK, map[string]interface{}{
			"templates": templates,
			"count":     len(templates),
		})
	}
}

// POST /api/templates (multipart, field "template", optional "filename")
func UploadTemplateHandler(store *storage.TemplateStore, maxSize int64, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxSize+4096)
		if err := r.ParseMultipartForm(maxSize); err != nil {
			writeError(w, http.StatusBadRequest, "Template file too large or malformed upload",
				"UPLOAD_ERROR", fmt.Sprintf("Maximum size is %d MB", maxSize/(1<<20)))
			return
		}
		f, hdr, err := r.FormFile("template")
		if err != nil {
			writeError(w, http.StatusBadRequest, "No template file provided", "UPLOAD_ERROR",
				"Please upload a DOCX file")
			return
		}
		defer f.Close()

		if ct := hdr.Header.Get("Content-Type"); ct != docxContentType {
			writeError(w, http.StatusBadRequest, "Only DOCX files are allowed", "UPLOAD_ERROR",
				"Invalid file type: "+ct)
			return
		}
		if hdr.Size > maxSize {
			writeError(w, http.StatusBadRequest, "Template file too large", "UPLOAD_ERROR",
				fmt.Sprintf("Maximum size is %d MB", maxSize/(1<<20)))
			return
		}

		filename := r.FormValue("filename")
		if filename == "" {
			filename = hdr.Filename
		}

		data, err := io.ReadAll(f)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Could not read uploaded file", "UPLOAD_ERROR", nil)
			return
		}

		path, err := store.Save(data, filename)
		if err != nil {
			if errors.Is(err, storage.ErrInvalidFilename) {
				writeError(w, http.StatusBadRequest, "Invalid file name", "UPLOAD_ERROR",
					"Only .docx filenames without path separators are allowed")
				return
			}
			log.Error("template save failed", zap.String("filename", filename), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Could not save template", "STORE_ERROR", nil)
			return
		}

		log.Info("template uploaded",
			zap.String("filename", filename), zap.Int("size", len(data)), zap.String("path", path))
		writeData(w, http.StatusCreated, map[string]interface{}{
			"message":  "Template uploaded successfully",
			"filename": filename,
			"size":     len(data),
			"path":     path,
		})
	}
}
