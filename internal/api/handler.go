// Package api exposes the sales pipeline, the chart history and the report
// listing as a JSON HTTP API.
package api

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"autosales/salesdash/internal/common"
	"autosales/salesdash/internal/logging"
	"autosales/salesdash/internal/metrics"
	"autosales/salesdash/internal/models"
	"autosales/salesdash/internal/pipeline"
	"autosales/salesdash/internal/pipelineerror"
	"autosales/salesdash/internal/report"
	"autosales/salesdash/internal/storage"
	"autosales/salesdash/internal/store"
	"autosales/salesdash/internal/validation"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// MaxUploadSize bounds the multipart body of an upload.
const MaxUploadSize = 32 << 20

// Services are the components the handlers delegate to.
type Services struct {
	Pipeline *pipeline.Pipeline
	Storage  *storage.Manager
	History  store.ChartHistory
	Reports  *report.Generator
	Reader   *common.TableReader
	Logger   logging.Logger

	// Metrics, when set, instruments every route and is served at /metrics.
	Metrics *metrics.Recorder
}

// Handler serves the HTTP API.
type Handler struct {
	svc    Services
	logger logging.Logger
}

// NewHandler creates a Handler.
func NewHandler(svc Services) *Handler {
	return &Handler{
		svc:    svc,
		logger: svc.Logger.WithField(logging.FieldComponent, "api"),
	}
}

// Routes returns the API router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if h.svc.Metrics != nil {
		r.Use(h.svc.Metrics.Middleware)
	}
	r.Use(middleware.Recoverer)

	if h.svc.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.svc.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Post("/uploads", h.Upload)
		r.Post("/process", h.Process)

		r.Get("/chart_history", h.ListHistory)
		r.Get("/chart_history/{name}", h.GetHistory)
		r.Delete("/chart_history/{name}", h.DeleteHistory)

		r.Get("/reports", h.ListReports)
		r.Get("/analytics", h.Analytics)

		r.Get("/settings", h.GetSettings)
		r.Put("/settings", h.UpdateSettings)
	})

	r.Get("/download/{filename}", h.Download)
	return r
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := errorFor(err)
	log := h.logger.WithFields(
		logging.F("request_id", middleware.GetReqID(r.Context())),
		logging.F("path", r.URL.Path),
		logging.F(logging.FieldStatus, apiErr.StatusCode))
	if apiErr.StatusCode >= http.StatusInternalServerError {
		log.WithError(err).Error("Request failed")
	} else {
		log.Debug("Request rejected", logging.F(logging.FieldError, err.Error()))
	}
	_ = render.Render(w, r, apiErr)
}

// UploadResponse describes a stored upload and the mapping guessed from its header.
type UploadResponse struct {
	Token   string               `json:"token"`
	Columns []string             `json:"columns"`
	Rows    int                  `json:"rows"`
	Mapping models.ColumnMapping `json:"mapping"`
}

// Upload handles POST /api/uploads with a multipart "file" field.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		h.fail(w, r, badRequest(fmt.Errorf("missing upload file: %w", err)))
		return
	}
	defer file.Close()

	token, err := h.svc.Storage.SaveUpload(header.Filename, file)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	path, err := h.svc.Storage.OpenUpload(token)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	table, err := h.svc.Reader.ReadFile(path)
	if err != nil {
		if rmErr := os.Remove(path); rmErr != nil {
			h.logger.WithError(rmErr).Warn("Failed to remove unreadable upload", logging.F(logging.FieldFile, path))
		}
		h.fail(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, UploadResponse{
		Token:   token,
		Columns: table.Header,
		Rows:    len(table.Rows),
		Mapping: common.GuessMapping(table.Header),
	})
}

// ProcessRequest is the body of POST /api/process.
type ProcessRequest struct {
	Token       string               `json:"token" validate:"required"`
	Mapping     models.ColumnMapping `json:"mapping"`
	Mode        string               `json:"mode" validate:"required"`
	Formats     []string             `json:"formats,omitempty"`
	Name        string               `json:"name,omitempty" validate:"omitempty,max=100"`
	SkipReports bool                 `json:"skip_reports,omitempty"`
	SkipHistory bool                 `json:"skip_history,omitempty"`
	Reinsert    bool                 `json:"reinsert,omitempty"`
}

// Process handles POST /api/process.
func (h *Handler) Process(w http.ResponseWriter, r *http.Request) {
	var body ProcessRequest
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		h.fail(w, r, badRequest(fmt.Errorf("invalid JSON body: %w", err)))
		return
	}
	// The mapping has its own rules and is checked by the mapper.
	if err := validation.StructExcept(body, "Mapping"); err != nil {
		h.fail(w, r, badRequest(err))
		return
	}

	mode, ok := models.ParseTimeMode(body.Mode)
	if !ok {
		h.fail(w, r, &pipelineerror.BucketError{Mode: body.Mode, Reason: "unsupported time mode"})
		return
	}

	var formats []models.ReportFormat
	if len(body.Formats) > 0 {
		parsed, err := models.ParseReportFormats(body.Formats)
		if err != nil {
			h.fail(w, r, newAPIError(http.StatusUnprocessableEntity, "INVALID_FORMAT", err))
			return
		}
		formats = parsed
	}

	result, err := h.svc.Pipeline.Run(pipeline.Request{
		Token:       body.Token,
		Mapping:     body.Mapping,
		Mode:        mode,
		Formats:     formats,
		SkipReports: body.SkipReports,
		Name:        body.Name,
		SkipHistory: body.SkipHistory,
		Reinsert:    body.Reinsert,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, r, result)
}

// ListHistory handles GET /api/chart_history.
func (h *Handler) ListHistory(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.svc.History.Summaries()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if summaries == nil {
		summaries = []models.ChartHistorySummary{}
	}
	render.JSON(w, r, summaries)
}

// GetHistory handles GET /api/chart_history/{name}.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	entry, err := h.svc.History.Load(chi.URLParam(r, "name"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, r, entry)
}

// DeleteHistory handles DELETE /api/chart_history/{name}.
func (h *Handler) DeleteHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.History.Delete(chi.URLParam(r, "name")); err != nil {
		h.fail(w, r, err)
		return
	}
	render.NoContent(w, r)
}

// ListReports handles GET /api/reports.
func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.svc.Reports.ListReports()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if reports == nil {
		reports = []models.ReportInfo{}
	}
	render.JSON(w, r, reports)
}

// Analytics handles GET /api/analytics.
func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Reports.Analytics()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, r, summary)
}

// GetSettings handles GET /api/settings.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Storage.Summary()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, r, summary)
}

// SettingsRequest is the body of PUT /api/settings. Empty values select the defaults.
type SettingsRequest struct {
	UploadDir string `json:"upload_dir"`
	OutputDir string `json:"output_dir"`
}

// UpdateSettings handles PUT /api/settings.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var body SettingsRequest
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		h.fail(w, r, badRequest(fmt.Errorf("invalid JSON body: %w", err)))
		return
	}
	if _, err := h.svc.Storage.UpdatePaths(body.UploadDir, body.OutputDir); err != nil {
		h.fail(w, r, err)
		return
	}
	h.GetSettings(w, r)
}

// Download handles GET /download/{filename}. Only report files in the output
// directory are served.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	notFound := &pipelineerror.NotFoundError{Kind: "report", Name: name}

	if err := validation.IsSafeFilename(name); err != nil {
		h.fail(w, r, notFound)
		return
	}
	if _, ok := models.FormatForExtension(filepath.Ext(name)); !ok {
		h.fail(w, r, notFound)
		return
	}

	dir, err := h.svc.Storage.ResolveOutputDir()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	path := filepath.Join(dir, name)
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) || (err == nil && !info.Mode().IsRegular()) {
		h.fail(w, r, notFound)
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeFile(w, r, path)
}
