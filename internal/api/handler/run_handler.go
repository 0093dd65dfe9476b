package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"go-codegen-pipeline/internal/app"
	"go-codegen-pipeline/internal/model"
	"go-codegen-pipeline/internal/source"
	"go-codegen-pipeline/internal/store"
	"go-codegen-pipeline/pkg/utils"
)

const (
	runsPrefix     = "/api/v1/runs/"
	downloadPrefix = "/api/v1/download/"
	defaultLimit   = 50
)

var validate = validator.New()

// CreateRunRequest starts a batch either from a tabular source column or
// from inline values. Config fields left out keep the server defaults.
type CreateRunRequest struct {
	Source      string                 `json:"source" validate:"required_without=Values"`
	Column      string                 `json:"column" validate:"required_with=Source"`
	Values      []string               `json:"values"`
	OutputKind  model.OutputKind       `json:"output_kind" validate:"required,oneof=loose-images paginated-document archive"`
	ImageFormat model.ImageFormat      `json:"image_format" validate:"omitempty,oneof=png svg"`
	Config      model.GenerationConfig `json:"config"`
}

// CreateRunResponse acknowledges a started run.
type CreateRunResponse struct {
	JobID       string `json:"job_id"`
	Status      string `json:"status"`
	Total       int    `json:"total"`
	Rejected    int    `json:"rejected"`
	Destination string `json:"destination"`
}

// RunDetail is a persisted run together with the files it produced.
type RunDetail struct {
	Run   model.JobRun       `json:"run"`
	Files []utils.OutputFile `json:"files"`
}

// HealthResponse reports aggregate metrics and the active run, if any.
type HealthResponse struct {
	Status    string               `json:"status"`
	ActiveJob string               `json:"active_job,omitempty"`
	Metrics   model.HealthSnapshot `json:"metrics"`
}

// ColumnsResponse lists the header of a tabular source.
type ColumnsResponse struct {
	Source  string   `json:"source"`
	Columns []string `json:"columns"`
	Rows    int      `json:"rows"`
}

// RunHandler serves the run lifecycle over HTTP.
type RunHandler struct {
	app *app.App
}

func NewRunHandler(a *app.App) *RunHandler {
	return &RunHandler{app: a}
}

// CreateRun validates a batch and starts it
// @Summary Start a run
// @Description Validate the values of a source column (or inline values) and start generating codes
// @Tags runs
// @Accept json
// @Produce json
// @Param run body CreateRunRequest true "Run request"
// @Success 202 {object} CreateRunResponse "Run started"
// @Failure 400 {string} string "Invalid request or no valid values"
// @Failure 403 {string} string "Source outside the source directory or remote sources disabled"
// @Failure 409 {string} string "A run is already in progress"
// @Failure 500 {string} string "Internal server error"
// @Router /runs [post]
func (h *RunHandler) CreateRun(w http.ResponseWriter, r *http.Request) {
	req := CreateRunRequest{Config: h.app.Config.Generation}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	raw := req.Values
	if req.Source != "" {
		src, err := h.app.Sources.Resolve(req.Source)
		if err != nil {
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		}
		values, err := h.app.Column(r.Context(), src, req.Column)
		if err != nil {
			http.Error(w, "Failed to load source: "+err.Error(), http.StatusBadRequest)
			return
		}
		raw = values
	}

	jobID := uuid.New().String()
	batch, err := h.app.Prepare(app.Batch{
		ID:          jobID,
		Raw:         raw,
		Config:      req.Config,
		Kind:        req.OutputKind,
		Format:      req.ImageFormat,
		Destination: h.app.Outputs.Destination(jobID, req.OutputKind),
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	jobDir, err := h.app.Outputs.CreateJobOutputDir(jobID)
	if err != nil {
		http.Error(w, "Failed to create output directory", http.StatusInternalServerError)
		return
	}
	if _, err := h.app.Start(r.Context(), batch); err != nil {
		_ = os.RemoveAll(jobDir)
		if errors.Is(err, app.ErrRunInProgress) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, "Failed to start run", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusAccepted, CreateRunResponse{
		JobID:       jobID,
		Status:      string(model.JobStarted),
		Total:       len(batch.Items),
		Rejected:    batch.TotalRejected,
		Destination: batch.Options.Destination,
	})
}

// ListRuns returns recent runs, newest first
// @Summary List runs
// @Description Get recent runs with their status, newest first
// @Tags runs
// @Produce json
// @Param limit query int false "Maximum number of runs" default(50)
// @Success 200 {array} model.JobRun "Runs"
// @Failure 503 {string} string "Job store unavailable"
// @Router /runs [get]
func (h *RunHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	if h.app.Jobs == nil {
		http.Error(w, "Job store unavailable", http.StatusServiceUnavailable)
		return
	}
	limit := utils.ParseLimit(r.URL.Query().Get("limit"), defaultLimit)
	runs, err := h.app.Jobs.List(r.Context(), limit)
	if err != nil {
		http.Error(w, "Failed to fetch runs", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// GetRun retrieves one run and its output files
// @Summary Get run
// @Description Retrieve a run record and download links for its outputs
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} RunDetail "Run details"
// @Failure 400 {string} string "Invalid run ID"
// @Failure 404 {string} string "Run not found"
// @Router /runs/{id} [get]
func (h *RunHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	jobID := strings.TrimPrefix(r.URL.Path, runsPrefix)
	if jobID == "" || strings.Contains(jobID, "/") {
		http.Error(w, "Invalid run ID", http.StatusBadRequest)
		return
	}
	if h.app.Jobs == nil {
		http.Error(w, "Job store unavailable", http.StatusServiceUnavailable)
		return
	}

	run, err := h.app.Jobs.Get(r.Context(), jobID)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "Run not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to fetch run", http.StatusInternalServerError)
		return
	}
	files, err := h.app.Outputs.ListFiles(jobID)
	if err != nil {
		http.Error(w, "Failed to list outputs", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, RunDetail{Run: run, Files: files})
}

// CancelRun requests cancellation of the active run
// @Summary Cancel run
// @Description Ask the active run to stop before its next item
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 202 {object} map[string]string "Cancellation requested"
// @Failure 409 {string} string "Run is not active"
// @Router /runs/{id}/cancel [post]
func (h *RunHandler) CancelRun(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	suffix := "/cancel"
	if !strings.HasPrefix(path, runsPrefix) || !strings.HasSuffix(path, suffix) {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return
	}
	jobID := path[len(runsPrefix) : len(path)-len(suffix)]
	if !h.app.Runner.CancelJob(jobID) {
		http.Error(w, "Run is not active", http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{
		"job_id": jobID,
		"status": "cancelling",
	})
}

// GetProgress returns the observable state of the current run
// @Summary Get progress
// @Description Current run state as folded from the event stream
// @Tags runs
// @Produce json
// @Success 200 {object} model.ProgressSnapshot "Progress"
// @Router /progress [get]
func (h *RunHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.app.Tracker.Snapshot())
}

// GetHealth returns aggregate run metrics
// @Summary Health
// @Description Aggregated duration, throughput and error rate over recorded runs
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse "Health"
// @Failure 503 {string} string "Metrics store unavailable"
// @Router /health [get]
func (h *RunHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	if h.app.Metrics == nil {
		http.Error(w, "Metrics store unavailable", http.StatusServiceUnavailable)
		return
	}
	snap, err := h.app.Metrics.HealthSnapshot(r.Context())
	if err != nil {
		http.Error(w, "Failed to read metrics", http.StatusInternalServerError)
		return
	}
	resp := HealthResponse{Status: "ok", Metrics: snap}
	if id, ok := h.app.Runner.Active(); ok {
		resp.ActiveJob = id
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetColumns lists the columns of a tabular source
// @Summary Source columns
// @Description Read the header row of a CSV, XLSX or JSON source
// @Tags sources
// @Produce json
// @Param source query string true "Path under the source directory, or URL when remote sources are enabled"
// @Success 200 {object} ColumnsResponse "Columns"
// @Failure 400 {string} string "Missing or unreadable source"
// @Failure 403 {string} string "Source outside the source directory or remote sources disabled"
// @Router /columns [get]
func (h *RunHandler) GetColumns(w http.ResponseWriter, r *http.Request) {
	src := r.URL.Query().Get("source")
	if src == "" {
		http.Error(w, "source is required", http.StatusBadRequest)
		return
	}
	resolved, err := h.app.Sources.Resolve(src)
	if err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}
	table, err := source.Load(r.Context(), resolved)
	if err != nil {
		http.Error(w, "Failed to load source: "+err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, ColumnsResponse{Source: src, Columns: table.Columns(), Rows: table.Len()})
}

// Download serves one output file of a run
// @Summary Download output
// @Description Download a file produced by a run
// @Tags runs
// @Produce octet-stream
// @Param id path string true "Run ID"
// @Param file path string true "File name"
// @Success 200 {file} file "Output file"
// @Failure 400 {string} string "Invalid path"
// @Failure 404 {string} string "File not found"
// @Router /download/{id}/{file} [get]
func (h *RunHandler) Download(w http.ResponseWriter, r *http.Request) {
	jobID, fileName, ok := strings.Cut(strings.TrimPrefix(r.URL.Path, downloadPrefix), "/")
	if !ok {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return
	}
	path, err := h.app.Outputs.FilePath(jobID, fileName)
	if err != nil {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return
	}
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="`+fileName+`"`)
	http.ServeFile(w, r, path)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
