package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"goeda/adapters/excel"
	"goeda/app"
	"goeda/domain/core"
	"goeda/internal"
	"goeda/internal/config"
	apperrors "goeda/internal/errors"
	"goeda/internal/overview"
	"goeda/ports"

	"github.com/gin-gonic/gin"
)

// Sources opens the dataset of a report run
type Sources interface {
	FileReader(rc *config.RunConfig) ports.DatasetReader
	// QueryReader returns nil when no database is configured
	QueryReader(name, query string) ports.DatasetReader
}

// ReportResponse is the JSON view of a finished report run
type ReportResponse struct {
	ID          string            `json:"id"`
	RunID       string            `json:"run_id"`
	Dataset     string            `json:"dataset"`
	Rows        int               `json:"rows"`
	GeneratedAt time.Time         `json:"generated_at"`
	Results     json.RawMessage   `json:"results"`
	Insights    []string          `json:"insights"`
	Files       []string          `json:"files"`
	Overview    *overview.Summary `json:"overview,omitempty"`
	ElapsedMS   int64             `json:"elapsed_ms"`
}

// QueryRequest asks for a report over the result of a SELECT
type QueryRequest struct {
	Name       string `json:"name" binding:"required"`
	Query      string `json:"query" binding:"required"`
	Config     string `json:"config"`
	ConfigType string `json:"config_type"`
	Stream     string `json:"stream"`
}

// ReportHandler serves report runs over HTTP
type ReportHandler struct {
	pipeline  *app.Pipeline
	sources   Sources
	hub       *EventHub
	logger    *internal.Logger
	reportDir string
	maxUpload int64
	timeout   time.Duration
	reports   ports.ReportRepository
}

// ReportSummary is one entry of the report listing
type ReportSummary struct {
	ID          string    `json:"id"`
	RunID       string    `json:"run_id"`
	Dataset     string    `json:"dataset"`
	Rows        int       `json:"rows"`
	GeneratedAt time.Time `json:"generated_at"`
}

// NewReportHandler creates a report handler writing runs under cfg.ReportDir.
// A nil repository keeps finished runs in memory.
func NewReportHandler(pipeline *app.Pipeline, sources Sources, reports ports.ReportRepository, hub *EventHub, cfg *config.ServerConfig, logger *internal.Logger) *ReportHandler {
	if reports == nil {
		reports = NewMemoryReports()
	}
	return &ReportHandler{
		pipeline:  pipeline,
		sources:   sources,
		hub:       hub,
		logger:    logger.Named("api"),
		reportDir: cfg.ReportDir,
		maxUpload: cfg.MaxUploadBytes,
		timeout:   cfg.RequestTimeout,
		reports:   reports,
	}
}

// CreateFromUpload runs a report over an uploaded CSV or XLSX file.
// Multipart fields: file (required), config (file or yaml text), config_type, stream.
func (h *ReportHandler) CreateFromUpload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)

	upload, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if !errors.As(err, &tooLarge) {
			err = apperrors.InvalidInput(`multipart field "file" is required`)
		}
		h.fail(c, err)
		return
	}
	name := filepath.Base(upload.Filename)
	if !excel.SupportedExtension(name) {
		h.fail(c, apperrors.InvalidInput("only CSV and XLSX files are supported"))
		return
	}

	f, err := h.uploadedConfig(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	id := core.NewID().String()
	dir := filepath.Join(h.reportDir, id)
	input := filepath.Join(dir, "input", name)
	if err := os.MkdirAll(filepath.Dir(input), 0o755); err != nil {
		h.fail(c, apperrors.Wrap(err, "create report folder"))
		return
	}
	if err := c.SaveUploadedFile(upload, input); err != nil {
		h.fail(c, apperrors.Wrap(err, "store upload"))
		return
	}

	f.Data.InputPath = input
	f.AnalysisConfig.Output.ReportFolderName = dir
	rc, err := config.Validate(f, time.Now())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.run(c, id, dir, rc, h.sources.FileReader(rc), c.PostForm("stream"))
}

// CreateFromQuery runs a report over the rows of a database query
func (h *ReportHandler) CreateFromQuery(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, apperrors.InvalidInput(err.Error()))
		return
	}
	if !readOnly(req.Query) {
		h.fail(c, apperrors.InvalidInput("only SELECT or WITH queries are accepted"))
		return
	}
	reader := h.sources.QueryReader(req.Name, req.Query)
	if reader == nil {
		h.fail(c, apperrors.NotFound("database source"))
		return
	}

	f, err := parseConfig(req.Config, req.ConfigType)
	if err != nil {
		h.fail(c, err)
		return
	}
	id := core.NewID().String()
	dir := filepath.Join(h.reportDir, id)
	f.Data.InputPath = req.Name
	f.AnalysisConfig.Output.ReportFolderName = dir
	rc, err := config.ValidateSettings(f, time.Now())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.run(c, id, dir, rc, reader, req.Stream)
}

// List returns the most recent reports, newest first
func (h *ReportHandler) List(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.fail(c, apperrors.InvalidInput("limit must be a positive integer"))
			return
		}
		limit = n
	}
	stored, err := h.reports.List(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]ReportSummary, len(stored))
	for i, r := range stored {
		out[i] = ReportSummary{ID: r.ID, RunID: r.RunID, Dataset: r.Dataset, Rows: r.Rows, GeneratedAt: r.GeneratedAt}
	}
	c.JSON(http.StatusOK, gin.H{"reports": out})
}

// Get returns a finished report
func (h *ReportHandler) Get(c *gin.Context) {
	stored, err := h.lookup(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", stored.Document)
}

// File serves one artifact of a finished report
func (h *ReportHandler) File(c *gin.Context) {
	stored, err := h.lookup(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	path, err := artifactPath(stored.ReportDir, c.Param("name"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.File(path)
}

func (h *ReportHandler) lookup(c *gin.Context) (*ports.StoredReport, error) {
	id := c.Param("id")
	stored, err := h.reports.Get(c.Request.Context(), id)
	if core.IsNotFoundError(err) {
		return nil, apperrors.NotFound("report " + id)
	}
	return stored, err
}

// artifactPath resolves name inside dir, refusing anything that escapes it
func artifactPath(dir, name string) (string, error) {
	rel := filepath.Clean(strings.TrimPrefix(name, "/"))
	if rel == "." || filepath.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", apperrors.InvalidInput("invalid artifact path")
	}
	path := filepath.Join(dir, rel)
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return "", apperrors.NotFound("artifact " + rel)
	}
	return path, nil
}

func (h *ReportHandler) run(c *gin.Context, id, dir string, rc *config.RunConfig, reader ports.DatasetReader, stream string) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	table, err := reader.Read(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}

	diag := NewStreamDiagnostics(h.logger, h.hub, stream)
	res, err := h.pipeline.Run(ctx, rc, table, diag)
	if err != nil {
		h.fail(c, err)
		return
	}

	summary, err := overview.Describe(res.Table, rc.RepresentativeColumns, rc.NullThreshold)
	if err != nil {
		h.logger.Warn("overview of %s skipped: %v", id, err)
	}
	files, err := listFiles(dir)
	if err != nil {
		h.logger.Warn("listing artifacts of %s: %v", id, err)
	}

	report := res.Report
	results, err := json.Marshal(report)
	if err != nil {
		h.fail(c, apperrors.Wrap(err, "encode results"))
		return
	}
	resp := ReportResponse{
		ID:          id,
		RunID:       report.RunID.String(),
		Dataset:     report.Dataset,
		Rows:        report.Rows,
		GeneratedAt: report.GeneratedAt,
		Results:     results,
		Insights:    report.Insights,
		Files:       files,
		Overview:    summary,
		ElapsedMS:   res.Elapsed.Milliseconds(),
	}

	doc, err := json.Marshal(resp)
	if err != nil {
		h.fail(c, apperrors.Wrap(err, "encode report"))
		return
	}
	err = h.reports.Save(ctx, &ports.StoredReport{
		ID:          id,
		RunID:       resp.RunID,
		Dataset:     resp.Dataset,
		Rows:        resp.Rows,
		GeneratedAt: resp.GeneratedAt,
		ReportDir:   dir,
		Document:    doc,
	})
	if err != nil {
		h.fail(c, apperrors.Wrap(err, "save report"))
		return
	}

	h.logger.Info("report %s ready: %s, %d rows, %d files", id, report.Dataset, report.Rows, len(files))
	c.Data(http.StatusCreated, "application/json; charset=utf-8", doc)
}

func (h *ReportHandler) uploadedConfig(c *gin.Context) (*config.File, error) {
	if fh, err := c.FormFile("config"); err == nil {
		src, err := fh.Open()
		if err != nil {
			return nil, apperrors.Wrap(err, "open config upload")
		}
		defer src.Close()
		body, err := io.ReadAll(src)
		if err != nil {
			return nil, apperrors.Wrap(err, "read config upload")
		}
		kind := strings.TrimPrefix(strings.ToLower(filepath.Ext(fh.Filename)), ".")
		return parseConfig(string(body), kind)
	}
	return parseConfig(c.PostForm("config"), c.PostForm("config_type"))
}

// parseConfig decodes a yaml or toml document; an empty one yields the starter template
func parseConfig(doc, kind string) (*config.File, error) {
	if strings.TrimSpace(doc) == "" {
		return config.Template(""), nil
	}
	switch kind {
	case "", "yml", "yaml":
		kind = "yaml"
	case "toml":
	default:
		return nil, apperrors.InvalidInput("config_type must be yaml or toml")
	}
	return config.Parse(strings.NewReader(doc), kind)
}

func readOnly(query string) bool {
	q := strings.ToUpper(strings.TrimSpace(query))
	return strings.HasPrefix(q, "SELECT") || strings.HasPrefix(q, "WITH")
}

// listFiles returns the artifacts under dir, relative to it, without the stored input
func listFiles(dir string) ([]string, error) {
	files := []string{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(dir, path)
		if d.IsDir() {
			if rel == "input" {
				return filepath.SkipDir
			}
			return nil
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return files, nil
	}
	sort.Strings(files)
	return files, err
}

func (h *ReportHandler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("%s %s: %v", c.Request.Method, c.FullPath(), err)
	} else {
		h.logger.Warn("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": apperrors.GetCode(err)})
}

func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case core.IsContractError(err):
		return http.StatusUnprocessableEntity
	case core.IsNotFoundError(err):
		return http.StatusNotFound
	}
	switch apperrors.GetCode(err) {
	case apperrors.CodeConfigInvalid, apperrors.CodeValidationError, apperrors.CodeInvalidInput:
		return http.StatusBadRequest
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	case apperrors.CodeDataSource:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
