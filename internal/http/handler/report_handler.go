package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/straye-as/crm-reports/internal/analytics"
	"github.com/straye-as/crm-reports/internal/config"
	"github.com/straye-as/crm-reports/internal/domain"
	"github.com/straye-as/crm-reports/internal/export"
	applog "github.com/straye-as/crm-reports/internal/logger"
	"github.com/straye-as/crm-reports/internal/metrics"
	"github.com/straye-as/crm-reports/internal/service"
	"go.uber.org/zap"
)

// ReportRunner computes a report by kind
type ReportRunner interface {
	Run(ctx context.Context, kind domain.ReportKind, req service.ReportRequest) (domain.ReportResult[domain.Report], error)
}

// ReportInfo describes one entry of the report catalog
type ReportInfo struct {
	Kind        domain.ReportKind `json:"kind"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Path        string            `json:"path"`
	ExportPath  string            `json:"exportPath"`
}

var reportTitles = map[domain.ReportKind][2]string{
	domain.ReportSales:            {"Ventas", "Sales totals by project, currency, channel and vendor"},
	domain.ReportClients:          {"Clientes", "Client base by status, channel and vendor"},
	domain.ReportProperties:       {"Inventario", "Properties and lots by commercial status and project"},
	domain.ReportVendors:          {"Desempeño de vendedores", "Ranking of active vendors against their monthly target"},
	domain.ReportInteractions:     {"Interacciones", "Contact activity and scheduled follow-ups"},
	domain.ReportFunnel:           {"Embudo de ventas", "Lead progression through the sales stages"},
	domain.ReportLeadSources:      {"Fuentes de leads", "Lead acquisition channels and their effectiveness"},
	domain.ReportResponseTime:     {"Tiempo de respuesta", "Contact latency against the 24/48/72 hour SLA"},
	domain.ReportInterestLevels:   {"Niveles de interés", "Interested clients segmented by engagement level"},
	domain.ReportClientManagement: {"Gestión de clientes", "Follow-up coverage of the client base"},
}

// dateOnly is the short date layout accepted next to RFC3339
const dateOnly = "2006-01-02"

// reportQuery holds the parsed query string of a report request
type reportQuery struct {
	PeriodDays int    `validate:"gte=0"`
	ProjectID  string `validate:"omitempty,uuid"`
	StartDate  string `validate:"omitempty,reportdate"`
	EndDate    string `validate:"omitempty,reportdate"`
}

type ReportHandler struct {
	reports ReportRunner
	cfg     config.ReportsConfig
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewReportHandler(reports ReportRunner, cfg *config.ReportsConfig, m *metrics.Metrics, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		reports: reports,
		cfg:     *cfg,
		metrics: m,
		logger:  logger,
	}
}

// @Summary List reports
// @Description Returns the catalog of available reports with their endpoints
// @Tags Reports
// @Produce json
// @Success 200 {array} ReportInfo
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /reports [get]
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	catalog := make([]ReportInfo, 0, len(domain.ReportKinds))
	for _, kind := range domain.ReportKinds {
		t := reportTitles[kind]
		catalog = append(catalog, ReportInfo{
			Kind:        kind,
			Title:       t[0],
			Description: t[1],
			Path:        "/api/v1/reports/" + string(kind),
			ExportPath:  "/api/v1/reports/" + string(kind) + "/export",
		})
	}
	respondJSON(w, http.StatusOK, catalog)
}

// @Summary Get report
// @Description Computes a report for a trailing period or an explicit date range. Admin role required.
// @Description
// @Description The body is always `{data, error, warnings}`. `warnings` names data sources that failed
// @Description and were treated as empty; the data is then partial. When every source fails the
// @Description status is 502.
// @Description
// @Description Dates accept RFC3339 or YYYY-MM-DD; a date-only end_date covers the whole day.
// @Tags Reports
// @Produce json
// @Param report path string true "Report kind" Enums(sales, clients, properties, vendors, interactions, funnel, lead-sources, response-time, interest-levels, client-management)
// @Param period_days query int false "Trailing window in days (default 30)"
// @Param start_date query string false "Window start"
// @Param end_date query string false "Window end"
// @Param project_id query string false "Project filter (interest-levels only)"
// @Success 200 {object} ReportResponse
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} ReportResponse
// @Failure 404 {object} domain.APIError
// @Failure 502 {object} ReportResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /reports/{report} [get]
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	kind, req, ok := h.parseRequest(w, r)
	if !ok {
		return
	}

	result, err := h.reports.Run(r.Context(), kind, req)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("report failed", applog.Report(string(kind)), zap.Error(err))
		}
		respondJSON(w, status, result)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// @Summary Export report
// @Description Computes a report and downloads its tables as an XLSX workbook, one sheet per table
// @Description plus an Info sheet with the period and any warnings. Admin role required.
// @Tags Reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param report path string true "Report kind"
// @Param period_days query int false "Trailing window in days (default 30)"
// @Param start_date query string false "Window start"
// @Param end_date query string false "Window end"
// @Param project_id query string false "Project filter (interest-levels only)"
// @Success 200 {file} binary
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 502 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /reports/{report}/export [get]
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	kind, req, ok := h.parseRequest(w, r)
	if !ok {
		return
	}

	result, err := h.reports.Run(r.Context(), kind, req)
	if err != nil {
		respondWithError(w, statusFor(err), result.ErrorMessage())
		return
	}

	// Render fully before writing headers so a failure can still be a 500
	var buf bytes.Buffer
	if err := export.Workbook(&buf, result.Data, result.Warnings); err != nil {
		h.logger.Error("failed to export report", applog.Report(string(kind)), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "failed to export report")
		return
	}
	h.metrics.RecordExport(string(kind))

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(result.Data)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// ReportResponse documents the JSON body of a report
type ReportResponse struct {
	Data     interface{} `json:"data"`
	Error    *string     `json:"error"`
	Warnings []string    `json:"warnings,omitempty"`
}

// parseRequest reads the report kind and query string, responding with an
// error and returning false when either is invalid
func (h *ReportHandler) parseRequest(w http.ResponseWriter, r *http.Request) (domain.ReportKind, service.ReportRequest, bool) {
	kind := domain.ReportKind(chi.URLParam(r, "report"))
	if !kind.IsValid() {
		respondWithError(w, http.StatusNotFound, fmt.Sprintf("unknown report: %s", kind))
		return "", service.ReportRequest{}, false
	}

	values := r.URL.Query()
	q := reportQuery{
		ProjectID: strings.TrimSpace(values.Get("project_id")),
		StartDate: strings.TrimSpace(values.Get("start_date")),
		EndDate:   strings.TrimSpace(values.Get("end_date")),
	}
	if raw := strings.TrimSpace(values.Get("period_days")); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "period_days must be an integer")
			return "", service.ReportRequest{}, false
		}
		q.PeriodDays = days
	}
	if err := validate.Struct(q); err != nil {
		respondValidationError(w, err)
		return "", service.ReportRequest{}, false
	}
	if h.cfg.MaxPeriodDays > 0 && q.PeriodDays > h.cfg.MaxPeriodDays {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("period_days must be at most %d", h.cfg.MaxPeriodDays))
		return "", service.ReportRequest{}, false
	}

	// Formats were checked by the validator
	req := service.ReportRequest{PeriodDays: q.PeriodDays}
	loc := h.cfg.Location()
	if q.StartDate != "" {
		start, _, _ := parseDate(q.StartDate, loc)
		req.StartDate = &start
	}
	if q.EndDate != "" {
		end, wholeDay, _ := parseDate(q.EndDate, loc)
		if wholeDay {
			end = end.AddDate(0, 0, 1).Add(-time.Millisecond)
		}
		req.EndDate = &end
	}
	if q.ProjectID != "" {
		id, err := uuid.Parse(q.ProjectID)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "project_id must be a valid UUID")
			return "", service.ReportRequest{}, false
		}
		req.ProjectID = &id
	}

	return kind, req, true
}

// parseDate accepts RFC3339 or a plain date, which is midnight in loc
func parseDate(raw string, loc *time.Location) (t time.Time, isDateOnly bool, err error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, false, nil
	}
	t, err = time.ParseInLocation(dateOnly, raw, loc)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

// statusFor maps a report failure cause to an HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, service.ErrUnknownReport):
		return http.StatusNotFound
	case errors.Is(err, analytics.ErrInvalidPeriod):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrAllSourcesFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
