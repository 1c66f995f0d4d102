package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/crm-reports/internal/analytics"
	"github.com/straye-as/crm-reports/internal/auth"
	"github.com/straye-as/crm-reports/internal/config"
	"github.com/straye-as/crm-reports/internal/domain"
	"github.com/straye-as/crm-reports/internal/logger"
	"github.com/straye-as/crm-reports/internal/metrics"
	"github.com/straye-as/crm-reports/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ReportSource is the read-only storage the pipelines fetch rows from.
// Implementations return empty slices for no results and errors only for
// transport failures.
type ReportSource interface {
	FetchClients(ctx context.Context, q repository.RowQuery) ([]domain.Client, error)
	FetchSales(ctx context.Context, q repository.RowQuery) ([]domain.Sale, error)
	FetchProperties(ctx context.Context, q repository.RowQuery) ([]domain.Property, error)
	FetchLots(ctx context.Context, q repository.RowQuery) ([]domain.Lot, error)
	FetchInteractions(ctx context.Context, q repository.RowQuery) ([]domain.Interaction, error)
	FetchVendors(ctx context.Context, q repository.RowQuery) ([]domain.Vendor, error)
	FetchProjects(ctx context.Context, q repository.RowQuery) ([]domain.Project, error)
	FetchInterestLinks(ctx context.Context, q repository.RowQuery) ([]domain.InterestLink, error)
}

// ReportRequest carries the caller's period and filters
type ReportRequest struct {
	// PeriodDays is the trailing window length; 0 uses the configured default
	PeriodDays int
	// StartDate and EndDate form an explicit window and win over PeriodDays
	StartDate *time.Time
	EndDate   *time.Time
	// ProjectID narrows the interest-level report to one project
	ProjectID *uuid.UUID
}

// ReportService computes reports from rows fetched through a ReportSource
type ReportService struct {
	source     ReportSource
	cfg        config.ReportsConfig
	adminRoles []string
	loc        *time.Location
	metrics    *metrics.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// NewReportService creates a new report service
func NewReportService(source ReportSource, cfg *config.Config, m *metrics.Metrics, logger *zap.Logger) *ReportService {
	return &ReportService{
		source:     source,
		cfg:        cfg.Reports,
		adminRoles: cfg.Auth.AdminRoles,
		loc:        cfg.Reports.Location(),
		metrics:    m,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock replaces the service clock. Used by tests and replays.
func (s *ReportService) WithClock(now func() time.Time) *ReportService {
	s.now = now
	return s
}

// reportContext is the per-invocation state shared by a pipeline's steps
type reportContext struct {
	kind     domain.ReportKind
	period   analytics.Period
	req      ReportRequest
	loc      *time.Location
	log      *zap.Logger
	warnings []string
}

// fetchTask is one independent read of a pipeline's fan-out
type fetchTask struct {
	source string
	run    func(ctx context.Context) error
}

// fetch declares a task that stores its rows in dst. dst is left empty when
// the fetch fails.
func fetch[T any](source string, dst *[]T, fn func(ctx context.Context) ([]T, error)) fetchTask {
	return fetchTask{
		source: source,
		run: func(ctx context.Context) error {
			rows, err := fn(ctx)
			if err != nil {
				*dst = []T{}
				return err
			}
			if rows == nil {
				rows = []T{}
			}
			*dst = rows
			return nil
		},
	}
}

// gather runs all tasks concurrently and waits for them. Each failure is
// isolated: it is logged, counted and turned into a warning. Only when every
// task fails does gather return an error.
func (s *ReportService) gather(ctx context.Context, rc *reportContext, tasks ...fetchTask) error {
	errs := make([]error, len(tasks))

	var g errgroup.Group
	for i, t := range tasks {
		i, t := i, t
		g.Go(func() error {
			// A panicking fetch runs on its own goroutine, out of reach of run's recover
			defer func() {
				if r := recover(); r != nil {
					errs[i] = &SourceError{Source: t.source, Err: fmt.Errorf("%w: panic: %v", ErrInternal, r)}
				}
			}()

			taskCtx := ctx
			if timeout := s.cfg.FetchTimeoutDuration(); timeout > 0 {
				var cancel context.CancelFunc
				taskCtx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			if err := t.run(taskCtx); err != nil {
				errs[i] = &SourceError{Source: t.source, Err: err}
			}
			// Never fail the group; siblings keep running
			return nil
		})
	}
	_ = g.Wait()

	var failed []error
	for i, err := range errs {
		if err == nil {
			continue
		}
		failed = append(failed, err)
		rc.warnings = append(rc.warnings, fmt.Sprintf("%s unavailable", tasks[i].source))
		s.metrics.RecordSourceFailure(string(rc.kind), tasks[i].source)
		rc.log.Warn("Report source failed, continuing with empty rows",
			logger.Source(tasks[i].source),
			zap.Error(err),
		)
	}

	if len(tasks) > 0 && len(failed) == len(tasks) {
		return fmt.Errorf("%w: %w", ErrAllSourcesFailed, errors.Join(failed...))
	}
	return nil
}

// run is the shared pipeline driver: admin gate, period resolution, the
// pipeline itself, and conversion of every failure into the result shape.
// The returned error is the typed cause behind a failed result.
func run[T domain.Report](
	ctx context.Context,
	s *ReportService,
	kind domain.ReportKind,
	req ReportRequest,
	build func(ctx context.Context, rc *reportContext) (T, error),
) (result domain.ReportResult[T], cause error) {
	start := time.Now()

	userID := ""
	if user, ok := auth.FromContext(ctx); ok {
		userID = user.UserID.String()
	}
	log := logger.WithReport(s.logger, string(kind), userID)

	defer func() {
		if r := recover(); r != nil {
			log.Error("Report pipeline panicked",
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
			s.metrics.RecordReport(string(kind), "failed", time.Since(start))
			result = domain.Failed[T](ErrInternal.Error())
			cause = ErrInternal
		}
	}()

	if !auth.IsAdmin(ctx, s.adminRoles) {
		log.Warn("Report requested without admin role")
		s.metrics.RecordReport(string(kind), "unauthorized", time.Since(start))
		return domain.Failed[T](ErrUnauthorized.Error()), ErrUnauthorized
	}

	period, err := s.resolvePeriod(req)
	if err != nil {
		s.metrics.RecordReport(string(kind), "failed", time.Since(start))
		return domain.Failed[T](err.Error()), err
	}

	rc := &reportContext{
		kind:   kind,
		period: period,
		req:    req,
		loc:    s.loc,
		log:    logger.WithPeriod(log, period.Start, period.End),
	}

	data, err := build(ctx, rc)
	if err != nil {
		rc.log.Error("Report failed", zap.Error(err))
		s.metrics.RecordReport(string(kind), "failed", time.Since(start))
		return domain.Failed[T](err.Error()), err
	}

	outcome := "ok"
	if len(rc.warnings) > 0 {
		outcome = "degraded"
	}
	s.metrics.RecordReport(string(kind), outcome, time.Since(start))
	rc.log.Debug("Report computed",
		zap.String("outcome", outcome),
		zap.Duration("duration", time.Since(start)),
	)
	return domain.Succeeded(data, rc.warnings), nil
}

func (s *ReportService) resolvePeriod(req ReportRequest) (analytics.Period, error) {
	days := req.PeriodDays
	if days <= 0 && req.StartDate == nil {
		days = s.cfg.DefaultPeriodDays
	}
	return analytics.ResolvePeriod(days, req.StartDate, req.EndDate, s.now().In(s.loc))
}

// Run computes the report named by kind. The result is always populated;
// the error is the typed cause when the result carries an error, so
// transports can map it to a status.
func (s *ReportService) Run(ctx context.Context, kind domain.ReportKind, req ReportRequest) (domain.ReportResult[domain.Report], error) {
	switch kind {
	case domain.ReportSales:
		r, err := run(ctx, s, kind, req, s.buildSales)
		return erase(r), err
	case domain.ReportClients:
		r, err := run(ctx, s, kind, req, s.buildClients)
		return erase(r), err
	case domain.ReportProperties:
		r, err := run(ctx, s, kind, req, s.buildProperties)
		return erase(r), err
	case domain.ReportVendors:
		r, err := run(ctx, s, kind, req, s.buildVendorPerformance)
		return erase(r), err
	case domain.ReportInteractions:
		r, err := run(ctx, s, kind, req, s.buildInteractions)
		return erase(r), err
	case domain.ReportFunnel:
		r, err := run(ctx, s, kind, req, s.buildFunnel)
		return erase(r), err
	case domain.ReportLeadSources:
		r, err := run(ctx, s, kind, req, s.buildLeadSources)
		return erase(r), err
	case domain.ReportResponseTime:
		r, err := run(ctx, s, kind, req, s.buildResponseTime)
		return erase(r), err
	case domain.ReportInterestLevels:
		r, err := run(ctx, s, kind, req, s.buildInterestLevels)
		return erase(r), err
	case domain.ReportClientManagement:
		r, err := run(ctx, s, kind, req, s.buildClientManagement)
		return erase(r), err
	default:
		err := fmt.Errorf("%w: %s", ErrUnknownReport, kind)
		return domain.Failed[domain.Report](err.Error()), err
	}
}

func erase[T domain.Report](r domain.ReportResult[T]) domain.ReportResult[domain.Report] {
	out := domain.ReportResult[domain.Report]{Error: r.Error, Warnings: r.Warnings}
	if r.OK() {
		out.Data = r.Data
	}
	return out
}

// Sales computes the sales summary report
func (s *ReportService) Sales(ctx context.Context, req ReportRequest) domain.ReportResult[*domain.SalesReport] {
	r, _ := run(ctx, s, domain.ReportSales, req, s.buildSales)
	return r
}

// Clients computes the client base report
func (s *ReportService) Clients(ctx context.Context, req ReportRequest) domain.ReportResult[*domain.ClientsReport] {
	r, _ := run(ctx, s, domain.ReportClients, req, s.buildClients)
	return r
}

// Properties computes the inventory report
func (s *ReportService) Properties(ctx context.Context, req ReportRequest) domain.ReportResult[*domain.PropertiesReport] {
	r, _ := run(ctx, s, domain.ReportProperties, req, s.buildProperties)
	return r
}

// VendorPerformance computes the vendor ranking
func (s *ReportService) VendorPerformance(ctx context.Context, req ReportRequest) domain.ReportResult[*domain.VendorPerformanceReport] {
	r, _ := run(ctx, s, domain.ReportVendors, req, s.buildVendorPerformance)
	return r
}

// Interactions computes the contact activity report
func (s *ReportService) Interactions(ctx context.Context, req ReportRequest) domain.ReportResult[*domain.InteractionsReport] {
	r, _ := run(ctx, s, domain.ReportInteractions, req, s.buildInteractions)
	return r
}

// Funnel computes the sales funnel
func (s *ReportService) Funnel(ctx context.Context, req ReportRequest) domain.ReportResult[*domain.FunnelReport] {
	r, _ := run(ctx, s, domain.ReportFunnel, req, s.buildFunnel)
	return r
}

// LeadSources computes lead-source attribution
func (s *ReportService) LeadSources(ctx context.Context, req ReportRequest) domain.ReportResult[*domain.LeadSourceReport] {
	r, _ := run(ctx, s, domain.ReportLeadSources, req, s.buildLeadSources)
	return r
}

// ResponseTime computes SLA compliance for client contact
func (s *ReportService) ResponseTime(ctx context.Context, req ReportRequest) domain.ReportResult[*domain.ResponseTimeReport] {
	r, _ := run(ctx, s, domain.ReportResponseTime, req, s.buildResponseTime)
	return r
}

// InterestLevels computes the interest-level segmentation
func (s *ReportService) InterestLevels(ctx context.Context, req ReportRequest) domain.ReportResult[*domain.InterestReport] {
	r, _ := run(ctx, s, domain.ReportInterestLevels, req, s.buildInterestLevels)
	return r
}

// ClientManagement computes follow-up coverage of the client base
func (s *ReportService) ClientManagement(ctx context.Context, req ReportRequest) domain.ReportResult[*domain.ClientManagementReport] {
	r, _ := run(ctx, s, domain.ReportClientManagement, req, s.buildClientManagement)
	return r
}
