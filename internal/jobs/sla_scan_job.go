package jobs

import (
	"context"
	"time"

	"github.com/straye-as/crm-reports/internal/analytics"
	"github.com/straye-as/crm-reports/internal/auth"
	"github.com/straye-as/crm-reports/internal/domain"
	"github.com/straye-as/crm-reports/internal/service"
	"go.uber.org/zap"
)

// SLAScanJobName is the name of the response-time SLA scan job
const SLAScanJobName = "sla_scan"

// ResponseTimeReporter computes the response-time report
type ResponseTimeReporter interface {
	ResponseTime(ctx context.Context, req service.ReportRequest) domain.ReportResult[*domain.ResponseTimeReport]
}

// SLAGauge receives the number of open clients per SLA bucket
type SLAGauge interface {
	SetSLABucket(bucket string, count int)
}

// SLAScanJob periodically computes the response-time report as the system
// user, publishes the bucket counts and logs clients in the critical tier.
type SLAScanJob struct {
	reports    ResponseTimeReporter
	gauge      SLAGauge
	adminRoles []string
	logger     *zap.Logger
	timeout    time.Duration
}

// NewSLAScanJob creates a new SLA scan job.
// The timeout controls how long one scan is allowed to run.
func NewSLAScanJob(reports ResponseTimeReporter, gauge SLAGauge, adminRoles []string, logger *zap.Logger, timeout time.Duration) *SLAScanJob {
	return &SLAScanJob{
		reports:    reports,
		gauge:      gauge,
		adminRoles: adminRoles,
		logger:     logger,
		timeout:    timeout,
	}
}

// Run executes one scan. It is called by the scheduler.
func (j *SLAScanJob) Run() {
	ctx := context.Background()
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}
	_ = j.Scan(ctx)
}

// Scan computes the report and publishes its buckets. It returns the
// report summary, or nil when the report could not be computed.
func (j *SLAScanJob) Scan(ctx context.Context) *domain.ResponseSummary {
	start := time.Now()
	ctx = auth.SystemContext(ctx, j.adminRoles...)

	result := j.reports.ResponseTime(ctx, service.ReportRequest{})
	if !result.OK() {
		j.logger.Error("SLA scan failed",
			zap.String("error", result.ErrorMessage()),
			zap.Duration("duration", time.Since(start)))
		return nil
	}
	if result.Degraded() {
		j.logger.Warn("SLA scan computed with missing sources",
			zap.Strings("warnings", result.Warnings))
	}

	sum := result.Data.Summary
	counts := map[analytics.SLABucket]int{
		analytics.SLANormal:    sum.Normal,
		analytics.SLAAttention: sum.Attention,
		analytics.SLAAlert:     sum.Alert,
		analytics.SLACritical:  sum.Critical,
	}
	for _, bucket := range analytics.SLABuckets {
		j.gauge.SetSLABucket(string(bucket), counts[bucket])
	}

	for _, alert := range result.Data.Alerts {
		if alert.Bucket != analytics.SLACritical {
			continue
		}
		j.logger.Warn("client waiting beyond SLA",
			zap.String("client_id", alert.ClientID.String()),
			zap.String("client_name", alert.ClientName),
			zap.String("vendor", alert.VendorUsername),
			zap.Float64("hours", alert.Hours),
			zap.Bool("never_contacted", alert.NeverContacted))
	}

	j.logger.Info("completed SLA scan",
		zap.Int("clients", sum.TotalClients),
		zap.Int("attention", sum.Attention),
		zap.Int("alert", sum.Alert),
		zap.Int("critical", sum.Critical),
		zap.Duration("duration", time.Since(start)))

	return &sum
}
