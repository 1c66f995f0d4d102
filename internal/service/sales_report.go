package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/crm-reports/internal/analytics"
	"github.com/straye-as/crm-reports/internal/domain"
	"github.com/straye-as/crm-reports/internal/repository"
	"go.uber.org/zap"
)

func (s *ReportService) buildSales(ctx context.Context, rc *reportContext) (*domain.SalesReport, error) {
	var (
		sales      []domain.Sale
		clients    []domain.Client
		properties []domain.Property
		lots       []domain.Lot
		projects   []domain.Project
		vendors    []domain.Vendor
	)

	err := s.gather(ctx, rc,
		fetch("sales", &sales, func(ctx context.Context) ([]domain.Sale, error) {
			return s.source.FetchSales(ctx, repository.Between("sale_date", rc.fetchFrom(), rc.period.End))
		}),
		fetch("clients", &clients, func(ctx context.Context) ([]domain.Client, error) {
			return s.source.FetchClients(ctx, repository.RowQuery{Columns: []string{"id", "lead_source"}})
		}),
		fetch("properties", &properties, func(ctx context.Context) ([]domain.Property, error) {
			return s.source.FetchProperties(ctx, repository.RowQuery{Columns: []string{"id", "project_id"}})
		}),
		fetch("lots", &lots, func(ctx context.Context) ([]domain.Lot, error) {
			return s.source.FetchLots(ctx, repository.RowQuery{Columns: []string{"id", "project_id"}})
		}),
		fetch("projects", &projects, func(ctx context.Context) ([]domain.Project, error) {
			return s.source.FetchProjects(ctx, repository.RowQuery{})
		}),
		fetch("vendors", &vendors, func(ctx context.Context) ([]domain.Vendor, error) {
			return s.source.FetchVendors(ctx, repository.RowQuery{})
		}),
	)
	if err != nil {
		return nil, err
	}

	resolved := resolveSales(rc, sales, properties, lots, projects)
	var inWindow []domain.ResolvedSale
	for _, sale := range resolved {
		if rc.period.Contains(sale.SaleDate) {
			inWindow = append(inWindow, sale)
		}
	}

	report := &domain.SalesReport{Period: rc.period}

	buyers := make(map[uuid.UUID]struct{})
	for _, sale := range inWindow {
		report.Summary.TotalValue += sale.Amount()
		report.Summary.Count++
		if sale.ClientID != nil {
			buyers[*sale.ClientID] = struct{}{}
		}
	}
	report.Summary.UniqueClients = len(buyers)
	report.Summary.AverageTicket = analytics.Mean(report.Summary.TotalValue, report.Summary.Count)

	report.ByProject = valueBuckets(analytics.GroupBy(inWindow,
		func(s domain.ResolvedSale) string { return s.ProjectName },
		func(s domain.ResolvedSale) float64 { return s.Amount() },
		nil,
	), nil)

	report.ByCurrency = valueBuckets(analytics.GroupBy(inWindow,
		func(s domain.ResolvedSale) string { return strings.ToUpper(s.Currency) },
		func(s domain.ResolvedSale) float64 { return s.Amount() },
		nil,
	), nil)

	report.BySource = salesBySource(rc, inWindow, clients)

	report.Trend = monthlyTrend(rc, resolved,
		func(s domain.ResolvedSale) time.Time { return s.SaleDate },
		func(s domain.ResolvedSale) float64 { return s.Amount() },
	)

	names := vendorNames(vendors)
	byVendor := analytics.GroupBy(inWindow,
		func(s domain.ResolvedSale) string { return vendorKey(s.VendorUsername) },
		func(s domain.ResolvedSale) float64 { return s.Amount() },
		nil,
	)
	ranking := make([]domain.VendorSales, 0, byVendor.Len())
	byVendor.Each(func(username string, c *analytics.Counter) {
		ranking = append(ranking, domain.VendorSales{
			Username: username,
			Name:     displayName(names, username),
			Total:    c.Sum,
			Count:    c.Count,
		})
	})
	report.TopVendors = analytics.TopN(analytics.Rank(ranking), s.cfg.TopVendors)

	return report, nil
}

// salesBySource attributes sales to the buyer's lead source. Sales whose
// buyer no longer exists are excluded.
func salesBySource(rc *reportContext, sales []domain.ResolvedSale, clients []domain.Client) []domain.ValueBucket {
	sourceOf := make(map[uuid.UUID]string, len(clients))
	for _, c := range clients {
		sourceOf[c.ID] = sourceKey(c.LeadSource)
	}

	labels := newSourceLabeler(rc.log)
	m := analytics.NewAggMap()
	excluded := 0
	for _, sale := range sales {
		key := analytics.UnspecifiedKey
		if sale.ClientID != nil {
			src, ok := sourceOf[*sale.ClientID]
			if !ok {
				excluded++
				continue
			}
			key = src
		}
		m.Add(key, sale.Amount(), "")
	}
	if excluded > 0 {
		rc.log.Warn("Sales reference missing clients, excluded from source breakdown",
			zap.Int("excluded", excluded))
	}

	return valueBuckets(m, func(key string) string {
		return labels.lookup(key).Label
	})
}
