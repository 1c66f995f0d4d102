package service

import (
	"context"
	"sort"
	"time"

	"github.com/straye-as/crm-reports/internal/analytics"
	"github.com/straye-as/crm-reports/internal/domain"
	"github.com/straye-as/crm-reports/internal/repository"
)

func (s *ReportService) buildClients(ctx context.Context, rc *reportContext) (*domain.ClientsReport, error) {
	var (
		clients []domain.Client
		vendors []domain.Vendor
	)

	err := s.gather(ctx, rc,
		fetch("clients", &clients, func(ctx context.Context) ([]domain.Client, error) {
			return s.source.FetchClients(ctx, repository.RowQuery{})
		}),
		fetch("vendors", &vendors, func(ctx context.Context) ([]domain.Vendor, error) {
			return s.source.FetchVendors(ctx, repository.RowQuery{})
		}),
	)
	if err != nil {
		return nil, err
	}

	// The client base as of the window end
	var base []domain.Client
	for _, c := range clients {
		if !c.CreatedAt.After(rc.period.End) {
			base = append(base, c)
		}
	}

	report := &domain.ClientsReport{Period: rc.period}
	sum := &report.Summary
	sum.Total = len(base)

	byVendor := analytics.NewAggMap()
	newByVendor := analytics.NewAggMap()
	for _, c := range base {
		inWindow := rc.period.Contains(c.CreatedAt)
		if inWindow {
			sum.NewInPeriod++
		}
		if !analytics.IsClosedStatus(c.Status) {
			sum.Active++
		}
		if c.VendorKey() == "" {
			sum.Unassigned++
		}
		if analytics.NormalizeStatus(c.Status) == analytics.StatusVendido {
			sum.Converted++
		}

		key := vendorKey(c.VendorKey())
		byVendor.Add(key, 0, "")
		if inWindow {
			newByVendor.Add(key, 0, "")
		}
	}
	sum.ConversionRate = analytics.Rate(sum.Converted, sum.Total)

	report.ByStatus = sortShares(analytics.GroupBy(base,
		func(c domain.Client) string { return analytics.NormalizeStatus(c.Status) },
		nil, nil,
	).Distribution(sum.Total))

	report.BySource = sourceShares(newSourceLabeler(rc.log), base)

	names := vendorNames(vendors)
	report.ByVendor = make([]domain.VendorClients, 0, byVendor.Len())
	byVendor.Each(func(username string, c *analytics.Counter) {
		row := domain.VendorClients{
			Username:   username,
			Name:       displayName(names, username),
			Total:      c.Count,
			Percentage: analytics.Rate(c.Count, sum.Total),
		}
		if n := newByVendor.Get(username); n != nil {
			row.NewInPeriod = n.Count
		}
		report.ByVendor = append(report.ByVendor, row)
	})
	sort.SliceStable(report.ByVendor, func(i, j int) bool {
		if report.ByVendor[i].Total != report.ByVendor[j].Total {
			return report.ByVendor[i].Total > report.ByVendor[j].Total
		}
		return report.ByVendor[i].Username < report.ByVendor[j].Username
	})

	report.Trend = monthlyTrend(rc, base, func(c domain.Client) time.Time { return c.CreatedAt }, nil)

	return report, nil
}

// sourceShares distributes clients over their lead sources, largest first
func sourceShares(labels *sourceLabeler, clients []domain.Client) []domain.SourceShare {
	m := analytics.GroupBy(clients, func(c domain.Client) string { return sourceKey(c.LeadSource) }, nil, nil)

	out := make([]domain.SourceShare, 0, m.Len())
	for _, share := range sortShares(m.Distribution(len(clients))) {
		info := labels.lookup(share.Key)
		out = append(out, domain.SourceShare{
			Source:     share.Key,
			Label:      info.Label,
			Color:      info.Color,
			Count:      share.Count,
			Percentage: share.Percentage,
		})
	}
	return out
}
