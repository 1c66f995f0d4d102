package service

import (
	"context"

	"github.com/straye-as/crm-reports/internal/analytics"
	"github.com/straye-as/crm-reports/internal/domain"
	"github.com/straye-as/crm-reports/internal/repository"
)

func (s *ReportService) buildVendorPerformance(ctx context.Context, rc *reportContext) (*domain.VendorPerformanceReport, error) {
	var (
		vendors      []domain.Vendor
		sales        []domain.Sale
		interactions []domain.Interaction
	)

	err := s.gather(ctx, rc,
		fetch("vendors", &vendors, func(ctx context.Context) ([]domain.Vendor, error) {
			return s.source.FetchVendors(ctx, repository.RowQuery{Equals: map[string]interface{}{"active": true}})
		}),
		fetch("sales", &sales, func(ctx context.Context) ([]domain.Sale, error) {
			return s.source.FetchSales(ctx, repository.Between("sale_date", rc.period.Start, rc.period.End))
		}),
		fetch("interactions", &interactions, func(ctx context.Context) ([]domain.Interaction, error) {
			return s.source.FetchInteractions(ctx, repository.Between("interaction_date", rc.period.Start, rc.period.End))
		}),
	)
	if err != nil {
		return nil, err
	}

	// Clients served counts buyers and contacted clients together
	served := analytics.NewAggMap()
	salesBy := analytics.NewAggMap()
	for _, sale := range sales {
		if !rc.period.Contains(sale.SaleDate) {
			continue
		}
		clientID := ""
		if sale.ClientID != nil {
			clientID = sale.ClientID.String()
		}
		salesBy.Add(sale.VendorUsername, sale.Amount(), "")
		served.Add(sale.VendorUsername, 0, clientID)
	}
	interactionsBy := analytics.NewAggMap()
	for _, i := range interactions {
		if !rc.period.Contains(i.InteractionDate) {
			continue
		}
		interactionsBy.Add(i.VendorUsername, 0, "")
		served.Add(i.VendorUsername, 0, i.ClientID.String())
	}

	rows := make([]domain.VendorPerformance, 0, len(vendors))
	for _, v := range vendors {
		if !v.Active {
			continue
		}
		row := domain.VendorPerformance{
			Username:      v.Username,
			Name:          v.DisplayName(),
			MonthlyTarget: domain.Float(v.MonthlySalesTarget),
		}
		if c := salesBy.Get(v.Username); c != nil {
			row.SalesTotal = c.Sum
			row.SalesCount = c.Count
		}
		if c := served.Get(v.Username); c != nil {
			row.DistinctClients = c.Unique()
		}
		if c := interactionsBy.Get(v.Username); c != nil {
			row.Interactions = c.Count
		}
		// A zero target means no target, never "target met"
		row.QuotaAttainment = analytics.Percentage(row.SalesTotal, row.MonthlyTarget)
		row.Conversion = analytics.Rate(row.DistinctClients, row.SalesCount)
		rows = append(rows, row)
	}

	analytics.Rank(rows)

	report := &domain.VendorPerformanceReport{Period: rc.period, Vendors: rows}
	sum := &report.Summary
	sum.ActiveVendors = len(rows)
	attainment, withTarget := 0.0, 0
	for i := range rows {
		rows[i].Rank = i + 1
		sum.SalesCount += rows[i].SalesCount
		sum.SalesTotal += rows[i].SalesTotal
		if rows[i].MonthlyTarget > 0 {
			attainment += rows[i].QuotaAttainment
			withTarget++
			if rows[i].QuotaAttainment >= 100 {
				sum.VendorsOverQuota++
			}
		}
	}
	sum.AverageAttainment = analytics.Mean(attainment, withTarget)

	return report, nil
}
