package service

import (
	"context"

	"github.com/straye-as/crm-reports/internal/analytics"
	"github.com/straye-as/crm-reports/internal/domain"
	"github.com/straye-as/crm-reports/internal/repository"
)

// buildFunnel counts window leads at or past each stage. Membership comes
// from the current status: a lead reached every stage up to its status's
// rank. Lost leads are counted in the first stage and the lost row only.
func (s *ReportService) buildFunnel(ctx context.Context, rc *reportContext) (*domain.FunnelReport, error) {
	var (
		clients []domain.Client
		sales   []domain.Sale
	)

	err := s.gather(ctx, rc,
		fetch("clients", &clients, func(ctx context.Context) ([]domain.Client, error) {
			return s.source.FetchClients(ctx, repository.Between("created_at", rc.period.Start, rc.period.End))
		}),
		fetch("sales", &sales, func(ctx context.Context) ([]domain.Sale, error) {
			return s.source.FetchSales(ctx, repository.Between("sale_date", rc.period.Start, rc.period.End))
		}),
	)
	if err != nil {
		return nil, err
	}

	var leads []domain.Client
	for _, c := range clients {
		if rc.period.Contains(c.CreatedAt) {
			leads = append(leads, c)
		}
	}

	counts := make([]int, len(analytics.FunnelStages))
	lost := 0
	for _, c := range leads {
		rank, isLost := analytics.FunnelRank(c.Status)
		if isLost {
			lost++
			counts[0]++
			continue
		}
		for i, stage := range analytics.FunnelStages {
			if rank >= stage.Rank {
				counts[i]++
			}
		}
	}

	total := len(leads)
	report := &domain.FunnelReport{
		Period:      rc.period,
		Stages:      make([]domain.FunnelStageRow, len(analytics.FunnelStages)),
		Conversions: make([]domain.StageConversion, 0, len(analytics.FunnelStages)-1),
		TotalLeads:  total,
	}
	for i, stage := range analytics.FunnelStages {
		row := domain.FunnelStageRow{
			ID:         stage.ID,
			Label:      stage.Label,
			Color:      stage.Color,
			Count:      counts[i],
			Percentage: analytics.Rate(counts[i], total),
		}
		// The last stage and empty stages convert at 0
		if i+1 < len(counts) {
			row.ConversionToNext = analytics.Rate(counts[i+1], counts[i])
			report.Conversions = append(report.Conversions, domain.StageConversion{
				From: stage.ID,
				To:   analytics.FunnelStages[i+1].ID,
				Rate: row.ConversionToNext,
			})
		}
		report.Stages[i] = row
	}
	report.Lost = domain.FunnelStageRow{
		ID:         analytics.LostStage.ID,
		Label:      analytics.LostStage.Label,
		Color:      analytics.LostStage.Color,
		Count:      lost,
		Percentage: analytics.Rate(lost, total),
	}

	report.StatusDistribution = sortShares(analytics.GroupBy(leads,
		func(c domain.Client) string { return analytics.NormalizeStatus(c.Status) },
		nil, nil,
	).Distribution(total))

	report.TotalSales = counts[len(counts)-1]
	report.OverallConversion = analytics.Rate(report.TotalSales, total)

	for _, sale := range sales {
		if rc.period.Contains(sale.SaleDate) {
			report.SalesValue += sale.Amount()
			report.SalesCount++
		}
	}

	return report, nil
}
