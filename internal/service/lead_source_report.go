package service

import (
	"context"
	"sort"

	"github.com/straye-as/crm-reports/internal/analytics"
	"github.com/straye-as/crm-reports/internal/domain"
	"github.com/straye-as/crm-reports/internal/repository"
)

func (s *ReportService) buildLeadSources(ctx context.Context, rc *reportContext) (*domain.LeadSourceReport, error) {
	var clients []domain.Client

	// Effectiveness needs the whole history, so every client is fetched once
	err := s.gather(ctx, rc,
		fetch("clients", &clients, func(ctx context.Context) ([]domain.Client, error) {
			return s.source.FetchClients(ctx, repository.RowQuery{
				Columns: []string{"id", "status", "lead_source", "created_at"},
			})
		}),
	)
	if err != nil {
		return nil, err
	}

	labels := newSourceLabeler(rc.log)
	report := &domain.LeadSourceReport{Period: rc.period}

	var inWindow []domain.Client
	for _, c := range clients {
		if rc.period.Contains(c.CreatedAt) {
			inWindow = append(inWindow, c)
		}
	}
	report.Distribution = sourceShares(labels, inWindow)
	report.Effectiveness = sourceEffectiveness(labels, clients)
	report.Trend = sourceTrend(rc, clients)

	sum := &report.Summary
	sum.TotalPeriod = len(inWindow)
	sum.TotalHistoric = len(clients)
	if len(report.Distribution) > 0 {
		sum.TopSource = report.Distribution[0].Source
	}
	for _, e := range report.Effectiveness {
		if e.Total > 0 {
			sum.BestConversion = e.Source
			sum.BestRate = e.ConversionRate
			break
		}
	}

	return report, nil
}

// sourceEffectiveness is the share of each source's clients with an advanced
// status, best first
func sourceEffectiveness(labels *sourceLabeler, clients []domain.Client) []domain.SourceEffectiveness {
	totals := analytics.NewAggMap()
	advanced := analytics.NewAggMap()
	for _, c := range clients {
		key := sourceKey(c.LeadSource)
		totals.Add(key, 0, "")
		if analytics.IsAdvancedStatus(c.Status) {
			advanced.Add(key, 0, "")
		}
	}

	out := make([]domain.SourceEffectiveness, 0, totals.Len())
	totals.Each(func(key string, c *analytics.Counter) {
		info := labels.lookup(key)
		row := domain.SourceEffectiveness{
			Source: key,
			Label:  info.Label,
			Color:  info.Color,
			Total:  c.Count,
		}
		if a := advanced.Get(key); a != nil {
			row.Advanced = a.Count
		}
		row.ConversionRate = analytics.Rate(row.Advanced, row.Total)
		out = append(out, row)
	})
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ConversionRate != out[j].ConversionRate {
			return out[i].ConversionRate > out[j].ConversionRate
		}
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Source < out[j].Source
	})
	return out
}

// sourceTrend counts leads per source for each trailing month. Every known
// source and every observed source appears in every month, zero-filled.
func sourceTrend(rc *reportContext, clients []domain.Client) []domain.SourceTrendPoint {
	sources := analytics.NewAggMap()
	for _, tag := range analytics.KnownSourceTags() {
		sources.Ensure(tag)
	}

	months := rc.trendMonthKeys()
	perMonth := make(map[string]*analytics.AggMap, len(months))
	for _, m := range months {
		perMonth[m] = analytics.NewAggMap()
	}

	start := rc.trendStart()
	for _, c := range clients {
		if c.CreatedAt.Before(start) || c.CreatedAt.After(rc.period.End) {
			continue
		}
		bucket, ok := perMonth[rc.monthKey(c.CreatedAt)]
		if !ok {
			continue
		}
		key := sourceKey(c.LeadSource)
		sources.Ensure(key)
		bucket.Add(key, 0, "")
	}

	out := make([]domain.SourceTrendPoint, 0, len(months))
	for _, m := range months {
		bucket := perMonth[m]
		point := domain.SourceTrendPoint{
			Month:   m,
			Total:   bucket.Total(),
			Sources: make([]domain.SourceCount, 0, sources.Len()),
		}
		for _, tag := range sources.Keys() {
			n := 0
			if c := bucket.Get(tag); c != nil {
				n = c.Count
			}
			point.Sources = append(point.Sources, domain.SourceCount{Source: tag, Count: n})
		}
		out = append(out, point)
	}
	return out
}
