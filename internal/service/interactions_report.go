package service

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/straye-as/crm-reports/internal/analytics"
	"github.com/straye-as/crm-reports/internal/domain"
	"github.com/straye-as/crm-reports/internal/repository"
)

func (s *ReportService) buildInteractions(ctx context.Context, rc *reportContext) (*domain.InteractionsReport, error) {
	var (
		interactions []domain.Interaction
		vendors      []domain.Vendor
	)

	err := s.gather(ctx, rc,
		fetch("interactions", &interactions, func(ctx context.Context) ([]domain.Interaction, error) {
			return s.source.FetchInteractions(ctx, repository.Between("interaction_date", rc.period.Start, rc.period.End))
		}),
		fetch("vendors", &vendors, func(ctx context.Context) ([]domain.Vendor, error) {
			return s.source.FetchVendors(ctx, repository.RowQuery{})
		}),
	)
	if err != nil {
		return nil, err
	}

	var rows []domain.Interaction
	for _, i := range interactions {
		if rc.period.Contains(i.InteractionDate) {
			rows = append(rows, i)
		}
	}

	report := &domain.InteractionsReport{Period: rc.period}
	sum := &report.Summary
	sum.Total = len(rows)

	clients := make(map[string]struct{})
	byVendor := analytics.NewAggMap()
	vendorTypes := make(map[string]map[string]int)
	durationSum, withDuration := 0, 0
	for _, i := range rows {
		clients[i.ClientID.String()] = struct{}{}

		key := vendorKey(i.VendorUsername)
		byVendor.Add(key, float64(i.Minutes()), i.ClientID.String())
		types, ok := vendorTypes[key]
		if !ok {
			types = make(map[string]int)
			vendorTypes[key] = types
		}
		types[analytics.NormalizeKey(strings.ToLower(i.Type))]++

		if i.DurationMinutes != nil {
			durationSum += *i.DurationMinutes
			withDuration++
		}
	}
	sum.ClientsContacted = len(clients)
	sum.TotalDuration = durationSum
	sum.AverageDuration = analytics.Mean(float64(durationSum), withDuration)

	for _, key := range byVendor.Keys() {
		if key != analytics.UnspecifiedKey {
			sum.ActiveVendors++
		}
	}
	sum.AveragePerVendor = analytics.Mean(float64(sum.Total), sum.ActiveVendors)

	report.ByType = sortShares(analytics.GroupBy(rows,
		func(i domain.Interaction) string { return strings.ToLower(i.Type) },
		nil, nil,
	).Distribution(sum.Total))
	report.ByResult = sortShares(analytics.GroupBy(rows,
		func(i domain.Interaction) string { return strings.ToLower(i.Result) },
		nil, nil,
	).Distribution(sum.Total))

	names := vendorNames(vendors)
	report.ByVendor = make([]domain.VendorInteractions, 0, byVendor.Len())
	byVendor.Each(func(username string, c *analytics.Counter) {
		report.ByVendor = append(report.ByVendor, domain.VendorInteractions{
			Username:         username,
			Name:             displayName(names, username),
			Total:            c.Count,
			ClientsServed:    c.Unique(),
			TotalDuration:    int(c.Sum),
			AveragePerClient: analytics.Mean(float64(c.Count), c.Unique()),
			ByType:           vendorTypes[username],
		})
	})
	sort.SliceStable(report.ByVendor, func(i, j int) bool {
		if report.ByVendor[i].Total != report.ByVendor[j].Total {
			return report.ByVendor[i].Total > report.ByVendor[j].Total
		}
		return report.ByVendor[i].Username < report.ByVendor[j].Username
	})

	report.FollowUps = followUps(rows, rc.period.End)
	sum.PendingFollowUps = len(report.FollowUps)
	for _, f := range report.FollowUps {
		if f.Overdue {
			sum.OverdueFollowUps++
		}
	}

	return report, nil
}

// followUps lists scheduled next actions, most overdue first. Days overdue
// is negative while the action is still ahead of ref.
func followUps(rows []domain.Interaction, ref time.Time) []domain.FollowUp {
	out := make([]domain.FollowUp, 0)
	for i := range rows {
		r := &rows[i]
		if !hasFollowUp(r) || r.NextActionDate == nil {
			continue
		}
		days := int(math.Floor(ref.Sub(*r.NextActionDate).Hours() / 24))
		out = append(out, domain.FollowUp{
			InteractionID:  r.ID,
			ClientID:       r.ClientID,
			VendorUsername: r.VendorUsername,
			NextAction:     strings.TrimSpace(*r.NextAction),
			NextActionDate: *r.NextActionDate,
			DaysOverdue:    days,
			Overdue:        days > 0,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DaysOverdue != out[j].DaysOverdue {
			return out[i].DaysOverdue > out[j].DaysOverdue
		}
		if !out[i].NextActionDate.Equal(out[j].NextActionDate) {
			return out[i].NextActionDate.Before(out[j].NextActionDate)
		}
		return out[i].InteractionID.String() < out[j].InteractionID.String()
	})
	return out
}
