package service

import (
	"context"
	"sort"

	"github.com/straye-as/crm-reports/internal/analytics"
	"github.com/straye-as/crm-reports/internal/domain"
	"github.com/straye-as/crm-reports/internal/repository"
)

// Follow-up states by days since the last contact
const (
	FollowUpRecent = "recent"
	FollowUpStale  = "stale"
	FollowUpCold   = "cold"
	FollowUpNever  = "never"
)

var followUpBuckets = []domain.FollowUpBucket{
	{State: FollowUpRecent, Label: "Contactados (< 7 días)", Color: "#10B981"},
	{State: FollowUpStale, Label: "Seguimiento pendiente (7-30 días)", Color: "#F59E0B"},
	{State: FollowUpCold, Label: "Sin seguimiento (> 30 días)", Color: "#EF4444"},
	{State: FollowUpNever, Label: "Nunca contactados", Color: "#6B7280"},
}

// followUpState buckets days since contact: [0,7) recent, [7,30] stale,
// beyond 30 cold
func followUpState(days float64, contacted bool) string {
	switch {
	case !contacted:
		return FollowUpNever
	case days < 7:
		return FollowUpRecent
	case days <= 30:
		return FollowUpStale
	default:
		return FollowUpCold
	}
}

func (s *ReportService) buildClientManagement(ctx context.Context, rc *reportContext) (*domain.ClientManagementReport, error) {
	var (
		clients      []domain.Client
		interactions []domain.Interaction
		vendors      []domain.Vendor
	)

	ref := rc.period.End
	err := s.gather(ctx, rc,
		fetch("clients", &clients, func(ctx context.Context) ([]domain.Client, error) {
			return s.source.FetchClients(ctx, repository.RowQuery{})
		}),
		fetch("interactions", &interactions, func(ctx context.Context) ([]domain.Interaction, error) {
			return s.source.FetchInteractions(ctx, repository.RowQuery{})
		}),
		fetch("vendors", &vendors, func(ctx context.Context) ([]domain.Vendor, error) {
			return s.source.FetchVendors(ctx, repository.RowQuery{})
		}),
	)
	if err != nil {
		return nil, err
	}

	last := lastInteractions(interactions, ref)
	names := vendorNames(vendors)

	report := &domain.ClientManagementReport{Period: rc.period}
	sum := &report.Summary

	states := analytics.NewAggMap()
	for _, b := range followUpBuckets {
		states.Ensure(b.State)
	}
	perVendor := make(map[string]*domain.VendorFollowUp)
	var vendorOrder []string
	var base []domain.Client

	for i := range clients {
		c := &clients[i]
		if c.CreatedAt.After(ref) {
			continue
		}
		base = append(base, *c)
		sum.TotalClients++

		latest := last[c.ID]
		lastContact := c.LastContactAt
		if lastContact != nil && lastContact.After(ref) {
			lastContact = nil
		}
		if latest != nil && (lastContact == nil || latest.InteractionDate.After(*lastContact)) {
			lastContact = &latest.InteractionDate
		}

		contacted := lastContact != nil
		days := 0.0
		if contacted {
			days = hoursBetween(*lastContact, ref) / 24
		}
		state := followUpState(days, contacted)
		states.Add(state, 0, "")

		switch state {
		case FollowUpNever:
			sum.NeverContacted++
		case FollowUpRecent:
			sum.RecentlyContacted++
		}
		if latest != nil && hasFollowUp(latest) {
			sum.PendingAction++
		}

		key := vendorKey(c.VendorKey())
		vf, ok := perVendor[key]
		if !ok {
			vf = &domain.VendorFollowUp{Username: key, Name: displayName(names, key)}
			perVendor[key] = vf
			vendorOrder = append(vendorOrder, key)
		}
		vf.Total++
		if contacted {
			vf.Contacted++
		} else {
			vf.NeverContacted++
		}
	}

	report.FollowUp = make([]domain.FollowUpBucket, 0, len(followUpBuckets))
	for _, b := range followUpBuckets {
		b.Count = states.Get(b.State).Count
		b.Percentage = analytics.Rate(b.Count, sum.TotalClients)
		report.FollowUp = append(report.FollowUp, b)
	}

	report.ByStatus = sortShares(analytics.GroupBy(base,
		func(c domain.Client) string { return analytics.NormalizeStatus(c.Status) },
		nil, nil,
	).Distribution(sum.TotalClients))

	report.ByVendor = make([]domain.VendorFollowUp, 0, len(vendorOrder))
	for _, key := range vendorOrder {
		vf := perVendor[key]
		vf.ContactedRate = analytics.Rate(vf.Contacted, vf.Total)
		report.ByVendor = append(report.ByVendor, *vf)
	}
	sort.SliceStable(report.ByVendor, func(i, j int) bool {
		if report.ByVendor[i].Total != report.ByVendor[j].Total {
			return report.ByVendor[i].Total > report.ByVendor[j].Total
		}
		return report.ByVendor[i].Username < report.ByVendor[j].Username
	})

	return report, nil
}
