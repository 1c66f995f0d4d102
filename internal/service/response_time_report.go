package service

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/crm-reports/internal/analytics"
	"github.com/straye-as/crm-reports/internal/domain"
	"github.com/straye-as/crm-reports/internal/repository"
)

// contactState is a client's position relative to the SLA at a reference time
type contactState struct {
	client    *domain.Client
	hours     float64
	contacted bool
	bucket    analytics.SLABucket
}

// measureContact derives hours since contact: the last interaction wins,
// then last_contact_at, and a never-contacted client counts from creation
func measureContact(c *domain.Client, last *domain.Interaction, ref time.Time) contactState {
	st := contactState{client: c}
	switch {
	case last != nil:
		st.hours = hoursBetween(last.InteractionDate, ref)
		st.contacted = true
	case c.LastContactAt != nil && !c.LastContactAt.After(ref):
		st.hours = hoursBetween(*c.LastContactAt, ref)
		st.contacted = true
	default:
		st.hours = hoursBetween(c.CreatedAt, ref)
	}
	st.bucket = analytics.ClassifySLA(st.hours)
	return st
}

type hoursStats struct {
	n             int
	sum, min, max float64
}

func (h *hoursStats) add(v float64) {
	if h.n == 0 || v < h.min {
		h.min = v
	}
	if h.n == 0 || v > h.max {
		h.max = v
	}
	h.n++
	h.sum += v
}

func (s *ReportService) buildResponseTime(ctx context.Context, rc *reportContext) (*domain.ResponseTimeReport, error) {
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
			return s.source.FetchInteractions(ctx, repository.RowQuery{
				Columns: []string{"id", "client_id", "vendor_username", "interaction_date"},
			})
		}),
		fetch("vendors", &vendors, func(ctx context.Context) ([]domain.Vendor, error) {
			return s.source.FetchVendors(ctx, repository.RowQuery{})
		}),
	)
	if err != nil {
		return nil, err
	}

	last := lastInteractions(interactions, ref)

	report := &domain.ResponseTimeReport{Period: rc.period, Reference: ref}
	sum := &report.Summary

	perVendor := make(map[string]*domain.VendorResponse)
	vendorHours := make(map[string]*hoursStats)
	var vendorOrder []string
	var global hoursStats
	var alerts []domain.ResponseAlert
	names := vendorNames(vendors)

	for i := range clients {
		c := &clients[i]
		// Open clients that existed at the reference time
		if c.CreatedAt.After(ref) || analytics.IsClosedStatus(c.Status) {
			continue
		}

		st := measureContact(c, last[c.ID], ref)
		sum.TotalClients++

		key := vendorKey(c.VendorKey())
		vr, ok := perVendor[key]
		if !ok {
			vr = &domain.VendorResponse{Username: key, Name: displayName(names, key)}
			perVendor[key] = vr
			vendorHours[key] = &hoursStats{}
			vendorOrder = append(vendorOrder, key)
		}
		vr.TotalClients++

		if st.contacted {
			sum.Contacted++
			vr.Contacted++
			vendorHours[key].add(st.hours)
			global.add(st.hours)
		} else {
			sum.NeverContacted++
			vr.NeverContacted++
		}

		switch st.bucket {
		case analytics.SLANormal:
			sum.Normal++
		case analytics.SLAAttention:
			sum.Attention++
		case analytics.SLAAlert:
			sum.Alert++
		case analytics.SLACritical:
			sum.Critical++
		}

		if st.bucket.Severity() >= analytics.SLAAttention.Severity() {
			alerts = append(alerts, domain.ResponseAlert{
				ClientID:       c.ID,
				ClientName:     c.Name,
				VendorUsername: key,
				Hours:          analytics.Round1(st.hours),
				Bucket:         st.bucket,
				NeverContacted: !st.contacted,
			})
		}
	}
	sum.GlobalAverageHours = analytics.Mean(global.sum, global.n)

	report.Vendors = make([]domain.VendorResponse, 0, len(vendorOrder))
	for _, key := range vendorOrder {
		vr := perVendor[key]
		h := vendorHours[key]
		vr.AverageHours = analytics.Mean(h.sum, h.n)
		vr.MinHours = analytics.Round1(h.min)
		vr.MaxHours = analytics.Round1(h.max)
		vr.ContactRate = analytics.Rate(vr.Contacted, vr.TotalClients)
		report.Vendors = append(report.Vendors, *vr)
	}
	// Fastest first; vendors without any contacted client go last
	sort.SliceStable(report.Vendors, func(i, j int) bool {
		a, b := report.Vendors[i], report.Vendors[j]
		if (a.Contacted == 0) != (b.Contacted == 0) {
			return a.Contacted > 0
		}
		if a.AverageHours != b.AverageHours {
			return a.AverageHours < b.AverageHours
		}
		return a.Username < b.Username
	})

	sort.SliceStable(alerts, func(i, j int) bool {
		if alerts[i].Hours != alerts[j].Hours {
			return alerts[i].Hours > alerts[j].Hours
		}
		return alerts[i].ClientName < alerts[j].ClientName
	})
	if s.cfg.SLAAlertLimit > 0 && len(alerts) > s.cfg.SLAAlertLimit {
		alerts = alerts[:s.cfg.SLAAlertLimit]
	}
	if alerts == nil {
		alerts = []domain.ResponseAlert{}
	}
	report.Alerts = alerts

	report.Trend = dailyResponse(rc, clients, interactions)

	return report, nil
}

// dailyResponse is the mean response time per window day. Each interaction
// responds to the client's previous interaction, or to the client's creation
// for the first one.
func dailyResponse(rc *reportContext, clients []domain.Client, interactions []domain.Interaction) []domain.DailyResponse {
	created := make(map[uuid.UUID]time.Time, len(clients))
	for _, c := range clients {
		created[c.ID] = c.CreatedAt
	}

	sorted := make([]domain.Interaction, len(interactions))
	copy(sorted, interactions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].InteractionDate.Before(sorted[j].InteractionDate)
	})

	days := analytics.NewAggMap()
	for _, d := range (analytics.Period{Start: rc.period.Start.In(rc.loc), End: rc.period.End.In(rc.loc)}).DaysInRange() {
		days.Ensure(analytics.DayKey(d))
	}

	previous := make(map[uuid.UUID]time.Time)
	for _, i := range sorted {
		prev, seen := previous[i.ClientID]
		previous[i.ClientID] = i.InteractionDate
		if !seen {
			createdAt, ok := created[i.ClientID]
			if !ok {
				// Interaction for a client that no longer exists
				continue
			}
			prev = createdAt
		}
		if !rc.period.Contains(i.InteractionDate) {
			continue
		}
		if c := days.Get(analytics.DayKey(i.InteractionDate.In(rc.loc))); c != nil {
			c.Count++
			c.Sum += math.Max(0, i.InteractionDate.Sub(prev).Hours())
		}
	}

	out := make([]domain.DailyResponse, 0, days.Len())
	days.Each(func(day string, c *analytics.Counter) {
		out = append(out, domain.DailyResponse{
			Day:          day,
			AverageHours: analytics.Mean(c.Sum, c.Count),
			Interactions: c.Count,
		})
	})
	return out
}
