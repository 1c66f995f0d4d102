package service

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/crm-reports/internal/analytics"
	"github.com/straye-as/crm-reports/internal/domain"
	"go.uber.org/zap"
)

// trendMonths is the length of every monthly trend, current month included
const trendMonths = 6

// noFollowUp is the next-action value meaning nothing is scheduled
const noFollowUp = "ninguna"

func (rc *reportContext) monthKey(t time.Time) string {
	return analytics.MonthKey(t.In(rc.loc))
}

// trendMonthKeys returns the keys of the trailing months ending with the
// month of the window end, oldest first
func (rc *reportContext) trendMonthKeys() []string {
	months := analytics.TrailingMonths(rc.period.End.In(rc.loc), trendMonths)
	keys := make([]string, len(months))
	for i, m := range months {
		keys[i] = analytics.MonthKey(m)
	}
	return keys
}

// trendStart is the first instant covered by the monthly trend
func (rc *reportContext) trendStart() time.Time {
	return analytics.TrailingMonths(rc.period.End.In(rc.loc), trendMonths)[0]
}

// fetchFrom is the earliest instant a pipeline needs rows from, covering
// both the window and the monthly trend
func (rc *reportContext) fetchFrom() time.Time {
	if ts := rc.trendStart(); ts.Before(rc.period.Start) {
		return ts
	}
	return rc.period.Start
}

// monthlyTrend zero-fills every trend month and adds rows dated between
// the trend start and the window end
func monthlyTrend[T any](rc *reportContext, rows []T, date func(T) time.Time, value func(T) float64) []domain.MonthlyPoint {
	m := analytics.NewAggMap()
	for _, k := range rc.trendMonthKeys() {
		m.Ensure(k)
	}
	start := rc.trendStart()
	for _, r := range rows {
		d := date(r)
		if d.Before(start) || d.After(rc.period.End) {
			continue
		}
		key := rc.monthKey(d)
		if c := m.Get(key); c != nil {
			v := 0.0
			if value != nil {
				v = value(r)
			}
			c.Count++
			c.Sum += v
		}
	}

	points := make([]domain.MonthlyPoint, 0, m.Len())
	m.Each(func(key string, c *analytics.Counter) {
		points = append(points, domain.MonthlyPoint{Month: key, Count: c.Count, Value: c.Sum})
	})
	return points
}

// sortShares orders shares by count descending, then key
func sortShares(shares []analytics.Share) []analytics.Share {
	sort.SliceStable(shares, func(i, j int) bool {
		if shares[i].Count != shares[j].Count {
			return shares[i].Count > shares[j].Count
		}
		return shares[i].Key < shares[j].Key
	})
	return shares
}

// valueBuckets converts an AggMap into value buckets sorted by total
// descending. Percentages are shares of the grand total value.
func valueBuckets(m *analytics.AggMap, label func(key string) string) []domain.ValueBucket {
	grand := 0.0
	m.Each(func(_ string, c *analytics.Counter) { grand += c.Sum })

	out := make([]domain.ValueBucket, 0, m.Len())
	m.Each(func(key string, c *analytics.Counter) {
		b := domain.ValueBucket{
			Key:        key,
			Count:      c.Count,
			Total:      c.Sum,
			Percentage: analytics.Percentage(c.Sum, grand),
		}
		if label != nil {
			b.Label = label(key)
		}
		out = append(out, b)
	})
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// lastInteractions indexes each client's most recent interaction at or
// before ref
func lastInteractions(rows []domain.Interaction, ref time.Time) map[uuid.UUID]*domain.Interaction {
	last := make(map[uuid.UUID]*domain.Interaction, len(rows))
	for i := range rows {
		r := &rows[i]
		if r.InteractionDate.After(ref) {
			continue
		}
		if cur, ok := last[r.ClientID]; !ok || r.InteractionDate.After(cur.InteractionDate) {
			last[r.ClientID] = r
		}
	}
	return last
}

// vendorNames maps usernames to display names
func vendorNames(vendors []domain.Vendor) map[string]string {
	names := make(map[string]string, len(vendors))
	for i := range vendors {
		names[vendors[i].Username] = vendors[i].DisplayName()
	}
	return names
}

// displayName returns the vendor's name, the username when unknown
func displayName(names map[string]string, username string) string {
	if n, ok := names[username]; ok {
		return n
	}
	return username
}

// vendorKey normalizes a vendor username into an aggregation key
func vendorKey(username string) string {
	return analytics.NormalizeKey(username)
}

// hasFollowUp reports whether an interaction schedules a next action
func hasFollowUp(i *domain.Interaction) bool {
	if i.NextAction == nil {
		return false
	}
	action := strings.ToLower(strings.TrimSpace(*i.NextAction))
	return action != "" && action != noFollowUp
}

// hoursBetween returns the non-negative hours from t to ref
func hoursBetween(t, ref time.Time) float64 {
	h := ref.Sub(t).Hours()
	if h < 0 {
		return 0
	}
	return h
}

// sourceLabeler resolves lead-source display info and logs every unknown
// tag once per report
type sourceLabeler struct {
	log    *zap.Logger
	logged map[string]bool
}

func newSourceLabeler(log *zap.Logger) *sourceLabeler {
	return &sourceLabeler{log: log, logged: make(map[string]bool)}
}

func (l *sourceLabeler) lookup(tag string) analytics.SourceInfo {
	info, known := analytics.LookupSource(tag)
	if !known && !l.logged[tag] {
		l.logged[tag] = true
		l.log.Info("Unknown lead source, using fallback label", zap.String("lead_source", tag))
	}
	return info
}

// sourceKey normalizes a stored lead-source tag
func sourceKey(tag string) string {
	return strings.ToLower(analytics.NormalizeKey(tag))
}

// resolveSales collapses every sale's target into a project once, so the
// pipelines never look at property or lot references again
func resolveSales(rc *reportContext, sales []domain.Sale, properties []domain.Property, lots []domain.Lot, projects []domain.Project) []domain.ResolvedSale {
	projectNames := make(map[uuid.UUID]string, len(projects))
	for _, p := range projects {
		projectNames[p.ID] = p.Name
	}
	propertyProject := make(map[uuid.UUID]*uuid.UUID, len(properties))
	for _, p := range properties {
		propertyProject[p.ID] = p.ProjectID
	}
	lotProject := make(map[uuid.UUID]*uuid.UUID, len(lots))
	for _, l := range lots {
		lotProject[l.ID] = l.ProjectID
	}

	out := make([]domain.ResolvedSale, 0, len(sales))
	for _, s := range sales {
		target, ambiguous := domain.TargetOf(&s)
		if ambiguous {
			rc.log.Warn("Sale references both a property and a lot, using the property",
				zap.String("sale_id", s.ID.String()))
		}

		resolved := domain.ResolvedSale{Sale: s, Target: target, ProjectName: analytics.UnspecifiedKey}
		var projectID *uuid.UUID
		switch target.Kind {
		case domain.SaleTargetProperty:
			pid, ok := propertyProject[target.ID]
			if !ok {
				rc.log.Debug("Sale references a missing property", zap.String("sale_id", s.ID.String()))
			}
			projectID = pid
		case domain.SaleTargetLot:
			pid, ok := lotProject[target.ID]
			if !ok {
				rc.log.Debug("Sale references a missing lot", zap.String("sale_id", s.ID.String()))
			}
			projectID = pid
		}
		if projectID != nil {
			resolved.ProjectID = projectID
			if name, ok := projectNames[*projectID]; ok && name != "" {
				resolved.ProjectName = name
			}
		}
		out = append(out, resolved)
	}
	return out
}
