package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/crm-reports/internal/analytics"
	"github.com/straye-as/crm-reports/internal/domain"
	"github.com/straye-as/crm-reports/internal/repository"
)

var unitStatuses = []string{domain.UnitStatusAvailable, domain.UnitStatusReserved, domain.UnitStatusSold}

func (s *ReportService) buildProperties(ctx context.Context, rc *reportContext) (*domain.PropertiesReport, error) {
	var (
		properties []domain.Property
		lots       []domain.Lot
		projects   []domain.Project
	)

	err := s.gather(ctx, rc,
		fetch("properties", &properties, func(ctx context.Context) ([]domain.Property, error) {
			return s.source.FetchProperties(ctx, repository.RowQuery{})
		}),
		fetch("lots", &lots, func(ctx context.Context) ([]domain.Lot, error) {
			return s.source.FetchLots(ctx, repository.RowQuery{})
		}),
		fetch("projects", &projects, func(ctx context.Context) ([]domain.Project, error) {
			return s.source.FetchProjects(ctx, repository.RowQuery{})
		}),
	)
	if err != nil {
		return nil, err
	}

	units := make([]domain.Unit, 0, len(properties)+len(lots))
	for _, p := range properties {
		if !p.CreatedAt.After(rc.period.End) {
			units = append(units, domain.UnitFromProperty(p))
		}
	}
	for _, l := range lots {
		if !l.CreatedAt.After(rc.period.End) {
			units = append(units, domain.UnitFromLot(l))
		}
	}

	projectNames := make(map[uuid.UUID]string, len(projects))
	for _, p := range projects {
		projectNames[p.ID] = p.Name
	}

	report := &domain.PropertiesReport{Period: rc.period}
	sum := &report.Summary
	sum.TotalUnits = len(units)

	byStatus := analytics.NewAggMap()
	for _, st := range unitStatuses {
		byStatus.Ensure(st)
	}
	byProject := make(map[string]*domain.ProjectInventory)
	var projectOrder []string

	for _, u := range units {
		status := analytics.NormalizeStatus(u.CommercialStatus)
		byStatus.Add(status, u.Price, "")

		switch u.Kind {
		case domain.UnitKindProperty:
			sum.Properties++
		case domain.UnitKindLot:
			sum.Lots++
		}
		if rc.period.Contains(u.CreatedAt) {
			sum.NewInPeriod++
		}
		sum.InventoryValue += u.Price

		projectKey := analytics.UnspecifiedKey
		projectName := analytics.UnspecifiedKey
		if u.ProjectID != nil {
			projectKey = u.ProjectID.String()
			if name, ok := projectNames[*u.ProjectID]; ok && name != "" {
				projectName = name
			}
		}
		inv, ok := byProject[projectKey]
		if !ok {
			inv = &domain.ProjectInventory{ProjectID: projectKey, Name: projectName}
			byProject[projectKey] = inv
			projectOrder = append(projectOrder, projectKey)
		}
		inv.Units++
		inv.Value += u.Price

		switch status {
		case domain.UnitStatusAvailable:
			sum.Available++
			sum.AvailableValue += u.Price
			inv.Available++
		case domain.UnitStatusReserved:
			sum.Reserved++
			inv.Reserved++
		case domain.UnitStatusSold:
			sum.Sold++
			sum.SoldValue += u.Price
			inv.Sold++
		}
	}
	sum.OccupancyRate = analytics.Rate(sum.Sold+sum.Reserved, sum.TotalUnits)

	report.ByStatus = byStatus.Distribution(sum.TotalUnits)

	report.ByProject = make([]domain.ProjectInventory, 0, len(projectOrder))
	for _, key := range projectOrder {
		inv := byProject[key]
		inv.Occupancy = analytics.Rate(inv.Sold+inv.Reserved, inv.Units)
		report.ByProject = append(report.ByProject, *inv)
	}
	sort.SliceStable(report.ByProject, func(i, j int) bool {
		if report.ByProject[i].Units != report.ByProject[j].Units {
			return report.ByProject[i].Units > report.ByProject[j].Units
		}
		return report.ByProject[i].Name < report.ByProject[j].Name
	})

	report.Trend = monthlyTrend(rc, units,
		func(u domain.Unit) time.Time { return u.CreatedAt },
		func(u domain.Unit) float64 { return u.Price },
	)

	return report, nil
}
