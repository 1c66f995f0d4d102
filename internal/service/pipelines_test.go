package service_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/straye-as/crm-reports/internal/analytics"
	"github.com/straye-as/crm-reports/internal/domain"
	"github.com/straye-as/crm-reports/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseTime_Buckets(t *testing.T) {
	src := newFakeSource()
	neverContacted := domain.Client{ID: uuid.New(), Name: "Rosa", Status: "por_contactar",
		AssignedVendor: ptr("lucia"), CreatedAt: hoursAgo(80)}
	fresh := domain.Client{ID: uuid.New(), Name: "Jorge", Status: "contactado",
		AssignedVendor: ptr("lucia"), CreatedAt: daysAgo(10)}
	waiting := domain.Client{ID: uuid.New(), Name: "Ana", Status: "interesado",
		AssignedVendor: ptr("marco"), CreatedAt: daysAgo(10), LastContactAt: ptr(hoursAgo(30))}
	closed := domain.Client{ID: uuid.New(), Name: "Luis", Status: "vendido", CreatedAt: daysAgo(90)}
	src.clients = []domain.Client{neverContacted, fresh, waiting, closed}
	src.interactions = []domain.Interaction{
		{ID: uuid.New(), ClientID: fresh.ID, VendorUsername: "lucia", InteractionDate: hoursAgo(10)},
	}
	src.vendors = []domain.Vendor{{Username: "lucia", FullName: "Lucía Paredes", Active: true}}
	svc := newTestService(t, src)

	result := svc.ResponseTime(adminCtx(), service.ReportRequest{})
	require.True(t, result.OK())
	report := result.Data

	assert.True(t, report.Reference.Equal(now))
	assert.Equal(t, 3, report.Summary.TotalClients, "closed clients are out of scope")
	assert.Equal(t, 2, report.Summary.Contacted)
	assert.Equal(t, 1, report.Summary.NeverContacted)
	assert.Equal(t, 1, report.Summary.Normal)
	assert.Equal(t, 1, report.Summary.Attention)
	assert.Equal(t, 0, report.Summary.Alert)
	assert.Equal(t, 1, report.Summary.Critical)
	assert.Equal(t, 20.0, report.Summary.GlobalAverageHours)

	require.Len(t, report.Alerts, 2)
	assert.Equal(t, neverContacted.ID, report.Alerts[0].ClientID)
	assert.Equal(t, analytics.SLACritical, report.Alerts[0].Bucket)
	assert.True(t, report.Alerts[0].NeverContacted)
	assert.Equal(t, 80.0, report.Alerts[0].Hours)
	assert.Equal(t, analytics.SLAAttention, report.Alerts[1].Bucket)

	require.Len(t, report.Vendors, 2)
	assert.Equal(t, "lucia", report.Vendors[0].Username)
	assert.Equal(t, "Lucía Paredes", report.Vendors[0].Name)
	assert.Equal(t, 10.0, report.Vendors[0].AverageHours)
	assert.Equal(t, 50.0, report.Vendors[0].ContactRate)
	assert.Equal(t, "marco", report.Vendors[1].Username)

	assert.Len(t, report.Trend, 31)
}

func TestResponseTime_AlertLimit(t *testing.T) {
	src := newFakeSource()
	for i := 0; i < 60; i++ {
		src.clients = append(src.clients, domain.Client{ID: uuid.New(), Status: "por_contactar", CreatedAt: daysAgo(5)})
	}
	svc := newTestService(t, src)

	result := svc.ResponseTime(adminCtx(), service.ReportRequest{})
	require.True(t, result.OK())
	assert.Equal(t, 60, result.Data.Summary.Critical)
	assert.Len(t, result.Data.Alerts, 50)
}

func TestInterestLevels_LastResultWins(t *testing.T) {
	src := newFakeSource()
	projectA := domain.Project{ID: uuid.New(), Name: "Lomas del Sol"}
	projectB := domain.Project{ID: uuid.New(), Name: "Villa Mar"}
	hot := domain.Client{ID: uuid.New(), Name: "Carla", Status: "por_contactar", CreatedAt: daysAgo(40)}
	transferred := domain.Client{ID: uuid.New(), Name: "Pedro", Status: "transferido", CreatedAt: daysAgo(40)}
	src.clients = []domain.Client{hot, transferred}
	src.projects = []domain.Project{projectA, projectB}
	src.interactions = []domain.Interaction{
		{ID: uuid.New(), ClientID: hot.ID, Result: "no_contesto", InteractionDate: daysAgo(6)},
		{ID: uuid.New(), ClientID: hot.ID, Result: "interesado", InteractionDate: daysAgo(2)},
	}
	src.links = []domain.InterestLink{
		{ID: uuid.New(), ClientID: hot.ID, ProjectID: &projectA.ID, AddedAt: daysAgo(3)},
		{ID: uuid.New(), ClientID: hot.ID, ProjectID: &projectB.ID, AddedAt: daysAgo(3)},
		{ID: uuid.New(), ClientID: transferred.ID, ProjectID: &projectA.ID, AddedAt: daysAgo(4)},
		{ID: uuid.New(), ClientID: uuid.New(), ProjectID: &projectA.ID, AddedAt: daysAgo(4)},
		{ID: uuid.New(), ClientID: transferred.ID, ProjectID: &projectB.ID, AddedAt: daysAgo(200)},
	}
	svc := newTestService(t, src)

	result := svc.InterestLevels(adminCtx(), service.ReportRequest{})
	require.True(t, result.OK())
	report := result.Data

	assert.Equal(t, 2, report.Summary.TotalClients)
	require.Len(t, report.Levels, len(analytics.InterestLevels))
	assert.Equal(t, string(analytics.InterestAlto), report.Levels[0].Key)
	assert.Equal(t, 1, report.Levels[0].Count)
	assert.Equal(t, 50.0, report.Levels[0].Percentage)

	levels := make(map[string]int)
	for _, l := range report.Levels {
		levels[l.Key] = l.Count
	}
	assert.Equal(t, 1, levels[string(analytics.InterestContactoTransferido)])
	assert.Equal(t, 0, levels[string(analytics.InterestBajo)])

	require.Len(t, report.ByProject, 2)
	assert.Equal(t, "Lomas del Sol", report.ByProject[0].Name)
	assert.Equal(t, 2, report.ByProject[0].Clients)
	assert.Equal(t, "Villa Mar", report.ByProject[1].Name)
	assert.Equal(t, 1, report.ByProject[1].Clients)
	assert.Len(t, report.Projects, 2)
}

func TestInterestLevels_ProjectFilter(t *testing.T) {
	src := newFakeSource()
	projectA, projectB := uuid.New(), uuid.New()
	c1 := domain.Client{ID: uuid.New(), Status: "contactado", CreatedAt: daysAgo(40)}
	c2 := domain.Client{ID: uuid.New(), Status: "contactado", CreatedAt: daysAgo(40)}
	src.clients = []domain.Client{c1, c2}
	src.links = []domain.InterestLink{
		{ID: uuid.New(), ClientID: c1.ID, ProjectID: &projectA, AddedAt: daysAgo(1)},
		{ID: uuid.New(), ClientID: c2.ID, ProjectID: &projectB, AddedAt: daysAgo(1)},
	}
	svc := newTestService(t, src)

	result := svc.InterestLevels(adminCtx(), service.ReportRequest{ProjectID: &projectA})
	require.True(t, result.OK())
	assert.Equal(t, 1, result.Data.Summary.TotalClients)
	assert.Equal(t, &projectA, result.Data.Summary.ProjectFilter)
	require.Len(t, result.Data.ByProject, 1)
	assert.Equal(t, projectA.String(), result.Data.ByProject[0].ProjectID)
}

func TestVendorPerformance_QuotaAndRanking(t *testing.T) {
	src := newFakeSource()
	src.vendors = []domain.Vendor{
		{Username: "zoe", Active: true, MonthlySalesTarget: ptr(0.0)},
		{Username: "bruno", Active: true, MonthlySalesTarget: ptr(100.0)},
		{Username: "ana", Active: true, MonthlySalesTarget: ptr(100.0)},
		{Username: "inactivo", Active: false, MonthlySalesTarget: ptr(100.0)},
	}
	buyer := uuid.New()
	src.sales = []domain.Sale{
		{ID: uuid.New(), VendorUsername: "zoe", TotalPrice: ptr(500.0), SaleDate: daysAgo(2), ClientID: &buyer},
		{ID: uuid.New(), VendorUsername: "bruno", TotalPrice: ptr(150.0), SaleDate: daysAgo(2)},
		{ID: uuid.New(), VendorUsername: "ana", TotalPrice: ptr(150.0), SaleDate: daysAgo(3)},
		{ID: uuid.New(), VendorUsername: "ana", TotalPrice: ptr(50.0), SaleDate: daysAgo(90)},
	}
	src.interactions = []domain.Interaction{
		{ID: uuid.New(), ClientID: buyer, VendorUsername: "zoe", InteractionDate: daysAgo(4)},
		{ID: uuid.New(), ClientID: uuid.New(), VendorUsername: "zoe", InteractionDate: daysAgo(4)},
	}
	svc := newTestService(t, src)

	result := svc.VendorPerformance(adminCtx(), service.ReportRequest{})
	require.True(t, result.OK())
	rows := result.Data.Vendors

	require.Len(t, rows, 3)
	assert.Equal(t, "zoe", rows[0].Username)
	assert.Equal(t, 1, rows[0].Rank)
	assert.Equal(t, 0.0, rows[0].QuotaAttainment, "no target means no attainment")
	assert.Equal(t, 2, rows[0].DistinctClients)
	assert.Equal(t, 2, rows[0].Interactions)

	// Equal totals and counts fall back to username order
	assert.Equal(t, "ana", rows[1].Username)
	assert.Equal(t, "bruno", rows[2].Username)
	assert.Equal(t, 150.0, rows[1].QuotaAttainment)
	assert.Equal(t, 3, rows[2].Rank)

	sum := result.Data.Summary
	assert.Equal(t, 3, sum.ActiveVendors)
	assert.Equal(t, 3, sum.SalesCount)
	assert.Equal(t, 800.0, sum.SalesTotal)
	assert.Equal(t, 150.0, sum.AverageAttainment)
	assert.Equal(t, 2, sum.VendorsOverQuota)
}

func TestLeadSources_Distribution(t *testing.T) {
	src := newFakeSource()
	for i := 0; i < 6; i++ {
		src.clients = append(src.clients, domain.Client{ID: uuid.New(), LeadSource: "web", Status: "por_contactar", CreatedAt: daysAgo(i + 1)})
	}
	for i := 0; i < 4; i++ {
		src.clients = append(src.clients, domain.Client{ID: uuid.New(), LeadSource: "referido", Status: "vendido", CreatedAt: daysAgo(i + 1)})
	}
	src.clients = append(src.clients, domain.Client{ID: uuid.New(), LeadSource: "web", Status: "contactado", CreatedAt: daysAgo(120)})
	svc := newTestService(t, src)

	result := svc.LeadSources(adminCtx(), service.ReportRequest{})
	require.True(t, result.OK())
	report := result.Data

	require.Len(t, report.Distribution, 2)
	assert.Equal(t, "web", report.Distribution[0].Source)
	assert.Equal(t, "Sitio Web", report.Distribution[0].Label)
	assert.Equal(t, 60.0, report.Distribution[0].Percentage)
	assert.Equal(t, "referido", report.Distribution[1].Source)
	assert.Equal(t, 40.0, report.Distribution[1].Percentage)

	assert.Equal(t, 10, report.Summary.TotalPeriod)
	assert.Equal(t, 11, report.Summary.TotalHistoric)
	assert.Equal(t, "web", report.Summary.TopSource)
	assert.Equal(t, "referido", report.Summary.BestConversion)
	assert.Equal(t, 100.0, report.Summary.BestRate)

	require.Len(t, report.Trend, 6)
	assert.Equal(t, "2024-06", report.Trend[5].Month)
	assert.Equal(t, 10, report.Trend[5].Total)
}

func TestFunnel_NoData(t *testing.T) {
	svc := newTestService(t, newFakeSource())

	result := svc.Funnel(adminCtx(), service.ReportRequest{})
	require.True(t, result.OK())
	report := result.Data

	require.Len(t, report.Stages, 6)
	for _, stage := range report.Stages {
		assert.Zero(t, stage.Count, stage.ID)
		assert.Zero(t, stage.ConversionToNext, stage.ID)
		assert.Zero(t, stage.Percentage, stage.ID)
	}
	assert.Len(t, report.Conversions, 5)
	assert.Zero(t, report.OverallConversion)
}

func TestFunnel_StageMembership(t *testing.T) {
	src := newFakeSource()
	src.clients = []domain.Client{
		{ID: uuid.New(), Status: "por_contactar", CreatedAt: daysAgo(1)},
		{ID: uuid.New(), Status: "contactado", CreatedAt: daysAgo(2)},
		{ID: uuid.New(), Status: "vendido", CreatedAt: daysAgo(3)},
		{ID: uuid.New(), Status: "perdido", CreatedAt: daysAgo(4)},
		{ID: uuid.New(), Status: "vendido", CreatedAt: daysAgo(100)},
	}
	src.sales = []domain.Sale{{ID: uuid.New(), TotalPrice: ptr(120000.0), SaleDate: daysAgo(1)}}
	svc := newTestService(t, src)

	result := svc.Funnel(adminCtx(), service.ReportRequest{})
	require.True(t, result.OK())
	report := result.Data

	counts := make([]int, len(report.Stages))
	for i, s := range report.Stages {
		counts[i] = s.Count
	}
	assert.Equal(t, []int{4, 2, 1, 1, 1, 1}, counts)
	assert.Equal(t, 50.0, report.Stages[0].ConversionToNext)
	assert.Equal(t, 50.0, report.Stages[1].ConversionToNext)
	assert.Zero(t, report.Stages[5].ConversionToNext)
	assert.Equal(t, 1, report.Lost.Count)
	assert.Equal(t, 25.0, report.Lost.Percentage)
	assert.Equal(t, 4, report.TotalLeads)
	assert.Equal(t, 1, report.TotalSales)
	assert.Equal(t, 25.0, report.OverallConversion)
	assert.Equal(t, 120000.0, report.SalesValue)
}

func TestSales_Breakdowns(t *testing.T) {
	src := newFakeSource()
	lomas := domain.Project{ID: uuid.New(), Name: "Lomas"}
	sol := domain.Project{ID: uuid.New(), Name: "Sol"}
	house := domain.Property{ID: uuid.New(), ProjectID: &lomas.ID}
	plot := domain.Lot{ID: uuid.New(), ProjectID: &sol.ID}
	webClient := domain.Client{ID: uuid.New(), LeadSource: "web", CreatedAt: daysAgo(60)}
	fairClient := domain.Client{ID: uuid.New(), LeadSource: "feria", CreatedAt: daysAgo(60)}
	gone := uuid.New()

	src.projects = []domain.Project{lomas, sol}
	src.properties = []domain.Property{house}
	src.lots = []domain.Lot{plot}
	src.clients = []domain.Client{webClient, fairClient}
	src.vendors = []domain.Vendor{{Username: "lucia", FullName: "Lucía Paredes", Active: true}}
	src.sales = []domain.Sale{
		{ID: uuid.New(), VendorUsername: "lucia", TotalPrice: ptr(300.0), Currency: "pen", SaleDate: daysAgo(1), PropertyID: &house.ID, ClientID: &webClient.ID},
		{ID: uuid.New(), VendorUsername: "lucia", TotalPrice: ptr(100.0), Currency: "USD", SaleDate: daysAgo(2), LotID: &plot.ID, ClientID: &fairClient.ID},
		{ID: uuid.New(), VendorUsername: "marco", TotalPrice: nil, Currency: "PEN", SaleDate: daysAgo(3), ClientID: &gone},
		{ID: uuid.New(), VendorUsername: "marco", TotalPrice: ptr(999.0), Currency: "PEN", SaleDate: daysAgo(75)},
	}
	svc := newTestService(t, src)

	result := svc.Sales(adminCtx(), service.ReportRequest{})
	require.True(t, result.OK())
	report := result.Data

	assert.Equal(t, 400.0, report.Summary.TotalValue)
	assert.Equal(t, 3, report.Summary.Count)
	assert.Equal(t, 3, report.Summary.UniqueClients)
	assert.Equal(t, 133.3, report.Summary.AverageTicket)

	require.Len(t, report.ByProject, 3)
	assert.Equal(t, "Lomas", report.ByProject[0].Key)
	assert.Equal(t, 75.0, report.ByProject[0].Percentage)
	assert.Equal(t, "Sol", report.ByProject[1].Key)
	assert.Equal(t, analytics.UnspecifiedKey, report.ByProject[2].Key)

	require.Len(t, report.ByCurrency, 2)
	assert.Equal(t, "PEN", report.ByCurrency[0].Key)
	assert.Equal(t, 2, report.ByCurrency[0].Count)

	// The sale whose buyer is gone is left out of the source breakdown
	require.Len(t, report.BySource, 2)
	assert.Equal(t, "web", report.BySource[0].Key)
	assert.Equal(t, "Sitio Web", report.BySource[0].Label)
	assert.Equal(t, "feria", report.BySource[1].Key)

	require.Len(t, report.Trend, 6)
	assert.Equal(t, "2024-04", report.Trend[3].Month)
	assert.Equal(t, 999.0, report.Trend[3].Value)
	assert.Equal(t, 400.0, report.Trend[5].Value)
	assert.Equal(t, 3, report.Trend[5].Count)

	require.Len(t, report.TopVendors, 2)
	assert.Equal(t, "lucia", report.TopVendors[0].Username)
	assert.Equal(t, "Lucía Paredes", report.TopVendors[0].Name)
}

func TestClientManagement_FollowUpBuckets(t *testing.T) {
	src := newFakeSource()
	recent := domain.Client{ID: uuid.New(), Status: "contactado", AssignedVendor: ptr("lucia"), CreatedAt: daysAgo(60)}
	stale := domain.Client{ID: uuid.New(), Status: "interesado", AssignedVendor: ptr("lucia"), CreatedAt: daysAgo(60),
		LastContactAt: ptr(daysAgo(10))}
	cold := domain.Client{ID: uuid.New(), Status: "potencial", AssignedVendor: ptr("marco"), CreatedAt: daysAgo(60),
		LastContactAt: ptr(daysAgo(45))}
	never := domain.Client{ID: uuid.New(), Status: "por_contactar", CreatedAt: daysAgo(1)}
	src.clients = []domain.Client{recent, stale, cold, never}
	src.interactions = []domain.Interaction{
		{ID: uuid.New(), ClientID: recent.ID, InteractionDate: daysAgo(2), NextAction: ptr("llamar")},
		{ID: uuid.New(), ClientID: stale.ID, InteractionDate: daysAgo(20), NextAction: ptr("ninguna")},
	}
	svc := newTestService(t, src)

	result := svc.ClientManagement(adminCtx(), service.ReportRequest{})
	require.True(t, result.OK())
	report := result.Data

	require.Len(t, report.FollowUp, 4)
	counts := make(map[string]int)
	for _, b := range report.FollowUp {
		counts[b.State] = b.Count
		assert.Equal(t, 25.0, b.Percentage, b.State)
	}
	assert.Equal(t, map[string]int{
		service.FollowUpRecent: 1,
		service.FollowUpStale:  1,
		service.FollowUpCold:   1,
		service.FollowUpNever:  1,
	}, counts)

	assert.Equal(t, 4, report.Summary.TotalClients)
	assert.Equal(t, 1, report.Summary.NeverContacted)
	assert.Equal(t, 1, report.Summary.RecentlyContacted)
	assert.Equal(t, 1, report.Summary.PendingAction)

	require.Len(t, report.ByVendor, 3)
	assert.Equal(t, "lucia", report.ByVendor[0].Username)
	assert.Equal(t, 100.0, report.ByVendor[0].ContactedRate)
}

func TestInteractions_FollowUps(t *testing.T) {
	src := newFakeSource()
	client := uuid.New()
	src.interactions = []domain.Interaction{
		{ID: uuid.New(), ClientID: client, VendorUsername: "lucia", Type: "llamada", Result: "contesto",
			InteractionDate: daysAgo(10), NextAction: ptr("visita"), NextActionDate: ptr(daysAgo(3))},
		{ID: uuid.New(), ClientID: client, VendorUsername: "lucia", Type: "whatsapp", Result: "pendiente",
			InteractionDate: daysAgo(1), NextAction: ptr("llamar"), NextActionDate: ptr(now.AddDate(0, 0, 2))},
		{ID: uuid.New(), ClientID: uuid.New(), VendorUsername: "marco", Type: "llamada", Result: "no_contesto",
			InteractionDate: daysAgo(5), NextAction: ptr("Ninguna")},
	}
	svc := newTestService(t, src)

	result := svc.Interactions(adminCtx(), service.ReportRequest{})
	require.True(t, result.OK())
	report := result.Data

	assert.Equal(t, 3, report.Summary.Total)
	assert.Equal(t, 2, report.Summary.ClientsContacted)
	assert.Equal(t, 2, report.Summary.ActiveVendors)
	assert.Equal(t, 2, report.Summary.PendingFollowUps)
	assert.Equal(t, 1, report.Summary.OverdueFollowUps)

	require.Len(t, report.FollowUps, 2)
	assert.Equal(t, 3, report.FollowUps[0].DaysOverdue)
	assert.True(t, report.FollowUps[0].Overdue)
	assert.Equal(t, -2, report.FollowUps[1].DaysOverdue)
	assert.False(t, report.FollowUps[1].Overdue)

	require.NotEmpty(t, report.ByType)
	assert.Equal(t, "llamada", report.ByType[0].Key)
	assert.Equal(t, 2, report.ByType[0].Count)
}
