package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/crm-reports/internal/analytics"
)

// ReportKind names a report pipeline
type ReportKind string

const (
	ReportSales            ReportKind = "sales"
	ReportClients          ReportKind = "clients"
	ReportProperties       ReportKind = "properties"
	ReportVendors          ReportKind = "vendors"
	ReportInteractions     ReportKind = "interactions"
	ReportFunnel           ReportKind = "funnel"
	ReportLeadSources      ReportKind = "lead-sources"
	ReportResponseTime     ReportKind = "response-time"
	ReportInterestLevels   ReportKind = "interest-levels"
	ReportClientManagement ReportKind = "client-management"
)

// ReportKinds lists every report in menu order
var ReportKinds = []ReportKind{
	ReportSales,
	ReportClients,
	ReportProperties,
	ReportVendors,
	ReportInteractions,
	ReportFunnel,
	ReportLeadSources,
	ReportResponseTime,
	ReportInterestLevels,
	ReportClientManagement,
}

// IsValid checks whether the kind names a known report
func (k ReportKind) IsValid() bool {
	for _, known := range ReportKinds {
		if k == known {
			return true
		}
	}
	return false
}

// Report is implemented by every report shape so it can be exported
type Report interface {
	Kind() ReportKind
	Window() analytics.Period
	Tables() []Table
}

// Table is a flat, named grid used by exporters
type Table struct {
	Name   string
	Header []string
	Rows   [][]interface{}
}

// ValueBucket is a grouped count with a monetary total
type ValueBucket struct {
	Key        string  `json:"key"`
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Total      float64 `json:"total"`
	Percentage float64 `json:"percentage"`
}

// MonthlyPoint is one month of a trailing trend
type MonthlyPoint struct {
	Month string  `json:"month"`
	Count int     `json:"count"`
	Value float64 `json:"value"`
}

// VendorSales is a vendor's sales in the period
type VendorSales struct {
	Username string  `json:"username"`
	Name     string  `json:"name"`
	Total    float64 `json:"total"`
	Count    int     `json:"count"`
}

func (v VendorSales) RankTotal() float64 { return v.Total }
func (v VendorSales) RankCount() int     { return v.Count }
func (v VendorSales) RankName() string   { return v.Username }

// SalesSummary totals sales in the period
type SalesSummary struct {
	TotalValue    float64 `json:"totalValue"`
	Count         int     `json:"count"`
	AverageTicket float64 `json:"averageTicket"`
	UniqueClients int     `json:"uniqueClients"`
}

// SalesReport summarizes sales by project, currency, channel and vendor
type SalesReport struct {
	Period     analytics.Period `json:"period"`
	Summary    SalesSummary     `json:"summary"`
	ByProject  []ValueBucket    `json:"byProject"`
	ByCurrency []ValueBucket    `json:"byCurrency"`
	BySource   []ValueBucket    `json:"bySource"`
	Trend      []MonthlyPoint   `json:"trend"`
	TopVendors []VendorSales    `json:"topVendors"`
}

// Kind implements Report
func (*SalesReport) Kind() ReportKind { return ReportSales }

// Window implements Report
func (r *SalesReport) Window() analytics.Period { return r.Period }

// ClientsSummary totals the client base
type ClientsSummary struct {
	Total          int     `json:"total"`
	NewInPeriod    int     `json:"newInPeriod"`
	Active         int     `json:"active"`
	Unassigned     int     `json:"unassigned"`
	Converted      int     `json:"converted"`
	ConversionRate float64 `json:"conversionRate"`
}

// VendorClients is a vendor's portfolio size
type VendorClients struct {
	Username    string  `json:"username"`
	Name        string  `json:"name"`
	Total       int     `json:"total"`
	NewInPeriod int     `json:"newInPeriod"`
	Percentage  float64 `json:"percentage"`
}

// ClientsReport segments clients by status, channel and vendor
type ClientsReport struct {
	Period   analytics.Period  `json:"period"`
	Summary  ClientsSummary    `json:"summary"`
	ByStatus []analytics.Share `json:"byStatus"`
	BySource []SourceShare     `json:"bySource"`
	ByVendor []VendorClients   `json:"byVendor"`
	Trend    []MonthlyPoint    `json:"trend"`
}

// Kind implements Report
func (*ClientsReport) Kind() ReportKind { return ReportClients }

// Window implements Report
func (r *ClientsReport) Window() analytics.Period { return r.Period }

// InventorySummary totals properties and lots
type InventorySummary struct {
	TotalUnits     int     `json:"totalUnits"`
	Properties     int     `json:"properties"`
	Lots           int     `json:"lots"`
	NewInPeriod    int     `json:"newInPeriod"`
	Available      int     `json:"available"`
	Reserved       int     `json:"reserved"`
	Sold           int     `json:"sold"`
	InventoryValue float64 `json:"inventoryValue"`
	AvailableValue float64 `json:"availableValue"`
	SoldValue      float64 `json:"soldValue"`
	OccupancyRate  float64 `json:"occupancyRate"`
}

// ProjectInventory is one project's stock
type ProjectInventory struct {
	ProjectID string  `json:"projectId"`
	Name      string  `json:"name"`
	Units     int     `json:"units"`
	Available int     `json:"available"`
	Reserved  int     `json:"reserved"`
	Sold      int     `json:"sold"`
	Value     float64 `json:"value"`
	Occupancy float64 `json:"occupancy"`
}

// PropertiesReport describes inventory across projects
type PropertiesReport struct {
	Period    analytics.Period   `json:"period"`
	Summary   InventorySummary   `json:"summary"`
	ByStatus  []analytics.Share  `json:"byStatus"`
	ByProject []ProjectInventory `json:"byProject"`
	Trend     []MonthlyPoint     `json:"trend"`
}

// Kind implements Report
func (*PropertiesReport) Kind() ReportKind { return ReportProperties }

// Window implements Report
func (r *PropertiesReport) Window() analytics.Period { return r.Period }

// VendorPerformance is one row of the vendor ranking
type VendorPerformance struct {
	Rank            int     `json:"rank"`
	Username        string  `json:"username"`
	Name            string  `json:"name"`
	SalesTotal      float64 `json:"salesTotal"`
	SalesCount      int     `json:"salesCount"`
	DistinctClients int     `json:"distinctClients"`
	Interactions    int     `json:"interactions"`
	MonthlyTarget   float64 `json:"monthlyTarget"`
	QuotaAttainment float64 `json:"quotaAttainment"`
	Conversion      float64 `json:"conversion"`
}

func (v VendorPerformance) RankTotal() float64 { return v.SalesTotal }
func (v VendorPerformance) RankCount() int     { return v.SalesCount }
func (v VendorPerformance) RankName() string   { return v.Username }

// VendorTeamSummary totals the active team
type VendorTeamSummary struct {
	ActiveVendors     int     `json:"activeVendors"`
	SalesCount        int     `json:"salesCount"`
	SalesTotal        float64 `json:"salesTotal"`
	AverageAttainment float64 `json:"averageAttainment"`
	VendorsOverQuota  int     `json:"vendorsOverQuota"`
}

// VendorPerformanceReport ranks active vendors
type VendorPerformanceReport struct {
	Period  analytics.Period    `json:"period"`
	Summary VendorTeamSummary   `json:"summary"`
	Vendors []VendorPerformance `json:"vendors"`
}

// Kind implements Report
func (*VendorPerformanceReport) Kind() ReportKind { return ReportVendors }

// Window implements Report
func (r *VendorPerformanceReport) Window() analytics.Period { return r.Period }

// VendorInteractions is a vendor's activity in the period
type VendorInteractions struct {
	Username         string         `json:"username"`
	Name             string         `json:"name"`
	Total            int            `json:"total"`
	ClientsServed    int            `json:"clientsServed"`
	TotalDuration    int            `json:"totalDuration"`
	AveragePerClient float64        `json:"averagePerClient"`
	ByType           map[string]int `json:"byType"`
}

// FollowUp is a scheduled next action on an interaction
type FollowUp struct {
	InteractionID  uuid.UUID `json:"interactionId"`
	ClientID       uuid.UUID `json:"clientId"`
	VendorUsername string    `json:"vendorUsername"`
	NextAction     string    `json:"nextAction"`
	NextActionDate time.Time `json:"nextActionDate"`
	DaysOverdue    int       `json:"daysOverdue"`
	Overdue        bool      `json:"overdue"`
}

// InteractionsSummary totals interactions in the period
type InteractionsSummary struct {
	Total            int     `json:"total"`
	ClientsContacted int     `json:"clientsContacted"`
	ActiveVendors    int     `json:"activeVendors"`
	AveragePerVendor float64 `json:"averagePerVendor"`
	TotalDuration    int     `json:"totalDuration"`
	AverageDuration  float64 `json:"averageDuration"`
	PendingFollowUps int     `json:"pendingFollowUps"`
	OverdueFollowUps int     `json:"overdueFollowUps"`
}

// InteractionsReport summarizes contact activity
type InteractionsReport struct {
	Period    analytics.Period     `json:"period"`
	Summary   InteractionsSummary  `json:"summary"`
	ByType    []analytics.Share    `json:"byType"`
	ByResult  []analytics.Share    `json:"byResult"`
	ByVendor  []VendorInteractions `json:"byVendor"`
	FollowUps []FollowUp           `json:"followUps"`
}

// Kind implements Report
func (*InteractionsReport) Kind() ReportKind { return ReportInteractions }

// Window implements Report
func (r *InteractionsReport) Window() analytics.Period { return r.Period }

// FunnelStageRow is one stage of the funnel
type FunnelStageRow struct {
	ID               string  `json:"id"`
	Label            string  `json:"label"`
	Color            string  `json:"color"`
	Count            int     `json:"count"`
	Percentage       float64 `json:"percentage"`
	ConversionToNext float64 `json:"conversionToNext"`
}

// StageConversion is the rate between two consecutive stages
type StageConversion struct {
	From string  `json:"from"`
	To   string  `json:"to"`
	Rate float64 `json:"rate"`
}

// FunnelReport shows lead progression through the sales stages
type FunnelReport struct {
	Period             analytics.Period  `json:"period"`
	Stages             []FunnelStageRow  `json:"stages"`
	Lost               FunnelStageRow    `json:"lost"`
	Conversions        []StageConversion `json:"conversions"`
	StatusDistribution []analytics.Share `json:"statusDistribution"`
	TotalLeads         int               `json:"totalLeads"`
	TotalSales         int               `json:"totalSales"`
	OverallConversion  float64           `json:"overallConversion"`
	SalesValue         float64           `json:"salesValue"`
	SalesCount         int               `json:"salesCount"`
}

// Kind implements Report
func (*FunnelReport) Kind() ReportKind { return ReportFunnel }

// Window implements Report
func (r *FunnelReport) Window() analytics.Period { return r.Period }

// SourceShare is a lead channel's share of a population
type SourceShare struct {
	Source     string  `json:"source"`
	Label      string  `json:"label"`
	Color      string  `json:"color"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// SourceEffectiveness is how often a channel's clients progress
type SourceEffectiveness struct {
	Source         string  `json:"source"`
	Label          string  `json:"label"`
	Color          string  `json:"color"`
	Total          int     `json:"total"`
	Advanced       int     `json:"advanced"`
	ConversionRate float64 `json:"conversionRate"`
}

// SourceCount is a channel's count within one trend month
type SourceCount struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}

// SourceTrendPoint is one month of the channel trend
type SourceTrendPoint struct {
	Month   string        `json:"month"`
	Total   int           `json:"total"`
	Sources []SourceCount `json:"sources"`
}

// LeadSourceSummary highlights the leading channels
type LeadSourceSummary struct {
	TotalPeriod    int     `json:"totalPeriod"`
	TotalHistoric  int     `json:"totalHistoric"`
	TopSource      string  `json:"topSource"`
	BestConversion string  `json:"bestConversion"`
	BestRate       float64 `json:"bestRate"`
}

// LeadSourceReport attributes leads to acquisition channels
type LeadSourceReport struct {
	Period        analytics.Period      `json:"period"`
	Summary       LeadSourceSummary     `json:"summary"`
	Distribution  []SourceShare         `json:"distribution"`
	Effectiveness []SourceEffectiveness `json:"effectiveness"`
	Trend         []SourceTrendPoint    `json:"trend"`
}

// Kind implements Report
func (*LeadSourceReport) Kind() ReportKind { return ReportLeadSources }

// Window implements Report
func (r *LeadSourceReport) Window() analytics.Period { return r.Period }

// VendorResponse is a vendor's contact latency
type VendorResponse struct {
	Username       string  `json:"username"`
	Name           string  `json:"name"`
	TotalClients   int     `json:"totalClients"`
	Contacted      int     `json:"contacted"`
	NeverContacted int     `json:"neverContacted"`
	AverageHours   float64 `json:"averageHours"`
	MinHours       float64 `json:"minHours"`
	MaxHours       float64 `json:"maxHours"`
	ContactRate    float64 `json:"contactRate"`
}

// ResponseAlert is a client waiting too long for contact
type ResponseAlert struct {
	ClientID       uuid.UUID           `json:"clientId"`
	ClientName     string              `json:"clientName"`
	VendorUsername string              `json:"vendorUsername"`
	Hours          float64             `json:"hours"`
	Bucket         analytics.SLABucket `json:"bucket"`
	NeverContacted bool                `json:"neverContacted"`
}

// DailyResponse is the mean response time on one day
type DailyResponse struct {
	Day          string  `json:"day"`
	AverageHours float64 `json:"averageHours"`
	Interactions int     `json:"interactions"`
}

// ResponseSummary buckets the whole client population
type ResponseSummary struct {
	TotalClients       int     `json:"totalClients"`
	Contacted          int     `json:"contacted"`
	NeverContacted     int     `json:"neverContacted"`
	GlobalAverageHours float64 `json:"globalAverageHours"`
	Normal             int     `json:"normal"`
	Attention          int     `json:"attention"`
	Alert              int     `json:"alert"`
	Critical           int     `json:"critical"`
}

// ResponseTimeReport measures SLA compliance for client contact
type ResponseTimeReport struct {
	Period    analytics.Period `json:"period"`
	Reference time.Time        `json:"reference"`
	Summary   ResponseSummary  `json:"summary"`
	Vendors   []VendorResponse `json:"vendors"`
	Alerts    []ResponseAlert  `json:"alerts"`
	Trend     []DailyResponse  `json:"trend"`
}

// Kind implements Report
func (*ResponseTimeReport) Kind() ReportKind { return ReportResponseTime }

// Window implements Report
func (r *ResponseTimeReport) Window() analytics.Period { return r.Period }

// ProjectInterest is the interest distribution within one project
type ProjectInterest struct {
	ProjectID string            `json:"projectId"`
	Name      string            `json:"name"`
	Clients   int               `json:"clients"`
	Levels    []analytics.Share `json:"levels"`
}

// ProjectOption is an entry of the project filter
type ProjectOption struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// InterestSummary totals interested clients
type InterestSummary struct {
	TotalClients  int        `json:"totalClients"`
	ProjectFilter *uuid.UUID `json:"projectFilter,omitempty"`
}

// InterestReport segments interested clients by engagement level
type InterestReport struct {
	Period    analytics.Period  `json:"period"`
	Summary   InterestSummary   `json:"summary"`
	Levels    []analytics.Share `json:"levels"`
	ByProject []ProjectInterest `json:"byProject"`
	Projects  []ProjectOption   `json:"projects"`
}

// Kind implements Report
func (*InterestReport) Kind() ReportKind { return ReportInterestLevels }

// Window implements Report
func (r *InterestReport) Window() analytics.Period { return r.Period }

// FollowUpBucket is a group of clients by recency of contact
type FollowUpBucket struct {
	State      string  `json:"state"`
	Label      string  `json:"label"`
	Color      string  `json:"color"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// VendorFollowUp is a vendor's contact coverage
type VendorFollowUp struct {
	Username       string  `json:"username"`
	Name           string  `json:"name"`
	Total          int     `json:"total"`
	Contacted      int     `json:"contacted"`
	NeverContacted int     `json:"neverContacted"`
	ContactedRate  float64 `json:"contactedRate"`
}

// ClientManagementSummary totals follow-up coverage
type ClientManagementSummary struct {
	TotalClients      int `json:"totalClients"`
	NeverContacted    int `json:"neverContacted"`
	RecentlyContacted int `json:"recentlyContacted"`
	PendingAction     int `json:"pendingAction"`
}

// ClientManagementReport shows how well the client base is being followed up
type ClientManagementReport struct {
	Period   analytics.Period        `json:"period"`
	Summary  ClientManagementSummary `json:"summary"`
	FollowUp []FollowUpBucket        `json:"followUp"`
	ByStatus []analytics.Share       `json:"byStatus"`
	ByVendor []VendorFollowUp        `json:"byVendor"`
}

// Kind implements Report
func (*ClientManagementReport) Kind() ReportKind { return ReportClientManagement }

// Window implements Report
func (r *ClientManagementReport) Window() analytics.Period { return r.Period }
