package domain

import "github.com/straye-as/crm-reports/internal/analytics"

func shareTable(name, keyHeader string, shares []analytics.Share) Table {
	t := Table{Name: name, Header: []string{keyHeader, "Count", "Percentage"}}
	for _, s := range shares {
		t.Rows = append(t.Rows, []interface{}{s.Key, s.Count, s.Percentage})
	}
	return t
}

func valueTable(name, keyHeader string, buckets []ValueBucket) Table {
	t := Table{Name: name, Header: []string{keyHeader, "Count", "Total", "Percentage"}}
	for _, b := range buckets {
		label := b.Label
		if label == "" {
			label = b.Key
		}
		t.Rows = append(t.Rows, []interface{}{label, b.Count, b.Total, b.Percentage})
	}
	return t
}

func trendTable(name string, points []MonthlyPoint) Table {
	t := Table{Name: name, Header: []string{"Month", "Count", "Value"}}
	for _, p := range points {
		t.Rows = append(t.Rows, []interface{}{p.Month, p.Count, p.Value})
	}
	return t
}

// Tables implements Report
func (r *SalesReport) Tables() []Table {
	summary := Table{Name: "Summary", Header: []string{"Metric", "Value"}, Rows: [][]interface{}{
		{"Total value", r.Summary.TotalValue},
		{"Sales", r.Summary.Count},
		{"Average ticket", r.Summary.AverageTicket},
		{"Unique clients", r.Summary.UniqueClients},
	}}
	vendors := Table{Name: "Top vendors", Header: []string{"Username", "Name", "Total", "Count"}}
	for _, v := range r.TopVendors {
		vendors.Rows = append(vendors.Rows, []interface{}{v.Username, v.Name, v.Total, v.Count})
	}
	return []Table{
		summary,
		valueTable("By project", "Project", r.ByProject),
		valueTable("By currency", "Currency", r.ByCurrency),
		valueTable("By source", "Source", r.BySource),
		trendTable("Trend", r.Trend),
		vendors,
	}
}

// Tables implements Report
func (r *ClientsReport) Tables() []Table {
	summary := Table{Name: "Summary", Header: []string{"Metric", "Value"}, Rows: [][]interface{}{
		{"Total", r.Summary.Total},
		{"New in period", r.Summary.NewInPeriod},
		{"Active", r.Summary.Active},
		{"Unassigned", r.Summary.Unassigned},
		{"Converted", r.Summary.Converted},
		{"Conversion rate", r.Summary.ConversionRate},
	}}
	sources := Table{Name: "By source", Header: []string{"Source", "Label", "Count", "Percentage"}}
	for _, s := range r.BySource {
		sources.Rows = append(sources.Rows, []interface{}{s.Source, s.Label, s.Count, s.Percentage})
	}
	vendors := Table{Name: "By vendor", Header: []string{"Username", "Name", "Total", "New", "Percentage"}}
	for _, v := range r.ByVendor {
		vendors.Rows = append(vendors.Rows, []interface{}{v.Username, v.Name, v.Total, v.NewInPeriod, v.Percentage})
	}
	return []Table{summary, shareTable("By status", "Status", r.ByStatus), sources, vendors, trendTable("Trend", r.Trend)}
}

// Tables implements Report
func (r *PropertiesReport) Tables() []Table {
	s := r.Summary
	summary := Table{Name: "Summary", Header: []string{"Metric", "Value"}, Rows: [][]interface{}{
		{"Units", s.TotalUnits},
		{"Properties", s.Properties},
		{"Lots", s.Lots},
		{"New in period", s.NewInPeriod},
		{"Available", s.Available},
		{"Reserved", s.Reserved},
		{"Sold", s.Sold},
		{"Inventory value", s.InventoryValue},
		{"Available value", s.AvailableValue},
		{"Sold value", s.SoldValue},
		{"Occupancy rate", s.OccupancyRate},
	}}
	projects := Table{Name: "By project", Header: []string{"Project", "Units", "Available", "Reserved", "Sold", "Value", "Occupancy"}}
	for _, p := range r.ByProject {
		projects.Rows = append(projects.Rows, []interface{}{p.Name, p.Units, p.Available, p.Reserved, p.Sold, p.Value, p.Occupancy})
	}
	return []Table{summary, shareTable("By status", "Status", r.ByStatus), projects, trendTable("Trend", r.Trend)}
}

// Tables implements Report
func (r *VendorPerformanceReport) Tables() []Table {
	t := Table{Name: "Ranking", Header: []string{
		"Rank", "Username", "Name", "Sales total", "Sales", "Clients", "Interactions", "Target", "Attainment", "Conversion",
	}}
	for _, v := range r.Vendors {
		t.Rows = append(t.Rows, []interface{}{
			v.Rank, v.Username, v.Name, v.SalesTotal, v.SalesCount, v.DistinctClients,
			v.Interactions, v.MonthlyTarget, v.QuotaAttainment, v.Conversion,
		})
	}
	return []Table{t}
}

// Tables implements Report
func (r *InteractionsReport) Tables() []Table {
	vendors := Table{Name: "By vendor", Header: []string{"Username", "Name", "Interactions", "Clients", "Minutes", "Per client"}}
	for _, v := range r.ByVendor {
		vendors.Rows = append(vendors.Rows, []interface{}{v.Username, v.Name, v.Total, v.ClientsServed, v.TotalDuration, v.AveragePerClient})
	}
	followUps := Table{Name: "Follow-ups", Header: []string{"Interaction", "Client", "Vendor", "Action", "Date", "Days overdue"}}
	for _, f := range r.FollowUps {
		followUps.Rows = append(followUps.Rows, []interface{}{
			f.InteractionID.String(), f.ClientID.String(), f.VendorUsername, f.NextAction, f.NextActionDate, f.DaysOverdue,
		})
	}
	return []Table{
		shareTable("By type", "Type", r.ByType),
		shareTable("By result", "Result", r.ByResult),
		vendors,
		followUps,
	}
}

// Tables implements Report
func (r *FunnelReport) Tables() []Table {
	stages := Table{Name: "Stages", Header: []string{"Stage", "Count", "Percentage", "Conversion to next"}}
	for _, s := range r.Stages {
		stages.Rows = append(stages.Rows, []interface{}{s.Label, s.Count, s.Percentage, s.ConversionToNext})
	}
	stages.Rows = append(stages.Rows, []interface{}{r.Lost.Label, r.Lost.Count, r.Lost.Percentage, r.Lost.ConversionToNext})
	summary := Table{Name: "Summary", Header: []string{"Metric", "Value"}, Rows: [][]interface{}{
		{"Total leads", r.TotalLeads},
		{"Total sales", r.TotalSales},
		{"Overall conversion", r.OverallConversion},
		{"Sales value", r.SalesValue},
	}}
	return []Table{summary, stages, shareTable("By status", "Status", r.StatusDistribution)}
}

// Tables implements Report
func (r *LeadSourceReport) Tables() []Table {
	dist := Table{Name: "Distribution", Header: []string{"Source", "Label", "Count", "Percentage"}}
	for _, s := range r.Distribution {
		dist.Rows = append(dist.Rows, []interface{}{s.Source, s.Label, s.Count, s.Percentage})
	}
	eff := Table{Name: "Effectiveness", Header: []string{"Source", "Label", "Clients", "Advanced", "Rate"}}
	for _, e := range r.Effectiveness {
		eff.Rows = append(eff.Rows, []interface{}{e.Source, e.Label, e.Total, e.Advanced, e.ConversionRate})
	}
	trend := Table{Name: "Trend", Header: []string{"Month", "Source", "Count"}}
	for _, p := range r.Trend {
		for _, s := range p.Sources {
			trend.Rows = append(trend.Rows, []interface{}{p.Month, s.Source, s.Count})
		}
	}
	return []Table{dist, eff, trend}
}

// Tables implements Report
func (r *ResponseTimeReport) Tables() []Table {
	s := r.Summary
	summary := Table{Name: "Summary", Header: []string{"Metric", "Value"}, Rows: [][]interface{}{
		{"Clients", s.TotalClients},
		{"Contacted", s.Contacted},
		{"Never contacted", s.NeverContacted},
		{"Average hours", s.GlobalAverageHours},
		{"Normal", s.Normal},
		{"Attention", s.Attention},
		{"Alert", s.Alert},
		{"Critical", s.Critical},
	}}
	vendors := Table{Name: "By vendor", Header: []string{"Username", "Name", "Clients", "Contacted", "Never", "Avg h", "Min h", "Max h", "Contact rate"}}
	for _, v := range r.Vendors {
		vendors.Rows = append(vendors.Rows, []interface{}{
			v.Username, v.Name, v.TotalClients, v.Contacted, v.NeverContacted, v.AverageHours, v.MinHours, v.MaxHours, v.ContactRate,
		})
	}
	alerts := Table{Name: "Alerts", Header: []string{"Client", "Vendor", "Hours", "Bucket"}}
	for _, a := range r.Alerts {
		alerts.Rows = append(alerts.Rows, []interface{}{a.ClientName, a.VendorUsername, a.Hours, string(a.Bucket)})
	}
	trend := Table{Name: "Trend", Header: []string{"Day", "Average hours", "Interactions"}}
	for _, d := range r.Trend {
		trend.Rows = append(trend.Rows, []interface{}{d.Day, d.AverageHours, d.Interactions})
	}
	return []Table{summary, vendors, alerts, trend}
}

// Tables implements Report
func (r *InterestReport) Tables() []Table {
	projects := Table{Name: "By project", Header: []string{"Project", "Level", "Count", "Percentage"}}
	for _, p := range r.ByProject {
		for _, l := range p.Levels {
			projects.Rows = append(projects.Rows, []interface{}{p.Name, l.Key, l.Count, l.Percentage})
		}
	}
	return []Table{shareTable("Levels", "Level", r.Levels), projects}
}

// Tables implements Report
func (r *ClientManagementReport) Tables() []Table {
	s := r.Summary
	summary := Table{Name: "Summary", Header: []string{"Metric", "Value"}, Rows: [][]interface{}{
		{"Clients", s.TotalClients},
		{"Never contacted", s.NeverContacted},
		{"Contacted in last 7 days", s.RecentlyContacted},
		{"Pending action", s.PendingAction},
	}}
	follow := Table{Name: "Follow-up", Header: []string{"State", "Count", "Percentage"}}
	for _, b := range r.FollowUp {
		follow.Rows = append(follow.Rows, []interface{}{b.Label, b.Count, b.Percentage})
	}
	vendors := Table{Name: "By vendor", Header: []string{"Username", "Name", "Clients", "Contacted", "Never", "Rate"}}
	for _, v := range r.ByVendor {
		vendors.Rows = append(vendors.Rows, []interface{}{v.Username, v.Name, v.Total, v.Contacted, v.NeverContacted, v.ContactedRate})
	}
	return []Table{summary, follow, shareTable("By status", "Status", r.ByStatus), vendors}
}
