package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/straye-as/crm-reports/internal/domain"
	"gorm.io/gorm"
)

// ErrInvalidColumn is returned when a query names a column outside the
// entity's whitelist
var ErrInvalidColumn = errors.New("invalid column")

// TimeRange restricts rows to Column within [From, To]
type TimeRange struct {
	Column string
	From   time.Time
	To     time.Time
}

// RowQuery describes a read against one entity. The zero value returns
// every row with every column.
type RowQuery struct {
	Range   *TimeRange
	Equals  map[string]interface{}
	In      map[string][]interface{}
	Columns []string
}

// Between is a convenience for a RowQuery with only a time range
func Between(column string, from, to time.Time) RowQuery {
	return RowQuery{Range: &TimeRange{Column: column, From: from, To: to}}
}

// entity carries the table name and the columns a query may reference.
// Only columns in this map can be filtered on or selected (whitelist approach).
type entity struct {
	table   string
	columns map[string]bool
	order   string
}

func columns(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

var (
	clientEntity = entity{
		table:   "clients",
		columns: columns("id", "name", "status", "lead_source", "assigned_vendor", "created_at", "last_contact_at", "purchased_count", "reserved_count"),
		order:   "created_at ASC, id ASC",
	}
	saleEntity = entity{
		table:   "sales",
		columns: columns("id", "total_price", "currency", "sale_date", "vendor_username", "client_id", "property_id", "lot_id"),
		order:   "sale_date ASC, id ASC",
	}
	propertyEntity = entity{
		table:   "properties",
		columns: columns("id", "code", "commercial_status", "price", "created_at", "project_id"),
		order:   "created_at ASC, id ASC",
	}
	lotEntity = entity{
		table:   "lots",
		columns: columns("id", "code", "commercial_status", "price", "surface_area", "created_at", "project_id"),
		order:   "created_at ASC, id ASC",
	}
	interactionEntity = entity{
		table:   "interactions",
		columns: columns("id", "client_id", "vendor_username", "type", "result", "duration_minutes", "interaction_date", "next_action", "next_action_date"),
		order:   "interaction_date ASC, id ASC",
	}
	vendorEntity = entity{
		table:   "vendors",
		columns: columns("username", "full_name", "active", "monthly_sales_target"),
		order:   "username ASC",
	}
	projectEntity = entity{
		table:   "projects",
		columns: columns("id", "name", "status"),
		order:   "name ASC, id ASC",
	}
	interestEntity = entity{
		table:   "client_interests",
		columns: columns("id", "client_id", "property_id", "lot_id", "project_id", "added_at"),
		order:   "added_at ASC, id ASC",
	}
)

// ReportRepository reads the CRM tables consumed by the report pipelines
type ReportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new report repository instance
func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// FetchClients returns clients matching the query
func (r *ReportRepository) FetchClients(ctx context.Context, q RowQuery) ([]domain.Client, error) {
	return fetch[domain.Client](ctx, r.db, clientEntity, q)
}

// FetchSales returns sales matching the query
func (r *ReportRepository) FetchSales(ctx context.Context, q RowQuery) ([]domain.Sale, error) {
	return fetch[domain.Sale](ctx, r.db, saleEntity, q)
}

// FetchProperties returns properties matching the query
func (r *ReportRepository) FetchProperties(ctx context.Context, q RowQuery) ([]domain.Property, error) {
	return fetch[domain.Property](ctx, r.db, propertyEntity, q)
}

// FetchLots returns lots matching the query
func (r *ReportRepository) FetchLots(ctx context.Context, q RowQuery) ([]domain.Lot, error) {
	return fetch[domain.Lot](ctx, r.db, lotEntity, q)
}

// FetchInteractions returns interactions matching the query
func (r *ReportRepository) FetchInteractions(ctx context.Context, q RowQuery) ([]domain.Interaction, error) {
	return fetch[domain.Interaction](ctx, r.db, interactionEntity, q)
}

// FetchVendors returns vendors matching the query
func (r *ReportRepository) FetchVendors(ctx context.Context, q RowQuery) ([]domain.Vendor, error) {
	return fetch[domain.Vendor](ctx, r.db, vendorEntity, q)
}

// FetchProjects returns projects matching the query
func (r *ReportRepository) FetchProjects(ctx context.Context, q RowQuery) ([]domain.Project, error) {
	return fetch[domain.Project](ctx, r.db, projectEntity, q)
}

// FetchInterestLinks returns client interest links matching the query
func (r *ReportRepository) FetchInterestLinks(ctx context.Context, q RowQuery) ([]domain.InterestLink, error) {
	return fetch[domain.InterestLink](ctx, r.db, interestEntity, q)
}

func fetch[T any](ctx context.Context, db *gorm.DB, e entity, q RowQuery) ([]T, error) {
	tx, err := applyQuery(db.WithContext(ctx).Table(e.table), e, q)
	if err != nil {
		return nil, err
	}

	rows := make([]T, 0)
	if err := tx.Order(e.order).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", e.table, err)
	}
	return rows, nil
}

func applyQuery(tx *gorm.DB, e entity, q RowQuery) (*gorm.DB, error) {
	if len(q.Columns) > 0 {
		for _, c := range q.Columns {
			if !e.columns[c] {
				return nil, fmt.Errorf("%w: %s.%s", ErrInvalidColumn, e.table, c)
			}
		}
		tx = tx.Select(q.Columns)
	}

	if q.Range != nil {
		if !e.columns[q.Range.Column] {
			return nil, fmt.Errorf("%w: %s.%s", ErrInvalidColumn, e.table, q.Range.Column)
		}
		tx = tx.Where(q.Range.Column+" >= ? AND "+q.Range.Column+" <= ?", q.Range.From, q.Range.To)
	}

	// Sorted so the generated SQL is stable across runs
	for _, c := range sortedKeys(q.Equals) {
		if !e.columns[c] {
			return nil, fmt.Errorf("%w: %s.%s", ErrInvalidColumn, e.table, c)
		}
		tx = tx.Where(c+" = ?", q.Equals[c])
	}

	for _, c := range sortedKeys(q.In) {
		if !e.columns[c] {
			return nil, fmt.Errorf("%w: %s.%s", ErrInvalidColumn, e.table, c)
		}
		values := q.In[c]
		if len(values) == 0 {
			// An empty IN list matches nothing
			tx = tx.Where("1 = 0")
			continue
		}
		tx = tx.Where(c+" IN ?", values)
	}

	return tx, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
