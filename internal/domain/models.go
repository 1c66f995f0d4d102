package domain

import (
	"time"

	"github.com/google/uuid"
)

// The CRM owns every table below; this service only reads them.

// Client represents a lead or client tracked through the sales pipeline
type Client struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string     `gorm:"type:varchar(200);not null" json:"name"`
	Status         string     `gorm:"type:varchar(50);column:status" json:"status"`
	LeadSource     string     `gorm:"type:varchar(50);column:lead_source" json:"leadSource"`
	AssignedVendor *string    `gorm:"type:varchar(100);column:assigned_vendor" json:"assignedVendor,omitempty"`
	CreatedAt      time.Time  `gorm:"not null" json:"createdAt"`
	LastContactAt  *time.Time `gorm:"column:last_contact_at" json:"lastContactAt,omitempty"`
	PurchasedCount *int       `gorm:"column:purchased_count" json:"purchasedCount,omitempty"`
	ReservedCount  *int       `gorm:"column:reserved_count" json:"reservedCount,omitempty"`
}

// TableName returns the table name for Client
func (Client) TableName() string { return "clients" }

// VendorKey returns the assigned vendor username or "" when unassigned
func (c *Client) VendorKey() string {
	if c.AssignedVendor == nil {
		return ""
	}
	return *c.AssignedVendor
}

// Sale represents a closed sale of a property or a lot
type Sale struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	TotalPrice     *float64   `gorm:"type:numeric(14,2);column:total_price" json:"totalPrice,omitempty"`
	Currency       string     `gorm:"type:varchar(3)" json:"currency"`
	SaleDate       time.Time  `gorm:"not null;column:sale_date" json:"saleDate"`
	VendorUsername string     `gorm:"type:varchar(100);column:vendor_username" json:"vendorUsername"`
	ClientID       *uuid.UUID `gorm:"type:uuid;column:client_id" json:"clientId,omitempty"`
	PropertyID     *uuid.UUID `gorm:"type:uuid;column:property_id" json:"propertyId,omitempty"`
	LotID          *uuid.UUID `gorm:"type:uuid;column:lot_id" json:"lotId,omitempty"`
}

// TableName returns the table name for Sale
func (Sale) TableName() string { return "sales" }

// Amount returns the sale price treating null as zero
func (s *Sale) Amount() float64 {
	return Float(s.TotalPrice)
}

// UnitKind distinguishes the two inventory tables
type UnitKind string

const (
	UnitKindProperty UnitKind = "property"
	UnitKindLot      UnitKind = "lot"
)

// Commercial statuses of inventory units
const (
	UnitStatusAvailable = "disponible"
	UnitStatusReserved  = "reservado"
	UnitStatusSold      = "vendido"
)

// Property represents a built unit for sale
type Property struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Code             string     `gorm:"type:varchar(50)" json:"code"`
	CommercialStatus string     `gorm:"type:varchar(30);column:commercial_status" json:"commercialStatus"`
	Price            *float64   `gorm:"type:numeric(14,2)" json:"price,omitempty"`
	CreatedAt        time.Time  `gorm:"not null" json:"createdAt"`
	ProjectID        *uuid.UUID `gorm:"type:uuid;column:project_id" json:"projectId,omitempty"`
}

// TableName returns the table name for Property
func (Property) TableName() string { return "properties" }

// Lot represents a plot of land for sale
type Lot struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Code             string     `gorm:"type:varchar(50)" json:"code"`
	CommercialStatus string     `gorm:"type:varchar(30);column:commercial_status" json:"commercialStatus"`
	Price            *float64   `gorm:"type:numeric(14,2)" json:"price,omitempty"`
	SurfaceArea      *float64   `gorm:"type:numeric(12,2);column:surface_area" json:"surfaceArea,omitempty"`
	CreatedAt        time.Time  `gorm:"not null" json:"createdAt"`
	ProjectID        *uuid.UUID `gorm:"type:uuid;column:project_id" json:"projectId,omitempty"`
}

// TableName returns the table name for Lot
func (Lot) TableName() string { return "lots" }

// Unit is a property or a lot normalized into one inventory shape
type Unit struct {
	ID               uuid.UUID
	Kind             UnitKind
	Code             string
	CommercialStatus string
	Price            float64
	SurfaceArea      float64
	CreatedAt        time.Time
	ProjectID        *uuid.UUID
}

// UnitFromProperty normalizes a property
func UnitFromProperty(p Property) Unit {
	return Unit{
		ID:               p.ID,
		Kind:             UnitKindProperty,
		Code:             p.Code,
		CommercialStatus: p.CommercialStatus,
		Price:            Float(p.Price),
		CreatedAt:        p.CreatedAt,
		ProjectID:        p.ProjectID,
	}
}

// UnitFromLot normalizes a lot
func UnitFromLot(l Lot) Unit {
	return Unit{
		ID:               l.ID,
		Kind:             UnitKindLot,
		Code:             l.Code,
		CommercialStatus: l.CommercialStatus,
		Price:            Float(l.Price),
		SurfaceArea:      Float(l.SurfaceArea),
		CreatedAt:        l.CreatedAt,
		ProjectID:        l.ProjectID,
	}
}

// Interaction is a logged contact event with a client
type Interaction struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID        uuid.UUID  `gorm:"type:uuid;not null;column:client_id" json:"clientId"`
	VendorUsername  string     `gorm:"type:varchar(100);column:vendor_username" json:"vendorUsername"`
	Type            string     `gorm:"type:varchar(30)" json:"type"`
	Result          string     `gorm:"type:varchar(30)" json:"result"`
	DurationMinutes *int       `gorm:"column:duration_minutes" json:"durationMinutes,omitempty"`
	InteractionDate time.Time  `gorm:"not null;column:interaction_date" json:"interactionDate"`
	NextAction      *string    `gorm:"type:varchar(50);column:next_action" json:"nextAction,omitempty"`
	NextActionDate  *time.Time `gorm:"column:next_action_date" json:"nextActionDate,omitempty"`
}

// TableName returns the table name for Interaction
func (Interaction) TableName() string { return "interactions" }

// Minutes returns the duration treating null as zero
func (i *Interaction) Minutes() int {
	return Int(i.DurationMinutes)
}

// Vendor is a salesperson identified by username
type Vendor struct {
	Username           string   `gorm:"type:varchar(100);primaryKey" json:"username"`
	FullName           string   `gorm:"type:varchar(200);column:full_name" json:"fullName"`
	Active             bool     `gorm:"not null;default:true" json:"active"`
	MonthlySalesTarget *float64 `gorm:"type:numeric(14,2);column:monthly_sales_target" json:"monthlySalesTarget,omitempty"`
}

// TableName returns the table name for Vendor
func (Vendor) TableName() string { return "vendors" }

// DisplayName returns the full name, falling back to the username
func (v *Vendor) DisplayName() string {
	if v.FullName != "" {
		return v.FullName
	}
	return v.Username
}

// Project groups properties and lots
type Project struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name   string    `gorm:"type:varchar(200);not null" json:"name"`
	Status string    `gorm:"type:varchar(30)" json:"status"`
}

// TableName returns the table name for Project
func (Project) TableName() string { return "projects" }

// InterestLink records a client's interest in a property or lot
type InterestLink struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID   uuid.UUID  `gorm:"type:uuid;not null;column:client_id" json:"clientId"`
	PropertyID *uuid.UUID `gorm:"type:uuid;column:property_id" json:"propertyId,omitempty"`
	LotID      *uuid.UUID `gorm:"type:uuid;column:lot_id" json:"lotId,omitempty"`
	ProjectID  *uuid.UUID `gorm:"type:uuid;column:project_id" json:"projectId,omitempty"`
	AddedAt    time.Time  `gorm:"not null;column:added_at" json:"addedAt"`
}

// TableName returns the table name for InterestLink
func (InterestLink) TableName() string { return "client_interests" }

// Float dereferences a nullable numeric, nil as zero
func Float(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// Int dereferences a nullable integer, nil as zero
func Int(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
