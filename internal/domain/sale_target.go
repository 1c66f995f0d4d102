package domain

import "github.com/google/uuid"

// SaleTargetKind tells what a sale refers to
type SaleTargetKind int

const (
	SaleTargetUnassigned SaleTargetKind = iota
	SaleTargetProperty
	SaleTargetLot
)

// String returns the kind name used in logs
func (k SaleTargetKind) String() string {
	switch k {
	case SaleTargetProperty:
		return "property"
	case SaleTargetLot:
		return "lot"
	default:
		return "unassigned"
	}
}

// SaleTarget is the inventory unit a sale refers to: a property, a lot or
// nothing. Property and lot references are mutually exclusive.
type SaleTarget struct {
	Kind SaleTargetKind
	ID   uuid.UUID
}

// TargetOf resolves the sale's reference. When both references are set the
// row is malformed; the property reference is used and ambiguous is true.
func TargetOf(s *Sale) (target SaleTarget, ambiguous bool) {
	switch {
	case s.PropertyID != nil && s.LotID != nil:
		return SaleTarget{Kind: SaleTargetProperty, ID: *s.PropertyID}, true
	case s.PropertyID != nil:
		return SaleTarget{Kind: SaleTargetProperty, ID: *s.PropertyID}, false
	case s.LotID != nil:
		return SaleTarget{Kind: SaleTargetLot, ID: *s.LotID}, false
	default:
		return SaleTarget{Kind: SaleTargetUnassigned}, false
	}
}

// ResolvedSale is a sale with its target collapsed to a project name at
// ingestion, so pipelines never branch on the reference shape again.
type ResolvedSale struct {
	Sale
	Target      SaleTarget
	ProjectID   *uuid.UUID
	ProjectName string
}
