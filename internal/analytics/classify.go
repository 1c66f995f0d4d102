package analytics

import "strings"

// SLABucket is a severity tier for hours elapsed since last contact.
type SLABucket string

const (
	SLANormal    SLABucket = "normal"
	SLAAttention SLABucket = "attention"
	SLAAlert     SLABucket = "alert"
	SLACritical  SLABucket = "critical"
)

// SLA thresholds in hours. Each bucket is closed at its lower bound.
const (
	SLAAttentionHours = 24.0
	SLAAlertHours     = 48.0
	SLACriticalHours  = 72.0
)

// SLABuckets lists tiers from least to most severe.
var SLABuckets = []SLABucket{SLANormal, SLAAttention, SLAAlert, SLACritical}

// ClassifySLA maps hours since contact to its tier:
// [0,24) normal, [24,48) attention, [48,72) alert, [72,inf) critical.
func ClassifySLA(hours float64) SLABucket {
	switch {
	case hours >= SLACriticalHours:
		return SLACritical
	case hours >= SLAAlertHours:
		return SLAAlert
	case hours >= SLAAttentionHours:
		return SLAAttention
	default:
		return SLANormal
	}
}

// Severity orders buckets for comparisons; higher is worse.
func (b SLABucket) Severity() int {
	for i, s := range SLABuckets {
		if s == b {
			return i
		}
	}
	return 0
}

// Client statuses as stored by the CRM.
const (
	StatusPorContactar  = "por_contactar"
	StatusContactado    = "contactado"
	StatusIntermedio    = "intermedio"
	StatusPotencial     = "potencial"
	StatusInteresado    = "interesado"
	StatusEnNegociacion = "en_negociacion"
	StatusReservado     = "reservado"
	StatusVendido       = "vendido"
	StatusPerdido       = "perdido"
	StatusDesestimado   = "desestimado"
	StatusTransferido   = "transferido"
)

// NormalizeStatus lowercases and trims a stored status.
func NormalizeStatus(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// IsClosedStatus reports whether a lead has left the active pipeline.
func IsClosedStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusVendido, StatusPerdido, StatusDesestimado:
		return true
	}
	return false
}

// IsAdvancedStatus reports whether a status counts as progress for lead
// source effectiveness.
func IsAdvancedStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusContactado, StatusIntermedio, StatusPotencial, StatusInteresado,
		StatusEnNegociacion, StatusReservado, StatusVendido:
		return true
	}
	return false
}

// FunnelStage is one step of the lead-to-sale progression.
type FunnelStage struct {
	ID    string
	Label string
	Color string
	Rank  int
}

// Funnel stage ids.
const (
	StageNuevo         = "nuevo"
	StageContactado    = "contactado"
	StageInteresado    = "interesado"
	StageEnNegociacion = "en_negociacion"
	StageReservado     = "reservado"
	StageVendido       = "vendido"
	StagePerdido       = "perdido"
)

// FunnelStages is the ordered progression. The terminal lost stage is kept
// separately in LostStage.
var FunnelStages = []FunnelStage{
	{ID: StageNuevo, Label: "Nuevos Leads", Color: "#3B82F6", Rank: 0},
	{ID: StageContactado, Label: "Contactados", Color: "#8B5CF6", Rank: 1},
	{ID: StageInteresado, Label: "Interesados", Color: "#F59E0B", Rank: 2},
	{ID: StageEnNegociacion, Label: "En Negociación", Color: "#F97316", Rank: 3},
	{ID: StageReservado, Label: "Reservados", Color: "#10B981", Rank: 4},
	{ID: StageVendido, Label: "Vendidos", Color: "#059669", Rank: 5},
}

// LostStage collects leads that left the funnel.
var LostStage = FunnelStage{ID: StagePerdido, Label: "Perdidos", Color: "#EF4444", Rank: -1}

// FunnelRank returns the furthest stage rank a status represents, and
// whether the lead is lost. Unknown statuses rank as new.
func FunnelRank(status string) (rank int, lost bool) {
	switch NormalizeStatus(status) {
	case StatusContactado, StatusTransferido:
		return 1, false
	case StatusIntermedio, StatusPotencial, StatusInteresado:
		return 2, false
	case StatusEnNegociacion:
		return 3, false
	case StatusReservado:
		return 4, false
	case StatusVendido:
		return 5, false
	case StatusPerdido, StatusDesestimado:
		return 0, true
	default:
		return 0, false
	}
}

// InterestLevel is the derived engagement class of a client.
type InterestLevel string

const (
	InterestAlto                InterestLevel = "Alto"
	InterestEnContacto          InterestLevel = "En Contacto"
	InterestIntermedio          InterestLevel = "Intermedio"
	InterestBajo                InterestLevel = "Bajo"
	InterestNoInteresado        InterestLevel = "No Interesado"
	InterestDesestimado         InterestLevel = "Desestimado"
	InterestPorContactar        InterestLevel = "Por Contactar"
	InterestContactoTransferido InterestLevel = "Contacto Transferido"
)

// InterestLevels is the fixed output order.
var InterestLevels = []InterestLevel{
	InterestAlto,
	InterestIntermedio,
	InterestEnContacto,
	InterestBajo,
	InterestNoInteresado,
	InterestDesestimado,
	InterestPorContactar,
	InterestContactoTransferido,
}

var interestByResult = map[string]InterestLevel{
	"interesado":    InterestAlto,
	"contesto":      InterestEnContacto,
	"pendiente":     InterestEnContacto,
	"reagendo":      InterestIntermedio,
	"no_interesado": InterestNoInteresado,
	"cerrado":       InterestDesestimado,
	"no_contesto":   InterestBajo,
}

// ClassifyInterest derives the interest level. Without an interaction the
// status decides; otherwise the last interaction's result does, regardless
// of status.
func ClassifyInterest(status string, lastResult *string) InterestLevel {
	if lastResult == nil {
		switch NormalizeStatus(status) {
		case StatusPorContactar:
			return InterestPorContactar
		case StatusTransferido:
			return InterestContactoTransferido
		default:
			return InterestEnContacto
		}
	}
	if level, ok := interestByResult[strings.ToLower(strings.TrimSpace(*lastResult))]; ok {
		return level
	}
	return InterestBajo
}
