package analytics_test

import (
	"testing"

	"github.com/straye-as/crm-reports/internal/analytics"
	"github.com/stretchr/testify/assert"
)

func TestClassifySLA_Boundaries(t *testing.T) {
	tests := []struct {
		hours float64
		want  analytics.SLABucket
	}{
		{0, analytics.SLANormal},
		{23.99, analytics.SLANormal},
		{24, analytics.SLAAttention},
		{47.99, analytics.SLAAttention},
		{48, analytics.SLAAlert},
		{71.99, analytics.SLAAlert},
		{72, analytics.SLACritical},
		{80, analytics.SLACritical},
		{10000, analytics.SLACritical},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, analytics.ClassifySLA(tt.hours), "hours=%v", tt.hours)
	}
}

func TestClassifySLA_TotalPartition(t *testing.T) {
	for h := 0.0; h < 200; h += 0.25 {
		b := analytics.ClassifySLA(h)
		matches := 0
		for _, candidate := range analytics.SLABuckets {
			if candidate == b {
				matches++
			}
		}
		assert.Equal(t, 1, matches, "hours=%v", h)
	}
}

func TestSLABucket_Severity(t *testing.T) {
	assert.Less(t, analytics.SLANormal.Severity(), analytics.SLAAttention.Severity())
	assert.Less(t, analytics.SLAAlert.Severity(), analytics.SLACritical.Severity())
}

func TestFunnelRank(t *testing.T) {
	tests := []struct {
		status   string
		wantRank int
		wantLost bool
	}{
		{"por_contactar", 0, false},
		{"", 0, false},
		{"contactado", 1, false},
		{"Interesado", 2, false},
		{"potencial", 2, false},
		{"en_negociacion", 3, false},
		{"reservado", 4, false},
		{"vendido", 5, false},
		{"perdido", 0, true},
		{"desestimado", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			rank, lost := analytics.FunnelRank(tt.status)
			assert.Equal(t, tt.wantRank, rank)
			assert.Equal(t, tt.wantLost, lost)
		})
	}
}

func TestClassifyInterest(t *testing.T) {
	str := func(s string) *string { return &s }

	tests := []struct {
		name   string
		status string
		result *string
		want   analytics.InterestLevel
	}{
		{"uncontacted without interaction", "por_contactar", nil, analytics.InterestPorContactar},
		{"transferred without interaction", "transferido", nil, analytics.InterestContactoTransferido},
		{"other status without interaction", "intermedio", nil, analytics.InterestEnContacto},
		{"interested result ignores status", "por_contactar", str("interesado"), analytics.InterestAlto},
		{"interested result on lost client", "perdido", str("interesado"), analytics.InterestAlto},
		{"answered", "contactado", str("contesto"), analytics.InterestEnContacto},
		{"pending", "contactado", str("pendiente"), analytics.InterestEnContacto},
		{"rescheduled", "contactado", str("reagendo"), analytics.InterestIntermedio},
		{"not interested", "contactado", str("no_interesado"), analytics.InterestNoInteresado},
		{"closed", "contactado", str("cerrado"), analytics.InterestDesestimado},
		{"no answer", "contactado", str("no_contesto"), analytics.InterestBajo},
		{"unknown result", "contactado", str("algo_raro"), analytics.InterestBajo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, analytics.ClassifyInterest(tt.status, tt.result))
		})
	}
}

func TestLookupSource(t *testing.T) {
	info, known := analytics.LookupSource("web")
	assert.True(t, known)
	assert.Equal(t, "Sitio Web", info.Label)

	info, known = analytics.LookupSource("carrier_pigeon")
	assert.False(t, known)
	assert.Equal(t, "carrier_pigeon", info.Tag)
	assert.Equal(t, "Otro", info.Label)
	assert.NotEmpty(t, info.Color)
}

func TestStatusSets(t *testing.T) {
	assert.True(t, analytics.IsClosedStatus("vendido"))
	assert.True(t, analytics.IsClosedStatus(" Perdido "))
	assert.False(t, analytics.IsClosedStatus("reservado"))

	assert.True(t, analytics.IsAdvancedStatus("reservado"))
	assert.False(t, analytics.IsAdvancedStatus("por_contactar"))
	assert.False(t, analytics.IsAdvancedStatus("perdido"))
}
