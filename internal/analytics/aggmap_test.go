package analytics_test

import (
	"testing"

	"github.com/straye-as/crm-reports/internal/analytics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	source string
	amount float64
	client string
}

func TestGroupBy_InsertionOrderAndUnspecified(t *testing.T) {
	rows := []row{
		{source: "web", amount: 10, client: "a"},
		{source: "", amount: 5, client: "b"},
		{source: "referido", amount: 1, client: "a"},
		{source: "web", amount: 2, client: "a"},
		{source: "  ", amount: 3, client: "c"},
	}

	m := analytics.GroupBy(rows,
		func(r row) string { return r.source },
		func(r row) float64 { return r.amount },
		func(r row) string { return r.client },
	)

	assert.Equal(t, []string{"web", analytics.UnspecifiedKey, "referido"}, m.Keys())
	assert.Equal(t, 5, m.Total())

	web := m.Get("web")
	require.NotNil(t, web)
	assert.Equal(t, 2, web.Count)
	assert.Equal(t, 12.0, web.Sum)
	assert.Equal(t, 1, web.Unique())
	assert.True(t, web.Seen("a"))

	unspecified := m.Get("")
	require.NotNil(t, unspecified)
	assert.Equal(t, 2, unspecified.Count)
	assert.Equal(t, 2, unspecified.Unique())
}

func TestAggMap_EnsureZeroFills(t *testing.T) {
	m := analytics.NewAggMap()
	m.Ensure("web")
	m.Add("referido", 0, "")

	dist := m.Distribution(m.Total())
	require.Len(t, dist, 2)
	assert.Equal(t, analytics.Share{Key: "web", Count: 0, Percentage: 0}, dist[0])
	assert.Equal(t, analytics.Share{Key: "referido", Count: 1, Percentage: 100}, dist[1])
}

func TestAggMap_DistributionExample(t *testing.T) {
	m := analytics.NewAggMap()
	for i := 0; i < 6; i++ {
		m.Add("web", 0, "")
	}
	for i := 0; i < 4; i++ {
		m.Add("referido", 0, "")
	}

	dist := m.Distribution(10)
	assert.Equal(t, []analytics.Share{
		{Key: "web", Count: 6, Percentage: 60.0},
		{Key: "referido", Count: 4, Percentage: 40.0},
	}, dist)
}

func TestAggMap_DistributionSumsToHundred(t *testing.T) {
	m := analytics.NewAggMap()
	counts := map[string]int{"web": 7, "feria": 3, "referido": 5, "otro": 1, "publicidad": 2}
	total := 0
	for k, n := range counts {
		for i := 0; i < n; i++ {
			m.Add(k, 0, "")
		}
		total += n
	}

	sum := 0.0
	for _, s := range m.Distribution(total) {
		sum += s.Percentage
	}
	assert.InDelta(t, 100.0, sum, 0.1*float64(len(counts)))
}
