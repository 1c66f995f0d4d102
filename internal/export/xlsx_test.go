package export_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/straye-as/crm-reports/internal/analytics"
	"github.com/straye-as/crm-reports/internal/domain"
	"github.com/straye-as/crm-reports/internal/export"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func testPeriod() analytics.Period {
	end := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	return analytics.Period{Start: end.AddDate(0, 0, -30), End: end, Days: 30}
}

func TestWorkbook(t *testing.T) {
	report := &domain.LeadSourceReport{
		Period: testPeriod(),
		Distribution: []domain.SourceShare{
			{Source: "web", Label: "Sitio Web", Count: 6, Percentage: 60},
			{Source: "referido", Label: "Referido", Count: 4, Percentage: 40},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, export.Workbook(&buf, report, []string{"clients unavailable"}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	require.NotEmpty(t, sheets)
	assert.Equal(t, "Info", sheets[0])
	assert.Len(t, sheets, len(report.Tables())+1)

	kind, err := f.GetCellValue("Info", "B2")
	require.NoError(t, err)
	assert.Equal(t, "lead-sources", kind)

	rows, err := f.GetRows("Info")
	require.NoError(t, err)
	assert.Equal(t, []string{"Warning", "clients unavailable"}, rows[len(rows)-1])

	dist, err := f.GetRows("Distribution")
	require.NoError(t, err)
	require.Len(t, dist, 3)
	assert.Equal(t, []string{"Source", "Label", "Count", "Percentage"}, dist[0])
	assert.Equal(t, "web", dist[1][0])
	assert.Equal(t, "60", dist[1][3])

	styleID, err := f.GetCellStyle("Distribution", "A1")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	assert.True(t, style.Font.Bold)
}

func TestWorkbook_DuplicateSheetNames(t *testing.T) {
	report := &domain.SalesReport{Period: testPeriod()}

	var buf bytes.Buffer
	require.NoError(t, export.Workbook(&buf, report, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	seen := make(map[string]bool)
	for _, name := range f.GetSheetList() {
		assert.False(t, seen[name], name)
		seen[name] = true
		assert.LessOrEqual(t, len([]rune(name)), 31)
	}
}

func TestFilename(t *testing.T) {
	report := &domain.FunnelReport{Period: testPeriod()}
	assert.Equal(t, "funnel_20240516_20240615.xlsx", export.Filename(report))
}
