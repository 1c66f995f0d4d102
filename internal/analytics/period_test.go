package analytics_test

import (
	"testing"
	"time"

	"github.com/straye-as/crm-reports/internal/analytics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePeriod(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	t.Run("relative days end now", func(t *testing.T) {
		p, err := analytics.ResolvePeriod(7, nil, nil, now)
		require.NoError(t, err)
		assert.Equal(t, now, p.End)
		assert.Equal(t, now.AddDate(0, 0, -7), p.Start)
		assert.Equal(t, 7, p.Days)
	})

	t.Run("non-positive days default to 30", func(t *testing.T) {
		p, err := analytics.ResolvePeriod(0, nil, nil, now)
		require.NoError(t, err)
		assert.Equal(t, analytics.DefaultPeriodDays, p.Days)
		assert.Equal(t, now.AddDate(0, 0, -30), p.Start)
	})

	t.Run("explicit pair wins over days", func(t *testing.T) {
		p, err := analytics.ResolvePeriod(90, &start, &end, now)
		require.NoError(t, err)
		assert.Equal(t, start, p.Start)
		assert.Equal(t, end, p.End)
		assert.Equal(t, 30, p.Days)
	})

	t.Run("explicit start without end ends now", func(t *testing.T) {
		p, err := analytics.ResolvePeriod(0, &start, nil, now)
		require.NoError(t, err)
		assert.Equal(t, now, p.End)
	})

	t.Run("end before start is invalid", func(t *testing.T) {
		_, err := analytics.ResolvePeriod(0, &end, &start, now)
		assert.ErrorIs(t, err, analytics.ErrInvalidPeriod)
	})
}

func TestPeriod_Contains(t *testing.T) {
	p := analytics.Period{
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	}
	assert.True(t, p.Contains(p.Start))
	assert.True(t, p.Contains(p.End))
	assert.False(t, p.Contains(p.End.Add(time.Nanosecond)))
	assert.False(t, p.ContainsPtr(nil))
}

func TestTrailingMonths(t *testing.T) {
	ref := time.Date(2024, 2, 20, 10, 0, 0, 0, time.UTC)
	months := analytics.TrailingMonths(ref, 6)
	require.Len(t, months, 6)

	keys := make([]string, len(months))
	for i, m := range months {
		keys[i] = analytics.MonthKey(m)
	}
	assert.Equal(t, []string{"2023-09", "2023-10", "2023-11", "2023-12", "2024-01", "2024-02"}, keys)
}

func TestPeriod_DaysInRange(t *testing.T) {
	p := analytics.Period{
		Start: time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 3, 9, 0, 0, 0, time.UTC),
	}
	days := p.DaysInRange()
	require.Len(t, days, 3)
	assert.Equal(t, "2024-03-01", analytics.DayKey(days[0]))
	assert.Equal(t, "2024-03-03", analytics.DayKey(days[2]))
}
