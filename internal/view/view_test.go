package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/najdeno/internal/model"
)

// now is fixed mid-day so calendar-day comparisons are unambiguous.
var now = time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

func ms(t time.Time) int64 { return t.UnixMilli() }

func TestActiveExcludesReturnedAndDeleted(t *testing.T) {
	items := []model.Item{
		{ID: "1"},
		{ID: "2", Returned: true},
		{ID: "3", Deleted: true},
	}

	out := Active(items)

	require.Len(t, out, 1)
	assert.Equal(t, "1", out[0].ID)
}

func TestActiveExclusionBeatsOtherFilters(t *testing.T) {
	items := []model.Item{
		{ID: "1", ItemName: "Wallet", Returned: true, Timestamp: ms(now)},
	}

	out := Apply(Active(items), Criteria{Search: "wallet", Date: DateAll, Sort: SortNewest}, now)

	assert.Empty(t, out)
}

func TestSearchMatchesAnyField(t *testing.T) {
	items := []model.Item{
		{ID: "1", ItemName: "Black Wallet"},
		{ID: "2", Description: "a black umbrella"},
		{ID: "3", Location: "Blackstone hall"},
		{ID: "4", ItemName: "Red scarf"},
	}

	out := Apply(items, Criteria{Search: "BLACK", Date: DateAll, Sort: SortNewest}, now)

	assert.Len(t, out, 3)
}

func TestDateFilterCalendarDays(t *testing.T) {
	items := []model.Item{
		{ID: "today", Timestamp: ms(now.Add(-2 * time.Hour))},
		{ID: "yesterday", Timestamp: ms(now.Add(-26 * time.Hour))},
		{ID: "lastweek", Timestamp: ms(now.AddDate(0, 0, -5))},
		{ID: "old", Timestamp: ms(now.AddDate(0, 0, -60))},
	}

	got := Apply(items, Criteria{Date: DateToday, Sort: SortNewest}, now)
	require.Len(t, got, 1)
	assert.Equal(t, "today", got[0].ID)

	got = Apply(items, Criteria{Date: DateYesterday, Sort: SortNewest}, now)
	require.Len(t, got, 1)
	assert.Equal(t, "yesterday", got[0].ID)

	// Early today is within yesterday's rolling 24h window but not the
	// calendar day; it must not match "yesterday".
	early := []model.Item{{ID: "early", Timestamp: ms(now.Truncate(24 * time.Hour).Add(time.Hour))}}
	assert.Empty(t, Apply(early, Criteria{Date: DateYesterday, Sort: SortNewest}, now))
}

func TestDateFilterRollingWindows(t *testing.T) {
	items := []model.Item{
		{ID: "recent", Timestamp: ms(now.AddDate(0, 0, -5))},
		{ID: "older", Timestamp: ms(now.AddDate(0, 0, -20))},
		{ID: "ancient", Timestamp: ms(now.AddDate(0, 0, -60))},
	}

	week := Apply(items, Criteria{Date: DateWeek, Sort: SortNewest}, now)
	require.Len(t, week, 1)
	assert.Equal(t, "recent", week[0].ID)

	month := Apply(items, Criteria{Date: DateMonth, Sort: SortNewest}, now)
	assert.Len(t, month, 2)
}

func TestDateFilterCustomDay(t *testing.T) {
	day := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	items := []model.Item{
		{ID: "hit", Timestamp: ms(day.Add(15 * time.Hour))},
		{ID: "miss", Timestamp: ms(day.AddDate(0, 0, 1))},
	}

	out := Apply(items, Criteria{Date: DateCustom, CustomDate: day, Sort: SortNewest}, now)

	require.Len(t, out, 1)
	assert.Equal(t, "hit", out[0].ID)
}

func TestMissingTimestampPassesDateFilter(t *testing.T) {
	items := []model.Item{{ID: "nots"}}

	out := Apply(items, Criteria{Date: DateToday, Sort: SortNewest}, now)

	assert.Len(t, out, 1)
}

func TestSortNewestAndOldest(t *testing.T) {
	items := []model.Item{
		{ID: "b", Timestamp: 200},
		{ID: "c", Timestamp: 300},
		{ID: "nots"}, // missing timestamp sorts as epoch 0
		{ID: "a", Timestamp: 100},
	}

	newest := Apply(items, Criteria{Date: DateAll, Sort: SortNewest}, now)
	for i := 1; i < len(newest); i++ {
		assert.GreaterOrEqual(t, newest[i-1].Timestamp, newest[i].Timestamp)
	}
	assert.Equal(t, "nots", newest[len(newest)-1].ID)

	oldest := Apply(items, Criteria{Date: DateAll, Sort: SortOldest}, now)
	assert.Equal(t, "nots", oldest[0].ID)
	assert.Equal(t, "c", oldest[len(oldest)-1].ID)
}

func TestCriteriaReset(t *testing.T) {
	c := Criteria{Search: "wallet", Date: DateWeek, CustomDate: now, Sort: SortOldest}
	c.Reset()
	assert.Equal(t, DefaultCriteria(), c)
}

func TestReturnedViewUsesReturnDate(t *testing.T) {
	items := []model.Item{
		{ID: "1", Returned: true, Timestamp: ms(now.AddDate(0, 0, -90)), ReturnedDate: ms(now.AddDate(0, 0, -2))},
		{ID: "2", Returned: true, Timestamp: ms(now.AddDate(0, 0, -90)), ReturnedDate: ms(now.AddDate(0, 0, -40))},
		{ID: "3", Timestamp: ms(now)},
	}

	returned := Returned(items)
	require.Len(t, returned, 2)

	week := ApplyReturned(returned, Criteria{Date: DateWeek, Sort: SortNewest}, now)
	require.Len(t, week, 1)
	assert.Equal(t, "1", week[0].ID)
}

func TestForReporterCaseInsensitive(t *testing.T) {
	items := []model.Item{
		{ID: "1", Email: "Ana@Example.com"},
		{ID: "2", Email: "other@example.com"},
	}

	out := ForReporter(items, "ana@example.com")

	require.Len(t, out, 1)
	assert.Equal(t, "1", out[0].ID)
}

func TestCollectStats(t *testing.T) {
	items := []model.Item{
		{ID: "1", Timestamp: ms(now.Add(-time.Hour))},
		{ID: "2", Timestamp: ms(now.AddDate(0, 0, -3))},
		{ID: "3", Returned: true, Timestamp: ms(now.AddDate(0, 0, -5))},
		{ID: "4", Deleted: true},
	}

	s := Collect(items, now)

	assert.Equal(t, Stats{Total: 3, Active: 2, Returned: 1, Today: 1}, s)
}
