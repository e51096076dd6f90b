// Package view derives the displayed subset of a reconciled item
// collection from user-chosen criteria.
package view

import (
	"sort"
	"strings"
	"time"

	"github.com/erazemk/najdeno/internal/model"
)

// DateFilter selects the date window items must fall into.
type DateFilter string

// Date filter options. Today, yesterday, and custom compare calendar days;
// week and month are rolling windows.
const (
	DateAll       DateFilter = "all"
	DateToday     DateFilter = "today"
	DateYesterday DateFilter = "yesterday"
	DateWeek      DateFilter = "week"
	DateMonth     DateFilter = "month"
	DateCustom    DateFilter = "custom"
)

// SortOrder selects the timestamp ordering of the result.
type SortOrder string

// Sort orders.
const (
	SortNewest SortOrder = "newest"
	SortOldest SortOrder = "oldest"
)

const dayMillis = 24 * 60 * 60 * 1000

// Criteria holds the four independent filter parameters.
type Criteria struct {
	Search     string
	Date       DateFilter
	CustomDate time.Time
	Sort       SortOrder
}

// DefaultCriteria returns the neutral criteria: no search, all dates,
// newest first.
func DefaultCriteria() Criteria {
	return Criteria{Date: DateAll, Sort: SortNewest}
}

// Reset restores all four parameters to their neutral values atomically.
func (c *Criteria) Reset() {
	*c = DefaultCriteria()
}

// Active returns the browsable subset: items marked deleted or returned
// are excluded, regardless of any other filter settings.
func Active(items []model.Item) []model.Item {
	out := make([]model.Item, 0, len(items))
	for _, it := range items {
		if it.Active() {
			out = append(out, it)
		}
	}
	return out
}

// Returned returns items that have been marked returned (and not deleted).
func Returned(items []model.Item) []model.Item {
	out := make([]model.Item, 0, len(items))
	for _, it := range items {
		if it.Returned && !it.Deleted {
			out = append(out, it)
		}
	}
	return out
}

// ForReporter returns items reported by the given email, case-insensitive.
func ForReporter(items []model.Item, email string) []model.Item {
	want := strings.ToLower(email)
	out := make([]model.Item, 0, len(items))
	for _, it := range items {
		if strings.ToLower(it.Email) == want {
			out = append(out, it)
		}
	}
	return out
}

// Apply filters items by the criteria's search text and date window
// (against the creation timestamp), then sorts by timestamp. Items without
// a timestamp pass the date filter and sort as epoch 0.
func Apply(items []model.Item, c Criteria, now time.Time) []model.Item {
	out := make([]model.Item, 0, len(items))
	for _, it := range items {
		if !matchesSearch(it, c.Search) {
			continue
		}
		if !matchesDate(it.Timestamp, c, now) {
			continue
		}
		out = append(out, it)
	}
	sortByTimestamp(out, c.Sort, func(it model.Item) int64 { return it.Timestamp })
	return out
}

// ApplyReturned is Apply for the returned-items view: the date window and
// sort use the return date, falling back to the creation timestamp.
func ApplyReturned(items []model.Item, c Criteria, now time.Time) []model.Item {
	out := make([]model.Item, 0, len(items))
	for _, it := range items {
		if !matchesSearch(it, c.Search) {
			continue
		}
		if !matchesDate(effectiveReturnTS(it), c, now) {
			continue
		}
		out = append(out, it)
	}
	sortByTimestamp(out, c.Sort, effectiveReturnTS)
	return out
}

// Stats summarizes a collection for dashboards.
type Stats struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Returned int `json:"returned"`
	Today    int `json:"today"`
}

// Collect computes collection stats over non-deleted items.
func Collect(items []model.Item, now time.Time) Stats {
	var s Stats
	for _, it := range items {
		if it.Deleted {
			continue
		}
		s.Total++
		if it.Returned {
			s.Returned++
			continue
		}
		s.Active++
		if it.Timestamp != 0 && sameDay(time.UnixMilli(it.Timestamp).In(now.Location()), now) {
			s.Today++
		}
	}
	return s
}

func matchesSearch(it model.Item, search string) bool {
	if search == "" {
		return true
	}
	term := strings.ToLower(search)
	return strings.Contains(strings.ToLower(it.ItemName), term) ||
		strings.Contains(strings.ToLower(it.Description), term) ||
		strings.Contains(strings.ToLower(it.Location), term)
}

func matchesDate(ts int64, c Criteria, now time.Time) bool {
	if ts == 0 {
		return true
	}
	t := time.UnixMilli(ts).In(now.Location())

	switch c.Date {
	case DateToday:
		return sameDay(t, now)
	case DateYesterday:
		return sameDay(t, now.AddDate(0, 0, -1))
	case DateWeek:
		return ts >= now.UnixMilli()-7*dayMillis
	case DateMonth:
		return ts >= now.UnixMilli()-30*dayMillis
	case DateCustom:
		if c.CustomDate.IsZero() {
			return true
		}
		return sameDay(t, c.CustomDate)
	default:
		return true
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func effectiveReturnTS(it model.Item) int64 {
	if it.ReturnedDate != 0 {
		return it.ReturnedDate
	}
	return it.Timestamp
}

func sortByTimestamp(items []model.Item, order SortOrder, ts func(model.Item) int64) {
	sort.SliceStable(items, func(i, j int) bool {
		if order == SortOldest {
			return ts(items[i]) < ts(items[j])
		}
		return ts(items[i]) > ts(items[j])
	})
}
