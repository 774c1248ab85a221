package domain

import (
	"fmt"
	"time"
)

// Window is a calendar month in UTC. Start is inclusive, End exclusive,
// so every instant of the last day belongs to the window.
type Window struct {
	Start time.Time
	End   time.Time
}

// MonthWindow builds the window for month (1-12) of year.
func MonthWindow(year, month int) (Window, error) {
	if month < 1 || month > 12 {
		return Window{}, fmt.Errorf("month %d out of range", month)
	}
	if year < 1 || year > 9999 {
		return Window{}, fmt.Errorf("year %d out of range", year)
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return Window{Start: start, End: start.AddDate(0, 1, 0)}, nil
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// PriceBucket is a price sub-range of the histogram. A price belongs to
// the bucket when Low < price <= Max; the first bucket also admits Low
// itself and an Open bucket has no upper bound.
type PriceBucket struct {
	Label     string
	Low       float64
	Max       float64
	Inclusive bool
	Open      bool
}

// Contains reports whether price falls inside the bucket.
func (b PriceBucket) Contains(price float64) bool {
	if b.Inclusive {
		if price < b.Low {
			return false
		}
	} else if price <= b.Low {
		return false
	}
	return b.Open || price <= b.Max
}

// PriceBuckets lists the histogram buckets in ascending order.
var PriceBuckets = []PriceBucket{
	{Label: "0 - 100", Low: 0, Max: 100, Inclusive: true},
	{Label: "101 - 200", Low: 100, Max: 200},
	{Label: "201 - 300", Low: 200, Max: 300},
	{Label: "301 - 400", Low: 300, Max: 400},
	{Label: "401 - 500", Low: 400, Max: 500},
	{Label: "501 - 600", Low: 500, Max: 600},
	{Label: "601 - 700", Low: 600, Max: 700},
	{Label: "701 - 800", Low: 700, Max: 800},
	{Label: "801 - 900", Low: 800, Max: 900},
	{Label: "901 - Above", Low: 900, Open: true},
}
