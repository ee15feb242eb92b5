// Package dates handles the calendar dates (YYYY-MM-DD) used for project
// bounds and task due dates.
package dates

import "time"

const Layout = "2006-01-02"

func Valid(s string) bool {
	_, err := time.Parse(Layout, s)
	return err == nil
}

// Today formats now as a calendar date in now's location.
func Today(now time.Time) string {
	return now.Format(Layout)
}

// Before reports a < b for two valid dates. The layout is fixed width, so
// string order is calendar order.
func Before(a, b string) bool {
	return a < b
}
