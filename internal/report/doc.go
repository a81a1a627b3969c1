// Package report aggregates task listings into status reports, due-soon
// selections and weekly summaries. All functions are pure: they take the
// reference time as an argument and make no remote calls.
package report
