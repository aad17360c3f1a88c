// Package tui provides a Bubble Tea live view of a running fetch.
//
// The view polls a Source for counts and shows a spinner, a progress bar
// over done/quota and the succeeded/failed totals. Quitting the view
// cancels the run; Watch still waits for the run to return.
package tui
