// Package cli implements the command-line interface for hockey-report.
//
// The cli package provides the Cobra-based commands that extract the subject
// team's fixtures from the league schedule feed, enrich them from official
// game reports, inject start times from the team calendar, export the schedule
// as iCalendar and serve it over HTTP. Output is text or JSON.
package cli
