// Package results defines the records scraped from the FPF results site.
//
// A Competition is an ordered list of Rounds. Each Round carries the fixture
// identifier the site uses for its data endpoint, the matches played (or
// scheduled) in that round and the league table as of that round. The JSON
// field names are consumed by the presentation layer and must not change.
package results
