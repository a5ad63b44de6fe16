// Package scraper extracts rounds, matches and standings from the FPF
// results site.
//
// The site exposes a competition details page linking every round
// (fixture) and, per fixture, a combined HTML fragment holding the league
// table (#classification) followed by the round's matches (#matches).
// Fragments are parsed into an element tree with goquery and fields are
// read by class, so cosmetic markup changes do not silently drop rows.
//
// Scraper.Run ties the pieces together: it fetches the details page,
// discovers the fixture ids, fetches and parses every fragment in order and
// returns the accumulated results.Competition. A round whose fragment cannot
// be fetched is logged and left out.
package scraper
