// Package storage persists scrape results.
//
// Competition results and crest manifests are written as indented JSON with
// HTML characters and non-ASCII text left unescaped, so the files stay
// readable and diff cleanly. Writes go to a temporary file that is renamed
// into place, which means a failed run never leaves a truncated file behind.
// Results can additionally be exported to a SQLite database for ad-hoc
// queries.
package storage
