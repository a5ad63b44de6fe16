// Package cli implements the command-line interface for fpf-results.
//
// The cli package provides the Cobra-based CLI with commands to scrape a
// competition (fetch), build the crest manifest (crests), inspect a single
// round fragment (probe) and print a saved result (show). Settings are
// layered: competition preset, then .env file, then FPF_* environment
// variables, then flags. Reports are written as text or JSON.
package cli
