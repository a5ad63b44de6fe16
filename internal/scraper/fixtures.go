package scraper

import (
	"regexp"
	"sort"
	"strings"

	"github.com/pfrederiksen/fpf-results/internal/normalize"
)

var (
	fixtureLinkPattern = regexp.MustCompile(`GetClassificationAndMatchesByFixture\?fixtureId=(\d+)`)
	fixtureIDPattern   = regexp.MustCompile(`fixtureId=(\d+)`)
	serieMarkerPattern = regexp.MustCompile(`<div class="game-results[^>]*id="htmlSerieId_(\d+)"[^>]*>`)
)

// serieBlockStart opens every series block; a block runs until the next one.
const serieBlockStart = `<div class="game-results`

// Series is a named sub-division of a competition.
type Series struct {
	ID         string   // the site's serie id
	FixtureIDs []string // in document order
}

// FindFixtureIDs returns every round fixture id linked from the competition
// page, deduplicated and sorted by numeric value. Ids are not fixed width,
// so a lexical sort would misplace them.
func FindFixtureIDs(page string) []string {
	ids := uniqueSubmatches(fixtureLinkPattern, page)
	sort.SliceStable(ids, func(i, j int) bool {
		return lessNumeric(ids[i], ids[j])
	})
	return ids
}

// FindSeriesFixtureIDs returns the fixture ids of the first series block
// whose visible text contains label as whole words, compared accent and case
// insensitively. Markup and attribute values are not searched. Ids
// keep their document order. ok is false when no block matches.
func FindSeriesFixtureIDs(page, label string) (series Series, ok bool) {
	for _, loc := range serieMarkerPattern.FindAllStringSubmatchIndex(page, -1) {
		start := loc[0]
		block := page[start:]
		if next := strings.Index(block[1:], serieBlockStart); next >= 0 {
			block = block[:next+1]
		}

		if !normalize.ContainsWords(normalize.Clean(block), label) {
			continue
		}

		ids := uniqueSubmatches(fixtureIDPattern, block)
		if len(ids) == 0 {
			continue
		}
		return Series{ID: page[loc[2]:loc[3]], FixtureIDs: ids}, true
	}
	return Series{}, false
}

// uniqueSubmatches returns the first capture group of every match, keeping
// the first occurrence of each value.
func uniqueSubmatches(re *regexp.Regexp, s string) []string {
	seen := make(map[string]bool)
	ids := make([]string, 0)
	for _, m := range re.FindAllStringSubmatch(s, -1) {
		id := m[1]
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

// lessNumeric compares two strings of decimal digits by value.
func lessNumeric(a, b string) bool {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}
