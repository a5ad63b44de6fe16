package scraper

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/fpf-results/internal/results"
)

// Fragment is the parsed content of one combined classification and
// matches fragment.
type Fragment struct {
	Matches   []results.Match
	Standings []results.StandingsRow
	Discarded []DiscardedRow
}

// ParseFragment parses a combined fragment once. Matches are read only from
// the #matches container (and whatever follows it), so a fragment without
// that container has no matches. The standings parser isolates the
// classification section on its own.
func ParseFragment(fragment string) (*Fragment, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	f := &Fragment{Matches: make([]results.Match, 0)}

	if section := doc.Find("#matches").First(); section.Length() > 0 {
		f.Matches = matchesFrom(section.AddSelection(section.NextAll()))
	}
	f.Standings, f.Discarded = standingsFrom(doc.Selection)

	return f, nil
}
