package scraper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/fpf-results/internal/normalize"
	"github.com/pfrederiksen/fpf-results/internal/results"
)

var (
	// A final score such as "2-1" or "0 – 3". Candidates that are part of a
	// date are rejected by findScore.
	scorePattern = regexp.MustCompile(`(\d{1,2})\s*[-–]\s*(\d{1,2})`)

	// A kickoff time such as "15:30".
	timePattern = regexp.MustCompile(`\d{1,2}:\d{2}`)
)

// ParseMatches extracts every match block from an HTML fragment in
// document order. A fragment without match blocks yields an empty slice.
func ParseMatches(fragment string) ([]results.Match, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return matchesFrom(doc.Selection), nil
}

func matchesFrom(root *goquery.Selection) []results.Match {
	matches := make([]results.Match, 0)

	root.Each(func(_ int, scope *goquery.Selection) {
		scope.Find("div.game").AddBackFiltered("div.game").Each(func(_ int, game *goquery.Selection) {
			if m, ok := matchFrom(game); ok {
				matches = append(matches, m)
			}
		})
	})

	return matches
}

func matchFrom(game *goquery.Selection) (results.Match, bool) {
	if game.HasClass("classification") {
		return results.Match{}, false
	}

	home := game.Find(".home-team").First()
	away := game.Find(".away-team").First()
	if home.Length() == 0 || away.Length() == 0 {
		return results.Match{}, false
	}

	m := results.Match{
		Home:    normalize.CleanSelection(home),
		Away:    normalize.CleanSelection(away),
		Stadium: stadiumOf(game),
	}
	m.Date, m.Time, m.HomeScore, m.AwayScore = splitCenter(normalize.CleanSelection(centerCell(game)))
	return m, true
}

// centerCell finds the cell between the two team labels. It holds either a
// kickoff time or a final score, usually next to the date.
func centerCell(game *goquery.Selection) *goquery.Selection {
	return game.Find(`[class*="text-center"]`).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.Closest(".home-team, .away-team").Length() == 0 &&
			s.Find(".home-team, .away-team").Length() == 0
	}).First()
}

// stadiumOf reads the stadium name from the block or, failing that, from the
// stadium element that immediately follows it.
func stadiumOf(game *goquery.Selection) string {
	stadium := game.Find(".game-list-stadium").First()
	if stadium.Length() == 0 {
		if next := game.Next(); next.HasClass("game-list-stadium") {
			stadium = next
		}
	}
	if stadium.Length() == 0 {
		return ""
	}
	if small := stadium.Find("small").First(); small.Length() > 0 {
		return normalize.CleanSelection(small)
	}
	return normalize.CleanSelection(stadium)
}

// splitCenter interprets the center cell of a match block.
//
//	"12 Out 2-1"   -> date "12 Out", scores 2 and 1
//	"12 Out 15:30" -> date "12 Out", time "15:30"
//	"Adiado"       -> date "Adiado"
func splitCenter(center string) (date, kickoff string, homeScore, awayScore *int) {
	rest := center

	if loc := findScore(center); loc != nil {
		home, errHome := strconv.Atoi(center[loc[2]:loc[3]])
		away, errAway := strconv.Atoi(center[loc[4]:loc[5]])
		if errHome == nil && errAway == nil {
			homeScore, awayScore = &home, &away
			rest = center[:loc[2]] + " " + center[loc[5]:]
		}
	}

	if loc := timePattern.FindStringIndex(rest); loc != nil {
		kickoff = rest[loc[0]:loc[1]]
		rest = rest[:loc[0]] + " " + rest[loc[1]:]
	}

	date = strings.Join(strings.Fields(rest), " ")
	return date, kickoff, homeScore, awayScore
}

// findScore returns the submatch indexes of the first score in s that is not
// glued to a date such as "12-10-2025" or "2025-10-12".
func findScore(s string) []int {
	for offset := 0; offset < len(s); {
		loc := scorePattern.FindStringSubmatchIndex(s[offset:])
		if loc == nil {
			return nil
		}
		for i := range loc {
			if loc[i] >= 0 {
				loc[i] += offset
			}
		}
		if !continuesDate(s, loc[0], loc[1]) {
			return loc
		}
		_, size := utf8.DecodeRuneInString(s[loc[0]:])
		offset = loc[0] + size
	}
	return nil
}

// continuesDate reports whether s[start:end] runs into more digits, either
// directly or through a date separator.
func continuesDate(s string, start, end int) bool {
	if before, size := utf8.DecodeLastRuneInString(s[:start]); size > 0 {
		if unicode.IsDigit(before) {
			return true
		}
		if isDateSeparator(before) {
			if r, n := utf8.DecodeLastRuneInString(s[:start-size]); n > 0 && unicode.IsDigit(r) {
				return true
			}
		}
	}
	if after, size := utf8.DecodeRuneInString(s[end:]); size > 0 {
		if unicode.IsDigit(after) {
			return true
		}
		if isDateSeparator(after) {
			if r, n := utf8.DecodeRuneInString(s[end+size:]); n > 0 && unicode.IsDigit(r) {
				return true
			}
		}
	}
	return false
}

func isDateSeparator(r rune) bool {
	switch r {
	case '-', '–', '/', '.':
		return true
	}
	return false
}
