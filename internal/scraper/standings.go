package scraper

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/fpf-results/internal/normalize"
	"github.com/pfrederiksen/fpf-results/internal/results"
)

// standingsColumns is the number of leading cells mapped onto a row:
// position, team, played, wins, draws, losses, goals for, goals against,
// points.
const standingsColumns = 9

// DiscardedRow describes a classification row that could not be used.
type DiscardedRow struct {
	Index  int      // position among the classification rows, 0-based
	Reason string   // why the row was dropped
	Cells  []string // cleaned cell texts
}

// ParseStandings extracts the league table from an HTML fragment. Rows are
// read from the #classification container when present and from the whole
// fragment otherwise. Rows with fewer than nine cells or with a non-numeric
// value in a numeric column are returned as discarded instead.
func ParseStandings(fragment string) ([]results.StandingsRow, []DiscardedRow, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return nil, nil, fmt.Errorf("parsing HTML: %w", err)
	}
	rows, discarded := standingsFrom(doc.Selection)
	return rows, discarded, nil
}

func standingsFrom(root *goquery.Selection) ([]results.StandingsRow, []DiscardedRow) {
	section := root.Find("#classification").First()
	if section.Length() == 0 {
		section = root
	}

	rows := make([]results.StandingsRow, 0)
	var discarded []DiscardedRow

	section.Find("div.game.classification").Each(func(i int, row *goquery.Selection) {
		cells := rowCells(row)
		if len(cells) < standingsColumns {
			discarded = append(discarded, DiscardedRow{
				Index:  i,
				Reason: fmt.Sprintf("expected %d columns, found %d", standingsColumns, len(cells)),
				Cells:  cells,
			})
			return
		}

		parsed, err := standingsRow(cells)
		if err != nil {
			discarded = append(discarded, DiscardedRow{Index: i, Reason: err.Error(), Cells: cells})
			return
		}
		rows = append(rows, parsed)
	})

	return rows, discarded
}

// rowCells returns the cleaned text of the innermost column cells of a row.
func rowCells(row *goquery.Selection) []string {
	var cells []string
	row.Find(`[class*="col-"]`).Each(func(_ int, cell *goquery.Selection) {
		if cell.Find(`[class*="col-"]`).Length() > 0 {
			return
		}
		cells = append(cells, normalize.CleanSelection(cell))
	})
	return cells
}

func standingsRow(cells []string) (results.StandingsRow, error) {
	var nums [standingsColumns]int
	for i, cell := range cells[:standingsColumns] {
		if i == 1 {
			continue // team name
		}
		n, err := strconv.Atoi(cell)
		if err != nil {
			return results.StandingsRow{}, fmt.Errorf("column %d: %q is not a number", i+1, cell)
		}
		nums[i] = n
	}

	return results.StandingsRow{
		Position:     nums[0],
		Team:         cells[1],
		Played:       nums[2],
		Wins:         nums[3],
		Draws:        nums[4],
		Losses:       nums[5],
		GoalsFor:     nums[6],
		GoalsAgainst: nums[7],
		Points:       nums[8],
	}, nil
}
