package cli

import (
	"sort"

	"github.com/pfrederiksen/fpf-results/internal/normalize"
	"github.com/pfrederiksen/fpf-results/internal/results"
)

// SortOrder represents the available standings orderings
type SortOrder string

const (
	SortByPosition SortOrder = "position"
	SortByPoints   SortOrder = "points"
	SortByTeam     SortOrder = "team"
	SortByGoals    SortOrder = "goals"
)

// Valid reports whether o is a known ordering.
func (o SortOrder) Valid() bool {
	switch o {
	case SortByPosition, SortByPoints, SortByTeam, SortByGoals:
		return true
	}
	return false
}

// sortStandings sorts standings rows based on the specified sort order
func sortStandings(rows []results.StandingsRow, order SortOrder) {
	switch order {
	case SortByPosition:
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].Position < rows[j].Position
		})
	case SortByPoints:
		sort.SliceStable(rows, func(i, j int) bool {
			return compareByPoints(rows[i], rows[j])
		})
	case SortByTeam:
		sort.SliceStable(rows, func(i, j int) bool {
			return compareByTeam(rows[i], rows[j])
		})
	case SortByGoals:
		sort.SliceStable(rows, func(i, j int) bool {
			if rows[i].GoalsFor != rows[j].GoalsFor {
				return rows[i].GoalsFor > rows[j].GoalsFor
			}
			// If goals are equal, sort by points
			return compareByPoints(rows[i], rows[j])
		})
	}
}

// compareByPoints ranks on points, then goal difference, then goals scored,
// then team name.
func compareByPoints(a, b results.StandingsRow) bool {
	if a.Points != b.Points {
		return a.Points > b.Points
	}
	if gd1, gd2 := a.GoalDifference(), b.GoalDifference(); gd1 != gd2 {
		return gd1 > gd2
	}
	if a.GoalsFor != b.GoalsFor {
		return a.GoalsFor > b.GoalsFor
	}
	return compareByTeam(a, b)
}

// compareByTeam orders names ignoring accents and case
func compareByTeam(a, b results.StandingsRow) bool {
	fa, fb := normalize.Fold(a.Team), normalize.Fold(b.Team)
	if fa != fb {
		return fa < fb
	}
	return a.Team < b.Team
}
