package cli

import (
	"testing"

	"github.com/pfrederiksen/fpf-results/internal/results"
)

func TestSortStandings(t *testing.T) {
	rows := func() []results.StandingsRow {
		return []results.StandingsRow{
			{Position: 3, Team: "Olhanense", GoalsFor: 9, GoalsAgainst: 4, Points: 10},
			{Position: 1, Team: "Ágil FC", GoalsFor: 7, GoalsAgainst: 2, Points: 12},
			{Position: 2, Team: "Benfica B", GoalsFor: 11, GoalsAgainst: 8, Points: 10},
			{Position: 4, Team: "amora", GoalsFor: 3, GoalsAgainst: 9, Points: 4},
		}
	}

	tests := []struct {
		order SortOrder
		want  []string
	}{
		{SortByPosition, []string{"Ágil FC", "Benfica B", "Olhanense", "amora"}},
		// Olhanense and Benfica B tie on points; goal difference decides.
		{SortByPoints, []string{"Ágil FC", "Olhanense", "Benfica B", "amora"}},
		{SortByTeam, []string{"Ágil FC", "amora", "Benfica B", "Olhanense"}},
		{SortByGoals, []string{"Benfica B", "Olhanense", "Ágil FC", "amora"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.order), func(t *testing.T) {
			got := rows()
			sortStandings(got, tt.order)
			for i, team := range tt.want {
				if got[i].Team != team {
					t.Errorf("position %d = %s, want %s", i, got[i].Team, team)
				}
			}
		})
	}
}

func TestSortOrderValid(t *testing.T) {
	for _, o := range []SortOrder{SortByPosition, SortByPoints, SortByTeam, SortByGoals} {
		if !o.Valid() {
			t.Errorf("%s should be valid", o)
		}
	}
	if SortOrder("date").Valid() {
		t.Error("date should not be valid")
	}
}
