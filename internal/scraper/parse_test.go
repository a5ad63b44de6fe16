package scraper

import (
	"os"
	"reflect"
	"testing"

	"github.com/pfrederiksen/fpf-results/internal/results"
)

func loadFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	if err != nil {
		t.Fatalf("failed to load test fixture: %v", err)
	}
	return string(data)
}

func intPtr(v int) *int { return &v }

func TestParseFragment(t *testing.T) {
	parsed, err := ParseFragment(loadFixture(t, "fixture.html"))
	if err != nil {
		t.Fatalf("ParseFragment failed: %v", err)
	}

	wantMatches := []results.Match{
		{
			Home:      "SC Farense",
			Away:      "Núcleo Sporting CP Olhão",
			Date:      "12 Out",
			Stadium:   "Estádio de São Luís",
			HomeScore: intPtr(2),
			AwayScore: intPtr(1),
		},
		{
			Home:    "Clube X",
			Away:    "Lusitano FC",
			Date:    "19 Out",
			Time:    "15:30",
			Stadium: "Campo Municipal de Quarteira",
		},
		{
			Home: "Casa Benfica Albufeira",
			Away: "AD Tavira",
			Date: "Adiado",
		},
	}
	if !reflect.DeepEqual(parsed.Matches, wantMatches) {
		t.Errorf("Matches =\n%+v\nwant\n%+v", parsed.Matches, wantMatches)
	}

	wantStandings := []results.StandingsRow{
		{Position: 1, Team: "SC Farense", Played: 10, Wins: 8, Draws: 1, Losses: 1, GoalsFor: 25, GoalsAgainst: 6, Points: 25},
		{Position: 2, Team: "Núcleo Sporting CP Olhão", Played: 10, Wins: 6, Draws: 2, Losses: 2, GoalsFor: 20, GoalsAgainst: 11, Points: 20},
		{Position: 3, Team: "Clube X", Played: 10, Wins: 5, Draws: 3, Losses: 2, GoalsFor: 18, GoalsAgainst: 9, Points: 18},
	}
	if !reflect.DeepEqual(parsed.Standings, wantStandings) {
		t.Errorf("Standings =\n%+v\nwant\n%+v", parsed.Standings, wantStandings)
	}

	// header row, row with a non-numeric goal count, row with five columns
	if len(parsed.Discarded) != 3 {
		t.Fatalf("Discarded = %d rows, want 3: %+v", len(parsed.Discarded), parsed.Discarded)
	}
	if parsed.Discarded[2].Reason != "expected 9 columns, found 5" {
		t.Errorf("short row reason = %q", parsed.Discarded[2].Reason)
	}
}

func TestParseFragmentWithoutMatchesContainer(t *testing.T) {
	fragment := `<div class="game"><div class="home-team">A</div><div class="text-center">1-0</div><div class="away-team">B</div></div>`

	parsed, err := ParseFragment(fragment)
	if err != nil {
		t.Fatal(err)
	}
	if parsed.Matches == nil || len(parsed.Matches) != 0 {
		t.Errorf("Matches = %v, want empty slice when #matches is missing", parsed.Matches)
	}
}

func TestParseMatches_NoBlocks(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
	}{
		{"empty", ""},
		{"plain text", "Sem jogos agendados"},
		{"unrelated markup", `<div id="matches"><p>Nenhum jogo</p></div>`},
		{"game without teams", `<div class="game"><div class="text-center">15:30</div></div>`},
		{"broken markup", `<div class="game"><div class="home-team">A`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches, err := ParseMatches(tt.fragment)
			if err != nil {
				t.Fatalf("ParseMatches() error = %v", err)
			}
			if matches == nil || len(matches) != 0 {
				t.Errorf("ParseMatches() = %v, want empty slice", matches)
			}
		})
	}
}

func TestSplitCenter(t *testing.T) {
	tests := []struct {
		center    string
		wantDate  string
		wantTime  string
		wantHome  *int
		wantAway  *int
	}{
		{"2-1", "", "", intPtr(2), intPtr(1)},
		{"15:30", "", "15:30", nil, nil},
		{"12 Out", "12 Out", "", nil, nil},
		{"12 Out 2 - 1", "12 Out", "", intPtr(2), intPtr(1)},
		{"12 Out 0 – 3", "12 Out", "", intPtr(0), intPtr(3)},
		{"19 Out 15:30", "19 Out", "15:30", nil, nil},
		{"Sáb, 19 Out 10:00 3-3", "Sáb, 19 Out", "10:00", intPtr(3), intPtr(3)},
		{"12-10-2025", "12-10-2025", "", nil, nil},
		{"2025-10-12", "2025-10-12", "", nil, nil},
		{"12/10 2-1", "12/10", "", intPtr(2), intPtr(1)},
		{"12.10-2025 1-0", "12.10-2025", "", intPtr(1), intPtr(0)},
		{"2-1.", ".", "", intPtr(2), intPtr(1)},
		{"2-1/AP", "/AP", "", intPtr(2), intPtr(1)},
		{"12 Out 3-2 (a.p.)", "12 Out (a.p.)", "", intPtr(3), intPtr(2)},
		{"", "", "", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.center, func(t *testing.T) {
			date, kickoff, home, away := splitCenter(tt.center)
			if date != tt.wantDate {
				t.Errorf("date = %q, want %q", date, tt.wantDate)
			}
			if kickoff != tt.wantTime {
				t.Errorf("time = %q, want %q", kickoff, tt.wantTime)
			}
			if !reflect.DeepEqual(home, tt.wantHome) {
				t.Errorf("homeScore = %v, want %v", deref(home), deref(tt.wantHome))
			}
			if !reflect.DeepEqual(away, tt.wantAway) {
				t.Errorf("awayScore = %v, want %v", deref(away), deref(tt.wantAway))
			}
		})
	}
}

func deref(p *int) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func TestParseMatches_StadiumFallbacks(t *testing.T) {
	fragment := `
		<div class="game">
			<div class="home-team">A</div><div class="text-center">1-1</div><div class="away-team">B</div>
			<div class="game-list-stadium">Campo da Bela Vista</div>
		</div>
		<div class="game">
			<div class="home-team">C</div><div class="text-center">14:00</div><div class="away-team">D</div>
		</div>
		<div class="game">
			<div class="home-team">E</div><div class="text-center">16:00</div><div class="away-team">F</div>
		</div>
		<div class="game-list-stadium"><small>Estádio &quot;Algarve&quot;</small></div>`

	matches, err := ParseMatches(fragment)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Campo da Bela Vista", "", `Estádio "Algarve"`}
	if len(matches) != len(want) {
		t.Fatalf("got %d matches, want %d", len(matches), len(want))
	}
	for i, m := range matches {
		if m.Stadium != want[i] {
			t.Errorf("match %d stadium = %q, want %q", i, m.Stadium, want[i])
		}
	}
}

func TestParseStandings(t *testing.T) {
	row := func(cells ...string) string {
		s := `<div class="game classification">`
		for _, c := range cells {
			s += `<div class="col-xs-1">` + c + `</div>`
		}
		return s + `</div>`
	}

	tests := []struct {
		name     string
		fragment string
		want     []results.StandingsRow
		discards int
	}{
		{
			name:     "nine columns",
			fragment: `<div id="classification">` + row("3", "Clube X", "10", "5", "3", "2", "18", "9", "18") + `</div><div id="matches"></div>`,
			want: []results.StandingsRow{
				{Position: 3, Team: "Clube X", Played: 10, Wins: 5, Draws: 3, Losses: 2, GoalsFor: 18, GoalsAgainst: 9, Points: 18},
			},
		},
		{
			name:     "without wrapping containers",
			fragment: row("1", "Farense", "1", "1", "0", "0", "3", "0", "3"),
			want: []results.StandingsRow{
				{Position: 1, Team: "Farense", Played: 1, Wins: 1, GoalsFor: 3, Points: 3},
			},
		},
		{
			name:     "extra columns ignored",
			fragment: row("1", "Farense", "1", "1", "0", "0", "3", "0", "3", "+3", "V"),
			want: []results.StandingsRow{
				{Position: 1, Team: "Farense", Played: 1, Wins: 1, GoalsFor: 3, Points: 3},
			},
		},
		{
			name:     "too few columns",
			fragment: row("1", "Farense", "1", "1", "0", "0", "3", "0"),
			want:     []results.StandingsRow{},
			discards: 1,
		},
		{
			name:     "non numeric column",
			fragment: row("1", "Farense", "1", "1", "0", "0", "3", "0", "3") + row("2", "Olhanense", "1", "x", "0", "1", "0", "3", "0"),
			want: []results.StandingsRow{
				{Position: 1, Team: "Farense", Played: 1, Wins: 1, GoalsFor: 3, Points: 3},
			},
			discards: 1,
		},
		{
			name:     "rows outside classification section ignored",
			fragment: `<div id="classification">` + row("1", "Farense", "1", "1", "0", "0", "3", "0", "3") + `</div><div id="other">` + row("9", "Outra", "1", "0", "0", "1", "0", "3", "0") + `</div>`,
			want: []results.StandingsRow{
				{Position: 1, Team: "Farense", Played: 1, Wins: 1, GoalsFor: 3, Points: 3},
			},
		},
		{
			name:     "no rows",
			fragment: `<p>Classificação indisponível</p>`,
			want:     []results.StandingsRow{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, discarded, err := ParseStandings(tt.fragment)
			if err != nil {
				t.Fatalf("ParseStandings() error = %v", err)
			}
			if !reflect.DeepEqual(rows, tt.want) {
				t.Errorf("ParseStandings() rows = %+v, want %+v", rows, tt.want)
			}
			if len(discarded) != tt.discards {
				t.Errorf("discarded = %d, want %d", len(discarded), tt.discards)
			}
		})
	}
}

func TestParseStandings_NestedCells(t *testing.T) {
	fragment := `<div class="game classification">
		<div class="col-xs-1">1</div>
		<div class="col-xs-5"><div class="col-xs-2"><img src="c.png"></div><div class="col-xs-10">Farense</div></div>
		<div class="col-xs-1">1</div><div class="col-xs-1">1</div><div class="col-xs-1">0</div>
		<div class="col-xs-1">0</div><div class="col-xs-1">3</div><div class="col-xs-1">0</div><div class="col-xs-1">3</div>
	</div>`

	rows, discarded, err := ParseStandings(fragment)
	if err != nil {
		t.Fatal(err)
	}
	// The crest cell is a leaf too, so the row shifts and is rejected
	// rather than silently misread.
	if len(rows) != 0 || len(discarded) != 1 {
		t.Errorf("rows = %+v, discarded = %+v", rows, discarded)
	}
}
