package results

// Match is a single fixture inside a round. Scores are nil until the match
// has been played.
type Match struct {
	Home      string `json:"home"`
	Away      string `json:"away"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Stadium   string `json:"stadium"`
	HomeScore *int   `json:"homeScore"`
	AwayScore *int   `json:"awayScore"`
}

// Played reports whether both scores are known.
func (m Match) Played() bool {
	return m.HomeScore != nil && m.AwayScore != nil
}

// StandingsRow is one line of the classification table.
type StandingsRow struct {
	Position     int    `json:"position"`
	Team         string `json:"team"`
	Played       int    `json:"played"`
	Wins         int    `json:"wins"`
	Draws        int    `json:"draws"`
	Losses       int    `json:"losses"`
	GoalsFor     int    `json:"goalsFor"`
	GoalsAgainst int    `json:"goalsAgainst"`
	Points       int    `json:"points"`
}

// GoalDifference returns goals scored minus goals conceded
func (r StandingsRow) GoalDifference() int {
	return r.GoalsFor - r.GoalsAgainst
}

// Round is one matchday (jornada).
type Round struct {
	Index          int            `json:"index"` // 1-based, in discovery order
	FixtureID      string         `json:"fixtureId"`
	Matches        []Match        `json:"matches"`
	Classification []StandingsRow `json:"classification"`
}

// NewRound builds a round, normalizing nil slices so they serialize as [].
func NewRound(index int, fixtureID string, matches []Match, table []StandingsRow) Round {
	if matches == nil {
		matches = []Match{}
	}
	if table == nil {
		table = []StandingsRow{}
	}
	return Round{
		Index:          index,
		FixtureID:      fixtureID,
		Matches:        matches,
		Classification: table,
	}
}

// Competition is the persisted artifact.
type Competition struct {
	Rounds []Round `json:"rounds"`
}

// NewCompetition creates an empty competition whose rounds serialize as [].
func NewCompetition() *Competition {
	return &Competition{Rounds: make([]Round, 0)}
}

// Add appends a round.
func (c *Competition) Add(r Round) {
	c.Rounds = append(c.Rounds, r)
}

// Summary holds aggregate counts for reporting.
type Summary struct {
	Rounds        int           `json:"rounds"`
	Matches       int           `json:"matches"`
	PlayedMatches int           `json:"played_matches"`
	Teams         int           `json:"teams"`
	Leader        *StandingsRow `json:"leader,omitempty"`
}

// Summary computes counts across all rounds. Teams and Leader come from the
// last round that has a classification table.
func (c *Competition) Summary() Summary {
	s := Summary{Rounds: len(c.Rounds)}
	for _, r := range c.Rounds {
		s.Matches += len(r.Matches)
		for _, m := range r.Matches {
			if m.Played() {
				s.PlayedMatches++
			}
		}
	}

	for i := len(c.Rounds) - 1; i >= 0; i-- {
		table := c.Rounds[i].Classification
		if len(table) == 0 {
			continue
		}
		s.Teams = len(table)
		leader := table[0]
		for _, row := range table[1:] {
			if row.Position < leader.Position {
				leader = row
			}
		}
		s.Leader = &leader
		break
	}

	return s
}

// CrestManifest maps a folded club name to the crest image path.
type CrestManifest map[string]string
