package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/pfrederiksen/fpf-results/internal/results"
	"github.com/pfrederiksen/fpf-results/internal/scraper"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// Report is anything a command prints when it finishes.
type Report interface {
	writeText(w io.Writer, verbose bool) error
}

// FetchReport describes a completed scrape.
type FetchReport struct {
	Competition string                 `json:"competition,omitempty"`
	Output      string                 `json:"output"`
	SQLite      string                 `json:"sqlite,omitempty"`
	CompletedAt time.Time              `json:"completed_at"`
	Duration    string                 `json:"duration"`
	Summary     results.Summary        `json:"summary"`
	Skipped     int64                  `json:"skipped_rounds"`
	Metrics     map[string]interface{} `json:"metrics,omitempty"`
}

// CrestReport describes a written crest manifest.
type CrestReport struct {
	Dir     string `json:"dir"`
	Output  string `json:"output"`
	Crests  int    `json:"crests"`
	Aliases int    `json:"aliases"`
}

// ProbeReport wraps the result of probing one fixture.
type ProbeReport struct {
	*scraper.ProbeResult
}

// RoundReport is one round of a saved result.
type RoundReport struct {
	Round results.Round `json:"round"`
	Of    int           `json:"of"`
	Sort  SortOrder     `json:"sort"`
}

// WriteOutput writes the report in the specified format
func WriteOutput(w io.Writer, report Report, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, report)
	case FormatText:
		return report.writeText(w, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs the report as JSON
func writeJSON(w io.Writer, report Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

func (r *FetchReport) writeText(w io.Writer, verbose bool) error {
	s := r.Summary
	if r.Competition != "" {
		fmt.Fprintf(w, "Competition: %s\n", r.Competition)
	}
	fmt.Fprintf(w, "Rounds: %d", s.Rounds)
	if r.Skipped > 0 {
		fmt.Fprintf(w, " (%d skipped)", r.Skipped)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Matches: %d (%d played)\n", s.Matches, s.PlayedMatches)
	fmt.Fprintf(w, "Teams: %d\n", s.Teams)
	if s.Leader != nil {
		fmt.Fprintf(w, "Leader: %s (%d pts)\n", s.Leader.Team, s.Leader.Points)
	}
	fmt.Fprintf(w, "Saved: %s\n", r.Output)
	if r.SQLite != "" {
		fmt.Fprintf(w, "SQLite: %s\n", r.SQLite)
	}

	if verbose {
		fmt.Fprintf(w, "Duration: %s\n", r.Duration)
		writeMetrics(w, r.Metrics)
	}
	return nil
}

func writeMetrics(w io.Writer, metrics map[string]interface{}) {
	counters, ok := metrics["counters"].(map[string]int64)
	if !ok || len(counters) == 0 {
		return
	}

	names := make([]string, 0, len(counters))
	for name := range counters {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "\nMetrics:")
	for _, name := range names {
		fmt.Fprintf(w, "  %-20s %d\n", name, counters[name])
	}
}

func (r *CrestReport) writeText(w io.Writer, verbose bool) error {
	fmt.Fprintf(w, "Crests: %d\n", r.Crests)
	fmt.Fprintf(w, "Aliases: %d\n", r.Aliases)
	fmt.Fprintf(w, "Saved: %s\n", r.Output)
	if verbose {
		fmt.Fprintf(w, "Source: %s\n", r.Dir)
	}
	return nil
}

func (r *ProbeReport) writeText(w io.Writer, verbose bool) error {
	fmt.Fprintf(w, "Fixture: %s\n", r.FixtureID)
	fmt.Fprintf(w, "Size: %d bytes\n", r.Bytes)
	fmt.Fprintf(w, "Matches: %d\n", r.Matches)
	fmt.Fprintf(w, "Standings rows: %d", r.Standings)
	if r.Discarded > 0 {
		fmt.Fprintf(w, " (%d discarded)", r.Discarded)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Saved: %s\n", r.CachePath)
	if verbose {
		fmt.Fprintf(w, "URL: %s\n", r.URL)
	}
	return nil
}

// newRoundReport picks round index from the competition, or the last round
// with a table when index is 0, and orders its standings.
func newRoundReport(c *results.Competition, index int, order SortOrder) (*RoundReport, error) {
	if len(c.Rounds) == 0 {
		return nil, fmt.Errorf("result has no rounds")
	}

	var round *results.Round
	if index == 0 {
		round = &c.Rounds[len(c.Rounds)-1]
		for i := len(c.Rounds) - 1; i >= 0; i-- {
			if len(c.Rounds[i].Classification) > 0 {
				round = &c.Rounds[i]
				break
			}
		}
	} else {
		for i := range c.Rounds {
			if c.Rounds[i].Index == index {
				round = &c.Rounds[i]
				break
			}
		}
		if round == nil {
			return nil, fmt.Errorf("round %d not found", index)
		}
	}

	r := *round
	r.Classification = append([]results.StandingsRow(nil), round.Classification...)
	sortStandings(r.Classification, order)

	return &RoundReport{Round: r, Of: c.Rounds[len(c.Rounds)-1].Index, Sort: order}, nil
}

func (r *RoundReport) writeText(w io.Writer, verbose bool) error {
	fmt.Fprintf(w, "Round %d of %d (fixture %s)\n", r.Round.Index, r.Of, r.Round.FixtureID)

	if len(r.Round.Classification) > 0 {
		fmt.Fprintf(w, "\n%3s  %-30s %3s %3s %3s %3s %7s %4s\n", "#", "Team", "P", "W", "D", "L", "Goals", "Pts")
		for _, row := range r.Round.Classification {
			fmt.Fprintf(w, "%3d  %-30s %3d %3d %3d %3d %7s %4d\n",
				row.Position, row.Team, row.Played, row.Wins, row.Draws, row.Losses,
				fmt.Sprintf("%d-%d", row.GoalsFor, row.GoalsAgainst), row.Points)
		}
	}

	if len(r.Round.Matches) > 0 {
		fmt.Fprintln(w)
		for _, m := range r.Round.Matches {
			result := "vs"
			if m.Played() {
				result = fmt.Sprintf("%d-%d", *m.HomeScore, *m.AwayScore)
			}
			fmt.Fprintf(w, "  %s %s %s", m.Home, result, m.Away)
			if m.Date != "" || m.Time != "" {
				fmt.Fprintf(w, "  [%s]", joinNonEmpty(m.Date, m.Time))
			}
			fmt.Fprintln(w)
			if verbose && m.Stadium != "" {
				fmt.Fprintf(w, "       Stadium: %s\n", m.Stadium)
			}
		}
	}
	return nil
}

func joinNonEmpty(parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += " "
		}
		out += p
	}
	return out
}
