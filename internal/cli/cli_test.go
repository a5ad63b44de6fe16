package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pfrederiksen/fpf-results/internal/storage"
)

const roundFragment = `<div id="classification">
<div class="game classification"><div class="col-xs-1">1</div><div class="col-xs-4">Clube X</div><div class="col-xs-1">1</div><div class="col-xs-1">1</div><div class="col-xs-1">0</div><div class="col-xs-1">0</div><div class="col-xs-1">2</div><div class="col-xs-1">1</div><div class="col-xs-1">3</div></div>
<div class="game classification"><div class="col-xs-1">2</div><div class="col-xs-4">Clube Y</div><div class="col-xs-1">1</div><div class="col-xs-1">0</div><div class="col-xs-1">0</div><div class="col-xs-1">1</div><div class="col-xs-1">1</div><div class="col-xs-1">2</div><div class="col-xs-1">0</div></div>
</div>
<div id="matches"><div class="game"><div class="home-team">Clube X</div><div class="text-center">12 Out 2-1</div><div class="away-team">Clube Y</div></div></div>`

func newSite(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/Competition/Details":
			fmt.Fprint(w, `<a href="/Competition/GetClassificationAndMatchesByFixture?fixtureId=600930">J1</a>`)
		case "/Competition/GetClassificationAndMatchesByFixture":
			if r.URL.Query().Get("fixtureId") != "600930" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			fmt.Fprint(w, roundFragment)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

// run executes the CLI with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("FPF_ROUND_PAUSE", "0s")
	t.Setenv("FPF_RATE_LIMIT_COOLDOWN", "1ms")

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "missing.env"), "--log-level", "error"))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestFetch(t *testing.T) {
	server := newSite(t)
	t.Setenv("FPF_BASE_URL", server.URL)

	dir := t.TempDir()
	output := filepath.Join(dir, "data", "seniores.json")
	dbPath := filepath.Join(dir, "results.db")

	stdout, err := run(t, "fetch",
		"--competition", "seniores",
		"--output", output,
		"--cache-dir", filepath.Join(dir, "cache"),
		"--sqlite", dbPath,
		"--format", "json",
	)
	if err != nil {
		t.Fatalf("fetch error = %v", err)
	}

	var report FetchReport
	if err := json.Unmarshal([]byte(stdout), &report); err != nil {
		t.Fatalf("report is not JSON: %v\n%s", err, stdout)
	}
	if report.Competition != "seniores" || report.Summary.Rounds != 1 || report.Summary.Matches != 1 {
		t.Errorf("report = %+v", report)
	}
	if report.Summary.Leader == nil || report.Summary.Leader.Team != "Clube X" {
		t.Errorf("leader = %+v, want Clube X", report.Summary.Leader)
	}
	if report.Metrics != nil {
		t.Error("metrics should only be reported in verbose mode")
	}

	saved, err := storage.LoadResult(output)
	if err != nil {
		t.Fatalf("loading saved result: %v", err)
	}
	if len(saved.Rounds) != 1 || saved.Rounds[0].FixtureID != "600930" {
		t.Errorf("saved rounds = %+v", saved.Rounds)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("sqlite export missing: %v", err)
	}
}

func TestFetch_TextReport(t *testing.T) {
	server := newSite(t)
	t.Setenv("FPF_BASE_URL", server.URL)

	dir := t.TempDir()
	stdout, err := run(t, "fetch",
		"--competition-id", "28206",
		"--season-id", "105",
		"--output", filepath.Join(dir, "custom.json"),
		"--cache-dir", filepath.Join(dir, "cache"),
		"--verbose",
	)
	if err != nil {
		t.Fatalf("fetch error = %v", err)
	}

	for _, want := range []string{"Rounds: 1", "Matches: 1 (1 played)", "Leader: Clube X (3 pts)", "Metrics:", "rounds.parsed"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}
}

func TestFetch_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"no competition", []string{"fetch"}, "--competition or --competition-id"},
		{"unknown preset", []string{"fetch", "--competition", "juniores"}, "unknown competition"},
		{"missing output", []string{"fetch", "--competition-id", "1", "--season-id", "2"}, "output path is required"},
		{"bad format", []string{"fetch", "--competition", "seniores", "--format", "xml"}, "invalid format"},
		{"main page down", []string{"fetch", "--competition", "seniores", "--output", "unused.json"}, "competition page unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.NotFoundHandler())
			defer server.Close()
			t.Setenv("FPF_BASE_URL", server.URL)
			t.Setenv("FPF_CACHE_DIR", t.TempDir())

			_, err := run(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestCrests(t *testing.T) {
	dir := t.TempDir()
	crestDir := filepath.Join(dir, "img", "crests")
	if err := os.MkdirAll(crestDir, 0755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"AD Tavira.png", "SC Olhanense.PNG", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(crestDir, name), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
	output := filepath.Join(dir, "data", "crests.json")

	stdout, err := run(t, "crests", "--dir", crestDir, "--output", output, "--prefix", "img/crests")
	if err != nil {
		t.Fatalf("crests error = %v", err)
	}
	if !strings.Contains(stdout, "Crests: 2") || !strings.Contains(stdout, "Aliases: 1") {
		t.Errorf("output = %q", stdout)
	}

	manifest, err := storage.LoadManifest(output)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{
		"ad tavira":           "img/crests/AD Tavira.png",
		"adt ass desp tavira": "img/crests/AD Tavira.png",
		"sc olhanense":        "img/crests/SC Olhanense.PNG",
	}
	if len(manifest) != len(want) {
		t.Errorf("manifest = %v", manifest)
	}
	for k, v := range want {
		if manifest[k] != v {
			t.Errorf("manifest[%q] = %q, want %q", k, manifest[k], v)
		}
	}
}

func TestCrests_MissingDir(t *testing.T) {
	_, err := run(t, "crests", "--dir", filepath.Join(t.TempDir(), "nope"), "--output", filepath.Join(t.TempDir(), "c.json"))
	if err == nil || !strings.Contains(err.Error(), "crest directory not found") {
		t.Errorf("error = %v", err)
	}
}

func TestProbe(t *testing.T) {
	server := newSite(t)
	t.Setenv("FPF_BASE_URL", server.URL)
	cacheDir := t.TempDir()

	stdout, err := run(t, "probe", "600930", "--competition", "infantis-c", "--cache-dir", cacheDir)
	if err != nil {
		t.Fatalf("probe error = %v", err)
	}
	if !strings.Contains(stdout, "Matches: 1") || !strings.Contains(stdout, "Standings rows: 2") {
		t.Errorf("output = %q", stdout)
	}
	if _, err := os.Stat(filepath.Join(cacheDir, "infantis_c_fixture_600930.html")); err != nil {
		t.Errorf("probe should cache the fragment: %v", err)
	}

	if _, err := run(t, "probe", "12a"); err == nil || !strings.Contains(err.Error(), "invalid fixture id") {
		t.Errorf("probe of a bad id error = %v", err)
	}
	if _, err := run(t, "probe", "1", "--cache-dir", cacheDir); err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("probe of a missing fixture error = %v", err)
	}
}

func TestShow(t *testing.T) {
	server := newSite(t)
	t.Setenv("FPF_BASE_URL", server.URL)

	dir := t.TempDir()
	output := filepath.Join(dir, "out.json")
	if _, err := run(t, "fetch", "--competition", "seniores", "--output", output, "--cache-dir", dir); err != nil {
		t.Fatalf("fetch error = %v", err)
	}

	stdout, err := run(t, "show", output, "--sort", "team")
	if err != nil {
		t.Fatalf("show error = %v", err)
	}
	if !strings.Contains(stdout, "Round 1 of 1 (fixture 600930)") {
		t.Errorf("output = %q", stdout)
	}
	if x, y := strings.Index(stdout, "Clube X "), strings.Index(stdout, "Clube Y "); x < 0 || y < 0 || x > y {
		t.Errorf("standings not in team order:\n%s", stdout)
	}
	if !strings.Contains(stdout, "Clube X 2-1 Clube Y  [12 Out]") {
		t.Errorf("match line missing:\n%s", stdout)
	}

	if _, err := run(t, "show", output, "--round", "7"); err == nil {
		t.Error("show of a missing round should fail")
	}
	if _, err := run(t, "show", output, "--sort", "age"); err == nil {
		t.Error("show with an unknown sort order should fail")
	}
}

func TestExecute_LogsFailures(t *testing.T) {
	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"fetch", "--env-file", filepath.Join(t.TempDir(), "missing.env"), "--log-level", "error"})

	if code := execute(context.Background(), cmd); code != ExitError {
		t.Errorf("exit code = %d, want %d", code, ExitError)
	}

	var entry struct {
		Level   string `json:"level"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	line := strings.TrimSpace(stderr.String())
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("stderr is not a log entry: %v\n%s", err, line)
	}
	if entry.Level != "ERROR" || entry.Message != "Command failed" || !strings.Contains(entry.Error, "--competition") {
		t.Errorf("log entry = %+v", entry)
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout = %q, want nothing on failure", stdout.String())
	}
}

func TestExecute_Success(t *testing.T) {
	server := newSite(t)
	t.Setenv("FPF_BASE_URL", server.URL)
	t.Setenv("FPF_ROUND_PAUSE", "0s")

	dir := t.TempDir()
	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"fetch", "--competition", "seniores", "--output", filepath.Join(dir, "out.json"),
		"--env-file", filepath.Join(dir, "missing.env"), "--log-level", "error"})

	if code := execute(context.Background(), cmd); code != ExitSuccess {
		t.Errorf("exit code = %d, want %d", code, ExitSuccess)
	}
}
