package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pfrederiksen/fpf-results/internal/results"
)

// ExpandPath expands a leading ~/ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}

// SaveResult writes a competition result to path, creating parent
// directories as needed.
func SaveResult(path string, competition *results.Competition) error {
	if competition == nil {
		competition = results.NewCompetition()
	}
	return writeJSON(path, competition)
}

// LoadResult reads a competition result previously written by SaveResult.
func LoadResult(path string) (*results.Competition, error) {
	path, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading result: %w", err)
	}

	var competition results.Competition
	if err := json.Unmarshal(data, &competition); err != nil {
		return nil, fmt.Errorf("parsing result: %w", err)
	}
	if competition.Rounds == nil {
		competition.Rounds = []results.Round{}
	}
	return &competition, nil
}

// SaveManifest writes a crest manifest to path. Keys are written sorted.
func SaveManifest(path string, manifest results.CrestManifest) error {
	if manifest == nil {
		manifest = results.CrestManifest{}
	}
	return writeJSON(path, manifest)
}

// LoadManifest reads a crest manifest previously written by SaveManifest.
func LoadManifest(path string) (results.CrestManifest, error) {
	path, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	manifest := results.CrestManifest{}
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return manifest, nil
}

func writeJSON(path string, v any) error {
	path, err := ExpandPath(path)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
