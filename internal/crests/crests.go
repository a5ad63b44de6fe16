package crests

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pfrederiksen/fpf-results/internal/logger"
	"github.com/pfrederiksen/fpf-results/internal/normalize"
	"github.com/pfrederiksen/fpf-results/internal/results"
)

// ErrDirNotFound is returned when the crest directory does not exist.
var ErrDirNotFound = errors.New("crest directory not found")

// DefaultAliases lists, per canonical crest key, the other names the site
// publishes for the same club.
var DefaultAliases = map[string][]string{
	"fc 11 esperancas":   {"fc os 11 esperancas"},
	"casa slb albufeira": {"casa benfica albufeira"},
	"nucleo scp olhao":   {"nucleo sporting cp olhao"},
	"fc ferreiras":       {"fc ferreiras a", "fc ferreiras b"},
	"4 ao cubo ado":      {"4 ao cubo ad olhao"},
	"lusitano fc":        {"lusitano fc vrsa"},
	"ef monte gordo":     {"aef monte gordo 2019"},
	"ad tavira":          {"adt ass desp tavira"},
}

// NormalizeFilename turns a crest filename into its manifest key.
func NormalizeFilename(name string) string {
	base := filepath.Base(name)
	return normalize.Fold(strings.TrimSuffix(base, filepath.Ext(base)))
}

// Build scans dir for PNG files and maps each normalized name to
// pathPrefix/filename. Files are visited in lexical order and the first file
// to claim a key keeps it.
func Build(dir, pathPrefix string) (results.CrestManifest, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDirNotFound, dir)
		}
		return nil, fmt.Errorf("reading crest directory: %w", err)
	}

	manifest := make(results.CrestManifest)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(name), ".png") {
			continue
		}

		// A file named just ".png" has no name left once the extension is
		// stripped, so it cannot be keyed.
		key := NormalizeFilename(name)
		if key == "" {
			logger.Warn("Skipping crest with empty name", logger.Fields{"file": name})
			continue
		}

		rel := name
		if pathPrefix != "" {
			rel = path.Join(pathPrefix, name)
		}

		if existing, ok := manifest[key]; ok {
			logger.Warn("Duplicate crest key", logger.Fields{
				"key":     key,
				"kept":    existing,
				"ignored": rel,
			})
			continue
		}
		manifest[key] = rel
	}

	return manifest, nil
}

// ApplyAliases registers every alias of a canonical key already present in
// the manifest. Existing keys are never overwritten and canonicals are
// visited in sorted order, so the result does not depend on map iteration.
// It returns the number of aliases added.
func ApplyAliases(manifest results.CrestManifest, aliases map[string][]string) int {
	canonicals := make([]string, 0, len(aliases))
	for canonical := range aliases {
		canonicals = append(canonicals, canonical)
	}
	sort.Strings(canonicals)

	added := 0
	for _, canonical := range canonicals {
		target, ok := manifest[canonical]
		if !ok {
			continue
		}
		for _, alias := range aliases[canonical] {
			if _, exists := manifest[alias]; exists {
				continue
			}
			manifest[alias] = target
			added++
		}
	}
	return added
}
