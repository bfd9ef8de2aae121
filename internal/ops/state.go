// Package ops holds operational tooling: exporting and importing the
// persisted state snapshots as plain JSON files, e.g. for backups or
// for migrating between storage backends.
package ops

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/MostafaAmin07/super-productivity/internal/persistence"
)

var stateKinds = []string{
	persistence.KindTaskRepeatCfg,
	persistence.KindTaskArchive,
	persistence.KindWorkContext,
}

// ExportState writes one pretty-printed JSON file per persisted kind
// into outDir. Kinds never persisted are skipped.
func ExportState(store persistence.Store, outDir string) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}

	written := make([]string, 0, len(stateKinds))
	for _, kind := range stateKinds {
		data, ok, err := store.LoadState(kind)
		if err != nil {
			return written, fmt.Errorf("load %s: %w", kind, err)
		}
		if !ok {
			continue
		}

		var pretty json.RawMessage = data
		if indented, err := json.MarshalIndent(pretty, "", "  "); err == nil {
			data = indented
		}

		path := filepath.Join(outDir, kind+".json")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

// ImportState loads every known kind's JSON file from inDir into the
// store. Missing files are skipped; malformed JSON aborts.
func ImportState(store persistence.Store, inDir string) ([]string, error) {
	imported := make([]string, 0, len(stateKinds))
	for _, kind := range stateKinds {
		path := filepath.Join(inDir, kind+".json")
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return imported, err
		}
		if !json.Valid(data) {
			return imported, fmt.Errorf("%s: not valid JSON", path)
		}
		if err := store.SaveState(kind, data); err != nil {
			return imported, fmt.Errorf("save %s: %w", kind, err)
		}
		imported = append(imported, kind)
	}
	return imported, nil
}
