package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"cuelang.org/go/cue/cuecontext"
)

// WatchDef is one watch definition from a CUE file: a name, the SQL to
// observe, optional arguments, and an optional column that identifies
// records across changes.
type WatchDef struct {
	Name           string `json:"name"`
	SQL            string `json:"sql"`
	Args           []any  `json:"args,omitempty"`
	IdentityColumn string `json:"identity_column,omitempty"`
}

// watchFile is the top-level shape of a watch definition file.
type watchFile struct {
	Watches []WatchDef `json:"watches"`
}

// LoadWatches reads every .cue file in dir and returns the watch
// definitions they declare, sorted by name.
func LoadWatches(dir string) ([]WatchDef, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("watches directory not found: %s", dir)
	}
	if err != nil {
		return nil, fmt.Errorf("error accessing watches directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	paths, err := filepath.Glob(filepath.Join(dir, "*.cue"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no .cue files in %s", dir)
	}
	sort.Strings(paths)

	ctx := cuecontext.New()
	var watches []WatchDef
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		value := ctx.CompileBytes(data)
		if err := value.Err(); err != nil {
			return nil, fmt.Errorf("compile %s: %w", path, err)
		}
		var file watchFile
		if err := value.Decode(&file); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		for _, w := range file.Watches {
			if w.Name == "" {
				return nil, fmt.Errorf("%s: watch without a name", path)
			}
			if w.SQL == "" {
				return nil, fmt.Errorf("%s: watch %q without sql", path, w.Name)
			}
			watches = append(watches, w)
		}
	}

	sort.Slice(watches, func(i, j int) bool { return watches[i].Name < watches[j].Name })
	return watches, nil
}
