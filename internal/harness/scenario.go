// Package harness runs YAML-defined end-to-end scenarios against a live
// controller and compares the recorded delegate trace with golden files.
//
// A scenario declares a schema, a watched query, and a sequence of
// transactions. The harness opens a scratch database, attaches a
// controller, applies the transactions through the store's writer, and
// records every delegate callback. The canonical JSON of the trace plus the
// final projection is the golden material.
package harness

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is one YAML scenario file.
type Scenario struct {
	// Name identifies the scenario; it is also the golden file name.
	Name string `yaml:"name"`

	// Description says what the scenario demonstrates.
	Description string `yaml:"description"`

	// Setup statements run once before the controller attaches, outside
	// observation.
	Setup []string `yaml:"setup"`

	// Watch is the query the controller observes.
	Watch WatchSpec `yaml:"watch"`

	// Transactions run in order after the initial fetch.
	Transactions []TransactionStep `yaml:"transactions"`
}

// WatchSpec is the watched query: SQL with optional arguments.
type WatchSpec struct {
	SQL  string `yaml:"sql"`
	Args []any  `yaml:"args,omitempty"`
}

// TransactionStep is one transaction of the scenario.
type TransactionStep struct {
	// Name labels the step in the trace.
	Name string `yaml:"name"`

	// Statements execute in order inside one transaction.
	Statements []string `yaml:"statements"`

	// Rollback aborts the transaction instead of committing it.
	Rollback bool `yaml:"rollback,omitempty"`
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load scenario: %w", err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("load scenario %s: %w", path, err)
	}
	if s.Name == "" {
		return nil, fmt.Errorf("load scenario %s: missing name", path)
	}
	if s.Watch.SQL == "" {
		return nil, fmt.Errorf("load scenario %s: missing watch.sql", path)
	}
	if len(s.Transactions) == 0 {
		return nil, fmt.Errorf("load scenario %s: no transactions", path)
	}
	return &s, nil
}
