package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "insert_update_delete.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "insert_update_delete", s.Name)
	assert.Len(t, s.Setup, 1)
	assert.Len(t, s.Transactions, 5)
	assert.True(t, s.Transactions[3].Rollback)
}

func TestLoadScenario_Missing(t *testing.T) {
	_, err := LoadScenario(filepath.Join("testdata", "no_such_scenario.yaml"))
	assert.Error(t, err)
}

func TestScenarioGoldens(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		scenario, err := LoadScenario(path)
		require.NoError(t, err)

		t.Run(scenario.Name, func(t *testing.T) {
			RunWithGolden(t, scenario)
		})
	}
}

func TestRun_RollbackProducesNoTrace(t *testing.T) {
	scenario := &Scenario{
		Name:  "rollback_only",
		Setup: []string{"CREATE TABLE players (id INTEGER PRIMARY KEY, name TEXT NOT NULL, score INTEGER NOT NULL)"},
		Watch: WatchSpec{SQL: "SELECT id, name, score FROM players ORDER BY score DESC, id"},
		Transactions: []TransactionStep{
			{
				Name:       "aborted insert",
				Statements: []string{"INSERT INTO players (id, name, score) VALUES (1, 'arthur', 100)"},
				Rollback:   true,
			},
		},
	}

	result, err := Run(scenario, t.TempDir()+"/rollback.db")
	require.NoError(t, err)
	assert.Empty(t, result.Trace)
	assert.Empty(t, result.FinalRecords)
}
