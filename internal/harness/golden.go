package harness

import (
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/livequery/internal/controller"
	"github.com/roach88/livequery/internal/diff"
)

// RunWithGolden executes a scenario against a scratch database and compares
// the canonical JSON of its trace with testdata/golden/{name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) {
	t.Helper()

	result, err := Run(scenario, t.TempDir()+"/scenario.db")
	if err != nil {
		t.Fatalf("run scenario: %v", err)
	}

	doc := resultDocument(scenario, result)
	data, err := diff.MarshalCanonical(doc)
	if err != nil {
		t.Fatalf("marshal trace: %v", err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
}

// resultDocument flattens a result into canonical-JSON-ready form. All
// database values render as strings so goldens do not depend on driver
// value types.
func resultDocument(scenario *Scenario, result *Result) map[string]any {
	trace := make([]any, len(result.Trace))
	for i, ev := range result.Trace {
		entry := map[string]any{
			"transaction": ev.Transaction,
			"callback":    ev.Callback,
		}
		if ev.Callback == "did_change" {
			entry["kind"] = ev.Event.Kind.String()
			switch ev.Event.Kind {
			case controller.EventInsertion, controller.EventUpdate:
				entry["at"] = int64(ev.Event.NewIndexPath.Row)
			case controller.EventDeletion:
				entry["from"] = int64(ev.Event.IndexPath.Row)
			case controller.EventMove:
				entry["from"] = int64(ev.Event.IndexPath.Row)
				entry["to"] = int64(ev.Event.NewIndexPath.Row)
			}
			if ev.Event.Kind == controller.EventMove || ev.Event.Kind == controller.EventUpdate {
				entry["changed_columns"] = renderMap(ev.Event.ChangedColumns)
			}
			entry["record"] = renderMap(ev.Record)
		}
		trace[i] = entry
	}

	records := make([]any, len(result.FinalRecords))
	for i, rec := range result.FinalRecords {
		records[i] = renderMap(rec)
	}

	return map[string]any{
		"scenario_name": scenario.Name,
		"trace":         trace,
		"final_records": records,
	}
}

func renderMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = renderValue(v)
	}
	return out
}

func renderValue(v any) string {
	if v == nil {
		return "NULL"
	}
	if b, ok := v.([]byte); ok {
		return fmt.Sprintf("x'%x'", b)
	}
	return fmt.Sprintf("%v", v)
}
