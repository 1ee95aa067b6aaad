package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/roach88/livequery/internal/controller"
)

// eventPrinter renders delegate events in the chosen format.
type eventPrinter struct {
	w      io.Writer
	format string
	watch  string
}

func newEventPrinter(w io.Writer, format, watch string) *eventPrinter {
	return &eventPrinter{w: w, format: format, watch: watch}
}

// Print renders one event with its record.
func (p *eventPrinter) Print(rec map[string]any, event controller.Event) {
	if p.format == "json" {
		p.printJSON(rec, event)
		return
	}
	p.printText(rec, event)
}

func (p *eventPrinter) printJSON(rec map[string]any, event controller.Event) {
	doc := map[string]any{
		"watch":  p.watch,
		"kind":   event.Kind.String(),
		"record": rec,
	}
	switch event.Kind {
	case controller.EventInsertion, controller.EventUpdate:
		doc["at"] = event.NewIndexPath.Row
	case controller.EventDeletion:
		doc["from"] = event.IndexPath.Row
	case controller.EventMove:
		doc["from"] = event.IndexPath.Row
		doc["to"] = event.NewIndexPath.Row
	}
	if len(event.ChangedColumns) > 0 {
		doc["changed_columns"] = event.ChangedColumns
	}
	data, err := json.Marshal(doc)
	if err != nil {
		fmt.Fprintf(p.w, "{\"watch\":%q,\"error\":%q}\n", p.watch, err)
		return
	}
	fmt.Fprintln(p.w, string(data))
}

func (p *eventPrinter) printText(rec map[string]any, event controller.Event) {
	var pos string
	switch event.Kind {
	case controller.EventInsertion, controller.EventUpdate:
		pos = fmt.Sprintf("at %d", event.NewIndexPath.Row)
	case controller.EventDeletion:
		pos = fmt.Sprintf("from %d", event.IndexPath.Row)
	case controller.EventMove:
		pos = fmt.Sprintf("%d -> %d", event.IndexPath.Row, event.NewIndexPath.Row)
	}

	line := fmt.Sprintf("[%s] %s %s %s", p.watch, event.Kind, pos, renderRecord(rec))
	if len(event.ChangedColumns) > 0 {
		line += " (was " + renderRecord(event.ChangedColumns) + ")"
	}
	fmt.Fprintln(p.w, line)
}

func renderRecord(m map[string]any) string {
	cols := make([]string, 0, len(m))
	for c := range m {
		cols = append(cols, c)
	}
	sort.Strings(cols)

	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprintf("%s=%v", c, m[c])
	}
	return "{" + strings.Join(parts, " ") + "}"
}
