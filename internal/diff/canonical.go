package diff

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// ScriptDocument converts a script into a plain document for canonical JSON
// serialization, the form golden files store. Values are rendered as
// strings so that every golden byte is deterministic across drivers.
func ScriptDocument[R any](script []Change[R]) []any {
	doc := make([]any, len(script))
	for i, c := range script {
		entry := map[string]any{
			"kind": c.Kind.String(),
			"row":  rowDocument(c),
		}
		switch c.Kind {
		case Insertion, Update:
			entry["at"] = int64(c.To)
		case Deletion:
			entry["from"] = int64(c.From)
		case Move:
			entry["from"] = int64(c.From)
			entry["to"] = int64(c.To)
		}
		if c.Kind == Move || c.Kind == Update {
			changed := make(map[string]any, len(c.ChangedColumns))
			for col, old := range c.ChangedColumns {
				changed[col] = renderValue(old)
			}
			entry["changed_columns"] = changed
		}
		doc[i] = entry
	}
	return doc
}

func rowDocument[R any](c Change[R]) map[string]any {
	row := c.Item.Row()
	out := make(map[string]any, row.Len())
	for i, col := range row.Columns() {
		out[col] = renderValue(row.ValueAt(i))
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

// MarshalCanonical produces canonical JSON for golden comparison: object
// keys sorted by UTF-16 code units, strings NFC normalized, no HTML
// escaping, no floats and no nulls. Supported inputs are string, int,
// int64, bool, []any and map[string]any.
func MarshalCanonical(v any) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("null is forbidden in canonical JSON")
	case string:
		return marshalCanonicalString(val)
	case int64:
		return []byte(fmt.Sprintf("%d", val)), nil
	case int:
		return []byte(fmt.Sprintf("%d", val)), nil
	case bool:
		if val {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case float32, float64:
		return nil, fmt.Errorf("floats are forbidden in canonical JSON: %v", val)
	case []any:
		return marshalCanonicalArray(val)
	case map[string]any:
		return marshalCanonicalObject(val)
	default:
		return nil, fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
}

func marshalCanonicalArray(arr []any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := MarshalCanonical(elem)
		if err != nil {
			return nil, fmt.Errorf("array[%d]: %w", i, err)
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func marshalCanonicalObject(obj map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range sortedKeysUTF16(obj) {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := marshalCanonicalString(k)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := MarshalCanonical(obj[k])
		if err != nil {
			return nil, fmt.Errorf("value for key %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalCanonicalString encodes s NFC-normalized with HTML escaping off.
func marshalCanonicalString(s string) ([]byte, error) {
	normalized := norm.NFC.String(s)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// sortedKeysUTF16 orders keys by UTF-16 code units, the ordering golden
// files are pinned to.
func sortedKeysUTF16(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		ua := utf16.Encode([]rune(a))
		ub := utf16.Encode([]rune(b))
		for i := 0; i < len(ua) && i < len(ub); i++ {
			if ua[i] != ub[i] {
				if ua[i] < ub[i] {
					return -1
				}
				return 1
			}
		}
		return len(ua) - len(ub)
	})
	return keys
}
