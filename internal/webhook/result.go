package webhook

import (
	"encoding/json"
)

// Result is the interpreted automation response. Parse failures yield a zero
// Result rather than an error: a malformed body means "no output text", not a
// fatal condition.
type Result struct {
	// Type is the explicit response classifier tag, if present.
	Type string

	// Output is the human-readable text extracted from the response.
	Output string

	// Records are lead-like objects found in the response body.
	Records []map[string]any
}

// Alternative field names for the human-readable output text.
var outputKeys = []string{"output", "message", "text"}

// Alternative field names under which a lead array may be nested.
var recordKeys = []string{"leads", "data", "result", "items"}

func parseResult(raw []byte) Result {
	if len(raw) == 0 {
		return Result{}
	}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err == nil {
		return Result{
			Type:    stringField(obj, "type"),
			Output:  firstStringField(obj, outputKeys),
			Records: findRecords(obj),
		}
	}

	// A bare top-level array of lead-like records is also accepted.
	var arr []any
	if err := json.Unmarshal(raw, &arr); err == nil {
		return Result{Records: toRecords(arr)}
	}

	return Result{}
}

func stringField(obj map[string]any, key string) string {
	if s, ok := obj[key].(string); ok {
		return s
	}
	return ""
}

func firstStringField(obj map[string]any, keys []string) string {
	for _, key := range keys {
		if s := stringField(obj, key); s != "" {
			return s
		}
	}
	return ""
}

func findRecords(obj map[string]any) []map[string]any {
	for _, key := range recordKeys {
		if arr, ok := obj[key].([]any); ok {
			return toRecords(arr)
		}
	}
	return nil
}

func toRecords(arr []any) []map[string]any {
	records := make([]map[string]any, 0, len(arr))
	for _, item := range arr {
		if rec, ok := item.(map[string]any); ok {
			records = append(records, rec)
		}
	}
	return records
}
