package store

import (
	"encoding/json"
	"fmt"
)

// EncodeFields converts a JSON-tagged struct into document fields.
func EncodeFields(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal fields: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("unmarshal fields: %w", err)
	}
	return m, nil
}

// DecodeFields converts document fields into a JSON-tagged struct. Backend
// specific value types (time.Time, int64) round-trip through their JSON form.
func DecodeFields(fields map[string]any, v any) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshal fields: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("unmarshal fields: %w", err)
	}
	return nil
}
