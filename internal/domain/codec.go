package domain

import (
	"encoding/json"
	"fmt"
)

// objectFields marshals v and splits the resulting JSON object into its raw members.
func objectFields(v any) (map[string]json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("expected object, got %s", data)
	}
	return fields, nil
}

func setField(fields map[string]json.RawMessage, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	fields[key] = data
	return nil
}

// marshalTagged encodes v as a JSON object carrying a "type" discriminant.
func marshalTagged(tag string, v any) ([]byte, error) {
	fields, err := objectFields(v)
	if err != nil {
		return nil, err
	}
	if err := setField(fields, "type", tag); err != nil {
		return nil, err
	}
	return json.Marshal(fields)
}

func readTag(data []byte) (string, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return "", err
	}
	return head.Type, nil
}
