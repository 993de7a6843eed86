package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Shape identifies the top-level JSON form of an oracle response.
type Shape int

// Response shapes.
const (
	ShapeObject Shape = iota + 1
	ShapeArray
)

func (s Shape) String() string {
	switch s {
	case ShapeObject:
		return "object"
	case ShapeArray:
		return "array"
	default:
		return "unknown"
	}
}

// Payload is a normalized oracle response. The oracle may answer with a bare
// array or with an object wrapping an array; Payload hides that variance.
type Payload struct {
	Shape  Shape
	Raw    json.RawMessage
	object map[string]json.RawMessage
	array  []json.RawMessage
}

// ParsePayload cleans and classifies a raw oracle response.
func ParsePayload(text string) (*Payload, error) {
	cleaned := []byte(CleanJSONBlock(text))
	if len(cleaned) == 0 {
		return nil, fmt.Errorf("empty response")
	}

	switch cleaned[0] {
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(cleaned, &obj); err != nil {
			return nil, fmt.Errorf("invalid JSON object: %w", err)
		}
		return &Payload{Shape: ShapeObject, Raw: cleaned, object: obj}, nil
	case '[':
		var arr []json.RawMessage
		if err := json.Unmarshal(cleaned, &arr); err != nil {
			return nil, fmt.Errorf("invalid JSON array: %w", err)
		}
		return &Payload{Shape: ShapeArray, Raw: cleaned, array: arr}, nil
	default:
		return nil, fmt.Errorf("response is not a JSON object or array")
	}
}

// Items returns the list carried by the payload. A bare array is returned as is.
// An object yields the array under the first matching key, else its sole
// array-valued field, else a single nested wrapper object is unwrapped once.
// Any other object is treated as a one-item list.
func (p *Payload) Items(keys ...string) []json.RawMessage {
	return p.ItemsOf(nil, keys...)
}

// ItemsOf is Items for lists whose items are recognizable by a field. An
// object carrying any of itemFields, at the top level or inside a single
// wrapper, is one bare item and is never split into its own array fields.
func (p *Payload) ItemsOf(itemFields []string, keys ...string) []json.RawMessage {
	if p.Shape == ShapeArray {
		return p.array
	}
	if hasAnyField(p.object, itemFields) {
		return []json.RawMessage{p.Raw}
	}
	if items, ok := listFromObject(p.object, keys, itemFields, true); ok {
		return items
	}
	return []json.RawMessage{p.Raw}
}

func hasAnyField(obj map[string]json.RawMessage, fields []string) bool {
	for _, field := range fields {
		if _, ok := obj[field]; ok {
			return true
		}
	}
	return false
}

func listFromObject(obj map[string]json.RawMessage, keys, itemFields []string, unwrap bool) ([]json.RawMessage, bool) {
	for _, key := range keys {
		raw, ok := obj[key]
		if !ok {
			continue
		}
		if isNull(raw) {
			return []json.RawMessage{}, true
		}
		var arr []json.RawMessage
		if err := json.Unmarshal(raw, &arr); err == nil {
			return arr, true
		}
	}

	var arrays [][]json.RawMessage
	var objects []map[string]json.RawMessage
	var objectRaws []json.RawMessage
	for _, raw := range obj {
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) == 0 {
			continue
		}
		switch trimmed[0] {
		case '[':
			var arr []json.RawMessage
			if json.Unmarshal(trimmed, &arr) == nil {
				arrays = append(arrays, arr)
			}
		case '{':
			var nested map[string]json.RawMessage
			if json.Unmarshal(trimmed, &nested) == nil {
				objects = append(objects, nested)
				objectRaws = append(objectRaws, trimmed)
			}
		}
	}
	if len(arrays) == 1 {
		return arrays[0], true
	}
	if unwrap && len(arrays) == 0 && len(obj) == 1 && len(objects) == 1 {
		if hasAnyField(objects[0], itemFields) {
			return []json.RawMessage{objectRaws[0]}, true
		}
		return listFromObject(objects[0], keys, itemFields, false)
	}
	return nil, false
}

// Object returns the single object carried by the payload. An array yields
// its first element; an object wrapping a single object under key is unwrapped.
func (p *Payload) Object(keys ...string) (json.RawMessage, error) {
	if p.Shape == ShapeArray {
		if len(p.array) == 0 {
			return nil, fmt.Errorf("expected an object, got an empty array")
		}
		return p.array[0], nil
	}
	for _, key := range keys {
		if raw, ok := p.object[key]; ok {
			if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '{' {
				return trimmed, nil
			}
		}
	}
	return p.Raw, nil
}

// Decode unmarshals the object carried by the payload into v.
func (p *Payload) Decode(v any, keys ...string) error {
	raw, err := p.Object(keys...)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
