package registry

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/sketchtrail/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// Canonicalize normalizes v into its JSON shape (float64 numbers, []any, map[string]any).
// Graphs built in memory and graphs imported from JSON then replay identically.
func Canonicalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal value: %w", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal value: %w", err)
	}
	return out, nil
}

// CanonicalParameters canonicalizes v and requires it to be a JSON object (or nil).
func CanonicalParameters(v any) (domain.Parameters, error) {
	if v == nil {
		return nil, nil
	}
	if p, ok := v.(domain.Parameters); ok && p == nil {
		return nil, nil
	}
	out, err := Canonicalize(v)
	if err != nil {
		return nil, err
	}
	switch m := out.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return domain.Parameters(m), nil
	default:
		return nil, fmt.Errorf("parameters must be an object, got %T", out)
	}
}

// Decode copies parameters into a typed struct, matching fields by their json tags.
func Decode(params domain.Parameters, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           out,
		WeaklyTypedInput: false,
		ZeroFields:       true,
	})
	if err != nil {
		return fmt.Errorf("failed to build decoder: %w", err)
	}
	if err := dec.Decode(map[string]any(params)); err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}
	return nil
}

// DecodeValue decodes an arbitrary canonical value into out through JSON,
// which honors the target's own json tags and custom unmarshalers.
func DecodeValue(v any, out any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode value: %w", err)
	}
	return nil
}
