package rules

import (
	"fmt"
	"strings"
)

// NormalizeConditions converts a loosely-typed condition payload into the
// typed Conditions variant for the given trigger type.
//
// Two payload shapes exist in the wild and both are accepted at the store
// boundary:
//
//   - object form: {"allowed_emojis": [...]}, {"keywords": [...]}, {"tags": [...]}
//   - legacy bare-array form: ["factura", "invoice"], interpreted as the
//     value set for the trigger type's own variant
//
// Anything else is rejected. The evaluator never sees raw payloads.
func NormalizeConditions(triggerType TriggerType, raw any) (Conditions, error) {
	switch v := raw.(type) {
	case nil:
		return Conditions{}, nil

	case Conditions:
		return v, nil

	case []any:
		values, err := stringSlice(v)
		if err != nil {
			return Conditions{}, fmt.Errorf("legacy condition array: %w", err)
		}
		return conditionsFromValues(triggerType, values)

	case []string:
		return conditionsFromValues(triggerType, v)

	case map[string]any:
		return conditionsFromObject(v)

	default:
		return Conditions{}, fmt.Errorf("unsupported condition payload type %T", raw)
	}
}

// conditionsFromValues places a bare value set into the variant belonging to
// the trigger type.
func conditionsFromValues(triggerType TriggerType, values []string) (Conditions, error) {
	switch triggerType {
	case TriggerReaction:
		return Conditions{AllowedEmojis: values}, nil
	case TriggerKeyword:
		return Conditions{Keywords: values}, nil
	case TriggerHashtag:
		return Conditions{Tags: stripHashes(values)}, nil
	case TriggerMessage:
		if len(values) > 0 {
			return Conditions{}, fmt.Errorf("message trigger cannot carry condition values")
		}
		return Conditions{}, nil
	default:
		return Conditions{}, fmt.Errorf("unknown trigger type %q", triggerType)
	}
}

// conditionsFromObject decodes the keyed object form. Unknown keys are
// rejected rather than silently dropped.
func conditionsFromObject(obj map[string]any) (Conditions, error) {
	var c Conditions
	for key, val := range obj {
		values, err := anyToStringSlice(val)
		if err != nil {
			return Conditions{}, fmt.Errorf("condition key %q: %w", key, err)
		}
		switch key {
		case "allowed_emojis", "allowedEmojis", "emojis":
			c.AllowedEmojis = values
		case "keywords":
			c.Keywords = values
		case "tags", "hashtags":
			c.Tags = stripHashes(values)
		default:
			return Conditions{}, fmt.Errorf("unknown condition key %q", key)
		}
	}
	return c, nil
}

func anyToStringSlice(val any) ([]string, error) {
	switch v := val.(type) {
	case []string:
		return v, nil
	case []any:
		return stringSlice(v)
	case string:
		return []string{v}, nil
	default:
		return nil, fmt.Errorf("expected string list, got %T", val)
	}
}

func stringSlice(values []any) ([]string, error) {
	out := make([]string, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected string element, got %T", v)
		}
		out = append(out, s)
	}
	return out, nil
}

// stripHashes drops a leading '#' so that "#work" and "work" configure the
// same tag.
func stripHashes(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, strings.TrimPrefix(t, "#"))
	}
	return out
}
