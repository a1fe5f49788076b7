package util

// CloneMap deep-copies a raw payload map, including nested maps and slices.
// A nil input yields nil so callers can distinguish absent payloads.
func CloneMap(input map[string]any) map[string]any {
	if input == nil {
		return nil
	}
	out := make(map[string]any, len(input))
	for key, value := range input {
		out[key] = CloneValue(value)
	}
	return out
}

// CloneSlice deep-copies a raw payload slice.
func CloneSlice(input []any) []any {
	if input == nil {
		return nil
	}
	out := make([]any, len(input))
	for i, value := range input {
		out[i] = CloneValue(value)
	}
	return out
}

// CloneValue deep-copies nested map/slice values and passes scalars through.
func CloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return CloneMap(typed)
	case []any:
		return CloneSlice(typed)
	default:
		return value
	}
}

// CloneStrings copies a string slice, preserving nil.
func CloneStrings(input []string) []string {
	if input == nil {
		return nil
	}
	return append([]string(nil), input...)
}
