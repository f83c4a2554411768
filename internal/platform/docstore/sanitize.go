package docstore

// Sanitize normalizes a raw record into a store-representable Document.
// It is deliberately lossy: nil values, nil slice elements and nested nils
// are dropped rather than stored, mirroring what the underlying stores
// reject. Callers must not rely on round-tripping absent fields.
func Sanitize(raw map[string]interface{}) Document {
	out := make(Document, len(raw))
	for k, v := range raw {
		if clean, ok := sanitizeValue(v); ok {
			out[k] = clean
		}
	}
	return out
}

func sanitizeValue(v interface{}) (interface{}, bool) {
	switch val := v.(type) {
	case nil:
		return nil, false
	case map[string]interface{}:
		return Sanitize(val), true
	case []interface{}:
		clean := make([]interface{}, 0, len(val))
		for _, item := range val {
			if c, ok := sanitizeValue(item); ok {
				clean = append(clean, c)
			}
		}
		return clean, true
	case []string:
		// Keep string slices as-is; empty strings are representable.
		return val, true
	default:
		return val, true
	}
}
