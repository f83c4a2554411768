package docstore

import "testing"

func TestSanitize_DropsNilValues(t *testing.T) {
	doc := Sanitize(map[string]interface{}{
		"code": "01",
		"name": nil,
	})
	if _, ok := doc["name"]; ok {
		t.Error("expected nil field to be dropped")
	}
	if doc["code"] != "01" {
		t.Errorf("expected code to survive, got %v", doc["code"])
	}
}

func TestSanitize_NestedMap(t *testing.T) {
	doc := Sanitize(map[string]interface{}{
		"stats": map[string]interface{}{
			"groups":  2,
			"missing": nil,
		},
	})
	stats, ok := doc["stats"].(Document)
	if !ok {
		t.Fatalf("expected nested Document, got %T", doc["stats"])
	}
	if _, ok := stats["missing"]; ok {
		t.Error("expected nested nil field to be dropped")
	}
	if stats["groups"] != 2 {
		t.Errorf("expected groups 2, got %v", stats["groups"])
	}
}

func TestSanitize_SliceDropsNilElements(t *testing.T) {
	doc := Sanitize(map[string]interface{}{
		"items": []interface{}{"a", nil, "b"},
	})
	items, ok := doc["items"].([]interface{})
	if !ok {
		t.Fatalf("expected slice, got %T", doc["items"])
	}
	if len(items) != 2 {
		t.Errorf("expected nil element dropped, got %v", items)
	}
}

func TestSanitize_KeepsStringSlices(t *testing.T) {
	doc := Sanitize(map[string]interface{}{
		"codes": []string{"A00", ""},
	})
	codes, ok := doc["codes"].([]string)
	if !ok {
		t.Fatalf("expected []string, got %T", doc["codes"])
	}
	if len(codes) != 2 {
		t.Errorf("expected both elements kept (empty string is representable), got %v", codes)
	}
}

func TestSanitize_KeepsZeroValues(t *testing.T) {
	// Lossy means dropping nils, not zero values: 0 and "" are data.
	doc := Sanitize(map[string]interface{}{
		"points": 0,
		"sex":    "",
	})
	if doc["points"] != 0 {
		t.Errorf("expected zero int kept, got %v", doc["points"])
	}
	if doc["sex"] != "" {
		t.Errorf("expected empty string kept, got %v", doc["sex"])
	}
}
