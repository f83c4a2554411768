package catalog

import "testing"

func TestAncestryFromCode(t *testing.T) {
	tests := []struct {
		code       string
		wantLevels int
		want       CodeAncestry
	}{
		{"0102030045-6", 3, CodeAncestry{Group: "01", SubGroup: "02", Form: "03"}},
		{"0102030045", 3, CodeAncestry{Group: "01", SubGroup: "02", Form: "03"}},
		{"010203", 3, CodeAncestry{Group: "01", SubGroup: "02", Form: "03"}},
		{"0102", 2, CodeAncestry{Group: "01", SubGroup: "02"}},
		{"01", 1, CodeAncestry{Group: "01"}},
		{"0", 0, CodeAncestry{}},
		{"", 0, CodeAncestry{}},
		{"01020", 2, CodeAncestry{Group: "01", SubGroup: "02"}},
	}
	for _, tt := range tests {
		got, levels := AncestryFromCode(tt.code)
		if levels != tt.wantLevels {
			t.Errorf("AncestryFromCode(%q) levels = %d, want %d", tt.code, levels, tt.wantLevels)
		}
		if got != tt.want {
			t.Errorf("AncestryFromCode(%q) = %+v, want %+v", tt.code, got, tt.want)
		}
	}
}

func TestIsNumericCode(t *testing.T) {
	tests := []struct {
		term string
		want bool
	}{
		{"010203", true},
		{"0102030045-6", true},
		{"01", true},
		{"", false},
		{"hearing", false},
		{"01a203", false},
		{"010-203", false}, // dash not in check-digit position
		{"-6", false},
	}
	for _, tt := range tests {
		if got := isNumericCode(tt.term); got != tt.want {
			t.Errorf("isNumericCode(%q) = %v, want %v", tt.term, got, tt.want)
		}
	}
}

func TestPathScheme(t *testing.T) {
	if got := procedurePath("202405", "01", "02", "03", "0102030045-6"); got !=
		"competence/202405/groups/01/subgroups/02/forms/03/procedures/0102030045-6" {
		t.Errorf("unexpected procedure path %q", got)
	}
	if got := lookupItemPath("202405", LookupDiagnoses, "H90"); got !=
		"competence/202405/lookups/diagnoses/items/H90" {
		t.Errorf("unexpected lookup path %q", got)
	}
	if got := historyPath("abc"); got != "import_history/abc" {
		t.Errorf("unexpected history path %q", got)
	}
}
