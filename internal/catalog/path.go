package catalog

import (
	"strings"

	"github.com/sigcat/sigcat/internal/platform/docstore"
)

// Path builders for the persisted layout. Competence values must already be
// normalized to YYYYMM before reaching these.

func competencePath(competence string) string {
	return docstore.JoinPath("competence", competence)
}

func groupPath(competence, group string) string {
	return docstore.JoinPath(competencePath(competence), "groups", group)
}

func subGroupPath(competence, group, subGroup string) string {
	return docstore.JoinPath(groupPath(competence, group), "subgroups", subGroup)
}

func formPath(competence, group, subGroup, form string) string {
	return docstore.JoinPath(subGroupPath(competence, group, subGroup), "forms", form)
}

func procedurePath(competence, group, subGroup, form, procedure string) string {
	return docstore.JoinPath(formPath(competence, group, subGroup, form), "procedures", procedure)
}

func lookupItemPath(competence, lookupName, code string) string {
	return docstore.JoinPath(competencePath(competence), "lookups", lookupName, "items", code)
}

func historyPath(id string) string {
	return docstore.JoinPath("import_history", id)
}

// CodeAncestry is the Group/SubGroup/Form lineage encoded in a procedure
// code's 2+2+2 digit prefix.
type CodeAncestry struct {
	Group    string
	SubGroup string
	Form     string
}

// AncestryFromCode extracts as much lineage as the given code (or code
// prefix) determines. A trailing check digit ("-6") is ignored. The second
// return value reports how many complete levels the code pins down (0-3).
func AncestryFromCode(code string) (CodeAncestry, int) {
	digits := code
	if dash := strings.Index(digits, "-"); dash >= 0 {
		digits = digits[:dash]
	}

	var a CodeAncestry
	levels := 0
	if len(digits) >= 2 {
		a.Group = digits[0:2]
		levels = 1
	}
	if len(digits) >= 4 {
		a.SubGroup = digits[2:4]
		levels = 2
	}
	if len(digits) >= 6 {
		a.Form = digits[4:6]
		levels = 3
	}
	return a, levels
}

// isNumericCode reports whether the term is all digits, ignoring one
// optional check-digit suffix. Numeric terms trigger code-prefix search.
func isNumericCode(term string) bool {
	digits := term
	if dash := strings.Index(digits, "-"); dash >= 0 {
		if dash == 0 || dash != len(digits)-2 {
			return false
		}
		digits = digits[:dash] + digits[dash+1:]
	}
	if digits == "" {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
