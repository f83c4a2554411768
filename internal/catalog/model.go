// Package catalog implements the hierarchical procedure-catalog import and
// query engine. A catalog snapshot is published per competence (reporting
// period) and organized as Group → SubGroup → Form → Procedure, with flat
// per-competence lookup tables referenced by code.
package catalog

import "time"

// AgeNoLimitMonths is the sentinel the source catalog uses for "no upper or
// lower age limit". It is carried through verbatim and must never be
// interpreted as a literal age in months.
const AgeNoLimitMonths = 9999

// Group is the top level of the catalog hierarchy.
type Group struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// SubGroup is owned by exactly one Group; its code is only unique within
// that Group.
type SubGroup struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Form is owned by exactly one SubGroup.
type Form struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Procedure is the leaf of the hierarchy. Code is globally unique within a
// competence and encodes its ancestry as 2+2+2+4 digit segments
// (Group/SubGroup/Form/Procedure), optionally followed by a check digit.
type Procedure struct {
	Code                    string   `json:"code"`
	Name                    string   `json:"name"`
	Sex                     string   `json:"sex"`
	AgeMinMonths            int      `json:"age_min_months"`
	AgeMaxMonths            int      `json:"age_max_months"`
	Complexity              string   `json:"complexity"`
	Points                  int      `json:"points"`
	DaysStay                int      `json:"days_stay"`
	RegistrationInstruments []string `json:"registration_instruments,omitempty"`
	RelatedDiagnoses        []string `json:"related_diagnoses,omitempty"`
	RelatedOccupations      []string `json:"related_occupations,omitempty"`
	RelatedServices         []string `json:"related_services,omitempty"`
	RelatedModalities       []string `json:"related_modalities,omitempty"`
	Compatibilities         []string `json:"compatibilities,omitempty"`
	ConditionalRules        []string `json:"conditional_rules,omitempty"`
}

// LookupItem is one row of a flat per-competence reference table
// (diagnoses, services, modalities, registration instruments).
type LookupItem struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Lookup table names as they appear in persisted paths.
const (
	LookupDiagnoses               = "diagnoses"
	LookupServices                = "services"
	LookupModalities              = "modalities"
	LookupRegistrationInstruments = "registration_instruments"
)

// LookupNames lists the supported lookup tables in persistence order.
var LookupNames = []string{
	LookupDiagnoses,
	LookupServices,
	LookupModalities,
	LookupRegistrationInstruments,
}

// GroupNode, SubGroupNode and FormNode are the parsed in-memory tree shape
// handed over by the external extractor.
type GroupNode struct {
	Code      string         `json:"code"`
	Name      string         `json:"name"`
	SubGroups []SubGroupNode `json:"subgroups"`
}

type SubGroupNode struct {
	Code  string     `json:"code"`
	Name  string     `json:"name"`
	Forms []FormNode `json:"forms"`
}

type FormNode struct {
	Code       string      `json:"code"`
	Name       string      `json:"name"`
	Procedures []Procedure `json:"procedures"`
}

// LookupTables carries the flat reference lists of one snapshot.
type LookupTables struct {
	Diagnoses               []LookupItem `json:"diagnoses"`
	Services                []LookupItem `json:"services"`
	Modalities              []LookupItem `json:"modalities"`
	RegistrationInstruments []LookupItem `json:"registration_instruments"`
}

// Tree is one fully parsed catalog snapshot for a single competence.
type Tree struct {
	Competence string       `json:"competence"`
	Groups     []GroupNode  `json:"groups"`
	Lookup     LookupTables `json:"lookup"`
}

// Stats counts the nodes of a snapshot per level.
type Stats struct {
	Groups      int `json:"groups"`
	SubGroups   int `json:"subgroups"`
	Forms       int `json:"forms"`
	Procedures  int `json:"procedures"`
	LookupItems int `json:"lookup_items"`
}

// Total is the number of documents the snapshot produces, excluding the
// root metadata document.
func (s Stats) Total() int {
	return s.Groups + s.SubGroups + s.Forms + s.Procedures + s.LookupItems
}

// CountStats walks the tree and tallies nodes per level.
func CountStats(tree *Tree) Stats {
	var st Stats
	for _, g := range tree.Groups {
		st.Groups++
		for _, sg := range g.SubGroups {
			st.SubGroups++
			for _, f := range sg.Forms {
				st.Forms++
				st.Procedures += len(f.Procedures)
			}
		}
	}
	st.LookupItems = len(tree.Lookup.Diagnoses) + len(tree.Lookup.Services) +
		len(tree.Lookup.Modalities) + len(tree.Lookup.RegistrationInstruments)
	return st
}

// CompetenceRoot is the metadata document written at competence/{c}.
type CompetenceRoot struct {
	Competence       string    `json:"competence"`
	ImportedBy       string    `json:"imported_by"`
	ImportedAt       time.Time `json:"imported_at"`
	SourceDescriptor string    `json:"source_descriptor"`
	Stats            Stats     `json:"stats"`
}

// ImportMeta describes one import attempt as provided by the caller.
type ImportMeta struct {
	ImportedBy       string
	SourceDescriptor string
}
