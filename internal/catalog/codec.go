package catalog

import (
	"time"

	"github.com/sigcat/sigcat/internal/platform/docstore"
)

// Encoding between typed catalog nodes and store documents. Encoding runs
// the result through docstore.Sanitize, so nil-valued fields are dropped
// before they reach a store. Decoding is tolerant of the two number/slice
// representations a JSON round-trip can produce.

func encodeGroup(g Group) docstore.Document {
	return docstore.Sanitize(map[string]interface{}{
		"code": g.Code,
		"name": g.Name,
	})
}

func decodeGroup(doc docstore.Document) Group {
	return Group{Code: docString(doc, "code"), Name: docString(doc, "name")}
}

func encodeSubGroup(s SubGroup) docstore.Document {
	return docstore.Sanitize(map[string]interface{}{
		"code": s.Code,
		"name": s.Name,
	})
}

func decodeSubGroup(doc docstore.Document) SubGroup {
	return SubGroup{Code: docString(doc, "code"), Name: docString(doc, "name")}
}

func encodeForm(f Form) docstore.Document {
	return docstore.Sanitize(map[string]interface{}{
		"code": f.Code,
		"name": f.Name,
	})
}

func decodeForm(doc docstore.Document) Form {
	return Form{Code: docString(doc, "code"), Name: docString(doc, "name")}
}

func encodeProcedure(p Procedure) docstore.Document {
	return docstore.Sanitize(map[string]interface{}{
		"code":                     p.Code,
		"name":                     p.Name,
		"sex":                      p.Sex,
		"age_min_months":           p.AgeMinMonths,
		"age_max_months":           p.AgeMaxMonths,
		"complexity":               p.Complexity,
		"points":                   p.Points,
		"days_stay":                p.DaysStay,
		"registration_instruments": p.RegistrationInstruments,
		"related_diagnoses":        p.RelatedDiagnoses,
		"related_occupations":      p.RelatedOccupations,
		"related_services":         p.RelatedServices,
		"related_modalities":       p.RelatedModalities,
		"compatibilities":          p.Compatibilities,
		"conditional_rules":        p.ConditionalRules,
	})
}

func decodeProcedure(doc docstore.Document) Procedure {
	return Procedure{
		Code:                    docString(doc, "code"),
		Name:                    docString(doc, "name"),
		Sex:                     docString(doc, "sex"),
		AgeMinMonths:            docInt(doc, "age_min_months"),
		AgeMaxMonths:            docInt(doc, "age_max_months"),
		Complexity:              docString(doc, "complexity"),
		Points:                  docInt(doc, "points"),
		DaysStay:                docInt(doc, "days_stay"),
		RegistrationInstruments: docStringSlice(doc, "registration_instruments"),
		RelatedDiagnoses:        docStringSlice(doc, "related_diagnoses"),
		RelatedOccupations:      docStringSlice(doc, "related_occupations"),
		RelatedServices:         docStringSlice(doc, "related_services"),
		RelatedModalities:       docStringSlice(doc, "related_modalities"),
		Compatibilities:         docStringSlice(doc, "compatibilities"),
		ConditionalRules:        docStringSlice(doc, "conditional_rules"),
	}
}

func encodeLookupItem(item LookupItem) docstore.Document {
	return docstore.Sanitize(map[string]interface{}{
		"code": item.Code,
		"name": item.Name,
	})
}

func decodeLookupItem(doc docstore.Document) LookupItem {
	return LookupItem{Code: docString(doc, "code"), Name: docString(doc, "name")}
}

func encodeCompetenceRoot(root CompetenceRoot) docstore.Document {
	return docstore.Sanitize(map[string]interface{}{
		"competence":        root.Competence,
		"imported_by":       root.ImportedBy,
		"imported_at":       root.ImportedAt.UTC().Format(time.RFC3339),
		"source_descriptor": root.SourceDescriptor,
		"stats": map[string]interface{}{
			"groups":       root.Stats.Groups,
			"subgroups":    root.Stats.SubGroups,
			"forms":        root.Stats.Forms,
			"procedures":   root.Stats.Procedures,
			"lookup_items": root.Stats.LookupItems,
		},
	})
}

func decodeCompetenceRoot(doc docstore.Document) CompetenceRoot {
	root := CompetenceRoot{
		Competence:       docString(doc, "competence"),
		ImportedBy:       docString(doc, "imported_by"),
		SourceDescriptor: docString(doc, "source_descriptor"),
		ImportedAt:       docTime(doc, "imported_at"),
	}
	if stats, ok := doc["stats"].(map[string]interface{}); ok {
		root.Stats = Stats{
			Groups:      docInt(stats, "groups"),
			SubGroups:   docInt(stats, "subgroups"),
			Forms:       docInt(stats, "forms"),
			Procedures:  docInt(stats, "procedures"),
			LookupItems: docInt(stats, "lookup_items"),
		}
	}
	return root
}

func docString(doc map[string]interface{}, key string) string {
	s, _ := doc[key].(string)
	return s
}

func docInt(doc map[string]interface{}, key string) int {
	switch v := doc[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func docTime(doc map[string]interface{}, key string) time.Time {
	s, ok := doc[key].(string)
	if !ok {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func docStringSlice(doc map[string]interface{}, key string) []string {
	switch v := doc[key].(type) {
	case []string:
		if len(v) == 0 {
			return nil
		}
		return v
	case []interface{}:
		if len(v) == 0 {
			return nil
		}
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
