package bom

import (
	"sort"
)

// Contributor retains per-root attribution for a requirement so reports can
// trace which plan/project/item demanded how much.
type Contributor struct {
	Ref      string  `json:"ref"`
	Quantity float64 `json:"quantity"`
}

// Requirement is the summed demand for one normalized material key.
type Requirement struct {
	MaterialName string        `json:"materialName"`
	MaterialType string        `json:"materialType"`
	UoM          string        `json:"uom"`
	RequiredQty  float64       `json:"requiredQty"`
	Contributors []Contributor `json:"contributors"`
}

// RequirementMap maps NormalizedKey -> summed requirement.
type RequirementMap map[string]Requirement

// Aggregate folds exploded lines from one or more roots into per-material
// totals. Quantities accumulate with plain double-precision addition; no
// rounding until presentation.
func Aggregate(perRoot map[string][]ExplodedLine) RequirementMap {
	result := make(RequirementMap)

	// Deterministic fold order so contributor lists are stable across runs.
	refs := make([]string, 0, len(perRoot))
	for ref := range perRoot {
		refs = append(refs, ref)
	}
	sort.Strings(refs)

	for _, ref := range refs {
		for _, line := range perRoot[ref] {
			key := NormalizedKey(line.MaterialName, line.MaterialType)

			req, ok := result[key]
			if !ok {
				req = Requirement{
					MaterialName: line.MaterialName,
					MaterialType: line.MaterialType,
					UoM:          line.UoM,
				}
			}
			req.RequiredQty += line.Quantity

			if n := len(req.Contributors); n > 0 && req.Contributors[n-1].Ref == ref {
				req.Contributors[n-1].Quantity += line.Quantity
			} else {
				req.Contributors = append(req.Contributors, Contributor{Ref: ref, Quantity: line.Quantity})
			}

			result[key] = req
		}
	}

	return result
}

// SortedKeys returns the requirement keys in stable order for reporting.
func (m RequirementMap) SortedKeys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
