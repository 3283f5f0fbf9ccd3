package cropzones

import "sort"

// Group is the rows of one (grower, farm) pair.
type Group struct {
	GrowerName string `json:"grower_name"`
	FarmName   string `json:"farm_name"`
	Rows       []Row  `json:"rows"`
}

// SortRows orders rows by grower, farm, field and crop name, byte-wise ascending.
// The sort is stable, so ties keep snapshot order.
func SortRows(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.GrowerName != b.GrowerName {
			return a.GrowerName < b.GrowerName
		}
		if a.FarmName != b.FarmName {
			return a.FarmName < b.FarmName
		}
		if a.FieldName != b.FieldName {
			return a.FieldName < b.FieldName
		}
		return a.CropName < b.CropName
	})
}

// GroupRows sorts a copy of rows and splits it by (grower name, farm name).
func GroupRows(rows []Row) []Group {
	sorted := append([]Row(nil), rows...)
	SortRows(sorted)

	groups := []Group{}
	for _, r := range sorted {
		n := len(groups)
		if n > 0 && groups[n-1].GrowerName == r.GrowerName && groups[n-1].FarmName == r.FarmName {
			groups[n-1].Rows = append(groups[n-1].Rows, r)
			continue
		}
		groups = append(groups, Group{GrowerName: r.GrowerName, FarmName: r.FarmName, Rows: []Row{r}})
	}
	return groups
}
