package cropzones

import (
	"catalog-sync/core/snapshot"
	"catalog-sync/core/utils"
)

// Row is one crop zone joined with its crop, field, farm and grower.
// A broken link leaves that link and everything above it nil/empty.
type Row struct {
	CropZoneID      int     `json:"crop_zone_id"`
	ZoneDescription string  `json:"zone_description"`
	ZoneArea        float64 `json:"zone_area"`
	CropSeason      string  `json:"crop_season"`

	CropID   *int   `json:"crop_id"`
	CropName string `json:"crop_name"`

	FieldID   *int    `json:"field_id"`
	FieldName string  `json:"field_name"`
	FieldArea float64 `json:"field_area"`

	FarmID   *int   `json:"farm_id"`
	FarmName string `json:"farm_name"`

	GrowerID   *int   `json:"grower_id"`
	GrowerName string `json:"grower_name"`
}

// BuildTree returns one Row per crop zone, in snapshot order.
func BuildTree(idx *snapshot.Index) []Row {
	zones := idx.Snapshot().CropZones
	rows := make([]Row, 0, len(zones))

	for _, z := range zones {
		row := Row{
			CropZoneID:      z.ID.ReferenceID,
			ZoneDescription: z.Description,
			ZoneArea:        utils.Deref(z.Area),
			CropSeason:      z.CropSeason,
		}

		if crop, ok := idx.Crop(z.CropID); ok {
			row.CropID = snapshot.Ref(crop.ID.ReferenceID)
			row.CropName = crop.Name
		}

		if field, ok := idx.Field(z.FieldID); ok {
			row.FieldID = snapshot.Ref(field.ID.ReferenceID)
			row.FieldName = field.Description
			row.FieldArea = utils.Deref(field.Area)

			if farm, ok := idx.Farm(field.FarmID); ok {
				row.FarmID = snapshot.Ref(farm.ID.ReferenceID)
				row.FarmName = farm.Description

				if grower, ok := idx.Grower(farm.GrowerID); ok {
					row.GrowerID = snapshot.Ref(grower.ID.ReferenceID)
					row.GrowerName = grower.Name
				}
			}
		}

		rows = append(rows, row)
	}
	return rows
}
