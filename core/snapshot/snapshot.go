package snapshot

import "catalog-sync/core/identifier"

// CompoundIdentifier identifies an entity inside one snapshot (ReferenceID) and
// across systems (UniqueIDs).
type CompoundIdentifier struct {
	// ReferenceID is only meaningful within the snapshot that carries it.
	ReferenceID int `json:"referenceId"`
	// UniqueIDs may contain an own-source identifier next to foreign ones.
	UniqueIDs []identifier.ExternalIdentifier `json:"uniqueIds,omitempty"`
}

// Entity is implemented by every snapshot entity kind.
type Entity interface {
	// Identity returns the compound identifier of the entity.
	Identity() CompoundIdentifier
	// Label returns the display name used for heuristic matching.
	Label() string
}

// Grower is the top of the hierarchy.
type Grower struct {
	ID   CompoundIdentifier `json:"id"`
	Name string             `json:"name"`
}

// Farm belongs to a grower.
type Farm struct {
	ID          CompoundIdentifier `json:"id"`
	Description string             `json:"description"`
	GrowerID    *int               `json:"growerId,omitempty"`
}

// Field belongs to a farm.
type Field struct {
	ID          CompoundIdentifier `json:"id"`
	Description string             `json:"description"`
	FarmID      *int               `json:"farmId,omitempty"`
	// Area is the field area in acres.
	Area *float64 `json:"area,omitempty"`
}

// Crop is a standalone catalog entry.
type Crop struct {
	ID   CompoundIdentifier `json:"id"`
	Name string             `json:"name"`
}

// CropZone is a planted part of a field for one season.
type CropZone struct {
	ID          CompoundIdentifier `json:"id"`
	Description string             `json:"description"`
	FieldID     *int               `json:"fieldId,omitempty"`
	CropID      *int               `json:"cropId,omitempty"`
	// Area is the zone area in acres.
	Area *float64 `json:"area,omitempty"`
	// CropSeason is the label of the crop-season time scope, typically a year.
	CropSeason string `json:"cropSeason,omitempty"`
}

func (g Grower) Identity() CompoundIdentifier { return g.ID }
func (g Grower) Label() string { return g.Name }
func (f Farm) Identity() CompoundIdentifier { return f.ID }
func (f Farm) Label() string { return f.Description }
func (f Field) Identity() CompoundIdentifier { return f.ID }
func (f Field) Label() string { return f.Description }
func (c Crop) Identity() CompoundIdentifier { return c.ID }
func (c Crop) Label() string { return c.Name }
func (z CropZone) Identity() CompoundIdentifier { return z.ID }
func (z CropZone) Label() string { return z.Description }

// Snapshot is one immutable delivery of catalog data.
type Snapshot struct {
	Description string     `json:"description,omitempty"`
	Growers     []Grower   `json:"growers,omitempty"`
	Farms       []Farm     `json:"farms,omitempty"`
	Fields      []Field    `json:"fields,omitempty"`
	Crops       []Crop     `json:"crops,omitempty"`
	CropZones   []CropZone `json:"cropZones,omitempty"`
}

// Ref returns a pointer to a reference id, for building optional parent links.
func Ref(id int) *int {
	return &id
}
