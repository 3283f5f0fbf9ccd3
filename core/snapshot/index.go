package snapshot

// Index provides reference-id lookups over a Snapshot.
// When a reference id repeats within a kind the first entity wins.
type Index struct {
	snap      *Snapshot
	growers   map[int]*Grower
	farms     map[int]*Farm
	fields    map[int]*Field
	crops     map[int]*Crop
	cropZones map[int]*CropZone
}

// NewIndex builds the lookup tables for s. The snapshot must not be modified afterwards.
func NewIndex(s *Snapshot) *Index {
	idx := &Index{
		snap:      s,
		growers:   make(map[int]*Grower, len(s.Growers)),
		farms:     make(map[int]*Farm, len(s.Farms)),
		fields:    make(map[int]*Field, len(s.Fields)),
		crops:     make(map[int]*Crop, len(s.Crops)),
		cropZones: make(map[int]*CropZone, len(s.CropZones)),
	}
	for i := range s.Growers {
		put(idx.growers, s.Growers[i].ID.ReferenceID, &s.Growers[i])
	}
	for i := range s.Farms {
		put(idx.farms, s.Farms[i].ID.ReferenceID, &s.Farms[i])
	}
	for i := range s.Fields {
		put(idx.fields, s.Fields[i].ID.ReferenceID, &s.Fields[i])
	}
	for i := range s.Crops {
		put(idx.crops, s.Crops[i].ID.ReferenceID, &s.Crops[i])
	}
	for i := range s.CropZones {
		put(idx.cropZones, s.CropZones[i].ID.ReferenceID, &s.CropZones[i])
	}
	return idx
}

func put[T any](m map[int]*T, ref int, v *T) {
	if _, exists := m[ref]; !exists {
		m[ref] = v
	}
}

func get[T any](m map[int]*T, ref *int) (*T, bool) {
	if ref == nil {
		return nil, false
	}
	v, ok := m[*ref]
	return v, ok
}

// Snapshot returns the indexed snapshot.
func (i *Index) Snapshot() *Snapshot { return i.snap }

// Grower returns the grower with the given reference id. A nil ref never matches.
func (i *Index) Grower(ref *int) (*Grower, bool) { return get(i.growers, ref) }

// Farm returns the farm with the given reference id.
func (i *Index) Farm(ref *int) (*Farm, bool) { return get(i.farms, ref) }

// Field returns the field with the given reference id.
func (i *Index) Field(ref *int) (*Field, bool) { return get(i.fields, ref) }

// Crop returns the crop with the given reference id.
func (i *Index) Crop(ref *int) (*Crop, bool) { return get(i.crops, ref) }

// CropZone returns the crop zone with the given reference id.
func (i *Index) CropZone(ref *int) (*CropZone, bool) { return get(i.cropZones, ref) }
