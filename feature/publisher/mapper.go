package publisher

import (
	"errors"
	"fmt"
	"strconv"

	"catalog-sync/core/identifier"
	"catalog-sync/core/snapshot"

	"github.com/google/uuid"
)

// ErrUnknownField is returned when a crop assignment names a field that no client declares.
var ErrUnknownField = errors.New("crop assignment references unknown field")

// Mapper appends publisher data to a snapshot, handing out reference ids in
// sequence. One Mapper can map several files into the same snapshot.
type Mapper struct {
	source string
	snap   *snapshot.Snapshot
	next   int
	fields map[uuid.UUID]*int
	crops  map[uuid.UUID]*int
}

// NewMapper creates a mapper that stamps ids with source.
func NewMapper(source, description string) *Mapper {
	return &Mapper{
		source: source,
		snap:   &snapshot.Snapshot{Description: description},
		fields: make(map[uuid.UUID]*int),
		crops:  make(map[uuid.UUID]*int),
	}
}

// Snapshot returns the snapshot built so far.
func (m *Mapper) Snapshot() *snapshot.Snapshot {
	return m.snap
}

func (m *Mapper) identity(id uuid.UUID) snapshot.CompoundIdentifier {
	m.next++
	return snapshot.CompoundIdentifier{
		ReferenceID: m.next,
		UniqueIDs: []identifier.ExternalIdentifier{{
			ID:         id.String(),
			IDType:     identifier.IDTypeUUID,
			Source:     m.source,
			SourceType: identifier.SourceTypeURI,
		}},
	}
}

// Map appends clients, farms and fields, then crops, then crop assignments.
// Assignments become crop zones described as "<field name> <season>".
func (m *Mapper) Map(data *Data) error {
	for _, client := range data.Clients {
		grower := snapshot.Grower{ID: m.identity(client.ID), Name: client.Name}
		m.snap.Growers = append(m.snap.Growers, grower)

		for _, f := range client.Farms {
			farm := snapshot.Farm{
				ID:          m.identity(f.ID),
				Description: f.Name,
				GrowerID:    snapshot.Ref(grower.ID.ReferenceID),
			}
			m.snap.Farms = append(m.snap.Farms, farm)

			for _, fd := range f.Fields {
				field := snapshot.Field{
					ID:          m.identity(fd.ID),
					Description: fd.Name,
					FarmID:      snapshot.Ref(farm.ID.ReferenceID),
				}
				m.snap.Fields = append(m.snap.Fields, field)
				m.fields[fd.ID] = snapshot.Ref(field.ID.ReferenceID)
			}
		}
	}

	for _, c := range data.CropData.Crops {
		crop := snapshot.Crop{ID: m.identity(c.ID), Name: c.Name}
		m.snap.Crops = append(m.snap.Crops, crop)
		m.crops[c.ID] = snapshot.Ref(crop.ID.ReferenceID)
	}

	idx := snapshot.NewIndex(m.snap)
	for _, a := range data.CropData.CropAssignments {
		fieldRef, ok := m.fields[a.FieldID]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownField, a.FieldID)
		}
		field, _ := idx.Field(fieldRef)

		m.next++
		m.snap.CropZones = append(m.snap.CropZones, snapshot.CropZone{
			ID:          snapshot.CompoundIdentifier{ReferenceID: m.next},
			Description: fmt.Sprintf("%s %d", field.Description, a.GrowingSeason),
			FieldID:     fieldRef,
			CropID:      m.crops[a.CropID],
			CropSeason:  strconv.Itoa(a.GrowingSeason),
		})
	}
	return nil
}
