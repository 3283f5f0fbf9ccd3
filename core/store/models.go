package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Base carries the columns shared by every local model.
// Seq preserves insertion order; ID is the local identity.
type Base struct {
	Seq       uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	ID        uuid.UUID `gorm:"type:varchar(36);uniqueIndex;not null" json:"id"`
	NameFold  string    `gorm:"size:255;index" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func (b *Base) LocalID() uuid.UUID { return b.ID }
func (b *Base) SetLocalID(id uuid.UUID) { b.ID = id }

// SetCreatedAt is used by stores that do not stamp rows themselves.
func (b *Base) SetCreatedAt(t time.Time) { b.CreatedAt = t }

func (b *Base) setNameFold(name string) { b.NameFold = FoldName(name) }

// FoldName is the case-folded form of a name used for name matching.
// Folding happens in Go so every backend compares non-ASCII names alike.
func FoldName(name string) string { return strings.ToLower(name) }

// PrepareInsert stamps the derived columns of e. Stores call it before
// persisting a new row.
func PrepareInsert(e Entity) {
	if f, ok := e.(interface{ setNameFold(string) }); ok {
		f.setNameFold(e.DisplayName())
	}
}

// Clone returns a copy of e that shares no memory with it.
func Clone(e Entity) Entity {
	switch m := e.(type) {
	case *OperatingUnit:
		c := *m
		return &c
	case *Farm:
		c := *m
		return &c
	case *Field:
		c := *m
		return &c
	case *Crop:
		c := *m
		return &c
	case *ManagementZone:
		c := *m
		return &c
	default:
		panic(fmt.Sprintf("store: cannot clone %T", e))
	}
}

// OperatingUnit is the local counterpart of a grower.
type OperatingUnit struct {
	Base
	Name string `gorm:"size:255;index" json:"name"`
}

func (OperatingUnit) TableName() string { return "operating_units" }
func (*OperatingUnit) Kind() Kind { return KindOperatingUnit }
func (m *OperatingUnit) DisplayName() string { return m.Name }

// Farm belongs to an operating unit. A nil OperatingUnitID means no parent.
type Farm struct {
	Base
	Name            string    `gorm:"size:255;index" json:"name"`
	OperatingUnitID uuid.UUID `gorm:"type:varchar(36);index" json:"operating_unit_id"`
}

func (Farm) TableName() string { return "farms" }
func (*Farm) Kind() Kind { return KindFarm }
func (m *Farm) DisplayName() string { return m.Name }

// Field belongs to a farm.
type Field struct {
	Base
	Name   string    `gorm:"size:255;index" json:"name"`
	FarmID uuid.UUID `gorm:"type:varchar(36);index" json:"farm_id"`
	Acres  float64   `json:"acres"`
}

func (Field) TableName() string { return "fields" }
func (*Field) Kind() Kind { return KindField }
func (m *Field) DisplayName() string { return m.Name }

// Crop is a catalog crop.
type Crop struct {
	Base
	Name string `gorm:"size:255;index" json:"name"`
}

func (Crop) TableName() string { return "crops" }
func (*Crop) Kind() Kind { return KindCrop }
func (m *Crop) DisplayName() string { return m.Name }

// ManagementZone is the local counterpart of a crop zone.
type ManagementZone struct {
	Base
	Name           string    `gorm:"size:255;index" json:"name"`
	FieldID        uuid.UUID `gorm:"type:varchar(36);index" json:"field_id"`
	CropID         uuid.UUID `gorm:"type:varchar(36);index" json:"crop_id"`
	Acres          float64   `json:"acres"`
	ProductionYear int       `json:"production_year"`
}

func (ManagementZone) TableName() string { return "management_zones" }
func (*ManagementZone) Kind() Kind { return KindManagementZone }
func (m *ManagementZone) DisplayName() string { return m.Name }

// ImportRun records the outcome of one import.
type ImportRun struct {
	ID         uuid.UUID      `gorm:"type:varchar(36);primaryKey" json:"id"`
	Snapshot   string         `gorm:"size:255;index" json:"snapshot"`
	Scope      string         `gorm:"size:32" json:"scope"`
	Inserted   int            `json:"inserted"`
	Matched    int            `json:"matched"`
	Failed     int            `json:"failed"`
	Summary    datatypes.JSON `json:"summary"`
	Error      string         `gorm:"size:1024" json:"error,omitempty"`
	StartedAt  time.Time      `gorm:"index" json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}

func (ImportRun) TableName() string { return "import_runs" }
