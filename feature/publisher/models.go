package publisher

import "github.com/google/uuid"

// Extension is the file extension of publisher data files.
const Extension = ".myjson"

// Data is the top level container of one publisher file.
type Data struct {
	CropData CropData `json:"CropData"`
	Clients  []Client `json:"Clients"`
}

// BaseObject carries the publisher's persistent id and name.
type BaseObject struct {
	ID   uuid.UUID `json:"ID"`
	Name string    `json:"Name"`
}

// Client is a customer of the publisher.
type Client struct {
	BaseObject
	Farms []Farm `json:"Farms"`
}

// Farm is an organizational unit of a client's operation.
type Farm struct {
	BaseObject
	Fields []Field `json:"Fields"`
}

// Field is a single field within a farm.
type Field struct {
	BaseObject
}

// CropData holds the crops and their field assignments.
type CropData struct {
	Crops           []Crop           `json:"Crops"`
	CropAssignments []CropAssignment `json:"CropAssignments"`
}

// Crop is a publisher crop.
type Crop struct {
	BaseObject
}

// CropAssignment plants a crop on a field for one growing season.
type CropAssignment struct {
	CropID        uuid.UUID `json:"CropID"`
	FieldID       uuid.UUID `json:"FieldID"`
	GrowingSeason int       `json:"GrowingSeason"`
}
