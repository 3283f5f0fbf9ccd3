package identifier

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// IDType describes how the ID value of an ExternalIdentifier is encoded.
type IDType string

const (
	IDTypeUUID    IDType = "UUID"
	IDTypeString  IDType = "String"
	IDTypeLongInt IDType = "LongInt"
	IDTypeURI     IDType = "URI"
)

// SourceType describes how the Source of an ExternalIdentifier is encoded.
type SourceType string

const (
	SourceTypeGLN SourceType = "GLN"
	SourceTypeURI SourceType = "URI"
)

// ErrMalformed is returned when an own-source identifier cannot be parsed as a local id.
var ErrMalformed = errors.New("malformed identifier")

// ExternalIdentifier is an ID value scoped to the system that issued it.
// Two identifiers are the same when both ID and Source are equal.
type ExternalIdentifier struct {
	// ID is the raw identifier value.
	ID string `json:"id"`
	// IDType describes the encoding of ID.
	IDType IDType `json:"idType,omitempty"`
	// Source names the issuing system.
	Source string `json:"source"`
	// SourceType describes the encoding of Source.
	SourceType SourceType `json:"sourceType,omitempty"`
}

// Key is the identity of an ExternalIdentifier.
type Key struct {
	ID     string
	Source string
}

// Key returns the (ID, Source) identity pair.
func (e ExternalIdentifier) Key() Key {
	return Key{ID: e.ID, Source: e.Source}
}

func (e ExternalIdentifier) String() string {
	return e.Source + "#" + e.ID
}

// Own returns the first identifier issued by ownSource.
func Own(ids []ExternalIdentifier, ownSource string) (ExternalIdentifier, bool) {
	for _, id := range ids {
		if id.Source == ownSource {
			return id, true
		}
	}
	return ExternalIdentifier{}, false
}

// Foreign returns every identifier not issued by ownSource, in input order.
func Foreign(ids []ExternalIdentifier, ownSource string) []ExternalIdentifier {
	out := make([]ExternalIdentifier, 0, len(ids))
	for _, id := range ids {
		if id.Source != ownSource {
			out = append(out, id)
		}
	}
	return out
}

// Dedupe drops identifiers whose (ID, Source) pair already appeared earlier in ids.
func Dedupe(ids []ExternalIdentifier) []ExternalIdentifier {
	seen := make(map[Key]struct{}, len(ids))
	out := make([]ExternalIdentifier, 0, len(ids))
	for _, id := range ids {
		k := id.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, id)
	}
	return out
}

// ParseLocalID parses the value of an own-source identifier as a local id.
func ParseLocalID(id ExternalIdentifier) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id.ID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q from %s: %v", ErrMalformed, id.ID, id.Source, err)
	}
	return parsed, nil
}

// NewOwn builds the identifier the local system would publish for a local id.
func NewOwn(localID uuid.UUID, ownSource string) ExternalIdentifier {
	return ExternalIdentifier{
		ID:         localID.String(),
		IDType:     IDTypeUUID,
		Source:     ownSource,
		SourceType: SourceTypeURI,
	}
}
