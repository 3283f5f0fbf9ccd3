package store

import (
	"context"
	"errors"
	"fmt"

	"catalog-sync/core/identifier"

	"github.com/google/uuid"
)

// Kind names a local entity kind.
type Kind string

const (
	KindOperatingUnit  Kind = "operating_unit"
	KindFarm           Kind = "farm"
	KindField          Kind = "field"
	KindCrop           Kind = "crop"
	KindManagementZone Kind = "management_zone"
)

// Kinds lists every kind, parents before children.
var Kinds = []Kind{KindOperatingUnit, KindFarm, KindField, KindCrop, KindManagementZone}

// ErrUnknownKind is returned for a kind outside Kinds.
var ErrUnknownKind = errors.New("unknown entity kind")

// ParseKind validates s as a Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Entity is implemented by every local model.
type Entity interface {
	Kind() Kind
	LocalID() uuid.UUID
	SetLocalID(id uuid.UUID)
	// DisplayName is the name used for case-insensitive lookups.
	DisplayName() string
}

// New returns an empty model of the given kind.
func New(kind Kind) (Entity, error) {
	switch kind {
	case KindOperatingUnit:
		return &OperatingUnit{}, nil
	case KindFarm:
		return &Farm{}, nil
	case KindField:
		return &Field{}, nil
	case KindCrop:
		return &Crop{}, nil
	case KindManagementZone:
		return &ManagementZone{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// Store persists local entities. Finders return (nil, nil) on a miss.
type Store interface {
	// Insert assigns a fresh local id to e and persists it. It never touches the registry.
	Insert(ctx context.Context, e Entity) (uuid.UUID, error)
	// FindByLocalID returns the entity of kind with the given local id.
	FindByLocalID(ctx context.Context, kind Kind, id uuid.UUID) (Entity, error)
	// FindByExternalIdentifiers returns the first entity, in registry insertion order,
	// registered under any (ID, Source) pair of ids.
	FindByExternalIdentifiers(ctx context.Context, kind Kind, ids []identifier.ExternalIdentifier) (Entity, error)
	// FindByName returns the first entity, in insertion order, whose name equals name ignoring case.
	FindByName(ctx context.Context, kind Kind, name string) (Entity, error)
	// List returns every entity of kind in insertion order.
	List(ctx context.Context, kind Kind) ([]Entity, error)
	// Clear deletes every entity of kind together with its registry entries.
	Clear(ctx context.Context, kind Kind) error
	// Registry returns the external identifier registry bound to this store.
	Registry() Registry
	// Runs returns the import run log bound to this store.
	Runs() RunLog
}

// Registry maps foreign identifiers to local ids, per kind.
// An (ID, Source) pair belongs to at most one local id per kind.
type Registry interface {
	// Record attaches ids to localID, skipping pairs already registered for kind.
	// It returns how many pairs were added.
	Record(ctx context.Context, kind Kind, localID uuid.UUID, ids []identifier.ExternalIdentifier) (int, error)
	// Lookup returns the first local id, in registry insertion order, owning any pair of ids.
	Lookup(ctx context.Context, kind Kind, ids []identifier.ExternalIdentifier) (uuid.UUID, bool, error)
	// Identifiers returns the identifiers registered for localID in insertion order.
	Identifiers(ctx context.Context, kind Kind, localID uuid.UUID) ([]identifier.ExternalIdentifier, error)
}

// RunLog keeps a history of import runs.
type RunLog interface {
	Append(ctx context.Context, run *ImportRun) error
	// Recent returns up to limit runs, newest first.
	Recent(ctx context.Context, limit int) ([]ImportRun, error)
}
