package reconcile

import (
	"errors"
	"fmt"

	"catalog-sync/core/identifier"
	"catalog-sync/core/store"

	"github.com/google/uuid"
)

// Config holds configuration for identity reconciliation.
type Config struct {
	// OwnSource is the Source value the local system stamps on identifiers it issues.
	OwnSource string `mapstructure:"own_source" default:"http://catalog-sync.local/source"`
}

var (
	// ErrNoSnapshot is returned when an import is started without a snapshot.
	ErrNoSnapshot = errors.New("no snapshot supplied")
	// ErrMalformedIdentifier marks an own-source identifier that is not a valid local id.
	ErrMalformedIdentifier = identifier.ErrMalformed
	// ErrNoAdapter is returned when an entity kind has no registered adapter.
	ErrNoAdapter = errors.New("no adapter for entity kind")
)

// Outcome is how an entity was resolved to its local id.
type Outcome string

const (
	// OutcomeMatchedOwn is a hit on the own-source identifier.
	OutcomeMatchedOwn Outcome = "matched_own"
	// OutcomeMatchedRegistry is a hit in the external identifier registry.
	OutcomeMatchedRegistry Outcome = "matched_registry"
	// OutcomeMatchedHeuristic is a hit of the kind's heuristic, by name in the default adapters.
	OutcomeMatchedHeuristic Outcome = "matched_heuristic"
	// OutcomeInserted is a new local entity.
	OutcomeInserted Outcome = "inserted"
	// OutcomeFailed is an entity skipped because of an isolated error.
	OutcomeFailed Outcome = "failed"
)

// Scope selects which snapshot entities an import walks.
type Scope string

const (
	// ScopeCropZones resolves every crop zone and, through them, the parents they reference.
	ScopeCropZones Scope = "cropzones"
	// ScopeCatalog resolves every entity of every kind, parents first.
	ScopeCatalog Scope = "catalog"
)

// ParseScope validates s as a Scope. An empty string selects ScopeCropZones.
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case "", ScopeCropZones:
		return ScopeCropZones, nil
	case ScopeCatalog:
		return ScopeCatalog, nil
	default:
		return "", fmt.Errorf("unknown import scope %q", s)
	}
}

// EntityError ties a resolution failure to the snapshot entity that caused it.
type EntityError struct {
	Kind        store.Kind
	ReferenceID int
	Err         error
}

func (e *EntityError) Error() string {
	return fmt.Sprintf("resolve %s #%d: %v", e.Kind, e.ReferenceID, e.Err)
}

func (e *EntityError) Unwrap() error { return e.Err }

// InsertedObject is one local entity created by a run.
type InsertedObject struct {
	Kind        store.Kind `json:"kind"`
	LocalID     uuid.UUID  `json:"local_id"`
	Name        string     `json:"name"`
	ReferenceID int        `json:"reference_id"`
}

// Failure is one snapshot entity the run skipped.
type Failure struct {
	Kind        store.Kind `json:"kind"`
	ReferenceID int        `json:"reference_id"`
	Error       string     `json:"error"`
}

// KindSummary counts outcomes for one kind.
type KindSummary struct {
	Inserted         int `json:"inserted"`
	MatchedOwn       int `json:"matched_own"`
	MatchedRegistry  int `json:"matched_registry"`
	MatchedHeuristic int `json:"matched_heuristic"`
	Failed           int `json:"failed"`
}

// Matched is the number of entities resolved to an existing local id.
func (k KindSummary) Matched() int {
	return k.MatchedOwn + k.MatchedRegistry + k.MatchedHeuristic
}

// Summary reports what one run did.
type Summary struct {
	Scope    Scope                       `json:"scope"`
	Kinds    map[store.Kind]*KindSummary `json:"kinds"`
	Inserted []InsertedObject            `json:"inserted"`
	Failures []Failure                   `json:"failures"`
}

func newSummary(scope Scope) *Summary {
	s := &Summary{
		Scope:    scope,
		Kinds:    make(map[store.Kind]*KindSummary, len(store.Kinds)),
		Inserted: []InsertedObject{},
		Failures: []Failure{},
	}
	for _, k := range store.Kinds {
		s.Kinds[k] = &KindSummary{}
	}
	return s
}

// Kind returns the counters for kind.
func (s *Summary) Kind(kind store.Kind) KindSummary {
	if k, ok := s.Kinds[kind]; ok {
		return *k
	}
	return KindSummary{}
}

func (s *Summary) count(kind store.Kind, outcome Outcome) {
	k, ok := s.Kinds[kind]
	if !ok {
		k = &KindSummary{}
		s.Kinds[kind] = k
	}
	switch outcome {
	case OutcomeInserted:
		k.Inserted++
	case OutcomeMatchedOwn:
		k.MatchedOwn++
	case OutcomeMatchedRegistry:
		k.MatchedRegistry++
	case OutcomeMatchedHeuristic:
		k.MatchedHeuristic++
	case OutcomeFailed:
		k.Failed++
	}
}

// Totals sums the counters over every kind.
func (s *Summary) Totals() (inserted, matched, failed int) {
	for _, k := range s.Kinds {
		inserted += k.Inserted
		matched += k.Matched()
		failed += k.Failed
	}
	return inserted, matched, failed
}

// InsertedOf returns the inserted objects of one kind in insertion order.
func (s *Summary) InsertedOf(kind store.Kind) []InsertedObject {
	var out []InsertedObject
	for _, o := range s.Inserted {
		if o.Kind == kind {
			out = append(out, o)
		}
	}
	return out
}
