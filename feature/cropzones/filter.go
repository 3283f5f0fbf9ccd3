package cropzones

import (
	"errors"
	"fmt"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

// ErrInvalidFilter is returned when a filter expression does not compile or
// does not evaluate to a boolean.
var ErrInvalidFilter = errors.New("invalid filter")

// Filter narrows rows. Zero ids and an empty season mean "no filter"; set
// fields must all match exactly. Where is an optional boolean expression over
// the row fields, e.g. `ZoneArea > 10 && CropName == "Corn"`.
type Filter struct {
	GrowerID   int
	FarmID     int
	FieldID    int
	CropID     int
	CropSeason string
	Where      string
}

// exprEnv is the row as seen by Where expressions. Missing links read as 0.
type exprEnv struct {
	CropZoneID      int
	ZoneDescription string
	ZoneArea        float64
	CropSeason      string
	CropID          int
	CropName        string
	FieldID         int
	FieldName       string
	FieldArea       float64
	FarmID          int
	FarmName        string
	GrowerID        int
	GrowerName      string
}

func envOf(r Row) exprEnv {
	deref := func(p *int) int {
		if p == nil {
			return 0
		}
		return *p
	}
	return exprEnv{
		CropZoneID:      r.CropZoneID,
		ZoneDescription: r.ZoneDescription,
		ZoneArea:        r.ZoneArea,
		CropSeason:      r.CropSeason,
		CropID:          deref(r.CropID),
		CropName:        r.CropName,
		FieldID:         deref(r.FieldID),
		FieldName:       r.FieldName,
		FieldArea:       r.FieldArea,
		FarmID:          deref(r.FarmID),
		FarmName:        r.FarmName,
		GrowerID:        deref(r.GrowerID),
		GrowerName:      r.GrowerName,
	}
}

func idMatches(want int, got *int) bool {
	if want == 0 {
		return true
	}
	return got != nil && *got == want
}

// Matches reports whether r passes the id and season filters.
func (f Filter) Matches(r Row) bool {
	return idMatches(f.GrowerID, r.GrowerID) &&
		idMatches(f.FarmID, r.FarmID) &&
		idMatches(f.FieldID, r.FieldID) &&
		idMatches(f.CropID, r.CropID) &&
		(f.CropSeason == "" || f.CropSeason == r.CropSeason)
}

func (f Filter) compile() (*exprvm.Program, error) {
	if f.Where == "" {
		return nil, nil
	}
	program, err := exprlang.Compile(f.Where, exprlang.Env(exprEnv{}), exprlang.AsBool())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	return program, nil
}

// Apply returns the rows that pass f, preserving order.
func (f Filter) Apply(rows []Row) ([]Row, error) {
	program, err := f.compile()
	if err != nil {
		return nil, err
	}

	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if !f.Matches(r) {
			continue
		}
		if program != nil {
			ok, err := exprlang.Run(program, envOf(r))
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
			}
			if !ok.(bool) {
				continue
			}
		}
		out = append(out, r)
	}
	return out, nil
}
