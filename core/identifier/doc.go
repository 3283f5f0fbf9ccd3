// Package identifier models external identifiers: ID values scoped to the system
// that issued them.
//
// An identifier set may carry one identifier minted by the local system (the
// "own source") next to any number of identifiers minted elsewhere. Own returns the
// authoritative local one, Foreign the rest. Identity is the (ID, Source) pair;
// sets tolerate duplicates and Dedupe collapses them.
//
// # Usage
//
//	if own, ok := identifier.Own(ids, cfg.OwnSource); ok {
//	    localID, err := identifier.ParseLocalID(own)
//	}
package identifier
