// Package reconcile resolves snapshot entities to stable local identities.
//
// Every import walks snapshot entities and, for each one, answers "which local
// entity is this?" using three tiers, strongest first:
//
//  1. Own identifier: the entity carries an identifier issued by the local system
//     (Source == Config.OwnSource). Its value is parsed as the local id and looked up.
//     When present it is authoritative: a miss goes straight to insert.
//  2. Registry: the entity's foreign identifiers are looked up in the external
//     identifier registry, which remembers what each past import brought in.
//  3. Heuristic: the kind's Adapter.Match. The default adapters compare names
//     case-insensitively (crop zones use their description).
//
// When nothing matches the entity is inserted. Building the local entity resolves its
// parents through the same Session, so importing a crop zone can insert its field,
// farm and grower. After the insert the foreign identifiers are recorded so the next
// import hits tier 2.
//
// # Architecture
//
//   - Engine: holds the store, the own-source value and one Adapter per kind.
//   - Session: one pass over a snapshot. It memoises resolved references and
//     accumulates the Summary.
//   - Adapter: kind-specific lookup, heuristic and construction.
//
// # Errors
//
// A malformed own-source identifier fails only the entity being imported (and any
// child that needed it); it is reported in Summary.Failures. Every other error, such
// as an unreachable store, aborts the run.
//
// # Usage
//
//	engine := reconcile.NewEngine(st, cfg.Reconcile, logger, reconcile.WithObserver(m))
//	summary, err := engine.ImportCropZones(ctx, snap)
package reconcile
