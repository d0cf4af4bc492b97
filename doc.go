// Package castor provides the calculation and timeline engine for a
// collaborative real-estate co-purchase. It is designed to be local-first,
// auditable, and deterministic, so that every figure shown to the group can
// be recomputed from the committed inputs alone.
//
// The core functionalities include:
//   - Registry Management: Holding the committed input set (participants,
//     lots, portage formula, reserve ratio) in a human-readable,
//     version-controllable JSONL document.
//   - Portage Pricing: Computing the indexed purchase price of a carried lot
//     as of a participant's entry date, with exact decimal arithmetic and a
//     documented rounding policy.
//   - Proceeds Distribution: Splitting the proceeds of a co-ownership sale
//     between the reserve fund and the existing participants, with exact
//     sums and a deterministic remainder rule.
//   - Reactive Recalculation: A dependency graph that re-derives every
//     affected value exactly once per committed change, and publishes whole
//     generations atomically so consumers never observe a half-updated state.
//   - Timeline Replay: Folding the derived ledger chronologically into one
//     snapshot per transaction (cash reserve, per-participant invested,
//     received, and net positions) for display and export.
//
// This package serves as the foundational logic for the `cct` command-line
// tool, ensuring that all operations are consistent and based on a single
// source of truth.
package castor
