// Package difftest runs differential tests of sorted map implementations
// against the reference model and minimizes the failures it finds.
//
// The pieces, leaf first:
//
//   - [OpGenerator] draws random [Operation]s with a low-key bias and a
//     deterministic value counter.
//   - [Runner] applies one operation to the reference and the subject,
//     compares the outcomes, and appends to a [History].
//   - [Shrinker] replays candidate histories from an empty state and keeps
//     the first shorter one that still diverges.
//   - [Emitter] renders a minimized history as a standalone Go test.
//   - [Sweep] drives all of the above over a grid of key ranges and repeats,
//     stopping at the first divergence.
package difftest
