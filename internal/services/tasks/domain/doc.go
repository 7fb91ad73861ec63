// Package domain assigns session chores to the players present at a game
// session.
//
// An assignment run resolves the caller's selection into three phase-specific
// participant lists, builds each phase's task catalog, pads the catalog with
// filler entries when it does not split well across the table, shuffles it,
// and deals the shuffled tasks round-robin.
//
// # Phases
//
//   - Pre-session: selected characters that are not arriving late. The phase
//     is skipped (empty) when every selected character is late.
//   - During-session: every selected character.
//   - Post-session: every selected character plus the virtual "DM" entry.
//
// # Determinism
//
// The engine holds no state between runs. Given the same selection and an RNG
// that yields the same sequence, Assign always returns the same Assignment.
package domain
