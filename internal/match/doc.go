// Package match derives target short names from source names and ranks
// near-miss short names for diagnostics.
//
// Key functions:
//   - ShortName: turns a free-form CAD name into a target short name
//   - Levenshtein: computes edit distance between short names
//   - Suggest: returns the closest known short names for an unresolved one
package match
