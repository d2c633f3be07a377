// Package diagnostic collects the soft failures of a synchronization run.
//
// Key capabilities:
//   - Skipped parameter warnings (unknown parameter type, no active option or state)
//   - Orphaned correspondence reports from the reverse direction
//   - "Did you mean" suggestions for unresolved parameter type short names
package diagnostic
