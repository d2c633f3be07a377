// Package rule implements the two mapping directions between the source
// product tree and the target iteration.
//
// # Source to target
//
// SourceToTarget walks the tree depth-first. A component wrapping a single
// definition-kind node maps to a usage over that node's definition; every
// other node maps to a definition of its own plus, below the root, a usage
// of it inside its parent's definition. Definitions and usages are always
// reused by short name within their scope: the run's own output first,
// then the iteration's definitions, or the parent's contained elements.
//
// Physical and shape values become parameters of the definition, placement
// values become overrides on the usage. An absent value is skipped, never
// written as zero. A parameter kind that does not resolve to a parameter
// type is a soft failure: the parameter is skipped and reported while the
// walk continues. Any other failure aborts the run.
//
// # Target to source
//
// TargetToSource reuses the node a target element was last synchronized
// with, found through its correspondences, and plans the creation of a new
// node under the requested parent otherwise. Correspondences whose node or
// element no longer exists are reported as orphans and may be pruned.
// Creating the nodes is left to the CAD connector.
package rule
