// Package registry resolves the semantic parameter kinds the mapping rules
// need (mass, volume, shape angle, material, ...) to the concrete parameter
// types of the target iteration.
//
// Every kind is bound to a parameter type short name, plus the dependency
// the created parameters get: option dependence and an optional finite
// state list. Bindings not given explicitly fall back to DefaultShortNames
// without dependence.
//
// Material and color can be pinned to a parameter type id, which is how a
// designation stored by an earlier session is honored.
package registry
