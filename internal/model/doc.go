// Package model holds the target engineering data model: reusable element
// definitions, element usages placed inside definitions, typed parameters
// and their option/state dependent value sets.
//
// An Iteration is the snapshot of the target store the mapping rules work
// against. Every collection that the rules search by short name is backed
// by an index, so reuse-by-name stays cheap on large product trees.
package model
