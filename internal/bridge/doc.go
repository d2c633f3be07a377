// Package bridge is the synchronization facade the application talks to.
//
// A Facade owns one mapping configuration and its correspondence store.
// Push maps a source product tree onto the target iteration, Pull plans and
// materializes source nodes for target elements. Each run either commits
// all of its correspondences in one backend transaction, followed by a
// refresh of the store, or leaves the persisted configuration untouched.
//
// The target iteration is mutated in place by a run; callers discard it
// when a run fails.
package bridge
