// Package persistence defines the backing store of mapping configurations
// and the transactions the synchronization facade writes through.
//
// A Transaction buffers CreateOrUpdate and Delete calls until Commit, which
// applies them atomically: either every change becomes visible or none.
// Rollback discards the buffer. After Commit or Rollback the transaction
// is closed.
//
// Three backends are provided:
//
//   - memory: process-local, deep-copied on every read and write
//   - file: a YAML mapping file rewritten on every commit
//   - postgres: two tables accessed through a pgx connection pool
package persistence
