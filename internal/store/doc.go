// Package store provides the SQLite-backed assignment table set behind
// the staging and production environments.
//
// Both environments share one schema:
//   - Contexts: hierarchy keys (project, category, entity), empty string
//     meaning the level is unset. The studio row is seeded on Initialize.
//   - Assignments: package rows attached to a context, optionally scoped
//     to a pipeline step and/or a software.
//   - Change log: one row per install/uninstall edit, flushed on Commit.
//   - Deploy history: one row per deploy snapshot, production only.
//
// A Store is a scoped session: Open begins a transaction, every mutation
// rides it, Commit persists it as one atomic unit, and Close discards
// anything uncommitted. Add and Remove are idempotent; the UNIQUE
// constraint over (context, package, step, software) makes re-adding an
// identical row a no-op rather than a duplicate.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
package store
