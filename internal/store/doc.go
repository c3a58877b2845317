// Package store provides the SQLite-backed run ledger.
//
// Every pipeline run that is recorded leaves:
//   - Runs: one row with the input and result digests
//   - Loss events: the run's ledger rows in append order
//   - Stage counts: the per-step kept/removed summary
//
// # Ordering
//
// Runs are stamped by a logical clock (seq), never by wall time. Open
// resumes the clock after the highest stored seq. All queries order by
// seq ASC, id COLLATE BINARY ASC so results are identical across machines.
//
// # Determinism checks
//
// Two runs with the same input digest must have the same result digest.
// Conflicts reports stored runs that break this.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
