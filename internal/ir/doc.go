// Package ir provides the value types shared by every harmonize package.
//
// This package contains type definitions and canonical encoding only. All
// other internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Records are values. Transformations return a new Record, never mutate one.
//   - Ledger strings (step, type) are part of the audit format and never change.
//   - Canonical JSON is the only encoding used for digests.
package ir
