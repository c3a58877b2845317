// Package harness provides conformance testing for the harmonization pipeline.
//
// The harness loads small record sets from YAML scenarios, runs them through
// the pipeline, records the run in an in-memory ledger store, and validates
// the outcome against assertions and golden snapshots.
//
// # Scenario Format
//
//	name: swap_inverts_effect
//	description: "What this scenario validates"
//	contrast_list:
//	  - No tillage;Conventional tillage
//	  - Conventional tillage;No tillage
//	orientation_list:
//	  - Conventional tillage;No tillage
//	records:
//	  - practice: No tillage
//	    effect: decreased abundance
//	    property: abundance
//	    actor: bacteria
//	    contrast: Conventional tillage
//	assertions:
//	  - type: final_contains
//	    record: { practice: Conventional tillage, effect: increase }
//	  - type: ledger_contains
//	    step: Step6
//	    reason: removed (invalid pair)
//	    count: 0
//
// # Assertion Types
//
//   - final_count: number of retained records
//   - final_contains / final_excludes: a retained record matching a field subset
//   - ledger_contains: summed count of ledger events for a step and reason
//   - stage_count: kept and removed numbers of a summary row
//   - discard_count: size of a named discard bucket
//   - swap_count: number of records swapped by orientation
//
// # Deterministic Testing
//
// Each scenario runs twice and the result digests must match. Runs are
// recorded with sequential IDs in a fresh in-memory SQLite store, and the
// ledger read back from the store must equal the one the run produced.
package harness
