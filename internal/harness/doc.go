// Package harness runs conformance scenarios for the dialect compiler.
//
// A scenario names a set of CUE definitions, the grammar variants to
// compile them for, and assertions over the statements each variant
// produces. Every run is recorded in an in-memory journal, so assertions
// can also inspect what was stored.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: paging
//	description: "Row limits per engine generation"
//	definitions:
//	  - defs/paging.cue          # relative to the scenario file
//	variants: [legacy-rows, modern-fetch]   # default: every variant
//	table_prefix: app_
//	skip_unsupported: true
//	assertions:
//	  - type: statement_sql
//	    variant: modern-fetch
//	    source: query:page
//	    sql: 'SELECT * FROM "app_users" FETCH FIRST 10 ROWS ONLY'
//	  - type: skipped
//	    variant: legacy-first-skip
//	    sources: [query:tenant]
//
// Instead of files, definitions may be given inline with source. An
// engine_version selects the variant the way a live connection would.
//
// # Assertion Types
//
//   - statement_sql: a source compiles to exactly sql
//   - statement_contains: every statement of a source contains a fragment
//   - statement_order: sources appear in the given order
//   - statement_count: a source yields exactly count statements
//   - bindings: a source's statement binds exactly these values
//   - skipped: exactly these sources were skipped as unsupported
//   - compile_error: compilation failed with a message containing a fragment
//   - journal_count: the journal holds count statements for a source
//
// An assertion without a variant must hold for every compiled variant.
//
// # Deterministic Output
//
// Run ids come from testutil.SequenceIDs and timestamps from
// testutil.StepClock, so journals and golden snapshots are identical
// across runs. Golden snapshots are canonical JSON, compared with goldie
// under testdata/golden.
package harness
