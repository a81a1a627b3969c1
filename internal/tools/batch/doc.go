// Package batch runs one operation over many items, sequentially and paced.
//
// Run is the shared driver behind every bulk command and multi-id MCP tool:
//   - items are processed one at a time, in input order
//   - a fixed delay separates consecutive items to respect API rate limits
//   - one item's failure (or panic) never aborts the rest
//   - the returned Ledger partitions processed items into successes and
//     failures, each failure carrying the remote error code when known
//
// The package also includes helpers for parsing tool parameters that accept
// both single values and arrays.
package batch
