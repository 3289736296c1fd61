// Package diagnostic provides structured errors, warnings and infos
// collected while validating mapping descriptors and building a catalog.
//
// Key capabilities:
//   - Coded diagnostics addressed to a type and property
//   - Severity buckets with a merged error view
//   - Human-readable rendering for CLI output
package diagnostic
