// Package artifact owns the on-disk layout of a scenarios root.
//
// Each scenario writes into its own directory named <id>_<sanitized title>.
// The package writes the core artifacts (variants table, metrics record)
// atomically and reads the collaborator-owned ones (test data, scripts,
// combinatorial plan) tolerantly: a missing or empty file counts as zero,
// never as an error.
package artifact
