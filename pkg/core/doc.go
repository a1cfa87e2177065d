// Package core defines the vocabulary shared by the validation, batch and
// reporting layers.
//
// This package contains:
//   - Issue severities (Severity)
//   - Check outcomes (Status)
//   - Check metadata for listings (CheckInfo)
//
// The Golden Rule: pkg/core imports ONLY the standard library.
// All other packages depend on core, not the reverse.
package core
