// Package runid generates the per-invocation run identifier the CLI
// programs log and, when persistence is enabled, store alongside a
// cluster-detection run.
package runid

import "github.com/google/uuid"

// New returns a fresh run identifier string.
func New() string {
	return uuid.NewString()
}
