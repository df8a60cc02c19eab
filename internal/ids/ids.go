// Package ids generates identifiers for stored records.
package ids

import "github.com/oklog/ulid/v2"

// New returns a lexicographically sortable identifier suitable for
// storage keys.
func New() string {
	return ulid.Make().String()
}
