package util

import "github.com/oklog/ulid/v2"

// NewULID generates a new ULID string. Used for request correlation ids in
// the access log; ulid.Make reads from crypto/rand, which is good enough for
// that volume.
func NewULID() string {
	return ulid.Make().String()
}
