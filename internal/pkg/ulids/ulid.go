// Package ulids generates sortable unique identifiers for request IDs and
// lock tokens.
package ulids

import (
	"crypto/rand"
	"sync"

	"github.com/oklog/ulid"
)

// Monotonic returns a generator whose ULIDs strictly increase, even within
// the same millisecond. It is safe for concurrent use and panics if entropy
// cannot be read.
func Monotonic() func() string {
	var m sync.Mutex
	entropy := ulid.Monotonic(rand.Reader, 0)

	return func() string {
		m.Lock()
		defer m.Unlock()
		return ulid.MustNew(ulid.Now(), entropy).String()
	}
}

// New returns a crypto/rand based ULID string.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
