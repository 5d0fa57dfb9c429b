// Package ticket generates the opaque identifiers assigned to complaints.
package ticket

import (
	"math/big"

	"github.com/google/uuid"
)

// Prefix carried by every generated ticket identifier.
const Prefix = "SVN"

// digits of entropy after the prefix.
const digits = 5

// New returns a fresh ticket identifier: the prefix followed by five decimal
// digits derived from a random UUID. Uniqueness is enforced by the store's
// unique index; callers regenerate on collision.
func New() string {
	u := uuid.New()
	s := new(big.Int).SetBytes(u[:]).String()
	if len(s) > digits {
		s = s[:digits]
	}
	for len(s) < digits {
		s = "0" + s
	}
	return Prefix + s
}
