// Package id generates the identifiers stamped on events and correlation
// chains.
//
// An identifier is a UUIDv4 encoded as unpadded base32 (RFC 4648) and
// lowercased, giving a 26-character string that is safe in URLs, file
// paths, and log lines.
package id

import (
	"encoding/base32"
	"strings"

	"github.com/google/uuid"
)

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewID returns a new 26-character lowercase identifier.
func NewID() (string, error) {
	u, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return strings.ToLower(encoding.EncodeToString(u[:])), nil
}
