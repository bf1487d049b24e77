// Package security provides id generation, one-way anonymization, and
// token utilities for the telemetry engine.
package security

import (
	"hash/fnv"
	"strconv"
	"strings"

	"github.com/oklog/ulid/v2"
)

const (
	// AnonPrefix marks an identifier generated for an unauthenticated
	// client.
	AnonPrefix = "anon-"
	// UserPrefix marks a hashed identifier derived from an
	// authenticated id.
	UserPrefix = "u-"
)

// GenerateULID generates a new ULID string.
func GenerateULID() string {
	return ulid.Make().String()
}

// GenerateSessionID returns a random, non-sequential session id.
func GenerateSessionID() string {
	return "sess-" + strings.ToLower(ulid.Make().String())
}

// GenerateAnonymousID returns a fresh random anonymous id for an
// unauthenticated client.
func GenerateAnonymousID() string {
	return AnonPrefix + strings.ToLower(ulid.Make().String())
}

// HashKnownID applies a deterministic, non-cryptographic one-way
// transform to an authenticated identifier and returns a prefixed
// base-36 string. The same input always yields the same output, the
// output never equals the input, and no mapping back to the source id
// is stored anywhere.
func HashKnownID(knownID string) string {
	h := fnv.New64a()
	h.Write([]byte(knownID))
	return UserPrefix + strconv.FormatUint(h.Sum64(), 36)
}
