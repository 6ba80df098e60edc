// Package idgen provides pluggable ID generation, adapted from the
// teacher's ecosystem-wide idgen package: the ID strategy stays a
// composable, startup-time decision rather than a compile-time one.
package idgen

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
)

// Generator produces unique string identifiers.
type Generator func() string

const base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NanoID returns a Generator that produces base-36 IDs of the given length.
// Short, URL-safe, fast — used where a UUID would be too verbose.
func NanoID(length int) Generator {
	return func() string {
		buf := make([]byte, length)
		if _, err := rand.Read(buf); err != nil {
			panic("idgen: crypto/rand failed: " + err.Error())
		}
		out := make([]byte, length)
		for i := range out {
			out[i] = base36Alphabet[int(buf[i])%len(base36Alphabet)]
		}
		return string(out)
	}
}

// UUIDv7 returns a Generator that produces RFC 9562 UUID v7 strings,
// time-sortable and globally unique.
func UUIDv7() Generator {
	return func() string {
		return uuid.Must(uuid.NewV7()).String()
	}
}

// Prefixed wraps a Generator and prepends a fixed prefix to every ID.
// Used for type-scoped identifiers (e.g. "obs_").
func Prefixed(prefix string, gen Generator) Generator {
	return func() string {
		return prefix + gen()
	}
}

// base36Encode renders n in base 36, lowercase, no leading zero-padding
// beyond a single "0" for n == 0.
func base36Encode(n int64) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf []byte
	for n > 0 {
		buf = append([]byte{base36Alphabet[n%36]}, buf...)
		n /= 36
	}
	if neg {
		buf = append([]byte{'-'}, buf...)
	}
	return string(buf)
}

// Base36Timestamp returns a Generator that renders the current Unix
// millisecond timestamp in base 36 — the timestamp36 component of the
// observation ID scheme.
func Base36Timestamp() Generator {
	return func() string {
		return base36Encode(time.Now().UnixMilli())
	}
}

// Base36Random returns a Generator that renders `length` base-36
// characters of cryptographically random entropy, sourced from a UUID's
// random bytes so the underlying pool is the same crypto/rand-backed
// generator the rest of the ecosystem uses (github.com/google/uuid).
func Base36Random(length int) Generator {
	return func() string {
		id := uuid.New()
		n := new(big.Int).SetBytes(id[:])
		s := n.Text(36)
		if len(s) >= length {
			return s[:length]
		}
		for len(s) < length {
			s = "0" + s
		}
		return s
	}
}

// Joined concatenates the output of each generator with sep between them.
func Joined(sep string, gens ...Generator) Generator {
	return func() string {
		out := ""
		for i, g := range gens {
			if i > 0 {
				out += sep
			}
			out += g()
		}
		return out
	}
}

// Default is the ecosystem default: UUIDv7 (RFC 9562), time-sortable and
// globally unique.
var Default Generator = UUIDv7()

// New produces an ID using the Default generator.
func New() string { return Default() }

// MustParse validates a UUID string and returns it or panics.
func MustParse(s string) string {
	_ = uuid.MustParse(s)
	return s
}

// Parse validates a UUID string and returns it or an error.
func Parse(s string) (string, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid UUID: %w", err)
	}
	return u.String(), nil
}
