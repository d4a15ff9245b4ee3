package room

import (
	"math/rand/v2"
	"strings"

	"chatroomgo/internal/registry"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GenerateCode returns a code of exactly length characters drawn uniformly
// from the uppercase alphabet, re-rolled in full until the candidate is not
// present in the registry. With a near-exhausted code space this loops
// indefinitely; for the registry sizes this serves, collisions are rare and
// the open retry is an accepted limitation.
func GenerateCode(reg *registry.Registry, length int) string {
	var b strings.Builder
	b.Grow(length)
	for {
		b.Reset()
		for range length {
			b.WriteByte(codeAlphabet[rand.IntN(len(codeAlphabet))])
		}
		if code := b.String(); !reg.Exists(code) {
			return code
		}
	}
}
