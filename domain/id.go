package domain

import (
	"math/rand/v2"
	"strconv"
	"time"
)

const (
	idSuffixLen   = 8
	base36Symbols = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// NewID mints an opaque id of the form <unix-millis>-<random base36 suffix>.
// Lexicographic order approximates creation order; two ids minted in the same
// millisecond sort by their random suffix. Nothing may assume strict creation
// order from id comparison alone.
func NewID() string {
	var suffix [idSuffixLen]byte
	for i := range suffix {
		suffix[i] = base36Symbols[rand.IntN(len(base36Symbols))]
	}
	return strconv.FormatInt(time.Now().UnixMilli(), 10) + "-" + string(suffix[:])
}
