// Package random picks the seeds that tableau generation is replayed from.
// A stored or printed seed rebuilds the same board, so seeds stay positive
// and zero is left free to mean "pick one for me".
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math"
)

// NewSeed draws a seed in [1, math.MaxInt64] from crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	for {
		if _, err := crand.Read(b[:]); err != nil {
			return 0, fmt.Errorf("read random seed: %w", err)
		}
		if seed := int64(binary.LittleEndian.Uint64(b[:]) & math.MaxInt64); seed != 0 {
			return seed, nil
		}
	}
}
