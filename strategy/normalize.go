package strategy

import (
	"math/rand"
	"strconv"

	"github.com/twmb/murmur3"
)

// DefaultNormalizer is the bucket count used by percentage-based rollouts.
const DefaultNormalizer = 100

// NormalizedValue maps an identifier onto the range [1, normalizer] by hashing "groupID:id" with
// murmur3 (x86, 32 bit, seed 0).
//
// The result only depends on its inputs, so it is stable across restarts and matches the bucketing of
// other Unleash client implementations. Rollout strategies compare it with a percentage, and variant
// selection uses it with the total variant weight as the normalizer. A normalizer of 0 yields 0.
func NormalizedValue(id, groupID string, normalizer uint32) uint32 {
	if normalizer == 0 {
		return 0
	}
	hash := murmur3.Sum32([]byte(groupID + ":" + id))
	return hash%normalizer + 1
}

// RandomValue returns a random number in [1, normalizer].
func RandomValue(normalizer int) int {
	if normalizer <= 0 {
		return 0
	}
	return rand.Intn(normalizer) + 1 //nolint:gosec // not used for anything security-related
}

// RandomStickiness returns a random identifier used when a context has no stable identity.
func RandomStickiness() string {
	return strconv.Itoa(RandomValue(1000000))
}
