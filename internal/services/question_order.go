package services

import (
	"hash/fnv"
	"math/rand"

	"github.com/google/uuid"
)

// GenerateQuestionOrder derives the ordered question sequence for a new
// session from a test's pool. The output is always a permutation of the
// pool: same elements, no duplication, no omission.
//
// A caller-supplied seed makes the shuffle reproducible. Without one, an
// opaque seed is generated and recorded for audit only.
func GenerateQuestionOrder(pool []string, allowRandomize bool, seed string) (order []string, recordedSeed string) {
	order = make([]string, len(pool))
	copy(order, pool)

	if !allowRandomize {
		if seed == "" {
			seed = uuid.New().String()
		}
		return order, seed
	}

	if seed == "" {
		seed = uuid.New().String()
	}

	rng := rand.New(rand.NewSource(seedToInt64(seed)))
	rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	return order, seed
}

// seedToInt64 maps an arbitrary seed string onto a rand source
func seedToInt64(seed string) int64 {
	h := fnv.New64a()
	h.Write([]byte(seed))
	return int64(h.Sum64())
}

// isPermutationOf reports whether candidate contains exactly the elements
// of pool, used to vet caller-supplied explicit orders.
func isPermutationOf(candidate, pool []string) bool {
	if len(candidate) != len(pool) {
		return false
	}
	counts := make(map[string]int, len(pool))
	for _, id := range pool {
		counts[id]++
	}
	for _, id := range candidate {
		counts[id]--
		if counts[id] < 0 {
			return false
		}
	}
	return true
}
