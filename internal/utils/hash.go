package utils

import "hash/fnv"

func HashStringToUint64(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

// HashToUnit maps s onto [0, 1) deterministically.
func HashToUnit(s string) float64 {
	return float64(HashStringToUint64(s)>>11) / float64(1<<53)
}
