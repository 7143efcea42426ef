// Package assembly is the matrix-op assembly layer: it turns the
// classifier-keyed parameter tables package parameters resolves into
// the per-stand cbmcore.Op matrices the spinup and step drivers apply.
package assembly

import "github.com/cbmcfs/cbmcore/parameters"

// groupByKey partitions n stands into distinct classifier buckets,
// returning a per-stand group id slice and the distinct keys in
// first-seen order. This is the same dense-indexing-of-buckets pattern
// parameters.Index uses, applied here so stands sharing a classifier
// bucket share one compiled matrix instead of each stand getting its
// own copy.
func groupByKey(n int, key func(i int) parameters.BucketKey) ([]int, []parameters.BucketKey) {
	groupOf := make(map[parameters.BucketKey]int)
	index := make([]int, n)
	var keys []parameters.BucketKey
	for i := 0; i < n; i++ {
		k := key(i)
		g, ok := groupOf[k]
		if !ok {
			g = len(keys)
			groupOf[k] = g
			keys = append(keys, k)
		}
		index[i] = g
	}
	return index, keys
}
