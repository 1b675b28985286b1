package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartitionMap(t *testing.T) {
	pm := NewPartitionMap(4, 10)
	var covered int
	prevEnd := 0
	for n := 0; n < pm.ParallelDegree; n++ {
		kMin, kMax := pm.GetBucketRange(n)
		assert.Equal(t, prevEnd, kMin) // contiguous, in order
		assert.True(t, kMax > kMin)
		// maximum imbalance of one item
		assert.True(t, pm.GetBucketDimension(n) >= 2 && pm.GetBucketDimension(n) <= 3)
		covered += kMax - kMin
		prevEnd = kMax
	}
	assert.Equal(t, 10, covered)
	assert.Equal(t, 10, prevEnd)
}

func TestPartitionMapClamping(t *testing.T) {
	// More workers than items degrades to one item per bucket
	pm := NewPartitionMap(8, 3)
	assert.Equal(t, 3, pm.ParallelDegree)
	for n := 0; n < 3; n++ {
		assert.Equal(t, 1, pm.GetBucketDimension(n))
	}
	// Degenerate degree clamps to serial
	pm = NewPartitionMap(0, 5)
	assert.Equal(t, 1, pm.ParallelDegree)
	kMin, kMax := pm.GetBucketRange(0)
	assert.Equal(t, 0, kMin)
	assert.Equal(t, 5, kMax)
}
