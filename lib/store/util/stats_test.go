package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewStats(t *testing.T) {
	stats := NewStats([]float64{2, 4, 4, 4, 5, 5, 7, 9})

	assert.Equal(t, 2.0, stats.Min)
	assert.Equal(t, 9.0, stats.Max)
	assert.Equal(t, 5.0, stats.Mean)
	assert.InDelta(t, 2.0, stats.StdDeviation, 1e-9)
	assert.InDelta(t, 2.0/9.0, stats.MinMaxRatio, 1e-9)
}

func TestNewStatsEmpty(t *testing.T) {
	assert.Equal(t, Stats{}, NewStats(nil))
}

func TestDistributionQuality(t *testing.T) {
	even := NewDistributionStats([]float64{10, 10, 10, 10})
	assert.InDelta(t, 1.0, even.DistributionQuality, 1e-9)

	skewed := NewDistributionStats([]float64{40, 0, 0, 0})
	assert.Less(t, skewed.DistributionQuality, even.DistributionQuality)
}

func TestCopyBytes(t *testing.T) {
	orig := []byte("value")
	c := CopyBytes(orig)
	orig[0] = 'X'

	assert.Equal(t, []byte("value"), c)
	assert.NotNil(t, CopyBytes(nil))
}
