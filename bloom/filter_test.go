package bloom_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/fwojciec/unfold/bloom"
	"github.com/stretchr/testify/assert"
)

func TestFilter_Seen(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(100, 0.001)

	assert.False(t, f.Seen("https://stats.example.gov/report"))
	assert.True(t, f.Seen("https://stats.example.gov/report"))
	assert.True(t, f.Seen("https://stats.example.gov/report"))
	assert.False(t, f.Seen("https://stats.example.gov/report?page=2"))
}

func TestFilter_FalsePositiveRate(t *testing.T) {
	t.Parallel()

	const (
		numItems   = 10000
		fpRate     = 0.01
		testProbes = 10000
	)

	// Probes are added as they are tested, so size for both.
	f := bloom.NewFilter(numItems+testProbes, fpRate)
	for i := range numItems {
		f.Seen(fmt.Sprintf("https://stats.example.gov/added/%d", i))
	}

	falsePositives := 0
	for i := range testProbes {
		if f.Seen(fmt.Sprintf("https://stats.example.gov/notadded/%d", i)) {
			falsePositives++
		}
	}

	actualRate := float64(falsePositives) / float64(testProbes)
	assert.Less(t, actualRate, 0.02, "false positive rate %f exceeds 2%%", actualRate)
}

func TestFilter_SeenIsSafeForConcurrentUse(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(100, 0.001)

	var mu sync.Mutex
	unseen := 0
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !f.Seen("https://stats.example.gov/report") {
				mu.Lock()
				unseen++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, unseen)
}

func TestNewFilter_ZeroCapacity(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(0, 0.01)

	assert.False(t, f.Seen("https://stats.example.gov/"))
	assert.True(t, f.Seen("https://stats.example.gov/"))
}
