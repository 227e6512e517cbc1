package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/de-tools/maritime-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingBuilder(calls *atomic.Int32) Builder {
	return func(ctx context.Context) (*domain.ReportDataset, error) {
		n := calls.Add(1)
		return &domain.ReportDataset{Summary: "build", RecordTotals: map[string]int64{"builds": int64(n)}}, nil
	}
}

func TestReportCache_HitWithinTTL(t *testing.T) {
	c := NewReportCache(Settings{TTL: time.Minute})
	ctx := context.Background()
	var calls atomic.Int32

	first, hit, err := c.GetOrCompute(ctx, "fp", countingBuilder(&calls))
	require.NoError(t, err)
	assert.False(t, hit)

	second, hit, err := c.GetOrCompute(ctx, "fp", countingBuilder(&calls))
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Same(t, first, second)
	assert.Equal(t, int32(1), calls.Load())

	_, _, err = c.GetOrCompute(ctx, "other", countingBuilder(&calls))
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestReportCache_RecomputesAfterExpiry(t *testing.T) {
	c := NewReportCache(Settings{TTL: 50 * time.Millisecond})
	ctx := context.Background()
	var calls atomic.Int32

	_, _, err := c.GetOrCompute(ctx, "fp", countingBuilder(&calls))
	require.NoError(t, err)
	_, hit, err := c.GetOrCompute(ctx, "fp", countingBuilder(&calls))
	require.NoError(t, err)
	assert.True(t, hit)

	time.Sleep(120 * time.Millisecond)

	dataset, hit, err := c.GetOrCompute(ctx, "fp", countingBuilder(&calls))
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, int64(2), dataset.RecordTotals["builds"])
}

func TestReportCache_FailedBuildStoresNothing(t *testing.T) {
	c := NewReportCache(Settings{})
	ctx := context.Background()
	boom := errors.New("rendering batch failed")

	_, _, err := c.GetOrCompute(ctx, "fp", func(context.Context) (*domain.ReportDataset, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	var calls atomic.Int32
	_, hit, err := c.GetOrCompute(ctx, "fp", countingBuilder(&calls))
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, int32(1), calls.Load())
}

func TestReportCache_NilDatasetIsAnError(t *testing.T) {
	c := NewReportCache(Settings{})
	_, _, err := c.GetOrCompute(context.Background(), "fp", func(context.Context) (*domain.ReportDataset, error) {
		return nil, nil
	})
	assert.Error(t, err)
}

func TestReportCache_ConcurrentMissesBuildOnce(t *testing.T) {
	c := NewReportCache(Settings{TTL: time.Minute})
	ctx := context.Background()

	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	build := func(context.Context) (*domain.ReportDataset, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		return &domain.ReportDataset{Summary: "shared"}, nil
	}

	const n = 10
	results := make([]*domain.ReportDataset, n)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _, _ = c.GetOrCompute(ctx, "fp", build)
	}()
	<-started

	for i := 1; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _, _ = c.GetOrCompute(ctx, "fp", build)
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		require.NotNil(t, r)
		assert.Equal(t, "shared", r.Summary)
	}
}

func TestReportCache_Purge(t *testing.T) {
	c := NewReportCache(Settings{})
	ctx := context.Background()
	var calls atomic.Int32

	_, _, err := c.GetOrCompute(ctx, "fp", countingBuilder(&calls))
	require.NoError(t, err)
	c.Purge()
	_, hit, err := c.GetOrCompute(ctx, "fp", countingBuilder(&calls))
	require.NoError(t, err)
	assert.False(t, hit)
}
