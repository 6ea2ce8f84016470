package extract

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExtractor struct {
	closed bool
}

func (f *fakeExtractor) Extract(_ context.Context, _ string) ([]Entity, error) { return nil, nil }

func (f *fakeExtractor) Close() error {
	f.closed = true
	return nil
}

func countingFactory(calls *int, err error) Factory {
	return func(_ context.Context) (Extractor, error) {
		*calls++
		if err != nil {
			return nil, err
		}
		return &fakeExtractor{}, nil
	}
}

func TestProvider_PerRequest(t *testing.T) {
	t.Parallel()

	calls := 0
	p := NewProvider(countingFactory(&calls, nil), false)

	ex1, err := p.Acquire(context.Background())
	require.NoError(t, err)
	ex2, err := p.Acquire(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, calls, "per-request mode constructs a handle per Acquire")
	assert.NotSame(t, ex1, ex2)

	p.Release(ex1)
	assert.True(t, ex1.(*fakeExtractor).closed, "Release closes per-request handles")
	assert.False(t, ex2.(*fakeExtractor).closed)

	require.NoError(t, p.Close())
}

func TestProvider_Cached(t *testing.T) {
	t.Parallel()

	calls := 0
	p := NewProvider(countingFactory(&calls, nil), true)

	ex1, err := p.Acquire(context.Background())
	require.NoError(t, err)
	ex2, err := p.Acquire(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, calls, "cached mode constructs the handle once")
	assert.Same(t, ex1, ex2)

	p.Release(ex1)
	assert.False(t, ex1.(*fakeExtractor).closed, "Release must not close the cached handle")

	require.NoError(t, p.Close())
	assert.True(t, ex1.(*fakeExtractor).closed, "Close releases the cached handle")
}

func TestProvider_CachedFactoryErrorIsNotCached(t *testing.T) {
	t.Parallel()

	calls := 0
	failing := errors.New("model missing")
	var factoryErr error = failing
	p := NewProvider(func(ctx context.Context) (Extractor, error) {
		calls++
		if factoryErr != nil {
			return nil, factoryErr
		}
		return &fakeExtractor{}, nil
	}, true)

	_, err := p.Acquire(context.Background())
	require.ErrorIs(t, err, failing)

	// backend comes back; the next Acquire retries the factory
	factoryErr = nil
	ex, err := p.Acquire(context.Background())
	require.NoError(t, err)
	require.NotNil(t, ex)
	assert.Equal(t, 2, calls)
}

func TestProvider_CachedConcurrentAcquire(t *testing.T) {
	t.Parallel()

	calls := 0
	p := NewProvider(countingFactory(&calls, nil), true)

	var wg sync.WaitGroup
	handles := make([]Extractor, 8)
	for i := range handles {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ex, err := p.Acquire(context.Background())
			assert.NoError(t, err)
			handles[i] = ex
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, calls)
	for _, ex := range handles {
		assert.Same(t, handles[0], ex)
	}
}
