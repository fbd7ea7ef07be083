package sequence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gestock/internal/core/id"
)

type memStore struct {
	mu     sync.Mutex
	values map[string]int64
}

func newMemStore() *memStore {
	return &memStore{values: make(map[string]int64)}
}

func (s *memStore) NextValue(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key]++
	return s.values[key], nil
}

func TestSequencer_NextOrderNumber(t *testing.T) {
	ctx := context.Background()
	seq := NewSequencer(newMemStore())
	company := id.New()
	day := time.Date(2025, 8, 17, 10, 30, 0, 0, time.UTC)

	first, err := seq.NextOrderNumber(ctx, company, day)
	require.NoError(t, err)
	assert.Equal(t, "SO-20250817-001", first)

	second, err := seq.NextOrderNumber(ctx, company, day)
	require.NoError(t, err)
	assert.Equal(t, "SO-20250817-002", second)
}

func TestSequencer_NextOrderNumber_IsolatedPerCompanyAndDay(t *testing.T) {
	ctx := context.Background()
	seq := NewSequencer(newMemStore())
	day := time.Date(2025, 8, 17, 0, 0, 0, 0, time.UTC)
	nextDay := day.AddDate(0, 0, 1)

	companyA := id.New()
	companyB := id.New()

	numA, err := seq.NextOrderNumber(ctx, companyA, day)
	require.NoError(t, err)
	numB, err := seq.NextOrderNumber(ctx, companyB, day)
	require.NoError(t, err)

	// Each company starts its own daily counter at 001.
	assert.Equal(t, "SO-20250817-001", numA)
	assert.Equal(t, "SO-20250817-001", numB)

	numNext, err := seq.NextOrderNumber(ctx, companyA, nextDay)
	require.NoError(t, err)
	assert.Equal(t, "SO-20250818-001", numNext)
}

func TestSequencer_NextOrderNumber_WidthGrowsPastThreeDigits(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	seq := NewSequencer(store)
	company := id.New()
	day := time.Date(2025, 8, 17, 0, 0, 0, 0, time.UTC)

	store.values[counterKey(company, day)] = 999

	num, err := seq.NextOrderNumber(ctx, company, day)
	require.NoError(t, err)
	assert.Equal(t, "SO-20250817-1000", num)
}

func TestSequencer_NextOrderNumber_Concurrent(t *testing.T) {
	ctx := context.Background()
	seq := NewSequencer(newMemStore())
	company := id.New()
	day := time.Date(2025, 8, 17, 0, 0, 0, 0, time.UTC)

	const n = 50
	results := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			num, err := seq.NextOrderNumber(ctx, company, day)
			assert.NoError(t, err)
			results <- num
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[string]bool, n)
	for num := range results {
		assert.False(t, seen[num], "duplicate order number %s", num)
		seen[num] = true
	}
	assert.Len(t, seen, n)
}

func TestParseOrderNumber(t *testing.T) {
	parsed, err := ParseOrderNumber("SO-20250817-042")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 8, 17, 0, 0, 0, 0, time.UTC), parsed.Day)
	assert.Equal(t, int64(42), parsed.Seq)

	for _, bad := range []string{"", "SO-20250817", "XX-20250817-001", "SO-2025-001", "SO-20250817-000", "SO-20250817-abc"} {
		_, err := ParseOrderNumber(bad)
		assert.Error(t, err, "expected error for %q", bad)
	}
}
