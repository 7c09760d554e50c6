package mapping_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/lox/internal/core/domain"
	"go.trai.ch/lox/internal/core/ports"
	"go.trai.ch/lox/internal/engine/mapping"
	"go.trai.ch/zerr"
)

// countingLookup records every bulk request it serves.
type countingLookup struct {
	mu      sync.Mutex
	table   map[string]string
	calls   int
	batches [][]string
	err     error
}

func (c *countingLookup) Lookup(_ context.Context, names []string, _ ports.AuthContext) (map[string]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.batches = append(c.batches, append([]string(nil), names...))
	if c.err != nil {
		return nil, c.err
	}
	out := make(map[string]string, len(names))
	for _, name := range names {
		if id, ok := c.table[name]; ok {
			out[name] = id
		}
	}
	return out, nil
}

func record(name, version string) domain.CondaRecord {
	return domain.CondaRecord{
		Name:    domain.NewInternedString(name),
		Version: version,
		Channel: "main",
	}
}

func TestAmendOverrideWithEmptyBulkLayer(t *testing.T) {
	// An override entry must produce exactly one purl carrying the
	// override's identifier even when the bulk layer knows nothing.
	lookup := &countingLookup{table: map[string]string{}}
	r := mapping.NewReconciler(lookup, map[string]string{"foo-bar-car": "my-test-name"})

	out, err := r.Amend(context.Background(), []domain.CondaRecord{record("foo-bar-car", "0.1.0")}, ports.AuthContext{})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Len(t, out[0].Purls, 1)
	assert.Equal(t, "pkg:pypi/my-test-name@0.1.0", out[0].Purls[0])
}

func TestAmendOverrideBeatsBulkLayer(t *testing.T) {
	lookup := &countingLookup{table: map[string]string{"foo": "bulk-name"}}
	r := mapping.NewReconciler(lookup, map[string]string{"foo": "override-name"})

	out, err := r.Amend(context.Background(), []domain.CondaRecord{record("foo", "1.0")}, ports.AuthContext{})
	require.NoError(t, err)
	require.Len(t, out[0].Purls, 1)
	assert.Equal(t, "pkg:pypi/override-name@1.0", out[0].Purls[0])

	// Override-covered names never reach the bulk layer.
	assert.Zero(t, lookup.calls)
}

func TestAmendBulkLayerFillsUncoveredNames(t *testing.T) {
	lookup := &countingLookup{table: map[string]string{"bar": "bar-proj"}}
	r := mapping.NewReconciler(lookup, map[string]string{"foo": "foo-proj"})

	out, err := r.Amend(context.Background(), []domain.CondaRecord{
		record("foo", "1.0"),
		record("bar", "2.0"),
		record("baz", "3.0"),
	}, ports.AuthContext{})
	require.NoError(t, err)

	assert.Equal(t, []string{"pkg:pypi/foo-proj@1.0"}, out[0].Purls)
	assert.Equal(t, []string{"pkg:pypi/bar-proj@2.0"}, out[1].Purls)
	assert.Empty(t, out[2].Purls, "a name neither layer knows stays unamended")

	require.Equal(t, 1, lookup.calls)
	assert.ElementsMatch(t, []string{"bar", "baz"}, lookup.batches[0])
}

func TestAmendIsIdempotent(t *testing.T) {
	lookup := &countingLookup{table: map[string]string{}}
	r := mapping.NewReconciler(lookup, map[string]string{"foo": "foo-proj"})

	first, err := r.Amend(context.Background(), []domain.CondaRecord{record("foo", "1.0")}, ports.AuthContext{})
	require.NoError(t, err)
	second, err := r.Amend(context.Background(), first, ports.AuthContext{})
	require.NoError(t, err)

	assert.Equal(t, []string{"pkg:pypi/foo-proj@1.0"}, second[0].Purls)
}

func TestAmendDoesNotMutateInput(t *testing.T) {
	lookup := &countingLookup{table: map[string]string{}}
	r := mapping.NewReconciler(lookup, map[string]string{"foo": "foo-proj"})

	in := []domain.CondaRecord{record("foo", "1.0")}
	_, err := r.Amend(context.Background(), in, ports.AuthContext{})
	require.NoError(t, err)
	assert.Empty(t, in[0].Purls)
}

func TestMemoizedLookupDeduplicates(t *testing.T) {
	lookup := &countingLookup{table: map[string]string{"foo": "foo-proj"}}
	r := mapping.NewReconciler(lookup, nil)

	for range 3 {
		_, err := r.Amend(context.Background(), []domain.CondaRecord{record("foo", "1.0")}, ports.AuthContext{})
		require.NoError(t, err)
	}

	assert.Equal(t, 1, lookup.calls, "repeated amendments within one pass share a single lookup")
}

func TestMemoizedLookupConcurrent(t *testing.T) {
	lookup := &countingLookup{table: map[string]string{"foo": "foo-proj"}}
	r := mapping.NewReconciler(lookup, nil)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := r.Amend(context.Background(), []domain.CondaRecord{record("foo", "1.0")}, ports.AuthContext{})
			assert.NoError(t, err)
			assert.Equal(t, []string{"pkg:pypi/foo-proj@1.0"}, out[0].Purls)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, lookup.calls)
}

func TestAmendLookupFailure(t *testing.T) {
	lookup := &countingLookup{err: zerr.New("service unavailable")}
	r := mapping.NewReconciler(lookup, nil)

	_, err := r.Amend(context.Background(), []domain.CondaRecord{record("foo", "1.0")}, ports.AuthContext{})
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrLookupFailed.Error())

	// A failed claim is dropped from the cache, so the next amendment
	// retries the lookup instead of replaying the cached failure.
	lookup.mu.Lock()
	lookup.err = nil
	lookup.table = map[string]string{"foo": "foo-proj"}
	lookup.mu.Unlock()

	out, err := r.Amend(context.Background(), []domain.CondaRecord{record("foo", "1.0")}, ports.AuthContext{})
	require.NoError(t, err)
	assert.Equal(t, []string{"pkg:pypi/foo-proj@1.0"}, out[0].Purls)
	assert.Equal(t, 2, lookup.calls)
}
