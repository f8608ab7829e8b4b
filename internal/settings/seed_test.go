package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore counts puts and the flushes that actually had work to do.
type countingStore struct {
	data     map[string]string
	pending  map[string]string
	puts     int
	writes   int
	flushErr error
}

func newCountingStore() *countingStore {
	return &countingStore{data: map[string]string{}, pending: map[string]string{}}
}

func (c *countingStore) Exists(key string) bool {
	_, durable := c.data[key]
	_, staged := c.pending[key]
	return durable || staged
}

func (c *countingStore) Put(key, value string) {
	c.puts++
	c.pending[key] = value
}

func (c *countingStore) Flush(context.Context) error {
	if c.flushErr != nil {
		return c.flushErr
	}
	if len(c.pending) == 0 {
		return nil
	}
	c.writes++
	for k, v := range c.pending {
		c.data[k] = v
	}
	c.pending = map[string]string{}
	return nil
}

func TestSeed_EmptyStore(t *testing.T) {
	static, err := New(nil)
	require.NoError(t, err)
	store := newCountingStore()

	seeded, err := Seed(context.Background(), store, static)
	require.NoError(t, err)

	assert.Equal(t, []string{KeyUTCOffset, KeyTime24}, seeded)
	assert.Equal(t, map[string]string{KeyUTCOffset: "-28800", KeyTime24: "0"}, store.data)
	assert.Equal(t, 1, store.writes, "one flush for the whole batch")
}

func TestSeed_Idempotent(t *testing.T) {
	static, err := New(nil)
	require.NoError(t, err)
	store := newCountingStore()

	_, err = Seed(context.Background(), store, static)
	require.NoError(t, err)
	puts, writes := store.puts, store.writes

	seeded, err := Seed(context.Background(), store, static)
	require.NoError(t, err)
	assert.Empty(t, seeded)
	assert.Equal(t, puts, store.puts, "second seed must not put")
	assert.Equal(t, writes, store.writes, "second seed must not write")
}

func TestSeed_KeepsExistingValues(t *testing.T) {
	static, err := New(nil)
	require.NoError(t, err)
	store := newCountingStore()
	store.data[KeyUTCOffset] = "-18000"

	seeded, err := Seed(context.Background(), store, static)
	require.NoError(t, err)

	assert.Equal(t, []string{KeyTime24}, seeded)
	assert.Equal(t, "-18000", store.data[KeyUTCOffset])
}

func TestSeed_FlushFailure(t *testing.T) {
	static, err := New(nil)
	require.NoError(t, err)
	store := newCountingStore()
	store.flushErr = errors.New("journal full")

	_, err = Seed(context.Background(), store, static)
	assert.ErrorIs(t, err, store.flushErr)
}
