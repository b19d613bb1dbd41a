package chatstate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JamesLuiz/House-me/internal/listings"
)

type fakeRedis struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
	err  error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	f.data[key] = string(value.([]byte))
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func storeContract(t *testing.T, store Store) {
	ctx := context.Background()

	state, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, state)
	assert.True(t, state.IsIdle())

	require.NoError(t, store.Set(ctx, 1, Awaiting(InputPrice)))
	state, err = store.Get(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, InputPrice, state.WaitingFor)
	assert.Nil(t, state.Search)
	assert.False(t, state.IsIdle())

	filter := listings.Filter{Location: "Wuse", Limit: 20}
	require.NoError(t, store.Set(ctx, 1, Searched(SearchLocation, filter)))
	state, err = store.Get(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, state.Search)
	assert.True(t, state.IsIdle())
	assert.Equal(t, SearchLocation, state.Search.Kind)
	assert.Equal(t, filter, state.Search.Filter)
	assert.Equal(t, 0, state.Search.Page)

	// Other users are unaffected
	other, err := store.Get(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, other)

	require.NoError(t, store.Clear(ctx, 1))
	state, err = store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, state)

	// Clearing an unknown user is fine
	assert.NoError(t, store.Clear(ctx, 99))
}

func TestMemoryStore(t *testing.T) {
	store, err := NewMemoryStore(100, time.Hour)
	require.NoError(t, err)
	defer store.Close()

	storeContract(t, store)
	assert.Equal(t, "memory", store.Backend())
}

func TestMemoryStore_SetCopiesSearch(t *testing.T) {
	ctx := context.Background()
	store, err := NewMemoryStore(100, time.Hour)
	require.NoError(t, err)
	defer store.Close()

	state := Searched(SearchType, listings.Filter{Type: "duplex"})
	require.NoError(t, store.Set(ctx, 5, state))
	state.Search.Page = 3

	got, err := store.Get(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Search.Page)
}

func TestMemoryStore_Expires(t *testing.T) {
	ctx := context.Background()
	store, err := NewMemoryStore(100, 50*time.Millisecond)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Set(ctx, 1, Awaiting(InputLocation)))
	assert.Eventually(t, func() bool {
		s, _ := store.Get(ctx, 1)
		return s == nil
	}, 2*time.Second, 20*time.Millisecond)
}

func TestRedisStore(t *testing.T) {
	fake := newFakeRedis()
	store := newRedisStore(fake, time.Hour)

	storeContract(t, store)
	assert.Equal(t, "redis", store.Backend())
}

func TestRedisStore_KeyAndTTL(t *testing.T) {
	fake := newFakeRedis()
	store := newRedisStore(fake, 0)

	require.NoError(t, store.Set(context.Background(), 123, Awaiting(InputTextSearch)))
	assert.JSONEq(t, `{"waiting_for":"text_search"}`, fake.data["houseme:session:123"])
	assert.Equal(t, DefaultTTL, fake.ttls["houseme:session:123"])
}

func TestRedisStore_Errors(t *testing.T) {
	fake := newFakeRedis()
	fake.err = errors.New("connection refused")
	store := newRedisStore(fake, time.Hour)

	_, err := store.Get(context.Background(), 1)
	assert.ErrorContains(t, err, "connection refused")
	assert.Error(t, store.Set(context.Background(), 1, State{}))

	fake.err = nil
	fake.data[redisKey(1)] = "not json"
	_, err = store.Get(context.Background(), 1)
	assert.ErrorContains(t, err, "decode")
}

func TestNewRedisStore_InvalidURL(t *testing.T) {
	_, _, err := NewRedisStore("http://nope", time.Hour)
	assert.Error(t, err)
}

func TestWithSearch(t *testing.T) {
	search := Search{Kind: SearchLocation, Filter: listings.Filter{Location: "Wuse"}, Page: 2}

	next := WithSearch(nil, search)
	assert.True(t, next.IsIdle())
	assert.Equal(t, &search, next.Search)

	prompted := Awaiting(InputPrice)
	next = WithSearch(&prompted, search)
	assert.Equal(t, InputPrice, next.WaitingFor)
	assert.Equal(t, 2, next.Search.Page)
	assert.Nil(t, prompted.Search)
}
