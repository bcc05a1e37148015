package locker

import (
	"context"
	"testing"
	"time"

	"consultation-service/internal/pkg/exceptions"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryRedis struct {
	values map[string]string
}

func (m *memoryRedis) Get(_ context.Context, key string) (string, error) {
	return m.values[key], nil
}

func (m *memoryRedis) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, _ := json.Marshal(value)
	m.values[key] = string(raw)
	return nil
}

func (m *memoryRedis) Delete(_ context.Context, key string) error {
	delete(m.values, key)
	return nil
}

func (m *memoryRedis) TrySetNX(_ context.Context, key string, value interface{}, _ time.Duration) (bool, error) {
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	raw, _ := json.Marshal(value)
	m.values[key] = string(raw)
	return true, nil
}

func TestLockService(t *testing.T) {
	ctx := context.Background()
	redis := &memoryRedis{values: map[string]string{}}
	locker := &lockService{RedisRepository: redis, Log: zap.NewNop()}

	acquired, token, err := locker.TryLock(ctx, "sweep", time.Minute)
	require.NoError(t, err)
	require.True(t, acquired)
	require.NotEmpty(t, token)

	acquired, second, err := locker.TryLock(ctx, "sweep", time.Minute)
	require.NoError(t, err)
	assert.False(t, acquired)
	assert.Empty(t, second)

	err = locker.Unlock(ctx, "sweep", "someone-else")
	assert.True(t, exceptions.IsKind(err, exceptions.KindInternal))
	assert.Contains(t, redis.values, "sweep")

	require.NoError(t, locker.Unlock(ctx, "sweep", token))
	assert.NotContains(t, redis.values, "sweep")

	require.NoError(t, locker.Unlock(ctx, "sweep", token))
}
