package testutil

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/questx-lab/raffle/pkg/xredis"
)

type MockRedisClient struct {
	ExistFunc  func(ctx context.Context, key string) (bool, error)
	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key string, value string) error
	DelFunc    func(ctx context.Context, keys ...string) error
	SetObjFunc func(ctx context.Context, key string, obj any, ttl time.Duration) error
	GetObjFunc func(ctx context.Context, key string, v any) error
}

func (m *MockRedisClient) Exist(ctx context.Context, key string) (bool, error) {
	if m.ExistFunc != nil {
		return m.ExistFunc(ctx, key)
	}

	return false, nil
}

func (m *MockRedisClient) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}

	return "", xredis.ErrNotFound
}

func (m *MockRedisClient) Set(ctx context.Context, key string, value string) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value)
	}

	return nil
}

func (m *MockRedisClient) Del(ctx context.Context, keys ...string) error {
	if m.DelFunc != nil {
		return m.DelFunc(ctx, keys...)
	}

	return nil
}

func (m *MockRedisClient) SetObj(ctx context.Context, key string, obj any, ttl time.Duration) error {
	if m.SetObjFunc != nil {
		return m.SetObjFunc(ctx, key, obj, ttl)
	}

	return nil
}

func (m *MockRedisClient) GetObj(ctx context.Context, key string, v any) error {
	if m.GetObjFunc != nil {
		return m.GetObjFunc(ctx, key, v)
	}

	return xredis.ErrNotFound
}

// MemoryRedisClient is an xredis.Client backed by a map. TTLs are ignored.
type MemoryRedisClient struct {
	mutex sync.Mutex
	data  map[string]string
}

func NewMemoryRedisClient() *MemoryRedisClient {
	return &MemoryRedisClient{data: map[string]string{}}
}

func (c *MemoryRedisClient) Exist(ctx context.Context, key string) (bool, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	_, ok := c.data[key]
	return ok, nil
}

func (c *MemoryRedisClient) Del(ctx context.Context, keys ...string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	for _, key := range keys {
		delete(c.data, key)
	}

	return nil
}

func (c *MemoryRedisClient) Set(ctx context.Context, key, value string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data[key] = value
	return nil
}

func (c *MemoryRedisClient) SetObj(ctx context.Context, key string, obj any, ttl time.Duration) error {
	b, err := json.Marshal(obj)
	if err != nil {
		return err
	}

	return c.Set(ctx, key, string(b))
}

func (c *MemoryRedisClient) Get(ctx context.Context, key string) (string, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	v, ok := c.data[key]
	if !ok {
		return "", xredis.ErrNotFound
	}

	return v, nil
}

func (c *MemoryRedisClient) GetObj(ctx context.Context, key string, v any) error {
	s, err := c.Get(ctx, key)
	if err != nil {
		return err
	}

	return json.Unmarshal([]byte(s), v)
}
