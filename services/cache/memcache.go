package cache

import (
	"errors"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

const keyPrefix = "a05s-monitor:"

// MemcacheService implements CacheService using memcache. Keys are namespaced
// so several monitors can share one memcached.
type MemcacheService struct {
	client *memcache.Client
}

// NewMemcacheService creates a new memcache service
func NewMemcacheService(serverAddr string) *MemcacheService {
	client := memcache.New(serverAddr)
	client.Timeout = 500 * time.Millisecond
	return &MemcacheService{client: client}
}

// Get retrieves a value from memcache
func (m *MemcacheService) Get(key string) ([]byte, error) {
	item, err := m.client.Get(keyPrefix + key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	return item.Value, nil
}

// Set stores a value in memcache with an expiration time
func (m *MemcacheService) Set(key string, value []byte, expiration time.Duration) error {
	return m.client.Set(&memcache.Item{
		Key:        keyPrefix + key,
		Value:      value,
		Expiration: int32(expiration.Seconds()),
	})
}

// Delete removes a value from memcache; deleting a missing key is not an error
func (m *MemcacheService) Delete(key string) error {
	err := m.client.Delete(keyPrefix + key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil
	}
	return err
}

// Ping checks that the server answers
func (m *MemcacheService) Ping() error {
	return m.client.Ping()
}
