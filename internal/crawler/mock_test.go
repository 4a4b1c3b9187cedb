package crawler

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/guilhermeLira011/monitor-preco-samsung-a05s/services/cache"
)

// MockCacheService implements a simple in-memory cache for testing
type MockCacheService struct {
	mu     sync.Mutex
	cache  map[string][]byte
	setErr error
}

// Ensure MockCacheService implements cache.CacheService
var _ cache.CacheService = (*MockCacheService)(nil)

func NewMockCacheService() *MockCacheService {
	return &MockCacheService{
		cache: make(map[string][]byte),
	}
}

func (m *MockCacheService) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if val, ok := m.cache[key]; ok {
		return val, nil
	}
	return nil, cache.ErrCacheMiss
}

func (m *MockCacheService) Set(key string, value []byte, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.cache[key] = value
	return nil
}

func (m *MockCacheService) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cache, key)
	return nil
}

// MockFetcher serves canned pages by URL and records every request
type MockFetcher struct {
	mu     sync.Mutex
	pages  map[string]string
	errs   map[string]error
	called []string
}

// Ensure MockFetcher implements Fetcher
var _ Fetcher = (*MockFetcher)(nil)

func NewMockFetcher() *MockFetcher {
	return &MockFetcher{
		pages: make(map[string]string),
		errs:  make(map[string]error),
	}
}

func (m *MockFetcher) Page(url, html string) *MockFetcher {
	m.pages[url] = html
	return m
}

func (m *MockFetcher) Fail(url string, err error) *MockFetcher {
	m.errs[url] = err
	return m
}

func (m *MockFetcher) Fetch(ctx context.Context, url string) (io.Reader, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.called = append(m.called, url)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := m.errs[url]; ok {
		return nil, err
	}
	if html, ok := m.pages[url]; ok {
		return strings.NewReader(html), nil
	}
	return nil, fmt.Errorf("fetch %s unexpected status code: 404", url)
}

func (m *MockFetcher) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.called...)
}

// mustDoc parses an HTML fragment for selector tests
func mustDoc(html string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		panic(err)
	}
	return doc
}

// firstMatch returns the first node matching selector in html
func firstMatch(html, selector string) *goquery.Selection {
	return mustDoc(html).Find(selector).First()
}
