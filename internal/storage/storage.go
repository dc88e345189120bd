package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
)

// ObjectStore keeps uploaded files and knows their public address.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// PublicURL renders key against pattern. A pattern with a %s verb receives
// the key there, any other pattern is treated as a base URL.
func PublicURL(pattern, key string) string {
	if key == "" {
		return ""
	}
	if strings.Contains(pattern, "%s") {
		return CleanURL(fmt.Sprintf(pattern, key))
	}
	return CleanURL(strings.TrimRight(pattern, "/") + "/" + strings.TrimLeft(key, "/"))
}

func CleanURL(urlStr string) string {
	urlStr = strings.ReplaceAll(urlStr, " ", "%20")
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return urlStr
	}

	return parsedURL.String()
}

// Object is a file held by Memory.
type Object struct {
	Body        []byte
	ContentType string
}

// Memory is an ObjectStore kept in process memory, used for local runs
// without a bucket and in tests.
type Memory struct {
	pattern string

	mu      sync.Mutex
	objects map[string]Object
}

func NewMemory(pattern string) *Memory {
	return &Memory{pattern: pattern, objects: make(map[string]Object)}
}

func (m *Memory) Put(_ context.Context, key string, body []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = Object{Body: append([]byte(nil), body...), ContentType: contentType}
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *Memory) URL(key string) string {
	return PublicURL(m.pattern, key)
}

// Get returns a stored object.
func (m *Memory) Get(key string) (Object, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[key]
	return obj, ok
}

// Keys lists stored keys in no particular order.
func (m *Memory) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	return keys
}
