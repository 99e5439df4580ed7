package storage

import (
	"context"
	"strings"
	"sync"
)

// Memory is an in-process Backend used by tests and local development. It
// honors the same contract as a real backend: Store is idempotent and
// Probe answers from previously stored keys.
type Memory struct {
	baseURL string

	mu         sync.Mutex
	objects    map[string][]byte
	storeCalls int
	probeCalls int
}

// NewMemory creates a Memory backend whose URLs are rooted at baseURL.
func NewMemory(baseURL string) *Memory {
	if baseURL == "" {
		baseURL = "https://cdn.invalid"
	}
	return &Memory{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		objects: make(map[string][]byte),
	}
}

func (m *Memory) Probe(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.probeCalls++
	if _, ok := m.objects[key]; ok {
		return m.url(key), true, nil
	}
	return "", false, nil
}

func (m *Memory) Store(_ context.Context, key string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.storeCalls++
	m.objects[key] = append([]byte(nil), data...)
	return m.url(key), nil
}

func (m *Memory) url(key string) string {
	return m.baseURL + "/" + key
}

// StoreCalls reports how many times Store ran, for dedup assertions.
func (m *Memory) StoreCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.storeCalls
}

// ProbeCalls reports how many times Probe ran.
func (m *Memory) ProbeCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.probeCalls
}

// Len reports how many distinct keys are stored.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
