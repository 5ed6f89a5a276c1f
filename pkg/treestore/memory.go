package treestore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore — встроенная реализация Store для тестов и локальной
// разработки. Семантика повторяет удалённое дерево: плоская карта
// "путь -> JSON-документ" плюс рассылка событий подписчикам.
type MemoryStore struct {
	mu          sync.RWMutex
	nodes       map[string]json.RawMessage
	subscribers map[int64]*memorySubscriber
	nextSubID   int64
}

type memorySubscriber struct {
	path string
	fn   Callback
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nodes:       make(map[string]json.RawMessage),
		subscribers: make(map[int64]*memorySubscriber),
	}
}

func (s *MemoryStore) Get(ctx context.Context, path string, dest interface{}) error {
	s.mu.RLock()
	raw, ok := s.nodes[path]
	s.mu.RUnlock()
	if !ok {
		return ErrNodeNotFound
	}
	return json.Unmarshal(raw, dest)
}

func (s *MemoryStore) Set(ctx context.Context, path string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("ошибка сериализации узла %s: %w", path, err)
	}

	s.mu.Lock()
	s.nodes[path] = raw
	subs := s.matchingSubscribers(path)
	s.mu.Unlock()

	s.notify(subs, Event{Path: path, Data: raw})
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, path string, fields map[string]interface{}) error {
	s.mu.Lock()
	raw, ok := s.nodes[path]
	if !ok {
		s.mu.Unlock()
		return ErrNodeNotFound
	}

	var node map[string]interface{}
	if err := json.Unmarshal(raw, &node); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("узел %s не является объектом: %w", path, err)
	}
	for k, v := range fields {
		node[k] = v
	}
	merged, err := json.Marshal(node)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.nodes[path] = merged
	subs := s.matchingSubscribers(path)
	s.mu.Unlock()

	s.notify(subs, Event{Path: path, Data: merged})
	return nil
}

func (s *MemoryStore) Push(ctx context.Context, path string) (string, error) {
	return uuid.NewString(), nil
}

func (s *MemoryStore) Children(ctx context.Context, path string) (map[string]json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]json.RawMessage)
	prefix := path + "/"
	for p, raw := range s.nodes {
		if strings.HasPrefix(p, prefix) {
			cp := make(json.RawMessage, len(raw))
			copy(cp, raw)
			result[strings.TrimPrefix(p, prefix)] = cp
		}
	}
	return result, nil
}

func (s *MemoryStore) Subscribe(ctx context.Context, path string, fn Callback) (Unsubscribe, error) {
	s.mu.Lock()
	s.nextSubID++
	id := s.nextSubID
	s.subscribers[id] = &memorySubscriber{path: path, fn: fn}
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
		})
	}, nil
}

func (s *MemoryStore) matchingSubscribers(path string) []*memorySubscriber {
	matched := make([]*memorySubscriber, 0)
	for _, sub := range s.subscribers {
		if isUnder(sub.path, path) {
			matched = append(matched, sub)
		}
	}
	return matched
}

func (s *MemoryStore) notify(subs []*memorySubscriber, event Event) {
	for _, sub := range subs {
		sub.fn(event)
	}
}
