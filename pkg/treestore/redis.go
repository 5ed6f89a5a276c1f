package treestore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	keyPrefix     = "tree:"
	channelPrefix = "treech:"
)

// RedisStore — реализация Store поверх Redis: документ лежит по ключу
// "tree:{path}", изменения транслируются через pub/sub. CAS здесь
// сознательно нет — слой повторяет контракт удалённого дерева.
type RedisStore struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisStore(client *redis.Client, logger *zap.Logger) *RedisStore {
	return &RedisStore{client: client, logger: logger}
}

func (s *RedisStore) Get(ctx context.Context, path string, dest interface{}) error {
	raw, err := s.client.Get(ctx, keyPrefix+path).Bytes()
	if err != nil {
		if err == redis.Nil {
			return ErrNodeNotFound
		}
		return fmt.Errorf("ошибка чтения узла %s: %w", path, err)
	}
	return json.Unmarshal(raw, dest)
}

func (s *RedisStore) Set(ctx context.Context, path string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("ошибка сериализации узла %s: %w", path, err)
	}
	if err := s.client.Set(ctx, keyPrefix+path, raw, 0).Err(); err != nil {
		return fmt.Errorf("ошибка записи узла %s: %w", path, err)
	}
	s.publish(ctx, path, raw)
	return nil
}

func (s *RedisStore) Update(ctx context.Context, path string, fields map[string]interface{}) error {
	raw, err := s.client.Get(ctx, keyPrefix+path).Bytes()
	if err != nil {
		if err == redis.Nil {
			return ErrNodeNotFound
		}
		return fmt.Errorf("ошибка чтения узла %s: %w", path, err)
	}

	var node map[string]interface{}
	if err := json.Unmarshal(raw, &node); err != nil {
		return fmt.Errorf("узел %s не является объектом: %w", path, err)
	}
	for k, v := range fields {
		node[k] = v
	}
	merged, err := json.Marshal(node)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, keyPrefix+path, merged, 0).Err(); err != nil {
		return fmt.Errorf("ошибка записи узла %s: %w", path, err)
	}
	s.publish(ctx, path, merged)
	return nil
}

func (s *RedisStore) Push(ctx context.Context, path string) (string, error) {
	return uuid.NewString(), nil
}

func (s *RedisStore) Children(ctx context.Context, path string) (map[string]json.RawMessage, error) {
	result := make(map[string]json.RawMessage)
	match := keyPrefix + path + "/*"

	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, match, 200).Result()
		if err != nil {
			return nil, fmt.Errorf("ошибка обхода поддерева %s: %w", path, err)
		}
		for _, key := range keys {
			raw, err := s.client.Get(ctx, key).Bytes()
			if err != nil {
				if err == redis.Nil {
					continue
				}
				return nil, err
			}
			rel := strings.TrimPrefix(key, keyPrefix+path+"/")
			result[rel] = raw
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return result, nil
}

func (s *RedisStore) Subscribe(ctx context.Context, path string, fn Callback) (Unsubscribe, error) {
	pubsub := s.client.PSubscribe(ctx, channelPrefix+path, channelPrefix+path+"/*")

	// Дожидаемся подтверждения подписки, иначе первые события можно потерять.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("ошибка подписки на %s: %w", path, err)
	}

	go func() {
		for msg := range pubsub.Channel() {
			fn(Event{
				Path: strings.TrimPrefix(msg.Channel, channelPrefix),
				Data: json.RawMessage(msg.Payload),
			})
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			if err := pubsub.Close(); err != nil {
				s.logger.Warn("Ошибка закрытия подписки", zap.String("path", path), zap.Error(err))
			}
		})
	}, nil
}

func (s *RedisStore) publish(ctx context.Context, path string, payload []byte) {
	if err := s.client.Publish(ctx, channelPrefix+path, payload).Err(); err != nil {
		s.logger.Warn("Не удалось опубликовать событие изменения узла",
			zap.String("path", path), zap.Error(err))
	}
}
