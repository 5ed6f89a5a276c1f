package treestore

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

// Пакет treestore — адаптер к общему документному хранилищу, адресуемому
// путями вида "institutes/1/equipmentRequests/{id}". Хранилище считается
// удалённым и eventually-consistent: никакого compare-and-swap на этом
// уровне нет, только get/set/update/push/subscribe.

var ErrNodeNotFound = errors.New("узел не найден в хранилище")

// Event — уведомление подписчику об изменении узла.
type Event struct {
	Path string
	Data json.RawMessage
}

type Callback func(event Event)

// Unsubscribe снимает подписку; повторный вызов безопасен.
type Unsubscribe func()

type Store interface {
	// Get читает узел по точному пути и десериализует его в dest.
	// Возвращает ErrNodeNotFound, если узла нет.
	Get(ctx context.Context, path string, dest interface{}) error

	// Set полностью заменяет узел.
	Set(ctx context.Context, path string, value interface{}) error

	// Update сливает переданные поля в существующий узел (shallow merge).
	Update(ctx context.Context, path string, fields map[string]interface{}) error

	// Push генерирует идентификатор нового дочернего узла под path.
	// Сам узел не создаётся до последующего Set.
	Push(ctx context.Context, path string) (string, error)

	// Children возвращает все узлы-потомки path, ключ — путь относительно
	// path ("{id}" или "{userId}/{id}" для вложенных коллекций).
	Children(ctx context.Context, path string) (map[string]json.RawMessage, error)

	// Subscribe вызывает fn для каждого изменения под path (включая сам path).
	Subscribe(ctx context.Context, path string, fn Callback) (Unsubscribe, error)
}

// JoinPath склеивает сегменты пути, отбрасывая пустые.
func JoinPath(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		s = strings.Trim(s, "/")
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "/")
}

// isUnder сообщает, лежит ли candidate в поддереве root.
func isUnder(root, candidate string) bool {
	if root == "" || root == candidate {
		return true
	}
	return strings.HasPrefix(candidate, root+"/")
}
