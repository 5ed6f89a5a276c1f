package treestore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testDoc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestMemoryStore_SetGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "institutes/1/equipmentRequests/a", testDoc{Name: "стулья", Count: 4}))

	var got testDoc
	require.NoError(t, store.Get(ctx, "institutes/1/equipmentRequests/a", &got))
	assert.Equal(t, testDoc{Name: "стулья", Count: 4}, got)

	err := store.Get(ctx, "institutes/1/equipmentRequests/missing", &got)
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestMemoryStore_Update(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "n", testDoc{Name: "было", Count: 1}))
	require.NoError(t, store.Update(ctx, "n", map[string]interface{}{"count": 2}))

	var got testDoc
	require.NoError(t, store.Get(ctx, "n", &got))
	// Update сливает поля, не затирая остальные.
	assert.Equal(t, "было", got.Name)
	assert.Equal(t, 2, got.Count)

	err := store.Update(ctx, "missing", map[string]interface{}{"count": 1})
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestMemoryStore_PushUnique(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	first, err := store.Push(ctx, "institutes/1/equipmentRequests")
	require.NoError(t, err)
	second, err := store.Push(ctx, "institutes/1/equipmentRequests")
	require.NoError(t, err)

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}

func TestMemoryStore_Children(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "institutes/1/documentRequests/42/a", testDoc{Name: "справка"}))
	require.NoError(t, store.Set(ctx, "institutes/1/documentRequests/42/b", testDoc{Name: "выписка"}))
	require.NoError(t, store.Set(ctx, "institutes/2/documentRequests/42/c", testDoc{Name: "чужой институт"}))

	children, err := store.Children(ctx, "institutes/1/documentRequests")
	require.NoError(t, err)

	// Вложенные узлы возвращаются с относительным путём "{userId}/{id}".
	require.Len(t, children, 2)
	assert.Contains(t, children, "42/a")
	assert.Contains(t, children, "42/b")
}

func TestMemoryStore_Subscribe(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var events []Event
	unsubscribe, err := store.Subscribe(ctx, "institutes/1", func(e Event) {
		events = append(events, e)
	})
	require.NoError(t, err)

	require.NoError(t, store.Set(ctx, "institutes/1/equipmentRequests/a", testDoc{Name: "x"}))
	require.NoError(t, store.Set(ctx, "institutes/2/equipmentRequests/b", testDoc{Name: "y"}))

	// Приходят только события из поддерева подписки.
	require.Len(t, events, 1)
	assert.Equal(t, "institutes/1/equipmentRequests/a", events[0].Path)

	unsubscribe()
	require.NoError(t, store.Set(ctx, "institutes/1/equipmentRequests/c", testDoc{Name: "z"}))
	assert.Len(t, events, 1, "после отписки события не доставляются")

	// Повторная отписка безопасна.
	unsubscribe()
}

func TestJoinPath(t *testing.T) {
	assert.Equal(t, "a/b/c", JoinPath("a", "b", "c"))
	assert.Equal(t, "a/b", JoinPath("a/", "/b"))
	assert.Equal(t, "a/b", JoinPath("a", "", "b"))
}
