package store

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs only against the Firestore emulator.
func openFirestoreTestStore(t *testing.T) *FirestoreStore {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	s, err := OpenFirestore(context.Background(), "pathfinder-test", "")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestFirestore_UpdateNestedKey(t *testing.T) {
	s := openFirestoreTestStore(t)
	ctx := context.Background()
	coll := "paths-" + uuid.NewString()

	id, err := s.Create(ctx, coll, map[string]any{
		"owner":     "alice",
		"details":   map[string]any{"0": map[string]any{"text": "zero"}},
		"createdAt": ServerTimestamp,
	})
	require.NoError(t, err)

	require.NoError(t, s.Update(ctx, coll, id, []FieldUpdate{
		{Path: "details.1", Value: map[string]any{"text": "one"}},
	}))

	doc, err := s.Get(ctx, coll, id)
	require.NoError(t, err)
	details := doc.Fields["details"].(map[string]any)
	assert.Equal(t, map[string]any{"text": "zero"}, details["0"])
	assert.Equal(t, map[string]any{"text": "one"}, details["1"])

	docs, err := s.Query(ctx, coll, Query{
		Filters: []Filter{{Path: "owner", Value: "alice"}},
		OrderBy: "createdAt",
		Desc:    true,
	})
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	require.NoError(t, s.Delete(ctx, coll, id))
	assert.ErrorIs(t, s.Delete(ctx, coll, id), ErrNotFound)
	assert.ErrorIs(t, s.Update(ctx, coll, id, []FieldUpdate{{Path: "owner", Value: "bob"}}), ErrNotFound)
}
