package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// steppingClock returns a clock that advances one second per call.
func steppingClock(start time.Time) func() time.Time {
	n := 0
	return func() time.Time {
		n++
		return start.Add(time.Duration(n) * time.Second)
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestCreateGet(t *testing.T) {
	s := openTestStore(t)
	s.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	id, err := s.Create(ctx, "things", map[string]any{
		"name":      "widget",
		"tags":      []any{"a", "b"},
		"createdAt": ServerTimestamp,
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	doc, err := s.Get(ctx, "things", id)
	require.NoError(t, err)
	assert.Equal(t, id, doc.ID)
	assert.Equal(t, "widget", doc.Fields["name"])
	assert.Equal(t, []any{"a", "b"}, doc.Fields["tags"])
	assert.Equal(t, "2025-03-01T12:00:00.000000000Z", doc.Fields["createdAt"])

	_, err = s.Get(ctx, "other", id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdate_NestedKeyLeavesSiblingsUntouched(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.Create(ctx, "paths", map[string]any{
		"title": "Go",
		"details": map[string]any{
			"0": map[string]any{"text": "zero"},
			"1": map[string]any{"text": "one"},
		},
	})
	require.NoError(t, err)

	err = s.Update(ctx, "paths", id, []FieldUpdate{
		{Path: "details.2", Value: map[string]any{"text": "two"}},
	})
	require.NoError(t, err)

	doc, err := s.Get(ctx, "paths", id)
	require.NoError(t, err)
	details := doc.Fields["details"].(map[string]any)
	assert.Equal(t, map[string]any{"text": "zero"}, details["0"])
	assert.Equal(t, map[string]any{"text": "one"}, details["1"])
	assert.Equal(t, map[string]any{"text": "two"}, details["2"])
	assert.Equal(t, "Go", doc.Fields["title"])

	// Overwrite an existing key.
	err = s.Update(ctx, "paths", id, []FieldUpdate{
		{Path: "details.0", Value: map[string]any{"text": "zero again"}},
		{Path: "title", Value: "Go 2"},
	})
	require.NoError(t, err)

	doc, err = s.Get(ctx, "paths", id)
	require.NoError(t, err)
	details = doc.Fields["details"].(map[string]any)
	assert.Equal(t, map[string]any{"text": "zero again"}, details["0"])
	assert.Equal(t, map[string]any{"text": "one"}, details["1"])
	assert.Equal(t, "Go 2", doc.Fields["title"])
}

func TestUpdate_CreatesMissingParent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.Create(ctx, "paths", map[string]any{"title": "Go"})
	require.NoError(t, err)

	require.NoError(t, s.Update(ctx, "paths", id, []FieldUpdate{
		{Path: "status.3", Value: map[string]any{"passed": true}},
	}))

	doc, err := s.Get(ctx, "paths", id)
	require.NoError(t, err)
	status := doc.Fields["status"].(map[string]any)
	assert.Equal(t, map[string]any{"passed": true}, status["3"])
}

func TestUpdate_ReplacesNullParent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.Create(ctx, "paths", map[string]any{
		"title":          "Go",
		"modulesDetails": nil,
		"quiz":           map[string]any{"0": "not an object"},
	})
	require.NoError(t, err)

	require.NoError(t, s.Update(ctx, "paths", id, []FieldUpdate{
		{Path: "modulesDetails.0", Value: map[string]any{"text": "zero"}},
		{Path: "quiz.0.score", Value: 80},
	}))

	doc, err := s.Get(ctx, "paths", id)
	require.NoError(t, err)
	details, ok := doc.Fields["modulesDetails"].(map[string]any)
	require.True(t, ok, "modulesDetails = %#v", doc.Fields["modulesDetails"])
	assert.Equal(t, map[string]any{"text": "zero"}, details["0"])

	quiz := doc.Fields["quiz"].(map[string]any)
	assert.Equal(t, map[string]any{"score": float64(80)}, quiz["0"])
	assert.Equal(t, "Go", doc.Fields["title"])
}

func TestParentPaths(t *testing.T) {
	assert.Empty(t, parentPaths("title"))
	assert.Equal(t, []string{"a"}, parentPaths("a.b"))
	assert.Equal(t, []string{"a", "a.b"}, parentPaths("a.b.c"))
}

func TestUpdateDelete_Missing(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.Update(ctx, "paths", "nope", []FieldUpdate{{Path: "title", Value: "x"}})
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.Delete(ctx, "paths", "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.Create(ctx, "paths", map[string]any{"title": "Go"})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, "paths", id))

	_, err = s.Get(ctx, "paths", id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "paths", id), ErrNotFound)
}

func TestQuery_FilterAndOrder(t *testing.T) {
	s := openTestStore(t)
	s.now = steppingClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	for _, f := range []map[string]any{
		{"owner": "alice", "n": 1},
		{"owner": "bob", "n": 2},
		{"owner": "alice", "n": 3},
		{"owner": "alice", "n": 4},
	} {
		f["createdAt"] = ServerTimestamp
		_, err := s.Create(ctx, "paths", f)
		require.NoError(t, err)
	}

	docs, err := s.Query(ctx, "paths", Query{
		Filters: []Filter{{Path: "owner", Value: "alice"}},
		OrderBy: "createdAt",
		Desc:    true,
	})
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.EqualValues(t, 4, docs[0].Fields["n"])
	assert.EqualValues(t, 3, docs[1].Fields["n"])
	assert.EqualValues(t, 1, docs[2].Fields["n"])

	docs, err = s.Query(ctx, "paths", Query{OrderBy: "createdAt", Limit: 2})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.EqualValues(t, 1, docs[0].Fields["n"])
	assert.EqualValues(t, 2, docs[1].Fields["n"])
}

func TestInvalidFieldPath(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Query(ctx, "paths", Query{OrderBy: "createdAt; DROP TABLE documents"})
	assert.Error(t, err)

	err = s.Update(ctx, "paths", "id", []FieldUpdate{{Path: "a..b", Value: 1}})
	assert.Error(t, err)
}

func TestJSONPath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"title", `$."title"`},
		{"modulesDetails.2", `$."modulesDetails"."2"`},
	}
	for _, tt := range tests {
		if got := jsonPath(tt.in); got != tt.want {
			t.Errorf("jsonPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "mongo"})
	assert.Error(t, err)
}

func TestEventRepo(t *testing.T) {
	s := openTestStore(t)
	s.now = steppingClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	repo := NewEventRepo(s)
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "gemini", Model: "gemini-2.5-flash", Purpose: "module-quiz", InputTokens: 100, OutputTokens: 50, LatencyMs: 200, Success: true},
		{Provider: "gemini", Model: "gemini-2.5-flash", Purpose: "module-detailed-content", InputTokens: 300, OutputTokens: 900, LatencyMs: 400, Success: true},
		{Provider: "gemini", Model: "gemini-2.5-pro", Purpose: "module-detailed-content", InputTokens: 100, OutputTokens: 100, LatencyMs: 600, Success: false, ErrorMessage: "boom"},
	}
	for _, e := range events {
		require.NoError(t, repo.AppendLLMRequest(ctx, e))
	}

	got, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 2})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "gemini-2.5-pro", got[0].Model)
	assert.Equal(t, "boom", got[0].ErrorMessage)
	assert.False(t, got[0].Timestamp.IsZero())
	assert.True(t, got[0].Timestamp.After(got[1].Timestamp))

	filtered, err := repo.QueryLLMEvents(ctx, QueryOpts{Purpose: "module-quiz"})
	require.NoError(t, err)
	require.Len(t, filtered, 1)

	one, err := repo.GetLLMEvent(ctx, got[1].ID)
	require.NoError(t, err)
	require.NotNil(t, one)
	assert.Equal(t, 900, one.OutputTokens)

	missing, err := repo.GetLLMEvent(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, missing)

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	require.NoError(t, err)
	require.Len(t, byPurpose, 2)
	assert.Equal(t, PurposeUsage{
		Purpose: "module-detailed-content", Calls: 2, InputTokens: 400, OutputTokens: 1000, AvgLatencyMs: 500,
	}, byPurpose[0])

	byModel, err := repo.LLMUsageByModel(ctx)
	require.NoError(t, err)
	require.Len(t, byModel, 2)
	assert.Equal(t, "gemini-2.5-flash", byModel[0].Model)
	assert.Equal(t, 2, byModel[0].Calls)
}

func TestEventRepo_StoreFailure(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Close())

	err := NewEventRepo(s).AppendLLMRequest(context.Background(), LLMRequestEventData{Purpose: "x"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}
