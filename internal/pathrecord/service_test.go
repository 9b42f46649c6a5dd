package pathrecord

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hitensaxena/pathfinder/internal/learning"
	"github.com/hitensaxena/pathfinder/internal/metrics"
	"github.com/hitensaxena/pathfinder/internal/store"
)

func openTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.OpenSQLite(filepath.Join(t.TempDir(), "paths.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestService(t *testing.T) (*Service, *store.SQLiteStore) {
	t.Helper()
	docs := openTestStore(t)
	return NewService(docs, nil, metrics.New()), docs
}

func testModules(titles ...string) []learning.Module {
	mods := make([]learning.Module, len(titles))
	for i, title := range titles {
		mods[i] = learning.Module{
			Title:              title,
			Description:        "About " + title,
			SuggestedResources: "Videos",
			EstimatedTime:      "2 hours",
		}
	}
	return mods
}

func testDetail(title string, n int) learning.ModuleDetail {
	d := learning.ModuleDetail{}
	for range n {
		d.Sections = append(d.Sections, learning.ModuleSection{
			SectionTitle:                 title,
			SectionContent:               "Body of " + title,
			RecommendedYoutubeVideoQuery: title + " explained",
		})
	}
	return d
}

// rawDetail returns the stored JSON of one modulesDetails key.
func rawDetail(t *testing.T, docs store.DocumentStore, id, key string) string {
	t.Helper()
	doc, err := docs.Get(context.Background(), Collection, id)
	require.NoError(t, err)
	details, _ := doc.Fields["modulesDetails"].(map[string]any)
	raw, err := json.Marshal(details[key])
	require.NoError(t, err)
	return string(raw)
}

func TestCreate_RoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	mods := testModules("Intro", "Advanced", "Expert")

	id, err := svc.Create(ctx, "owner-1", mods, "  Learn Go  ", map[string]learning.ModuleDetail{
		"0": testDetail("Intro", 3),
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	paths, err := svc.ListByOwner(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, paths, 1)

	rec := paths[0]
	assert.Equal(t, id, rec.ID)
	assert.Equal(t, "owner-1", rec.OwnerID)
	assert.Equal(t, "Learn Go", rec.LearningGoal)
	assert.Equal(t, mods, rec.Modules)
	assert.Len(t, rec.ModulesDetails, 1)
	assert.Len(t, rec.ModulesDetails["0"].Sections, 3)
	assert.Empty(t, rec.ModuleQuizStatus)
	assert.False(t, rec.CreatedAt.IsZero())
}

func TestCreate_Validation(t *testing.T) {
	svc, docs := newTestService(t)
	ctx := context.Background()
	mods := testModules("Intro")

	tests := []struct {
		name    string
		owner   string
		modules []learning.Module
		goal    string
		details map[string]learning.ModuleDetail
		field   string
	}{
		{"empty owner", "", mods, "goal", nil, "ownerId"},
		{"no modules", "o", nil, "goal", nil, "modules"},
		{"blank goal", "o", mods, "   ", nil, "learningGoal"},
		{"detail key out of range", "o", mods, "goal", map[string]learning.ModuleDetail{"1": testDetail("x", 1)}, "modulesDetails"},
		{"detail key not an index", "o", mods, "goal", map[string]learning.ModuleDetail{"01": testDetail("x", 1)}, "modulesDetails"},
		{"empty detail", "o", mods, "goal", map[string]learning.ModuleDetail{"0": {}}, "modulesDetails"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.owner, tt.modules, tt.goal, tt.details)
			var ve *learning.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}

	all, err := docs.Query(ctx, Collection, store.Query{})
	require.NoError(t, err)
	assert.Empty(t, all, "failed creates must not write")
}

func TestListByOwner_NewestFirstAndScoped(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, "alice", testModules("a"), "First", nil)
	require.NoError(t, err)
	second, err := svc.Create(ctx, "alice", testModules("b"), "Second", nil)
	require.NoError(t, err)
	_, err = svc.Create(ctx, "bob", testModules("c"), "Bob's", nil)
	require.NoError(t, err)

	paths, err := svc.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, second, paths[0].ID)
	assert.Equal(t, first, paths[1].ID)

	none, err := svc.ListByOwner(ctx, "carol")
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = svc.ListByOwner(ctx, "")
	assert.True(t, learning.IsValidation(err))
}

func TestListByOwner_NormalizesLegacyRecords(t *testing.T) {
	svc, docs := newTestService(t)
	ctx := context.Background()

	legacyID, err := docs.Create(ctx, Collection, map[string]any{
		"ownerId": "alice",
		"modules": []any{
			map[string]any{"title": "Basics", "description": "d", "suggestedResources": "r", "estimatedTime": "1h"},
		},
		"modulesDetails": map[string]any{
			"0": map[string]any{"content": "# Basics\nOld markdown."},
		},
		"createdAt": store.ServerTimestamp,
	})
	require.NoError(t, err)

	bareID, err := docs.Create(ctx, Collection, map[string]any{
		"ownerId":   "alice",
		"modules":   []any{map[string]any{"title": "x"}},
		"createdAt": store.ServerTimestamp,
	})
	require.NoError(t, err)

	paths, err := svc.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, paths, 2)

	bare, legacy := paths[0], paths[1]
	assert.Equal(t, bareID, bare.ID)
	assert.Equal(t, UntitledGoal, bare.LearningGoal)
	assert.NotNil(t, bare.ModulesDetails)
	assert.Empty(t, bare.ModulesDetails)
	assert.NotNil(t, bare.ModuleQuizStatus)

	assert.Equal(t, legacyID, legacy.ID)
	d := legacy.ModulesDetails["0"]
	require.Len(t, d.Sections, 1)
	assert.Equal(t, "Basics", d.Sections[0].SectionTitle)
	assert.Equal(t, "# Basics\nOld markdown.", d.Sections[0].SectionContent)
	assert.False(t, d.IsLegacy())

	// Read-time only: the stored document keeps its legacy shape.
	assert.JSONEq(t, `{"content":"# Basics\nOld markdown."}`, rawDetail(t, docs, legacyID, "0"))
}

func TestGet_OwnerScoped(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	id, err := svc.Create(ctx, "alice", testModules("a"), "goal", nil)
	require.NoError(t, err)

	rec, err := svc.Get(ctx, "alice", id)
	require.NoError(t, err)
	assert.Equal(t, "goal", rec.LearningGoal)

	_, err = svc.Get(ctx, "bob", id)
	assert.True(t, learning.IsNotFound(err), "other owners must not see the path")

	_, err = svc.Get(ctx, "alice", "missing")
	assert.True(t, learning.IsNotFound(err))

	_, err = svc.Get(ctx, "alice", "")
	assert.True(t, learning.IsValidation(err))
}

func TestUpdateModuleDetail_IsolatesSiblings(t *testing.T) {
	svc, docs := newTestService(t)
	ctx := context.Background()

	id, err := svc.Create(ctx, "alice", testModules("Intro", "Middle", "Advanced"), "goal", map[string]learning.ModuleDetail{
		"0": testDetail("Intro", 3),
		"1": testDetail("Middle", 2),
	})
	require.NoError(t, err)
	require.NoError(t, svc.UpdateModuleQuizStatus(ctx, "alice", id, 0, 90, true))

	before0 := rawDetail(t, docs, id, "0")
	before1 := rawDetail(t, docs, id, "1")

	require.NoError(t, svc.UpdateModuleDetail(ctx, "alice", id, 2, testDetail("Advanced", 4)))

	assert.Equal(t, before0, rawDetail(t, docs, id, "0"))
	assert.Equal(t, before1, rawDetail(t, docs, id, "1"))

	rec, err := svc.Get(ctx, "alice", id)
	require.NoError(t, err)
	assert.Len(t, rec.ModulesDetails["2"].Sections, 4)
	assert.Equal(t, "goal", rec.LearningGoal)
	assert.Equal(t, learning.QuizStatus{LastScore: 90, Passed: true}, rec.ModuleQuizStatus["0"])
}

func TestUpdateModuleDetail_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	id, err := svc.Create(ctx, "alice", testModules("a", "b"), "goal", nil)
	require.NoError(t, err)

	assert.True(t, learning.IsValidation(svc.UpdateModuleDetail(ctx, "alice", "", 0, testDetail("x", 1))))
	assert.True(t, learning.IsValidation(svc.UpdateModuleDetail(ctx, "alice", id, -1, testDetail("x", 1))))
	assert.True(t, learning.IsValidation(svc.UpdateModuleDetail(ctx, "alice", id, 0, learning.ModuleDetail{})))
	assert.True(t, learning.IsNotFound(svc.UpdateModuleDetail(ctx, "alice", id, 2, testDetail("x", 1))))
	assert.True(t, learning.IsNotFound(svc.UpdateModuleDetail(ctx, "bob", id, 0, testDetail("x", 1))))
}

func TestUpdateModuleQuizStatus(t *testing.T) {
	svc, docs := newTestService(t)
	ctx := context.Background()
	id, err := svc.Create(ctx, "alice", testModules("a", "b"), "goal", map[string]learning.ModuleDetail{
		"1": testDetail("b", 2),
	})
	require.NoError(t, err)
	beforeDetail := rawDetail(t, docs, id, "1")

	require.NoError(t, svc.UpdateModuleQuizStatus(ctx, "alice", id, 1, 70, false))
	require.NoError(t, svc.UpdateModuleQuizStatus(ctx, "alice", id, 1, 80, true))

	rec, err := svc.Get(ctx, "alice", id)
	require.NoError(t, err)
	assert.Equal(t, learning.QuizStatus{LastScore: 80, Passed: true}, rec.ModuleQuizStatus["1"])
	assert.Equal(t, beforeDetail, rawDetail(t, docs, id, "1"))

	assert.True(t, learning.IsValidation(svc.UpdateModuleQuizStatus(ctx, "alice", id, 0, 101, true)))
	assert.True(t, learning.IsValidation(svc.UpdateModuleQuizStatus(ctx, "alice", id, 0, -5, false)))
}

func TestUpdates_NullMapsInStoredRecord(t *testing.T) {
	svc, docs := newTestService(t)
	ctx := context.Background()

	id, err := docs.Create(ctx, Collection, map[string]any{
		"ownerId":          "alice",
		"learningGoal":     "goal",
		"modules":          []any{map[string]any{"title": "a"}},
		"modulesDetails":   nil,
		"moduleQuizStatus": nil,
		"createdAt":        store.ServerTimestamp,
	})
	require.NoError(t, err)

	require.NoError(t, svc.UpdateModuleDetail(ctx, "alice", id, 0, testDetail("a", 2)))
	require.NoError(t, svc.UpdateModuleQuizStatus(ctx, "alice", id, 0, 80, true))

	rec, err := svc.Get(ctx, "alice", id)
	require.NoError(t, err)
	assert.Len(t, rec.ModulesDetails, 1)
	assert.Len(t, rec.ModulesDetails["0"].Sections, 2)
	assert.Equal(t, map[string]learning.QuizStatus{"0": {LastScore: 80, Passed: true}}, rec.ModuleQuizStatus)
}

func TestConcurrentUpdates_DifferentKeysDoNotInterfere(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	titles := []string{"a", "b", "c", "d", "e", "f"}
	id, err := svc.Create(ctx, "alice", testModules(titles...), "goal", nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, len(titles)*2)
	for i, title := range titles {
		wg.Add(2)
		go func() {
			defer wg.Done()
			errs[2*i] = svc.UpdateModuleDetail(ctx, "alice", id, i, testDetail(title, 1))
		}()
		go func() {
			defer wg.Done()
			errs[2*i+1] = svc.UpdateModuleQuizStatus(ctx, "alice", id, i, float64(10*i), i%2 == 0)
		}()
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	rec, err := svc.Get(ctx, "alice", id)
	require.NoError(t, err)
	require.Len(t, rec.ModulesDetails, len(titles))
	require.Len(t, rec.ModuleQuizStatus, len(titles))
	for i, title := range titles {
		assert.Equal(t, title, rec.ModulesDetails[learning.IndexKey(i)].Sections[0].SectionTitle)
		assert.Equal(t, float64(10*i), rec.ModuleQuizStatus[learning.IndexKey(i)].LastScore)
	}
}

func TestRenameGoal(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	id, err := svc.Create(ctx, "alice", testModules("a"), "Old", map[string]learning.ModuleDetail{"0": testDetail("a", 1)})
	require.NoError(t, err)

	require.NoError(t, svc.RenameGoal(ctx, "alice", id, "  New goal "))
	rec, err := svc.Get(ctx, "alice", id)
	require.NoError(t, err)
	assert.Equal(t, "New goal", rec.LearningGoal)
	assert.Len(t, rec.ModulesDetails, 1)

	assert.True(t, learning.IsNotFound(svc.RenameGoal(ctx, "bob", id, "Hijack")))
}

func TestRenameGoal_BlankFailsBeforeStore(t *testing.T) {
	docs := &failingStore{err: errors.New("must not be called")}
	svc := NewService(docs, nil, nil)

	err := svc.RenameGoal(context.Background(), "alice", "path-1", "   ")
	assert.True(t, learning.IsValidation(err))
	assert.Zero(t, docs.calls)
}

func TestDelete(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	keep, err := svc.Create(ctx, "alice", testModules("a"), "keep", nil)
	require.NoError(t, err)
	drop, err := svc.Create(ctx, "alice", testModules("b"), "drop", nil)
	require.NoError(t, err)

	assert.True(t, learning.IsNotFound(svc.Delete(ctx, "bob", drop)))
	require.NoError(t, svc.Delete(ctx, "alice", drop))

	paths, err := svc.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, keep, paths[0].ID)

	assert.True(t, learning.IsNotFound(svc.Delete(ctx, "alice", drop)))
	assert.True(t, learning.IsValidation(svc.Delete(ctx, "alice", "")))
}

type failingStore struct {
	err   error
	calls int
}

func (f *failingStore) Create(context.Context, string, map[string]any) (string, error) {
	f.calls++
	return "", f.err
}

func (f *failingStore) Get(context.Context, string, string) (*store.Document, error) {
	f.calls++
	return nil, f.err
}

func (f *failingStore) Query(context.Context, string, store.Query) ([]store.Document, error) {
	f.calls++
	return nil, f.err
}

func (f *failingStore) Update(context.Context, string, string, []store.FieldUpdate) error {
	f.calls++
	return f.err
}

func (f *failingStore) Delete(context.Context, string, string) error {
	f.calls++
	return f.err
}

func (f *failingStore) Close() error { return nil }

func TestStoreErrorsAreWrapped(t *testing.T) {
	cause := errors.New("deadline exceeded talking to backend")
	svc := NewService(&failingStore{err: cause}, nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, "alice", testModules("a"), "goal", nil)
	var pe *learning.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, OpCreate, pe.Op)
	assert.ErrorIs(t, err, cause)

	_, err = svc.ListByOwner(ctx, "alice")
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, OpList, pe.Op)

	err = svc.UpdateModuleDetail(ctx, "alice", "p1", 3, testDetail("x", 1))
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, OpUpdateDetail, pe.Op)
	assert.Equal(t, "p1", pe.PathID)
	assert.ErrorIs(t, err, cause)
}
