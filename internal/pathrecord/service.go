// Package pathrecord manages saved learning paths: creation, owner-scoped
// reads, per-module partial updates, renames and deletion.
//
// Module detail and quiz status are written one key at a time
// ("modulesDetails.<i>", "moduleQuizStatus.<i>"). Writes to different keys
// never interfere; concurrent writes to the same key are last-write-wins.
package pathrecord

import (
	"context"
	"errors"
	"strings"

	"github.com/hitensaxena/pathfinder/internal/learning"
	"github.com/hitensaxena/pathfinder/internal/logging"
	"github.com/hitensaxena/pathfinder/internal/metrics"
	"github.com/hitensaxena/pathfinder/internal/store"
)

// Collection holds one document per saved path.
const Collection = "learningPaths"

// Operation names used in PersistenceError and metrics.
const (
	OpCreate           = "create path"
	OpList             = "list paths"
	OpGet              = "get path"
	OpUpdateDetail     = "update module detail"
	OpUpdateQuizStatus = "update module quiz status"
	OpRename           = "rename goal"
	OpDelete           = "delete path"
)

// Service is the path record lifecycle over a document store.
type Service struct {
	docs    store.DocumentStore
	log     *logging.Logger
	metrics *metrics.Metrics
}

// NewService creates a Service. log and m may be nil.
func NewService(docs store.DocumentStore, log *logging.Logger, m *metrics.Metrics) *Service {
	return &Service{docs: docs, log: logging.OrNop(log), metrics: m}
}

type createDoc struct {
	OwnerID          string                           `json:"ownerId"`
	LearningGoal     string                           `json:"learningGoal"`
	Modules          []learning.Module                `json:"modules"`
	ModulesDetails   map[string]learning.ModuleDetail `json:"modulesDetails"`
	ModuleQuizStatus map[string]learning.QuizStatus   `json:"moduleQuizStatus"`
}

// Create stores a new path and returns its id. initialDetails may be partial
// or empty; its keys must be indexes of modules.
func (s *Service) Create(ctx context.Context, ownerID string, modules []learning.Module, goal string, initialDetails map[string]learning.ModuleDetail) (string, error) {
	if err := requireOwner(ownerID); err != nil {
		return "", err
	}
	if len(modules) == 0 {
		return "", learning.Invalid("modules", "must not be empty")
	}
	goal = strings.TrimSpace(goal)
	if goal == "" {
		return "", learning.Invalid("learningGoal", "must not be empty")
	}
	details := make(map[string]learning.ModuleDetail, len(initialDetails))
	for key, d := range initialDetails {
		idx, ok := parseIndex(key)
		if !ok || idx >= len(modules) {
			return "", learning.Invalid("modulesDetails", "key %q is not a module index", key)
		}
		if len(d.Sections) == 0 {
			return "", learning.Invalid("modulesDetails", "detail for module %d has no sections", idx)
		}
		details[key] = d
	}

	fields, err := store.EncodeFields(createDoc{
		OwnerID:          ownerID,
		LearningGoal:     goal,
		Modules:          modules,
		ModulesDetails:   details,
		ModuleQuizStatus: map[string]learning.QuizStatus{},
	})
	if err != nil {
		return "", err
	}
	fields["createdAt"] = store.ServerTimestamp

	id, err := s.docs.Create(ctx, Collection, fields)
	s.metrics.StoreOp(OpCreate, err)
	if err != nil {
		return "", persistenceError(OpCreate, "", -1, err)
	}

	s.log.Info("path created", "path", id, "owner", ownerID, "modules", len(modules), "details", len(details))
	return id, nil
}

// ListByOwner returns the owner's paths, newest first, normalized.
func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]learning.PathRecord, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}

	docs, err := s.docs.Query(ctx, Collection, store.Query{
		Filters: []store.Filter{{Path: "ownerId", Value: ownerID}},
		OrderBy: "createdAt",
		Desc:    true,
	})
	s.metrics.StoreOp(OpList, err)
	if err != nil {
		return nil, persistenceError(OpList, "", -1, err)
	}

	out := make([]learning.PathRecord, 0, len(docs))
	for _, d := range docs {
		rec, err := decodeRecord(d)
		if err != nil {
			return nil, persistenceError(OpList, d.ID, -1, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// Get returns one of the owner's paths, normalized. A path owned by someone
// else is reported as not found.
func (s *Service) Get(ctx context.Context, ownerID, pathID string) (*learning.PathRecord, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	if err := requirePathID(pathID); err != nil {
		return nil, err
	}
	return s.load(ctx, OpGet, ownerID, pathID)
}

// UpdateModuleDetail sets the detail of one module, leaving every other
// module's detail and every other field untouched.
func (s *Service) UpdateModuleDetail(ctx context.Context, ownerID, pathID string, moduleIndex int, detail learning.ModuleDetail) error {
	if err := requireTarget(ownerID, pathID, moduleIndex); err != nil {
		return err
	}
	if len(detail.Sections) == 0 {
		return learning.Invalid("detail", "sections must not be empty")
	}

	value, err := store.EncodeFields(learning.ModuleDetail{Sections: detail.Sections})
	if err != nil {
		return err
	}
	return s.updateModuleKey(ctx, OpUpdateDetail, ownerID, pathID, moduleIndex, "modulesDetails", value)
}

// UpdateModuleQuizStatus records the latest quiz outcome of one module,
// independent of its detail.
func (s *Service) UpdateModuleQuizStatus(ctx context.Context, ownerID, pathID string, moduleIndex int, score float64, passed bool) error {
	if err := requireTarget(ownerID, pathID, moduleIndex); err != nil {
		return err
	}
	if score < 0 || score > 100 {
		return learning.Invalid("score", "must be within [0,100], got %v", score)
	}

	value, err := store.EncodeFields(learning.QuizStatus{LastScore: score, Passed: passed})
	if err != nil {
		return err
	}
	return s.updateModuleKey(ctx, OpUpdateQuizStatus, ownerID, pathID, moduleIndex, "moduleQuizStatus", value)
}

// RenameGoal replaces the path's learning goal.
func (s *Service) RenameGoal(ctx context.Context, ownerID, pathID, newGoal string) error {
	if err := requireOwner(ownerID); err != nil {
		return err
	}
	if err := requirePathID(pathID); err != nil {
		return err
	}
	newGoal = strings.TrimSpace(newGoal)
	if newGoal == "" {
		return learning.Invalid("learningGoal", "must not be empty")
	}

	if _, err := s.load(ctx, OpRename, ownerID, pathID); err != nil {
		return err
	}
	err := s.docs.Update(ctx, Collection, pathID, []store.FieldUpdate{{Path: "learningGoal", Value: newGoal}})
	s.metrics.StoreOp(OpRename, err)
	if err != nil {
		return s.writeError(OpRename, pathID, -1, err)
	}
	return nil
}

// Delete removes the path. It cannot be undone.
func (s *Service) Delete(ctx context.Context, ownerID, pathID string) error {
	if err := requireOwner(ownerID); err != nil {
		return err
	}
	if err := requirePathID(pathID); err != nil {
		return err
	}

	if _, err := s.load(ctx, OpDelete, ownerID, pathID); err != nil {
		return err
	}
	err := s.docs.Delete(ctx, Collection, pathID)
	s.metrics.StoreOp(OpDelete, err)
	if err != nil {
		return s.writeError(OpDelete, pathID, -1, err)
	}

	s.log.Info("path deleted", "path", pathID, "owner", ownerID)
	return nil
}

func (s *Service) updateModuleKey(ctx context.Context, op, ownerID, pathID string, moduleIndex int, field string, value any) error {
	rec, err := s.load(ctx, op, ownerID, pathID)
	if err != nil {
		return err
	}
	if moduleIndex >= len(rec.Modules) {
		return &learning.NotFoundError{Kind: "module", ID: learning.IndexKey(moduleIndex)}
	}

	err = s.docs.Update(ctx, Collection, pathID, []store.FieldUpdate{{
		Path:  field + "." + learning.IndexKey(moduleIndex),
		Value: value,
	}})
	s.metrics.StoreOp(op, err)
	if err != nil {
		return s.writeError(op, pathID, moduleIndex, err)
	}
	return nil
}

// load reads the path and checks ownership.
func (s *Service) load(ctx context.Context, op, ownerID, pathID string) (*learning.PathRecord, error) {
	doc, err := s.docs.Get(ctx, Collection, pathID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &learning.NotFoundError{Kind: "path", ID: pathID}
	}
	if err != nil {
		s.metrics.StoreOp(op, err)
		return nil, persistenceError(op, pathID, -1, err)
	}

	rec, err := decodeRecord(*doc)
	if err != nil {
		return nil, persistenceError(op, pathID, -1, err)
	}
	if rec.OwnerID != ownerID {
		return nil, &learning.NotFoundError{Kind: "path", ID: pathID}
	}
	return &rec, nil
}

// writeError maps a write failure. A document deleted between the owner
// check and the write is reported as not found.
func (s *Service) writeError(op, pathID string, moduleIndex int, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return &learning.NotFoundError{Kind: "path", ID: pathID}
	}
	s.log.Error("path store write failed", "op", op, "path", pathID, "module", moduleIndex, "error", err)
	return persistenceError(op, pathID, moduleIndex, err)
}

func persistenceError(op, pathID string, moduleIndex int, err error) *learning.PersistenceError {
	return &learning.PersistenceError{Op: op, PathID: pathID, ModuleIndex: moduleIndex, Err: err}
}

func requireOwner(ownerID string) error {
	if strings.TrimSpace(ownerID) == "" {
		return learning.Invalid("ownerId", "must not be empty")
	}
	return nil
}

func requirePathID(pathID string) error {
	if strings.TrimSpace(pathID) == "" {
		return learning.Invalid("pathId", "must not be empty")
	}
	return nil
}

func requireTarget(ownerID, pathID string, moduleIndex int) error {
	if err := requireOwner(ownerID); err != nil {
		return err
	}
	if err := requirePathID(pathID); err != nil {
		return err
	}
	if moduleIndex < 0 {
		return learning.Invalid("moduleIndex", "must not be negative, got %d", moduleIndex)
	}
	return nil
}
