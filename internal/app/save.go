package app

import (
	"context"
	"strings"

	"github.com/hitensaxena/pathfinder/internal/curriculum"
	"github.com/hitensaxena/pathfinder/internal/learning"
)

// ModuleFailure describes a module whose detail could not be generated.
type ModuleFailure struct {
	Index int    `json:"index"`
	Title string `json:"title"`
	Error string `json:"error"`
}

// SaveResult is the outcome of saving a draft.
type SaveResult struct {
	PathID string          `json:"pathId"`
	Failed []ModuleFailure `json:"failed"`
}

// SaveDraft generates detail for every module of draft and saves the path
// with whatever succeeded. Failed modules have no detail key and can be
// filled in later with BackfillModule.
func (a *App) SaveDraft(ctx context.Context, ownerID string, draft curriculum.Draft, onProgress func(curriculum.Progress)) (SaveResult, error) {
	if strings.TrimSpace(ownerID) == "" {
		return SaveResult{}, learning.Invalid("ownerId", "must not be empty")
	}
	if len(draft.Modules) == 0 {
		return SaveResult{}, learning.Invalid("modules", "must not be empty")
	}
	if strings.TrimSpace(draft.Input.LearningGoal) == "" {
		return SaveResult{}, learning.Invalid("learningGoal", "must not be empty")
	}
	if err := a.LLMReady(); err != nil {
		return SaveResult{}, err
	}

	results, err := a.Orchestrator.GenerateAllModuleDetails(ctx, draft.Modules, draft.Input.LearningGoal, onProgress)
	if err != nil {
		return SaveResult{}, err
	}
	details, failedIdx := curriculum.Details(results)

	id, err := a.Paths.Create(ctx, ownerID, draft.Modules, draft.Input.LearningGoal, details)
	if err != nil {
		return SaveResult{}, err
	}

	res := SaveResult{PathID: id, Failed: []ModuleFailure{}}
	for _, i := range failedIdx {
		res.Failed = append(res.Failed, ModuleFailure{
			Index: i,
			Title: draft.Modules[i].Title,
			Error: results[i].Err.Error(),
		})
	}
	if len(res.Failed) > 0 {
		a.Log.Warn("path saved with missing module details", "path", id, "failed", len(res.Failed))
	}
	return res, nil
}

// BackfillModule generates and stores detail for one module of a saved path.
func (a *App) BackfillModule(ctx context.Context, ownerID, pathID string, index int) (learning.ModuleDetail, error) {
	if index < 0 {
		return learning.ModuleDetail{}, learning.Invalid("moduleIndex", "must not be negative, got %d", index)
	}
	rec, err := a.Paths.Get(ctx, ownerID, pathID)
	if err != nil {
		return learning.ModuleDetail{}, err
	}
	if index >= len(rec.Modules) {
		return learning.ModuleDetail{}, &learning.NotFoundError{Kind: "module", ID: learning.IndexKey(index)}
	}
	if err := a.LLMReady(); err != nil {
		return learning.ModuleDetail{}, err
	}

	detail, err := a.Orchestrator.GenerateModuleDetail(ctx, index, rec.Modules[index], rec.LearningGoal)
	if err != nil {
		return learning.ModuleDetail{}, err
	}
	if err := a.Paths.UpdateModuleDetail(ctx, ownerID, pathID, index, detail); err != nil {
		return learning.ModuleDetail{}, err
	}
	return detail, nil
}

// Module returns module index of the owner's path.
func (a *App) Module(ctx context.Context, ownerID, pathID string, index int) (learning.Module, error) {
	if index < 0 {
		return learning.Module{}, learning.Invalid("moduleIndex", "must not be negative, got %d", index)
	}
	rec, err := a.Paths.Get(ctx, ownerID, pathID)
	if err != nil {
		return learning.Module{}, err
	}
	if index >= len(rec.Modules) {
		return learning.Module{}, &learning.NotFoundError{Kind: "module", ID: learning.IndexKey(index)}
	}
	return rec.Modules[index], nil
}

// GenerateQuiz generates a quiz for module index of the owner's path.
func (a *App) GenerateQuiz(ctx context.Context, ownerID, pathID string, index int) ([]learning.QuizQuestion, error) {
	m, err := a.Module(ctx, ownerID, pathID, index)
	if err != nil {
		return nil, err
	}
	if err := a.LLMReady(); err != nil {
		return nil, err
	}
	return a.Quiz.Generate(ctx, m)
}
