package pathrecord

import (
	"strconv"
	"strings"

	"github.com/hitensaxena/pathfinder/internal/learning"
	"github.com/hitensaxena/pathfinder/internal/store"
)

// UntitledGoal stands in for the learning goal of records saved before the
// goal was stored.
const UntitledGoal = "Untitled Learning Path"

func decodeRecord(doc store.Document) (learning.PathRecord, error) {
	var rec learning.PathRecord
	if err := store.DecodeFields(doc.Fields, &rec); err != nil {
		return learning.PathRecord{}, err
	}
	rec.ID = doc.ID
	normalize(&rec)
	return rec, nil
}

// normalize fills fields missing from older records and converts legacy
// single-blob details to sections. Nothing is written back.
func normalize(rec *learning.PathRecord) {
	if strings.TrimSpace(rec.LearningGoal) == "" {
		rec.LearningGoal = UntitledGoal
	}
	if rec.Modules == nil {
		rec.Modules = []learning.Module{}
	}
	if rec.ModuleQuizStatus == nil {
		rec.ModuleQuizStatus = map[string]learning.QuizStatus{}
	}

	details := make(map[string]learning.ModuleDetail, len(rec.ModulesDetails))
	for key, d := range rec.ModulesDetails {
		var title string
		if i, ok := parseIndex(key); ok && i < len(rec.Modules) {
			title = rec.Modules[i].Title
		}
		n := d.Normalize(title)
		if len(n.Sections) == 0 {
			continue
		}
		details[key] = n
	}
	rec.ModulesDetails = details
}

func parseIndex(key string) (int, bool) {
	i, err := strconv.Atoi(key)
	if err != nil || i < 0 || learning.IndexKey(i) != key {
		return 0, false
	}
	return i, true
}
