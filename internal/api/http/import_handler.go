package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/mind-engage/instructor-dashboard/internal/course"
)

// Importer is implemented by course.SQLStore.
type Importer interface {
	Import(ctx context.Context, courseID int64, b course.Bundle) error
}

// POST /courses/{courseID}/import
func ImportCourseHandler(store Importer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID, ok := courseIDParam(w, r)
		if !ok {
			return
		}
		var b course.Bundle
		if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if err := b.Validate(); err != nil {
			http.Error(w, "invalid bundle: "+err.Error(), http.StatusBadRequest)
			return
		}
		if err := store.Import(r.Context(), courseID, b); err != nil {
			http.Error(w, "import: "+err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]any{
			"status":         "ok",
			"course_id":      courseID,
			"participations": len(b.Participations),
			"results":        len(b.Results),
			"scores":         len(b.Scores),
		})
	}
}
