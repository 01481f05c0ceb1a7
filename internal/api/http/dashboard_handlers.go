package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mind-engage/instructor-dashboard/internal/course"
	"github.com/mind-engage/instructor-dashboard/internal/dashboard"
)

type summaryResponse struct {
	LoadID            string                        `json:"loadId,omitempty"`
	Course            course.Course                 `json:"course"`
	Ready             bool                          `json:"ready"`
	NumberOfExercises int                           `json:"numberOfExercises"`
	Rows              []dashboard.StudentSummaryRow `json:"rows"`
	Faults            []dashboard.Fault             `json:"faults,omitempty"`
}

type breakdownResponse struct {
	LoadID string `json:"loadId,omitempty"`
	Ready  bool   `json:"ready"`
	dashboard.Breakdown
}

// GET /courses/{courseID}/dashboard
func DashboardSummaryHandler(reg *dashboard.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, ok := refresh(w, r, reg)
		if !ok {
			return
		}
		rows := snap.Summary.Rows
		if rows == nil {
			rows = []dashboard.StudentSummaryRow{}
		}
		writeJSON(w, summaryResponse{
			LoadID:            snap.LoadID,
			Course:            snap.Course,
			Ready:             snap.Ready(),
			NumberOfExercises: snap.Summary.NumberOfExercises,
			Rows:              rows,
			Faults:            snap.Summary.Faults,
		})
	}
}

// GET /courses/{courseID}/dashboard/breakdown
func DashboardBreakdownHandler(reg *dashboard.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, ok := refresh(w, r, reg)
		if !ok {
			return
		}
		bd := snap.Breakdown
		if bd.Quiz == nil {
			bd.Quiz = []dashboard.ExerciseTypeScore{}
		}
		if bd.ProgrammingExercise == nil {
			bd.ProgrammingExercise = []dashboard.ExerciseTypeScore{}
		}
		if bd.Modelling == nil {
			bd.Modelling = []dashboard.ExerciseTypeScore{}
		}
		writeJSON(w, breakdownResponse{LoadID: snap.LoadID, Ready: snap.Ready(), Breakdown: bd})
	}
}

// GET /courses/{courseID}/dashboard/export.csv?type=programming-exercise|quiz|modelling-exercise|all
//
// Exports from the last loaded snapshot; it does not refetch. 204 when there
// is nothing to export.
func DashboardExportHandler(reg *dashboard.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID, ok := courseIDParam(w, r)
		if !ok {
			return
		}
		types, err := parseExportTypes(r.URL.Query().Get("type"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		view := reg.Open(courseID)
		snap := view.Current()
		if !snap.Ready() {
			if snap, err = view.Refresh(r.Context()); err != nil {
				writeRefreshError(w, reg, courseID, err)
				return
			}
		}
		body := dashboard.FormatAsCSV(dashboard.ExportRows(snap.Breakdown, types...))
		if body == "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Header().Set("Content-Type", dashboard.ExportContentType+"; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+dashboard.ExportFileName+`"`)
		_, _ = w.Write([]byte(body))
	}
}

// DELETE /courses/{courseID}/dashboard
func CloseDashboardHandler(reg *dashboard.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID, ok := courseIDParam(w, r)
		if !ok {
			return
		}
		if !reg.Close(courseID) {
			http.Error(w, "dashboard not open", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func refresh(w http.ResponseWriter, r *http.Request, reg *dashboard.Registry) (dashboard.Snapshot, bool) {
	courseID, ok := courseIDParam(w, r)
	if !ok {
		return dashboard.Snapshot{}, false
	}
	snap, err := reg.Open(courseID).Refresh(r.Context())
	if err != nil {
		writeRefreshError(w, reg, courseID, err)
		return dashboard.Snapshot{}, false
	}
	return snap, true
}

func writeRefreshError(w http.ResponseWriter, reg *dashboard.Registry, courseID int64, err error) {
	switch {
	case errors.Is(err, course.ErrCourseNotFound):
		http.Error(w, "course not found", http.StatusNotFound)
	case errors.Is(err, dashboard.ErrViewClosed):
		http.Error(w, "dashboard closed", http.StatusConflict)
	default:
		reg.Logger().Error("fetch course data", zap.Int64("course", courseID), zap.Error(err))
		http.Error(w, "fetch course data: "+err.Error(), http.StatusBadGateway)
	}
}

func courseIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(chi.URLParam(r, "courseID")), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid courseID", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func parseExportTypes(s string) ([]course.ExerciseType, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return nil, nil
	case "all":
		return course.ExerciseTypes, nil
	}
	var out []course.ExerciseType
	for _, part := range strings.Split(s, ",") {
		t := course.ExerciseType(strings.TrimSpace(part))
		if !t.Valid() {
			return nil, errors.New("unknown exercise type: " + string(t))
		}
		out = append(out, t)
	}
	return out, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
