package dashboard

import (
	"github.com/mind-engage/instructor-dashboard/internal/course"
)

type StudentSummaryRow struct {
	StudentID                      int64   `json:"studentId"`
	FirstName                      string  `json:"firstName"`
	LastName                       string  `json:"lastName"`
	Login                          string  `json:"login"`
	Participated                   int     `json:"participated"`
	ParticipationInPercent         float64 `json:"participationInPercent"`
	Successful                     int     `json:"successful"`
	SuccessfullyCompletedInPercent float64 `json:"successfullyCompletedInPercent"`
	OverallScore                   float64 `json:"overallScore"`
}

type Summary struct {
	Rows              []StudentSummaryRow `json:"rows"`
	NumberOfExercises int                 `json:"numberOfExercises"`
	Faults            []Fault             `json:"faults,omitempty"`
}

// rowIndex keeps rows in first-seen order while allowing lookup by student.
type rowIndex struct {
	rows []StudentSummaryRow
	pos  map[int64]int
}

func (ix *rowIndex) get(studentID int64) (*StudentSummaryRow, bool) {
	i, ok := ix.pos[studentID]
	if !ok {
		return nil, false
	}
	return &ix.rows[i], true
}

func (ix *rowIndex) ensure(st *course.Student) *StudentSummaryRow {
	if r, ok := ix.get(st.ID); ok {
		return r
	}
	ix.pos[st.ID] = len(ix.rows)
	ix.rows = append(ix.rows, StudentSummaryRow{
		StudentID: st.ID,
		FirstName: st.FirstName,
		LastName:  st.LastName,
		Login:     st.Login,
	})
	return &ix.rows[len(ix.rows)-1]
}

// BuildStudentSummary joins participations, results and course scores into
// one row per student. ok is false when any input is empty; callers must then
// keep whatever they displayed before.
//
// Records that cannot be attributed to a registered student, and successful
// results on an exercise the student has no participation for, are skipped
// and reported in Summary.Faults.
func BuildStudentSummary(participations []course.Participation, results []course.Result, scores []course.CourseScore) (Summary, bool) {
	if len(participations) == 0 || len(results) == 0 || len(scores) == 0 {
		return Summary{}, false
	}

	var faults []Fault
	ix := &rowIndex{pos: make(map[int64]int)}
	exercisesSeen := make(map[int64]struct{})
	// A student can only complete an exercise they participated in, and only
	// once however many successful results it has.
	type completion struct{ student, exercise int64 }
	participated := make(map[completion]struct{}, len(participations))

	for _, p := range participations {
		if p.Student == nil || p.Exercise == nil {
			faults = append(faults, Fault{Kind: FaultIncompleteParticipation, RecordID: p.ID, StudentID: p.StudentID()})
			continue
		}
		ix.ensure(p.Student).Participated++
		exercisesSeen[p.Exercise.ID] = struct{}{}
		participated[completion{p.Student.ID, p.Exercise.ID}] = struct{}{}
	}
	numberOfExercises := len(exercisesSeen)

	completed := make(map[completion]struct{})
	for _, r := range results {
		sid := r.Participation.StudentID()
		row, ok := ix.get(sid)
		if !ok {
			faults = append(faults, Fault{Kind: FaultDanglingResult, RecordID: r.ID, StudentID: sid})
			continue
		}
		if !r.Successful {
			continue
		}
		if r.Participation.Exercise == nil {
			faults = append(faults, Fault{Kind: FaultIncompleteResult, RecordID: r.ID, StudentID: sid})
			continue
		}
		k := completion{sid, r.Participation.Exercise.ID}
		if _, ok := participated[k]; !ok {
			faults = append(faults, Fault{Kind: FaultUnparticipatedResult, RecordID: r.ID, StudentID: sid})
			continue
		}
		if _, dup := completed[k]; dup {
			continue
		}
		completed[k] = struct{}{}
		row.Successful++
		row.SuccessfullyCompletedInPercent = percent(row.Successful, numberOfExercises)
	}

	for i := range ix.rows {
		ix.rows[i].ParticipationInPercent = percent(ix.rows[i].Participated, numberOfExercises)
	}

	for _, s := range scores {
		sid := s.Participation.StudentID()
		if sid == 0 {
			continue
		}
		row, ok := ix.get(sid)
		if !ok {
			faults = append(faults, Fault{Kind: FaultDanglingScore, RecordID: s.ID, StudentID: sid})
			continue
		}
		row.OverallScore = s.Score
	}

	return Summary{Rows: ix.rows, NumberOfExercises: numberOfExercises, Faults: faults}, true
}

// percent is 0 when there is nothing to divide by.
func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
