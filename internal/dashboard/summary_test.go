package dashboard_test

import (
	"reflect"
	"testing"

	"github.com/mind-engage/instructor-dashboard/internal/course"
	"github.com/mind-engage/instructor-dashboard/internal/dashboard"
)

func TestBuildStudentSummary_Example(t *testing.T) {
	p1 := part(1, s1, e1)
	p2 := part(2, s1, e2)
	p3 := part(3, s2, e1)
	// The exercise count only knows exercises someone participated in, so a
	// third student brings in E3.
	p4 := part(4, s9, e3)
	summary, ok := dashboard.BuildStudentSummary(
		[]course.Participation{p1, p2, p3, p4},
		[]course.Result{result(11, p1, 80, true), result(12, p3, 50, true)},
		[]course.CourseScore{score(21, p1, 75), score(22, p3, 40)},
	)
	if !ok {
		t.Fatalf("expected aggregation to run")
	}
	if summary.NumberOfExercises != 3 {
		t.Fatalf("NumberOfExercises = %d, want 3", summary.NumberOfExercises)
	}
	if len(summary.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(summary.Rows))
	}

	r1, r2 := summary.Rows[0], summary.Rows[1]
	if r1.Login != "ab12cde" || r1.Participated != 2 || r1.Successful != 1 || r1.OverallScore != 75 {
		t.Fatalf("unexpected S1 row: %+v", r1)
	}
	if !approx(r1.ParticipationInPercent, 66.67) || !approx(r1.SuccessfullyCompletedInPercent, 33.33) {
		t.Fatalf("unexpected S1 percentages: %+v", r1)
	}
	if r2.Login != "cd34efg" || r2.Participated != 1 || r2.Successful != 1 || r2.OverallScore != 40 {
		t.Fatalf("unexpected S2 row: %+v", r2)
	}
	if !approx(r2.ParticipationInPercent, 33.33) || !approx(r2.SuccessfullyCompletedInPercent, 33.33) {
		t.Fatalf("unexpected S2 percentages: %+v", r2)
	}
	if len(summary.Faults) != 0 {
		t.Fatalf("unexpected faults: %v", summary.Faults)
	}
}

func TestBuildStudentSummary_NoOpOnPartialInput(t *testing.T) {
	ps, rs, ss := exampleInput()
	cases := []struct {
		name string
		ps   []course.Participation
		rs   []course.Result
		ss   []course.CourseScore
	}{
		{"no participations", nil, rs, ss},
		{"no results", ps, nil, ss},
		{"no scores", ps, rs, nil},
		{"empty scores", ps, rs, []course.CourseScore{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			summary, ok := dashboard.BuildStudentSummary(tc.ps, tc.rs, tc.ss)
			if ok {
				t.Fatalf("expected no-op")
			}
			if len(summary.Rows) != 0 || summary.NumberOfExercises != 0 {
				t.Fatalf("expected empty summary, got %+v", summary)
			}
		})
	}
}

func TestBuildStudentSummary_ParticipatedSumsToRecords(t *testing.T) {
	ps, rs, ss := exampleInput()
	summary, ok := dashboard.BuildStudentSummary(ps, rs, ss)
	if !ok {
		t.Fatalf("expected aggregation to run")
	}
	total := 0
	for _, r := range summary.Rows {
		total += r.Participated
		if r.ParticipationInPercent < 0 || r.ParticipationInPercent > 100 {
			t.Fatalf("participation percent out of range: %+v", r)
		}
		if r.SuccessfullyCompletedInPercent < 0 || r.SuccessfullyCompletedInPercent > 100 {
			t.Fatalf("success percent out of range: %+v", r)
		}
	}
	if total != len(ps) {
		t.Fatalf("sum participated = %d, want %d", total, len(ps))
	}
}

func TestBuildStudentSummary_Idempotent(t *testing.T) {
	ps, rs, ss := exampleInput()
	a, _ := dashboard.BuildStudentSummary(ps, rs, ss)
	b, _ := dashboard.BuildStudentSummary(ps, rs, ss)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("repeated aggregation differs:\n%+v\n%+v", a, b)
	}
	if a.NumberOfExercises != 3 {
		t.Fatalf("exercise count must not accumulate across calls, got %d", a.NumberOfExercises)
	}
}

func TestBuildStudentSummary_SuccessCountsOnlyCompletedExercises(t *testing.T) {
	p1 := part(1, s1, e1)
	summary, ok := dashboard.BuildStudentSummary(
		[]course.Participation{p1},
		[]course.Result{
			result(11, p1, 40, false),
			result(12, p1, 80, true),
			result(13, p1, 90, true), // resubmission of the same exercise
		},
		[]course.CourseScore{score(21, p1, 90)},
	)
	if !ok {
		t.Fatalf("expected aggregation to run")
	}
	r := summary.Rows[0]
	if r.Successful != 1 || r.SuccessfullyCompletedInPercent != 100 {
		t.Fatalf("unexpected row: %+v", r)
	}
}

func TestBuildStudentSummary_LastScoreWins(t *testing.T) {
	ps, rs, _ := exampleInput()
	ss := []course.CourseScore{score(21, ps[0], 10), score(22, ps[1], 99)}
	summary, _ := dashboard.BuildStudentSummary(ps, rs, ss)
	if summary.Rows[0].OverallScore != 99 {
		t.Fatalf("OverallScore = %v, want 99", summary.Rows[0].OverallScore)
	}
}

func TestBuildStudentSummary_ReportsDanglingRecords(t *testing.T) {
	ps, rs, ss := exampleInput()
	stranger := part(99, s9, e1)
	rs = append(rs, result(19, stranger, 100, true))
	ss = append(ss, score(29, stranger, 100), course.CourseScore{ID: 30, Participation: &course.Participation{ID: 98}})

	summary, ok := dashboard.BuildStudentSummary(ps, rs, ss)
	if !ok {
		t.Fatalf("expected aggregation to run")
	}
	if len(summary.Rows) != 2 {
		t.Fatalf("dangling records must not create rows, got %d rows", len(summary.Rows))
	}
	want := []dashboard.Fault{
		{Kind: dashboard.FaultDanglingResult, RecordID: 19, StudentID: 9},
		{Kind: dashboard.FaultDanglingScore, RecordID: 29, StudentID: 9},
	}
	if !reflect.DeepEqual(summary.Faults, want) {
		t.Fatalf("faults = %+v, want %+v", summary.Faults, want)
	}
}

func TestBuildStudentSummary_SkipsIncompleteParticipations(t *testing.T) {
	ps := []course.Participation{{ID: 1, Student: s1}}
	p := part(2, s1, e1)
	summary, ok := dashboard.BuildStudentSummary(ps,
		[]course.Result{result(11, p, 10, true)},
		[]course.CourseScore{score(21, p, 10)})
	if !ok {
		t.Fatalf("expected aggregation to run")
	}
	if summary.NumberOfExercises != 0 {
		t.Fatalf("NumberOfExercises = %d, want 0", summary.NumberOfExercises)
	}
	if len(summary.Faults) == 0 || summary.Faults[0].Kind != dashboard.FaultIncompleteParticipation {
		t.Fatalf("expected incomplete participation fault, got %+v", summary.Faults)
	}
}

func TestBuildStudentSummary_ResultOutsideParticipations(t *testing.T) {
	p1 := part(1, s1, e1)
	summary, ok := dashboard.BuildStudentSummary(
		[]course.Participation{p1},
		[]course.Result{
			result(11, p1, 80, true),
			result(12, part(2, s1, e2), 90, true),
			{ID: 13, Participation: &course.Participation{ID: 3, Student: s1}, Score: 70, Successful: true},
		},
		[]course.CourseScore{score(21, p1, 75)},
	)
	if !ok {
		t.Fatalf("expected aggregation to run")
	}
	r := summary.Rows[0]
	if r.Successful != 1 || r.SuccessfullyCompletedInPercent != 100 {
		t.Fatalf("unexpected row: %+v", r)
	}
	want := []dashboard.Fault{
		{Kind: dashboard.FaultUnparticipatedResult, RecordID: 12, StudentID: 1},
		{Kind: dashboard.FaultIncompleteResult, RecordID: 13, StudentID: 1},
	}
	if !reflect.DeepEqual(summary.Faults, want) {
		t.Fatalf("faults = %+v, want %+v", summary.Faults, want)
	}
}
