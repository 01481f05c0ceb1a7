package course_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/mind-engage/instructor-dashboard/internal/course"
	"github.com/mind-engage/instructor-dashboard/internal/db"
)

func openStore(t *testing.T) *course.SQLStore {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	h, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = h.Close() })
	return course.NewSQLStore(h, "sqlite")
}

func bundle() course.Bundle {
	done := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return course.Bundle{
		Course: course.Course{Title: "Intro to Informatics", ShortName: "eist"},
		Students: []course.Student{
			{ID: 1, Login: "ab12cde", FirstName: "Ada", LastName: "Lovelace"},
			{ID: 2, Login: "cd34efg", FirstName: "Alan", LastName: "Turing"},
		},
		Exercises: []course.Exercise{
			{ID: 10, Title: "Quiz 1", Type: course.TypeQuiz},
			{ID: 11, Title: "Sorting", Type: course.TypeProgramming},
		},
		Participations: []course.ParticipationIn{
			{ID: 100, StudentID: 1, ExerciseID: 10},
			{ID: 101, StudentID: 1, ExerciseID: 11},
			{ID: 102, StudentID: 2, ExerciseID: 10},
		},
		Results: []course.ResultIn{
			{ID: 200, ParticipationID: 100, Score: 80, Successful: true, CompletionDate: &done},
			{ID: 201, ParticipationID: 102, Score: 30, Successful: false},
		},
		Scores: []course.CourseScoreIn{
			{ID: 300, ParticipationID: 100, Score: 75},
			{ID: 301, ParticipationID: 102, Score: 40},
		},
	}
}

func TestSQLStore_ImportAndFetch(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	if err := s.Import(ctx, 1, bundle()); err != nil {
		t.Fatalf("import: %v", err)
	}

	c, err := s.FetchCourse(ctx, 1)
	if err != nil || c.Title != "Intro to Informatics" {
		t.Fatalf("FetchCourse = (%+v, %v)", c, err)
	}
	ps, err := s.FetchParticipations(ctx, 1)
	if err != nil || len(ps) != 3 {
		t.Fatalf("FetchParticipations = (%d, %v)", len(ps), err)
	}
	if ps[1].Student.Login != "ab12cde" || ps[1].Exercise.Type != course.TypeProgramming {
		t.Fatalf("unexpected participation: %+v %+v", ps[1].Student, ps[1].Exercise)
	}
	rs, err := s.FetchResults(ctx, 1)
	if err != nil || len(rs) != 2 {
		t.Fatalf("FetchResults = (%d, %v)", len(rs), err)
	}
	if !rs[0].Successful || rs[0].CompletionDate == nil || rs[1].Successful || rs[1].CompletionDate != nil {
		t.Fatalf("unexpected results: %+v %+v", rs[0], rs[1])
	}
	if rs[1].Participation.StudentID() != 2 {
		t.Fatalf("result joined to wrong student: %+v", rs[1].Participation.Student)
	}
	ss, err := s.FetchCourseScores(ctx, 1)
	if err != nil || len(ss) != 2 || ss[1].Score != 40 {
		t.Fatalf("FetchCourseScores = (%+v, %v)", ss, err)
	}

	// re-import is an upsert
	b := bundle()
	b.Scores[1].Score = 45
	if err := s.Import(ctx, 1, b); err != nil {
		t.Fatalf("re-import: %v", err)
	}
	ss, _ = s.FetchCourseScores(ctx, 1)
	if ss[1].Score != 45 {
		t.Fatalf("score not updated: %v", ss[1].Score)
	}
}

func TestSQLStore_UnknownCourse(t *testing.T) {
	s := openStore(t)
	if _, err := s.FetchCourse(context.Background(), 9); !errors.Is(err, course.ErrCourseNotFound) {
		t.Fatalf("expected ErrCourseNotFound, got %v", err)
	}
	ps, err := s.FetchParticipations(context.Background(), 9)
	if err != nil || len(ps) != 0 {
		t.Fatalf("FetchParticipations = (%v, %v)", ps, err)
	}
}

func TestBundle_Validate(t *testing.T) {
	b := bundle()
	b.Exercises[0].Type = "essay"
	if err := b.Validate(); err == nil {
		t.Fatalf("expected invalid exercise type to fail validation")
	}
	b = bundle()
	b.Students[0].Login = ""
	if err := b.Validate(); err == nil {
		t.Fatalf("expected missing login to fail validation")
	}
	b = bundle()
	if err := b.Validate(); err != nil {
		t.Fatalf("valid bundle rejected: %v", err)
	}
}
