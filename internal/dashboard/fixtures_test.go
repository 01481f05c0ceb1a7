package dashboard_test

import (
	"math"

	"github.com/mind-engage/instructor-dashboard/internal/course"
)

var (
	s1 = &course.Student{ID: 1, Login: "ab12cde", FirstName: "Ada", LastName: "Lovelace"}
	s2 = &course.Student{ID: 2, Login: "cd34efg", FirstName: "Alan", LastName: "Turing"}
	s9 = &course.Student{ID: 9, Login: "zz99zzz"}

	e1 = &course.Exercise{ID: 101, Type: course.TypeQuiz}
	e2 = &course.Exercise{ID: 102, Type: course.TypeProgramming}
	e3 = &course.Exercise{ID: 103, Type: course.TypeModelling}
)

func part(id int64, st *course.Student, ex *course.Exercise) course.Participation {
	return course.Participation{ID: id, Student: st, Exercise: ex}
}

func result(id int64, p course.Participation, score float64, ok bool) course.Result {
	return course.Result{ID: id, Participation: &p, Score: score, Successful: ok}
}

func score(id int64, p course.Participation, v float64) course.CourseScore {
	return course.CourseScore{ID: id, Participation: &p, Score: v}
}

// exampleInput is two students over three exercises.
func exampleInput() ([]course.Participation, []course.Result, []course.CourseScore) {
	p1 := part(1, s1, e1)
	p2 := part(2, s1, e2)
	p3 := part(3, s2, e1)
	p4 := part(4, s2, e3)
	return []course.Participation{p1, p2, p3, p4},
		[]course.Result{result(11, p1, 80, true), result(12, p3, 50, true)},
		[]course.CourseScore{score(21, p1, 75), score(22, p3, 40)}
}

func approx(a, b float64) bool { return math.Abs(a-b) < 0.01 }
