package dashboard

import (
	"fmt"
	"strings"

	"github.com/mind-engage/instructor-dashboard/internal/course"
)

// Policy decides which buckets a successful result is credited to.
type Policy string

const (
	// PolicyStrict credits only the bucket of the result's exercise type.
	PolicyStrict Policy = "strict"
	// PolicyFallthrough credits the result's bucket and every bucket after
	// it in quiz, programming, modelling order. Older exports were produced
	// this way; keep it for comparing against them.
	PolicyFallthrough Policy = "fallthrough"
)

func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyStrict:
		return PolicyStrict, nil
	case PolicyFallthrough:
		return PolicyFallthrough, nil
	}
	return "", fmt.Errorf("unknown breakdown policy %q", s)
}

type ExerciseTypeScore struct {
	StudentID  int64               `json:"studentId"`
	FirstName  string              `json:"firstName"`
	LastName   string              `json:"lastName"`
	Login      string              `json:"login"`
	ExType     course.ExerciseType `json:"exType"`
	TotalScore float64             `json:"totalScore"`
}

// Breakdown holds one entry per student in each bucket, in the order the
// students first appear in the results.
type Breakdown struct {
	Quiz                []ExerciseTypeScore `json:"quiz"`
	ProgrammingExercise []ExerciseTypeScore `json:"programmingExercise"`
	Modelling           []ExerciseTypeScore `json:"modelling"`
	Faults              []Fault             `json:"faults,omitempty"`
}

// Bucket returns the slice for t, or nil for an unknown type.
func (b Breakdown) Bucket(t course.ExerciseType) []ExerciseTypeScore {
	switch t {
	case course.TypeQuiz:
		return b.Quiz
	case course.TypeProgramming:
		return b.ProgrammingExercise
	case course.TypeModelling:
		return b.Modelling
	}
	return nil
}

// BuildExerciseTypeBreakdown sums the scores of successful results per
// student and exercise type. Every student seen in results gets all three
// buckets, even if they stay at zero. A result id is counted once.
func BuildExerciseTypeBreakdown(results []course.Result, policy Policy) Breakdown {
	var (
		b      Breakdown
		faults []Fault
		pos    = make(map[int64]int)
		seen   = make(map[int64]struct{})
	)
	seed := func(st *course.Student, t course.ExerciseType) ExerciseTypeScore {
		return ExerciseTypeScore{
			StudentID: st.ID,
			FirstName: st.FirstName,
			LastName:  st.LastName,
			Login:     st.Login,
			ExType:    t,
		}
	}

	for _, r := range results {
		if _, dup := seen[r.ID]; dup {
			continue
		}
		seen[r.ID] = struct{}{}

		if r.Participation == nil || r.Participation.Student == nil {
			faults = append(faults, Fault{Kind: FaultIncompleteResult, RecordID: r.ID})
			continue
		}
		st := r.Participation.Student
		i, ok := pos[st.ID]
		if !ok {
			i = len(b.Quiz)
			pos[st.ID] = i
			b.Quiz = append(b.Quiz, seed(st, course.TypeQuiz))
			b.ProgrammingExercise = append(b.ProgrammingExercise, seed(st, course.TypeProgramming))
			b.Modelling = append(b.Modelling, seed(st, course.TypeModelling))
		}

		if !r.Successful {
			continue
		}
		if r.Participation.Exercise == nil {
			faults = append(faults, Fault{Kind: FaultIncompleteResult, RecordID: r.ID, StudentID: st.ID})
			continue
		}

		exType := r.Participation.Exercise.Type
		if policy == PolicyFallthrough {
			switch exType {
			case course.TypeQuiz:
				b.Quiz[i].TotalScore += r.Score
				fallthrough
			case course.TypeProgramming:
				b.ProgrammingExercise[i].TotalScore += r.Score
				fallthrough
			case course.TypeModelling:
				b.Modelling[i].TotalScore += r.Score
			}
			continue
		}
		switch exType {
		case course.TypeQuiz:
			b.Quiz[i].TotalScore += r.Score
		case course.TypeProgramming:
			b.ProgrammingExercise[i].TotalScore += r.Score
		case course.TypeModelling:
			b.Modelling[i].TotalScore += r.Score
		}
	}
	b.Faults = faults
	return b
}
