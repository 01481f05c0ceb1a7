package course

import (
	"errors"
	"time"
)

var ErrCourseNotFound = errors.New("course not found")

type ExerciseType string

const (
	TypeQuiz        ExerciseType = "quiz"
	TypeProgramming ExerciseType = "programming-exercise"
	TypeModelling   ExerciseType = "modelling-exercise"
)

// ExerciseTypes lists the known types in display order.
var ExerciseTypes = []ExerciseType{TypeQuiz, TypeProgramming, TypeModelling}

func (t ExerciseType) Valid() bool {
	switch t {
	case TypeQuiz, TypeProgramming, TypeModelling:
		return true
	}
	return false
}

type Course struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	ShortName string `json:"shortName,omitempty"`
}

type Student struct {
	ID        int64  `json:"id" validate:"required"`
	Login     string `json:"login" validate:"required"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

type Exercise struct {
	ID    int64        `json:"id" validate:"required"`
	Title string       `json:"title,omitempty"`
	Type  ExerciseType `json:"type" validate:"required,oneof=quiz programming-exercise modelling-exercise"`
}

type Participation struct {
	ID       int64     `json:"id"`
	Student  *Student  `json:"student,omitempty"`
	Exercise *Exercise `json:"exercise,omitempty"`
}

// StudentID returns 0 when the participation or its student is missing.
func (p *Participation) StudentID() int64 {
	if p == nil || p.Student == nil {
		return 0
	}
	return p.Student.ID
}

type Result struct {
	ID             int64          `json:"id"`
	Participation  *Participation `json:"participation,omitempty"`
	Score          float64        `json:"score"`
	Successful     bool           `json:"successful"`
	CompletionDate *time.Time     `json:"completionDate,omitempty"`
}

type CourseScore struct {
	ID            int64          `json:"id"`
	Participation *Participation `json:"participation,omitempty"`
	Score         float64        `json:"score"`
}
