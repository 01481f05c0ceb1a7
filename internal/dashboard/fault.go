package dashboard

import "fmt"

type FaultKind string

const (
	// FaultDanglingResult: a result whose student never participated.
	FaultDanglingResult FaultKind = "dangling_result"
	// FaultUnparticipatedResult: a successful result on an exercise its
	// student has no participation for.
	FaultUnparticipatedResult FaultKind = "unparticipated_result"
	// FaultDanglingScore: a course score whose student never participated.
	FaultDanglingScore FaultKind = "dangling_score"
	// FaultIncompleteParticipation: a participation without student or exercise.
	FaultIncompleteParticipation FaultKind = "incomplete_participation"
	// FaultIncompleteResult: a result without participation, student or exercise.
	FaultIncompleteResult FaultKind = "incomplete_result"
)

// Fault is a data-integrity problem found while aggregating. The offending
// record was skipped.
type Fault struct {
	Kind      FaultKind `json:"kind"`
	RecordID  int64     `json:"recordId"`
	StudentID int64     `json:"studentId,omitempty"`
}

func (f Fault) Error() string {
	return fmt.Sprintf("%s: record %d (student %d)", f.Kind, f.RecordID, f.StudentID)
}
