package course

import "context"

// Source is the data-access side of the dashboard. Implementations:
// SQLStore (local database) and remote.Client (course backend over HTTP).
type Source interface {
	FetchCourse(ctx context.Context, courseID int64) (Course, error)
	FetchParticipations(ctx context.Context, courseID int64) ([]Participation, error)
	FetchResults(ctx context.Context, courseID int64) ([]Result, error)
	FetchCourseScores(ctx context.Context, courseID int64) ([]CourseScore, error)
}
