package course

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) FetchCourse(ctx context.Context, courseID int64) (Course, error) {
	var c Course
	err := s.db.QueryRowContext(ctx, `SELECT id,title,short_name FROM courses WHERE id=$1`, courseID).
		Scan(&c.ID, &c.Title, &c.ShortName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Course{}, ErrCourseNotFound
		}
		return Course{}, err
	}
	return c, nil
}

const participationCols = `
	p.id,
	s.id, s.login, s.first_name, s.last_name,
	e.id, e.title, e.type`

const participationJoins = `
	FROM participations p
	JOIN students s ON s.id = p.student_id
	JOIN exercises e ON e.id = p.exercise_id`

func (s *SQLStore) FetchParticipations(ctx context.Context, courseID int64) ([]Participation, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+participationCols+participationJoins+`
		WHERE e.course_id=$1
		ORDER BY p.id`, courseID)
	if err != nil {
		return nil, fmt.Errorf("query participations: %w", err)
	}
	defer rows.Close()

	var out []Participation
	for rows.Next() {
		p, err := scanParticipation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *SQLStore) FetchResults(ctx context.Context, courseID int64) ([]Result, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT r.id, r.score, r.successful, r.completion_date,`+participationCols+`
		FROM results r
		JOIN participations p ON p.id = r.participation_id
		JOIN students s ON s.id = p.student_id
		JOIN exercises e ON e.id = p.exercise_id
		WHERE e.course_id=$1
		ORDER BY r.id`, courseID)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var out []Result
	for rows.Next() {
		var (
			r          Result
			successful int64
			completed  sql.NullInt64
			p          Participation
			st         Student
			ex         Exercise
		)
		if err := rows.Scan(&r.ID, &r.Score, &successful, &completed,
			&p.ID, &st.ID, &st.Login, &st.FirstName, &st.LastName,
			&ex.ID, &ex.Title, &ex.Type); err != nil {
			return nil, err
		}
		r.Successful = successful != 0
		if completed.Valid {
			t := time.Unix(completed.Int64, 0).UTC()
			r.CompletionDate = &t
		}
		p.Student, p.Exercise = &st, &ex
		r.Participation = &p
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) FetchCourseScores(ctx context.Context, courseID int64) ([]CourseScore, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT cs.id, cs.score,`+participationCols+`
		FROM course_scores cs
		JOIN participations p ON p.id = cs.participation_id
		JOIN students s ON s.id = p.student_id
		JOIN exercises e ON e.id = p.exercise_id
		WHERE cs.course_id=$1
		ORDER BY cs.id`, courseID)
	if err != nil {
		return nil, fmt.Errorf("query course scores: %w", err)
	}
	defer rows.Close()

	var out []CourseScore
	for rows.Next() {
		var (
			cs CourseScore
			p  Participation
			st Student
			ex Exercise
		)
		if err := rows.Scan(&cs.ID, &cs.Score,
			&p.ID, &st.ID, &st.Login, &st.FirstName, &st.LastName,
			&ex.ID, &ex.Title, &ex.Type); err != nil {
			return nil, err
		}
		p.Student, p.Exercise = &st, &ex
		cs.Participation = &p
		out = append(out, cs)
	}
	return out, rows.Err()
}

func scanParticipation(rows *sql.Rows) (*Participation, error) {
	var (
		p  Participation
		st Student
		ex Exercise
	)
	if err := rows.Scan(&p.ID, &st.ID, &st.Login, &st.FirstName, &st.LastName,
		&ex.ID, &ex.Title, &ex.Type); err != nil {
		return nil, err
	}
	p.Student, p.Exercise = &st, &ex
	return &p, nil
}
