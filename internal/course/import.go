package course

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Bundle is the bulk payload accepted by Import. Participations, results and
// scores reference students and exercises by id.
type Bundle struct {
	Course         Course            `json:"course"`
	Students       []Student         `json:"students" validate:"dive"`
	Exercises      []Exercise        `json:"exercises" validate:"dive"`
	Participations []ParticipationIn `json:"participations" validate:"dive"`
	Results        []ResultIn        `json:"results" validate:"dive"`
	Scores         []CourseScoreIn   `json:"scores" validate:"dive"`
}

type ParticipationIn struct {
	ID         int64 `json:"id" validate:"required"`
	StudentID  int64 `json:"studentId" validate:"required"`
	ExerciseID int64 `json:"exerciseId" validate:"required"`
}

type ResultIn struct {
	ID              int64      `json:"id" validate:"required"`
	ParticipationID int64      `json:"participationId" validate:"required"`
	Score           float64    `json:"score" validate:"gte=0"`
	Successful      bool       `json:"successful"`
	CompletionDate  *time.Time `json:"completionDate,omitempty"`
}

type CourseScoreIn struct {
	ID              int64   `json:"id" validate:"required"`
	ParticipationID int64   `json:"participationId" validate:"required"`
	Score           float64 `json:"score"`
}

var validate = validator.New()

// Validate checks field constraints only; referential integrity is left to
// the database foreign keys.
func (b *Bundle) Validate() error {
	return validate.Struct(b)
}

// Import upserts the bundle for courseID in a single transaction.
func (s *SQLStore) Import(ctx context.Context, courseID int64, b Bundle) error {
	if err := b.Validate(); err != nil {
		return fmt.Errorf("invalid bundle: %w", err)
	}
	title := b.Course.Title
	if title == "" {
		title = fmt.Sprintf("course-%d", courseID)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `INSERT INTO courses (id,title,short_name) VALUES ($1,$2,$3)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, short_name=EXCLUDED.short_name`,
		courseID, title, b.Course.ShortName); err != nil {
		return fmt.Errorf("upsert course: %w", err)
	}
	for _, st := range b.Students {
		if _, err := tx.ExecContext(ctx, `INSERT INTO students (id,login,first_name,last_name) VALUES ($1,$2,$3,$4)
			ON CONFLICT (id) DO UPDATE SET login=EXCLUDED.login, first_name=EXCLUDED.first_name, last_name=EXCLUDED.last_name`,
			st.ID, st.Login, st.FirstName, st.LastName); err != nil {
			return fmt.Errorf("upsert student %d: %w", st.ID, err)
		}
	}
	for _, ex := range b.Exercises {
		if _, err := tx.ExecContext(ctx, `INSERT INTO exercises (id,course_id,title,type) VALUES ($1,$2,$3,$4)
			ON CONFLICT (id) DO UPDATE SET course_id=EXCLUDED.course_id, title=EXCLUDED.title, type=EXCLUDED.type`,
			ex.ID, courseID, ex.Title, string(ex.Type)); err != nil {
			return fmt.Errorf("upsert exercise %d: %w", ex.ID, err)
		}
	}
	for _, p := range b.Participations {
		if _, err := tx.ExecContext(ctx, `INSERT INTO participations (id,student_id,exercise_id) VALUES ($1,$2,$3)
			ON CONFLICT (id) DO UPDATE SET student_id=EXCLUDED.student_id, exercise_id=EXCLUDED.exercise_id`,
			p.ID, p.StudentID, p.ExerciseID); err != nil {
			return fmt.Errorf("upsert participation %d: %w", p.ID, err)
		}
	}
	for _, r := range b.Results {
		var completed sql.NullInt64
		if r.CompletionDate != nil {
			completed = sql.NullInt64{Int64: r.CompletionDate.Unix(), Valid: true}
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO results (id,participation_id,score,successful,completion_date) VALUES ($1,$2,$3,$4,$5)
			ON CONFLICT (id) DO UPDATE SET participation_id=EXCLUDED.participation_id, score=EXCLUDED.score,
				successful=EXCLUDED.successful, completion_date=EXCLUDED.completion_date`,
			r.ID, r.ParticipationID, r.Score, boolToInt(r.Successful), completed); err != nil {
			return fmt.Errorf("upsert result %d: %w", r.ID, err)
		}
	}
	for _, cs := range b.Scores {
		if _, err := tx.ExecContext(ctx, `INSERT INTO course_scores (id,course_id,participation_id,score) VALUES ($1,$2,$3,$4)
			ON CONFLICT (id) DO UPDATE SET course_id=EXCLUDED.course_id, participation_id=EXCLUDED.participation_id, score=EXCLUDED.score`,
			cs.ID, courseID, cs.ParticipationID, cs.Score); err != nil {
			return fmt.Errorf("upsert course score %d: %w", cs.ID, err)
		}
	}
	return tx.Commit()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
