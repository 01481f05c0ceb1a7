package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mind-engage/instructor-dashboard/internal/course"
)

var ErrViewClosed = errors.New("dashboard view closed")

// Snapshot is the last complete aggregation of a course. The zero value means
// nothing has been aggregated yet.
type Snapshot struct {
	LoadID    string        `json:"loadId,omitempty"`
	Course    course.Course `json:"course"`
	Summary   Summary       `json:"summary"`
	Breakdown Breakdown     `json:"breakdown"`
	LoadedAt  time.Time     `json:"loadedAt,omitempty"`
}

func (s Snapshot) Ready() bool { return s.LoadID != "" }

// View owns the dashboard state of one course. Closing it cancels fetches
// still in flight and drops whatever they return.
type View struct {
	courseID int64
	src      course.Source
	policy   Policy
	now      func() time.Time
	log      *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu   sync.Mutex
	snap Snapshot
}

func NewView(courseID int64, src course.Source, policy Policy, now func() time.Time) *View {
	if now == nil {
		now = time.Now
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &View{courseID: courseID, src: src, policy: policy, now: now, log: zap.NewNop(), ctx: ctx, cancel: cancel}
}

func (v *View) CourseID() int64 { return v.courseID }

// Current returns the last good snapshot.
func (v *View) Current() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snap
}

func (v *View) Close() { v.cancel() }

func (v *View) Closed() bool { return v.ctx.Err() != nil }

// Refresh fetches the course and its three collections and re-aggregates.
// The stored snapshot is replaced only when all three collections are
// non-empty; on any error the previous snapshot is returned unchanged along
// with the error.
func (v *View) Refresh(ctx context.Context) (Snapshot, error) {
	if v.Closed() {
		return Snapshot{}, ErrViewClosed
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(v.ctx, cancel)
	defer stop()

	crs, err := v.src.FetchCourse(ctx, v.courseID)
	if err != nil {
		return v.fail(fmt.Errorf("fetch course %d: %w", v.courseID, err))
	}

	var (
		participations []course.Participation
		results        []course.Result
		scores         []course.CourseScore
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		results, err = v.src.FetchResults(gctx, v.courseID)
		if err != nil {
			return fmt.Errorf("results: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		participations, err = v.src.FetchParticipations(gctx, v.courseID)
		if err != nil {
			return fmt.Errorf("participations: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		scores, err = v.src.FetchCourseScores(gctx, v.courseID)
		if err != nil {
			return fmt.Errorf("course scores: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return v.fail(fmt.Errorf("fetch course %d: %w", v.courseID, err))
	}

	summary, ok := BuildStudentSummary(participations, results, scores)
	if !ok {
		return v.fail(nil)
	}
	breakdown := BuildExerciseTypeBreakdown(results, v.policy)
	if n := len(summary.Faults) + len(breakdown.Faults); n > 0 {
		v.log.Warn("skipped inconsistent records", zap.Int64("course", v.courseID), zap.Int("count", n))
		for _, fs := range [][]Fault{summary.Faults, breakdown.Faults} {
			for _, f := range fs {
				v.log.Debug("inconsistent record", zap.Int64("course", v.courseID), zap.Error(f))
			}
		}
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.Closed() {
		return Snapshot{}, ErrViewClosed
	}
	v.snap = Snapshot{
		LoadID:    uuid.NewString(),
		Course:    crs,
		Summary:   summary,
		Breakdown: breakdown,
		LoadedAt:  v.now().UTC(),
	}
	return v.snap, nil
}

func (v *View) fail(err error) (Snapshot, error) {
	if v.Closed() {
		return Snapshot{}, ErrViewClosed
	}
	return v.Current(), err
}

// Registry hands out one View per course.
type Registry struct {
	src    course.Source
	policy Policy
	now    func() time.Time
	log    *zap.Logger

	mu    sync.Mutex
	views map[int64]*View
}

// NewRegistry builds an empty registry. A nil logger discards.
func NewRegistry(src course.Source, policy Policy, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{src: src, policy: policy, now: time.Now, log: logger, views: map[int64]*View{}}
}

func (r *Registry) Logger() *zap.Logger { return r.log }

// Open returns the live view for courseID, creating it if needed.
func (r *Registry) Open(courseID int64) *View {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.views[courseID]; ok && !v.Closed() {
		return v
	}
	v := NewView(courseID, r.src, r.policy, r.now)
	v.log = r.log
	r.views[courseID] = v
	return v
}

// Close tears down the view for courseID. It reports whether one was open.
func (r *Registry) Close(courseID int64) bool {
	r.mu.Lock()
	v, ok := r.views[courseID]
	delete(r.views, courseID)
	r.mu.Unlock()
	if ok {
		v.Close()
	}
	return ok
}

func (r *Registry) CloseAll() {
	r.mu.Lock()
	views := r.views
	r.views = map[int64]*View{}
	r.mu.Unlock()
	for _, v := range views {
		v.Close()
	}
}
