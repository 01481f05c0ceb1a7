package remote_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mind-engage/instructor-dashboard/internal/course"
	"github.com/mind-engage/instructor-dashboard/internal/course/remote"
)

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	st := &course.Student{ID: 7, Login: "ab12cde", FirstName: "Ada", LastName: "Lovelace"}
	ex := &course.Exercise{ID: 3, Title: "Sorting", Type: course.TypeProgramming}
	p := course.Participation{ID: 11, Student: st, Exercise: ex}

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("token: ParseForm: %v", err)
		}
		if r.PostForm.Get("grant_type") != "client_credentials" {
			t.Fatalf("token: unexpected grant_type=%q", r.PostForm.Get("grant_type"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"test-token","token_type":"Bearer","expires_in":3600}`))
	})
	authed := func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer test-token" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			h(w, r)
		}
	}
	mux.HandleFunc("/api/courses/1", authed(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(course.Course{ID: 1, Title: "Intro"})
	}))
	mux.HandleFunc("/api/courses/1/participations", authed(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]course.Participation{p})
	}))
	mux.HandleFunc("/api/courses/1/results", authed(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]course.Result{{ID: 21, Participation: &p, Score: 80, Successful: true}})
	}))
	mux.HandleFunc("/api/courses/1/getAllCourseScoresOfCourseUsers", authed(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]course.CourseScore{{ID: 31, Participation: &p, Score: 75}})
	}))
	mux.HandleFunc("/api/courses/2/results", authed(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	return httptest.NewServer(mux)
}

func newClient(ts *httptest.Server) *remote.Client {
	return remote.New(remote.Config{
		BaseURL:      ts.URL + "/",
		TokenURL:     ts.URL + "/oauth/token",
		ClientID:     "x",
		ClientSecret: "y",
		Timeout:      5 * time.Second,
	})
}

func TestClient_FetchesAllCollections(t *testing.T) {
	ts := newBackend(t)
	defer ts.Close()
	c := newClient(ts)
	ctx := context.Background()

	crs, err := c.FetchCourse(ctx, 1)
	if err != nil || crs.Title != "Intro" {
		t.Fatalf("FetchCourse = (%+v, %v)", crs, err)
	}
	ps, err := c.FetchParticipations(ctx, 1)
	if err != nil || len(ps) != 1 || ps[0].StudentID() != 7 {
		t.Fatalf("FetchParticipations = (%+v, %v)", ps, err)
	}
	rs, err := c.FetchResults(ctx, 1)
	if err != nil || len(rs) != 1 || !rs[0].Successful || rs[0].Participation.Exercise.Type != course.TypeProgramming {
		t.Fatalf("FetchResults = (%+v, %v)", rs, err)
	}
	ss, err := c.FetchCourseScores(ctx, 1)
	if err != nil || len(ss) != 1 || ss[0].Score != 75 {
		t.Fatalf("FetchCourseScores = (%+v, %v)", ss, err)
	}
}

func TestClient_NotFoundAndServerError(t *testing.T) {
	ts := newBackend(t)
	defer ts.Close()
	c := newClient(ts)

	if _, err := c.FetchCourse(context.Background(), 99); !remote.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := c.FetchResults(context.Background(), 2); err == nil {
		t.Fatalf("expected error on 500")
	}
}
