package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mind-engage/instructor-dashboard/internal/course"
	"golang.org/x/oauth2/clientcredentials"
)

// Client reads course data from the course backend's REST API.
type Client struct {
	base string
	http *http.Client
}

type Config struct {
	BaseURL string
	// TokenURL enables OAuth2 client credentials; empty means unauthenticated.
	TokenURL     string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

func New(cfg Config) *Client {
	var h *http.Client
	if cfg.TokenURL != "" {
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
		}
		h = cc.Client(context.Background())
	} else {
		h = &http.Client{}
	}
	if cfg.Timeout > 0 {
		h.Timeout = cfg.Timeout
	}
	return &Client{base: strings.TrimSuffix(cfg.BaseURL, "/"), http: h}
}

func (c *Client) FetchCourse(ctx context.Context, courseID int64) (course.Course, error) {
	var out course.Course
	err := c.getJSON(ctx, fmt.Sprintf("/api/courses/%d", courseID), &out)
	return out, err
}

func (c *Client) FetchParticipations(ctx context.Context, courseID int64) ([]course.Participation, error) {
	var out []course.Participation
	err := c.getJSON(ctx, fmt.Sprintf("/api/courses/%d/participations", courseID), &out)
	return out, err
}

func (c *Client) FetchResults(ctx context.Context, courseID int64) ([]course.Result, error) {
	var out []course.Result
	err := c.getJSON(ctx, fmt.Sprintf("/api/courses/%d/results", courseID), &out)
	return out, err
}

func (c *Client) FetchCourseScores(ctx context.Context, courseID int64) ([]course.CourseScore, error) {
	var out []course.CourseScore
	err := c.getJSON(ctx, fmt.Sprintf("/api/courses/%d/getAllCourseScoresOfCourseUsers", courseID), &out)
	return out, err
}

func (c *Client) getJSON(ctx context.Context, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return course.ErrCourseNotFound
	}
	if res.StatusCode/100 != 2 {
		return fmt.Errorf("GET %s: %s", path, res.Status)
	}
	if err := json.NewDecoder(res.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

var _ course.Source = (*Client)(nil)

// IsNotFound reports whether err came from a 404 on the backend.
func IsNotFound(err error) bool { return errors.Is(err, course.ErrCourseNotFound) }
