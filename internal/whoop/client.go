// Package whoop integrates the wearable vendor's OAuth-protected REST API.
package whoop

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/journallm/journallm/internal/model"
)

const (
	DefaultAPIBaseURL = "https://api.prod.whoop.com/developer"
	DefaultLimit      = 25
	MaxLimit          = 100
)

// Query selects one page of a collection. Zero Start/End are omitted.
type Query struct {
	Start     time.Time
	End       time.Time
	Limit     int
	NextToken string
}

func (q Query) params() map[string]string {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	p := map[string]string{"limit": strconv.Itoa(limit)}
	if !q.Start.IsZero() {
		p["start"] = q.Start.Format(model.DateLayout) + "T00:00:00.000Z"
	}
	if !q.End.IsZero() {
		p["end"] = q.End.Format(model.DateLayout) + "T23:59:59.999Z"
	}
	if q.NextToken != "" {
		p["nextToken"] = q.NextToken
	}
	return p
}

// APIError reports a non-success status from the vendor API.
type APIError struct {
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("whoop %s: status %d: %s", e.Path, e.StatusCode, e.Body)
}

// Client reads user data with a bearer token.
type Client struct {
	http *resty.Client
}

func NewClient(baseURL, accessToken string) *Client {
	if baseURL == "" {
		baseURL = DefaultAPIBaseURL
	}
	c := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(accessToken).
		SetHeader("Content-Type", "application/json").
		SetTimeout(30 * time.Second)
	return &Client{http: c}
}

// get decodes the JSON body of path into out. A 404 leaves out untouched.
func (c *Client) get(ctx context.Context, path string, params map[string]string, out any) error {
	resp, err := c.http.R().SetContext(ctx).SetQueryParams(params).Get(path)
	if err != nil {
		return fmt.Errorf("whoop %s: %w", path, err)
	}
	switch {
	case resp.StatusCode() == http.StatusNotFound:
		// returned when no data exists for the query
		return nil
	case resp.StatusCode() < 200 || resp.StatusCode() >= 300:
		return &APIError{Path: path, StatusCode: resp.StatusCode(), Body: resp.String()}
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("whoop %s: decode: %w", path, err)
	}
	return nil
}

func (c *Client) Profile(ctx context.Context) (*UserProfile, error) {
	var p UserProfile
	if err := c.getRequired(ctx, "/v1/user/profile/basic", &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// BodyMeasurement requires the read:body_measurement scope.
func (c *Client) BodyMeasurement(ctx context.Context) (*BodyMeasurement, error) {
	var b BodyMeasurement
	if err := c.getRequired(ctx, "/v1/user/measurement/body", &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// getRequired treats 404 as an error for single-object endpoints.
func (c *Client) getRequired(ctx context.Context, path string, out any) error {
	resp, err := c.http.R().SetContext(ctx).Get(path)
	if err != nil {
		return fmt.Errorf("whoop %s: %w", path, err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return &APIError{Path: path, StatusCode: resp.StatusCode(), Body: resp.String()}
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("whoop %s: decode: %w", path, err)
	}
	return nil
}

func fetchPage[T any](ctx context.Context, c *Client, path string, q Query) ([]T, string, error) {
	var p page[T]
	if err := c.get(ctx, path, q.params(), &p); err != nil {
		return nil, "", err
	}
	if p.Records == nil {
		p.Records = []T{}
	}
	return p.Records, p.NextToken, nil
}

// fetchAll follows continuation tokens until none is returned. There is no
// page cap.
func fetchAll[T any](ctx context.Context, c *Client, path string, start, end time.Time) ([]T, error) {
	all := []T{}
	q := Query{Start: start, End: end}
	for {
		records, next, err := fetchPage[T](ctx, c, path, q)
		if err != nil {
			return nil, err
		}
		all = append(all, records...)
		if next == "" {
			return all, nil
		}
		q.NextToken = next
	}
}

const (
	cyclePath    = "/v1/cycle"
	sleepPath    = "/v2/activity/sleep"
	recoveryPath = "/v2/recovery"
	workoutPath  = "/v2/activity/workout"
)

func (c *Client) Cycles(ctx context.Context, q Query) ([]Cycle, string, error) {
	return fetchPage[Cycle](ctx, c, cyclePath, q)
}

func (c *Client) Sleep(ctx context.Context, q Query) ([]Sleep, string, error) {
	return fetchPage[Sleep](ctx, c, sleepPath, q)
}

func (c *Client) Recovery(ctx context.Context, q Query) ([]Recovery, string, error) {
	return fetchPage[Recovery](ctx, c, recoveryPath, q)
}

func (c *Client) Workouts(ctx context.Context, q Query) ([]Workout, string, error) {
	return fetchPage[Workout](ctx, c, workoutPath, q)
}

func (c *Client) AllCycles(ctx context.Context, start, end time.Time) ([]Cycle, error) {
	return fetchAll[Cycle](ctx, c, cyclePath, start, end)
}

func (c *Client) AllSleep(ctx context.Context, start, end time.Time) ([]Sleep, error) {
	return fetchAll[Sleep](ctx, c, sleepPath, start, end)
}

func (c *Client) AllRecovery(ctx context.Context, start, end time.Time) ([]Recovery, error) {
	return fetchAll[Recovery](ctx, c, recoveryPath, start, end)
}

func (c *Client) AllWorkouts(ctx context.Context, start, end time.Time) ([]Workout, error) {
	return fetchAll[Workout](ctx, c, workoutPath, start, end)
}
