package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/lifttrack/internal/models"
)

// HTTPClient implements DataSource by calling the LiftTrack REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, params url.Values, payload any) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("httpclient: encode payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("httpclient: %s %s returned %d: %s", method, path, resp.StatusCode, data)
	}

	return data, nil
}

// The server resolves identity from the connection, so user IDs passed here
// are ignored on the remote side.

func (c *HTTPClient) GetOrCreateWorkout(ctx context.Context, _ int, date string) (models.Workout, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/v1/workouts", nil, map[string]string{"date": date})
	if err != nil {
		return models.Workout{}, err
	}

	var workout models.Workout
	if err := json.Unmarshal(body, &workout); err != nil {
		return models.Workout{}, fmt.Errorf("httpclient: decode workout: %w", err)
	}
	return workout, nil
}

func (c *HTTPClient) TodaysInstances(ctx context.Context, _ int, exercise, date string) ([]models.InstanceWithSets, error) {
	params := url.Values{}
	params.Set("exercise", exercise)
	params.Set("date", date)

	body, err := c.do(ctx, http.MethodGet, "/api/v1/instances", params, nil)
	if err != nil {
		return nil, err
	}

	var instances []models.InstanceWithSets
	if err := json.Unmarshal(body, &instances); err != nil {
		return nil, fmt.Errorf("httpclient: decode instances: %w", err)
	}
	return instances, nil
}

func (c *HTTPClient) CreateInstance(ctx context.Context, workoutID uuid.UUID, exercise string) (models.WorkoutExercise, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/v1/instances", nil, map[string]any{
		"workoutId": workoutID,
		"exercise":  exercise,
	})
	if err != nil {
		return models.WorkoutExercise{}, err
	}

	var instance models.WorkoutExercise
	if err := json.Unmarshal(body, &instance); err != nil {
		return models.WorkoutExercise{}, fmt.Errorf("httpclient: decode instance: %w", err)
	}
	return instance, nil
}

func (c *HTTPClient) InsertSet(ctx context.Context, workoutExerciseID uuid.UUID, reps, weight, setOrder int) (models.Set, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/v1/sets", nil, map[string]any{
		"workoutExerciseId": workoutExerciseID,
		"setOrder":          setOrder,
		"reps":              reps,
		"weight":            weight,
	})
	if err != nil {
		return models.Set{}, err
	}

	var set models.Set
	if err := json.Unmarshal(body, &set); err != nil {
		return models.Set{}, fmt.Errorf("httpclient: decode set: %w", err)
	}
	return set, nil
}

func (c *HTTPClient) GetExerciseSettings(ctx context.Context, _ int, exercise string) (models.ExerciseSettings, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/v1/settings/"+url.PathEscape(exercise), nil, nil)
	if err != nil {
		return models.ExerciseSettings{}, err
	}

	var settings models.ExerciseSettings
	if err := json.Unmarshal(body, &settings); err != nil {
		return models.ExerciseSettings{}, fmt.Errorf("httpclient: decode settings: %w", err)
	}
	return settings, nil
}

func (c *HTTPClient) QueryAllWorkouts(ctx context.Context, _ int) ([]models.WorkoutWithExercises, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/v1/workouts", nil, nil)
	if err != nil {
		return nil, err
	}

	var workouts []models.WorkoutWithExercises
	if err := json.Unmarshal(body, &workouts); err != nil {
		return nil, fmt.Errorf("httpclient: decode workouts: %w", err)
	}
	return workouts, nil
}
