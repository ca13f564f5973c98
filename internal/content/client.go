// Package content talks to the hosted content store that holds the
// exercise library and persisted workout documents. Documents are
// schema-tagged JSON objects addressed by GROQ queries; writes go through
// the mutation endpoint and need an API token.
package content

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

	"github.com/claude/liftlog/internal/models"
)

// Config identifies the project and dataset to talk to. Token is only
// needed for mutations.
type Config struct {
	BaseURL    string
	ProjectID  string
	Dataset    string
	APIVersion string
	Token      string
}

// Client is an HTTP client for the content store.
type Client struct {
	baseURL    string
	dataset    string
	apiVersion string
	token      string
	httpClient *http.Client
}

// New creates a Client. If cfg.BaseURL is empty, the hosted endpoint for
// cfg.ProjectID is used.
func New(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = fmt.Sprintf("https://%s.api.sanity.io", cfg.ProjectID)
	}
	return &Client{
		baseURL:    strings.TrimRight(base, "/"),
		dataset:    cfg.Dataset,
		apiVersion: cfg.APIVersion,
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// query runs a GROQ query and decodes the result into out. Params are
// bound as JSON-encoded $-variables.
func (c *Client) query(ctx context.Context, groq string, params map[string]any, out any) error {
	values := url.Values{}
	values.Set("query", groq)
	for name, v := range params {
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("content: encoding param %s: %w", name, err)
		}
		values.Set("$"+name, string(encoded))
	}

	u := fmt.Sprintf("%s/%s/data/query/%s?%s", c.baseURL, c.apiVersion, c.dataset, values.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("content: create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	body, err := c.do(req)
	if err != nil {
		return err
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("content: decoding query response: %w", err)
	}
	if len(envelope.Result) == 0 || string(envelope.Result) == "null" {
		return nil
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return fmt.Errorf("content: decoding query result: %w", err)
	}
	return nil
}

// mutation is one entry in a mutate request, e.g. {"create": doc}.
type mutation map[string]any

// mutate posts mutations to the store and returns the affected document ids.
func (c *Client) mutate(ctx context.Context, mutations []mutation) ([]string, error) {
	payload, err := json.Marshal(map[string]any{"mutations": mutations})
	if err != nil {
		return nil, fmt.Errorf("content: encoding mutations: %w", err)
	}

	u := fmt.Sprintf("%s/%s/data/mutate/%s?returnIds=true", c.baseURL, c.apiVersion, c.dataset)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("content: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var result struct {
		Results []struct {
			ID string `json:"id"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("content: decoding mutate response: %w", err)
	}

	ids := make([]string, 0, len(result.Results))
	for _, r := range result.Results {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("content: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("content: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("content: %s returned %d: %s", req.URL.Path, resp.StatusCode, body)
	}
	return body, nil
}

// GROQ queries, kept in one place like the app screens that issued them.
const (
	findExerciseByNameQuery = `*[_type == "exercise" && name == $name][0]{_id, name}`

	listExercisesQuery = `*[_type == "exercise" && isActive == true] | order(name asc){
		_id, name, description, difficulty, image, videoUrl, isActive}`

	getExerciseQuery = `*[_type == "exercise" && _id == $id][0]{
		_id, name, description, difficulty, image, videoUrl, isActive}`

	workoutsByUserQuery = `*[_type == "workout" && userId == $userId] | order(date desc){
		_id, date, duration,
		exercises[]{_key, exercise->{_id, name, description}, sets[]{_type, _key, reps, weight, weightUnit}}}`

	getWorkoutRecordQuery = `*[_type == "workout" && _id == $workoutId][0]{
		_id, date, duration,
		exercises[]{_key, exercise->{_id, name, description}, sets[]{_type, _key, reps, weight, weightUnit}}}`
)

// ExerciseByName looks up a library entry by exact, case-sensitive name.
// Returns (nil, nil) when no entry matches.
func (c *Client) ExerciseByName(ctx context.Context, name string) (*models.ExerciseDoc, error) {
	var doc models.ExerciseDoc
	if err := c.query(ctx, findExerciseByNameQuery, map[string]any{"name": name}, &doc); err != nil {
		return nil, err
	}
	if doc.ID == "" {
		return nil, nil
	}
	return &doc, nil
}

// ListExercises returns all active library entries, ordered by name.
func (c *Client) ListExercises(ctx context.Context) ([]models.ExerciseDoc, error) {
	var docs []models.ExerciseDoc
	if err := c.query(ctx, listExercisesQuery, nil, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// ExerciseByID returns one library entry, or (nil, nil) if absent.
func (c *Client) ExerciseByID(ctx context.Context, id string) (*models.ExerciseDoc, error) {
	var doc models.ExerciseDoc
	if err := c.query(ctx, getExerciseQuery, map[string]any{"id": id}, &doc); err != nil {
		return nil, err
	}
	if doc.ID == "" {
		return nil, nil
	}
	return &doc, nil
}

// WorkoutsByUser returns a user's persisted workouts, newest first.
func (c *Client) WorkoutsByUser(ctx context.Context, userID string) ([]models.WorkoutRecord, error) {
	var records []models.WorkoutRecord
	if err := c.query(ctx, workoutsByUserQuery, map[string]any{"userId": userID}, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// WorkoutByID returns one persisted workout with exercise references
// followed, or (nil, nil) if absent.
func (c *Client) WorkoutByID(ctx context.Context, id string) (*models.WorkoutRecord, error) {
	var record models.WorkoutRecord
	if err := c.query(ctx, getWorkoutRecordQuery, map[string]any{"workoutId": id}, &record); err != nil {
		return nil, err
	}
	if record.ID == "" {
		return nil, nil
	}
	return &record, nil
}

// CreateWorkout writes a workout document and returns its new id.
func (c *Client) CreateWorkout(ctx context.Context, doc *models.WorkoutDoc) (string, error) {
	ids, err := c.mutate(ctx, []mutation{{"create": doc}})
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", fmt.Errorf("content: create returned no document id")
	}
	return ids[0], nil
}

// DeleteWorkout removes a workout document. Deleting an absent id is not
// an error on the store side; the caller re-fetches its history either way.
func (c *Client) DeleteWorkout(ctx context.Context, id string) error {
	_, err := c.mutate(ctx, []mutation{{"delete": map[string]string{"id": id}}})
	return err
}
