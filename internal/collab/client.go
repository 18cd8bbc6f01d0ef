package collab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Client talks to the collaborator service over its documented JSON contracts.
// It is safe for concurrent use; the bearer token is the only mutable state.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// SetToken installs the bearer token used on authenticated calls.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// ClearToken removes the bearer token.
func (c *Client) ClearToken() {
	c.SetToken("")
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// errorBody covers both the simulator's {"error":true,"message":...} shape and
// the production collaborator's {"detail":...} shape.
type errorBody struct {
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

func (c *Client) do(ctx context.Context, method, path string, payload, out interface{}) error {
	var body *bytes.Buffer
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewBuffer(data)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("prepare request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if tok := c.bearer(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("collaborator unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.NewDecoder(resp.Body).Decode(&eb)
		msg := eb.Message
		if msg == "" {
			msg = eb.Detail
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// --- Authentication ---

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	payload := map[string]string{"email": email, "password": password}
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/login", payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Profile(ctx context.Context) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/api/profile", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// --- Questionnaires ---

// SubmitAssessment posts the full response map for the given instrument kind
// and returns the collaborator's score verbatim. Subscale groupings ride along
// for analytics only; the collaborator ignores them when scoring.
func (c *Client) SubmitAssessment(ctx context.Context, kind string, responses map[int]int, subscales map[string][]int) (*ScoreResult, error) {
	var path string
	switch kind {
	case "DASS-21":
		path = "/api/submit-dass21"
	case "PHQ-9":
		path = "/api/submit-phq9"
	default:
		return nil, fmt.Errorf("unknown instrument kind %q", kind)
	}

	payload := map[string]interface{}{"responses": responses}
	if len(subscales) > 0 {
		payload["subscales"] = subscales
	}

	var result ScoreResult
	if err := c.do(ctx, http.MethodPost, path, payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SubmitDASS21 scores a complete DASS-21 response set.
func (c *Client) SubmitDASS21(ctx context.Context, responses map[int]int, subscales map[string][]int) (*ScoreResult, error) {
	return c.SubmitAssessment(ctx, "DASS-21", responses, subscales)
}

// SubmitPHQ9 scores a complete PHQ-9 response set.
func (c *Client) SubmitPHQ9(ctx context.Context, responses map[int]int, subscales map[string][]int) (*ScoreResult, error) {
	return c.SubmitAssessment(ctx, "PHQ-9", responses, subscales)
}

func (c *Client) Assessments(ctx context.Context) ([]AssessmentRecord, error) {
	var records []AssessmentRecord
	if err := c.do(ctx, http.MethodGet, "/api/assessments", nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// --- Daily trackers ---

func (c *Client) SaveMood(ctx context.Context, level int, note string) error {
	payload := map[string]interface{}{"mood_level": level, "note": note}
	return c.do(ctx, http.MethodPost, "/api/mood-entry", payload, nil)
}

func (c *Client) MoodEntries(ctx context.Context) ([]MoodEntry, error) {
	var entries []MoodEntry
	if err := c.do(ctx, http.MethodGet, "/api/mood-entries", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) SaveSleep(ctx context.Context, hours float64, quality int, note string) error {
	payload := map[string]interface{}{"hours": hours, "quality": quality, "note": note}
	return c.do(ctx, http.MethodPost, "/api/sleep-entry", payload, nil)
}

func (c *Client) SleepEntries(ctx context.Context) ([]SleepEntry, error) {
	var entries []SleepEntry
	if err := c.do(ctx, http.MethodGet, "/api/sleep-entries", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) SaveReflection(ctx context.Context, text string) error {
	payload := map[string]string{"text": text}
	return c.do(ctx, http.MethodPost, "/api/daily-reflection", payload, nil)
}

func (c *Client) Reflections(ctx context.Context) ([]ReflectionEntry, error) {
	var entries []ReflectionEntry
	if err := c.do(ctx, http.MethodGet, "/api/daily-reflections", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// --- Support chat ---

func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	payload := map[string]string{"message": message}
	var resp struct {
		Response string `json:"response"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/chat", payload, &resp); err != nil {
		return "", err
	}
	return resp.Response, nil
}

// --- Derived views ---

func (c *Client) Plan(ctx context.Context) (*Plan, error) {
	var p Plan
	if err := c.do(ctx, http.MethodGet, "/api/mental-health-plan", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) Journeys(ctx context.Context) ([]Journey, error) {
	var js []Journey
	if err := c.do(ctx, http.MethodGet, "/api/journeys", nil, &js); err != nil {
		return nil, err
	}
	return js, nil
}

func (c *Client) Gamification(ctx context.Context) (*GamificationSnapshot, error) {
	var snap GamificationSnapshot
	if err := c.do(ctx, http.MethodGet, "/api/gamification", nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// --- Chat memory ---

func (c *Client) Memory(ctx context.Context) (map[string]interface{}, error) {
	var mem map[string]interface{}
	if err := c.do(ctx, http.MethodGet, "/api/memory", nil, &mem); err != nil {
		return nil, err
	}
	return mem, nil
}

func (c *Client) UpdateMemory(ctx context.Context, memory map[string]interface{}) (map[string]interface{}, error) {
	payload := map[string]interface{}{"memory": memory}
	var resp struct {
		Memory map[string]interface{} `json:"memory"`
	}
	if err := c.do(ctx, http.MethodPut, "/api/memory", payload, &resp); err != nil {
		return nil, err
	}
	return resp.Memory, nil
}

// Health checks the collaborator's liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/health", nil, nil)
}
