// Package remote implements the HTTP client for the external analysis
// service that classifies entries and generates reflections.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/bytebender77/MindMate/internal/apperr"
)

// EntryPayload is the wire shape of one journal entry as the service returns
// it. EmotionMetadata and EmotionScores are kept raw: the two historical
// formats are reconciled downstream by the normalizer, never here.
type EntryPayload struct {
	ID                 json.Number     `json:"id"`
	Content            string          `json:"content"`
	Emotion            string          `json:"emotion"`
	EmotionMetadata    json.RawMessage `json:"emotion_metadata,omitempty"`
	EmotionScores      json.RawMessage `json:"emotion_scores,omitempty"`
	Reflection         string          `json:"reflection,omitempty"`
	ReflectionMetadata json.RawMessage `json:"reflection_metadata,omitempty"`
	CreatedAt          string          `json:"created_at"`
	IsVoice            bool            `json:"is_voice"`
	UserID             string          `json:"user_id,omitempty"`
}

// TrendPoint is one day in the mood-stats trend.
type TrendPoint struct {
	Date       string   `json:"date"`
	Emotion    string   `json:"emotion"`
	Confidence *float64 `json:"confidence"`
}

// MoodStats is the pre-aggregated statistics payload.
type MoodStats struct {
	TotalEntries int            `json:"total_entries"`
	Distribution map[string]int `json:"emotion_distribution"`
	WeeklyTrend  []TrendPoint   `json:"weekly_trend"`
}

// Classification is a classify-emotion response: the primary label plus the
// raw structured metadata body.
type Classification struct {
	Emotion string
	Raw     json.RawMessage
}

// ProviderStatus describes the active classification backend.
type ProviderStatus struct {
	Current   string   `json:"current_provider"`
	Available []string `json:"available_providers"`
	Message   string   `json:"message"`
}

// Client talks to the analysis service. Timeout policy lives on the injected
// http.Client; this layer defines none of its own.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// New creates a client for the service at baseURL. httpc == nil uses
// http.DefaultClient.
func New(baseURL string, httpc *http.Client) *Client {
	if httpc == nil {
		httpc = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpc: httpc}
}

// CreateEntry submits content for classification and reflection generation.
func (c *Client) CreateEntry(ctx context.Context, content string, isVoice bool) (*EntryPayload, error) {
	body := map[string]any{"content": content, "is_voice": isVoice}
	var out EntryPayload
	if err := c.postJSON(ctx, "/journal/create", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListEntries fetches up to limit most recent entries, newest first.
func (c *Client) ListEntries(ctx context.Context, limit int) ([]EntryPayload, error) {
	var out []EntryPayload
	path := "/journal/history?limit=" + strconv.Itoa(limit)
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetEntry fetches one entry by id.
func (c *Client) GetEntry(ctx context.Context, id string) (*EntryPayload, error) {
	var out EntryPayload
	if err := c.getJSON(ctx, "/journal/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MoodStats fetches pre-aggregated statistics for the past days.
func (c *Client) MoodStats(ctx context.Context, days int) (*MoodStats, error) {
	var out MoodStats
	path := "/mood/stats?days=" + strconv.Itoa(days)
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Classify runs emotion classification on text without creating an entry.
func (c *Client) Classify(ctx context.Context, text string) (*Classification, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/analysis/emotion-v2", jsonBody(map[string]string{"text": text}))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	raw, err := c.do(req)
	if err != nil {
		return nil, err
	}
	var head struct {
		Emotion string `json:"emotion"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, apperr.Remote("", fmt.Errorf("decode classification: %w", err))
	}
	return &Classification{Emotion: head.Emotion, Raw: raw}, nil
}

// Transcribe converts an audio recording to text. The audio stream is passed
// through untouched.
func (c *Client) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("audio", filename)
	if err != nil {
		return "", apperr.Remote("", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return "", apperr.Remote("", err)
	}
	if err := mw.Close(); err != nil {
		return "", apperr.Remote("", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/analysis/speech-to-text", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	raw, err := c.do(req)
	if err != nil {
		return "", err
	}
	var out struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", apperr.Remote("", fmt.Errorf("decode transcription: %w", err))
	}
	return out.Text, nil
}

// Provider returns the active classification backend.
func (c *Client) Provider(ctx context.Context) (*ProviderStatus, error) {
	var out ProviderStatus
	if err := c.getJSON(ctx, "/settings/provider", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetProvider switches the active classification backend.
func (c *Client) SetProvider(ctx context.Context, name string) (*ProviderStatus, error) {
	var out ProviderStatus
	if err := c.postJSON(ctx, "/settings/provider", map[string]string{"provider": name}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, apperr.Remote("", err)
	}
	return req, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	raw, err := c.do(req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperr.Remote("", fmt.Errorf("decode %s: %w", path, err))
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	req, err := c.newRequest(ctx, http.MethodPost, path, jsonBody(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	raw, err := c.do(req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperr.Remote("", fmt.Errorf("decode %s: %w", path, err))
	}
	return nil
}

// do executes the request and maps failures into the apperr taxonomy. The
// service reports failures as {"detail": "..."}; that detail is the only
// message ever surfaced to callers — raw transport errors stay wrapped.
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, apperr.Remote("", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, apperr.Remote("", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, apperr.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var fail struct {
			Detail string `json:"detail"`
		}
		_ = json.Unmarshal(body, &fail)
		return nil, apperr.Remote(fail.Detail, fmt.Errorf("status %d", resp.StatusCode))
	}
	return body, nil
}

func jsonBody(v any) io.Reader {
	raw, _ := json.Marshal(v)
	return bytes.NewReader(raw)
}
