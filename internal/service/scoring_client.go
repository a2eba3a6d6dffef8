package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/lshigami/ToeicGenius/config"
	"github.com/rs/zerolog/log"
)

// ScoreOutcome is one scoring-service verdict. OverallScore is raw 0-100;
// the structured fields are kept as raw JSON and persisted verbatim.
type ScoreOutcome struct {
	OverallScore     float64         `json:"overall_score"`
	DetailedScores   json.RawMessage `json:"detailed_scores,omitempty"`
	DetailedAnalysis json.RawMessage `json:"detailed_analysis,omitempty"`
	Recommendations  json.RawMessage `json:"recommendations,omitempty"`
	Transcription    *string         `json:"transcription,omitempty"`
	CorrectedText    *string         `json:"corrected_text,omitempty"`
	Raw              json.RawMessage `json:"-"`
}

// WritingScorerClient scores a written answer against its task prompt.
type WritingScorerClient interface {
	ScoreText(ctx context.Context, partType, question, answerText string) (*ScoreOutcome, error)
	CheckHealth(ctx context.Context) error
}

// SpeakingScorerClient scores a spoken answer. Only the audio URL is
// sent; the scoring service fetches the bytes itself.
type SpeakingScorerClient interface {
	ScoreAudio(ctx context.Context, partType, question, audioFileURL string) (*ScoreOutcome, error)
	CheckHealth(ctx context.Context) error
}

type writingScorerClient struct {
	baseURL string
	client  *http.Client
}

func NewWritingScorerClient(cfg *config.Config) WritingScorerClient {
	return &writingScorerClient{
		baseURL: cfg.Assessment.WritingApiUrl,
		client:  &http.Client{Timeout: cfg.Assessment.Timeout},
	}
}

func (c *writingScorerClient) ScoreText(ctx context.Context, partType, question, answerText string) (*ScoreOutcome, error) {
	payload := map[string]string{
		"part_type":   partType,
		"question":    question,
		"answer_text": answerText,
	}
	return postAssessment(ctx, c.client, c.baseURL, payload)
}

func (c *writingScorerClient) CheckHealth(ctx context.Context) error {
	return checkScorerHealth(ctx, c.client, c.baseURL)
}

type speakingScorerClient struct {
	baseURL string
	client  *http.Client
}

func NewSpeakingScorerClient(cfg *config.Config) SpeakingScorerClient {
	return &speakingScorerClient{
		baseURL: cfg.Assessment.SpeakingApiUrl,
		client:  &http.Client{Timeout: cfg.Assessment.Timeout},
	}
}

func (c *speakingScorerClient) ScoreAudio(ctx context.Context, partType, question, audioFileURL string) (*ScoreOutcome, error) {
	payload := map[string]string{
		"part_type":      partType,
		"question":       question,
		"audio_file_url": audioFileURL,
	}
	return postAssessment(ctx, c.client, c.baseURL, payload)
}

func (c *speakingScorerClient) CheckHealth(ctx context.Context) error {
	return checkScorerHealth(ctx, c.client, c.baseURL)
}

func checkScorerHealth(ctx context.Context, client *http.Client, baseURL string) error {
	if baseURL == "" {
		return fmt.Errorf("scoring service URL is not configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to build health request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("scoring service unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("scoring service health returned status %d", resp.StatusCode)
	}
	return nil
}

func postAssessment(ctx context.Context, client *http.Client, baseURL string, payload map[string]string) (*ScoreOutcome, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("scoring service URL is not configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode scoring request: %w", err)
	}

	url := baseURL + "/assess"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build scoring request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scoring service call failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read scoring response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		log.Warn().Int("status", resp.StatusCode).Str("url", url).Msg("Scoring service returned non-OK status")
		return nil, fmt.Errorf("scoring service returned status %d", resp.StatusCode)
	}

	var outcome ScoreOutcome
	if err := json.Unmarshal(respBody, &outcome); err != nil {
		return nil, fmt.Errorf("failed to decode scoring response: %w", err)
	}
	if outcome.OverallScore < 0 || outcome.OverallScore > 100 {
		return nil, fmt.Errorf("scoring service returned out-of-range score %.2f", outcome.OverallScore)
	}
	outcome.Raw = respBody
	return &outcome, nil
}
