package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"clipforge/models"
)

// JobState tracks an avatar generation job through its lifecycle
type JobState int

const (
	StateSubmitted JobState = iota
	StatePending
	StateCompleted
	StateFailed
	StateTimedOut
)

// pollClass is the classification of one status response
type pollClass int

const (
	classTransient pollClass = iota
	classPending
	classCompleted
	classFailed
)

// statusSnapshot is one observation of a job's remote state
type statusSnapshot struct {
	class    pollClass
	videoURL string
	duration float64
	errMsg   string
}

// okStatusCode is the provider's "request understood" application code
const okStatusCode = 100

// AvatarService submits avatar generation jobs and polls them to a
// terminal state. The sleep and status-fetch functions are injectable so
// the poll loop is deterministic under test.
type AvatarService struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client

	pollInterval time.Duration
	maxRetries   int

	sleep       func(time.Duration)
	fetchStatus func(videoID string) *statusSnapshot
}

// NewAvatarService creates an avatar service against the provider API
func NewAvatarService(apiKey, baseURL string, pollInterval time.Duration, maxRetries int, timeout time.Duration) *AvatarService {
	s := &AvatarService{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		pollInterval: pollInterval,
		maxRetries:   maxRetries,
		sleep:        time.Sleep,
	}
	s.fetchStatus = s.fetchRemoteStatus
	return s
}

// generateRequest is the provider's job submission payload
type generateRequest struct {
	VideoInputs []videoInput `json:"video_inputs"`
	Dimension   dimension    `json:"dimension"`
}

type videoInput struct {
	Character character `json:"character"`
	Voice     voice     `json:"voice"`
}

type character struct {
	Type        string `json:"type"`
	AvatarID    string `json:"avatar_id"`
	AvatarStyle string `json:"avatar_style"`
}

type voice struct {
	Type      string  `json:"type"`
	InputText string  `json:"input_text"`
	VoiceID   string  `json:"voice_id"`
	Speed     float64 `json:"speed"`
	Pitch     float64 `json:"pitch"`
}

type dimension struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type generateResponse struct {
	Error json.RawMessage `json:"error"`
	Data  struct {
		VideoID string `json:"video_id"`
	} `json:"data"`
}

type statusResponse struct {
	Code int `json:"code"`
	Data struct {
		Status   string          `json:"status"`
		VideoURL string          `json:"video_url"`
		Duration float64         `json:"duration"`
		Error    json.RawMessage `json:"error"`
	} `json:"data"`
}

// Submit sends the generation request and returns the provider's job id.
// Any non-success response or API-reported error fails fast.
func (s *AvatarService) Submit(inputText, avatarID, voiceID string) (string, error) {
	payload := generateRequest{
		VideoInputs: []videoInput{
			{
				Character: character{
					Type:        "avatar",
					AvatarID:    avatarID,
					AvatarStyle: "normal",
				},
				Voice: voice{
					Type:      "text",
					InputText: inputText,
					VoiceID:   voiceID,
					Speed:     1.0,
					Pitch:     1.0,
				},
			},
		},
		Dimension: dimension{Width: 1280, Height: 720},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", s.baseURL+"/v2/video/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	s.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", &models.GenerationRequestError{Detail: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &models.GenerationRequestError{Detail: err.Error()}
	}

	if resp.StatusCode != http.StatusOK {
		log.Error().Int("status", resp.StatusCode).Str("body", string(respBody)).Msg("Avatar API error")
		return "", &models.GenerationRequestError{Detail: string(respBody)}
	}

	var parsed generateResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", &models.GenerationRequestError{Detail: fmt.Sprintf("invalid response: %v", err)}
	}
	if hasValue(parsed.Error) {
		return "", &models.GenerationRequestError{Detail: string(parsed.Error)}
	}
	if parsed.Data.VideoID == "" {
		return "", &models.GenerationRequestError{Detail: "response carried no video id"}
	}

	return parsed.Data.VideoID, nil
}

// Poll drives the job to a terminal state: a fixed interval between
// attempts up to the retry ceiling, no backoff, matching the provider's
// polling guidance. Transient classifications consume a retry slot;
// terminal failure stops immediately.
func (s *AvatarService) Poll(videoID string) (*models.AvatarResult, error) {
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		snap := s.fetchStatus(videoID)

		switch snap.class {
		case classCompleted:
			return &models.AvatarResult{VideoURL: snap.videoURL, Duration: snap.duration}, nil
		case classFailed:
			reason := snap.errMsg
			if reason == "" {
				reason = "Unknown error"
			}
			return nil, &models.GenerationFailedError{Reason: reason}
		case classTransient:
			log.Warn().Str("video_id", videoID).Str("detail", snap.errMsg).Msg("Transient status error, retrying")
		default:
			log.Info().Str("video_id", videoID).Dur("wait", s.pollInterval).Msg("Video still processing")
		}

		s.sleep(s.pollInterval)
	}

	return nil, &models.PollTimeoutError{Attempts: s.maxRetries}
}

// fetchRemoteStatus reads and classifies the job's current remote state
func (s *AvatarService) fetchRemoteStatus(videoID string) *statusSnapshot {
	url := fmt.Sprintf("%s/v1/video_status.get?video_id=%s", s.baseURL, videoID)
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return &statusSnapshot{class: classTransient, errMsg: err.Error()}
	}
	s.setHeaders(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return &statusSnapshot{class: classTransient, errMsg: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &statusSnapshot{class: classTransient, errMsg: err.Error()}
	}
	if resp.StatusCode != http.StatusOK {
		return &statusSnapshot{class: classTransient, errMsg: string(body)}
	}

	var parsed statusResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return &statusSnapshot{class: classTransient, errMsg: err.Error()}
	}
	if parsed.Code != okStatusCode {
		return &statusSnapshot{class: classTransient, errMsg: string(body)}
	}

	if parsed.Data.Status == "completed" {
		return &statusSnapshot{
			class:    classCompleted,
			videoURL: parsed.Data.VideoURL,
			duration: parsed.Data.Duration,
		}
	}
	if parsed.Data.Status == "failed" || hasValue(parsed.Data.Error) {
		return &statusSnapshot{class: classFailed, errMsg: string(parsed.Data.Error)}
	}

	return &statusSnapshot{class: classPending}
}

// ListResource passes through a provider listing endpoint (voices,
// avatars) and returns the raw body plus the provider's status code.
func (s *AvatarService) ListResource(path string) ([]byte, int, error) {
	req, err := http.NewRequest("GET", s.baseURL+path, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	s.setHeaders(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}
	return body, resp.StatusCode, nil
}

func (s *AvatarService) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Api-Key", s.apiKey)
}

// hasValue reports whether a raw JSON field is present and not null
func hasValue(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}
