package services

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"clipforge/models"
)

// scriptedService builds a service whose poll loop consumes a fixed
// sequence of status snapshots and counts delays instead of sleeping.
func scriptedService(maxRetries int, script []*statusSnapshot) (*AvatarService, *int, *int) {
	fetches := 0
	sleeps := 0

	s := NewAvatarService("test-key", "http://unused", 25*time.Second, maxRetries, time.Minute)
	s.sleep = func(time.Duration) { sleeps++ }
	s.fetchStatus = func(videoID string) *statusSnapshot {
		snap := script[fetches%len(script)]
		fetches++
		return snap
	}
	return s, &fetches, &sleeps
}

func TestPollCompletesAfterPendingStates(t *testing.T) {
	script := []*statusSnapshot{
		{class: classPending},
		{class: classPending},
		{class: classCompleted, videoURL: "https://cdn.example.com/v.mp4", duration: 14.2},
	}
	s, fetches, sleeps := scriptedService(100, script)

	result, err := s.Poll("vid-123")

	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/v.mp4", result.VideoURL)
	require.Equal(t, 14.2, result.Duration)
	require.Equal(t, 3, *fetches)
	require.Equal(t, 2, *sleeps, "completion must return before another delay")
}

func TestPollImmediateCompletionSkipsDelay(t *testing.T) {
	script := []*statusSnapshot{
		{class: classCompleted, videoURL: "https://cdn.example.com/v.mp4"},
	}
	s, fetches, sleeps := scriptedService(100, script)

	_, err := s.Poll("vid-123")

	require.NoError(t, err)
	require.Equal(t, 1, *fetches)
	require.Equal(t, 0, *sleeps)
}

func TestPollTimesOutAfterRetryCeiling(t *testing.T) {
	const ceiling = 5
	s, fetches, _ := scriptedService(ceiling, []*statusSnapshot{{class: classPending}})

	_, err := s.Poll("vid-123")

	var timeout *models.PollTimeoutError
	require.True(t, errors.As(err, &timeout))
	require.Equal(t, ceiling, timeout.Attempts)
	require.Equal(t, ceiling, *fetches)
}

func TestPollStopsOnTerminalFailure(t *testing.T) {
	script := []*statusSnapshot{
		{class: classPending},
		{class: classFailed, errMsg: "quota exceeded"},
	}
	s, fetches, sleeps := scriptedService(100, script)

	_, err := s.Poll("vid-123")

	var failed *models.GenerationFailedError
	require.True(t, errors.As(err, &failed))
	require.Contains(t, failed.Reason, "quota exceeded")
	require.Equal(t, 2, *fetches, "failure must stop the loop immediately")
	require.Equal(t, 1, *sleeps)
}

func TestPollFailureWithoutReason(t *testing.T) {
	s, _, _ := scriptedService(3, []*statusSnapshot{{class: classFailed}})

	_, err := s.Poll("vid-123")

	var failed *models.GenerationFailedError
	require.True(t, errors.As(err, &failed))
	require.Equal(t, "Unknown error", failed.Reason)
}

func TestPollTransientConsumesRetrySlot(t *testing.T) {
	script := []*statusSnapshot{
		{class: classTransient, errMsg: "connection reset"},
		{class: classCompleted, videoURL: "https://cdn.example.com/v.mp4"},
	}
	s, fetches, sleeps := scriptedService(2, script)

	result, err := s.Poll("vid-123")

	require.NoError(t, err)
	require.NotEmpty(t, result.VideoURL)
	require.Equal(t, 2, *fetches)
	require.Equal(t, 1, *sleeps)
}

func TestSubmitReturnsVideoID(t *testing.T) {
	var gotKey, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "POST", r.Method)
		require.Equal(t, "/v2/video/generate", r.URL.Path)
		gotKey = r.Header.Get("X-Api-Key")
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte(`{"error": null, "data": {"video_id": "vid-789"}}`))
	}))
	defer server.Close()

	s := NewAvatarService("test-key", server.URL, time.Second, 1, time.Minute)
	videoID, err := s.Submit("Hello world", "avatar-1", "voice-1")

	require.NoError(t, err)
	require.Equal(t, "vid-789", videoID)
	require.Equal(t, "test-key", gotKey)
	require.Equal(t, "application/json", gotAccept)
}

func TestSubmitRejectsProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": {"code": "invalid_avatar", "message": "avatar not found"}, "data": null}`))
	}))
	defer server.Close()

	s := NewAvatarService("test-key", server.URL, time.Second, 1, time.Minute)
	_, err := s.Submit("Hello", "bogus", "voice-1")

	var reqErr *models.GenerationRequestError
	require.True(t, errors.As(err, &reqErr))
	require.Contains(t, reqErr.Detail, "invalid_avatar")
}

func TestSubmitRejectsNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message": "invalid api key"}`))
	}))
	defer server.Close()

	s := NewAvatarService("bad-key", server.URL, time.Second, 1, time.Minute)
	_, err := s.Submit("Hello", "avatar-1", "voice-1")

	var reqErr *models.GenerationRequestError
	require.True(t, errors.As(err, &reqErr))
}

func TestSubmitRejectsMissingVideoID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": null, "data": {}}`))
	}))
	defer server.Close()

	s := NewAvatarService("test-key", server.URL, time.Second, 1, time.Minute)
	_, err := s.Submit("Hello", "avatar-1", "voice-1")

	var reqErr *models.GenerationRequestError
	require.True(t, errors.As(err, &reqErr))
}

func TestFetchRemoteStatusClassification(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expected pollClass
	}{
		{
			"Completed",
			200,
			`{"code": 100, "data": {"status": "completed", "video_url": "https://cdn.example.com/v.mp4", "duration": 8.5}}`,
			classCompleted,
		},
		{
			"Processing is pending",
			200,
			`{"code": 100, "data": {"status": "processing"}}`,
			classPending,
		},
		{
			"Failed status",
			200,
			`{"code": 100, "data": {"status": "failed", "error": {"message": "render error"}}}`,
			classFailed,
		},
		{
			"Error field fails even without failed status",
			200,
			`{"code": 100, "data": {"status": "processing", "error": {"message": "boom"}}}`,
			classFailed,
		},
		{
			"Application code rejection is transient",
			200,
			`{"code": 400112, "message": "rate limited"}`,
			classTransient,
		},
		{
			"HTTP failure is transient",
			502,
			`bad gateway`,
			classTransient,
		},
		{
			"Malformed body is transient",
			200,
			`{not json`,
			classTransient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/v1/video_status.get", r.URL.Path)
				require.Equal(t, "vid-1", r.URL.Query().Get("video_id"))
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			s := NewAvatarService("test-key", server.URL, time.Second, 1, time.Minute)
			snap := s.fetchRemoteStatus("vid-1")

			require.Equal(t, tt.expected, snap.class)
			if tt.expected == classCompleted {
				require.Equal(t, "https://cdn.example.com/v.mp4", snap.videoURL)
				require.Equal(t, 8.5, snap.duration)
			}
		})
	}
}
