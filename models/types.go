package models

// GenerateVideoResponse is returned by the generate-video endpoints
type GenerateVideoResponse struct {
	Status          string            `json:"status"`
	Message         string            `json:"message"`
	VideoURL        string            `json:"video_url"`
	DownloadURL     string            `json:"download_url"`
	Duration        float64           `json:"duration"`
	DetectedFormats map[string]string `json:"detected_formats"`
}

// AvatarVideoRequest is the JSON body of POST /generate-avatar-video
type AvatarVideoRequest struct {
	ImageURL  string `json:"image_url" binding:"required"`
	InputText string `json:"input_text" binding:"required"`
	AvatarID  string `json:"avatar_id" binding:"required"`
	VoiceID   string `json:"voice_id" binding:"required"`
}

// Base64Request is the JSON body of POST /convert-to-base64
type Base64Request struct {
	DriveURL string `json:"drive_url" binding:"required"`
}

// Base64Response carries the encoded payload
type Base64Response struct {
	Base64 string `json:"base64"`
}

// SupportedFormatsResponse lists the accepted format tokens
type SupportedFormatsResponse struct {
	ImageFormats []string `json:"image_formats"`
	AudioFormats []string `json:"audio_formats"`
}

// MediaClass selects the default-format fallback for downloads
type MediaClass int

const (
	MediaImage MediaClass = iota
	MediaAudio
	MediaVideo
)

func (c MediaClass) String() string {
	switch c {
	case MediaImage:
		return "image"
	case MediaAudio:
		return "audio"
	case MediaVideo:
		return "video"
	}
	return "unknown"
}

// Segment is one timed transcription fragment
type Segment struct {
	Start float64
	End   float64
	Text  string
}

// UploadResult holds the two public URLs derived from the storage
// provider's file id
type UploadResult struct {
	ShareableLink string
	DownloadLink  string
}

// AvatarResult is the terminal output of a completed avatar job
type AvatarResult struct {
	VideoURL string
	Duration float64
}
