package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"clipforge/config"
	"clipforge/models"
	"clipforge/services"
	"clipforge/utils"
)

// AvatarHandler handles avatar video generation and provider listings
type AvatarHandler struct {
	cfg         *config.Config
	fetcher     *utils.Fetcher
	ffmpeg      *utils.FFmpeg
	transcriber services.Transcriber
	publisher   services.Publisher
	avatar      *services.AvatarService
}

// NewAvatarHandler creates a new avatar handler
func NewAvatarHandler(cfg *config.Config) *AvatarHandler {
	return &AvatarHandler{
		cfg:         cfg,
		fetcher:     utils.NewFetcher(cfg.DownloadTimeout),
		ffmpeg:      utils.NewFFmpeg(utils.ExecRunner{}),
		transcriber: services.NewWhisperTranscriber(cfg.OpenAIAPIKey),
		publisher:   services.NewDriveService(cfg.Drive),
		avatar: services.NewAvatarService(
			cfg.AvatarAPIKey,
			cfg.AvatarBaseURL,
			cfg.PollInterval,
			cfg.PollMaxRetries,
			cfg.AvatarAPITimeout,
		),
	}
}

// GenerateAvatarVideo handles POST /generate-avatar-video: a background
// image plus a script become a talking-avatar clip composited over the
// image with burned-in subtitles.
func (h *AvatarHandler) GenerateAvatarVideo(c *gin.Context) {
	var req models.AvatarVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request: " + err.Error()})
		return
	}

	log.Info().Msg("Downloading image...")
	imageData, imageFormat, err := h.fetcher.Download(req.ImageURL, models.MediaImage)
	if err != nil {
		abortWithError(c, err)
		return
	}

	if !utils.FormatAllowed(imageFormat, h.cfg.ImageFormats) {
		abortWithError(c, &models.UnsupportedFormatError{Class: "image", Format: imageFormat})
		return
	}

	ws := utils.NewWorkspace(h.cfg.TempDir, h.cfg.MaxFileSizeMB)
	defer ws.Cleanup()

	imagePath, err := ws.Save("temp_image", imageFormat, imageData)
	if err != nil {
		abortWithError(c, err)
		return
	}

	log.Info().Msg("Generating AI avatar video...")
	videoID, err := h.avatar.Submit(req.InputText, req.AvatarID, req.VoiceID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	log.Info().Str("video_id", videoID).Msg("Waiting for avatar video to complete...")
	result, err := h.avatar.Poll(videoID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	log.Info().Str("url", result.VideoURL).Msg("Downloading avatar video")
	avatarVideoPath := ws.Path("avatar_video", "mp4")
	if err := h.fetcher.DownloadToFile(result.VideoURL, avatarVideoPath); err != nil {
		abortWithError(c, err)
		return
	}

	log.Info().Msg("Extracting audio from avatar video...")
	avatarAudioPath := ws.Path("avatar_audio", "wav")
	if err := h.ffmpeg.ExtractAudio(avatarVideoPath, avatarAudioPath); err != nil {
		abortWithError(c, err)
		return
	}

	log.Info().Msg("Removing background from avatar video...")
	frameDir, err := ws.Dir("temp_frames")
	if err != nil {
		abortWithError(c, err)
		return
	}
	transparentPath := ws.Path("transparent_avatar", "mp4")
	if err := h.ffmpeg.RemoveBackground(avatarVideoPath, transparentPath, frameDir); err != nil {
		abortWithError(c, err)
		return
	}

	log.Info().Msg("Transcribing avatar audio...")
	segments, err := h.transcriber.Transcribe(c.Request.Context(), avatarAudioPath)
	if err != nil {
		abortWithError(c, err)
		return
	}
	srtPath := ws.Path("sub", "srt")
	if err := services.WriteSRT(segments, srtPath); err != nil {
		abortWithError(c, err)
		return
	}

	log.Info().Msg("Creating video with avatar overlay...")
	overlayPath := ws.Path("temp_video", "mp4")
	if err := h.ffmpeg.OverlayAvatar(imagePath, transparentPath, avatarAudioPath, overlayPath); err != nil {
		abortWithError(c, err)
		return
	}

	log.Info().Msg("Adding subtitles and watermark...")
	finalPath := ws.Path("output_video", "mp4")
	if err := h.ffmpeg.BurnSubtitles(overlayPath, srtPath, h.cfg.WatermarkPath, finalPath); err != nil {
		abortWithError(c, err)
		return
	}

	log.Info().Msg("Uploading video to Google Drive...")
	links, err := h.publisher.Upload(c.Request.Context(), finalPath, "video/mp4")
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.GenerateVideoResponse{
		Status:      "success",
		Message:     "Avatar video created and uploaded successfully",
		VideoURL:    links.ShareableLink,
		DownloadURL: links.DownloadLink,
		Duration:    result.Duration,
		DetectedFormats: map[string]string{
			"image": imageFormat,
		},
	})
}

// ListVoices handles GET /available-voices and GET /voices
func (h *AvatarHandler) ListVoices(c *gin.Context) {
	h.passThrough(c, "/v2/voices", "Failed to fetch voices")
}

// ListAvatars handles GET /avatars
func (h *AvatarHandler) ListAvatars(c *gin.Context) {
	h.passThrough(c, "/v2/avatars", "Failed to fetch avatars")
}

// passThrough relays a provider listing, preserving its status code
func (h *AvatarHandler) passThrough(c *gin.Context, path, failureDetail string) {
	body, status, err := h.avatar.ListResource(path)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if status != http.StatusOK {
		c.JSON(status, gin.H{"detail": failureDetail})
		return
	}
	c.Data(http.StatusOK, "application/json", body)
}
