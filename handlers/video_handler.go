package handlers

import (
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"clipforge/config"
	"clipforge/models"
	"clipforge/services"
	"clipforge/utils"
)

// VideoHandler handles the still-image video generation endpoints
type VideoHandler struct {
	cfg         *config.Config
	fetcher     *utils.Fetcher
	ffmpeg      *utils.FFmpeg
	transcriber services.Transcriber
	publisher   services.Publisher
}

// NewVideoHandler creates a new video handler
func NewVideoHandler(cfg *config.Config) *VideoHandler {
	return &VideoHandler{
		cfg:         cfg,
		fetcher:     utils.NewFetcher(cfg.DownloadTimeout),
		ffmpeg:      utils.NewFFmpeg(utils.ExecRunner{}),
		transcriber: services.NewWhisperTranscriber(cfg.OpenAIAPIKey),
		publisher:   services.NewDriveService(cfg.Drive),
	}
}

// GenerateVideo handles POST /generate-video
func (h *VideoHandler) GenerateVideo(c *gin.Context) {
	imageURL := c.PostForm("image_url")
	audioURL := c.PostForm("audio_url")
	if imageURL == "" || audioURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "image_url and audio_url are required"})
		return
	}

	log.Info().Msg("Downloading image...")
	imageData, imageFormat, err := h.fetcher.Download(imageURL, models.MediaImage)
	if err != nil {
		abortWithError(c, err)
		return
	}

	log.Info().Msg("Downloading audio...")
	audioData, audioFormat, err := h.fetcher.Download(audioURL, models.MediaAudio)
	if err != nil {
		abortWithError(c, err)
		return
	}

	// Validate before anything touches disk
	if !utils.FormatAllowed(imageFormat, h.cfg.ImageFormats) {
		abortWithError(c, &models.UnsupportedFormatError{Class: "image", Format: imageFormat})
		return
	}
	if !utils.FormatAllowed(audioFormat, h.cfg.AudioFormats) {
		abortWithError(c, &models.UnsupportedFormatError{Class: "audio", Format: audioFormat})
		return
	}

	ws := utils.NewWorkspace(h.cfg.TempDir, h.cfg.MaxFileSizeMB)
	defer ws.Cleanup()

	imagePath, err := ws.Save("temp_image", imageFormat, imageData)
	if err != nil {
		abortWithError(c, err)
		return
	}
	audioPath, err := ws.Save("temp_audio", audioFormat, audioData)
	if err != nil {
		abortWithError(c, err)
		return
	}

	videoPath, duration, err := h.buildSubtitledVideo(c, ws, imagePath, audioPath)
	if err != nil {
		abortWithError(c, err)
		return
	}

	log.Info().Msg("Uploading video to Google Drive...")
	links, err := h.publisher.Upload(c.Request.Context(), videoPath, "video/mp4")
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.GenerateVideoResponse{
		Status:      "success",
		Message:     "Video created and uploaded successfully",
		VideoURL:    links.ShareableLink,
		DownloadURL: links.DownloadLink,
		Duration:    duration,
		DetectedFormats: map[string]string{
			"image": imageFormat,
			"audio": audioFormat,
		},
	})
}

// GenerateVideoWithPrefix handles POST /generate-video-with-prefix: the
// generated clip is concatenated after a caller-supplied intro video.
func (h *VideoHandler) GenerateVideoWithPrefix(c *gin.Context) {
	imageURL := c.PostForm("image_url")
	audioURL := c.PostForm("audio_url")
	prefixURL := c.PostForm("prefix_video_url")
	if imageURL == "" || audioURL == "" || prefixURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "image_url, audio_url and prefix_video_url are required"})
		return
	}

	log.Info().Msg("Downloading prefix video...")
	prefixData, prefixFormat, err := h.fetcher.Download(prefixURL, models.MediaVideo)
	if err != nil {
		abortWithError(c, err)
		return
	}

	log.Info().Msg("Downloading image...")
	imageData, imageFormat, err := h.fetcher.Download(imageURL, models.MediaImage)
	if err != nil {
		abortWithError(c, err)
		return
	}

	log.Info().Msg("Downloading audio...")
	audioData, audioFormat, err := h.fetcher.Download(audioURL, models.MediaAudio)
	if err != nil {
		abortWithError(c, err)
		return
	}

	if !utils.FormatAllowed(prefixFormat, h.cfg.PrefixVideoFormats) {
		abortWithError(c, &models.UnsupportedFormatError{Class: "prefix video", Format: prefixFormat})
		return
	}
	if !utils.FormatAllowed(imageFormat, h.cfg.ImageFormats) {
		abortWithError(c, &models.UnsupportedFormatError{Class: "image", Format: imageFormat})
		return
	}
	if !utils.FormatAllowed(audioFormat, h.cfg.AudioFormats) {
		abortWithError(c, &models.UnsupportedFormatError{Class: "audio", Format: audioFormat})
		return
	}

	ws := utils.NewWorkspace(h.cfg.TempDir, h.cfg.MaxFileSizeMB)
	defer ws.Cleanup()

	prefixPath, err := ws.Save("prefix_video", prefixFormat, prefixData)
	if err != nil {
		abortWithError(c, err)
		return
	}
	imagePath, err := ws.Save("temp_image", imageFormat, imageData)
	if err != nil {
		abortWithError(c, err)
		return
	}
	audioPath, err := ws.Save("temp_audio", audioFormat, audioData)
	if err != nil {
		abortWithError(c, err)
		return
	}

	videoPath, duration, err := h.buildSubtitledVideo(c, ws, imagePath, audioPath)
	if err != nil {
		abortWithError(c, err)
		return
	}

	log.Info().Msg("Concatenating prefix video...")
	listPath := ws.Path("concat_list", "txt")
	finalPath := ws.Path("final_video", "mp4")
	if err := h.ffmpeg.Concat([]string{prefixPath, videoPath}, listPath, finalPath); err != nil {
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
		Message:     "Video created and uploaded successfully",
		VideoURL:    links.ShareableLink,
		DownloadURL: links.DownloadLink,
		Duration:    duration,
		DetectedFormats: map[string]string{
			"image":        imageFormat,
			"audio":        audioFormat,
			"prefix_video": prefixFormat,
		},
	})
}

// buildSubtitledVideo runs the shared tail of both generate endpoints:
// transcribe the audio, compose the still-image clip, burn the subtitles.
// Returns the finished clip path and the audio duration.
func (h *VideoHandler) buildSubtitledVideo(c *gin.Context, ws *utils.Workspace, imagePath, audioPath string) (string, float64, error) {
	log.Info().Msg("Transcribing audio...")
	segments, err := h.transcriber.Transcribe(c.Request.Context(), audioPath)
	if err != nil {
		return "", 0, err
	}

	duration, err := h.ffmpeg.ProbeDuration(audioPath)
	if err != nil {
		return "", 0, err
	}

	srtPath := ws.Path("sub", "srt")
	if err := services.WriteSRT(segments, srtPath); err != nil {
		return "", 0, err
	}

	log.Info().Msg("Creating video...")
	rawVideoPath := ws.Path("temp_video", "mp4")
	if err := h.ffmpeg.ComposeStillVideo(imagePath, audioPath, rawVideoPath); err != nil {
		return "", 0, err
	}

	log.Info().Msg("Burning subtitles...")
	outputPath := ws.Path("output_video", "mp4")
	if err := h.ffmpeg.BurnSubtitles(rawVideoPath, srtPath, h.cfg.WatermarkPath, outputPath); err != nil {
		return "", 0, err
	}

	return outputPath, duration, nil
}

// ConvertToBase64 handles POST /convert-to-base64
func (h *VideoHandler) ConvertToBase64(c *gin.Context) {
	var req models.Base64Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request: " + err.Error()})
		return
	}

	data, _, err := h.fetcher.Download(req.DriveURL, models.MediaImage)
	if err != nil {
		var dlErr *models.DownloadError
		if errors.As(err, &dlErr) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Failed to download image from the provided URL."})
			return
		}
		abortWithError(c, err)
		return
	}

	log.Info().Int("bytes", len(data)).Msg("Converting downloaded file to base64")
	c.JSON(http.StatusOK, models.Base64Response{
		Base64: base64.StdEncoding.EncodeToString(data),
	})
}

// SupportedFormats handles GET /supported-formats
func (h *VideoHandler) SupportedFormats(c *gin.Context) {
	c.JSON(http.StatusOK, models.SupportedFormatsResponse{
		ImageFormats: h.cfg.ImageFormats,
		AudioFormats: h.cfg.AudioFormats,
	})
}
