package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"clipforge/models"
)

const (
	defaultFrameRate = 30.0
	maxFrameRate     = 120.0

	// Outputs smaller than this after compose or background removal are
	// treated as silent encoder failures.
	minOutputBytes = 1000
)

// FFmpeg builds and runs the external media tool's command lines. Every
// transformation in the service goes through one of these templates.
type FFmpeg struct {
	runner Runner
}

// NewFFmpeg creates an invoker backed by the given process runner
func NewFFmpeg(runner Runner) *FFmpeg {
	return &FFmpeg{runner: runner}
}

// run executes ffmpeg and classifies a non-zero exit as a media-processing
// error carrying the diagnostic stream.
func (f *FFmpeg) run(stage string, args []string) error {
	stderr, err := f.runner.Run("ffmpeg", args...)
	if err != nil {
		return &models.MediaProcessError{Stage: stage, Stderr: string(stderr), Err: err}
	}
	return nil
}

// ComposeStillVideo loops a still image over an audio track into an H.264
// video. The shortest stream wins, so the audio bounds the duration.
func (f *FFmpeg) ComposeStillVideo(imagePath, audioPath, outputPath string) error {
	args := []string{
		"-y",
		"-loop", "1",
		"-i", imagePath,
		"-i", audioPath,
		"-shortest",
		"-c:v", "libx264",
		"-tune", "stillimage",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", "192k",
		"-vf", "scale=1280:720",
		outputPath,
	}
	if err := f.run("compose still video", args); err != nil {
		return err
	}
	return f.checkOutput("compose still video", outputPath)
}

// BurnSubtitles overlays a subtitle track (and a scaled watermark anchored
// to the bottom-left corner, when watermarkPath exists) onto a video,
// re-encoding video and copying audio untouched.
func (f *FFmpeg) BurnSubtitles(videoPath, srtPath, watermarkPath, outputPath string) error {
	var args []string
	if watermarkPath != "" && FileExists(watermarkPath) {
		args = []string{
			"-y",
			"-i", videoPath,
			"-i", watermarkPath,
			"-filter_complex",
			fmt.Sprintf("subtitles=%s[sub];[1:v]scale=iw*0.15:-1[wm];[sub][wm]overlay=10:H-h-50[v]", srtPath),
			"-map", "[v]",
			"-map", "0:a",
			"-c:a", "copy",
			outputPath,
		}
	} else {
		args = []string{
			"-y",
			"-i", videoPath,
			"-vf", fmt.Sprintf("subtitles=%s", srtPath),
			"-c:a", "copy",
			outputPath,
		}
	}
	return f.run("burn subtitles", args)
}

// ExtractAudio demuxes a video's audio track into 44.1 kHz stereo PCM
func (f *FFmpeg) ExtractAudio(videoPath, audioPath string) error {
	args := []string{
		"-i", videoPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "44100",
		"-ac", "2",
		audioPath,
		"-y",
	}
	return f.run("extract audio", args)
}

// RemoveBackground strips the backdrop from every frame of a video and
// reassembles the frames into an alpha-channel clip at the source frame
// rate. Each frame passes through the external background-removal model.
func (f *FFmpeg) RemoveBackground(videoPath, outputPath, frameDir string) error {
	// Extract every frame as a still image
	if err := f.run("extract frames", []string{
		"-i", videoPath,
		filepath.Join(frameDir, "frame_%04d.png"),
		"-hide_banner", "-loglevel", "error",
	}); err != nil {
		return err
	}

	frames, err := filepath.Glob(filepath.Join(frameDir, "frame_*.png"))
	if err != nil {
		return fmt.Errorf("failed to list frames: %w", err)
	}
	if len(frames) == 0 {
		return &models.OutputInvalidError{Stage: "extract frames", Path: frameDir}
	}
	sort.Strings(frames)

	log.Info().Int("frames", len(frames)).Msg("Removing background from frames")
	for _, frame := range frames {
		stderr, err := f.runner.Run("rembg", "i", frame, frame)
		if err != nil {
			return &models.MediaProcessError{Stage: "remove background", Stderr: string(stderr), Err: err}
		}
	}

	fps := f.probeFrameRate(videoPath)

	// Rebuild with an alpha-capable pixel format; yuva420p requires even
	// dimensions, hence the trunc scale.
	if err := f.run("assemble transparent video", []string{
		"-framerate", strconv.FormatFloat(fps, 'f', -1, 64),
		"-i", filepath.Join(frameDir, "frame_%04d.png"),
		"-c:v", "libx264",
		"-pix_fmt", "yuva420p",
		"-filter:v", "scale=trunc(iw/2)*2:trunc(ih/2)*2",
		"-shortest",
		"-movflags", "+faststart",
		"-y", outputPath,
	}); err != nil {
		return err
	}

	return f.checkOutput("assemble transparent video", outputPath)
}

// OverlayAvatar scales the background image to a padded 1920x1080 canvas,
// scales the alpha-channel avatar clip to 480 wide preserving aspect, and
// composites it near the bottom-right corner, mapping audio from the
// supplied track.
func (f *FFmpeg) OverlayAvatar(imagePath, avatarPath, audioPath, outputPath string) error {
	args := []string{
		"-y",
		"-loop", "1", "-i", imagePath,
		"-i", avatarPath,
		"-i", audioPath,
		"-filter_complex",
		"[0:v]scale=1920:1080:force_original_aspect_ratio=decrease,pad=1920:1080:(ow-iw)/2:(oh-ih)/2[bg];" +
			"[1:v]format=yuva420p,scale=480:-1[avatar];" +
			"[bg][avatar]overlay=W-w-50:H-h-70:format=yuv420p[outv]",
		"-map", "[outv]",
		"-map", "2:a",
		"-c:v", "libx264",
		"-c:a", "aac",
		"-shortest",
		outputPath,
	}
	return f.run("overlay avatar", args)
}

// Concat losslessly concatenates the given videos in order through a
// generated file-list manifest.
func (f *FFmpeg) Concat(inputPaths []string, listPath, outputPath string) error {
	if len(inputPaths) == 0 {
		return fmt.Errorf("no input files provided")
	}

	var manifest strings.Builder
	for _, p := range inputPaths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("failed to get absolute path for %s: %w", p, err)
		}
		fmt.Fprintf(&manifest, "file '%s'\n", abs)
	}
	if err := os.WriteFile(listPath, []byte(manifest.String()), 0644); err != nil {
		return fmt.Errorf("failed to write concat list: %w", err)
	}

	args := []string{
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		"-y", outputPath,
	}
	return f.run("concat videos", args)
}

// ProbeDuration returns a media file's duration in seconds
func (f *FFmpeg) ProbeDuration(path string) (float64, error) {
	output, err := f.runner.Output("ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return 0, fmt.Errorf("ffprobe error: %w", err)
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}
	return duration, nil
}

// probeFrameRate reads the source frame rate, falling back to 30 when the
// probe fails or reports something unusable.
func (f *FFmpeg) probeFrameRate(path string) float64 {
	output, err := f.runner.Output("ffprobe",
		"-v", "error",
		"-select_streams", "v",
		"-of", "default=noprint_wrappers=1:nokey=1",
		"-show_entries", "stream=r_frame_rate",
		path,
	)
	if err != nil {
		log.Warn().Err(err).Msg("Frame rate probe failed, using default")
		return defaultFrameRate
	}
	return ParseFrameRate(strings.TrimSpace(string(output)))
}

// ParseFrameRate parses a rational "num/den" (or plain float) frame rate
// string. Invalid or out-of-range values (<=0 or >120) yield the default
// of 30.
func ParseFrameRate(s string) float64 {
	var fps float64
	if strings.Contains(s, "/") {
		parts := strings.SplitN(s, "/", 2)
		num, errN := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		den, errD := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if errN != nil || errD != nil || den == 0 {
			return defaultFrameRate
		}
		fps = num / den
	} else {
		var err error
		fps, err = strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return defaultFrameRate
		}
	}

	if fps <= 0 || fps > maxFrameRate {
		return defaultFrameRate
	}
	return fps
}

// checkOutput guards the two operations most prone to silent empty-file
// failure: the output must exist and carry a minimum size.
func (f *FFmpeg) checkOutput(stage, path string) error {
	info, err := os.Stat(path)
	if err != nil || info.Size() < minOutputBytes {
		return &models.OutputInvalidError{Stage: stage, Path: path}
	}
	return nil
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
