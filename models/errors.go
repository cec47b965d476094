package models

import "fmt"

// DownloadError means a remote asset could not be retrieved
type DownloadError struct {
	URL string
	Err error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("error downloading file from %s: %v", e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// UnsupportedFormatError means the detected token is outside the caller's
// allowed set
type UnsupportedFormatError struct {
	Class  string
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported %s format: %s", e.Class, e.Format)
}

// FileTooLargeError is raised by the post-download size guard
type FileTooLargeError struct {
	SizeMB float64
	MaxMB  int64
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("file too large: %.2fMB (max %dMB)", e.SizeMB, e.MaxMB)
}

// MediaProcessError means the external media tool exited non-zero; Stderr
// carries its diagnostic output
type MediaProcessError struct {
	Stage  string
	Stderr string
	Err    error
}

func (e *MediaProcessError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s failed: %v: %s", e.Stage, e.Err, e.Stderr)
	}
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *MediaProcessError) Unwrap() error { return e.Err }

// OutputInvalidError means the tool reported success but its output file is
// missing or suspiciously small
type OutputInvalidError struct {
	Stage string
	Path  string
}

func (e *OutputInvalidError) Error() string {
	return fmt.Sprintf("%s produced missing or too-small output: %s", e.Stage, e.Path)
}

// GenerationRequestError means the avatar provider rejected the submission
type GenerationRequestError struct {
	Detail string
}

func (e *GenerationRequestError) Error() string {
	return fmt.Sprintf("failed to generate avatar video: %s", e.Detail)
}

// GenerationFailedError is the avatar job's terminal failure state
type GenerationFailedError struct {
	Reason string
}

func (e *GenerationFailedError) Error() string {
	return fmt.Sprintf("avatar video generation failed: %s", e.Reason)
}

// PollTimeoutError means the status poll exhausted its retry ceiling
type PollTimeoutError struct {
	Attempts int
}

func (e *PollTimeoutError) Error() string {
	return fmt.Sprintf("timeout waiting for avatar video to complete after %d attempts", e.Attempts)
}

// UploadError means the storage provider rejected the publish
type UploadError struct {
	Err error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("error uploading to drive: %v", e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }
