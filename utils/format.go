package utils

import (
	"strings"

	"clipforge/models"
)

// contentTypeTable maps content-type substrings to format tokens. Order
// matters: the first match wins.
var contentTypeTable = []struct {
	substr string
	format string
}{
	// Video
	{"video/mp4", "mp4"},
	{"video/quicktime", "mov"},
	{"video/x-msvideo", "avi"},
	{"video/x-matroska", "mkv"},

	// Image
	{"image/jpeg", "jpg"},
	{"image/jpg", "jpg"},
	{"image/png", "png"},
	{"image/gif", "gif"},
	{"image/webp", "webp"},

	// Audio
	{"audio/mpeg", "mp3"},
	{"audio/mp3", "mp3"},
	{"audio/wav", "wav"},
	{"audio/x-wav", "wav"},
	{"audio/mp4", "m4a"},
	{"audio/m4a", "m4a"},
	{"audio/aac", "aac"},
}

// DetectFormat maps a response content-type (or, failing that, the URL's
// file extension) to a format token. It never fails: an extension-like URL
// suffix is returned as-is even when unrecognized, so the caller's format
// validation can reject it; URLs without a usable suffix fall back to the
// media class default.
func DetectFormat(contentType, url string, class models.MediaClass) string {
	ct := strings.ToLower(contentType)
	for _, entry := range contentTypeTable {
		if strings.Contains(ct, entry.substr) {
			return entry.format
		}
	}

	if ext := urlExtension(url); ext != "" {
		return ext
	}

	if class == models.MediaAudio {
		return "mp3"
	}
	return "jpg"
}

// urlExtension extracts the text after the last '.' and before any query
// string, accepting it only if it looks like a file extension.
func urlExtension(url string) string {
	if q := strings.IndexAny(url, "?#"); q >= 0 {
		url = url[:q]
	}
	idx := strings.LastIndex(url, ".")
	if idx < 0 {
		return ""
	}
	ext := strings.ToLower(url[idx+1:])
	if ext == "" || len(ext) > 5 {
		return ""
	}
	for _, r := range ext {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}

// FormatAllowed reports whether token is in the caller's allowed set
func FormatAllowed(token string, allowed []string) bool {
	for _, f := range allowed {
		if token == f {
			return true
		}
	}
	return false
}
