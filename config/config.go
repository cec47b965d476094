package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DriveCredentials holds the storage provider service account fields.
// Every field is required; LoadConfig fails before any network call if one
// is missing.
type DriveCredentials struct {
	Type                    string `json:"type"`
	ProjectID               string `json:"project_id"`
	PrivateKeyID            string `json:"private_key_id"`
	PrivateKey              string `json:"private_key"`
	ClientEmail             string `json:"client_email"`
	ClientID                string `json:"client_id"`
	AuthURI                 string `json:"auth_uri"`
	TokenURI                string `json:"token_uri"`
	AuthProviderX509CertURL string `json:"auth_provider_x509_cert_url"`
	ClientX509CertURL       string `json:"client_x509_cert_url"`
}

// Config holds all application configuration
type Config struct {
	// Server
	Host    string
	Port    string
	TempDir string

	// Asset handling
	MaxFileSizeMB   int64
	DownloadTimeout time.Duration
	WatermarkPath   string

	// Supported format tokens
	ImageFormats       []string
	AudioFormats       []string
	PrefixVideoFormats []string

	// Avatar provider
	AvatarAPIKey     string
	AvatarBaseURL    string
	PollInterval     time.Duration
	PollMaxRetries   int
	AvatarAPITimeout time.Duration

	// Speech-to-text
	OpenAIAPIKey string

	// Storage provider
	Drive DriveCredentials
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	cfg := &Config{
		Host:    getEnv("HOST", "0.0.0.0"),
		Port:    getEnv("PORT", "8000"),
		TempDir: getEnv("TEMP_DIR", "video_temp"),

		MaxFileSizeMB:   int64(getEnvAsInt("MAX_FILE_SIZE_MB", 100)),
		DownloadTimeout: time.Duration(getEnvAsInt("DOWNLOAD_TIMEOUT_SECONDS", 300)) * time.Second,
		WatermarkPath:   getEnv("WATERMARK_PATH", "watermark.png"),

		ImageFormats:       parseFormats(getEnv("SUPPORTED_IMAGE_FORMATS", "jpg,jpeg,png,bmp,gif,webp")),
		AudioFormats:       parseFormats(getEnv("SUPPORTED_AUDIO_FORMATS", "mp3,wav,aac,m4a,ogg")),
		PrefixVideoFormats: parseFormats(getEnv("SUPPORTED_PREFIX_FORMATS", "mp4,mov,avi,mkv")),

		AvatarAPIKey:     getEnv("HEYGEN_API_KEY", ""),
		AvatarBaseURL:    getEnv("HEYGEN_BASE_URL", "https://api.heygen.com"),
		PollInterval:     time.Duration(getEnvAsInt("AVATAR_POLL_INTERVAL_SECONDS", 25)) * time.Second,
		PollMaxRetries:   getEnvAsInt("AVATAR_POLL_MAX_RETRIES", 100),
		AvatarAPITimeout: time.Duration(getEnvAsInt("AVATAR_API_TIMEOUT_SECONDS", 120)) * time.Second,

		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),

		Drive: DriveCredentials{
			Type:                    getEnv("TYPE", ""),
			ProjectID:               getEnv("PROJECT_ID", ""),
			PrivateKeyID:            getEnv("PRIVATE_KEY_ID", ""),
			PrivateKey:              getEnv("PRIVATE_KEY", ""),
			ClientEmail:             getEnv("CLIENT_EMAIL", ""),
			ClientID:                getEnv("CLIENT_ID", ""),
			AuthURI:                 getEnv("AUTH_URI", "https://accounts.google.com/o/oauth2/auth"),
			TokenURI:                getEnv("TOKEN_URI", "https://oauth2.googleapis.com/token"),
			AuthProviderX509CertURL: getEnv("AUTH_PROVIDER_X509_CERT_URL", "https://www.googleapis.com/oauth2/v1/certs"),
			ClientX509CertURL:       getEnv("CLIENT_X509_CERT_URL", ""),
		},
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Ensure temp directory exists
	if err := os.MkdirAll(cfg.TempDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create temp dir %s: %w", cfg.TempDir, err)
	}

	return cfg, nil
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.AvatarAPIKey == "" {
		return errors.New("HEYGEN_API_KEY is required")
	}
	if c.OpenAIAPIKey == "" {
		return errors.New("OPENAI_API_KEY is required")
	}
	if c.MaxFileSizeMB <= 0 {
		return errors.New("MAX_FILE_SIZE_MB must be positive")
	}
	if c.PollMaxRetries <= 0 {
		return errors.New("AVATAR_POLL_MAX_RETRIES must be positive")
	}
	if missing := c.Drive.missingFields(); len(missing) > 0 {
		return fmt.Errorf("missing required credentials: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (d *DriveCredentials) missingFields() []string {
	fields := []struct {
		name  string
		value string
	}{
		{"TYPE", d.Type},
		{"PROJECT_ID", d.ProjectID},
		{"PRIVATE_KEY_ID", d.PrivateKeyID},
		{"PRIVATE_KEY", d.PrivateKey},
		{"CLIENT_EMAIL", d.ClientEmail},
		{"CLIENT_ID", d.ClientID},
		{"AUTH_URI", d.AuthURI},
		{"TOKEN_URI", d.TokenURI},
		{"AUTH_PROVIDER_X509_CERT_URL", d.AuthProviderX509CertURL},
		{"CLIENT_X509_CERT_URL", d.ClientX509CertURL},
	}

	missing := make([]string, 0)
	for _, f := range fields {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func parseFormats(formatsStr string) []string {
	parts := strings.Split(formatsStr, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.ToLower(strings.TrimSpace(part))
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func (c *Config) String() string {
	return fmt.Sprintf("Config{Port: %s, TempDir: %s, MaxFileSize: %dMB, PollRetries: %d}",
		c.Port, c.TempDir, c.MaxFileSizeMB, c.PollMaxRetries)
}
