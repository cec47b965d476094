package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"clipforge/config"
	"clipforge/models"
)

// Publisher uploads a finished file and returns its public links
type Publisher interface {
	Upload(ctx context.Context, filePath, mimeType string) (*models.UploadResult, error)
}

// DriveService publishes files to Google Drive with public-read access
type DriveService struct {
	creds config.DriveCredentials
}

// NewDriveService creates a publisher from the service account config.
// Field presence was already validated at startup; this never touches the
// network.
func NewDriveService(creds config.DriveCredentials) *DriveService {
	return &DriveService{creds: creds}
}

// Upload sends the file, grants anyone-reader permission, and derives the
// shareable and direct-download links from the returned file id.
func (s *DriveService) Upload(ctx context.Context, filePath, mimeType string) (*models.UploadResult, error) {
	svc, err := s.driveClient(ctx)
	if err != nil {
		return nil, &models.UploadError{Err: err}
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, &models.UploadError{Err: fmt.Errorf("failed to open %s: %w", filePath, err)}
	}
	defer file.Close()

	log.Info().Str("path", filePath).Msg("Uploading file to Google Drive")
	created, err := svc.Files.Create(&drive.File{
		Name:     filepath.Base(filePath),
		MimeType: mimeType,
	}).Media(file, googleapi.ContentType(mimeType)).Fields("id").Context(ctx).Do()
	if err != nil {
		return nil, &models.UploadError{Err: err}
	}

	_, err = svc.Permissions.Create(created.Id, &drive.Permission{
		Type: "anyone",
		Role: "reader",
	}).Context(ctx).Do()
	if err != nil {
		return nil, &models.UploadError{Err: err}
	}

	return &models.UploadResult{
		ShareableLink: fmt.Sprintf("https://drive.google.com/file/d/%s/view", created.Id),
		DownloadLink:  fmt.Sprintf("https://drive.google.com/uc?id=%s&export=download", created.Id),
	}, nil
}

// driveClient builds an authenticated Drive client from the service
// account fields.
func (s *DriveService) driveClient(ctx context.Context) (*drive.Service, error) {
	credJSON, err := json.Marshal(s.creds)
	if err != nil {
		return nil, fmt.Errorf("failed to encode credentials: %w", err)
	}

	jwtConfig, err := google.JWTConfigFromJSON(credJSON, drive.DriveFileScope)
	if err != nil {
		return nil, fmt.Errorf("failed to build service account config: %w", err)
	}

	svc, err := drive.NewService(ctx, option.WithHTTPClient(jwtConfig.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return svc, nil
}
