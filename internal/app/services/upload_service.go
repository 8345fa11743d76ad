package services

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/rs/zerolog"
	"github.com/skillspad/api/internal/app/models/dto"
	"github.com/skillspad/api/internal/pkg/filestorage"
)

// UploadService validates attachment uploads and hands them to the storage provider
type UploadService struct {
	storage filestorage.Provider
	logger  zerolog.Logger
}

// NewUploadService creates a new UploadService
func NewUploadService(storage filestorage.Provider, logger zerolog.Logger) *UploadService {
	return &UploadService{storage: storage, logger: logger}
}

// Upload stores one attachment. Files over 20MB or of an unsupported type
// are rejected before anything is sent to the provider.
func (s *UploadService) Upload(ctx context.Context, header *multipart.FileHeader) (*dto.UploadResponse, error) {
	mimeType, err := filestorage.ValidateAttachment(header)
	if err != nil {
		return nil, err
	}

	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	stored, err := s.storage.Store(ctx, filestorage.Upload{
		Body:     file,
		Filename: header.Filename,
		Size:     header.Size,
		MimeType: mimeType,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("filename", header.Filename).Msg("Upload failed")
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	return &dto.UploadResponse{
		URL:      stored.URL,
		PublicID: stored.PublicID,
		Filename: stored.Filename,
		Size:     stored.Size,
		MimeType: stored.MimeType,
	}, nil
}
