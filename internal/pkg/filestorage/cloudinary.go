package filestorage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// attachments are documents and archives, stored as raw resources
const rawResourceType = "raw"

// uploadAPI is the part of the Cloudinary upload API the storage uses
type uploadAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

// CloudinaryConfig holds the account credentials and target folder
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// CloudinaryStorage stores attachments on Cloudinary
type CloudinaryStorage struct {
	api    uploadAPI
	folder string
	logger zerolog.Logger
	now    func() time.Time
}

// NewCloudinaryStorage creates a Cloudinary-backed provider
func NewCloudinaryStorage(cfg CloudinaryConfig, logger zerolog.Logger) (*CloudinaryStorage, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to configure cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true
	return newCloudinaryStorage(&cld.Upload, cfg.Folder, logger), nil
}

func newCloudinaryStorage(api uploadAPI, folder string, logger zerolog.Logger) *CloudinaryStorage {
	return &CloudinaryStorage{
		api:    api,
		folder: strings.Trim(folder, "/"),
		logger: logger.With().Str("component", "cloudinary_storage").Logger(),
		now:    time.Now,
	}
}

// Store uploads the file under a generated id of the form
// assignment_<unix-ms>_<random>.<ext>
func (s *CloudinaryStorage) Store(ctx context.Context, upload Upload) (*StoredFile, error) {
	publicID := fmt.Sprintf("assignment_%d_%s%s",
		s.now().UnixMilli(),
		strings.ReplaceAll(uuid.NewString(), "-", "")[:8],
		strings.ToLower(filepath.Ext(upload.Filename)))

	res, err := s.api.Upload(ctx, upload.Body, uploader.UploadParams{
		PublicID:     publicID,
		Folder:       s.folder,
		ResourceType: rawResourceType,
		Overwrite:    api.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("cloudinary upload failed: %w", err)
	}
	if res.Error.Message != "" {
		return nil, fmt.Errorf("cloudinary upload rejected: %s", res.Error.Message)
	}

	size := upload.Size
	if res.Bytes > 0 {
		size = int64(res.Bytes)
	}
	s.logger.Info().Str("filename", upload.Filename).Str("publicId", res.PublicID).Msg("File uploaded")
	return &StoredFile{
		URL:      res.SecureURL,
		PublicID: res.PublicID,
		Filename: upload.Filename,
		Size:     size,
		MimeType: upload.MimeType,
	}, nil
}

// Delete destroys the resource. Cloudinary answers "not found" for ids it
// does not know; that is reported as false without an error.
func (s *CloudinaryStorage) Delete(ctx context.Context, publicID string) (bool, error) {
	if publicID == "" {
		return false, nil
	}
	res, err := s.api.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: rawResourceType,
		Invalidate:   api.Bool(true),
	})
	if err != nil {
		return false, fmt.Errorf("cloudinary delete failed: %w", err)
	}
	if res.Error.Message != "" {
		return false, fmt.Errorf("cloudinary delete rejected: %s", res.Error.Message)
	}
	switch res.Result {
	case "ok":
		s.logger.Info().Str("publicId", publicID).Msg("File deleted")
		return true, nil
	case "not found":
		s.logger.Warn().Str("publicId", publicID).Msg("File to delete does not exist")
		return false, nil
	default:
		return false, fmt.Errorf("cloudinary delete returned %q", res.Result)
	}
}
