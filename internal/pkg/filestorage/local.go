package filestorage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/skillspad/api/internal/pkg/logger"
)

// LocalStorage saves uploads on the local filesystem. It stands in for
// Cloudinary when no credentials are configured.
type LocalStorage struct {
	basePath string // The root directory where files will be stored
	baseURL  string // The base URL the files are served from
	subPath  string // Folder under basePath for new uploads
}

// NewLocalStorage creates a new LocalStorage instance.
// basePath is the required directory path on the server.
// baseURL is optional; if provided, it will be prepended to returned file paths.
func NewLocalStorage(basePath, baseURL, subPath string) (*LocalStorage, error) {
	subPath = strings.Trim(filepath.ToSlash(subPath), "/")
	dir := filepath.Join(basePath, filepath.FromSlash(subPath))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Error().Err(err).Str("path", dir).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", dir, err)
	}
	logger.Info().Str("path", dir).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
		subPath:  subPath,
	}, nil
}

// Store copies the upload to a uniquely named file. The public id is the
// slash-separated path relative to basePath.
func (ls *LocalStorage) Store(ctx context.Context, upload Upload) (*StoredFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	uniqueFilename := uuid.New().String() + strings.ToLower(filepath.Ext(upload.Filename))
	publicID := uniqueFilename
	if ls.subPath != "" {
		publicID = ls.subPath + "/" + uniqueFilename
	}
	dstPath := filepath.Join(ls.basePath, filepath.FromSlash(publicID))

	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return nil, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, upload.Body)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		// Attempt to remove the partially created file
		_ = os.Remove(dstPath)
		return nil, fmt.Errorf("failed to save file content: %w", err)
	}

	var url string
	if ls.baseURL != "" {
		url = ls.baseURL + "/" + publicID
	} else {
		url = "/uploads/" + publicID
	}

	logger.Info().Str("filename", upload.Filename).Str("saved_as", publicID).Msg("File saved successfully")
	return &StoredFile{
		URL:      url,
		PublicID: publicID,
		Filename: upload.Filename,
		Size:     written,
		MimeType: upload.MimeType,
	}, nil
}

// Delete removes a stored file. A missing file reports false.
func (ls *LocalStorage) Delete(_ context.Context, publicID string) (bool, error) {
	physicalPath, err := ls.resolve(publicID)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(physicalPath); os.IsNotExist(err) {
		logger.Warn().Str("path", physicalPath).Msg("File to delete does not exist")
		return false, nil
	}
	if err := os.Remove(physicalPath); err != nil {
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return false, fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Info().Str("path", physicalPath).Msg("File deleted successfully")
	return true, nil
}

// resolve maps a public id to a path that stays inside basePath
func (ls *LocalStorage) resolve(publicID string) (string, error) {
	cleaned := filepath.Clean("/" + filepath.FromSlash(publicID))
	if publicID == "" || cleaned == string(filepath.Separator) {
		return "", fmt.Errorf("invalid file id: %q", publicID)
	}
	return filepath.Join(ls.basePath, cleaned), nil
}
