package filestorage

import (
	"fmt"
	"mime"
	"mime/multipart"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/skillspad/api/internal/pkg/apperrors"
)

// MaxUploadSize is the largest attachment accepted, in bytes
const MaxUploadSize int64 = 20 << 20

var allowedMimeTypes = map[string]bool{
	"application/pdf":              true,
	"application/msword":           true,
	"text/plain":                   true,
	"application/zip":              true,
	"application/x-rar-compressed": true,
	"application/x-zip-compressed": true,
	"multipart/x-zip":              true,

	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

// extension fallback for clients that send application/octet-stream
var mimeByExtension = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".txt":  "text/plain",
	".zip":  "application/zip",
	".rar":  "application/x-rar-compressed",
}

// ValidateAttachment checks the size and type of an uploaded file and
// returns its normalized MIME type.
func ValidateAttachment(header *multipart.FileHeader) (string, error) {
	if header == nil {
		return "", apperrors.NewBadRequestError("No file uploaded")
	}
	if header.Size > MaxUploadSize {
		return "", apperrors.ErrFileTooLarge
	}

	mimeType := ""
	if ct := header.Header.Get("Content-Type"); ct != "" {
		if parsed, _, err := mime.ParseMediaType(ct); err == nil {
			mimeType = strings.ToLower(parsed)
		}
	}
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = mimeByExtension[strings.ToLower(filepath.Ext(header.Filename))]
	}
	if !allowedMimeTypes[mimeType] {
		return "", fmt.Errorf("%w: %q", apperrors.ErrUnsupportedFileType, mimeType)
	}
	return mimeType, nil
}

var publicIDPattern = regexp.MustCompile(`/upload/(?:v\d+/)?([^?#]+)`)

// PublicIDFromURL recovers the provider id from a delivery URL: the path
// after the optional version segment. Raw resources keep their extension in
// the id; image and video ids do not.
func PublicIDFromURL(fileURL string) string {
	m := publicIDPattern.FindStringSubmatch(fileURL)
	if m == nil {
		return ""
	}
	if strings.Contains(fileURL, "/raw/upload/") {
		return m[1]
	}
	return strings.TrimSuffix(m[1], path.Ext(m[1]))
}
