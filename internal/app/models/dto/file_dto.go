package dto

// UploadResponse describes a file accepted by the upload provider
type UploadResponse struct {
	URL      string `json:"url" example:"https://res.cloudinary.com/demo/raw/upload/v1/assignments/assignment_1718000000_ab12.pdf"`
	PublicID string `json:"publicId" example:"assignments/assignment_1718000000_ab12"`
	Filename string `json:"filename" example:"brief.pdf"`
	Size     int64  `json:"size" example:"20480"`
	MimeType string `json:"mimeType" example:"application/pdf"`
}
