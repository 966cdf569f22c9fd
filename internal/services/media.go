package services

import (
	"context"
	"os"
)

// UploadResult describes a file stored on the media host
type UploadResult struct {
	URL       string `json:"url"`
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
}

// Location prefers the https URL when the host returned one
func (r *UploadResult) Location() string {
	if r == nil {
		return ""
	}
	if r.SecureURL != "" {
		return r.SecureURL
	}
	return r.URL
}

// MediaUploader pushes a local file to the media host. An empty path
// yields (nil, nil). The local file is removed after every attempt.
type MediaUploader interface {
	UploadLocalFile(ctx context.Context, localPath string) (*UploadResult, error)
}

func removeLocal(path string) {
	_ = os.Remove(path)
}
