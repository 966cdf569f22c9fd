package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

type CloudinaryService struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryService(cloudName, apiKey, apiSecret, folder string) (*CloudinaryService, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}

	return &CloudinaryService{
		cld:    cld,
		folder: folder,
	}, nil
}

func (s *CloudinaryService) UploadLocalFile(ctx context.Context, localPath string) (*UploadResult, error) {
	if localPath == "" {
		return nil, nil
	}
	defer removeLocal(localPath)

	res, err := s.cld.Upload.Upload(ctx, localPath, uploader.UploadParams{
		Folder:       s.folder,
		ResourceType: "auto", // image, video or raw
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to Cloudinary: %w", err)
	}
	// API failures come back in the body with a nil error
	if res.Error.Message != "" {
		return nil, fmt.Errorf("failed to upload to Cloudinary: %s", res.Error.Message)
	}
	if res.SecureURL == "" && res.URL == "" {
		return nil, errors.New("failed to upload to Cloudinary: empty response")
	}

	return &UploadResult{
		URL:       res.URL,
		SecureURL: res.SecureURL,
		PublicID:  res.PublicID,
	}, nil
}
