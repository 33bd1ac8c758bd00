package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// DocumentService stores certificate documents (scanned PDFs or photos) in
// Cloudinary and hands back the reference URL recorded on the certificate
type DocumentService struct {
	cld *cloudinary.Cloudinary
}

func NewDocumentService() (*DocumentService, error) {
	cloudName := os.Getenv("CLOUDINARY_CLOUD_NAME")
	apiKey := os.Getenv("CLOUDINARY_API_KEY")
	apiSecret := os.Getenv("CLOUDINARY_API_SECRET")

	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("missing Cloudinary configuration")
	}

	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}

	return &DocumentService{cld: cld}, nil
}

// UploadCertificateDocument uploads a certificate document and returns its URL
func (s *DocumentService) UploadCertificateDocument(file multipart.File, filename string, userID, certificateID uint) (string, error) {
	allowedTypes := map[string]bool{
		".pdf":  true,
		".jpg":  true,
		".jpeg": true,
		".png":  true,
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedTypes[ext] {
		return "", fmt.Errorf("invalid file type: %s. Allowed types: pdf, jpg, jpeg, png", ext)
	}

	publicID := fmt.Sprintf("certificates/user_%d_cert_%d", userID, certificateID)

	uploadParams := uploader.UploadParams{
		PublicID:     publicID,
		Folder:       "landlordhq/certificates",
		Overwrite:    &[]bool{true}[0],
		ResourceType: "auto",
	}

	result, err := s.cld.Upload.Upload(context.Background(), file, uploadParams)
	if err != nil {
		return "", fmt.Errorf("failed to upload document: %w", err)
	}

	return result.SecureURL, nil
}

// DeleteCertificateDocument removes a stored document
func (s *DocumentService) DeleteCertificateDocument(publicID string) error {
	_, err := s.cld.Upload.Destroy(context.Background(), uploader.DestroyParams{
		PublicID: publicID,
	})
	return err
}
