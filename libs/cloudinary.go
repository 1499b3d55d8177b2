package libs

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryEnabled reports whether cloudinary credentials are configured.
// Without them images stay on local disk under the uploads dir.
func CloudinaryEnabled() bool {
	return os.Getenv("CLOUDINARY_URL") != "" ||
		(os.Getenv("CLOUDINARY_CLOUD_NAME") != "" &&
			os.Getenv("CLOUDINARY_API_KEY") != "" &&
			os.Getenv("CLOUDINARY_API_SECRET") != "")
}

func newClient() (*cloudinary.Cloudinary, error) {
	if cldURL := os.Getenv("CLOUDINARY_URL"); cldURL != "" {
		return cloudinary.NewFromURL(cldURL)
	}

	cloudName := os.Getenv("CLOUDINARY_CLOUD_NAME")
	apiKey := os.Getenv("CLOUDINARY_API_KEY")
	apiSecret := os.Getenv("CLOUDINARY_API_SECRET")
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("cloudinary environment variables not set")
	}

	return cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
}

// UploadToCloudinary pushes a local file to cloudinary and removes the
// local copy. Returns the hosted URL.
func UploadToCloudinary(localPath string) (string, error) {
	cld, err := newClient()
	if err != nil {
		return "", err
	}

	resp, err := cld.Upload.Upload(context.Background(), localPath, uploader.UploadParams{
		PublicID: fmt.Sprintf("menu_%d", time.Now().UnixNano()),
		Folder:   "menu",
	})

	if removeErr := os.Remove(localPath); removeErr != nil {
		log.Printf("Failed to remove local file %s: %v", localPath, removeErr)
	}

	if err != nil {
		return "", err
	}
	if resp == nil || (resp.SecureURL == "" && resp.URL == "") {
		return "", fmt.Errorf("cloudinary returned no URL")
	}

	if resp.SecureURL != "" {
		return resp.SecureURL, nil
	}
	return resp.URL, nil
}
