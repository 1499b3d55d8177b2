package libs

import (
	"fmt"
	_ "image/jpeg"
	_ "image/png"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"food-ordering/config"

	"github.com/gin-gonic/gin"
)

func SaveUploadedImage(c *gin.Context, header *multipart.FileHeader, folder string) (string, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".png" && ext != ".jpg" && ext != ".jpeg" && ext != ".gif" && ext != ".webp" {
		return "", fmt.Errorf("unsupported image format, only .png, .jpg, .jpeg, .gif, .webp")
	}

	if header.Size > config.AppConfig.MaxUploadSize {
		return "", fmt.Errorf("file too large (max %d bytes)", config.AppConfig.MaxUploadSize)
	}

	if err := os.MkdirAll(folder, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create folder: %v", err)
	}

	filename := fmt.Sprintf("%d%s", time.Now().UnixNano(), ext)
	path := filepath.Join(folder, filename)

	if err := c.SaveUploadedFile(header, path); err != nil {
		return "", fmt.Errorf("failed to save file: %v", err)
	}

	return path, nil
}
