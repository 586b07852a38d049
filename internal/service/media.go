package service

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"

	"storefront/internal/storage"

	"github.com/sirupsen/logrus"
)

// Upload is an uploaded file read into memory.
type Upload struct {
	Filename string
	Data     []byte
}

// imageExtensions maps sniffed content types to the extension stored on disk.
var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
	"image/bmp":  "bmp",
}

// saveImage validates that upload is an image and stores it under category.
func saveImage(ctx context.Context, store storage.Storage, category, field string, upload *Upload) (string, error) {
	if store == nil {
		return "", newFieldError(field, "File uploads are not configured.")
	}
	if upload == nil || len(upload.Data) == 0 {
		return "", newFieldError(field, "The submitted file is empty.")
	}

	contentType := http.DetectContentType(upload.Data)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", newFieldError(field, "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
	}

	key, err := store.Save(ctx, upload.Data, storage.SaveOptions{
		Category:  category,
		Extension: ext,
	})
	if err != nil {
		return "", err
	}
	logrus.WithFields(logrus.Fields{
		"category": category,
		"key":      key,
		"size":     len(upload.Data),
		"original": filepath.Base(upload.Filename),
	}).Debug("stored upload")
	return key, nil
}

// removeBlobs deletes stored files on a best-effort basis; failures are logged.
func removeBlobs(ctx context.Context, store storage.Storage, keys ...string) {
	if store == nil {
		return
	}
	for _, key := range keys {
		if strings.TrimSpace(key) == "" {
			continue
		}
		if err := store.Delete(ctx, key); err != nil {
			logrus.WithError(err).WithField("key", key).Warn("failed to delete stored file")
		}
	}
}
