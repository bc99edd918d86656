// Package storage uploads finished report files to Google Cloud Storage.
// It assumes Application Default Credentials are configured.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/rs/zerolog"
)

// Uploader stores a local file under an object name.
type Uploader interface {
	UploadFile(ctx context.Context, objectName, filePath string) error
}

// GCSUploader uploads into a single bucket.
type GCSUploader struct {
	client *gcs.Client
	bucket string
	log    zerolog.Logger
}

// NewGCSUploader creates a storage client for bucket. Close releases it.
func NewGCSUploader(ctx context.Context, bucket string, log zerolog.Logger) (*GCSUploader, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCSUploader{client: client, bucket: bucket, log: log}, nil
}

// Close closes the underlying storage client.
func (u *GCSUploader) Close() error {
	return u.client.Close()
}

// UploadFile copies filePath to gs://<bucket>/<objectName>.
func (u *GCSUploader) UploadFile(ctx context.Context, objectName, filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open file %q: %w", filePath, err)
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := u.client.Bucket(u.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = "text/csv"

	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return fmt.Errorf("copy file to GCS writer: %w", err)
	}

	// Close finalizes the upload
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize upload: %w", err)
	}

	u.log.Info().
		Str("bucket", u.bucket).
		Str("object", objectName).
		Msg("Uploaded report")
	return nil
}

// ObjectName places the base name of filePath under folder.
func ObjectName(folder, filePath string) string {
	base := filepath.Base(filePath)
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return base
	}
	return path.Join(folder, base)
}

// UploadAll uploads every file under folder, stopping at the first failure.
func UploadAll(ctx context.Context, u Uploader, folder string, files ...string) error {
	for _, file := range files {
		if err := u.UploadFile(ctx, ObjectName(folder, file), file); err != nil {
			return fmt.Errorf("upload %s: %w", file, err)
		}
	}
	return nil
}
