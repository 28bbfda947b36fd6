package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/admin"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// ImageStorage defines contract for image storage provider (Cloudinary implementation).
// Files are addressed by bucket-relative filename including the extension.
type ImageStorage interface {
	// Upload stores the image under the bucket and returns its public URL.
	Upload(ctx context.Context, r io.Reader, filename, contentType string) (string, error)
	// Delete removes a stored image by filename.
	Delete(ctx context.Context, filename string) error
	// PublicURL builds the public URL of a stored image without a network call.
	PublicURL(filename string) (string, error)
	// Buckets lists the top level folders of the account.
	Buckets(ctx context.Context) ([]string, error)
	// Bucket is the folder this storage writes to.
	Bucket() string
}

type cloudinaryStorage struct {
	cld    *cloudinary.Cloudinary
	bucket string
}

// NewCloudinaryStorage creates a Cloudinary-backed ImageStorage from a
// cloudinary://<key>:<secret>@<cloud> URL. bucket is the folder every upload
// goes to.
func NewCloudinaryStorage(cloudinaryURL, bucket string) (ImageStorage, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary client: %w", err)
	}

	// Ensure HTTPS URLs by default.
	cld.Config.URL.Secure = true

	return &cloudinaryStorage{cld: cld, bucket: bucket}, nil
}

func (s *cloudinaryStorage) Bucket() string {
	return s.bucket
}

func (s *cloudinaryStorage) publicID(filename string) string {
	return s.bucket + "/" + strings.TrimSuffix(filename, filepath.Ext(filename))
}

// Upload uploads an image to Cloudinary and returns the secure URL.
func (s *cloudinaryStorage) Upload(ctx context.Context, r io.Reader, filename, contentType string) (string, error) {
	if s == nil || s.cld == nil {
		return "", fmt.Errorf("cloudinary storage is not initialized")
	}

	params := uploader.UploadParams{
		PublicID:       strings.TrimSuffix(filename, filepath.Ext(filename)),
		Folder:         s.bucket,
		UseFilename:    api.Bool(false),
		UniqueFilename: api.Bool(false),
		Overwrite:      api.Bool(false),
		Format:         strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), "."),
	}

	resp, err := s.cld.Upload.Upload(ctx, r, params)
	if err != nil {
		return "", fmt.Errorf("failed to upload image to cloudinary: %w", err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload rejected: %s", resp.Error.Message)
	}

	if resp.SecureURL == "" {
		return "", fmt.Errorf("cloudinary upload succeeded but secure URL is empty")
	}

	return resp.SecureURL, nil
}

// Delete deletes image from Cloudinary.
func (s *cloudinaryStorage) Delete(ctx context.Context, filename string) error {
	if s == nil || s.cld == nil {
		return fmt.Errorf("cloudinary storage is not initialized")
	}

	// Invalidate: true helps to clear CDN cache
	params := uploader.DestroyParams{
		PublicID:   s.publicID(filename),
		Invalidate: api.Bool(true),
	}

	resp, err := s.cld.Upload.Destroy(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to delete image from cloudinary: %w", err)
	}

	if resp.Result != "ok" && resp.Result != "not found" {
		return fmt.Errorf("cloudinary destroy api returned result: %s", resp.Result)
	}

	return nil
}

func (s *cloudinaryStorage) PublicURL(filename string) (string, error) {
	img, err := s.cld.Image(s.bucket + "/" + filename)
	if err != nil {
		return "", fmt.Errorf("failed to build image asset: %w", err)
	}
	img.Config.URL.Secure = true

	u, err := img.String()
	if err != nil {
		return "", fmt.Errorf("failed to build image url: %w", err)
	}
	return u, nil
}

func (s *cloudinaryStorage) Buckets(ctx context.Context) ([]string, error) {
	resp, err := s.cld.Admin.RootFolders(ctx, admin.RootFoldersParams{})
	if err != nil {
		return nil, fmt.Errorf("failed to list cloudinary folders: %w", err)
	}
	if resp.Error.Message != "" {
		return nil, fmt.Errorf("cloudinary folders api: %s", resp.Error.Message)
	}

	names := make([]string, 0, len(resp.Folders))
	for _, f := range resp.Folders {
		names = append(names, f.Name)
	}
	return names, nil
}

// FilenameFromURL extracts the stored filename from a public URL by locating
// the "/<bucket>/" path segment.
// Example: https://res.cloudinary.com/demo/image/upload/v1/profesionales-fotos/a.png -> a.png
func FilenameFromURL(bucket, fileURL string) (string, bool) {
	if bucket == "" || fileURL == "" {
		return "", false
	}

	u, err := url.Parse(fileURL)
	if err != nil {
		return "", false
	}

	marker := "/" + bucket + "/"
	idx := strings.LastIndex(u.Path, marker)
	if idx == -1 {
		return "", false
	}

	name := u.Path[idx+len(marker):]
	if name == "" || strings.Contains(name, "/") {
		return "", false
	}
	return path.Clean(name), true
}
