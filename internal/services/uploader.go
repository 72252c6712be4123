package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/example/storeadmin/internal/storage"
)

// KeyPrefix scopes every generated storage key.
const KeyPrefix = "products"

// Uploader pushes admin-selected image files to object storage and hands
// back their public URLs.
type Uploader struct {
	store storage.ObjectStore
}

// NewUploader constructs an Uploader.
func NewUploader(store storage.ObjectStore) *Uploader {
	return &Uploader{store: store}
}

// GenerateKey builds a fresh storage key from the uploaded filename. The
// extension defaults to empty when the name has none. Every call produces a
// distinct key, so retries never overwrite an earlier object.
func GenerateKey(filename string) string {
	ext := ""
	if idx := strings.LastIndex(filename, "."); idx >= 0 {
		ext = filename[idx+1:]
	}
	return fmt.Sprintf("%s/%s.%s", KeyPrefix, uuid.NewString(), ext)
}

// Upload stores one file and returns its public URL. On failure no URL is
// returned; the object may or may not exist server-side and is never cleaned
// up here.
func (u *Uploader) Upload(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	key := GenerateKey(fh.Filename)

	file, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload %q: %w", fh.Filename, err)
	}
	defer file.Close()

	contentType := fh.Header.Get("Content-Type")
	if err := u.store.Upload(ctx, key, file, fh.Size, contentType); err != nil {
		return "", err
	}

	return u.store.PublicURL(key), nil
}

// UploadAll pushes the non-nil files concurrently and joins before returning.
// The result slice is positional: entries for nil inputs stay empty. If any
// upload fails the whole call fails; files that already made it to storage
// remain there (there is no compensating delete).
func (u *Uploader) UploadAll(ctx context.Context, files []*multipart.FileHeader) ([]string, error) {
	urls := make([]string, len(files))

	g, gctx := errgroup.WithContext(ctx)
	for i, fh := range files {
		if fh == nil {
			continue
		}
		i, fh := i, fh
		g.Go(func() error {
			url, err := u.Upload(gctx, fh)
			if err != nil {
				return err
			}
			urls[i] = url
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return urls, nil
}
