package sync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// metadata keys on remote objects.
const (
	metaLastModified = "last_modified"
	metaUploadedAt   = "uploaded_at"
	metaFileSize     = "file_size"
)

// GCS is the Remote implementation over a Google Cloud Storage bucket.
// Objects live under a fixed prefix; authorship time travels in the
// last_modified metadata entry as string-encoded epoch seconds.
type GCS struct {
	client *storage.Client
	bucket *storage.BucketHandle
	prefix string
}

// NewGCS opens the bucket. An empty credentials path falls back to
// application default credentials.
func NewGCS(ctx context.Context, bucketName, prefix, credentials string) (*GCS, error) {
	if bucketName == "" {
		return nil, errors.New("sync: bucket not configured")
	}
	opts := []option.ClientOption{}
	if credentials != "" {
		if _, err := os.Stat(credentials); err != nil {
			return nil, fmt.Errorf("sync: service account key not readable at %s: %w", credentials, err)
		}
		opts = append(opts, option.WithCredentialsFile(credentials))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sync: create storage client: %w", err)
	}
	return &GCS{
		client: client,
		bucket: client.Bucket(bucketName),
		prefix: prefix,
	}, nil
}

// Close releases the underlying client.
func (g *GCS) Close() error {
	return g.client.Close()
}

func (g *GCS) object(name string) *storage.ObjectHandle {
	return g.bucket.Object(path.Join(g.prefix, name))
}

// Stat reads the object's authorship timestamp, preferring the
// last_modified metadata over the object's upload time.
func (g *GCS) Stat(ctx context.Context, name string) (Info, error) {
	attrs, err := g.object(name).Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return Info{}, nil
		}
		return Info{}, fmt.Errorf("sync: stat %s: %w", name, err)
	}
	return Info{Exists: true, LastModified: timestampFromAttrs(attrs)}, nil
}

func timestampFromAttrs(attrs *storage.ObjectAttrs) int64 {
	if raw, ok := attrs.Metadata[metaLastModified]; ok && raw != "" {
		// Older uploaders wrote fractional epoch values.
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return int64(f)
		}
	}
	return attrs.Updated.Unix()
}

// Download streams the object into w and returns its Info.
func (g *GCS) Download(ctx context.Context, name string, w io.Writer) (Info, error) {
	obj := g.object(name)
	attrs, err := obj.Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return Info{}, fmt.Errorf("sync: download %s: object gone", name)
		}
		return Info{}, fmt.Errorf("sync: stat before download %s: %w", name, err)
	}
	r, err := obj.NewReader(ctx)
	if err != nil {
		return Info{}, fmt.Errorf("sync: open %s: %w", name, err)
	}
	defer r.Close()
	if _, err := io.Copy(w, r); err != nil {
		return Info{}, fmt.Errorf("sync: read %s: %w", name, err)
	}
	return Info{Exists: true, LastModified: timestampFromAttrs(attrs)}, nil
}

// Upload writes the object with fresh authorship metadata.
func (g *GCS) Upload(ctx context.Context, name string, r io.Reader, meta Meta) error {
	w := g.object(name).NewWriter(ctx)
	w.ContentType = "application/octet-stream"
	w.CacheControl = "no-cache, no-store, must-revalidate"
	w.Metadata = map[string]string{
		metaLastModified: strconv.FormatInt(meta.LastModified, 10),
		metaUploadedAt:   meta.UploadedAt.UTC().Format(time.RFC3339),
		metaFileSize:     strconv.FormatInt(meta.Size, 10),
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("sync: upload %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("sync: finalize upload %s: %w", name, err)
	}
	return nil
}
