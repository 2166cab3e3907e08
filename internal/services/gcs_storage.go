package services

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// GCSStorage keeps media blobs in a Firebase Storage (GCS) bucket and hands
// out tokenized download URLs.
type GCSStorage struct {
	client *storage.Client
	bucket string
}

// NewGCSStorage creates the storage client once at server startup. Uses
// Application Default Credentials.
func NewGCSStorage(ctx context.Context, bucket string) (*GCSStorage, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("media storage client: %w", err)
	}
	return &GCSStorage{client: client, bucket: bucket}, nil
}

func (g *GCSStorage) Put(ctx context.Context, objectPath, contentType string, r io.Reader) (string, int64, error) {
	token := uuid.New().String()

	w := g.client.Bucket(g.bucket).Object(objectPath).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{"firebaseStorageDownloadTokens": token}

	n, err := io.Copy(w, r)
	if err != nil {
		_ = w.Close()
		return "", 0, fmt.Errorf("write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", 0, fmt.Errorf("finalize object: %w", err)
	}

	return downloadURL(g.bucket, objectPath, token), n, nil
}

func (g *GCSStorage) Delete(ctx context.Context, objectPath string) error {
	err := g.client.Bucket(g.bucket).Object(objectPath).Delete(ctx)
	if err == storage.ErrObjectNotExist {
		return nil
	}
	return err
}

func downloadURL(bucket, objectName, token string) string {
	return fmt.Sprintf(
		"https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		bucket,
		url.PathEscape(objectName),
		url.QueryEscape(token),
	)
}
