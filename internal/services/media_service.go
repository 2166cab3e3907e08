package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"

	"github.com/castboard/backend/internal/models"
)

var ErrMediaNotFound = errors.New("media not found")

// BlobStorage persists raw media bytes. Put returns the public URL and the
// number of bytes written.
type BlobStorage interface {
	Put(ctx context.Context, objectPath, contentType string, r io.Reader) (string, int64, error)
	Delete(ctx context.Context, objectPath string) error
}

// MediaService stores uploaded files and the documents talent records
// reference them by.
type MediaService interface {
	Store(ctx context.Context, kind, owner, filename, contentType string, r io.Reader) (*models.Media, error)
	GetMany(ctx context.Context, ids []string) (map[string]*models.Media, error)
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) error
}

type MongoMediaService struct {
	col   *mongo.Collection
	blobs BlobStorage
}

func NewMongoMediaService(db *mongo.Database, blobs BlobStorage) *MongoMediaService {
	return &MongoMediaService{
		col:   db.Collection("media"),
		blobs: blobs,
	}
}

// Store writes the blob first and only then the document, so a reference
// can never point at missing bytes.
func (s *MongoMediaService) Store(ctx context.Context, kind, owner, filename, contentType string, r io.Reader) (*models.Media, error) {
	id := uuid.New().String()

	ext := filepath.Ext(filename)
	if ext == "" {
		switch kind {
		case models.MediaKindVideo:
			ext = ".mp4"
		default:
			ext = ".jpg"
		}
	}
	objectPath := path.Join("media", strings.ToLower(kind), id+ext)

	url, size, err := s.blobs.Put(ctx, objectPath, contentType, r)
	if err != nil {
		return nil, fmt.Errorf("store media: %w", err)
	}

	m := &models.Media{
		ID:          id,
		Kind:        kind,
		Owner:       owner,
		Filename:    filename,
		ObjectPath:  objectPath,
		URL:         url,
		Size:        size,
		ContentType: contentType,
		CreatedAt:   time.Now().UTC(),
	}

	if _, err := s.col.InsertOne(ctx, m); err != nil {
		// Roll the blob back so a failed insert leaves no orphaned bytes.
		_ = s.blobs.Delete(ctx, objectPath)
		return nil, err
	}
	return m, nil
}

func (s *MongoMediaService) GetMany(ctx context.Context, ids []string) (map[string]*models.Media, error) {
	out := make(map[string]*models.Media)
	if len(ids) == 0 {
		return out, nil
	}

	cur, err := s.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var m models.Media
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		out[m.ID] = &m
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoMediaService) Delete(ctx context.Context, id string) error {
	var m models.Media
	if err := s.col.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrMediaNotFound
		}
		return err
	}
	return s.blobs.Delete(ctx, m.ObjectPath)
}

// DeleteMany releases a batch of media records concurrently.
func (s *MongoMediaService) DeleteMany(ctx context.Context, ids []string) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			return s.Delete(gctx, id)
		})
	}
	return g.Wait()
}
