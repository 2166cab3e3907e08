package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/castboard/backend/internal/models"
)

var (
	ErrBookmarkNotFound = errors.New("bookmark not found")
	ErrBookmarkExists   = errors.New("bookmark already exists")
)

type BookmarkService interface {
	Create(ctx context.Context, userID string, req *models.CreateBookmarkRequest) (*models.Bookmark, error)
	List(ctx context.Context, limit, skip int64) ([]*models.Bookmark, error)
	GetByName(ctx context.Context, name string) (*models.Bookmark, error)
	Toggle(ctx context.Context, name, talent string) (*models.Bookmark, error)
	Delete(ctx context.Context, name string) error
}

type MongoBookmarkService struct {
	col *mongo.Collection
}

func NewMongoBookmarkService(ctx context.Context, db *mongo.Database) *MongoBookmarkService {
	col := db.Collection("bookmarks")

	_, _ = col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})

	return &MongoBookmarkService{col: col}
}

func (s *MongoBookmarkService) Create(ctx context.Context, userID string, req *models.CreateBookmarkRequest) (*models.Bookmark, error) {
	now := time.Now().UTC()
	talents := req.Talents
	if talents == nil {
		talents = []string{}
	}

	b := &models.Bookmark{
		ID:        uuid.New().String(),
		Name:      req.Name,
		UserID:    userID,
		Talents:   talents,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.col.InsertOne(ctx, b); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrBookmarkExists
		}
		return nil, err
	}
	return b, nil
}

func (s *MongoBookmarkService) List(ctx context.Context, limit, skip int64) ([]*models.Bookmark, error) {
	cur, err := s.col.Find(ctx, bson.M{}, options.Find().SetLimit(limit).SetSkip(skip))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	bookmarks := make([]*models.Bookmark, 0)
	for cur.Next(ctx) {
		var b models.Bookmark
		if err := cur.Decode(&b); err != nil {
			return nil, err
		}
		bookmarks = append(bookmarks, &b)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return bookmarks, nil
}

func (s *MongoBookmarkService) GetByName(ctx context.Context, name string) (*models.Bookmark, error) {
	var b models.Bookmark
	if err := s.col.FindOne(ctx, bson.M{"name": name}).Decode(&b); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrBookmarkNotFound
		}
		return nil, err
	}
	return &b, nil
}

// Toggle adds the talent to the list if absent, removes it if present, and
// returns the updated bookmark.
func (s *MongoBookmarkService) Toggle(ctx context.Context, name, talent string) (*models.Bookmark, error) {
	current, err := s.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}

	op := bson.M{"$addToSet": bson.M{"talents": talent}}
	for _, t := range current.Talents {
		if t == talent {
			op = bson.M{"$pull": bson.M{"talents": talent}}
			break
		}
	}
	op["$set"] = bson.M{"updated_at": time.Now().UTC()}

	var updated models.Bookmark
	err = s.col.FindOneAndUpdate(
		ctx,
		bson.M{"name": name},
		op,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrBookmarkNotFound
		}
		return nil, err
	}
	return &updated, nil
}

func (s *MongoBookmarkService) Delete(ctx context.Context, name string) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"name": name})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrBookmarkNotFound
	}
	return nil
}
