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
	ErrFilterNotFound    = errors.New("filter option not found")
	ErrFilterExists      = errors.New("filter option already exists")
	ErrUnknownFilterKind = errors.New("unknown filter kind")
)

// FilterService manages the named lookup records (languages, genres,
// platforms, skills) that talents and projects reference by id.
type FilterService interface {
	Create(ctx context.Context, kind, title string) (*models.FilterOption, error)
	List(ctx context.Context, kind string) ([]*models.FilterOption, error)
	UpdateTitle(ctx context.Context, kind, title, newTitle string) error
	Delete(ctx context.Context, kind, title string) error
	FindByTitles(ctx context.Context, kind string, titles []string) ([]*models.FilterOption, error)
}

type MongoFilterService struct {
	cols map[string]*mongo.Collection
}

func NewMongoFilterService(ctx context.Context, db *mongo.Database) *MongoFilterService {
	collections := map[string]string{
		models.FilterKindLanguage: "languages",
		models.FilterKindGenre:    "genres",
		models.FilterKindPlatform: "platforms",
		models.FilterKindSkill:    "skills",
	}

	cols := make(map[string]*mongo.Collection, len(collections))
	for kind, name := range collections {
		col := db.Collection(name)
		// Titles are the lookup key; best-effort unique index.
		_, _ = col.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "title", Value: 1}},
			Options: options.Index().SetUnique(true),
		})
		cols[kind] = col
	}
	return &MongoFilterService{cols: cols}
}

func (s *MongoFilterService) collection(kind string) (*mongo.Collection, error) {
	col, ok := s.cols[kind]
	if !ok {
		return nil, ErrUnknownFilterKind
	}
	return col, nil
}

func (s *MongoFilterService) Create(ctx context.Context, kind, title string) (*models.FilterOption, error) {
	col, err := s.collection(kind)
	if err != nil {
		return nil, err
	}

	opt := &models.FilterOption{
		ID:        uuid.New().String(),
		Title:     title,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := col.InsertOne(ctx, opt); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrFilterExists
		}
		return nil, err
	}
	return opt, nil
}

func (s *MongoFilterService) List(ctx context.Context, kind string) ([]*models.FilterOption, error) {
	col, err := s.collection(kind)
	if err != nil {
		return nil, err
	}

	cur, err := col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "title", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	opts := make([]*models.FilterOption, 0)
	for cur.Next(ctx) {
		var o models.FilterOption
		if err := cur.Decode(&o); err != nil {
			return nil, err
		}
		opts = append(opts, &o)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return opts, nil
}

func (s *MongoFilterService) UpdateTitle(ctx context.Context, kind, title, newTitle string) error {
	col, err := s.collection(kind)
	if err != nil {
		return err
	}

	res, err := col.UpdateOne(ctx, bson.M{"title": title}, bson.M{"$set": bson.M{"title": newTitle}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrFilterExists
		}
		return err
	}
	if res.MatchedCount == 0 {
		return ErrFilterNotFound
	}
	return nil
}

func (s *MongoFilterService) Delete(ctx context.Context, kind, title string) error {
	col, err := s.collection(kind)
	if err != nil {
		return err
	}

	res, err := col.DeleteOne(ctx, bson.M{"title": title})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrFilterNotFound
	}
	return nil
}

// FindByTitles resolves titles to their reference records. Unknown titles
// are simply absent from the result; callers decide what an empty
// resolution means.
func (s *MongoFilterService) FindByTitles(ctx context.Context, kind string, titles []string) ([]*models.FilterOption, error) {
	col, err := s.collection(kind)
	if err != nil {
		return nil, err
	}
	if len(titles) == 0 {
		return []*models.FilterOption{}, nil
	}

	cur, err := col.Find(ctx, bson.M{"title": bson.M{"$in": titles}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	opts := make([]*models.FilterOption, 0, len(titles))
	for cur.Next(ctx) {
		var o models.FilterOption
		if err := cur.Decode(&o); err != nil {
			return nil, err
		}
		opts = append(opts, &o)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return opts, nil
}
