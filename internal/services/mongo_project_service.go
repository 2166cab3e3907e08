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
	ErrProjectNotFound = errors.New("project not found")
	ErrProjectExists   = errors.New("project already exists")
)

type ProjectService interface {
	Create(ctx context.Context, req *models.CreateProjectRequest) (*models.Project, error)
	List(ctx context.Context, limit, skip int64) ([]*models.Project, error)
	ListNames(ctx context.Context, limit, skip int64) ([]*models.ProjectName, error)
	GetByTitle(ctx context.Context, title string) (*models.Project, error)
	Update(ctx context.Context, title string, req *models.UpdateProjectRequest) error
	Delete(ctx context.Context, title string) error
}

type MongoProjectService struct {
	col *mongo.Collection
}

func NewMongoProjectService(ctx context.Context, db *mongo.Database) *MongoProjectService {
	col := db.Collection("projects")

	// Best-effort unique index; titles are the lookup key.
	_, _ = col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "title", Value: 1}},
		Options: options.Index().SetUnique(true),
	})

	return &MongoProjectService{col: col}
}

func (s *MongoProjectService) Create(ctx context.Context, req *models.CreateProjectRequest) (*models.Project, error) {
	now := time.Now().UTC()
	p := &models.Project{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		Year:        req.Year,
		Genre:       req.Genre,
		Platform:    req.Platform,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := s.col.InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrProjectExists
		}
		return nil, err
	}
	return p, nil
}

func (s *MongoProjectService) List(ctx context.Context, limit, skip int64) ([]*models.Project, error) {
	cur, err := s.col.Find(ctx, bson.M{}, options.Find().SetLimit(limit).SetSkip(skip))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	projects := make([]*models.Project, 0)
	for cur.Next(ctx) {
		var p models.Project
		if err := cur.Decode(&p); err != nil {
			return nil, err
		}
		projects = append(projects, &p)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return projects, nil
}

func (s *MongoProjectService) ListNames(ctx context.Context, limit, skip int64) ([]*models.ProjectName, error) {
	cur, err := s.col.Find(
		ctx,
		bson.M{},
		options.Find().
			SetLimit(limit).
			SetSkip(skip).
			SetProjection(bson.M{"title": 1}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	names := make([]*models.ProjectName, 0)
	for cur.Next(ctx) {
		var n models.ProjectName
		if err := cur.Decode(&n); err != nil {
			return nil, err
		}
		names = append(names, &n)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

func (s *MongoProjectService) GetByTitle(ctx context.Context, title string) (*models.Project, error) {
	var p models.Project
	if err := s.col.FindOne(ctx, bson.M{"title": title}).Decode(&p); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *MongoProjectService) Update(ctx context.Context, title string, req *models.UpdateProjectRequest) error {
	set := bson.M{"updated_at": time.Now().UTC()}

	if req.Description != nil {
		set["description"] = *req.Description
	}
	if req.Year != nil {
		set["year"] = *req.Year
	}
	if req.Genre != nil {
		set["genre"] = *req.Genre
	}
	if req.Platform != nil {
		set["platform"] = *req.Platform
	}

	res, err := s.col.UpdateOne(ctx, bson.M{"title": title}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrProjectNotFound
	}
	return nil
}

func (s *MongoProjectService) Delete(ctx context.Context, title string) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"title": title})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrProjectNotFound
	}
	return nil
}
