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
	ErrTalentNotFound = errors.New("talent not found")
	ErrTalentExists   = errors.New("talent already exists")
)

// TalentService is the talent record store.
type TalentService interface {
	List(ctx context.Context, q *models.TalentQuery) ([]*models.Talent, error)
	ListNames(ctx context.Context, limit, skip int64) ([]*models.TalentName, error)
	GetByName(ctx context.Context, name string) (*models.Talent, error)
	Create(ctx context.Context, t *models.Talent) error
	Update(ctx context.Context, name string, req *models.UpdateTalentRequest) error
	Delete(ctx context.Context, name string) (*models.Talent, error)
}

type MongoTalentService struct {
	col *mongo.Collection
}

func NewMongoTalentService(ctx context.Context, db *mongo.Database) *MongoTalentService {
	col := db.Collection("talents")

	// The unique name index backs the create conflict guarantee; the
	// check-then-insert in the handler only exists for a clean 409.
	// Best-effort.
	_, _ = col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "language_spoken", Value: 1}}},
		{Keys: bson.D{{Key: "birth_year", Value: 1}}},
	})

	return &MongoTalentService{col: col}
}

// buildTalentFilter translates a typed query into a bson predicate. All
// supplied conditions AND together. A language condition that resolved to
// no ids still constrains the query, so the result set is empty.
func buildTalentFilter(q *models.TalentQuery) bson.M {
	filter := bson.M{}

	if q.FilterByLanguage() {
		ids := q.LanguageIDs
		if ids == nil {
			ids = []string{}
		}
		filter["language_spoken"] = bson.M{"$in": ids}
	}
	if q.Gender != "" {
		filter["gender"] = q.Gender
	}
	if q.Projects != "" {
		filter["projects"] = q.Projects
	}
	if q.Height != nil {
		filter["height"] = rangeToBson(*q.Height)
	}
	if q.BirthYear != nil {
		filter["birth_year"] = rangeToBson(*q.BirthYear)
	}
	return filter
}

func rangeToBson(r models.NumericRange) interface{} {
	if r.Exact() {
		return r.Low
	}
	return bson.M{"$gte": r.Low, "$lte": r.High}
}

func (s *MongoTalentService) List(ctx context.Context, q *models.TalentQuery) ([]*models.Talent, error) {
	cur, err := s.col.Find(
		ctx,
		buildTalentFilter(q),
		options.Find().SetLimit(q.Limit).SetSkip(q.Skip),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	talents := make([]*models.Talent, 0)
	for cur.Next(ctx) {
		var t models.Talent
		if err := cur.Decode(&t); err != nil {
			return nil, err
		}
		talents = append(talents, &t)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return talents, nil
}

func (s *MongoTalentService) ListNames(ctx context.Context, limit, skip int64) ([]*models.TalentName, error) {
	cur, err := s.col.Find(
		ctx,
		bson.M{},
		options.Find().
			SetLimit(limit).
			SetSkip(skip).
			SetProjection(bson.M{"name": 1}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	names := make([]*models.TalentName, 0)
	for cur.Next(ctx) {
		var n models.TalentName
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

func (s *MongoTalentService) GetByName(ctx context.Context, name string) (*models.Talent, error) {
	var t models.Talent
	if err := s.col.FindOne(ctx, bson.M{"name": name}).Decode(&t); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrTalentNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (s *MongoTalentService) Create(ctx context.Context, t *models.Talent) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	if _, err := s.col.InsertOne(ctx, t); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrTalentExists
		}
		return err
	}
	return nil
}

// Update applies a partial $set built from the supplied fields only;
// omitted fields are preserved.
func (s *MongoTalentService) Update(ctx context.Context, name string, req *models.UpdateTalentRequest) error {
	set := bson.M{"updated_at": time.Now().UTC()}

	if req.BirthYear != nil {
		set["birth_year"] = *req.BirthYear
	}
	if req.Gender != nil {
		set["gender"] = *req.Gender
	}
	if req.Height != nil {
		set["height"] = *req.Height
	}
	if req.Email != nil {
		set["email"] = *req.Email
	}
	if req.Phone != nil {
		set["phone"] = *req.Phone
	}
	if req.LanguageSpoken != nil {
		set["language_spoken"] = req.LanguageSpoken
	}
	if req.Projects != nil {
		set["projects"] = *req.Projects
	}
	if req.WithApplause != nil {
		set["with_applause"] = *req.WithApplause
	}
	if req.ThumbnailID != nil {
		set["thumbnail_id"] = *req.ThumbnailID
	}
	if req.IntroVideoID != nil {
		set["intro_video_id"] = *req.IntroVideoID
	}

	res, err := s.col.UpdateOne(ctx, bson.M{"name": name}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrTalentNotFound
	}
	return nil
}

// Delete removes the record and returns it so the caller can release any
// attached media.
func (s *MongoTalentService) Delete(ctx context.Context, name string) (*models.Talent, error) {
	var t models.Talent
	if err := s.col.FindOneAndDelete(ctx, bson.M{"name": name}).Decode(&t); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrTalentNotFound
		}
		return nil, err
	}
	return &t, nil
}
