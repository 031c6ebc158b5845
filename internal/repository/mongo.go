package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/elangabilan/AI-Powered-Railway-Complaint-System/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	complaintsCollection = "complaints"
	activityCollection   = "activity_logs"
)

// complaintDocument stores the public id as an ObjectID under _id.
type complaintDocument struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	models.Complaint `bson:",inline"`
}

func (d complaintDocument) toModel() models.Complaint {
	c := d.Complaint
	c.ID = d.ID.Hex()
	return c
}

// MongoStore implements the complaint, activity and analytics stores on
// MongoDB. Complaint ids are ObjectID hex strings.
type MongoStore struct {
	db      *mongo.Database
	timeout time.Duration
}

// NewMongoStore wraps db. timeout bounds each call; zero disables it.
func NewMongoStore(db *mongo.Database, timeout time.Duration) *MongoStore {
	return &MongoStore{db: db, timeout: timeout}
}

func (r *MongoStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *MongoStore) complaints() *mongo.Collection { return r.db.Collection(complaintsCollection) }
func (r *MongoStore) activity() *mongo.Collection   { return r.db.Collection(activityCollection) }

// EnsureIndexes creates the lookup indexes. Failures are collected, not fatal.
func (r *MongoStore) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var errs []error
	if _, err := r.complaints().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "resolvedMonth", Value: -1}}},
	}); err != nil {
		errs = append(errs, fmt.Errorf("complaints indexes: %w", err))
	}
	if _, err := r.activity().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "complaintId", Value: 1}, {Key: "createdAt", Value: -1}},
	}); err != nil {
		errs = append(errs, fmt.Errorf("activity index: %w", err))
	}
	return errors.Join(errs...)
}

// Ping checks connectivity for the readiness check.
func (r *MongoStore) Ping(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.db.Client().Ping(ctx, nil)
}

// Create inserts c and assigns its id.
func (r *MongoStore) Create(ctx context.Context, c *models.Complaint) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	doc := complaintDocument{ID: primitive.NewObjectID(), Complaint: *c}
	if _, err := r.complaints().InsertOne(ctx, doc); err != nil {
		return models.WrapError(models.ErrPersistence, "insert complaint", err)
	}
	c.ID = doc.ID.Hex()
	return nil
}

// FindByID returns the complaint or ErrNotFound. Malformed ids are not found.
func (r *MongoStore) FindByID(ctx context.Context, id string) (*models.Complaint, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.WrapError(models.ErrNotFound, "find complaint", fmt.Errorf("id=%s", id))
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var doc complaintDocument
	err = r.complaints().FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.WrapError(models.ErrNotFound, "find complaint", fmt.Errorf("id=%s", id))
		}
		return nil, models.WrapError(models.ErrPersistence, "find complaint", err)
	}
	c := doc.toModel()
	return &c, nil
}

// Save replaces the stored document with c.
func (r *MongoStore) Save(ctx context.Context, c *models.Complaint) error {
	oid, err := primitive.ObjectIDFromHex(c.ID)
	if err != nil {
		return models.WrapError(models.ErrNotFound, "update complaint", fmt.Errorf("id=%s", c.ID))
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.complaints().ReplaceOne(ctx, bson.M{"_id": oid}, complaintDocument{ID: oid, Complaint: *c})
	if err != nil {
		return models.WrapError(models.ErrPersistence, "update complaint", err)
	}
	if res.MatchedCount == 0 {
		return models.WrapError(models.ErrNotFound, "update complaint", fmt.Errorf("id=%s", c.ID))
	}
	return nil
}

// List returns every complaint in insertion order.
func (r *MongoStore) List(ctx context.Context) ([]models.Complaint, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	cur, err := r.complaints().Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, models.WrapError(models.ErrPersistence, "list complaints", err)
	}
	defer cur.Close(ctx)

	var docs []complaintDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, models.WrapError(models.ErrPersistence, "decode complaints", err)
	}
	out := make([]models.Complaint, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toModel())
	}
	return out, nil
}

// AppendActivity inserts one activity entry.
func (r *MongoStore) AppendActivity(ctx context.Context, entry *models.ActivityLog) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if _, err := r.activity().InsertOne(ctx, entry); err != nil {
		return models.WrapError(models.ErrPersistence, "insert activity", err)
	}
	return nil
}

// ListActivity returns a complaint's trail, newest first.
func (r *MongoStore) ListActivity(ctx context.Context, complaintID string, limit int) ([]models.ActivityLog, error) {
	return r.findActivity(ctx, bson.M{"complaintId": complaintID}, limit)
}

// RecentActivity returns the latest entries across all complaints.
func (r *MongoStore) RecentActivity(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	return r.findActivity(ctx, bson.M{}, limit)
}

func (r *MongoStore) findActivity(ctx context.Context, filter bson.M, limit int) ([]models.ActivityLog, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(int64(limit))
	cur, err := r.activity().Find(ctx, filter, opts)
	if err != nil {
		return nil, models.WrapError(models.ErrPersistence, "list activity", err)
	}
	defer cur.Close(ctx)

	logs := make([]models.ActivityLog, 0)
	if err := cur.All(ctx, &logs); err != nil {
		return nil, models.WrapError(models.ErrPersistence, "decode activity", err)
	}
	return logs, nil
}

type groupCount struct {
	Key   *string `bson:"_id"`
	Count int64   `bson:"count"`
}

func (r *MongoStore) aggregateCounts(ctx context.Context, op string, pipeline mongo.Pipeline) ([]groupCount, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	cur, err := r.complaints().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, models.WrapError(models.ErrPersistence, op, err)
	}
	defer cur.Close(ctx)

	var out []groupCount
	if err := cur.All(ctx, &out); err != nil {
		return nil, models.WrapError(models.ErrPersistence, op, err)
	}
	return out, nil
}

// CountByStatus returns complaint totals keyed by status.
func (r *MongoStore) CountByStatus(ctx context.Context) (map[models.Status]int64, error) {
	groups, err := r.aggregateCounts(ctx, "count by status", mongo.Pipeline{
		{{Key: "$group", Value: bson.D{{Key: "_id", Value: "$status"}, {Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}}}}},
	})
	if err != nil {
		return nil, err
	}
	counts := make(map[models.Status]int64, len(groups))
	for _, g := range groups {
		if g.Key != nil {
			counts[models.Status(*g.Key)] = g.Count
		}
	}
	return counts, nil
}

// CategoryDistribution returns complaint totals per ML category, largest first.
func (r *MongoStore) CategoryDistribution(ctx context.Context) ([]models.CategoryDistribution, error) {
	groups, err := r.aggregateCounts(ctx, "category distribution", mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "category", Value: bson.D{{Key: "$ne", Value: nil}}}}}},
		{{Key: "$group", Value: bson.D{{Key: "_id", Value: "$category"}, {Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	})
	if err != nil {
		return nil, err
	}
	out := make([]models.CategoryDistribution, 0, len(groups))
	for _, g := range groups {
		out = append(out, models.CategoryDistribution{Category: models.StrVal(g.Key), Count: g.Count})
	}
	return out, nil
}

// MonthlyResolutions returns resolved totals per YYYY-MM, newest first.
func (r *MongoStore) MonthlyResolutions(ctx context.Context) ([]models.MonthlyResolution, error) {
	groups, err := r.aggregateCounts(ctx, "monthly resolutions", mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "status", Value: string(models.StatusResolved)},
			{Key: "resolvedMonth", Value: bson.D{{Key: "$ne", Value: nil}}},
		}}},
		{{Key: "$group", Value: bson.D{{Key: "_id", Value: "$resolvedMonth"}, {Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}}}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: -1}}}},
	})
	if err != nil {
		return nil, err
	}
	out := make([]models.MonthlyResolution, 0, len(groups))
	for _, g := range groups {
		out = append(out, models.MonthlyResolution{Month: models.StrVal(g.Key), Count: g.Count})
	}
	return out, nil
}
