package mongo

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/autodealer/showroom/internal/core/domain"
)

const logsCollection = "api_logs"

// LogRepository implements ports.LogRepository on the api_logs collection.
type LogRepository struct {
	db *mongo.Database
}

// NewLogRepository creates a new LogRepository.
func NewLogRepository(db *mongo.Database) *LogRepository {
	return &LogRepository{db: db}
}

func (r *LogRepository) coll() *mongo.Collection {
	return r.db.Collection(logsCollection)
}

// Insert appends e. Entries are never updated afterwards.
func (r *LogRepository) Insert(ctx context.Context, e *domain.LogEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.Timestamp = e.Timestamp.UTC()
	if _, err := r.coll().InsertOne(ctx, e); err != nil {
		return fmt.Errorf("insert api log: %w", err)
	}
	return nil
}

// List returns entries newest first.
func (r *LogRepository) List(ctx context.Context, f domain.LogFilter) ([]*domain.LogEntry, int64, error) {
	filter := logFilter(f)

	total, err := r.coll().CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count api logs: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetSkip(int64((f.Page - 1) * f.Limit)).
		SetLimit(int64(f.Limit))

	cur, err := r.coll().Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find api logs: %w", err)
	}
	defer cur.Close(ctx)

	entries := make([]*domain.LogEntry, 0)
	if err := cur.All(ctx, &entries); err != nil {
		return nil, 0, fmt.Errorf("decode api logs: %w", err)
	}
	return entries, total, nil
}

// Purge removes entries older than before, or every entry when before is nil.
func (r *LogRepository) Purge(ctx context.Context, before *time.Time) (int64, error) {
	filter := bson.M{}
	if before != nil {
		filter["timestamp"] = bson.M{"$lt": before.UTC()}
	}
	res, err := r.coll().DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("purge api logs: %w", err)
	}
	return res.DeletedCount, nil
}

func logFilter(f domain.LogFilter) bson.M {
	filter := bson.M{}
	if f.Method != "" {
		filter["method"] = f.Method
	}
	if f.StatusCode != 0 {
		filter["status_code"] = f.StatusCode
	}
	if f.UserID != "" {
		filter["user_id"] = f.UserID
	}
	if f.EndpointPrefix != "" {
		filter["endpoint"] = bson.M{"$regex": "^" + regexp.QuoteMeta(f.EndpointPrefix)}
	}
	return filter
}
