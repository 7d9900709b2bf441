package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/quociou/pibao/internal/domain/models"
	"github.com/quociou/pibao/internal/repository"
)

const (
	foodsCollection    = "foods"
	recordsCollection  = "daily_records"
	settingsCollection = "settings"
)

// MongoDBRepository implements repository.Store on top of MongoDB.
type MongoDBRepository struct {
	client   *mongo.Client
	foods    *mongo.Collection
	records  *mongo.Collection
	settings *mongo.Collection
	logger   *zap.Logger
}

var _ repository.Store = (*MongoDBRepository)(nil)

// NewMongoDBRepository connects, pings and makes sure the date index exists.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string, logger *zap.Logger) (*MongoDBRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	db := client.Database(dbName)
	r := &MongoDBRepository{
		client:   client,
		foods:    db.Collection(foodsCollection),
		records:  db.Collection(recordsCollection),
		settings: db.Collection(settingsCollection),
		logger:   logger,
	}

	// one record per date
	_, err = r.records.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "date", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_date"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to ensure date index: %w", err)
	}

	logger.Info("mongodb repository ready", zap.String("database", dbName))
	return r, nil
}

// ListFoods returns the whole catalog with legacy categories normalized.
func (r *MongoDBRepository) ListFoods(ctx context.Context) ([]models.FoodDefinition, error) {
	cur, err := r.foods.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to list foods: %w", err)
	}

	var foods []models.FoodDefinition
	if err := cur.All(ctx, &foods); err != nil {
		return nil, fmt.Errorf("failed to decode foods: %w", err)
	}
	for i := range foods {
		foods[i].Normalize()
	}
	return foods, nil
}

// GetFood loads one catalog entry.
func (r *MongoDBRepository) GetFood(ctx context.Context, id string) (models.FoodDefinition, error) {
	var food models.FoodDefinition
	if err := findOne(ctx, r.foods, bson.D{{Key: "_id", Value: id}}, &food); err != nil {
		return models.FoodDefinition{}, fmt.Errorf("failed to get food %s: %w", id, err)
	}
	food.Normalize()
	return food, nil
}

// PutFood inserts or replaces a catalog entry.
func (r *MongoDBRepository) PutFood(ctx context.Context, food models.FoodDefinition) error {
	_, err := r.foods.ReplaceOne(ctx, bson.D{{Key: "_id", Value: food.ID}}, food, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save food %s: %w", food.ID, err)
	}
	return nil
}

// DeleteFood removes a catalog entry. Records referencing it are left untouched.
func (r *MongoDBRepository) DeleteFood(ctx context.Context, id string) error {
	return deleteOne(ctx, r.foods, bson.D{{Key: "_id", Value: id}})
}

// GetRecord loads the record of a date.
func (r *MongoDBRepository) GetRecord(ctx context.Context, date string) (models.DailyRecord, error) {
	var record models.DailyRecord
	if err := findOne(ctx, r.records, bson.D{{Key: "date", Value: date}}, &record); err != nil {
		return models.DailyRecord{}, fmt.Errorf("failed to get record %s: %w", date, err)
	}
	return record, nil
}

// ListRecords returns records within [from, to] sorted by date.
func (r *MongoDBRepository) ListRecords(ctx context.Context, from, to string) ([]models.DailyRecord, error) {
	bounds := bson.D{}
	if from != "" {
		bounds = append(bounds, bson.E{Key: "$gte", Value: from})
	}
	if to != "" {
		bounds = append(bounds, bson.E{Key: "$lte", Value: to})
	}
	filter := bson.D{}
	if len(bounds) > 0 {
		filter = bson.D{{Key: "date", Value: bounds}}
	}

	cur, err := r.records.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	var records []models.DailyRecord
	if err := cur.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}
	return records, nil
}

// PutRecord upserts the record stored for record.Date.
func (r *MongoDBRepository) PutRecord(ctx context.Context, record models.DailyRecord) error {
	_, err := r.records.ReplaceOne(ctx, bson.D{{Key: "date", Value: record.Date}}, record, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save record %s: %w", record.Date, err)
	}
	r.logger.Debug("record saved", zap.String("date", record.Date))
	return nil
}

// DeleteRecord removes the record of a date.
func (r *MongoDBRepository) DeleteRecord(ctx context.Context, date string) error {
	return deleteOne(ctx, r.records, bson.D{{Key: "date", Value: date}})
}

// GetSettings loads the settings singleton.
func (r *MongoDBRepository) GetSettings(ctx context.Context) (models.AppSettings, error) {
	var settings models.AppSettings
	if err := findOne(ctx, r.settings, bson.D{{Key: "_id", Value: models.SettingsID}}, &settings); err != nil {
		return models.AppSettings{}, fmt.Errorf("failed to get settings: %w", err)
	}
	return settings, nil
}

// PutSettings replaces the settings singleton.
func (r *MongoDBRepository) PutSettings(ctx context.Context, settings models.AppSettings) error {
	settings.ID = models.SettingsID
	_, err := r.settings.ReplaceOne(ctx, bson.D{{Key: "_id", Value: settings.ID}}, settings, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func findOne(ctx context.Context, coll *mongo.Collection, filter bson.D, out interface{}) error {
	err := coll.FindOne(ctx, filter).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repository.ErrNotFound
	}
	return err
}

func deleteOne(ctx context.Context, coll *mongo.Collection, filter bson.D) error {
	res, err := coll.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", coll.Name(), err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
