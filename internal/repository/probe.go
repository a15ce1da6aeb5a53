package repository

import (
	"context"
	"errors"
	"time"

	"farmwatch-backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ProbeRepository struct {
	collection *mongo.Collection
}

func NewProbeRepository(db *mongo.Database) *ProbeRepository {
	return &ProbeRepository{
		collection: db.Collection("probes"),
	}
}

func (r *ProbeRepository) Create(probe *models.Probe) (*models.Probe, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := r.collection.InsertOne(ctx, probe)
	if err != nil {
		return nil, err
	}

	probe.ID = result.InsertedID.(primitive.ObjectID)
	return probe, nil
}

func (r *ProbeRepository) FindByID(id string) (*models.Probe, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errors.New("invalid probe ID")
	}

	var probe models.Probe
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&probe)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.New("probe not found")
		}
		return nil, err
	}

	return &probe, nil
}

func (r *ProbeRepository) FindAll() ([]*models.Probe, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var probes []*models.Probe
	for cursor.Next(ctx) {
		var probe models.Probe
		if err := cursor.Decode(&probe); err != nil {
			return nil, err
		}
		probes = append(probes, &probe)
	}

	return probes, nil
}

func (r *ProbeRepository) FindByStatus(status string) ([]*models.Probe, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "last_active", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"status": status}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var probes []*models.Probe
	for cursor.Next(ctx) {
		var probe models.Probe
		if err := cursor.Decode(&probe); err != nil {
			return nil, err
		}
		probes = append(probes, &probe)
	}

	return probes, nil
}

func (r *ProbeRepository) Update(id string, probe *models.Probe) (*models.Probe, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errors.New("invalid probe ID")
	}

	update := bson.M{
		"$set": probe,
	}

	result := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var updatedProbe models.Probe
	if err := result.Decode(&updatedProbe); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.New("probe not found")
		}
		return nil, err
	}

	return &updatedProbe, nil
}

// UpdateReading stores the latest sensor reading and refreshes liveness
// fields in one write.
func (r *ProbeRepository) UpdateReading(id string, reading *models.SensorReading) (*models.Probe, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errors.New("invalid probe ID")
	}

	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"current_reading": reading,
			"status":          models.ProbeStatusOnline,
			"last_active":     now,
			"updated_at":      now,
		},
	}

	result := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var updatedProbe models.Probe
	if err := result.Decode(&updatedProbe); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.New("probe not found")
		}
		return nil, err
	}

	return &updatedProbe, nil
}

func (r *ProbeRepository) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return errors.New("invalid probe ID")
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}

	if result.DeletedCount == 0 {
		return errors.New("probe not found")
	}

	return nil
}
