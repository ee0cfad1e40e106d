// Package mongostore implements the repository interfaces on MongoDB.
package mongostore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ManuelReschke/NewsDesk/app/models"
	"github.com/ManuelReschke/NewsDesk/app/repository"
)

const (
	contentCollection      = "content_items"
	profileCollection      = "user_profiles"
	entitlementCollection  = "entitlements"
	webhookEventCollection = "billing_webhook_events"
)

// NewRepositories wires every Mongo repository to the same database.
func NewRepositories(db *mongo.Database) *repository.Repositories {
	return &repository.Repositories{
		Content:      &ContentRepository{col: db.Collection(contentCollection)},
		UserProfile:  &UserProfileRepository{col: db.Collection(profileCollection)},
		Entitlement:  &EntitlementRepository{col: db.Collection(entitlementCollection)},
		WebhookEvent: &WebhookEventRepository{col: db.Collection(webhookEventCollection)},
	}
}

// EnsureIndexes creates the dedup key and the lookup indexes. Safe to run on every boot.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	if _, err := db.Collection(webhookEventCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "provider", Value: 1}, {Key: "provider_event_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("ux_provider_event"),
	}); err != nil {
		return err
	}
	if _, err := db.Collection(contentCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "author_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}); err != nil {
		return err
	}
	_, err := db.Collection(entitlementCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return err
}

func translateErr(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repository.ErrNotFound
	}
	return err
}

type ContentRepository struct {
	col *mongo.Collection
}

func (r *ContentRepository) Create(ctx context.Context, item *models.ContentItem) error {
	now := time.Now().UTC()
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.Version == 0 {
		item.Version = 1
	}
	if item.Status == "" {
		item.Status = models.ContentStatusPending
	}
	item.CreatedAt = now
	item.UpdatedAt = now
	_, err := r.col.InsertOne(ctx, item)
	return err
}

func (r *ContentRepository) GetByID(ctx context.Context, id string) (*models.ContentItem, error) {
	var item models.ContentItem
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&item); err != nil {
		return nil, translateErr(err)
	}
	return &item, nil
}

func (r *ContentRepository) List(ctx context.Context, filter repository.ContentFilter) ([]models.ContentItem, error) {
	q := bson.M{}
	if filter.AuthorID != "" {
		q["author_id"] = filter.AuthorID
	}
	if filter.Status != "" {
		q["status"] = filter.Status
	}
	cursor, err := r.col.Find(ctx, q, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := []models.ContentItem{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *ContentRepository) Update(ctx context.Context, item *models.ContentItem, expectedVersion int64) error {
	now := time.Now().UTC()
	next := expectedVersion + 1
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": item.ID, "version": expectedVersion},
		bson.M{"$set": bson.M{
			"title":      item.Title,
			"detail":     item.Detail,
			"status":     item.Status,
			"version":    next,
			"updated_at": now,
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		n, err := r.col.CountDocuments(ctx, bson.M{"_id": item.ID})
		if err != nil {
			return err
		}
		if n == 0 {
			return repository.ErrNotFound
		}
		return repository.ErrVersionConflict
	}
	item.Version = next
	item.UpdatedAt = now
	return nil
}

func (r *ContentRepository) Delete(ctx context.Context, id string) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

type UserProfileRepository struct {
	col *mongo.Collection
}

func (r *UserProfileRepository) GetByID(ctx context.Context, id string) (*models.UserProfile, error) {
	var p models.UserProfile
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, translateErr(err)
	}
	return &p, nil
}

func (r *UserProfileRepository) SetChannelToken(ctx context.Context, id string, token *string, at time.Time) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$set": bson.M{
				"channel_token":     token,
				"last_token_update": at,
				"updated_at":        at,
			},
			"$setOnInsert": bson.M{"created_at": at},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

type EntitlementRepository struct {
	col *mongo.Collection
}

func (r *EntitlementRepository) Create(ctx context.Context, e *models.Entitlement) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now
	_, err := r.col.InsertOne(ctx, e)
	return err
}

func (r *EntitlementRepository) ListActiveByUser(ctx context.Context, userID string) ([]models.Entitlement, error) {
	cursor, err := r.col.Find(ctx,
		bson.M{"user_id": userID, "status": models.EntitlementStatusActive},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []models.Entitlement
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

type WebhookEventRepository struct {
	col *mongo.Collection
}

func (r *WebhookEventRepository) CreateIfNotExists(ctx context.Context, event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now

	created := true
	if _, err := r.col.InsertOne(ctx, event); err != nil {
		if !mongo.IsDuplicateKeyError(err) {
			return false, nil, err
		}
		created = false
	}

	var stored models.BillingWebhookEvent
	err := r.col.FindOne(ctx, bson.M{
		"provider":          event.Provider,
		"provider_event_id": event.ProviderEventID,
	}).Decode(&stored)
	if err != nil {
		return false, nil, translateErr(err)
	}
	return created, &stored, nil
}

func (r *WebhookEventRepository) MarkProcessed(ctx context.Context, id string, processingError string) error {
	now := time.Now().UTC()
	_, err := r.col.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"processed_at":     now,
		"processing_error": processingError,
		"updated_at":       now,
	}})
	return err
}
