package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bahasaku/gateway/internal/core/domain"
	"github.com/bahasaku/gateway/internal/core/ports"
)

const auditCollection = "session_events"

// AuditRepository implements ports.AuditRepository using MongoDB. One
// document per session lifecycle event.
type AuditRepository struct {
	db *mongo.Database
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{db: db}
}

// Record persists a session event to the session_events collection.
func (r *AuditRepository) Record(ctx context.Context, event domain.SessionEvent) error {
	doc := bson.M{
		"session_id":  event.SessionID,
		"kind":        event.Kind,
		"at":          event.At.UTC(),
		"recorded_at": time.Now().UTC(),
	}
	if event.UserID != 0 {
		doc["user_id"] = event.UserID
	}
	if event.Email != "" {
		doc["email"] = event.Email
	}
	if event.Kind == domain.AuditLogin {
		doc["remember"] = event.Remember
	}

	if _, err := r.db.Collection(auditCollection).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert session event: %w", err)
	}
	return nil
}

// RecentForUser returns the newest session events for one user, most recent
// first. Used by the admin back-office activity view.
func (r *AuditRepository) RecentForUser(ctx context.Context, userID int64, limit int64) ([]domain.SessionEvent, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "at", Value: -1}}).
		SetLimit(limit)

	cur, err := r.db.Collection(auditCollection).Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find session events: %w", err)
	}
	defer cur.Close(ctx)

	var events []domain.SessionEvent
	for cur.Next(ctx) {
		var doc struct {
			SessionID string    `bson:"session_id"`
			UserID    int64     `bson:"user_id"`
			Email     string    `bson:"email"`
			Kind      string    `bson:"kind"`
			Remember  bool      `bson:"remember"`
			At        time.Time `bson:"at"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode session event: %w", err)
		}
		events = append(events, domain.SessionEvent{
			SessionID: doc.SessionID,
			UserID:    doc.UserID,
			Email:     doc.Email,
			Kind:      doc.Kind,
			Remember:  doc.Remember,
			At:        doc.At,
		})
	}
	return events, cur.Err()
}

var _ ports.AuditRepository = (*AuditRepository)(nil)
