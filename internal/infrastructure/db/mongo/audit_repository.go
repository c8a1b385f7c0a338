package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/smbsuite/platform/internal/core/domain"
)

const auditCollection = "audit_logs"

// MongoAuditRepository persists security events. Writes are bounded by a
// short timeout so a slow audit store cannot stall the request path; all
// callers treat Record as fire-and-forget.
type MongoAuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *MongoAuditRepository {
	return &MongoAuditRepository{coll: db.Collection(auditCollection)}
}

type mongoAuditEvent struct {
	ActorID      string         `bson:"actor_id,omitempty"`
	CompanyID    string         `bson:"company_id,omitempty"`
	Action       string         `bson:"action"`
	ResourceKind string         `bson:"resource_kind,omitempty"`
	ResourceID   string         `bson:"resource_id,omitempty"`
	Success      bool           `bson:"success"`
	Detail       map[string]any `bson:"detail,omitempty"`
	IP           string         `bson:"ip,omitempty"`
	Timestamp    int64          `bson:"timestamp"`
}

func (r *MongoAuditRepository) Record(ctx context.Context, event domain.AuditEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	writeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	doc := mongoAuditEvent{
		ActorID:      event.ActorID,
		CompanyID:    event.CompanyID,
		Action:       event.Action,
		ResourceKind: event.ResourceKind,
		ResourceID:   event.ResourceID,
		Success:      event.Success,
		Detail:       event.Detail,
		IP:           event.IP,
		Timestamp:    event.Timestamp.Unix(),
	}
	if _, err := r.coll.InsertOne(writeCtx, doc); err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}
