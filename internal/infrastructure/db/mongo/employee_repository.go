package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/smbsuite/platform/internal/core/domain"
)

const employeeCollection = "employees"

// MongoEmployeeRepository is the read surface for the sample tenant-scoped
// resource. Collection queries are filtered by company id here, at the
// query level; single fetches by id are cross-checked by the handler with
// domain.AssertOwned.
type MongoEmployeeRepository struct {
	coll *mongo.Collection
}

func NewEmployeeRepository(db *mongo.Database) *MongoEmployeeRepository {
	return &MongoEmployeeRepository{coll: db.Collection(employeeCollection)}
}

type mongoEmployee struct {
	ID        string  `bson:"_id"`
	CompanyID string  `bson:"company_id"`
	FirstName string  `bson:"first_name"`
	LastName  string  `bson:"last_name"`
	Email     string  `bson:"email"`
	Position  string  `bson:"position,omitempty"`
	Salary    float64 `bson:"salary,omitempty"`
	HiredAt   int64   `bson:"hired_at"`
	CreatedAt int64   `bson:"created_at"`
	UpdatedAt int64   `bson:"updated_at"`
}

func (me mongoEmployee) toDomain() *domain.Employee {
	return &domain.Employee{
		ID:        me.ID,
		CompanyID: me.CompanyID,
		FirstName: me.FirstName,
		LastName:  me.LastName,
		Email:     me.Email,
		Position:  me.Position,
		Salary:    me.Salary,
		HiredAt:   unixToTime(me.HiredAt),
		CreatedAt: unixToTime(me.CreatedAt),
		UpdatedAt: unixToTime(me.UpdatedAt),
	}
}

func (r *MongoEmployeeRepository) ListByCompany(ctx context.Context, companyID string) ([]*domain.Employee, error) {
	cur, err := r.coll.Find(ctx, bson.M{"company_id": companyID})
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer cur.Close(ctx)

	var out []*domain.Employee
	for cur.Next(ctx) {
		var me mongoEmployee
		if err := cur.Decode(&me); err != nil {
			return nil, fmt.Errorf("decode employee: %w", err)
		}
		out = append(out, me.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate employees: %w", err)
	}
	return out, nil
}

func (r *MongoEmployeeRepository) FindByID(ctx context.Context, id string) (*domain.Employee, error) {
	var me mongoEmployee
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&me); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("find employee: %w", err)
	}
	return me.toDomain(), nil
}
