package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/smbsuite/platform/internal/core/domain"
)

const companyCollection = "companies"

type MongoCompanyRepository struct {
	coll *mongo.Collection
}

func NewCompanyRepository(db *mongo.Database) *MongoCompanyRepository {
	return &MongoCompanyRepository{coll: db.Collection(companyCollection)}
}

type mongoCompany struct {
	ID        string `bson:"_id"`
	Name      string `bson:"name"`
	Email     string `bson:"email"`
	Phone     string `bson:"phone,omitempty"`
	Address   string `bson:"address,omitempty"`
	TaxID     string `bson:"tax_id,omitempty"`
	Status    string `bson:"status"`
	CreatedAt int64  `bson:"created_at"`
	UpdatedAt int64  `bson:"updated_at"`
}

func (mc mongoCompany) toDomain() *domain.Company {
	return &domain.Company{
		ID:        mc.ID,
		Name:      mc.Name,
		Email:     mc.Email,
		Phone:     mc.Phone,
		Address:   mc.Address,
		TaxID:     mc.TaxID,
		Status:    domain.CompanyStatus(mc.Status),
		CreatedAt: unixToTime(mc.CreatedAt),
		UpdatedAt: unixToTime(mc.UpdatedAt),
	}
}

func (r *MongoCompanyRepository) Create(ctx context.Context, company *domain.Company) (*domain.Company, error) {
	doc := mongoCompany{
		ID:        company.ID,
		Name:      company.Name,
		Email:     company.Email,
		Phone:     company.Phone,
		Address:   company.Address,
		TaxID:     company.TaxID,
		Status:    string(company.Status),
		CreatedAt: company.CreatedAt.Unix(),
		UpdatedAt: company.UpdatedAt.Unix(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrCompanyExists
		}
		return nil, fmt.Errorf("insert company: %w", err)
	}
	return company, nil
}

func (r *MongoCompanyRepository) FindByID(ctx context.Context, id string) (*domain.Company, error) {
	var mc mongoCompany
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&mc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrCompanyNotFound
		}
		return nil, fmt.Errorf("find company by id: %w", err)
	}
	return mc.toDomain(), nil
}

func (r *MongoCompanyRepository) FindByEmail(ctx context.Context, email string) (*domain.Company, error) {
	var mc mongoCompany
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&mc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrCompanyNotFound
		}
		return nil, fmt.Errorf("find company by email: %w", err)
	}
	return mc.toDomain(), nil
}

// Delete removes a company outright. Used only to roll back a partially
// completed registration.
func (r *MongoCompanyRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete company: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrCompanyNotFound
	}
	return nil
}
