package repositories

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/skillspad/api/internal/app/models"
	"github.com/skillspad/api/internal/db"
)

// IPartialPaymentRepository reads instalment records
type IPartialPaymentRepository interface {
	HasPartialPayment(ctx context.Context, userID primitive.ObjectID) (bool, error)
}

// PartialPaymentRepository reads the partial_payments collection
type PartialPaymentRepository struct {
	coll *mongo.Collection
}

// NewPartialPaymentRepository creates a new PartialPaymentRepository
func NewPartialPaymentRepository(database *mongo.Database) *PartialPaymentRepository {
	return &PartialPaymentRepository{coll: database.Collection(db.PartialPaymentsCollection)}
}

// HasPartialPayment reports whether the user is part way through paying
func (r *PartialPaymentRepository) HasPartialPayment(ctx context.Context, userID primitive.ObjectID) (bool, error) {
	filter := bson.M{"userId": userID, "status": models.PaymentStatusPartiallyPaid}
	n, err := r.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("error checking partial payments: %w", err)
	}
	return n > 0, nil
}
