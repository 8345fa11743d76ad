package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/skillspad/api/internal/app/models"
	"github.com/skillspad/api/internal/db"
	"github.com/skillspad/api/internal/pkg/apperrors"
	"github.com/skillspad/api/internal/pkg/dberrors"
)

// TransactionFilter selects a user's transactions. Zero Limit means no limit.
type TransactionFilter struct {
	UserID primitive.ObjectID
	Status models.TransactionStatus
	Skip   int64
	Limit  int64
}

// ITransactionRepository defines the interface for payment attempt persistence
type ITransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	GetByReference(ctx context.Context, reference string) (*models.Transaction, error)
	FindLatest(ctx context.Context, userID, courseID primitive.ObjectID, status models.TransactionStatus) (*models.Transaction, error)
	Exists(ctx context.Context, userID, courseID primitive.ObjectID, status models.TransactionStatus) (bool, error)
	Transition(ctx context.Context, reference string, from, to models.TransactionStatus, payload map[string]interface{}, at time.Time) (bool, error)
	MarkNotified(ctx context.Context, reference string, at time.Time) (bool, error)
	ListByUser(ctx context.Context, filter TransactionFilter) ([]*models.Transaction, error)
	CountByUser(ctx context.Context, filter TransactionFilter) (int64, error)
}

// TransactionRepository handles database operations for transactions
type TransactionRepository struct {
	coll *mongo.Collection
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(database *mongo.Database) *TransactionRepository {
	return &TransactionRepository{coll: database.Collection(db.TransactionsCollection)}
}

// Create inserts a transaction; references are unique
func (r *TransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	res, err := r.coll.InsertOne(ctx, tx)
	if err != nil {
		if dberrors.IsDuplicateKeyError(err) {
			return apperrors.NewConflictError("Payment reference already used")
		}
		return fmt.Errorf("error inserting transaction: %w", err)
	}
	tx.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// GetByReference retrieves a transaction by its gateway reference
func (r *TransactionRepository) GetByReference(ctx context.Context, reference string) (*models.Transaction, error) {
	var tx models.Transaction
	if err := r.coll.FindOne(ctx, bson.M{"reference": reference}).Decode(&tx); err != nil {
		if dberrors.IsNotFound(err) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("error finding transaction: %w", err)
	}
	return &tx, nil
}

// FindLatest returns the newest transaction of the user for the course in status
func (r *TransactionRepository) FindLatest(ctx context.Context, userID, courseID primitive.ObjectID, status models.TransactionStatus) (*models.Transaction, error) {
	filter := bson.M{"userId": userID, "courseId": courseID, "status": status}
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	var tx models.Transaction
	if err := r.coll.FindOne(ctx, filter, opts).Decode(&tx); err != nil {
		if dberrors.IsNotFound(err) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("error finding transaction: %w", err)
	}
	return &tx, nil
}

// Exists reports whether the user has a transaction in status. A zero
// courseID matches any course.
func (r *TransactionRepository) Exists(ctx context.Context, userID, courseID primitive.ObjectID, status models.TransactionStatus) (bool, error) {
	filter := bson.M{"userId": userID, "status": status}
	if !courseID.IsZero() {
		filter["courseId"] = courseID
	}
	n, err := r.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("error checking transactions: %w", err)
	}
	return n > 0, nil
}

// Transition moves a transaction from one status to another, storing the
// gateway payload. It is a compare-and-set: it reports false, without error,
// when the transaction was no longer in from.
func (r *TransactionRepository) Transition(ctx context.Context, reference string, from, to models.TransactionStatus, payload map[string]interface{}, at time.Time) (bool, error) {
	set := bson.M{"status": to, "updatedAt": at, "verifiedAt": at}
	if payload != nil {
		set["gatewayResponse"] = payload
	}
	res, err := r.coll.UpdateOne(ctx, transitionFilter(reference, from), bson.M{"$set": set})
	if err != nil {
		return false, fmt.Errorf("error updating transaction: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

// transitionFilter matches the transaction only while it is still in from
func transitionFilter(reference string, from models.TransactionStatus) bson.M {
	return bson.M{"reference": reference, "status": from}
}

// notifyFilter matches a successful transaction whose emails were not queued yet
func notifyFilter(reference string) bson.M {
	return bson.M{"reference": reference, "status": models.TransactionSuccess, "notifiedAt": nil}
}

// MarkNotified claims the payment emails of a successful transaction. Only
// one caller ever gets true for a reference.
func (r *TransactionRepository) MarkNotified(ctx context.Context, reference string, at time.Time) (bool, error) {
	res, err := r.coll.UpdateOne(ctx, notifyFilter(reference), bson.M{"$set": bson.M{"notifiedAt": at}})
	if err != nil {
		return false, fmt.Errorf("error marking transaction notified: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

func (r *TransactionRepository) userQuery(filter TransactionFilter) bson.M {
	query := bson.M{"userId": filter.UserID}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	return query
}

// ListByUser returns the user's transactions, newest first
func (r *TransactionRepository) ListByUser(ctx context.Context, filter TransactionFilter) ([]*models.Transaction, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(filter.Skip).
		SetProjection(bson.M{"gatewayResponse": 0, "accessCode": 0})
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
	}
	cursor, err := r.coll.Find(ctx, r.userQuery(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("error listing transactions: %w", err)
	}
	txs := make([]*models.Transaction, 0)
	if err := cursor.All(ctx, &txs); err != nil {
		return nil, fmt.Errorf("error decoding transactions: %w", err)
	}
	return txs, nil
}

// CountByUser counts the user's transactions matching filter
func (r *TransactionRepository) CountByUser(ctx context.Context, filter TransactionFilter) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, r.userQuery(filter))
	if err != nil {
		return 0, fmt.Errorf("error counting transactions: %w", err)
	}
	return n, nil
}
