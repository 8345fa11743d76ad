package repositories

import (
	"context"
	"fmt"
	"regexp"
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

// UserListFilter selects and orders a page of users
type UserListFilter struct {
	Role      models.RoleType
	Query     string
	SortField string
	SortDesc  bool
	Skip      int64
	Limit     int64
}

// IUserRepository defines the interface for user-related database operations
type IUserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)

	// Password reset
	SetResetToken(ctx context.Context, id primitive.ObjectID, token string, expires time.Time) error
	ConsumeResetToken(ctx context.Context, email, token, passwordHash string, now time.Time) (bool, error)

	// Enrollment
	AddEnrolledCourse(ctx context.Context, userID, courseID primitive.ObjectID) error
	SetPaymentSummary(ctx context.Context, userID primitive.ObjectID, summary models.PaymentSummary) error

	// Administration
	UpdateAccount(ctx context.Context, user *models.User) error
	List(ctx context.Context, filter UserListFilter) ([]*models.User, int64, error)
}

// UserRepository handles database operations for users
type UserRepository struct {
	coll *mongo.Collection
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(database *mongo.Database) *UserRepository {
	return &UserRepository{coll: database.Collection(db.UsersCollection)}
}

// Create inserts a user and sets its generated id
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.EnrolledCourses == nil {
		user.EnrolledCourses = []primitive.ObjectID{}
	}
	res, err := r.coll.InsertOne(ctx, user)
	if err != nil {
		if dberrors.IsDuplicateKeyError(err) {
			return apperrors.ErrEmailAlreadyExists
		}
		return fmt.Errorf("error inserting user: %w", err)
	}
	user.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// GetByID retrieves a user by id
func (r *UserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetByEmail retrieves a user by normalized email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := r.coll.FindOne(ctx, filter).Decode(&user); err != nil {
		if dberrors.IsNotFound(err) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error finding user: %w", err)
	}
	return &user, nil
}

// EmailExists checks if an email is already registered
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"email": email}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("error checking email: %w", err)
	}
	return n > 0, nil
}

// SetResetToken stores a password reset token, replacing any earlier one
func (r *UserRepository) SetResetToken(ctx context.Context, id primitive.ObjectID, token string, expires time.Time) error {
	_, err := r.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"resetPasswordToken":   token,
		"resetPasswordExpires": expires,
		"updatedAt":            time.Now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("error storing reset token: %w", err)
	}
	return nil
}

// ConsumeResetToken replaces the password only while the token matches and is
// unexpired, clearing it in the same write so it cannot be used twice.
func (r *UserRepository) ConsumeResetToken(ctx context.Context, email, token, passwordHash string, now time.Time) (bool, error) {
	filter := bson.M{
		"email":                email,
		"resetPasswordToken":   token,
		"resetPasswordExpires": bson.M{"$gt": now},
	}
	update := bson.M{
		"$set":   bson.M{"password": passwordHash, "updatedAt": now},
		"$unset": bson.M{"resetPasswordToken": "", "resetPasswordExpires": ""},
	}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("error resetting password: %w", err)
	}
	return res.MatchedCount == 1, nil
}

// AddEnrolledCourse adds courseID to the enrolled set; repeating it is a no-op
func (r *UserRepository) AddEnrolledCourse(ctx context.Context, userID, courseID primitive.ObjectID) error {
	res, err := r.coll.UpdateByID(ctx, userID, enrollUpdate(courseID, time.Now().UTC()))
	if err != nil {
		return fmt.Errorf("error enrolling user: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// SetPaymentSummary records the latest successful payment on the user
func (r *UserRepository) SetPaymentSummary(ctx context.Context, userID primitive.ObjectID, summary models.PaymentSummary) error {
	_, err := r.coll.UpdateByID(ctx, userID, bson.M{"$set": bson.M{
		"payment":   summary,
		"updatedAt": time.Now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("error updating payment summary: %w", err)
	}
	return nil
}

// UpdateAccount saves the administrator editable fields of a user
func (r *UserRepository) UpdateAccount(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	res, err := r.coll.UpdateByID(ctx, user.ID, bson.M{"$set": bson.M{
		"firstName": user.FirstName,
		"lastName":  user.LastName,
		"email":     user.Email,
		"password":  user.Password,
		"status":    user.Status,
		"updatedAt": user.UpdatedAt,
	}})
	if err != nil {
		if dberrors.IsDuplicateKeyError(err) {
			return apperrors.ErrEmailAlreadyExists
		}
		return fmt.Errorf("error updating user: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// List returns one page of users and the total matching the filter
func (r *UserRepository) List(ctx context.Context, filter UserListFilter) ([]*models.User, int64, error) {
	query := bson.M{}
	if filter.Role != "" {
		query["role"] = filter.Role
	}
	if filter.Query != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Query), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"firstName": pattern},
			bson.M{"lastName": pattern},
			bson.M{"email": pattern},
		}
	}

	sortField := filter.SortField
	if sortField == "" {
		sortField = "createdAt"
	}
	direction := 1
	if filter.SortDesc {
		direction = -1
	}

	opts := options.Find().
		SetSort(bson.D{{Key: sortField, Value: direction}, {Key: "_id", Value: direction}}).
		SetSkip(filter.Skip).
		SetLimit(filter.Limit).
		SetProjection(bson.M{"password": 0, "resetPasswordToken": 0, "resetPasswordExpires": 0})

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing users: %w", err)
	}
	users := make([]*models.User, 0)
	if err := cursor.All(ctx, &users); err != nil {
		return nil, 0, fmt.Errorf("error decoding users: %w", err)
	}

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting users: %w", err)
	}
	return users, total, nil
}

// enrollUpdate adds courseID to the user's enrollments at most once.
func enrollUpdate(courseID primitive.ObjectID, now time.Time) bson.M {
	return bson.M{
		"$addToSet": bson.M{"enrolledCourses": courseID},
		"$set":      bson.M{"updatedAt": now},
	}
}
