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

// AssignmentFilter narrows an assignment listing. Empty fields match everything.
type AssignmentFilter struct {
	CourseIDs []primitive.ObjectID
	ModuleID  primitive.ObjectID
	Status    models.AssignmentStatus
	// HideDrafts drops assignments still in draft, for student views
	HideDrafts bool
}

// IAssignmentRepository defines the interface for assignment persistence
type IAssignmentRepository interface {
	Create(ctx context.Context, assignment *models.Assignment) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Assignment, error)
	Update(ctx context.Context, assignment *models.Assignment, requireNoSubmissions bool) error
	DeleteIfNoSubmissions(ctx context.Context, id primitive.ObjectID) (bool, error)
	TitleExists(ctx context.Context, courseID, moduleID primitive.ObjectID, title string, excludeID primitive.ObjectID) (bool, error)
	List(ctx context.Context, filter AssignmentFilter) ([]*models.Assignment, error)
	ListUpcoming(ctx context.Context, courseIDs []primitive.ObjectID, from time.Time, limit int64) ([]*models.Assignment, error)
	PullAttachment(ctx context.Context, publicID string) (int64, error)
}

// AssignmentRepository handles database operations for assignments
type AssignmentRepository struct {
	coll *mongo.Collection
}

// NewAssignmentRepository creates a new AssignmentRepository
func NewAssignmentRepository(database *mongo.Database) *AssignmentRepository {
	return &AssignmentRepository{coll: database.Collection(db.AssignmentsCollection)}
}

// Create inserts an assignment and sets its generated id
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	if assignment.Attachments == nil {
		assignment.Attachments = []models.Attachment{}
	}
	res, err := r.coll.InsertOne(ctx, assignment)
	if err != nil {
		if dberrors.IsDuplicateKeyError(err) {
			return apperrors.ErrAssignmentTitleExists
		}
		return fmt.Errorf("error inserting assignment: %w", err)
	}
	assignment.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// GetByID retrieves an assignment by id
func (r *AssignmentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Assignment, error) {
	var assignment models.Assignment
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&assignment); err != nil {
		if dberrors.IsNotFound(err) {
			return nil, apperrors.ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("error finding assignment: %w", err)
	}
	return &assignment, nil
}

// Update saves the editable fields. Submission counters are never written
// here. With requireNoSubmissions the write only applies while the
// assignment still has no submissions.
func (r *AssignmentRepository) Update(ctx context.Context, assignment *models.Assignment, requireNoSubmissions bool) error {
	assignment.UpdatedAt = time.Now().UTC()
	filter := bson.M{"_id": assignment.ID}
	if requireNoSubmissions {
		filter["submissions"] = 0
	}
	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": bson.M{
		"title":          assignment.Title,
		"description":    assignment.Description,
		"instructions":   assignment.Instructions,
		"courseId":       assignment.CourseID,
		"moduleId":       assignment.ModuleID,
		"dueDate":        assignment.DueDate,
		"points":         assignment.Points,
		"submissionType": assignment.SubmissionType,
		"attachments":    assignment.Attachments,
		"status":         assignment.Status,
		"updatedAt":      assignment.UpdatedAt,
	}})
	if err != nil {
		if dberrors.IsDuplicateKeyError(err) {
			return apperrors.ErrAssignmentTitleExists
		}
		return fmt.Errorf("error updating assignment: %w", err)
	}
	if res.MatchedCount == 0 {
		if requireNoSubmissions {
			if _, err := r.GetByID(ctx, assignment.ID); err != nil {
				return err
			}
			return apperrors.ErrAssignmentLinkLocked
		}
		return apperrors.ErrAssignmentNotFound
	}
	return nil
}

// DeleteIfNoSubmissions deletes the assignment only while it has no
// submissions and reports whether it was deleted.
func (r *AssignmentRepository) DeleteIfNoSubmissions(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "submissions": 0})
	if err != nil {
		return false, fmt.Errorf("error deleting assignment: %w", err)
	}
	return res.DeletedCount == 1, nil
}

// TitleExists reports whether another assignment in the same course module uses title
func (r *AssignmentRepository) TitleExists(ctx context.Context, courseID, moduleID primitive.ObjectID, title string, excludeID primitive.ObjectID) (bool, error) {
	filter := bson.M{"courseId": courseID, "moduleId": moduleID, "title": title}
	if !excludeID.IsZero() {
		filter["_id"] = bson.M{"$ne": excludeID}
	}
	n, err := r.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("error checking assignment title: %w", err)
	}
	return n > 0, nil
}

// List returns assignments matching filter ordered by due date
func (r *AssignmentRepository) List(ctx context.Context, filter AssignmentFilter) ([]*models.Assignment, error) {
	return r.find(ctx, filter.query(), options.Find().SetSort(bson.D{{Key: "dueDate", Value: 1}, {Key: "_id", Value: 1}}))
}

// ListUpcoming returns up to limit non-draft assignments of the given courses
// due at or after from, soonest first
func (r *AssignmentRepository) ListUpcoming(ctx context.Context, courseIDs []primitive.ObjectID, from time.Time, limit int64) ([]*models.Assignment, error) {
	if len(courseIDs) == 0 {
		return []*models.Assignment{}, nil
	}
	query := bson.M{
		"courseId": bson.M{"$in": courseIDs},
		"dueDate":  bson.M{"$gte": from},
		"status":   bson.M{"$ne": models.AssignmentStatusDraft},
	}
	opts := options.Find().SetSort(bson.D{{Key: "dueDate", Value: 1}}).SetLimit(limit)
	return r.find(ctx, query, opts)
}

func (r *AssignmentRepository) find(ctx context.Context, query bson.M, opts *options.FindOptions) ([]*models.Assignment, error) {
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing assignments: %w", err)
	}
	assignments := make([]*models.Assignment, 0)
	if err := cursor.All(ctx, &assignments); err != nil {
		return nil, fmt.Errorf("error decoding assignments: %w", err)
	}
	return assignments, nil
}

// PullAttachment removes the attachment with publicID from every assignment
// and returns how many assignments referenced it.
func (r *AssignmentRepository) PullAttachment(ctx context.Context, publicID string) (int64, error) {
	res, err := r.coll.UpdateMany(ctx,
		bson.M{"attachments.publicId": publicID},
		bson.M{
			"$pull": bson.M{"attachments": bson.M{"publicId": publicID}},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		})
	if err != nil {
		return 0, fmt.Errorf("error removing attachment: %w", err)
	}
	return res.ModifiedCount, nil
}

func (f AssignmentFilter) query() bson.M {
	query := bson.M{}
	if len(f.CourseIDs) > 0 {
		query["courseId"] = bson.M{"$in": f.CourseIDs}
	}
	if !f.ModuleID.IsZero() {
		query["moduleId"] = f.ModuleID
	}
	if f.Status != "" {
		query["status"] = f.Status
	} else if f.HideDrafts {
		query["status"] = bson.M{"$ne": models.AssignmentStatusDraft}
	}
	return query
}
