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

// ICourseRepository defines the interface for catalog persistence
type ICourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Course, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Course, error)
	TitleExists(ctx context.Context, title string, excludeID primitive.ObjectID) (bool, error)
	UpdateDetails(ctx context.Context, course *models.Course) error
	SaveModules(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	ListSummaries(ctx context.Context) ([]*models.CourseSummary, error)
}

// CourseRepository handles database operations for courses
type CourseRepository struct {
	coll *mongo.Collection
}

// NewCourseRepository creates a new CourseRepository
func NewCourseRepository(database *mongo.Database) *CourseRepository {
	return &CourseRepository{coll: database.Collection(db.CoursesCollection)}
}

// Create inserts a course and sets its generated id
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.Modules == nil {
		course.Modules = []models.Module{}
	}
	res, err := r.coll.InsertOne(ctx, course)
	if err != nil {
		if dberrors.IsDuplicateKeyError(err) {
			return apperrors.ErrCourseTitleExists
		}
		return fmt.Errorf("error inserting course: %w", err)
	}
	course.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// GetByID retrieves a course with its modules and lessons
func (r *CourseRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Course, error) {
	var course models.Course
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&course); err != nil {
		if dberrors.IsNotFound(err) {
			return nil, apperrors.ErrCourseNotFound
		}
		return nil, fmt.Errorf("error finding course: %w", err)
	}
	return &course, nil
}

// GetByIDs retrieves the courses among ids that still exist
func (r *CourseRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Course, error) {
	courses := make([]*models.Course, 0, len(ids))
	if len(ids) == 0 {
		return courses, nil
	}
	cursor, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find().SetSort(bson.D{{Key: "title", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("error finding courses: %w", err)
	}
	if err := cursor.All(ctx, &courses); err != nil {
		return nil, fmt.Errorf("error decoding courses: %w", err)
	}
	return courses, nil
}

// TitleExists reports whether a course other than excludeID uses title
func (r *CourseRepository) TitleExists(ctx context.Context, title string, excludeID primitive.ObjectID) (bool, error) {
	filter := bson.M{"title": title}
	if !excludeID.IsZero() {
		filter["_id"] = bson.M{"$ne": excludeID}
	}
	n, err := r.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("error checking course title: %w", err)
	}
	return n > 0, nil
}

// UpdateDetails saves the top level fields of a course, leaving modules alone
func (r *CourseRepository) UpdateDetails(ctx context.Context, course *models.Course) error {
	course.UpdatedAt = time.Now().UTC()
	res, err := r.coll.UpdateByID(ctx, course.ID, bson.M{"$set": bson.M{
		"title":       course.Title,
		"description": course.Description,
		"price":       course.Price,
		"status":      course.Status,
		"imageUrl":    course.ImageURL,
		"updatedAt":   course.UpdatedAt,
	}})
	if err != nil {
		if dberrors.IsDuplicateKeyError(err) {
			return apperrors.ErrCourseTitleExists
		}
		return fmt.Errorf("error updating course: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrCourseNotFound
	}
	return nil
}

// SaveModules writes the module tree if nobody else saved it since course
// was read. On success course.Version is advanced; on a lost race
// apperrors.ErrStaleWrite is returned and the caller should reload.
func (r *CourseRepository) SaveModules(ctx context.Context, course *models.Course) error {
	now := time.Now().UTC()
	res, err := r.coll.UpdateOne(ctx, saveModulesFilter(course), saveModulesUpdate(course.Modules, now))
	if err != nil {
		return fmt.Errorf("error saving modules: %w", err)
	}
	if res.MatchedCount == 0 {
		n, err := r.coll.CountDocuments(ctx, bson.M{"_id": course.ID}, options.Count().SetLimit(1))
		if err != nil {
			return fmt.Errorf("error checking course: %w", err)
		}
		if n == 0 {
			return apperrors.ErrCourseNotFound
		}
		return apperrors.ErrStaleWrite
	}
	course.Version++
	course.UpdatedAt = now
	return nil
}

// Delete removes a course
func (r *CourseRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("error deleting course: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrCourseNotFound
	}
	return nil
}

// ListSummaries returns every course, newest first, with enrolled student,
// module and lesson counts computed by the server.
func (r *CourseRepository) ListSummaries(ctx context.Context) ([]*models.CourseSummary, error) {
	cursor, err := r.coll.Aggregate(ctx, courseSummaryPipeline())
	if err != nil {
		return nil, fmt.Errorf("error aggregating courses: %w", err)
	}
	summaries := make([]*models.CourseSummary, 0)
	if err := cursor.All(ctx, &summaries); err != nil {
		return nil, fmt.Errorf("error decoding courses: %w", err)
	}
	return summaries, nil
}

// saveModulesFilter matches course only while its stored version is the one
// that was read.
func saveModulesFilter(course *models.Course) bson.M {
	return bson.M{"_id": course.ID, "version": course.Version}
}

func saveModulesUpdate(modules []models.Module, now time.Time) bson.M {
	return bson.M{
		"$set": bson.M{"modules": modules, "updatedAt": now},
		"$inc": bson.M{"version": 1},
	}
}

// courseSummaryPipeline counts enrolled students by looking up users whose
// enrolledCourses contain the course id.
func courseSummaryPipeline() mongo.Pipeline {
	modules := bson.M{"$ifNull": bson.A{"$modules", bson.A{}}}
	return mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$lookup", Value: bson.M{
			"from": db.UsersCollection,
			"let":  bson.M{"courseId": "$_id"},
			"pipeline": bson.A{
				bson.M{"$match": bson.M{"$expr": bson.M{
					"$in": bson.A{"$$courseId", bson.M{"$ifNull": bson.A{"$enrolledCourses", bson.A{}}}},
				}}},
				bson.M{"$count": "n"},
			},
			"as": "enrollment",
		}}},
		{{Key: "$addFields", Value: bson.M{
			"enrolledStudents": bson.M{"$ifNull": bson.A{bson.M{"$arrayElemAt": bson.A{"$enrollment.n", 0}}, 0}},
			"moduleCount":      bson.M{"$size": modules},
			"lessonCount": bson.M{"$sum": bson.M{"$map": bson.M{
				"input": modules,
				"as":    "m",
				"in":    bson.M{"$size": bson.M{"$ifNull": bson.A{"$$m.lessons", bson.A{}}}},
			}}},
		}}},
		{{Key: "$project", Value: bson.M{"enrollment": 0}}},
	}
}
