package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/skillspad/api/internal/app/models"
	"github.com/skillspad/api/internal/app/models/dto"
	"github.com/skillspad/api/internal/app/repositories"
	"github.com/skillspad/api/internal/pkg/apperrors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// maxModuleWriteAttempts bounds the reload and retry loop of module edits
const maxModuleWriteAttempts = 3

// CourseService manages courses and the modules and lessons embedded in them
type CourseService struct {
	courseRepo repositories.ICourseRepository
	logger     zerolog.Logger
	now        func() time.Time
}

// NewCourseService creates a new CourseService
func NewCourseService(courseRepo repositories.ICourseRepository, logger zerolog.Logger) *CourseService {
	return &CourseService{
		courseRepo: courseRepo,
		logger:     logger,
		now:        time.Now,
	}
}

// ListCourses returns every course with enrolled student, module and lesson counts
func (s *CourseService) ListCourses(ctx context.Context) ([]*models.CourseSummary, error) {
	return s.courseRepo.ListSummaries(ctx)
}

// GetCourse returns a course with modules and lessons in display order
func (s *CourseService) GetCourse(ctx context.Context, id primitive.ObjectID) (*models.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	sortCourse(course)
	return course, nil
}

// CreateCourse creates a course; titles are unique
func (s *CourseService) CreateCourse(ctx context.Context, req *dto.CreateCourseRequest, createdBy primitive.ObjectID) (*models.Course, error) {
	title := strings.TrimSpace(req.Title)
	if err := s.ensureTitleAvailable(ctx, title, primitive.NilObjectID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	course := &models.Course{
		Title:       title,
		Description: req.Description,
		Price:       *req.Price,
		Status:      models.CourseStatus(req.Status),
		ImageURL:    req.ImageURL,
		Modules:     []models.Module{},
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.courseRepo.Create(ctx, course); err != nil {
		return nil, err
	}

	s.logger.Info().Str("courseId", course.ID.Hex()).Str("title", course.Title).Msg("Course created")
	return course, nil
}

// UpdateCourse merges the supplied fields over the stored course. Keeping the
// current title is always allowed.
func (s *CourseService) UpdateCourse(ctx context.Context, id primitive.ObjectID, req *dto.UpdateCourseRequest) (*models.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title != course.Title {
			if err := s.ensureTitleAvailable(ctx, title, course.ID); err != nil {
				return nil, err
			}
			course.Title = title
		}
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.Price != nil {
		course.Price = *req.Price
	}
	if req.Status != nil {
		course.Status = models.CourseStatus(*req.Status)
	}
	if req.ImageURL != nil {
		course.ImageURL = *req.ImageURL
	}

	if err := s.courseRepo.UpdateDetails(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

// DeleteCourse removes a course
func (s *CourseService) DeleteCourse(ctx context.Context, id primitive.ObjectID) error {
	if err := s.courseRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("courseId", id.Hex()).Msg("Course deleted")
	return nil
}

func (s *CourseService) ensureTitleAvailable(ctx context.Context, title string, excludeID primitive.ObjectID) error {
	exists, err := s.courseRepo.TitleExists(ctx, title, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return apperrors.ErrCourseTitleExists
	}
	return nil
}

// GetModule returns one module of a course
func (s *CourseService) GetModule(ctx context.Context, courseID, moduleID primitive.ObjectID) (*models.Module, error) {
	course, err := s.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	module := course.Module(moduleID)
	if module == nil {
		return nil, apperrors.ErrModuleNotFound
	}
	return module, nil
}

// AddModule appends a module. Without an explicit order it goes after the
// existing modules.
func (s *CourseService) AddModule(ctx context.Context, courseID primitive.ObjectID, req *dto.ModuleRequest) (*models.Module, error) {
	if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
		return nil, apperrors.NewValidationError("Module title is required")
	}

	var added models.Module
	err := s.editModules(ctx, courseID, func(course *models.Course) error {
		now := s.now().UTC()
		added = models.Module{
			ID:          primitive.NewObjectID(),
			Title:       strings.TrimSpace(*req.Title),
			Description: deref(req.Description),
			Order:       course.NextModuleOrder(),
			Lessons:     []models.Lesson{},
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if req.Order != nil {
			added.Order = *req.Order
		}
		course.Modules = append(course.Modules, added)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &added, nil
}

// UpdateModule merges the supplied fields over the module
func (s *CourseService) UpdateModule(ctx context.Context, courseID, moduleID primitive.ObjectID, req *dto.ModuleRequest) (*models.Module, error) {
	var updated models.Module
	err := s.editModules(ctx, courseID, func(course *models.Course) error {
		module := course.Module(moduleID)
		if module == nil {
			return apperrors.ErrModuleNotFound
		}
		if req.Title != nil {
			if strings.TrimSpace(*req.Title) == "" {
				return apperrors.NewValidationError("Module title cannot be empty")
			}
			module.Title = strings.TrimSpace(*req.Title)
		}
		if req.Description != nil {
			module.Description = *req.Description
		}
		if req.Order != nil {
			module.Order = *req.Order
		}
		module.UpdatedAt = s.now().UTC()
		updated = *module
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteModule removes a module and its lessons
func (s *CourseService) DeleteModule(ctx context.Context, courseID, moduleID primitive.ObjectID) error {
	return s.editModules(ctx, courseID, func(course *models.Course) error {
		if !course.RemoveModule(moduleID) {
			return apperrors.ErrModuleNotFound
		}
		return nil
	})
}

// AddLesson appends a lesson to a module. Type defaults to video and order
// to one past the module's current lesson count.
func (s *CourseService) AddLesson(ctx context.Context, courseID, moduleID primitive.ObjectID, req *dto.LessonRequest) (*models.Lesson, error) {
	if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
		return nil, apperrors.NewValidationError("Lesson title is required")
	}

	var added models.Lesson
	err := s.editModules(ctx, courseID, func(course *models.Course) error {
		module := course.Module(moduleID)
		if module == nil {
			return apperrors.ErrModuleNotFound
		}
		now := s.now().UTC()
		added = models.Lesson{
			ID:        primitive.NewObjectID(),
			Title:     strings.TrimSpace(*req.Title),
			Content:   deref(req.Content),
			Type:      models.LessonTypeVideo,
			VideoURL:  deref(req.VideoURL),
			Order:     module.NextLessonOrder(),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if req.Type != nil {
			added.Type = models.LessonType(*req.Type)
		}
		if req.Duration != nil {
			added.Duration = *req.Duration
		}
		if req.Order != nil {
			added.Order = *req.Order
		}
		module.Lessons = append(module.Lessons, added)
		module.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &added, nil
}

// UpdateLesson merges the supplied fields over the lesson
func (s *CourseService) UpdateLesson(ctx context.Context, courseID, moduleID, lessonID primitive.ObjectID, req *dto.LessonRequest) (*models.Lesson, error) {
	var updated models.Lesson
	err := s.editModules(ctx, courseID, func(course *models.Course) error {
		module := course.Module(moduleID)
		if module == nil {
			return apperrors.ErrModuleNotFound
		}
		lesson := module.Lesson(lessonID)
		if lesson == nil {
			return apperrors.ErrLessonNotFound
		}
		if req.Title != nil {
			if strings.TrimSpace(*req.Title) == "" {
				return apperrors.NewValidationError("Lesson title cannot be empty")
			}
			lesson.Title = strings.TrimSpace(*req.Title)
		}
		if req.Content != nil {
			lesson.Content = *req.Content
		}
		if req.Type != nil {
			lesson.Type = models.LessonType(*req.Type)
		}
		if req.VideoURL != nil {
			lesson.VideoURL = *req.VideoURL
		}
		if req.Duration != nil {
			lesson.Duration = *req.Duration
		}
		if req.Order != nil {
			lesson.Order = *req.Order
		}
		lesson.UpdatedAt = s.now().UTC()
		updated = *lesson
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteLesson removes a lesson from its module
func (s *CourseService) DeleteLesson(ctx context.Context, courseID, moduleID, lessonID primitive.ObjectID) error {
	return s.editModules(ctx, courseID, func(course *models.Course) error {
		module := course.Module(moduleID)
		if module == nil {
			return apperrors.ErrModuleNotFound
		}
		if !module.RemoveLesson(lessonID) {
			return apperrors.ErrLessonNotFound
		}
		return nil
	})
}

// editModules loads the course, applies mutate and saves the module tree
// under the course version. A concurrent edit makes the save stale; the
// whole read-modify-write is then repeated on fresh data.
func (s *CourseService) editModules(ctx context.Context, courseID primitive.ObjectID, mutate func(course *models.Course) error) error {
	var err error
	for attempt := 1; attempt <= maxModuleWriteAttempts; attempt++ {
		var course *models.Course
		course, err = s.courseRepo.GetByID(ctx, courseID)
		if err != nil {
			return err
		}
		if err = mutate(course); err != nil {
			return err
		}
		err = s.courseRepo.SaveModules(ctx, course)
		if !errors.Is(err, apperrors.ErrStaleWrite) {
			return err
		}
		s.logger.Debug().Str("courseId", courseID.Hex()).Int("attempt", attempt).Msg("Concurrent course edit, retrying")
	}
	return fmt.Errorf("error saving course modules: %w", err)
}

func sortCourse(course *models.Course) {
	sort.SliceStable(course.Modules, func(i, j int) bool {
		return course.Modules[i].Order < course.Modules[j].Order
	})
	for i := range course.Modules {
		lessons := course.Modules[i].Lessons
		sort.SliceStable(lessons, func(a, b int) bool {
			return lessons[a].Order < lessons[b].Order
		})
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
