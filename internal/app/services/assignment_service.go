package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/skillspad/api/internal/app/models"
	"github.com/skillspad/api/internal/app/models/dto"
	"github.com/skillspad/api/internal/app/repositories"
	"github.com/skillspad/api/internal/pkg/apperrors"
	"github.com/skillspad/api/internal/pkg/filestorage"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// attachmentDeleteTimeout bounds best-effort provider cleanup
const attachmentDeleteTimeout = 15 * time.Second

// AssignmentQuery narrows an assignment listing; zero ids match everything
type AssignmentQuery struct {
	CourseID primitive.ObjectID
	ModuleID primitive.ObjectID
}

// AssignmentService manages assignments and keeps the upload provider in step
// with their attachments
type AssignmentService struct {
	assignmentRepo repositories.IAssignmentRepository
	courseRepo     repositories.ICourseRepository
	storage        filestorage.Provider
	logger         zerolog.Logger
	now            func() time.Time
}

// NewAssignmentService creates a new AssignmentService
func NewAssignmentService(
	assignmentRepo repositories.IAssignmentRepository,
	courseRepo repositories.ICourseRepository,
	storage filestorage.Provider,
	logger zerolog.Logger,
) *AssignmentService {
	return &AssignmentService{
		assignmentRepo: assignmentRepo,
		courseRepo:     courseRepo,
		storage:        storage,
		logger:         logger,
		now:            time.Now,
	}
}

// ListAssignments returns the matching assignments with course and module titles
func (s *AssignmentService) ListAssignments(ctx context.Context, query AssignmentQuery) ([]*dto.AssignmentResponse, error) {
	filter := repositories.AssignmentFilter{ModuleID: query.ModuleID}
	if !query.CourseID.IsZero() {
		filter.CourseIDs = []primitive.ObjectID{query.CourseID}
	}
	assignments, err := s.assignmentRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.withTitles(ctx, assignments)
}

// GetAssignment returns one assignment with course and module titles
func (s *AssignmentService) GetAssignment(ctx context.Context, id primitive.ObjectID) (*dto.AssignmentResponse, error) {
	assignment, err := s.assignmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out, err := s.withTitles(ctx, []*models.Assignment{assignment})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// CreateAssignment creates an assignment inside an existing course module
func (s *AssignmentService) CreateAssignment(ctx context.Context, req *dto.CreateAssignmentRequest, createdBy primitive.ObjectID) (*models.Assignment, error) {
	courseID, moduleID, err := parseLink(req.CourseID, req.ModuleID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureModuleExists(ctx, courseID, moduleID); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if err := s.ensureTitleAvailable(ctx, courseID, moduleID, title, primitive.NilObjectID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	assignment := &models.Assignment{
		Title:          title,
		Description:    req.Description,
		Instructions:   req.Instructions,
		CourseID:       courseID,
		ModuleID:       moduleID,
		DueDate:        req.DueDate.UTC(),
		Points:         models.DefaultAssignmentPoints,
		SubmissionType: models.SubmissionTypeText,
		Attachments:    dto.ToAttachments(req.Attachments),
		Status:         models.AssignmentStatusDraft,
		CreatedBy:      createdBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if req.Points != nil {
		assignment.Points = *req.Points
	}
	if req.SubmissionType != "" {
		assignment.SubmissionType = req.SubmissionType
	}
	if req.Status != "" {
		assignment.Status = models.AssignmentStatus(req.Status)
	}

	if err := s.assignmentRepo.Create(ctx, assignment); err != nil {
		return nil, err
	}
	s.logger.Info().Str("assignmentId", assignment.ID.Hex()).Str("courseId", courseID.Hex()).Msg("Assignment created")
	return assignment, nil
}

// UpdateAssignment merges the supplied fields over the stored assignment.
// The course and module cannot change once students have submitted.
// Attachments dropped from the list are deleted from the upload provider.
func (s *AssignmentService) UpdateAssignment(ctx context.Context, id primitive.ObjectID, req *dto.UpdateAssignmentRequest) (*models.Assignment, error) {
	assignment, err := s.assignmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	courseID, moduleID := assignment.CourseID, assignment.ModuleID
	if req.CourseID != nil {
		if courseID, err = primitive.ObjectIDFromHex(*req.CourseID); err != nil {
			return nil, apperrors.NewValidationError("Invalid course id")
		}
	}
	if req.ModuleID != nil {
		if moduleID, err = primitive.ObjectIDFromHex(*req.ModuleID); err != nil {
			return nil, apperrors.NewValidationError("Invalid module id")
		}
	}
	linkChanged := courseID != assignment.CourseID || moduleID != assignment.ModuleID
	if linkChanged {
		if assignment.Submissions > 0 {
			return nil, apperrors.ErrAssignmentLinkLocked
		}
		if err := s.ensureModuleExists(ctx, courseID, moduleID); err != nil {
			return nil, err
		}
	}

	title := assignment.Title
	if req.Title != nil {
		title = strings.TrimSpace(*req.Title)
	}
	if linkChanged || title != assignment.Title {
		if err := s.ensureTitleAvailable(ctx, courseID, moduleID, title, assignment.ID); err != nil {
			return nil, err
		}
	}

	assignment.Title = title
	assignment.CourseID = courseID
	assignment.ModuleID = moduleID
	if req.Description != nil {
		assignment.Description = *req.Description
	}
	if req.Instructions != nil {
		assignment.Instructions = *req.Instructions
	}
	if req.DueDate != nil {
		assignment.DueDate = req.DueDate.UTC()
	}
	if req.Points != nil {
		assignment.Points = *req.Points
	}
	if req.SubmissionType != nil {
		assignment.SubmissionType = *req.SubmissionType
	}
	if req.Status != nil {
		assignment.Status = models.AssignmentStatus(*req.Status)
	}

	var removed []models.Attachment
	if req.Attachments != nil {
		next := dto.ToAttachments(*req.Attachments)
		removed = removedAttachments(assignment.Attachments, next)
		assignment.Attachments = next
	}

	if err := s.assignmentRepo.Update(ctx, assignment, linkChanged); err != nil {
		return nil, err
	}

	s.deleteAttachments(ctx, removed)
	return assignment, nil
}

// DeleteAssignment deletes an assignment without submissions together with
// its attachments
func (s *AssignmentService) DeleteAssignment(ctx context.Context, id primitive.ObjectID) error {
	assignment, err := s.assignmentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if assignment.Submissions > 0 {
		return apperrors.ErrAssignmentHasSubmitted
	}

	deleted, err := s.assignmentRepo.DeleteIfNoSubmissions(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		// Either a submission arrived or someone else deleted it first
		if _, err := s.assignmentRepo.GetByID(ctx, id); err != nil {
			return err
		}
		return apperrors.ErrAssignmentHasSubmitted
	}

	s.logger.Info().Str("assignmentId", id.Hex()).Msg("Assignment deleted")
	s.deleteAttachments(ctx, assignment.Attachments)
	return nil
}

// DeleteAttachment removes an uploaded file from the provider and from every
// assignment that references it
func (s *AssignmentService) DeleteAttachment(ctx context.Context, publicID string) error {
	publicID = strings.TrimSpace(publicID)
	if publicID == "" {
		return apperrors.NewValidationError("Attachment id is required")
	}

	pulled, err := s.assignmentRepo.PullAttachment(ctx, publicID)
	if err != nil {
		return err
	}
	existed, err := s.storage.Delete(ctx, publicID)
	if err != nil {
		return fmt.Errorf("error deleting attachment: %w", err)
	}
	if !existed && pulled == 0 {
		return apperrors.ErrAttachmentNotFound
	}
	return nil
}

// deleteAttachments removes files from the provider. Failures are logged and
// never fail the caller.
func (s *AssignmentService) deleteAttachments(ctx context.Context, attachments []models.Attachment) {
	if len(attachments) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), attachmentDeleteTimeout)
	defer cancel()

	for _, a := range attachments {
		publicID := a.PublicID
		if publicID == "" {
			publicID = filestorage.PublicIDFromURL(a.URL)
		}
		if publicID == "" {
			s.logger.Warn().Str("url", a.URL).Msg("Attachment has no provider id, skipping delete")
			continue
		}
		if _, err := s.storage.Delete(ctx, publicID); err != nil {
			s.logger.Error().Err(err).Str("publicId", publicID).Msg("Failed to delete attachment from upload provider")
		}
	}
}

func (s *AssignmentService) ensureModuleExists(ctx context.Context, courseID, moduleID primitive.ObjectID) error {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return err
	}
	if course.Module(moduleID) == nil {
		return apperrors.ErrModuleNotFound
	}
	return nil
}

func (s *AssignmentService) ensureTitleAvailable(ctx context.Context, courseID, moduleID primitive.ObjectID, title string, excludeID primitive.ObjectID) error {
	exists, err := s.assignmentRepo.TitleExists(ctx, courseID, moduleID, title, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return apperrors.ErrAssignmentTitleExists
	}
	return nil
}

// withTitles decorates assignments with the titles of their course and module.
// Assignments whose course was deleted keep empty titles.
func (s *AssignmentService) withTitles(ctx context.Context, assignments []*models.Assignment) ([]*dto.AssignmentResponse, error) {
	seen := make(map[primitive.ObjectID]bool)
	ids := make([]primitive.ObjectID, 0)
	for _, a := range assignments {
		if !seen[a.CourseID] {
			seen[a.CourseID] = true
			ids = append(ids, a.CourseID)
		}
	}
	courses, err := s.courseRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]*models.Course, len(courses))
	for _, c := range courses {
		byID[c.ID] = c
	}

	out := make([]*dto.AssignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		resp := &dto.AssignmentResponse{Assignment: a}
		if course, ok := byID[a.CourseID]; ok {
			resp.CourseTitle = course.Title
			if module := course.Module(a.ModuleID); module != nil {
				resp.ModuleTitle = module.Title
			}
		}
		out = append(out, resp)
	}
	return out, nil
}

func parseLink(courseHex, moduleHex string) (primitive.ObjectID, primitive.ObjectID, error) {
	courseID, err := primitive.ObjectIDFromHex(courseHex)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, apperrors.NewValidationError("Invalid course id")
	}
	moduleID, err := primitive.ObjectIDFromHex(moduleHex)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, apperrors.NewValidationError("Invalid module id")
	}
	return courseID, moduleID, nil
}

// removedAttachments lists the attachments of before that are absent from after
func removedAttachments(before, after []models.Attachment) []models.Attachment {
	keep := make(map[string]bool, len(after))
	for _, a := range after {
		keep[a.Key()] = true
	}
	var removed []models.Attachment
	for _, a := range before {
		if !keep[a.Key()] {
			removed = append(removed, a)
		}
	}
	return removed
}

