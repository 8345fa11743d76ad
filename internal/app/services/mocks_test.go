package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/skillspad/api/internal/app/models"
	"github.com/skillspad/api/internal/app/repositories"
	"github.com/skillspad/api/internal/pkg/apperrors"
	"github.com/skillspad/api/internal/pkg/email"
	"github.com/skillspad/api/internal/pkg/filestorage"
	"github.com/skillspad/api/internal/pkg/paystack"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Common test errors
var (
	ErrMockStore   = errors.New("mock store error")
	ErrMockGateway = errors.New("mock gateway error")
)

// memUserRepo is an in-memory IUserRepository
type memUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User

	AddEnrolledErr   error
	AddEnrolledCalls int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[primitive.ObjectID]*models.User)}
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.EnrolledCourses = append([]primitive.ObjectID(nil), u.EnrolledCourses...)
	if u.Payment != nil {
		p := *u.Payment
		c.Payment = &p
	}
	return &c
}

func (r *memUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return apperrors.ErrEmailAlreadyExists
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *memUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

func (r *memUserRepo) SetResetToken(ctx context.Context, id primitive.ObjectID, token string, expires time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.ResetPasswordToken = token
	u.ResetPasswordExpires = &expires
	return nil
}

func (r *memUserRepo) ConsumeResetToken(ctx context.Context, email, token, passwordHash string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email != email || u.ResetPasswordToken != token || u.ResetPasswordExpires == nil || !u.ResetPasswordExpires.After(now) {
			continue
		}
		u.Password = passwordHash
		u.ResetPasswordToken = ""
		u.ResetPasswordExpires = nil
		return true, nil
	}
	return false, nil
}

func (r *memUserRepo) AddEnrolledCourse(ctx context.Context, userID, courseID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.AddEnrolledCalls++
	if r.AddEnrolledErr != nil {
		return r.AddEnrolledErr
	}
	u, ok := r.users[userID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	if !u.IsEnrolled(courseID) {
		u.EnrolledCourses = append(u.EnrolledCourses, courseID)
	}
	return nil
}

func (r *memUserRepo) SetPaymentSummary(ctx context.Context, userID primitive.ObjectID, summary models.PaymentSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.Payment = &summary
	return nil
}

func (r *memUserRepo) UpdateAccount(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return apperrors.ErrUserNotFound
	}
	for id, u := range r.users {
		if id != user.ID && u.Email == user.Email {
			return apperrors.ErrEmailAlreadyExists
		}
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *memUserRepo) List(ctx context.Context, filter repositories.UserListFilter) ([]*models.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*models.User
	q := strings.ToLower(filter.Query)
	for _, u := range r.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(u.FirstName+" "+u.LastName+" "+u.Email), q) {
			continue
		}
		matched = append(matched, cloneUser(u))
	}
	sort.Slice(matched, func(i, j int) bool {
		less := matched[i].Email < matched[j].Email
		if filter.SortField == "createdAt" {
			less = matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		if filter.SortDesc {
			return !less
		}
		return less
	})
	total := int64(len(matched))
	start := int(filter.Skip)
	if start > len(matched) {
		start = len(matched)
	}
	end := len(matched)
	if filter.Limit > 0 && start+int(filter.Limit) < end {
		end = start + int(filter.Limit)
	}
	return matched[start:end], total, nil
}

// memCourseRepo is an in-memory ICourseRepository with version checks
type memCourseRepo struct {
	mu      sync.Mutex
	courses map[primitive.ObjectID]*models.Course

	// BeforeSave runs before SaveModules compares versions
	BeforeSave func(course *models.Course)
	SaveCalls  int
}

func newMemCourseRepo() *memCourseRepo {
	return &memCourseRepo{courses: make(map[primitive.ObjectID]*models.Course)}
}

func cloneCourse(c *models.Course) *models.Course {
	out := *c
	out.Modules = make([]models.Module, len(c.Modules))
	for i, m := range c.Modules {
		m.Lessons = append([]models.Lesson{}, m.Lessons...)
		out.Modules[i] = m
	}
	return &out
}

func (r *memCourseRepo) Create(ctx context.Context, course *models.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.courses {
		if c.Title == course.Title {
			return apperrors.ErrCourseTitleExists
		}
	}
	if course.ID.IsZero() {
		course.ID = primitive.NewObjectID()
	}
	r.courses[course.ID] = cloneCourse(course)
	return nil
}

func (r *memCourseRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.courses[id]
	if !ok {
		return nil, apperrors.ErrCourseNotFound
	}
	return cloneCourse(c), nil
}

func (r *memCourseRepo) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Course, 0, len(ids))
	for _, id := range ids {
		if c, ok := r.courses[id]; ok {
			out = append(out, cloneCourse(c))
		}
	}
	return out, nil
}

func (r *memCourseRepo) TitleExists(ctx context.Context, title string, excludeID primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.courses {
		if c.Title == title && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memCourseRepo) UpdateDetails(ctx context.Context, course *models.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.courses[course.ID]
	if !ok {
		return apperrors.ErrCourseNotFound
	}
	stored.Title = course.Title
	stored.Description = course.Description
	stored.Price = course.Price
	stored.Status = course.Status
	stored.ImageURL = course.ImageURL
	return nil
}

func (r *memCourseRepo) SaveModules(ctx context.Context, course *models.Course) error {
	if r.BeforeSave != nil {
		r.BeforeSave(course)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.SaveCalls++
	stored, ok := r.courses[course.ID]
	if !ok {
		return apperrors.ErrCourseNotFound
	}
	if stored.Version != course.Version {
		return apperrors.ErrStaleWrite
	}
	stored.Modules = cloneCourse(course).Modules
	stored.Version++
	course.Version++
	return nil
}

func (r *memCourseRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.courses[id]; !ok {
		return apperrors.ErrCourseNotFound
	}
	delete(r.courses, id)
	return nil
}

func (r *memCourseRepo) ListSummaries(ctx context.Context) ([]*models.CourseSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.CourseSummary, 0, len(r.courses))
	for _, c := range r.courses {
		out = append(out, &models.CourseSummary{
			Course:      *cloneCourse(c),
			ModuleCount: len(c.Modules),
			LessonCount: c.LessonCount(),
		})
	}
	return out, nil
}

// memAssignmentRepo is an in-memory IAssignmentRepository
type memAssignmentRepo struct {
	mu          sync.Mutex
	assignments map[primitive.ObjectID]*models.Assignment
}

func newMemAssignmentRepo() *memAssignmentRepo {
	return &memAssignmentRepo{assignments: make(map[primitive.ObjectID]*models.Assignment)}
}

func cloneAssignment(a *models.Assignment) *models.Assignment {
	c := *a
	c.Attachments = append([]models.Attachment(nil), a.Attachments...)
	c.SubmissionList = append([]models.Submission(nil), a.SubmissionList...)
	return &c
}

func (r *memAssignmentRepo) Create(ctx context.Context, a *models.Assignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	r.assignments[a.ID] = cloneAssignment(a)
	return nil
}

func (r *memAssignmentRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.assignments[id]
	if !ok {
		return nil, apperrors.ErrAssignmentNotFound
	}
	return cloneAssignment(a), nil
}

func (r *memAssignmentRepo) Update(ctx context.Context, a *models.Assignment, requireNoSubmissions bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.assignments[a.ID]
	if !ok {
		return apperrors.ErrAssignmentNotFound
	}
	if requireNoSubmissions && stored.Submissions > 0 {
		return apperrors.ErrAssignmentLinkLocked
	}
	updated := cloneAssignment(a)
	updated.Submissions = stored.Submissions
	updated.SubmissionList = stored.SubmissionList
	r.assignments[a.ID] = updated
	return nil
}

func (r *memAssignmentRepo) DeleteIfNoSubmissions(ctx context.Context, id primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.assignments[id]
	if !ok || a.Submissions > 0 {
		return false, nil
	}
	delete(r.assignments, id)
	return true, nil
}

func (r *memAssignmentRepo) TitleExists(ctx context.Context, courseID, moduleID primitive.ObjectID, title string, excludeID primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, a := range r.assignments {
		if id != excludeID && a.CourseID == courseID && a.ModuleID == moduleID && a.Title == title {
			return true, nil
		}
	}
	return false, nil
}

func (r *memAssignmentRepo) List(ctx context.Context, filter repositories.AssignmentFilter) ([]*models.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	courses := make(map[primitive.ObjectID]bool)
	for _, id := range filter.CourseIDs {
		courses[id] = true
	}
	out := make([]*models.Assignment, 0)
	for _, a := range r.assignments {
		if len(courses) > 0 && !courses[a.CourseID] {
			continue
		}
		if !filter.ModuleID.IsZero() && a.ModuleID != filter.ModuleID {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		if filter.Status == "" && filter.HideDrafts && a.Status == models.AssignmentStatusDraft {
			continue
		}
		out = append(out, cloneAssignment(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

func (r *memAssignmentRepo) ListUpcoming(ctx context.Context, courseIDs []primitive.ObjectID, from time.Time, limit int64) ([]*models.Assignment, error) {
	all, _ := r.List(ctx, repositories.AssignmentFilter{CourseIDs: courseIDs, HideDrafts: true})
	out := make([]*models.Assignment, 0)
	if len(courseIDs) == 0 {
		return out, nil
	}
	for _, a := range all {
		if !a.DueDate.Before(from) && int64(len(out)) < limit {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memAssignmentRepo) PullAttachment(ctx context.Context, publicID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, a := range r.assignments {
		kept := a.Attachments[:0]
		for _, att := range a.Attachments {
			if att.PublicID != publicID {
				kept = append(kept, att)
			}
		}
		if len(kept) != len(a.Attachments) {
			n++
		}
		a.Attachments = kept
	}
	return n, nil
}

// memTransactionRepo is an in-memory ITransactionRepository
type memTransactionRepo struct {
	mu  sync.Mutex
	txs []*models.Transaction

	TransitionErr error
}

func newMemTransactionRepo() *memTransactionRepo {
	return &memTransactionRepo{}
}

func cloneTx(t *models.Transaction) *models.Transaction {
	c := *t
	return &c
}

func (r *memTransactionRepo) Create(ctx context.Context, tx *models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.txs {
		if t.Reference == tx.Reference {
			return apperrors.NewConflictError("Payment reference already used")
		}
	}
	if tx.ID.IsZero() {
		tx.ID = primitive.NewObjectID()
	}
	r.txs = append(r.txs, cloneTx(tx))
	return nil
}

func (r *memTransactionRepo) GetByReference(ctx context.Context, reference string) (*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.txs {
		if t.Reference == reference {
			return cloneTx(t), nil
		}
	}
	return nil, apperrors.ErrTransactionNotFound
}

func (r *memTransactionRepo) FindLatest(ctx context.Context, userID, courseID primitive.ObjectID, status models.TransactionStatus) (*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *models.Transaction
	for _, t := range r.txs {
		if t.UserID == userID && t.CourseID == courseID && t.Status == status {
			if latest == nil || t.CreatedAt.After(latest.CreatedAt) {
				latest = t
			}
		}
	}
	if latest == nil {
		return nil, apperrors.ErrTransactionNotFound
	}
	return cloneTx(latest), nil
}

func (r *memTransactionRepo) Exists(ctx context.Context, userID, courseID primitive.ObjectID, status models.TransactionStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.txs {
		if t.UserID == userID && t.Status == status && (courseID.IsZero() || t.CourseID == courseID) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memTransactionRepo) Transition(ctx context.Context, reference string, from, to models.TransactionStatus, payload map[string]interface{}, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.TransitionErr != nil {
		return false, r.TransitionErr
	}
	for _, t := range r.txs {
		if t.Reference == reference && t.Status == from {
			t.Status = to
			t.GatewayResponse = payload
			t.VerifiedAt = &at
			t.UpdatedAt = at
			return true, nil
		}
	}
	return false, nil
}

func (r *memTransactionRepo) MarkNotified(ctx context.Context, reference string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.txs {
		if t.Reference == reference && t.Status == models.TransactionSuccess && t.NotifiedAt == nil {
			t.NotifiedAt = &at
			return true, nil
		}
	}
	return false, nil
}

func (r *memTransactionRepo) matching(filter repositories.TransactionFilter) []*models.Transaction {
	var out []*models.Transaction
	for _, t := range r.txs {
		if t.UserID == filter.UserID && (filter.Status == "" || t.Status == filter.Status) {
			out = append(out, cloneTx(t))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *memTransactionRepo) ListByUser(ctx context.Context, filter repositories.TransactionFilter) ([]*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.matching(filter)
	start := int(filter.Skip)
	if start > len(all) {
		start = len(all)
	}
	end := len(all)
	if filter.Limit > 0 && start+int(filter.Limit) < end {
		end = start + int(filter.Limit)
	}
	return append([]*models.Transaction{}, all[start:end]...), nil
}

func (r *memTransactionRepo) CountByUser(ctx context.Context, filter repositories.TransactionFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.matching(filter))), nil
}

func (r *memTransactionRepo) status(reference string) models.TransactionStatus {
	t, err := r.GetByReference(context.Background(), reference)
	if err != nil {
		return ""
	}
	return t.Status
}

// memPartialRepo reports partial payments for the listed users
type memPartialRepo struct {
	users map[primitive.ObjectID]bool
}

func (r *memPartialRepo) HasPartialPayment(ctx context.Context, userID primitive.ObjectID) (bool, error) {
	return r.users[userID], nil
}

// MockGateway implements PaymentGateway for testing
type MockGateway struct {
	mu             sync.Mutex
	InitializeFunc func(ctx context.Context, req paystack.InitializeRequest) (*paystack.InitializeResult, error)
	VerifyFunc     func(ctx context.Context, reference string) (*paystack.VerifyResult, error)
	InitCalls      int
	VerifyCalls    int
	LastInit       paystack.InitializeRequest
}

func (g *MockGateway) InitializeTransaction(ctx context.Context, req paystack.InitializeRequest) (*paystack.InitializeResult, error) {
	g.mu.Lock()
	g.InitCalls++
	g.LastInit = req
	g.mu.Unlock()
	if g.InitializeFunc != nil {
		return g.InitializeFunc(ctx, req)
	}
	return &paystack.InitializeResult{
		AuthorizationURL: "https://checkout.paystack.com/" + req.Reference,
		AccessCode:       "access-" + req.Reference,
		Reference:        req.Reference,
	}, nil
}

func (g *MockGateway) VerifyTransaction(ctx context.Context, reference string) (*paystack.VerifyResult, error) {
	g.mu.Lock()
	g.VerifyCalls++
	g.mu.Unlock()
	if g.VerifyFunc != nil {
		return g.VerifyFunc(ctx, reference)
	}
	return gatewayResult(reference, "success"), nil
}

func gatewayResult(reference, status string) *paystack.VerifyResult {
	return &paystack.VerifyResult{
		Status:    status,
		Reference: reference,
		Amount:    5000,
		Currency:  "GHS",
		Raw: map[string]interface{}{
			"status":    status,
			"reference": reference,
			"amount":    float64(5000),
		},
	}
}

// MockNotifier records queued emails
type MockNotifier struct {
	mu       sync.Mutex
	Err      error
	Welcome  []string
	Resets   map[string]string
	Receipts []email.PaymentConfirmation
}

func newMockNotifier() *MockNotifier {
	return &MockNotifier{Resets: make(map[string]string)}
}

func (n *MockNotifier) SendWelcome(ctx context.Context, to, name string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Welcome = append(n.Welcome, to)
	return n.Err
}

func (n *MockNotifier) SendPasswordReset(ctx context.Context, to, name, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Resets[to] = token
	return n.Err
}

func (n *MockNotifier) SendPaymentConfirmation(ctx context.Context, to string, p email.PaymentConfirmation) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Receipts = append(n.Receipts, p)
	return n.Err
}

// MockStorage implements filestorage.Provider for testing
type MockStorage struct {
	mu        sync.Mutex
	DeleteErr error
	Deleted   []string
	Stored    []filestorage.Upload
}

func (m *MockStorage) Store(ctx context.Context, upload filestorage.Upload) (*filestorage.StoredFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Stored = append(m.Stored, upload)
	return &filestorage.StoredFile{
		URL:      "https://files.example.com/" + upload.Filename,
		PublicID: "assignments/" + upload.Filename,
		Filename: upload.Filename,
		Size:     upload.Size,
		MimeType: upload.MimeType,
	}, nil
}

func (m *MockStorage) Delete(ctx context.Context, publicID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deleted = append(m.Deleted, publicID)
	if m.DeleteErr != nil {
		return false, m.DeleteErr
	}
	return true, nil
}
