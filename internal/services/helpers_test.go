package services

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/SAP-F-2025/training-service/internal/events"
	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/repositories"
	"github.com/SAP-F-2025/training-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/training-service/internal/validator"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testOrg = "org-1"

// T1 is the reference "now" of every test.
var T1 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(now time.Time) *testClock {
	return &testClock{now: now}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

const day = 24 * time.Hour

// stubUserRepository serves users from memory in place of Casdoor.
type stubUserRepository struct {
	users map[string]*models.User
}

func newStubUserRepository(users ...*models.User) *stubUserRepository {
	r := &stubUserRepository{users: make(map[string]*models.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *stubUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, repositories.ErrNotFound
}

func (r *stubUserRepository) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	var out []*models.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *stubUserRepository) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	var out []*models.User
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}

func (r *stubUserRepository) Search(ctx context.Context, query string, filters repositories.UserFilters) ([]*models.User, int64, error) {
	return r.List(ctx, filters)
}

func (r *stubUserRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	_, ok := r.users[id]
	return ok, nil
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "training.db") + "?_pragma=busy_timeout(5000)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	require.NoError(t, postgres.AutoMigrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

type testEnv struct {
	db        *gorm.DB
	repo      repositories.Repository
	users     *stubUserRepository
	logger    *slog.Logger
	validator *validator.Validator
	publisher *events.MockEventPublisher
	clock     *testClock

	enrollment     EnrollmentService
	catalog        CatalogService
	recommendation RecommendationService
	documents      DocumentService
	reports        ReportService
	reminders      ReminderService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := setupTestDB(t)
	users := newStubUserRepository(
		&models.User{ID: "u1", OrgID: testOrg, FullName: "Ada Lovelace", Email: "ada@example.com", Role: models.RoleEmployee},
		&models.User{ID: "u2", OrgID: testOrg, FullName: "Grace Hopper", Email: "grace@example.com", Role: models.RoleRecruiter},
	)
	repo := postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{DB: db, UserRepository: users})
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := newTestClock(T1)
	v := validator.NewWithClock(clock.Now)
	publisher := events.NewMockEventPublisher(log)

	env := &testEnv{
		db:        db,
		repo:      repo,
		users:     users,
		logger:    log,
		validator: v,
		publisher: publisher,
		clock:     clock,
	}
	env.wire(repo)

	_, err := env.catalog.SeedCatalog(context.Background())
	require.NoError(t, err)
	return env
}

// wire builds every service against repo, so tests can swap in a faulty repository.
func (e *testEnv) wire(repo repositories.Repository) {
	e.enrollment = NewEnrollmentService(repo, e.db, e.logger, e.validator, e.publisher, e.clock.Now)
	e.catalog = NewCatalogService(repo, e.db, e.logger, e.validator)
	e.recommendation = NewRecommendationService(repo, e.logger, e.validator, e.enrollment, e.clock.Now)
	e.documents = NewDocumentService(repo, e.db, e.logger, e.validator, e.publisher, e.clock.Now)
	e.reports = NewReportService(repo, e.logger, e.clock.Now)
	e.reminders = NewReminderService(repo, e.logger, e.publisher, e.clock.Now)
}

func learner(userID string) Actor {
	return Actor{UserID: userID, OrgID: testOrg, Role: models.RoleEmployee}
}

func orgManager() Actor {
	return Actor{UserID: "mgr", OrgID: testOrg, Role: models.RoleManager}
}

func (e *testEnv) assign(t *testing.T, userID, moduleID string) *EnrollmentResponse {
	t.Helper()
	resp, err := e.enrollment.Assign(context.Background(), &AssignRequest{
		OrgID:    testOrg,
		UserID:   userID,
		ModuleID: moduleID,
	}, orgManager())
	require.NoError(t, err)
	return resp
}

// finish walks an enrollment through every lesson of its module.
func (e *testEnv) finish(t *testing.T, id uint, userID string) *EnrollmentResponse {
	t.Helper()
	ctx := context.Background()
	resp, err := e.enrollment.Start(ctx, id, learner(userID))
	require.NoError(t, err)
	for i := 0; i < resp.TotalLessons; i++ {
		resp, err = e.enrollment.CompleteLesson(ctx, id, i, learner(userID))
		require.NoError(t, err)
	}
	return resp
}

func (e *testEnv) insertEnrollment(t *testing.T, enrollment *models.Enrollment) *models.Enrollment {
	t.Helper()
	if enrollment.OrgID == "" {
		enrollment.OrgID = testOrg
	}
	if enrollment.Cycle == 0 {
		enrollment.Cycle = 1
	}
	require.NoError(t, e.repo.Enrollment().Create(context.Background(), nil, enrollment))
	return enrollment
}

func timePtr(t time.Time) *time.Time {
	return &t
}

// faultyRepository wraps a repository and overrides selected sub-repositories.
type faultyRepository struct {
	repositories.Repository
	enrollment repositories.EnrollmentRepository
	document   repositories.DocumentRepository
}

func (r *faultyRepository) Enrollment() repositories.EnrollmentRepository {
	if r.enrollment != nil {
		return r.enrollment
	}
	return r.Repository.Enrollment()
}

func (r *faultyRepository) Document() repositories.DocumentRepository {
	if r.document != nil {
		return r.document
	}
	return r.Repository.Document()
}

type failingCompletion struct {
	repositories.EnrollmentRepository
	err error
}

func (f *failingCompletion) MarkCompleted(ctx context.Context, tx *gorm.DB, id uint, completedAt, expiresAt time.Time) (bool, error) {
	return false, f.err
}

type failingRenewal struct {
	repositories.DocumentRepository
	err error
}

func (f *failingRenewal) MarkRenewed(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	return false, f.err
}

// staleLatest hides the latest cycle of userID from the first GetLatest call,
// as when a concurrent assignment commits between the read and the insert.
type staleLatest struct {
	repositories.EnrollmentRepository
	userID string
	hidden bool
}

func (s *staleLatest) GetLatest(ctx context.Context, tx *gorm.DB, userID, moduleID string) (*models.Enrollment, error) {
	if userID == s.userID && !s.hidden {
		s.hidden = true
		return nil, repositories.ErrNotFound
	}
	return s.EnrollmentRepository.GetLatest(ctx, tx, userID, moduleID)
}
