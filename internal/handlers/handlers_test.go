package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/repositories"
	"github.com/SAP-F-2025/training-service/internal/services"
	"github.com/SAP-F-2025/training-service/internal/utils"
	"github.com/SAP-F-2025/training-service/internal/validator"
)

var fixedNow = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

// ===== FAKES =====

// Each fake embeds its interface; calling a method the test did not set panics.
type fakeEnrollmentService struct {
	services.EnrollmentService
	assign         func(req *services.AssignRequest, actor services.Actor) (*services.EnrollmentResponse, error)
	bulkAssign     func(req *services.BulkAssignRequest, actor services.Actor) (*services.BulkAssignResult, error)
	getByID        func(id uint, actor services.Actor) (*services.EnrollmentResponse, error)
	completeLesson func(id uint, idx int, actor services.Actor) (*services.EnrollmentResponse, error)
	acknowledge    func(id uint, req *services.AcknowledgeRequest, actor services.Actor) (*services.AcknowledgeResponse, error)
	listForOrg     func(filters repositories.EnrollmentFilters, actor services.Actor) ([]*services.EnrollmentResponse, int64, error)
	listForUser    func(userID string, filters repositories.EnrollmentFilters, actor services.Actor) ([]*services.EnrollmentResponse, int64, error)
}

func (f *fakeEnrollmentService) Assign(_ context.Context, req *services.AssignRequest, actor services.Actor) (*services.EnrollmentResponse, error) {
	return f.assign(req, actor)
}

func (f *fakeEnrollmentService) BulkAssign(_ context.Context, req *services.BulkAssignRequest, actor services.Actor) (*services.BulkAssignResult, error) {
	return f.bulkAssign(req, actor)
}

func (f *fakeEnrollmentService) GetByID(_ context.Context, id uint, actor services.Actor) (*services.EnrollmentResponse, error) {
	return f.getByID(id, actor)
}

func (f *fakeEnrollmentService) CompleteLesson(_ context.Context, id uint, idx int, actor services.Actor) (*services.EnrollmentResponse, error) {
	return f.completeLesson(id, idx, actor)
}

func (f *fakeEnrollmentService) Acknowledge(_ context.Context, id uint, req *services.AcknowledgeRequest, actor services.Actor) (*services.AcknowledgeResponse, error) {
	return f.acknowledge(id, req, actor)
}

func (f *fakeEnrollmentService) ListForOrg(_ context.Context, filters repositories.EnrollmentFilters, actor services.Actor) ([]*services.EnrollmentResponse, int64, error) {
	return f.listForOrg(filters, actor)
}

func (f *fakeEnrollmentService) ListForUser(_ context.Context, userID string, filters repositories.EnrollmentFilters, actor services.Actor) ([]*services.EnrollmentResponse, int64, error) {
	return f.listForUser(userID, filters, actor)
}

type fakeDocumentService struct {
	services.DocumentService
	upcoming func(days int) ([]*services.DocumentResponse, error)
}

func (f *fakeDocumentService) UpcomingRenewals(_ context.Context, days int, _ services.Actor) ([]*services.DocumentResponse, error) {
	return f.upcoming(days)
}

type fakeReportService struct {
	services.ReportService
	export func(orgID string, w io.Writer) error
}

func (f *fakeReportService) ExportXLSX(_ context.Context, orgID string, w io.Writer) error {
	return f.export(orgID, w)
}

type fakeReminderService struct {
	calls int
}

func (f *fakeReminderService) Scan(context.Context) (*services.ScanResult, error) {
	f.calls++
	return &services.ScanResult{EnrollmentEvents: 2}, nil
}

type fakeServiceManager struct {
	services.ServiceManager
	enrollment *fakeEnrollmentService
	document   *fakeDocumentService
	report     *fakeReportService
	reminder   *fakeReminderService
	healthErr  error
}

func (f *fakeServiceManager) Enrollment() services.EnrollmentService         { return f.enrollment }
func (f *fakeServiceManager) Catalog() services.CatalogService               { return nil }
func (f *fakeServiceManager) Recommendation() services.RecommendationService { return nil }
func (f *fakeServiceManager) Document() services.DocumentService             { return f.document }
func (f *fakeServiceManager) Report() services.ReportService                 { return f.report }
func (f *fakeServiceManager) Reminder() services.ReminderService             { return f.reminder }
func (f *fakeServiceManager) HealthCheck(context.Context) error              { return f.healthErr }

// ===== HELPERS =====

var (
	employee = &models.User{ID: "u1", OrgID: "org-1", Role: models.RoleEmployee}
	manager  = &models.User{ID: "m1", OrgID: "org-1", Role: models.RoleManager}
	admin    = &models.User{ID: "a1", OrgID: "org-1", Role: models.RoleAdmin}
)

func newFakeManager() *fakeServiceManager {
	return &fakeServiceManager{
		enrollment: &fakeEnrollmentService{},
		document:   &fakeDocumentService{},
		report:     &fakeReportService{},
		reminder:   &fakeReminderService{},
	}
}

func setupRouter(t *testing.T, sm *fakeServiceManager, user *models.User) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	authenticate := func(c *gin.Context) {
		if user != nil {
			SetUserInContext(c, user)
		}
		c.Next()
	}

	router := gin.New()
	SetupMiddleware(router, logger, nil)
	clock := func() time.Time { return fixedNow }
	newHandlerManager(sm, validator.NewWithClock(clock), logger, nil, clock, authenticate).SetupRoutes(router)
	return router
}

func do(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// ===== TESTS =====

func TestHealthCheck(t *testing.T) {
	sm := newFakeManager()
	router := setupRouter(t, sm, nil)

	w := do(router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	sm.healthErr = errors.New("database ping failed")
	w = do(router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "unhealthy")
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	router := gin.New()
	SetupMiddleware(router, logger, []string{"https://app.example.com/"})
	router.GET("/api/v1/me", func(c *gin.Context) { c.Status(http.StatusOK) })

	request := func(method, origin, requestID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/api/v1/me", nil)
		if origin != "" {
			req.Header.Set("Origin", origin)
		}
		if requestID != "" {
			req.Header.Set(utils.RequestIDHeader, requestID)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("allowed origin", func(t *testing.T) {
		w := request(http.MethodGet, "https://app.example.com", "bulk-42")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		assert.Equal(t, "bulk-42", w.Header().Get(utils.RequestIDHeader))
		assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	})

	t.Run("preflight", func(t *testing.T) {
		w := request(http.MethodOptions, "https://app.example.com", "")
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), utils.RequestIDHeader)

		w = request(http.MethodOptions, "https://evil.example.com", "")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("other origin", func(t *testing.T) {
		w := request(http.MethodGet, "https://evil.example.com", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
		assert.NotEmpty(t, w.Header().Get(utils.RequestIDHeader))
	})

	t.Run("no origin list", func(t *testing.T) {
		w := do(setupRouter(t, newFakeManager(), nil), http.MethodOptions, "/api/v1/modules", nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	})
}

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"validation", fmt.Errorf("%w: %w", services.ErrValidation, validator.ValidationErrors{{Field: "user_id", Message: "is required"}}), http.StatusBadRequest, "Validation failed"},
		{"plain validation", services.ErrValidation, http.StatusBadRequest, "Validation failed"},
		{"transition", &services.TransitionError{From: models.EnrollmentNotStarted, Action: "complete", Reason: "progress is 0"}, http.StatusConflict, "Invalid state transition"},
		{"not eligible", &services.NotEligibleError{Reason: "progress is 40"}, http.StatusUnprocessableEntity, "Enrollment is not eligible for acknowledgment"},
		{"duplicate ack", services.ErrDuplicateAcknowledgment, http.StatusConflict, "Acknowledgment already recorded"},
		{"permission", services.NewPermissionError("u2", 1, "enrollment", "view", "not owner"), http.StatusForbidden, "Access denied"},
		{"enrollment missing", services.ErrEnrollmentNotFound, http.StatusNotFound, "Enrollment not found"},
		{"user missing", services.ErrUserNotFound, http.StatusNotFound, "Resource not found"},
		{"persistence", fmt.Errorf("%w: load: disk full", services.ErrPersistence), http.StatusServiceUnavailable, "Service temporarily unavailable"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm := newFakeManager()
			sm.enrollment.getByID = func(uint, services.Actor) (*services.EnrollmentResponse, error) {
				return nil, tt.err
			}
			router := setupRouter(t, sm, employee)

			w := do(router, http.MethodGet, "/api/v1/enrollments/7", nil)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.message, decodeError(t, w).Message)
		})
	}

	t.Run("transition details", func(t *testing.T) {
		sm := newFakeManager()
		sm.enrollment.getByID = func(uint, services.Actor) (*services.EnrollmentResponse, error) {
			return nil, &services.TransitionError{From: models.EnrollmentCompleted, Action: "retake", Reason: "not expired"}
		}
		router := setupRouter(t, sm, employee)

		w := do(router, http.MethodGet, "/api/v1/enrollments/7", nil)
		details, ok := decodeError(t, w).Details.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "completed", details["from"])
		assert.Equal(t, "retake", details["action"])
	})
}

func TestEnrollmentHandler_GetEnrollment(t *testing.T) {
	sm := newFakeManager()
	var gotActor services.Actor
	sm.enrollment.getByID = func(id uint, actor services.Actor) (*services.EnrollmentResponse, error) {
		gotActor = actor
		return &services.EnrollmentResponse{
			Enrollment:    &models.Enrollment{ID: id, UserID: actor.UserID, ModuleID: "harassment-prevention"},
			DerivedStatus: models.EnrollmentInProgress,
		}, nil
	}

	t.Run("ok", func(t *testing.T) {
		w := do(setupRouter(t, sm, employee), http.MethodGet, "/api/v1/enrollments/7", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, services.Actor{UserID: "u1", OrgID: "org-1", Role: models.RoleEmployee}, gotActor)
		assert.Contains(t, w.Body.String(), `"derived_status":"in_progress"`)
	})

	t.Run("bad id", func(t *testing.T) {
		w := do(setupRouter(t, sm, employee), http.MethodGet, "/api/v1/enrollments/abc", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		w := do(setupRouter(t, sm, nil), http.MethodGet, "/api/v1/enrollments/7", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestEnrollmentHandler_AssignRequiresManager(t *testing.T) {
	sm := newFakeManager()
	var got *services.AssignRequest
	sm.enrollment.assign = func(req *services.AssignRequest, actor services.Actor) (*services.EnrollmentResponse, error) {
		got = req
		return &services.EnrollmentResponse{Enrollment: &models.Enrollment{ID: 1, UserID: req.UserID, ModuleID: req.ModuleID}}, nil
	}
	body := map[string]interface{}{"user_id": "u1", "module_id": "bias-in-ai-hiring", "org_id": "org-9"}

	w := do(setupRouter(t, sm, employee), http.MethodPost, "/api/v1/enrollments", body)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Nil(t, got)

	w = do(setupRouter(t, sm, manager), http.MethodPost, "/api/v1/enrollments", body)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, got)
	assert.Equal(t, "org-1", got.OrgID, "organization comes from the caller, not the body")
	assert.Equal(t, "bias-in-ai-hiring", got.ModuleID)

	w = do(setupRouter(t, sm, manager), http.MethodPost, "/api/v1/enrollments", "not an object")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEnrollmentHandler_BulkAssignPartialFailure(t *testing.T) {
	sm := newFakeManager()
	sm.enrollment.bulkAssign = func(req *services.BulkAssignRequest, _ services.Actor) (*services.BulkAssignResult, error) {
		return &services.BulkAssignResult{
			Created: []*services.EnrollmentResponse{
				{Enrollment: &models.Enrollment{ID: 7, UserID: "u1", ModuleID: "bias-in-ai-hiring"}},
			},
			Skipped: []services.SkippedAssignment{
				{UserID: "u3", ModuleID: "no-such-module", Reason: "module_not_found"},
			},
		}, fmt.Errorf("%w: create enrollment: connection reset", services.ErrPersistence)
	}
	body := map[string]interface{}{"pairs": []map[string]string{
		{"user_id": "u1", "module_id": "bias-in-ai-hiring"},
		{"user_id": "u3", "module_id": "no-such-module"},
		{"user_id": "u2", "module_id": "bias-in-ai-hiring"},
	}}

	w := do(setupRouter(t, sm, manager), http.MethodPost, "/api/v1/enrollments/bulk", body)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	resp := decodeError(t, w)
	assert.Equal(t, "Service temporarily unavailable", resp.Message)
	details, ok := resp.Details.(map[string]interface{})
	require.True(t, ok)

	created, ok := details["created"].([]interface{})
	require.True(t, ok)
	require.Len(t, created, 1)
	assert.Equal(t, float64(7), created[0].(map[string]interface{})["id"])

	skipped, ok := details["skipped"].([]interface{})
	require.True(t, ok)
	require.Len(t, skipped, 1)
	assert.Equal(t, "module_not_found", skipped[0].(map[string]interface{})["reason"])

	t.Run("failure before any pair keeps the plain body", func(t *testing.T) {
		sm.enrollment.bulkAssign = func(*services.BulkAssignRequest, services.Actor) (*services.BulkAssignResult, error) {
			return nil, services.ErrPersistence
		}
		w := do(setupRouter(t, sm, manager), http.MethodPost, "/api/v1/enrollments/bulk", body)
		require.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Nil(t, decodeError(t, w).Details)
	})
}

func TestEnrollmentHandler_CompleteLesson(t *testing.T) {
	sm := newFakeManager()
	gotIndex := -1
	sm.enrollment.completeLesson = func(id uint, idx int, _ services.Actor) (*services.EnrollmentResponse, error) {
		gotIndex = idx
		return &services.EnrollmentResponse{Enrollment: &models.Enrollment{ID: id, Progress: 25}}, nil
	}
	router := setupRouter(t, sm, employee)

	w := do(router, http.MethodPost, "/api/v1/enrollments/3/lessons", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Validation failed", decodeError(t, w).Message)
	assert.Equal(t, -1, gotIndex)

	w = do(router, http.MethodPost, "/api/v1/enrollments/3/lessons", map[string]interface{}{"lesson_index": 0})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, gotIndex)
}

func TestEnrollmentHandler_Acknowledge(t *testing.T) {
	sm := newFakeManager()
	var gotID uint
	var gotText string
	sm.enrollment.acknowledge = func(id uint, req *services.AcknowledgeRequest, _ services.Actor) (*services.AcknowledgeResponse, error) {
		gotID, gotText = id, req.AcknowledgmentText
		if id == 9 {
			return nil, services.ErrDuplicateAcknowledgment
		}
		return &services.AcknowledgeResponse{
			Enrollment:     &services.EnrollmentResponse{Enrollment: &models.Enrollment{ID: id, Status: models.EnrollmentCompleted}},
			Acknowledgment: &models.Acknowledgment{ID: 1, EnrollmentID: id, UserID: "u1", AcknowledgmentText: req.AcknowledgmentText},
		}, nil
	}
	router := setupRouter(t, sm, employee)

	body := map[string]string{"acknowledgment_text": "I have read and understood the policy."}
	w := do(router, http.MethodPost, "/api/v1/enrollments/4/acknowledgment", body)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, uint(4), gotID)
	assert.Equal(t, body["acknowledgment_text"], gotText)

	w = do(router, http.MethodPost, "/api/v1/enrollments/9/acknowledgment", body)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestEnrollmentHandler_ListFilters(t *testing.T) {
	sm := newFakeManager()
	var got repositories.EnrollmentFilters
	var gotUser string
	sm.enrollment.listForOrg = func(filters repositories.EnrollmentFilters, _ services.Actor) ([]*services.EnrollmentResponse, int64, error) {
		got = filters
		return []*services.EnrollmentResponse{}, 41, nil
	}
	sm.enrollment.listForUser = func(userID string, filters repositories.EnrollmentFilters, _ services.Actor) ([]*services.EnrollmentResponse, int64, error) {
		gotUser, got = userID, filters
		return []*services.EnrollmentResponse{}, 0, nil
	}
	router := setupRouter(t, sm, manager)

	w := do(router, http.MethodGet, "/api/v1/enrollments?status=completed&module_id=nyc-ll144&user_id=u2&latest_only=true&page=3&size=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, got.Status)
	assert.Equal(t, models.EnrollmentCompleted, *got.Status)
	assert.Equal(t, "nyc-ll144", *got.ModuleID)
	assert.Equal(t, "u2", *got.UserID)
	assert.True(t, got.LatestOnly)
	assert.Equal(t, 10, got.Limit)
	assert.Equal(t, 20, got.Offset)

	var list models.PaginatedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, int64(41), list.TotalElements)
	assert.Equal(t, 3, list.Page)
	assert.Equal(t, 5, list.TotalPages)
	assert.True(t, list.Empty)

	w = do(router, http.MethodGet, "/api/v1/enrollments?status=expired", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(setupRouter(t, sm, employee), http.MethodGet, "/api/v1/me/enrollments", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", gotUser)
	assert.Equal(t, 20, got.Limit)
}

func TestDocumentHandler_UpcomingRenewals(t *testing.T) {
	sm := newFakeManager()
	gotDays := -1
	sm.document.upcoming = func(days int) ([]*services.DocumentResponse, error) {
		gotDays = days
		return []*services.DocumentResponse{}, nil
	}

	w := do(setupRouter(t, sm, employee), http.MethodGet, "/api/v1/documents/upcoming", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	router := setupRouter(t, sm, manager)
	w = do(router, http.MethodGet, "/api/v1/documents/upcoming", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, gotDays)

	w = do(router, http.MethodGet, "/api/v1/documents/upcoming?days=30", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 30, gotDays)

	w = do(router, http.MethodGet, "/api/v1/documents/upcoming?days=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportHandler_ExportXLSX(t *testing.T) {
	sm := newFakeManager()
	sm.report.export = func(orgID string, w io.Writer) error {
		if orgID != "org-1" {
			return services.ErrPermissionDenied
		}
		_, err := w.Write([]byte("PK\x03\x04workbook"))
		return err
	}

	w := do(setupRouter(t, sm, manager), http.MethodGet, "/api/v1/reports/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="training-report-2025-03-01.xlsx"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "PK\x03\x04workbook", w.Body.String())

	other := &models.User{ID: "m2", OrgID: "org-2", Role: models.RoleOwner}
	w = do(setupRouter(t, sm, other), http.MethodGet, "/api/v1/reports/export", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
}

func TestReminderHandler_AdminOnly(t *testing.T) {
	sm := newFakeManager()

	w := do(setupRouter(t, sm, manager), http.MethodPost, "/api/v1/admin/reminders/scan", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, 0, sm.reminder.calls)

	w = do(setupRouter(t, sm, admin), http.MethodPost, "/api/v1/admin/reminders/scan", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, sm.reminder.calls)
	assert.Contains(t, w.Body.String(), `"enrollment_events":2`)
}

func TestUserHandler_GetCurrentUser(t *testing.T) {
	sm := newFakeManager()

	w := do(setupRouter(t, sm, manager), http.MethodGet, "/api/v1/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got models.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "m1", got.ID)
	assert.Equal(t, "org-1", got.OrgID)

	w = do(setupRouter(t, sm, nil), http.MethodGet, "/api/v1/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateUserFromClaims(t *testing.T) {
	claims := &casdoorsdk.Claims{User: casdoorsdk.User{
		Id:          "u9",
		Owner:       "acme",
		DisplayName: "Katherine Johnson",
		Email:       "kj@acme.test",
		Type:        "owner",
	}}

	user := createUserFromClaims(claims)
	assert.Equal(t, "u9", user.ID)
	assert.Equal(t, "acme", user.OrgID)
	assert.Equal(t, models.RoleOwner, user.Role)
}

func TestBearerToken(t *testing.T) {
	token, ok := bearerToken("Bearer abc.def")
	assert.True(t, ok)
	assert.Equal(t, "abc.def", token)

	for _, header := range []string{"", "Bearer", "Basic abc", "Bearer "} {
		_, ok := bearerToken(header)
		assert.False(t, ok, header)
	}
}
