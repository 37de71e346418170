package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/prorab-io/prorab-engine/pkg/auth"
	"github.com/prorab-io/prorab-engine/pkg/models"
	"github.com/prorab-io/prorab-engine/pkg/services"
)

// ============================================================================
// Auth Stubs
// ============================================================================

// stubVerifier stands in for JWKS validation in routed tests. A nil claims
// field simulates a request without a valid token.
type stubVerifier struct {
	claims *auth.Claims
}

func (s *stubVerifier) VerifyRequest(*http.Request) (*auth.Claims, error) {
	if s.claims == nil {
		return nil, errors.New("missing Authorization header")
	}
	return s.claims, nil
}

func claimsWithRole(role string) *auth.Claims {
	return &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: uuid.New().String()},
		Role:             role,
	}
}

func middlewareFor(claims *auth.Claims) *auth.Middleware {
	return auth.NewMiddleware(&stubVerifier{claims: claims}, nil, zap.NewNop())
}

// withClaims attaches claims directly to the request context for tests that
// call handler methods without going through the middleware.
func withClaims(req *http.Request, claims *auth.Claims) *http.Request {
	return req.WithContext(auth.SetClaims(req.Context(), claims))
}

// ============================================================================
// Mock Services
// ============================================================================

// mockRiskServiceForHandler implements services.RiskService for handler tests.
type mockRiskServiceForHandler struct {
	snapshot     *models.RiskSnapshot
	project      *models.Project
	highRisk     []*models.Project
	history      []*models.RiskHistoryEntry
	err          error
	recalculated []uuid.UUID
}

func (m *mockRiskServiceForHandler) Recalculate(_ context.Context, projectID uuid.UUID, _ *uuid.UUID) (*models.RiskSnapshot, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.recalculated = append(m.recalculated, projectID)
	return m.snapshot, nil
}

func (m *mockRiskServiceForHandler) ForceRecalculate(ctx context.Context, projectID uuid.UUID) (*models.RiskSnapshot, error) {
	return m.Recalculate(ctx, projectID, nil)
}

func (m *mockRiskServiceForHandler) GetCurrent(context.Context, uuid.UUID) (*models.Project, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.project, nil
}

func (m *mockRiskServiceForHandler) ListHighRisk(context.Context) ([]*models.Project, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.highRisk, nil
}

func (m *mockRiskServiceForHandler) History(context.Context, uuid.UUID) ([]*models.RiskHistoryEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.history, nil
}

// mockProjectServiceForHandler implements services.ProjectService for handler tests.
type mockProjectServiceForHandler struct {
	project      *models.Project
	projects     []*models.Project
	recalculated bool
	err          error
	createReq    *services.CreateProjectRequest
	activatedID  uuid.UUID
	activatedBy  uuid.UUID
}

func (m *mockProjectServiceForHandler) Create(_ context.Context, req *services.CreateProjectRequest) (*models.Project, bool, error) {
	if m.err != nil {
		return nil, false, m.err
	}
	m.createReq = req
	return m.project, m.recalculated, nil
}

func (m *mockProjectServiceForHandler) Get(context.Context, uuid.UUID) (*models.Project, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.project, nil
}

func (m *mockProjectServiceForHandler) List(context.Context) ([]*models.Project, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.projects, nil
}

func (m *mockProjectServiceForHandler) Activate(_ context.Context, id uuid.UUID, userID uuid.UUID) (*models.Project, bool, error) {
	if m.err != nil {
		return nil, false, m.err
	}
	m.activatedID = id
	m.activatedBy = userID
	return m.project, m.recalculated, nil
}

// mockWorkPlanServiceForHandler implements services.WorkPlanService for handler tests.
type mockWorkPlanServiceForHandler struct {
	plan         *models.WorkPlan
	item         *models.WorkPlanItem
	recalculated bool
	err          error
	createdFor   uuid.UUID
	createdBy    uuid.UUID
}

func (m *mockWorkPlanServiceForHandler) Create(_ context.Context, projectID uuid.UUID, _ *services.CreateWorkPlanRequest, userID uuid.UUID) (*models.WorkPlan, bool, error) {
	if m.err != nil {
		return nil, false, m.err
	}
	m.createdFor = projectID
	m.createdBy = userID
	return m.plan, m.recalculated, nil
}

func (m *mockWorkPlanServiceForHandler) GetByProject(context.Context, uuid.UUID) (*models.WorkPlan, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.plan, nil
}

func (m *mockWorkPlanServiceForHandler) UpdateItem(context.Context, uuid.UUID, *services.UpdateWorkPlanItemRequest, uuid.UUID) (*models.WorkPlanItem, bool, error) {
	if m.err != nil {
		return nil, false, m.err
	}
	return m.item, m.recalculated, nil
}

// mockTaskServiceForHandler implements services.TaskService for handler tests.
type mockTaskServiceForHandler struct {
	task         *models.Task
	tasks        []*models.Task
	recalculated bool
	err          error
	completedBy  uuid.UUID
}

func (m *mockTaskServiceForHandler) Create(context.Context, uuid.UUID, *services.CreateTaskRequest) (*models.Task, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.task, nil
}

func (m *mockTaskServiceForHandler) ListByProject(context.Context, uuid.UUID) ([]*models.Task, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.tasks, nil
}

func (m *mockTaskServiceForHandler) Complete(_ context.Context, _ uuid.UUID, _ *services.CompleteTaskRequest, userID uuid.UUID) (*models.Task, bool, error) {
	if m.err != nil {
		return nil, false, m.err
	}
	m.completedBy = userID
	return m.task, m.recalculated, nil
}

func (m *mockTaskServiceForHandler) Verify(context.Context, uuid.UUID, *services.VerifyTaskRequest, uuid.UUID) (*models.Task, bool, error) {
	if m.err != nil {
		return nil, false, m.err
	}
	return m.task, m.recalculated, nil
}

// mockIssueServiceForHandler implements services.IssueService for handler tests.
type mockIssueServiceForHandler struct {
	issue        *models.Issue
	issues       []*models.Issue
	recalculated bool
	err          error
	authorID     uuid.UUID
}

func (m *mockIssueServiceForHandler) Create(_ context.Context, _ uuid.UUID, _ *services.CreateIssueRequest, authorID uuid.UUID) (*models.Issue, bool, error) {
	if m.err != nil {
		return nil, false, m.err
	}
	m.authorID = authorID
	return m.issue, m.recalculated, nil
}

func (m *mockIssueServiceForHandler) ListByProject(context.Context, uuid.UUID) ([]*models.Issue, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.issues, nil
}

func (m *mockIssueServiceForHandler) Resolve(context.Context, uuid.UUID, *services.ResolveIssueRequest, uuid.UUID) (*models.Issue, bool, error) {
	if m.err != nil {
		return nil, false, m.err
	}
	return m.issue, m.recalculated, nil
}

func (m *mockIssueServiceForHandler) Verify(context.Context, uuid.UUID, *services.VerifyIssueRequest, uuid.UUID) (*models.Issue, bool, error) {
	if m.err != nil {
		return nil, false, m.err
	}
	return m.issue, m.recalculated, nil
}

// mockChecklistServiceForHandler implements services.ChecklistService for handler tests.
type mockChecklistServiceForHandler struct {
	checklist    *models.Checklist
	completion   *models.ChecklistCompletion
	recalculated bool
	err          error
	approvedID   uuid.UUID
	rejectedID   uuid.UUID
}

func (m *mockChecklistServiceForHandler) CreateChecklist(context.Context, uuid.UUID, *services.CreateChecklistRequest) (*models.Checklist, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.checklist, nil
}

func (m *mockChecklistServiceForHandler) SubmitCompletion(context.Context, uuid.UUID, *services.SubmitCompletionRequest, uuid.UUID) (*models.ChecklistCompletion, bool, error) {
	if m.err != nil {
		return nil, false, m.err
	}
	return m.completion, m.recalculated, nil
}

func (m *mockChecklistServiceForHandler) ApproveCompletion(_ context.Context, completionID uuid.UUID, _ *services.ReviewCompletionRequest, _ uuid.UUID) (*models.ChecklistCompletion, bool, error) {
	if m.err != nil {
		return nil, false, m.err
	}
	m.approvedID = completionID
	return m.completion, m.recalculated, nil
}

func (m *mockChecklistServiceForHandler) RejectCompletion(_ context.Context, completionID uuid.UUID, _ *services.ReviewCompletionRequest, _ uuid.UUID) (*models.ChecklistCompletion, bool, error) {
	if m.err != nil {
		return nil, false, m.err
	}
	m.rejectedID = completionID
	return m.completion, m.recalculated, nil
}

// mockDeliveryServiceForHandler implements services.DeliveryService for handler tests.
type mockDeliveryServiceForHandler struct {
	delivery     *models.MaterialDelivery
	deliveries   []*models.MaterialDelivery
	material     *models.Material
	materials    []*models.Material
	recalculated bool
	err          error
	deletedID    uuid.UUID
}

func (m *mockDeliveryServiceForHandler) Create(context.Context, uuid.UUID, *services.CreateDeliveryRequest, uuid.UUID) (*models.MaterialDelivery, bool, error) {
	if m.err != nil {
		return nil, false, m.err
	}
	return m.delivery, m.recalculated, nil
}

func (m *mockDeliveryServiceForHandler) ListByProject(context.Context, uuid.UUID) ([]*models.MaterialDelivery, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.deliveries, nil
}

func (m *mockDeliveryServiceForHandler) Delete(_ context.Context, deliveryID uuid.UUID, _ uuid.UUID) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	m.deletedID = deliveryID
	return m.recalculated, nil
}

func (m *mockDeliveryServiceForHandler) CreateMaterial(context.Context, *services.CreateMaterialRequest) (*models.Material, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.material, nil
}

func (m *mockDeliveryServiceForHandler) ListMaterials(context.Context) ([]*models.Material, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.materials, nil
}

// mockDailyReportServiceForHandler implements services.DailyReportService for handler tests.
type mockDailyReportServiceForHandler struct {
	report  *models.DailyReport
	reports []*models.DailyReport
	err     error
}

func (m *mockDailyReportServiceForHandler) Create(context.Context, uuid.UUID, *services.CreateDailyReportRequest, uuid.UUID) (*models.DailyReport, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.report, nil
}

func (m *mockDailyReportServiceForHandler) ListByProject(context.Context, uuid.UUID) ([]*models.DailyReport, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.reports, nil
}

// mockNotificationServiceForHandler implements services.NotificationService for handler tests.
type mockNotificationServiceForHandler struct {
	notifications []*models.Notification
	err           error
	markedID      uuid.UUID
	markedUser    uuid.UUID
}

func (m *mockNotificationServiceForHandler) Notify(context.Context, uuid.UUID, string, *string) {}

func (m *mockNotificationServiceForHandler) ListByUser(context.Context, uuid.UUID) ([]*models.Notification, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.notifications, nil
}

func (m *mockNotificationServiceForHandler) MarkRead(_ context.Context, id, userID uuid.UUID) error {
	if m.err != nil {
		return m.err
	}
	m.markedID = id
	m.markedUser = userID
	return nil
}
