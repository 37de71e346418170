package services

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/prorab-io/prorab-engine/pkg/apperrors"
	"github.com/prorab-io/prorab-engine/pkg/models"
)

// passthroughTxRunner executes the function directly without a transaction.
type passthroughTxRunner struct {
	calls int
	err   error
}

func (r *passthroughTxRunner) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	r.calls++
	if r.err != nil {
		return r.err
	}
	return fn(ctx)
}

type mockProjectRepository struct {
	projects map[uuid.UUID]*models.Project

	updateRiskErr error
}

func newMockProjectRepository() *mockProjectRepository {
	return &mockProjectRepository{projects: make(map[uuid.UUID]*models.Project)}
}

func (m *mockProjectRepository) Create(_ context.Context, project *models.Project) error {
	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	if project.CreatedAt.IsZero() {
		project.CreatedAt = time.Now()
	}
	m.projects[project.ID] = project
	return nil
}

func (m *mockProjectRepository) Get(_ context.Context, id uuid.UUID) (*models.Project, error) {
	project, ok := m.projects[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return project, nil
}

func (m *mockProjectRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	return m.Get(ctx, id)
}

func (m *mockProjectRepository) List(_ context.Context) ([]*models.Project, error) {
	result := make([]*models.Project, 0, len(m.projects))
	for _, p := range m.projects {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockProjectRepository) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	project, ok := m.projects[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	project.Status = status
	return nil
}

func (m *mockProjectRepository) UpdateRisk(_ context.Context, id uuid.UUID, score int, level models.RiskLevel, breakdown []models.RiskFactor) error {
	if m.updateRiskErr != nil {
		return m.updateRiskErr
	}
	project, ok := m.projects[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	project.RiskScore = score
	project.RiskLevel = level
	project.RiskBreakdown = breakdown
	return nil
}

func (m *mockProjectRepository) ListHighRisk(_ context.Context) ([]*models.Project, error) {
	var result []*models.Project
	for _, p := range m.projects {
		if p.RiskLevel.AtLeast(models.RiskLevelHigh) {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].RiskScore > result[j].RiskScore })
	return result, nil
}

type mockRiskEventRepository struct {
	events []*models.RiskEvent
}

func (m *mockRiskEventRepository) CreateBatch(_ context.Context, events []*models.RiskEvent) error {
	m.events = append(m.events, events...)
	return nil
}

func (m *mockRiskEventRepository) ListByProject(_ context.Context, projectID uuid.UUID) ([]*models.RiskHistoryEntry, error) {
	var result []*models.RiskHistoryEntry
	for i := len(m.events) - 1; i >= 0; i-- {
		event := m.events[i]
		if event.ProjectID != projectID {
			continue
		}
		name := "Система"
		if event.TriggeringUserID != nil {
			name = "Пользователь " + event.TriggeringUserID.String()
		}
		result = append(result, &models.RiskHistoryEntry{RiskEvent: *event, InitiatorName: name})
	}
	return result, nil
}

// forProject returns the stored events for one project in creation order.
func (m *mockRiskEventRepository) forProject(projectID uuid.UUID) []*models.RiskEvent {
	var result []*models.RiskEvent
	for _, event := range m.events {
		if event.ProjectID == projectID {
			result = append(result, event)
		}
	}
	return result
}

type mockWorkPlanRepository struct {
	plans          map[uuid.UUID]*models.WorkPlan
	itemsByProject map[uuid.UUID][]*models.WorkPlanItem
}

func newMockWorkPlanRepository() *mockWorkPlanRepository {
	return &mockWorkPlanRepository{
		plans:          make(map[uuid.UUID]*models.WorkPlan),
		itemsByProject: make(map[uuid.UUID][]*models.WorkPlanItem),
	}
}

func (m *mockWorkPlanRepository) Create(_ context.Context, plan *models.WorkPlan) error {
	if plan.ID == uuid.Nil {
		plan.ID = uuid.New()
	}
	for _, item := range plan.Items {
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		item.WorkPlanID = plan.ID
	}
	m.plans[plan.ProjectID] = plan
	m.itemsByProject[plan.ProjectID] = plan.Items
	return nil
}

func (m *mockWorkPlanRepository) GetByProject(_ context.Context, projectID uuid.UUID) (*models.WorkPlan, error) {
	plan, ok := m.plans[projectID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return plan, nil
}

func (m *mockWorkPlanRepository) ListItemsByProject(_ context.Context, projectID uuid.UUID) ([]*models.WorkPlanItem, error) {
	return m.itemsByProject[projectID], nil
}

func (m *mockWorkPlanRepository) GetItem(_ context.Context, itemID uuid.UUID) (*models.WorkPlanItem, error) {
	for _, items := range m.itemsByProject {
		for _, item := range items {
			if item.ID == itemID {
				return item, nil
			}
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockWorkPlanRepository) UpdateItem(_ context.Context, item *models.WorkPlanItem) error {
	for _, items := range m.itemsByProject {
		for i, existing := range items {
			if existing.ID == item.ID {
				items[i] = item
				return nil
			}
		}
	}
	return apperrors.ErrNotFound
}

func (m *mockWorkPlanRepository) GetPlanProjectID(_ context.Context, planID uuid.UUID) (uuid.UUID, error) {
	for projectID, plan := range m.plans {
		if plan.ID == planID {
			return projectID, nil
		}
	}
	return uuid.Nil, apperrors.ErrNotFound
}

type mockIssueRepository struct {
	issues map[uuid.UUID]*models.Issue
}

func newMockIssueRepository() *mockIssueRepository {
	return &mockIssueRepository{issues: make(map[uuid.UUID]*models.Issue)}
}

func (m *mockIssueRepository) Create(_ context.Context, issue *models.Issue) error {
	if issue.ID == uuid.Nil {
		issue.ID = uuid.New()
	}
	m.issues[issue.ID] = issue
	return nil
}

func (m *mockIssueRepository) Get(_ context.Context, id uuid.UUID) (*models.Issue, error) {
	issue, ok := m.issues[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return issue, nil
}

func (m *mockIssueRepository) Update(_ context.Context, issue *models.Issue) error {
	if _, ok := m.issues[issue.ID]; !ok {
		return apperrors.ErrNotFound
	}
	m.issues[issue.ID] = issue
	return nil
}

func (m *mockIssueRepository) ListOpenByProject(_ context.Context, projectID uuid.UUID) ([]*models.Issue, error) {
	var result []*models.Issue
	for _, issue := range m.issues {
		if issue.ProjectID == projectID && issue.IsOpen() {
			result = append(result, issue)
		}
	}
	return result, nil
}

func (m *mockIssueRepository) ListByProject(_ context.Context, projectID uuid.UUID) ([]*models.Issue, error) {
	var result []*models.Issue
	for _, issue := range m.issues {
		if issue.ProjectID == projectID {
			result = append(result, issue)
		}
	}
	return result, nil
}

type mockChecklistRepository struct {
	checklists  map[uuid.UUID]*models.Checklist
	completions map[uuid.UUID]*models.ChecklistCompletion
}

func newMockChecklistRepository() *mockChecklistRepository {
	return &mockChecklistRepository{
		checklists:  make(map[uuid.UUID]*models.Checklist),
		completions: make(map[uuid.UUID]*models.ChecklistCompletion),
	}
}

func (m *mockChecklistRepository) Create(_ context.Context, checklist *models.Checklist) error {
	if checklist.ID == uuid.Nil {
		checklist.ID = uuid.New()
	}
	m.checklists[checklist.ID] = checklist
	return nil
}

func (m *mockChecklistRepository) Get(_ context.Context, id uuid.UUID) (*models.Checklist, error) {
	checklist, ok := m.checklists[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return checklist, nil
}

func (m *mockChecklistRepository) GetDailyByProject(_ context.Context, projectID uuid.UUID) (*models.Checklist, error) {
	for _, checklist := range m.checklists {
		if checklist.ProjectID == projectID && checklist.Type == models.ChecklistTypeDaily {
			return checklist, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockChecklistRepository) CreateCompletion(_ context.Context, completion *models.ChecklistCompletion) error {
	if completion.ID == uuid.Nil {
		completion.ID = uuid.New()
	}
	m.completions[completion.ID] = completion
	return nil
}

func (m *mockChecklistRepository) GetCompletion(_ context.Context, id uuid.UUID) (*models.ChecklistCompletion, error) {
	completion, ok := m.completions[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return completion, nil
}

func (m *mockChecklistRepository) UpdateCompletion(_ context.Context, completion *models.ChecklistCompletion) error {
	if _, ok := m.completions[completion.ID]; !ok {
		return apperrors.ErrNotFound
	}
	m.completions[completion.ID] = completion
	return nil
}

func (m *mockChecklistRepository) ListCompletionDates(_ context.Context, projectID, checklistID uuid.UUID) ([]time.Time, error) {
	var dates []time.Time
	for _, completion := range m.completions {
		if completion.ProjectID == projectID && completion.ChecklistID == checklistID {
			dates = append(dates, completion.CompletionDate)
		}
	}
	return dates, nil
}

type mockNotificationRepository struct {
	notifications []*models.Notification
	createErr     error
}

func (m *mockNotificationRepository) Create(_ context.Context, notification *models.Notification) error {
	if m.createErr != nil {
		return m.createErr
	}
	if notification.ID == uuid.Nil {
		notification.ID = uuid.New()
	}
	m.notifications = append(m.notifications, notification)
	return nil
}

func (m *mockNotificationRepository) ListByUser(_ context.Context, userID uuid.UUID) ([]*models.Notification, error) {
	var result []*models.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			result = append(result, n)
		}
	}
	return result, nil
}

func (m *mockNotificationRepository) MarkRead(_ context.Context, id, userID uuid.UUID) error {
	for _, n := range m.notifications {
		if n.ID == id && n.UserID == userID {
			n.IsRead = true
			return nil
		}
	}
	return apperrors.ErrNotFound
}

type mockTaskRepository struct {
	tasks map[uuid.UUID]*models.Task
}

func newMockTaskRepository() *mockTaskRepository {
	return &mockTaskRepository{tasks: make(map[uuid.UUID]*models.Task)}
}

func (m *mockTaskRepository) Create(_ context.Context, task *models.Task) error {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	m.tasks[task.ID] = task
	return nil
}

func (m *mockTaskRepository) Get(_ context.Context, id uuid.UUID) (*models.Task, error) {
	task, ok := m.tasks[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return task, nil
}

func (m *mockTaskRepository) Update(_ context.Context, task *models.Task) error {
	if _, ok := m.tasks[task.ID]; !ok {
		return apperrors.ErrNotFound
	}
	m.tasks[task.ID] = task
	return nil
}

func (m *mockTaskRepository) ListByProject(_ context.Context, projectID uuid.UUID) ([]*models.Task, error) {
	var result []*models.Task
	for _, task := range m.tasks {
		if task.ProjectID == projectID {
			result = append(result, task)
		}
	}
	return result, nil
}

type mockDeliveryRepository struct {
	deliveries map[uuid.UUID]*models.MaterialDelivery
}

func newMockDeliveryRepository() *mockDeliveryRepository {
	return &mockDeliveryRepository{deliveries: make(map[uuid.UUID]*models.MaterialDelivery)}
}

func (m *mockDeliveryRepository) Create(_ context.Context, delivery *models.MaterialDelivery) error {
	if delivery.ID == uuid.Nil {
		delivery.ID = uuid.New()
	}
	m.deliveries[delivery.ID] = delivery
	return nil
}

func (m *mockDeliveryRepository) Get(_ context.Context, id uuid.UUID) (*models.MaterialDelivery, error) {
	delivery, ok := m.deliveries[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return delivery, nil
}

func (m *mockDeliveryRepository) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.deliveries[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(m.deliveries, id)
	return nil
}

func (m *mockDeliveryRepository) ListByProject(_ context.Context, projectID uuid.UUID) ([]*models.MaterialDelivery, error) {
	var result []*models.MaterialDelivery
	for _, delivery := range m.deliveries {
		if delivery.ProjectID == projectID {
			result = append(result, delivery)
		}
	}
	return result, nil
}

type mockMaterialRepository struct {
	materials []*models.Material
}

func (m *mockMaterialRepository) Create(_ context.Context, material *models.Material) error {
	if material.ID == uuid.Nil {
		material.ID = uuid.New()
	}
	m.materials = append(m.materials, material)
	return nil
}

func (m *mockMaterialRepository) List(_ context.Context) ([]*models.Material, error) {
	return m.materials, nil
}

type mockDailyReportRepository struct {
	reports []*models.DailyReport
}

func (m *mockDailyReportRepository) Create(_ context.Context, report *models.DailyReport) error {
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	m.reports = append(m.reports, report)
	return nil
}

func (m *mockDailyReportRepository) ListByProject(_ context.Context, projectID uuid.UUID) ([]*models.DailyReport, error) {
	var result []*models.DailyReport
	for _, report := range m.reports {
		if report.ProjectID == projectID {
			result = append(result, report)
		}
	}
	return result, nil
}

type mockUserRepository struct {
	users map[uuid.UUID]*models.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[uuid.UUID]*models.User)}
}

func (m *mockUserRepository) Upsert(_ context.Context, user *models.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepository) Get(_ context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return user, nil
}

// recordingRecalculator captures recomputation triggers without doing any work.
type recordingRecalculator struct {
	calls []recalcCall
}

type recalcCall struct {
	projectID uuid.UUID
	userID    *uuid.UUID
}

func (r *recordingRecalculator) Recalculate(_ context.Context, projectID uuid.UUID, userID *uuid.UUID) (*models.RiskSnapshot, error) {
	r.calls = append(r.calls, recalcCall{projectID: projectID, userID: userID})
	return &models.RiskSnapshot{ProjectID: projectID}, nil
}

// failingRecalculator always errors; used to exercise the degraded paths
// where a business action succeeds but the risk pass does not.
type failingRecalculator struct {
	err error
}

func (f *failingRecalculator) Recalculate(context.Context, uuid.UUID, *uuid.UUID) (*models.RiskSnapshot, error) {
	return nil, f.err
}
