package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/prorab-io/prorab-engine/pkg/apperrors"
	"github.com/prorab-io/prorab-engine/pkg/models"
)

type checklistFixture struct {
	svc           ChecklistService
	checklists    *mockChecklistRepository
	projects      *mockProjectRepository
	notifications *mockNotificationRepository
	recalc        *recordingRecalculator
	projectID     uuid.UUID
}

func newChecklistFixture(t *testing.T, projectStatus string) *checklistFixture {
	t.Helper()

	f := &checklistFixture{
		checklists:    newMockChecklistRepository(),
		projects:      newMockProjectRepository(),
		notifications: &mockNotificationRepository{},
		recalc:        &recordingRecalculator{},
	}
	notifySvc := NewNotificationService(f.notifications, zap.NewNop())
	f.svc = NewChecklistService(f.checklists, f.projects, notifySvc, f.recalc, zap.NewNop())

	project := &models.Project{ID: uuid.New(), Name: "ЖК Заречье", Status: projectStatus, CreatedAt: time.Now()}
	f.projects.projects[project.ID] = project
	f.projectID = project.ID
	return f
}

func TestChecklistService_CreateChecklist(t *testing.T) {
	f := newChecklistFixture(t, models.ProjectStatusPending)

	checklist, err := f.svc.CreateChecklist(context.Background(), f.projectID, &CreateChecklistRequest{
		Name:  "Ежедневный осмотр",
		Type:  models.ChecklistTypeDaily,
		Items: []string{"Ограждения на месте", "СИЗ у всех работников"},
	})
	require.NoError(t, err)

	assert.Equal(t, models.ChecklistTypeDaily, checklist.Type)
	assert.Equal(t, f.projectID, checklist.ProjectID)
	require.Len(t, checklist.Items, 2)
	assert.Equal(t, "Ограждения на месте", checklist.Items[0].Text)
}

func TestChecklistService_CreateChecklist_Validation(t *testing.T) {
	f := newChecklistFixture(t, models.ProjectStatusPending)

	_, err := f.svc.CreateChecklist(context.Background(), f.projectID, &CreateChecklistRequest{
		Name: "Осмотр", Type: "weekly",
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = f.svc.CreateChecklist(context.Background(), f.projectID, &CreateChecklistRequest{
		Type: models.ChecklistTypeStage,
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = f.svc.CreateChecklist(context.Background(), uuid.New(), &CreateChecklistRequest{
		Name: "Осмотр", Type: models.ChecklistTypeDaily,
	})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestChecklistService_SubmitCompletion(t *testing.T) {
	f := newChecklistFixture(t, models.ProjectStatusActive)
	checklist, err := f.svc.CreateChecklist(context.Background(), f.projectID, &CreateChecklistRequest{
		Name: "Ежедневный осмотр", Type: models.ChecklistTypeDaily,
	})
	require.NoError(t, err)

	foremanID := uuid.New()
	completion, recalculated, err := f.svc.SubmitCompletion(context.Background(), checklist.ID, &SubmitCompletionRequest{}, foremanID)
	require.NoError(t, err)
	assert.True(t, recalculated)

	assert.Equal(t, models.CompletionStatusSubmitted, completion.Status)
	assert.Equal(t, foremanID, completion.SubmittedByID)
	assert.False(t, completion.CompletionDate.IsZero())

	require.Len(t, f.recalc.calls, 1)
	assert.Equal(t, f.projectID, f.recalc.calls[0].projectID)
}

func TestChecklistService_SubmitCompletion_DailyRequiresActiveProject(t *testing.T) {
	f := newChecklistFixture(t, models.ProjectStatusPending)
	checklist, err := f.svc.CreateChecklist(context.Background(), f.projectID, &CreateChecklistRequest{
		Name: "Ежедневный осмотр", Type: models.ChecklistTypeDaily,
	})
	require.NoError(t, err)

	_, _, err = f.svc.SubmitCompletion(context.Background(), checklist.ID, &SubmitCompletionRequest{}, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrProjectInactive)
}

func TestChecklistService_SubmitCompletion_StageAllowedBeforeActivation(t *testing.T) {
	f := newChecklistFixture(t, models.ProjectStatusPending)
	checklist, err := f.svc.CreateChecklist(context.Background(), f.projectID, &CreateChecklistRequest{
		Name: "Приемка фундамента", Type: models.ChecklistTypeStage,
	})
	require.NoError(t, err)

	completion, _, err := f.svc.SubmitCompletion(context.Background(), checklist.ID, &SubmitCompletionRequest{}, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, models.CompletionStatusSubmitted, completion.Status)
}

func TestChecklistService_ApproveCompletion(t *testing.T) {
	f := newChecklistFixture(t, models.ProjectStatusActive)
	checklist, err := f.svc.CreateChecklist(context.Background(), f.projectID, &CreateChecklistRequest{
		Name: "Ежедневный осмотр", Type: models.ChecklistTypeDaily,
	})
	require.NoError(t, err)

	completion, _, err := f.svc.SubmitCompletion(context.Background(), checklist.ID, &SubmitCompletionRequest{}, uuid.New())
	require.NoError(t, err)

	inspectorID := uuid.New()
	approved, recalculated, err := f.svc.ApproveCompletion(context.Background(), completion.ID, &ReviewCompletionRequest{}, inspectorID)
	require.NoError(t, err)
	assert.True(t, recalculated)

	assert.Equal(t, models.CompletionStatusApproved, approved.Status)
	require.NotNil(t, approved.ReviewedByID)
	assert.Equal(t, inspectorID, *approved.ReviewedByID)
	assert.NotNil(t, approved.ReviewedAt)

	// Approval sends nothing to the submitter.
	assert.Empty(t, f.notifications.notifications)
}

func TestChecklistService_RejectCompletion_NotifiesSubmitter(t *testing.T) {
	f := newChecklistFixture(t, models.ProjectStatusActive)
	checklist, err := f.svc.CreateChecklist(context.Background(), f.projectID, &CreateChecklistRequest{
		Name: "Ежедневный осмотр", Type: models.ChecklistTypeDaily,
	})
	require.NoError(t, err)

	foremanID := uuid.New()
	completion, _, err := f.svc.SubmitCompletion(context.Background(), checklist.ID, &SubmitCompletionRequest{}, foremanID)
	require.NoError(t, err)

	comment := "Не заполнен пункт о СИЗ"
	rejected, _, err := f.svc.RejectCompletion(context.Background(), completion.ID, &ReviewCompletionRequest{Comment: &comment}, uuid.New())
	require.NoError(t, err)

	assert.Equal(t, models.CompletionStatusRejected, rejected.Status)

	require.Len(t, f.notifications.notifications, 1)
	notification := f.notifications.notifications[0]
	assert.Equal(t, foremanID, notification.UserID)
	assert.Contains(t, notification.Message, "отклонен")
	require.NotNil(t, notification.Link)
	assert.Contains(t, *notification.Link, checklist.ID.String())
}

func TestChecklistService_ReviewCompletion_OnlyFromSubmitted(t *testing.T) {
	f := newChecklistFixture(t, models.ProjectStatusActive)
	checklist, err := f.svc.CreateChecklist(context.Background(), f.projectID, &CreateChecklistRequest{
		Name: "Ежедневный осмотр", Type: models.ChecklistTypeDaily,
	})
	require.NoError(t, err)

	completion, _, err := f.svc.SubmitCompletion(context.Background(), checklist.ID, &SubmitCompletionRequest{}, uuid.New())
	require.NoError(t, err)

	_, _, err = f.svc.ApproveCompletion(context.Background(), completion.ID, &ReviewCompletionRequest{}, uuid.New())
	require.NoError(t, err)

	_, _, err = f.svc.RejectCompletion(context.Background(), completion.ID, &ReviewCompletionRequest{}, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestChecklistService_SubmitCompletion_UnknownChecklist(t *testing.T) {
	f := newChecklistFixture(t, models.ProjectStatusActive)

	_, _, err := f.svc.SubmitCompletion(context.Background(), uuid.New(), &SubmitCompletionRequest{}, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
