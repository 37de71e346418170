package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/prorab-io/prorab-engine/pkg/apperrors"
	"github.com/prorab-io/prorab-engine/pkg/database"
	"github.com/prorab-io/prorab-engine/pkg/models"
	"github.com/prorab-io/prorab-engine/pkg/repositories"
	"github.com/prorab-io/prorab-engine/pkg/risk"
)

// RiskRecalculator is the narrow surface workflow services depend on to
// trigger a recomputation after a state-changing action.
type RiskRecalculator interface {
	// Recalculate recomputes the project's risk profile from current state,
	// persists the snapshot and the per-factor ledger events atomically, and
	// returns the fresh snapshot. Returns (nil, nil) when the project does
	// not exist. triggeredBy attributes ledger events to a user; nil means
	// a system-initiated pass.
	Recalculate(ctx context.Context, projectID uuid.UUID, triggeredBy *uuid.UUID) (*models.RiskSnapshot, error)
}

// RiskService owns project risk state: recomputation, the event ledger, and
// the read surface.
type RiskService interface {
	RiskRecalculator

	// ForceRecalculate runs a system-attributed recomputation on demand.
	ForceRecalculate(ctx context.Context, projectID uuid.UUID) (*models.RiskSnapshot, error)

	// GetCurrent returns the project's stored risk profile without
	// recomputing it.
	GetCurrent(ctx context.Context, projectID uuid.UUID) (*models.Project, error)

	// ListHighRisk returns projects at HIGH severity or worse, worst first.
	ListHighRisk(ctx context.Context) ([]*models.Project, error)

	// History returns the project's ledger events newest first, with
	// initiator names resolved.
	History(ctx context.Context, projectID uuid.UUID) ([]*models.RiskHistoryEntry, error)
}

type riskService struct {
	txRunner    database.TxRunner
	projectRepo repositories.ProjectRepository
	eventRepo   repositories.RiskEventRepository
	workPlans   repositories.WorkPlanRepository
	issues      repositories.IssueRepository
	checklists  repositories.ChecklistRepository
	calculators []risk.Calculator
	cache       *RiskCache
	now         func() time.Time
	logger      *zap.Logger
}

var _ RiskService = (*riskService)(nil)

// NewRiskService creates the risk service. cache may be nil when Redis is not
// configured.
func NewRiskService(
	txRunner database.TxRunner,
	projectRepo repositories.ProjectRepository,
	eventRepo repositories.RiskEventRepository,
	workPlans repositories.WorkPlanRepository,
	issues repositories.IssueRepository,
	checklists repositories.ChecklistRepository,
	cache *RiskCache,
	logger *zap.Logger,
) RiskService {
	return &riskService{
		txRunner:    txRunner,
		projectRepo: projectRepo,
		eventRepo:   eventRepo,
		workPlans:   workPlans,
		issues:      issues,
		checklists:  checklists,
		calculators: risk.DefaultCalculators(),
		cache:       cache,
		now:         time.Now,
		logger:      logger.Named("risk-service"),
	}
}

func (s *riskService) Recalculate(ctx context.Context, projectID uuid.UUID, triggeredBy *uuid.UUID) (*models.RiskSnapshot, error) {
	var snapshot *models.RiskSnapshot

	err := s.txRunner.WithTx(ctx, func(ctx context.Context) error {
		// The row lock serializes concurrent recomputations of the same
		// project so ledger deltas always chain off the committed state.
		project, err := s.projectRepo.GetForUpdate(ctx, projectID)
		if err != nil {
			return err
		}

		state, err := s.loadState(ctx, project)
		if err != nil {
			return err
		}

		var results []factorResult
		snapshot, results = s.aggregate(state)

		events := s.diffEvents(project, snapshot.RiskScore, results, triggeredBy)

		if err := s.projectRepo.UpdateRisk(ctx, projectID, snapshot.RiskScore, snapshot.RiskLevel, snapshot.RiskBreakdown); err != nil {
			return err
		}
		if err := s.eventRepo.CreateBatch(ctx, events); err != nil {
			return err
		}

		s.logger.Info("Recalculated project risk",
			zap.String("project_id", projectID.String()),
			zap.Int("old_score", project.RiskScore),
			zap.Int("new_score", snapshot.RiskScore),
			zap.String("risk_level", string(snapshot.RiskLevel)),
			zap.Int("events", len(events)))

		return nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to recalculate risk for project %s: %w", projectID, err)
	}

	// Any score change can move a project across the HIGH threshold.
	s.cache.Invalidate(ctx)

	return snapshot, nil
}

func (s *riskService) ForceRecalculate(ctx context.Context, projectID uuid.UUID) (*models.RiskSnapshot, error) {
	return s.Recalculate(ctx, projectID, nil)
}

// loadState gathers everything the calculators read, inside the recompute
// transaction so the pass sees one consistent view.
func (s *riskService) loadState(ctx context.Context, project *models.Project) (*risk.State, error) {
	items, err := s.workPlans.ListItemsByProject(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load work plan items: %w", err)
	}

	openIssues, err := s.issues.ListOpenByProject(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load open issues: %w", err)
	}

	state := &risk.State{
		Project:       project,
		WorkPlanItems: items,
		OpenIssues:    openIssues,
		Today:         s.now(),
	}

	daily, err := s.checklists.GetDailyByProject(ctx, project.ID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to load daily checklist: %w", err)
		}
		return state, nil
	}
	state.DailyChecklist = daily

	dates, err := s.checklists.ListCompletionDates(ctx, project.ID, daily.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load checklist completion dates: %w", err)
	}
	state.DailyCompletionDates = dates

	return state, nil
}

// factorResult is one calculator's evaluation. Zero-score results are kept
// so the ledger can record a factor returning to zero with the calculator's
// own message, even though the breakdown omits them.
type factorResult struct {
	key         risk.FactorKey
	score       int
	description string
}

// aggregate runs every calculator against the loaded state and assembles the
// snapshot. A factor enters the breakdown only when it scores above zero; the
// returned results cover every factor.
func (s *riskService) aggregate(state *risk.State) (*models.RiskSnapshot, []factorResult) {
	snapshot := &models.RiskSnapshot{
		ProjectID:     state.Project.ID,
		RiskBreakdown: []models.RiskFactor{},
	}

	results := make([]factorResult, 0, len(s.calculators))
	for _, calc := range s.calculators {
		rawScore, description := risk.Evaluate(calc, state)
		score := int(rawScore)
		key := calc.Key()
		results = append(results, factorResult{key: key, score: score, description: description})

		if score <= 0 {
			continue
		}

		snapshot.RiskScore += score
		snapshot.RiskBreakdown = append(snapshot.RiskBreakdown, models.RiskFactor{
			Name:     key.DisplayName(),
			Score:    score,
			MaxScore: key.MaxScore(),
			Details:  models.RiskFactorDetails{Description: description},
		})
	}

	snapshot.RiskLevel = risk.LevelForScore(snapshot.RiskScore)
	return snapshot, results
}

// diffEvents produces one ledger event per factor whose score changed against
// the stored breakdown. Every event carries the final total so the ledger can
// be read as a score timeline; the deltas of one pass always sum to the total
// movement.
func (s *riskService) diffEvents(project *models.Project, newScore int, results []factorResult, triggeredBy *uuid.UUID) []*models.RiskEvent {
	oldScores := make(map[string]int, len(project.RiskBreakdown))
	for _, factor := range project.RiskBreakdown {
		oldScores[factor.Name] = factor.Score
	}

	timestamp := s.now()

	var events []*models.RiskEvent
	for _, result := range results {
		oldScore, hadOld := oldScores[result.key.DisplayName()]
		if result.score == oldScore {
			continue
		}
		if result.score == 0 && !hadOld {
			continue
		}

		events = append(events, &models.RiskEvent{
			ID:               uuid.New(),
			ProjectID:        project.ID,
			Timestamp:        timestamp,
			ScoreChange:      result.score - oldScore,
			NewScore:         newScore,
			EventType:        result.key.EventType(),
			Description:      result.description,
			TriggeringUserID: triggeredBy,
		})
	}

	return events
}

func (s *riskService) GetCurrent(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	return s.projectRepo.Get(ctx, projectID)
}

func (s *riskService) ListHighRisk(ctx context.Context) ([]*models.Project, error) {
	if projects, ok := s.cache.GetHighRisk(ctx); ok {
		return projects, nil
	}

	projects, err := s.projectRepo.ListHighRisk(ctx)
	if err != nil {
		return nil, err
	}

	s.cache.SetHighRisk(ctx, projects)
	return projects, nil
}

func (s *riskService) History(ctx context.Context, projectID uuid.UUID) ([]*models.RiskHistoryEntry, error) {
	if _, err := s.projectRepo.Get(ctx, projectID); err != nil {
		return nil, err
	}
	return s.eventRepo.ListByProject(ctx, projectID)
}
