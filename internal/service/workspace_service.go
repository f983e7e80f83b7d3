package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"recall-be/internal/constant"
	"recall-be/internal/dto"
	"recall-be/internal/entity"
	"recall-be/internal/pkg/apperror"
	"recall-be/internal/pkg/logger"
	"recall-be/internal/repository/memory"
	"recall-be/pkg/thread"

	"github.com/google/uuid"
)

type IWorkspaceService interface {
	CreateProject(ctx context.Context, req *dto.CreateProjectRequest) (*dto.CreateProjectResponse, error)
	GetAll(ctx context.Context) ([]*dto.ProjectSummaryResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.ShowProjectResponse, error)
	MergeDecision(msg *dto.DecisionSavedMessage) error
	Shutdown()
}

type workspaceService struct {
	mu                sync.Mutex
	projectRepo       *memory.ProjectRepository
	threadClient      thread.IThreadClient
	logger            logger.ILogger
	highlightDuration time.Duration
	highlightTimers   map[uuid.UUID]*time.Timer
}

func NewWorkspaceService(
	projectRepo *memory.ProjectRepository,
	threadClient thread.IThreadClient,
	log logger.ILogger,
	highlightDuration time.Duration,
) IWorkspaceService {
	return &workspaceService{
		projectRepo:       projectRepo,
		threadClient:      threadClient,
		logger:            log,
		highlightDuration: highlightDuration,
		highlightTimers:   make(map[uuid.UUID]*time.Timer),
	}
}

func (s *workspaceService) CreateProject(ctx context.Context, req *dto.CreateProjectRequest) (*dto.CreateProjectResponse, error) {
	// The remote thread is the unit memory attaches to. No thread, no project.
	threadId, err := s.threadClient.CreateThread(ctx)
	if err != nil {
		s.logger.Error("workspace", "Failed to create project thread", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	now := time.Now()
	project := &entity.Project{
		Id:        uuid.New(),
		Name:      req.Name,
		ThreadId:  threadId,
		CreatedAt: now,
		Timeline:  seedTimeline(now),
		Decisions: seedDecisions(now),
	}

	s.mu.Lock()
	s.projectRepo.Save(project)
	s.mu.Unlock()

	s.logger.Info("workspace", "Project created", map[string]interface{}{
		"project_id": project.Id.String(),
		"thread_id":  threadId,
	})

	return &dto.CreateProjectResponse{
		Id:       project.Id,
		ThreadId: threadId,
	}, nil
}

func (s *workspaceService) GetAll(ctx context.Context) ([]*dto.ProjectSummaryResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	projects := s.projectRepo.GetAll()
	result := make([]*dto.ProjectSummaryResponse, 0, len(projects))
	for _, p := range projects {
		result = append(result, &dto.ProjectSummaryResponse{
			Id:        p.Id,
			Name:      p.Name,
			ThreadId:  p.ThreadId,
			CreatedAt: p.CreatedAt,
		})
	}
	return result, nil
}

func (s *workspaceService) Show(ctx context.Context, id uuid.UUID) (*dto.ShowProjectResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	project, found := s.projectRepo.Get(id)
	if !found {
		return nil, apperror.NewNotFound("Project not found")
	}

	res := &dto.ShowProjectResponse{
		Id:               project.Id,
		Name:             project.Name,
		ThreadId:         project.ThreadId,
		CreatedAt:        project.CreatedAt,
		Timeline:         make([]*dto.TimelineEventResponse, 0, len(project.Timeline)),
		Decisions:        make([]*dto.DecisionResponse, 0, len(project.Decisions)),
		RecentDecisionId: project.RecentDecisionId,
	}

	for _, e := range project.Timeline {
		res.Timeline = append(res.Timeline, &dto.TimelineEventResponse{
			Id:          e.Id,
			Type:        e.Type,
			Title:       e.Title,
			Description: e.Description,
			Timestamp:   e.Timestamp,
			Author:      e.Author,
		})
	}
	for _, d := range project.Decisions {
		res.Decisions = append(res.Decisions, &dto.DecisionResponse{
			Id:         d.Id,
			Title:      d.Title,
			Rationale:  d.Rationale,
			Outcome:    d.Outcome,
			Timestamp:  d.Timestamp,
			Author:     d.Author,
			Confidence: d.Confidence,
			Tags:       append([]string(nil), d.Tags...),
		})
	}

	return res, nil
}

// MergeDecision appends a confirmed candidate to the project timeline and
// ledger, exactly once per candidate id. Redelivery of the same confirmation
// is a no-op. The whole merge is one atomic step under the workspace lock.
func (s *workspaceService) MergeDecision(msg *dto.DecisionSavedMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	project, found := s.projectRepo.Get(msg.ProjectId)
	if !found {
		return apperror.NewNotFound("Project not found")
	}

	if project.HasDecision(msg.Id) {
		s.logger.Warn("workspace", "Duplicate decision merge ignored", map[string]interface{}{
			"project_id":  msg.ProjectId.String(),
			"decision_id": msg.Id,
		})
		return nil
	}

	now := time.Now()

	event := &entity.TimelineEvent{
		Id:          "timeline-" + uuid.NewString(),
		Type:        entity.EventTypeDecision,
		Title:       constant.TimelineExtractionTitle,
		Description: msg.Title,
		Timestamp:   now,
		Author:      constant.TimelineExtractionAuthor,
	}
	project.Timeline = append([]*entity.TimelineEvent{event}, project.Timeline...)

	decision := &entity.Decision{
		Id:         msg.Id,
		Title:      msg.Title,
		Rationale:  msg.Rationale,
		Outcome:    constant.LedgerOutcomeSaved,
		Timestamp:  now,
		Author:     constant.LedgerAuthor,
		Confidence: msg.Confidence,
		Tags:       []string{constant.TagFromDocument, sourceTag(msg.Source)},
	}
	project.Decisions = append([]*entity.Decision{decision}, project.Decisions...)

	s.setHighlight(project, msg.Id)
	s.projectRepo.Save(project)

	s.logger.Info("workspace", "Decision merged into ledger", map[string]interface{}{
		"project_id":  msg.ProjectId.String(),
		"decision_id": msg.Id,
	})

	return nil
}

// setHighlight marks the entry as recently added, superseding any previous
// highlight. Expiry clears it only if it still refers to the same id, so a
// stale timer cannot clobber a newer highlight. Caller holds s.mu.
func (s *workspaceService) setHighlight(project *entity.Project, decisionId string) {
	project.RecentDecisionId = decisionId

	if timer, ok := s.highlightTimers[project.Id]; ok {
		timer.Stop()
	}

	projectId := project.Id
	s.highlightTimers[projectId] = time.AfterFunc(s.highlightDuration, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		p, found := s.projectRepo.Get(projectId)
		if !found {
			return
		}
		if p.RecentDecisionId == decisionId {
			p.RecentDecisionId = ""
			s.projectRepo.Save(p)
		}
	})
}

// Shutdown cancels pending highlight expiries so nothing fires against a
// torn-down workspace.
func (s *workspaceService) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, timer := range s.highlightTimers {
		timer.Stop()
		delete(s.highlightTimers, id)
	}
}

// sourceTag derives a tag from the source file name with its extension
// removed ("spec.pdf" -> "spec").
func sourceTag(source string) string {
	return strings.SplitN(source, ".", 2)[0]
}
