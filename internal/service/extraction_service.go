package service

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
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

const backendSaveErrorMessage = "Backend save failed. The thread service may be unreachable."

type IExtractionService interface {
	OpenSession(ctx context.Context, projectId uuid.UUID) (*dto.SessionStatusResponse, error)
	CloseSession(ctx context.Context, projectId uuid.UUID) error
	ResetSession(ctx context.Context, projectId uuid.UUID) (*dto.SessionStatusResponse, error)
	Status(ctx context.Context, projectId uuid.UUID) (*dto.SessionStatusResponse, error)
	StageFile(ctx context.Context, projectId uuid.UUID, req *dto.StageFileRequest) (*dto.SessionStatusResponse, error)
	BeginAnalysis(ctx context.Context, projectId uuid.UUID) (*dto.SessionStatusResponse, error)
	ConfirmDecision(ctx context.Context, projectId uuid.UUID, decisionId string) (*dto.DecisionActionResponse, error)
	IgnoreDecision(ctx context.Context, projectId uuid.UUID, decisionId string) (*dto.DecisionActionResponse, error)
}

type extractionService struct {
	mu               sync.Mutex
	sessionRepo      *memory.SessionRepository
	projectRepo      *memory.ProjectRepository
	threadClient     thread.IThreadClient
	publisherService IPublisherService
	logger           logger.ILogger
	stageDelay       time.Duration
	finalizeDelay    time.Duration

	// Monotonic source for session epochs. A fresh or reset session always
	// carries an epoch no in-flight completion was stamped with.
	epochCounter atomic.Uint64
}

func NewExtractionService(
	sessionRepo *memory.SessionRepository,
	projectRepo *memory.ProjectRepository,
	threadClient thread.IThreadClient,
	publisherService IPublisherService,
	log logger.ILogger,
	stageDelay time.Duration,
	finalizeDelay time.Duration,
) IExtractionService {
	return &extractionService{
		sessionRepo:      sessionRepo,
		projectRepo:      projectRepo,
		threadClient:     threadClient,
		publisherService: publisherService,
		logger:           log,
		stageDelay:       stageDelay,
		finalizeDelay:    finalizeDelay,
	}
}

// OpenSession creates a fresh idle session for the project, discarding any
// prior one. There is no cross-session carryover.
func (s *extractionService) OpenSession(ctx context.Context, projectId uuid.UUID) (*dto.SessionStatusResponse, error) {
	if _, found := s.projectRepo.Get(projectId); !found {
		return nil, apperror.NewNotFound("Project not found")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session := &entity.ExtractionSession{
		ProjectId:    projectId,
		Epoch:        s.epochCounter.Add(1),
		Phase:        entity.PhaseIdle,
		Dispositions: make(map[string]string),
	}
	s.sessionRepo.Save(session)

	return s.toStatusResponse(session), nil
}

func (s *extractionService) CloseSession(ctx context.Context, projectId uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, found := s.sessionRepo.Get(projectId)
	if !found {
		return nil
	}
	// Invalidate in-flight completions before dropping the session.
	session.Epoch = s.epochCounter.Add(1)
	s.sessionRepo.Delete(projectId)
	return nil
}

// ResetSession returns the session to idle, clears candidates and
// dispositions, and invalidates any pending timers or network completions.
func (s *extractionService) ResetSession(ctx context.Context, projectId uuid.UUID) (*dto.SessionStatusResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, found := s.sessionRepo.Get(projectId)
	if !found {
		return nil, apperror.NewNotFound("No extraction session for this project")
	}

	session.Epoch = s.epochCounter.Add(1)
	session.Phase = entity.PhaseIdle
	session.DocumentName = ""
	session.DocumentType = ""
	session.StepIndex = 0
	session.Candidates = nil
	session.Dispositions = make(map[string]string)
	session.ErrorMessage = ""
	s.sessionRepo.Save(session)

	return s.toStatusResponse(session), nil
}

func (s *extractionService) Status(ctx context.Context, projectId uuid.UUID) (*dto.SessionStatusResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, found := s.sessionRepo.Get(projectId)
	if !found {
		return nil, apperror.NewNotFound("No extraction session for this project")
	}
	return s.toStatusResponse(session), nil
}

// StageFile records the selected document. Staging a new file replaces the
// prior selection without side effects.
func (s *extractionService) StageFile(ctx context.Context, projectId uuid.UUID, req *dto.StageFileRequest) (*dto.SessionStatusResponse, error) {
	if !hasAllowedExtension(req.FileName) {
		return nil, apperror.NewInvalidArgument("Unsupported file type. Supported: PDF, DOCX, TXT")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, found := s.sessionRepo.Get(projectId)
	if !found {
		return nil, apperror.NewNotFound("No extraction session for this project")
	}
	if session.Phase != entity.PhaseIdle && session.Phase != entity.PhaseUploading {
		return nil, apperror.NewInvalidState("A file can only be staged before analysis starts")
	}

	session.Phase = entity.PhaseUploading
	session.DocumentName = req.FileName
	session.DocumentType = req.DocumentType
	session.ErrorMessage = ""
	s.sessionRepo.Save(session)

	return s.toStatusResponse(session), nil
}

// BeginAnalysis kicks off the simulated pipeline. Stages complete strictly
// in order, one per delay tick, and progress never moves backwards.
func (s *extractionService) BeginAnalysis(ctx context.Context, projectId uuid.UUID) (*dto.SessionStatusResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, found := s.sessionRepo.Get(projectId)
	if !found {
		return nil, apperror.NewNotFound("No extraction session for this project")
	}
	if session.Phase != entity.PhaseUploading || session.DocumentName == "" {
		return nil, apperror.NewInvalidState("Analysis requires a staged file")
	}

	session.Phase = entity.PhaseAnalyzing
	session.StepIndex = 0
	session.ErrorMessage = ""
	s.sessionRepo.Save(session)

	go s.runAnalysis(projectId, session.Epoch, session.DocumentName)

	return s.toStatusResponse(session), nil
}

// runAnalysis advances the stage ticker. Every mutation re-checks the epoch:
// once the session was reset or closed, late ticks are dropped on the floor.
func (s *extractionService) runAnalysis(projectId uuid.UUID, epoch uint64, documentName string) {
	for i := range constant.AnalysisStages {
		time.Sleep(s.stageDelay)
		if !s.advanceStage(projectId, epoch, i+1) {
			return
		}
	}

	time.Sleep(s.finalizeDelay)
	s.completeAnalysis(projectId, epoch, documentName)
}

func (s *extractionService) advanceStage(projectId uuid.UUID, epoch uint64, stepIndex int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, found := s.sessionRepo.Get(projectId)
	if !found || session.Epoch != epoch || session.Phase != entity.PhaseAnalyzing {
		return false
	}

	session.StepIndex = stepIndex
	s.sessionRepo.Save(session)
	return true
}

func (s *extractionService) completeAnalysis(projectId uuid.UUID, epoch uint64, documentName string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, found := s.sessionRepo.Get(projectId)
	if !found || session.Epoch != epoch || session.Phase != entity.PhaseAnalyzing {
		return
	}

	session.Candidates = mintCandidates(documentName)
	session.Dispositions = make(map[string]string, len(session.Candidates))
	for _, c := range session.Candidates {
		session.Dispositions[c.Id] = entity.DispositionPending
	}
	session.Phase = entity.PhaseReviewing
	s.sessionRepo.Save(session)

	s.logger.Info("extraction", "Analysis complete", map[string]interface{}{
		"project_id": projectId.String(),
		"document":   documentName,
		"candidates": len(session.Candidates),
	})
}

// mintCandidates stamps the templates with the staged file and a fresh id
// suffix. Ids never collide across runs, even for identical uploads.
func mintCandidates(documentName string) []*entity.ExtractedDecision {
	candidates := make([]*entity.ExtractedDecision, 0, len(constant.DecisionTemplates))
	for _, tpl := range constant.DecisionTemplates {
		source := tpl.Source
		if documentName != "" {
			source = documentName
		}
		candidates = append(candidates, &entity.ExtractedDecision{
			Id:         tpl.Id + "-" + uuid.NewString(),
			Title:      tpl.Title,
			Rationale:  tpl.Rationale,
			Confidence: tpl.Confidence,
			Source:     source,
		})
	}
	return candidates
}

// ConfirmDecision persists a candidate to the thread backend and, on
// success, emits the confirmation event for the ledger merge. Idempotent on
// saved candidates; only one save may be in flight per candidate.
func (s *extractionService) ConfirmDecision(ctx context.Context, projectId uuid.UUID, decisionId string) (*dto.DecisionActionResponse, error) {
	s.mu.Lock()

	session, found := s.sessionRepo.Get(projectId)
	if !found {
		s.mu.Unlock()
		return nil, apperror.NewNotFound("No extraction session for this project")
	}
	if session.Phase != entity.PhaseReviewing {
		s.mu.Unlock()
		return nil, apperror.NewInvalidState("Decisions can only be confirmed during review")
	}

	disposition, ok := session.Dispositions[decisionId]
	if !ok {
		s.mu.Unlock()
		return nil, apperror.NewNotFound("Unknown decision candidate")
	}

	switch disposition {
	case entity.DispositionSaved, entity.DispositionIgnored, entity.DispositionSaving:
		// Terminal or already in flight: silent no-op.
		res := &dto.DecisionActionResponse{Id: decisionId, Disposition: disposition}
		s.mu.Unlock()
		return res, nil
	}

	candidate := findCandidate(session, decisionId)

	session.ErrorMessage = ""
	session.Dispositions[decisionId] = entity.DispositionSaving
	s.sessionRepo.Save(session)

	epoch := session.Epoch
	documentType := session.DocumentType
	s.mu.Unlock()

	project, found := s.projectRepo.Get(projectId)
	if !found {
		s.failSave(projectId, epoch, decisionId)
		return nil, apperror.NewNotFound("Project not found")
	}

	prompt := constant.BuildMemoryPrompt(documentType, candidate)
	_, err := s.threadClient.Ask(ctx, project.ThreadId, prompt)

	s.mu.Lock()
	defer s.mu.Unlock()

	// The session may have been reset or closed while the call was in
	// flight. That result belongs to a dead session instance: drop it.
	session, found = s.sessionRepo.Get(projectId)
	if !found || session.Epoch != epoch {
		return &dto.DecisionActionResponse{Id: decisionId, Disposition: entity.DispositionPending}, nil
	}

	if err != nil {
		session.Dispositions[decisionId] = entity.DispositionFailed
		session.ErrorMessage = backendSaveErrorMessage
		s.sessionRepo.Save(session)

		s.logger.Error("extraction", "Decision save failed", map[string]interface{}{
			"project_id":  projectId.String(),
			"decision_id": decisionId,
			"error":       err.Error(),
		})

		return &dto.DecisionActionResponse{
			Id:           decisionId,
			Disposition:  entity.DispositionFailed,
			ErrorMessage: session.ErrorMessage,
		}, nil
	}

	session.Dispositions[decisionId] = entity.DispositionSaved
	s.sessionRepo.Save(session)

	if pubErr := s.publisherService.PublishDecisionSaved(&dto.DecisionSavedMessage{
		ProjectId:    projectId,
		DocumentType: documentType,
		Id:           candidate.Id,
		Title:        candidate.Title,
		Rationale:    candidate.Rationale,
		Confidence:   candidate.Confidence,
		Source:       candidate.Source,
	}); pubErr != nil {
		s.logger.Error("extraction", "Failed to publish decision saved event", map[string]interface{}{
			"decision_id": decisionId,
			"error":       pubErr.Error(),
		})
	}

	return &dto.DecisionActionResponse{Id: decisionId, Disposition: entity.DispositionSaved}, nil
}

// failSave rolls a candidate back to pending when the save could not even be
// attempted. Late rollbacks against a reset session are dropped.
func (s *extractionService) failSave(projectId uuid.UUID, epoch uint64, decisionId string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, found := s.sessionRepo.Get(projectId)
	if !found || session.Epoch != epoch {
		return
	}
	session.Dispositions[decisionId] = entity.DispositionPending
	s.sessionRepo.Save(session)
}

// IgnoreDecision is terminal and local, no network call. No-op once the
// candidate is saved or ignored; rejected while a save is in flight.
func (s *extractionService) IgnoreDecision(ctx context.Context, projectId uuid.UUID, decisionId string) (*dto.DecisionActionResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, found := s.sessionRepo.Get(projectId)
	if !found {
		return nil, apperror.NewNotFound("No extraction session for this project")
	}
	if session.Phase != entity.PhaseReviewing {
		return nil, apperror.NewInvalidState("Decisions can only be ignored during review")
	}

	disposition, ok := session.Dispositions[decisionId]
	if !ok {
		return nil, apperror.NewNotFound("Unknown decision candidate")
	}

	switch disposition {
	case entity.DispositionSaved, entity.DispositionIgnored, entity.DispositionSaving:
		return &dto.DecisionActionResponse{Id: decisionId, Disposition: disposition}, nil
	}

	session.ErrorMessage = ""
	session.Dispositions[decisionId] = entity.DispositionIgnored
	s.sessionRepo.Save(session)

	return &dto.DecisionActionResponse{Id: decisionId, Disposition: entity.DispositionIgnored}, nil
}

func (s *extractionService) toStatusResponse(session *entity.ExtractionSession) *dto.SessionStatusResponse {
	stageCount := len(constant.AnalysisStages)
	progress := float64(session.StepIndex) / float64(stageCount) * 100
	if progress > 100 {
		progress = 100
	}

	candidates := make([]*dto.CandidateResponse, 0, len(session.Candidates))
	for _, c := range session.Candidates {
		candidates = append(candidates, &dto.CandidateResponse{
			Id:          c.Id,
			Title:       c.Title,
			Rationale:   c.Rationale,
			Confidence:  c.Confidence,
			Source:      c.Source,
			Disposition: session.Dispositions[c.Id],
		})
	}

	return &dto.SessionStatusResponse{
		ProjectId:    session.ProjectId,
		Phase:        session.Phase,
		DocumentName: session.DocumentName,
		DocumentType: session.DocumentType,
		StepIndex:    session.StepIndex,
		StageCount:   stageCount,
		Progress:     progress,
		Candidates:   candidates,
		ErrorMessage: session.ErrorMessage,
		Completed:    session.Completed(),
	}
}

func findCandidate(session *entity.ExtractionSession, decisionId string) *entity.ExtractedDecision {
	for _, c := range session.Candidates {
		if c.Id == decisionId {
			return c
		}
	}
	return nil
}

func hasAllowedExtension(fileName string) bool {
	lower := strings.ToLower(fileName)
	for _, ext := range constant.AllowedDocumentExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
