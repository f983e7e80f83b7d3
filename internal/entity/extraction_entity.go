package entity

import (
	"github.com/google/uuid"
)

// Session phases for the document extraction workflow.
const (
	PhaseIdle      = "idle"
	PhaseUploading = "uploading"
	PhaseAnalyzing = "analyzing"
	PhaseReviewing = "reviewing"
)

// Per-candidate lifecycle. Saved and ignored are terminal; failed is retryable.
const (
	DispositionPending = "pending"
	DispositionSaving  = "saving"
	DispositionSaved   = "saved"
	DispositionIgnored = "ignored"
	DispositionFailed  = "failed"
)

const (
	DocumentTypeRFC          = "RFC"
	DocumentTypeMeetingNotes = "MEETING_NOTES"
	DocumentTypePRD          = "PRD"
	DocumentTypePostmortem   = "POSTMORTEM"
	DocumentTypeOther        = "OTHER"
)

// ExtractedDecision is a candidate decision produced by document analysis,
// pending human confirmation. Immutable once minted.
type ExtractedDecision struct {
	Id         string
	Title      string
	Rationale  string
	Confidence int
	Source     string
}

// ExtractionSession holds the upload -> analyze -> review state for one
// document at a time. Epoch guards asynchronous completions: a tick or a
// network result stamped with an older epoch must not mutate the session.
type ExtractionSession struct {
	ProjectId    uuid.UUID
	Epoch        uint64
	Phase        string
	DocumentName string
	DocumentType string
	StepIndex    int
	Candidates   []*ExtractedDecision
	Dispositions map[string]string
	ErrorMessage string
}

// Completed reports whether every candidate reached a terminal disposition.
func (s *ExtractionSession) Completed() bool {
	if s.Phase != PhaseReviewing || len(s.Candidates) == 0 {
		return false
	}
	for _, c := range s.Candidates {
		d := s.Dispositions[c.Id]
		if d != DispositionSaved && d != DispositionIgnored {
			return false
		}
	}
	return true
}
