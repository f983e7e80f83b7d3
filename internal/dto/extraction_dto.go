package dto

import (
	"github.com/google/uuid"
)

type StageFileRequest struct {
	FileName     string `json:"file_name" validate:"required"`
	DocumentType string `json:"document_type" validate:"required,oneof=RFC MEETING_NOTES PRD POSTMORTEM OTHER"`
}

type CandidateResponse struct {
	Id          string `json:"id"`
	Title       string `json:"title"`
	Rationale   string `json:"rationale"`
	Confidence  int    `json:"confidence"`
	Source      string `json:"source"`
	Disposition string `json:"disposition"`
}

type SessionStatusResponse struct {
	ProjectId    uuid.UUID            `json:"project_id"`
	Phase        string               `json:"phase"`
	DocumentName string               `json:"document_name"`
	DocumentType string               `json:"document_type"`
	StepIndex    int                  `json:"step_index"`
	StageCount   int                  `json:"stage_count"`
	Progress     float64              `json:"progress"`
	Candidates   []*CandidateResponse `json:"candidates"`
	ErrorMessage string               `json:"error_message,omitempty"`
	Completed    bool                 `json:"completed"`
}

type DecisionActionResponse struct {
	Id           string `json:"id"`
	Disposition  string `json:"disposition"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// DecisionSavedMessage is the confirmation event published on the in-process
// bus once a candidate has been persisted to the thread backend. The consumer
// merges it into the project ledger and fans it out to the websocket feed.
type DecisionSavedMessage struct {
	ProjectId    uuid.UUID `json:"project_id"`
	DocumentType string    `json:"document_type"`
	Id           string    `json:"id"`
	Title        string    `json:"title"`
	Rationale    string    `json:"rationale"`
	Confidence   int       `json:"confidence"`
	Source       string    `json:"source"`
}
