package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateProjectRequest struct {
	Name string `json:"name" validate:"required"`
}

type CreateProjectResponse struct {
	Id       uuid.UUID `json:"id"`
	ThreadId string    `json:"thread_id"`
}

type ProjectSummaryResponse struct {
	Id        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	ThreadId  string    `json:"thread_id"`
	CreatedAt time.Time `json:"created_at"`
}

type TimelineEventResponse struct {
	Id          string    `json:"id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
	Author      string    `json:"author"`
}

type DecisionResponse struct {
	Id         string    `json:"id"`
	Title      string    `json:"title"`
	Rationale  string    `json:"rationale"`
	Outcome    string    `json:"outcome"`
	Timestamp  time.Time `json:"timestamp"`
	Author     string    `json:"author"`
	Confidence int       `json:"confidence"`
	Tags       []string  `json:"tags"`
}

type ShowProjectResponse struct {
	Id               uuid.UUID                `json:"id"`
	Name             string                   `json:"name"`
	ThreadId         string                   `json:"thread_id"`
	CreatedAt        time.Time                `json:"created_at"`
	Timeline         []*TimelineEventResponse `json:"timeline"`
	Decisions        []*DecisionResponse      `json:"decisions"`
	RecentDecisionId string                   `json:"recent_decision_id,omitempty"`
}
