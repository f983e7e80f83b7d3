package entity

import (
	"time"

	"github.com/google/uuid"
)

// Timeline event kinds.
const (
	EventTypeCommit    = "commit"
	EventTypeComment   = "comment"
	EventTypeDecision  = "decision"
	EventTypeMilestone = "milestone"
)

type TimelineEvent struct {
	Id          string
	Type        string
	Title       string
	Description string
	Timestamp   time.Time
	Author      string
}

// Decision is a confirmed entry in the project's decision ledger.
// When derived from extraction its Id equals the candidate id, which is
// what makes the merge idempotent.
type Decision struct {
	Id         string
	Title      string
	Rationale  string
	Outcome    string
	Timestamp  time.Time
	Author     string
	Confidence int
	Tags       []string
}

// Project owns the newest-first timeline and ledger plus the "recently
// added" highlight. Mutated only through the workspace service.
type Project struct {
	Id               uuid.UUID
	Name             string
	ThreadId         string
	CreatedAt        time.Time
	Timeline         []*TimelineEvent
	Decisions        []*Decision
	RecentDecisionId string
}

// HasDecision reports whether the ledger already contains the given id.
func (p *Project) HasDecision(id string) bool {
	for _, d := range p.Decisions {
		if d.Id == id {
			return true
		}
	}
	return false
}
