package memory

import (
	"time"

	"recall-be/internal/entity"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// SessionRepository stores at most one extraction session per project.
// Sessions are transient review state, so abandoned ones are allowed to
// age out.
type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository() *SessionRepository {
	// Default expiration of 1 hour, purge sweep every 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &SessionRepository{
		cache: c,
	}
}

func (r *SessionRepository) Save(session *entity.ExtractionSession) {
	r.cache.Set(session.ProjectId.String(), session, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(projectId uuid.UUID) (*entity.ExtractionSession, bool) {
	if x, found := r.cache.Get(projectId.String()); found {
		return x.(*entity.ExtractionSession), true
	}
	return nil, false
}

func (r *SessionRepository) Delete(projectId uuid.UUID) {
	r.cache.Delete(projectId.String())
}
