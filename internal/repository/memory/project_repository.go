package memory

import (
	"recall-be/internal/entity"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// ProjectRepository holds projects for the process lifetime. Nothing is
// persisted across restarts.
type ProjectRepository struct {
	cache *cache.Cache
}

func NewProjectRepository() *ProjectRepository {
	return &ProjectRepository{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func (r *ProjectRepository) Save(project *entity.Project) {
	r.cache.Set(project.Id.String(), project, cache.NoExpiration)
}

func (r *ProjectRepository) Get(id uuid.UUID) (*entity.Project, bool) {
	if x, found := r.cache.Get(id.String()); found {
		return x.(*entity.Project), true
	}
	return nil, false
}

func (r *ProjectRepository) GetAll() []*entity.Project {
	items := r.cache.Items()
	projects := make([]*entity.Project, 0, len(items))
	for _, item := range items {
		projects = append(projects, item.Object.(*entity.Project))
	}
	return projects
}

func (r *ProjectRepository) Delete(id uuid.UUID) {
	r.cache.Delete(id.String())
}
