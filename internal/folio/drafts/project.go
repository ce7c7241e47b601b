package drafts

import (
	"context"
	"encoding/json"

	"github.com/aisa-it/folio/internal/folio/dto"
	"github.com/aisa-it/folio/internal/folio/editor/tiptap"
)

// ProjectService - операции REST API проектов, которые нужны редактору.
type ProjectService interface {
	GetProjectDetails(ctx context.Context, slug string) (*dto.ProjectDetails, error)
	CreateProject(ctx context.Context, req dto.ProjectRequest) (*dto.Response, error)
	UpdateProject(ctx context.Context, req dto.ProjectRequest) (*dto.Response, error)
}

type projectBackend struct {
	svc ProjectService
}

func (projectBackend) kind() Kind                                 { return KindProject }
func (projectBackend) defaults() ProjectMetadata                  { return DefaultProjectMetadata() }
func (projectBackend) clone(m ProjectMetadata) ProjectMetadata    { return m.clone() }
func (projectBackend) validate(m ProjectMetadata) ValidationResult { return ValidateProjectData(m) }

func (b projectBackend) fetch(ctx context.Context, slug string) (ProjectMetadata, json.RawMessage, error) {
	details, err := b.svc.GetProjectDetails(ctx, slug)
	if err != nil {
		return ProjectMetadata{}, nil, err
	}
	return projectMetadataFrom(details), details.Content, nil
}

func (b projectBackend) submit(ctx context.Context, mode Mode, m ProjectMetadata, content *tiptap.Document) (*dto.Response, error) {
	req := m.request(mode, content)
	if mode.IsUpdate() {
		return b.svc.UpdateProject(ctx, req)
	}
	return b.svc.CreateProject(ctx, req)
}

// ProjectEditor - редактор проекта.
type ProjectEditor struct {
	*Controller[ProjectMetadata]
}

func NewProjectEditor(svc ProjectService, mode Mode, notifier Notifier) *ProjectEditor {
	return &ProjectEditor{newController[ProjectMetadata](projectBackend{svc: svc}, mode, notifier)}
}
