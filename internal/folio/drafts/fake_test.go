package drafts

import (
	"context"
	"sync"

	"github.com/aisa-it/folio/internal/folio/apierrors"
	"github.com/aisa-it/folio/internal/folio/dto"
)

// fakeService - API постов и проектов в памяти. Загрузка slug из gates ждёт закрытия канала,
// не обращая внимания на отмену context, чтобы ответ мог прийти после смены режима.
type fakeService struct {
	mu sync.Mutex

	blogs    map[string]*dto.BlogDetails
	projects map[string]*dto.ProjectDetails
	gates    map[string]chan struct{}
	readErr  error

	fetches map[string]int

	blogCreates    []dto.BlogRequest
	blogUpdates    []dto.BlogRequest
	projectCreates []dto.ProjectRequest
	projectUpdates []dto.ProjectRequest

	saveGate chan struct{}
	resp     *dto.Response
	writeErr error
}

func newFakeService() *fakeService {
	return &fakeService{
		blogs:    make(map[string]*dto.BlogDetails),
		projects: make(map[string]*dto.ProjectDetails),
		gates:    make(map[string]chan struct{}),
		fetches:  make(map[string]int),
		resp:     &dto.Response{Status: 200, Message: "ok"},
	}
}

func (f *fakeService) fetchCount(slug string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches[slug]
}

func (f *fakeService) enter(slug string) (chan struct{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches[slug]++
	return f.gates[slug], f.readErr
}

func (f *fakeService) GetBlogDetails(ctx context.Context, slug string) (*dto.BlogDetails, error) {
	gate, err := f.enter(slug)
	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.blogs[slug]
	if !ok {
		return nil, apierrors.ErrDraftNotFound
	}
	return d, nil
}

func (f *fakeService) GetProjectDetails(ctx context.Context, slug string) (*dto.ProjectDetails, error) {
	gate, err := f.enter(slug)
	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.projects[slug]
	if !ok {
		return nil, apierrors.ErrDraftNotFound
	}
	return d, nil
}

func (f *fakeService) write(record func()) (*dto.Response, error) {
	f.mu.Lock()
	record()
	gate := f.saveGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return f.resp, f.writeErr
}

func (f *fakeService) CreateBlog(ctx context.Context, req dto.BlogRequest) (*dto.Response, error) {
	return f.write(func() { f.blogCreates = append(f.blogCreates, req) })
}

func (f *fakeService) UpdateBlog(ctx context.Context, req dto.BlogRequest) (*dto.Response, error) {
	return f.write(func() { f.blogUpdates = append(f.blogUpdates, req) })
}

func (f *fakeService) CreateProject(ctx context.Context, req dto.ProjectRequest) (*dto.Response, error) {
	return f.write(func() { f.projectCreates = append(f.projectCreates, req) })
}

func (f *fakeService) UpdateProject(ctx context.Context, req dto.ProjectRequest) (*dto.Response, error) {
	return f.write(func() { f.projectUpdates = append(f.projectUpdates, req) })
}

// recorder собирает уведомления.
type recorder struct {
	mu       sync.Mutex
	outcomes []Outcome
}

func (r *recorder) Notify(o Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, o)
}

func (r *recorder) all() []Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Outcome(nil), r.outcomes...)
}

func ptr[T any](v T) *T {
	return &v
}
