package taskservice

import (
	"context"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/myattire/backend/tasksvc"
)

type Service interface {
	CreateTask(ctx context.Context, t tasksvc.Task) (tasksvc.Task, error)
	Tasks(ctx context.Context, f tasksvc.TaskFilter) ([]tasksvc.Task, error)
	Task(ctx context.Context, taskID uint64) (tasksvc.Task, error)
	UpdateTask(ctx context.Context, taskID uint64, p tasksvc.TaskPatch) (tasksvc.Task, error)
	DeleteTask(ctx context.Context, taskID uint64) error
	CreateSector(ctx context.Context, nome string, ativo bool) (tasksvc.Sector, error)
	Sectors(ctx context.Context) ([]tasksvc.Sector, error)
}

func New(tasks tasksvc.TaskRepository, sectors tasksvc.SectorRepository, logger log.Logger) Service {
	var svc Service
	{
		svc = NewBasicService(tasks, sectors)
		svc = LoggingMiddleware(logger)(svc)
	}
	return svc
}

type basicService struct {
	tasks   tasksvc.TaskRepository
	sectors tasksvc.SectorRepository
}

func NewBasicService(tasks tasksvc.TaskRepository, sectors tasksvc.SectorRepository) Service {
	return basicService{tasks: tasks, sectors: sectors}
}

// CreateTask stamps the creation time and re-reads the stored row so the
// generated id and timestamp in the response are authoritative.
func (s basicService) CreateTask(ctx context.Context, t tasksvc.Task) (tasksvc.Task, error) {
	if t.Titulo == "" || t.Setor == "" {
		return tasksvc.Task{}, tasksvc.ErrMissingTaskFields
	}

	t.ID = 0
	t.DataCriacao = time.Now()

	id, err := s.tasks.Create(ctx, &t)
	if err != nil {
		return tasksvc.Task{}, err
	}

	return s.tasks.Find(ctx, id)
}

func (s basicService) Tasks(ctx context.Context, f tasksvc.TaskFilter) ([]tasksvc.Task, error) {
	return s.tasks.FindAll(ctx, f)
}

func (s basicService) Task(ctx context.Context, taskID uint64) (tasksvc.Task, error) {
	if taskID == 0 {
		return tasksvc.Task{}, tasksvc.ErrTaskNotFound
	}
	return s.tasks.Find(ctx, taskID)
}

// UpdateTask checks existence first to keep the observed 404 behavior, but
// the write itself is conditional: a row deleted between check and write
// still surfaces as not found.
func (s basicService) UpdateTask(ctx context.Context, taskID uint64, p tasksvc.TaskPatch) (tasksvc.Task, error) {
	if _, err := s.tasks.Find(ctx, taskID); err != nil {
		return tasksvc.Task{}, err
	}

	if err := s.tasks.Update(ctx, taskID, p); err != nil {
		return tasksvc.Task{}, err
	}

	return s.tasks.Find(ctx, taskID)
}

func (s basicService) DeleteTask(ctx context.Context, taskID uint64) error {
	if _, err := s.tasks.Find(ctx, taskID); err != nil {
		return err
	}
	return s.tasks.Delete(ctx, taskID)
}

func (s basicService) CreateSector(ctx context.Context, nome string, ativo bool) (tasksvc.Sector, error) {
	if nome == "" {
		return tasksvc.Sector{}, tasksvc.ErrMissingSectorName
	}

	sector := tasksvc.Sector{
		Nome:        nome,
		Ativo:       ativo,
		DataCriacao: time.Now(),
	}
	if _, err := s.sectors.Create(ctx, &sector); err != nil {
		return tasksvc.Sector{}, err
	}

	return sector, nil
}

// Sectors keeps the observed policy of reporting an empty listing as not
// found rather than an empty array.
func (s basicService) Sectors(ctx context.Context) ([]tasksvc.Sector, error) {
	sectors, err := s.sectors.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	if len(sectors) == 0 {
		return nil, tasksvc.ErrNoSectors
	}

	return sectors, nil
}
