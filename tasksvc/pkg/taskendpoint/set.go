package taskendpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/go-kit/kit/circuitbreaker"
	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/ratelimit"
	"github.com/myattire/backend/tasksvc"
	"github.com/myattire/backend/tasksvc/pkg/taskservice"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

type Set struct {
	CreateTaskEndpoint   endpoint.Endpoint
	TasksEndpoint        endpoint.Endpoint
	TaskEndpoint         endpoint.Endpoint
	UpdateTaskEndpoint   endpoint.Endpoint
	DeleteTaskEndpoint   endpoint.Endpoint
	CreateSectorEndpoint endpoint.Endpoint
	SectorsEndpoint      endpoint.Endpoint
}

func New(svc taskservice.Service, logger log.Logger) Set {
	limiter := ratelimit.NewErroringLimiter(rate.NewLimiter(rate.Every(time.Second), 100))

	wrap := func(name string, e endpoint.Endpoint) endpoint.Endpoint {
		e = limiter(e)
		e = circuitbreaker.Gobreaker(gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    name,
			Timeout: 30 * time.Second,
		}))(e)
		e = LoggingMiddleware(log.With(logger, "method", name))(e)
		return e
	}

	return Set{
		CreateTaskEndpoint:   wrap("CreateTask", MakeCreateTaskEndpoint(svc)),
		TasksEndpoint:        wrap("Tasks", MakeTasksEndpoint(svc)),
		TaskEndpoint:         wrap("Task", MakeTaskEndpoint(svc)),
		UpdateTaskEndpoint:   wrap("UpdateTask", MakeUpdateTaskEndpoint(svc)),
		DeleteTaskEndpoint:   wrap("DeleteTask", MakeDeleteTaskEndpoint(svc)),
		CreateSectorEndpoint: wrap("CreateSector", MakeCreateSectorEndpoint(svc)),
		SectorsEndpoint:      wrap("Sectors", MakeSectorsEndpoint(svc)),
	}
}

func (s Set) CreateTask(ctx context.Context, t tasksvc.Task) (tasksvc.Task, error) {
	req := CreateTaskRequest{
		Titulo:      t.Titulo,
		Descricao:   t.Descricao,
		Funcionario: t.Funcionario,
		Setor:       t.Setor,
		IDSetor:     t.SetorID,
		Prioridade:  t.Prioridade,
		Status:      t.Status,
	}
	if t.Prazo != nil {
		req.Prazo = t.Prazo.Format("2006-01-02")
	}

	resp, err := s.CreateTaskEndpoint(ctx, req)
	if err != nil {
		return tasksvc.Task{}, err
	}
	response := resp.(CreateTaskResponse)
	return response.Tarefa, response.Err
}

func (s Set) Tasks(ctx context.Context, f tasksvc.TaskFilter) ([]tasksvc.Task, error) {
	resp, err := s.TasksEndpoint(ctx, TasksRequest{Filter: f})
	if err != nil {
		return nil, err
	}
	response := resp.(TasksResponse)
	return response.Tarefas, response.Err
}

func (s Set) Task(ctx context.Context, taskID uint64) (tasksvc.Task, error) {
	resp, err := s.TaskEndpoint(ctx, TaskRequest{TaskID: taskID})
	if err != nil {
		return tasksvc.Task{}, err
	}
	response := resp.(TaskResponse)
	return response.Tarefa, response.Err
}

func (s Set) UpdateTask(ctx context.Context, taskID uint64, p tasksvc.TaskPatch) (tasksvc.Task, error) {
	req := UpdateTaskRequest{
		TaskID:      taskID,
		Titulo:      p.Titulo,
		Descricao:   p.Descricao,
		Funcionario: p.Funcionario,
		Setor:       p.Setor,
		IDSetor:     p.SetorID,
		Prioridade:  p.Prioridade,
		Status:      p.Status,
	}
	if p.Prazo != nil {
		prazo := p.Prazo.Format("2006-01-02")
		req.Prazo = &prazo
	}

	resp, err := s.UpdateTaskEndpoint(ctx, req)
	if err != nil {
		return tasksvc.Task{}, err
	}
	response := resp.(UpdateTaskResponse)
	return response.Tarefa, response.Err
}

func (s Set) DeleteTask(ctx context.Context, taskID uint64) error {
	resp, err := s.DeleteTaskEndpoint(ctx, DeleteTaskRequest{TaskID: taskID})
	if err != nil {
		return err
	}
	response := resp.(DeleteTaskResponse)
	return response.Err
}

func (s Set) CreateSector(ctx context.Context, nome string, ativo bool) (tasksvc.Sector, error) {
	resp, err := s.CreateSectorEndpoint(ctx, CreateSectorRequest{Nome: nome, Ativo: &ativo})
	if err != nil {
		return tasksvc.Sector{}, err
	}
	response := resp.(CreateSectorResponse)
	return response.Setor, response.Err
}

func (s Set) Sectors(ctx context.Context) ([]tasksvc.Sector, error) {
	resp, err := s.SectorsEndpoint(ctx, SectorsRequest{})
	if err != nil {
		return nil, err
	}
	response := resp.(SectorsResponse)
	return response.Setores, response.Err
}

func MakeCreateTaskEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		req := request.(CreateTaskRequest)

		prazo, err := parsePrazo(req.Prazo)
		if err != nil {
			return CreateTaskResponse{Err: err}, nil
		}

		t, err := s.CreateTask(ctx, tasksvc.Task{
			Titulo:      req.Titulo,
			Descricao:   req.Descricao,
			Funcionario: req.Funcionario,
			Setor:       req.Setor,
			SetorID:     req.IDSetor,
			Prazo:       prazo,
			Prioridade:  req.Prioridade,
			Status:      req.Status,
		})
		return CreateTaskResponse{Message: "Tarefa cadastrada com sucesso", Tarefa: t, Err: err}, nil
	}
}

func MakeTasksEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		req := request.(TasksRequest)

		t, err := s.Tasks(ctx, req.Filter)
		return TasksResponse{Tarefas: t, Err: err}, nil
	}
}

func MakeTaskEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		req := request.(TaskRequest)

		t, err := s.Task(ctx, req.TaskID)
		return TaskResponse{Tarefa: t, Err: err}, nil
	}
}

func MakeUpdateTaskEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		req := request.(UpdateTaskRequest)

		patch := tasksvc.TaskPatch{
			Titulo:      req.Titulo,
			Descricao:   req.Descricao,
			Funcionario: req.Funcionario,
			Setor:       req.Setor,
			SetorID:     req.IDSetor,
			Prioridade:  req.Prioridade,
			Status:      req.Status,
		}
		if req.Prazo != nil {
			prazo, err := parsePrazo(*req.Prazo)
			if err != nil {
				return UpdateTaskResponse{Err: err}, nil
			}
			patch.Prazo = prazo
		}

		t, err := s.UpdateTask(ctx, req.TaskID, patch)
		return UpdateTaskResponse{Message: "Tarefa atualizada com sucesso", Tarefa: t, Err: err}, nil
	}
}

func MakeDeleteTaskEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		req := request.(DeleteTaskRequest)

		err = s.DeleteTask(ctx, req.TaskID)
		return DeleteTaskResponse{Message: "Tarefa excluída com sucesso", Err: err}, nil
	}
}

func MakeCreateSectorEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		req := request.(CreateSectorRequest)

		ativo := true
		if req.Ativo != nil {
			ativo = *req.Ativo
		}

		sector, err := s.CreateSector(ctx, req.Nome, ativo)
		return CreateSectorResponse{Message: "Setor cadastrado com sucesso", Setor: sector, Err: err}, nil
	}
}

func MakeSectorsEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		_ = request.(SectorsRequest)

		sectors, err := s.Sectors(ctx)
		return SectorsResponse{Setores: sectors, Err: err}, nil
	}
}

// parsePrazo accepts the date-only form the web client sends, with RFC 3339
// as a fallback.
func parsePrazo(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, tasksvc.ErrInvalidDeadline
}

var (
	_ endpoint.Failer = CreateTaskResponse{}
	_ endpoint.Failer = TasksResponse{}
	_ endpoint.Failer = TaskResponse{}
	_ endpoint.Failer = UpdateTaskResponse{}
	_ endpoint.Failer = DeleteTaskResponse{}
	_ endpoint.Failer = CreateSectorResponse{}
	_ endpoint.Failer = SectorsResponse{}
)

type CreateTaskRequest struct {
	Titulo      string `json:"titulo"`
	Descricao   string `json:"descricao"`
	Funcionario string `json:"funcionario"`
	Setor       string `json:"setor"`
	IDSetor     uint64 `json:"id_setor"`
	Prazo       string `json:"prazo"`
	Prioridade  string `json:"prioridade"`
	Status      string `json:"status"`
}

type CreateTaskResponse struct {
	Message string       `json:"message"`
	Tarefa  tasksvc.Task `json:"tarefa"`
	Err     error        `json:"-"`
}

func (r CreateTaskResponse) Failed() error   { return r.Err }
func (r CreateTaskResponse) StatusCode() int { return http.StatusCreated }

type TasksRequest struct {
	Filter tasksvc.TaskFilter
}

type TasksResponse struct {
	Tarefas []tasksvc.Task `json:"tarefas"`
	Err     error          `json:"-"`
}

func (r TasksResponse) Failed() error { return r.Err }

type TaskRequest struct {
	TaskID uint64
}

type TaskResponse struct {
	Tarefa tasksvc.Task `json:"tarefa"`
	Err    error        `json:"-"`
}

func (r TaskResponse) Failed() error { return r.Err }

type UpdateTaskRequest struct {
	TaskID      uint64  `json:"-"`
	Titulo      *string `json:"titulo"`
	Descricao   *string `json:"descricao"`
	Funcionario *string `json:"funcionario"`
	Setor       *string `json:"setor"`
	IDSetor     *uint64 `json:"id_setor"`
	Prazo       *string `json:"prazo"`
	Prioridade  *string `json:"prioridade"`
	Status      *string `json:"status"`
}

type UpdateTaskResponse struct {
	Message string       `json:"message"`
	Tarefa  tasksvc.Task `json:"tarefa"`
	Err     error        `json:"-"`
}

func (r UpdateTaskResponse) Failed() error { return r.Err }

type DeleteTaskRequest struct {
	TaskID uint64
}

type DeleteTaskResponse struct {
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (r DeleteTaskResponse) Failed() error { return r.Err }

type CreateSectorRequest struct {
	Nome  string `json:"nome"`
	Ativo *bool  `json:"ativo"`
}

type CreateSectorResponse struct {
	Message string         `json:"message"`
	Setor   tasksvc.Sector `json:"setor"`
	Err     error          `json:"-"`
}

func (r CreateSectorResponse) Failed() error   { return r.Err }
func (r CreateSectorResponse) StatusCode() int { return http.StatusCreated }

type SectorsRequest struct{}

type SectorsResponse struct {
	Setores []tasksvc.Sector `json:"setores"`
	Err     error            `json:"-"`
}

func (r SectorsResponse) Failed() error { return r.Err }
